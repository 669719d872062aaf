package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/mealmap/internal/model"
)

// restaurantColumns はrestaurantsテーブルのSELECT列。
// locationはgeography(Point)のため、緯度はST_Y、経度はST_Xで取り出す。
const restaurantColumns = `id, name_en, name_ar, slug, cuisines,
	ST_Y(location::geometry), ST_X(location::geometry), created_at, updated_at`

// PostgresRestaurantRepo はPostgreSQL（PostGIS）を使用したレストランリポジトリ。
type PostgresRestaurantRepo struct {
	db *sql.DB
}

// NewPostgresRestaurantRepo はPostgresRestaurantRepoを生成する。
func NewPostgresRestaurantRepo(db *sql.DB) *PostgresRestaurantRepo {
	return &PostgresRestaurantRepo{db: db}
}

// IsValidID はIDがUUID形式かを返す。
func (r *PostgresRestaurantRepo) IsValidID(id string) bool {
	return IsValidUUID(id)
}

// ExistsByID は指定IDのレストランが存在するかを返す。
func (r *PostgresRestaurantRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("レストランの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// FindByID は指定IDのレストランを取得する。見つからない場合はnilを返す。
func (r *PostgresRestaurantRepo) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`,
		id,
	)
	restaurant, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レストランの取得に失敗しました: %w", err)
	}
	return restaurant, nil
}

// FindBySlug はslugでレストランを検索する。見つからない場合はnilを返す。
func (r *PostgresRestaurantRepo) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE slug = $1`,
		slug,
	)
	restaurant, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slugによるレストランの検索に失敗しました: %w", err)
	}
	return restaurant, nil
}

// ExistsBySlug は指定slugのレストランが存在するかを返す。
func (r *PostgresRestaurantRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM restaurants WHERE slug = $1)`,
		slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slugの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// List はレストラン一覧を作成日時の昇順で返す。
// cuisineが空でない場合はcuisines配列にその値を含むものに絞り込む。
func (r *PostgresRestaurantRepo) List(ctx context.Context, cuisine string) ([]*model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+restaurantColumns+`
		 FROM restaurants
		 WHERE $1::text = '' OR $1::text = ANY(cuisines)
		 ORDER BY created_at ASC`,
		cuisine,
	)
	if err != nil {
		return nil, fmt.Errorf("レストラン一覧の取得に失敗しました: %w", err)
	}
	return collectRestaurants(rows)
}

// FindNear はpointからradiusMeters以内のレストランを距離の昇順で返す。
// GiSTインデックスを利用するためST_DWithinで絞り込む。
func (r *PostgresRestaurantRepo) FindNear(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+restaurantColumns+`
		 FROM restaurants
		 WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		 ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography) ASC`,
		point.Latitude, point.Longitude, radiusMeters,
	)
	if err != nil {
		return nil, fmt.Errorf("近隣レストランの検索に失敗しました: %w", err)
	}
	return collectRestaurants(rows)
}

// Create はレストランを作成する。slugが重複する場合はErrDuplicateを返す。
func (r *PostgresRestaurantRepo) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	now := time.Now()
	if restaurant.CreatedAt.IsZero() {
		restaurant.CreatedAt = now
	}
	if restaurant.UpdatedAt.IsZero() {
		restaurant.UpdatedAt = restaurant.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, name_en, name_ar, slug, cuisines, location, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography, $8, $9)`,
		restaurant.ID, restaurant.NameEn, restaurant.NameAr, restaurant.Slug, pq.Array(restaurant.Cuisines),
		restaurant.Location.Latitude, restaurant.Location.Longitude,
		restaurant.CreatedAt, restaurant.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("slug %q: %w", restaurant.Slug, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("レストランの作成に失敗しました: %w", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsに共通するScanメソッド。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*model.Restaurant, error) {
	restaurant := &model.Restaurant{}
	err := row.Scan(
		&restaurant.ID, &restaurant.NameEn, &restaurant.NameAr, &restaurant.Slug, pq.Array(&restaurant.Cuisines),
		&restaurant.Location.Latitude, &restaurant.Location.Longitude,
		&restaurant.CreatedAt, &restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func collectRestaurants(rows *sql.Rows) ([]*model.Restaurant, error) {
	defer rows.Close()

	var restaurants []*model.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("レストラン行の読み取りに失敗しました: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レストラン一覧の走査に失敗しました: %w", err)
	}
	return restaurants, nil
}

// compile-time interface check
var _ RestaurantRepository = (*PostgresRestaurantRepo)(nil)
