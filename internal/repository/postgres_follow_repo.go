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

// PostgresFollowRepo はPostgreSQLを使用したフォローリポジトリ。
// (user_id, restaurant_id) にはUNIQUE制約があり、同時挿入の競合はストア側で排除される。
type PostgresFollowRepo struct {
	db *sql.DB
}

// NewPostgresFollowRepo はPostgresFollowRepoを生成する。
func NewPostgresFollowRepo(db *sql.DB) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: db}
}

// FindByUserAndRestaurant はユーザーIDとレストランIDでフォローを検索する。見つからない場合はnilを返す。
func (r *PostgresFollowRepo) FindByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (*model.Follow, error) {
	follow := &model.Follow{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, restaurant_id, created_at
		 FROM follows WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restaurantID,
	).Scan(&follow.ID, &follow.UserID, &follow.RestaurantID, &follow.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーとレストランによるフォローの検索に失敗しました: %w", err)
	}
	return follow, nil
}

// Create はフォローを作成する。同じ組が既に存在する場合はErrDuplicateを返す。
func (r *PostgresFollowRepo) Create(ctx context.Context, follow *model.Follow) error {
	if follow.ID == "" {
		follow.ID = uuid.NewString()
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (id, user_id, restaurant_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		follow.ID, follow.UserID, follow.RestaurantID, follow.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("follow (%s, %s): %w", follow.UserID, follow.RestaurantID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	return nil
}

// ListFollowedRestaurants はuserIDsのいずれかがフォローしているレストランを
// followsとrestaurantsをJOINしてフォロー1件につき1行で返す。重複排除は行わない。
func (r *PostgresFollowRepo) ListFollowedRestaurants(ctx context.Context, userIDs []string) ([]model.RestaurantSummary, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name_en, r.slug
		 FROM follows f
		 JOIN restaurants r ON r.id = f.restaurant_id
		 WHERE f.user_id = ANY($1::uuid[])
		 ORDER BY f.created_at ASC`,
		pq.Array(userIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー中レストランの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.RestaurantSummary
	for rows.Next() {
		var s model.RestaurantSummary
		if err := rows.Scan(&s.ID, &s.NameEn, &s.Slug); err != nil {
			return nil, fmt.Errorf("フォロー中レストラン行の読み取りに失敗しました: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー中レストランの走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ FollowRepository = (*PostgresFollowRepo)(nil)
