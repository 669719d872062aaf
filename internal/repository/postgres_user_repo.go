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

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// IsValidID はIDがUUID形式かを返す。
func (r *PostgresUserRepo) IsValidID(id string) bool {
	return IsValidUUID(id)
}

// ExistsByID は指定IDのユーザーが存在するかを返す。
func (r *PostgresUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, favorite_cuisines, created_at, updated_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.FullName, pq.Array(&user.FavoriteCuisines), &user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// List はユーザー一覧を作成日時の昇順で返す。
func (r *PostgresUserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, favorite_cuisines, created_at, updated_at
		 FROM users ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return collectUsers(rows)
}

// FindPeers はexcludeID以外で、favorite_cuisinesがcuisinesと重なるユーザーを返す。
// 配列の重なり判定には && 演算子（GINインデックス対象）を使用する。
func (r *PostgresUserRepo) FindPeers(ctx context.Context, excludeID string, cuisines []string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, favorite_cuisines, created_at, updated_at
		 FROM users
		 WHERE id <> $1 AND favorite_cuisines && $2::text[]
		 ORDER BY created_at ASC`,
		excludeID, pq.Array(cuisines),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find peer users: %w", err)
	}
	return collectUsers(rows)
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, full_name, favorite_cuisines, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.FullName, pq.Array(user.FavoriteCuisines), user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func collectUsers(rows *sql.Rows) ([]*model.User, error) {
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.FullName, pq.Array(&user.FavoriteCuisines), &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
