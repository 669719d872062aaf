// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hitoshi/mealmap/internal/model"
)

// ErrDuplicate はストアが一意性違反を報告したことを表す。
// slugの重複や (user, restaurant) の重複フォローで返される。
var ErrDuplicate = errors.New("duplicate key")

// IDValidator は識別子がストアの形式として正しいかを判定する。
type IDValidator interface {
	// IsValidID は識別子の形式を検証する。存在確認は行わない。
	IsValidID(id string) bool
}

// RestaurantRepository はレストランデータの永続化インターフェース。
type RestaurantRepository interface {
	IDValidator

	// ExistsByID は指定IDのレストランが存在するかを返す。
	ExistsByID(ctx context.Context, id string) (bool, error)

	// FindByID は指定IDのレストランを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Restaurant, error)

	// FindBySlug はslugでレストランを検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error)

	// ExistsBySlug は指定slugのレストランが存在するかを返す。
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// List はレストラン一覧を返す。cuisineが空でない場合はその料理ジャンルを含むものに絞り込む。
	List(ctx context.Context, cuisine string) ([]*model.Restaurant, error)

	// FindNear はpointからradiusMeters以内のレストランを近い順に返す。
	FindNear(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error)

	// Create はレストランを作成する。IDが空の場合はストアが採番する。
	// slugが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, restaurant *model.Restaurant) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	IDValidator

	// ExistsByID は指定IDのユーザーが存在するかを返す。
	ExistsByID(ctx context.Context, id string) (bool, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List はユーザー一覧を返す。
	List(ctx context.Context) ([]*model.User, error)

	// FindPeers はexcludeID以外で、お気に入り料理がcuisinesと1つ以上重なるユーザーを返す。
	// 比較は完全一致。
	FindPeers(ctx context.Context, excludeID string, cuisines []string) ([]*model.User, error)

	// Create はユーザーを作成する。IDが空の場合はストアが採番する。
	Create(ctx context.Context, user *model.User) error
}

// FollowRepository はフォロー関係の永続化インターフェース。
type FollowRepository interface {
	// FindByUserAndRestaurant はユーザーIDとレストランIDでフォローを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (*model.Follow, error)

	// Create はフォローを作成する。IDが空の場合はストアが採番する。
	// 同じ (user, restaurant) の組が既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, follow *model.Follow) error

	// ListFollowedRestaurants はuserIDsのいずれかがフォローしているレストランを、
	// フォロー1件につき1行で返す。同じレストランが複数行に現れうる。
	ListFollowedRestaurants(ctx context.Context, userIDs []string) ([]model.RestaurantSummary, error)
}

// IsValidUUID は識別子がハイフン区切り36文字の正規UUID形式かを返す。
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
