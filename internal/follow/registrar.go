// Package follow はユーザーからレストランへのフォロー登録を提供する。
package follow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/mealmap/internal/metrics"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/repository"
)

// Input はフォロー登録の入力。
type Input struct {
	UserID       string `json:"userId"`
	RestaurantID string `json:"restaurantId"`
}

// Registrar はフォロー関係を登録する。
// (user, restaurant) の組につきフォローは高々1件であることを保証する。
type Registrar struct {
	userRepo       repository.UserRepository
	restaurantRepo repository.RestaurantRepository
	followRepo     repository.FollowRepository
	metrics        metrics.MetricsCollector
}

// NewRegistrar はRegistrarの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewRegistrar(
	userRepo repository.UserRepository,
	restaurantRepo repository.RestaurantRepository,
	followRepo repository.FollowRepository,
	collector metrics.MetricsCollector,
) *Registrar {
	return &Registrar{
		userRepo:       userRepo,
		restaurantRepo: restaurantRepo,
		followRepo:     followRepo,
		metrics:        collector,
	}
}

// Follow はユーザーがレストランをフォローする関係を登録する。
// 検証順序: ID形式（ユーザー→レストラン）→ ユーザー存在 → レストラン存在 → 既存フォロー → 挿入。
// 挿入時にストアが一意性違反を返した場合も重複としてConflictを返す。
func (r *Registrar) Follow(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error) {
	if !r.userRepo.IsValidID(userID) {
		return nil, model.NewInvalidUserIDError(userID)
	}
	if !r.restaurantRepo.IsValidID(restaurantID) {
		return nil, model.NewInvalidRestaurantIDError(restaurantID)
	}

	userExists, err := r.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの存在確認に失敗しました: %w", err)
	}
	if !userExists {
		return nil, model.NewUserNotFoundError(userID)
	}

	restaurantExists, err := r.restaurantRepo.ExistsByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("レストランの存在確認に失敗しました: %w", err)
	}
	if !restaurantExists {
		return nil, model.NewRestaurantNotFoundError(restaurantID)
	}

	existing, err := r.followRepo.FindByUserAndRestaurant(ctx, userID, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("既存フォローの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, r.conflict()
	}

	follow := &model.Follow{
		UserID:       userID,
		RestaurantID: restaurantID,
	}
	if err := r.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			slog.Debug("同時登録によりフォローが重複しました",
				slog.String("user_id", userID),
				slog.String("restaurant_id", restaurantID),
			)
			return nil, r.conflict()
		}
		return nil, fmt.Errorf("フォローの登録に失敗しました: %w", err)
	}

	if r.metrics != nil {
		r.metrics.RecordFollowCreated()
	}

	return model.Created(follow, "User followed restaurant successfully"), nil
}

func (r *Registrar) conflict() error {
	if r.metrics != nil {
		r.metrics.RecordFollowConflict()
	}
	return model.NewDuplicateFollowError()
}
