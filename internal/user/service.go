// Package user はユーザー登録と一覧取得のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/repository"
	"github.com/hitoshi/mealmap/internal/security"
	"github.com/hitoshi/mealmap/internal/validation"
)

// CreateInput はユーザー登録の入力。
type CreateInput struct {
	FullName         string   `json:"fullName" validate:"required"`
	FavoriteCuisines []string `json:"favoriteCuisines" validate:"required,min=1,dive,required"`
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer security.TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// Create はユーザーを登録する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Result[*model.User], error) {
	in.FullName = s.sanitizer.Sanitize(in.FullName)
	in.FavoriteCuisines = s.sanitizer.SanitizeAll(in.FavoriteCuisines)

	if apiErr := validation.Struct(in); apiErr != nil {
		return nil, apiErr
	}

	user := &model.User{
		FullName:         in.FullName,
		FavoriteCuisines: in.FavoriteCuisines,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
		slog.Int("favorite_cuisines", len(user.FavoriteCuisines)),
	)

	return model.Created(user, "User created successfully"), nil
}

// List は全ユーザーを登録順に返す。0件の場合はNotFoundを返す。
func (s *Service) List(ctx context.Context) (*model.Result[[]*model.User], error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	if len(users) == 0 {
		return nil, model.NewUsersNotFoundError()
	}

	return model.OK(users, fmt.Sprintf("%d Users found", len(users))), nil
}
