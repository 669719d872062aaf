package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mealmap/internal/follow"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/recommend"
	"github.com/hitoshi/mealmap/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create はユーザーを登録する。
	Create(ctx context.Context, in user.CreateInput) (*model.Result[*model.User], error)
	// List は全ユーザーを返す。
	List(ctx context.Context) (*model.Result[[]*model.User], error)
}

// FollowServiceInterface はフォロー登録のインターフェース。
type FollowServiceInterface interface {
	Follow(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error)
}

// RecommendServiceInterface はおすすめ算出のインターフェース。
type RecommendServiceInterface interface {
	Recommend(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error)
}

// UserHandler はユーザー、フォロー、おすすめのHTTPハンドラー。
type UserHandler struct {
	users     UserServiceInterface
	follows   FollowServiceInterface
	recommend RecommendServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(users UserServiceInterface, follows FollowServiceInterface, recommender RecommendServiceInterface) *UserHandler {
	return &UserHandler{
		users:     users,
		follows:   follows,
		recommend: recommender,
	}
}

// Create はユーザー登録を処理する。
// POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toUserResponse(result.Data))
}

// List はユーザー一覧を返す。
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toUserResponses(result.Data))
}

// Follow はユーザーからレストランへのフォローを登録する。
// POST /user-restaurants
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req follow.Input
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.follows.Follow(r.Context(), req.UserID, req.RestaurantID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toFollowResponse(result.Data))
}

// Recommendations はお気に入り料理が共通するユーザーとそのフォロー先レストランを返す。
// GET /users/recommendations/{userId}
func (h *UserHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.recommend.Recommend(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toRecommendationResponse(result.Data))
}
