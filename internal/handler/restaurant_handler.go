package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mealmap/internal/middleware"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/restaurant"
)

// RestaurantServiceInterface はレストランハンドラーが必要とするサービスインターフェース。
type RestaurantServiceInterface interface {
	// Create はレストランを登録する。
	Create(ctx context.Context, in restaurant.CreateInput) (*model.Result[*model.Restaurant], error)
	// List はレストラン一覧を返す。cuisineが空でなければ完全一致で絞り込む。
	List(ctx context.Context, cuisine string) (*model.Result[[]*model.Restaurant], error)
	// Get は識別子またはslugでレストランを取得する。
	Get(ctx context.Context, identifier string) (*model.Result[*model.Restaurant], error)
	// FindNearby は [緯度, 経度] から1km以内のレストランを近い順に返す。
	FindNearby(ctx context.Context, coordinate []float64) (*model.Result[[]*model.Restaurant], error)
}

// RestaurantHandler はレストランのHTTPハンドラー。
type RestaurantHandler struct {
	service RestaurantServiceInterface
}

// NewRestaurantHandler はRestaurantHandlerを生成する。
func NewRestaurantHandler(service RestaurantServiceInterface) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
	}
}

// Create はレストラン登録を処理する。
// POST /restaurants
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req restaurant.CreateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toRestaurantResponse(result.Data))
}

// List はレストラン一覧を返す。
// GET /restaurants?cuisine=
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), r.URL.Query().Get("cuisine"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toRestaurantResponses(result.Data))
}

// Get は識別子またはslugでレストランを返す。
// GET /restaurants/{id}
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toRestaurantResponse(result.Data))
}

// Nearby は指定地点から1km以内のレストランを返す。
// GET /restaurants/nearby?lat=&lng=
func (h *RestaurantHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		middleware.WriteAPIError(w, model.NewInvalidLocationError("lat と lng には数値を指定してください"))
		return
	}

	result, err := h.service.FindNearby(r.Context(), []float64{lat, lng})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeResult(w, result.StatusCode, result.Message, toRestaurantResponses(result.Data))
}
