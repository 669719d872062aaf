package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/mealmap/internal/middleware"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/recommend"
)

// envelope は成功レスポンスの統一フォーマット。
type envelope struct {
	Data       any    `json:"data"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// locationResponse はGeoJSON Point形式の位置情報。coordinatesは [緯度, 経度]。
type locationResponse struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// restaurantResponse はレストラン情報のAPIレスポンス。
type restaurantResponse struct {
	ID        string           `json:"id"`
	NameEn    string           `json:"nameEn"`
	NameAr    string           `json:"nameAr"`
	Slug      string           `json:"slug"`
	Cuisines  []string         `json:"cuisines"`
	Location  locationResponse `json:"location"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID               string    `json:"id"`
	FullName         string    `json:"fullName"`
	FavoriteCuisines []string  `json:"favoriteCuisines"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// followResponse はフォロー関係のAPIレスポンス。
type followResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RestaurantID string    `json:"restaurantId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// peerResponse はおすすめ算出に使われた類似ユーザー。
type peerResponse struct {
	ID               string   `json:"id"`
	FullName         string   `json:"fullName"`
	FavoriteCuisines []string `json:"favoriteCuisines"`
}

// restaurantSummaryResponse はおすすめレストランの射影。
type restaurantSummaryResponse struct {
	ID     string `json:"id"`
	NameEn string `json:"nameEn"`
	Slug   string `json:"slug"`
}

// recommendationResponse はおすすめ結果のAPIレスポンス。
type recommendationResponse struct {
	Users       []peerResponse              `json:"users"`
	Restaurants []restaurantSummaryResponse `json:"restaurants"`
}

func toRestaurantResponse(r *model.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:       r.ID,
		NameEn:   r.NameEn,
		NameAr:   r.NameAr,
		Slug:     r.Slug,
		Cuisines: r.Cuisines,
		Location: locationResponse{
			Type:        model.GeoPointType,
			Coordinates: [2]float64{r.Location.Latitude, r.Location.Longitude},
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRestaurantResponses(rs []*model.Restaurant) []restaurantResponse {
	out := make([]restaurantResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRestaurantResponse(r))
	}
	return out
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:               u.ID,
		FullName:         u.FullName,
		FavoriteCuisines: u.FavoriteCuisines,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toUserResponses(us []*model.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toFollowResponse(f *model.Follow) followResponse {
	return followResponse{
		ID:           f.ID,
		UserID:       f.UserID,
		RestaurantID: f.RestaurantID,
		CreatedAt:    f.CreatedAt,
	}
}

func toRecommendationResponse(rec *recommend.Recommendation) recommendationResponse {
	resp := recommendationResponse{
		Users:       make([]peerResponse, 0, len(rec.Peers)),
		Restaurants: make([]restaurantSummaryResponse, 0, len(rec.Restaurants)),
	}
	for _, p := range rec.Peers {
		resp.Users = append(resp.Users, peerResponse{
			ID:               p.ID,
			FullName:         p.FullName,
			FavoriteCuisines: p.FavoriteCuisines,
		})
	}
	for _, r := range rec.Restaurants {
		resp.Restaurants = append(resp.Restaurants, restaurantSummaryResponse{
			ID:     r.ID,
			NameEn: r.NameEn,
			Slug:   r.Slug,
		})
	}
	return resp
}

// writeResult はサービス層の結果エンベロープをJSONで書き込む。
func writeResult(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Data:       data,
		Message:    message,
		StatusCode: statusCode,
	})
}

// decodeJSON はリクエストボディをdstにデコードする。
// 失敗した場合はエラーレスポンスを書き込み、falseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
			Kind:     model.KindInvalidArgument,
		})
		return false
	}
	return true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}
