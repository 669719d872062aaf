// Package restaurant はレストランの登録・参照と近隣検索のドメインロジックを提供する。
package restaurant

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/mealmap/internal/geo"
	"github.com/hitoshi/mealmap/internal/metrics"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/repository"
	"github.com/hitoshi/mealmap/internal/security"
	"github.com/hitoshi/mealmap/internal/validation"
)

// NearbyRadiusMeters は近隣検索の固定半径（メートル）。
const NearbyRadiusMeters = 1000.0

// LocationInput はGeoJSON Point形式の位置入力。coordinatesは [緯度, 経度] の順。
type LocationInput struct {
	Type        string    `json:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

// CreateInput はレストラン登録の入力。
type CreateInput struct {
	NameEn   string         `json:"nameEn" validate:"required"`
	NameAr   string         `json:"nameAr" validate:"required"`
	Slug     string         `json:"slug" validate:"required"`
	Cuisines []string       `json:"cuisines" validate:"required,min=1,max=3,dive,required"`
	Location *LocationInput `json:"location" validate:"required"`
}

// Service はレストランのサービス層。
type Service struct {
	repo      repository.RestaurantRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewService(
	repo repository.RestaurantRepository,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// Create はレストランを登録する。
// 入力はサニタイズ後に検証し、slugが既に使われている場合はConflictを返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Result[*model.Restaurant], error) {
	in.NameEn = s.sanitizer.Sanitize(in.NameEn)
	in.NameAr = s.sanitizer.Sanitize(in.NameAr)
	in.Slug = s.sanitizer.Sanitize(in.Slug)
	in.Cuisines = s.sanitizer.SanitizeAll(in.Cuisines)

	if apiErr := validation.Struct(in); apiErr != nil {
		return nil, apiErr
	}

	point, err := pointFromCoordinates(in.Location.Coordinates)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySlug(ctx, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("slugの重複確認に失敗しました: %w", err)
	}
	if exists {
		return nil, model.NewDuplicateSlugError(in.Slug)
	}

	restaurant := &model.Restaurant{
		NameEn:   in.NameEn,
		NameAr:   in.NameAr,
		Slug:     in.Slug,
		Cuisines: in.Cuisines,
		Location: point,
	}
	if err := s.repo.Create(ctx, restaurant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateSlugError(in.Slug)
		}
		return nil, fmt.Errorf("レストランの登録に失敗しました: %w", err)
	}

	return model.Created(restaurant, "Restaurant created successfully"), nil
}

// List はレストラン一覧を返す。cuisineが空でなければ完全一致で絞り込む。
// 該当が0件の場合はNotFoundを返す。
func (s *Service) List(ctx context.Context, cuisine string) (*model.Result[[]*model.Restaurant], error) {
	restaurants, err := s.repo.List(ctx, cuisine)
	if err != nil {
		return nil, fmt.Errorf("レストラン一覧の取得に失敗しました: %w", err)
	}
	if len(restaurants) == 0 {
		return nil, model.NewRestaurantsNotFoundError(cuisine)
	}

	return model.OK(restaurants, fmt.Sprintf("%d restaurant(s) found", len(restaurants))), nil
}

// Get は識別子またはslugでレストランを取得する。
// ストアの識別子形式として正しければIDで、そうでなければslugで検索する。
func (s *Service) Get(ctx context.Context, identifier string) (*model.Result[*model.Restaurant], error) {
	if identifier == "" {
		return nil, model.NewValidationError("レストランIDまたはslugは必須です")
	}

	var (
		restaurant *model.Restaurant
		err        error
	)
	if s.repo.IsValidID(identifier) {
		restaurant, err = s.repo.FindByID(ctx, identifier)
	} else {
		restaurant, err = s.repo.FindBySlug(ctx, identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("レストランの取得に失敗しました: %w", err)
	}
	if restaurant == nil {
		return nil, model.NewRestaurantNotFoundError(identifier)
	}

	return model.OK(restaurant, "Restaurant found"), nil
}

// FindNearby は [緯度, 経度] から半径NearbyRadiusMeters以内のレストランを近い順に返す。
// 該当がなくてもエラーにはせず、空の一覧を返す。
func (s *Service) FindNearby(ctx context.Context, coordinate []float64) (*model.Result[[]*model.Restaurant], error) {
	point, err := pointFromCoordinates(coordinate)
	if err != nil {
		return nil, err
	}

	restaurants, err := s.repo.FindNear(ctx, point, NearbyRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("近隣レストランの検索に失敗しました: %w", err)
	}
	if restaurants == nil {
		restaurants = []*model.Restaurant{}
	}

	if s.metrics != nil {
		s.metrics.RecordNearbyResults(len(restaurants))
	}

	msg := fmt.Sprintf("%d restaurant(s) found within 1 km of this location", len(restaurants))
	return model.OK(restaurants, msg), nil
}

// pointFromCoordinates は [緯度, 経度] を検証してGeoPointに変換する。
func pointFromCoordinates(coordinate []float64) (model.GeoPoint, error) {
	if len(coordinate) != 2 {
		return model.GeoPoint{}, model.NewInvalidLocationError("[緯度, 経度] の2要素で指定してください")
	}

	lat, lng := coordinate[0], coordinate[1]
	if !geo.ValidLatitude(lat) || !geo.ValidLongitude(lng) {
		return model.GeoPoint{}, model.NewInvalidLocationError("緯度は-90〜90、経度は-180〜180の範囲で指定してください")
	}

	return model.GeoPoint{Latitude: lat, Longitude: lng}, nil
}
