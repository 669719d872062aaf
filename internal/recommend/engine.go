// Package recommend は類似ユーザーのフォローからおすすめレストランを算出する。
package recommend

import (
	"context"
	"fmt"

	"github.com/hitoshi/mealmap/internal/metrics"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/repository"
)

// Peer はおすすめ算出に使われた類似ユーザーの射影。
type Peer struct {
	ID               string
	FullName         string
	FavoriteCuisines []string
}

// Recommendation はおすすめ算出の結果。
// Restaurantsはレストラン識別子で重複排除され、順序に意味はない。
type Recommendation struct {
	Peers       []Peer
	Restaurants []model.RestaurantSummary
}

// Engine はおすすめ算出エンジン。状態を持たず、呼び出しごとにストアを参照する。
type Engine struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	metrics    metrics.MetricsCollector
}

// NewEngine はEngineの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewEngine(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	collector metrics.MetricsCollector,
) *Engine {
	return &Engine{
		userRepo:   userRepo,
		followRepo: followRepo,
		metrics:    collector,
	}
}

// Recommend はuserIDのユーザーとお気に入り料理を1つ以上共有する他ユーザーを探し、
// 彼らがフォローしているレストランを重複なく返す。
// 類似ユーザーが0人の場合はNotFound、類似ユーザーが誰もフォローしていない場合は空の一覧で成功する。
func (e *Engine) Recommend(ctx context.Context, userID string) (*model.Result[*Recommendation], error) {
	if !e.userRepo.IsValidID(userID) {
		return nil, model.NewInvalidUserIDError(userID)
	}

	user, err := e.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	peers, err := e.userRepo.FindPeers(ctx, user.ID, user.FavoriteCuisines)
	if err != nil {
		return nil, fmt.Errorf("類似ユーザーの検索に失敗しました: %w", err)
	}
	if len(peers) == 0 {
		return nil, model.NewNoSimilarUsersError()
	}

	peerIDs := make([]string, len(peers))
	rec := &Recommendation{
		Peers:       make([]Peer, len(peers)),
		Restaurants: []model.RestaurantSummary{},
	}
	for i, p := range peers {
		peerIDs[i] = p.ID
		rec.Peers[i] = Peer{
			ID:               p.ID,
			FullName:         p.FullName,
			FavoriteCuisines: p.FavoriteCuisines,
		}
	}

	followed, err := e.followRepo.ListFollowedRestaurants(ctx, peerIDs)
	if err != nil {
		return nil, fmt.Errorf("フォロー中レストランの集計に失敗しました: %w", err)
	}
	rec.Restaurants = distinctByID(followed)

	if e.metrics != nil {
		e.metrics.RecordRecommendation(len(rec.Peers), len(rec.Restaurants))
	}

	msg := fmt.Sprintf("%d Users found , %d Restaurants recommended", len(rec.Peers), len(rec.Restaurants))
	return model.OK(rec, msg), nil
}

// distinctByID はレストラン識別子で重複を除く。重複時は最初に現れた要素を残す。
func distinctByID(rows []model.RestaurantSummary) []model.RestaurantSummary {
	seen := make(map[string]struct{}, len(rows))
	result := make([]model.RestaurantSummary, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		result = append(result, row)
	}
	return result
}
