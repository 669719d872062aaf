package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mealmap/internal/geo"
	"github.com/hitoshi/mealmap/internal/model"
)

// MemoryStore はプロセス内メモリに全エンティティを保持するストア。
// STORE_DRIVER=memory でのローカル実行とテストで使用する。
// 一意性（slug、フォローの組）はロック内で検査し、PostgreSQLのUNIQUE制約と同じくErrDuplicateを返す。
type MemoryStore struct {
	mu sync.RWMutex

	restaurants     map[string]*model.Restaurant
	restaurantOrder []string
	slugIndex       map[string]string // slug -> restaurant ID

	users     map[string]*model.User
	userOrder []string

	follows     map[followKey]*model.Follow
	followOrder []followKey

	now func() time.Time
}

type followKey struct {
	userID       string
	restaurantID string
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		restaurants: make(map[string]*model.Restaurant),
		slugIndex:   make(map[string]string),
		users:       make(map[string]*model.User),
		follows:     make(map[followKey]*model.Follow),
		now:         time.Now,
	}
}

// PingContext はヘルスチェック用。メモリストアは常に到達可能。
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// Restaurants はレストランリポジトリとしてのビューを返す。
func (s *MemoryStore) Restaurants() *MemoryRestaurantRepo {
	return &MemoryRestaurantRepo{s: s}
}

// Users はユーザーリポジトリとしてのビューを返す。
func (s *MemoryStore) Users() *MemoryUserRepo {
	return &MemoryUserRepo{s: s}
}

// Follows はフォローリポジトリとしてのビューを返す。
func (s *MemoryStore) Follows() *MemoryFollowRepo {
	return &MemoryFollowRepo{s: s}
}

func cloneRestaurant(r *model.Restaurant) *model.Restaurant {
	c := *r
	c.Cuisines = slices.Clone(r.Cuisines)
	return &c
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.FavoriteCuisines = slices.Clone(u.FavoriteCuisines)
	return &c
}

// --- レストラン ---

// MemoryRestaurantRepo はMemoryStore上のRestaurantRepository実装。
type MemoryRestaurantRepo struct {
	s *MemoryStore
}

// IsValidID はIDがUUID形式かを返す。
func (r *MemoryRestaurantRepo) IsValidID(id string) bool {
	return IsValidUUID(id)
}

// ExistsByID は指定IDのレストランが存在するかを返す。
func (r *MemoryRestaurantRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.restaurants[id]
	return ok, nil
}

// FindByID は指定IDのレストランを取得する。見つからない場合はnilを返す。
func (r *MemoryRestaurantRepo) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	restaurant, ok := r.s.restaurants[id]
	if !ok {
		return nil, nil
	}
	return cloneRestaurant(restaurant), nil
}

// FindBySlug はslugでレストランを検索する。見つからない場合はnilを返す。
func (r *MemoryRestaurantRepo) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.slugIndex[slug]
	if !ok {
		return nil, nil
	}
	return cloneRestaurant(r.s.restaurants[id]), nil
}

// ExistsBySlug は指定slugのレストランが存在するかを返す。
func (r *MemoryRestaurantRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.slugIndex[slug]
	return ok, nil
}

// List はレストラン一覧を作成順に返す。cuisineが空でない場合は完全一致で絞り込む。
func (r *MemoryRestaurantRepo) List(ctx context.Context, cuisine string) ([]*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Restaurant
	for _, id := range r.s.restaurantOrder {
		restaurant := r.s.restaurants[id]
		if cuisine != "" && !slices.Contains(restaurant.Cuisines, cuisine) {
			continue
		}
		result = append(result, cloneRestaurant(restaurant))
	}
	return result, nil
}

// FindNear はpointからradiusMeters以内のレストランを大円距離の昇順で返す。
func (r *MemoryRestaurantRepo) FindNear(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type candidate struct {
		restaurant *model.Restaurant
		distance   float64
	}
	var candidates []candidate
	for _, id := range r.s.restaurantOrder {
		restaurant := r.s.restaurants[id]
		d := geo.DistanceMeters(point.Latitude, point.Longitude, restaurant.Location.Latitude, restaurant.Location.Longitude)
		if d <= radiusMeters {
			candidates = append(candidates, candidate{restaurant: restaurant, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	result := make([]*model.Restaurant, len(candidates))
	for i, c := range candidates {
		result[i] = cloneRestaurant(c.restaurant)
	}
	return result, nil
}

// Create はレストランを作成する。slugが重複する場合はErrDuplicateを返す。
func (r *MemoryRestaurantRepo) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.slugIndex[restaurant.Slug]; ok {
		return fmt.Errorf("slug %q: %w", restaurant.Slug, ErrDuplicate)
	}
	if restaurant.ID == "" {
		restaurant.ID = uuid.NewString()
	}
	if _, ok := r.s.restaurants[restaurant.ID]; ok {
		return fmt.Errorf("restaurant %s: %w", restaurant.ID, ErrDuplicate)
	}
	if restaurant.CreatedAt.IsZero() {
		restaurant.CreatedAt = r.s.now()
	}
	if restaurant.UpdatedAt.IsZero() {
		restaurant.UpdatedAt = restaurant.CreatedAt
	}

	r.s.restaurants[restaurant.ID] = cloneRestaurant(restaurant)
	r.s.restaurantOrder = append(r.s.restaurantOrder, restaurant.ID)
	r.s.slugIndex[restaurant.Slug] = restaurant.ID
	return nil
}

// --- ユーザー ---

// MemoryUserRepo はMemoryStore上のUserRepository実装。
type MemoryUserRepo struct {
	s *MemoryStore
}

// IsValidID はIDがUUID形式かを返す。
func (r *MemoryUserRepo) IsValidID(id string) bool {
	return IsValidUUID(id)
}

// ExistsByID は指定IDのユーザーが存在するかを返す。
func (r *MemoryUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

// List はユーザー一覧を作成順に返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*model.User, 0, len(r.s.userOrder))
	for _, id := range r.s.userOrder {
		result = append(result, cloneUser(r.s.users[id]))
	}
	return result, nil
}

// FindPeers はexcludeID以外で、お気に入り料理がcuisinesと重なるユーザーを作成順に返す。
func (r *MemoryUserRepo) FindPeers(ctx context.Context, excludeID string, cuisines []string) ([]*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.User
	for _, id := range r.s.userOrder {
		if id == excludeID {
			continue
		}
		user := r.s.users[id]
		if user.SharesCuisineWith(cuisines) {
			result = append(result, cloneUser(user))
		}
	}
	return result, nil
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrDuplicate)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	r.s.users[user.ID] = cloneUser(user)
	r.s.userOrder = append(r.s.userOrder, user.ID)
	return nil
}

// --- フォロー ---

// MemoryFollowRepo はMemoryStore上のFollowRepository実装。
type MemoryFollowRepo struct {
	s *MemoryStore
}

// FindByUserAndRestaurant はユーザーIDとレストランIDでフォローを検索する。見つからない場合はnilを返す。
func (r *MemoryFollowRepo) FindByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (*model.Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	follow, ok := r.s.follows[followKey{userID: userID, restaurantID: restaurantID}]
	if !ok {
		return nil, nil
	}
	c := *follow
	return &c, nil
}

// Create はフォローを作成する。同じ組が既に存在する場合はErrDuplicateを返す。
// 参照先のユーザーまたはレストランが存在しない場合は外部キー違反相当のエラーを返す。
func (r *MemoryFollowRepo) Create(ctx context.Context, follow *model.Follow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{userID: follow.UserID, restaurantID: follow.RestaurantID}
	if _, ok := r.s.follows[key]; ok {
		return fmt.Errorf("follow (%s, %s): %w", follow.UserID, follow.RestaurantID, ErrDuplicate)
	}
	if _, ok := r.s.users[follow.UserID]; !ok {
		return fmt.Errorf("フォローの作成に失敗しました: 参照先ユーザーが存在しません: %s", follow.UserID)
	}
	if _, ok := r.s.restaurants[follow.RestaurantID]; !ok {
		return fmt.Errorf("フォローの作成に失敗しました: 参照先レストランが存在しません: %s", follow.RestaurantID)
	}
	if follow.ID == "" {
		follow.ID = uuid.NewString()
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = r.s.now()
	}

	c := *follow
	r.s.follows[key] = &c
	r.s.followOrder = append(r.s.followOrder, key)
	return nil
}

// ListFollowedRestaurants はuserIDsのいずれかがフォローしているレストランを
// フォロー作成順に1件1行で返す。重複排除は行わない。
func (r *MemoryFollowRepo) ListFollowedRestaurants(ctx context.Context, userIDs []string) ([]model.RestaurantSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []model.RestaurantSummary
	for _, key := range r.s.followOrder {
		if _, ok := wanted[key.userID]; !ok {
			continue
		}
		restaurant, ok := r.s.restaurants[key.restaurantID]
		if !ok {
			continue
		}
		result = append(result, model.RestaurantSummary{
			ID:     restaurant.ID,
			NameEn: restaurant.NameEn,
			Slug:   restaurant.Slug,
		})
	}
	return result, nil
}

// compile-time interface checks
var (
	_ RestaurantRepository = (*MemoryRestaurantRepo)(nil)
	_ UserRepository       = (*MemoryUserRepo)(nil)
	_ FollowRepository     = (*MemoryFollowRepo)(nil)
)
