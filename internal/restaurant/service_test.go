package restaurant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mealmap/internal/geo"
	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/repository"
	"github.com/hitoshi/mealmap/internal/security"
)

// --- モック ---

type mockRestaurantRepo struct {
	existsBySlugFn func(ctx context.Context, slug string) (bool, error)
	createFn       func(ctx context.Context, restaurant *model.Restaurant) error
	listFn         func(ctx context.Context, cuisine string) ([]*model.Restaurant, error)
	findNearFn     func(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error)
	findByIDFn     func(ctx context.Context, id string) (*model.Restaurant, error)
}

func (m *mockRestaurantRepo) IsValidID(id string) bool {
	return repository.IsValidUUID(id)
}
func (m *mockRestaurantRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (m *mockRestaurantRepo) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockRestaurantRepo) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	return nil, nil
}
func (m *mockRestaurantRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if m.existsBySlugFn != nil {
		return m.existsBySlugFn(ctx, slug)
	}
	return false, nil
}
func (m *mockRestaurantRepo) List(ctx context.Context, cuisine string) ([]*model.Restaurant, error) {
	return m.listFn(ctx, cuisine)
}
func (m *mockRestaurantRepo) FindNear(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error) {
	return m.findNearFn(ctx, point, radiusMeters)
}
func (m *mockRestaurantRepo) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if m.createFn != nil {
		return m.createFn(ctx, restaurant)
	}
	return nil
}

type fakeCollector struct {
	nearby []int
}

func (f *fakeCollector) RecordHTTPStatus(int)                        {}
func (f *fakeCollector) RecordRequestLatency(time.Duration)          {}
func (f *fakeCollector) RecordNearbyResults(count int)               { f.nearby = append(f.nearby, count) }
func (f *fakeCollector) RecordFollowCreated()                        {}
func (f *fakeCollector) RecordFollowConflict()                       {}
func (f *fakeCollector) RecordRecommendation(peers, restaurants int) {}

// --- ヘルパー ---

func newMemoryService(t *testing.T) (*Service, *repository.MemoryRestaurantRepo) {
	t.Helper()
	repo := repository.NewMemoryStore().Restaurants()
	return NewService(repo, security.NewTextSanitizer(), nil), repo
}

func validInput(slug string, lat, lng float64) CreateInput {
	return CreateInput{
		NameEn:   "Burger Zone",
		NameAr:   "برجر زون",
		Slug:     slug,
		Cuisines: []string{"Burgers", "American"},
		Location: &LocationInput{Type: "Point", Coordinates: []float64{lat, lng}},
	}
}

func assertKind(t *testing.T, err error, want model.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := model.KindOf(err); got != want {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, want, err)
	}
}

// --- Create ---

func TestCreate_Success_Returns201(t *testing.T) {
	svc, repo := newMemoryService(t)

	result, err := svc.Create(context.Background(), validInput("burger-zone", 30.0444, 31.2357))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", result.StatusCode)
	}
	if result.Message != "Restaurant created successfully" {
		t.Errorf("Message = %q", result.Message)
	}
	if !repo.IsValidID(result.Data.ID) {
		t.Errorf("expected store-assigned id, got %q", result.Data.ID)
	}
	if result.Data.Location.Latitude != 30.0444 || result.Data.Location.Longitude != 31.2357 {
		t.Errorf("location = %+v", result.Data.Location)
	}
}

func TestCreate_SanitizesTextFields(t *testing.T) {
	svc, _ := newMemoryService(t)

	in := validInput("  <b>burger-zone</b> ", 0, 0)
	in.NameEn = "<script>alert(1)</script>Burger Zone"

	result, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Data.Slug != "burger-zone" {
		t.Errorf("Slug = %q, want burger-zone", result.Data.Slug)
	}
	if result.Data.NameEn != "Burger Zone" {
		t.Errorf("NameEn = %q, want Burger Zone", result.Data.NameEn)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateInput)
		field  string
	}{
		{"missing_name_en", func(in *CreateInput) { in.NameEn = "" }, "nameEn"},
		{"markup_only_name_ar", func(in *CreateInput) { in.NameAr = "<b></b>" }, "nameAr"},
		{"missing_slug", func(in *CreateInput) { in.Slug = "" }, "slug"},
		{"no_cuisines", func(in *CreateInput) { in.Cuisines = nil }, "cuisines"},
		{"too_many_cuisines", func(in *CreateInput) { in.Cuisines = []string{"a", "b", "c", "d"} }, "cuisines"},
		{"empty_cuisine", func(in *CreateInput) { in.Cuisines = []string{"Burgers", " "} }, "cuisines"},
		{"missing_location", func(in *CreateInput) { in.Location = nil }, "location"},
		{"wrong_location_type", func(in *CreateInput) { in.Location.Type = "Polygon" }, "location.type"},
		{"three_coordinates", func(in *CreateInput) { in.Location.Coordinates = []float64{1, 2, 3} }, "location.coordinates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newMemoryService(t)
			in := validInput("burger-zone", 0, 0)
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			assertKind(t, err, model.KindInvalidArgument)
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should mention %q", err.Error(), tt.field)
			}

			list, _ := repo.List(context.Background(), "")
			if len(list) != 0 {
				t.Errorf("nothing should be persisted on validation failure, got %d", len(list))
			}
		})
	}
}

func TestCreate_OutOfRangeCoordinates(t *testing.T) {
	svc, _ := newMemoryService(t)

	for _, c := range [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -200}} {
		_, err := svc.Create(context.Background(), validInput("x", c[0], c[1]))
		assertKind(t, err, model.KindInvalidArgument)
	}
}

func TestCreate_DuplicateSlug_ReturnsConflict(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput("burger-zone", 0, 0)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, validInput("burger-zone", 1, 1))
	assertKind(t, err, model.KindConflict)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode() != http.StatusBadRequest {
		t.Errorf("duplicate slug should render as 400, got %v", err)
	}
}

// 事前確認をすり抜けた同時登録でも、ストアの一意性違反はConflictとして扱う。
func TestCreate_StoreUniqueViolation_ReturnsConflict(t *testing.T) {
	repo := &mockRestaurantRepo{
		createFn: func(ctx context.Context, restaurant *model.Restaurant) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewService(repo, security.NewTextSanitizer(), nil)

	_, err := svc.Create(context.Background(), validInput("burger-zone", 0, 0))
	assertKind(t, err, model.KindConflict)
}

func TestCreate_StoreFailure_IsGenericError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockRestaurantRepo{
		existsBySlugFn: func(ctx context.Context, slug string) (bool, error) {
			return false, storeErr
		},
	}
	svc := NewService(repo, security.NewTextSanitizer(), nil)

	_, err := svc.Create(context.Background(), validInput("burger-zone", 0, 0))
	if err == nil {
		t.Fatal("expected error")
	}
	if model.KindOf(err) != 0 {
		t.Errorf("store failure must not be a taxonomy error, got kind %s", model.KindOf(err))
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("store error should be wrapped, got %v", err)
	}
}

// --- List ---

func TestList_FiltersByCuisine(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	sushi := validInput("sushi-go", 0, 0)
	sushi.Cuisines = []string{"Sushi", "Asian"}
	for _, in := range []CreateInput{validInput("burger-zone", 0, 0), sushi} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all.Data) != 2 || all.Message != "2 restaurant(s) found" {
		t.Errorf("unexpected result: %d, %q", len(all.Data), all.Message)
	}

	asian, err := svc.List(ctx, "Asian")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(asian.Data) != 1 || asian.Data[0].Slug != "sushi-go" {
		t.Errorf("unexpected filtered result: %+v", asian.Data)
	}

	_, err = svc.List(ctx, "asian")
	assertKind(t, err, model.KindNotFound)
}

func TestList_Empty_ReturnsNotFound(t *testing.T) {
	svc, _ := newMemoryService(t)

	_, err := svc.List(context.Background(), "")
	assertKind(t, err, model.KindNotFound)
}

// --- Get ---

func TestGet_ByIDOrSlug(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("burger-zone", 0, 0))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byID, err := svc.Get(ctx, created.Data.ID)
	if err != nil {
		t.Fatalf("Get by id returned error: %v", err)
	}
	if byID.Data.Slug != "burger-zone" || byID.StatusCode != http.StatusOK {
		t.Errorf("unexpected result: %+v", byID)
	}

	bySlug, err := svc.Get(ctx, "burger-zone")
	if err != nil {
		t.Fatalf("Get by slug returned error: %v", err)
	}
	if bySlug.Data.ID != created.Data.ID {
		t.Errorf("ID = %q, want %q", bySlug.Data.ID, created.Data.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newMemoryService(t)

	_, err := svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assertKind(t, err, model.KindNotFound)

	_, err = svc.Get(context.Background(), "missing-slug")
	assertKind(t, err, model.KindNotFound)
}

func TestGet_EmptyIdentifier_ReturnsInvalidArgument(t *testing.T) {
	svc, _ := newMemoryService(t)

	_, err := svc.Get(context.Background(), "")
	assertKind(t, err, model.KindInvalidArgument)
}

// --- FindNearby ---

func TestFindNearby_ReturnsOnlyWithinRadiusNearestFirst(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	lat, lng := 24.7136, 46.6753

	// 北方向へ約111m/0.001度
	seeds := []struct {
		slug string
		dLat float64
	}{
		{"far", 0.0200},
		{"edge", 0.0089},
		{"mid", 0.0040},
		{"near", 0.0005},
	}
	for _, s := range seeds {
		if _, err := svc.Create(ctx, validInput(s.slug, lat+s.dLat, lng)); err != nil {
			t.Fatalf("create %s failed: %v", s.slug, err)
		}
	}

	result, err := svc.FindNearby(ctx, []float64{lat, lng})
	if err != nil {
		t.Fatalf("FindNearby returned error: %v", err)
	}

	want := []string{"near", "mid", "edge"}
	if len(result.Data) != len(want) {
		t.Fatalf("got %d restaurants, want %d", len(result.Data), len(want))
	}
	for i, r := range result.Data {
		if r.Slug != want[i] {
			t.Errorf("result[%d] = %s, want %s", i, r.Slug, want[i])
		}
		d := geo.DistanceMeters(lat, lng, r.Location.Latitude, r.Location.Longitude)
		if d > NearbyRadiusMeters {
			t.Errorf("%s is %.1fm away, beyond radius", r.Slug, d)
		}
	}
	if result.Message != "3 restaurant(s) found within 1 km of this location" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestFindNearby_NoMatches_ReturnsEmptySuccess(t *testing.T) {
	collector := &fakeCollector{}
	svc := NewService(repository.NewMemoryStore().Restaurants(), security.NewTextSanitizer(), collector)

	result, err := svc.FindNearby(context.Background(), []float64{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Data == nil || len(result.Data) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", result.Data)
	}
	if result.Message != "0 restaurant(s) found within 1 km of this location" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(collector.nearby) != 1 || collector.nearby[0] != 0 {
		t.Errorf("expected one nearby observation of 0, got %v", collector.nearby)
	}
}

func TestFindNearby_InvalidCoordinates(t *testing.T) {
	svc, _ := newMemoryService(t)

	tests := []struct {
		name       string
		coordinate []float64
	}{
		{"latitude_91", []float64{91, 0}},
		{"longitude_minus_200", []float64{0, -200}},
		{"one_element", []float64{10}},
		{"three_elements", []float64{10, 20, 30}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FindNearby(context.Background(), tt.coordinate)
			assertKind(t, err, model.KindInvalidArgument)
		})
	}
}

func TestFindNearby_PassesFixedRadiusToStore(t *testing.T) {
	var gotRadius float64
	var gotPoint model.GeoPoint
	repo := &mockRestaurantRepo{
		findNearFn: func(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]*model.Restaurant, error) {
			gotPoint, gotRadius = point, radiusMeters
			return nil, nil
		},
	}
	svc := NewService(repo, security.NewTextSanitizer(), nil)

	if _, err := svc.FindNearby(context.Background(), []float64{30.5, 31.25}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRadius != 1000 {
		t.Errorf("radius = %v, want 1000", gotRadius)
	}
	if gotPoint.Latitude != 30.5 || gotPoint.Longitude != 31.25 {
		t.Errorf("point = %+v, want lat 30.5 lng 31.25", gotPoint)
	}
}
