package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/mealmap/internal/model"
	"github.com/hitoshi/mealmap/internal/recommend"
	"github.com/hitoshi/mealmap/internal/user"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	createFn func(ctx context.Context, in user.CreateInput) (*model.Result[*model.User], error)
	listFn   func(ctx context.Context) (*model.Result[[]*model.User], error)
}

func (m *mockUserService) Create(ctx context.Context, in user.CreateInput) (*model.Result[*model.User], error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) List(ctx context.Context) (*model.Result[[]*model.User], error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, errors.New("not implemented")
}

// mockFollowService はFollowServiceInterfaceのモック実装。
type mockFollowService struct {
	followFn func(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error)
}

func (m *mockFollowService) Follow(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error) {
	if m.followFn != nil {
		return m.followFn(ctx, userID, restaurantID)
	}
	return nil, errors.New("not implemented")
}

// mockRecommendService はRecommendServiceInterfaceのモック実装。
type mockRecommendService struct {
	recommendFn func(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error)
}

func (m *mockRecommendService) Recommend(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error) {
	if m.recommendFn != nil {
		return m.recommendFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

// --- POST /users ---

func TestUserHandler_Create_Success(t *testing.T) {
	svc := &mockUserService{
		createFn: func(ctx context.Context, in user.CreateInput) (*model.Result[*model.User], error) {
			if in.FullName != "Alice" {
				t.Errorf("FullName = %q, want Alice", in.FullName)
			}
			return model.Created(&model.User{
				ID:               "u-1",
				FullName:         in.FullName,
				FavoriteCuisines: in.FavoriteCuisines,
			}, "User created successfully"), nil
		},
	}
	h := NewUserHandler(svc, &mockFollowService{}, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"fullName":"Alice","favoriteCuisines":["Sushi"]}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "User created successfully" {
		t.Errorf("message = %q", env.Message)
	}
	var data userResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.FullName != "Alice" || len(data.FavoriteCuisines) != 1 {
		t.Errorf("data = %+v", data)
	}
}

func TestUserHandler_Create_InvalidJSON(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, &mockFollowService{}, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Create_ValidationError(t *testing.T) {
	svc := &mockUserService{
		createFn: func(ctx context.Context, in user.CreateInput) (*model.Result[*model.User], error) {
			return nil, model.NewValidationError("fullName is required")
		},
	}
	h := NewUserHandler(svc, &mockFollowService{}, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"favoriteCuisines":["Sushi"]}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeValidation)
	}
}

// --- GET /users ---

func TestUserHandler_List_Success(t *testing.T) {
	svc := &mockUserService{
		listFn: func(ctx context.Context) (*model.Result[[]*model.User], error) {
			return model.OK([]*model.User{
				{ID: "u-1", FullName: "Alice", FavoriteCuisines: []string{"Sushi"}},
				{ID: "u-2", FullName: "Bob", FavoriteCuisines: []string{"Pizza"}},
			}, "2 Users found"), nil
		},
	}
	h := NewUserHandler(svc, &mockFollowService{}, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "2 Users found" {
		t.Errorf("message = %q", env.Message)
	}
	var data []userResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(data) != 2 {
		t.Errorf("len(data) = %d, want 2", len(data))
	}
}

func TestUserHandler_List_Empty_ReturnsNotFound(t *testing.T) {
	svc := &mockUserService{
		listFn: func(ctx context.Context) (*model.Result[[]*model.User], error) {
			return nil, model.NewUsersNotFoundError()
		},
	}
	h := NewUserHandler(svc, &mockFollowService{}, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- POST /user-restaurants ---

func TestUserHandler_Follow_Success(t *testing.T) {
	follows := &mockFollowService{
		followFn: func(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error) {
			if userID != "u-1" || restaurantID != "r-1" {
				t.Errorf("Follow(%q, %q), want (u-1, r-1)", userID, restaurantID)
			}
			return model.Created(&model.Follow{ID: "f-1", UserID: userID, RestaurantID: restaurantID},
				"User followed restaurant successfully"), nil
		},
	}
	h := NewUserHandler(&mockUserService{}, follows, &mockRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/user-restaurants", strings.NewReader(`{"userId":"u-1","restaurantId":"r-1"}`))
	w := httptest.NewRecorder()

	h.Follow(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "User followed restaurant successfully" {
		t.Errorf("message = %q", env.Message)
	}
	var data followResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.UserID != "u-1" || data.RestaurantID != "r-1" {
		t.Errorf("data = %+v", data)
	}
}

func TestUserHandler_Follow_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid user id", model.NewInvalidUserIDError("x"), http.StatusBadRequest, model.ErrCodeInvalidUserID},
		{"user not found", model.NewUserNotFoundError("u-9"), http.StatusNotFound, model.ErrCodeUserNotFound},
		{"restaurant not found", model.NewRestaurantNotFoundError("r-9"), http.StatusNotFound, model.ErrCodeRestaurantNotFound},
		{"duplicate", model.NewDuplicateFollowError(), http.StatusBadRequest, model.ErrCodeDuplicateFollow},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			follows := &mockFollowService{
				followFn: func(ctx context.Context, userID, restaurantID string) (*model.Result[*model.Follow], error) {
					return nil, tt.err
				},
			}
			h := NewUserHandler(&mockUserService{}, follows, &mockRecommendService{})

			req := httptest.NewRequest(http.MethodPost, "/user-restaurants", strings.NewReader(`{"userId":"u","restaurantId":"r"}`))
			w := httptest.NewRecorder()

			h.Follow(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, w); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

// --- GET /users/recommendations/{userId} ---

func TestUserHandler_Recommendations_Success(t *testing.T) {
	rec := &mockRecommendService{
		recommendFn: func(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error) {
			if userID != "u-1" {
				t.Errorf("userID = %q, want u-1", userID)
			}
			return model.OK(&recommend.Recommendation{
				Peers: []recommend.Peer{{ID: "u-2", FullName: "Bob", FavoriteCuisines: []string{"Sushi"}}},
				Restaurants: []model.RestaurantSummary{
					{ID: "r-1", NameEn: "Sushi Bar", Slug: "sushi-bar"},
				},
			}, "1 Users found , 1 Restaurants recommended"), nil
		},
	}
	h := NewUserHandler(&mockUserService{}, &mockFollowService{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/users/recommendations/u-1", nil)
	req = withURLParam(req, "userId", "u-1")
	w := httptest.NewRecorder()

	h.Recommendations(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "1 Users found , 1 Restaurants recommended" {
		t.Errorf("message = %q", env.Message)
	}
	var data recommendationResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(data.Users) != 1 || data.Users[0].FullName != "Bob" {
		t.Errorf("users = %+v", data.Users)
	}
	if len(data.Restaurants) != 1 || data.Restaurants[0].Slug != "sushi-bar" {
		t.Errorf("restaurants = %+v", data.Restaurants)
	}
}

func TestUserHandler_Recommendations_EmptyRestaurantsRendersArray(t *testing.T) {
	rec := &mockRecommendService{
		recommendFn: func(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error) {
			return model.OK(&recommend.Recommendation{
				Peers: []recommend.Peer{{ID: "u-2", FullName: "Bob"}},
			}, "1 Users found , 0 Restaurants recommended"), nil
		},
	}
	h := NewUserHandler(&mockUserService{}, &mockFollowService{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/users/recommendations/u-1", nil)
	req = withURLParam(req, "userId", "u-1")
	w := httptest.NewRecorder()

	h.Recommendations(w, req)

	if !strings.Contains(w.Body.String(), `"restaurants":[]`) {
		t.Errorf("body = %s, want empty restaurants array", w.Body.String())
	}
}

func TestUserHandler_Recommendations_NoSimilarUsers(t *testing.T) {
	rec := &mockRecommendService{
		recommendFn: func(ctx context.Context, userID string) (*model.Result[*recommend.Recommendation], error) {
			return nil, model.NewNoSimilarUsersError()
		},
	}
	h := NewUserHandler(&mockUserService{}, &mockFollowService{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/users/recommendations/u-1", nil)
	req = withURLParam(req, "userId", "u-1")
	w := httptest.NewRecorder()

	h.Recommendations(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeNoSimilarUsers {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeNoSimilarUsers)
	}
}
