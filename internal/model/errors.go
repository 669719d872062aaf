// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind はAPIErrorの分類を表す。
type ErrorKind int

const (
	// KindInvalidArgument は不正な入力（ストアアクセス前に検出される）。
	KindInvalidArgument ErrorKind = iota + 1
	// KindNotFound は参照先エンティティまたは結果集合が存在しない。
	KindNotFound
	// KindConflict は一意性違反（重複slug、重複フォロー）。
	KindConflict
)

// String はErrorKindの名前を返す。
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string    // エラーコード
	Message  string    // エラーメッセージ
	Category string    // カテゴリ: validation, restaurant, user, follow, recommend
	Action   string    // ユーザー向け対処方法
	Kind     ErrorKind // エラー分類
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// StatusCode はエラー分類に対応するステータスコードを返す。
// 一意性違反は入力起因として400を返す。
func (e *APIError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// KindOf はerrがAPIErrorであればその分類を返す。それ以外は0を返す。
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidUserID       = "INVALID_USER_ID"
	ErrCodeInvalidRestaurantID = "INVALID_RESTAURANT_ID"
	ErrCodeInvalidLocation     = "INVALID_LOCATION"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUsersNotFound       = "USERS_NOT_FOUND"
	ErrCodeRestaurantNotFound  = "RESTAURANT_NOT_FOUND"
	ErrCodeRestaurantsNotFound = "RESTAURANTS_NOT_FOUND"
	ErrCodeNoSimilarUsers      = "NO_SIMILAR_USERS"
	ErrCodeDuplicateFollow     = "DUPLICATE_FOLLOW"
	ErrCodeDuplicateSlug       = "DUPLICATE_SLUG"
)

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
		Kind:     KindInvalidArgument,
	}
}

// NewInvalidUserIDError はユーザーID形式エラーを生成する。
func NewInvalidUserIDError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  fmt.Sprintf("ユーザーIDの形式が不正です: %q", userID),
		Category: "validation",
		Action:   "正しい形式のユーザーIDを指定してください。",
		Kind:     KindInvalidArgument,
	}
}

// NewInvalidRestaurantIDError はレストランID形式エラーを生成する。
func NewInvalidRestaurantIDError(restaurantID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRestaurantID,
		Message:  fmt.Sprintf("レストランIDの形式が不正です: %q", restaurantID),
		Category: "validation",
		Action:   "正しい形式のレストランIDを指定してください。",
		Kind:     KindInvalidArgument,
	}
}

// NewInvalidLocationError は位置情報エラーを生成する。
func NewInvalidLocationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLocation,
		Message:  fmt.Sprintf("位置情報が不正です: %s", reason),
		Category: "validation",
		Action:   "緯度は-90〜90、経度は-180〜180の範囲で [latitude, longitude] の形式で指定してください。",
		Kind:     KindInvalidArgument,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", userID),
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
		Kind:     KindNotFound,
	}
}

// NewUsersNotFoundError はユーザーが1件も登録されていない場合のエラーを生成する。
func NewUsersNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUsersNotFound,
		Message:  "ユーザーが登録されていません。",
		Category: "user",
		Action:   "先にユーザーを登録してください。",
		Kind:     KindNotFound,
	}
}

// NewRestaurantNotFoundError はレストランが見つからない場合のエラーを生成する。
func NewRestaurantNotFoundError(identifier string) *APIError {
	return &APIError{
		Code:     ErrCodeRestaurantNotFound,
		Message:  fmt.Sprintf("レストランが見つかりません: %s", identifier),
		Category: "restaurant",
		Action:   "レストランIDまたはslugを確認してください。",
		Kind:     KindNotFound,
	}
}

// NewRestaurantsNotFoundError は一覧取得で該当レストランがない場合のエラーを生成する。
// cuisineが空の場合は全件が0件であることを表す。
func NewRestaurantsNotFoundError(cuisine string) *APIError {
	msg := "レストランが登録されていません。"
	if cuisine != "" {
		msg = fmt.Sprintf("料理ジャンル %q のレストランが見つかりません。", cuisine)
	}
	return &APIError{
		Code:     ErrCodeRestaurantsNotFound,
		Message:  msg,
		Category: "restaurant",
		Action:   "条件を変えて再度お試しください。",
		Kind:     KindNotFound,
	}
}

// NewNoSimilarUsersError はお気に入り料理が重なるユーザーがいない場合のエラーを生成する。
// おすすめが存在しないことを表す名前付きの状態であり、内部エラーではない。
func NewNoSimilarUsersError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSimilarUsers,
		Message:  "お気に入り料理が共通するユーザーが見つからないため、おすすめはありません。",
		Category: "recommend",
		Action:   "お気に入り料理を追加すると、おすすめが表示される場合があります。",
		Kind:     KindNotFound,
	}
}

// NewDuplicateFollowError は既にフォロー済みのレストランを再度フォローしようとした場合のエラーを生成する。
func NewDuplicateFollowError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateFollow,
		Message:  "このユーザーは既にこのレストランをフォローしています。",
		Category: "follow",
		Action:   "フォローの重複登録はできません。",
		Kind:     KindConflict,
	}
}

// NewDuplicateSlugError はslugが既に使われている場合のエラーを生成する。
func NewDuplicateSlugError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSlug,
		Message:  fmt.Sprintf("slug %q のレストランは既に存在します。", slug),
		Category: "restaurant",
		Action:   "別のslugを指定してください。",
		Kind:     KindConflict,
	}
}
