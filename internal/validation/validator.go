// Package validation はgo-playground/validator v10による入力構造体の検証を提供する。
//
// 検証はエンティティ構築およびストアアクセスの前に行い、失敗した場合は
// KindInvalidArgumentのmodel.APIErrorを返す。
// フィールド名はjsonタグの名前（nameEn、favoriteCuisines等）で報告する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/mealmap/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError は1フィールド分の検証エラー。
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// GetValidator はシングルトンのvalidatorインスタンスを返す。スレッドセーフ。
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// Struct は構造体を検証する。
// 検証に成功した場合はnil、失敗した場合はKindInvalidArgumentの*model.APIErrorを返す。
func Struct(s any) *model.APIError {
	fieldErrs := Fields(s)
	if len(fieldErrs) == 0 {
		return nil
	}

	messages := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		messages[i] = fe.Message
	}
	return model.NewValidationError(strings.Join(messages, "; "))
}

// Fields は構造体を検証し、フィールドごとのエラー一覧を返す。
func Fields(s any) []FieldError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	result := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		result[i] = FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return result
}

// jsonFieldName はjsonタグからフィールド名を取り出す。
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath はトップレベル構造体名を除いたフィールドパス（例: location.coordinates）を返す。
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func translateError(fe validator.FieldError) string {
	field := fieldPath(fe)
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%sは必須です", field)
	case "eq":
		return fmt.Sprintf("%sは%sである必要があります", field, param)
	case "len":
		return fmt.Sprintf("%sの要素数は%sである必要があります", field, param)
	case "min":
		if isString {
			return fmt.Sprintf("%sは%s文字以上である必要があります", field, param)
		}
		return fmt.Sprintf("%sは%s件以上である必要があります", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%sは%s文字以下である必要があります", field, param)
		}
		return fmt.Sprintf("%sは%s件以下である必要があります", field, param)
	case "latitude":
		return fmt.Sprintf("%sは-90〜90の緯度である必要があります", field)
	case "longitude":
		return fmt.Sprintf("%sは-180〜180の経度である必要があります", field)
	default:
		return fmt.Sprintf("%sが%s検証に失敗しました", field, fe.Tag())
	}
}
