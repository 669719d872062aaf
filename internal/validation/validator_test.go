package validation

import (
	"strings"
	"testing"

	"github.com/hitoshi/mealmap/internal/model"
)

type sampleRequest struct {
	Name     string   `json:"fullName" validate:"required"`
	Cuisines []string `json:"favoriteCuisines" validate:"required,min=1,max=3,dive,required"`
}

func TestStruct_Valid_ReturnsNil(t *testing.T) {
	req := sampleRequest{Name: "Omar Tamer", Cuisines: []string{"Burgers", "Asian"}}
	if err := Struct(&req); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStruct_MissingField_ReturnsInvalidArgument(t *testing.T) {
	req := sampleRequest{Cuisines: []string{"Burgers"}}

	err := Struct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Kind != model.KindInvalidArgument {
		t.Errorf("Kind = %v, want %v", err.Kind, model.KindInvalidArgument)
	}
	if !strings.Contains(err.Message, "fullName") {
		t.Errorf("message should use json field name, got %q", err.Message)
	}
}

func TestFields_ReportsEachFailure(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantTag   string
	}{
		{"空配列", sampleRequest{Name: "a", Cuisines: []string{}}, "favoriteCuisines", "min"},
		{"4件以上", sampleRequest{Name: "a", Cuisines: []string{"a", "b", "c", "d"}}, "favoriteCuisines", "max"},
		{"空文字要素", sampleRequest{Name: "a", Cuisines: []string{"a", ""}}, "favoriteCuisines[1]", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Fields(&tt.req)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
			if errs[0].Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", errs[0].Tag, tt.wantTag)
			}
		})
	}
}
