package errors

import (
	"strings"
	"testing"
)

type sample struct {
	Name  string   `validate:"required"`
	Kind  string   `validate:"omitempty,oneof=a b"`
	Items []string `validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr []string
	}{
		{"Valid", sample{Name: "x", Kind: "a", Items: []string{"i"}}, nil},
		{"MissingName", sample{Items: []string{"i"}}, []string{"Name is required"}},
		{"BadKind", sample{Name: "x", Kind: "z", Items: []string{"i"}}, []string{"Kind must be one of: a b"}},
		{"Several", sample{Kind: "z"}, []string{"Name is required", "Kind must be one of", "Items must have at least 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if !Is(err, ErrCodeInvalidInput) {
				t.Fatalf("ValidateStruct() = %v, want INVALID_INPUT", err)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("ValidateStruct() = %q, want it to contain %q", err, want)
				}
			}
		})
	}
}
