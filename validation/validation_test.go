package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/gostream/errors"
)

func TestValidatorMin(t *testing.T) {
	if v := New().Min("leaf_factor", 4, 1); v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}
	if v := New().Min("leaf_factor", 0, 1); !v.HasErrors() {
		t.Error("expected error below minimum")
	}
}

func TestValidatorRange(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{1, false}, {5, false}, {10, false}, {0, true}, {11, true},
	}
	for _, tc := range tests {
		v := New().Range("n", tc.value, 1, 10)
		if v.HasErrors() != tc.wantErr {
			t.Errorf("Range(%d): hasErrors = %v, want %v", tc.value, v.HasErrors(), tc.wantErr)
		}
	}
}

func TestValidatorPowerOfTwo(t *testing.T) {
	for value, want := range map[int]bool{1: true, 2: true, 64: true, 1024: true, 0: false, -2: false, 3: false, 96: false} {
		if got := !New().PowerOfTwo("n", value).HasErrors(); got != want {
			t.Errorf("PowerOfTwo(%d) valid = %v, want %v", value, got, want)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"json", "console"}
	if v := New().OneOf("format", "json", allowed); v.HasErrors() {
		t.Error("expected valid value")
	}
	v := New().OneOf("format", "xml", allowed)
	if !v.HasErrors() {
		t.Fatal("expected error for disallowed value")
	}
	if msg := v.Errors()[0].Message; !strings.Contains(msg, "json, console") {
		t.Errorf("message %q does not list allowed values", msg)
	}
}

func TestValidatorCustom(t *testing.T) {
	if v := New().Custom(true, "x", "bad"); v.HasErrors() {
		t.Error("expected no errors")
	}
	if v := New().Custom(false, "x", "bad"); !v.HasErrors() {
		t.Error("expected error")
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Min("a", 5, 1).Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := New().Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	appErr := New().Min("a", 0, 1).PowerOfTwo("b", 3).Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidArgument {
		t.Errorf("code = %s", appErr.Code)
	}
	want := []FieldError{{"a", "must be at least 1"}, {"b", "must be a power of two"}}
	if diff := cmp.Diff(want, appErr.Details["fields"]); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

type tuning struct {
	Parallelism int    `mapstructure:"parallelism" validate:"gte=0"`
	Interval    int    `mapstructure:"check_interval" validate:"pow2"`
	Mode        string `mapstructure:"mode" validate:"oneof=fast slow"`
	Nested      nested `mapstructure:"nested"`
}

type nested struct {
	Factor int `mapstructure:"factor" validate:"gte=1,lte=64"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(tuning{Parallelism: 0, Interval: 64, Mode: "fast", Nested: nested{Factor: 4}}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	err := Validate(tuning{Parallelism: -1, Interval: 48, Mode: "medium", Nested: nested{Factor: 0}})
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
	appErr, _ := errors.AsAppError(err)
	want := []FieldError{
		{"parallelism", "must be at least 0"},
		{"check_interval", "must be a power of two"},
		{"mode", "must be one of: fast slow"},
		{"nested.factor", "must be at least 1"},
	}
	if diff := cmp.Diff(want, appErr.Details["fields"]); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{"LeafFactor": "leaf_factor", "parallelism": "parallelism", "A": "a"} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
