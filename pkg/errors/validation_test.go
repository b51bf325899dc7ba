package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Go", false},
		{"valid with space", "Machine Learning", false},
		{"valid unicode", "Zürich", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	tests := []struct {
		name    string
		r       float64
		wantErr bool
	}{
		{"default", 0, false},
		{"positive", 12.5, false},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRadius("n", tt.r); (err != nil) != tt.wantErr {
				t.Errorf("ValidateRadius(%g) error = %v, wantErr %v", tt.r, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		name    string
		w       float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 4, false},
		{"negative", -0.5, true},
		{"nan", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateWeight("a", "b", tt.w); (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeight(%g) error = %v, wantErr %v", tt.w, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"valid", 800, 600, false},
		{"zero width", 0, 600, true},
		{"negative height", 800, -1, true},
		{"inf", math.Inf(1), 600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateDimensions(tt.w, tt.h); (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%g, %g) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	if err := ValidateCoordinate(1, -2); err != nil {
		t.Errorf("ValidateCoordinate(1, -2) = %v, want nil", err)
	}
	if err := ValidateCoordinate(math.NaN(), 0); err == nil {
		t.Error("ValidateCoordinate(NaN, 0) = nil, want error")
	}
}

func TestValidateFormat(t *testing.T) {
	valid := map[string]bool{"svg": true, "json": true}

	if err := ValidateFormat("SVG", valid); err != nil {
		t.Errorf("ValidateFormat(SVG) = %v, want nil", err)
	}
	err := ValidateFormat("pdf", valid)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(pdf) = %v, want %v", err, ErrCodeInvalidFormat)
	}
}
