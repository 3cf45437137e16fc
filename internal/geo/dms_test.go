package geo

import (
	"errors"
	"math"
	"testing"
)

func TestParseDMS(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		longitude bool
		expected  float64
	}{
		{
			name:     "full width latitude",
			raw:      "35412338",
			expected: 35 + 41.0/60 + 23.38/3600,
		},
		{
			name:      "full width longitude",
			raw:       "139461225",
			longitude: true,
			expected:  139 + 46.0/60 + 12.25/3600,
		},
		{
			name: "short latitude is right padded",
			// "348536" pads to "34853600": 34 deg 85 min 36 sec.
			// Minutes above 59 are carried through arithmetically, the
			// fixed-width rule does no range validation.
			raw:      "348536",
			expected: 34 + 85.0/60 + 36.0/3600,
		},
		{
			name:      "short longitude is right padded",
			raw:       "1394",
			longitude: true,
			expected:  139 + 40.0/60,
		},
		{
			name:     "extra digits extend fractional seconds",
			raw:      "3541233875",
			expected: 35 + 41.0/60 + 23.3875/3600,
		},
		{
			name:     "all zeros",
			raw:      "00000000",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDMS(tt.raw, tt.longitude)
			if err != nil {
				t.Fatalf("ParseDMS(%q) returned error: %v", tt.raw, err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ParseDMS(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestParseDMSInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "letters", raw: "35a12338"},
		{name: "sign prefix", raw: "-3541233"},
		{name: "decimal point", raw: "35.41233"},
		{name: "whitespace", raw: " 3541233"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDMS(tt.raw, false)
			if err == nil {
				t.Fatalf("ParseDMS(%q) expected error, got nil", tt.raw)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("ParseDMS(%q) error is %T, want *ParseError", tt.raw, err)
			}
		})
	}
}
