package oddsmath_test

import (
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/oddsmath"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"Even odds +100", 100, 2.0},
		{"Even odds -100", -100, 2.0},
		{"Positive odds +150", 150, 2.5},
		{"Positive odds +200", 200, 3.0},
		{"Negative odds -110", -110, 1.909090909},
		{"Negative odds -150", -150, 1.666666667},
		{"Negative odds -200", -200, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.AmericanToDecimal(tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("AmericanToDecimal(%d) = %f, want %f", tt.american, got, tt.want)
			}
		})
	}
}

func TestAmericanToDecimalZero(t *testing.T) {
	if _, err := oddsmath.AmericanToDecimal(0); err == nil {
		t.Error("expected error for American odds 0")
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
		want    int
	}{
		{"Even odds 2.0", 2.0, 100},
		{"Underdog 2.5", 2.5, 150},
		{"Underdog 3.0", 3.0, 200},
		{"Favorite 1.909", 1.909, -110},
		{"Favorite 1.667", 1.667, -150},
		{"Favorite 1.5", 1.5, -200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.DecimalToAmerican(tt.decimal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Allow ±1 for rounding
			if math.Abs(float64(got-tt.want)) > 1 {
				t.Errorf("DecimalToAmerican(%f) = %d, want %d", tt.decimal, got, tt.want)
			}
		})
	}
}

func TestAmericanDecimalRoundTrip(t *testing.T) {
	for _, american := range []int{100, 110, 150, 240, 355, 1000, -110, -120, -150, -200, -340, -1000} {
		decimal, err := oddsmath.AmericanToDecimal(american)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%d): %v", american, err)
		}

		back, err := oddsmath.DecimalToAmerican(decimal)
		if err != nil {
			t.Fatalf("DecimalToAmerican(%f): %v", decimal, err)
		}

		if math.Abs(float64(back-american)) > 1 {
			t.Errorf("round trip %d → %f → %d", american, decimal, back)
		}
	}
}

func TestAmericanToImpliedProbability(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"Even odds +100", 100, 0.50},
		{"Even odds -100", -100, 0.50},
		{"Favorite -110", -110, 0.5238},
		{"Heavy favorite -200", -200, 0.6667},
		{"Favorite -150", -150, 0.60},
		{"Underdog +150", 150, 0.40},
		{"Heavy underdog +300", 300, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.AmericanToImpliedProbability(tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("AmericanToImpliedProbability(%d) = %f, want %f", tt.american, got, tt.want)
			}
		})
	}
}

func TestProfitPerUnit(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"Plus money +150", 150, 1.5},
		{"Plus money +200", 200, 2.0},
		{"Even +100", 100, 1.0},
		{"Standard vig -110", -110, 0.9091},
		{"Favorite -150", -150, 0.6667},
		{"Heavy favorite -300", -300, 0.3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.ProfitPerUnit(tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("ProfitPerUnit(%d) = %f, want %f", tt.american, got, tt.want)
			}
		})
	}
}

func TestIsValidAmerican(t *testing.T) {
	valid := []int{100, -100, 110, -110, 2500}
	invalid := []int{0, 50, -50, 99, -99}

	for _, o := range valid {
		if !oddsmath.IsValidAmerican(o) {
			t.Errorf("IsValidAmerican(%d) = false, want true", o)
		}
	}
	for _, o := range invalid {
		if oddsmath.IsValidAmerican(o) {
			t.Errorf("IsValidAmerican(%d) = true, want false", o)
		}
	}
}
