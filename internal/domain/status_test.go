package domain_test

import (
	"testing"

	"healthlog/internal/domain"
)

func TestBandClassify(t *testing.T) {
	band := domain.Band{Min: 70, Max: 100}

	tests := []struct {
		name  string
		value float64
		want  domain.Status
	}{
		{"min boundary inclusive", 70, domain.StatusNormal},
		{"max boundary inclusive", 100, domain.StatusNormal},
		{"mid range", 85, domain.StatusNormal},
		{"warning floor boundary", 63, domain.StatusWarning}, // 70*0.9
		{"just below min", 69.9, domain.StatusWarning},
		{"below warning floor", 62.9, domain.StatusCritical},
		{"far low", 50, domain.StatusCritical},
		{"just above max", 100.1, domain.StatusWarning},
		{"warning ceiling boundary", 120, domain.StatusWarning}, // 100*1.2
		{"above warning ceiling", 120.1, domain.StatusCritical},
		{"far high", 150, domain.StatusCritical},
		{"zero", 0, domain.StatusCritical},
		{"negative", -10, domain.StatusCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := band.Classify(tc.value); got != tc.want {
				t.Errorf("Classify(%v) = %q; want %q", tc.value, got, tc.want)
			}
		})
	}
}

// Once a value has crossed into critical it must stay critical as it moves
// further from the band in either direction.
func TestBandClassifyMonotonic(t *testing.T) {
	band := domain.Band{Min: 70, Max: 100}

	for v := 120.5; v < 500; v += 0.5 {
		if got := band.Classify(v); got != domain.StatusCritical {
			t.Fatalf("Classify(%v) = %q; want critical above max*1.2", v, got)
		}
	}
	for v := 62.5; v > -50; v -= 0.5 {
		if got := band.Classify(v); got != domain.StatusCritical {
			t.Fatalf("Classify(%v) = %q; want critical below min*0.9", v, got)
		}
	}
}

func TestWorstStatus(t *testing.T) {
	tests := []struct {
		a, b, want domain.Status
	}{
		{domain.StatusNormal, domain.StatusNormal, domain.StatusNormal},
		{domain.StatusNormal, domain.StatusWarning, domain.StatusWarning},
		{domain.StatusWarning, domain.StatusNormal, domain.StatusWarning},
		{domain.StatusWarning, domain.StatusCritical, domain.StatusCritical},
		{domain.StatusCritical, domain.StatusNormal, domain.StatusCritical},
	}
	for _, tc := range tests {
		if got := domain.WorstStatus(tc.a, tc.b); got != tc.want {
			t.Errorf("WorstStatus(%q, %q) = %q; want %q", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestClassifyPressure(t *testing.T) {
	th := domain.DefaultThresholds() // systolic 90-120, diastolic 60-80

	tests := []struct {
		name     string
		sys, dia float64
		want     domain.Status
	}{
		{"both normal", 110, 70, domain.StatusNormal},
		{"systolic warning", 130, 70, domain.StatusWarning}, // 120 < 130 <= 144
		{"diastolic warning", 110, 85, domain.StatusWarning},
		{"systolic critical wins", 200, 70, domain.StatusCritical},
		{"diastolic critical wins", 110, 20, domain.StatusCritical},
		{"warning plus critical", 130, 20, domain.StatusCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := th.ClassifyPressure(tc.sys, tc.dia); got != tc.want {
				t.Errorf("ClassifyPressure(%v, %v) = %q; want %q", tc.sys, tc.dia, got, tc.want)
			}
		})
	}
}
