package models

import (
	"testing"
	"time"
)

func TestCohortDescriptors(t *testing.T) {
	for _, cohort := range AllCohorts() {
		t.Run(string(cohort), func(t *testing.T) {
			if !cohort.Valid() {
				t.Errorf("cohort %q not valid", cohort)
			}
			if cohort.Descriptor() == "" {
				t.Errorf("cohort %q has empty descriptor", cohort)
			}
		})
	}
}

func TestParseCohort(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"20-30", false},
		{"60+", false},
		{"40-50", false},
		{"18-25", true},
		{"", true},
		{"sixty", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCohort(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCohort(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		input      string
		wantErr    bool
		wantWindow bool
	}{
		{"week", false, true},
		{"month", false, true},
		{"six_month", false, true},
		{"combined", false, false},
		{"year", true, false},
		{"", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			source, err := ParseSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			_, isWindow := source.Window()
			if isWindow != tt.wantWindow {
				t.Errorf("ParseSource(%q).Window() ok = %v, want %v", tt.input, isWindow, tt.wantWindow)
			}
		})
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		window Window
		days   int
	}{
		{WindowWeek, 7},
		{WindowMonth, 30},
		{WindowSixMonth, 180},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			start := tt.window.Start(now)
			want := now.AddDate(0, 0, -tt.days)
			if !start.Equal(want) {
				t.Errorf("Start() = %v, want %v", start, want)
			}
		})
	}
}

func TestWindowSource(t *testing.T) {
	for _, w := range AllWindows() {
		source := w.Source()
		got, ok := source.Window()
		if !ok || got != w {
			t.Errorf("window %q round trip through source gave %q (ok=%v)", w, got, ok)
		}
	}
}
