package format

import (
	"strings"
	"testing"
	"time"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{10 * time.Millisecond, "10ms"},
		{2 * time.Second, "2s"},
		{1500*time.Millisecond + 300*time.Microsecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{500 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{2 * time.Hour, "2h"},
		{time.Hour + 15*time.Minute, "1h15m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.eta, got, tt.want)
		}
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":         "",
		"7":        "7",
		"123":      "123",
		"1234":     "1,234",
		"123456":   "123,456",
		"25000000": "25,000,000",
		"-1234":    "-1,234",
		"-123":     "-123",
	}
	for in, want := range tests {
		if got := FormatNumberString(in); got != want {
			t.Errorf("FormatNumberString(%q) = %q, want %q", in, got, want)
		}
	}
	if got := FormatInt(1_000_000); got != "1,000,000" {
		t.Errorf("FormatInt = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	full := strings.Repeat("█", 10)
	empty := strings.Repeat("░", 10)
	tests := []struct {
		progress float64
		want     string
	}{
		{0, empty},
		{0.5, strings.Repeat("█", 5) + strings.Repeat("░", 5)},
		{1, full},
		{1.2, full},
		{-0.1, empty},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.progress, 10); got != tt.want {
			t.Errorf("ProgressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
	if ProgressBar(0.5, 0) != "" {
		t.Error("zero-length bar should be empty")
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	got := FormatProgressBarWithETA(0.5, 30*time.Second, 20)
	for _, want := range []string{"[", "]", "50.0%", "ETA: 30s"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q should contain %q", got, want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()

	ps := NewProgressState(2)
	ps.Update(0, 0.5)
	ps.Update(1, 1.5)
	ps.Update(7, 0.9)
	ps.Update(-1, 0.9)
	if avg := ps.CalculateAverage(); avg != 0.75 {
		t.Errorf("average = %v, want 0.75", avg)
	}
	if ps.Progress(1) != 1 || ps.Progress(9) != 0 {
		t.Errorf("Progress clamps and bounds-checks")
	}
	if NewProgressState(0).CalculateAverage() != 0 {
		t.Error("empty state should average 0")
	}
}

func TestProgressWithETA(t *testing.T) {
	t.Parallel()

	p := NewProgressWithETA(2)
	if p.GetETA() != 0 {
		t.Error("ETA before any progress should be 0")
	}
	avg, eta := p.UpdateWithETA(0, 0.25)
	if avg != 0.125 {
		t.Errorf("average = %v, want 0.125", avg)
	}
	if eta < 0 {
		t.Errorf("ETA should not be negative, got %v", eta)
	}

	p.progressRate = 0.1
	p.Update(1, 0.75)
	if eta := p.GetETA(); eta < 4*time.Second || eta > 6*time.Second {
		t.Errorf("ETA = %v, want about 5s", eta)
	}

	p.progressRate = 1e-9
	if eta := p.GetETA(); eta != maxETA {
		t.Errorf("ETA = %v, want capped at %v", eta, maxETA)
	}
}
