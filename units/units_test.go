package units

import "testing"

func TestDistanceConversions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"cm to km", CmToKm, 500000, 5},
		{"m to km", MToKm, 5000, 5},
		{"ms to seconds", MsToSeconds, 61000, 61},
		{"cm/ms to m/s", CmPerMsToMPerS, 0.35, 3.5},
		{"cm to m", CmToM, 12345, 123.45},
	}

	for _, tt := range tests {
		got := tt.fn(tt.in)
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00"},
		{-5, "0:00:00"},
		{59, "0:00:59"},
		{61, "0:01:01"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{36000, "10:00:00"},
	}

	for _, tt := range tests {
		got := FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%v) = %q; want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDurationRoundTrip(t *testing.T) {
	for _, clock := range []string{"0:00:01", "0:59:59", "1:00:00", "2:34:56", "11:02:03"} {
		seconds, ok := ParseClock(clock)
		if !ok {
			t.Fatalf("ParseClock(%q) failed", clock)
		}
		if got := FormatDuration(float64(seconds)); got != clock {
			t.Errorf("round trip %q → %d → %q", clock, seconds, got)
		}
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{0, "0:00"},
		{-1, "0:00"},
		{1000.0 / 293, "4:53"}, // 293 s/km
		{2, "8:20"},            // 500 s/km
		{1000.0 / 59, "0:59"},
	}

	for _, tt := range tests {
		got := FormatPace(tt.speed)
		if got != tt.want {
			t.Errorf("FormatPace(%v) = %q; want %q", tt.speed, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"4:53", 293, true},
		{"0:04:53", 293, true},
		{"1:00:00", 3600, true},
		{"", 0, false},
		{"banana", 0, false},
		{"1:2:3:4", 0, false},
		{"-1:00", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseClock(%q) = (%d, %v); want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDropFraction(t *testing.T) {
	if got := DropFraction("4:53.2"); got != "4:53" {
		t.Errorf("DropFraction: got %q", got)
	}
	if got := DropFraction("4:53"); got != "4:53" {
		t.Errorf("DropFraction passthrough: got %q", got)
	}
}

func TestStandardizeClock(t *testing.T) {
	if got := StandardizeClock("42:10"); got != "0:42:10" {
		t.Errorf("StandardizeClock widen: got %q", got)
	}
	if got := StandardizeClock("1:42:10"); got != "1:42:10" {
		t.Errorf("StandardizeClock passthrough: got %q", got)
	}
}
