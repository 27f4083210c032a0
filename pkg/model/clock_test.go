package model

import "testing"

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:00", 480, true},
		{"19:30", 1170, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"8:00", 0, false},
		{"08:60", 0, false},
		{"0800", 0, false},
		{"", 0, false},
		{"9am", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if got != tt.minutes {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.minutes)
		}
	}
}

func TestFormatClock_RoundTrips(t *testing.T) {
	for _, s := range []string{"00:00", "08:00", "12:05", "23:59"} {
		minutes, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", s, err)
		}
		if got := FormatClock(minutes); got != s {
			t.Errorf("FormatClock(ParseClock(%q)) = %q", s, got)
		}
	}
}

func TestSlotID_IsDeterministic(t *testing.T) {
	a := SlotID("655f1f77bcf86cd799439011", "2026-09-10", "09:00")
	b := SlotID("655f1f77bcf86cd799439011", "2026-09-10", "09:00")
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}
	if a != "655f1f77bcf86cd799439011_2026-09-10_09:00" {
		t.Errorf("unexpected id shape: %s", a)
	}
}
