package booking

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw     string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"8:00", 0, true},
		{"08:0", 0, true},
		{"08:60", 0, true},
		{"", 0, true},
		{"0800", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tc := range cases {
		minutes, err := ParseClock(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.raw, minutes)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tc.raw, err)
			continue
		}
		if minutes != tc.minutes {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.raw, minutes, tc.minutes)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for minutes := 0; minutes <= 1440; minutes += 30 {
		formatted := FormatClock(minutes)
		parsed, err := ParseClock(formatted)
		if err != nil {
			t.Fatalf("ParseClock(FormatClock(%d)) failed: %v", minutes, err)
		}
		if parsed != minutes {
			t.Fatalf("round trip %d -> %q -> %d", minutes, formatted, parsed)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"partial", "10:00", "11:00", "10:30", "11:30", true},
		{"touching end to start", "10:00", "11:00", "11:00", "12:00", false},
		{"touching start to end", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "20:00", "21:00", false},
		{"midnight end", "23:00", "24:00", "23:30", "24:00", true},
	}

	for _, tc := range cases {
		got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
		if got != tc.want {
			t.Errorf("%s: Overlaps(%s-%s, %s-%s) = %v, want %v",
				tc.name, tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
		}
		// Overlap is symmetric
		if Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd) != got {
			t.Errorf("%s: overlap is not symmetric", tc.name)
		}
	}
}
