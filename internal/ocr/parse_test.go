package ocr

import "testing"

func TestParsePair(t *testing.T) {
	tests := []struct {
		text string
		a, b int
		ok   bool
	}{
		{"850 324", 850, 324, true},
		{"  850   324  ", 850, 324, true},
		{"minerals: 850 gas: 324", 850, 324, true},
		{"85O 324 19", 85, 324, true}, // OCR misread 'O'; first two runs win
		{"1500/2000", 1500, 2000, true},
		{"12", 0, 0, false},
		{"", 0, 0, false},
		{"no digits here", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePair(tt.text)
		if ok != tt.ok {
			t.Errorf("ParsePair(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && (got.A != tt.a || got.B != tt.b) {
			t.Errorf("ParsePair(%q) = (%d, %d), want (%d, %d)", tt.text, got.A, got.B, tt.a, tt.b)
		}
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		text      string
		used, cap int
		ok        bool
	}{
		{"190/200", 190, 200, true},
		{"19O/2OO", 19, 2, true}, // letters stripped, digits remain
		{" 44 / 52 ", 44, 52, true},
		{"abc", 0, 0, false},
		{"1/2/3", 0, 0, false}, // ambiguous
		{"/200", 0, 0, false},  // empty side
		{"190/", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRatio(tt.text)
		if ok != tt.ok {
			t.Errorf("ParseRatio(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && (got.Used != tt.used || got.Cap != tt.cap) {
			t.Errorf("ParseRatio(%q) = (%d, %d), want (%d, %d)", tt.text, got.Used, got.Cap, tt.used, tt.cap)
		}
	}
}

func TestParseTimer(t *testing.T) {
	got, ok := ParseTimer("08:30 remaining")
	if !ok {
		t.Fatal("expected match")
	}
	if got.Seconds != 510 {
		t.Errorf("Seconds = %d, want 510", got.Seconds)
	}
	if got.Display != "08:30" {
		t.Errorf("Display = %q, want %q", got.Display, "08:30")
	}
}

func TestParseTimerVariants(t *testing.T) {
	tests := []struct {
		text    string
		seconds int
		ok      bool
	}{
		{"0:05", 5, true},
		{"12:00", 720, true},
		{"time 3:45 elapsed", 225, true},
		{"1234", 0, false}, // no colon pattern
		{"::", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTimer(tt.text)
		if ok != tt.ok {
			t.Errorf("ParseTimer(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && got.Seconds != tt.seconds {
			t.Errorf("ParseTimer(%q) = %d, want %d", tt.text, got.Seconds, tt.seconds)
		}
	}
}

func TestParseClock(t *testing.T) {
	if s, ok := ParseClock("10:30"); !ok || s != 630 {
		t.Errorf("ParseClock(10:30) = %d, %v", s, ok)
	}
	if _, ok := ParseClock("garbage"); ok {
		t.Error("ParseClock should fail on garbage")
	}
}
