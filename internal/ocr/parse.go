// Package ocr parses game quantities out of noisy OCR text.
//
// OCR output from the game HUD is unreliable frame to frame: digits get
// dropped, punctuation appears out of nowhere, whole reads come back empty.
// Every parser here either returns a fully-formed value or reports a miss;
// it never guesses. Callers fall back to their last known value on a miss.
package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunRe = regexp.MustCompile(`\d+`)
	timerRe    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Pair is two non-negative integers read from one region, e.g. minerals
// and gas off the resource bar.
type Pair struct {
	A, B int
}

// Ratio is a used/cap quantity, e.g. supply.
type Ratio struct {
	Used, Cap int
}

// Timer is an elapsed game time with its original display form retained.
type Timer struct {
	Seconds int
	Display string // original "MM:SS" text
}

// ParsePair scans text left to right and returns the first two maximal
// digit runs as integers. Interleaved non-digit characters are ignored.
// Returns false if fewer than two digit runs exist.
func ParsePair(text string) (Pair, bool) {
	runs := digitRunRe.FindAllString(text, 2)
	if len(runs) < 2 {
		return Pair{}, false
	}
	a, errA := strconv.Atoi(runs[0])
	b, errB := strconv.Atoi(runs[1])
	if errA != nil || errB != nil {
		// Digit runs longer than an int are garbage, not a reading.
		return Pair{}, false
	}
	return Pair{A: a, B: b}, true
}

// ParseRatio parses "used/cap" text. Exactly one '/' must be present;
// more than one is ambiguous and rejected. Non-digit characters are
// stripped from each side independently before conversion.
func ParseRatio(text string) (Ratio, bool) {
	if strings.Count(text, "/") != 1 {
		return Ratio{}, false
	}
	parts := strings.SplitN(text, "/", 2)
	used, ok := digitsOnly(parts[0])
	if !ok {
		return Ratio{}, false
	}
	cap, ok := digitsOnly(parts[1])
	if !ok {
		return Ratio{}, false
	}
	return Ratio{Used: used, Cap: cap}, true
}

// ParseTimer finds the first MM:SS pattern in text and converts it to an
// absolute second count, retaining the matched text for display.
func ParseTimer(text string) (Timer, bool) {
	m := timerRe.FindStringSubmatch(text)
	if m == nil {
		return Timer{}, false
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	return Timer{Seconds: minutes*60 + seconds, Display: m[0]}, true
}

// ParseClock converts a bare "MM:SS" display string back to seconds.
// Used when a stored display string has to be re-interpreted.
func ParseClock(display string) (int, bool) {
	t, ok := ParseTimer(display)
	if !ok {
		return 0, false
	}
	return t.Seconds, true
}

// digitsOnly strips non-digit characters and converts the remainder.
// Returns false if no digits survive.
func digitsOnly(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
