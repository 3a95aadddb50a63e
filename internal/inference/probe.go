package inference

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of one probe: a value when Matched, nothing otherwise.
type Result struct {
	Value   string
	Matched bool
}

// NoMatch is the zero Result.
var NoMatch = Result{}

// Matched wraps a found value.
func Matched(value string) Result {
	return Result{Value: value, Matched: true}
}

// Probe is a single pattern-based attempt to extract one field from text.
type Probe func(text string) Result

// FirstMatch runs probes in order and returns the first match. Later probes are
// not evaluated once one succeeds.
func FirstMatch(text string, probes ...Probe) Result {
	for _, p := range probes {
		if r := p(text); r.Matched {
			return r
		}
	}
	return NoMatch
}

// captureProbe matches re against text and returns the given group, trimmed.
func captureProbe(re *regexp.Regexp, group int) Probe {
	return func(text string) Result {
		m := re.FindStringSubmatch(text)
		if m == nil || group >= len(m) {
			return NoMatch
		}
		v := strings.TrimSpace(m[group])
		if v == "" {
			return NoMatch
		}
		return Matched(v)
	}
}

// lengthGate accepts a probe result only when its rune length lies within
// [min, max]. A max of zero leaves the length unbounded above.
func lengthGate(p Probe, min, max int) Probe {
	return func(text string) Result {
		r := p(text)
		if !r.Matched {
			return NoMatch
		}
		n := utf8.RuneCountInString(r.Value)
		if n < min || (max > 0 && n > max) {
			return NoMatch
		}
		return r
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
