package geo

import "fmt"

// DMS field widths: latitude strings are DDMMSSss, longitude DDDMMSSss.
const (
	dmsLatWidth = 8
	dmsLngWidth = 9
)

// ParseError reports a malformed coordinate or feature input.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Raw, e.Reason)
}

// ParseDMS converts a fixed-width degree-minute-second digit string to
// decimal degrees. Latitude strings use the layout DDMMSSss, longitude
// DDDMMSSss; inputs shorter than the target width are right-padded with
// '0', so a truncated string silently changes magnitude — callers must
// supply full fixed-width strings. Digits beyond the target width extend
// the fractional seconds.
//
// Empty or non-numeric input fails with *ParseError.
func ParseDMS(raw string, longitude bool) (float64, error) {
	if raw == "" {
		return 0, &ParseError{Raw: raw, Reason: "empty coordinate"}
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, &ParseError{Raw: raw, Reason: "not a numeric digit string"}
		}
	}

	degWidth, target := 2, dmsLatWidth
	if longitude {
		degWidth, target = 3, dmsLngWidth
	}

	s := raw
	for len(s) < target {
		s += "0"
	}

	deg := digits(s[:degWidth])
	min := digits(s[degWidth : degWidth+2])
	sec := digits(s[degWidth+2 : degWidth+4])

	// Remaining digits form the fractional seconds: "ss" -> 0.ss
	frac := 0.0
	scale := 0.1
	for i := degWidth + 4; i < len(s); i++ {
		frac += float64(s[i]-'0') * scale
		scale /= 10
	}

	return deg + min/60.0 + (sec+frac)/3600.0, nil
}

func digits(s string) float64 {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return float64(n)
}
