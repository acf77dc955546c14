package parse

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// Registration marks: a nationality prefix, optional dash, then the mark
	// (N172SP, G-ABCD, C-FABC, D-EFGH, JA801A).
	tailRe = regexp.MustCompile(`^[A-Z0-9]{1,3}-?[A-Z0-9]{1,5}$`)
	// ICAO location indicators are four letters; three-character FAA
	// identifiers such as 3W5 or KB1 are accepted for private fields.
	airportRe = regexp.MustCompile(`^(?:[A-Z]{4}|[A-Z0-9]{3})$`)
)

// TailNumber normalises a raw registration mark to upper case without spaces.
func TailNumber(raw string) (string, error) {
	s := strings.ToUpper(spaceRe.ReplaceAllString(strings.TrimSpace(raw), ""))
	if !tailRe.MatchString(s) {
		return "", fmt.Errorf("invalid tail number: %q", raw)
	}
	return s, nil
}

// Airport normalises an airport identifier.
func Airport(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !airportRe.MatchString(s) {
		return "", fmt.Errorf("invalid airport identifier: %q", raw)
	}
	return s, nil
}

// Initials derives avatar initials from a person's name: the first letter of
// the first and last words, or of the only word.
func Initials(name string) (string, error) {
	parts := strings.Fields(spaceRe.ReplaceAllString(name, " "))
	if len(parts) == 0 {
		return "", fmt.Errorf("cannot derive initials from empty name")
	}

	first, _ := utf8.DecodeRuneInString(parts[0])
	initials := string(unicode.ToUpper(first))
	if len(parts) >= 2 {
		last, _ := utf8.DecodeRuneInString(parts[len(parts)-1])
		initials += string(unicode.ToUpper(last))
	}
	return initials, nil
}
