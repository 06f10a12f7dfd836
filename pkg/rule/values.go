package rule

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/urmzd/hubpanel/pkg/device"
)

// Coerce converts form text into a trigger value. Text whose trimmed form is
// non-empty and reads as a number becomes a float64; everything else stays a
// string. The hub compares by JSON type, so "42" must arrive as 42 and "ON"
// as "ON".
func Coerce(text string) any {
	if n, ok := parseNumber(text); ok {
		return n
	}
	return text
}

// parseNumber follows browser Number() parsing: surrounding whitespace is
// ignored, 0x/0o/0b prefixes are accepted unsigned, and anything that would
// not survive JSON encoding (NaN, ±Infinity) is rejected.
func parseNumber(text string) (float64, bool) {
	s := strings.TrimFunc(text, unicode.IsSpace)
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// FormatValue renders a trigger or action value back into form text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// StateKey is always offered as a trigger key.
const StateKey = "state"

// KeyDomain returns the trigger keys selectable for a device:
// {state} ∪ available_keys, deduplicated and sorted with state first.
func KeyDomain(d device.Device) []string {
	keys := []string{StateKey}
	rest := make([]string, 0, len(d.AvailableKeys))
	for _, k := range d.AvailableKeys {
		if k == "" || k == StateKey || slices.Contains(rest, k) {
			continue
		}
		rest = append(rest, k)
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is a 24h "HH:MM" time.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name and joins its alphanumeric runs with dashes.
func Slug(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	if s == "" {
		return "item"
	}
	return s
}

// NewID returns a readable unique id: the slugged name plus a random suffix.
func NewID(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return Slug(name) + "-" + suffix
}
