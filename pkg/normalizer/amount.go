package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedAmount is returned when an amount has no leading numeral or the
// numeral runs on into more digits ("1-2 lb", "1.5.2 oz").
var ErrMalformedAmount = errors.New("malformed amount")

var amountPattern = regexp.MustCompile(`^\s*(\d+-\d+/\d+|\d+/\d+|\d*\.\d+|\d+)\s*(\S*)`)

// Quantity is a parsed amount in its canonical unit.
type Quantity struct {
	Value float64
	Unit  string
}

// String formats the quantity as "<number> <unit>", e.g. "2.0 lbs".
func (q Quantity) String() string {
	if q.Unit == "" {
		return formatNumber(q.Value)
	}
	return formatNumber(q.Value) + " " + q.Unit
}

// ParseAmount reads the leading numeral of text (decimal, "a/b" or "w-a/b"),
// converts its unit to pounds or gallons where possible and multiplies by scale.
func ParseAmount(text string, scale float64) (Quantity, error) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrMalformedAmount, text)
	}

	value, err := parseNumeral(m[1])
	if err != nil || runOnNumeral(m[2]) {
		return Quantity{}, fmt.Errorf("%w: %q", ErrMalformedAmount, text)
	}

	unit := unitToken(m[2])
	if info, ok := units[unit]; ok {
		return Quantity{Value: value * info.factor * scale, Unit: info.canonical}, nil
	}
	return Quantity{Value: value * scale, Unit: unit}, nil
}

// NormalizeAmount is ParseAmount formatted as text.
func NormalizeAmount(text string, scale float64) (string, error) {
	q, err := ParseAmount(text, scale)
	if err != nil {
		return "", err
	}
	return q.String(), nil
}

func parseNumeral(s string) (float64, error) {
	whole := 0.0
	if i := strings.IndexByte(s, '-'); i >= 0 {
		w, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, err
		}
		whole = w
		s = s[i+1:]
	}

	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, err
		}
		den, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, errors.New("zero denominator")
		}
		return whole + num/den, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return whole + v, nil
}

// runOnNumeral reports whether the text after a numeral continues it, as in
// the "-2" of a "1-2" range.
func runOnNumeral(rest string) bool {
	rest = strings.TrimLeft(rest, "-/.")
	return rest != "" && rest[0] >= '0' && rest[0] <= '9'
}

// unitToken lower-cases a unit word and drops trailing punctuation ("lb." -> "lb").
func unitToken(s string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimRight(s, ".,;:)"), "-"))
}

func isUnit(token string) bool {
	_, ok := units[unitToken(token)]
	return ok
}

func isNumeral(token string) bool {
	m := amountPattern.FindStringSubmatch(token)
	return m != nil && m[2] == ""
}

// formatNumber prints the shortest representation with at least one decimal place.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
