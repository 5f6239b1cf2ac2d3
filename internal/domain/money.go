package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinorUnitsPerMajor is the number of minor units (cents) in one major unit.
const MinorUnitsPerMajor = 100

// ErrInvalidMoney is returned when a decimal amount cannot be represented
// exactly in minor units.
var ErrInvalidMoney = errors.New("invalid money amount")

// Money is a currency amount in minor units. All arithmetic is integer-only.
type Money int64

// ParseMoney parses a decimal string such as "40", "40.5" or "40.25" into
// minor units without going through floating point.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, ErrInvalidMoney
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidMoney)
	}
	if hasFrac && frac == "" {
		return 0, ErrInvalidMoney
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidMoney
	}
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || major < 0 {
		return 0, ErrInvalidMoney
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || minor < 0 {
		return 0, ErrInvalidMoney
	}
	if major > (1<<63-1-minor)/MinorUnitsPerMajor {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidMoney)
	}
	total := major*MinorUnitsPerMajor + minor
	if neg {
		total = -total
	}
	return Money(total), nil
}

// Percent returns the floored share of m, pct in whole percent from 0 to
// 100. The whole hundreds and the remainder are scaled separately so large
// totals cannot overflow.
func (m Money) Percent(pct int64) Money {
	v := int64(m)
	return Money(v/100*pct + v%100*pct/100)
}

// String renders m as a decimal amount with two fractional digits.
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/MinorUnitsPerMajor, v%MinorUnitsPerMajor)
}

// MarshalJSON encodes m as a JSON number in major units, e.g. 40.25.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
