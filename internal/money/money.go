// Package money holds fixed-point amounts with two fraction digits, stored as
// int64 minor units so no float arithmetic touches a balance.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a textual amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid money amount")

// Amount is a quantity in minor units (1/100).
type Amount int64

// FromUnits converts whole units to an Amount.
func FromUnits(units int64) Amount {
	return Amount(units * 100)
}

// String formats the amount as "123.45".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Parse reads a decimal string with at most two fraction digits.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" || len(fracPart) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseUint(intPart, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	cents, err := strconv.ParseUint(fracPart, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if units > (1<<63-1-cents)/100 {
		return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
	}

	v := int64(units*100 + cents)
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// MarshalJSON renders the amount as a JSON number with two fraction digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both a JSON number and a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value implements driver.Valuer; DECIMAL columns receive the decimal text.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for DECIMAL/NUMERIC columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case int64:
		*a = FromUnits(v)
		return nil
	case float64:
		parsed, err := Parse(strconv.FormatFloat(v, 'f', 2, 64))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidAmount, src)
	}
}

func (a *Amount) scanString(s string) error {
	// NUMERIC(15,2) always comes back with two digits, but tolerate
	// drivers that trim trailing zeros or pad extra ones.
	if intPart, frac, ok := strings.Cut(s, "."); ok && len(frac) > 2 {
		if strings.Trim(frac[2:], "0") != "" {
			return fmt.Errorf("%w: %q has more than two fraction digits", ErrInvalidAmount, s)
		}
		s = intPart + "." + frac[:2]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
