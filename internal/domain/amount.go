package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a display-formatted amount such as "R$ 1.234,56",
// "1,234.56" or "-150" into a decimal.
//
// Every rune other than digits, '.', ',' and '-' is discarded first. A '-' is
// only accepted as the leading rune. Separator detection follows pt-BR, where
// ',' is the decimal separator and '.' groups thousands:
//
//   - both '.' and ',' present: the one occurring last is the decimal
//     separator, the other one is thousands grouping;
//   - only ',' present: a single one is decimal, repeated ones group;
//   - only '.' present: it groups when repeated or when exactly three digits
//     follow it ("1.500" is 1500), otherwise it is decimal ("10.5").
//
// Grouping separators are dropped and the decimal separator becomes '.'.
func ParseAmount(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	if strings.Contains(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: misplaced sign in %q", ErrInvalidAmount, raw)
	}

	sep := decimalSeparator(s)
	if sep != 0 && strings.Count(s, string(sep)) > 1 {
		return decimal.Zero, fmt.Errorf("%w: ambiguous separators in %q", ErrInvalidAmount, raw)
	}
	switch sep {
	case '.':
		s = strings.ReplaceAll(s, ",", "")
	case ',':
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", "")
	}
	if !strings.ContainsAny(s, "0123456789") {
		return decimal.Zero, fmt.Errorf("%w: no digits in %q", ErrInvalidAmount, raw)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// decimalSeparator picks the decimal separator of a digits-and-separators
// string, or 0 when the string has none.
func decimalSeparator(s string) rune {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			return '.'
		}
		return ','
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && len(s)-lastDot-1 != 3 {
			return '.'
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			return ','
		}
	}
	return 0
}

// AmountFromFloat converts a numeric amount, rejecting NaN and infinities.
func AmountFromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
	}
	return decimal.NewFromFloat(v), nil
}

// ResolveAmount turns an AmountInput into a decimal. A numeric value wins
// over text when both are present.
func ResolveAmount(in AmountInput) (decimal.Decimal, error) {
	if in.Value != nil {
		return AmountFromFloat(*in.Value)
	}
	return ParseAmount(in.Text)
}
