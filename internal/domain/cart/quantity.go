package cart

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// ClampQuantity bounds q to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// ClampFloat treats zero and NaN as "not given" and truncates the result.
func ClampFloat(f float64) int {
	if math.IsNaN(f) || f < MinQuantity {
		return MinQuantity
	}
	if f > MaxQuantity {
		return MaxQuantity
	}
	return int(f)
}

// Quantity is a requested quantity that decodes leniently from JSON.
// Numbers, numeric strings and booleans are accepted; anything else
// (including null or a missing field) means 1.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = Quantity(coerceQuantity(b))
	return nil
}

// Int returns the quantity clamped to the allowed range.
func (q Quantity) Int() int {
	return ClampQuantity(int(q))
}

func coerceQuantity(b []byte) int {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return MinQuantity
	}

	switch x := v.(type) {
	case float64:
		return ClampFloat(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return MinQuantity
		}
		return ClampFloat(parseNumber(s))
	case bool:
		if x {
			return 1
		}
		return MinQuantity
	default:
		return MinQuantity
	}
}

// parseNumber reads s the way a browser's Number() does: decimal with an
// optional exponent, "Infinity", or an unsigned 0x/0o/0b integer. Anything
// else is NaN.
func parseNumber(s string) float64 {
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
			if errors.Is(err, strconv.ErrRange) {
				return math.Inf(1)
			}
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.ContainsAny(s, "xX") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}
