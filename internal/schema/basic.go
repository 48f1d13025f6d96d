package schema

import (
	"strconv"
	"strings"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// PriceScale is the number of decimal places carried by price-like
// scaled integers (Price, Notional, Fee).
const PriceScale = 4

// PriceScaleFactor is 10^PriceScale.
const PriceScaleFactor = 10_000

// Price is a scaled integer with PriceScale decimal places.
type Price int64

// PriceFromFloat converts a float to a scaled price, rounding half away
// from zero.
func PriceFromFloat(v float64) Price {
	if v >= 0 {
		return Price(v*PriceScaleFactor + 0.5)
	}
	return Price(v*PriceScaleFactor - 0.5)
}

// Float64 converts the scaled price back to a float. Display only.
func (p Price) Float64() float64 {
	return float64(p) / PriceScaleFactor
}

func (p Price) String() string {
	return string(appendScaledInt(nil, int64(p), PriceScale))
}

// AppendString appends the decimal representation to buf.
func (p Price) AppendString(buf []byte) []byte {
	return appendScaledInt(buf, int64(p), PriceScale)
}

// Quantity is a signed contract count. Unlike prices it carries no scale.
type Quantity int64

// Notional is a scaled integer with PriceScale decimal places.
// price × quantity stays at PriceScale because Quantity is unscaled.
type Notional int64

// Float64 converts the scaled notional back to a float. Display only.
func (n Notional) Float64() float64 {
	return float64(n) / PriceScaleFactor
}

func (n Notional) String() string {
	return string(appendScaledInt(nil, int64(n), PriceScale))
}

// Fee is a scaled integer with PriceScale decimal places.
type Fee int64

// Float64 converts the scaled fee back to a float. Display only.
func (f Fee) Float64() float64 {
	return float64(f) / PriceScaleFactor
}

func (f Fee) String() string {
	return string(appendScaledInt(nil, int64(f), PriceScale))
}

// ParsePrice parses a decimal string like "4500.25" into a scaled Price
// without going through float64.
func ParsePrice(s string) (Price, error) {
	v, err := parseScaledInt(s, PriceScale)
	if err != nil {
		return 0, err
	}
	return Price(v), nil
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}

// parseScaledInt parses a decimal string into an integer scaled by
// 10^scale. Extra fractional digits are truncated.
func parseScaledInt(s string, scale int) (int64, error) {
	if s == "" {
		return 0, nil
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "multiple dots in %q", s)
	}

	sign := int64(1)
	if strings.HasPrefix(intPart, "-") {
		sign = -1
		intPart = intPart[1:]
	}

	var intVal int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse integer part of %q", s)
		}
		intVal = v
	}

	if len(fracPart) > scale {
		fracPart = fracPart[:scale]
	}
	var fracVal int64
	if fracPart != "" {
		v, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse fractional part of %q", s)
		}
		fracVal = v
		for i := len(fracPart); i < scale; i++ {
			fracVal *= 10
		}
	}

	multiplier := int64(1)
	for i := 0; i < scale; i++ {
		multiplier *= 10
	}

	return sign * (intVal*multiplier + fracVal), nil
}
