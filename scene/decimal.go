package scene

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDecimal is returned when a coordinate is not a decimal number.
var ErrInvalidDecimal = errors.New("scene: invalid decimal")

// DecimalPrecision is the number of fraction digits kept when a decimal is
// produced by division.
const DecimalPrecision = 34

const maxExponent = 1000

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Decimal is an exact decimal coordinate. The text it was parsed from is kept
// so archives round-trip byte for byte. The zero value is 0.
type Decimal struct {
	text string
	rat  *big.Rat
}

// ParseDecimal parses a plain or exponent decimal such as "-1.25" or "3e-2".
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if exp := exponent(s); exp > maxExponent || exp < -maxExponent {
		return Decimal{}, fmt.Errorf("%w: exponent out of range in %q", ErrInvalidDecimal, s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return Decimal{text: s, rat: r}, nil
}

// MustDecimal is ParseDecimal for literals; it panics on error.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromInt returns the decimal for an integer.
func DecimalFromInt(v int64) Decimal {
	return Decimal{text: fmt.Sprint(v), rat: new(big.Rat).SetInt64(v)}
}

func decimalFromRat(r *big.Rat) Decimal {
	if r.IsInt() {
		return Decimal{text: r.Num().String(), rat: r}
	}
	text := r.FloatString(DecimalPrecision)
	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	if text == "-0" {
		text = "0"
	}
	// keep the value the text denotes, not the unrounded quotient
	return MustDecimal(text)
}

// Rat returns a copy of the exact value.
func (d Decimal) Rat() *big.Rat {
	if d.rat == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(d.rat)
}

func (d Decimal) String() string {
	if d.text == "" {
		return "0"
	}
	return d.text
}

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	if d.rat == nil {
		return 0
	}
	f, _ := d.rat.Float64()
	return f
}

// Abs returns |d|.
func (d Decimal) Abs() Decimal {
	if d.rat == nil || d.rat.Sign() >= 0 {
		return d
	}
	return Decimal{text: strings.TrimPrefix(d.text, "-"), rat: new(big.Rat).Abs(d.rat)}
}

// Cmp compares d and e like big.Rat.Cmp.
func (d Decimal) Cmp(e Decimal) int {
	return d.Rat().Cmp(e.Rat())
}

// Mul returns d*e.
func (d Decimal) Mul(e Decimal) Decimal {
	return decimalFromRat(new(big.Rat).Mul(d.Rat(), e.Rat()))
}

// FractionDigits returns the number of digits after the point in the
// shortest plain notation of d, so 1.500 has one and 2e-3 has three.
func (d Decimal) FractionDigits() int {
	if d.rat == nil || d.rat.IsInt() {
		return 0
	}
	mantissa, exp := d.text, exponent(d.text)
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}
	digits := 0
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		digits = len(strings.TrimRight(mantissa[i+1:], "0"))
	}
	digits -= exp
	if digits < 0 {
		return 0
	}
	return digits
}

func exponent(s string) int {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return 0
	}
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return math.MaxInt
	}
	return exp
}

// Scaled returns d*10^digits truncated toward zero.
func (d Decimal) Scaled(digits int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r := d.Rat()
	num := new(big.Int).Mul(r.Num(), scale)
	return num.Quo(num, r.Denom())
}
