package utils

import (
	"fmt"
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	Text "github.com/linkdotnet/golang-stringbuilder"
)

var (
	decSizeThresholds = []int{9, 99, 999, 9999, 99999, 999999, 9999999, 99999999, 999999999, math.MaxInt32}

	digitOnes = [100]rune{}
	digitTens = [100]rune{}

	IntegerMinValueCharArray = []rune("-2147483648")
	LongMinValueCharArray    = []rune("-9223372036854775808")
)

func init() {
	for v := 0; v < 100; v++ {
		digitOnes[v] = rune('0' + v%10)
		digitTens[v] = rune('0' + v/10)
	}
}

// GetCodingLength returns the number of bits needed to represent every
// value in [0, characteristics-1] — i.e. ceil(log2(characteristics)), with
// the EXI convention that 0 or 1 possible values need 0 bits.
func GetCodingLength(characteristics int) int {
	if characteristics <= 1 {
		return 0
	}
	bits := 0
	for n := characteristics - 1; n > 0; n >>= 1 {
		bits++
	}
	return bits
}

func decimalDigitCount32(x int) int {
	for i, threshold := range decSizeThresholds {
		if x <= threshold {
			return i + 1
		}
	}
	return len(decSizeThresholds) + 1
}

func decimalDigitCount64(x int64) int {
	limit := int64(10)
	for digits := 1; digits < 19; digits++ {
		if x < limit {
			return digits
		}
		limit *= 10
	}
	return 19
}

// GetStringSize32 returns the number of characters needed to print i in
// base 10, including a leading '-' for negative values.
func GetStringSize32(i int) int {
	if i < 0 {
		return decimalDigitCount32(-i) + 1
	}
	return decimalDigitCount32(i)
}

// GetStringSize64 returns the number of characters needed to print l in
// base 10, including a leading '-' for negative values.
func GetStringSize64(l int64) int {
	if l == math.MinInt64 {
		return len(LongMinValueCharArray)
	}
	if l < 0 {
		return decimalDigitCount64(-l) + 1
	}
	return decimalDigitCount64(l)
}

// Itos32 writes the base-10 digits of i into buf, filling backwards from
// the position before *index and leaving *index pointing at the first
// character written. Panics on i == math.MinInt32 (negating it overflows).
func Itos32(i int, index *int, buf []rune) {
	var sign rune
	if i < 0 {
		sign = '-'
		i = -i
	}

	for i >= 100 {
		q, r := i/100, i%100
		*index--
		buf[*index] = digitOnes[r]
		*index--
		buf[*index] = digitTens[r]
		i = q
	}
	for {
		q, r := i/10, i%10
		*index--
		buf[*index] = rune('0' + r)
		i = q
		if i == 0 {
			break
		}
	}

	if sign != 0 {
		*index--
		buf[*index] = sign
	}
}

// Itos64 writes the base-10 digits of l into buf, filling backwards from
// the position before *index and leaving *index pointing at the first
// character written.
func Itos64(l int64, index *int, buf []rune) {
	if l == math.MinInt64 {
		for i := len(LongMinValueCharArray) - 1; i >= 0; i-- {
			*index--
			buf[*index] = LongMinValueCharArray[i]
		}
		return
	}

	var sign rune
	if l < 0 {
		sign = '-'
		l = -l
	}

	for l > math.MaxInt32 {
		q, r := l/100, l%100
		*index--
		buf[*index] = digitOnes[r]
		*index--
		buf[*index] = digitTens[r]
		l = q
	}

	// l now fits in an int and carries no sign of its own; Itos32 writes
	// only its digits, and the sign (if any) is prefixed below.
	Itos32(int(l), index, buf)

	if sign != 0 {
		*index--
		buf[*index] = sign
	}
}

// ItosReverse32 writes the base-10 digits of the non-negative integer i
// into buf starting at *index, least-significant digit first, returning
// the number of characters written.
func ItosReverse32(i int, index *int, buf []rune) int {
	pos := *index

	for i >= 100 {
		q, r := i/100, i%100
		buf[pos] = digitOnes[r]
		pos++
		buf[pos] = digitTens[r]
		pos++
		i = q
	}
	for {
		q, r := i/10, i%10
		buf[pos] = rune('0' + r)
		pos++
		i = q
		if i == 0 {
			break
		}
	}

	return pos - *index
}

// ItosReverse64 writes the base-10 digits of the non-negative integer i
// into buf starting at *index, least-significant digit first, and advances
// *index past the written digits.
func ItosReverse64(i int64, index *int, buf []rune) {
	for i > math.MaxInt32 {
		q, r := i/100, i%100
		buf[*index] = digitOnes[r]
		*index++
		buf[*index] = digitTens[r]
		*index++
		i = q
	}

	*index += ItosReverse32(int(i), index, buf)
}

// FQuotient is the greatest integer less than or equal to a/b (W3C XML
// Schema Part 2, Appendix E).
func FQuotient(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}

// FQuotientLoHi is FQuotient(temp-low, high-low).
func FQuotientLoHi(temp, low, high int) int {
	return FQuotient(temp-low, high-low)
}

// Modulo is a - FQuotient(a,b)*b.
func Modulo(a, b int) int {
	return a - FQuotient(a, b)*b
}

// ModuloLoHi is Modulo(a-low, high-low) + low.
func ModuloLoHi(a, low, high int) int {
	return Modulo(a-low, high-low) + low
}

// MaximumDayInMonth returns the last valid day number for the given
// (possibly unnormalized) year/month pair, per the Gregorian leap-year rule.
func MaximumDayInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default: // February
		if Modulo(year, 400) == 0 || (Modulo(year, 100) != 0 && Modulo(year, 4) == 0) {
			return 29
		}
		return 28
	}
}

// ReverseString returns s with its characters in reverse order.
func ReverseString(s string) string {
	return Text.NewStringBuilderFromString(s).Reverse().ToString()
}

// TryBigInt converts an exact-integer decimal to a big.Int, failing if x
// carries a fractional part.
func TryBigInt(x *apd.Decimal) (*big.Int, error) {
	var integral, frac apd.Decimal
	x.Modf(&integral, &frac)
	if !frac.IsZero() {
		return nil, fmt.Errorf("%s: has fractional part", x.String())
	}

	n, ok := big.NewInt(0).SetString(x.Text('f'), 10)
	if !ok {
		return nil, fmt.Errorf("%s is not an integer", x.String())
	}
	return n, nil
}

// BoolToInt converts a boolean to 0 or 1.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NumberOf7BitBlocksToRepresent32 returns how many 7-bit groups are needed
// to encode n as an EXI unsigned integer (1 for n == 0).
func NumberOf7BitBlocksToRepresent32(n uint) int {
	switch {
	case n < 1<<7:
		return 1
	case n < 1<<14:
		return 2
	case n < 1<<21:
		return 3
	case n < 1<<28:
		return 4
	default:
		return 5
	}
}

// NumberOf7BitBlocksToRepresent64 returns how many 7-bit groups are needed
// to encode l as an EXI unsigned integer (1 for l == 0).
func NumberOf7BitBlocksToRepresent64(l uint64) int {
	switch {
	case l <= 0xffffffff:
		return NumberOf7BitBlocksToRepresent32(uint(l))
	case l < 0x800000000:
		return 5
	case l < 0x40000000000:
		return 6
	case l < 0x2000000000000:
		return 7
	case l < 0x100000000000000:
		return 8
	case l < 0x8000000000000000:
		return 9
	default:
		return 10
	}
}
