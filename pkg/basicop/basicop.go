// Package basicop implements the saturating fixed-point operators used by the
// codec's bit-exact paths. Every operator follows the ITU basic-operator
// contract: 16-bit values are Q15 words, 32-bit values are Q31 accumulators,
// and any result outside the representable range saturates.
package basicop

import "math"

const (
	MaxInt16 int16 = 0x7fff
	MinInt16 int16 = -0x8000
	MaxInt32 int32 = 0x7fffffff
	MinInt32 int32 = -0x80000000
)

// Saturate clamps a 32-bit value to the 16-bit range.
func Saturate(l int32) int16 {
	if l > int32(MaxInt16) {
		return MaxInt16
	}
	if l < int32(MinInt16) {
		return MinInt16
	}
	return int16(l)
}

func sat32(l int64) int32 {
	if l > int64(MaxInt32) {
		return MaxInt32
	}
	if l < int64(MinInt32) {
		return MinInt32
	}
	return int32(l)
}

func Add(a, b int16) int16 { return Saturate(int32(a) + int32(b)) }

func Sub(a, b int16) int16 { return Saturate(int32(a) - int32(b)) }

func Abs(a int16) int16 {
	if a == MinInt16 {
		return MaxInt16
	}
	if a < 0 {
		return -a
	}
	return a
}

func Negate(a int16) int16 {
	if a == MinInt16 {
		return MaxInt16
	}
	return -a
}

// Shl shifts left with saturation; a negative shift is a right shift.
func Shl(a, n int16) int16 {
	if n < 0 {
		if n < -16 {
			n = -16
		}
		return Shr(a, -n)
	}
	r := int32(a) << uint(n)
	if (n > 15 && a != 0) || r != int32(int16(r)) {
		if a > 0 {
			return MaxInt16
		}
		return MinInt16
	}
	return int16(r)
}

// Shr is an arithmetic right shift; a negative shift is a left shift.
func Shr(a, n int16) int16 {
	if n < 0 {
		if n < -16 {
			n = -16
		}
		return Shl(a, -n)
	}
	if n >= 15 {
		if a < 0 {
			return -1
		}
		return 0
	}
	return a >> uint(n)
}

// Mult is the Q15 product a*b >> 15.
func Mult(a, b int16) int16 {
	return Saturate((int32(a) * int32(b)) >> 15)
}

// MultR is Mult with rounding.
func MultR(a, b int16) int16 {
	return Saturate((int32(a)*int32(b) + 0x4000) >> 15)
}

// LMult returns 2*a*b as a Q31 value.
func LMult(a, b int16) int32 {
	p := int32(a) * int32(b)
	if p == 0x40000000 {
		return MaxInt32
	}
	return p * 2
}

func LAdd(a, b int32) int32 { return sat32(int64(a) + int64(b)) }

func LSub(a, b int32) int32 { return sat32(int64(a) - int64(b)) }

func LMac(acc int32, a, b int16) int32 { return LAdd(acc, LMult(a, b)) }

func LMsu(acc int32, a, b int16) int32 { return LSub(acc, LMult(a, b)) }

func LNegate(a int32) int32 {
	if a == MinInt32 {
		return MaxInt32
	}
	return -a
}

func LAbs(a int32) int32 {
	if a == MinInt32 {
		return MaxInt32
	}
	if a < 0 {
		return -a
	}
	return a
}

// LShl shifts left with saturation; a negative shift is a right shift.
func LShl(a int32, n int16) int32 {
	if n <= 0 {
		if n < -32 {
			n = -32
		}
		return LShr(a, -n)
	}
	for ; n > 0; n-- {
		if a > 0x3fffffff {
			return MaxInt32
		}
		if a < -0x40000000 {
			return MinInt32
		}
		a *= 2
	}
	return a
}

// LShr is an arithmetic right shift; a negative shift is a left shift.
func LShr(a int32, n int16) int32 {
	if n < 0 {
		if n < -32 {
			n = -32
		}
		return LShl(a, -n)
	}
	if n >= 31 {
		if a < 0 {
			return -1
		}
		return 0
	}
	return a >> uint(n)
}

// LShrR is LShr rounding half up.
func LShrR(a int32, n int16) int32 {
	if n > 31 {
		return 0
	}
	out := LShr(a, n)
	if n > 0 && a&(int32(1)<<uint(n-1)) != 0 {
		out++
	}
	return out
}

func ExtractH(a int32) int16 { return int16(a >> 16) }

func ExtractL(a int32) int16 { return int16(a) }

// Round returns the rounded upper word of a.
func Round(a int32) int16 { return ExtractH(LAdd(a, 0x8000)) }

func DepositH(a int16) int32 { return int32(a) << 16 }

func DepositL(a int16) int32 { return int32(a) }

// NormS returns the left shift that normalizes a into [0x4000, 0x7fff]
// (or the negative mirror).
func NormS(a int16) int16 {
	if a == 0 {
		return 0
	}
	if a == -1 {
		return 15
	}
	if a < 0 {
		a = ^a
	}
	var n int16
	for a < 0x4000 {
		a <<= 1
		n++
	}
	return n
}

// NormL is NormS for 32-bit values.
func NormL(a int32) int16 {
	if a == 0 {
		return 0
	}
	if a == -1 {
		return 31
	}
	if a < 0 {
		a = ^a
	}
	var n int16
	for a < 0x40000000 {
		a <<= 1
		n++
	}
	return n
}

// DivS returns num/den in Q15 for 0 <= num <= den, den > 0.
func DivS(num, den int16) int16 {
	if num <= 0 || den <= 0 {
		return 0
	}
	if num >= den {
		return MaxInt16
	}
	lNum := int32(num)
	lDen := int32(den)
	var out int16
	for i := 0; i < 15; i++ {
		out <<= 1
		lNum <<= 1
		if lNum >= lDen {
			lNum -= lDen
			out++
		}
	}
	return out
}

// LExtract splits a into a double precision pair: hi is the upper word and lo
// the next 15 bits.
func LExtract(a int32) (hi, lo int16) {
	hi = ExtractH(a)
	lo = ExtractL(LMsu(LShr(a, 1), hi, 16384))
	return hi, lo
}

// LComp is the inverse of LExtract.
func LComp(hi, lo int16) int32 {
	return LMac(DepositH(hi), lo, 1)
}

// Mpy32x16 multiplies a double precision pair by a Q15 word.
func Mpy32x16(hi, lo, n int16) int32 {
	return LMac(LMult(hi, n), Mult(lo, n), 1)
}

// Mpy32 multiplies two double precision pairs.
func Mpy32(hi1, lo1, hi2, lo2 int16) int32 {
	l := LMult(hi1, hi2)
	l = LMac(l, Mult(hi1, lo2), 1)
	return LMac(l, Mult(lo1, hi2), 1)
}

// FromFloat converts v into a normalized Q15 mantissa and an exponent such
// that v ~= mant * 2^(exp-15). Zero yields (0, 0).
func FromFloat(v float64) (mant, exp int16) {
	if v == 0 || math.IsNaN(v) {
		return 0, 0
	}
	f, e := math.Frexp(v)
	m := math.Floor(f*32768 + 0.5)
	if m > 32767 {
		m = 32767
	}
	if m < -32768 {
		m = -32768
	}
	if e > 127 {
		e = 127
	}
	if e < -127 {
		return 0, 0
	}
	return int16(m), int16(e)
}
