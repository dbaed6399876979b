package mathcast

import (
	"math/big"
	"strconv"
)

// Rational is an exact ratio of integers. It is never reduced, so equality is
// pairwise: 2/4 and 1/2 are different Rationals.
type Rational struct {
	Num int64
	Den int64
}

// R creates a Rational. Panics if d is zero.
func R(n, d int64) Rational {
	if d == 0 {
		panic(&ContractError{Op: "rational", Msg: "zero denominator"})
	}
	return Rational{Num: n, Den: d}
}

// One is the unit coefficient.
var One = Rational{Num: 1, Den: 1}

// Eq reports whether r and s have the same numerator and denominator.
func (r Rational) Eq(s Rational) bool {
	return r.Num == s.Num && r.Den == s.Den
}

// Is reports whether r is exactly n/d.
func (r Rational) Is(n, d int64) bool {
	return r.Num == n && r.Den == d
}

// Mul returns the product of r and all of rs, without reduction.
func (r Rational) Mul(rs ...Rational) Rational {
	for _, s := range rs {
		r.Num *= s.Num
		r.Den *= s.Den
	}
	return r
}

// Div returns r divided by s, without reduction.
func (r Rational) Div(s Rational) Rational {
	if s.Num == 0 {
		panic(&ContractError{Op: "rational", Msg: "division by zero"})
	}
	return Rational{Num: r.Num * s.Den, Den: r.Den * s.Num}
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{Num: -r.Num, Den: r.Den}
}

// Abs returns r with both parts made non-negative.
func (r Rational) Abs() Rational {
	if r.Num < 0 {
		r.Num = -r.Num
	}
	if r.Den < 0 {
		r.Den = -r.Den
	}
	return r
}

// Sign returns -1, 0, or 1 according to the sign of the value of r.
func (r Rational) Sign() int {
	switch {
	case r.Num == 0:
		return 0
	case (r.Num < 0) == (r.Den < 0):
		return 1
	default:
		return -1
	}
}

// Float64 returns the nearest float64 to the value of r.
func (r Rational) Float64() float64 {
	f, _ := r.Rat().Float64()
	return f
}

// Rat returns the value of r as a big.Rat.
func (r Rational) Rat() *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(r.Num), big.NewInt(r.Den))
}

// Int returns the numerator of r. Panics if the denominator is not 1.
func (r Rational) Int() int64 {
	if r.Den != 1 {
		panic(&ContractError{Op: "rational", Msg: "not an integer: " + r.String()})
	}
	return r.Num
}

// Value reports whether r has the value v, comparing as numbers rather than
// pairwise.
func (r Rational) Value(v int64) bool {
	return r.Num == v*r.Den
}

// String formats r as "n" or "n / d".
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return strconv.FormatInt(r.Num, 10) + " / " + strconv.FormatInt(r.Den, 10)
}

// Decimal formats r as a decimal literal when its denominator is a positive
// power of ten, keeping every digit: 150/100 is "1.50". ok is false for other
// denominators.
func (r Rational) Decimal() (s string, ok bool) {
	k := 0
	for d := r.Den; d != 1; d /= 10 {
		if d <= 0 || d%10 != 0 {
			return "", false
		}
		k++
	}
	if k == 0 {
		return "", false
	}
	n := new(big.Int).Abs(big.NewInt(r.Num)).String()
	for len(n) <= k {
		n = "0" + n
	}
	s = n[:len(n)-k] + "." + n[len(n)-k:]
	if r.Num < 0 {
		s = "-" + s
	}
	return s, true
}

// Tex formats r as "n" or "\frac{n}{d}".
func (r Rational) Tex() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return `\frac{` + strconv.FormatInt(r.Num, 10) + `}{` + strconv.FormatInt(r.Den, 10) + `}`
}
