package fixed

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Sqrt returns the square root of d, rounded toward zero, computed as the
// integer square root of the raw value rescaled by 10^18.
//
// Sqrt returns an error if:
//   - d is negative;
//   - d is greater than [Max] / 10^18, so the rescaled intermediate would
//     not fit the container.
func (d Decimal) Sqrt() (Decimal, error) {
	if d.raw.Sign() < 0 {
		return Decimal{}, fmt.Errorf("square root of %v: %w", d, ErrDomain)
	}
	if d.raw.Gt(uMaxSqrtInput) {
		return Decimal{}, fmt.Errorf("square root of %v: %w", d, ErrOverflow)
	}
	var p, z uint256.Int
	p.Mul(&d.raw, uScale)
	z.Sqrt(&p)
	return Decimal{raw: z}, nil
}

// GeoMean returns the geometric mean of d and e, the square root of their
// product, rounded toward zero. The raw product carries exactly one scale
// factor, so no rescaling happens before the root.
//
// GeoMean returns an error if:
//   - the operands have opposite signs;
//   - the product does not fit the representable range.
func (d Decimal) GeoMean(e Decimal) (Decimal, error) {
	if d.raw.IsZero() || e.raw.IsZero() {
		return Decimal{}, nil
	}
	if d.raw.Sign() != e.raw.Sign() {
		return Decimal{}, fmt.Errorf("geometric mean of %v and %v: %w", d, e, ErrDomain)
	}
	var dm, em, p uint256.Int
	dm.Abs(&d.raw)
	em.Abs(&e.raw)
	if _, overflow := p.MulOverflow(&dm, &em); overflow || p.Gt(uMaxMag) {
		return Decimal{}, fmt.Errorf("geometric mean of %v and %v: %w", d, e, ErrOverflow)
	}
	var z uint256.Int
	z.Sqrt(&p)
	return Decimal{raw: z}, nil
}

// PowUint returns d raised to the power n, computed by exponentiation by
// squaring over the magnitude with each step rounded like [Decimal.Mul].
// PowUint adopts the convention that 0 raised to 0 is 1.
//
// PowUint returns an error if any intermediate or the final magnitude does
// not fit the representable range.
func (d Decimal) PowUint(n uint64) (Decimal, error) {
	neg := isNeg(&d.raw) && n%2 == 1
	var base uint256.Int
	base.Abs(&d.raw)
	result := *uScale
	for m := n; m > 0; m >>= 1 {
		if m&1 == 1 {
			z, ok := mulDiv18(&result, &base)
			if !ok {
				return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, n, ErrOverflow)
			}
			result = z
		}
		if m > 1 {
			z, ok := mulDiv18(&base, &base)
			if !ok {
				return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, n, ErrOverflow)
			}
			base = z
		}
	}
	f, ok := newDecimal(neg, &result)
	if !ok {
		return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, n, ErrOverflow)
	}
	return f, nil
}

// Pow returns d raised to the power e, computed as 2^(log2(d) * e).
// If d is zero the result is 1 when e is zero and 0 otherwise.
//
// Pow returns an error if:
//   - d is negative (the logarithm is undefined there);
//   - any step of the log2, multiply, exp2 composition overflows.
func (d Decimal) Pow(e Decimal) (Decimal, error) {
	if d.raw.IsZero() {
		if e.raw.IsZero() {
			return one, nil
		}
		return Decimal{}, nil
	}
	if d.raw.Eq(uScale) || e.raw.IsZero() {
		return one, nil
	}
	if e.raw.Eq(uScale) {
		return d, nil
	}
	l, err := d.Log2()
	if err != nil {
		return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, e, err)
	}
	p, err := l.Mul(e)
	if err != nil {
		return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, e, err)
	}
	f, err := p.Exp2()
	if err != nil {
		return Decimal{}, fmt.Errorf("raising %v to %v: %w", d, e, err)
	}
	return f, nil
}

// Log2 returns the binary logarithm of d.
//
// Arguments below 1 are reduced through the identity log2(x) = -log2(1/x).
// The whole part is the index of the most significant bit of the integer
// quotient; the fractional part is recovered by iterative squaring of the
// mantissa, one bit per pass. The loop runs once per bit of HalfScale
// (59 passes), so results are approximations accurate to about 59
// fractional bits.
//
// Log2 returns an error if d is not positive.
func (d Decimal) Log2() (Decimal, error) {
	if d.raw.Sign() <= 0 {
		return Decimal{}, fmt.Errorf("binary logarithm of %v: %w", d, ErrDomain)
	}

	x := d.raw
	neg := x.Lt(uScale)
	if neg {
		var inv uint256.Int
		inv.Div(uScaleSquared, &x)
		x = inv
	}

	// Whole part.
	var q uint256.Int
	q.Div(&x, uScale)
	n := msb(&q)
	var result uint256.Int
	result.Mul(uScale, uint256.NewInt(uint64(n)))

	// Fractional part.
	var y uint256.Int
	y.Rsh(&x, n) // 1 <= y < 2 in scaled terms
	if !y.Eq(uScale) {
		var delta uint256.Int
		delta.Set(uHalfScale)
		for ; !delta.IsZero(); delta.Rsh(&delta, 1) {
			y.Mul(&y, &y)
			y.Div(&y, uScale)
			if !y.Lt(uDoubleScale) {
				result.Add(&result, &delta)
				y.Rsh(&y, 1)
			}
		}
	}

	f, _ := newDecimal(neg, &result) // at most ~255, always fits
	return f, nil
}

// Ln returns the natural logarithm of d, computed as log2(d) / log2(e).
//
// Ln returns an error if d is not positive. Its precision is bounded by
// [Decimal.Log2].
func (d Decimal) Ln() (Decimal, error) {
	l, err := d.Log2()
	if err != nil {
		return Decimal{}, fmt.Errorf("natural logarithm of %v: %w", d, ErrDomain)
	}
	return l.Quo(Log2E)
}

// Log10 returns the common logarithm of d. Every power of ten representable
// in the type, from 10^-18 through 10^58, short-circuits to an exact whole
// multiple of the scale with zero rounding error; all other arguments fall
// back to log2(d) / log2(10).
//
// Log10 returns an error if d is not positive.
func (d Decimal) Log10() (Decimal, error) {
	if d.raw.Sign() <= 0 {
		return Decimal{}, fmt.Errorf("common logarithm of %v: %w", d, ErrDomain)
	}
	if k, ok := pow10Index(&d.raw); ok {
		var mag uint256.Int
		var e uint64
		if k < scaleDigits {
			e = uint64(scaleDigits - k)
		} else {
			e = uint64(k - scaleDigits)
		}
		mag.Mul(uScale, uint256.NewInt(e))
		f, _ := newDecimal(k < scaleDigits, &mag)
		return f, nil
	}
	l, _ := d.Log2()
	return l.Quo(log2Ten)
}

// Exp2 returns the binary exponential of d.
//
// Negative arguments are computed through the identity 2^x = 1/2^(-x); below
// the cutoff where that inverse truncates to zero (about -59.794705708) the
// result saturates to an exact zero instead of failing. Non-negative
// arguments are converted to a 192.64 binary fixed-point intermediate and
// accumulated bit by bit with correctly rounded per-bit factors.
//
// Exp2 returns an error if d is 192 or above, where the result would exceed
// [Max].
func (d Decimal) Exp2() (Decimal, error) {
	if d.raw.Sign() < 0 {
		if d.raw.Slt(uExp2MinRaw) {
			return Decimal{}, nil
		}
		var mag, z uint256.Int
		mag.Abs(&d.raw)
		z.Div(uScaleSquared, exp2raw(&mag))
		return Decimal{raw: z}, nil
	}
	if !d.raw.Lt(uExp2MaxInput) {
		return Decimal{}, fmt.Errorf("binary exponential of %v: %w", d, ErrOverflow)
	}
	return Decimal{raw: *exp2raw(&d.raw)}, nil
}

// exp2raw computes 2^(x/Scale) on the raw scale for 0 <= x < 192*Scale.
// The argument is widened to 192.64 binary fixed point; the result starts
// at 2^191, absorbs one factor per set fractional bit, and is rescaled by
// the whole part at the end. All intermediates stay below 2^256.
func exp2raw(x *uint256.Int) *uint256.Int {
	var t uint256.Int
	t.Lsh(x, 64)
	t.Div(&t, uScale)
	whole := new(uint256.Int).Rsh(&t, 64).Uint64()
	frac := t.Uint64()

	r := new(uint256.Int).Lsh(uOne, 191)
	for i := 0; i < 64; i++ {
		if frac&(1<<(63-i)) != 0 {
			r.Mul(r, &exp2Factor[i])
			r.Rsh(r, 64)
		}
	}
	r.Mul(r, uScale)
	r.Rsh(r, uint(191-whole))
	return r
}

// Exp returns the natural exponential of d, computed as 2^(d * log2(e)).
//
// Below about -41.446531674 the result saturates to an exact zero, matching
// the underflow cutoff of [Decimal.Exp2].
//
// Exp returns an error if d is above ln(Max), about 133.084258668.
func (d Decimal) Exp() (Decimal, error) {
	if d.raw.Sign() < 0 {
		if d.raw.Slt(uExpMinRaw) {
			return Decimal{}, nil
		}
	} else if d.raw.Gt(uExpMaxInput) {
		return Decimal{}, fmt.Errorf("natural exponential of %v: %w", d, ErrOverflow)
	}
	var mag uint256.Int
	mag.Abs(&d.raw)
	mag.Mul(&mag, uLog2E)
	mag.Div(&mag, uScale)
	f, _ := newDecimal(isNeg(&d.raw), &mag) // at most 192, always fits
	return f.Exp2()
}
