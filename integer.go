package fixed

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Raw-scale constants. The underlying integer of a [Decimal] equals its
// numeric value multiplied by Scale.
const (
	// Scale is the fixed scaling factor, 10^18.
	Scale uint64 = 1_000_000_000_000_000_000
	// HalfScale is Scale / 2, the round-to-nearest threshold used by
	// [Decimal.Mul].
	HalfScale uint64 = 500_000_000_000_000_000
)

var (
	uOne          = uint256.NewInt(1)
	uScale        = uint256.NewInt(Scale)
	uHalfScale    = uint256.NewInt(HalfScale)
	uDoubleScale  = uint256.NewInt(2 * Scale)
	uScaleSquared = uint256.MustFromDecimal("1000000000000000000000000000000000000") // 10^36

	uMinRaw = new(uint256.Int).Lsh(uOne, 255)      // raw bits of Min, -2^255
	uMaxMag = new(uint256.Int).Sub(uMinRaw, uOne)  // 2^255 - 1

	uMaxWholeRaw = func() *uint256.Int {
		var r uint256.Int
		r.Mod(uMaxMag, uScale)
		return new(uint256.Int).Sub(uMaxMag, &r)
	}()
	uMinWholeRaw = func() *uint256.Int {
		var r uint256.Int
		r.Mod(uMinRaw, uScale) // |Min| mod Scale
		z := new(uint256.Int).Sub(uMinRaw, &r)
		return z.Neg(z)
	}()

	// Largest magnitude whose product with Scale still fits the container,
	// which bounds the argument of [Decimal.Sqrt].
	uMaxSqrtInput = new(uint256.Int).Div(uMaxMag, uScale)

	uLog2E   = uint256.NewInt(1_442695040888963407) // log2(e), raw
	uLog2Ten = uint256.NewInt(3_321928094887362347) // log2(10), raw

	// Domain cutoffs of the exponentials, on the raw scale.
	uExpMaxInput  = uint256.MustFromDecimal("133084258667509499440")                     // ~ln(Max)
	uExpMinRaw    = negRawConst("41446531673892822322")                                  // exp underflows to zero below this
	uExp2MaxInput = uint256.MustFromDecimal("192000000000000000000")                     // 192, exclusive upper bound
	uExp2MinRaw   = negRawConst("59794705707972522261")                                  // exp2 underflows to zero below this
)

func negRawConst(mag string) *uint256.Int {
	z := uint256.MustFromDecimal(mag)
	return z.Neg(z)
}

// pow10 is a cache of powers of 10 on the raw scale, where pow10[k] = 10^k.
// pow10[18] is one unit; 10^76 is the largest power of ten below 2^255.
var pow10 = func() [77]uint256.Int {
	var t [77]uint256.Int
	t[0].SetUint64(1)
	ten := uint256.NewInt(10)
	for i := 1; i < len(t); i++ {
		t[i].Mul(&t[i-1], ten)
	}
	return t
}()

// exp2Factor[k] = round(2^64 * 2^(2^-(k+1))), the per-bit factors of the
// 192.64 binary exponential. The chain of [big.Float.Sqrt] calls is exactly
// rounded at 256-bit precision, so the accumulated error stays far below the
// final rounding step and every entry is the correctly rounded factor.
var exp2Factor = func() [64]uint256.Int {
	var t [64]uint256.Int
	f := new(big.Float).SetPrec(256).SetUint64(2)
	w := new(big.Float).SetPrec(256).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))
	half := new(big.Float).SetPrec(64).SetFloat64(0.5)
	g := new(big.Float).SetPrec(256)
	for i := range t {
		f.Sqrt(f)
		g.Mul(f, w)
		g.Add(g, half)
		n, _ := g.Int(nil)
		t[i].SetFromBig(n)
	}
	return t
}()

// isNeg reports whether x is negative when interpreted as two's complement.
func isNeg(x *uint256.Int) bool {
	return x.Sign() < 0
}

// mulDiv calculates ⌊x * y / d⌋ over unsigned magnitudes using a 512-bit
// intermediate and checks overflow. The divisor must be nonzero.
func mulDiv(x, y, d *uint256.Int) (z uint256.Int, ok bool) {
	_, overflow := z.MulDivOverflow(x, y, d)
	return z, !overflow
}

// mulDiv18 calculates x * y / Scale over unsigned magnitudes, rounding the
// quotient up when the remainder reaches HalfScale, and checks overflow.
func mulDiv18(x, y *uint256.Int) (z uint256.Int, ok bool) {
	if _, overflow := z.MulDivOverflow(x, y, uScale); overflow {
		return z, false
	}
	var r uint256.Int
	r.MulMod(x, y, uScale)
	if !r.Lt(uHalfScale) {
		if _, carry := z.AddOverflow(&z, uOne); carry {
			return z, false
		}
	}
	return z, true
}

// newDecimal reapplies a sign to an unsigned magnitude and checks that the
// result fits the signed 256-bit container.
func newDecimal(neg bool, mag *uint256.Int) (Decimal, bool) {
	if mag.Gt(uMaxMag) {
		return Decimal{}, false
	}
	var z uint256.Int
	z.Set(mag)
	if neg {
		z.Neg(&z)
	}
	return Decimal{raw: z}, true
}

// msb returns the index of the most significant set bit of x.
// msb assumes x is nonzero.
func msb(x *uint256.Int) uint {
	return uint(x.BitLen() - 1)
}

// scmp compares x and y as two's-complement signed integers.
func scmp(x, y *uint256.Int) int {
	switch {
	case x.Eq(y):
		return 0
	case x.Slt(y):
		return -1
	default:
		return 1
	}
}

// pow10Index reports whether x equals a cached power of ten and, if so,
// its exponent on the raw scale. The first probe estimates ⌊log10 x⌋ from
// the bit length (1233/4096 ≈ log10 2), which is at most one too small.
func pow10Index(x *uint256.Int) (int, bool) {
	if x.IsZero() {
		return 0, false
	}
	k := (x.BitLen() - 1) * 1233 >> 12
	if x.Eq(&pow10[k]) {
		return k, true
	}
	if k+1 < len(pow10) && x.Eq(&pow10[k+1]) {
		return k + 1, true
	}
	return 0, false
}

// toBigSigned converts a raw two's-complement value to a signed big.Int.
func toBigSigned(x *uint256.Int) *big.Int {
	if !isNeg(x) {
		return x.ToBig()
	}
	mag := new(uint256.Int).Abs(x)
	return new(big.Int).Neg(mag.ToBig())
}
