package fixed

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Decimal type is a representation of a signed 59.18-decimal fixed-point
// number: a 256-bit two's-complement integer interpreted as raw / 10^18.
// The zero value is the numeric value of 0.
// It is an immutable value type, safe for concurrent use by multiple
// goroutines.
//
// Every operation either returns a correctly rounded in-range result or an
// error; no operation wraps around or produces a partial result.
type Decimal struct {
	raw uint256.Int // two's-complement signed integer, scaled by 10^18
}

// scaleDigits is the number of decimal digits after the point.
const scaleDigits = 18

// maxParseDigits caps the significant digits accepted by [Parse]; beyond it
// the coefficient cannot fit the container anyway.
const maxParseDigits = 77

var (
	// ErrDomain indicates an operand outside an operation's valid input
	// range, such as a negative argument to [Decimal.Sqrt] or a zero divisor.
	ErrDomain = errors.New("operand out of domain")
	// ErrOverflow indicates a result that does not fit the representable
	// range.
	ErrOverflow = errors.New("overflow")

	errDivisionByZero = fmt.Errorf("division by zero: %w", ErrDomain)
	errInvalidDecimal = fmt.Errorf("invalid decimal: %w", ErrDomain)
)

// Named values published for caller-side domain checks and formulas.
var (
	// Min is the smallest representable decimal, -2^255 / 10^18.
	Min = Decimal{raw: *uMinRaw}
	// Max is the largest representable decimal, (2^255 - 1) / 10^18.
	Max = Decimal{raw: *uMaxMag}
	// MinWhole is the smallest representable decimal with a zero fractional
	// part; it bounds [Decimal.Floor].
	MinWhole = Decimal{raw: *uMinWholeRaw}
	// MaxWhole is the largest representable decimal with a zero fractional
	// part; it bounds [Decimal.Ceil].
	MaxWhole = Decimal{raw: *uMaxWholeRaw}
	// E is Euler's number, truncated to 18 fractional digits.
	E = Decimal{raw: *uint256.NewInt(2_718281828459045235)}
	// Pi is the circle constant, truncated to 18 fractional digits.
	Pi = Decimal{raw: *uint256.NewInt(3_141592653589793238)}
	// Log2E is the binary logarithm of e, truncated to 18 fractional digits.
	Log2E = Decimal{raw: *uLog2E}

	log2Ten = Decimal{raw: *uLog2Ten}
	one     = Decimal{raw: *uScale}
)

// New returns a decimal equal to coef / 10^scale.
// For example, New(15, 1) returns 1.5.
//
// New returns an error if scale is less than 0 or greater than 18.
func New(coef int64, scale int) (Decimal, error) {
	if scale < 0 || scale > scaleDigits {
		return Decimal{}, fmt.Errorf("scale %v is out of range [0, %v]: %w", scale, scaleDigits, ErrDomain)
	}
	var mag uint256.Int
	if coef < 0 {
		mag.SetUint64(-uint64(coef))
	} else {
		mag.SetUint64(uint64(coef))
	}
	mag.Mul(&mag, &pow10[scaleDigits-scale])
	d, _ := newDecimal(coef < 0, &mag) // at most 2^63 * 10^18, always fits
	return d, nil
}

// MustNew is like [New] but panics if the decimal cannot be constructed.
// It simplifies safe initialization of global variables holding decimals.
func MustNew(coef int64, scale int) Decimal {
	d, err := New(coef, scale)
	if err != nil {
		panic(fmt.Sprintf("New(%v, %v) failed: %v", coef, scale, err))
	}
	return d
}

// NewFromInt64 converts an int64 to a decimal.
// The conversion is always exact.
func NewFromInt64(whole int64) Decimal {
	d, _ := New(whole, 0)
	return d
}

// NewFromBigInt converts a big.Int to a decimal.
//
// NewFromBigInt returns an error if the scaled value does not fit the
// representable range.
func NewFromBigInt(whole *big.Int) (Decimal, error) {
	var mag uint256.Int
	if overflow := mag.SetFromBig(new(big.Int).Abs(whole)); overflow {
		return Decimal{}, fmt.Errorf("converting %v: %w", whole, ErrOverflow)
	}
	if _, overflow := mag.MulOverflow(&mag, uScale); overflow {
		return Decimal{}, fmt.Errorf("converting %v: %w", whole, ErrOverflow)
	}
	d, ok := newDecimal(whole.Sign() < 0, &mag)
	if !ok {
		return Decimal{}, fmt.Errorf("converting %v: %w", whole, ErrOverflow)
	}
	return d, nil
}

// NewFromFloat64 converts a float64 to a (possibly rounded) decimal.
//
// NewFromFloat64 returns an error if f is NaN, an infinity, or out of range.
func NewFromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("converting %v: %w", f, ErrDomain)
	}
	d, err := Parse(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return Decimal{}, fmt.Errorf("converting %v: %w", f, err)
	}
	return d, nil
}

// Parse converts a string to a (possibly rounded) decimal.
// The input string must be in one of the following formats:
//
//	1.234
//	-1234
//	+0.000001234
//	1.83e5
//	0.22e-9
//
// The formal EBNF grammar for the supported format is as follows:
//
//	sign           ::= '+' | '-'
//	digits         ::= { '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9' }
//	significand    ::= digits '.' digits | '.' digits | digits '.' | digits
//	exponent       ::= ('e' | 'E') [sign] digits
//	numeric-string ::= [sign] significand [exponent]
//
// Fractional digits beyond the 18th are rounded using the half-to-even rule.
//
// Parse returns an error:
//   - if the string does not represent a valid decimal number;
//   - if the coefficient has more than 77 significant digits;
//   - if the exponent is less than -154 or greater than 154;
//   - if the value does not fit the representable range.
func Parse(s string) (Decimal, error) {
	var (
		pos     int
		width   = len(s)
		neg     bool
		coef    uint256.Int
		digs    int
		scale   int
		hascoef bool
		eneg    bool
		exp     int
		hasexp  bool
		hase    bool
	)

	// Sign
	switch {
	case pos == width:
		// skip
	case s[pos] == '-':
		neg = true
		pos++
	case s[pos] == '+':
		pos++
	}

	digit := func(c byte) error {
		if digs == 0 && c == '0' {
			return nil
		}
		if digs >= maxParseDigits {
			return fmt.Errorf("parsing %q: more than %v significant digits: %w", s, maxParseDigits, ErrOverflow)
		}
		var b uint256.Int
		b.SetUint64(uint64(c - '0'))
		coef.Mul(&coef, &pow10[1])
		coef.Add(&coef, &b)
		digs++
		return nil
	}

	// Integer part
	for pos < width && s[pos] >= '0' && s[pos] <= '9' {
		hascoef = true
		if err := digit(s[pos]); err != nil {
			return Decimal{}, err
		}
		pos++
	}

	// Fractional part
	if pos < width && s[pos] == '.' {
		pos++
		for pos < width && s[pos] >= '0' && s[pos] <= '9' {
			hascoef = true
			if scale >= 2*maxParseDigits {
				return Decimal{}, fmt.Errorf("parsing %q: too many fractional digits: %w", s, ErrDomain)
			}
			if err := digit(s[pos]); err != nil {
				return Decimal{}, err
			}
			scale++
			pos++
		}
	}

	// Exponential part
	if pos < width && (s[pos] == 'e' || s[pos] == 'E') {
		hase = true
		pos++
		switch {
		case pos == width:
			// skip
		case s[pos] == '-':
			eneg = true
			pos++
		case s[pos] == '+':
			pos++
		}
		for pos < width && s[pos] >= '0' && s[pos] <= '9' {
			exp = exp*10 + int(s[pos]-'0')
			if exp > 2*maxParseDigits {
				return Decimal{}, fmt.Errorf("parsing %q: exponent out of range: %w", s, ErrDomain)
			}
			hasexp = true
			pos++
		}
	}

	switch {
	case pos != width:
		return Decimal{}, fmt.Errorf("parsing %q: invalid character %q: %w", s, s[pos], errInvalidDecimal)
	case !hascoef:
		return Decimal{}, fmt.Errorf("parsing %q: no coefficient: %w", s, errInvalidDecimal)
	case hase && !hasexp:
		return Decimal{}, fmt.Errorf("parsing %q: no exponent digits: %w", s, errInvalidDecimal)
	}

	if eneg {
		scale = scale + exp
	} else {
		scale = scale - exp
	}

	// Rescale to 18 fractional digits.
	switch {
	case scale < scaleDigits:
		shift := scaleDigits - scale
		if shift >= len(pow10) {
			if !coef.IsZero() {
				return Decimal{}, fmt.Errorf("parsing %q: %w", s, ErrOverflow)
			}
		} else if _, overflow := coef.MulOverflow(&coef, &pow10[shift]); overflow {
			return Decimal{}, fmt.Errorf("parsing %q: %w", s, ErrOverflow)
		}
	case scale > scaleDigits:
		// Half-to-even rounding at the 18th fractional digit. The dropped
		// power of ten can exceed the container, so this runs on big.Int.
		b := coef.ToBig()
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale-scaleDigits)), nil)
		q, r := new(big.Int).QuoRem(b, div, new(big.Int))
		switch r.Lsh(r, 1).Cmp(div) {
		case 1:
			q.Add(q, big.NewInt(1))
		case 0:
			if q.Bit(0) == 1 {
				q.Add(q, big.NewInt(1))
			}
		}
		coef.SetFromBig(q)
	}

	// Min is the one value whose magnitude exceeds Max's.
	if neg && coef.Eq(uMinRaw) {
		return Min, nil
	}
	d, ok := newDecimal(neg, &coef)
	if !ok {
		return Decimal{}, fmt.Errorf("parsing %q: %w", s, ErrOverflow)
	}
	return d, nil
}

// MustParse is like [Parse] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding decimals.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse(%q) failed: %v", s, err))
	}
	return d
}

// String method implements the [fmt.Stringer] interface and returns a string
// representation of the decimal. The output uses plain positional notation
// with trailing fractional zeros trimmed, so Parse(d.String()) == d.
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (d Decimal) String() string {
	if d.raw.IsZero() {
		return "0"
	}
	var mag, q, r uint256.Int
	mag.Abs(&d.raw)
	q.Div(&mag, uScale)
	r.Mod(&mag, uScale)

	var b strings.Builder
	if isNeg(&d.raw) {
		b.WriteByte('-')
	}
	b.WriteString(q.Dec())
	if !r.IsZero() {
		frac := r.Dec()
		b.WriteByte('.')
		for i := len(frac); i < scaleDigits; i++ {
			b.WriteByte('0')
		}
		b.WriteString(strings.TrimRight(frac, "0"))
	}
	return b.String()
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
// Also see method [Parse].
//
// [encoding.TextUnmarshaler]: https://pkg.go.dev/encoding#TextUnmarshaler
func (d *Decimal) UnmarshalText(text []byte) error {
	var err error
	*d, err = Parse(string(text))
	return err
}

// MarshalText implements the [encoding.TextMarshaler] interface.
// Also see method [Decimal.String].
//
// [encoding.TextMarshaler]: https://pkg.go.dev/encoding#TextMarshaler
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Scan implements the [sql.Scanner] interface.
//
// [sql.Scanner]: https://pkg.go.dev/database/sql#Scanner
func (d *Decimal) Scan(value any) error {
	var err error
	switch value := value.(type) {
	case string:
		*d, err = Parse(value)
	case []byte:
		*d, err = Parse(string(value))
	case int64:
		*d = NewFromInt64(value)
	case float64:
		*d, err = NewFromFloat64(value)
	default:
		err = fmt.Errorf("converting from %T to %T is not supported", value, d)
	}
	return err
}

// Value implements the [driver.Valuer] interface.
//
// [driver.Valuer]: https://pkg.go.dev/database/sql/driver#Valuer
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Int64 returns the whole part of d truncated toward zero.
// The second return value is false if the whole part does not fit an int64.
func (d Decimal) Int64() (int64, bool) {
	b := d.BigInt()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// BigInt returns the whole part of d truncated toward zero.
func (d Decimal) BigInt() *big.Int {
	var q uint256.Int
	q.SDiv(&d.raw, uScale)
	return toBigSigned(&q)
}

// Float64 returns the nearest binary floating-point number to d.
func (d Decimal) Float64() float64 {
	f := new(big.Float).SetInt(toBigSigned(&d.raw))
	f.Quo(f, big.NewFloat(1e18))
	r, _ := f.Float64()
	return r
}

// Sign returns:
//
//	-1 if d < 0
//	 0 if d == 0
//	+1 if d > 0
func (d Decimal) Sign() int {
	return d.raw.Sign()
}

// IsZero returns true if d == 0.
func (d Decimal) IsZero() bool {
	return d.raw.IsZero()
}

// IsNeg returns true if d < 0.
func (d Decimal) IsNeg() bool {
	return d.raw.Sign() < 0
}

// IsPos returns true if d > 0.
func (d Decimal) IsPos() bool {
	return d.raw.Sign() > 0
}

// IsInt returns true if the fractional part of d is zero.
func (d Decimal) IsInt() bool {
	var r uint256.Int
	r.SMod(&d.raw, uScale)
	return r.IsZero()
}

// Cmp compares d and e numerically and returns:
//
//	-1 if d < e
//	 0 if d == e
//	+1 if d > e
func (d Decimal) Cmp(e Decimal) int {
	return scmp(&d.raw, &e.raw)
}

// Min returns the smaller of d and e.
func (d Decimal) Min(e Decimal) Decimal {
	if d.Cmp(e) <= 0 {
		return d
	}
	return e
}

// Max returns the larger of d and e.
func (d Decimal) Max(e Decimal) Decimal {
	if d.Cmp(e) >= 0 {
		return d
	}
	return e
}

// Neg returns d with the opposite sign.
//
// Neg returns an error if d is [Min], whose negation is unrepresentable.
func (d Decimal) Neg() (Decimal, error) {
	if d.raw.Eq(uMinRaw) {
		return Decimal{}, fmt.Errorf("negating %v: %w", d, ErrOverflow)
	}
	var z uint256.Int
	z.Neg(&d.raw)
	return Decimal{raw: z}, nil
}

// Abs returns the absolute value of d.
//
// Abs returns an error if d is [Min], whose magnitude is unrepresentable.
func (d Decimal) Abs() (Decimal, error) {
	if d.raw.Eq(uMinRaw) {
		return Decimal{}, fmt.Errorf("absolute value of %v: %w", d, ErrDomain)
	}
	var z uint256.Int
	z.Abs(&d.raw)
	return Decimal{raw: z}, nil
}

// Add returns the sum of d and e.
//
// Add returns an error if the sum does not fit the representable range.
func (d Decimal) Add(e Decimal) (Decimal, error) {
	var z uint256.Int
	z.Add(&d.raw, &e.raw)
	if isNeg(&d.raw) == isNeg(&e.raw) && isNeg(&z) != isNeg(&d.raw) {
		return Decimal{}, fmt.Errorf("computing %v + %v: %w", d, e, ErrOverflow)
	}
	return Decimal{raw: z}, nil
}

// Sub returns the difference of d and e.
//
// Sub returns an error if the difference does not fit the representable range.
func (d Decimal) Sub(e Decimal) (Decimal, error) {
	var z uint256.Int
	z.Sub(&d.raw, &e.raw)
	if isNeg(&d.raw) != isNeg(&e.raw) && isNeg(&z) != isNeg(&d.raw) {
		return Decimal{}, fmt.Errorf("computing %v - %v: %w", d, e, ErrOverflow)
	}
	return Decimal{raw: z}, nil
}

// Avg returns the arithmetic mean of d and e, rounded toward negative
// infinity. Each operand is halved with a sign-extending shift and a
// correction unit is added back when both are odd, so the mean never
// overflows the container.
func (d Decimal) Avg(e Decimal) Decimal {
	var z, t uint256.Int
	z.SRsh(&d.raw, 1)
	t.SRsh(&e.raw, 1)
	z.Add(&z, &t)
	t.And(&d.raw, &e.raw)
	t.And(&t, uOne)
	z.Add(&z, &t)
	return Decimal{raw: z}
}

// Floor returns d rounded toward negative infinity to a whole value.
//
// Floor returns an error if d is below [MinWhole].
func (d Decimal) Floor() (Decimal, error) {
	var r uint256.Int
	r.SMod(&d.raw, uScale)
	if r.IsZero() {
		return d, nil
	}
	if d.raw.Slt(uMinWholeRaw) {
		return Decimal{}, fmt.Errorf("flooring %v: %w", d, ErrOverflow)
	}
	var z uint256.Int
	z.Sub(&d.raw, &r)
	if isNeg(&d.raw) {
		z.Sub(&z, uScale)
	}
	return Decimal{raw: z}, nil
}

// Ceil returns d rounded toward positive infinity to a whole value.
//
// Ceil returns an error if d is above [MaxWhole].
func (d Decimal) Ceil() (Decimal, error) {
	var r uint256.Int
	r.SMod(&d.raw, uScale)
	if r.IsZero() {
		return d, nil
	}
	if d.raw.Sgt(uMaxWholeRaw) {
		return Decimal{}, fmt.Errorf("ceiling %v: %w", d, ErrOverflow)
	}
	var z uint256.Int
	z.Sub(&d.raw, &r)
	if !isNeg(&d.raw) {
		z.Add(&z, uScale)
	}
	return Decimal{raw: z}, nil
}

// Trunc returns the whole part of d, rounded toward zero.
func (d Decimal) Trunc() Decimal {
	var r, z uint256.Int
	r.SMod(&d.raw, uScale)
	z.Sub(&d.raw, &r)
	return Decimal{raw: z}
}

// Frac returns the fractional part of d. The result carries the sign of d,
// consistent with truncating division.
func (d Decimal) Frac() Decimal {
	var r uint256.Int
	r.SMod(&d.raw, uScale)
	return Decimal{raw: r}
}

// Mul returns the product of d and e, rounded half away from zero at the
// 18th fractional digit.
//
// Mul returns an error if the product does not fit the representable range.
func (d Decimal) Mul(e Decimal) (Decimal, error) {
	if d.raw.Eq(uMinRaw) || e.raw.Eq(uMinRaw) {
		return Decimal{}, fmt.Errorf("computing %v * %v: %w", d, e, ErrOverflow)
	}
	var dm, em uint256.Int
	dm.Abs(&d.raw)
	em.Abs(&e.raw)
	z, ok := mulDiv18(&dm, &em)
	if !ok {
		return Decimal{}, fmt.Errorf("computing %v * %v: %w", d, e, ErrOverflow)
	}
	f, ok := newDecimal(isNeg(&d.raw) != isNeg(&e.raw), &z)
	if !ok {
		return Decimal{}, fmt.Errorf("computing %v * %v: %w", d, e, ErrOverflow)
	}
	return f, nil
}

// Quo returns the quotient of d and e, truncated toward zero at the 18th
// fractional digit.
//
// Quo returns an error if:
//   - e is zero;
//   - either operand is [Min];
//   - the quotient does not fit the representable range.
func (d Decimal) Quo(e Decimal) (Decimal, error) {
	if e.raw.IsZero() {
		return Decimal{}, fmt.Errorf("computing %v / %v: %w", d, e, errDivisionByZero)
	}
	if d.raw.Eq(uMinRaw) || e.raw.Eq(uMinRaw) {
		return Decimal{}, fmt.Errorf("computing %v / %v: %w", d, e, ErrOverflow)
	}
	var dm, em uint256.Int
	dm.Abs(&d.raw)
	em.Abs(&e.raw)
	z, ok := mulDiv(&dm, uScale, &em)
	if !ok {
		return Decimal{}, fmt.Errorf("computing %v / %v: %w", d, e, ErrOverflow)
	}
	f, ok := newDecimal(isNeg(&d.raw) != isNeg(&e.raw), &z)
	if !ok {
		return Decimal{}, fmt.Errorf("computing %v / %v: %w", d, e, ErrOverflow)
	}
	return f, nil
}

// Inv returns 1 / d, truncated toward zero at the 18th fractional digit.
//
// Inv returns an error if d is zero.
func (d Decimal) Inv() (Decimal, error) {
	if d.raw.IsZero() {
		return Decimal{}, fmt.Errorf("inverting %v: %w", d, errDivisionByZero)
	}
	var mag, z uint256.Int
	mag.Abs(&d.raw)
	z.Div(uScaleSquared, &mag)
	f, _ := newDecimal(isNeg(&d.raw), &z) // at most 10^36, always fits
	return f, nil
}
