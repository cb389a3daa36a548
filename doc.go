/*
Package fixed implements immutable signed 59.18-decimal fixed-point numbers.
It is designed for computations that must stay exact within a bounded range,
such as pricing curves, interest accrual, and on-chain style math reproduced
off-chain.

# Representation

[Decimal] is a struct with a single field: a 256-bit integer interpreted as
a two's-complement signed value scaled by 10^18.

The numerical value of a decimal is calculated as:

	raw / 10^18

where raw is the underlying signed integer. This gives 18 decimal digits
after the point and roughly 59 before it. Unlike floating-point decimals,
the scale is fixed: 1 and 1.0 have exactly one representation, and there
are no special values such as NaN, Infinity, or negative zero.

# Constraints

The representable range is the full signed 256-bit range, from [Min]
(about -5.79e58) to [Max] (about 5.79e58). [MinWhole] and [MaxWhole] are
the values of largest magnitude with a zero fractional part; they bound
[Decimal.Floor] and [Decimal.Ceil]. Values outside the range are rejected
with an error, never wrapped.

# Operations

Arithmetic is carried out on 256-bit integers with a 512-bit intermediate
for multiplication and division, so products never overflow silently:

 1. Operands are split into sign and magnitude.
 2. The magnitudes run through an exact wide multiply-divide.
 3. The sign is reapplied and the magnitude is checked against the range.

[Decimal.Mul] rounds half away from zero at the 18th fractional digit;
[Decimal.Quo] truncates toward zero. The transcendental operations
([Decimal.Log2], [Decimal.Exp2], and those derived from them) are iterative
binary approximations accurate to roughly 59 fractional bits; see each
method for its documented bound.

# Conversions

The package provides methods for converting decimals:

  - from/to string: [Parse], [Decimal.String].
  - from/to int64: [New], [NewFromInt64], [Decimal.Int64].
  - from/to big.Int: [NewFromBigInt], [Decimal.BigInt].
  - from/to float64: [NewFromFloat64], [Decimal.Float64].

# Errors

All methods are panic-free and pure. Failures are reported through two
sentinel errors, checkable with [errors.Is]:

  - [ErrDomain]: an operand is outside the operation's valid input range,
    for example a negative argument to [Decimal.Sqrt], a zero divisor, or
    [Min] passed to [Decimal.Abs].
  - [ErrOverflow]: the true mathematical result does not fit the
    representable range.

Two cases saturate instead of failing: [Decimal.Exp] and [Decimal.Exp2]
return an exact zero for arguments so negative that the true result would
round to zero at this precision.

Must variants ([MustNew], [MustParse], [Decimal.MustAdd], ...) panic on
error and exist to simplify initialization of globals and chained
expressions.
*/
package fixed
