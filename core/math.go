package core

import "github.com/holiman/uint256"

// mulDiv computes floor(a*b/denom) without overflowing a uint64
// intermediate, widening through uint256.Int the way
// parsdao-pars/dex widens reserve-product math for the same reason.
// denom must be non-zero; a zero denominator here is a programming
// error in the caller, not a user-facing one (every call site below
// guards it first).
func mulDiv(a, b, denom uint64) uint64 {
	wa := uint256.NewInt(a)
	wb := uint256.NewInt(b)
	wa.Mul(wa, wb)
	wd := uint256.NewInt(denom)
	wa.Div(wa, wd)
	return wa.Uint64()
}

// mulDivUp is mulDiv rounding toward positive infinity instead of
// truncating. Unused by the spec's documented truncate-toward-zero
// convention (§1) but kept available for a host that needs a
// ceiling variant; currently unexercised by core itself.
func mulDivUp(a, b, denom uint64) uint64 {
	wa := uint256.NewInt(a)
	wb := uint256.NewInt(b)
	wa.Mul(wa, wb)
	wd := uint256.NewInt(denom)
	rem := new(uint256.Int)
	wa.DivMod(wa, wd, rem)
	if !rem.IsZero() {
		wa.AddUint64(wa, 1)
	}
	return wa.Uint64()
}

// widenedProduct returns a*b as a uint256, used where the product
// itself (not a*b/denom) needs to be compared or cached, e.g. k_last.
func widenedProduct(a, b uint64) *uint256.Int {
	wa := uint256.NewInt(a)
	wb := uint256.NewInt(b)
	return wa.Mul(wa, wb)
}

// productAtLeast reports whether a*b >= prior, both sides widened so
// the comparison never overflows a uint64 accumulator. A helper for
// checking the P1 k-monotone invariant; nothing in core calls it.
func productAtLeast(a, b uint64, prior *uint256.Int) bool {
	return widenedProduct(a, b).Cmp(prior) >= 0
}

// isqrt returns floor(sqrt(n)) via Newton's method: seed the estimate
// at n, then repeatedly tighten y = (x + n/x)/2 until it stops
// decreasing, returning the last non-increasing estimate x.
func isqrt(n uint64) uint64 {
	return isqrt256(uint256.NewInt(n)).Uint64()
}

// geometricMean returns floor(sqrt(a*b)) over a widened product,
// used to mint the initial share count of a freshly seeded pool.
func geometricMean(a, b uint64) uint64 {
	return isqrt256(widenedProduct(a, b)).Uint64()
}

// isqrt256 is isqrt over an already-widened uint256 input, used by
// geometricMean where a*b may itself exceed a uint64.
func isqrt256(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		return new(uint256.Int)
	}
	two := uint256.NewInt(2)
	x := new(uint256.Int).Set(n)
	y := new(uint256.Int).Add(x, uint256.NewInt(1))
	y.Div(y, two)
	for y.Cmp(x) < 0 {
		x.Set(y)
		y.Div(n, x)
		y.Add(y, x)
		y.Div(y, two)
	}
	return x
}

// absDiff returns the absolute difference of two uint64 values.
func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
