package core

import "github.com/holiman/uint256"

// Slippage, price-impact, and deadline enforcement. Pure functions —
// no pool or position state — so a router can compose them freely
// around any quote.

// CalculateMinOutput returns the minimum acceptable output for a
// trade expected to return `expected`, tolerating up to `slipBps` of
// downside. Fails if slipBps exceeds MaxSlippageBps.
func CalculateMinOutput(expected uint64, slipBps uint64) (uint64, error) {
	if slipBps > MaxSlippageBps {
		return 0, ErrInvalidSlippageTolerance
	}
	cut := mulDiv(expected, slipBps, BPSDenominator)
	return expected - cut, nil
}

// CalculateMaxInput returns the maximum acceptable input for a trade
// expected to cost `expected`, tolerating up to `slipBps` of upside.
func CalculateMaxInput(expected uint64, slipBps uint64) (uint64, error) {
	if slipBps > MaxSlippageBps {
		return 0, ErrInvalidSlippageTolerance
	}
	cut := mulDiv(expected, slipBps, BPSDenominator)
	return expected + cut, nil
}

// EnforceMinOutput fails if actual fell short of min.
func EnforceMinOutput(actual, min uint64) error {
	if actual < min {
		return ErrSlippageExceeded
	}
	return nil
}

// EnforceMaxInput fails if actual exceeded max.
func EnforceMaxInput(actual, max uint64) error {
	if actual > max {
		return ErrSlippageExceeded
	}
	return nil
}

// CalculatePriceImpact returns the trade's deviation from the pool's
// pre-trade spot price, in basis points: |rout*ain - aout*rin| * BPS
// / (rout*ain). Returns 0 if rin or ain is zero (no spot price to
// deviate from).
func CalculatePriceImpact(rin, rout, ain, aout uint64) uint64 {
	if rin == 0 || ain == 0 {
		return 0
	}
	lhs := widenedProduct(rout, ain)
	rhs := widenedProduct(aout, rin)
	num := new(uint256.Int)
	if lhs.Cmp(rhs) >= 0 {
		num.Sub(lhs, rhs)
	} else {
		num.Sub(rhs, lhs)
	}
	num.Mul(num, uint256.NewInt(BPSDenominator))
	denom := widenedProduct(rout, ain)
	num.Div(num, denom)
	return num.Uint64()
}

// EnforcePriceImpact fails if the impact exceeds the given cap in
// basis points. The core never calls this implicitly — enforcing a
// price-impact cap is the caller's choice, same as a slippage bound.
func EnforcePriceImpact(impactBps, capBps uint64) error {
	if impactBps > capBps {
		return ErrPriceImpactTooHigh
	}
	return nil
}

// EnforceDeadline fails if now is past deadline. now may be a block
// timestamp or wall-clock epoch; the same inequality holds either
// way, and the choice of clock is wired at the host boundary.
func EnforceDeadline(now, deadline uint64) error {
	if now > deadline {
		return ErrDeadlineExpired
	}
	return nil
}
