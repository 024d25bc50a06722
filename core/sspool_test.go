package core

import "testing"

func newTestSSPool(t *testing.T, amp, feeBps uint64) *SSPool {
	t.Helper()
	p, err := NewSSPool(TokenID{0x03}, TokenID{0x04}, amp, feeBps, nil, nil)
	if err != nil {
		t.Fatalf("NewSSPool failed: %v", err)
	}
	return p
}

// Scenario 6 (spec §8): amp=1000, fee=4, seed (10M, 10M), swap 1M
// a->b: output > 990_000, fee = 400.
func TestSSPoolScenario6SwapQuote(t *testing.T) {
	p := newTestSSPool(t, 1000, 4)
	if _, err := p.ProvideInitialLiquidity(10_000_000, 10_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	out, fee, err := p.GetAmountOut(1_000_000, true)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if fee != 400 {
		t.Fatalf("fee = %d, want 400", fee)
	}
	if out <= 990_000 {
		t.Fatalf("out = %d, want > 990000", out)
	}
}

func TestSSPoolRejectsInvalidAmp(t *testing.T) {
	if _, err := NewSSPool(TokenID{0x01}, TokenID{0x02}, 0, 4, nil, nil); err != ErrInvalidAmp {
		t.Fatalf("expected ErrInvalidAmp for amp=0, got %v", err)
	}
	if _, err := NewSSPool(TokenID{0x01}, TokenID{0x02}, SSMaxAmp+1, 4, nil, nil); err != ErrInvalidAmp {
		t.Fatalf("expected ErrInvalidAmp for amp>max, got %v", err)
	}
}

func TestSSPoolRejectsExcessiveFee(t *testing.T) {
	if _, err := NewSSPool(TokenID{0x01}, TokenID{0x02}, 100, SSMaxFeeBps+1, nil, nil); err != ErrInvalidFee {
		t.Fatalf("expected ErrInvalidFee, got %v", err)
	}
}

// Initial liquidity for a stable-swap pool sets total_shares = a+b and
// returns a+b less the locked MinimumLiquidity.
func TestSSPoolInitialLiquiditySharesAreSum(t *testing.T) {
	p := newTestSSPool(t, 100, 4)
	minted, err := p.ProvideInitialLiquidity(1_000_000, 2_000_000)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if minted != 3_000_000-MinimumLiquidity {
		t.Fatalf("minted = %d, want %d", minted, 3_000_000-MinimumLiquidity)
	}
	if p.State().TotalShares != 3_000_000 {
		t.Fatalf("total_shares = %d, want 3000000", p.State().TotalShares)
	}
}

// Single-sided deposits are accepted for stable-swap pools.
func TestSSPoolSingleSidedAddLiquidity(t *testing.T) {
	p := newTestSSPool(t, 100, 4)
	if _, err := p.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	minted, err := p.AddLiquidity(100_000, 0, 0)
	if err != nil {
		t.Fatalf("single-sided add failed: %v", err)
	}
	if minted == 0 {
		t.Fatalf("expected nonzero shares minted")
	}
}

func TestSSPoolAddLiquidityRejectsBothZero(t *testing.T) {
	p := newTestSSPool(t, 100, 4)
	if _, err := p.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := p.AddLiquidity(0, 0, 0); err != ErrZeroLiquidity {
		t.Fatalf("expected ErrZeroLiquidity, got %v", err)
	}
}

// As amp grows the blend should approach constant-sum pricing: output
// should climb toward the (fee-adjusted) input amount.
func TestSSPoolBlendApproachesConstantSumAsAmpGrows(t *testing.T) {
	low := newTestSSPool(t, 1, 0)
	high := newTestSSPool(t, SSMaxAmp, 0)
	if _, err := low.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := high.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	outLow, _, err := low.GetAmountOut(100_000, true)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	outHigh, _, err := high.GetAmountOut(100_000, true)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if outHigh <= outLow {
		t.Fatalf("expected higher amp to quote a larger output near parity: low=%d high=%d", outLow, outHigh)
	}
	if outHigh > 100_000 {
		t.Fatalf("output %d must not exceed the (unfee'd) input", outHigh)
	}
}

func TestSSPoolFeeIndexMonotone(t *testing.T) {
	p := newTestSSPool(t, 100, 4)
	if _, err := p.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	prevA, prevB := p.FeeIndices()
	for i := 0; i < 10; i++ {
		if _, err := p.Swap(10_000, i%2 == 0); err != nil {
			t.Fatalf("swap %d failed: %v", i, err)
		}
		curA, curB := p.FeeIndices()
		if curA < prevA || curB < prevB {
			t.Fatalf("fee index decreased: (%d,%d) -> (%d,%d)", prevA, prevB, curA, curB)
		}
		prevA, prevB = curA, curB
	}
}
