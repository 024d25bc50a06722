package core

import "testing"

// Scenario 7 (spec §8): a 1_000_000/1_000_000 pool (fee_bps=30) split
// 60/40 between two LPs; a single 100_000 a->b swap accrues fee=300,
// protocol takes 10% (30), LPs split 270. claimable_a for the 60%
// position is ~1.5x the 40% position's, and a second consecutive
// claim on either position returns (0,0) (P6).
func TestFeeDistributorScenario7ProportionalSplitAndClaimIdempotence(t *testing.T) {
	pool := newTestCPPool(t, 30)
	if _, err := pool.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	store := newPositionStore(nil, nil)
	lp1 := store.Mint(pool.ID(), Account{0x01}, 600_000, 600_000, 600_000, 0)
	lp2 := store.Mint(pool.ID(), Account{0x02}, 400_000, 400_000, 400_000, 0)

	if _, err := pool.Swap(100_000, true); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	dist := NewFeeDistributor(nil, nil)

	claimable1A, claimable1B, _, _ := dist.ComputeClaimable(pool, lp1)
	claimable2A, claimable2B, _, _ := dist.ComputeClaimable(pool, lp2)
	if claimable1B != 0 || claimable2B != 0 {
		t.Fatalf("expected zero B-side fees for an a->b swap, got (%d,%d)", claimable1B, claimable2B)
	}
	if claimable1A == 0 || claimable2A == 0 {
		t.Fatalf("expected nonzero A-side fees, got (%d,%d)", claimable1A, claimable2A)
	}
	ratio := float64(claimable1A) / float64(claimable2A)
	if ratio < 1.4 || ratio > 1.6 {
		t.Fatalf("claimable_a ratio = %.3f, want ~1.5 (60/40 split)", ratio)
	}

	gotA, gotB, err := dist.Claim(pool, lp1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if gotA != claimable1A || gotB != claimable1B {
		t.Fatalf("claimed (%d,%d), want (%d,%d)", gotA, gotB, claimable1A, claimable1B)
	}

	againA, againB, err := dist.Claim(pool, lp1)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if againA != 0 || againB != 0 {
		t.Fatalf("second consecutive claim = (%d,%d), want (0,0)", againA, againB)
	}

	_, _, err = dist.Claim(pool, lp2)
	if err != nil {
		t.Fatalf("lp2 claim failed: %v", err)
	}
	againA, againB, err = dist.Claim(pool, lp2)
	if err != nil || againA != 0 || againB != 0 {
		t.Fatalf("lp2 second claim = (%d,%d,%v), want (0,0,nil)", againA, againB, err)
	}
}

func TestFeeDistributorClaimPoolMismatch(t *testing.T) {
	pool := newTestCPPool(t, 30)
	if _, err := pool.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	other := newTestCPPool(t, 30)

	store := newPositionStore(nil, nil)
	pos := store.Mint(other.ID(), Account{}, 1_000, 0, 0, 0)

	dist := NewFeeDistributor(nil, nil)
	if _, _, err := dist.Claim(pool, pos); err != ErrPoolMismatch {
		t.Fatalf("expected ErrPoolMismatch, got %v", err)
	}
}

// ClaimAndCompound skips the auto-add (new_shares = 0) when one side of
// the claimable fees is zero, per spec §4.7, but still advances the
// position's cursor.
func TestFeeDistributorClaimAndCompoundSkipsOnZeroSide(t *testing.T) {
	pool := newTestCPPool(t, 30)
	if _, err := pool.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	store := newPositionStore(nil, nil)
	pos := store.Mint(pool.ID(), Account{}, 500_000, 500_000, 500_000, 0)

	if _, err := pool.Swap(100_000, true); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	dist := NewFeeDistributor(nil, nil)
	newShares, claimedA, claimedB, err := dist.ClaimAndCompound(pool, pool, pos, 50)
	if err != nil {
		t.Fatalf("claim and compound failed: %v", err)
	}
	if claimedB != 0 {
		t.Fatalf("expected zero B-side claim, got %d", claimedB)
	}
	if claimedA == 0 {
		t.Fatalf("expected nonzero A-side claim")
	}
	if newShares != 0 {
		t.Fatalf("expected no auto-add when one side is zero, got %d new shares", newShares)
	}

	again, _, err := dist.Claim(pool, pos)
	if err != nil || again != 0 {
		t.Fatalf("cursor should have advanced despite skipped compound: got (%d,%v)", again, err)
	}
}

// When both sides of the claimable fees are positive, ClaimAndCompound
// re-adds them as liquidity and credits the position with new shares.
func TestFeeDistributorClaimAndCompoundAddsLiquidity(t *testing.T) {
	pool := newTestCPPool(t, 30)
	if _, err := pool.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	store := newPositionStore(nil, nil)
	pos := store.Mint(pool.ID(), Account{}, 500_000, 500_000, 500_000, 0)

	// Alternate swaps so both fee indices accrue a positive delta.
	if _, err := pool.Swap(100_000, true); err != nil {
		t.Fatalf("swap a->b failed: %v", err)
	}
	if _, err := pool.Swap(100_000, false); err != nil {
		t.Fatalf("swap b->a failed: %v", err)
	}

	dist := NewFeeDistributor(nil, nil)
	sharesBefore := pos.Shares()
	newShares, claimedA, claimedB, err := dist.ClaimAndCompound(pool, pool, pos, 10_000)
	if err != nil {
		t.Fatalf("claim and compound failed: %v", err)
	}
	if claimedA == 0 || claimedB == 0 {
		t.Fatalf("expected both sides positive, got (%d,%d)", claimedA, claimedB)
	}
	if newShares == 0 {
		t.Fatalf("expected new shares minted from auto-compound")
	}
	if pos.Shares() != sharesBefore+newShares {
		t.Fatalf("position shares = %d, want %d", pos.Shares(), sharesBefore+newShares)
	}
}

func TestFeeDistributorTotalsAccumulate(t *testing.T) {
	pool := newTestCPPool(t, 30)
	if _, err := pool.ProvideInitialLiquidity(1_000_000, 1_000_000); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	store := newPositionStore(nil, nil)
	pos := store.Mint(pool.ID(), Account{}, 1_000_000, 1_000_000, 1_000_000, 0)

	if _, err := pool.Swap(100_000, true); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	dist := NewFeeDistributor(nil, nil)
	if _, _, err := dist.Claim(pool, pos); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	totalA, totalB := dist.Totals()
	if totalA == 0 {
		t.Fatalf("expected nonzero accumulated total A")
	}
	if totalB != 0 {
		t.Fatalf("expected zero accumulated total B, got %d", totalB)
	}
}
