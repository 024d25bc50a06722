package core

import "testing"

func TestCalculatePositionValue(t *testing.T) {
	a, b := CalculatePositionValue(100, 1_000, 2_000, 1_000)
	if a != 100 || b != 200 {
		t.Errorf("got (%d,%d), want (100,200)", a, b)
	}
	a, b = CalculatePositionValue(100, 1_000, 2_000, 0)
	if a != 0 || b != 0 {
		t.Errorf("got (%d,%d), want (0,0) for empty pool", a, b)
	}
}

func TestCalculatePendingFees(t *testing.T) {
	a, b := CalculatePendingFees(1_000, 100, 200, 150, 250)
	if a != 5 || b != 5 {
		t.Errorf("got (%d,%d), want (5,5)", a, b)
	}
	a, b = CalculatePendingFees(1_000, 100, 200, 100, 200)
	if a != 0 || b != 0 {
		t.Errorf("got (%d,%d), want (0,0) for unchanged index", a, b)
	}
}

func TestCalculateImpermanentLoss(t *testing.T) {
	bps, isLoss := CalculateImpermanentLoss(600, 600, 500, 500)
	if isLoss || bps != 2_000 {
		t.Errorf("got (%d,%v), want (2000,false) gain", bps, isLoss)
	}
	bps, isLoss = CalculateImpermanentLoss(400, 400, 500, 500)
	if !isLoss || bps != 2_000 {
		t.Errorf("got (%d,%v), want (2000,true) loss", bps, isLoss)
	}
	bps, isLoss = CalculateImpermanentLoss(0, 0, 0, 0)
	if bps != 0 || isLoss {
		t.Errorf("got (%d,%v), want (0,false) with zero hodl", bps, isLoss)
	}
}

func TestPositionShareMutation(t *testing.T) {
	store := newPositionStore(nil, nil)
	pos := store.Mint(NewPoolID(), Account{0x01}, 1_000, 500, 500, 42)

	if pos.Shares() != 1_000 {
		t.Fatalf("expected 1000 shares, got %d", pos.Shares())
	}
	if got := pos.AddShares(250); got != 1_250 {
		t.Errorf("AddShares: got %d, want 1250", got)
	}
	got, err := pos.ReduceShares(1_250)
	if err != nil || got != 0 {
		t.Errorf("ReduceShares(all): got (%d,%v), want (0,nil)", got, err)
	}
	if _, err := pos.ReduceShares(1); err != ErrInsufficientShares {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestPositionUpdateMetadataIsCursorAdvance(t *testing.T) {
	store := newPositionStore(nil, nil)
	pos := store.Mint(NewPoolID(), Account{}, 1_000, 0, 0, 0)

	pos.UpdateMetadata(100, 200, 5, 5)
	idxA, idxB := pos.FeeCursors()
	if idxA != 100 || idxB != 200 {
		t.Fatalf("cursors not advanced: got (%d,%d)", idxA, idxB)
	}
	claimedA, claimedB := pos.ClaimedFees()
	if claimedA != 5 || claimedB != 5 {
		t.Fatalf("claimed totals not accrued: got (%d,%d)", claimedA, claimedB)
	}
}

func TestPositionUpdateInitialAmountsIsAdditive(t *testing.T) {
	store := newPositionStore(nil, nil)
	pos := store.Mint(NewPoolID(), Account{}, 1_000, 10, 20, 0)
	pos.UpdateInitialAmounts(5, 5)
	a, b := pos.InitialAmounts()
	if a != 15 || b != 25 {
		t.Fatalf("got (%d,%d), want (15,25)", a, b)
	}
}

func TestPositionMintAndBurn(t *testing.T) {
	store := newPositionStore(nil, nil)
	poolID := NewPoolID()
	pos := store.Mint(poolID, Account{0x02}, 500, 100, 100, 7)

	if pos.PoolID() != poolID {
		t.Fatalf("position bound to wrong pool")
	}
	if _, err := store.Get(pos.ID()); err != nil {
		t.Fatalf("Get failed after mint: %v", err)
	}
	if err := store.Burn(pos.ID()); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	if _, err := store.Get(pos.ID()); err == nil {
		t.Fatalf("expected error after burn, got nil")
	}
}

func TestPositionSetName(t *testing.T) {
	store := newPositionStore(nil, nil)
	pos := store.Mint(NewPoolID(), Account{}, 1, 0, 0, 0)
	pos.SetName([]byte("my position"))
	if string(pos.Name()) != "my position" {
		t.Fatalf("got %q, want %q", pos.Name(), "my position")
	}
}
