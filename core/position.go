package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Position is an owned object representing one LP's proportional
// claim on a pool's reserves and accrued fees. It is created only by
// Mint, mutated only by the restricted setters below (invoked from
// C4/C5/C7/C9), and destroyed only by Burn.
type Position struct {
	mu sync.RWMutex

	id     PositionID
	poolID PoolID
	owner  Account

	shares uint64

	lastFeeIndexA uint64
	lastFeeIndexB uint64
	claimedFeesA  uint64
	claimedFeesB  uint64

	initialAmountA uint64
	initialAmountB uint64

	createdAt uint64
	name      []byte
}

// Accessors. All return a consistent snapshot under a read lock.

func (p *Position) ID() PositionID { return p.id }
func (p *Position) PoolID() PoolID { return p.poolID }
func (p *Position) Owner() Account { return p.owner }

func (p *Position) Shares() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shares
}

func (p *Position) FeeCursors() (idxA, idxB uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastFeeIndexA, p.lastFeeIndexB
}

func (p *Position) ClaimedFees() (a, b uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.claimedFeesA, p.claimedFeesB
}

func (p *Position) InitialAmounts() (a, b uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialAmountA, p.initialAmountB
}

func (p *Position) CreatedAt() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.createdAt
}

func (p *Position) Name() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]byte, len(p.name))
	copy(out, p.name)
	return out
}

// SetName updates the user-supplied label. Display only.
func (p *Position) SetName(name []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = append([]byte(nil), name...)
}

// AddShares credits delta additional shares, e.g. on a subsequent
// liquidity addition or an auto-compound.
func (p *Position) AddShares(delta uint64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shares += delta
	return p.shares
}

// ReduceShares debits delta shares, failing if delta exceeds the
// position's current balance.
func (p *Position) ReduceShares(delta uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if delta > p.shares {
		return 0, ErrInsufficientShares
	}
	p.shares -= delta
	return p.shares, nil
}

// UpdateMetadata atomically advances the fee-index cursors and
// accrues claimed totals. This is the only setter the fee distributor
// (C7) calls, and it is the operation that makes a subsequent
// CalculatePendingFees with the same pool indices return zero.
func (p *Position) UpdateMetadata(newIdxA, newIdxB, deltaClaimedA, deltaClaimedB uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastFeeIndexA = newIdxA
	p.lastFeeIndexB = newIdxB
	p.claimedFeesA += deltaClaimedA
	p.claimedFeesB += deltaClaimedB
}

// UpdateInitialAmounts adds deltaA/deltaB to the position's recorded
// initial deposit, accumulated on every liquidity addition bound to
// this position (including, per spec §4.7/§9 Q2, an auto-compound).
func (p *Position) UpdateInitialAmounts(deltaA, deltaB uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialAmountA += deltaA
	p.initialAmountB += deltaB
}

// CalculatePositionValue returns the position's current pro-rata
// claim on pool reserves: (shares*reserveA/totalShares,
// shares*reserveB/totalShares). Returns (0,0) if totalShares is zero.
func CalculatePositionValue(shares, reserveA, reserveB, totalShares uint64) (uint64, uint64) {
	if totalShares == 0 {
		return 0, 0
	}
	return mulDiv(shares, reserveA, totalShares), mulDiv(shares, reserveB, totalShares)
}

// CalculatePendingFees returns the claimable amounts implied by the
// delta between the pool's current fee indices and the position's
// cursors: (curIdxA-lastA)*shares/BPS, likewise for B. Deltas are
// always non-negative because fee indices are monotone (I1).
func CalculatePendingFees(shares, lastIdxA, lastIdxB, curIdxA, curIdxB uint64) (uint64, uint64) {
	deltaA := curIdxA - lastIdxA
	deltaB := curIdxB - lastIdxB
	return mulDiv(deltaA, shares, BPSDenominator), mulDiv(deltaB, shares, BPSDenominator)
}

// CalculateImpermanentLoss compares the position's current value
// against its recorded initial deposit as a bare sum of the two
// token amounts (documented simplification, spec §4.3/§9 Q1 — not the
// unit-normalized 2*sqrt(p)/(1+p)-1 formula). Returns the magnitude in
// basis points and true if it is a loss, false if it is a gain.
func CalculateImpermanentLoss(valueA, valueB, initialA, initialB uint64) (bps uint64, isLoss bool) {
	hodl := initialA + initialB
	lp := valueA + valueB
	if hodl == 0 {
		return 0, false
	}
	if lp >= hodl {
		return mulDiv(lp-hodl, BPSDenominator, hodl), false
	}
	return mulDiv(hodl-lp, BPSDenominator, hodl), true
}

// positionStore owns the lifecycle of every Position: Mint, Burn, and
// lookup. Grounded on the teacher's AMM manager shape
// (mu sync.RWMutex + map[ID]*T + logger), applied here to positions
// instead of pools.
type positionStore struct {
	mu     sync.RWMutex
	byID   map[PositionID]*Position
	logger *log.Logger
	sink   EventSink
}

func newPositionStore(lg *log.Logger, sink EventSink) *positionStore {
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &positionStore{
		byID:   make(map[PositionID]*Position),
		logger: lg,
		sink:   sink,
	}
}

// Mint creates a new position bound to poolID, owned by owner, with
// an initial share balance and deposit. now is the caller-supplied
// creation epoch (spec §3: position.created_at).
func (s *positionStore) Mint(poolID PoolID, owner Account, shares, amountA, amountB, now uint64) *Position {
	pos := &Position{
		id:             NewPositionID(),
		poolID:         poolID,
		owner:          owner,
		shares:         shares,
		initialAmountA: amountA,
		initialAmountB: amountB,
		createdAt:      now,
	}
	s.mu.Lock()
	s.byID[pos.id] = pos
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{"position_id": pos.id, "pool_id": poolID, "shares": shares}).Info("position minted")
	s.sink.Emit(PositionMinted{PositionID: pos.id, PoolID: poolID, LPShares: shares, Owner: owner})
	return pos
}

// Burn removes the position from the store. The spec permits burning
// a position with zero shares; it is the caller's job to have already
// reduced shares to zero (or to accept burning a live position).
func (s *positionStore) Burn(id PositionID) error {
	s.mu.Lock()
	pos, ok := s.byID[id]
	if ok {
		delete(s.byID, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrPoolMismatch
	}
	s.logger.WithField("position_id", id).Info("position burned")
	s.sink.Emit(PositionBurned{PositionID: id, PoolID: pos.poolID, FinalShares: pos.Shares()})
	return nil
}

// Get returns the position for id, or ErrPoolMismatch if unknown
// (there is no distinct "position not found" error in the spec's
// error-kind list; a caller presenting an unknown position is
// equivalent to presenting one that cannot belong to the pool in
// question).
func (s *positionStore) Get(id PositionID) (*Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byID[id]
	if !ok {
		return nil, ErrPoolMismatch
	}
	return pos, nil
}
