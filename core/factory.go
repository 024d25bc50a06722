package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// isRecognizedCPFeeTier reports whether feeBps is one of the three
// fee tiers the factory will mint a constant-product pool at.
func isRecognizedCPFeeTier(feeBps uint64) bool {
	for _, t := range CPFeeTiers {
		if t == feeBps {
			return true
		}
	}
	return false
}

// PoolFactory mints pools at validated fee tiers and can be paused.
// Grounded on the teacher's AMM.CreatePool pool-counter (`nextID`)
// and implicit single fee (`defaultFeeBps`), generalized to the
// spec's three-tier allowlist, pause flag, and fee-recipient field
// (spec §4.8) that a host uses to route protocol-fee withdrawals.
type PoolFactory struct {
	mu sync.RWMutex

	poolCount    uint64
	paused       bool
	feeRecipient Account

	logger *log.Logger
	sink   EventSink
}

// NewPoolFactory returns a factory that routes protocol fees to
// feeRecipient, logging via lg (or logrus.StandardLogger() if nil)
// and emitting events to sink (or a logSink if nil).
func NewPoolFactory(feeRecipient Account, lg *log.Logger, sink EventSink) *PoolFactory {
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &PoolFactory{
		feeRecipient: feeRecipient,
		logger:       lg,
		sink:         sink,
	}
}

// CreateCPPool mints a new constant-product pool at feeBps, failing
// Paused if the factory is paused or InvalidFeeTier if feeBps is not
// one of CPFeeTiers.
func (f *PoolFactory) CreateCPPool(tokenA, tokenB TokenID, feeBps uint64, creator Account) (*CPPool, uint64, error) {
	if !isRecognizedCPFeeTier(feeBps) {
		return nil, 0, ErrInvalidFeeTier
	}

	f.mu.Lock()
	if f.paused {
		f.mu.Unlock()
		return nil, 0, ErrPaused
	}
	f.poolCount++
	idx := f.poolCount
	f.mu.Unlock()

	pool, err := NewCPPool(tokenA, tokenB, feeBps, f.logger, f.sink)
	if err != nil {
		return nil, 0, err
	}

	f.logger.WithFields(log.Fields{"pool_id": pool.ID(), "fee_bps": feeBps, "pool_index": idx}).Info("pool created")
	f.sink.Emit(PoolCreated{PoolID: pool.ID(), FeeBps: feeBps, PoolIndex: idx, Creator: creator})
	return pool, idx, nil
}

// CreateSSPool mints a new stable-swap pool at amp/feeBps, subject
// only to NewSSPool's own bounds (no fixed-tier allowlist for SS —
// spec §4.8 restricts recognized tiers to the CP variant only).
func (f *PoolFactory) CreateSSPool(tokenA, tokenB TokenID, amp, feeBps uint64, creator Account) (*SSPool, uint64, error) {
	if feeBps > SSMaxFeeBps {
		return nil, 0, ErrInvalidFee
	}
	if amp < 1 || amp > SSMaxAmp {
		return nil, 0, ErrInvalidAmp
	}

	f.mu.Lock()
	if f.paused {
		f.mu.Unlock()
		return nil, 0, ErrPaused
	}
	f.poolCount++
	idx := f.poolCount
	f.mu.Unlock()

	pool, err := NewSSPool(tokenA, tokenB, amp, feeBps, f.logger, f.sink)
	if err != nil {
		return nil, 0, err
	}

	f.logger.WithFields(log.Fields{"pool_id": pool.ID(), "fee_bps": feeBps, "amp": amp, "pool_index": idx}).Info("pool created")
	f.sink.Emit(PoolCreated{PoolID: pool.ID(), FeeBps: feeBps, PoolIndex: idx, Creator: creator})
	return pool, idx, nil
}

// Pause stops any further pool creation. Idempotent.
func (f *PoolFactory) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

// Unpause resumes pool creation. Idempotent.
func (f *PoolFactory) Unpause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
}

// IsPaused reports the current pause state.
func (f *PoolFactory) IsPaused() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.paused
}

// PoolCount returns the number of pools minted by this factory so far.
func (f *PoolFactory) PoolCount() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.poolCount
}

// FeeRecipient returns the address downstream protocol-fee
// withdrawals should route to. The core performs no transfer itself
// (spec §1); this is only the hook a host wires into.
func (f *PoolFactory) FeeRecipient() Account {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.feeRecipient
}

// SetFeeRecipient updates the downstream protocol-fee recipient.
func (f *PoolFactory) SetFeeRecipient(a Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeRecipient = a
}
