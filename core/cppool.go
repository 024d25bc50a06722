package core

import (
	"sync"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// CPPool is a constant-product (x*y=k) pool: reserves, LP shares, a
// monotone per-token fee index, a protocol fee bucket, and analytics
// counters. Generalized from the teacher's Pool/AMM.CreatePool/
// AddLiquidity/Swap/RemoveLiquidity (core/liquidity_pools.go), which
// already split a swap fee into an LP share and a protocol share but
// paid the LP share straight back into reserves rather than crediting
// a per-share index; this version adds the fee-index/position-cursor
// discipline the engine needs for O(1) proportional claims (spec §9).
type CPPool struct {
	mu sync.RWMutex

	id     PoolID
	tokenA TokenID
	tokenB TokenID
	feeBps uint64

	reserveA uint64
	reserveB uint64

	totalShares uint64

	feeIndexA uint64
	feeIndexB uint64

	protocolFeesA uint64
	protocolFeesB uint64

	cumulativeVolumeA uint64
	cumulativeVolumeB uint64

	kLast *uint256.Int

	logger *log.Logger
	sink   EventSink
}

// NewCPPool creates an empty constant-product pool. Fails if feeBps
// exceeds CPMaxFeeBps.
func NewCPPool(tokenA, tokenB TokenID, feeBps uint64, lg *log.Logger, sink EventSink) (*CPPool, error) {
	if feeBps > CPMaxFeeBps {
		return nil, ErrInvalidFee
	}
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &CPPool{
		id:     NewPoolID(),
		tokenA: tokenA,
		tokenB: tokenB,
		feeBps: feeBps,
		kLast:  new(uint256.Int),
		logger: lg,
		sink:   sink,
	}, nil
}

func (p *CPPool) ID() PoolID         { return p.id }
func (p *CPPool) Kind() PoolKind     { return PoolKindCP }
func (p *CPPool) Tokens() (TokenID, TokenID) { return p.tokenA, p.tokenB }
func (p *CPPool) FeeBps() uint64     { return p.feeBps }

// CPSnapshot is an immutable read of pool state, returned by State
// so callers never observe a torn update (spec §5).
type CPSnapshot struct {
	ReserveA, ReserveB                     uint64
	TotalShares                            uint64
	FeeIndexA, FeeIndexB                   uint64
	ProtocolFeesA, ProtocolFeesB           uint64
	CumulativeVolumeA, CumulativeVolumeB   uint64
}

// State returns a consistent snapshot of every mutable field.
func (p *CPPool) State() CPSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return CPSnapshot{
		ReserveA: p.reserveA, ReserveB: p.reserveB,
		TotalShares: p.totalShares,
		FeeIndexA:   p.feeIndexA, FeeIndexB: p.feeIndexB,
		ProtocolFeesA: p.protocolFeesA, ProtocolFeesB: p.protocolFeesB,
		CumulativeVolumeA: p.cumulativeVolumeA, CumulativeVolumeB: p.cumulativeVolumeB,
	}
}

// ProvideInitialLiquidity seeds an empty pool. Requires the pool not
// to have been seeded yet (totalShares==0) and both amounts positive.
// Returns the shares assignable to the seeding LP — MinimumLiquidity
// is permanently locked and never returned to any position (I3).
func (p *CPPool) ProvideInitialLiquidity(a, b uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares != 0 {
		return 0, ErrInsufficientLiquidity
	}
	if a == 0 || b == 0 {
		return 0, ErrZeroLiquidity
	}

	g := geometricMean(a, b)
	if g <= MinimumLiquidity {
		return 0, ErrZeroLiquidity
	}

	p.reserveA, p.reserveB = a, b
	p.totalShares = g
	p.kLast = widenedProduct(a, b)

	minted := g - MinimumLiquidity
	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": a, "b": b, "shares": minted}).Info("initial liquidity provided")
	p.sink.Emit(LiquidityAdded{PoolID: p.id, AmountA: a, AmountB: b, SharesMinted: minted, TotalShares: p.totalShares})
	return minted, nil
}

// AddLiquidity deposits a, b into a non-empty pool, minting shares
// proportional to the smaller of the two contribution ratios. Fails
// InvalidRatio if the deposit deviates from the pool's current ratio
// by more than toleranceBps.
func (p *CPPool) AddLiquidity(a, b, toleranceBps uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares == 0 || p.reserveA == 0 || p.reserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	if a == 0 || b == 0 {
		return 0, ErrZeroLiquidity
	}

	requiredB := mulDiv(a, p.reserveB, p.reserveA)
	if requiredB > 0 {
		diff := absDiff(b, requiredB)
		if mulDiv(diff, BPSDenominator, requiredB) > toleranceBps {
			return 0, ErrInvalidRatio
		}
	}

	mintedFromA := mulDiv(a, p.totalShares, p.reserveA)
	mintedFromB := mulDiv(b, p.totalShares, p.reserveB)
	minted := minU64(mintedFromA, mintedFromB)
	if minted == 0 {
		return 0, ErrZeroShares
	}

	p.reserveA += a
	p.reserveB += b
	p.totalShares += minted
	p.kLast = widenedProduct(p.reserveA, p.reserveB)

	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": a, "b": b, "shares": minted}).Info("liquidity added")
	p.sink.Emit(LiquidityAdded{PoolID: p.id, AmountA: a, AmountB: b, SharesMinted: minted, TotalShares: p.totalShares})
	return minted, nil
}

// RemoveLiquidity burns the given share amount and returns the
// pro-rata reserve amounts.
func (p *CPPool) RemoveLiquidity(burn uint64) (uint64, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if burn == 0 || burn > p.totalShares {
		return 0, 0, ErrInsufficientShares
	}
	if p.reserveA == 0 || p.reserveB == 0 {
		return 0, 0, ErrInsufficientLiquidity
	}

	amtA := mulDiv(burn, p.reserveA, p.totalShares)
	amtB := mulDiv(burn, p.reserveB, p.totalShares)

	p.reserveA -= amtA
	p.reserveB -= amtB
	p.totalShares -= burn
	if p.totalShares == 0 {
		p.kLast = new(uint256.Int)
	} else {
		p.kLast = widenedProduct(p.reserveA, p.reserveB)
	}

	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": amtA, "b": amtB, "burned": burn}).Info("liquidity removed")
	p.sink.Emit(LiquidityRemoved{PoolID: p.id, AmountA: amtA, AmountB: amtB, SharesBurned: burn, TotalShares: p.totalShares})
	return amtA, amtB, nil
}

// GetAmountOut quotes a swap without mutating state. aToB selects the
// input side. Returns (amountOut, feeAmount).
func (p *CPPool) GetAmountOut(amountIn uint64, aToB bool) (uint64, uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quoteLocked(amountIn, aToB)
}

func (p *CPPool) quoteLocked(amountIn uint64, aToB bool) (uint64, uint64, error) {
	if amountIn == 0 {
		return 0, 0, ErrZeroAmountIn
	}
	reserveIn, reserveOut := p.reserveA, p.reserveB
	if !aToB {
		reserveIn, reserveOut = p.reserveB, p.reserveA
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, 0, ErrInsufficientLiquidity
	}

	fee := mulDiv(amountIn, p.feeBps, BPSDenominator)
	netIn := amountIn - fee
	amountOut := mulDiv(netIn, reserveOut, reserveIn+netIn)
	return amountOut, fee, nil
}

// Swap executes a trade atomically: reserves update, volume counter
// increments, and the fee is accrued to the input side's fee index —
// all as a single observable transition (spec §5).
func (p *CPPool) Swap(amountIn uint64, aToB bool) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapLocked(amountIn, aToB, nil)
}

// SwapWithSlippage executes Swap and enforces a caller-provided
// minimum output, failing SlippageExceeded (not partially applying
// the swap) if the realized output is too low.
func (p *CPPool) SwapWithSlippage(amountIn uint64, aToB bool, minAmountOut uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapLocked(amountIn, aToB, &minAmountOut)
}

// swapLocked is the shared swap body; must be called with p.mu held.
// minOut, when non-nil, is enforced before any state mutation.
func (p *CPPool) swapLocked(amountIn uint64, aToB bool, minOut *uint64) (uint64, error) {
	amountOut, fee, err := p.quoteLocked(amountIn, aToB)
	if err != nil {
		return 0, err
	}
	if minOut != nil && amountOut < *minOut {
		return 0, ErrSlippageExceeded
	}

	var reserveOutBefore uint64
	if aToB {
		reserveOutBefore = p.reserveB
	} else {
		reserveOutBefore = p.reserveA
	}
	if amountOut == 0 || amountOut >= reserveOutBefore {
		return 0, ErrInsufficientLiquidity
	}

	if aToB {
		p.reserveA += amountIn
		p.reserveB -= amountOut
		p.cumulativeVolumeA += amountIn
		p.accrueFeeLocked(fee, 0)
	} else {
		p.reserveB += amountIn
		p.reserveA -= amountOut
		p.cumulativeVolumeB += amountIn
		p.accrueFeeLocked(0, fee)
	}
	p.kLast = widenedProduct(p.reserveA, p.reserveB)

	p.logger.WithFields(log.Fields{"pool_id": p.id, "in": amountIn, "out": amountOut, "fee": fee, "a_to_b": aToB}).Info("swap executed")
	p.sink.Emit(SwapExecuted{PoolID: p.id, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: fee, AToB: aToB})
	return amountOut, nil
}

// accrueFeeLocked is the only place feeIndexA/feeIndexB change. Must
// be called with p.mu held. If the pool is transiently empty (no
// shares yet minted), the entire fee flows to the protocol bucket —
// the spec notes this branch is never reached post-seeding in the
// current design, but the core still handles it defensively rather
// than dividing by zero.
func (p *CPPool) accrueFeeLocked(feeA, feeB uint64) {
	if p.totalShares == 0 {
		p.protocolFeesA += feeA
		p.protocolFeesB += feeB
		return
	}
	if feeA > 0 {
		proto := mulDiv(feeA, ProtocolFeeBps, BPSDenominator)
		lp := feeA - proto
		p.protocolFeesA += proto
		p.feeIndexA += mulDiv(lp, BPSDenominator, p.totalShares)
	}
	if feeB > 0 {
		proto := mulDiv(feeB, ProtocolFeeBps, BPSDenominator)
		lp := feeB - proto
		p.protocolFeesB += proto
		p.feeIndexB += mulDiv(lp, BPSDenominator, p.totalShares)
	}
}

// WithdrawProtocolFees returns and zeros both protocol buckets. The
// core performs no balance transfer; that is the host's job.
func (p *CPPool) WithdrawProtocolFees() (uint64, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, b := p.protocolFeesA, p.protocolFeesB
	p.protocolFeesA, p.protocolFeesB = 0, 0
	return a, b
}

// FeeIndices returns the current monotone fee accumulators, read by
// the fee distributor (C7).
func (p *CPPool) FeeIndices() (uint64, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeIndexA, p.feeIndexB
}

// Reserves returns a consistent read of the current reserves and
// total shares, used by the router to estimate a withdrawal's
// pro-rata amounts before committing to it (e.g. a slippage-checked
// remove).
func (p *CPPool) Reserves() (reserveA, reserveB, totalShares uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reserveA, p.reserveB, p.totalShares
}
