package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// SSPool is a stable-swap pool blending constant-sum and
// constant-product pricing via an amplification coefficient. It has
// no teacher analog — the teacher only implements a CP pool — so it
// is built fresh in the same struct/mutex/logger/fee-index shape as
// CPPool, implementing the spec's literal CS/CP blend rather than a
// full Curve-style D-invariant solver (spec §4.5, §9 Q3).
type SSPool struct {
	mu sync.RWMutex

	id     PoolID
	tokenA TokenID
	tokenB TokenID
	feeBps uint64
	amp    uint64

	reserveA uint64
	reserveB uint64

	totalShares uint64

	feeIndexA uint64
	feeIndexB uint64

	protocolFeesA uint64
	protocolFeesB uint64

	cumulativeVolumeA uint64
	cumulativeVolumeB uint64

	logger *log.Logger
	sink   EventSink
}

// NewSSPool creates an empty stable-swap pool. Fails if feeBps
// exceeds SSMaxFeeBps or amp is outside [1, SSMaxAmp].
func NewSSPool(tokenA, tokenB TokenID, amp, feeBps uint64, lg *log.Logger, sink EventSink) (*SSPool, error) {
	if feeBps > SSMaxFeeBps {
		return nil, ErrInvalidFee
	}
	if amp < 1 || amp > SSMaxAmp {
		return nil, ErrInvalidAmp
	}
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &SSPool{
		id:     NewPoolID(),
		tokenA: tokenA,
		tokenB: tokenB,
		feeBps: feeBps,
		amp:    amp,
		logger: lg,
		sink:   sink,
	}, nil
}

func (p *SSPool) ID() PoolID                 { return p.id }
func (p *SSPool) Kind() PoolKind             { return PoolKindSS }
func (p *SSPool) Tokens() (TokenID, TokenID) { return p.tokenA, p.tokenB }
func (p *SSPool) FeeBps() uint64             { return p.feeBps }
func (p *SSPool) Amp() uint64                { return p.amp }

// SSSnapshot mirrors CPSnapshot for the stable-swap variant (no
// k_last — the blended invariant has no single cached product).
type SSSnapshot struct {
	ReserveA, ReserveB                   uint64
	TotalShares                          uint64
	FeeIndexA, FeeIndexB                 uint64
	ProtocolFeesA, ProtocolFeesB         uint64
	CumulativeVolumeA, CumulativeVolumeB uint64
	Amp                                  uint64
}

func (p *SSPool) State() SSSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return SSSnapshot{
		ReserveA: p.reserveA, ReserveB: p.reserveB,
		TotalShares: p.totalShares,
		FeeIndexA:   p.feeIndexA, FeeIndexB: p.feeIndexB,
		ProtocolFeesA: p.protocolFeesA, ProtocolFeesB: p.protocolFeesB,
		CumulativeVolumeA: p.cumulativeVolumeA, CumulativeVolumeB: p.cumulativeVolumeB,
		Amp: p.amp,
	}
}

// ProvideInitialLiquidity seeds an empty pool. total_shares becomes
// a+b (constant-sum share pricing at seed time); the returned,
// position-assignable amount is a+b less the locked MinimumLiquidity,
// as for CPPool.
func (p *SSPool) ProvideInitialLiquidity(a, b uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares != 0 {
		return 0, ErrInsufficientLiquidity
	}
	if a == 0 || b == 0 {
		return 0, ErrZeroLiquidity
	}

	shares := a + b
	if shares <= MinimumLiquidity {
		return 0, ErrZeroLiquidity
	}

	p.reserveA, p.reserveB = a, b
	p.totalShares = shares

	minted := shares - MinimumLiquidity
	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": a, "b": b, "shares": minted}).Info("initial liquidity provided")
	p.sink.Emit(LiquidityAdded{PoolID: p.id, AmountA: a, AmountB: b, SharesMinted: minted, TotalShares: p.totalShares})
	return minted, nil
}

// AddLiquidity deposits a and/or b into a non-empty pool. Single-sided
// deposits are accepted; at least one side must be positive. Shares
// minted are pro-rata on the sum of reserves.
func (p *SSPool) AddLiquidity(a, b, _toleranceBps uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares == 0 || p.reserveA+p.reserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	if a == 0 && b == 0 {
		return 0, ErrZeroLiquidity
	}

	minted := mulDiv(a+b, p.totalShares, p.reserveA+p.reserveB)
	if minted == 0 {
		return 0, ErrZeroShares
	}

	p.reserveA += a
	p.reserveB += b
	p.totalShares += minted

	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": a, "b": b, "shares": minted}).Info("liquidity added")
	p.sink.Emit(LiquidityAdded{PoolID: p.id, AmountA: a, AmountB: b, SharesMinted: minted, TotalShares: p.totalShares})
	return minted, nil
}

// RemoveLiquidity burns shares pro-rata on the sum of reserves,
// identical in shape to CPPool.RemoveLiquidity.
func (p *SSPool) RemoveLiquidity(burn uint64) (uint64, uint64, error) {
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

	p.logger.WithFields(log.Fields{"pool_id": p.id, "a": amtA, "b": amtB, "burned": burn}).Info("liquidity removed")
	p.sink.Emit(LiquidityRemoved{PoolID: p.id, AmountA: amtA, AmountB: amtB, SharesBurned: burn, TotalShares: p.totalShares})
	return amtA, amtB, nil
}

// GetAmountOut quotes a swap by blending a constant-sum estimate and
// a constant-product estimate, weighted by the amplification
// coefficient: out = out_cs*A/(A+1) + out_cp/(A+1). This is the
// spec's literal, deliberately-simplified blend (§4.5, §9 Q3) — not
// Curve's D-invariant. Truncated to at most the available reserve.
func (p *SSPool) GetAmountOut(amountIn uint64, aToB bool) (uint64, uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quoteLocked(amountIn, aToB)
}

func (p *SSPool) quoteLocked(amountIn uint64, aToB bool) (uint64, uint64, error) {
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

	newIn := reserveIn + netIn
	outCP := reserveOut - mulDiv(reserveIn, reserveOut, newIn)

	outCS := minU64(netIn, reserveOut)

	outBlended := mulDiv(outCS, p.amp, p.amp+1) + mulDiv(outCP, 1, p.amp+1)
	if outBlended > reserveOut {
		outBlended = reserveOut
	}
	return outBlended, fee, nil
}

// Swap executes a trade atomically, identical fee-index/volume
// discipline to CPPool.Swap.
func (p *SSPool) Swap(amountIn uint64, aToB bool) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapLocked(amountIn, aToB, nil)
}

// SwapWithSlippage executes Swap enforcing a minimum output.
func (p *SSPool) SwapWithSlippage(amountIn uint64, aToB bool, minAmountOut uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapLocked(amountIn, aToB, &minAmountOut)
}

func (p *SSPool) swapLocked(amountIn uint64, aToB bool, minOut *uint64) (uint64, error) {
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

	p.logger.WithFields(log.Fields{"pool_id": p.id, "in": amountIn, "out": amountOut, "fee": fee, "a_to_b": aToB}).Info("swap executed")
	p.sink.Emit(SwapExecuted{PoolID: p.id, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: fee, AToB: aToB})
	return amountOut, nil
}

// accrueFeeLocked mirrors CPPool's identical 10%-to-protocol split;
// must be called with p.mu held.
func (p *SSPool) accrueFeeLocked(feeA, feeB uint64) {
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

// WithdrawProtocolFees returns and zeros both protocol buckets.
func (p *SSPool) WithdrawProtocolFees() (uint64, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, b := p.protocolFeesA, p.protocolFeesB
	p.protocolFeesA, p.protocolFeesB = 0, 0
	return a, b
}

// FeeIndices returns the current monotone fee accumulators.
func (p *SSPool) FeeIndices() (uint64, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeIndexA, p.feeIndexB
}

// Reserves returns a consistent read of the current reserves and
// total shares, used by the router to estimate a withdrawal's
// pro-rata amounts before committing to it (e.g. a slippage-checked
// remove).
func (p *SSPool) Reserves() (reserveA, reserveB, totalShares uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reserveA, p.reserveB, p.totalShares
}
