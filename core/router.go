package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// AMMPool is the subset of CPPool/SSPool behavior the router needs to
// drive a pool without caring which invariant it runs. Both pool
// types already implement every method below with identical
// signatures, so no adapter is needed.
type AMMPool interface {
	ID() PoolID
	Kind() PoolKind
	Tokens() (TokenID, TokenID)
	FeeBps() uint64
	ProvideInitialLiquidity(a, b uint64) (uint64, error)
	AddLiquidity(a, b, toleranceBps uint64) (uint64, error)
	RemoveLiquidity(burn uint64) (uint64, uint64, error)
	GetAmountOut(amountIn uint64, aToB bool) (uint64, uint64, error)
	Swap(amountIn uint64, aToB bool) (uint64, error)
	SwapWithSlippage(amountIn uint64, aToB bool, minAmountOut uint64) (uint64, error)
	WithdrawProtocolFees() (uint64, uint64)
	FeeIndices() (idxA, idxB uint64)
	Reserves() (reserveA, reserveB, totalShares uint64)
}

// Router composes the factory, registry, position store, and fee
// distributor into the user-level workflows spec §4.9 names. Direct
// generalization of the teacher's core/amm.go façade
// (SwapExactIn/AddLiquidity/RemoveLiquidity/Quote), dropping the
// Dijkstra multi-hop router (bestPath/graph) per the spec's explicit
// "no routing" Non-goal (§1) and replacing it with single-pool,
// position-aware workflows.
type Router struct {
	mu    sync.RWMutex
	pools map[PoolID]AMMPool

	registry  *Registry
	factory   *PoolFactory
	positions *positionStore
	fees      *FeeDistributor

	logger *log.Logger
	sink   EventSink
}

// NewRouter wires a fresh registry, factory, position store, and fee
// distributor together. feeRecipient seeds the factory's protocol-fee
// routing hook.
func NewRouter(feeRecipient Account, lg *log.Logger, sink EventSink) *Router {
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &Router{
		pools:     make(map[PoolID]AMMPool),
		registry:  NewRegistry(lg, sink),
		factory:   NewPoolFactory(feeRecipient, lg, sink),
		positions: newPositionStore(lg, sink),
		fees:      NewFeeDistributor(lg, sink),
		logger:    lg,
		sink:      sink,
	}
}

// Registry, Factory, and Distributor expose the composed
// sub-components directly, for callers that need lower-level access
// (e.g. listing all pools, pausing the factory, reading distributor
// totals) without the router standing in the way.
func (r *Router) Registry() *Registry           { return r.registry }
func (r *Router) Factory() *PoolFactory         { return r.factory }
func (r *Router) Distributor() *FeeDistributor { return r.fees }

func (r *Router) getPool(id PoolID) (AMMPool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

// Pool returns the pool registered under id, or ErrPoolNotFound.
func (r *Router) Pool(id PoolID) (AMMPool, error) { return r.getPool(id) }

// Position returns the position registered under id.
func (r *Router) Position(id PositionID) (*Position, error) { return r.positions.Get(id) }

func (r *Router) addPool(pool AMMPool) {
	r.mu.Lock()
	r.pools[pool.ID()] = pool
	r.mu.Unlock()
}

// CreatePoolFull creates and registers a constant-product pool for
// (tokenA, tokenB) at feeBps, seeds it with (a, b), and mints the
// seeding position for owner. Fails PoolAlreadyExists if the
// canonical (pair, fee) key is already registered, and ZeroLiquidity
// (before any pool is created or registered) if (a, b) cannot seed it.
func (r *Router) CreatePoolFull(tokenA, tokenB TokenID, feeBps uint64, a, b uint64, creator, owner Account, now uint64) (*CPPool, *Position, error) {
	if r.registry.PoolExists(tokenA, tokenB, feeBps) {
		return nil, nil, ErrPoolAlreadyExists
	}
	if a == 0 || b == 0 || geometricMean(a, b) <= MinimumLiquidity {
		return nil, nil, ErrZeroLiquidity
	}

	pool, _, err := r.factory.CreateCPPool(tokenA, tokenB, feeBps, creator)
	if err != nil {
		return nil, nil, err
	}

	if err := r.registry.RegisterPool(pool.ID(), tokenA, tokenB, feeBps, creator, now); err != nil {
		return nil, nil, err
	}

	shares, err := pool.ProvideInitialLiquidity(a, b)
	if err != nil {
		return nil, nil, err
	}

	r.addPool(pool)
	pos := r.positions.Mint(pool.ID(), owner, shares, a, b, now)
	return pool, pos, nil
}

// CreateSSPoolFull mirrors CreatePoolFull for the stable-swap variant.
func (r *Router) CreateSSPoolFull(tokenA, tokenB TokenID, amp, feeBps uint64, a, b uint64, creator, owner Account, now uint64) (*SSPool, *Position, error) {
	if r.registry.PoolExists(tokenA, tokenB, feeBps) {
		return nil, nil, ErrPoolAlreadyExists
	}
	if a == 0 || b == 0 || a+b <= MinimumLiquidity {
		return nil, nil, ErrZeroLiquidity
	}

	pool, _, err := r.factory.CreateSSPool(tokenA, tokenB, amp, feeBps, creator)
	if err != nil {
		return nil, nil, err
	}

	if err := r.registry.RegisterPool(pool.ID(), tokenA, tokenB, feeBps, creator, now); err != nil {
		return nil, nil, err
	}

	shares, err := pool.ProvideInitialLiquidity(a, b)
	if err != nil {
		return nil, nil, err
	}

	r.addPool(pool)
	pos := r.positions.Mint(pool.ID(), owner, shares, a, b, now)
	return pool, pos, nil
}

// AddLiquidityNewPosition adds (a, b) to an existing pool and mints a
// brand-new position for owner holding the resulting shares.
func (r *Router) AddLiquidityNewPosition(poolID PoolID, owner Account, a, b, toleranceBps, now uint64) (*Position, error) {
	pool, err := r.getPool(poolID)
	if err != nil {
		return nil, err
	}
	minted, err := pool.AddLiquidity(a, b, toleranceBps)
	if err != nil {
		return nil, err
	}
	return r.positions.Mint(poolID, owner, minted, a, b, now), nil
}

// AddLiquidityExistingPosition adds (a, b) to pool and credits the
// resulting shares and deposit totals to an existing position. Fails
// PoolMismatch if pos is not bound to poolID.
func (r *Router) AddLiquidityExistingPosition(poolID PoolID, pos *Position, a, b, toleranceBps uint64) (uint64, error) {
	if pos.PoolID() != poolID {
		return 0, ErrPoolMismatch
	}
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, err
	}
	minted, err := pool.AddLiquidity(a, b, toleranceBps)
	if err != nil {
		return 0, err
	}
	pos.AddShares(minted)
	pos.UpdateInitialAmounts(a, b)
	r.sink.Emit(SharesUpdated{PositionID: pos.ID(), OldShares: pos.Shares() - minted, NewShares: pos.Shares()})
	return minted, nil
}

// RemoveLiquidityPartial burns burn shares from pos against poolID,
// decrementing the position's share balance and returning the
// pro-rata withdrawal. burn is validated against the position's own
// share balance before the pool is touched, so a caller-supplied burn
// that exceeds pos's shares (but not the pool's total_shares) fails
// before any reserves move (spec §5: no partial progress).
func (r *Router) RemoveLiquidityPartial(poolID PoolID, pos *Position, burn uint64) (uint64, uint64, error) {
	if pos.PoolID() != poolID {
		return 0, 0, ErrPoolMismatch
	}
	if burn > pos.Shares() {
		return 0, 0, ErrInsufficientShares
	}
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, 0, err
	}
	amtA, amtB, err := pool.RemoveLiquidity(burn)
	if err != nil {
		return 0, 0, err
	}
	newShares, err := pos.ReduceShares(burn)
	if err != nil {
		return 0, 0, err
	}
	r.sink.Emit(SharesUpdated{PositionID: pos.ID(), OldShares: newShares + burn, NewShares: newShares})
	return amtA, amtB, nil
}

// RemoveAllAndBurn withdraws the position's entire share balance,
// enforces a min-out slippage bound on each side, and burns the
// position. The pro-rata amounts are estimated from the pool's
// current reserves and checked against minA/minB before
// pool.RemoveLiquidity is ever called, so a slippage failure never
// mutates the pool (spec §5: either completes atomically or fails
// before any state change).
func (r *Router) RemoveAllAndBurn(poolID PoolID, pos *Position, minA, minB uint64) (uint64, uint64, error) {
	if pos.PoolID() != poolID {
		return 0, 0, ErrPoolMismatch
	}
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, 0, err
	}
	shares := pos.Shares()
	reserveA, reserveB, totalShares := pool.Reserves()
	expectedA, expectedB := CalculatePositionValue(shares, reserveA, reserveB, totalShares)
	if err := EnforceMinOutput(expectedA, minA); err != nil {
		return 0, 0, err
	}
	if err := EnforceMinOutput(expectedB, minB); err != nil {
		return 0, 0, err
	}

	amtA, amtB, err := pool.RemoveLiquidity(shares)
	if err != nil {
		return 0, 0, err
	}
	if _, err := pos.ReduceShares(shares); err != nil {
		return 0, 0, err
	}
	if err := r.positions.Burn(pos.ID()); err != nil {
		return 0, 0, err
	}
	return amtA, amtB, nil
}

// SwapAutoSlippage quotes amountIn against poolID, derives a minimum
// acceptable output at slipBps tolerance, and executes the swap
// enforcing that bound.
func (r *Router) SwapAutoSlippage(poolID PoolID, amountIn, slipBps uint64, aToB bool) (uint64, error) {
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, err
	}
	expected, _, err := pool.GetAmountOut(amountIn, aToB)
	if err != nil {
		return 0, err
	}
	minOut, err := CalculateMinOutput(expected, slipBps)
	if err != nil {
		return 0, err
	}
	return pool.SwapWithSlippage(amountIn, aToB, minOut)
}

// ClaimFeesForPosition settles pos's pending fees against poolID.
func (r *Router) ClaimFeesForPosition(poolID PoolID, pos *Position) (uint64, uint64, error) {
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, 0, err
	}
	return r.fees.Claim(pool, pos)
}

// ClaimAndCompound settles pos's pending fees against poolID and
// re-adds them as liquidity, crediting the resulting shares to pos.
func (r *Router) ClaimAndCompound(poolID PoolID, pos *Position, toleranceBps uint64) (uint64, uint64, uint64, error) {
	pool, err := r.getPool(poolID)
	if err != nil {
		return 0, 0, 0, err
	}
	return r.fees.ClaimAndCompound(pool, pool, pos, toleranceBps)
}
