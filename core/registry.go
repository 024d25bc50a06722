package core

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// registryKey is the canonical, order-independent key the registry
// indexes pools by: the lexicographically ordered pair of token ids
// plus the fee tier, so (A,B,fee) and (B,A,fee) collide (P5) while a
// different fee tier over the same pair is a distinct key.
type registryKey struct {
	tokenLo TokenID
	tokenHi TokenID
	feeBps  uint64
}

func makeKey(a, b TokenID, feeBps uint64) registryKey {
	if a.Compare(b) <= 0 {
		return registryKey{tokenLo: a, tokenHi: b, feeBps: feeBps}
	}
	return registryKey{tokenLo: b, tokenHi: a, feeBps: feeBps}
}

// RegistryEntry is the value half of the registry's mapping.
type RegistryEntry struct {
	PoolID    PoolID
	FeeBps    uint64
	CreatedAt uint64
	Creator   Account
	IsActive  bool
}

// Registry maps (token_lo, token_hi, fee_bps) to a pool, preventing
// duplicate pools over the same pair and fee tier. Generalized from
// the teacher's routing-graph registration
// (registerPoolForRouting/graph/AllPairs in core/amm.go), replacing
// the price-graph edges (multi-pool routing is an explicit Non-goal
// here, spec §1) with the spec's canonical-key duplicate-prevention
// registry.
type Registry struct {
	mu          sync.RWMutex
	byKey       map[registryKey]*RegistryEntry
	byPool      map[PoolID]*RegistryEntry
	allPools    []PoolID
	activeCount uint64
	totalCount  uint64

	logger *log.Logger
	sink   EventSink
}

// NewRegistry returns an empty registry.
func NewRegistry(lg *log.Logger, sink EventSink) *Registry {
	if lg == nil {
		lg = log.StandardLogger()
	}
	if sink == nil {
		sink = newLogSink(lg)
	}
	return &Registry{
		byKey:  make(map[registryKey]*RegistryEntry),
		byPool: make(map[PoolID]*RegistryEntry),
		logger: lg,
		sink:   sink,
	}
}

// PoolExists reports whether a pool is registered for the unordered
// pair (a,b) at feeBps. Order-invariant by construction (P5).
func (r *Registry) PoolExists(a, b TokenID, feeBps uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byKey[makeKey(a, b, feeBps)]
	return ok
}

// RegisterPool inserts a new entry, failing PoolAlreadyExists on a
// duplicate canonical key.
func (r *Registry) RegisterPool(poolID PoolID, a, b TokenID, feeBps uint64, creator Account, now uint64) error {
	key := makeKey(a, b, feeBps)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[key]; exists {
		return ErrPoolAlreadyExists
	}

	entry := &RegistryEntry{
		PoolID:    poolID,
		FeeBps:    feeBps,
		CreatedAt: now,
		Creator:   creator,
		IsActive:  true,
	}
	r.byKey[key] = entry
	r.byPool[poolID] = entry
	r.allPools = append(r.allPools, poolID)
	r.totalCount++
	r.activeCount++

	r.logger.WithFields(log.Fields{"pool_id": poolID, "fee_bps": feeBps}).Info("pool registered")
	r.sink.Emit(PoolRegistered{PoolID: poolID, TokenLo: key.tokenLo, TokenHi: key.tokenHi, FeeBps: feeBps, Creator: creator})
	return nil
}

// GetPool returns the pool id registered for (a,b,feeBps), failing
// PoolNotFound if absent.
func (r *Registry) GetPool(a, b TokenID, feeBps uint64) (PoolID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byKey[makeKey(a, b, feeBps)]
	if !ok {
		return PoolID{}, ErrPoolNotFound
	}
	return entry.PoolID, nil
}

// TryGetPool is GetPool without the error: (found, pool_id).
func (r *Registry) TryGetPool(a, b TokenID, feeBps uint64) (bool, PoolID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byKey[makeKey(a, b, feeBps)]
	if !ok {
		return false, PoolID{}
	}
	return true, entry.PoolID
}

// DeactivatePool marks the entry inactive. Idempotent.
func (r *Registry) DeactivatePool(a, b TokenID, feeBps uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byKey[makeKey(a, b, feeBps)]
	if !ok {
		return ErrPoolNotFound
	}
	if entry.IsActive {
		entry.IsActive = false
		r.activeCount--
		r.sink.Emit(PoolDeactivated{PoolID: entry.PoolID})
	}
	return nil
}

// ReactivatePool marks the entry active. Idempotent.
func (r *Registry) ReactivatePool(a, b TokenID, feeBps uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byKey[makeKey(a, b, feeBps)]
	if !ok {
		return ErrPoolNotFound
	}
	if !entry.IsActive {
		entry.IsActive = true
		r.activeCount++
		r.sink.Emit(PoolReactivated{PoolID: entry.PoolID})
	}
	return nil
}

// Counts returns (active_count, total_count).
func (r *Registry) Counts() (active, total uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeCount, r.totalCount
}

// AllPools returns every registered pool id, in registration order.
// Not in the distilled spec's registry contract but present in the
// teacher's AllPairs() and not excluded by any Non-goal — useful for
// any router-level UI (SPEC_FULL.md §4).
func (r *Registry) AllPools() []PoolID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PoolID, len(r.allPools))
	copy(out, r.allPools)
	return out
}

// ActivePools returns every currently active pool id.
func (r *Registry) ActivePools() []PoolID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PoolID, 0, r.activeCount)
	for _, id := range r.allPools {
		if e := r.byPool[id]; e != nil && e.IsActive {
			out = append(out, id)
		}
	}
	return out
}
