// Package core implements the automated market maker engine: constant
// product and stable-swap pools, transferable LP positions backed by a
// lazy fee-index accounting scheme, a typed pool registry, and the
// router-level workflows that compose them.
package core

import (
	"bytes"

	"github.com/google/uuid"
)

// BPSDenominator is the basis-point scale used throughout the engine:
// 1 BPS = 1/BPSDenominator.
const BPSDenominator = 10_000

// MinimumLiquidity is permanently locked out of any position the first
// time a pool is seeded. It forecloses the "donate to reserves before
// first LP" share-price inflation attack.
const MinimumLiquidity = 1_000

// ProtocolFeeBps is the share of every swap fee routed to the pool's
// protocol bucket instead of the LP fee index; the remainder accrues
// to liquidity providers.
const ProtocolFeeBps = 1_000

// MaxSlippageBps bounds the slippage tolerance accepted by C2 helpers.
const MaxSlippageBps = 5_000

// DefaultPriceImpactBps is the suggested default price-impact cap a
// host may enforce; the core itself never enforces it implicitly.
const DefaultPriceImpactBps = 500

// CPMaxFeeBps is the maximum swap fee a constant-product pool may
// charge (10%).
const CPMaxFeeBps = 1_000

// SSMaxFeeBps is the maximum swap fee a stable-swap pool may charge
// (1%).
const SSMaxFeeBps = 100

// SSMaxAmp is the maximum amplification coefficient accepted by a
// stable-swap pool.
const SSMaxAmp = 10_000

// SSDefaultAmp and SSDefaultFeeBps are the suggested defaults for new
// stable-swap pools (a host is free to pick any valid value instead).
const (
	SSDefaultAmp    = 100
	SSDefaultFeeBps = 4
)

// CPFeeTiers enumerates the only fee tiers the factory (C8) will mint
// a constant-product pool at.
var CPFeeTiers = [3]uint64{5, 30, 100}

// TokenID is an opaque, totally-ordered token symbol. It is large
// enough to hold either a 20-byte EVM-style address or a 32-byte
// Solana-style mint, zero-padded; only identity and order matter to
// the engine.
type TokenID [32]byte

// Compare returns -1, 0, or 1 as t is less than, equal to, or greater
// than other, using byte-wise lexicographic order.
func (t TokenID) Compare(other TokenID) int {
	return bytes.Compare(t[:], other[:])
}

// TokenIDFromBytes left-aligns b into a TokenID, zero-padding the
// remainder.
func TokenIDFromBytes(b []byte) TokenID {
	var t TokenID
	copy(t[:], b)
	return t
}

// Account is an opaque identifier for a pool creator, position owner,
// or fee recipient. The engine never inspects its contents; custody
// and authorization are the host's responsibility (spec §1).
type Account [20]byte

// PoolID uniquely identifies a pool, assigned at creation.
type PoolID uuid.UUID

// NewPoolID returns a fresh, collision-resistant pool identifier.
func NewPoolID() PoolID { return PoolID(uuid.New()) }

func (p PoolID) String() string { return uuid.UUID(p).String() }

// PositionID uniquely identifies an LP position, assigned at mint.
type PositionID uuid.UUID

// NewPositionID returns a fresh, collision-resistant position identifier.
func NewPositionID() PositionID { return PositionID(uuid.New()) }

func (p PositionID) String() string { return uuid.UUID(p).String() }

// PoolKind distinguishes constant-product pools from stable-swap pools.
type PoolKind uint8

const (
	PoolKindCP PoolKind = iota
	PoolKindSS
)

func (k PoolKind) String() string {
	switch k {
	case PoolKindCP:
		return "constant-product"
	case PoolKindSS:
		return "stable-swap"
	default:
		return "unknown"
	}
}
