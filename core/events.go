package core

import log "github.com/sirupsen/logrus"

// EventSink receives every event emitted at a successful state
// transition (spec §6). Event subscription transport is an
// out-of-scope external collaborator (spec §1); this interface is the
// seam a host wires a real transport into.
type EventSink interface {
	Emit(event any)
}

// logSink is the default EventSink: it logs every event at Info level
// through its logrus logger. It does not set a formatter; the output
// format is whatever the logger is configured with.
type logSink struct {
	logger *log.Logger
}

// newLogSink returns a logSink backed by lg, falling back to
// logrus.StandardLogger() when lg is nil — the nil-logger convention
// used throughout the teacher's constructors.
func newLogSink(lg *log.Logger) *logSink {
	if lg == nil {
		lg = log.StandardLogger()
	}
	return &logSink{logger: lg}
}

func (s *logSink) Emit(event any) {
	s.logger.WithField("event", event).Info("core event")
}

// PoolCreated is emitted when the factory mints a new pool.
type PoolCreated struct {
	PoolID    PoolID
	FeeBps    uint64
	PoolIndex uint64
	Creator   Account
}

// LiquidityAdded is emitted on any successful add_liquidity.
type LiquidityAdded struct {
	PoolID       PoolID
	AmountA      uint64
	AmountB      uint64
	SharesMinted uint64
	TotalShares  uint64
}

// LiquidityRemoved is emitted on any successful remove_liquidity.
type LiquidityRemoved struct {
	PoolID       PoolID
	AmountA      uint64
	AmountB      uint64
	SharesBurned uint64
	TotalShares  uint64
}

// SwapExecuted is emitted on any successful swap.
type SwapExecuted struct {
	PoolID     PoolID
	AmountIn   uint64
	AmountOut  uint64
	FeeAmount  uint64
	AToB       bool
}

// PositionMinted is emitted when C3 mints a new position.
type PositionMinted struct {
	PositionID PositionID
	PoolID     PoolID
	LPShares   uint64
	Owner      Account
}

// PositionBurned is emitted when C3 burns a position.
type PositionBurned struct {
	PositionID  PositionID
	PoolID      PoolID
	FinalShares uint64
}

// FeesClaimed is emitted on any successful fee claim.
type FeesClaimed struct {
	PositionID     PositionID
	PoolID         PoolID
	AmountA        uint64
	AmountB        uint64
	AutoCompounded bool
}

// FeesCompounded is emitted when a claim's proceeds are re-added as
// liquidity.
type FeesCompounded struct {
	PositionID PositionID
	PoolID     PoolID
	AmountA    uint64
	AmountB    uint64
	NewShares  uint64
}

// SharesUpdated is emitted whenever a position's share count changes.
type SharesUpdated struct {
	PositionID PositionID
	OldShares  uint64
	NewShares  uint64
}

// PoolRegistered is emitted when the registry accepts a new entry.
type PoolRegistered struct {
	PoolID   PoolID
	TokenLo  TokenID
	TokenHi  TokenID
	FeeBps   uint64
	Creator  Account
}

// PoolDeactivated is emitted when a registry entry is deactivated.
type PoolDeactivated struct {
	PoolID PoolID
}

// PoolReactivated is emitted when a registry entry is reactivated.
type PoolReactivated struct {
	PoolID PoolID
}
