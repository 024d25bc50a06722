// cmd/cli/amm.go – Cobra CLI glue for the core AMM router.
// -----------------------------------------------------------
// Structure of this file
//   • Shared router bootstrap (lazy-initialised, fixture-free — the
//     core has no on-disk state, spec §1 persistence is out of scope)
//   • Controller (thin orchestrator around core.Router)
//   • CLI Commands   – declared top-to-bottom for discoverability
//   • Consolidation  – all commands mounted under root "amm" and
//                      exported via AMMCmd for import into your main index.
//
// Usage once injected into main root:
//     $ ammd amm create   <tokenA> <tokenB> <feeBps> <amtA> <amtB>
//     $ ammd amm quote     <poolID> <amtIn> <a-to-b>
//     $ ammd amm swap      <poolID> <amtIn> <a-to-b> <slipBps>
//     $ ammd amm pools
// -----------------------------------------------------------
package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	core "ammengine/core"
)

// marshalOutput encodes v per format ("yaml" or anything else for
// JSON) for printing by the listing/info commands.
func marshalOutput(v any, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

//---------------------------------------------------------------------
// Shared router bootstrap
//---------------------------------------------------------------------

var (
	routerOnce sync.Once
	router     *core.Router
)

// Router returns the process-wide router, lazily constructing it on
// first use. The CLI is a demonstration harness against an in-process
// core instance, not a wire/RPC surface (spec §1) — there is nothing
// to dial and nothing to bootstrap from a fixture file.
func Router() *core.Router {
	routerOnce.Do(func() {
		router = core.NewRouter(core.Account{}, nil, nil)
	})
	return router
}

func parseToken(s string) core.TokenID {
	if b, err := hex.DecodeString(strings.TrimPrefix(s, "0x")); err == nil && len(b) > 0 {
		return core.TokenIDFromBytes(b)
	}
	return core.TokenIDFromBytes([]byte(s))
}

func parseAccount(s string) core.Account {
	var a core.Account
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(b) != len(a) {
		copy(a[:], s)
		return a
	}
	copy(a[:], b)
	return a
}

func parsePoolID(s string) (core.PoolID, error) {
	var id core.PoolID
	b, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil || len(b) != len(id) {
		return id, fmt.Errorf("invalid pool id %q", s)
	}
	copy(id[:], b)
	return id, nil
}

//---------------------------------------------------------------------
// Controller – provides user-oriented façade, not exposing internals
//---------------------------------------------------------------------

type AMMController struct{ r *core.Router }

func (c *AMMController) CreatePool(tokenA, tokenB core.TokenID, feeBps, amtA, amtB uint64, creator, owner core.Account, now uint64) (*core.CPPool, *core.Position, error) {
	return c.r.CreatePoolFull(tokenA, tokenB, feeBps, amtA, amtB, creator, owner, now)
}

func (c *AMMController) Quote(poolID core.PoolID, amtIn uint64, aToB bool) (uint64, uint64, error) {
	pool, err := c.r.Pool(poolID)
	if err != nil {
		return 0, 0, err
	}
	return pool.GetAmountOut(amtIn, aToB)
}

func (c *AMMController) Swap(poolID core.PoolID, amtIn, slipBps uint64, aToB bool) (uint64, error) {
	return c.r.SwapAutoSlippage(poolID, amtIn, slipBps, aToB)
}

func (c *AMMController) AllPools() []core.PoolID { return c.r.Registry().AllPools() }

//---------------------------------------------------------------------
// CLI command declarations
//---------------------------------------------------------------------

var ammCmd = &cobra.Command{
	Use:   "amm",
	Short: "Automated-market-maker utilities (create, quote, swap, pools)",
}

// create -----------------------------------------------------------------
var ammCreateCmd = &cobra.Command{
	Use:   "create <tokenA> <tokenB> <feeBps> <amtA> <amtB>",
	Short: "Create and seed a constant-product pool",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := &AMMController{r: Router()}
		tokenA, tokenB := parseToken(args[0]), parseToken(args[1])
		feeBps, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("feeBps uint64: %w", err)
		}
		amtA, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("amtA uint64: %w", err)
		}
		amtB, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("amtB uint64: %w", err)
		}
		creator, _ := cmd.Flags().GetString("creator")
		pool, pos, err := ctrl.CreatePool(tokenA, tokenB, feeBps, amtA, amtB, parseAccount(creator), parseAccount(creator), 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pool=%s position=%s\n", pool.ID(), pos.ID())
		return nil
	},
}

// quote ----------------------------------------------------------------------
var ammQuoteCmd = &cobra.Command{
	Use:   "quote <poolID> <amtIn> <a-to-b>",
	Short: "Estimate swap output without executing the trade",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := &AMMController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		amtIn, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("amtIn uint64: %w", err)
		}
		aToB, err := strconv.ParseBool(args[2])
		if err != nil {
			return fmt.Errorf("a-to-b bool: %w", err)
		}
		out, fee, err := ctrl.Quote(poolID, amtIn, aToB)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "amount_out=%d fee=%d\n", out, fee)
		return nil
	},
}

// swap ----------------------------------------------------------------------
var ammSwapCmd = &cobra.Command{
	Use:   "swap <poolID> <amtIn> <a-to-b> <slipBps>",
	Short: "Swap with an automatically derived min-out slippage guard",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := &AMMController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		amtIn, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("amtIn uint64: %w", err)
		}
		aToB, err := strconv.ParseBool(args[2])
		if err != nil {
			return fmt.Errorf("a-to-b bool: %w", err)
		}
		slipBps, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("slipBps uint64: %w", err)
		}
		out, err := ctrl.Swap(poolID, amtIn, slipBps, aToB)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "amount_out=%d\n", out)
		return nil
	},
}

// pools ----------------------------------------------------------------------
var ammPoolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List all registered pools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl := &AMMController{r: Router()}
		ids := ctrl.AllPools()
		format, _ := cmd.Flags().GetString("output")
		enc, err := marshalOutput(ids, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(enc))
		return nil
	},
}

//---------------------------------------------------------------------
// Consolidation & export
//---------------------------------------------------------------------

func init() {
	ammCreateCmd.Flags().String("creator", "", "creator/owner address (hex or raw string)")
	ammPoolsCmd.Flags().String("output", "json", "output format: json or yaml")

	ammCmd.AddCommand(ammCreateCmd)
	ammCmd.AddCommand(ammQuoteCmd)
	ammCmd.AddCommand(ammSwapCmd)
	ammCmd.AddCommand(ammPoolsCmd)
}

// Export for main-index import: rootCmd.AddCommand(cli.AMMCmd)
var AMMCmd = ammCmd
