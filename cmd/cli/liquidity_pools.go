package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	core "ammengine/core"
)

func parsePositionID(s string) (core.PositionID, error) {
	var id core.PositionID
	b, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil || len(b) != len(id) {
		return id, fmt.Errorf("invalid position id %q", s)
	}
	copy(id[:], b)
	return id, nil
}

type lpController struct{ r *core.Router }

func (c lpController) AddNewPosition(poolID core.PoolID, owner core.Account, a, b, toleranceBps uint64) (*core.Position, error) {
	return c.r.AddLiquidityNewPosition(poolID, owner, a, b, toleranceBps, 0)
}

func (c lpController) AddExisting(poolID core.PoolID, pos *core.Position, a, b, toleranceBps uint64) (uint64, error) {
	return c.r.AddLiquidityExistingPosition(poolID, pos, a, b, toleranceBps)
}

func (c lpController) RemovePartial(poolID core.PoolID, pos *core.Position, burn uint64) (uint64, uint64, error) {
	return c.r.RemoveLiquidityPartial(poolID, pos, burn)
}

func (c lpController) RemoveAllAndBurn(poolID core.PoolID, pos *core.Position, minA, minB uint64) (uint64, uint64, error) {
	return c.r.RemoveAllAndBurn(poolID, pos, minA, minB)
}

func (c lpController) Claim(poolID core.PoolID, pos *core.Position) (uint64, uint64, error) {
	return c.r.ClaimFeesForPosition(poolID, pos)
}

func (c lpController) ClaimAndCompound(poolID core.PoolID, pos *core.Position, toleranceBps uint64) (uint64, uint64, uint64, error) {
	return c.r.ClaimAndCompound(poolID, pos, toleranceBps)
}

func (c lpController) Position(id core.PositionID) (*core.Position, error) { return c.r.Position(id) }

var positionsCmd = &cobra.Command{Use: "positions", Short: "Manage LP positions (add, remove, claim, compound)"}

var lpAddNewCmd = &cobra.Command{
	Use:   "add-new <poolID> <owner> <amtA> <amtB> <toleranceBps>",
	Short: "Add liquidity and mint a new position",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		owner := parseAccount(args[1])
		amtA, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		amtB, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return err
		}
		tol, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return err
		}
		pos, err := ctl.AddNewPosition(poolID, owner, amtA, amtB, tol)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "position=%s shares=%d\n", pos.ID(), pos.Shares())
		return nil
	},
}

var lpAddExistingCmd = &cobra.Command{
	Use:   "add-existing <poolID> <positionID> <amtA> <amtB> <toleranceBps>",
	Short: "Add liquidity to an existing position",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		posID, err := parsePositionID(args[1])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		amtA, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		amtB, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return err
		}
		tol, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return err
		}
		minted, err := ctl.AddExisting(poolID, pos, amtA, amtB, tol)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "minted=%d\n", minted)
		return nil
	},
}

var lpRemovePartialCmd = &cobra.Command{
	Use:   "remove-partial <poolID> <positionID> <burnShares>",
	Short: "Burn a partial share amount from a position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		posID, err := parsePositionID(args[1])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		burn, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		a, b, err := ctl.RemovePartial(poolID, pos, burn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", a, b)
		return nil
	},
}

var lpRemoveAllCmd = &cobra.Command{
	Use:   "remove-all <poolID> <positionID> <minA> <minB>",
	Short: "Withdraw a position's entire balance and burn it",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		posID, err := parsePositionID(args[1])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		minA, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		minB, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return err
		}
		a, b, err := ctl.RemoveAllAndBurn(poolID, pos, minA, minB)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", a, b)
		return nil
	},
}

var lpClaimCmd = &cobra.Command{
	Use:   "claim <poolID> <positionID>",
	Short: "Claim a position's pending fees",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		posID, err := parsePositionID(args[1])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		a, b, err := ctl.Claim(poolID, pos)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", a, b)
		return nil
	},
}

var lpCompoundCmd = &cobra.Command{
	Use:   "compound <poolID> <positionID> <toleranceBps>",
	Short: "Claim a position's pending fees and re-add them as liquidity",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		posID, err := parsePositionID(args[1])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		tol, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		newShares, a, b, err := ctl.ClaimAndCompound(poolID, pos, tol)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "new_shares=%d claimed_a=%d claimed_b=%d\n", newShares, a, b)
		return nil
	},
}

var lpInfoCmd = &cobra.Command{
	Use:   "info <positionID>",
	Short: "Show a position's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{r: Router()}
		posID, err := parsePositionID(args[0])
		if err != nil {
			return err
		}
		pos, err := ctl.Position(posID)
		if err != nil {
			return err
		}
		idxA, idxB := pos.FeeCursors()
		claimedA, claimedB := pos.ClaimedFees()
		initA, initB := pos.InitialAmounts()
		out := map[string]any{
			"id":               pos.ID(),
			"pool_id":          pos.PoolID(),
			"shares":           pos.Shares(),
			"last_fee_index_a": idxA,
			"last_fee_index_b": idxB,
			"claimed_fees_a":   claimedA,
			"claimed_fees_b":   claimedB,
			"initial_amount_a": initA,
			"initial_amount_b": initB,
		}
		format, _ := cmd.Flags().GetString("output")
		enc, err := marshalOutput(out, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(enc))
		return nil
	},
}

func init() {
	lpInfoCmd.Flags().String("output", "json", "output format: json or yaml")
	positionsCmd.AddCommand(lpAddNewCmd, lpAddExistingCmd, lpRemovePartialCmd, lpRemoveAllCmd, lpClaimCmd, lpCompoundCmd, lpInfoCmd)
}

var PositionsCmd = positionsCmd
