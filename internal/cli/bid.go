package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/persistence"
)

// BidOptions holds flags for the bid command.
type BidOptions struct {
	*RootOptions
	Force bool
}

// NewBidCommand creates the bid command.
func NewBidCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BidOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bid <item> <max-price>",
		Short: "Set the maximum bid for an item",
		Long: `Append a max-bid command to the event log. The bidding engine picks
it up and bids on the item up to the given ceiling.

The command is rejected up front when the auction is already known to be
closed or the ceiling cannot beat the current highest bid; --force
appends it anyway (the engine silently ignores ineffective ceilings).`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBid(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "append even if the bid looks invalid")

	return cmd
}

func runBid(opts *BidOptions, cmd *cobra.Command, itemArg, priceArg string) error {
	price, err := strconv.ParseUint(priceArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid max price %q: %w", priceArg, err)
	}
	item := auction.ItemID(itemArg)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	// Surface obvious rejections before appending; the engine itself
	// ignores invalid ceilings silently.
	state, err := b.states.Load(b.conn, item)
	if err != nil {
		return fmt.Errorf("load bidding state for %q: %w", item, err)
	}
	if state != nil && !opts.Force {
		if uerr := state.State.ValidateMaxBid(auction.Amount(price)); uerr != nil {
			return fmt.Errorf("max bid for %q rejected: %w (use --force to append anyway)", item, uerr)
		}
	}

	bid := auction.ItemBid{Item: item, Price: auction.Amount(price)}
	err = persistence.WithTx(b.conn, func(tx persistence.Tx) error {
		return b.log.Append(tx, []event.Details{event.NewMaxBidSet(bid)})
	})
	if err != nil {
		return fmt.Errorf("append max bid: %w", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(
		fmt.Sprintf("max bid for %s set to %s", item, FormatAmount(bid.Price)),
		bid,
	)
}
