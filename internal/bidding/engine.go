package bidding

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
)

// ServiceID is the bidding engine's progress cursor key in the log.
const ServiceID = "bidding-engine"

// Engine is the log-follower handler for the bidding engine.
//
// For each event it loads the item's state, runs the pure transition, and
// writes the new state and any emitted events through the transaction the
// driver supplies. All persistence happens through that transaction, so a
// handler failure leaves nothing behind and the event is redelivered.
type Engine struct {
	states StateStore
	writer eventlog.Writer
	log    *slog.Logger
}

// NewEngine creates the bidding engine over a state store and the log
// writer it emits events through. A nil logger uses slog.Default().
func NewEngine(states StateStore, writer eventlog.Writer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		states: states,
		writer: writer,
		log:    logger.With("service", ServiceID),
	}
}

// ProgressID implements service.LogFollower.
func (e *Engine) ProgressID() string {
	return ServiceID
}

// HandleEvent implements service.LogFollower.
//
// Auction-house and UI max-bid events are dispatched to the matching
// transition; everything else, including the engine's own emitted events,
// is ignored.
func (e *Engine) HandleEvent(tx persistence.Tx, rec eventlog.Record) error {
	switch {
	case rec.Details.AuctionHouse != nil:
		ah := rec.Details.AuctionHouse
		return e.handleWith(tx, ah.Item, func(old *AuctionBiddingState) (*AuctionBiddingState, []event.Engine) {
			return HandleAuctionHouseEvent(ah.Item, old, ah.Event)
		})

	case rec.Details.UI != nil && rec.Details.UI.MaxBidSet != nil:
		mb := rec.Details.UI.MaxBidSet
		return e.handleWith(tx, mb.Item, func(old *AuctionBiddingState) (*AuctionBiddingState, []event.Engine) {
			return HandleMaxBidEvent(mb.Item, old, mb.Price)
		})

	default:
		return nil
	}
}

// handleWith runs one transition inside the driver's transaction: load
// state, apply, store the new state if any, append emitted events.
func (e *Engine) handleWith(
	tx persistence.Tx,
	item auction.ItemID,
	fn func(old *AuctionBiddingState) (*AuctionBiddingState, []event.Engine),
) error {
	old, err := e.states.LoadTx(tx, item)
	if err != nil {
		return fmt.Errorf("handle event for %q: %w", item, err)
	}

	newState, events := fn(old)

	if newState != nil {
		if err := e.states.StoreTx(tx, item, *newState); err != nil {
			return fmt.Errorf("handle event for %q: %w", item, err)
		}
	}

	if len(events) == 0 {
		return nil
	}

	details := make([]event.Details, len(events))
	for i, ev := range events {
		details[i] = event.NewEngine(ev)
		switch {
		case ev.Bid != nil:
			e.log.Info("placing bid", "item", item, "price", uint64(ev.Bid.Price))
		case ev.AuctionError != nil:
			e.log.Warn("auction error", "item", item, "error", ev.AuctionError)
		case ev.UserError != nil:
			e.log.Warn("user error", "item", item, "error", ev.UserError)
		}
	}

	if err := e.writer.Append(tx, details); err != nil {
		return fmt.Errorf("handle event for %q: %w", item, err)
	}
	return nil
}
