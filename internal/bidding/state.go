// Package bidding contains the sniper's decision core: a pure state
// machine over per-item auction state, and the log-follower handler that
// runs it inside the transactional pipeline.
//
// The transition functions do no I/O. They take the current state and an
// event and return the new state plus any events to emit, which makes
// them trivially unit-testable and safe to re-apply on at-least-once
// redelivery: a second application of the same event is a no-op (state
// unchanged, nothing persisted, nothing emitted).
package bidding

import (
	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/event"
)

// AuctionState is what we have observed about one auction so far.
//
// INVARIANTS:
//   - Closed never reverts to false.
//   - HighestBid only moves from nil to a bid, or to a strictly
//     outbidding one.
type AuctionState struct {
	HighestBid *auction.BidDetails `json:"highest_bid,omitempty"`
	Closed     bool                `json:"closed"`
}

// Equal reports whether two auction states are the same.
func (s AuctionState) Equal(o AuctionState) bool {
	if s.Closed != o.Closed {
		return false
	}
	if (s.HighestBid == nil) != (o.HighestBid == nil) {
		return false
	}
	return s.HighestBid == nil || *s.HighestBid == *o.HighestBid
}

// HandleAuctionEvent applies one auction-house event and returns the new
// state.
//
// Closed is idempotent. A bid is recorded only while the auction is open
// and only if it outbids the current highest bid (or there is none);
// anything else leaves the state unchanged.
func (s AuctionState) HandleAuctionEvent(ev event.AuctionEvent) AuctionState {
	if ev.Closed {
		s.Closed = true
		return s
	}
	if ev.Bid == nil || s.Closed {
		return s
	}
	if s.HighestBid == nil || s.HighestBid.IsOutbiddedBy(ev.Bid.Price) {
		bid := *ev.Bid
		s.HighestBid = &bid
	}
	return s
}

// NextBid returns the price we should bid given our ceiling, and whether
// to bid at all.
//
// No bid when the auction is closed, when we are already the highest
// bidder, or when outbidding would exceed maxPrice (we give up silently
// at our ceiling). An auction with no bids yet gets an opening bid of 0.
func (s AuctionState) NextBid(maxPrice auction.Amount) (auction.Amount, bool) {
	if s.Closed {
		return 0, false
	}

	switch {
	case s.HighestBid == nil:
		return 0, true
	case s.HighestBid.Bidder == auction.BidderSniper:
		// Our bid is the highest already.
		return 0, false
	default:
		outbid := s.HighestBid.NextValidBid()
		if outbid <= maxPrice {
			return outbid, true
		}
		return 0, false
	}
}

// ValidateMaxBid checks a user-submitted max bid against the observed
// auction state and returns the rejection, if any.
//
// The live engine transition deliberately ignores invalid input instead
// of emitting these; the taxonomy is surfaced at the producer edge (the
// bid command) so operators get feedback before the event is appended.
func (s AuctionState) ValidateMaxBid(price auction.Amount) *event.UserError {
	if s.Closed {
		return &event.UserError{Code: event.CodeAlreadyClosed}
	}
	if s.HighestBid != nil && price < s.HighestBid.NextValidBid() {
		return &event.UserError{Code: event.CodeTooLow}
	}
	return nil
}

// AuctionBiddingState is the per-item unit of storage: the operator's
// ceiling plus the observed auction state.
type AuctionBiddingState struct {
	MaxBid auction.Amount `json:"max_bid"`
	State  AuctionState   `json:"state"`
}

// Equal reports whether two bidding states are the same.
func (s AuctionBiddingState) Equal(o AuctionBiddingState) bool {
	return s.MaxBid == o.MaxBid && s.State.Equal(o.State)
}

// HandleAuctionHouseEvent applies an auction-house event to the embedded
// auction state, keeping the ceiling.
func (s AuctionBiddingState) HandleAuctionHouseEvent(ev event.AuctionEvent) AuctionBiddingState {
	return AuctionBiddingState{
		MaxBid: s.MaxBid,
		State:  s.State.HandleAuctionEvent(ev),
	}
}

// WithMaxBid returns the state with the ceiling replaced.
func (s AuctionBiddingState) WithMaxBid(price auction.Amount) AuctionBiddingState {
	return AuctionBiddingState{
		MaxBid: price,
		State:  s.State,
	}
}

// HandleAuctionHouseEvent is the transition for one auction-house event.
//
// A nil old state means the auction is unknown: a single unknown-auction
// error event is emitted and nothing is persisted. Otherwise the event is
// applied; if the state changed, the new state is returned for persisting
// and at most one bid intent is emitted. An unchanged state persists and
// emits nothing, which is what makes redelivery harmless.
func HandleAuctionHouseEvent(
	item auction.ItemID,
	old *AuctionBiddingState,
	ev event.AuctionEvent,
) (*AuctionBiddingState, []event.Engine) {
	if old == nil {
		return nil, []event.Engine{{AuctionError: event.NewUnknownAuction(item)}}
	}

	newState := old.HandleAuctionHouseEvent(ev)
	if newState.Equal(*old) {
		return nil, nil
	}

	return &newState, bidEvents(item, newState)
}

// HandleMaxBidEvent is the transition for an operator max-bid change.
//
// A nil old state defaults to a fresh one (the item becomes known from
// this point on). The change is persisted and acted on only if it
// actually changed the state and we are not already the winning bidder;
// raising the ceiling while we hold the highest bid must not place a
// redundant bid.
func HandleMaxBidEvent(
	item auction.ItemID,
	old *AuctionBiddingState,
	price auction.Amount,
) (*AuctionBiddingState, []event.Engine) {
	var current AuctionBiddingState
	if old != nil {
		current = *old
	}

	newState := current.WithMaxBid(price)
	if newState.Equal(current) {
		return nil, nil
	}
	if hb := newState.State.HighestBid; hb != nil && hb.Bidder == auction.BidderSniper {
		return nil, nil
	}

	return &newState, bidEvents(item, newState)
}

func bidEvents(item auction.ItemID, s AuctionBiddingState) []event.Engine {
	price, ok := s.State.NextBid(s.MaxBid)
	if !ok {
		return nil
	}
	return []event.Engine{{Bid: &auction.ItemBid{Item: item, Price: price}}}
}
