// Package event defines the wire envelope for every record in the event
// log: auction-house updates, UI commands and the bidding engine's own
// output. Exactly one category is set per Details value.
package event

import (
	"fmt"

	"github.com/roach88/sniper/internal/auction"
)

// Details is the tagged union of event payloads carried by the log.
// Exactly one field is non-nil.
type Details struct {
	AuctionHouse  *AuctionHouse `json:"auction_house,omitempty"`
	UI            *UI           `json:"ui,omitempty"`
	BiddingEngine *Engine       `json:"bidding_engine,omitempty"`
}

// AuctionHouse is an event observed at the auction house for one item.
type AuctionHouse struct {
	Item  auction.ItemID `json:"item"`
	Event AuctionEvent   `json:"event"`
}

// AuctionEvent is what happened at the auction house: a new bid, or the
// auction closing. Exactly one field is set.
type AuctionEvent struct {
	Bid    *auction.BidDetails `json:"bid,omitempty"`
	Closed bool                `json:"closed,omitempty"`
}

// UI is an operator-originated event.
type UI struct {
	MaxBidSet *auction.ItemBid `json:"max_bid_set,omitempty"`
}

// Engine is an event emitted by the bidding engine. Exactly one field is
// set.
type Engine struct {
	Bid          *auction.ItemBid `json:"bid,omitempty"`
	AuctionError *AuctionError    `json:"auction_error,omitempty"`
	UserError    *UserError       `json:"user_error,omitempty"`
}

// Kind returns a short category label, used for display.
func (d Details) Kind() string {
	switch {
	case d.AuctionHouse != nil:
		return "auction_house"
	case d.UI != nil:
		return "ui"
	case d.BiddingEngine != nil:
		return "bidding_engine"
	default:
		return "unknown"
	}
}

func (d Details) String() string {
	switch {
	case d.AuctionHouse != nil:
		if d.AuctionHouse.Event.Closed {
			return fmt.Sprintf("auction_house: %s closed", d.AuctionHouse.Item)
		}
		if b := d.AuctionHouse.Event.Bid; b != nil {
			return fmt.Sprintf("auction_house: %s bid %s", d.AuctionHouse.Item, b)
		}
		return fmt.Sprintf("auction_house: %s (empty)", d.AuctionHouse.Item)
	case d.UI != nil && d.UI.MaxBidSet != nil:
		return fmt.Sprintf("ui: max bid for %s set to %d", d.UI.MaxBidSet.Item, d.UI.MaxBidSet.Price)
	case d.BiddingEngine != nil:
		e := d.BiddingEngine
		switch {
		case e.Bid != nil:
			return fmt.Sprintf("bidding_engine: bid %d on %s", e.Bid.Price, e.Bid.Item)
		case e.AuctionError != nil:
			return fmt.Sprintf("bidding_engine: %v", e.AuctionError)
		case e.UserError != nil:
			return fmt.Sprintf("bidding_engine: %v", e.UserError)
		}
	}
	return "unknown event"
}

// NewAuctionBid wraps an observed auction-house bid for the log.
func NewAuctionBid(item auction.ItemID, bid auction.BidDetails) Details {
	return Details{AuctionHouse: &AuctionHouse{Item: item, Event: AuctionEvent{Bid: &bid}}}
}

// NewAuctionClosed wraps an auction-house close notification for the log.
func NewAuctionClosed(item auction.ItemID) Details {
	return Details{AuctionHouse: &AuctionHouse{Item: item, Event: AuctionEvent{Closed: true}}}
}

// NewMaxBidSet wraps an operator max-bid command for the log.
func NewMaxBidSet(bid auction.ItemBid) Details {
	return Details{UI: &UI{MaxBidSet: &bid}}
}

// NewEngineBid wraps a bid intent emitted by the bidding engine.
func NewEngineBid(bid auction.ItemBid) Details {
	return Details{BiddingEngine: &Engine{Bid: &bid}}
}

// NewEngine wraps an engine event (bid or error) for the log.
func NewEngine(e Engine) Details {
	return Details{BiddingEngine: &e}
}
