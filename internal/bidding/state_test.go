package bidding

import (
	"testing"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/event"
)

func bid(bidder auction.Bidder, price auction.Amount) *auction.BidDetails {
	return &auction.BidDetails{Bidder: bidder, Price: price}
}

func bidEvent(bidder auction.Bidder, price auction.Amount) event.AuctionEvent {
	return event.AuctionEvent{Bid: bid(bidder, price)}
}

var closedEvent = event.AuctionEvent{Closed: true}

func TestHandleAuctionEvent(t *testing.T) {
	tests := []struct {
		name  string
		state AuctionState
		ev    event.AuctionEvent
		want  AuctionState
	}{
		{
			"first bid is recorded",
			AuctionState{},
			bidEvent(auction.BidderOther, 5),
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
		},
		{
			"higher bid replaces",
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
			bidEvent(auction.BidderOther, 6),
			AuctionState{HighestBid: bid(auction.BidderOther, 6)},
		},
		{
			"equal bid ignored",
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
			bidEvent(auction.BidderOther, 5),
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
		},
		{
			"lower bid ignored",
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
			bidEvent(auction.BidderOther, 3),
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
		},
		{
			"closed is recorded",
			AuctionState{HighestBid: bid(auction.BidderOther, 5)},
			closedEvent,
			AuctionState{HighestBid: bid(auction.BidderOther, 5), Closed: true},
		},
		{
			"closed is idempotent",
			AuctionState{Closed: true},
			closedEvent,
			AuctionState{Closed: true},
		},
		{
			"bid after close ignored",
			AuctionState{HighestBid: bid(auction.BidderOther, 5), Closed: true},
			bidEvent(auction.BidderOther, 100),
			AuctionState{HighestBid: bid(auction.BidderOther, 5), Closed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.HandleAuctionEvent(tt.ev)
			if !got.Equal(tt.want) {
				t.Errorf("HandleAuctionEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandleAuctionEvent_MonotoneImprovement(t *testing.T) {
	// Whatever the arrival order, the stored highest bid is the best
	// strictly-improving bid seen so far.
	state := AuctionState{}
	prices := []auction.Amount{3, 1, 7, 7, 2, 10, 9}

	var best auction.Amount
	for _, p := range prices {
		state = state.HandleAuctionEvent(bidEvent(auction.BidderOther, p))
		if p > best {
			best = p
		}
		if state.HighestBid == nil || state.HighestBid.Price != best {
			t.Fatalf("after bid %d: highest = %+v, want price %d", p, state.HighestBid, best)
		}
	}
}

func TestNextBid(t *testing.T) {
	tests := []struct {
		name     string
		state    AuctionState
		maxPrice auction.Amount
		want     auction.Amount
		wantOK   bool
	}{
		{"closed auction never bids", AuctionState{Closed: true}, 100, 0, false},
		{"no bids yet opens at zero", AuctionState{}, 100, 0, true},
		{"we already win", AuctionState{HighestBid: bid(auction.BidderSniper, 5)}, 100, 0, false},
		{"outbid within ceiling", AuctionState{HighestBid: bid(auction.BidderOther, 5)}, 100, 6, true},
		{"outbid at exact ceiling", AuctionState{HighestBid: bid(auction.BidderOther, 99)}, 100, 100, true},
		{"ceiling reached gives up", AuctionState{HighestBid: bid(auction.BidderOther, 100)}, 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.state.NextBid(tt.maxPrice)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextBid(%d) = (%d, %v), want (%d, %v)",
					tt.maxPrice, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextBid_ClosedForAnyCeiling(t *testing.T) {
	state := AuctionState{HighestBid: bid(auction.BidderOther, 5), Closed: true}
	for _, max := range []auction.Amount{0, 5, 6, 1 << 40} {
		if _, ok := state.NextBid(max); ok {
			t.Errorf("NextBid(%d) on closed auction wants to bid", max)
		}
	}
}

func TestHandleAuctionHouseEvent_UnknownAuction(t *testing.T) {
	newState, events := HandleAuctionHouseEvent("a1", nil, bidEvent(auction.BidderOther, 5))

	if newState != nil {
		t.Errorf("unknown auction persisted state %+v", newState)
	}
	if len(events) != 1 || events[0].AuctionError == nil {
		t.Fatalf("events = %+v, want exactly one auction error", events)
	}
	if events[0].AuctionError.Code != event.CodeUnknownAuction {
		t.Errorf("code = %q, want %q", events[0].AuctionError.Code, event.CodeUnknownAuction)
	}
	if events[0].AuctionError.Item != "a1" {
		t.Errorf("item = %q, want a1", events[0].AuctionError.Item)
	}
}

func TestHandleAuctionHouseEvent_Idempotent(t *testing.T) {
	old := &AuctionBiddingState{MaxBid: 100}

	first, events := HandleAuctionHouseEvent("a1", old, bidEvent(auction.BidderOther, 5))
	if first == nil {
		t.Fatal("first application persisted nothing")
	}
	if len(events) != 1 || events[0].Bid == nil {
		t.Fatalf("first application events = %+v, want one bid", events)
	}

	// Redelivery of the same event against the stored state is a no-op.
	second, events := HandleAuctionHouseEvent("a1", first, bidEvent(auction.BidderOther, 5))
	if second != nil {
		t.Errorf("redelivery persisted state %+v", second)
	}
	if len(events) != 0 {
		t.Errorf("redelivery emitted %+v", events)
	}
}

func TestHandleMaxBidEvent_RaisingCeilingWhileWinningIsSilent(t *testing.T) {
	old := &AuctionBiddingState{
		MaxBid: 100,
		State:  AuctionState{HighestBid: bid(auction.BidderSniper, 10)},
	}

	newState, events := HandleMaxBidEvent("a1", old, 200)
	if newState != nil {
		t.Errorf("persisted state %+v while already winning", newState)
	}
	if len(events) != 0 {
		t.Errorf("emitted %+v while already winning", events)
	}
}

func TestHandleMaxBidEvent_SameCeilingIsNoOp(t *testing.T) {
	old := &AuctionBiddingState{MaxBid: 100}

	newState, events := HandleMaxBidEvent("a1", old, 100)
	if newState != nil || len(events) != 0 {
		t.Errorf("unchanged ceiling: state %+v events %+v, want nothing", newState, events)
	}
}

// TestBiddingScenario walks the full worked example: a fresh item gets a
// ceiling of 100, an opening bid, an outbid war, a winning position, and
// finally the close.
func TestBiddingScenario(t *testing.T) {
	const item auction.ItemID = "A1"

	// Operator sets max bid 100 on an unknown item.
	state, events := HandleMaxBidEvent(item, nil, 100)
	if state == nil {
		t.Fatal("max bid on fresh item persisted nothing")
	}
	if !state.Equal(AuctionBiddingState{MaxBid: 100}) {
		t.Fatalf("state = %+v, want {max_bid:100, no highest bid, open}", state)
	}
	if len(events) != 1 || events[0].Bid == nil || events[0].Bid.Price != 0 {
		t.Fatalf("events = %+v, want opening bid of 0", events)
	}

	// Another bidder bids 0; we outbid with 1 (<= 100).
	state, events = HandleAuctionHouseEvent(item, state, bidEvent(auction.BidderOther, 0))
	if state == nil || state.State.HighestBid == nil || state.State.HighestBid.Price != 0 {
		t.Fatalf("state = %+v, want highest bid {other, 0}", state)
	}
	if len(events) != 1 || events[0].Bid == nil || events[0].Bid.Price != 1 {
		t.Fatalf("events = %+v, want bid of 1", events)
	}

	// Our own bid of 1 lands; we are winning, no further bid.
	state, events = HandleAuctionHouseEvent(item, state, bidEvent(auction.BidderSniper, 1))
	if state == nil || state.State.HighestBid == nil || state.State.HighestBid.Bidder != auction.BidderSniper {
		t.Fatalf("state = %+v, want highest bid by sniper", state)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none while winning", events)
	}

	// The auction closes; no more bids possible.
	state, events = HandleAuctionHouseEvent(item, state, closedEvent)
	if state == nil || !state.State.Closed {
		t.Fatalf("state = %+v, want closed", state)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none on close", events)
	}
	if _, ok := state.State.NextBid(1 << 40); ok {
		t.Error("NextBid() wants to bid after close")
	}
}

func TestValidateMaxBid(t *testing.T) {
	tests := []struct {
		name     string
		state    AuctionState
		price    auction.Amount
		wantCode event.UserErrorCode
	}{
		{"open auction accepts", AuctionState{}, 10, ""},
		{"closed auction rejects", AuctionState{Closed: true}, 10, event.CodeAlreadyClosed},
		{"below next valid bid rejects", AuctionState{HighestBid: bid(auction.BidderOther, 10)}, 10, event.CodeTooLow},
		{"at next valid bid accepts", AuctionState{HighestBid: bid(auction.BidderOther, 10)}, 11, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.ValidateMaxBid(tt.price)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateMaxBid(%d) = %v, want nil", tt.price, err)
				}
				return
			}
			if err == nil || err.Code != tt.wantCode {
				t.Errorf("ValidateMaxBid(%d) = %v, want code %q", tt.price, err, tt.wantCode)
			}
		})
	}
}
