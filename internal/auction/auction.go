// Package auction contains the domain value types shared by every part of
// the sniper: item identities, amounts, bidder identity and the pricing
// rules that decide what counts as a valid outbid.
package auction

import "fmt"

// ItemID identifies a single auction.
type ItemID string

// Amount is a non-negative integral currency unit (e.g. cents).
type Amount uint64

// Bidder distinguishes our own automated agent from everyone else.
type Bidder string

const (
	// BidderSniper is the automated agent itself.
	BidderSniper Bidder = "sniper"
	// BidderOther is any bidder that is not us.
	BidderOther Bidder = "other"
)

// BidDetails is one observed bid on an auction: who placed it and for how
// much.
type BidDetails struct {
	Bidder Bidder `json:"bidder"`
	Price  Amount `json:"price"`
}

// IsOutbiddedBy reports whether a bid at the given price beats this one.
// Matching the current price is not enough; the auction house requires a
// strictly higher offer.
func (b BidDetails) IsOutbiddedBy(price Amount) bool {
	return price > b.Price
}

// NextValidBid returns the minimum price that would outbid this bid.
func (b BidDetails) NextValidBid() Amount {
	return b.Price + 1
}

func (b BidDetails) String() string {
	return fmt.Sprintf("%s@%d", b.Bidder, b.Price)
}

// ItemBid is an intent to place a bid of Price on Item.
type ItemBid struct {
	Item  ItemID `json:"item"`
	Price Amount `json:"price"`
}
