package event

import (
	"errors"
	"fmt"

	"github.com/roach88/sniper/internal/auction"
)

// AuctionErrorCode categorizes auction-level errors emitted to the log.
type AuctionErrorCode string

const (
	// CodeUnknownAuction indicates an auction-house event referenced an
	// item the engine holds no state for.
	CodeUnknownAuction AuctionErrorCode = "UNKNOWN_AUCTION"
)

// UserErrorCode categorizes rejections of user-submitted commands.
type UserErrorCode string

const (
	// CodeAlreadyClosed indicates a bid on an auction that has closed.
	CodeAlreadyClosed UserErrorCode = "ALREADY_CLOSED"

	// CodeTooLow indicates a bid below the minimum valid outbid price.
	CodeTooLow UserErrorCode = "TOO_LOW"
)

// AuctionError is a domain error caused by an auction-house event. It is
// written to the log as part of an Engine event rather than failing the
// transaction.
type AuctionError struct {
	Code AuctionErrorCode `json:"code"`
	Item auction.ItemID   `json:"item"`
}

// Error implements the error interface.
func (e *AuctionError) Error() string {
	switch e.Code {
	case CodeUnknownAuction:
		return fmt.Sprintf("unknown auction: %s", e.Item)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Item)
	}
}

// UserError is a rejection of a user-submitted command.
type UserError struct {
	Code UserErrorCode `json:"code"`
}

// Error implements the error interface.
func (e *UserError) Error() string {
	switch e.Code {
	case CodeAlreadyClosed:
		return "auction already closed"
	case CodeTooLow:
		return "bid is too low"
	default:
		return string(e.Code)
	}
}

// NewUnknownAuction creates the error event emitted when an auction-house
// event arrives for an item with no bidding state.
func NewUnknownAuction(item auction.ItemID) *AuctionError {
	return &AuctionError{Code: CodeUnknownAuction, Item: item}
}

// IsUnknownAuction returns true if the error is an unknown-auction error.
// Uses errors.As to handle wrapped errors.
func IsUnknownAuction(err error) bool {
	var ae *AuctionError
	if errors.As(err, &ae) {
		return ae.Code == CodeUnknownAuction
	}
	return false
}

// IsUserError returns true if the error is a user-command rejection.
// Uses errors.As to handle wrapped errors.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
