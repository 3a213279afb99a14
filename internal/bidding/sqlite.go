package bidding

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/persistence"
)

// SQLiteStateStore persists bidding state in the bidding_state table.
// Stateless: all access goes through the supplied transaction.
type SQLiteStateStore struct{}

// NewSQLiteStateStore creates a SQLite-backed state store.
func NewSQLiteStateStore() *SQLiteStateStore {
	return &SQLiteStateStore{}
}

// Load implements StateStore.
func (s *SQLiteStateStore) Load(conn persistence.Connection, item auction.ItemID) (*AuctionBiddingState, error) {
	var state *AuctionBiddingState
	err := persistence.WithTx(conn, func(tx persistence.Tx) error {
		var err error
		state, err = s.LoadTx(tx, item)
		return err
	})
	return state, err
}

// Store implements StateStore.
func (s *SQLiteStateStore) Store(conn persistence.Connection, item auction.ItemID, state AuctionBiddingState) error {
	return persistence.WithTx(conn, func(tx persistence.Tx) error {
		return s.StoreTx(tx, item, state)
	})
}

// LoadTx implements StateStore.
func (s *SQLiteStateStore) LoadTx(tx persistence.Tx, item auction.ItemID) (*AuctionBiddingState, error) {
	sqlTx, err := persistence.SQLiteTxOf(tx)
	if err != nil {
		return nil, fmt.Errorf("load bidding state: %w", err)
	}

	var (
		maxBid int64
		bidder sql.NullString
		price  sql.NullInt64
		closed bool
	)
	err = sqlTx.QueryRow(`
		SELECT max_bid, highest_bid_bidder, highest_bid_price, closed
		FROM bidding_state
		WHERE item_id = ?
	`, string(item)).Scan(&maxBid, &bidder, &price, &closed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bidding state: %w", err)
	}

	state := AuctionBiddingState{
		MaxBid: auction.Amount(maxBid),
		State:  AuctionState{Closed: closed},
	}
	if bidder.Valid && price.Valid {
		state.State.HighestBid = &auction.BidDetails{
			Bidder: auction.Bidder(bidder.String),
			Price:  auction.Amount(price.Int64),
		}
	}
	return &state, nil
}

// StoreTx implements StateStore.
func (s *SQLiteStateStore) StoreTx(tx persistence.Tx, item auction.ItemID, state AuctionBiddingState) error {
	sqlTx, err := persistence.SQLiteTxOf(tx)
	if err != nil {
		return fmt.Errorf("store bidding state: %w", err)
	}

	var (
		bidder sql.NullString
		price  sql.NullInt64
	)
	if hb := state.State.HighestBid; hb != nil {
		bidder = sql.NullString{String: string(hb.Bidder), Valid: true}
		price = sql.NullInt64{Int64: int64(hb.Price), Valid: true}
	}

	_, err = sqlTx.Exec(`
		INSERT INTO bidding_state (item_id, max_bid, highest_bid_bidder, highest_bid_price, closed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			max_bid = excluded.max_bid,
			highest_bid_bidder = excluded.highest_bid_bidder,
			highest_bid_price = excluded.highest_bid_price,
			closed = excluded.closed
	`, string(item), int64(state.MaxBid), bidder, price, state.State.Closed)
	if err != nil {
		return fmt.Errorf("store bidding state: %w", err)
	}
	return nil
}
