package bidding

import (
	"fmt"
	"sync"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/persistence"
)

// StateStore persists one AuctionBiddingState per item.
//
// LoadTx/StoreTx must run inside the transaction supplied by the driver
// so state mutation commits or rolls back together with the emitted
// events and the progress cursor. Load/Store are one-operation
// conveniences. A nil state from Load means the item is unknown.
type StateStore interface {
	Load(conn persistence.Connection, item auction.ItemID) (*AuctionBiddingState, error)
	Store(conn persistence.Connection, item auction.ItemID, state AuctionBiddingState) error
	LoadTx(tx persistence.Tx, item auction.ItemID) (*AuctionBiddingState, error)
	StoreTx(tx persistence.Tx, item auction.ItemID, state AuctionBiddingState) error
}

// MemoryStateStore is the in-memory state store used in tests.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[auction.ItemID]AuctionBiddingState
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[auction.ItemID]AuctionBiddingState)}
}

// Load implements StateStore.
func (s *MemoryStateStore) Load(conn persistence.Connection, item auction.ItemID) (*AuctionBiddingState, error) {
	var state *AuctionBiddingState
	err := persistence.WithTx(conn, func(tx persistence.Tx) error {
		var err error
		state, err = s.LoadTx(tx, item)
		return err
	})
	return state, err
}

// Store implements StateStore.
func (s *MemoryStateStore) Store(conn persistence.Connection, item auction.ItemID, state AuctionBiddingState) error {
	return persistence.WithTx(conn, func(tx persistence.Tx) error {
		return s.StoreTx(tx, item, state)
	})
}

// LoadTx implements StateStore.
func (s *MemoryStateStore) LoadTx(tx persistence.Tx, item auction.ItemID) (*AuctionBiddingState, error) {
	if !persistence.IsMemoryTx(tx) {
		return nil, fmt.Errorf("memory state store: transaction is not a memory transaction (got %T)", tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[item]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// StoreTx implements StateStore.
func (s *MemoryStateStore) StoreTx(tx persistence.Tx, item auction.ItemID, state AuctionBiddingState) error {
	if !persistence.IsMemoryTx(tx) {
		return fmt.Errorf("memory state store: transaction is not a memory transaction (got %T)", tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[item] = state
	return nil
}
