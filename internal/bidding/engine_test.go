package bidding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sniper/internal/auction"
	"github.com/roach88/sniper/internal/event"
	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
)

// handleOne feeds a single event through the engine inside one memory
// transaction, the way the driver does.
func handleOne(t *testing.T, conn persistence.Connection, e *Engine, details event.Details) {
	t.Helper()
	err := persistence.WithTx(conn, func(tx persistence.Tx) error {
		return e.HandleEvent(tx, eventlog.Record{Offset: 1, ID: "test", Details: details})
	})
	require.NoError(t, err)
}

func TestEngine_ProgressID(t *testing.T) {
	e := NewEngine(NewMemoryStateStore(), eventlog.NewMemoryLog(), nil)
	assert.Equal(t, "bidding-engine", e.ProgressID())
}

func TestEngine_MaxBidCreatesStateAndOpeningBid(t *testing.T) {
	conn := persistence.NewMemory()
	states := NewMemoryStateStore()
	log := eventlog.NewMemoryLog()
	e := NewEngine(states, log, nil)

	handleOne(t, conn, e, event.NewMaxBidSet(auction.ItemBid{Item: "a1", Price: 100}))

	state, err := states.Load(conn, "a1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, auction.Amount(100), state.MaxBid)
	assert.False(t, state.State.Closed)
	assert.Nil(t, state.State.HighestBid)

	recs, err := log.Read(0, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Details.BiddingEngine)
	require.NotNil(t, recs[0].Details.BiddingEngine.Bid)
	assert.Equal(t, auction.Amount(0), recs[0].Details.BiddingEngine.Bid.Price)
}

func TestEngine_UnknownAuctionEmitsErrorOnly(t *testing.T) {
	conn := persistence.NewMemory()
	states := NewMemoryStateStore()
	log := eventlog.NewMemoryLog()
	e := NewEngine(states, log, nil)

	handleOne(t, conn, e, event.NewAuctionBid("ghost", auction.BidDetails{Bidder: auction.BidderOther, Price: 5}))

	state, err := states.Load(conn, "ghost")
	require.NoError(t, err)
	assert.Nil(t, state, "no state may be persisted for an unknown item")

	recs, err := log.Read(0, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Details.BiddingEngine)
	require.NotNil(t, recs[0].Details.BiddingEngine.AuctionError)
	assert.Equal(t, event.CodeUnknownAuction, recs[0].Details.BiddingEngine.AuctionError.Code)
}

func TestEngine_IgnoresOwnEmittedEvents(t *testing.T) {
	conn := persistence.NewMemory()
	states := NewMemoryStateStore()
	log := eventlog.NewMemoryLog()
	e := NewEngine(states, log, nil)

	handleOne(t, conn, e, event.NewEngineBid(auction.ItemBid{Item: "a1", Price: 1}))

	state, err := states.Load(conn, "a1")
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.Equal(t, 0, log.Len())
}

func TestEngine_FullScenarioThroughHandler(t *testing.T) {
	conn := persistence.NewMemory()
	states := NewMemoryStateStore()
	log := eventlog.NewMemoryLog()
	e := NewEngine(states, log, nil)

	handleOne(t, conn, e, event.NewMaxBidSet(auction.ItemBid{Item: "a1", Price: 100}))
	handleOne(t, conn, e, event.NewAuctionBid("a1", auction.BidDetails{Bidder: auction.BidderOther, Price: 0}))
	handleOne(t, conn, e, event.NewAuctionBid("a1", auction.BidDetails{Bidder: auction.BidderSniper, Price: 1}))
	handleOne(t, conn, e, event.NewAuctionClosed("a1"))

	state, err := states.Load(conn, "a1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.State.Closed)
	require.NotNil(t, state.State.HighestBid)
	assert.Equal(t, auction.BidderSniper, state.State.HighestBid.Bidder)
	assert.Equal(t, auction.Amount(1), state.State.HighestBid.Price)

	// Emitted: opening bid 0, then outbid 1. Nothing while winning or
	// after close.
	recs, err := log.Read(0, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, auction.Amount(0), recs[0].Details.BiddingEngine.Bid.Price)
	assert.Equal(t, auction.Amount(1), recs[1].Details.BiddingEngine.Bid.Price)
}
