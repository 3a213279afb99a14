package cli

import (
	"fmt"

	"github.com/roach88/sniper/internal/bidding"
	"github.com/roach88/sniper/internal/config"
	"github.com/roach88/sniper/internal/eventlog"
	"github.com/roach88/sniper/internal/persistence"
	"github.com/roach88/sniper/internal/progress"
)

// backend bundles one coherent set of stores over a single persistence
// backend. Backends are chosen at startup from the configuration and
// never mixed.
type backend struct {
	conn    persistence.Connection
	log     eventlog.Log
	tracker progress.Tracker
	states  bidding.StateStore
}

// openBackend opens the backend the configuration selects.
func openBackend(cfg config.Config) (*backend, error) {
	if cfg.Database == config.MemoryDatabase {
		return &backend{
			conn:    persistence.NewMemory(),
			log:     eventlog.NewMemoryLog(),
			tracker: progress.NewMemoryTracker(),
			states:  bidding.NewMemoryStateStore(),
		}, nil
	}

	conn, err := persistence.OpenSQLite(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.Database, err)
	}
	return &backend{
		conn:    conn,
		log:     eventlog.NewSQLiteLog(conn),
		tracker: progress.NewSQLiteTracker(),
		states:  bidding.NewSQLiteStateStore(),
	}, nil
}

func (b *backend) Close() error {
	return b.conn.Close()
}
