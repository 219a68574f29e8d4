/*
refresher.go - Background overdue-status sweep

PURPOSE:
  Periodically rewrites the persisted status column of unsettled payment
  records from the calendar, so list filtering stays cheap and an item
  that crossed its due date overnight shows up as overdue without
  waiting for a write to touch it.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Delegates the actual sweep to the store's RefreshStatuses
  - Invalidates cached schedule responses whenever anything changed

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the refresher is active (default: true)

USAGE:
  refresher := NewStatusRefresher(st, handler)
  refresher.Start()
  // ... later
  refresher.Stop()
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/biglong-lab/woyu-money-sub010/store"
)

// StatusRefresher keeps persisted payment statuses in sync with the
// calendar.
type StatusRefresher struct {
	Store         store.PaymentStore
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatusRefresher creates a new refresher.
func NewStatusRefresher(st store.PaymentStore, handler *Handler) *StatusRefresher {
	return &StatusRefresher{
		Store:         st,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the background sweep.
func (sr *StatusRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if !sr.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}

	sr.ticker = time.NewTicker(sr.CheckInterval)
	sr.wg.Add(1)
	go sr.run()

	log.Printf("[Refresher] Started with check interval: %v", sr.CheckInterval)
}

// Stop halts the background sweep and waits for it to finish.
func (sr *StatusRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker == nil {
		return
	}
	sr.ticker.Stop()
	close(sr.stop)
	sr.wg.Wait()
	sr.ticker = nil
}

func (sr *StatusRefresher) run() {
	defer sr.wg.Done()

	// Sweep once on startup so a restart catches up immediately.
	sr.RunOnce(context.Background())

	for {
		select {
		case <-sr.ticker.C:
			sr.RunOnce(context.Background())
		case <-sr.stop:
			return
		}
	}
}

// RunOnce performs a single sweep. Exposed for manual triggering.
func (sr *StatusRefresher) RunOnce(ctx context.Context) {
	asOf := sr.Handler.Now()

	changed, err := sr.Store.RefreshStatuses(ctx, asOf)
	if err != nil {
		log.Printf("[Refresher] Sweep failed: %v", err)
		return
	}
	if changed > 0 {
		log.Printf("[Refresher] Updated %d payment statuses", changed)
		sr.Handler.InvalidateSchedules()
	}
}
