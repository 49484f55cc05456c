package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"bolada-backend/internal/services"
)

// RoundScheduler keeps the jackpot round cycle moving: every tick it
// draws the winner of an expired round and opens the next one. It is a
// fallback, not the only driver, any API call that touches the round
// does the same resolution, so multiple backend instances can run the
// scheduler concurrently.
type RoundScheduler struct {
	jackpotService *services.JackpotService
	interval       time.Duration
	stopChan       chan struct{}
}

// NewRoundScheduler creates a new round scheduler job
func NewRoundScheduler(jackpotService *services.JackpotService, interval time.Duration) *RoundScheduler {
	return &RoundScheduler{
		jackpotService: jackpotService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the round scheduling loop
func (rs *RoundScheduler) Start() {
	log.Printf("[RoundScheduler] Starting round scheduler (interval: %v)", rs.interval)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rs.tick()
		case <-rs.stopChan:
			log.Println("[RoundScheduler] Stopping round scheduler")
			return
		}
	}
}

// Stop stops the round scheduling loop
func (rs *RoundScheduler) Stop() {
	close(rs.stopChan)
}

func (rs *RoundScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// EnsureActiveRound resolves an expired round (drawing its winner)
	// before opening the next one, so one call per tick is enough.
	if _, err := rs.jackpotService.EnsureActiveRound(ctx); err != nil {
		// Losing the draw race to another instance is not a fault.
		if errors.Is(err, services.ErrTimerNotExpired) {
			return
		}
		log.Printf("[RoundScheduler] Error advancing round cycle: %v", err)
	}
}
