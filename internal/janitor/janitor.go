package janitor

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger removes practices that were generated but never answered.
type Purger interface {
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Janitor periodically clears read-ahead practices the client abandoned.
type Janitor struct {
	scheduler *gocron.Scheduler
	purger    Purger
	maxAge    time.Duration
	timeout   time.Duration
}

func New(purger Purger, maxAge time.Duration) *Janitor {
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		maxAge:    maxAge,
		timeout:   time.Minute,
	}
}

// Start schedules the hourly purge without blocking.
func (j *Janitor) Start() error {
	if _, err := j.scheduler.Every(1).Hour().Do(j.RunOnce); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	return nil
}

func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

// RunOnce performs a single purge and returns how many practices went.
func (j *Janitor) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.purger.PurgeStale(ctx, j.maxAge)
	if err != nil {
		log.Printf("Error purging stale practices: %v", err)
		return 0
	}
	if deleted > 0 {
		log.Printf("Purged %d stale practices older than %s", deleted, j.maxAge)
	}
	return deleted
}
