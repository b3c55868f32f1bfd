package jobs

import (
	"context"
	"log"
	"time"
)

// Rebuilder runs one full index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// RebuilderFunc adapts a function to the Rebuilder interface.
type RebuilderFunc func(ctx context.Context) error

func (f RebuilderFunc) Rebuild(ctx context.Context) error { return f(ctx) }

// Worker periodically rebuilds the indexes so they track the upstream
// feeds without operator involvement.
type Worker struct {
	rebuilder Rebuilder
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(rebuilder Rebuilder, interval time.Duration) *Worker {
	return &Worker{
		rebuilder: rebuilder,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start begins the worker's rebuild loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Reindex worker started with interval: %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Reindex worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Reindex worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.rebuilder.Rebuild(ctx); err != nil {
				log.Printf("Error rebuilding indexes: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Reindex worker shutdown complete")
}
