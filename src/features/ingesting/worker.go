package ingesting

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Workers drains watcher events through the ingestion state machine. The
// pool is bounded; per-destination serialization happens inside the
// service, so workers never step on each other's target paths.
type Workers struct {
	service *Service
	events  <-chan FileEvent
	count   int
	wg      sync.WaitGroup
}

// NewWorkers creates the ingestion worker pool.
func NewWorkers(service *Service, events <-chan FileEvent, count int) *Workers {
	if count < 1 {
		count = 1
	}
	return &Workers{service: service, events: events, count: count}
}

// Start launches the workers. They run until the context is cancelled or
// the event channel closes; in-flight ingestions always reach a consistent
// state before a worker exits.
func (w *Workers) Start(ctx context.Context) {
	for i := 0; i < w.count; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	slog.Info("Ingestion workers started", "count", w.count)
}

// Wait blocks until every worker has drained and exited.
func (w *Workers) Wait() {
	w.wg.Wait()
}

func (w *Workers) run(ctx context.Context, id int) {
	defer w.wg.Done()
	logger := slog.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Worker stopping")
			return
		case event, ok := <-w.events:
			if !ok {
				logger.Debug("Event channel closed, worker stopping")
				return
			}
			if event.EventType != FileCreated {
				continue
			}
			// An ingestion that has started runs to a consistent end
			// even during shutdown; cancellation is only observed
			// between events.
			if _, err := w.service.IngestFile(context.WithoutCancel(ctx), event.Path); err != nil {
				var rej *Rejection
				if errors.As(err, &rej) {
					logger.Warn("File rejected", "file", event.Path, "reason", rej.Reason)
				} else {
					logger.Error("Ingestion failed", "file", event.Path, "error", err)
				}
			}
		}
	}
}
