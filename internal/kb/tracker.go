package kb

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// trackerQueueSize is the buffer size for pending search events. When
	// full, events are dropped.
	trackerQueueSize = 1000

	// trackerBatchSize is the number of events that triggers an immediate flush.
	trackerBatchSize = 10

	// trackerFlushInterval is how often pending events are flushed.
	trackerFlushInterval = 50 * time.Millisecond
)

// HistoryRecorder receives search events. Store implementations record them
// synchronously; SearchTracker queues them.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, rec SearchRecord) error
}

// SearchTracker records search history in the background so searches never
// wait on history writes.
type SearchTracker struct {
	recorder HistoryRecorder
	queue    chan SearchRecord
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	log      *logrus.Entry
}

// NewSearchTracker starts a tracker writing to recorder. Call Stop to flush
// and shut it down.
func NewSearchTracker(recorder HistoryRecorder, log *logrus.Entry) *SearchTracker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	t := &SearchTracker{
		recorder: recorder,
		queue:    make(chan SearchRecord, trackerQueueSize),
		stopChan: make(chan struct{}),
		log:      log.WithField("component", "search-tracker"),
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// RecordSearch queues rec without blocking. It never fails; events are
// dropped when the queue is full or the tracker is stopped.
func (t *SearchTracker) RecordSearch(_ context.Context, rec SearchRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	select {
	case <-t.stopChan:
		t.log.WithField("tenant", rec.TenantID).Debug("tracker stopped, dropping search event")
		return nil
	default:
	}

	select {
	case t.queue <- rec:
	default:
		t.log.WithField("tenant", rec.TenantID).Warn("search history queue full, dropping event")
	}
	return nil
}

// Stop flushes pending events and stops the background worker.
func (t *SearchTracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Pending returns the number of queued events.
func (t *SearchTracker) Pending() int {
	return len(t.queue)
}

func (t *SearchTracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(trackerFlushInterval)
	defer ticker.Stop()

	batch := make([]SearchRecord, 0, trackerBatchSize)

	for {
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
			if len(batch) >= trackerBatchSize {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-t.stopChan:
			for {
				select {
				case rec := <-t.queue:
					batch = append(batch, rec)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes events with a fresh context; the searches that produced them
// may be long gone.
func (t *SearchTracker) flush(events []SearchRecord) {
	ctx := context.Background()
	for _, rec := range events {
		if err := t.recorder.RecordSearch(ctx, rec); err != nil {
			t.log.WithError(err).Warn("failed to record search")
		}
	}
}
