package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wedding-seating/models"
)

type SaveStatus string

const (
	SaveIdle     SaveStatus = "idle"
	SaveSaving   SaveStatus = "saving"
	SaveSaved    SaveStatus = "saved"
	SaveError    SaveStatus = "error"
	SaveConflict SaveStatus = "conflict"
)

type ArrangementSaver interface {
	Save(ctx context.Context, a *models.Arrangement) (int64, error)
}

// SaveQueue persists arrangement snapshots for one event. Scheduled snapshots
// are debounced and coalesced so only the latest one is written, and a single
// worker goroutine keeps at most one write in flight. Failed writes are not
// retried; the status reports them until StatusResetAfter elapses.
type SaveQueue struct {
	Delay            time.Duration
	StatusResetAfter time.Duration

	saver   ArrangementSaver
	log     logrus.FieldLogger
	onSaved func(version int64)

	mu         sync.Mutex
	pending    *models.Arrangement
	version    int64
	status     SaveStatus
	lastErr    error
	statusSeq  int
	timer      *time.Timer
	resetTimer *time.Timer

	kick     chan struct{}
	flushReq chan chan error
	StopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewSaveQueue creates a queue whose first write expects the stored document
// to be at version.
func NewSaveQueue(saver ArrangementSaver, version int64, log logrus.FieldLogger) *SaveQueue {
	return &SaveQueue{
		Delay:            100 * time.Millisecond,
		StatusResetAfter: 3 * time.Second,
		saver:            saver,
		log:              log,
		version:          version,
		status:           SaveIdle,
		kick:             make(chan struct{}, 1),
		flushReq:         make(chan chan error),
		StopChan:         make(chan struct{}),
		done:             make(chan struct{}),
	}
}

// OnSaved registers fn to run with the new version after each successful write.
func (q *SaveQueue) OnSaved(fn func(version int64)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onSaved = fn
}

func (q *SaveQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go func() {
		defer close(q.done)
		for {
			select {
			case <-q.kick:
				q.drain(ctx)
			case reply := <-q.flushReq:
				reply <- q.drain(ctx)
			case <-q.StopChan:
				q.drain(ctx)
				return
			}
		}
	}()
}

// Stop writes whatever is still pending and stops the worker.
func (q *SaveQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.StopChan)
	})
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		q.drain(context.Background())
		return
	}
	<-q.done
}

// Schedule replaces the pending snapshot with a and (re)arms the debounce timer.
func (q *SaveQueue) Schedule(a *models.Arrangement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = a
	if q.timer == nil {
		q.timer = time.AfterFunc(q.Delay, q.signal)
		return
	}
	q.timer.Reset(q.Delay)
}

func (q *SaveQueue) signal() {
	select {
	case q.kick <- struct{}{}:
	default:
	}
}

// Flush writes the pending snapshot now and waits for the result. It returns
// nil when nothing was pending.
func (q *SaveQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		return q.drain(ctx)
	}

	reply := make(chan error, 1)
	select {
	case q.flushReq <- reply:
	case <-q.StopChan:
		return ErrQueueStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *SaveQueue) Status() (SaveStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status, q.lastErr
}

func (q *SaveQueue) Version() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.version
}

func (q *SaveQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending != nil
}

func (q *SaveQueue) drain(ctx context.Context) error {
	q.mu.Lock()
	a := q.pending
	q.pending = nil
	if q.timer != nil {
		q.timer.Stop()
	}
	if a == nil {
		q.mu.Unlock()
		return nil
	}
	a.Version = q.version
	q.setStatusLocked(SaveSaving, nil, false)
	q.mu.Unlock()

	version, err := q.saver.Save(ctx, a)

	q.mu.Lock()
	var onSaved func(int64)
	switch {
	case err == nil:
		q.version = version
		q.setStatusLocked(SaveSaved, nil, true)
		onSaved = q.onSaved
	case errors.Is(err, ErrVersionConflict):
		q.setStatusLocked(SaveConflict, err, true)
	default:
		q.setStatusLocked(SaveError, err, true)
	}
	q.mu.Unlock()

	if err != nil {
		q.log.WithFields(logrus.Fields{
			"event_id": a.EventID,
			"version":  a.Version,
		}).WithError(err).Error("arrangement save failed")
		return err
	}
	if onSaved != nil {
		onSaved(version)
	}
	return nil
}

// setStatusLocked records a status; transient ones fall back to idle after
// StatusResetAfter unless a newer status replaced them first.
func (q *SaveQueue) setStatusLocked(status SaveStatus, err error, transient bool) {
	q.statusSeq++
	q.status = status
	q.lastErr = err
	if q.resetTimer != nil {
		q.resetTimer.Stop()
		q.resetTimer = nil
	}
	if !transient {
		return
	}
	seq := q.statusSeq
	q.resetTimer = time.AfterFunc(q.StatusResetAfter, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.statusSeq == seq {
			q.status = SaveIdle
			q.lastErr = nil
		}
	})
}
