// AngelaMos | 2026
// debouncer.go

// Package profile coalesces rapid profile edits into one write per user.
package profile

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"
)

const (
	DefaultDelay = time.Second
	writeTimeout = 5 * time.Second
)

type Writer interface {
	WriteProfileFields(
		ctx context.Context,
		userID string,
		fields map[string]string,
	) error
}

type pendingEdit struct {
	fields map[string]string
	timer  *time.Timer
}

// Debouncer holds each user's edits until no new edit has arrived for the
// configured delay. The last value submitted for a field wins. Writes are
// fire-and-forget and failures are only logged.
type Debouncer struct {
	writer Writer
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingEdit
	closed  bool
	wg      sync.WaitGroup
}

func NewDebouncer(writer Writer, delay time.Duration, logger *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		writer:  writer,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]*pendingEdit),
	}
}

func (d *Debouncer) Submit(userID string, fields map[string]string) {
	if userID == "" || len(fields) == 0 {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.write(userID, maps.Clone(fields))
		return
	}

	if p, ok := d.pending[userID]; ok {
		maps.Copy(p.fields, fields)
		// A timer that already fired is about to flush p, which now
		// includes these fields.
		if p.timer.Stop() {
			p.timer.Reset(d.delay)
		}
		d.mu.Unlock()
		return
	}

	p := &pendingEdit{fields: maps.Clone(fields)}
	d.pending[userID] = p
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() { d.fire(userID, p) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(userID string, p *pendingEdit) {
	defer d.wg.Done()

	d.mu.Lock()
	if d.pending[userID] == p {
		delete(d.pending, userID)
	}
	fields := maps.Clone(p.fields)
	d.mu.Unlock()

	d.write(userID, fields)
}

// Pending reports how many users have unwritten edits.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush writes every pending edit now instead of waiting for its timer.
func (d *Debouncer) Flush() {
	type job struct {
		userID string
		fields map[string]string
	}

	d.mu.Lock()
	jobs := make([]job, 0, len(d.pending))
	for userID, p := range d.pending {
		if !p.timer.Stop() {
			continue
		}
		delete(d.pending, userID)
		jobs = append(jobs, job{userID: userID, fields: p.fields})
	}
	d.mu.Unlock()

	for _, j := range jobs {
		d.write(j.userID, j.fields)
		d.wg.Done()
	}
}

// Close flushes pending edits and waits for in-flight writes. Later
// submissions are written synchronously.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.Flush()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Debouncer) write(userID string, fields map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.writer.WriteProfileFields(ctx, userID, fields); err != nil {
		d.logger.Error("profile write failed",
			"user_id", userID,
			"fields", len(fields),
			"error", err,
		)
		return
	}

	d.logger.Debug("profile written", "user_id", userID, "fields", len(fields))
}
