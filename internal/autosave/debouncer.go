package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultQuietPeriod = 3 * time.Second

// SaveFunc persists the latest content. It runs on the timer goroutine or
// the Flush caller; calls never overlap.
type SaveFunc func(ctx context.Context, content string) error

type Debouncer struct {
	quiet  time.Duration
	save   SaveFunc
	logger *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	content string
	stopped bool
	seq     uint64

	// saveMu serializes saves; savedSeq is the newest pickup persisted.
	saveMu   sync.Mutex
	savedSeq uint64
}

type Opts struct {
	// QuietPeriod defaults to DefaultQuietPeriod.
	QuietPeriod time.Duration
	Save        SaveFunc
	Logger      *zap.Logger
}

func New(opts Opts) *Debouncer {
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Debouncer{
		quiet:  quiet,
		save:   opts.Save,
		logger: logger,
	}
}

// Notify records a content change and re-arms the quiet-period timer.
// Only the last change in a quiet window is saved.
func (d *Debouncer) Notify(content string) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	d.content = content
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.onTimer(gen) })
}

// Pending reports whether a change is waiting to be saved.
func (d *Debouncer) Pending() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush saves pending content immediately and disarms the timer.
func (d *Debouncer) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return nil
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = false
	d.seq++
	seq, content := d.seq, d.content
	d.mu.Unlock()

	return d.run(ctx, seq, content)
}

// Stop cancels any pending save. No save fires after Stop returns, apart
// from one that had already started.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) onTimer(gen uint64) {
	d.mu.Lock()
	// A newer Notify, Flush or Stop superseded this timer.
	if d.stopped || gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.seq++
	seq, content := d.seq, d.content
	d.mu.Unlock()

	_ = d.run(context.Background(), seq, content)
}

// run saves content picked up as seq. A save that reaches the lock after a
// newer one has been persisted is dropped.
func (d *Debouncer) run(ctx context.Context, seq uint64, content string) error {
	if d.save == nil {
		return nil
	}
	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	if seq <= d.savedSeq {
		d.logger.Debug("autosave superseded", zap.Uint64("seq", seq))
		return nil
	}
	if err := d.save(ctx, content); err != nil {
		// Not retried; the next edit schedules another attempt.
		d.logger.Warn("autosave failed", zap.Error(err), zap.Int("bytes", len(content)))
		return err
	}
	d.savedSeq = seq
	d.logger.Debug("autosaved", zap.Int("bytes", len(content)))
	return nil
}
