package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comalice/updatable"
)

var (
	ErrAlreadyStarted = errors.New("loop: runner already started")
	ErrNotStarted     = errors.New("loop: runner not started")
	ErrStopped        = errors.New("loop: runner stopped")
	ErrQueueFull      = errors.New("loop: call queue full")
)

// Config configures a Runner.
type Config struct {
	TickRate        time.Duration // interval between Registry.Tick calls (default 1ms)
	MaxPendingCalls int           // Do queue capacity (default 64)
}

// Report describes one tick.
type Report struct {
	Tick         uint64
	Delta        uint32
	Dispatched   bool
	Participants int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for lifecycle messages and recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithReports publishes a Report after every tick without blocking.
func WithReports(ch chan<- Report) Option {
	return func(r *Runner) {
		r.reports = ch
	}
}

// Runner calls Registry.Tick at a fixed rate on a dedicated goroutine.
type Runner struct {
	reg     *updatable.Registry
	logger  *slog.Logger
	reports chan<- Report

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  atomic.Uint64

	calls chan func(*updatable.Registry)

	mu         sync.Mutex
	started    bool
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewRunner creates a runner for reg. It does not start it.
func NewRunner(reg *updatable.Registry, cfg Config, opts ...Option) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = time.Millisecond
	}
	if cfg.MaxPendingCalls <= 0 {
		cfg.MaxPendingCalls = 64
	}

	r := &Runner{
		reg:      reg,
		tickRate: cfg.TickRate,
		calls:    make(chan func(*updatable.Registry), cfg.MaxPendingCalls),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Start launches the tick loop. The loop ends when ctx is cancelled or Stop
// is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	r.tickCtx, r.tickCancel = context.WithCancel(ctx)
	r.ticker = time.NewTicker(r.tickRate)

	r.logger.Info("loop: started", "registry", r.reg.ID().String(), "tick_rate", r.tickRate)
	go r.tickLoop()

	return nil
}

// Stop ends the tick loop and waits for the current tick to finish.
// Calls still queued with Do are discarded.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrNotStarted
	}
	r.mu.Unlock()

	r.tickCancel()
	<-r.stopped
	r.ticker.Stop()
	return nil
}

// Done is closed once the tick loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.stopped
}

// Do queues fn to run on the loop goroutine between passes. It may be called
// before Start; queued calls then run once the loop begins. fn must not block.
func (r *Runner) Do(fn func(*updatable.Registry)) error {
	select {
	case <-r.stopped:
		return ErrStopped
	default:
	}

	select {
	case r.calls <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// TickNumber returns the number of ticks processed so far.
func (r *Runner) TickNumber() uint64 {
	return r.tickNum.Load()
}

func (r *Runner) tickLoop() {
	defer close(r.stopped)

	for {
		select {
		case <-r.tickCtx.Done():
			r.logger.Info("loop: stopped", "registry", r.reg.ID().String(), "ticks", r.tickNum.Load())
			return
		case fn := <-r.calls:
			r.runCall(fn)
		case <-r.ticker.C:
			r.processTick()
		}
	}
}
