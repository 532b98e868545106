package renderdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"

	"github.com/cordata-io/renderdoc/internal/hints"
)

// Pool capacity and lifecycle defaults.
const (
	DefaultMinSize               = 1
	DefaultMaxSize               = 4
	DefaultAcquireTimeout        = 30 * time.Second
	DefaultIdleTimeout           = 5 * time.Minute
	DefaultMaxRendersPerInstance = 100

	reaperMinInterval = 30 * time.Second
)

// PoolOptions configures a BrowserPool. Zero values resolve to the
// defaults in NewBrowserPool.
type PoolOptions struct {
	MinSize               int
	MaxSize               int
	AcquireTimeout        time.Duration
	IdleTimeout           time.Duration // 0 means "use DefaultIdleTimeout"; use IdleTimeoutDisabled to disable reaping.
	IdleTimeoutDisabled   bool
	MaxRendersPerInstance int // 0 disables recycling.
	Logger                *slog.Logger
	Metrics               *Metrics
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MinSize <= 0 {
		o.MinSize = DefaultMinSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = DefaultAcquireTimeout
	}
	if o.IdleTimeout <= 0 && !o.IdleTimeoutDisabled {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// pooledBrowser owns a headless browser handle plus the render count and
// idle timestamp the pool uses to decide recycling and reaping.
type pooledBrowser struct {
	browser        *rod.Browser
	renderCount    int64
	lastReturnedAt time.Time
}

// BrowserPool is the bounded, self-healing pool of headless-browser
// instances. A single mutex guards the idle queue, the tracking map, and
// the disposed flag; the semaphore independently handles capacity.
type BrowserPool struct {
	opts PoolOptions

	sem *semaphore.Weighted

	mu       sync.Mutex
	idle     []*pooledBrowser // newest-first
	tracked  map[*rod.Browser]*pooledBrowser
	active   int
	disposed bool

	reaperCancel context.CancelFunc
	reaperDone   chan struct{}

	logger *slog.Logger
}

// Lease grants temporary, non-owning access to a pooled browser. It must
// be terminated exactly once via Release or Invalidate.
type Lease struct {
	pool       *BrowserPool
	pb         *pooledBrowser
	mu         sync.Mutex
	terminated bool
}

// NewBrowserPool constructs a BrowserPool and starts its idle reaper
// (unless IdleTimeoutDisabled is set). No browsers are launched until
// the first Acquire.
func NewBrowserPool(opts PoolOptions) (*BrowserPool, error) {
	opts = opts.withDefaults()

	p := &BrowserPool{
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.MaxSize)),
		tracked: make(map[*rod.Browser]*pooledBrowser),
		logger:  opts.Logger.With("component", "browser_pool"),
	}

	if !opts.IdleTimeoutDisabled {
		reapCtx, cancel := context.WithCancel(context.Background())
		p.reaperCancel = cancel
		p.reaperDone = make(chan struct{})
		go p.reapLoop(reapCtx)
	}

	return p, nil
}

// Acquire waits for pool capacity and returns a lease on a browser
// instance, launching a new one if none is idle.
func (p *BrowserPool) Acquire(ctx context.Context) (*Lease, error) {
	p.mu.Lock()
	disposed := p.disposed
	p.mu.Unlock()
	if disposed {
		return nil, NewRenderError(KindPoolDisposed, fmt.Errorf("%w%s", ErrPoolDisposed, hints.ForPoolDisposed()))
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.opts.AcquireTimeout)
	defer cancel()

	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, NewRenderError(KindCancelled, ErrCancelled)
		}
		return nil, NewRenderError(KindPoolTimeout, fmt.Errorf("%w%s", ErrPoolTimeout, hints.ForTimeout()))
	}

	pb, err := p.acquireBrowser()
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}

	p.mu.Lock()
	p.active++
	p.mu.Unlock()
	p.recordGauges()

	return &Lease{pool: p, pb: pb}, nil
}

// acquireBrowser dequeues a live idle browser or launches a new one,
// discarding any dequeued instance that fails its liveness check.
func (p *BrowserPool) acquireBrowser() (*pooledBrowser, error) {
	for {
		p.mu.Lock()
		if len(p.idle) == 0 {
			p.mu.Unlock()
			break
		}
		pb := p.idle[0]
		p.idle = p.idle[1:]
		p.mu.Unlock()

		if isBrowserAlive(pb.browser) {
			return pb, nil
		}
		p.discardTracked(pb)
	}

	browser, err := launchBrowser()
	if err != nil {
		return nil, NewRenderError(KindRenderLoad, fmt.Errorf("launching browser: %w", err))
	}
	pb := &pooledBrowser{browser: browser, lastReturnedAt: time.Now()}

	p.mu.Lock()
	p.tracked[browser] = pb
	p.mu.Unlock()

	return pb, nil
}

// Release terminates the lease by returning its browser to the pool.
// Calling Release or Invalidate a second time on the same lease is a
// no-op.
func (l *Lease) Release() {
	l.mu.Lock()
	if l.terminated {
		l.mu.Unlock()
		return
	}
	l.terminated = true
	l.mu.Unlock()
	l.pool.release(l.pb)
}

// Invalidate terminates the lease by discarding its browser instead of
// returning it to the pool.
func (l *Lease) Invalidate() {
	l.mu.Lock()
	if l.terminated {
		l.mu.Unlock()
		return
	}
	l.terminated = true
	l.mu.Unlock()
	l.pool.invalidate(l.pb)
}

// Browser returns the leased browser handle.
func (l *Lease) Browser() *rod.Browser { return l.pb.browser }

func (p *BrowserPool) release(pb *pooledBrowser) {
	pb.renderCount++
	pb.lastReturnedAt = time.Now()

	p.mu.Lock()
	p.active--
	p.mu.Unlock()

	recycle := p.opts.MaxRendersPerInstance > 0 && pb.renderCount >= int64(p.opts.MaxRendersPerInstance)
	if recycle {
		p.logger.Info("recycling browser at render limit", "renderCount", pb.renderCount)
		p.discardTracked(pb)
	} else {
		p.mu.Lock()
		p.idle = append([]*pooledBrowser{pb}, p.idle...) // newest-first
		p.mu.Unlock()
	}
	p.sem.Release(1)
	p.recordGauges()
}

func (p *BrowserPool) invalidate(pb *pooledBrowser) {
	p.mu.Lock()
	p.active--
	p.mu.Unlock()

	p.discardTracked(pb)
	p.sem.Release(1)
	p.recordGauges()
}

// discardTracked closes pb's browser and removes it from the tracking
// map. Safe to call with or without the browser present in p.idle.
func (p *BrowserPool) discardTracked(pb *pooledBrowser) {
	p.mu.Lock()
	delete(p.tracked, pb.browser)
	p.mu.Unlock()
	_ = pb.browser.Close()
}

// PoolSize reports the configured hard capacity.
func (p *BrowserPool) PoolSize() int { return p.opts.MaxSize }

// ActiveCount reports the number of outstanding leases.
func (p *BrowserPool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// TrackedCount reports every live browser instance, idle or leased.
func (p *BrowserPool) TrackedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tracked)
}

// Shutdown stops the reaper, drains every tracked browser best-effort,
// and marks the pool disposed so no further Acquire succeeds.
func (p *BrowserPool) Shutdown() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	browsers := make([]*rod.Browser, 0, len(p.tracked))
	for b := range p.tracked {
		browsers = append(browsers, b)
	}
	p.tracked = make(map[*rod.Browser]*pooledBrowser)
	p.idle = nil
	p.mu.Unlock()

	if p.reaperCancel != nil {
		p.reaperCancel()
		<-p.reaperDone
	}

	for _, b := range browsers {
		_ = b.Close()
	}
	p.logger.Info("browser pool shut down", "closed", len(browsers))
}

// reapLoop is the idle reaper described below: it wakes every
// max(30s, idleTimeout/2), drops idle entries older than idleTimeout
// while keeping at least minSize tracked, and re-enqueues survivors
// newest-first.
func (p *BrowserPool) reapLoop(ctx context.Context) {
	defer close(p.reaperDone)

	interval := p.opts.IdleTimeout / 2
	if interval < reaperMinInterval {
		interval = reaperMinInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.reapPass()
		}
	}
}

func (p *BrowserPool) reapPass() {
	p.mu.Lock()
	snapshot := p.idle
	p.idle = nil
	trackedCount := len(p.tracked)
	p.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].lastReturnedAt.After(snapshot[j].lastReturnedAt)
	})

	cutoff := time.Now().Add(-p.opts.IdleTimeout)
	var survivors []*pooledBrowser
	reaped := 0
	// Walk oldest-first (the snapshot is newest-first).
	for i := len(snapshot) - 1; i >= 0; i-- {
		pb := snapshot[i]
		if pb.lastReturnedAt.Before(cutoff) && trackedCount-reaped > p.opts.MinSize {
			p.discardTracked(pb)
			reaped++
			continue
		}
		survivors = append([]*pooledBrowser{pb}, survivors...)
	}

	if reaped > 0 {
		p.logger.Info("idle reaper pass", "reaped", reaped, "survivors", len(survivors))
	}

	p.mu.Lock()
	p.idle = append(survivors, p.idle...)
	p.mu.Unlock()
	p.recordGauges()
}

func (p *BrowserPool) recordGauges() {
	if p.opts.Metrics == nil {
		return
	}
	p.mu.Lock()
	idle := len(p.idle)
	tracked := len(p.tracked)
	active := p.active
	p.mu.Unlock()
	p.opts.Metrics.setPoolGauges(active, idle, tracked)
}

// ErrBrowserConnect is raised when the browser process cannot be launched
// or connected to.
var ErrBrowserConnect = errors.New("failed to connect to browser")

// launchBrowser starts a headless Chrome/Chromium process with
// container-friendly flags, grounded on html2pdf.go's ensureBrowser
// launcher configuration.
func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-sync").
		Set("no-first-run").
		Set("mute-audio")

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}
	return browser, nil
}

// isBrowserAlive pings browser with a lightweight CDP round-trip to
// decide whether a dequeued idle instance is still usable: if it
// reports disconnected, the caller discards it and launches a fresh one.
func isBrowserAlive(browser *rod.Browser) bool {
	_, err := proto.TargetGetTargets{}.Call(browser)
	return err == nil
}
