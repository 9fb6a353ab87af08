// Package cdp is the web engine behind the tab strip. Every web tab is its
// own Chromium target driven through chromedp.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

const (
	domContentProgress = 60
	eventQueueSize     = 256
	defaultLoadTimeout = 30 * time.Second
)

var ErrNotConnected = errors.New("cdp: engine is not connected")

// Sink receives page lifecycle reports. Calls for one tab arrive in order
// from a single goroutine.
type Sink interface {
	OnLoadStarted(h tabs.Handle)
	OnLoadProgress(h tabs.Handle, percent int)
	OnLoadFinished(h tabs.Handle, success bool)
	OnURLChanged(h tabs.Handle, url, title string)
	OnNavigationRequested(h tabs.Handle, url string)
	OnUnsupportedContent(h tabs.Handle, url string)
}

// Engine implements tabs.Engine on top of a remote Chromium.
type Engine struct {
	cdpURL      string
	registry    *TabRegistry
	loadTimeout time.Duration
	cache       atomic.Bool

	mu            sync.RWMutex
	sink          Sink
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	tabs          map[tabs.Handle]*tabContext
}

type tabContext struct {
	handle tabs.Handle

	// nav serialises navigations started from our side.
	nav       sync.Mutex
	mainFrame cdp.FrameID
	own       atomic.Bool

	// qmu guards the target context and the report queue.
	qmu    sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	queue  chan func()
	closed bool
}

func NewEngine(cdpURL string, registry *TabRegistry, cacheEnabled bool) *Engine {
	e := &Engine{
		cdpURL:      cdpURL,
		registry:    registry,
		loadTimeout: defaultLoadTimeout,
		tabs:        make(map[tabs.Handle]*tabContext),
	}
	e.cache.Store(cacheEnabled)
	return e
}

// Bind sets the receiver of page reports. It must be called before the
// first Load.
func (e *Engine) Bind(sink Sink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Connect attaches to the browser behind the CDP URL.
func (e *Engine) Connect(ctx context.Context) error {
	slog.Info("Connecting to Chromium", "url", e.cdpURL)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), e.cdpURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	connectCtx, cancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-connectCtx.Done():
		}
	}()

	if err := chromedp.Run(connectCtx, network.Enable()); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	if err := chromedp.Run(browserCtx, network.SetCacheDisabled(!e.cache.Load())); err != nil {
		slog.Warn("Failed to apply cache setting", "error", err)
	}

	e.mu.Lock()
	e.allocCtx, e.allocCancel = allocCtx, allocCancel
	e.browserCtx, e.browserCancel = browserCtx, browserCancel
	e.mu.Unlock()

	slog.Info("Connected to Chromium", "cache_enabled", e.cache.Load())
	return nil
}

var _ tabs.Engine = (*Engine)(nil)

// Shutdown detaches every tab and drops the browser connection.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	open := make([]*tabContext, 0, len(e.tabs))
	for _, tc := range e.tabs {
		open = append(open, tc)
	}
	e.tabs = make(map[tabs.Handle]*tabContext)
	browserCancel, allocCancel := e.browserCancel, e.allocCancel
	e.mu.Unlock()

	for _, tc := range open {
		tc.shutdown()
		e.registry.Remove(tc.handle)
	}
	if browserCancel != nil {
		browserCancel()
	}
	if allocCancel != nil {
		allocCancel()
	}
	slog.Info("CDP engine closed")
	return nil
}

func (e *Engine) Targets() []TargetInfo { return e.registry.List() }

// tab returns the tab context for h, creating its event queue on first use.
func (e *Engine) tab(h tabs.Handle) (*tabContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browserCtx == nil || e.sink == nil {
		return nil, ErrNotConnected
	}
	if tc, ok := e.tabs[h]; ok {
		return tc, nil
	}
	tc := &tabContext{handle: h, queue: make(chan func(), eventQueueSize)}
	e.tabs[h] = tc
	go tc.drain()
	return tc, nil
}

func (e *Engine) existing(h tabs.Handle) (*tabContext, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tc, ok := e.tabs[h]
	return tc, ok
}

func (e *Engine) report() Sink {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sink
}

// attach opens the Chromium target for tc. Callers hold tc.nav.
func (e *Engine) attach(tc *tabContext) error {
	if tc.target() != nil {
		return nil
	}
	e.mu.RLock()
	browserCtx := e.browserCtx
	e.mu.RUnlock()

	ctx, cancel := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(ctx,
		network.Enable(),
		network.SetCacheDisabled(!e.cache.Load()),
		page.Enable(),
	); err != nil {
		cancel()
		return fmt.Errorf("failed to open tab target: %w", err)
	}

	var tree *page.FrameTree
	if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		tree, err = page.GetFrameTree().Do(ctx)
		return err
	})); err == nil && tree != nil && tree.Frame != nil {
		tc.mainFrame = tree.Frame.ID
	}

	if !tc.setTarget(ctx, cancel) {
		return errors.New("tab closed while attaching")
	}
	targetID := chromedp.FromContext(ctx).Target.TargetID
	info := e.registry.Register(targetID, tc.handle, "")
	chromedp.ListenTarget(ctx, e.listener(tc))
	slog.Info("Attached tab target", "tab", tc.handle, "target_id", info.TargetID)
	return nil
}

// Load navigates h to url. It returns immediately; results go to the sink.
func (e *Engine) Load(h tabs.Handle, url string) {
	e.navigate(h, "load", func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Navigate(url))
	})
}

func (e *Engine) Reload(h tabs.Handle) {
	e.navigate(h, "reload", func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Reload())
	})
}

func (e *Engine) Back(h tabs.Handle)    { e.history(h, -1) }
func (e *Engine) Forward(h tabs.Handle) { e.history(h, 1) }

func (e *Engine) navigate(h tabs.Handle, kind string, run func(ctx context.Context) error) {
	tc, err := e.tab(h)
	if err != nil {
		slog.Warn("navigation without engine", "tab", h, "kind", kind, "error", err)
		return
	}
	sink := e.report()
	go func() {
		tc.nav.Lock()
		defer tc.nav.Unlock()

		tc.post(func() { sink.OnLoadStarted(h) })
		if err := e.attach(tc); err != nil {
			slog.Warn("tab attach failed", "tab", h, "error", err)
			tc.post(func() { sink.OnLoadFinished(h, false) })
			return
		}

		tc.own.Store(true)
		defer tc.own.Store(false)

		ctx, cancel := context.WithTimeout(tc.target(), e.loadTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			slog.Debug("navigation failed", "tab", h, "kind", kind, "error", err)
			tc.post(func() { sink.OnLoadFinished(h, false) })
			return
		}
		e.commit(tc, ctx)
	}()
}

// commit reports the committed location of a finished load.
func (e *Engine) commit(tc *tabContext, ctx context.Context) {
	var loc, title string
	if err := chromedp.Run(ctx, chromedp.Location(&loc), chromedp.Title(&title)); err != nil {
		slog.Debug("read location failed", "tab", tc.handle, "error", err)
	}
	e.registry.UpdateURL(tc.handle, loc)
	sink := e.report()
	h := tc.handle
	tc.post(func() {
		sink.OnURLChanged(h, loc, title)
		sink.OnLoadProgress(h, 100)
		sink.OnLoadFinished(h, true)
	})
}

func (e *Engine) history(h tabs.Handle, delta int) {
	tc, ok := e.existing(h)
	if !ok {
		return
	}
	sink := e.report()
	go func() {
		tc.nav.Lock()
		defer tc.nav.Unlock()
		tctx := tc.target()
		if tctx == nil {
			return
		}

		var current int64
		var entries []*page.NavigationEntry
		if err := chromedp.Run(tctx, chromedp.NavigationEntries(&current, &entries)); err != nil {
			slog.Debug("read history failed", "tab", h, "error", err)
			return
		}
		idx := int(current) + delta
		if idx < 0 || idx >= len(entries) {
			return
		}
		entry := entries[idx]

		tc.own.Store(true)
		defer tc.own.Store(false)
		tc.post(func() {
			sink.OnNavigationRequested(h, entry.URL)
			sink.OnLoadStarted(h)
		})

		ctx, cancel := context.WithTimeout(tctx, e.loadTimeout)
		defer cancel()
		if err := chromedp.Run(ctx, chromedp.NavigateToHistoryEntry(entry.ID)); err != nil {
			tc.post(func() { sink.OnLoadFinished(h, false) })
			return
		}
		e.commit(tc, ctx)
	}()
}

func (e *Engine) Stop(h tabs.Handle) {
	tc, ok := e.existing(h)
	if !ok || tc.target() == nil {
		return
	}
	go func() {
		if err := chromedp.Run(tc.target(), chromedp.Stop()); err != nil {
			slog.Debug("stop loading failed", "tab", h, "error", err)
		}
	}()
}

// RenderError replaces the main frame document with html.
func (e *Engine) RenderError(h tabs.Handle, html string) {
	tc, ok := e.existing(h)
	if !ok {
		return
	}
	go func() {
		tc.nav.Lock()
		defer tc.nav.Unlock()
		tctx := tc.target()
		if tctx == nil {
			return
		}
		err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}))
		if err != nil {
			slog.Warn("render error page failed", "tab", h, "error", err)
		}
	}()
}

// Close drops the tab's target. Reports still queued for it are discarded.
func (e *Engine) Close(h tabs.Handle) {
	e.mu.Lock()
	tc, ok := e.tabs[h]
	delete(e.tabs, h)
	e.mu.Unlock()
	if !ok {
		return
	}
	e.registry.Remove(h)
	tc.shutdown()
}

// listener maps page events of navigations the page started itself.
func (e *Engine) listener(tc *tabContext) func(ev interface{}) {
	h := tc.handle
	return func(ev interface{}) {
		sink := e.report()
		switch ev := ev.(type) {
		case *page.EventFrameRequestedNavigation:
			if tc.mainFrame != "" && ev.FrameID != tc.mainFrame {
				return
			}
			url := ev.URL
			if loginurl.HasScheme(url) {
				tc.post(func() { sink.OnUnsupportedContent(h, url) })
				return
			}
			tc.post(func() { sink.OnNavigationRequested(h, url) })
		case *page.EventFrameStartedLoading:
			if tc.own.Load() || (tc.mainFrame != "" && ev.FrameID != tc.mainFrame) {
				return
			}
			tc.post(func() { sink.OnLoadStarted(h) })
		case *page.EventDomContentEventFired:
			tc.post(func() { sink.OnLoadProgress(h, domContentProgress) })
		case *page.EventNavigatedWithinDocument:
			if tc.mainFrame != "" && ev.FrameID != tc.mainFrame {
				return
			}
			url := ev.URL
			e.registry.UpdateURL(h, url)
			tc.post(func() { sink.OnURLChanged(h, url, "") })
		case *page.EventLoadEventFired:
			if tc.own.Load() {
				return
			}
			go func() {
				tctx := tc.target()
				if tctx == nil {
					return
				}
				ctx, cancel := context.WithTimeout(tctx, 5*time.Second)
				defer cancel()
				e.commit(tc, ctx)
			}()
		case *network.EventRequestWillBeSent:
			// A server redirect to a login URL never reaches the frame.
			if ev.Type != network.ResourceTypeDocument || ev.Request == nil || !loginurl.HasScheme(ev.Request.URL) {
				return
			}
			url := ev.Request.URL
			tc.post(func() { sink.OnUnsupportedContent(h, url) })
		}
	}
}

// SetCacheEnabled toggles the HTTP cache on every open target.
func (e *Engine) SetCacheEnabled(ctx context.Context, enabled bool) error {
	e.cache.Store(enabled)
	e.mu.RLock()
	targets := []context.Context{}
	if e.browserCtx != nil {
		targets = append(targets, e.browserCtx)
	}
	for _, tc := range e.tabs {
		if tctx := tc.target(); tctx != nil {
			targets = append(targets, tctx)
		}
	}
	e.mu.RUnlock()

	var errs []error
	for _, tctx := range targets {
		if err := runWithin(ctx, tctx, network.SetCacheDisabled(!enabled)); err != nil {
			errs = append(errs, err)
		}
	}
	slog.Info("cache setting applied", "enabled", enabled, "targets", len(targets))
	return errors.Join(errs...)
}

func (e *Engine) ClearCache(ctx context.Context) error {
	return e.onBrowser(ctx, network.ClearBrowserCache())
}

func (e *Engine) ClearCookies(ctx context.Context) error {
	return e.onBrowser(ctx, network.ClearBrowserCookies())
}

func (e *Engine) onBrowser(ctx context.Context, action chromedp.Action) error {
	e.mu.RLock()
	browserCtx := e.browserCtx
	e.mu.RUnlock()
	if browserCtx == nil {
		return ErrNotConnected
	}
	return runWithin(ctx, browserCtx, action)
}

// runWithin runs action on the target of tctx, giving up when ctx ends.
func runWithin(ctx, tctx context.Context, action chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, action)
}

func (tc *tabContext) post(fn func()) {
	tc.qmu.Lock()
	defer tc.qmu.Unlock()
	if tc.closed {
		return
	}
	select {
	case tc.queue <- fn:
	default:
		slog.Warn("tab event queue full, dropping report", "tab", tc.handle)
	}
}

func (tc *tabContext) drain() {
	for fn := range tc.queue {
		fn()
	}
}

func (tc *tabContext) target() context.Context {
	tc.qmu.Lock()
	defer tc.qmu.Unlock()
	return tc.ctx
}

// setTarget stores the attached target. It reports false, and releases the
// target, when the tab was closed in the meantime.
func (tc *tabContext) setTarget(ctx context.Context, cancel context.CancelFunc) bool {
	tc.qmu.Lock()
	defer tc.qmu.Unlock()
	if tc.closed {
		cancel()
		return false
	}
	tc.ctx, tc.cancel = ctx, cancel
	return true
}

func (tc *tabContext) shutdown() {
	tc.qmu.Lock()
	defer tc.qmu.Unlock()
	if tc.closed {
		return
	}
	tc.closed = true
	close(tc.queue)
	if tc.cancel != nil {
		tc.cancel()
	}
}
