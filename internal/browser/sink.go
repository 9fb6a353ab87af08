package browser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

// The On* methods are called by the web engine from its own goroutines.
// Callbacks for tabs that were closed in the meantime are dropped.

func (m *Manager) OnLoadStarted(h tabs.Handle) {
	m.engineEvent("load_started", h, func() error { return m.tabs.OnLoadStarted(h) })
}

func (m *Manager) OnLoadProgress(h tabs.Handle, percent int) {
	m.engineEvent("load_progress", h, func() error { return m.tabs.OnLoadProgress(h, percent) })
}

func (m *Manager) OnLoadFinished(h tabs.Handle, success bool) {
	m.engineEvent("load_finished", h, func() error { return m.tabs.OnLoadFinished(h, success) })
}

func (m *Manager) OnURLChanged(h tabs.Handle, url, title string) {
	m.engineEvent("url_changed", h, func() error { return m.tabs.SetURL(h, url, title) })
}

// OnNavigationRequested records a navigation the page started on its own.
func (m *Manager) OnNavigationRequested(h tabs.Handle, url string) {
	m.engineEvent("navigation_requested", h, func() error { return m.tabs.Track(h, url) })
}

func (m *Manager) OnUnsupportedContent(h tabs.Handle, url string) {
	m.engineEvent("unsupported_content", h, func() error { return m.tabs.OnUnsupportedContent(h, url) })
}

func (m *Manager) engineEvent(name string, h tabs.Handle, fn func() error) {
	err := m.run(context.Background(), fn)
	if err == nil {
		return
	}
	if errors.Is(err, tabs.ErrUnknownTab) {
		slog.Debug("engine event for closed tab", "event", name, "tab", h)
		return
	}
	slog.Warn("engine event rejected", "event", name, "tab", h, "error", err)
}
