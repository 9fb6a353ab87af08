package browser

import (
	"log/slog"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

// tabObserver is the Manager seen as a tabs.Observer. Its methods run while
// the Manager lock is held by the operation that drove the tab set.
type tabObserver Manager

func (o *tabObserver) m() *Manager { return (*Manager)(o) }

func (o *tabObserver) TabOpened(tabs.Record)    { o.m().publishToolbarLocked() }
func (o *tabObserver) TabClosed(tabs.Record)    { o.m().publishToolbarLocked() }
func (o *tabObserver) LoadStarted(tabs.Record)  { o.m().publishToolbarLocked() }
func (o *tabObserver) LoadFinished(tabs.Record) { o.m().publishToolbarLocked() }
func (o *tabObserver) LoadFailed(tabs.Record)   { o.m().publishToolbarLocked() }

func (o *tabObserver) LoadProgress(rec tabs.Record) {
	if rec.Index == o.m().tabs.Current().Index {
		o.m().publishToolbarLocked()
	}
}

func (o *tabObserver) LoginRequested(rec tabs.Record, params loginurl.ConnectionParameters) {
	o.pending = append(o.pending, pendingLogin{from: rec.Handle, params: params})
}

// LoginRejected keeps the invalid URL out of the way; the user sees no
// dialog, only the log line and the session event.
func (o *tabObserver) LoginRejected(rec tabs.Record, rawURL string, reason error) {
	slog.Warn("login url rejected", "tab", rec.Handle, "url", loginurl.Redact(rawURL), "reason", reason)
}
