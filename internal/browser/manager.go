// Package browser is the login browser panel: it owns the tab strip, routes
// tundra:// URLs to the connection client and keeps the toolbar, settings
// and bookmarks in step with what the user does.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/config"
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

const (
	feedToolbar = "toolbar"
	feedSession = "session"
)

// ConnectionClient hands validated logins to the world client.
type ConnectionClient interface {
	Login(ctx context.Context, address string, port int, username, password, protocol string) error
	Logout(ctx context.Context) error
}

// StorageControl is the part of the web engine that manages cache and cookies.
type StorageControl interface {
	SetCacheEnabled(ctx context.Context, enabled bool) error
	ClearCache(ctx context.Context) error
	ClearCookies(ctx context.Context) error
}

// EventSink receives toolbar and session events.
type EventSink interface {
	Publish(feed, typ string, payload any)
}

type nopSink struct{}

func (nopSink) Publish(string, string, any) {}

// Options wires a Manager. Engine, Store, Bookmarks and Client are required.
type Options struct {
	Engine    tabs.Engine
	Storage   StorageControl
	Store     *config.Store
	Settings  config.Settings
	Bookmarks *bookmarks.Store
	Client    ConnectionClient
	Events    EventSink
	Observers []tabs.Observer
}

type pendingLogin struct {
	from   tabs.Handle
	params loginurl.ConnectionParameters
}

// Manager serialises every browser operation behind one mutex. Connection
// client calls happen after the mutex is released.
type Manager struct {
	mu        sync.Mutex
	tabs      *tabs.Set
	store     *config.Store
	settings  config.Settings
	bookmarks *bookmarks.Store
	client    ConnectionClient
	storage   StorageControl
	events    EventSink

	connected   bool
	session     loginurl.ConnectionParameters
	pending     []pendingLogin
	lastToolbar *Toolbar
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Engine == nil || opts.Store == nil || opts.Bookmarks == nil || opts.Client == nil {
		return nil, errors.New("browser: engine, store, bookmarks and client are required")
	}
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		store:     opts.Store,
		settings:  opts.Settings,
		bookmarks: opts.Bookmarks,
		client:    opts.Client,
		storage:   opts.Storage,
		events:    opts.Events,
	}
	if m.events == nil {
		m.events = nopSink{}
	}
	observers := append([]tabs.Observer{(*tabObserver)(m)}, opts.Observers...)
	m.tabs = tabs.NewSet(opts.Engine, observers...)
	return m, nil
}

// run executes fn under the lock, then dispatches any logins fn queued.
func (m *Manager) run(ctx context.Context, fn func() error) error {
	m.mu.Lock()
	err := fn()
	m.publishToolbarLocked()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, p := range pending {
		if lerr := m.dispatch(ctx, p); lerr != nil && err == nil {
			err = lerr
		}
	}
	return classify(err)
}

// dispatch performs a login: log out when connected, focus the home tab,
// close the invoking tab, then hand the parameters to the client.
func (m *Manager) dispatch(ctx context.Context, p pendingLogin) error {
	m.mu.Lock()
	wasConnected := m.connected
	m.mu.Unlock()

	if wasConnected {
		if err := m.client.Logout(ctx); err != nil {
			slog.Warn("logout before login failed", "error", err)
		}
	}

	m.mu.Lock()
	if p.from != tabs.Home {
		_ = m.tabs.SetCurrent(0)
		m.tabs.CloseTab(p.from)
	}
	m.publishToolbarLocked()
	m.mu.Unlock()

	slog.Info("dispatching login", "address", p.params.Address, "port", p.params.Port,
		"username", p.params.Username, "protocol", p.params.Protocol, "from_tab", p.from)
	if err := m.client.Login(ctx, p.params.Address, p.params.Port, p.params.Username, p.params.Password, p.params.Protocol); err != nil {
		m.events.Publish(feedSession, "login_failed", map[string]string{"address": p.params.Address, "error": err.Error()})
		return newError(CodeLoginFailed, "login handoff failed", err)
	}
	m.events.Publish(feedSession, "login_dispatched", map[string]any{
		"address":  p.params.Address,
		"port":     p.params.Port,
		"username": p.params.Username,
		"protocol": p.params.Protocol,
	})
	return nil
}

// Start applies the startup behaviour: when the home page should load at
// startup, a tundra:// home page only connects if that is enabled too.
func (m *Manager) Start(ctx context.Context) error {
	return m.run(ctx, func() error {
		m.refreshHomeLocked()
		if m.connected {
			return m.tabs.SetCurrent(0)
		}
		if !m.settings.StartupLoadHomepage {
			return nil
		}
		if loginurl.HasScheme(m.settings.Homepage) && !m.settings.StartupConnectHomeServer {
			return nil
		}
		m.openLocked(m.settings.Homepage, true)
		return nil
	})
}

// openLocked opens url in a new tab. tundra:// URLs never get a tab of
// their own and go straight to the login path.
func (m *Manager) openLocked(url string, focus bool) tabs.Handle {
	if loginurl.HasScheme(url) {
		_, _ = m.tabs.RouteFrom(tabs.Home, url)
		return tabs.Home
	}
	return m.tabs.OpenTab(loginurl.NormalizeInput(url), focus)
}

// OpenURL opens url in a new tab and returns its record, or the home tab
// record when url was a login URL.
func (m *Manager) OpenURL(ctx context.Context, url string, focus bool) (tabs.Record, error) {
	var rec tabs.Record
	err := m.run(ctx, func() error {
		if url == "" {
			return newError(CodeValidation, "url is required", nil)
		}
		h := m.openLocked(url, focus)
		rec, _ = m.tabs.Get(h)
		rec = rec.Redacted()
		return nil
	})
	return rec, err
}

func (m *Manager) CloseTab(ctx context.Context, h tabs.Handle) error {
	return m.run(ctx, func() error {
		if _, ok := m.tabs.Get(h); !ok {
			return newError(CodeTabNotFound, fmt.Sprintf("tab %d not found", h), tabs.ErrUnknownTab)
		}
		if h == tabs.Home {
			return newError(CodeValidation, "the home tab cannot be closed", nil)
		}
		m.tabs.CloseTab(h)
		return nil
	})
}

func (m *Manager) Activate(ctx context.Context, index int) (Toolbar, error) {
	var tb Toolbar
	err := m.run(ctx, func() error {
		if err := m.tabs.SetCurrent(index); err != nil {
			return err
		}
		tb = m.toolbarLocked()
		return nil
	})
	return tb, err
}

func (m *Manager) Tabs() []tabs.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.tabs.List()
	for i := range list {
		list[i] = list[i].Redacted()
	}
	return list
}

func (m *Manager) Tab(h tabs.Handle) (tabs.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.tabs.Get(h)
	if !ok {
		return tabs.Record{}, newError(CodeTabNotFound, fmt.Sprintf("tab %d not found", h), tabs.ErrUnknownTab)
	}
	return rec.Redacted(), nil
}

func (m *Manager) Toolbar() Toolbar {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolbarLocked()
}

// AddressBarRequest handles text entered in the address bar. The home tab
// only reacts to login URLs.
func (m *Manager) AddressBarRequest(ctx context.Context, input string) error {
	return m.run(ctx, func() error {
		cur := m.tabs.Current()
		if loginurl.HasScheme(input) {
			_, err := m.tabs.RouteFrom(cur.Handle, input)
			return err
		}
		if cur.Handle == tabs.Home {
			return nil
		}
		return m.tabs.Navigate(cur.Handle, loginurl.NormalizeInput(input))
	})
}

// NewTabRequest opens a new tab the way the new tab button does.
func (m *Manager) NewTabRequest(ctx context.Context) (tabs.Handle, error) {
	var h tabs.Handle
	err := m.run(ctx, func() error {
		s := m.settings
		switch {
		case loginurl.HasScheme(s.Homepage):
			if loginurl.HasScheme(s.NewTabURL) {
				_, _ = m.tabs.RouteFrom(tabs.Home, s.NewTabURL)
				h = tabs.Home
				return m.tabs.SetCurrent(0)
			}
			h = m.openLocked(s.NewTabURL, true)
		case s.NewTabOpensHomepage:
			h = m.openLocked(s.Homepage, true)
		default:
			h = m.openLocked(s.NewTabURL, true)
		}
		return nil
	})
	return h, err
}

// Home loads the home page: a login for tundra:// home pages, a new tab from
// the home tab, otherwise a navigation in the current tab.
func (m *Manager) Home(ctx context.Context) error {
	return m.run(ctx, func() error {
		cur := m.tabs.Current()
		home := m.settings.Homepage
		if loginurl.HasScheme(home) {
			_, err := m.tabs.RouteFrom(cur.Handle, home)
			return err
		}
		if cur.Handle == tabs.Home {
			m.tabs.OpenTab(loginurl.NormalizeInput(home), true)
			return nil
		}
		return m.tabs.Navigate(cur.Handle, loginurl.NormalizeInput(home))
	})
}

func (m *Manager) Back(ctx context.Context) error {
	return m.run(ctx, func() error {
		h, err := m.currentWebLocked()
		if err != nil {
			return err
		}
		return m.tabs.Back(h)
	})
}

func (m *Manager) Forward(ctx context.Context) error {
	return m.run(ctx, func() error {
		h, err := m.currentWebLocked()
		if err != nil {
			return err
		}
		return m.tabs.Forward(h)
	})
}

// RefreshStop stops the current tab while it loads and reloads it otherwise.
func (m *Manager) RefreshStop(ctx context.Context) error {
	return m.run(ctx, func() error {
		h, err := m.currentWebLocked()
		if err != nil {
			return err
		}
		if m.toolbarLocked().RefreshMode == ModeStop {
			return m.tabs.Stop(h)
		}
		return m.tabs.Reload(h)
	})
}

func (m *Manager) currentWebLocked() (tabs.Handle, error) {
	h := m.tabs.Current().Handle
	if h == tabs.Home {
		return 0, newError(CodeValidation, "the home tab has no page controls", nil)
	}
	return h, nil
}

// OnConnected records an established world connection and focuses the home tab.
func (m *Manager) OnConnected(ctx context.Context, params loginurl.ConnectionParameters) error {
	err := m.run(ctx, func() error {
		params.Password = ""
		m.connected = true
		m.session = params
		m.refreshHomeLocked()
		return m.tabs.SetCurrent(0)
	})
	m.events.Publish(feedSession, "connected", m.Session())
	return err
}

func (m *Manager) OnDisconnected(ctx context.Context) error {
	err := m.run(ctx, func() error {
		m.connected = false
		m.session = loginurl.ConnectionParameters{}
		m.refreshHomeLocked()
		return nil
	})
	m.events.Publish(feedSession, "disconnected", m.Session())
	return err
}

// SessionState is the connection as the panel sees it. It never carries a password.
type SessionState struct {
	Connected bool   `json:"connected"`
	URL       string `json:"url,omitempty"`
	Address   string `json:"address,omitempty"`
	Port      int    `json:"port,omitempty"`
	Username  string `json:"username,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
}

func (m *Manager) Session() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return SessionState{}
	}
	return SessionState{
		Connected: true,
		URL:       loginurl.Format(m.session),
		Address:   m.session.Address,
		Port:      m.session.Port,
		Username:  m.session.Username,
		Protocol:  m.session.Protocol,
	}
}

// Login dispatches a tundra:// URL as if it came from the home tab.
func (m *Manager) Login(ctx context.Context, rawURL string) error {
	action := loginurl.Classify(rawURL)
	switch action.Kind {
	case loginurl.Continue:
		return newError(CodeValidation, "not a "+loginurl.Scheme+" url", nil)
	case loginurl.Rejected:
		return newError(CodeValidation, "login url rejected", action.Reason)
	}
	return m.run(ctx, func() error {
		m.pending = append(m.pending, pendingLogin{from: tabs.Home, params: action.Params})
		return nil
	})
}
