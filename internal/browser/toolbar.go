package browser

import (
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

// RefreshMode is what the combined refresh/stop button does when pressed.
type RefreshMode string

const (
	ModeRefresh RefreshMode = "refresh"
	ModeStop    RefreshMode = "stop"
)

// homeAddressText is shown in the address bar on the home tab while disconnected.
const homeAddressText = "local://LoginWidget.ui"

// Toolbar is the state of the browser controls for the focused tab.
type Toolbar struct {
	CurrentIndex    int         `json:"current_index"`
	CurrentTab      tabs.Handle `json:"current_tab"`
	AddressText     string      `json:"address_text"`
	ProgressVisible bool        `json:"progress_visible"`
	Progress        int         `json:"progress"`
	RefreshMode     RefreshMode `json:"refresh_mode"`
	BackEnabled     bool        `json:"back_enabled"`
	ForwardEnabled  bool        `json:"forward_enabled"`
	RefreshEnabled  bool        `json:"refresh_enabled"`
	FavoriteEnabled bool        `json:"favorite_enabled"`
	HomeTooltip     string      `json:"home_tooltip"`
}

// toolbarLocked derives the toolbar from the focused tab and the connection.
func (m *Manager) toolbarLocked() Toolbar {
	cur := m.tabs.Current()
	tb := Toolbar{
		CurrentIndex: cur.Index,
		CurrentTab:   cur.Handle,
		RefreshMode:  ModeRefresh,
		HomeTooltip:  "Go to home page " + m.settings.Homepage,
	}

	if cur.Handle == tabs.Home {
		if m.connected {
			tb.AddressText = loginurl.Format(m.session)
			tb.FavoriteEnabled = true
		} else {
			tb.AddressText = homeAddressText
		}
		return tb
	}

	tb.AddressText = cur.URL
	if tb.AddressText == "" {
		tb.AddressText = loginurl.Redact(cur.RequestedURL)
	}
	tb.BackEnabled = true
	tb.ForwardEnabled = true
	tb.RefreshEnabled = true
	tb.FavoriteEnabled = true
	if cur.State == tabs.Loading {
		tb.RefreshMode = ModeStop
		tb.ProgressVisible = true
		tb.Progress = cur.Progress
	}
	return tb
}

// publishToolbarLocked emits a toolbar event when the derived state changed.
func (m *Manager) publishToolbarLocked() {
	tb := m.toolbarLocked()
	if m.lastToolbar != nil && *m.lastToolbar == tb {
		return
	}
	m.lastToolbar = &tb
	m.events.Publish(feedToolbar, "toolbar", tb)
}

// refreshHomeLocked sets the home tab label from the connection state.
func (m *Manager) refreshHomeLocked() {
	if !m.connected {
		m.tabs.SetHomeLabel("Login", "")
		return
	}
	u := loginurl.Format(m.session)
	m.tabs.SetHomeLabel(loginurl.ShortLabel(u), u)
}
