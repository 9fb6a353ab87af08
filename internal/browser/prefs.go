package browser

import (
	"context"
	"strconv"
	"strings"

	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/config"
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

func (m *Manager) Settings() config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings validates and persists s. A changed cache toggle is pushed
// to the engine right away; the cookie toggle and proxy take effect on the
// next browser launch.
func (m *Manager) UpdateSettings(ctx context.Context, s config.Settings) (config.Settings, error) {
	var cacheChanged bool
	err := m.run(ctx, func() error {
		if err := s.Apply(m.store); err != nil {
			return newError(CodeValidation, err.Error(), err)
		}
		if err := m.store.Save(); err != nil {
			return err
		}
		cacheChanged = m.settings.CacheEnabled != s.CacheEnabled
		m.settings = s
		return nil
	})
	if err != nil {
		return config.Settings{}, err
	}
	if cacheChanged && m.storage != nil {
		if err := m.storage.SetCacheEnabled(ctx, s.CacheEnabled); err != nil {
			return s, newError(CodeEngineUnavailable, "apply cache setting", err)
		}
	}
	return s, nil
}

func (m *Manager) ClearCache(ctx context.Context) error {
	if m.storage == nil {
		return newError(CodeEngineUnavailable, "no storage control", nil)
	}
	if err := m.storage.ClearCache(ctx); err != nil {
		return newError(CodeEngineUnavailable, "clear cache", err)
	}
	return nil
}

func (m *Manager) ClearCookies(ctx context.Context) error {
	if m.storage == nil {
		return newError(CodeEngineUnavailable, "no storage control", nil)
	}
	if err := m.storage.ClearCookies(ctx); err != nil {
		return newError(CodeEngineUnavailable, "clear cookies", err)
	}
	return nil
}

// BookmarkLists is both bookmark lists.
type BookmarkLists struct {
	Worlds []bookmarks.Bookmark `json:"worlds"`
	Web    []bookmarks.Bookmark `json:"web"`
}

func (m *Manager) Bookmarks() BookmarkLists {
	worlds, _ := m.bookmarks.List(bookmarks.Worlds)
	web, _ := m.bookmarks.List(bookmarks.Web)
	return BookmarkLists{Worlds: worlds, Web: web}
}

func (m *Manager) AddBookmark(title, url string) (bookmarks.Kind, error) {
	kind, err := m.bookmarks.Add(title, url)
	return kind, classify(err)
}

func (m *Manager) EditBookmark(kind bookmarks.Kind, index int, title, url string) error {
	return classify(m.bookmarks.Edit(kind, index, title, url))
}

func (m *Manager) RemoveBookmark(kind bookmarks.Kind, index int) error {
	return classify(m.bookmarks.Remove(kind, index))
}

func (m *Manager) MoveBookmark(kind bookmarks.Kind, index, delta int) (int, error) {
	to, err := m.bookmarks.Move(kind, index, delta)
	return to, classify(err)
}

// OpenBookmark opens a saved entry like any other URL.
func (m *Manager) OpenBookmark(ctx context.Context, kind bookmarks.Kind, index int) (tabs.Record, error) {
	list, err := m.bookmarks.List(kind)
	if err != nil {
		return tabs.Record{}, classify(err)
	}
	if index < 0 || index >= len(list) {
		return tabs.Record{}, classify(bookmarks.ErrNotFound)
	}
	return m.OpenURL(ctx, list[index].URL, true)
}

type FavoriteKind string

const (
	FavoriteHomepage FavoriteKind = "homepage"
	FavoriteBookmark FavoriteKind = "bookmark"
)

// AddFavorite stores what the address bar shows, either as the home page or
// as a bookmark. title overrides the page title for bookmarks.
func (m *Manager) AddFavorite(ctx context.Context, kind FavoriteKind, title string) error {
	m.mu.Lock()
	tb := m.toolbarLocked()
	cur := m.tabs.Current()
	settings := m.settings
	m.mu.Unlock()

	if !tb.FavoriteEnabled {
		return newError(CodeValidation, "nothing to add from the current tab", nil)
	}
	if cur.Handle != tabs.Home && cur.URL == "" {
		return newError(CodeValidation, "wait for the page to load successfully first", nil)
	}

	switch kind {
	case FavoriteHomepage:
		settings.Homepage = tb.AddressText
		_, err := m.UpdateSettings(ctx, settings)
		return err
	case FavoriteBookmark:
		url := tb.AddressText
		if cur.Handle != tabs.Home {
			url = cur.URL
		}
		if title == "" {
			if cur.Handle == tabs.Home {
				title = loginurl.WorldTitle(url)
			} else {
				title = cur.Title
			}
		}
		if title == "" {
			title = loginurl.ShortLabel(url)
		}
		_, err := m.AddBookmark(title, url)
		return err
	default:
		return newError(CodeValidation, "unknown favorite kind "+strconv.Quote(string(kind)), nil)
	}
}

// ClassicLoginRequest is the manual login form.
type ClassicLoginRequest struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Protocol string `json:"protocol"`
}

// ClassicLogin logs in from the manual form. Server is host or host:port.
// The server, username and protocol are remembered for next time.
func (m *Manager) ClassicLogin(ctx context.Context, req ClassicLoginRequest) error {
	server := strings.TrimSpace(req.Server)
	username := strings.TrimSpace(req.Username)
	protocol := strings.ToLower(strings.TrimSpace(req.Protocol))

	if protocol != loginurl.ProtocolTCP && protocol != loginurl.ProtocolUDP {
		return newError(CodeValidation, "protocol must be tcp or udp", nil)
	}
	host, portText, hasPort := strings.Cut(server, ":")
	if host == "" {
		return newError(CodeValidation, "you have to give a host to log in", nil)
	}
	if username == "" {
		return newError(CodeValidation, "username is required", nil)
	}
	port := loginurl.DefaultPort
	if hasPort {
		n, err := strconv.Atoi(portText)
		if err != nil || n < 1 || n > 65535 {
			return newError(CodeValidation, "invalid port "+strconv.Quote(portText), err)
		}
		port = n
	}

	return m.run(ctx, func() error {
		m.store.Set(config.SectionClient, "login_server", server)
		m.store.Set(config.SectionClient, "login_username", username)
		m.store.Set(config.SectionClient, "login_protocol", protocol)
		if err := m.store.Save(); err != nil {
			return err
		}
		m.pending = append(m.pending, pendingLogin{from: tabs.Home, params: loginurl.ConnectionParameters{
			Username: username,
			Password: strings.TrimSpace(req.Password),
			Address:  host,
			Port:     port,
			Protocol: protocol,
		}})
		return nil
	})
}

// LastClassicLogin returns the remembered form values without a password.
func (m *Manager) LastClassicLogin() ClassicLoginRequest {
	return ClassicLoginRequest{
		Server:   m.store.Get(config.SectionClient, "login_server", ""),
		Username: m.store.Get(config.SectionClient, "login_username", ""),
		Protocol: m.store.Get(config.SectionClient, "login_protocol", ""),
	}
}
