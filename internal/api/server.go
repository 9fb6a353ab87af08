package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/browser"
	"github.com/dgnsrekt/loginbrowser/internal/cdp"
	"github.com/dgnsrekt/loginbrowser/internal/config"
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/relay"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

type Service interface {
	Tabs() []tabs.Record
	Tab(h tabs.Handle) (tabs.Record, error)
	OpenURL(ctx context.Context, url string, focus bool) (tabs.Record, error)
	CloseTab(ctx context.Context, h tabs.Handle) error
	Activate(ctx context.Context, index int) (browser.Toolbar, error)
	Toolbar() browser.Toolbar

	AddressBarRequest(ctx context.Context, input string) error
	NewTabRequest(ctx context.Context) (tabs.Handle, error)
	Home(ctx context.Context) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	RefreshStop(ctx context.Context) error

	Settings() config.Settings
	UpdateSettings(ctx context.Context, s config.Settings) (config.Settings, error)
	ClearCache(ctx context.Context) error
	ClearCookies(ctx context.Context) error

	Bookmarks() browser.BookmarkLists
	AddBookmark(title, url string) (bookmarks.Kind, error)
	EditBookmark(kind bookmarks.Kind, index int, title, url string) error
	RemoveBookmark(kind bookmarks.Kind, index int) error
	MoveBookmark(kind bookmarks.Kind, index, delta int) (int, error)
	OpenBookmark(ctx context.Context, kind bookmarks.Kind, index int) (tabs.Record, error)
	AddFavorite(ctx context.Context, kind browser.FavoriteKind, title string) error

	Login(ctx context.Context, rawURL string) error
	ClassicLogin(ctx context.Context, req browser.ClassicLoginRequest) error
	LastClassicLogin() browser.ClassicLoginRequest
	OnConnected(ctx context.Context, params loginurl.ConnectionParameters) error
	OnDisconnected(ctx context.Context) error
	Session() browser.SessionState
}

// TargetLister exposes the browser targets behind the tabs.
type TargetLister interface {
	Targets() []cdp.TargetInfo
}

type statusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func ok() *statusOutput {
	out := &statusOutput{}
	out.Body.Status = "ok"
	return out
}

// NewServer builds the control API. broker and targets may be nil.
func NewServer(svc Service, broker *relay.Broker, targets TargetLister) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Login Browser API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	if broker != nil {
		router.Get("/events", relay.SSEHandler(broker))
		router.Get("/events/ws", relay.WSHandler(broker))
		registerEventHandlers(api, broker)
	}

	registerTabHandlers(api, svc, targets)
	registerNavigationHandlers(api, svc)
	registerPrefsHandlers(api, svc)
	registerSessionHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *browser.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case browser.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case browser.CodeTabNotFound, browser.CodeBookmarkNotFound:
			return huma.Error404NotFound(coded.Message)
		case browser.CodeEngineUnavailable, browser.CodeLoginFailed:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
