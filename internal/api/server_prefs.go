package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/browser"
	"github.com/dgnsrekt/loginbrowser/internal/config"
)

type settingsOutput struct {
	Body config.Settings
}

type bookmarksOutput struct {
	Body browser.BookmarkLists
}

type bookmarkIndexInput struct {
	Kind  string `path:"kind" enum:"worlds,web"`
	Index int    `path:"index" minimum:"0"`
}

type settingsInput struct {
	Body struct {
		Homepage                 string `json:"homepage"`
		NewTabURL                string `json:"new_tab_url"`
		NewTabOpensHomepage      bool   `json:"new_tab_opens_homepage,omitempty"`
		StartupLoadHomepage      bool   `json:"startup_load_homepage,omitempty"`
		StartupConnectHomeServer bool   `json:"startup_connect_home_server,omitempty"`
		ProxyEnabled             bool   `json:"proxy_enabled,omitempty"`
		ProxyHost                string `json:"proxy_host,omitempty"`
		ProxyPort                int    `json:"proxy_port,omitempty" minimum:"0" maximum:"65535"`
		CookiesEnabled           bool   `json:"cookies_enabled,omitempty"`
		CacheEnabled             bool   `json:"cache_enabled,omitempty"`
	}
}

func (in *settingsInput) settings() config.Settings {
	b := in.Body
	return config.Settings{
		Homepage:                 b.Homepage,
		NewTabURL:                b.NewTabURL,
		NewTabOpensHomepage:      b.NewTabOpensHomepage,
		StartupLoadHomepage:      b.StartupLoadHomepage,
		StartupConnectHomeServer: b.StartupConnectHomeServer,
		ProxyEnabled:             b.ProxyEnabled,
		ProxyHost:                b.ProxyHost,
		ProxyPort:                b.ProxyPort,
		CookiesEnabled:           b.CookiesEnabled,
		CacheEnabled:             b.CacheEnabled,
	}
}

func registerPrefsHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-settings", Method: http.MethodGet, Path: "/api/v1/settings", Summary: "Browser settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*settingsOutput, error) {
			return &settingsOutput{Body: svc.Settings()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "put-settings", Method: http.MethodPut, Path: "/api/v1/settings", Summary: "Replace browser settings", Description: "Cookie and proxy changes apply on the next launch.", Tags: []string{"Settings"}},
		func(ctx context.Context, input *settingsInput) (*settingsOutput, error) {
			s, err := svc.UpdateSettings(ctx, input.settings())
			if err != nil {
				return nil, mapErr(err)
			}
			return &settingsOutput{Body: s}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "clear-cache", Method: http.MethodPost, Path: "/api/v1/storage/clear-cache", Summary: "Clear the browser cache", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			if err := svc.ClearCache(ctx); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})

	huma.Register(api, huma.Operation{OperationID: "clear-cookies", Method: http.MethodPost, Path: "/api/v1/storage/clear-cookies", Summary: "Clear browser cookies", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			if err := svc.ClearCookies(ctx); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})

	huma.Register(api, huma.Operation{OperationID: "list-bookmarks", Method: http.MethodGet, Path: "/api/v1/bookmarks", Summary: "World and web bookmarks", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *struct{}) (*bookmarksOutput, error) {
			return &bookmarksOutput{Body: svc.Bookmarks()}, nil
		})

	type addBookmarkOutput struct {
		Body struct {
			Kind bookmarks.Kind `json:"kind"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "add-bookmark", Method: http.MethodPost, Path: "/api/v1/bookmarks", Summary: "Add a bookmark", Description: "tundra:// URLs go to the worlds list, anything else to web.", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Title string `json:"title" minLength:"1"`
				URL   string `json:"url" minLength:"1"`
			}
		}) (*addBookmarkOutput, error) {
			kind, err := svc.AddBookmark(input.Body.Title, input.Body.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &addBookmarkOutput{}
			out.Body.Kind = kind
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "edit-bookmark", Method: http.MethodPut, Path: "/api/v1/bookmarks/{kind}/{index}", Summary: "Edit a bookmark", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *struct {
			bookmarkIndexInput
			Body struct {
				Title string `json:"title" minLength:"1"`
				URL   string `json:"url" minLength:"1"`
			}
		}) (*statusOutput, error) {
			if err := svc.EditBookmark(bookmarks.Kind(input.Kind), input.Index, input.Body.Title, input.Body.URL); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})

	huma.Register(api, huma.Operation{OperationID: "remove-bookmark", Method: http.MethodDelete, Path: "/api/v1/bookmarks/{kind}/{index}", Summary: "Remove a bookmark", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *bookmarkIndexInput) (*statusOutput, error) {
			if err := svc.RemoveBookmark(bookmarks.Kind(input.Kind), input.Index); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})

	type moveOutput struct {
		Body struct {
			Index int `json:"index"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "move-bookmark", Method: http.MethodPost, Path: "/api/v1/bookmarks/{kind}/{index}/move", Summary: "Move a bookmark up or down", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *struct {
			bookmarkIndexInput
			Body struct {
				Delta int `json:"delta" doc:"Negative moves up. Clamped to the list."`
			}
		}) (*moveOutput, error) {
			to, err := svc.MoveBookmark(bookmarks.Kind(input.Kind), input.Index, input.Body.Delta)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &moveOutput{}
			out.Body.Index = to
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "open-bookmark", Method: http.MethodPost, Path: "/api/v1/bookmarks/{kind}/{index}/open", Summary: "Open a bookmark", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *bookmarkIndexInput) (*tabOutput, error) {
			rec, err := svc.OpenBookmark(ctx, bookmarks.Kind(input.Kind), input.Index)
			if err != nil {
				return nil, mapErr(err)
			}
			return &tabOutput{Body: rec}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "add-favorite", Method: http.MethodPost, Path: "/api/v1/favorite", Summary: "Save the focused page as homepage or bookmark", Tags: []string{"Bookmarks"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Kind  string `json:"kind" enum:"homepage,bookmark"`
				Title string `json:"title,omitempty"`
			}
		}) (*statusOutput, error) {
			if err := svc.AddFavorite(ctx, browser.FavoriteKind(input.Body.Kind), input.Body.Title); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})
}
