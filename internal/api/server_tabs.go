package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/loginbrowser/internal/browser"
	"github.com/dgnsrekt/loginbrowser/internal/cdp"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

type tabHandleInput struct {
	Handle int `path:"handle" minimum:"0" doc:"Stable tab handle. 0 is the home tab."`
}

type tabOutput struct {
	Body tabs.Record
}

type toolbarOutput struct {
	Body browser.Toolbar
}

func registerTabHandlers(api huma.API, svc Service, targets TargetLister) {
	type listTabsOutput struct {
		Body struct {
			Tabs []tabs.Record `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List tabs in strip order", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*listTabsOutput, error) {
			out := &listTabsOutput{}
			out.Body.Tabs = svc.Tabs()
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "open-tab", Method: http.MethodPost, Path: "/api/v1/tabs", Summary: "Open a URL in a new tab", Description: "tundra:// URLs start a login instead and return the home tab.", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct {
			Body struct {
				URL   string `json:"url" minLength:"1"`
				Focus bool   `json:"focus,omitempty"`
			}
		}) (*tabOutput, error) {
			rec, err := svc.OpenURL(ctx, input.Body.URL, input.Body.Focus)
			if err != nil {
				return nil, mapErr(err)
			}
			return &tabOutput{Body: rec}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-tab", Method: http.MethodGet, Path: "/api/v1/tabs/{handle}", Summary: "Get a tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabHandleInput) (*tabOutput, error) {
			rec, err := svc.Tab(tabs.Handle(input.Handle))
			if err != nil {
				return nil, mapErr(err)
			}
			return &tabOutput{Body: rec}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "close-tab", Method: http.MethodDelete, Path: "/api/v1/tabs/{handle}", Summary: "Close a web tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabHandleInput) (*statusOutput, error) {
			if err := svc.CloseTab(ctx, tabs.Handle(input.Handle)); err != nil {
				return nil, mapErr(err)
			}
			return ok(), nil
		})

	huma.Register(api, huma.Operation{OperationID: "activate-tab", Method: http.MethodPost, Path: "/api/v1/tabs/{handle}/activate", Summary: "Focus a tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabHandleInput) (*toolbarOutput, error) {
			rec, err := svc.Tab(tabs.Handle(input.Handle))
			if err != nil {
				return nil, mapErr(err)
			}
			tb, err := svc.Activate(ctx, rec.Index)
			if err != nil {
				return nil, mapErr(err)
			}
			return &toolbarOutput{Body: tb}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-toolbar", Method: http.MethodGet, Path: "/api/v1/toolbar", Summary: "Toolbar state for the focused tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*toolbarOutput, error) {
			return &toolbarOutput{Body: svc.Toolbar()}, nil
		})

	if targets == nil {
		return
	}
	type targetsOutput struct {
		Body struct {
			Targets []cdp.TargetInfo `json:"targets"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-engine-targets", Method: http.MethodGet, Path: "/api/v1/engine/targets", Summary: "Browser targets behind the web tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*targetsOutput, error) {
			out := &targetsOutput{}
			out.Body.Targets = targets.Targets()
			return out, nil
		})
}
