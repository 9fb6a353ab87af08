package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

type classifyOutput struct {
	Body struct {
		Action string                          `json:"action" enum:"continue,login_request,rejected"`
		Params *loginurl.ConnectionParameters `json:"params,omitempty"`
		Reason string                          `json:"reason,omitempty"`
		URL    string                          `json:"url,omitempty" doc:"Canonical login URL without the password."`
	}
}

func registerNavigationHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "address-bar", Method: http.MethodPost, Path: "/api/v1/navigation/address", Summary: "Submit address bar input", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Input string `json:"input" minLength:"1"`
			}
		}) (*toolbarOutput, error) {
			if err := svc.AddressBarRequest(ctx, input.Body.Input); err != nil {
				return nil, mapErr(err)
			}
			return &toolbarOutput{Body: svc.Toolbar()}, nil
		})

	type newTabOutput struct {
		Body struct {
			Handle tabs.Handle `json:"handle"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "new-tab", Method: http.MethodPost, Path: "/api/v1/navigation/new-tab", Summary: "Press the new tab button", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct{}) (*newTabOutput, error) {
			h, err := svc.NewTabRequest(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &newTabOutput{}
			out.Body.Handle = h
			return out, nil
		})

	simple := []struct {
		id, path, summary string
		fn                func(context.Context) error
	}{
		{"home", "/api/v1/navigation/home", "Go to the home page", svc.Home},
		{"back", "/api/v1/navigation/back", "Go back in the focused tab", svc.Back},
		{"forward", "/api/v1/navigation/forward", "Go forward in the focused tab", svc.Forward},
		{"refresh-stop", "/api/v1/navigation/refresh-stop", "Stop loading, or reload when idle", svc.RefreshStop},
	}
	for _, op := range simple {
		fn := op.fn
		huma.Register(api, huma.Operation{OperationID: op.id, Method: http.MethodPost, Path: op.path, Summary: op.summary, Tags: []string{"Navigation"}},
			func(ctx context.Context, input *struct{}) (*toolbarOutput, error) {
				if err := fn(ctx); err != nil {
					return nil, mapErr(err)
				}
				return &toolbarOutput{Body: svc.Toolbar()}, nil
			})
	}

	huma.Register(api, huma.Operation{OperationID: "classify-url", Method: http.MethodGet, Path: "/api/v1/classify", Summary: "Classify a URL without acting on it", Tags: []string{"Navigation"}},
		func(ctx context.Context, input *struct {
			URL string `query:"url" required:"true"`
		}) (*classifyOutput, error) {
			action := loginurl.Classify(input.URL)
			out := &classifyOutput{}
			switch action.Kind {
			case loginurl.LoginRequest:
				out.Body.Action = "login_request"
				params := action.Params
				params.Password = ""
				out.Body.Params = &params
				out.Body.URL = loginurl.Format(action.Params)
			case loginurl.Rejected:
				out.Body.Action = "rejected"
				out.Body.Reason = action.Reason.Error()
			default:
				out.Body.Action = "continue"
			}
			return out, nil
		})
}
