package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/loginbrowser/internal/browser"
	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

type sessionOutput struct {
	Body browser.SessionState
}

func registerSessionHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/session", Summary: "Connection state", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*sessionOutput, error) {
			return &sessionOutput{Body: svc.Session()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "login-url", Method: http.MethodPost, Path: "/api/v1/session/login", Summary: "Log in from a tundra:// URL", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct {
			Body struct {
				URL string `json:"url" minLength:"1"`
			}
		}) (*sessionOutput, error) {
			if err := svc.Login(ctx, input.Body.URL); err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: svc.Session()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "classic-login", Method: http.MethodPost, Path: "/api/v1/session/classic-login", Summary: "Log in from the classic login form", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Server   string `json:"server" minLength:"1" doc:"host or host:port"`
				Username string `json:"username" minLength:"1"`
				Password string `json:"password,omitempty"`
				Protocol string `json:"protocol,omitempty" doc:"tcp or udp"`
			}
		}) (*sessionOutput, error) {
			req := browser.ClassicLoginRequest{
				Server:   input.Body.Server,
				Username: input.Body.Username,
				Password: input.Body.Password,
				Protocol: input.Body.Protocol,
			}
			if err := svc.ClassicLogin(ctx, req); err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: svc.Session()}, nil
		})

	type classicOutput struct {
		Body browser.ClassicLoginRequest
	}
	huma.Register(api, huma.Operation{OperationID: "get-classic-login", Method: http.MethodGet, Path: "/api/v1/session/classic-login", Summary: "Last classic login form values", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*classicOutput, error) {
			return &classicOutput{Body: svc.LastClassicLogin()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "session-connected", Method: http.MethodPost, Path: "/api/v1/session/connected", Summary: "Report that the client connected", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Address  string `json:"address" minLength:"1"`
				Port     int    `json:"port,omitempty" minimum:"0" maximum:"65535"`
				Username string `json:"username" minLength:"1"`
				Protocol string `json:"protocol,omitempty"`
			}
		}) (*sessionOutput, error) {
			params := loginurl.ConnectionParameters{
				Address:  input.Body.Address,
				Port:     input.Body.Port,
				Username: input.Body.Username,
				Protocol: input.Body.Protocol,
			}
			if params.Port == 0 {
				params.Port = loginurl.DefaultPort
			}
			if params.Protocol == "" {
				params.Protocol = loginurl.ProtocolTCP
			}
			if err := svc.OnConnected(ctx, params); err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: svc.Session()}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "session-disconnected", Method: http.MethodPost, Path: "/api/v1/session/disconnected", Summary: "Report that the client disconnected", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*sessionOutput, error) {
			if err := svc.OnDisconnected(ctx); err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: svc.Session()}, nil
		})
}
