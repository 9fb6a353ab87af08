package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/loginbrowser/internal/relay"
)

type eventStatusOutput struct {
	Body struct {
		Clients int   `json:"clients" doc:"connected SSE and WebSocket subscribers"`
		Dropped int64 `json:"dropped" doc:"deliveries skipped because a subscriber fell behind"`
	}
}

func registerEventHandlers(api huma.API, broker *relay.Broker) {
	huma.Register(api, huma.Operation{OperationID: "event-status", Method: http.MethodGet, Path: "/api/v1/events/status", Summary: "Event feed subscribers and drops", Tags: []string{"Events"}},
		func(ctx context.Context, input *struct{}) (*eventStatusOutput, error) {
			out := &eventStatusOutput{}
			out.Body.Clients = broker.ClientCount()
			out.Body.Dropped = broker.Dropped()
			return out, nil
		})
}
