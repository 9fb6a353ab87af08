// Package handoff delivers login and logout requests to the world client
// that owns the actual server connection.
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

var ErrNoEndpoint = errors.New("handoff: endpoint is not configured")

// LoginRequest is the JSON body posted to <endpoint>/login.
type LoginRequest struct {
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Protocol string `json:"protocol"`
}

// Client posts connection requests to the world client.
type Client struct {
	endpoint string
	http     *http.Client
}

// New builds a Client for endpoint. A nil httpClient gets one with timeout.
func New(endpoint string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), http: httpClient}
}

// Login asks the world client to connect with the given credentials.
func (c *Client) Login(ctx context.Context, address string, port int, username, password, protocol string) error {
	if port <= 0 {
		port = loginurl.DefaultPort
	}
	if protocol == "" {
		protocol = loginurl.ProtocolTCP
	}
	body := LoginRequest{
		Address:  address,
		Port:     port,
		Username: username,
		Password: password,
		Protocol: protocol,
	}
	slog.Info("handoff login", "address", address, "port", port, "username", username, "protocol", protocol)
	return c.post(ctx, "/login", body)
}

func (c *Client) Logout(ctx context.Context) error {
	slog.Info("handoff logout")
	return c.post(ctx, "/logout", struct{}{})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	if c.endpoint == "" {
		return ErrNoEndpoint
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("handoff: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("handoff %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("handoff %s failed: status=%d body=%q", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
