package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Header:     make(http.Header),
	}
}

func TestLoginPostsJSON(t *testing.T) {
	var gotPath, gotType string
	var got LoginRequest

	client := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			return okResponse(), nil
		}),
	}

	c := New("http://client.local/client/", client, 0)
	if err := c.Login(context.Background(), "w.example.org", 0, "alice", "pw", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if gotPath != "/client/login" {
		t.Fatalf("path = %q; want /client/login", gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("content-type = %q", gotType)
	}
	want := LoginRequest{Address: "w.example.org", Port: loginurl.DefaultPort, Username: "alice", Password: "pw", Protocol: loginurl.ProtocolTCP}
	if got != want {
		t.Fatalf("body = %+v; want %+v", got, want)
	}
}

func TestLogoutPath(t *testing.T) {
	var gotPath string
	client := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			return okResponse(), nil
		}),
	}
	if err := New("http://client.local", client, 0).Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if gotPath != "/logout" {
		t.Fatalf("path = %q; want /logout", gotPath)
	}
}

func TestLoginReturnsErrorForServerError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader("busy")),
				Header:     make(http.Header),
			}, nil
		}),
	}
	err := New("http://client.local", client, 0).Login(context.Background(), "w", 1, "u", "", "udp")
	if err == nil || !strings.Contains(err.Error(), "status=503") {
		t.Fatalf("Login() error = %v; want status=503", err)
	}
}

func TestMissingEndpoint(t *testing.T) {
	if err := New("", nil, 0).Logout(context.Background()); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("Logout() error = %v; want ErrNoEndpoint", err)
	}
}
