package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyLoginRequest(t *testing.T) {
	out, err := run(t, "classify", "tundra://world.example.org:7000/?username=bob&password=pw")
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	var got classification
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Action != "login_request" || got.Params == nil || got.Params.Port != 7000 {
		t.Fatalf("classify = %+v", got)
	}
	if got.Params.Password != "" {
		t.Fatal("password printed without --show-password")
	}
	if got.Title != "world.example.org:7000 as bob" {
		t.Fatalf("Title = %q", got.Title)
	}
}

func TestClassifyShowPassword(t *testing.T) {
	out, err := run(t, "classify", "--show-password", "tundra://w.example.org/?username=bob&password=pw")
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	if !strings.Contains(out, `"password": "pw"`) {
		t.Fatalf("output %q missing password", out)
	}
}

func TestClassifyRejected(t *testing.T) {
	out, err := run(t, "classify", "tundra://w.example.org/")
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	if !strings.Contains(out, `"action": "rejected"`) || !strings.Contains(out, `"reason"`) {
		t.Fatalf("output = %q", out)
	}
}

func TestFormat(t *testing.T) {
	out, err := run(t, "format", "--address", "w.example.org", "--username", "bob", "--protocol", "udp")
	if err != nil {
		t.Fatalf("format error = %v", err)
	}
	want := "tundra://w.example.org:2345/?username=bob&protocol=udp\n"
	if out != want {
		t.Fatalf("format = %q, want %q", out, want)
	}
}

func TestFormatRequiresUsername(t *testing.T) {
	if _, err := run(t, "format", "--address", "w.example.org"); err == nil {
		t.Fatal("format without username = nil error")
	}
	if _, err := run(t, "format", "--address", "w", "--username", "u", "--protocol", "sctp"); err == nil {
		t.Fatal("format with sctp = nil error")
	}
}

func TestNormalize(t *testing.T) {
	out, err := run(t, "normalize", "example.org")
	if err != nil || out != "http://example.org\n" {
		t.Fatalf("normalize = %q, %v", out, err)
	}
}
