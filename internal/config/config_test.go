package config

import (
	"testing"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CHROMIUM_CDP_PORT", "9333")
	t.Setenv("LOGINBROWSER_LOG_LEVEL", "DEBUG")
	t.Setenv("LOGINBROWSER_PORT_CANDIDATES", " 127.0.0.1:9001 ,,127.0.0.1:9002")
	t.Setenv("LOGINBROWSER_LAUNCH_BROWSER", "false")
	t.Setenv("LOGINBROWSER_HANDOFF_TIMEOUT_MS", "10")
	t.Setenv("LOGINBROWSER_JOURNAL_DIR", "events")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.CDPURL(), "http://127.0.0.1:9333"; got != want {
		t.Fatalf("CDPURL() = %q; want %q", got, want)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q; want debug", cfg.LogLevel)
	}
	if len(cfg.PortCandidates) != 2 || cfg.PortCandidates[1] != "127.0.0.1:9002" {
		t.Fatalf("PortCandidates = %v", cfg.PortCandidates)
	}
	if cfg.LaunchBrowser {
		t.Fatal("LaunchBrowser = true; want false")
	}
	if cfg.HandoffTimeoutMS != 500 {
		t.Fatalf("HandoffTimeoutMS = %d; want clamp to 500", cfg.HandoffTimeoutMS)
	}
	if cfg.JournalDir != "events" || cfg.JournalMaxSizeMB != 25 {
		t.Fatalf("journal = %q/%d; want events/25", cfg.JournalDir, cfg.JournalMaxSizeMB)
	}
}

func TestLoadRejectsBadCDPPort(t *testing.T) {
	t.Setenv("CHROMIUM_CDP_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil; want error")
	}
}
