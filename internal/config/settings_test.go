package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSettingsDefaults(t *testing.T) {
	st, err := OpenStore(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	got, err := LoadSettings(st)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Fatalf("LoadSettings() = %+v; want %+v", got, DefaultSettings())
	}
}

func TestLoadSettingsParsesStringBooleansOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browsersettings.yaml")
	data := `url:
  homepage: http://portal.example.org/
  newtab: http://start.example.org/
  proxyhost: proxy.local
  proxyport: "3128"
behaviour:
  enable_cookies: "false"
  enable_cache: "true"
  enable_proxy: "true"
  newtab_load_homepage: "true"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	st, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}

	got, err := LoadSettings(st)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got.CookiesEnabled {
		t.Fatal("CookiesEnabled = true; want false")
	}
	if !got.ProxyEnabled || got.ProxyPort != 3128 || got.ProxyHost != "proxy.local" {
		t.Fatalf("proxy = %v %q %d; want enabled proxy.local:3128", got.ProxyEnabled, got.ProxyHost, got.ProxyPort)
	}
	if got.ProxyURL() != "http://proxy.local:3128" {
		t.Fatalf("ProxyURL() = %q", got.ProxyURL())
	}
	if !got.NewTabOpensHomepage || !got.StartupLoadHomepage {
		t.Fatalf("behaviour = %+v; want newtab homepage and startup homepage", got)
	}
}

func TestLoadSettingsRejectsBadBoolean(t *testing.T) {
	st, _ := OpenStore(filepath.Join(t.TempDir(), "s.yaml"))
	st.Set(SectionBehaviour, "enable_cache", "yes please")
	if _, err := LoadSettings(st); err == nil {
		t.Fatal("LoadSettings() = nil; want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"tundra new tab", func(s *Settings) { s.NewTabURL = "TUNDRA://world/" }, "new tab url"},
		{"proxy host with port", func(s *Settings) { s.ProxyHost = "proxy:8080" }, "cannot have a port"},
		{"proxy without port", func(s *Settings) { s.ProxyEnabled = true; s.ProxyHost = "proxy" }, "out of range"},
		{"empty homepage", func(s *Settings) { s.Homepage = " " }, "homepage is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v; want error containing %q", err, tc.want)
			}
		})
	}
}

func TestApplyAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "browsersettings.yaml")
	st, _ := OpenStore(path)

	s := DefaultSettings()
	s.Homepage = "tundra://home.example.org/?username=bob"
	s.CacheEnabled = false
	if err := s.Apply(st); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := st.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	got, err := LoadSettings(reopened)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got != s {
		t.Fatalf("LoadSettings() = %+v; want %+v", got, s)
	}
}
