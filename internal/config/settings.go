package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgnsrekt/loginbrowser/internal/loginurl"
)

const (
	SectionURL       = "url"
	SectionBehaviour = "behaviour"
	SectionBookmarks = "bookmarks"
	SectionClient    = "client"
)

const defaultHomepage = "http://login.realxtend.org/"

// Settings is the typed view of the browser settings in a Store. It is
// parsed once with LoadSettings and written back with Apply.
type Settings struct {
	Homepage  string `json:"homepage"`
	NewTabURL string `json:"new_tab_url"`

	NewTabOpensHomepage      bool `json:"new_tab_opens_homepage"`
	StartupLoadHomepage      bool `json:"startup_load_homepage"`
	StartupConnectHomeServer bool `json:"startup_connect_home_server"`

	ProxyEnabled bool   `json:"proxy_enabled"`
	ProxyHost    string `json:"proxy_host"`
	ProxyPort    int    `json:"proxy_port,omitempty"`

	CookiesEnabled bool `json:"cookies_enabled"`
	CacheEnabled   bool `json:"cache_enabled"`
}

func DefaultSettings() Settings {
	return Settings{
		Homepage:            defaultHomepage,
		NewTabURL:           defaultHomepage,
		StartupLoadHomepage: true,
		CookiesEnabled:      true,
		CacheEnabled:        true,
	}
}

// LoadSettings parses the store into Settings. Missing keys take defaults;
// malformed values are reported instead of silently coerced.
func LoadSettings(s *Store) (Settings, error) {
	def := DefaultSettings()
	out := Settings{
		Homepage:  s.Get(SectionURL, "homepage", def.Homepage),
		NewTabURL: s.Get(SectionURL, "newtab", def.NewTabURL),
		ProxyHost: strings.TrimSpace(s.Get(SectionURL, "proxyhost", "")),
	}

	var err error
	if out.ProxyPort, err = parsePort(s.Get(SectionURL, "proxyport", "")); err != nil {
		return Settings{}, err
	}

	bools := []struct {
		section, key string
		def          bool
		dst          *bool
	}{
		{SectionBehaviour, "newtab_load_homepage", def.NewTabOpensHomepage, &out.NewTabOpensHomepage},
		{SectionBehaviour, "startup_load_homepage", def.StartupLoadHomepage, &out.StartupLoadHomepage},
		{SectionBehaviour, "startup_load_homeserver", def.StartupConnectHomeServer, &out.StartupConnectHomeServer},
		{SectionBehaviour, "enable_proxy", def.ProxyEnabled, &out.ProxyEnabled},
		{SectionBehaviour, "enable_cookies", def.CookiesEnabled, &out.CookiesEnabled},
		{SectionBehaviour, "enable_cache", def.CacheEnabled, &out.CacheEnabled},
	}
	for _, b := range bools {
		raw := s.Get(b.section, b.key, "")
		if raw == "" {
			*b.dst = b.def
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("settings: %s.%s: %q is not a boolean", b.section, b.key, raw)
		}
		*b.dst = v
	}

	if err := out.Validate(); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Validate checks the rules the settings dialog enforces.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Homepage) == "" {
		return fmt.Errorf("settings: homepage is required")
	}
	if loginurl.HasScheme(strings.TrimSpace(s.NewTabURL)) {
		return fmt.Errorf("settings: the new tab url cannot be a %s server", loginurl.Scheme)
	}
	if strings.Contains(s.ProxyHost, ":") {
		return fmt.Errorf("settings: proxy host cannot have a port, use the port field: %q", s.ProxyHost)
	}
	if s.ProxyEnabled {
		if s.ProxyHost == "" {
			return fmt.Errorf("settings: proxy host is required when the proxy is enabled")
		}
		if s.ProxyPort < 1 || s.ProxyPort > 65535 {
			return fmt.Errorf("settings: proxy port %d out of range", s.ProxyPort)
		}
	}
	return nil
}

// Apply validates s and writes it into the store. The caller saves the store.
func (s Settings) Apply(st *Store) error {
	if err := s.Validate(); err != nil {
		return err
	}
	st.Set(SectionURL, "homepage", s.Homepage)
	st.Set(SectionURL, "newtab", s.NewTabURL)
	st.Set(SectionURL, "proxyhost", s.ProxyHost)
	port := ""
	if s.ProxyPort > 0 {
		port = strconv.Itoa(s.ProxyPort)
	}
	st.Set(SectionURL, "proxyport", port)
	st.Set(SectionBehaviour, "newtab_load_homepage", strconv.FormatBool(s.NewTabOpensHomepage))
	st.Set(SectionBehaviour, "startup_load_homepage", strconv.FormatBool(s.StartupLoadHomepage))
	st.Set(SectionBehaviour, "startup_load_homeserver", strconv.FormatBool(s.StartupConnectHomeServer))
	st.Set(SectionBehaviour, "enable_proxy", strconv.FormatBool(s.ProxyEnabled))
	st.Set(SectionBehaviour, "enable_cookies", strconv.FormatBool(s.CookiesEnabled))
	st.Set(SectionBehaviour, "enable_cache", strconv.FormatBool(s.CacheEnabled))
	return nil
}

// ProxyURL is the proxy server argument for the browser, or "" when disabled.
func (s Settings) ProxyURL() string {
	if !s.ProxyEnabled {
		return ""
	}
	return "http://" + s.ProxyHost + ":" + strconv.Itoa(s.ProxyPort)
}

func parsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 65535 {
		return 0, fmt.Errorf("settings: proxy port %q is not a valid port", raw)
	}
	return n, nil
}
