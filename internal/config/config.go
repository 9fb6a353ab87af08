package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process configuration for the login browser daemon.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Browser process
	LaunchBrowser bool
	ProfileDir    string
	WindowSize    string

	// Control API
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Logging
	LogLevel string
	LogFile  string

	// Persisted browser settings and bookmarks
	SettingsFile string

	// Viewer endpoint that receives login hand-offs
	HandoffURL       string
	HandoffTimeoutMS int

	// Event journal, disabled when JournalDir is empty
	JournalDir       string
	JournalMaxSizeMB int
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:       getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		LaunchBrowser:    getEnvBoolOrDefault("LOGINBROWSER_LAUNCH_BROWSER", true),
		ProfileDir:       getEnvOrDefault("LOGINBROWSER_PROFILE_DIR", "./browsercache"),
		WindowSize:       getEnvOrDefault("LOGINBROWSER_WINDOW_SIZE", "1280,800"),
		BindAddr:         getEnvOrDefault("LOGINBROWSER_BIND_ADDR", "127.0.0.1:8290"),
		PortCandidates:   getEnvListOrDefault("LOGINBROWSER_PORT_CANDIDATES", []string{"127.0.0.1:8291", "127.0.0.1:8292"}),
		PortAutoFallback: getEnvBoolOrDefault("LOGINBROWSER_PORT_AUTO_FALLBACK", true),
		LogLevel:         strings.ToLower(getEnvOrDefault("LOGINBROWSER_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("LOGINBROWSER_LOG_FILE", "logs/loginbrowser.log"),
		SettingsFile:     getEnvOrDefault("LOGINBROWSER_SETTINGS_FILE", "./browsersettings.yaml"),
		HandoffURL:       getEnvOrDefault("LOGINBROWSER_HANDOFF_URL", "http://127.0.0.1:2346/client"),
		HandoffTimeoutMS: getEnvIntOrDefault("LOGINBROWSER_HANDOFF_TIMEOUT_MS", 5000),
		JournalDir:       getEnvOrDefault("LOGINBROWSER_JOURNAL_DIR", ""),
		JournalMaxSizeMB: getEnvIntOrDefault("LOGINBROWSER_JOURNAL_MAX_SIZE_MB", 25),
	}
	if cfg.HandoffTimeoutMS < 500 {
		cfg.HandoffTimeoutMS = 500
	}
	if cfg.CDPPort <= 0 || cfg.CDPPort > 65535 {
		return nil, fmt.Errorf("invalid CHROMIUM_CDP_PORT: %d", cfg.CDPPort)
	}

	return cfg, nil
}

// CDPURL returns the full CDP HTTP endpoint used by chromedp remote allocator.
func (c *Config) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
