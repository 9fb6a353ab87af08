package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/loginbrowser/internal/api"
	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/browser"
	"github.com/dgnsrekt/loginbrowser/internal/cdp"
	"github.com/dgnsrekt/loginbrowser/internal/config"
	"github.com/dgnsrekt/loginbrowser/internal/handoff"
	"github.com/dgnsrekt/loginbrowser/internal/journal"
	"github.com/dgnsrekt/loginbrowser/internal/netutil"
	"github.com/dgnsrekt/loginbrowser/internal/relay"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("login browser config loaded",
		"cdp_url", cfg.CDPURL(),
		"launch_browser", cfg.LaunchBrowser,
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"settings_file", cfg.SettingsFile,
		"handoff_url", cfg.HandoffURL,
		"journal_dir", cfg.JournalDir,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	store, err := config.OpenStore(cfg.SettingsFile)
	if err != nil {
		slog.Error("failed to open settings", "path", cfg.SettingsFile, "error", err)
		os.Exit(1)
	}
	settings, err := config.LoadSettings(store)
	if err != nil {
		slog.Error("failed to load browser settings", "path", store.Path(), "error", err)
		os.Exit(1)
	}
	slog.Info("browser settings loaded", "path", store.Path(), "homepage", settings.Homepage)
	marks, err := bookmarks.Open(store)
	if err != nil {
		slog.Error("failed to load bookmarks", "error", err)
		os.Exit(1)
	}

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var launcher *browser.Launcher
	if cfg.LaunchBrowser {
		launcher = browser.NewLauncher(browser.LaunchConfigFrom(cfg, settings))
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer launcher.Stop()
	}

	engine := cdp.NewEngine(cfg.CDPURL(), cdp.NewTabRegistry(), settings.CacheEnabled)
	if err := engine.Connect(ctx); err != nil {
		slog.Error("failed to connect to browser", "cdp_url", cfg.CDPURL(), "error", err)
		if launcher != nil {
			launcher.Stop()
		}
		os.Exit(1)
	}
	defer func() { _ = engine.Shutdown() }()

	broker := relay.NewBroker()
	publisher := relay.NewPublisher(broker)
	if cfg.JournalDir != "" {
		j := journal.New(cfg.JournalDir, cfg.JournalMaxSizeMB)
		go j.Run(ctx, broker)
		defer func() { _ = j.Close() }()
	}
	client := handoff.New(cfg.HandoffURL, nil, time.Duration(cfg.HandoffTimeoutMS)*time.Millisecond)

	manager, err := browser.NewManager(browser.Options{
		Engine:    engine,
		Storage:   engine,
		Store:     store,
		Settings:  settings,
		Bookmarks: marks,
		Client:    client,
		Events:    publisher,
		Observers: []tabs.Observer{publisher},
	})
	if err != nil {
		slog.Error("failed to create tab manager", "error", err)
		os.Exit(1)
	}
	engine.Bind(manager)
	if err := manager.Start(ctx); err != nil {
		slog.Warn("startup navigation failed", "error", err)
	}

	srv := &http.Server{Handler: api.NewServer(manager, broker, engine)}
	go func() {
		addr := ln.Addr().String()
		slog.Info("login browser listening", "addr", addr, "docs", "http://"+addr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
