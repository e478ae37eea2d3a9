// Package ui provides the MetaStore web UI server.
package ui

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/internal/ui/router"
	"github.com/leapstack-labs/metastore/pkg/core"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
	reloadDebounce           = 100 * time.Millisecond
)

// Replacer is a store whose model set can be swapped wholesale.
type Replacer interface {
	Replace(models []*core.Model)
}

// Server is the main UI server.
type Server struct {
	store             *notifier.Store
	replacer          Replacer
	linter            *lint.Analyzer
	sessionStore      *sessions.CookieStore
	port              int
	watch             bool
	dev               bool
	seedFile          string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	notifier          *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Store core.Store
	// Linter checks models on the detail page and the lint API. Nil runs
	// every rule at its default severity.
	Linter        *lint.Analyzer
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	Logger        *slog.Logger
	// SeedFile is reloaded into the store when it changes and Watch is set.
	SeedFile          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	readHeaderTimeout := cfg.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	n := notifier.New()
	replacer, _ := cfg.Store.(Replacer)

	return &Server{
		store:             notifier.WrapStore(cfg.Store, n),
		replacer:          replacer,
		linter:            cfg.Linter,
		sessionStore:      sessionStore,
		port:              cfg.Port,
		watch:             cfg.Watch,
		dev:               cfg.Dev,
		seedFile:          cfg.SeedFile,
		readHeaderTimeout: readHeaderTimeout,
		shutdownTimeout:   shutdownTimeout,
		logger:            logger,
		notifier:          n,
	}
}

// Handler builds the HTTP handler with all routes mounted.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.store, s.sessionStore, s.notifier, s.linter, s.logger, s.IsDev()); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	if s.watch && s.seedFile != "" {
		if s.replacer == nil {
			s.logger.Warn("store does not support reloading, not watching seed file", "file", s.seedFile)
		} else {
			eg.Go(func() error {
				return s.watchSeedFile(egctx)
			})
		}
	}

	eg.Go(func() error {
		s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether dev-only routes such as hot reload are mounted.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// ReloadSeedFile replaces the store's models with the seed file contents
// and notifies connected clients.
func (s *Server) ReloadSeedFile() error {
	if s.replacer == nil {
		return errors.New("store does not support reloading")
	}
	models, err := store.LoadModelsFile(s.seedFile)
	if err != nil {
		return err
	}
	s.replacer.Replace(models)
	s.notifier.Broadcast(notifier.Event{Kind: notifier.KindReloaded})
	s.logger.Info("reloaded models", "file", s.seedFile, "models", len(models))
	return nil
}

// watchSeedFile reloads the seed file whenever it changes. The parent
// directory is watched since editors often replace files on save.
func (s *Server) watchSeedFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.seedFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch seed file", "file", target, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				if err := s.ReloadSeedFile(); err != nil {
					s.logger.Error("reload failed", "file", target, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
