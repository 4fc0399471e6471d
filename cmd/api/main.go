package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodlens/internal/adapters/credfile"
	"github.com/ewilliams-labs/moodlens/internal/adapters/fer"
	"github.com/ewilliams-labs/moodlens/internal/adapters/rest"
	"github.com/ewilliams-labs/moodlens/internal/adapters/spotify"
	"github.com/ewilliams-labs/moodlens/internal/config"
	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/services"
	"github.com/ewilliams-labs/moodlens/internal/profiling"
	"github.com/ewilliams-labs/moodlens/internal/worker"
)

func main() {
	// 1. Configuration (defaults, optional file, environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	logger := newLogger(cfg.Logging.Level)

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Credential store
	store := credfile.NewStore(cfg.Credentials.Path, logger)
	creds, err := store.Load()
	if err != nil {
		logger.Fatal("failed to read credentials file", "path", cfg.Credentials.Path, "err", err)
	}

	// -- Spotify adapter
	spotifyClient := spotify.NewClient(spotify.Config{
		TokenURL:          cfg.Spotify.TokenURL,
		BaseURL:           cfg.Spotify.BaseURL,
		SearchLimit:       cfg.Spotify.SearchLimit,
		Timeout:           cfg.Spotify.Timeout,
		MaxRetries:        cfg.Spotify.MaxRetries,
		RetryBackoff:      cfg.Spotify.RetryBackoff,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		CacheCapacity:     cfg.Cache.Capacity,
	}, creds, logger)

	// A missing or rejected credential pair is not fatal. The service keeps
	// answering with curated playlists until credentials arrive via /settings.
	// With a working token, warm the per-emotion cache in the background.
	pool := worker.NewPool(spotifyClient, len(domain.Labels), logger)
	pool.Start(2)
	defer pool.Stop()

	if err := spotifyClient.Authenticate(context.Background()); err != nil {
		logger.Warn("spotify authentication unavailable at startup, serving curated playlists", "err", err)
	} else {
		pool.WarmAll()
	}

	// -- Emotion model adapter
	detector := fer.NewClient(fer.Options{
		BaseURL:  cfg.Detector.URL,
		Timeout:  cfg.Detector.Timeout,
		MaxEdge:  cfg.Detector.MaxImageEdge,
		SpoolDir: cfg.Detector.SpoolDir,
		Logger:   logger,
	})

	// 3. Initialize Core Logic (The Driver)
	// We inject the specific adapters into the agnostic service. The compiler
	// guarantees that detector implements ports.EmotionDetector and
	// spotifyClient implements ports.PlaylistSource.
	svc := services.NewOrchestrator(detector, spotifyClient, logger)

	// 4. Initialize "Driving" Adapter (The Interface)
	profiler := profiling.New()
	handler := rest.NewHandler(svc, store, spotifyClient, profiler, logger)

	// 5. Start the Server
	logger.Info("moodlens API is running", "addr", cfg.Server.Addr())

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server failed", "err", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "moodlens",
	})
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
