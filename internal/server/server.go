package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slogzerolog "github.com/samber/slog-zerolog/v2"

	"assetmap/config"
	"assetmap/internal/assets"
	"assetmap/internal/cache"
	"assetmap/internal/importmap"
	"assetmap/internal/watch"

	_ "github.com/joho/godotenv/autoload"
)

// siteState is one pipeline run's output: the registry plus the import map
// built from it. The server swaps whole states atomically so a request never
// sees a registry from one run and an import map from another.
type siteState struct {
	registry *assets.Registry
	imports  *importmap.Map
}

type Server struct {
	port    int
	isLocal bool
	logger  *zerolog.Logger
	root    string
	prefix  string
	state   atomic.Pointer[siteState]
	reload  *ReloadHub
}

func getLogger(isLocal bool) *zerolog.Logger {
	var writer io.Writer
	writer = os.Stdout
	if isLocal {
		writer = zerolog.NewConsoleWriter()
	}
	context := zerolog.New(writer).With().Timestamp().Caller().Stack()
	if !isLocal {
		context = context.Str("service.name", "assetmap")
	}
	logger := context.Logger().Level(config.LogLevel())
	log.Logger = logger

	// Set up slog to use zerolog for compatibility with go-retryablehttp
	slog.SetDefault(slog.New(slogzerolog.Option{Logger: &logger}.NewZerologHandler()))
	return &logger
}

// NewServer runs the asset pipeline and wires the HTTP server around its
// output. In local mode the root is served passthrough and a filesystem
// watcher rebuilds the state on change; in production the root is
// fingerprinted once and the state never changes. A pipeline failure of any
// kind aborts startup rather than serving a partial root.
func NewServer() (*http.Server, error) {
	isLocal := config.IsLocal()
	logger := getLogger(isLocal)

	s := &Server{
		port:    config.Port(),
		isLocal: isLocal,
		logger:  logger,
		root:    config.AssetRoot(),
		prefix:  config.AssetPrefix(),
	}

	cache.LoadCache()
	if err := s.refresh(); err != nil {
		return nil, err
	}

	scheduler, _ := gocron.NewScheduler()
	scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(cache.SaveCache),
	)
	scheduler.Start()

	var watcher *watch.Watcher
	if isLocal {
		s.reload = NewReloadHub()
		var err error
		watcher, err = watch.New(s.root, s.rebuild)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", s.root, err)
		}
		watcher.Start(context.Background())
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	server.RegisterOnShutdown(func() {
		scheduler.Shutdown()
		if watcher != nil {
			watcher.Stop()
		}
		if s.reload != nil {
			s.reload.Close()
		}
		cache.SaveCache()
	})

	return server, nil
}

func (s *Server) refresh() error {
	var (
		reg *assets.Registry
		err error
	)
	if s.isLocal {
		reg, err = assets.Passthrough(s.root, s.prefix)
	} else {
		reg, err = assets.Run(s.root, s.prefix)
	}
	if err != nil {
		return err
	}
	pins, err := importmap.LoadPins(config.PinsPath())
	if err != nil {
		return err
	}
	m, err := importmap.Build(reg, pins)
	if err != nil {
		return err
	}
	s.state.Store(&siteState{registry: reg, imports: m})
	return nil
}

// rebuild is the watcher callback. A failed rebuild keeps the previous state
// serving; the error only shows up in the logs until the next change.
func (s *Server) rebuild() {
	if err := s.refresh(); err != nil {
		log.Error().Err(err).Msg("Asset rebuild failed")
		return
	}
	state := s.state.Load()
	log.Info().Int("assets", state.registry.Len()).Msg("Assets reloaded")
	if s.reload != nil {
		s.reload.Broadcast()
	}
}
