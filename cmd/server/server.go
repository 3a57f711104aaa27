package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shareboard/internal/config"
	"shareboard/internal/domain/content"
	"shareboard/internal/domain/convert"
	"shareboard/internal/domain/speech"
	"shareboard/internal/infrastructure/crontab"
	"shareboard/internal/infrastructure/database"
	"shareboard/internal/infrastructure/logger"
	contentrepo "shareboard/internal/infrastructure/repository/content"
	"shareboard/internal/infrastructure/speechvendor"
	"shareboard/internal/infrastructure/storage"
	"shareboard/internal/infrastructure/transcoder"
	"shareboard/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	crontab    *crontab.Crontab
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, ctab *crontab.Crontab, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		crontab:    ctab,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		err := a.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := a.httpServer.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	return eg.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store, err := storage.NewLocalStorage(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize upload storage")
	}

	contentRepository := contentrepo.NewRepository(db)
	contentService := content.NewService(cfg, contentRepository, store, log)

	trans := transcoder.New(cfg, log)
	convertService := convert.NewService(contentService, store, trans, log)

	vendor := speechvendor.NewClient(cfg, log)
	speechService := speech.NewService(contentService, store, vendor, log)

	cleanup := content.NewCleanupCell(content.CleanupConfig{
		Enabled:    cfg.CleanupEnabled,
		PeriodDays: cfg.CleanupPeriodDays,
	})
	ctab := crontab.NewCrontab(contentService, cleanup, log)

	httpServer := httpserver.New(cfg, log, contentService, convertService, speechService, cleanup, store)
	app := NewApplication(httpServer, ctab, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
