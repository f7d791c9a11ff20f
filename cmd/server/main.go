package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/volley-scoreboard/internal/board"
	"github.com/DoyleJ11/volley-scoreboard/internal/config"
	"github.com/DoyleJ11/volley-scoreboard/internal/device"
	"github.com/DoyleJ11/volley-scoreboard/internal/httpapi"
	"github.com/DoyleJ11/volley-scoreboard/internal/snapshot"
	"github.com/DoyleJ11/volley-scoreboard/internal/store"
)

func main() {
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if dotenvErr != nil {
		log.Warn("could not load .env file", zap.Error(dotenvErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// run serves until ctx ends or the listener fails. Either way the board is
// stopped before it returns.
func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	persister := snapshot.NewPersister(st, log)
	initial, restored := persister.Restore(ctx)
	deviceID := device.ID(ctx, st, log)

	g, gctx := errgroup.WithContext(ctx)

	// gctx also ends when the listener fails
	b := board.New(gctx, initial, board.Config{
		Saver:  persister,
		Rules:  cfg.Rules,
		Logger: log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(httpapi.Deps{Board: b, DeviceID: deviceID, Logger: log}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("deviceID", deviceID),
			zap.Bool("restored", restored),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-b.Done()
		return err
	})
	return g.Wait()
}

// openStore picks the SQL store when a database URL is configured and the
// data directory otherwise.
func openStore(cfg config.Config, log *zap.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		gs, err := store.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres store")
		return gs, func() {
			if err := gs.Close(); err != nil {
				log.Warn("close store", zap.Error(err))
			}
		}, nil
	}

	fs, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using file store", zap.String("dir", cfg.DataDir))
	return fs, func() {}, nil
}
