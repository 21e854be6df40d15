package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/chessrules-backend/internal/config"
	"github.com/benbeisheim/chessrules-backend/internal/controller"
	"github.com/benbeisheim/chessrules-backend/internal/obslog"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource it opens; errors return through the deferred closes.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := obslog.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	log := obslog.L()
	defer func() { _ = log.Sync() }()

	opts, closeBackends, err := backends(cfg, log)
	defer closeBackends()
	if err != nil {
		return err
	}

	gameManager := service.NewGameManager(opts)
	defer gameManager.Close()
	app := newApp(cfg, gameManager, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	return nil
}

// backends opens the optional redis store and postgres archive. The returned
// close func is always non-nil and releases whatever was opened, even on error.
func backends(cfg *config.AppConfig, log *zap.Logger) (service.Options, func(), error) {
	opts := service.Options{
		Clock:               cfg.Clock(),
		MatchmakingInterval: cfg.MatchmakingInterval(),
		Logger:              log,
	}
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close backend", zap.Error(err))
			}
		}
	}

	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := store.DialRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return opts, closeAll, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, rdb.Close)
		opts.Store = store.NewRedisStore(rdb, cfg.GameTTL())
		log.Info("game snapshots in redis", zap.Duration("ttl", cfg.GameTTL()))
	} else {
		log.Warn("REDIS_URL not set; games are kept in memory only")
	}

	if cfg.DatabaseURL != "" {
		archive, err := store.NewArchive(cfg.DatabaseURL)
		if err != nil {
			return opts, closeAll, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, archive.Close)
		opts.Archive = archive
		log.Info("finished games archived to postgres")
	}
	return opts, closeAll, nil
}

func newApp(cfg *config.AppConfig, gameManager *service.GameManager, log *zap.Logger) *fiber.App {
	gameService := service.NewGameService(gameManager)
	gameController := controller.NewGameController(gameService, log.Named("http"))
	wsController := controller.NewWebSocketController(gameService, log.Named("ws"))
	return controller.NewApp(gameController, wsController, cfg.AllowedOrigins, log.Named("http"))
}
