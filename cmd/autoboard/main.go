package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/config"
	"github.com/matthewbaird/autoboard/internal/eventbus"
	"github.com/matthewbaird/autoboard/internal/files"
	"github.com/matthewbaird/autoboard/internal/logging"
	"github.com/matthewbaird/autoboard/internal/records"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/server"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

func main() {
	profile := flag.String("profile", "", "configuration profile (config.<profile>.yaml)")
	flag.Parse()

	cfg, err := config.Load(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "autoboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, dialectName, err := store.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewSQLStore(db, dialectName)
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running schema migration: %w", err)
	}
	logger.Info("database migrated", zap.String("driver", cfg.DBDriver))

	checker, err := schema.NewChecker()
	if err != nil {
		return fmt.Errorf("compiling document schema: %w", err)
	}

	bus := eventbus.New(256, logger)
	bus.Subscribe("log", eventbus.NewLogConsumer(logger))
	bus.Start(ctx)
	defer bus.Stop()

	svc := service.New(st, checker, bus, logger)
	recs := records.New(svc, st, st, bus, logger)
	blobs := files.New(cfg.FilesDir, st, logger)

	var sessions wizard.SessionStore = wizard.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		sessions = wizard.NewRedisSessionStore(rdb)
		logger.Info("wizard sessions stored in redis", zap.String("addr", cfg.RedisAddr))
	}
	mgr := wizard.NewManager(wizard.NewLocalSubmitter(svc), sessions, cfg.SessionTTL, logger)
	go mgr.Run(ctx, time.Minute)

	return server.Run(ctx, server.Config{
		Addr:    cfg.Addr,
		Service: svc,
		Checker: checker,
		Wizards: mgr,
		Records: recs,
		Files:   blobs,
		Logger:  logger,
	})
}
