package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Lelo88/listings-api-golang/internal/config"
	"github.com/Lelo88/listings-api-golang/internal/db"
	"github.com/Lelo88/listings-api-golang/internal/logger"
)

var (
	loadConfigFn    = config.Load
	newLoggerFn     = logger.New
	runMigrationsFn = db.RunMigrations
	fatal           = func(err error) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
)

// Uso: migrate [up|down|status|version|redo|reset] [args...]
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := loadConfigFn()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLoggerFn(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("running migrations", zap.String("command", command), zap.Strings("args", args))
	if err := runMigrationsFn(ctx, cfg.DatabaseURL, command, args...); err != nil {
		return err
	}
	log.Info("migrations finished", zap.String("command", command))
	return nil
}
