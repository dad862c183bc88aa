package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"libris/internal/config"
	"libris/internal/http/handlers"
	applog "libris/internal/log"
	"libris/internal/outbox"
	"libris/internal/repos"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		applog.L().Warn("log.file.open.fail", zap.String("file", cfg.LogFile), zap.Error(err))
	}
	defer applog.Sync()
	applog.Info(nil, "config.loaded", cfg.Fields())

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, cfg.BcryptCost)
	if err != nil {
		applog.L().Fatal("db.open.fail", zap.Error(err))
	}
	defer db.Close()

	deps := handlers.NewDeps(db, cfg)
	app := handlers.NewApp(cfg, deps)

	// ---------- Outbox relay ----------
	var pub outbox.Publisher = outbox.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = outbox.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := outbox.NewWorker(deps.Outbox, pub, cfg.OutboxInterval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		applog.Info(nil, "server.shutdown", nil)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.Error(nil, "server.shutdown.fail", err, nil)
		}
	}()

	applog.Info(nil, "server.listen", map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen.fail", err, nil)
	}
	stop()
	<-done
}
