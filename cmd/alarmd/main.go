package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/config"
	"github.com/hamed0406/alarmcore/internal/delivery"
	"github.com/hamed0406/alarmcore/internal/httpapi"
	"github.com/hamed0406/alarmcore/internal/httpapi/middleware"
	"github.com/hamed0406/alarmcore/internal/logging"
	"github.com/hamed0406/alarmcore/internal/notify"
	"github.com/hamed0406/alarmcore/internal/platform/beep"
	"github.com/hamed0406/alarmcore/internal/repo"
	"github.com/hamed0406/alarmcore/internal/repo/memory"
	"github.com/hamed0406/alarmcore/internal/repo/sqlite"
	"github.com/hamed0406/alarmcore/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var store repo.AlarmStore
	if cfg.SQLitePath != "" {
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		store = db
		logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
	} else {
		store = memory.New()
		logger.Warn("store_memory", zap.String("hint", "set SQLITE_PATH to survive restarts"))
	}

	ctrl := delivery.NewController(logger, delivery.NewLocalLeases(), nil)
	ctrl.Store = store
	ctrl.Player = beep.New()
	ctrl.MaxRing = cfg.MaxRing
	prompters := notify.Multi{notify.NewLog(logger)}
	if wh := notify.NewWebhook(cfg.WebhookURL); wh != nil {
		prompters = append(prompters, wh)
	}
	ctrl.Notify = prompters
	defer ctrl.Close()

	wake := scheduler.NewTimerWake(func(p scheduler.Payload) {
		ctrl.TriggerFired(context.Background(), p)
	})
	sched := scheduler.New(logger, wake)

	planner := delivery.NewPlanner(sched)
	planner.Offset = cfg.Snooze
	ctrl.Planner = planner

	// Re-arm enabled alarms from durable state. A partial failure is
	// logged per record and must not keep the daemon down.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := scheduler.NewRehydrator(logger, store, sched).Rehydrate(ctx); err != nil {
		logger.Warn("rehydrate_partial", zap.Error(err))
	}
	cancel()

	api := httpapi.NewServer(logger, store, sched, ctrl, middleware.Keys{
		Public: cfg.PublicKeys,
		Admin:  cfg.AdminKeys,
	})
	api.RatePerMin = cfg.RatePerMin

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("api_serve_failed", zap.Error(err))
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
}
