package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/visit-log-api/internal/directory"
	"github.com/noah-isme/visit-log-api/internal/handler"
	"github.com/noah-isme/visit-log-api/internal/intake"
	"github.com/noah-isme/visit-log-api/internal/ledger"
	"github.com/noah-isme/visit-log-api/internal/mailer"
	"github.com/noah-isme/visit-log-api/internal/notifier"
	"github.com/noah-isme/visit-log-api/internal/reqid"
	"github.com/noah-isme/visit-log-api/internal/service"
	"github.com/noah-isme/visit-log-api/internal/store"
	"github.com/noah-isme/visit-log-api/internal/syncengine"
	"github.com/noah-isme/visit-log-api/internal/visitlog"
	"github.com/noah-isme/visit-log-api/pkg/config"
	"github.com/noah-isme/visit-log-api/pkg/jobs"
	"github.com/noah-isme/visit-log-api/pkg/logger"
	"github.com/noah-isme/visit-log-api/pkg/signing"
)

// @title Visit Log API
// @version 1.0.0
// @description Client visit approval workflow service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("store init failed", "driver", cfg.Store.Driver, "error", err)
	}

	vlog := visitlog.New(st, logr)
	if err := vlog.Ensure(ctx); err != nil {
		logr.Sugar().Fatalw("log table init failed", "error", err)
	}

	var dirOpts []directory.Option
	if cfg.Roster.CacheEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dirOpts = append(dirOpts, directory.WithCache(client, cfg.Roster.CacheTTL))
	}
	dir := directory.New(st, logr, dirOpts...)

	metrics := service.NewMetricsService()
	signer := signing.NewTokenSigner(cfg.Approval.LinkSecret, cfg.Approval.LinkTTL)
	sender := mailer.NewSMTPSender(cfg.SMTP, logr)
	notify := notifier.New(sender, vlog, signer, cfg.Workflow, cfg.Approval.BaseURL, logr, notifier.WithMetrics(metrics))
	ledgers := ledger.NewManager(st, logr)
	engine := syncengine.New(st, vlog, ledgers, notify, metrics, logr)
	intakeSvc := intake.NewService(dir, reqid.New(vlog), vlog, ledgers, notify, logr)

	router := handler.NewRouter(cfg, logr, handler.Handlers{
		Submission: handler.NewSubmissionHandler(intakeSvc, metrics),
		Edit:       handler.NewEditHandler(engine),
		Approval:   handler.NewApprovalHandler(engine, signer),
		Batch:      handler.NewBatchHandler(notify),
		Ledger:     handler.NewLedgerHandler(ledgers),
		Health:     handler.NewHealthHandler(st),
		Metrics:    metrics,
	})

	scheduler := jobs.NewScheduler(logr)
	if cfg.Scheduler.Enabled {
		scheduler.Register("pending_digest", cfg.Scheduler.PendingDigestEvery, func(jobCtx context.Context) error {
			start := time.Now()
			_, err := notify.SendPendingDigest(jobCtx)
			metrics.ObserveJob("pending_digest", time.Since(start))
			return err
		})
		scheduler.Register("batch_confirmations", cfg.Scheduler.ConfirmationRunEvery, func(jobCtx context.Context) error {
			start := time.Now()
			_, err := notify.SendBatchConfirmations(jobCtx)
			metrics.ObserveJob("batch_confirmations", time.Since(start))
			return err
		})
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StorePostgres:
		return store.NewPostgresStore(cfg.Database)
	case config.StoreGSheets:
		return store.NewGSheetsStore(ctx, cfg.GSheets)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
