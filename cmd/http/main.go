package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/config"
	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/decision/cache"
	"github.com/awmpietro/entry-decision-engine/internal/logging"
	"github.com/awmpietro/entry-decision-engine/internal/metrics"
	"github.com/awmpietro/entry-decision-engine/internal/transport/httptransport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	rules, err := decision.DefaultRulebook()
	if err != nil {
		logger.Fatal("failed to compile rule book", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	latencyObserver := decision.NewAsyncRuleLatencyObserver(
		decision.MultiRuleLatencyObserver{m, decision.NewRuleLatencyLogger(logger)},
		cfg.ObsBuffer,
	)
	defer latencyObserver.Close()

	engine := decision.NewEngine(rules,
		decision.WithHomeCountry(cfg.HomeCountry),
		decision.WithWorkers(cfg.Workers),
		decision.WithIndexCache(cache.NewInMemory(cfg.IndexCacheMaxItems)),
		decision.WithRuleLatencyObserver(latencyObserver),
	)

	svc := app.NewService(engine, app.WithRecorder(m), app.WithLogger(logger))
	router := httptransport.NewRouter(httptransport.NewHandler(svc), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("home_country", cfg.HomeCountry))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("stopped", zap.Uint64("dropped_rule_observations", latencyObserver.Dropped()))
}
