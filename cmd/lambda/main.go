package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/config"
	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/decision/cache"
	"github.com/awmpietro/entry-decision-engine/internal/logging"
	"github.com/awmpietro/entry-decision-engine/internal/transport/lambdatransport"
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

	latencyObserver := decision.NewAsyncRuleLatencyObserver(decision.NewRuleLatencyLogger(logger), cfg.ObsBuffer)
	defer latencyObserver.Close()

	engine := decision.NewEngine(rules,
		decision.WithHomeCountry(cfg.HomeCountry),
		decision.WithWorkers(cfg.Workers),
		decision.WithIndexCache(cache.NewInMemory(cfg.IndexCacheMaxItems)),
		decision.WithRuleLatencyObserver(latencyObserver),
	)

	svc := app.NewService(engine, app.WithLogger(logger))
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Decide)
}
