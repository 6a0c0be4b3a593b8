package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/loader"
)

type Engine interface {
	Decide(entries []decision.Entry, watchlist []decision.WatchlistRecord, countries map[string]decision.Country) []decision.Decision
}

type TraceEngine interface {
	DecideWithTrace(entries []decision.Entry, watchlist []decision.WatchlistRecord, countries map[string]decision.Country) ([]decision.Decision, []decision.EntryTrace)
}

// Recorder receives batch level measurements.
type Recorder interface {
	IncrementDecision(d decision.Decision)
	ObserveBatchLatency(d time.Duration)
}

type Service struct {
	engine   Engine
	recorder Recorder
	logger   *zap.Logger
	newID    func() string
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the batch id source.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(engine Engine, opts ...ServiceOption) *Service {
	s := &Service{
		engine: engine,
		logger: zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecideBatch normalizes the request and returns one decision per entry. The
// request is not mutated.
func (s *Service) DecideBatch(ctx context.Context, req BatchRequest, debug bool) (*BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.decide(
		decision.NormalizeEntries(req.Entries),
		decision.NormalizeWatchlist(req.Watchlist),
		decision.NormalizeCountries(req.Countries),
		debug,
	), nil
}

// DecideFiles loads the three resources from disk and decides the batch.
func (s *Service) DecideFiles(ctx context.Context, entriesPath, watchlistPath, countriesPath string, debug bool) (*BatchResult, error) {
	b, err := loader.Load(ctx, entriesPath, watchlistPath, countriesPath)
	if err != nil {
		s.logger.Error("batch load failed", zap.Error(err))
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return s.decide(b.Entries, b.Watchlist, b.Countries, debug), nil
}

func (s *Service) decide(entries []decision.Entry, watchlist []decision.WatchlistRecord, countries map[string]decision.Country, debug bool) *BatchResult {
	start := time.Now()
	res := &BatchResult{BatchID: s.newID()}

	traceEngine, ok := s.engine.(TraceEngine)
	if debug && ok {
		res.Decisions, res.Trace = traceEngine.DecideWithTrace(entries, watchlist, countries)
	} else {
		res.Decisions = s.engine.Decide(entries, watchlist, countries)
	}

	elapsed := time.Since(start)
	counts := make(map[string]int, 4)
	for _, d := range res.Decisions {
		counts[string(d)]++
		if s.recorder != nil {
			s.recorder.IncrementDecision(d)
		}
	}
	if s.recorder != nil {
		s.recorder.ObserveBatchLatency(elapsed)
	}

	s.logger.Info("batch decided",
		zap.String("batch_id", res.BatchID),
		zap.Int("entries", len(entries)),
		zap.Any("decisions", counts),
		zap.Bool("debug", debug),
		zap.Duration("duration", elapsed),
	)

	return res
}
