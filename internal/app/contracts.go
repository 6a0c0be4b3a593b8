package app

import (
	"context"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

// DecideService is what the transports need from the service.
type DecideService interface {
	DecideBatch(ctx context.Context, req BatchRequest, debug bool) (*BatchResult, error)
}

// BatchRequest carries one batch exactly as a client sent it. Text fields are
// case-folded before any decision is made.
type BatchRequest struct {
	Entries   []decision.Entry
	Watchlist []decision.WatchlistRecord
	Countries map[string]decision.Country
}

type BatchResult struct {
	BatchID   string
	Decisions []decision.Decision
	Trace     []decision.EntryTrace
}
