package decidedto

import (
	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

type DecideRequest struct {
	Entries   []decision.Entry            `json:"entries"`
	Watchlist []decision.WatchlistRecord  `json:"watchlist"`
	Countries map[string]decision.Country `json:"countries"`
	Debug     bool                        `json:"debug,omitempty"`
}

func (r DecideRequest) Batch() app.BatchRequest {
	return app.BatchRequest{
		Entries:   r.Entries,
		Watchlist: r.Watchlist,
		Countries: r.Countries,
	}
}

type DecideResponse struct {
	BatchID   string                `json:"batch_id"`
	Decisions []decision.Decision   `json:"decisions"`
	Trace     []decision.EntryTrace `json:"trace,omitempty"`
}

func NewDecideResponse(res *app.BatchResult) DecideResponse {
	decisions := res.Decisions
	if decisions == nil {
		decisions = []decision.Decision{}
	}
	return DecideResponse{
		BatchID:   res.BatchID,
		Decisions: decisions,
		Trace:     res.Trace,
	}
}

func ErrorBody(msg string, err error) map[string]any {
	body := map[string]any{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	return body
}
