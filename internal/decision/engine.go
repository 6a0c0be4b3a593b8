package decision

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultHomeCountry = "kan"

// IndexCache shares built reference indexes between batches that carry the
// same reference data.
type IndexCache interface {
	GetOrCompute(key string, fn func() (*ReferenceIndex, error)) (*ReferenceIndex, error)
}

type Engine struct {
	rules           *Rulebook
	homeCountry     string
	now             func() time.Time
	workers         int
	latencyObserver RuleLatencyObserver
	indexes         IndexCache
}

type EngineOption func(*Engine)

// WithHomeCountry sets the code of the nation the engine guards. Travellers
// arriving from it are accepted unless a stronger rule fires.
func WithHomeCountry(code string) EngineOption {
	return func(e *Engine) {
		if code != "" {
			e.homeCountry = Fold(code)
		}
	}
}

// WithClock replaces the source of the evaluation date used for visa checks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithWorkers evaluates up to n entries concurrently. Output order is
// unaffected.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithRuleLatencyObserver(observer RuleLatencyObserver) EngineOption {
	return func(e *Engine) {
		e.latencyObserver = observer
	}
}

func WithIndexCache(c IndexCache) EngineOption {
	return func(e *Engine) {
		e.indexes = c
	}
}

func NewEngine(rules *Rulebook, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:       rules,
		homeCountry: DefaultHomeCountry,
		now:         time.Now,
		workers:     1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide returns one decision per entry, in input order. Defects inside an
// entry never fail the batch; they become a Reject for that entry.
func (e *Engine) Decide(entries []Entry, watchlist []WatchlistRecord, countries map[string]Country) []Decision {
	out, _ := e.decide(entries, watchlist, countries, false)
	return out
}

// DecideWithTrace is Decide plus a per-entry account of every rule evaluated.
func (e *Engine) DecideWithTrace(entries []Entry, watchlist []WatchlistRecord, countries map[string]Country) ([]Decision, []EntryTrace) {
	return e.decide(entries, watchlist, countries, true)
}

func (e *Engine) decide(entries []Entry, watchlist []WatchlistRecord, countries map[string]Country, withTrace bool) ([]Decision, []EntryTrace) {
	idx := e.index(watchlist, countries)
	today := dateOnly(e.now())

	decisions := make([]Decision, len(entries))
	var traces []EntryTrace
	if withTrace {
		traces = make([]EntryTrace, len(entries))
	}

	evaluate := func(i int) {
		var tr *EntryTrace
		if withTrace {
			tr = &traces[i]
			tr.Index = i
		}
		decisions[i] = e.evaluate(entries[i], idx, today, tr)
	}

	if e.workers <= 1 || len(entries) < 2 {
		for i := range entries {
			evaluate(i)
		}
		return decisions, traces
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range entries {
		g.Go(func() error {
			evaluate(i)
			return nil
		})
	}
	_ = g.Wait()

	return decisions, traces
}

// evaluate runs every rule against one entry and resolves the candidates.
// Each call owns its candidate set.
func (e *Engine) evaluate(entry Entry, idx *ReferenceIndex, today time.Time, tr *EntryTrace) Decision {
	verr := ValidateEntry(entry)
	facts := gatherFacts(entry, idx, e.homeCountry, today, verr)

	candidates := make([]Decision, 0, len(e.rules.Rules))
	timed := tr != nil || e.latencyObserver != nil

	for _, r := range e.rules.Rules {
		var start time.Time
		if timed {
			start = time.Now()
		}

		outcome := r.Outcome
		matched, err := r.Cond.Eval(facts)
		if err != nil {
			// a rule that cannot be evaluated must not let the entry through
			matched = true
			outcome = Reject
		}

		var dur time.Duration
		if timed {
			dur = time.Since(start)
			e.observeRuleLatency(r.Name, dur)
		}

		if matched {
			candidates = appendUnique(candidates, outcome)
		}

		if tr != nil {
			rt := RuleTrace{Rule: r.Name, Outcome: outcome, Matched: matched, DurationMicros: dur.Microseconds()}
			if err != nil {
				rt.Error = err.Error()
			}
			tr.Rules = append(tr.Rules, rt)
		}
	}

	d := Resolve(candidates)

	if tr != nil {
		tr.Decision = d
		tr.Candidates = candidates
		tr.Facts = facts
		var ve *ValidationError
		if errors.As(verr, &ve) {
			tr.Issues = ve.Issues
		}
	}

	return d
}

func (e *Engine) index(watchlist []WatchlistRecord, countries map[string]Country) *ReferenceIndex {
	build := func() (*ReferenceIndex, error) {
		return NewReferenceIndex(watchlist, countries), nil
	}
	if e.indexes == nil {
		idx, _ := build()
		return idx
	}

	key, err := IndexKey(watchlist, countries)
	if err != nil {
		idx, _ := build()
		return idx
	}
	idx, err := e.indexes.GetOrCompute(key, build)
	if err != nil || idx == nil {
		idx, _ = build()
	}
	return idx
}

func (e *Engine) observeRuleLatency(rule string, d time.Duration) {
	if e.latencyObserver == nil {
		return
	}
	e.latencyObserver.ObserveRuleLatency(rule, d)
}

// IndexKey identifies reference data by content. Map keys marshal in sorted
// order, so equal data always yields the same key.
func IndexKey(watchlist []WatchlistRecord, countries map[string]Country) (string, error) {
	b, err := json.Marshal(struct {
		Watchlist []WatchlistRecord  `json:"watchlist"`
		Countries map[string]Country `json:"countries"`
	}{watchlist, countries})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func appendUnique(ds []Decision, d Decision) []Decision {
	for _, x := range ds {
		if x == d {
			return ds
		}
	}
	return append(ds, d)
}
