package decision

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RuleLatencyObserver receives the wall time of each rule evaluation.
type RuleLatencyObserver interface {
	ObserveRuleLatency(rule string, duration time.Duration)
}

type RuleLatencyLogger struct {
	logger *zap.Logger
}

func NewRuleLatencyLogger(logger *zap.Logger) *RuleLatencyLogger {
	return &RuleLatencyLogger{logger: logger}
}

func (l *RuleLatencyLogger) ObserveRuleLatency(rule string, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug("rule_latency",
		zap.String("rule", rule),
		zap.Float64("duration_ms", float64(duration.Microseconds())/1000.0),
	)
}

type MultiRuleLatencyObserver []RuleLatencyObserver

func (m MultiRuleLatencyObserver) ObserveRuleLatency(rule string, duration time.Duration) {
	for _, o := range m {
		if o != nil {
			o.ObserveRuleLatency(rule, duration)
		}
	}
}

type noopRuleObserver struct{}

func (noopRuleObserver) ObserveRuleLatency(string, time.Duration) {}

// AsyncRuleLatencyObserver hands observations to a single background
// goroutine. Observations that find the buffer full, or arrive after Close,
// are counted in Dropped instead of blocking the engine.
type AsyncRuleLatencyObserver struct {
	next      RuleLatencyObserver
	queue     chan ruleLatency
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

type ruleLatency struct {
	rule string
	took time.Duration
}

func NewAsyncRuleLatencyObserver(next RuleLatencyObserver, buffer int) *AsyncRuleLatencyObserver {
	if next == nil {
		next = noopRuleObserver{}
	}
	o := &AsyncRuleLatencyObserver{
		next:  next,
		queue: make(chan ruleLatency, max(buffer, 1)),
		done:  make(chan struct{}),
	}
	go o.drain()
	return o
}

func (o *AsyncRuleLatencyObserver) drain() {
	defer close(o.done)
	for ev := range o.queue {
		o.next.ObserveRuleLatency(ev.rule, ev.took)
		o.delivered.Add(1)
	}
}

func (o *AsyncRuleLatencyObserver) ObserveRuleLatency(rule string, duration time.Duration) {
	if o == nil {
		return
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.queue <- ruleLatency{rule: rule, took: duration}:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncRuleLatencyObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Delivered counts observations passed on to the wrapped observer.
func (o *AsyncRuleLatencyObserver) Delivered() uint64 {
	if o == nil {
		return 0
	}
	return o.delivered.Load()
}

// Close stops accepting observations and waits until the queue is drained.
func (o *AsyncRuleLatencyObserver) Close() {
	if o == nil {
		return
	}
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.queue)
		o.mu.Unlock()
	})
	<-o.done
}
