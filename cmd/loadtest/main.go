// Command loadtest posts a fixed decide batch at a steady rate and reports
// latency percentiles.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/transport/decidedto"
)

type sample struct {
	latency   time.Duration
	status    int
	decisions int
	err       error
}

type summary struct {
	requests    int
	ok          int
	failed      int
	errors      int
	short       int
	achievedRPS float64
	avg         time.Duration
	p50         time.Duration
	p90         time.Duration
	p99         time.Duration
}

func main() {
	url := pflag.String("url", "http://localhost:8080/decide", "decide endpoint URL")
	rps := pflag.Int("rps", 50, "target requests per second")
	duration := pflag.Duration("duration", 60*time.Second, "test duration")
	workers := pflag.Int("workers", 50, "maximum requests in flight")
	timeout := pflag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	batch := pflag.Int("batch", 20, "entries per request")
	maxP90 := pflag.Duration("max-p90", 30*time.Millisecond, "p90 latency budget")
	pflag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 || *batch <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration, workers and batch must be > 0")
		os.Exit(2)
	}

	body, err := json.Marshal(samplePayload(*batch))
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	samples := drive(*rps, *duration, *workers, func() sample {
		return post(client, *url, body)
	})
	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}

	s := summarize(samples, *batch, *duration)
	fmt.Printf("requests=%d ok=%d non_2xx=%d errors=%d short_batches=%d\n", s.requests, s.ok, s.failed, s.errors, s.short)
	fmt.Printf("rps target=%d achieved=%.2f\n", *rps, s.achievedRPS)
	fmt.Printf("latency_ms avg=%.3f p50=%.3f p90=%.3f p99=%.3f\n", ms(s.avg), ms(s.p50), ms(s.p90), ms(s.p99))

	if !s.pass(*rps, *maxP90) {
		fmt.Println("FAIL")
		os.Exit(1)
	}
	fmt.Println("PASS")
}

// drive calls fire rps times a second until d elapses, with at most workers
// calls in flight.
func drive(rps int, d time.Duration, workers int, fire func() sample) []sample {
	var (
		mu  sync.Mutex
		out []sample
		g   errgroup.Group
	)
	g.SetLimit(workers)

	ticker := time.NewTicker(time.Second / time.Duration(rps))
	defer ticker.Stop()
	deadline := time.Now().Add(d)

	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		g.Go(func() error {
			s := fire()
			mu.Lock()
			out = append(out, s)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func post(client *http.Client, url string, body []byte) sample {
	start := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return sample{latency: time.Since(start), err: err}
	}
	defer resp.Body.Close()

	var out decidedto.DecideResponse
	err = json.NewDecoder(resp.Body).Decode(&out)
	s := sample{latency: time.Since(start), status: resp.StatusCode, decisions: len(out.Decisions)}
	if err != nil && resp.StatusCode < 300 {
		s.err = err
	}
	return s
}

func summarize(samples []sample, batch int, d time.Duration) summary {
	s := summary{requests: len(samples)}
	latencies := make([]time.Duration, 0, len(samples))
	var total time.Duration

	for _, x := range samples {
		latencies = append(latencies, x.latency)
		total += x.latency
		switch {
		case x.err != nil:
			s.errors++
		case x.status < 200 || x.status >= 300:
			s.failed++
		default:
			s.ok++
			if x.decisions != batch {
				s.short++
			}
		}
	}

	if len(latencies) == 0 {
		return s
	}
	slices.Sort(latencies)
	s.avg = total / time.Duration(len(latencies))
	s.p50 = percentile(latencies, 50)
	s.p90 = percentile(latencies, 90)
	s.p99 = percentile(latencies, 99)
	s.achievedRPS = float64(len(latencies)) / d.Seconds()
	return s
}

// pass allows 2% slack on throughput.
func (s summary) pass(targetRPS int, maxP90 time.Duration) bool {
	return s.achievedRPS >= float64(targetRPS)*0.98 &&
		s.p90 < maxP90 &&
		s.errors == 0 && s.failed == 0 && s.short == 0
}

// samplePayload cycles through one entry per decision outcome.
func samplePayload(n int) decidedto.DecideRequest {
	base := decision.Entry{
		Passport:    "JMZ0S-89IA9-OTCLY-MQILJ-P7CTY",
		FirstName:   "Jane",
		LastName:    "Doe",
		BirthDate:   "1952-12-25",
		EntryReason: "returning",
		Home:        decision.Location{City: "Bala", Region: "ON", Country: "KAN"},
		From:        decision.Location{City: "Bala", Region: "ON", Country: "KAN"},
	}

	entries := make([]decision.Entry, 0, n)
	for i := 0; i < n; i++ {
		e := base
		switch i % 4 {
		case 1:
			e.From.Country = "GOR"
		case 2:
			e.LastName = "Tunnelson"
		case 3:
			e.Passport = "bad"
		}
		entries = append(entries, e)
	}

	return decidedto.DecideRequest{
		Entries:   entries,
		Watchlist: []decision.WatchlistRecord{{LastName: "Tunnelson"}},
		Countries: map[string]decision.Country{
			"KAN":  {Code: "KAN"},
			"GOR":  {Code: "GOR", MedicalAdvisory: "cholera"},
			"LUUG": {Code: "LUUG", VisitorVisaRequired: true},
		},
	}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[(len(sorted)-1)*p/100]
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
