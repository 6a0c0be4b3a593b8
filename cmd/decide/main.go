// Command decide prints one decision per entry for a batch on disk.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/config"
	"github.com/awmpietro/entry-decision-engine/internal/decision"
	"github.com/awmpietro/entry-decision-engine/internal/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	entries, watchlist, countries string
	home                          string
	trace                         bool
	workers                       int
	logLevel                      string
}

// newFlagSet binds the CLI flags. Defaults come from cfg.
func newFlagSet(cfg config.Runtime, stderr io.Writer) (*pflag.FlagSet, *options) {
	opts := &options{}
	fs := pflag.NewFlagSet("decide", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.entries, "entries", "", "entries file (.json, .yaml)")
	fs.StringVar(&opts.watchlist, "watchlist", "", "watchlist file (.json, .yaml)")
	fs.StringVar(&opts.countries, "countries", "", "countries file (.json, .yaml)")
	fs.StringVar(&opts.home, "home", cfg.HomeCountry, "home country code")
	fs.BoolVar(&opts.trace, "trace", false, "print a per-entry trace instead of bare decisions")
	fs.IntVar(&opts.workers, "workers", cfg.Workers, "entries evaluated concurrently")
	fs.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level (defaults to LOG_LEVEL)")
	return fs, opts
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	fs, opts := newFlagSet(cfg, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	rules, err := decision.DefaultRulebook()
	if err != nil {
		logger.Error("failed to compile rule book", zap.Error(err))
		return 1
	}

	engine := decision.NewEngine(rules,
		decision.WithHomeCountry(opts.home),
		decision.WithWorkers(opts.workers),
	)
	svc := app.NewService(engine, app.WithLogger(logger))

	res, err := svc.DecideFiles(ctx, opts.entries, opts.watchlist, opts.countries, opts.trace)
	if err != nil {
		fmt.Fprintf(stderr, "decide: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	var out any = res.Decisions
	if opts.trace {
		out = res.Trace
	}
	if res.Decisions == nil {
		out = []decision.Decision{}
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "write: %v\n", err)
		return 1
	}
	return 0
}
