package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"passclean/internal/config"
	"passclean/internal/datasource"
	"passclean/internal/datasource/file"
	"passclean/internal/datasource/httpds"
	"passclean/internal/logging"
	"passclean/internal/metrics"
	"passclean/internal/metrics/datadog"
	"passclean/internal/metrics/prompush"
	"passclean/internal/parser"
	csvparser "passclean/internal/parser/csv"
	"passclean/internal/pipeline"
	"passclean/internal/storage"
	"passclean/internal/transformer"
	"passclean/pkg/records"
)

type cliFlags struct {
	configPath       string
	input            string
	output           string
	metricsBackend   string
	pushgatewayURL   string
	logLevel         string
	logFormat        string
	validate         bool
	verifyIdempotent bool
	verbose          bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("passclean", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "pipeline config JSON path (defaults apply when empty)")
	fs.StringVar(&f.input, "input", "", "input CSV path or http(s) URL (overrides source)")
	fs.StringVar(&f.output, "output", "", "cleaned CSV path (overrides the csv sink)")
	fs.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: none, prometheus, datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&f.verifyIdempotent, "verify-idempotent", false, "re-clean the output and fail unless nothing changes")
	fs.BoolVar(&f.verbose, "v", false, "verbose logs (same as -log-level debug)")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

// loadPipeline reads the config file (or defaults) and applies flag and
// environment overrides. Precedence is flag, then env, then file.
func loadPipeline(f cliFlags) (config.Pipeline, error) {
	p := config.Default()
	if f.configPath != "" {
		var err error
		if p, err = config.Load(f.configPath); err != nil {
			return config.Pipeline{}, err
		}
	}

	if f.input != "" {
		if strings.HasPrefix(f.input, "http://") || strings.HasPrefix(f.input, "https://") {
			p.Source = config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: f.input}}
		} else {
			p.Source = config.Source{Kind: "file", File: config.SourceFile{Path: f.input}}
		}
	}
	if f.output != "" {
		replaced := false
		for i := range p.Sinks {
			if p.Sinks[i].Kind == "csv" {
				p.Sinks[i].DSN = f.output
				replaced = true
				break
			}
		}
		if !replaced {
			p.Sinks = append(p.Sinks, config.Sink{Kind: "csv", DSN: f.output})
		}
	}

	if b := firstNonEmpty(f.metricsBackend, os.Getenv("METRICS_BACKEND")); b != "" {
		p.Metrics.Backend = b
	}
	if u := firstNonEmpty(f.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL")); u != "" {
		p.Metrics.PushgatewayURL = u
	}
	if a := os.Getenv("DATADOG_ADDR"); a != "" && p.Metrics.DatadogAddr == "" {
		p.Metrics.DatadogAddr = a
	}
	if f.logLevel != "" {
		p.Logging.Level = f.logLevel
	}
	if f.verbose {
		p.Logging.Level = "debug"
	}
	if f.logFormat != "" {
		p.Logging.Format = f.logFormat
	}
	if f.verifyIdempotent {
		p.Runtime.VerifyIdempotent = true
	}
	return p, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	p, err := loadPipeline(f)
	if err != nil {
		return err
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errors.New("configuration is invalid")
	}
	if f.validate {
		fmt.Fprintln(stdout, "configuration is valid")
		return nil
	}

	logger := logging.New(stderr, p.Logging.Level, p.Logging.Format)

	flush, err := setupMetrics(p, logger)
	if err != nil {
		return err
	}
	defer flush()

	start := time.Now()
	raw, err := readInput(ctx, p, logger)
	if err != nil {
		return err
	}

	runID := newRunID()
	runLog := logging.ForRun(logger, p.Job, runID)
	cleaned, rep, err := pipeline.Clean(raw,
		pipeline.WithRunID(runID),
		pipeline.WithObserver(transformer.Observers{
			pipeline.LogObserver{Logger: runLog},
			pipeline.MetricsObserver{Job: p.Job},
		}),
	)
	if err != nil {
		runLog.Error("cleaning failed", "kind", errorKind(err), "err", err)
		return fmt.Errorf("clean: %w", err)
	}
	metrics.RecordRows(p.Job, "duplicates", int64(rep.DuplicatesRemoved))
	metrics.RecordRows(p.Job, "cleaned", int64(rep.FinalRows))

	if p.Runtime.VerifyIdempotent {
		if err := verifyIdempotent(cleaned); err != nil {
			return err
		}
		runLog.Info("idempotence verified")
	}

	if err := writeSinks(ctx, p, cleaned, runLog); err != nil {
		return err
	}

	printSummary(stdout, rep, p.Sinks)
	runLog.Info("run complete",
		"original_rows", rep.OriginalRows,
		"final_rows", rep.FinalRows,
		"duplicates_removed", rep.DuplicatesRemoved,
		"residual_nulls", rep.ResidualNulls,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return nil
}

// setupMetrics installs the configured backend and returns the flush hook.
func setupMetrics(p config.Pipeline, logger *slog.Logger) (func(), error) {
	var b metrics.Backend
	switch p.Metrics.Backend {
	case "prometheus":
		pb, err := prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		b = pb
	case "datadog":
		db, err := datadog.NewBackend(datadog.Config{Addr: p.Metrics.DatadogAddr, Namespace: p.Metrics.Namespace, Tags: p.Metrics.Tags})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		logger.Debug("metrics disabled")
		return func() {}, nil
	}
	metrics.SetBackend(b)
	logger.Info("metrics enabled", "backend", p.Metrics.Backend)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics flush failed", "err", err)
		}
		metrics.Reset()
	}, nil
}

func openSource(p config.Pipeline, logger *slog.Logger) (datasource.Source, string) {
	if p.Source.Kind == "http" {
		h := p.Source.HTTP
		cfg := httpds.Config{
			Timeout:            parseDuration(h.Timeout),
			MaxRetries:         h.MaxRetries,
			InitialBackoff:     parseDuration(h.InitialBackoff),
			MaxBackoff:         parseDuration(h.MaxBackoff),
			InsecureSkipVerify: h.InsecureSkipVerify,
		}
		if len(h.Headers) > 0 {
			cfg.Headers = http.Header{}
			for k, v := range h.Headers {
				cfg.Headers.Set(k, v)
			}
		}
		return httpds.NewSource(h.URL, cfg, logger), h.URL
	}
	return file.NewLocal(p.Source.File.Path, logger), p.Source.File.Path
}

func readInput(ctx context.Context, p config.Pipeline, logger *slog.Logger) (records.Table, error) {
	src, where := openSource(p, logger)
	rc, err := src.Open(ctx)
	if err != nil {
		return records.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer rc.Close()

	var prs parser.Parser = csvparser.NewParser(parserOptions(p.Parser.Options, logger))
	t, skipped, err := prs.Parse(rc)
	if err != nil {
		return records.Table{}, fmt.Errorf("parse %s: %w", where, err)
	}
	rows, cols := t.Shape()
	logger.Info("input loaded", "source", where, "rows", rows, "cols", cols, "skipped", skipped)
	metrics.RecordRows(p.Job, "read", int64(rows))
	metrics.RecordRows(p.Job, "skipped", int64(skipped))
	return t, nil
}

func parserOptions(o config.Options, logger *slog.Logger) csvparser.Options {
	opt := csvparser.Options{
		NoHeader:       o.Bool("no_header", false),
		Comma:          o.Rune("comma", ','),
		TrimSpace:      o.Bool("trim_space", false),
		LazyQuotes:     o.Bool("lazy_quotes", false),
		ExpectedFields: o.Int("expected_fields", 0),
		SkipLogLimit:   o.Int("skip_log_limit", 0),
		Logger:         logger,
	}
	if m := o.StringMap("header_map"); len(m) > 0 {
		opt.HeaderMap = m
	}
	for _, r := range o.MapSlice("replacements") {
		if r["from"] != "" {
			opt.Replacements = append(opt.Replacements, csvparser.Replacement{From: r["from"], To: r["to"]})
		}
	}
	if o.Has("null_tokens") {
		opt.NullTokens = o.StringSlice("null_tokens")
		if opt.NullTokens == nil {
			opt.NullTokens = []string{}
		}
	}
	return opt
}

// verifyIdempotent re-expresses cleaned as raw input and requires a second
// Clean to reproduce it exactly with no duplicates removed.
func verifyIdempotent(cleaned records.Table) error {
	again, rep, err := pipeline.Clean(pipeline.Reexpress(cleaned))
	if err != nil {
		return fmt.Errorf("idempotence check: %w", err)
	}
	if rep.DuplicatesRemoved != 0 {
		return fmt.Errorf("idempotence check: second pass removed %d duplicates", rep.DuplicatesRemoved)
	}
	if !reflect.DeepEqual(again, cleaned) {
		return errors.New("idempotence check: second pass changed the table")
	}
	return nil
}

// writeSinks writes cleaned to every sink concurrently. The first failure
// cancels the rest; sinks that support it discard partial output.
func writeSinks(ctx context.Context, p config.Pipeline, cleaned records.Table, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range p.Sinks {
		g.Go(func() error {
			if err := writeSink(gctx, p, s, cleaned, logger); err != nil {
				return fmt.Errorf("sinks[%d] %s: %w", i, s.Kind, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeSink(ctx context.Context, p config.Pipeline, s config.Sink, cleaned records.Table, logger *slog.Logger) (err error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:    s.Kind,
		DSN:     s.DSN,
		Table:   s.Table,
		Columns: pipeline.OutputColumns,
		Logger:  logger.With("sink", s.Kind),
	})
	if err != nil {
		return err
	}
	defer func() {
		if d, ok := repo.(storage.Discarder); ok && err != nil {
			d.Discard()
		}
		repo.Close()
	}()

	if s.AutoCreateTable && storage.HasDDL(s.Kind) {
		if err := storage.EnsureTable(ctx, s.Kind, repo, pipeline.OutputTableDef(s.Table)); err != nil {
			return err
		}
	}
	n, err := storage.WriteTable(ctx, repo, cleaned, storage.WriteOptions{
		BatchSize: p.BatchSizeFor(s),
		Job:       p.Job,
		Sink:      s.Kind,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if c, ok := repo.(storage.Committer); ok {
		if err := c.Commit(); err != nil {
			return err
		}
	}
	logger.Info("sink written", "kind", s.Kind, "target", sinkTarget(s), "rows", n)
	return nil
}

func printSummary(w io.Writer, rep pipeline.Report, sinks []config.Sink) {
	fmt.Fprintf(w, "Original shape: (%s, %d)\n", humanize.Comma(int64(rep.OriginalRows)), rep.OriginalCols)
	fmt.Fprintf(w, "Final shape: (%s, %d)\n", humanize.Comma(int64(rep.FinalRows)), rep.FinalCols)
	fmt.Fprintf(w, "Duplicates removed: %s\n", humanize.Comma(int64(rep.DuplicatesRemoved)))
	fmt.Fprintf(w, "Residual nulls: %d\n", rep.ResidualNulls)
	for _, s := range sinks {
		fmt.Fprintf(w, "Saved: %s\n", sinkTarget(s))
	}
}

// sinkTarget names a sink for humans without echoing credentials.
func sinkTarget(s config.Sink) string {
	if s.Kind == "csv" {
		return s.DSN
	}
	return s.Kind + ":" + s.Table
}

func errorKind(err error) string {
	var (
		se *transformer.SchemaError
		ce *transformer.ColumnError
		re *transformer.RangeError
		ve *transformer.ValueError
	)
	switch {
	case errors.As(err, &se):
		return "schema"
	case errors.As(err, &ce):
		return "column"
	case errors.As(err, &re):
		return "range"
	case errors.As(err, &ve):
		return "value"
	default:
		return "other"
	}
}

func newRunID() string { return uuid.NewString() }

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
