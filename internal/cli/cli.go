package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/venue-events/internal/config"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/filter"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/pipeline"
	"github.com/pfrederiksen/venue-events/internal/scraper"
	"github.com/pfrederiksen/venue-events/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// ExitCodeError asks Execute to exit with Code. A nil Err means there is nothing to print.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// options holds the flag values of one command invocation
type options struct {
	configPath    string
	referenceDate string
	format        string
	sortOrder     string
	venues        []string
	cities        []string
	sources       []string
	dateRange     string
	weekends      bool
	datedOnly     bool
	newOnly       bool
	dataDir       string
	redisAddr     string
	feed          string
	metricsFile   string
	verbose       bool
}

// env is what every command needs once flags and configuration are resolved
type env struct {
	opts    *options
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	ref     event.Date
	now     time.Time
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "venue-events",
		Short: "Clean up scraped venue event listings",
		Long: `A CLI tool that turns noisy scraped venue listings into clean events.
Navigation links, boilerplate and generic programs are dropped, dates are resolved,
and duplicates are collapsed. Runs can be tracked to report only new events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.referenceDate, "reference-date", "", "Date used to infer missing years, YYYY-MM-DD (default today)")
	flags.StringVar(&opts.format, "format", string(FormatText), "Output format: text, json or ics")
	flags.StringVar(&opts.sortOrder, "sort", "", "Sort order: date, venue or title (default input order)")
	flags.StringSliceVar(&opts.venues, "venue", nil, "Only events at venues containing this text (repeatable)")
	flags.StringSliceVar(&opts.cities, "city", nil, "Only events in cities containing this text (repeatable)")
	flags.StringSliceVar(&opts.sources, "source", nil, "Only events from this source (repeatable)")
	flags.StringVar(&opts.dateRange, "range", "", "Only events in a date range, e.g. 'Dec 1-15' or 'March'")
	flags.BoolVar(&opts.weekends, "weekends", false, "Only events on Saturday or Sunday")
	flags.BoolVar(&opts.datedOnly, "dated-only", false, "Drop events whose date is unknown")
	flags.BoolVar(&opts.newOnly, "new-only", false, "Report only events not seen in the previous run, then save this run")
	flags.StringVar(&opts.dataDir, "data-dir", storage.DefaultDataDir, "Data directory for snapshots")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Keep snapshots in Redis at this address instead of the data directory")
	flags.StringVar(&opts.feed, "feed", storage.DefaultFeed, "Snapshot name for --new-only")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newProcessCmd(opts), newScrapeCmd(opts), newClassifyCmd(opts))

	return cmd
}

func newProcessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process [file]",
		Short: "Process a JSON array of raw candidates from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening candidates: %w", err)
				}
				defer f.Close()
				r = f
			}

			candidates, err := ReadCandidates(r)
			if err != nil {
				return err
			}

			return e.run(cmd, candidates)
		},
	}
}

func newScrapeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the configured sources and process their candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if len(e.cfg.Sources) == 0 {
				return fmt.Errorf("no sources configured (see --config)")
			}

			sc := scraper.New(scraper.WithLogger(e.log), scraper.WithMetrics(e.metrics))
			results := sc.FetchAll(cmd.Context(), e.cfg.Sources)

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed == len(results) {
				return fmt.Errorf("all %d sources failed", failed)
			}

			return e.run(cmd, scraper.Candidates(results))
		},
	}
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <title>",
		Short: "Show whether a title would be accepted, and why",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			classifier, err := e.cfg.Classifier()
			if err != nil {
				return err
			}

			title := strings.Join(args, " ")
			result := classifier.Classify(event.Candidate{Title: title})

			w := cmd.OutOrStdout()
			if OutputFormat(strings.ToLower(opts.format)) == FormatJSON {
				return writeJSON(w, result)
			}
			if result.Accept {
				fmt.Fprintf(w, "accepted: %s\n", title)
				return nil
			}
			if result.Match != "" {
				fmt.Fprintf(w, "rejected (%s, matched %q): %s\n", result.Reason, result.Match, title)
			} else {
				fmt.Fprintf(w, "rejected (%s): %s\n", result.Reason, title)
			}
			return nil
		},
	}
}

// setup loads configuration and applies flag overrides
func setup(cmd *cobra.Command, opts *options) (*env, error) {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON && format != FormatICS {
		return nil, fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", opts.format)
	}
	if opts.sortOrder != "" && !validSortOrder(SortOrder(opts.sortOrder)) {
		return nil, fmt.Errorf("invalid sort order: %s (must be 'date', 'venue' or 'title')", opts.sortOrder)
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("reference-date") {
		cfg.ReferenceDate = opts.referenceDate
	}
	if flags.Changed("data-dir") || cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = opts.dataDir
	}
	if flags.Changed("redis-addr") {
		cfg.Storage.RedisAddr = opts.redisAddr
	}

	ref, err := cfg.Reference()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel()
	if opts.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	return &env{
		opts:    opts,
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		ref:     ref,
		now:     time.Now().UTC(),
	}, nil
}

// ReadCandidates decodes a JSON array of candidates. "null" is an empty batch; anything
// other than an array is an error.
func ReadCandidates(r io.Reader) ([]event.Candidate, error) {
	var candidates []event.Candidate
	if err := json.NewDecoder(r).Decode(&candidates); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("candidates must be a JSON array: %w", err)
	}
	return candidates, nil
}

// run is the part shared by process and scrape
func (e *env) run(cmd *cobra.Command, candidates []event.Candidate) error {
	classifier, err := e.cfg.Classifier()
	if err != nil {
		return err
	}

	p := pipeline.New(classifier, e.cfg.Normalizer(),
		pipeline.WithLogger(e.log),
		pipeline.WithMetrics(e.metrics),
	)
	report := p.Process(candidates, e.ref)

	f, err := e.filter()
	if err != nil {
		return err
	}
	events := f.Apply(report.Events)

	result := &OutputResult{
		GeneratedAt:   e.now,
		ReferenceDate: e.ref.String(),
		Candidates:    report.Candidates,
		Rejected:      len(report.Rejected),
		Duplicates:    report.Duplicates,
		NewOnly:       e.opts.newOnly,
	}
	if !f.IsEmpty() {
		result.Filter = f.String()
	}

	if e.opts.newOnly {
		diff, err := e.diffAndSave(cmd.Context(), report.Events)
		if err != nil {
			return err
		}
		fresh := make(map[*event.Event]bool, len(diff.NewEvents))
		for _, evt := range diff.NewEvents {
			fresh[evt] = true
		}
		kept := make([]*event.Event, 0, len(diff.NewEvents))
		for _, evt := range events {
			if fresh[evt] {
				kept = append(kept, evt)
			}
		}
		events = kept
		result.Changes = diff.Changes
	}

	if e.opts.sortOrder != "" {
		sortEvents(events, SortOrder(e.opts.sortOrder))
	}
	result.Events = events
	result.EventCount = len(events)

	if err := WriteOutput(cmd.OutOrStdout(), result, OutputFormat(strings.ToLower(e.opts.format)), e.opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if e.opts.metricsFile != "" {
		if err := e.metrics.WriteTextfile(e.opts.metricsFile); err != nil {
			return err
		}
	}

	if e.opts.newOnly && len(events) > 0 {
		return &ExitCodeError{Code: ExitNewEvents}
	}
	return nil
}

func (e *env) filter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Venues = e.opts.venues
	f.Cities = e.opts.cities
	f.Sources = e.opts.sources
	f.WeekendsOnly = e.opts.weekends
	f.DatedOnly = e.opts.datedOnly

	if e.opts.dateRange != "" {
		from, to, err := filter.ParseDateRange(e.opts.dateRange, e.ref)
		if err != nil {
			return nil, fmt.Errorf("parsing --range: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}
	return f, nil
}

// diffAndSave compares events with the previous snapshot of the feed and stores the new
// snapshot. The snapshot holds the whole run, not just the filtered output.
func (e *env) diffAndSave(ctx context.Context, events []*event.Event) (*event.DiffResult, error) {
	store, closeStore, err := e.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	previous, err := store.Load(ctx, e.opts.feed)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	e.log.Debug("Loaded previous snapshot", logger.Fields{
		"feed":   e.opts.feed,
		"events": len(previous.Events),
	})

	diff := event.Diff(previous, events, e.now)
	snapshot := event.CreateSnapshot(events, previous, e.now)

	if err := store.Save(ctx, e.opts.feed, snapshot); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	e.log.Info("Saved snapshot", logger.Fields{
		"feed":       e.opts.feed,
		"events":     len(snapshot.Events),
		"new_events": len(diff.NewEvents),
		"changes":    len(diff.Changes),
	})

	return diff, nil
}

func (e *env) openStore(ctx context.Context) (storage.Store, func(), error) {
	if addr := e.cfg.Storage.RedisAddr; addr != "" {
		store, err := storage.NewRedisStore(ctx, addr, e.cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing storage: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}

	store, err := storage.NewFileStore(e.cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, func() {}, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var exitErr *ExitCodeError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
