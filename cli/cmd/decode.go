package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gopherline/adapter"
	"github.com/pithecene-io/gopherline/archive"
	"github.com/pithecene-io/gopherline/cli/config"
	"github.com/pithecene-io/gopherline/cli/render"
	"github.com/pithecene-io/gopherline/cli/tui"
	"github.com/pithecene-io/gopherline/ipc"
	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/log"
	"github.com/pithecene-io/gopherline/metrics"
	"github.com/pithecene-io/gopherline/policy"
	"github.com/pithecene-io/gopherline/types"
)

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		InputFlag,
		FramesFlag,
		LogLevelFlag,
		&cli.StringFlag{Name: "source", Usage: "Source name recorded with the listing", Value: types.DefaultSource},
		&cli.StringFlag{Name: "policy", Usage: "Bad line policy: strict or skip", Value: policy.NameStrict},
		&cli.IntFlag{Name: "workers", Usage: "Decode with N goroutines (reads the whole listing first)", Value: 1},
		&cli.StringFlag{Name: "metrics-file", Usage: "Write Prometheus text metrics to this file"},
		&cli.BoolFlag{Name: "archive", Usage: "Write the decoded listing to the archive dataset"},
	}
	flags = append(flags, OutputFlags()...)
	flags = append(flags, storageFlags()...)
	flags = append(flags, adapterFlags()...)

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a Gopher directory listing",
		ArgsUsage: " ",
		Flags:     flags,
		Action:    decodeAction,
	}
}

// decodeRun carries one decode invocation.
type decodeRun struct {
	cfg       *config.Config
	meta      *types.ListingMeta
	logger    *log.Logger
	collector *metrics.Collector
	policy    policy.Policy
	started   time.Time
}

func decodeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	source := resolveString(c, "source", configVal(cfg, func(c *config.Config) string { return c.Source }))
	meta := types.NewListingMeta(source)
	if err := meta.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid --source: %v", err), exitUsage)
	}
	pol, err := policy.New(resolveString(c, "policy", configVal(cfg, func(c *config.Config) string { return c.Policy.Name })))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	logger, err := newLogger(c, cfg, meta)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer func() { _ = logger.Sync() }()

	if c.Bool("tui") && (c.Bool("frames") || c.IsSet("format")) {
		return cli.Exit("--tui cannot be combined with --frames or --format", exitUsage)
	}
	var renderer *render.Renderer
	if !c.Bool("frames") && !c.Bool("tui") {
		renderer, err = render.NewRenderer(c.String("format"), c.App.Writer, originEncoder(cfg))
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
	}

	var store *storageChoice
	if c.Bool("archive") {
		sc, err := parseStorageChoice(c, cfg)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		store = &sc
	}
	var notify *adapterChoice
	if c.Bool("notify") {
		ac, err := parseAdapterChoice(c, cfg)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		notify = &ac
	}

	backend := ""
	if store != nil {
		backend = store.backend
	}
	run := &decodeRun{
		cfg:       cfg,
		meta:      meta,
		logger:    logger,
		collector: metrics.NewCollector(pol.Name(), backend, meta.Source, meta.ListingID),
		policy:    pol,
		started:   time.Now(),
	}
	if path := c.String("metrics-file"); path != "" {
		defer run.writeMetrics(path)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, closeIn, err := openInput(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer closeIn()

	entries, terminated, readErr := run.read(ctx, in, c.Int("workers"))
	sum := run.summary(entries, terminated)
	if readErr != nil {
		logger.Error("decode failed", map[string]any{"error": readErr.Error(), "entries": sum.Entries})
		var le *listing.LineError
		if errors.As(readErr, &le) {
			return cli.Exit(fmt.Sprintf("decode failed: %v", readErr), exitDecodeFailure)
		}
		return cli.Exit(fmt.Sprintf("decode failed: %v", readErr), exitUsage)
	}
	logger.Info("listing decoded", map[string]any{
		"entries":    sum.Entries,
		"dropped":    sum.Dropped,
		"terminated": sum.Terminated,
		"policy":     pol.Name(),
	})

	switch {
	case c.Bool("frames"):
		err = run.writeFrames(c.App.Writer, entries, sum)
	case c.Bool("tui"):
		err = render.NewRendererWithWriter(render.FormatTable, c.App.Writer, item.Encoder{}).
			RenderTUI(tui.ViewListing, run.tuiData(entries, sum))
	default:
		err = renderer.RenderListing(entries, sum)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("write output: %v", err), exitUsage)
	}

	storagePath := ""
	if store != nil {
		storagePath, err = run.archive(ctx, *store, entries, sum)
		if err != nil {
			return cli.Exit(fmt.Sprintf("archive failed: %v", err), exitUsage)
		}
	}
	if notify != nil {
		run.notify(ctx, *notify, adapter.NewListingDecodedEvent(sum, storagePath, time.Now()))
	}
	return nil
}

// read decodes in a goroutine so a cancelled context (SIGINT, SIGTERM)
// ends the command even while the input blocks. The abandoned read stops
// when the process exits.
func (r *decodeRun) read(ctx context.Context, in io.Reader, workers int) ([]listing.Entry, bool, error) {
	type result struct {
		entries    []listing.Entry
		terminated bool
		err        error
	}
	done := make(chan result, 1)
	go func() {
		var res result
		res.entries, res.terminated, res.err = r.readAll(ctx, in, workers)
		done <- res
	}()

	select {
	case res := <-done:
		return res.entries, res.terminated, res.err
	case <-ctx.Done():
		return nil, false, fmt.Errorf("listing: read interrupted: %w", ctx.Err())
	}
}

func (r *decodeRun) readAll(ctx context.Context, in io.Reader, workers int) ([]listing.Entry, bool, error) {
	opts := []listing.Option{
		listing.WithPolicy(r.policy),
		listing.WithCollector(r.collector),
		listing.WithLogger(r.logger),
	}
	if workers > 1 {
		b, err := listing.ReadConcurrent(ctx, in, workers, opts...)
		return b.Entries, b.Terminated, err
	}
	lr := listing.NewReader(in, opts...)
	entries, err := lr.ReadAll()
	return entries, lr.Terminated(), err
}

func (r *decodeRun) summary(entries []listing.Entry, terminated bool) types.ListingSummary {
	stats := r.policy.Stats()
	return types.ListingSummary{
		ListingID:     r.meta.ListingID,
		Source:        r.meta.Source,
		Entries:       int64(len(entries)),
		Dropped:       stats.Dropped,
		DroppedByKind: stats.DroppedByKind,
		Terminated:    terminated,
		Duration:      time.Since(r.started),
	}
}

func (r *decodeRun) writeFrames(w io.Writer, entries []listing.Entry, sum types.ListingSummary) error {
	enc := ipc.NewFrameEncoder(w)
	for _, e := range entries {
		if err := enc.WriteEntry(e); err != nil {
			return err
		}
		r.collector.IncFramesWritten()
	}
	if err := enc.WriteEnd(sum.Entries, sum.Dropped, sum.Terminated); err != nil {
		return err
	}
	r.collector.IncFramesWritten()
	return nil
}

func (r *decodeRun) tuiData(entries []listing.Entry, sum types.ListingSummary) *tui.ListingData {
	views := make([]types.EntryView, len(entries))
	for i, e := range entries {
		views[i] = e.View()
	}
	return &tui.ListingData{
		Summary:     sum,
		Entries:     views,
		ItemsByKind: r.collector.Snapshot().ItemsByKind,
	}
}

func (r *decodeRun) archive(ctx context.Context, sc storageChoice, entries []listing.Entry, sum types.ListingSummary) (string, error) {
	cfg := archive.Config{
		Dataset:   sc.dataset,
		Source:    r.meta.Source,
		Day:       archive.DeriveDay(r.meta.StartedAt),
		ListingID: r.meta.ListingID,
	}
	w, err := openArchive(ctx, sc, cfg, r.collector)
	if err != nil {
		return "", err
	}
	defer func() { _ = w.Close() }()

	if err := w.WriteListing(ctx, entries, sum, r.collector.Snapshot()); err != nil {
		r.logger.Error("archive write failed", map[string]any{"error": err.Error(), "backend": sc.backend})
		return "", err
	}
	r.logger.Info("listing archived", map[string]any{"path": w.Path(), "backend": sc.backend})
	return w.Path(), nil
}

// notify publishes the event. Failures are logged, never fatal: the
// listing has already been decoded and written.
func (r *decodeRun) notify(ctx context.Context, ac adapterChoice, event *adapter.ListingDecodedEvent) {
	a, err := buildAdapter(ac)
	if err != nil {
		r.collector.IncNotifyFailure()
		r.logger.Warn("adapter setup failed", map[string]any{"adapter": ac.kind, "error": err.Error()})
		return
	}
	defer func() { _ = a.Close() }()

	if err := a.Publish(ctx, event); err != nil {
		r.collector.IncNotifyFailure()
		r.logger.Warn("notification failed", map[string]any{"adapter": ac.kind, "error": err.Error()})
		return
	}
	r.collector.IncNotifySuccess()
	r.logger.Debug("notification sent", map[string]any{"adapter": ac.kind})
}

func (r *decodeRun) writeMetrics(path string) {
	f, err := os.Create(path)
	if err != nil {
		r.logger.Sugar().Warnf("metrics file %s not written: %v", path, err)
		return
	}
	err = metrics.WriteText(f, r.collector)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		r.logger.Sugar().Warnf("metrics file %s not written: %v", path, err)
	}
}

func newLogger(c *cli.Context, cfg *config.Config, meta *types.ListingMeta) (*log.Logger, error) {
	lvl, err := log.ParseLevel(resolveString(c, "log-level", configVal(cfg, func(c *config.Config) string { return c.Log.Level })))
	if err != nil {
		return nil, err
	}
	logger := log.NewLogger(meta).WithOutput(c.App.ErrWriter)
	logger.SetLevel(lvl)
	return logger, nil
}

// openInput opens --input; "-" reads the app reader (stdin).
func openInput(c *cli.Context) (io.Reader, func(), error) {
	path := c.String("input")
	if path == "" || path == "-" {
		return c.App.Reader, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// originEncoder encodes with the config origin, used by --format wire.
func originEncoder(cfg *config.Config) item.Encoder {
	o := configVal(cfg, func(c *config.Config) config.OriginConfig { return c.Origin })
	return item.Encoder{Origin: item.Origin{Host: o.Host, Port: uint16(o.Port)}}
}
