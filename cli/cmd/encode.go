package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/gopherline/cli/config"
	"github.com/pithecene-io/gopherline/ipc"
	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/metrics"
	"github.com/pithecene-io/gopherline/types"
)

// EncodeCommand returns the encode command.
func EncodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode entries as a Gopher directory listing",
		ArgsUsage: " ",
		Description: `Reads entries as JSON or YAML, either a bare list or the document
printed by "decode --format json", and writes RFC 1436 lines terminated
by ".". With --frames the input is a msgpack frame stream.

An entry that cannot be encoded stops the command with exit code 3. The
lines before it are written, without the "." terminator.`,
		Flags: []cli.Flag{
			ConfigFlag,
			InputFlag,
			FramesFlag,
			LogLevelFlag,
			&cli.StringFlag{Name: "host", Usage: "Host written on resource lines"},
			&cli.IntFlag{Name: "port", Usage: "Port written on resource lines (0 leaves it empty)"},
		},
		Action: encodeAction,
	}
}

func encodeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	meta := types.NewListingMeta(configVal(cfg, func(c *config.Config) string { return c.Source }))
	logger, err := newLogger(c, cfg, meta)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer func() { _ = logger.Sync() }()

	origin := configVal(cfg, func(c *config.Config) config.OriginConfig { return c.Origin })
	host := resolveString(c, "host", origin.Host)
	port := resolveInt(c, "port", origin.Port)
	if port < 0 || port > math.MaxUint16 {
		return cli.Exit(fmt.Sprintf("invalid --port %d (must be 0-65535)", port), exitUsage)
	}
	collector := metrics.NewCollector("", "", meta.Source, meta.ListingID)

	in, closeIn, err := openInput(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer closeIn()

	var entries []listing.Entry
	if c.Bool("frames") {
		entries, err = readFrameEntries(in, collector)
	} else {
		entries, err = readViewEntries(in)
	}
	if err != nil {
		logger.Error("read entries failed", map[string]any{"error": err.Error()})
		code := exitUsage
		var fe *ipc.FrameError
		var ce *conversionError
		if (errors.As(err, &fe) && fe.Kind == ipc.FrameErrorInvalid) || errors.As(err, &ce) {
			code = exitEncodeFailure
		}
		return cli.Exit(fmt.Sprintf("read entries: %v", err), code)
	}

	enc := item.Encoder{Origin: item.Origin{Host: host, Port: uint16(port)}}
	w := listing.NewWriter(c.App.Writer, enc, listing.WithCollector(collector), listing.WithLogger(logger))
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			logger.Error("encode failed", map[string]any{"error": err.Error(), "written": w.Count()})
			if ferr := w.Flush(); ferr != nil {
				logger.Warn("flush partial listing", map[string]any{"error": ferr.Error()})
			}
			return cli.Exit(err.Error(), exitEncodeFailure)
		}
	}
	if err := w.Close(); err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	logger.Info("listing encoded", map[string]any{"entries": collector.Snapshot().EntriesEncoded})
	return nil
}

// conversionError wraps an entry that parsed but is not a valid item.
type conversionError struct {
	index int
	err   error
}

func (e *conversionError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.index+1, e.err)
}

func (e *conversionError) Unwrap() error { return e.err }

// entryDocument accepts the structured decode output.
type entryDocument struct {
	Entries []types.EntryView `yaml:"entries"`
}

// readViewEntries parses a JSON or YAML list of entries, or a document with
// an entries key. JSON parses as YAML.
func readViewEntries(r io.Reader) ([]listing.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}
	if node.Kind == 0 {
		return nil, nil
	}

	var views []types.EntryView
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&views)
	case yaml.MappingNode:
		var doc entryDocument
		err = root.Decode(&doc)
		views = doc.Entries
	default:
		err = errors.New("expected a list of entries or a document with an entries key")
	}
	if err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}

	entries := make([]listing.Entry, 0, len(views))
	for i, v := range views {
		e, err := listing.EntryFromView(v)
		if err != nil {
			return nil, &conversionError{index: i, err: err}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readFrameEntries(r io.Reader, collector *metrics.Collector) ([]listing.Entry, error) {
	entries, end, err := ipc.ReadListing(r)
	if err != nil {
		collector.IncFrameDecodeErrors()
		return nil, err
	}
	if end != nil && end.Entries != int64(len(entries)) {
		collector.IncFrameDecodeErrors()
		return nil, &ipc.FrameError{
			Kind: ipc.FrameErrorInvalid,
			Msg:  fmt.Sprintf("listing_end reports %d entries, stream carried %d", end.Entries, len(entries)),
		}
	}
	return entries, nil
}
