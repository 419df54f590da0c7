package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gopherline/archive"
	"github.com/pithecene-io/gopherline/cli/render"
	"github.com/pithecene-io/gopherline/cli/tui"
	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/types"
)

// ShowCommand returns the show command, which reads an archived listing
// back. It never writes to the archive.
func ShowCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{Name: "listing-id", Usage: "Listing to show (default: latest archived)"},
		&cli.BoolFlag{Name: "stats", Usage: "Show the listing summary instead of its entries"},
	}
	flags = append(flags, OutputFlags()...)
	flags = append(flags, storageFlags()...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show an archived listing",
		ArgsUsage: " ",
		Flags:     flags,
		Action:    showAction,
	}
}

// ListingStats is the output of show --stats.
type ListingStats struct {
	types.ListingSummary `yaml:",inline"`
	ItemsByKind          map[string]int64 `json:"items_by_kind,omitempty" yaml:"items_by_kind,omitempty"`
}

func showAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	sc, err := parseStorageChoice(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	ds, err := openReadDataset(c.Context, sc)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	stored, err := archive.QueryListing(c.Context, ds, c.String("listing-id"))
	if errors.Is(err, archive.ErrListingNotFound) {
		id := c.String("listing-id")
		if id == "" {
			return cli.Exit(fmt.Sprintf("no listings archived in %s", sc.path), exitUsage)
		}
		return cli.Exit(fmt.Sprintf("listing %s not found in %s", id, sc.path), exitUsage)
	}
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	sum := stored.ListingSummary()

	if c.Bool("tui") {
		view := tui.ViewListing
		if c.Bool("stats") {
			view = tui.ViewStats
		}
		views := make([]types.EntryView, len(stored.Entries))
		for i, e := range stored.Entries {
			views[i] = e.View()
		}
		data := &tui.ListingData{Summary: sum, Entries: views, ItemsByKind: stored.ItemsByKind()}
		if err := render.NewRendererWithWriter(render.FormatTable, c.App.Writer, item.Encoder{}).RenderTUI(view, data); err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		return nil
	}

	r, err := render.NewRenderer(c.String("format"), c.App.Writer, originEncoder(cfg))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if c.Bool("stats") {
		if r.Format() == render.FormatTable {
			_, err = fmt.Fprint(c.App.Writer, tui.RenderStatsStatic(&tui.ListingData{Summary: sum, ItemsByKind: stored.ItemsByKind()}))
		} else {
			err = r.Render(ListingStats{ListingSummary: sum, ItemsByKind: stored.ItemsByKind()})
		}
	} else {
		err = r.RenderListing(stored.Entries, sum)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("write output: %v", err), exitUsage)
	}
	return nil
}
