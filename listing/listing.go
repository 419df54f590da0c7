// Package listing reads and writes whole Gopher directory listings: a
// sequence of item lines ended by a line holding a single ".".
//
// Line decoding and encoding is delegated to package item. This package
// adds stream framing, bad-line policy, metrics and logging.
package listing

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/log"
	"github.com/pithecene-io/gopherline/metrics"
	"github.com/pithecene-io/gopherline/policy"
	"github.com/pithecene-io/gopherline/types"
)

const (
	// MaxLineSize is the longest accepted line, excluding its terminator.
	MaxLineSize = 64 * 1024

	// Terminator is the line that ends a listing.
	Terminator = "."
)

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("listing: writer closed")

// Entry is one decoded listing line.
type Entry struct {
	Item    item.Item
	Display string
}

// View returns the flat view of e.
func (e Entry) View() types.EntryView {
	return types.ViewOf(e.Item, e.Display)
}

// EntryFromView rebuilds an Entry from its flat view.
func EntryFromView(v types.EntryView) (Entry, error) {
	it, err := v.Item()
	if err != nil {
		return Entry{}, err
	}
	return Entry{Item: it, Display: v.Display}, nil
}

// LineError reports a line that could not be read or decoded.
type LineError struct {
	// Line is the 1-based line number within the listing.
	Line int
	// Text is the offending line without its terminator.
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("listing: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Option configures a Reader or Writer.
type Option func(*options)

type options struct {
	policy    policy.Policy
	collector *metrics.Collector
	logger    *log.Logger
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = policy.NewStrictPolicy()
	}
	if o.logger == nil {
		o.logger = log.Nop()
	}
	return o
}

// WithPolicy sets the bad-line policy. Default is strict.
func WithPolicy(p policy.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithCollector records stream metrics into c.
func WithCollector(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithLogger logs bad lines to l. Default discards.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}
