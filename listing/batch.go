package listing

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/policy"
)

// DecodeLines decodes lines concurrently with at most workers goroutines.
//
// Results are positional: entries[i] is valid iff errs[i] is nil. A bad
// line never stops the batch; each error is a *LineError with a 1-based
// line number. Lines not yet decoded when ctx is cancelled get ctx.Err().
func DecodeLines(ctx context.Context, lines []string, workers int) ([]Entry, []error) {
	entries := make([]Entry, len(lines))
	errs := make([]error, len(lines))
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			it, display, err := item.DecodeLine(line)
			if err != nil {
				errs[i] = &LineError{Line: i + 1, Text: line, Err: err}
				return nil
			}
			entries[i] = Entry{Item: it, Display: display}
			return nil
		})
	}
	_ = g.Wait()
	return entries, errs
}

// ApplyPolicy walks DecodeLines results in line order, offering each error
// to pol. It returns the surviving entries, stopping at the first error pol
// does not drop. Cancellation errors are returned as is; they are not bad
// lines and never reach pol.
func ApplyPolicy(entries []Entry, errs []error, pol policy.Policy) ([]Entry, error) {
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		err := errs[i]
		if err == nil {
			out = append(out, e)
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, err
		}
		line, text := i+1, ""
		var le *LineError
		if errors.As(err, &le) {
			line, text, err = le.Line, le.Text, le.Err
		}
		if perr := pol.HandleDecodeError(line, text, err); perr != nil {
			return out, &LineError{Line: line, Text: text, Err: perr}
		}
	}
	return out, nil
}

// Batch is a listing read whole and decoded concurrently.
type Batch struct {
	Entries []Entry
	// Lines counts consumed lines including the terminator.
	Lines      int
	Terminated bool
}

// ReadConcurrent reads all of rd, decodes it with DecodeLines and applies
// the policy in line order. Policy, collector and logger options behave as
// they do for Reader, so both paths report the same counts.
func ReadConcurrent(ctx context.Context, rd io.Reader, workers int, opts ...Option) (*Batch, error) {
	o := buildOptions(opts)
	lines, terminated, err := ReadLines(rd)

	b := &Batch{Lines: len(lines), Terminated: terminated}
	if terminated {
		b.Lines++
	}
	for range b.Lines {
		o.collector.IncLinesRead()
	}
	defer func() {
		stats := o.policy.Stats()
		o.collector.AbsorbPolicyStats(stats.TotalErrors, stats.Dropped, stats.DroppedByKind)
	}()
	if err != nil {
		return b, err
	}

	entries, errs := DecodeLines(ctx, lines, workers)
	for _, err := range errs {
		var le *LineError
		if errors.As(err, &le) {
			o.logger.Warn("bad listing line", map[string]any{
				"line":  le.Line,
				"error": le.Err.Error(),
			})
		}
	}

	b.Entries, err = ApplyPolicy(entries, errs, o.policy)
	for _, e := range b.Entries {
		o.collector.IncEntryDecoded(e.Item.Kind().String())
	}
	return b, err
}
