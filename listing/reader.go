package listing

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/gopherline/item"
)

// Reader decodes entries from a listing stream.
//
// Lines may end in "\r\n" or "\n". Reading stops at the "." line; a stream
// that ends without one is accepted and reported by Terminated. Blank lines
// are bad lines (empty input) and go through the policy like any other.
//
// Reader is not safe for concurrent use.
type Reader struct {
	sc   *bufio.Scanner
	opts options

	lineNo     int
	entries    int64
	terminated bool
	done       bool
	err        error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLineSize+2)
	return &Reader{sc: sc, opts: buildOptions(opts)}
}

// Next returns the next entry. It returns io.EOF at the end of the listing.
// Once Next returns a non-nil error, every later call returns the same error.
//
// Under a strict policy the first bad line ends reading with a *LineError.
func (r *Reader) Next() (Entry, error) {
	if r.done {
		return Entry{}, r.err
	}
	for r.sc.Scan() {
		r.lineNo++
		r.opts.collector.IncLinesRead()

		line := r.sc.Text()
		if line == Terminator {
			r.terminated = true
			return Entry{}, r.finish(io.EOF)
		}

		it, display, err := item.DecodeLine(line)
		if err != nil {
			r.opts.logger.Warn("bad listing line", map[string]any{
				"line":  r.lineNo,
				"error": err.Error(),
			})
			if perr := r.opts.policy.HandleDecodeError(r.lineNo, line, err); perr != nil {
				return Entry{}, r.finish(&LineError{Line: r.lineNo, Text: line, Err: perr})
			}
			continue
		}

		r.entries++
		r.opts.collector.IncEntryDecoded(it.Kind().String())
		return Entry{Item: it, Display: display}, nil
	}

	if err := r.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Entry{}, r.finish(&LineError{
				Line: r.lineNo + 1,
				Err:  fmt.Errorf("line exceeds %d bytes: %w", MaxLineSize, err),
			})
		}
		return Entry{}, r.finish(fmt.Errorf("listing: read: %w", err))
	}
	return Entry{}, r.finish(io.EOF)
}

// finish records the terminal error and hands policy counters to the
// collector.
func (r *Reader) finish(err error) error {
	r.done = true
	r.err = err
	stats := r.opts.policy.Stats()
	r.opts.collector.AbsorbPolicyStats(stats.TotalErrors, stats.Dropped, stats.DroppedByKind)
	if errors.Is(err, io.EOF) {
		r.opts.logger.Debug("listing read", map[string]any{
			"lines":      r.lineNo,
			"entries":    r.entries,
			"dropped":    stats.Dropped,
			"terminated": r.terminated,
		})
	}
	return err
}

// ReadAll reads every remaining entry. It returns the entries read so far
// together with any error other than io.EOF.
func (r *Reader) ReadAll() ([]Entry, error) {
	var out []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

// Terminated reports whether the listing ended with a "." line.
// Meaningful once Next has returned io.EOF.
func (r *Reader) Terminated() bool { return r.terminated }

// Lines returns the number of lines consumed so far.
func (r *Reader) Lines() int { return r.lineNo }

// Policy returns the name of the bad-line policy in use.
func (r *Reader) Policy() string { return r.opts.policy.Name() }

// ReadLines collects the raw lines of a listing, without terminators, up to
// the "." line. Blank lines are kept so indexes match line numbers.
func ReadLines(rd io.Reader) (lines []string, terminated bool, err error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 4096), MaxLineSize+2)
	for sc.Scan() {
		line := sc.Text()
		if line == Terminator {
			return lines, true, nil
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return lines, false, &LineError{
				Line: len(lines) + 1,
				Err:  fmt.Errorf("line exceeds %d bytes: %w", MaxLineSize, err),
			}
		}
		return lines, false, fmt.Errorf("listing: read: %w", err)
	}
	return lines, false, nil
}
