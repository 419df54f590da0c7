package listing

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pithecene-io/gopherline/item"
)

// Writer encodes entries onto a listing stream.
//
// Close writes the terminator line and flushes; it does not close the
// underlying writer.
type Writer struct {
	bw   *bufio.Writer
	enc  item.Encoder
	opts options

	n      int
	closed bool
}

// NewWriter creates a Writer encoding with enc.
func NewWriter(w io.Writer, enc item.Encoder, opts ...Option) *Writer {
	return &Writer{bw: bufio.NewWriter(w), enc: enc, opts: buildOptions(opts)}
}

// Write encodes and buffers one entry. An entry that cannot be encoded is
// rejected without writing anything.
func (w *Writer) Write(e Entry) error {
	if w.closed {
		return ErrWriterClosed
	}
	line, err := w.enc.Encode(e.Item, e.Display)
	if err != nil {
		return fmt.Errorf("listing: encode entry %d: %w", w.n+1, err)
	}
	if _, err := w.bw.WriteString(line); err != nil {
		return fmt.Errorf("listing: write: %w", err)
	}
	w.n++
	w.opts.collector.IncEntryEncoded()
	return nil
}

// Count returns the number of entries written.
func (w *Writer) Count() int { return w.n }

// Flush writes buffered lines without the terminator, so a stream cut short
// by a bad entry still carries every line accepted before it.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("listing: flush: %w", err)
	}
	return nil
}

// Close writes the ".\r\n" terminator once and flushes. Later calls are
// no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if _, err := w.bw.WriteString(Terminator + item.LineTerminator); err != nil {
		return fmt.Errorf("listing: write terminator: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("listing: flush: %w", err)
	}
	return nil
}
