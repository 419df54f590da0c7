// Package ipc implements length-prefixed msgpack framing of decoded listing
// entries, so listings can be piped between gopherline processes without
// re-parsing wire lines.
//
// A stream is a sequence of entry frames followed by one listing_end frame.
// Each frame is a 4-byte big-endian payload length followed by a msgpack map
// carrying a "type" discriminator.
package ipc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/listing"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// Frame type discriminants.
const (
	EntryType      = "entry"
	ListingEndType = "listing_end"
)

// EntryFrame carries one decoded entry. Only the payload fields of the
// entry's kind are set.
type EntryFrame struct {
	Type      string `msgpack:"type"`
	Kind      string `msgpack:"kind"`
	Char      string `msgpack:"char"`
	Display   string `msgpack:"display"`
	Selector  string `msgpack:"selector,omitempty"`
	Text      string `msgpack:"text,omitempty"`
	Host      string `msgpack:"host,omitempty"`
	Port      int    `msgpack:"port,omitempty"`
	LoginName string `msgpack:"login_name,omitempty"`
}

// ListingEndFrame closes a frame stream.
type ListingEndFrame struct {
	Type    string `msgpack:"type"`
	Entries int64  `msgpack:"entries"`
	Dropped int64  `msgpack:"dropped"`
	// Terminated reports whether the source listing ended with a "." line.
	Terminated bool `msgpack:"terminated"`
}

// NewEntryFrame builds the frame for e.
func NewEntryFrame(e listing.Entry) *EntryFrame {
	f := item.FieldsOf(e.Item)
	return &EntryFrame{
		Type:      EntryType,
		Kind:      e.Item.Kind().String(),
		Char:      string(rune(e.Item.Kind().Char())),
		Display:   e.Display,
		Selector:  f.Selector,
		Text:      f.Text,
		Host:      f.Host,
		Port:      f.Port,
		LoginName: f.LoginName,
	}
}

// Entry rebuilds the listing entry through the item constructors.
// Unknown kinds, a char that disagrees with the kind, and out-of-range
// ports are FrameErrorInvalid.
func (f *EntryFrame) Entry() (listing.Entry, error) {
	kind, ok := item.ParseKind(f.Kind)
	if !ok {
		return listing.Entry{}, &FrameError{Kind: FrameErrorInvalid, Msg: fmt.Sprintf("unknown entry kind %q", f.Kind)}
	}
	if f.Char != "" && (len(f.Char) != 1 || f.Char[0] != kind.Char()) {
		return listing.Entry{}, &FrameError{
			Kind: FrameErrorInvalid,
			Msg:  fmt.Sprintf("entry char %q does not match kind %s", f.Char, kind),
		}
	}
	it, err := item.FromFields(kind, item.Fields{
		Selector:  f.Selector,
		Text:      f.Text,
		Host:      f.Host,
		Port:      f.Port,
		LoginName: f.LoginName,
	})
	if err != nil {
		return listing.Entry{}, &FrameError{Kind: FrameErrorInvalid, Msg: "invalid entry frame", Err: err}
	}
	return listing.Entry{Item: it, Display: f.Display}, nil
}

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
	// FrameErrorInvalid indicates a well-formed frame with invalid content.
	FrameErrorInvalid
)

// FrameError represents a frame error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the stream cannot continue past this error.
// Partial and oversized frames lose stream alignment.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError returns true if the error is a fatal frame error.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// FrameEncoder writes length-prefixed msgpack frames.
type FrameEncoder struct {
	w io.Writer
}

// NewFrameEncoder creates a new frame encoder.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{w: w}
}

// WriteEntry writes one entry frame.
func (e *FrameEncoder) WriteEntry(entry listing.Entry) error {
	return e.writeFrame(NewEntryFrame(entry))
}

// WriteEnd writes the listing_end frame.
func (e *FrameEncoder) WriteEnd(entries, dropped int64, terminated bool) error {
	return e.writeFrame(&ListingEndFrame{
		Type:       ListingEndType,
		Entries:    entries,
		Dropped:    dropped,
		Terminated: terminated,
	})
}

func (e *FrameEncoder) writeFrame(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// FrameDecoder decodes length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader *bufio.Reader
}

// NewFrameDecoder creates a new frame decoder. r is buffered internally.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: bufio.NewReader(r)}
}

// ReadFrame reads a single frame from the stream.
// Returns the raw payload bytes (msgpack-encoded).
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame (fatal)
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit (fatal)
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	_, err = io.ReadFull(d.reader, payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// probeFrameType reads the "type" field without decoding the rest of the
// map.
func probeFrameType(payload []byte) (string, error) {
	var probe struct {
		Type string `msgpack:"type"`
	}
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return "", err
	}
	return probe.Type, nil
}

// DecodeFrame decodes a payload into an *EntryFrame or *ListingEndFrame,
// discriminating on the type field.
func DecodeFrame(payload []byte) (any, error) {
	frameType, err := probeFrameType(payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode frame type",
			Err:  err,
		}
	}

	switch frameType {
	case EntryType:
		var f EntryFrame
		if err := msgpack.Unmarshal(payload, &f); err != nil {
			return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode entry frame", Err: err}
		}
		return &f, nil
	case ListingEndType:
		var f ListingEndFrame
		if err := msgpack.Unmarshal(payload, &f); err != nil {
			return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode listing_end frame", Err: err}
		}
		return &f, nil
	default:
		return nil, &FrameError{Kind: FrameErrorInvalid, Msg: fmt.Sprintf("unknown frame type %q", frameType)}
	}
}

// ReadListing reads entry frames up to and including the listing_end frame.
// The end frame is nil when the stream ends without one.
func ReadListing(r io.Reader) ([]listing.Entry, *ListingEndFrame, error) {
	dec := NewFrameDecoder(r)
	var entries []listing.Entry
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			return entries, nil, nil
		}
		if err != nil {
			return entries, nil, err
		}
		frame, err := DecodeFrame(payload)
		if err != nil {
			return entries, nil, err
		}
		switch f := frame.(type) {
		case *EntryFrame:
			e, err := f.Entry()
			if err != nil {
				return entries, nil, err
			}
			entries = append(entries, e)
		case *ListingEndFrame:
			return entries, f, nil
		}
	}
}
