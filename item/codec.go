package item

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Wire framing constants.
const (
	// FieldSeparator separates fields within a line.
	FieldSeparator = "\t"
	// LineTerminator ends every encoded line. Decoding also accepts a bare "\n".
	LineTerminator = "\r\n"

	maxPort = 1<<16 - 1
)

// supportedChars lists the accepted type characters for error messages.
const supportedChars = "0 1 3 6 8 9 g I i"

// DecodeLine parses a single listing line into an item and its display
// text. A trailing "\r\n" or "\n" is optional.
//
// Host and port fields of resource lines are not retained; they belong to
// the listing, not the item. Fields beyond the fourth are ignored.
//
// Errors are *DecodeError values:
//   - DecodeEmptyInput: the line has no content
//   - DecodeUnknownItemType: the first character is not a supported type
//   - DecodeMalformedRecord: a required field is missing, or the line
//     contains an embedded "\r" or "\n"
//   - DecodeInvalidPort: a telnet port is not a decimal integer in 0-65535
func DecodeLine(line string) (Item, string, error) {
	body := trimTerminator(line)
	if body == "" {
		return nil, "", decodeError(DecodeEmptyInput, "empty line")
	}

	kind, ok := KindFromChar(body[0])
	if !ok {
		r, _ := utf8.DecodeRuneInString(body)
		return nil, "", decodeError(DecodeUnknownItemType,
			"unknown item type %q (must be one of %s)", r, supportedChars)
	}
	if strings.ContainsAny(body, "\r\n") {
		return nil, "", decodeError(DecodeMalformedRecord, "embedded line terminator in %s line", kind)
	}

	fields := strings.Split(body[1:], FieldSeparator)
	display := fields[0]

	switch kind.Family() {
	case FamilyMessage:
		return messageItem(kind, NewMessage(display)), display, nil

	case FamilyResource:
		if len(fields) < 2 {
			return nil, "", decodeError(DecodeMalformedRecord, "%s line missing selector field", kind)
		}
		return resourceItem(kind, NewResource(fields[1])), display, nil

	case FamilyTelnet:
		if len(fields) < 4 {
			return nil, "", decodeError(DecodeMalformedRecord,
				"telnet line has %d fields, want 4 (display, login, host, port)", len(fields))
		}
		port, err := strconv.ParseUint(fields[3], 10, 16)
		if err != nil {
			return nil, "", &DecodeError{
				Kind: DecodeInvalidPort,
				Msg:  "telnet port " + strconv.Quote(fields[3]),
				Err:  err,
			}
		}
		return Telnet{NewTelnetLink(fields[2], uint16(port), fields[1])}, display, nil
	}

	// Unreachable: every kind from KindFromChar has a family.
	return nil, "", decodeError(DecodeUnknownItemType, "unsupported item type %s", kind)
}

func trimTerminator(line string) string {
	if strings.HasSuffix(line, "\n") {
		line = line[:len(line)-1]
		line = strings.TrimSuffix(line, "\r")
	}
	return line
}

// Origin is the host and port a listing is served from. Resource lines
// carry it in their host and port fields.
type Origin struct {
	Host string
	Port uint16
}

// Encoder encodes items for a given origin. The zero Encoder emits empty
// host and port fields on resource lines.
//
// Encoder is a value type and safe for concurrent use.
type Encoder struct {
	Origin Origin
}

// EncodeItem encodes it with the zero origin.
func EncodeItem(it Item, display string) (string, error) {
	return Encoder{}.Encode(it, display)
}

// Encode produces the wire line for it, including the "\r\n" terminator.
//
// Resource lines carry the selector and the encoder origin. Message lines
// carry empty selector, host and port fields; their display text is the
// message text, so display must be empty (meaning "use the text") or equal
// to it. Telnet lines carry the login name in the selector slot followed by
// the link host and port.
//
// Any field containing a tab or line terminator is rejected with an
// *EncodeError of kind EncodeInvalidField, as is a nil item.
func (e Encoder) Encode(it Item, display string) (string, error) {
	if it == nil {
		return "", invalidField("item", "nil item")
	}
	kind := it.Kind()
	if !kind.Valid() {
		return "", invalidField("kind", "unsupported item kind %s", kind)
	}
	f := FieldsOf(it)
	if kind.Family() == FamilyMessage {
		// The display text of a message line is the message itself.
		if display == "" {
			display = f.Text
		} else if display != f.Text {
			return "", invalidField("display", "%q does not match %s text %q", display, kind, f.Text)
		}
	}
	if err := checkField("display", display); err != nil {
		return "", err
	}

	var selector, host, port string
	selectorName := "selector"
	switch kind.Family() {
	case FamilyResource:
		selector = f.Selector
		host = e.Origin.Host
		if e.Origin.Host != "" || e.Origin.Port != 0 {
			port = strconv.FormatUint(uint64(e.Origin.Port), 10)
		}
		if err := checkField("origin host", host); err != nil {
			return "", err
		}
	case FamilyTelnet:
		if f.Port < 0 || f.Port > maxPort {
			return "", invalidField("port", "telnet port %d out of range 0-%d", f.Port, maxPort)
		}
		selector = f.LoginName
		selectorName = "login name"
		host = f.Host
		port = strconv.Itoa(f.Port)
		if err := checkField("host", host); err != nil {
			return "", err
		}
	}
	if err := checkField(selectorName, selector); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(1 + len(display) + len(selector) + len(host) + len(port) + 3 + len(LineTerminator))
	b.WriteByte(kind.Char())
	b.WriteString(display)
	b.WriteString(FieldSeparator)
	b.WriteString(selector)
	b.WriteString(FieldSeparator)
	b.WriteString(host)
	b.WriteString(FieldSeparator)
	b.WriteString(port)
	b.WriteString(LineTerminator)
	return b.String(), nil
}

// checkField rejects values that would break wire framing.
func checkField(name, value string) error {
	if i := strings.IndexAny(value, "\t\r\n"); i >= 0 {
		return invalidField(name, "contains %q at offset %d", value[i], i)
	}
	return nil
}
