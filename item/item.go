// Package item models Gopher (RFC-1436) directory-listing items and
// translates them to and from single wire lines.
//
// An Item is a closed union: each variant type binds exactly one payload
// shape, and the wire type character is derived from the variant, never
// stored. The package does no I/O; listing framing (the "." terminator,
// reading from sockets) belongs to callers such as package listing.
//
// Wire format:
//
//	<type-char><display>\t<selector>\t<host>\t<port>\r\n
package item

import "fmt"

// Kind identifies an item variant.
type Kind uint8

// Supported kinds. Sound, search, binhex, DOS and gopher+ types are not
// modelled.
const (
	KindTextFile Kind = iota + 1
	KindDirectory
	KindError
	KindUuFile
	KindTelnet
	KindBinary
	KindGif
	KindImage
	KindInfo
)

// Family groups kinds by payload shape.
type Family uint8

// Payload families.
const (
	FamilyResource Family = iota + 1
	FamilyMessage
	FamilyTelnet
)

type kindInfo struct {
	char   byte
	name   string
	family Family
}

var kinds = [...]kindInfo{
	KindTextFile:  {'0', "text_file", FamilyResource},
	KindDirectory: {'1', "directory", FamilyResource},
	KindError:     {'3', "error", FamilyMessage},
	KindUuFile:    {'6', "uu_file", FamilyResource},
	KindTelnet:    {'8', "telnet", FamilyTelnet},
	KindBinary:    {'9', "binary", FamilyResource},
	KindGif:       {'g', "gif", FamilyResource},
	KindImage:     {'I', "image", FamilyResource},
	KindInfo:      {'i', "info", FamilyMessage},
}

// kindByChar is indexed by wire byte; zero means unsupported.
var kindByChar [256]Kind

func init() {
	for k := KindTextFile; k <= KindInfo; k++ {
		kindByChar[kinds[k].char] = k
	}
}

// Kinds returns every supported kind in wire order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds)-1)
	for k := KindTextFile; k <= KindInfo; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= KindTextFile && k <= KindInfo
}

// Char returns the RFC-1436 type character, or 0 for an invalid kind.
func (k Kind) Char() byte {
	if !k.Valid() {
		return 0
	}
	return kinds[k].char
}

// Family returns the payload family, or 0 for an invalid kind.
func (k Kind) Family() Family {
	if !k.Valid() {
		return 0
	}
	return kinds[k].family
}

// String returns the snake_case kind name used in logs and interchange.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// KindFromChar maps a wire type character to its kind.
func KindFromChar(c byte) (Kind, bool) {
	k := kindByChar[c]
	return k, k != 0
}

// ParseKind maps a kind name (as returned by String) to its kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindTextFile; k <= KindInfo; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// Item is one directory-listing entry. The set of implementations is closed
// to this package.
type Item interface {
	// Kind returns the variant tag.
	Kind() Kind
	sealed()
}

// WireChar returns the type character for it.
func WireChar(it Item) byte {
	return it.Kind().Char()
}

// TextFile is read as plain text by the client.
type TextFile struct{ Resource }

// Directory is a submenu used to navigate the server.
type Directory struct{ Resource }

// Error signals an error condition to the client. It is a listing line,
// not a Go error.
type Error struct{ Message }

// UuFile is a uuencoded file.
type UuFile struct{ Resource }

// Telnet links to a telnet session.
type Telnet struct{ TelnetLink }

// Binary is an opaque binary file.
type Binary struct{ Resource }

// Gif is a GIF image.
type Gif struct{ Resource }

// Image is an image in some other format.
type Image struct{ Resource }

// Info is a non-selectable informational line.
type Info struct{ Message }

func (TextFile) Kind() Kind  { return KindTextFile }
func (Directory) Kind() Kind { return KindDirectory }
func (Error) Kind() Kind     { return KindError }
func (UuFile) Kind() Kind    { return KindUuFile }
func (Telnet) Kind() Kind    { return KindTelnet }
func (Binary) Kind() Kind    { return KindBinary }
func (Gif) Kind() Kind       { return KindGif }
func (Image) Kind() Kind     { return KindImage }
func (Info) Kind() Kind      { return KindInfo }

func (TextFile) sealed()  {}
func (Directory) sealed() {}
func (Error) sealed()     {}
func (UuFile) sealed()    {}
func (Telnet) sealed()    {}
func (Binary) sealed()    {}
func (Gif) sealed()       {}
func (Image) sealed()     {}
func (Info) sealed()      {}

// resourceItem wraps r in the variant for k. k must be a resource kind.
func resourceItem(k Kind, r Resource) Item {
	switch k {
	case KindTextFile:
		return TextFile{r}
	case KindDirectory:
		return Directory{r}
	case KindUuFile:
		return UuFile{r}
	case KindBinary:
		return Binary{r}
	case KindGif:
		return Gif{r}
	case KindImage:
		return Image{r}
	}
	return nil
}

// messageItem wraps m in the variant for k. k must be a message kind.
func messageItem(k Kind, m Message) Item {
	switch k {
	case KindError:
		return Error{m}
	case KindInfo:
		return Info{m}
	}
	return nil
}

// Fields is a flat, untyped view of an item's payload, used where items
// cross a serialization boundary (config, frames, archives). Only the
// fields of the item's family are meaningful.
type Fields struct {
	Selector  string
	Text      string
	Host      string
	Port      int
	LoginName string
}

// FieldsOf flattens the payload of it.
func FieldsOf(it Item) Fields {
	switch v := it.(type) {
	case TextFile:
		return Fields{Selector: v.Selector()}
	case Directory:
		return Fields{Selector: v.Selector()}
	case UuFile:
		return Fields{Selector: v.Selector()}
	case Binary:
		return Fields{Selector: v.Selector()}
	case Gif:
		return Fields{Selector: v.Selector()}
	case Image:
		return Fields{Selector: v.Selector()}
	case Error:
		return Fields{Text: v.Text()}
	case Info:
		return Fields{Text: v.Text()}
	case Telnet:
		return Fields{Host: v.Host(), Port: int(v.Port()), LoginName: v.LoginName()}
	}
	return Fields{}
}

// FromFields builds the variant for k from f, ignoring fields outside k's
// family. Unknown kinds and out-of-range telnet ports are InvalidField
// errors.
func FromFields(k Kind, f Fields) (Item, error) {
	switch k.Family() {
	case FamilyResource:
		return resourceItem(k, NewResource(f.Selector)), nil
	case FamilyMessage:
		return messageItem(k, NewMessage(f.Text)), nil
	case FamilyTelnet:
		link, err := TelnetLinkFromInt(f.Host, f.Port, f.LoginName)
		if err != nil {
			return nil, err
		}
		return Telnet{link}, nil
	}
	return nil, invalidField("kind", "unsupported item kind %s", k)
}
