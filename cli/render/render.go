// Package render writes gopherline CLI output.
//
// Format selection:
//   - --format always wins; invalid formats are errors
//   - otherwise table on a TTY, json elsewhere
//
// The wire format re-encodes a listing as canonical RFC 1436 lines and
// applies to listings only.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/gopherline/cli/tui"
	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/types"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatWire  Format = "wire"
)

// ParseFormat parses a format name. Empty returns "" so the caller can
// apply the TTY default.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTable, FormatYAML, FormatWire, "":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, yaml, or wire)", s)
	}
}

// Renderer writes output in one format.
type Renderer struct {
	format  Format
	out     io.Writer
	encoder item.Encoder
}

// NewRenderer creates a renderer writing to out, defaulting the format by
// whether out is a terminal. enc is used by the wire format.
func NewRenderer(format string, out io.Writer, enc item.Encoder) (*Renderer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == "" {
		f = FormatJSON
		if isTTY(out) {
			f = FormatTable
		}
	}
	return &Renderer{format: f, out: out, encoder: enc}, nil
}

// NewRendererWithWriter creates a renderer with a fixed format and writer.
func NewRendererWithWriter(format Format, out io.Writer, enc item.Encoder) *Renderer {
	return &Renderer{format: format, out: out, encoder: enc}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

// ListingDocument is the json and yaml shape of a decoded listing.
type ListingDocument struct {
	Summary types.ListingSummary `json:"summary" yaml:"summary"`
	Entries []types.EntryView    `json:"entries" yaml:"entries"`
}

// NewListingDocument flattens entries for structured output.
func NewListingDocument(entries []listing.Entry, sum types.ListingSummary) ListingDocument {
	views := make([]types.EntryView, len(entries))
	for i, e := range entries {
		views[i] = e.View()
	}
	return ListingDocument{Summary: sum, Entries: views}
}

// RenderListing writes a decoded listing.
func (r *Renderer) RenderListing(entries []listing.Entry, sum types.ListingSummary) error {
	switch r.format {
	case FormatWire:
		return r.renderWire(entries)
	case FormatTable:
		return r.renderListingTable(entries, sum)
	default:
		return r.Render(NewListingDocument(entries, sum))
	}
}

// Render writes arbitrary data as json, yaml or a key/value table.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return r.renderKeyValueTable(data)
	case FormatWire:
		return fmt.Errorf("format %s only applies to listings", FormatWire)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderTUI runs an interactive view. TUI is opt-in and read-only.
func (r *Renderer) RenderTUI(view string, data *tui.ListingData) error {
	if !tui.IsTUISupported(view) {
		return fmt.Errorf("--tui is not supported for %s", view)
	}
	return tui.Run(view, data)
}

func (r *Renderer) renderWire(entries []listing.Entry) error {
	w := listing.NewWriter(r.out, r.encoder)
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return w.Close()
}

func (r *Renderer) renderListingTable(entries []listing.Entry, sum types.ListingSummary) error {
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "(no entries)")
	} else {
		w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tKIND\tDISPLAY\tTARGET")
		for i, e := range entries {
			v := e.View()
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, v.Kind, v.Display, tui.Target(v))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	terminated := "yes"
	if !sum.Terminated {
		terminated = "no"
	}
	_, err := fmt.Fprintf(r.out, "\nentries: %d  dropped: %d  terminated: %s\n", sum.Entries, sum.Dropped, terminated)
	return err
}

// renderKeyValueTable prints a struct or map as aligned "key: value" rows.
func (r *Renderer) renderKeyValueTable(data any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			fmt.Fprintf(w, "%s:\t%s\n", fieldName(t.Field(i)), formatValue(v.Field(i)))
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		vals := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			vals[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s:\t%s\n", k, formatValue(vals[k]))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}
	return w.Flush()
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(f.Name)
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
