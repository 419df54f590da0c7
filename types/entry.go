package types

import (
	"fmt"

	"github.com/pithecene-io/gopherline/item"
)

// EntryView is the flat, human-editable form of a listing entry used by
// JSON/YAML output and by `gopherline encode` input.
//
// Only the fields belonging to the kind's payload family are populated.
type EntryView struct {
	Kind      string `json:"kind" yaml:"kind"`
	Char      string `json:"char,omitempty" yaml:"char,omitempty"`
	Display   string `json:"display" yaml:"display"`
	Selector  string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	Host      string `json:"host,omitempty" yaml:"host,omitempty"`
	Port      int    `json:"port,omitempty" yaml:"port,omitempty"`
	LoginName string `json:"login_name,omitempty" yaml:"login_name,omitempty"`
}

// ViewOf builds the view of it with the given display text.
func ViewOf(it item.Item, display string) EntryView {
	f := item.FieldsOf(it)
	return EntryView{
		Kind:      it.Kind().String(),
		Char:      string(rune(it.Kind().Char())),
		Display:   display,
		Selector:  f.Selector,
		Text:      f.Text,
		Host:      f.Host,
		Port:      f.Port,
		LoginName: f.LoginName,
	}
}

// Item rebuilds the typed item. Kind takes precedence over Char; Char alone
// is accepted when Kind is empty. Message kinds fall back to Display when
// Text is empty.
func (v EntryView) Item() (item.Item, error) {
	kind, err := v.kind()
	if err != nil {
		return nil, err
	}
	text := v.Text
	if kind.Family() == item.FamilyMessage && text == "" {
		text = v.Display
	}
	return item.FromFields(kind, item.Fields{
		Selector:  v.Selector,
		Text:      text,
		Host:      v.Host,
		Port:      v.Port,
		LoginName: v.LoginName,
	})
}

func (v EntryView) kind() (item.Kind, error) {
	if v.Kind != "" {
		k, ok := item.ParseKind(v.Kind)
		if !ok {
			return 0, fmt.Errorf("unknown entry kind %q", v.Kind)
		}
		if v.Char != "" && (len(v.Char) != 1 || v.Char[0] != k.Char()) {
			return 0, fmt.Errorf("entry char %q does not match kind %s", v.Char, k)
		}
		return k, nil
	}
	if len(v.Char) != 1 {
		return 0, fmt.Errorf("entry needs a kind or a single-character char, got %q", v.Char)
	}
	k, ok := item.KindFromChar(v.Char[0])
	if !ok {
		return 0, fmt.Errorf("unknown entry char %q", v.Char)
	}
	return k, nil
}
