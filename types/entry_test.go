package types //nolint:revive // types is a valid package name

import (
	"testing"

	"github.com/pithecene-io/gopherline/item"
)

func TestEntryView_RoundTrip(t *testing.T) {
	items := []item.Item{
		item.Directory{Resource: item.NewResource("/docs")},
		item.Info{Message: item.NewMessage("hello")},
		item.Telnet{TelnetLink: item.NewTelnetLink("bbs.example", 23, "guest")},
	}
	for _, it := range items {
		v := ViewOf(it, "Display")
		got, err := v.Item()
		if err != nil {
			t.Fatalf("Item() failed for %+v: %v", v, err)
		}
		if got != it {
			t.Errorf("round trip = %#v, want %#v", got, it)
		}
	}
}

func TestEntryView_Kind(t *testing.T) {
	tests := []struct {
		name    string
		view    EntryView
		want    item.Item
		wantErr bool
	}{
		{
			name: "kind name",
			view: EntryView{Kind: "gif", Selector: "/a.gif"},
			want: item.Gif{Resource: item.NewResource("/a.gif")},
		},
		{
			name: "char only",
			view: EntryView{Char: "I", Selector: "/a.png"},
			want: item.Image{Resource: item.NewResource("/a.png")},
		},
		{
			name: "message falls back to display",
			view: EntryView{Kind: "info", Display: "Welcome"},
			want: item.Info{Message: item.NewMessage("Welcome")},
		},
		{name: "unknown kind", view: EntryView{Kind: "search"}, wantErr: true},
		{name: "unknown char", view: EntryView{Char: "7"}, wantErr: true},
		{name: "char mismatch", view: EntryView{Kind: "gif", Char: "I"}, wantErr: true},
		{name: "no kind", view: EntryView{}, wantErr: true},
		{name: "telnet port out of range", view: EntryView{Kind: "telnet", Host: "h", Port: 70000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.view.Item()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Item() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Item() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
