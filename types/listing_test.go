package types //nolint:revive // types is a valid package name

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewListingMeta(t *testing.T) {
	m := NewListingMeta("floodgap")
	if _, err := uuid.Parse(m.ListingID); err != nil {
		t.Errorf("ListingID %q is not a UUID: %v", m.ListingID, err)
	}
	if m.Source != "floodgap" {
		t.Errorf("Source = %q, want floodgap", m.Source)
	}
	if m.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if d := NewListingMeta(""); d.Source != DefaultSource {
		t.Errorf("empty source = %q, want %q", d.Source, DefaultSource)
	}
	if NewListingMeta("a").ListingID == NewListingMeta("a").ListingID {
		t.Error("listing IDs should be unique")
	}
}

func TestListingMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    ListingMeta
		wantErr bool
	}{
		{"empty listing_id", ListingMeta{Source: "s"}, true},
		{"empty source", ListingMeta{ListingID: "id"}, true},
		{"slash in source", ListingMeta{ListingID: "id", Source: "a/b"}, true},
		{"equals in source", ListingMeta{ListingID: "id", Source: "a=b"}, true},
		{"dot-dot source", ListingMeta{ListingID: "id", Source: ".."}, true},
		{"valid", ListingMeta{ListingID: "id", Source: "gopher.floodgap.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
