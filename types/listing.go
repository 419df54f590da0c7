package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSource labels listings whose origin was not configured.
const DefaultSource = "local"

// ListingMeta identifies one decoded listing.
type ListingMeta struct {
	// ListingID is a unique identifier for this decode session.
	ListingID string
	// Source is a caller-chosen label for where the listing came from
	// (a server name, a file). Used as an archive partition key.
	Source string
	// StartedAt is when decoding began, in UTC.
	StartedAt time.Time
}

// NewListingMeta creates a ListingMeta with a fresh random ID.
// An empty source becomes DefaultSource.
func NewListingMeta(source string) *ListingMeta {
	if source == "" {
		source = DefaultSource
	}
	return &ListingMeta{
		ListingID: uuid.New().String(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// Validate checks the identity fields. Source must be usable as a path
// segment.
func (m *ListingMeta) Validate() error {
	if m.ListingID == "" {
		return errors.New("listing_id must be non-empty")
	}
	if m.Source == "" {
		return errors.New("source must be non-empty")
	}
	if strings.ContainsAny(m.Source, "/\\=") || m.Source == "." || m.Source == ".." {
		return fmt.Errorf("source %q must not contain path separators or '='", m.Source)
	}
	return nil
}

// ListingSummary is the outcome of reading one listing.
type ListingSummary struct {
	ListingID     string           `json:"listing_id" yaml:"listing_id"`
	Source        string           `json:"source" yaml:"source"`
	Entries       int64            `json:"entries" yaml:"entries"`
	Dropped       int64            `json:"dropped" yaml:"dropped"`
	DroppedByKind map[string]int64 `json:"dropped_by_kind,omitempty" yaml:"dropped_by_kind,omitempty"`
	// Terminated reports whether the listing ended with a "." line.
	Terminated bool          `json:"terminated" yaml:"terminated"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}
