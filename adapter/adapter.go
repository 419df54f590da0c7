// Package adapter defines the notification boundary for decoded listings.
//
// Adapters tell downstream systems that a listing finished decoding and,
// when archived, where it was stored. The CLI owns adapter lifecycle;
// users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/gopherline/types"
)

// EventTypeListingDecoded is the only event type adapters publish.
const EventTypeListingDecoded = "listing_decoded"

// ListingDecodedEvent is the payload published when a listing finishes.
type ListingDecodedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"`
	ListingID       string `json:"listing_id"`
	Source          string `json:"source"`
	Entries         int64  `json:"entries"`
	Dropped         int64  `json:"dropped"`
	Terminated      bool   `json:"terminated"`
	StoragePath     string `json:"storage_path,omitempty"`
	Timestamp       string `json:"timestamp"` // RFC 3339, UTC
	DurationMs      int64  `json:"duration_ms"`
}

// NewListingDecodedEvent builds the event for a finished listing.
// storagePath is empty when the listing was not archived.
func NewListingDecodedEvent(sum types.ListingSummary, storagePath string, now time.Time) *ListingDecodedEvent {
	return &ListingDecodedEvent{
		ContractVersion: types.ContractVersion,
		EventType:       EventTypeListingDecoded,
		ListingID:       sum.ListingID,
		Source:          sum.Source,
		Entries:         sum.Entries,
		Dropped:         sum.Dropped,
		Terminated:      sum.Terminated,
		StoragePath:     storagePath,
		Timestamp:       now.UTC().Format(time.RFC3339),
		DurationMs:      sum.Duration.Milliseconds(),
	}
}

// Adapter publishes listing events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ListingDecodedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the exponential delay before retry attempt n (n >= 1):
// 500ms, 1s, 2s, ...
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
}
