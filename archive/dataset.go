package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/types"
)

// ErrListingNotFound is returned when no archived listing matches a query.
var ErrListingNotFound = errors.New("archive: listing not found")

// NewReadDataset creates a dataset for reading with the same codec and
// layout as the write path.
func NewReadDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	ds, err := newDataset(dataset, factory)
	if err != nil {
		return nil, wrapStorageError("init", dataset, err)
	}
	return ds, nil
}

// NewReadDatasetFS creates a read dataset with filesystem storage.
func NewReadDatasetFS(dataset, rootPath string) (lode.Dataset, error) {
	return NewReadDataset(dataset, lode.NewFSFactory(rootPath))
}

// NewReadDatasetS3 creates a read dataset with S3 storage.
func NewReadDatasetS3(ctx context.Context, dataset string, s3cfg S3Config) (lode.Dataset, error) {
	factory, err := newS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewReadDataset(dataset, factory)
}

// StoredListing is an archived listing read back from a dataset.
type StoredListing struct {
	Entries []listing.Entry
	// Summary is the raw listing summary record.
	Summary map[string]any
}

// QueryListing finds the most recent snapshot holding listingID and
// rebuilds its entries in line order. An empty listingID matches the latest
// listing of any ID.
func QueryListing(ctx context.Context, ds lode.Dataset, listingID string) (*StoredListing, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, wrapStorageError("read", string(ds.ID())+"/snapshots", err)
	}

	// Iterate in reverse (latest first); snapshots are ordered by creation time.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "listing_id", listingID) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, wrapStorageError("read", fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID), err)
		}
		if stored, ok, err := collectListing(data, listingID); err != nil || ok {
			return stored, err
		}
	}
	return nil, ErrListingNotFound
}

// collectListing extracts the entries and summary of one listing from a
// snapshot's records. Record fields are authoritative over manifest paths.
func collectListing(data []any, listingID string) (*StoredListing, bool, error) {
	type seqEntry struct {
		seq   int
		entry listing.Entry
	}
	var (
		entries []seqEntry
		summary map[string]any
	)
	for _, raw := range data {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id := toString(record["listing_id"])
		if listingID == "" {
			listingID = id
		}
		if id != listingID {
			continue
		}
		switch record["record_kind"] {
		case RecordKindEntry:
			e, seq, err := entryFromRecord(record)
			if err != nil {
				return nil, false, fmt.Errorf("archive: listing %s entry %d: %w", listingID, seq, err)
			}
			entries = append(entries, seqEntry{seq: seq, entry: e})
		case RecordKindListing:
			summary = record
		}
	}
	if summary == nil && len(entries) == 0 {
		return nil, false, nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := &StoredListing{Summary: summary, Entries: make([]listing.Entry, len(entries))}
	for i, se := range entries {
		out.Entries[i] = se.entry
	}
	return out, true, nil
}

// snapshotMatchesFilter checks if a snapshot's file paths match the given
// partition key=value filter.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks for an exact key=value path segment, so
// listing_id=a does not match listing_id=ab.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// ListingSummary rebuilds the summary from the stored summary record. It
// falls back to the entry count when the record is missing.
func (s *StoredListing) ListingSummary() types.ListingSummary {
	sum := types.ListingSummary{Entries: int64(len(s.Entries))}
	if s.Summary == nil {
		return sum
	}
	sum.ListingID = toString(s.Summary["listing_id"])
	sum.Source = toString(s.Summary["source"])
	sum.Entries = int64(toInt(s.Summary["entries"]))
	sum.Dropped = int64(toInt(s.Summary["dropped"]))
	sum.Terminated, _ = s.Summary["terminated"].(bool)
	sum.Duration = time.Duration(toInt(s.Summary["duration_ms"])) * time.Millisecond
	sum.DroppedByKind = toCountMap(s.Summary["dropped_by_kind"])
	return sum
}

// ItemsByKind returns the stored per-kind entry counts.
func (s *StoredListing) ItemsByKind() map[string]int64 {
	m, _ := s.Summary["metrics"].(map[string]any)
	return toCountMap(m["items_by_kind"])
}
