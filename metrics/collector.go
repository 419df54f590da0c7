// Package metrics provides per-listing metrics collection.
//
// The Collector accumulates counters while one listing is decoded or encoded.
// Bad-line policy counters are absorbed from policy.Stats when the listing
// ends rather than recorded live, avoiding double-counting.
package metrics

import (
	"maps"
	"sync"
)

// Snapshot is an immutable point-in-time view of all metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Stream
	LinesRead      int64
	EntriesDecoded int64
	EntriesEncoded int64
	ItemsByKind    map[string]int64

	// Bad lines (absorbed from policy.Stats)
	DecodeErrors  int64
	LinesDropped  int64
	DroppedByKind map[string]int64

	// Frames
	FramesWritten     int64
	FrameDecodeErrors int64

	// Archive
	ArchiveWriteSuccess int64
	ArchiveWriteFailure int64

	// Notifications
	NotifySuccess int64
	NotifyFailure int64

	// Dimensions (informational, set at construction)
	Policy         string
	StorageBackend string
	Source         string
	ListingID      string
}

// Collector accumulates metrics for a single listing.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	linesRead      int64
	entriesDecoded int64
	entriesEncoded int64
	itemsByKind    map[string]int64

	decodeErrors  int64
	linesDropped  int64
	droppedByKind map[string]int64

	framesWritten     int64
	frameDecodeErrors int64

	archiveWriteSuccess int64
	archiveWriteFailure int64

	notifySuccess int64
	notifyFailure int64

	policy         string
	storageBackend string
	source         string
	listingID      string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend is empty when archiving is off.
func NewCollector(policy, storageBackend, source, listingID string) *Collector {
	return &Collector{
		itemsByKind:    make(map[string]int64),
		droppedByKind:  make(map[string]int64),
		policy:         policy,
		storageBackend: storageBackend,
		source:         source,
		listingID:      listingID,
	}
}

// IncLinesRead records one physical line read from a listing stream,
// including blank lines and the terminator.
func (c *Collector) IncLinesRead() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.linesRead++
	c.mu.Unlock()
}

// IncEntryDecoded records a successfully decoded entry of the given kind.
func (c *Collector) IncEntryDecoded(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entriesDecoded++
	c.itemsByKind[kind]++
	c.mu.Unlock()
}

// IncEntryEncoded records an encoded entry.
func (c *Collector) IncEntryEncoded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entriesEncoded++
	c.mu.Unlock()
}

// IncFramesWritten records an interchange frame written.
func (c *Collector) IncFramesWritten() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesWritten++
	c.mu.Unlock()
}

// IncFrameDecodeErrors records an interchange frame that failed to decode.
func (c *Collector) IncFrameDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.frameDecodeErrors++
	c.mu.Unlock()
}

// --- Archive ---
// Archive counters are per-call, not per-record.

// IncArchiveWriteSuccess records a successful archive write call.
func (c *Collector) IncArchiveWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.archiveWriteSuccess++
	c.mu.Unlock()
}

// IncArchiveWriteFailure records a failed archive write call.
func (c *Collector) IncArchiveWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.archiveWriteFailure++
	c.mu.Unlock()
}

// --- Notifications ---

// IncNotifySuccess records a delivered notification.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifySuccess++
	c.mu.Unlock()
}

// IncNotifyFailure records a notification that exhausted its retries.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailure++
	c.mu.Unlock()
}

// AbsorbPolicyStats copies bad-line counters from policy.Stats.
// Called once when the listing ends. Keys are decode error kind names,
// keeping this package free of a dependency on policy.
func (c *Collector) AbsorbPolicyStats(totalErrors, dropped int64, droppedByKind map[string]int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors = totalErrors
	c.linesDropped = dropped
	c.droppedByKind = maps.Clone(droppedByKind)
	if c.droppedByKind == nil {
		c.droppedByKind = make(map[string]int64)
	}
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		LinesRead:      c.linesRead,
		EntriesDecoded: c.entriesDecoded,
		EntriesEncoded: c.entriesEncoded,
		ItemsByKind:    maps.Clone(c.itemsByKind),

		DecodeErrors:  c.decodeErrors,
		LinesDropped:  c.linesDropped,
		DroppedByKind: maps.Clone(c.droppedByKind),

		FramesWritten:     c.framesWritten,
		FrameDecodeErrors: c.frameDecodeErrors,

		ArchiveWriteSuccess: c.archiveWriteSuccess,
		ArchiveWriteFailure: c.archiveWriteFailure,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		Policy:         c.policy,
		StorageBackend: c.storageBackend,
		Source:         c.source,
		ListingID:      c.listingID,
	}
}
