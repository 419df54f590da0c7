// Package policy decides what happens to listing lines that fail to decode.
//
// A policy either aborts the listing (strict) or drops the line and counts
// it (skip). Only decode errors are eligible for dropping; any other error
// offered to a policy is returned unchanged.
package policy

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/pithecene-io/gopherline/item"
)

// Policy names accepted by New.
const (
	NameStrict = "strict"
	NameSkip   = "skip"
)

// Policy handles bad listing lines.
type Policy interface {
	// HandleDecodeError is called for each line that failed to decode.
	// lineNo is 1-based. A nil return drops the line and continues; a
	// non-nil return aborts the listing.
	HandleDecodeError(lineNo int, line string, err error) error

	// Stats returns an atomic snapshot of policy counters.
	Stats() Stats

	// Name returns the policy name as accepted by New.
	Name() string
}

// Stats represents bad-line counters.
type Stats struct {
	// TotalErrors is the number of bad lines offered to the policy.
	TotalErrors int64
	// Dropped is the number of bad lines dropped.
	Dropped int64
	// DroppedByKind maps decode error kind names to drop counts.
	DroppedByKind map[string]int64
}

// New resolves a policy by name. The empty name is strict.
func New(name string) (Policy, error) {
	switch name {
	case "", NameStrict:
		return NewStrictPolicy(), nil
	case NameSkip:
		return NewSkipPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (must be one of %v)", name, Names())
	}
}

// Names returns the accepted policy names, sorted.
func Names() []string {
	names := []string{NameStrict, NameSkip}
	sort.Strings(names)
	return names
}

// statsRecorder is the shared, mutex-guarded counter set.
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{
		stats: Stats{DroppedByKind: make(map[string]int64)},
	}
}

func (r *statsRecorder) incTotalErrors() {
	r.mu.Lock()
	r.stats.TotalErrors++
	r.mu.Unlock()
}

func (r *statsRecorder) incDropped(kind string) {
	r.mu.Lock()
	r.stats.Dropped++
	r.stats.DroppedByKind[kind]++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.DroppedByKind = maps.Clone(r.stats.DroppedByKind)
	return s
}

// decodeKind returns the decode error kind name of err, or false if err is
// not a line decode error.
func decodeKind(err error) (string, bool) {
	var de *item.DecodeError
	if !errors.As(err, &de) {
		return "", false
	}
	return de.Kind.String(), true
}
