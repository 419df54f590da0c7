package archive

import (
	"encoding/json"
	"time"

	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/metrics"
	"github.com/pithecene-io/gopherline/types"
)

// Record kind discriminator values, also the record_kind partition.
const (
	RecordKindEntry   = "entry"
	RecordKindListing = "listing"
)

// toEntryRecordMap converts one entry to a storage record.
// Lode HiveLayout requires records as map[string]any carrying every
// partition key.
func toEntryRecordMap(seq int, e listing.Entry, cfg Config) map[string]any {
	f := item.FieldsOf(e.Item)
	m := map[string]any{
		"record_kind":      RecordKindEntry,
		"contract_version": types.ContractVersion,
		"seq":              seq,
		"kind":             e.Item.Kind().String(),
		"char":             string(rune(e.Item.Kind().Char())),
		"display":          e.Display,
		"source":           cfg.Source,
		"day":              cfg.Day,
		"listing_id":       cfg.ListingID,
	}
	switch e.Item.Kind().Family() {
	case item.FamilyResource:
		m["selector"] = f.Selector
	case item.FamilyMessage:
		m["text"] = f.Text
	case item.FamilyTelnet:
		m["host"] = f.Host
		m["port"] = f.Port
		m["login_name"] = f.LoginName
	}
	return m
}

// toListingRecordMap converts the listing summary and metrics snapshot to
// a storage record.
func toListingRecordMap(sum types.ListingSummary, snap metrics.Snapshot, completedAt time.Time, cfg Config) map[string]any {
	droppedByKind := make(map[string]int64, len(sum.DroppedByKind))
	for k, v := range sum.DroppedByKind {
		droppedByKind[k] = v
	}
	itemsByKind := make(map[string]int64, len(snap.ItemsByKind))
	for k, v := range snap.ItemsByKind {
		itemsByKind[k] = v
	}
	return map[string]any{
		"record_kind":      RecordKindListing,
		"contract_version": types.ContractVersion,
		"entries":          sum.Entries,
		"dropped":          sum.Dropped,
		"dropped_by_kind":  droppedByKind,
		"terminated":       sum.Terminated,
		"duration_ms":      sum.Duration.Milliseconds(),
		"completed_at":     completedAt.UTC().Format(time.RFC3339Nano),
		"metrics": map[string]any{
			"lines_read":      snap.LinesRead,
			"entries_decoded": snap.EntriesDecoded,
			"decode_errors":   snap.DecodeErrors,
			"items_by_kind":   itemsByKind,
			"policy":          snap.Policy,
		},
		"source":     cfg.Source,
		"day":        cfg.Day,
		"listing_id": cfg.ListingID,
	}
}

// entryFromRecord rebuilds an entry from a stored record. Numbers read back
// from JSONL may arrive as float64 or json.Number.
func entryFromRecord(record map[string]any) (listing.Entry, int, error) {
	v := types.EntryView{
		Kind:      toString(record["kind"]),
		Char:      toString(record["char"]),
		Display:   toString(record["display"]),
		Selector:  toString(record["selector"]),
		Text:      toString(record["text"]),
		Host:      toString(record["host"]),
		Port:      toInt(record["port"]),
		LoginName: toString(record["login_name"]),
	}
	e, err := listing.EntryFromView(v)
	return e, toInt(record["seq"]), err
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

// toCountMap converts a decoded JSON object of counts.
func toCountMap(v any) map[string]int64 {
	raw, ok := v.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]int64, len(raw))
	for k, n := range raw {
		out[k] = int64(toInt(n))
	}
	return out
}
