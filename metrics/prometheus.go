package metrics

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "gopherline"

var (
	descLinesRead = prometheus.NewDesc(
		namespace+"_lines_read_total", "Lines read from listing streams.",
		[]string{"source", "policy"}, nil)
	descEntriesDecoded = prometheus.NewDesc(
		namespace+"_entries_decoded_total", "Entries decoded, by item kind.",
		[]string{"source", "policy", "kind"}, nil)
	descEntriesEncoded = prometheus.NewDesc(
		namespace+"_entries_encoded_total", "Entries encoded to wire lines.",
		[]string{"source"}, nil)
	descDecodeErrors = prometheus.NewDesc(
		namespace+"_decode_errors_total", "Lines that failed to decode.",
		[]string{"source", "policy"}, nil)
	descLinesDropped = prometheus.NewDesc(
		namespace+"_lines_dropped_total", "Bad lines dropped by policy, by decode error kind.",
		[]string{"source", "policy", "reason"}, nil)
	descFrames = prometheus.NewDesc(
		namespace+"_frames_total", "Interchange frames, by outcome.",
		[]string{"source", "outcome"}, nil)
	descArchiveWrites = prometheus.NewDesc(
		namespace+"_archive_writes_total", "Archive write calls, by outcome.",
		[]string{"source", "backend", "outcome"}, nil)
	descNotify = prometheus.NewDesc(
		namespace+"_notifications_total", "Listing notifications, by outcome.",
		[]string{"source", "outcome"}, nil)
)

var allDescs = []*prometheus.Desc{
	descLinesRead, descEntriesDecoded, descEntriesEncoded, descDecodeErrors,
	descLinesDropped, descFrames, descArchiveWrites, descNotify,
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range allDescs {
		ch <- d
	}
}

// Collect implements prometheus.Collector from a Snapshot.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()
	counter := func(desc *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}

	counter(descLinesRead, s.LinesRead, s.Source, s.Policy)
	for _, kind := range sortedKeys(s.ItemsByKind) {
		counter(descEntriesDecoded, s.ItemsByKind[kind], s.Source, s.Policy, kind)
	}
	counter(descEntriesEncoded, s.EntriesEncoded, s.Source)
	counter(descDecodeErrors, s.DecodeErrors, s.Source, s.Policy)
	for _, reason := range sortedKeys(s.DroppedByKind) {
		counter(descLinesDropped, s.DroppedByKind[reason], s.Source, s.Policy, reason)
	}
	counter(descFrames, s.FramesWritten, s.Source, "written")
	counter(descFrames, s.FrameDecodeErrors, s.Source, "decode_error")
	if s.StorageBackend != "" {
		counter(descArchiveWrites, s.ArchiveWriteSuccess, s.Source, s.StorageBackend, "success")
		counter(descArchiveWrites, s.ArchiveWriteFailure, s.Source, s.StorageBackend, "failure")
	}
	counter(descNotify, s.NotifySuccess, s.Source, "success")
	counter(descNotify, s.NotifyFailure, s.Source, "failure")
}

// WriteText writes c in the Prometheus text exposition format, suitable for
// the node_exporter textfile collector.
func WriteText(w io.Writer, c *Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
