package listing

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pithecene-io/gopherline/item"
	"github.com/pithecene-io/gopherline/metrics"
)

func TestWriter_EmitsOneTerminator(t *testing.T) {
	var buf bytes.Buffer
	collector := metrics.NewCollector("strict", "", "test", "listing-1")
	w := NewWriter(&buf, item.Encoder{Origin: item.Origin{Host: "gopher.example", Port: 70}}, WithCollector(collector))

	entries := []Entry{
		{Item: item.Info{Message: item.NewMessage("Hello")}, Display: "Hello"},
		{Item: item.Directory{Resource: item.NewResource("/docs")}, Display: "Docs"},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	want := "iHello\t\t\t\r\n" +
		"1Docs\t/docs\tgopher.example\t70\r\n" +
		".\r\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}
	if got := collector.Snapshot().EntriesEncoded; got != 2 {
		t.Errorf("EntriesEncoded = %d, want 2", got)
	}

	if err := w.Write(entries[0]); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Write after Close = %v, want ErrWriterClosed", err)
	}
}

func TestWriter_RejectsInvalidField(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, item.Encoder{})

	err := w.Write(Entry{Item: item.TextFile{Resource: item.NewResource("/a\tb")}, Display: "A"})
	if !errors.Is(err, item.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if buf.String() != ".\r\n" {
		t.Errorf("output = %q, want only the terminator", buf.String())
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	entries := []Entry{
		{Item: item.Info{Message: item.NewMessage("Welcome")}, Display: "Welcome"},
		{Item: item.Error{Message: item.NewMessage("Missing")}, Display: "Missing"},
		{Item: item.TextFile{Resource: item.NewResource("/a.txt")}, Display: "A"},
		{Item: item.Directory{Resource: item.NewResource("")}, Display: "Root"},
		{Item: item.UuFile{Resource: item.NewResource("/u")}, Display: "U"},
		{Item: item.Telnet{TelnetLink: item.NewTelnetLink("bbs.example", 23, "guest")}, Display: "BBS"},
		{Item: item.Binary{Resource: item.NewResource("/b")}, Display: "B"},
		{Item: item.Gif{Resource: item.NewResource("/g.gif")}, Display: "G"},
		{Item: item.Image{Resource: item.NewResource("/i.png")}, Display: "I"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, item.Encoder{Origin: item.Origin{Host: "h", Port: 70}})
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r := NewReader(strings.NewReader(buf.String()))
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !r.Terminated() {
		t.Error("round-tripped listing not terminated")
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %#v, want %#v", i, got[i], entries[i])
		}
	}
}

func TestWriter_FlushKeepsAcceptedLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, item.Encoder{})

	if err := w.Write(Entry{Item: item.Info{Message: item.NewMessage("ok")}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	bad := Entry{Item: item.TextFile{Resource: item.NewResource("/a\tb")}, Display: "bad"}
	if err := w.Write(bad); err == nil {
		t.Fatal("expected encode error for tab in selector")
	}
	if buf.Len() != 0 {
		t.Fatalf("lines reached the writer before Flush: %q", buf.String())
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if want := "iok\t\t\t\r\n"; buf.String() != want {
		t.Errorf("flushed %q, want %q (no terminator)", buf.String(), want)
	}
}
