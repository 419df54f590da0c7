package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gopherline/archive"
	"github.com/pithecene-io/gopherline/cli/render"
	"github.com/pithecene-io/gopherline/ipc"
)

const sampleListing = "iWelcome to the hole\t\terror.host\t1\r\n" +
	"1Software\t/software\tgopher.example\t70\r\n" +
	"0About\t/about.txt\tgopher.example\t70\r\n" +
	"8BBS\tguest\tbbs.example\t23\r\n" +
	".\r\n"

// newTestApp wires the commands with ExitErrHandler suppressed so errors
// are returned instead of calling os.Exit.
func newTestApp(stdin string) (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := cli.NewApp()
	app.Name = "gopherline"
	app.Commands = []*cli.Command{DecodeCommand(), EncodeCommand(), ShowCommand(), VersionCommand("test")}
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, &stdout, &stderr
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return exitSuccess
	}
	var ec cli.ExitCoder
	if !errors.As(err, &ec) {
		t.Fatalf("error is not a cli.ExitCoder: %v", err)
	}
	return ec.ExitCode()
}

func TestDecode_JSON(t *testing.T) {
	app, stdout, _ := newTestApp(sampleListing)
	if err := app.Run([]string{"gopherline", "decode", "--format", "json", "--source", "floodgap"}); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	var doc render.ListingDocument
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not a listing document: %v\n%s", err, stdout.String())
	}
	if doc.Summary.Entries != 4 || !doc.Summary.Terminated {
		t.Errorf("summary = %+v", doc.Summary)
	}
	if doc.Summary.Source != "floodgap" || doc.Summary.ListingID == "" {
		t.Errorf("summary identity = %q/%q", doc.Summary.Source, doc.Summary.ListingID)
	}
	wantKinds := []string{"info", "directory", "text_file", "telnet"}
	for i, want := range wantKinds {
		if doc.Entries[i].Kind != want {
			t.Errorf("entry %d kind = %q, want %q", i, doc.Entries[i].Kind, want)
		}
	}
	if tel := doc.Entries[3]; tel.Host != "bbs.example" || tel.Port != 23 || tel.LoginName != "guest" {
		t.Errorf("telnet entry = %+v", tel)
	}
}

func TestDecode_StrictBadLine(t *testing.T) {
	input := "1Home\t/\r\nZBogus\t/x\th\t70\r\n.\r\n"
	app, stdout, stderr := newTestApp(input)
	err := app.Run([]string{"gopherline", "decode", "--format", "json"})
	if got := exitCode(t, err); got != exitDecodeFailure {
		t.Fatalf("exit code = %d, want %d (err: %v)", got, exitDecodeFailure, err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the bad line, got: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("strict failure should not write output, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "bad listing line") {
		t.Errorf("expected a bad line warning in logs, got %q", stderr.String())
	}
}

func TestDecode_SkipPolicy(t *testing.T) {
	input := "1Home\t/\r\nZBogus\t/x\th\t70\r\n\r\n0Readme\t/README\r\n"
	for _, workers := range []string{"1", "4"} {
		t.Run("workers="+workers, func(t *testing.T) {
			app, stdout, _ := newTestApp(input)
			err := app.Run([]string{"gopherline", "decode", "--format", "json", "--policy", "skip", "--workers", workers})
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			var doc render.ListingDocument
			if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
				t.Fatal(err)
			}
			if doc.Summary.Entries != 2 || doc.Summary.Dropped != 2 {
				t.Errorf("entries/dropped = %d/%d, want 2/2", doc.Summary.Entries, doc.Summary.Dropped)
			}
			if doc.Summary.Terminated {
				t.Error("listing without '.' should not be terminated")
			}
			if doc.Summary.DroppedByKind["unknown_item_type"] != 1 || doc.Summary.DroppedByKind["empty_input"] != 1 {
				t.Errorf("dropped_by_kind = %v", doc.Summary.DroppedByKind)
			}
		})
	}
}

func TestDecode_WireUsesConfigOrigin(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gopherline.yaml")
	if err := os.WriteFile(cfgPath, []byte("origin:\n  host: mirror.example\n  port: 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, stdout, _ := newTestApp("1Software\t/software\tgopher.example\t70\r\n.\r\n")
	if err := app.Run([]string{"gopherline", "decode", "--config", cfgPath, "--format", "wire"}); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := "1Software\t/software\tmirror.example\t7070\r\n.\r\n"
	if stdout.String() != want {
		t.Errorf("wire output = %q, want %q", stdout.String(), want)
	}
}

func TestDecode_Frames(t *testing.T) {
	app, stdout, _ := newTestApp(sampleListing)
	if err := app.Run([]string{"gopherline", "decode", "--frames"}); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	entries, end, err := ipc.ReadListing(stdout)
	if err != nil {
		t.Fatalf("ReadListing: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d entry frames, want 4", len(entries))
	}
	if end == nil || end.Entries != 4 || !end.Terminated {
		t.Errorf("end frame = %+v", end)
	}
}

func TestDecode_ArchiveFS(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	app, _, _ := newTestApp(sampleListing)
	err := app.Run([]string{"gopherline", "decode", "--format", "json",
		"--source", "floodgap",
		"--archive", "--storage-path", dir,
		"--metrics-file", metricsPath,
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	ds, err := archive.NewReadDatasetFS(archive.DefaultDataset, dir)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := archive.QueryListing(t.Context(), ds, "")
	if err != nil {
		t.Fatalf("QueryListing: %v", err)
	}
	if len(stored.Entries) != 4 {
		t.Errorf("archived %d entries, want 4", len(stored.Entries))
	}
	if stored.Summary["source"] != "floodgap" {
		t.Errorf("summary source = %v", stored.Summary["source"])
	}

	text, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(text), "gopherline_archive_writes_total") {
		t.Errorf("metrics file missing archive counter:\n%s", text)
	}
}

func TestDecode_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad policy", []string{"--policy", "lenient"}, "lenient"},
		{"bad format", []string{"--format", "xml"}, "invalid format"},
		{"bad source", []string{"--source", "a/b"}, "invalid --source"},
		{"bad log level", []string{"--log-level", "loud"}, "loud"},
		{"archive without path", []string{"--archive"}, "--storage-path is required"},
		{"notify without adapter", []string{"--notify"}, "--adapter is required"},
		{"tui with frames", []string{"--tui", "--frames"}, "--tui cannot be combined"},
		{"missing input", []string{"--input", "/nonexistent/listing.txt"}, "open input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp(sampleListing)
			err := app.Run(append([]string{"gopherline", "decode"}, tt.args...))
			if got := exitCode(t, err); got != exitUsage {
				t.Fatalf("exit code = %d, want %d (err: %v)", got, exitUsage, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_NotifyFailureIsNotFatal(t *testing.T) {
	app, stdout, stderr := newTestApp(sampleListing)
	err := app.Run([]string{"gopherline", "decode", "--format", "json",
		"--notify", "--adapter", "webhook",
		"--adapter-url", "http://127.0.0.1:1/hook",
		"--adapter-retries", "0",
		"--adapter-timeout", "200ms",
	})
	if err != nil {
		t.Fatalf("notification failure should not fail decode: %v", err)
	}
	if stdout.Len() == 0 {
		t.Error("expected listing output")
	}
	if !strings.Contains(stderr.String(), "notification failed") {
		t.Errorf("expected notification warning, got %q", stderr.String())
	}
}

func TestDecode_MetricsFileFailureIsNotFatal(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "missing", "metrics.txt")
	app, stdout, stderr := newTestApp(sampleListing)
	err := app.Run([]string{"gopherline", "decode", "--format", "json",
		"--metrics-file", metricsPath,
	})
	if err != nil {
		t.Fatalf("metrics file failure should not fail decode: %v", err)
	}
	if stdout.Len() == 0 {
		t.Error("expected listing output")
	}
	want := "metrics file " + metricsPath + " not written"
	if !strings.Contains(stderr.String(), want) {
		t.Errorf("expected %q in logs, got %q", want, stderr.String())
	}
	if !strings.Contains(stderr.String(), `"level":"warn"`) {
		t.Errorf("expected a warn level entry, got %q", stderr.String())
	}
}

func TestVersion(t *testing.T) {
	app, stdout, _ := newTestApp("")
	if err := app.Run([]string{"gopherline", "version", "--format", "json"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var resp VersionResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Commit != "test" || resp.Version == "" {
		t.Errorf("version response = %+v", resp)
	}

	app, _, _ = newTestApp("")
	err := app.Run([]string{"gopherline", "version", "--tui"})
	if got := exitCode(t, err); got != exitUsage {
		t.Errorf("version --tui exit code = %d, want %d", got, exitUsage)
	}
}

func TestDecode_CancelWhileInputBlocks(t *testing.T) {
	for _, workers := range []string{"1", "4"} {
		t.Run("workers="+workers, func(t *testing.T) {
			pr, pw := io.Pipe()
			defer pw.Close()
			// One line arrives, then the writer goes quiet.
			go func() { _, _ = io.WriteString(pw, "1Home\t/\r\n") }()

			app, stdout, _ := newTestApp("")
			app.Reader = pr

			ctx, cancel := context.WithCancel(t.Context())
			done := make(chan error, 1)
			go func() {
				done <- app.RunContext(ctx, []string{"gopherline", "decode", "--format", "json", "--workers", workers})
			}()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				if got := exitCode(t, err); got != exitUsage {
					t.Fatalf("exit code = %d, want %d (err: %v)", got, exitUsage, err)
				}
				if !strings.Contains(err.Error(), "interrupted") {
					t.Errorf("error = %v, want read interrupted", err)
				}
				if stdout.Len() != 0 {
					t.Errorf("interrupted decode wrote output: %q", stdout.String())
				}
			case <-time.After(5 * time.Second):
				t.Fatal("decode did not return after its context was cancelled")
			}
		})
	}
}
