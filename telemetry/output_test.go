package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Nil manager methods are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := uint64(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 10, Blobs: int(i)}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{AvgTickDuration: time.Millisecond}, i*10); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"telemetry.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Errorf("%s has %d lines, want header plus 3 rows", name, len(lines))
			continue
		}
		if !strings.HasPrefix(lines[0], "window_end,") {
			t.Errorf("%s header = %q", name, lines[0])
		}
	}
}

func TestOutputManagerRunInfo(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	info := RunInfo{RunID: "abc", Seed: 42, Ticks: 100, Headless: true}
	if err := om.WriteRunInfo(info); err != nil {
		t.Fatalf("WriteRunInfo: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	if err != nil {
		t.Fatalf("reading run.yaml: %v", err)
	}
	var got RunInfo
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("parsing run.yaml: %v", err)
	}
	if got.RunID != "abc" || got.Seed != 42 || got.Ticks != 100 || !got.Headless {
		t.Errorf("run info = %+v", got)
	}
}

func TestOutputManagerWritesBookmarks(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	for _, b := range []Bookmark{
		{Type: BookmarkPopulationCrash, Tick: 600, Description: "crash"},
		{Type: BookmarkKillSurge, Tick: 1200, Description: "surge"},
	} {
		if err := om.WriteBookmark(b); err != nil {
			t.Fatalf("WriteBookmark: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatalf("reading bookmarks.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("bookmarks.csv has %d lines, want 3", len(lines))
	}
	if lines[0] != "type,tick,description" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "population_crash,600,crash" {
		t.Errorf("first row = %q", lines[1])
	}
}
