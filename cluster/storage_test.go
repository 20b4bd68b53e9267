package cluster

import (
	"path/filepath"
	"testing"

	"github.com/stapply-ai/jobmap/record"
)

func snapshotRecords() []record.JobRecord {
	salMin := "150000"
	summary := "$150k+ equity"
	return []record.JobRecord{
		{
			URL: "https://x.com/1", Title: "Engineer", Company: "OpenAI",
			Location: "San Francisco, CA", ATSID: "gh-1", ID: "abc123",
			Lat: 37.7749, Lng: -122.4194,
			SalaryMin: &salMin, SalarySummary: &summary,
			SalaryCurrency: "USD", SalaryPeriod: "YEAR",
			CompanySlug: "openai", ValueSlug: "engineer-nk2mb4",
		},
		{
			URL: "https://x.com/2", Title: "Designer", Company: "Figma",
			Lat: 40.7128, Lng: -74.0060,
			SalaryCurrency: "USD", SalaryPeriod: "YEAR",
			CompanySlug: "figma", ValueSlug: "designer-0",
		},
	}
}

func requireRecordsEqual(t *testing.T, want, got []record.JobRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.URL != w.URL || g.Title != w.Title || g.Lat != w.Lat || g.Lng != w.Lng {
			t.Errorf("Record %d mismatch: want %+v, got %+v", i, w, g)
		}
		if (w.SalaryMin == nil) != (g.SalaryMin == nil) {
			t.Errorf("Record %d salary_min presence mismatch", i)
		} else if w.SalaryMin != nil && *w.SalaryMin != *g.SalaryMin {
			t.Errorf("Record %d salary_min: want %q, got %q", i, *w.SalaryMin, *g.SalaryMin)
		}
		if g.ValueSlug != w.ValueSlug {
			t.Errorf("Record %d slug: want %q, got %q", i, w.ValueSlug, g.ValueSlug)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	records := snapshotRecords()
	path := filepath.Join(t.TempDir(), "jobs.zst")

	if err := SaveCompressed(path, records); err != nil {
		t.Fatalf("SaveCompressed failed: %v", err)
	}
	loaded, err := LoadCompressed(path)
	if err != nil {
		t.Fatalf("LoadCompressed failed: %v", err)
	}
	requireRecordsEqual(t, records, loaded)
}

func TestSnapshotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zst")
	if err := SaveCompressed(path, nil); err != nil {
		t.Fatalf("SaveCompressed failed: %v", err)
	}
	loaded, err := LoadCompressed(path)
	if err != nil {
		t.Fatalf("LoadCompressed failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty snapshot, got %d records", len(loaded))
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	if _, err := LoadCompressed(filepath.Join(t.TempDir(), "missing.zst")); err == nil {
		t.Error("Expected error for missing snapshot file")
	}
}

func TestMMapRoundTrip(t *testing.T) {
	records := snapshotRecords()
	path := filepath.Join(t.TempDir(), "jobs.mmap")

	if err := SaveMMap(path, records); err != nil {
		t.Fatalf("SaveMMap failed: %v", err)
	}
	loaded, err := LoadMMap(path)
	if err != nil {
		t.Fatalf("LoadMMap failed: %v", err)
	}
	requireRecordsEqual(t, records, loaded)
}
