package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stapply-ai/jobmap/cluster"
)

// SnapshotInfo describes one saved dataset snapshot on disk.
type SnapshotInfo struct {
	ID         string    `json:"id"`
	NumRecords int       `json:"numRecords"`
	Timestamp  time.Time `json:"timestamp"`
	FileSize   int64     `json:"fileSize"`
}

const snapshotTimeLayout = "20060102-150405"

// snapshotFilename builds "jobs-{n}p-{timestamp}-{id}.zst" under dir.
func snapshotFilename(dir string, numRecords int) string {
	timestamp := time.Now().Format(snapshotTimeLayout)
	id := uuid.New().String()[:8]
	return filepath.Join(dir, fmt.Sprintf("jobs-%dp-%s-%s.zst", numRecords, timestamp, id))
}

// parseSnapshotName recovers SnapshotInfo fields from a snapshot filename.
func parseSnapshotName(name string) (id string, numRecords int, ts time.Time, ok bool) {
	name = strings.TrimSuffix(name, ".zst")
	parts := strings.Split(name, "-")
	// jobs-{n}p-{yyyymmdd}-{hhmmss}-{id}
	if len(parts) != 5 || parts[0] != "jobs" {
		return "", 0, time.Time{}, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(parts[1], "p"))
	if err != nil {
		return "", 0, time.Time{}, false
	}
	t, err := time.Parse(snapshotTimeLayout, parts[2]+"-"+parts[3])
	if err != nil {
		return "", 0, time.Time{}, false
	}
	return parts[4], n, t, true
}

// SaveSnapshot writes the current dataset to the snapshot directory and
// returns its info. Errors when no dataset has been loaded yet.
func (p *Pipeline) SaveSnapshot() (*SnapshotInfo, error) {
	ds := p.Dataset()
	if ds == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}

	if err := os.MkdirAll(p.cfg.SnapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	path := snapshotFilename(p.cfg.SnapshotDir, len(ds.Records))
	if err := cluster.SaveCompressed(path, ds.Records); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	id, n, ts, _ := parseSnapshotName(filepath.Base(path))
	return &SnapshotInfo{ID: id, NumRecords: n, Timestamp: ts, FileSize: info.Size()}, nil
}

// ListSnapshots returns available snapshots, newest first.
func (p *Pipeline) ListSnapshots() ([]SnapshotInfo, error) {
	files, err := os.ReadDir(p.cfg.SnapshotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotInfo{}, nil
		}
		return nil, err
	}

	snapshots := make([]SnapshotInfo, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".zst" {
			continue
		}
		id, n, ts, ok := parseSnapshotName(file.Name())
		if !ok {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, SnapshotInfo{
			ID:         id,
			NumRecords: n,
			Timestamp:  ts,
			FileSize:   info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// LoadSnapshot replaces the current dataset with a saved snapshot by ID.
func (p *Pipeline) LoadSnapshot(id string) (*SnapshotInfo, error) {
	files, err := os.ReadDir(p.cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if !strings.Contains(file.Name(), id) || filepath.Ext(file.Name()) != ".zst" {
			continue
		}
		snapID, n, ts, ok := parseSnapshotName(file.Name())
		if !ok || snapID != id {
			continue
		}

		path := filepath.Join(p.cfg.SnapshotDir, file.Name())
		records, err := cluster.LoadCompressed(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		p.swap(records)

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		return &SnapshotInfo{ID: snapID, NumRecords: n, Timestamp: ts, FileSize: info.Size()}, nil
	}

	return nil, fmt.Errorf("snapshot with ID %s not found", id)
}
