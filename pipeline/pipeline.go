// Package pipeline runs the ingestion flow end to end: CSV snapshot in,
// deduplicated identified records and a queryable marker index out. The
// dataset is immutable once built and replaced wholesale on refresh.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stapply-ai/jobmap/cluster"
	"github.com/stapply-ai/jobmap/config"
	"github.com/stapply-ai/jobmap/geocache"
	"github.com/stapply-ai/jobmap/record"
	"github.com/stapply-ai/jobmap/slug"
)

// Dataset is one immutable ingestion result.
type Dataset struct {
	Records  []record.JobRecord
	Tree     *cluster.MarkerTree
	LoadedAt time.Time
}

// Pipeline owns the current dataset and its refresh lifecycle.
type Pipeline struct {
	cfg   *config.Config
	cache geocache.Cache

	mu      sync.RWMutex
	dataset *Dataset

	cron *cron.Cron
}

// New constructs a Pipeline. cache may be nil when no geocoding cache is
// configured.
func New(cfg *config.Config, cache geocache.Cache) *Pipeline {
	return &Pipeline{cfg: cfg, cache: cache}
}

// ClusterOptions derives clustering options from config.
func (p *Pipeline) ClusterOptions() cluster.Options {
	return cluster.DefaultOptions(cluster.Options{
		BaseRadiusKm:  p.cfg.BaseRadiusKm,
		NoClusterZoom: p.cfg.NoClusterZoom,
	})
}

// Refresh re-reads the CSV snapshot and swaps in a new dataset. On source
// failure the previous dataset stays in place and the error is returned;
// there are no partial results.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := time.Now()

	rows, err := record.ReadCSVFile(p.cfg.JobsCSVPath)
	if err != nil {
		return err
	}

	if filled := geocache.FillCoordinates(ctx, p.cache, rows); filled > 0 {
		log.Printf("[pipeline] Filled coordinates for %d rows from geocache", filled)
	}

	records := record.Dedup(record.Normalize(rows))
	p.swap(records)

	log.Printf("[pipeline] Refreshed dataset: %d rows -> %d records in %v",
		len(rows), len(records), time.Since(start))
	return nil
}

// swap installs a freshly built dataset.
func (p *Pipeline) swap(records []record.JobRecord) {
	markers := cluster.MarkersFromRecords(records)
	ds := &Dataset{
		Records:  records,
		Tree:     cluster.NewMarkerTree(markers, 0),
		LoadedAt: time.Now(),
	}

	p.mu.Lock()
	p.dataset = ds
	p.mu.Unlock()
}

// Dataset returns the current dataset, or nil before the first refresh.
func (p *Pipeline) Dataset() *Dataset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dataset
}

// FindBySlug resolves a job by its public path. Matching is by the trailing
// id hash, scoped to the company slug when one is given (legacy
// single-segment paths have none). On a hash collision the first record in
// dataset order wins.
func (p *Pipeline) FindBySlug(company, value string) (*record.JobRecord, bool) {
	ds := p.Dataset()
	if ds == nil {
		return nil, false
	}
	hash := slug.ParseJobSlug(value)
	if hash == "" {
		return nil, false
	}

	for i := range ds.Records {
		rec := &ds.Records[i]
		if company != "" && rec.CompanySlug != company {
			continue
		}
		if slug.ParseJobSlug(rec.ValueSlug) == hash {
			return rec, true
		}
	}
	return nil, false
}

// StartRefresh schedules periodic refreshes with the configured cron spec.
// No-op when the spec is empty.
func (p *Pipeline) StartRefresh() error {
	if p.cfg.RefreshCron == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(p.cfg.RefreshCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := p.Refresh(ctx); err != nil {
			log.Printf("[pipeline] Scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid REFRESH_CRON %q: %w", p.cfg.RefreshCron, err)
	}

	c.Start()
	p.cron = c
	log.Printf("[pipeline] Scheduled refresh with spec %q", p.cfg.RefreshCron)
	return nil
}

// StopRefresh stops the refresh scheduler, if one is running.
func (p *Pipeline) StopRefresh() {
	if p.cron != nil {
		p.cron.Stop()
	}
}
