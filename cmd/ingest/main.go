// ingest runs the pipeline once: read a jobs CSV, normalize, dedup, and
// write a compressed snapshot. Useful for pre-building snapshots in CI and
// for sanity-checking a fresh export.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stapply-ai/jobmap/cluster"
	"github.com/stapply-ai/jobmap/record"
)

var (
	csvPath = flag.String("csv", "data/jobs.csv", "path to the jobs CSV export")
	outPath = flag.String("out", "", "snapshot output path (skip writing when empty)")
	useMMap = flag.Bool("mmap", false, "write an uncompressed mmap snapshot instead of zstd")
)

func main() {
	flag.Parse()

	start := time.Now()
	rows, err := record.ReadCSVFile(*csvPath)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", *csvPath, err)
		os.Exit(1)
	}

	records := record.Dedup(record.Normalize(rows))
	fmt.Printf("Read %d rows -> %d records (%d dropped or duplicate) in %v\n",
		len(rows), len(records), len(rows)-len(records), time.Since(start))

	companies := make(map[string]bool)
	for _, rec := range records {
		companies[rec.Company] = true
	}
	fmt.Printf("Companies: %d\n", len(companies))

	// World-view clustering as a quick density sanity check.
	clusters := cluster.ClusterMarkers(cluster.MarkersFromRecords(records), 0, cluster.Options{})
	fmt.Printf("Clusters at zoom 0: %d\n", len(clusters))

	if *outPath == "" {
		return
	}

	saveStart := time.Now()
	if *useMMap {
		err = cluster.SaveMMap(*outPath, records)
	} else {
		err = cluster.SaveCompressed(*outPath, records)
	}
	if err != nil {
		fmt.Printf("Failed to save snapshot: %v\n", err)
		os.Exit(1)
	}

	if info, err := os.Stat(*outPath); err == nil {
		fmt.Printf("Saved %s (%d bytes) in %v\n", *outPath, info.Size(), time.Since(saveStart))
	} else {
		fmt.Printf("Saved %s in %v\n", *outPath, time.Since(saveStart))
	}
}
