package record

// Dedup removes postings that share a URL, keeping the first occurrence and
// the relative order of survivors. Single forward pass, O(n). Running it on
// its own output is a no-op.
func Dedup(records []JobRecord) []JobRecord {
	seen := make(map[string]bool, len(records))
	out := make([]JobRecord, 0, len(records))
	for _, rec := range records {
		if seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true
		out = append(out, rec)
	}
	return out
}
