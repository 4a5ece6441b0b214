package aggregate

import (
	"sort"

	"lexledger/internal/core"
)

// Bucket is one group of a distribution table.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution counts records per key. Records with an empty key are left
// out, so the counts add up to the number of keyed records. Buckets are
// ordered by count, then key.
func Distribution(keys []string, label func(string) string) []Bucket {
	counts := make(map[string]int)
	for _, k := range keys {
		if k == "" {
			continue
		}
		counts[k]++
	}

	out := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, Bucket{Key: k, Label: label(k), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ProcessesByStatus counts processes per status.
func ProcessesByStatus(processes []core.Process) []Bucket {
	keys := make([]string, len(processes))
	for i, p := range processes {
		keys[i] = string(p.Status)
	}
	return Distribution(keys, StatusLabel)
}

// ProcessesByArea counts processes per practice area.
func ProcessesByArea(processes []core.Process) []Bucket {
	keys := make([]string, len(processes))
	for i, p := range processes {
		keys[i] = p.Area
	}
	return Distribution(keys, AreaLabel)
}

// VisitsBySource counts visits per acquisition source.
func VisitsBySource(visits []core.Visit) []Bucket {
	keys := make([]string, len(visits))
	for i, v := range visits {
		keys[i] = v.Source
	}
	return Distribution(keys, SourceLabel)
}

// Sum returns the total count across buckets.
func Sum(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += b.Count
	}
	return n
}
