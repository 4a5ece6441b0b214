package memory

import (
	"sort"

	"lexledger/internal/storage"
)

func sortNewestFirst(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		ci := createdAt(entries[i].rec)
		cj := createdAt(entries[j].rec)
		if ci != cj {
			return ci > cj
		}
		return entries[i].seq > entries[j].seq
	})
}

// createdAt compares as a string: see storage.TimestampLayout.
func createdAt(rec storage.Record) string {
	s, _ := rec[storage.FieldCreatedDate].(string)
	return s
}
