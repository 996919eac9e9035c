// Package paths orders bot traffic into per-instance chronological paths.
package paths

import (
	"sort"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/model"
)

// Path is the time-ordered request sequence of one bot instance.
type Path struct {
	Key     model.BotKey
	Records []model.Record
}

// Build sorts the retained bot entries by timestamp and groups them by
// instance key. The sort is stable: entries from multiple files may share
// timestamps, and the original encounter order breaks ties so repeated
// runs produce identical output. Sorting happens here, over the complete
// merged set; per-file pre-sorting cannot replace it.
//
// Paths come back ordered by descending length, ties by key, so "top
// instance" listings are deterministic too.
func Build(entries []aggregate.BotEntry) []Path {
	sorted := append([]aggregate.BotEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Record.Time.Before(sorted[j].Record.Time)
	})

	index := make(map[model.BotKey]int)
	var out []Path
	for _, e := range sorted {
		i, ok := index[e.Key]
		if !ok {
			i = len(out)
			index[e.Key] = i
			out = append(out, Path{Key: e.Key})
		}
		out[i].Records = append(out[i].Records, e.Record)
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := len(out[i].Records), len(out[j].Records)
		if li != lj {
			return li > lj
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}
