package aggregate

import (
	"regexp"
	"sort"

	"github.com/graylag/scutter/internal/model"
	"github.com/graylag/scutter/internal/urlcat"
)

// entityRe extracts a Wikibase item/property id from a category detail.
var entityRe = regexp.MustCompile(`[QP]\d+`)

// entityCategories are the categories whose details carry entity ids
// worth deduplicating.
var entityCategories = map[string]bool{
	"Item pages":            true,
	"Property pages":        true,
	"Special:WhatLinksHere": true,
}

// URLs is the URL-categorization rollup: per-category counts, bytes,
// subcategories, bounded URL samples, unique entity ids, and an
// hour-of-day histogram.
type URLs struct {
	CategoryCounts  map[string]int64
	Subcategories   map[string]map[string]int64
	StatusCounts    map[string]int64
	MethodCounts    map[string]int64
	URLCounts       map[string]int64
	BytesByCategory map[string]int64
	Hourly          map[int]int64
	Entities        map[string]map[string]struct{}
	Samples         map[string][]string

	TotalRequests int64
	TotalBytes    int64

	sampleCap int
}

func newURLs(sampleCap int) *URLs {
	return &URLs{
		CategoryCounts:  map[string]int64{},
		Subcategories:   map[string]map[string]int64{},
		StatusCounts:    map[string]int64{},
		MethodCounts:    map[string]int64{},
		URLCounts:       map[string]int64{},
		BytesByCategory: map[string]int64{},
		Hourly:          map[int]int64{},
		Entities:        map[string]map[string]struct{}{},
		Samples:         map[string][]string{},
		sampleCap:       sampleCap,
	}
}

func (u *URLs) add(rec model.Record) {
	u.TotalRequests++
	u.TotalBytes += rec.Size

	label := urlcat.Categorize(rec.URL)

	u.CategoryCounts[label.Category]++
	u.BytesByCategory[label.Category] += rec.Size
	u.StatusCounts[rec.Status]++
	u.MethodCounts[rec.Method]++
	u.URLCounts[rec.URL]++

	sub := u.Subcategories[label.Category]
	if sub == nil {
		sub = map[string]int64{}
		u.Subcategories[label.Category] = sub
	}
	sub[label.Subcategory]++

	if rec.HasTime() {
		u.Hourly[rec.Time.Hour()]++
	}

	if entityCategories[label.Category] {
		if id := entityRe.FindString(label.Detail); id != "" {
			set := u.Entities[label.Category]
			if set == nil {
				set = map[string]struct{}{}
				u.Entities[label.Category] = set
			}
			set[id] = struct{}{}
		}
	}

	if len(u.Samples[label.Category]) < u.sampleCap {
		u.Samples[label.Category] = append(u.Samples[label.Category], rec.URL)
	}
}

func (u *URLs) merge(other *URLs) {
	u.TotalRequests += other.TotalRequests
	u.TotalBytes += other.TotalBytes
	for c, v := range other.CategoryCounts {
		u.CategoryCounts[c] += v
	}
	for c, v := range other.BytesByCategory {
		u.BytesByCategory[c] += v
	}
	for s, v := range other.StatusCounts {
		u.StatusCounts[s] += v
	}
	for m, v := range other.MethodCounts {
		u.MethodCounts[m] += v
	}
	for raw, v := range other.URLCounts {
		u.URLCounts[raw] += v
	}
	for h, v := range other.Hourly {
		u.Hourly[h] += v
	}
	for c, m := range other.Subcategories {
		dst := u.Subcategories[c]
		if dst == nil {
			dst = map[string]int64{}
			u.Subcategories[c] = dst
		}
		for s, v := range m {
			dst[s] += v
		}
	}
	for c, set := range other.Entities {
		dst := u.Entities[c]
		if dst == nil {
			dst = map[string]struct{}{}
			u.Entities[c] = dst
		}
		for id := range set {
			dst[id] = struct{}{}
		}
	}
	// First-K retention: the receiver's samples came first in file order.
	for c, urls := range other.Samples {
		have := u.Samples[c]
		for _, raw := range urls {
			if len(have) >= u.sampleCap {
				break
			}
			have = append(have, raw)
		}
		u.Samples[c] = have
	}
}

// Categories returns category names sorted by descending request count,
// ties by name.
func (u *URLs) Categories() []string {
	out := make([]string, 0, len(u.CategoryCounts))
	for c := range u.CategoryCounts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := u.CategoryCounts[out[i]], u.CategoryCounts[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}

// TopURL is one entry of the most-requested URL ranking.
type TopURL struct {
	URL   string
	Count int64
}

// TopURLs returns the k most-requested URLs, descending by count, ties
// by URL.
func (u *URLs) TopURLs(k int) []TopURL {
	out := make([]TopURL, 0, len(u.URLCounts))
	for raw, n := range u.URLCounts {
		out = append(out, TopURL{URL: raw, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
