package aggregate

import (
	"sort"
	"time"

	"github.com/graylag/scutter/internal/model"
)

// ClassCount is one bucket of the bot/browser split.
type ClassCount struct {
	Bot     int64
	Browser int64
}

// Classes splits per-bucket traffic by class (bot vs human).
type Classes struct {
	Buckets map[time.Time]*ClassCount

	TotalBot     int64
	TotalBrowser int64
}

func newClasses() *Classes {
	return &Classes{Buckets: map[time.Time]*ClassCount{}}
}

func (c *Classes) add(bucket time.Time, cls model.Classification) {
	if cls.IsBot {
		c.TotalBot++
	} else {
		c.TotalBrowser++
	}
	if bucket.IsZero() {
		return
	}
	cc := c.Buckets[bucket]
	if cc == nil {
		cc = &ClassCount{}
		c.Buckets[bucket] = cc
	}
	if cls.IsBot {
		cc.Bot++
	} else {
		cc.Browser++
	}
}

func (c *Classes) merge(other *Classes) {
	c.TotalBot += other.TotalBot
	c.TotalBrowser += other.TotalBrowser
	for b, oc := range other.Buckets {
		cc := c.Buckets[b]
		if cc == nil {
			cc = &ClassCount{}
			c.Buckets[b] = cc
		}
		cc.Bot += oc.Bot
		cc.Browser += oc.Browser
	}
}

// SortedBuckets returns the observed buckets ascending.
func (c *Classes) SortedBuckets() []time.Time {
	out := make([]time.Time, 0, len(c.Buckets))
	for b := range c.Buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ClassStats is the snapshot summary of the split.
type ClassStats struct {
	TotalBot      int64
	TotalBrowser  int64
	BotPct        float64
	BrowserPct    float64
	AvgBotPerMin  float64
	AvgBrowserMin float64
	MaxBotPerMin  int64
	MaxBrowserMin int64
	PeakBot       time.Time
	PeakBrowser   time.Time
}

// Stats summarizes the split. Peaks tie-break to the earliest bucket.
func (c *Classes) Stats() ClassStats {
	s := ClassStats{TotalBot: c.TotalBot, TotalBrowser: c.TotalBrowser}
	total := c.TotalBot + c.TotalBrowser
	if total > 0 {
		s.BotPct = float64(c.TotalBot) / float64(total) * 100
		s.BrowserPct = float64(c.TotalBrowser) / float64(total) * 100
	}
	if len(c.Buckets) == 0 {
		return s
	}
	var sumBot, sumBrowser int64
	first := true
	for bucket, cc := range c.Buckets {
		sumBot += cc.Bot
		sumBrowser += cc.Browser
		if first {
			s.MaxBotPerMin, s.PeakBot = cc.Bot, bucket
			s.MaxBrowserMin, s.PeakBrowser = cc.Browser, bucket
			first = false
			continue
		}
		if cc.Bot > s.MaxBotPerMin || (cc.Bot == s.MaxBotPerMin && bucket.Before(s.PeakBot)) {
			s.MaxBotPerMin, s.PeakBot = cc.Bot, bucket
		}
		if cc.Browser > s.MaxBrowserMin || (cc.Browser == s.MaxBrowserMin && bucket.Before(s.PeakBrowser)) {
			s.MaxBrowserMin, s.PeakBrowser = cc.Browser, bucket
		}
	}
	s.AvgBotPerMin = float64(sumBot) / float64(len(c.Buckets))
	s.AvgBrowserMin = float64(sumBrowser) / float64(len(c.Buckets))
	return s
}
