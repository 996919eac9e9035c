package aggregate

import (
	"sort"

	"github.com/graylag/scutter/internal/classifier"
	"github.com/graylag/scutter/internal/model"
)

// IdentitySummary accumulates per-identity bot facts across all IPs.
type IdentitySummary struct {
	Count      int64
	IPs        map[string]struct{}
	UserAgents map[string]struct{}
	InfoURLs   map[string]struct{}
}

func newIdentitySummary() *IdentitySummary {
	return &IdentitySummary{
		IPs:        map[string]struct{}{},
		UserAgents: map[string]struct{}{},
		InfoURLs:   map[string]struct{}{},
	}
}

// BotEntry is one retained bot request, tagged with its instance key.
type BotEntry struct {
	Key    model.BotKey
	Record model.Record
}

// Bots tracks bot traffic per identity and, when retain is on, keeps the
// timed bot records for chronological path building.
type Bots struct {
	Summary map[string]*IdentitySummary
	Entries []BotEntry

	BotRequests     int64 // every bot line, timed or not
	BrowserRequests int64

	retain bool
}

func newBots(retain bool) *Bots {
	return &Bots{Summary: map[string]*IdentitySummary{}, retain: retain}
}

func (b *Bots) add(rec model.Record, cls model.Classification) {
	if !cls.IsBot {
		b.BrowserRequests++
		return
	}
	b.BotRequests++

	// Records without a usable timestamp cannot be ordered into a path;
	// they count toward the bot total above and nothing else.
	if !rec.HasTime() {
		return
	}

	s := b.Summary[cls.Identity]
	if s == nil {
		s = newIdentitySummary()
		b.Summary[cls.Identity] = s
	}
	s.Count++
	s.IPs[rec.IP] = struct{}{}
	s.UserAgents[rec.UserAgent] = struct{}{}
	for _, u := range classifier.InfoURLs(rec.UserAgent) {
		s.InfoURLs[u] = struct{}{}
	}

	if b.retain {
		b.Entries = append(b.Entries, BotEntry{
			Key:    model.BotKey{Identity: cls.Identity, IP: rec.IP},
			Record: rec,
		})
	}
}

func (b *Bots) merge(other *Bots) {
	b.BotRequests += other.BotRequests
	b.BrowserRequests += other.BrowserRequests
	for identity, os := range other.Summary {
		s := b.Summary[identity]
		if s == nil {
			s = newIdentitySummary()
			b.Summary[identity] = s
		}
		s.Count += os.Count
		for ip := range os.IPs {
			s.IPs[ip] = struct{}{}
		}
		for ua := range os.UserAgents {
			s.UserAgents[ua] = struct{}{}
		}
		for u := range os.InfoURLs {
			s.InfoURLs[u] = struct{}{}
		}
	}
	b.Entries = append(b.Entries, other.Entries...)
}

// Identities returns identity labels sorted by descending request count,
// ties by name, for stable reporting.
func (b *Bots) Identities() []string {
	out := make([]string, 0, len(b.Summary))
	for id := range b.Summary {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := b.Summary[out[i]].Count, b.Summary[out[j]].Count
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}
