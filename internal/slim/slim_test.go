package slim

import (
	"testing"
	"time"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/model"
)

var base = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

func rec(min, sec int, ip string) model.Record {
	return model.Record{
		Time:   base.Add(time.Duration(min)*time.Minute + time.Duration(sec)*time.Second),
		IP:     ip,
		Status: "200",
		URL:    "/",
	}
}

func buildTraffic(t *testing.T) *aggregate.Traffic {
	t.Helper()
	ctx := aggregate.NewContext(aggregate.WithTraffic(true))
	loc := geo.Static{
		"1.1.1.1": {Code: "US", Name: "United States"},
		"2.2.2.2": {Code: "DE", Name: "Germany"},
		"3.3.3.3": {Code: "FR", Name: "France"},
	}
	add := func(min, sec int, ip string) {
		r := rec(min, sec, ip)
		ctx.Add(r, model.Classification{}, loc.Lookup(r.IP))
	}
	// Minute 0: 2x US, 1x DE, 1x FR, 1x unknown. Minute 2: 1x US.
	add(0, 1, "1.1.1.1")
	add(0, 2, "1.1.1.1")
	add(0, 3, "2.2.2.2")
	add(0, 4, "3.3.3.3")
	add(0, 5, "9.9.9.9")
	add(2, 0, "1.1.1.1")
	return ctx.Traffic
}

func TestEncodeTrafficRoundTrip(t *testing.T) {
	s := EncodeTraffic(buildTraffic(t), 2)

	if s.Meta.Start != base.Unix() || s.Meta.Interval != 60 || s.Meta.Buckets != 2 {
		t.Fatalf("header: %+v", s.Meta)
	}
	// Top 2 by volume: US (3), then DE/FR tie broken by code → DE.
	if len(s.Top) != 2 || s.Top[0] != "US" || s.Top[1] != "DE" {
		t.Fatalf("top: %v", s.Top)
	}

	if len(s.Data) != 2 {
		t.Fatalf("rows: %d", len(s.Data))
	}
	// Row 0: offset 0, 5 requests, US=2, DE=1, other(FR)=1.
	row := s.Data[0]
	if row[0] != 0 || row[1] != 5 {
		t.Fatalf("row0: %v", row)
	}
	counts, other := s.CountryRow(0)
	if counts["US"] != 2 || counts["DE"] != 1 || other != 1 {
		t.Fatalf("row0 decode: %v other=%d", counts, other)
	}
	// Unknown excluded from both columns and other: 2+1+1 < 5.
	var decoded int64
	for _, v := range counts {
		decoded += v
	}
	if decoded+other > row[1] {
		t.Fatalf("decoded sum %d exceeds total %d", decoded+other, row[1])
	}

	// Row 1: the gap minute is absent; offset jumps to 2.
	row = s.Data[1]
	if row[0] != 2 || row[1] != 1 {
		t.Fatalf("row1: %v", row)
	}
	if got := s.BucketTime(1); !got.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("bucket time: %v", got)
	}

	if s.Stats.Total != 6 || s.Stats.Max != 5 || s.Stats.Min != 1 || s.Stats.PeakOffset != 0 {
		t.Fatalf("stats: %+v", s.Stats)
	}
	if s.Stats.Avg != 3.0 {
		t.Fatalf("avg: %v", s.Stats.Avg)
	}
	if s.CountryTotals["US"] != 3 || s.CountryTotals[aggregate.UnknownCountry] != 1 {
		t.Fatalf("country totals: %v", s.CountryTotals)
	}
	if s.Countries["DE"] != "Germany" {
		t.Fatalf("names: %v", s.Countries)
	}
}

func TestEncodeTrafficEmpty(t *testing.T) {
	ctx := aggregate.NewContext(aggregate.WithTraffic(true))
	s := EncodeTraffic(ctx.Traffic, 5)
	if len(s.Data) != 0 || s.Meta.Buckets != 0 {
		t.Fatalf("empty: %+v", s)
	}
}

func TestEncodeClasses(t *testing.T) {
	ctx := aggregate.NewContext(aggregate.WithClasses())
	bot := model.Classification{IsBot: true, Identity: "curl"}
	human := model.Classification{}
	ctx.Add(rec(0, 1, "1.1.1.1"), bot, geo.Country{})
	ctx.Add(rec(0, 2, "1.1.1.1"), human, geo.Country{})
	ctx.Add(rec(5, 0, "1.1.1.1"), bot, geo.Country{})

	s := EncodeClasses(ctx.Classes)
	if s.Meta.Buckets != 2 {
		t.Fatalf("buckets: %+v", s.Meta)
	}
	if len(s.Data) != 2 {
		t.Fatalf("rows: %v", s.Data)
	}
	if r := s.Data[0]; r[0] != 0 || r[1] != 1 || r[2] != 1 {
		t.Fatalf("row0: %v", r)
	}
	if r := s.Data[1]; r[0] != 5 || r[1] != 1 || r[2] != 0 {
		t.Fatalf("row1: %v", r)
	}
	if s.Stats.TotalBot != 2 || s.Stats.TotalBrowser != 1 {
		t.Fatalf("totals: %+v", s.Stats)
	}
	if s.Stats.BotPct != 66.67 {
		t.Fatalf("bot pct: %v", s.Stats.BotPct)
	}
	if s.Stats.PeakBot != "2025-10-10T00:00:00" {
		t.Fatalf("peak bot: %q", s.Stats.PeakBot)
	}
}
