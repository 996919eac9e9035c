package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/model"
	"github.com/graylag/scutter/internal/paths"
)

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "artifacts"), false)
	if err != nil {
		t.Fatal(err)
	}

	doc := map[string]string{"url": "/w/index.php?title=Special:Search&x=1"}
	path, err := w.Write("sample.json", doc)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["url"] != doc["url"] {
		t.Fatalf("got %q", got["url"])
	}
	// HTML escaping is off: & survives verbatim.
	if strings.Contains(string(data), `&`) {
		t.Fatalf("ampersand escaped: %s", data)
	}
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf, false)

	name, err := w.Write("traffic.json", map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if name != "traffic.json" {
		t.Fatalf("name: %q", name)
	}
	var got map[string]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["a"] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestNewWriterStdoutDirNeedsNoMkdir(t *testing.T) {
	// "-" must not be created as a directory.
	if _, err := NewWriter("-", false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat("-"); !os.IsNotExist(err) {
		t.Fatalf("stray directory: %v", err)
	}
}

func TestWriterDebugVariant(t *testing.T) {
	w, err := NewWriter(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	path, err := w.WriteDebug("traffic.json", map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, "traffic_debug.json") {
		t.Fatalf("path: %s", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatalf("debug variant not indented: %s", data)
	}
}

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("access_logs", 3, aggregate.Tally{TotalLines: 10, ParsedLines: 9, UnparsedLines: 1})
	if m.RunID == "" {
		t.Fatal("empty run id")
	}
	if _, err := time.Parse(time.RFC3339, m.GeneratedAt); err != nil {
		t.Fatalf("generated_at: %v", err)
	}
	if m.Files != 3 || m.ParsedLines != 9 {
		t.Fatalf("metadata: %+v", m)
	}
	if m.RunID == NewMetadata("x", 0, aggregate.Tally{}).RunID {
		t.Fatal("run ids must differ")
	}
}

func botFixture(t *testing.T) (*aggregate.Bots, []paths.Path) {
	t.Helper()
	ctx := aggregate.NewContext(aggregate.WithBots(true))
	base := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	add := func(identity, ip, url string, sec int) {
		ctx.Add(model.Record{
			Time: base.Add(time.Duration(sec) * time.Second),
			IP:   ip, Method: "GET", URL: url, Status: "200",
			UserAgent: identity + "/1.0",
		}, model.Classification{IsBot: true, Identity: identity}, geo.Country{})
	}
	add("Googlebot", "1.1.1.1", "/a", 0)
	add("Googlebot", "1.1.1.1", "/b", 5)
	add("curl", "2.2.2.2", "/c", 3)
	ctx.Add(model.Record{Time: base, UserAgent: "Mozilla"}, model.Classification{}, geo.Country{})
	return ctx.Bots, paths.Build(ctx.Bots.Entries)
}

func TestBotPathsDoc(t *testing.T) {
	bots, ps := botFixture(t)
	doc := BotPaths(NewMetadata("", 1, aggregate.Tally{}), bots, ps)

	if doc.Summary.BotRequests != 3 || doc.Summary.BrowserRequests != 1 {
		t.Fatalf("split: %+v", doc.Summary)
	}
	if doc.Summary.UniqueIdentities != 2 || doc.Summary.UniqueInstances != 2 {
		t.Fatalf("uniques: %+v", doc.Summary)
	}
	steps := doc.Paths["Googlebot|1.1.1.1"]
	if len(steps) != 2 || steps[0].URL != "/a" || steps[1].URL != "/b" {
		t.Fatalf("path: %+v", steps)
	}
	if steps[0].Time != "2025-10-10T00:00:00Z" {
		t.Fatalf("time format: %q", steps[0].Time)
	}
}

func TestBotSummaryDoc(t *testing.T) {
	bots, ps := botFixture(t)
	doc := BotSummary(NewMetadata("", 1, aggregate.Tally{}), bots, ps)

	if len(doc.Identities) != 2 || doc.Identities[0].Identity != "Googlebot" {
		t.Fatalf("identities: %+v", doc.Identities)
	}
	if doc.Identities[0].Requests != 2 || doc.Identities[0].UniqueIPs != 1 {
		t.Fatalf("googlebot: %+v", doc.Identities[0])
	}
	// Longest instance first, with its URL sample in path order.
	if doc.TopInstances[0].IP != "1.1.1.1" || len(doc.TopInstances[0].SampleURLs) != 2 {
		t.Fatalf("instances: %+v", doc.TopInstances)
	}
}

func TestSpeedDoc(t *testing.T) {
	bots, ps := botFixture(t)
	doc := Speed(NewMetadata("", 1, aggregate.Tally{}), ps)
	_ = bots

	// curl has a single request and is skipped.
	if len(doc.Instances) != 1 {
		t.Fatalf("instances: %+v", doc.Instances)
	}
	e := doc.Instances[0]
	if e.Identity != "Googlebot" || e.TotalRequests != 2 {
		t.Fatalf("entry: %+v", e)
	}
	if e.AvgInterval != 5 || e.RequestsPerMinute != 24 {
		t.Fatalf("timing: avg=%v rpm=%v", e.AvgInterval, e.RequestsPerMinute)
	}
	if e.MinNonzeroInterval == nil || *e.MinNonzeroInterval != 5 {
		t.Fatalf("min nonzero: %v", e.MinNonzeroInterval)
	}
	// Identity rollup merges IPs; curl still has too few requests.
	if len(doc.Identities) != 1 {
		t.Fatalf("identities: %+v", doc.Identities)
	}
	id := doc.Identities[0]
	if id.Identity != "Googlebot" || id.IP != "" || id.TotalRequests != 2 {
		t.Fatalf("identity entry: %+v", id)
	}
}

func TestSpeedDocNullMinNonzero(t *testing.T) {
	base := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	p := paths.Path{Key: model.BotKey{Identity: "curl", IP: "1.1.1.1"}}
	for i := 0; i < 3; i++ {
		p.Records = append(p.Records, model.Record{Time: base})
	}
	doc := Speed(NewMetadata("", 1, aggregate.Tally{}), []paths.Path{p})

	e := doc.Instances[0]
	if e.MinNonzeroInterval != nil {
		t.Fatalf("expected null min_nonzero_interval, got %v", *e.MinNonzeroInterval)
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"min_nonzero_interval":null`) {
		t.Fatalf("json: %s", data)
	}
	// All gaps zero: burst rate falls back to max_concurrent * 60.
	if e.BurstRequestsPerMinute != 180 {
		t.Fatalf("burst rpm: %v", e.BurstRequestsPerMinute)
	}
}

func TestURLReportDoc(t *testing.T) {
	ctx := aggregate.NewContext(aggregate.WithURLs(2))
	base := time.Date(2025, 10, 10, 14, 0, 0, 0, time.UTC)
	for i, u := range []string{"/wiki/Item:Q1", "/wiki/Item:Q2", "/wiki/Item:Q1", "/robots.txt"} {
		ctx.Add(model.Record{
			Time: base.Add(time.Duration(i) * time.Second),
			Method: "GET", URL: u, Status: "200", Size: 100, HasSize: true,
		}, model.Classification{}, geo.Country{})
	}

	doc := URLReport(NewMetadata("", 1, aggregate.Tally{}), ctx.URLs)
	if doc.TotalRequests != 4 {
		t.Fatalf("total: %d", doc.TotalRequests)
	}
	if doc.Hourly[14] != 4 {
		t.Fatalf("hourly: %v", doc.Hourly)
	}
	top := doc.Categories[0]
	if top.Name != "Item pages" || top.Requests != 3 || top.Pct != 75 {
		t.Fatalf("top category: %+v", top)
	}
	if top.UniqueEntities != 2 || len(top.EntitySample) != 2 {
		t.Fatalf("entities: %+v", top)
	}
	if len(top.SampleURLs) != 2 {
		t.Fatalf("sample cap: %v", top.SampleURLs)
	}
	if doc.MethodCounts["GET"] != 4 {
		t.Fatalf("methods: %v", doc.MethodCounts)
	}
	if doc.TopURLs[0].URL != "/wiki/Item:Q1" || doc.TopURLs[0].Requests != 2 {
		t.Fatalf("top urls: %+v", doc.TopURLs)
	}
}

func TestTrafficSeriesDoc(t *testing.T) {
	ctx := aggregate.NewContext(aggregate.WithTraffic(true))
	base := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	loc := geo.Static{"1.1.1.1": {Code: "US", Name: "United States"}}
	for i := 0; i < 3; i++ {
		r := model.Record{Time: base.Add(time.Duration(i) * time.Minute), IP: "1.1.1.1", Status: "200", Size: 10, HasSize: true}
		ctx.Add(r, model.Classification{}, loc.Lookup(r.IP))
	}

	doc := TrafficSeries(NewMetadata("", 1, aggregate.Tally{}), ctx.Traffic)
	if len(doc.TimeSeries) != 3 {
		t.Fatalf("series: %+v", doc.TimeSeries)
	}
	if doc.TimeSeries[0].Time != "2025-10-10T00:00:00Z" || doc.TimeSeries[0].Countries["US"] != 1 {
		t.Fatalf("point: %+v", doc.TimeSeries[0])
	}
	if doc.Statistics.TotalRequests != 3 || doc.Statistics.PeakBucket == "" {
		t.Fatalf("stats: %+v", doc.Statistics)
	}
	// One request per minute: no second holds more than one.
	if doc.Statistics.MaxConcurrent != 1 || doc.Statistics.MaxConcurrentAt != "2025-10-10T00:00:00Z" {
		t.Fatalf("max concurrent: %+v", doc.Statistics)
	}
}
