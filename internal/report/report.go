// Package report renders analysis documents as console output.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/graylag/scutter/internal/export"
)

const (
	identityTableCap = 30
	samplePathCap    = 5 // instances whose first requests are printed
	sampleStepCap    = 5 // requests printed per sampled instance
	topURLTableCap   = 10
	concurrentCap    = 10 // rows in the max-concurrent ranking
)

// Bots renders the identity/instance rollup.
func Bots(w io.Writer, doc export.BotSummaryDoc) {
	section(w, "Bot Traffic")

	s := doc.Summary
	pterm.DefaultBasicText.WithWriter(w).Printfln(
		"%s bot requests (%.1f%%), %s browser requests, %d identities across %d instances",
		FormatNumber(s.BotRequests), s.BotPct, FormatNumber(s.BrowserRequests),
		s.UniqueIdentities, s.UniqueInstances)

	data := pterm.TableData{{"Identity", "Requests", "Share", "IPs"}}
	for i, id := range doc.Identities {
		if i >= identityTableCap {
			break
		}
		data = append(data, []string{
			id.Identity,
			FormatNumber(id.Requests),
			fmt.Sprintf("%.1f%%", id.Pct),
			strconv.Itoa(id.UniqueIPs),
		})
	}
	renderTable(w, data)

	for i, inst := range doc.TopInstances {
		if i >= samplePathCap {
			break
		}
		pterm.DefaultBasicText.WithWriter(w).Printfln(
			"%s|%s: %d requests, %s to %s",
			inst.Identity, inst.IP, inst.Requests, inst.FirstSeen, inst.LastSeen)
		for j, u := range inst.SampleURLs {
			if j >= sampleStepCap {
				pterm.DefaultBasicText.WithWriter(w).Printfln("  … %d more", len(inst.SampleURLs)-j)
				break
			}
			pterm.DefaultBasicText.WithWriter(w).Printfln("  %s", u)
		}
	}
}

// Speed renders per-instance timing profiles, fastest first.
func Speed(w io.Writer, doc export.SpeedDoc) {
	section(w, "Request Timing")

	if len(doc.Instances) == 0 {
		pterm.Info.WithWriter(w).Println("no instance has enough timed requests to profile")
		return
	}

	data := pterm.TableData{{"Instance", "Requests", "Rate", "Median Gap", "Burst Rate", "Max Concurrent"}}
	for _, e := range doc.Instances {
		data = append(data, []string{
			e.Identity + "|" + e.IP,
			FormatNumber(int64(e.TotalRequests)),
			fmt.Sprintf("%.1f req/min", e.RequestsPerMinute),
			FormatDuration(e.MedianInterval),
			fmt.Sprintf("%.0f req/min", e.BurstRequestsPerMinute),
			strconv.Itoa(e.MaxConcurrent),
		})
	}
	renderTable(w, data)

	// Heaviest same-second hitters, across instances.
	ranked := make([]export.SpeedEntry, len(doc.Instances))
	copy(ranked, doc.Instances)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MaxConcurrent > ranked[j].MaxConcurrent
	})
	data = pterm.TableData{{"Instance", "Max Concurrent", "At", "Zero-Gap Share"}}
	for i, e := range ranked {
		if i >= concurrentCap {
			break
		}
		data = append(data, []string{
			e.Identity + "|" + e.IP,
			strconv.Itoa(e.MaxConcurrent),
			e.MaxConcurrentAt,
			fmt.Sprintf("%.1f%%", e.ZeroIntervalPct),
		})
	}
	renderTable(w, data)
}

// Traffic renders the time-series summary with per-status totals.
func Traffic(w io.Writer, doc export.TrafficDoc) {
	section(w, "Traffic")

	s := doc.Statistics
	pterm.DefaultBasicText.WithWriter(w).Printfln(
		"%s requests, %s across %d buckets (avg %.1f, peak %s at %s)",
		FormatNumber(s.TotalRequests), FormatBytes(s.TotalBytes), len(doc.TimeSeries),
		s.AvgPerBucket, FormatNumber(s.PeakRequests), s.PeakBucket)
	if s.MaxConcurrent > 0 {
		pterm.DefaultBasicText.WithWriter(w).Printfln(
			"busiest second: %s requests at %s",
			FormatNumber(s.MaxConcurrent), s.MaxConcurrentAt)
	}

	data := pterm.TableData{{"Status", "Requests"}}
	for _, status := range sortedCountKeys(doc.StatusTotals) {
		data = append(data, []string{status, FormatNumber(doc.StatusTotals[status])})
	}
	renderTable(w, data)

	if len(doc.CountryTotals) > 0 {
		data = pterm.TableData{{"Country", "Requests"}}
		for _, code := range sortedCountKeys(doc.CountryTotals) {
			name := doc.CountryNames[code]
			if name == "" {
				name = code
			}
			data = append(data, []string{name, FormatNumber(doc.CountryTotals[code])})
		}
		renderTable(w, data)
	}

	// Daily rollup, chronological. Bucket times are RFC 3339 so the date
	// is the first ten bytes.
	hits := map[string]int64{}
	bytes := map[string]int64{}
	var days []string
	for _, p := range doc.TimeSeries {
		if len(p.Time) < 10 {
			continue
		}
		day := p.Time[:10]
		if _, seen := hits[day]; !seen {
			days = append(days, day)
		}
		hits[day] += p.Requests
		bytes[day] += p.Bytes
	}
	if len(days) > 0 {
		data = pterm.TableData{{"Day", "Requests", "Bytes"}}
		for _, day := range days {
			data = append(data, []string{day, FormatNumber(hits[day]), FormatBytes(bytes[day])})
		}
		renderTable(w, data)
	}
}

// URLs renders the categorization rollup.
func URLs(w io.Writer, doc export.URLsDoc) {
	section(w, "URL Categories")

	pterm.DefaultBasicText.WithWriter(w).Printfln(
		"%s requests, %s served",
		FormatNumber(doc.TotalRequests), FormatBytes(doc.TotalBytes))

	data := pterm.TableData{{"Category", "Requests", "Share", "Bytes", "Entities"}}
	for _, c := range doc.Categories {
		entities := ""
		if c.UniqueEntities > 0 {
			entities = strconv.Itoa(c.UniqueEntities)
		}
		data = append(data, []string{
			c.Name,
			FormatNumber(c.Requests),
			fmt.Sprintf("%.1f%%", c.Pct),
			FormatBytes(c.Bytes),
			entities,
		})
	}
	renderTable(w, data)

	if len(doc.MethodCounts) > 0 {
		data = pterm.TableData{{"Method", "Requests"}}
		for _, m := range sortedCountKeys(doc.MethodCounts) {
			data = append(data, []string{m, FormatNumber(doc.MethodCounts[m])})
		}
		renderTable(w, data)
	}

	if len(doc.TopURLs) > 0 {
		data = pterm.TableData{{"URL", "Requests"}}
		for i, u := range doc.TopURLs {
			if i >= topURLTableCap {
				break
			}
			data = append(data, []string{u.URL, FormatNumber(u.Requests)})
		}
		renderTable(w, data)
	}
}

func section(w io.Writer, title string) {
	pterm.DefaultSection.WithWriter(w).Println(title)
}

func renderTable(w io.Writer, data pterm.TableData) {
	// Render errors only occur on malformed table data, which is all
	// constructed here.
	_ = pterm.DefaultTable.WithWriter(w).WithHasHeader().WithData(data).Render()
}

// sortedCountKeys orders map keys by descending count, ties by key.
func sortedCountKeys(m map[string]int64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if m[out[i]] != m[out[j]] {
			return m[out[i]] > m[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// FormatDuration renders a second count in the most readable unit.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 0.001:
		return fmt.Sprintf("%.0fµs", seconds*1e6)
	case seconds < 1:
		return fmt.Sprintf("%.0fms", seconds*1e3)
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fmin", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%.1fhr", seconds/3600)
	default:
		return fmt.Sprintf("%.1fdays", seconds/86400)
	}
}

// FormatBytes renders a byte count with a binary-ish decimal unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatNumber groups digits with commas.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
