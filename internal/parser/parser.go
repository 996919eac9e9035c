// Package parser turns raw access-log lines into structured records.
//
// The grammar is the nginx "combined" format:
//
//	IP - - [DD/Mon/YYYY:HH:MM:SS ±ZZZZ] "METHOD URL HTTP/x.y" STATUS SIZE "REFERER" "USER-AGENT"
//
// A reduced variant stops after SIZE and is used for status/size-only
// rollups. Lines that do not match produce no record; the caller counts
// them and moves on; a malformed line must never abort a file scan.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/graylag/scutter/internal/model"
)

// Field order: ip, bracketed datetime, method, url, status, size,
// then (combined only) referer and user-agent. Embedded quotes inside the
// request target or user-agent are not supported by the source format.
var (
	combinedRe = regexp.MustCompile(
		`^(\d+\.\d+\.\d+\.\d+)\s+-\s+-\s+\[([^\]]+)\]\s+"(\w+)\s+(\S+)\s+[^"]*"\s+(\d+)\s+(\d+|-)\s+"([^"]*)"\s+"([^"]*)"`)
	reducedRe = regexp.MustCompile(
		`^(\d+\.\d+\.\d+\.\d+)\s+-\s+-\s+\[([^\]]+)\]\s+"(\w+)\s+(\S+)\s+[^"]*"\s+(\d+)\s+(\d+|-)`)
)

const (
	zonedLayout = "02/Jan/2006:15:04:05 -0700"
	naiveLayout = "02/Jan/2006:15:04:05"
)

// Parse extracts a record from one combined-format line.
// Returns false when the line does not match the grammar.
func Parse(line string) (model.Record, bool) {
	m := combinedRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return model.Record{}, false
	}
	rec := build(m[1], m[2], m[3], m[4], m[5], m[6])
	rec.Referer = m[7]
	rec.UserAgent = m[8]
	return rec, true
}

// ParseReduced extracts a record from a line using only the fields up to
// the size column. Referer and user-agent are left empty.
func ParseReduced(line string) (model.Record, bool) {
	m := reducedRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return model.Record{}, false
	}
	return build(m[1], m[2], m[3], m[4], m[5], m[6]), true
}

func build(ip, dt, method, url, status, size string) model.Record {
	rec := model.Record{
		Time:   ParseTime(dt),
		IP:     ip,
		Method: method,
		URL:    url,
		Status: status,
	}
	if size != "-" {
		// The grammar guarantees digits only.
		n, err := strconv.ParseInt(size, 10, 64)
		if err == nil {
			rec.Size = n
			rec.HasSize = true
		}
	}
	return rec
}

// ParseTime parses the bracketed date-time. The zone-aware layout is tried
// first; on failure the date-time portion alone is parsed without a zone.
// A zero time means the line is usable for non-temporal rollups only.
func ParseTime(s string) time.Time {
	if t, err := time.Parse(zonedLayout, s); err == nil {
		return t
	}
	head, _, _ := strings.Cut(s, " ")
	if t, err := time.Parse(naiveLayout, head); err == nil {
		return t
	}
	return time.Time{}
}
