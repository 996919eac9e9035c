package model

import "time"

// Record is one validated access-log line.
// Status is kept verbatim (a 3-digit string, never coerced to int) so the
// exported value always reproduces the input byte-for-byte.
type Record struct {
	Time      time.Time // zero when the bracketed date-time could not be parsed
	IP        string
	Method    string
	URL       string // raw path+query, never decoded in place
	Status    string
	Size      int64 // 0 when the size field was "-"
	HasSize   bool  // false when the size field was "-"
	Referer   string
	UserAgent string
}

// HasTime reports whether the record carries a usable timestamp.
// Records without one are kept for non-temporal rollups only.
func (r Record) HasTime() bool {
	return !r.Time.IsZero()
}
