// Package geo supplies the ip -> country capability used by country-based
// rollups. The pipeline only depends on the Locator interface; the mmdb
// reader is one implementation of it.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// Country is a resolved country. A zero Country means unknown.
type Country struct {
	Code string // ISO 3166-1 alpha-2
	Name string
}

// Unknown reports whether the lookup failed to attribute the IP.
func (c Country) Unknown() bool {
	return c.Code == ""
}

// Locator resolves a dotted-quad source IP to a country.
// Implementations must be cheap enough to call once per record.
type Locator interface {
	Lookup(ip string) Country
}

// MMDB is a Locator backed by a MaxMind GeoLite2/GeoIP2 country database.
type MMDB struct {
	reader *maxminddb.Reader
}

// OpenMMDB opens a .mmdb country database.
func OpenMMDB(path string) (*MMDB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open %s: %w", path, err)
	}
	return &MMDB{reader: r}, nil
}

type mmdbRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// Lookup resolves one IP. Invalid or unattributed IPs return a zero Country.
func (m *MMDB) Lookup(ip string) Country {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Country{}
	}
	var rec mmdbRecord
	if err := m.reader.Lookup(parsed, &rec); err != nil {
		return Country{}
	}
	return Country{
		Code: rec.Country.ISOCode,
		Name: rec.Country.Names["en"],
	}
}

// Close releases the database.
func (m *MMDB) Close() error {
	return m.reader.Close()
}

// Static is a fixed in-memory Locator, used in tests and when no database
// is configured but country attribution is still wanted for known ranges.
type Static map[string]Country

// Lookup returns the mapped country, or a zero Country when absent.
func (s Static) Lookup(ip string) Country {
	return s[ip]
}
