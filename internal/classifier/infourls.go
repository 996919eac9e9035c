package classifier

import (
	"regexp"
	"strings"
)

// Crawlers usually embed a documentation URL in their user agent,
// e.g. "+http://www.google.com/bot.html".
var infoURLRe = regexp.MustCompile(`(?i)https?://[^\s\)\]"'<>]+`)

// InfoURLs extracts the http(s) URLs embedded in a user-agent string,
// with trailing punctuation stripped. Duplicates are removed; order is
// first occurrence.
func InfoURLs(userAgent string) []string {
	if userAgent == "" {
		return nil
	}
	var urls []string
	seen := make(map[string]struct{})
	for _, m := range infoURLRe.FindAllString(userAgent, -1) {
		u := strings.TrimRight(m, ".,;:)")
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
