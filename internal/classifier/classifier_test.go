package classifier

import "testing"

func TestClassifyEmpty(t *testing.T) {
	c := Default()
	for _, ua := range []string{"", "-"} {
		got := c.Classify(ua)
		if !got.IsBot || got.Identity != EmptyUserAgent {
			t.Fatalf("Classify(%q) = %+v, want bot %q", ua, got, EmptyUserAgent)
		}
	}
}

func TestClassifySpecificBeforeGeneric(t *testing.T) {
	c := Default()
	// "Googlebot" contains "bot" but must not fall into the generic bucket.
	got := c.Classify("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	if !got.IsBot || got.Identity != "Googlebot" {
		t.Fatalf("got %+v, want bot Googlebot", got)
	}
	got = c.Classify("AdsBot-Google (+http://www.google.com/adsbot.html)")
	if got.Identity != "Google AdsBot" {
		t.Fatalf("got %+v, want Google AdsBot", got)
	}
}

func TestClassifyBrowser(t *testing.T) {
	c := Default()
	browsers := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
		"Mozilla/5.0 (Windows NT 10.0; Trident/7.0; rv:11.0) like Gecko",
	}
	for _, ua := range browsers {
		if got := c.Classify(ua); got.IsBot {
			t.Fatalf("Classify(%q) = %+v, want browser", ua, got)
		}
	}
}

func TestClassifyTable(t *testing.T) {
	c := Default()
	cases := []struct {
		ua       string
		identity string
	}{
		{"GPTBot/1.0 (+https://openai.com/gptbot)", "GPTBot"},
		{"curl/8.4.0", "curl"},
		{"python-requests/2.31.0", "Python Requests"},
		{"Some totally random agent", UnknownNonBrowser},
		{"SuperBot/1.0", "Generic Bot"},
		{"MegaCrawler 2.0", "Generic Crawler"},
		{"Mozilla/4.0 (compatible; MSIE 6.0)", UnknownNonBrowser}, // indicators, no engine proof
	}
	for _, tc := range cases {
		got := c.Classify(tc.ua)
		if !got.IsBot {
			t.Fatalf("Classify(%q): expected bot", tc.ua)
		}
		if got.Identity != tc.identity {
			t.Fatalf("Classify(%q) = %q, want %q", tc.ua, got.Identity, tc.identity)
		}
	}
}

func TestRuleOrderGenericsLast(t *testing.T) {
	rules := DefaultRules()
	generic := map[string]bool{
		"Generic Bot": true, "Generic Crawler": true, "Generic Spider": true,
		"Generic Scraper": true, "Generic Fetcher": true,
	}
	seenGeneric := false
	for _, r := range rules {
		if generic[r.Identity] {
			seenGeneric = true
		} else if seenGeneric {
			t.Fatalf("specific rule %q listed after a generic catch-all", r.Identity)
		}
	}
	if !seenGeneric {
		t.Fatal("generic catch-alls missing from table")
	}
}

func TestInfoURLs(t *testing.T) {
	ua := "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	got := InfoURLs(ua)
	if len(got) != 1 || got[0] != "http://www.google.com/bot.html" {
		t.Fatalf("got %v", got)
	}

	// Trailing punctuation stripped, duplicates collapsed.
	got = InfoURLs("see https://example.com/info., also https://example.com/info")
	if len(got) != 1 || got[0] != "https://example.com/info" {
		t.Fatalf("got %v", got)
	}

	if got := InfoURLs("no urls here"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
