package classifier

import "regexp"

// DefaultRules returns the built-in bot pattern table.
// Order matters: specific crawlers come before the generic catch-alls at
// the bottom, otherwise "Googlebot" would land in the Generic Bot bucket.
func DefaultRules() []Rule {
	specs := []struct {
		pattern  string
		identity string
	}{
		// Search engine bots
		{`googlebot`, "Googlebot"},
		{`adsbot-google`, "Google AdsBot"},
		{`bingbot`, "Bingbot"},
		{`yandexbot`, "YandexBot"},
		{`baiduspider`, "Baiduspider"},
		{`duckduckbot`, "DuckDuckBot"},
		{`duckassistbot`, "DuckDuckGo Assistant"},
		{`slurp`, "Yahoo Slurp"},
		{`sogou`, "Sogou Spider"},
		{`exabot`, "Exabot"},
		{`qwantbot`, "Qwant Bot"},
		{`mojeekbot`, "Mojeek Bot"},
		{`yodaobot`, "Yodao Bot"},
		{`yisou`, "Yisou Spider"},

		// Social media / messaging bots
		{`facebot`, "Facebook Bot"},
		{`facebookexternalhit`, "Facebook External Hit"},
		{`meta-externalagent`, "Meta External Agent"},
		{`meta-webindexer`, "Meta Web Indexer"},
		{`twitterbot`, "Twitter Bot"},
		{`linkedinbot`, "LinkedIn Bot"},
		{`slackbot`, "Slackbot"},
		{`telegrambot`, "Telegram Bot"},
		{`whatsapp`, "WhatsApp"},
		{`discordbot`, "Discord Bot"},
		{`pinterest`, "Pinterest Bot"},
		{`tiktokspider`, "TikTok Spider"},

		// SEO / analytics bots
		{`ia_archiver`, "Alexa Crawler"},
		{`mj12bot`, "Majestic Bot"},
		{`ahrefsbot`, "Ahrefs Bot"},
		{`semrushbot`, "SEMrush Bot"},
		{`dotbot`, "Moz DotBot"},
		{`rogerbot`, "Moz RogerBot"},
		{`screaming frog`, "Screaming Frog"},
		{`megaindex`, "MegaIndex Bot"},
		{`blexbot`, "BLEXBot"},
		{`linkdexbot`, "Linkdex Bot"},
		{`gigabot`, "Gigabot"},
		{`seznambot`, "Seznam Bot"},
		{`petalbot`, "PetalBot"},
		{`applebot`, "Applebot"},
		{`dataforseobot`, "DataForSEO Bot"},
		{`surdotlybot`, "Surdotly Bot"},
		{`awariobot`, "Awario Bot"},
		{`bitsightbot`, "BitSight Bot"},
		{`semanticscholar`, "Semantic Scholar Bot"},

		// AI/LLM bots
		{`gptbot`, "GPTBot"},
		{`chatgpt`, "ChatGPT"},
		{`claudebot`, "ClaudeBot"},
		{`anthropic`, "Anthropic Bot"},
		{`ccbot`, "Common Crawl"},
		{`cohere-ai`, "Cohere AI"},
		{`perplexitybot`, "Perplexity Bot"},
		{`bytespider`, "ByteSpider"},

		// Archive bots
		{`archive\.org_bot`, "Internet Archive"},
		{`wayback`, "Wayback Machine"},
		{`intelx\.io_bot`, "IntelX Archive"},

		// Specific named crawlers (before generic patterns)
		{`genomecrawler`, "Nokia Genome Crawler"},
		{`barkrowler`, "Babbar Barkrowler"},
		{`ev-crawler`, "Headline EV Crawler"},
		{`proximic`, "Comscore Proximic"},
		{`websuse`, "Websuse Crawler"},
		{`semantic-visions`, "Semantic Visions Crawler"},
		{`msiecrawler`, "MSIE Crawler"},
		{`linkupbot`, "Linkup Bot"},
		{`brightbot`, "Brightbot"},
		{`monsido`, "Monsido Bot"},
		{`thinkbot`, "Thinkbot"},
		{`veryhip`, "VeryHip Bot"},
		{`orbbot`, "Orbbot"},
		{`iboubot`, "Ibou Bot"},
		{`makemerry`, "MakeMerry Bot"},
		{`opengraphbot`, "OpenGraph Bot"},
		{`tinyurl`, "TinyURL Bot"},
		{`backlinkspider`, "Backlink Spider"},
		{`statusnest`, "StatusNest Spider"},
		{`everyfeed`, "Everyfeed Spider"},
		{`loli_spider`, "Loli Spider"},
		{`addbot`, "Addshore Addbot"},
		{`aliyunsecbot`, "Aliyun Security Bot"},
		{`flyrbot`, "Flyr Bot"},

		// Specific tools and clients
		{`drupal`, "Drupal"},
		{`feedburner`, "FeedBurner"},
		{`hatena`, "Hatena"},
		{`instapaper`, "Instapaper"},
		{`feedly`, "Feedly"},
		{`newsblur`, "NewsBlur"},
		{`apache-jena`, "Apache Jena"},
		{`guzzlehttp`, "GuzzleHttp"},
		{`dalvik`, "Android Dalvik"},
		{`cfnetwork`, "CFNetwork Client"},
		{`anyconnect`, "Cisco AnyConnect"},

		// Security scanners
		{`nmap`, "Nmap"},
		{`nikto`, "Nikto"},
		{`sqlmap`, "SQLMap"},
		{`masscan`, "Masscan"},
		{`zgrab`, "ZGrab"},
		{`censys`, "Censys"},
		{`shodan`, "Shodan"},
		{`security\.ipip\.net`, "IPIP Security Scanner"},
		{`palo\s*alto`, "Palo Alto Scanner"},
		{`fuzz faster u fool`, "FFUF Fuzzer"},

		// Monitoring and uptime
		{`uptimerobot`, "UptimeRobot"},
		{`pingdom`, "Pingdom"},
		{`newrelic`, "New Relic"},
		{`datadog`, "Datadog"},
		{`site24x7`, "Site24x7"},
		{`statuscake`, "StatusCake"},

		// Tools and libraries
		{`^curl`, "curl"},
		{`^wget`, "wget"},
		{`python-requests`, "Python Requests"},
		{`python-urllib`, "Python urllib"},
		{`grequests`, "Python GRequests"},
		{`python/`, "Python"},
		{`java/`, "Java"},
		{`go-http-client`, "Go HTTP Client"},
		{`axios`, "Axios"},
		{`node-fetch`, "Node Fetch"},
		{`okhttp`, "OkHttp"},
		{`apache-httpclient`, "Apache HttpClient"},
		{`libwww-perl`, "Perl LWP"},
		{`php/`, "PHP"},
		{`ruby`, "Ruby"},
		{`^httpclient`, "HTTPClient"},
		{`^ahc/`, "Async HTTP Client"},
		{`alittle client`, "ALittle Client"},

		// Generic catch-alls (MUST stay last)
		{`bot[/\s\-_]`, "Generic Bot"},
		{`crawler`, "Generic Crawler"},
		{`spider`, "Generic Spider"},
		{`scraper`, "Generic Scraper"},
		{`fetcher`, "Generic Fetcher"},
	}

	rules := make([]Rule, len(specs))
	for i, s := range specs {
		rules[i] = Rule{Pattern: regexp.MustCompile(s.pattern), Identity: s.identity}
	}
	return rules
}
