package fetcher

import (
	"fmt"
	"net/http"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Mobile Safari/537.36",
}

var acceptLanguages = []string{
	"nl-NL,nl;q=0.9,en-US;q=0.8,en;q=0.7",
	"nl-BE,nl;q=0.9,fr;q=0.8,en;q=0.7",
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9,nl;q=0.8",
	"de-DE,de;q=0.9,en;q=0.8",
}

var referers = []string{
	"https://www.google.com/",
	"https://www.google.nl/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
	"https://www.pinterest.com/",
}

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// spoofedIPHeaders are set on proxied requests with random client addresses.
var spoofedIPHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

func (f *Fetcher) applyHeaders(req *http.Request, spoofIP bool) {
	req.Header.Set("User-Agent", f.pick(userAgents))
	req.Header.Set("Accept-Language", f.pick(acceptLanguages))
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Cache-Control", "no-cache")
	if f.intn(2) == 0 {
		req.Header.Set("Referer", f.pick(referers))
	}
	if spoofIP {
		for _, h := range spoofedIPHeaders {
			req.Header.Set(h, f.randomIPv4())
		}
	}
}

func (f *Fetcher) pick(pool []string) string {
	return pool[f.intn(len(pool))]
}

// randomIPv4 returns a public-looking unicast address.
func (f *Fetcher) randomIPv4() string {
	first := 0
	for first == 0 || first == 10 || first == 100 || first == 127 || first == 169 || first == 172 || first == 192 {
		first = 1 + f.intn(223)
	}
	return fmt.Sprintf("%d.%d.%d.%d", first, f.intn(256), f.intn(256), 1+f.intn(254))
}
