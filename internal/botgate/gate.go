package botgate

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultHoneypotParam is the query parameter legitimate clients never send.
// Its presence, with any value, marks the request as scripted enumeration.
const DefaultHoneypotParam = "probe_id"

// userAgentKeywords are matched case-insensitively as substrings against the
// User-Agent header. The list covers generic crawlers, headless browsers, and
// the social-preview fetchers that follow shared links.
var userAgentKeywords = []string{
	"bot",
	"crawl",
	"spider",
	"preview",
	"headless",
	"phantomjs",
	"slurp",
	"facebookexternalhit",
	"whatsapp",
	"telegram",
	"discord",
	"slack",
	"twitter",
	"linkedin",
	"skypeuripreview",
}

// automationHeaders are header names only automation tooling sets.
var automationHeaders = []string{
	"X-Automation",
	"X-Headless",
	"X-Selenium",
	"X-Puppeteer",
	"X-Playwright",
	"X-Phantomjs",
	"X-Cypress",
}

// Signals carries the request attributes the gate inspects. Handlers build it
// from the inbound request before any store access happens.
type Signals struct {
	UserAgent string
	Header    http.Header
	Query     url.Values
}

// Decision is the gate's verdict. Reason is for server-side logs only and
// must never be echoed to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

type rule struct {
	name  string
	match func(Signals) bool
}

// Gate classifies inbound requests as automated or human using an ordered
// rule table. Rules are evaluated in order and the first match denies.
type Gate struct {
	honeypotParam string
	rules         []rule
}

// New creates a gate using honeypotParam as the honeypot query key.
// An empty honeypotParam falls back to DefaultHoneypotParam.
func New(honeypotParam string) *Gate {
	if honeypotParam == "" {
		honeypotParam = DefaultHoneypotParam
	}

	g := &Gate{honeypotParam: honeypotParam}
	g.rules = []rule{
		{name: "user-agent", match: matchUserAgent},
		{name: "automation-header", match: matchAutomationHeader},
		{name: "honeypot", match: g.matchHoneypot},
	}

	return g
}

// HoneypotParam returns the configured honeypot query parameter name.
func (g *Gate) HoneypotParam() string {
	return g.honeypotParam
}

// Classify runs the rule table over the request signals.
func (g *Gate) Classify(signals Signals) Decision {
	for _, r := range g.rules {
		if r.match(signals) {
			return deny(r.name)
		}
	}

	return allow
}

func matchUserAgent(signals Signals) bool {
	ua := strings.ToLower(signals.UserAgent)

	for _, keyword := range userAgentKeywords {
		if strings.Contains(ua, keyword) {
			return true
		}
	}

	return false
}

func matchAutomationHeader(signals Signals) bool {
	if signals.Header == nil {
		return false
	}

	for _, name := range automationHeaders {
		if _, ok := signals.Header[http.CanonicalHeaderKey(name)]; ok {
			return true
		}
	}

	// Client hints from a headless Chromium report a "HeadlessChrome" brand.
	return strings.Contains(strings.ToLower(signals.Header.Get("Sec-CH-UA")), "headless")
}

func (g *Gate) matchHoneypot(signals Signals) bool {
	if signals.Query == nil {
		return false
	}

	_, present := signals.Query[g.honeypotParam]

	return present
}
