package gacha

import (
	"net/http"
	"strings"
	"time"
)

// DefaultRouteTTLs returns the route TTL table for the game backend.
// Entries are checked in order and the first substring match wins, so the
// user-state routes that change every few seconds come before the broad
// fallbacks. "/fishing" deliberately covers every fishing route not listed
// above it.
func DefaultRouteTTLs() []TTLRule {
	return []TTLRule{
		{Pattern: "/essence-tap", TTL: 5 * time.Second},
		{Pattern: "/fishing/state", TTL: 5 * time.Second},
		{Pattern: "/users/me", TTL: 5 * time.Second},
		{Pattern: "/admin", TTL: 30 * time.Second},
		{Pattern: "/characters/collection", TTL: 15 * time.Second},
		{Pattern: "/characters/", TTL: 60 * time.Second},
		{Pattern: "/banners", TTL: 60 * time.Second},
		{Pattern: "/fishing", TTL: 15 * time.Second},
	}
}

// DefaultTTL applies when no rule matches.
const DefaultTTL = 15 * time.Second

// getCacheTTLForRequest resolves the TTL for a request from the ordered
// route table, falling back to the client default.
func (c *Client) getCacheTTLForRequest(req *http.Request) time.Duration {
	if req.URL != nil {
		url := req.URL.Host + req.URL.RequestURI()
		for _, rule := range c.routeTTLs {
			if strings.Contains(url, rule.Pattern) {
				return rule.TTL
			}
		}
	}
	return c.cacheTTL
}
