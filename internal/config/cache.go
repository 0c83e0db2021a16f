package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the Redis response cache middleware.
// When Enabled is false or no Redis client is available, caching is a
// pass-through. Methods lists the HTTP methods eligible for caching, TTL
// the lifetime of entries, KeyStrategy which parts of the request build the
// cache key, and MaxBodyBytes the largest response body worth storing.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from the environment. Defaults cache
// GET responses for 30 seconds, keyed on route plus query string, which
// covers the public event listings.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: intOr("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
