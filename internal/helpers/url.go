package helpers

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// DomainTokens holds the two substrings the mention detector searches for.
type DomainTokens struct {
	RootDomain string // e.g. "acme.io"
	BrandName  string // e.g. "acme"
}

// CanonicalURL normalises a URL string for use as a cache/history key.
// It collapses the scheme to https, lowercases the host, removes default
// ports, strips fragments and trailing slashes and cleans path segments, so
// http://Example.com/ and https://example.com share one history.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	parsed, err := parseURLPreserveHost(raw)
	if err != nil {
		return "", err
	}

	parsed.Scheme = "https"

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	if parts := strings.Split(host, ":"); len(parts) == 2 {
		if port := parts[1]; port == "80" || port == "443" {
			host = parts[0]
		}
	}
	parsed.Host = host

	cleanPath := path.Clean(parsed.Path)
	if cleanPath == "." || cleanPath == "/" {
		cleanPath = ""
	}
	parsed.Path = cleanPath
	parsed.Fragment = ""

	return parsed.String(), nil
}

// ExtractDomainTokens derives the root domain and bare brand token from a
// user-supplied URL. It never fails: when the input cannot be parsed as a URL
// it falls back to best-effort string stripping, so callers always receive
// two non-empty lowercase tokens.
func ExtractDomainTokens(raw string) DomainTokens {
	raw = strings.TrimSpace(raw)

	var host string
	if parsed, err := parseURLPreserveHost(raw); err == nil && parsed.Host != "" {
		host = parsed.Host
	} else {
		host = stripToHost(raw)
	}

	host = strings.ToLower(host)
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		// Guarantee non-empty tokens even for garbage input.
		host = strings.ToLower(raw)
		if host == "" {
			host = "unknown"
		}
	}

	brand := host
	if i := strings.Index(host, "."); i > 0 {
		brand = host[:i]
	}

	return DomainTokens{RootDomain: host, BrandName: brand}
}

// stripToHost is the parse-failure fallback: drop a leading scheme and www.,
// then truncate at the first path separator.
func stripToHost(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// parseURLPreserveHost attempts to parse raw into a url.URL, handling schemeless URLs.
func parseURLPreserveHost(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" && parsed.Host == "" {
		// Attempt schemeless format like example.com/path or //example.com/path.
		if strings.HasPrefix(raw, "//") {
			return url.Parse("https:" + raw)
		}
		return url.Parse("https://" + raw)
	}
	return parsed, nil
}
