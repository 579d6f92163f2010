// Package urlinfo canonicalises candidate URLs and splits hostnames
// using the Public Suffix List.
package urlinfo

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// MaxURLLength is the default input cap. QR payloads beyond the cap are
// rejected before any analysis runs; deployments override it through
// NormalizeMax.
const MaxURLLength = 2048

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrURLTooLong        = errors.New("url_too_long")
	ErrUnsupportedScheme = errors.New("unsupported_scheme")
	ErrInvalidHostname   = errors.New("invalid_hostname")
)

// AllowedSchemes is the scheme allow-list enforced by Normalize.
var AllowedSchemes = map[string]bool{"http": true, "https": true}

// URLInfo is the canonical decomposition of a candidate URL.
type URLInfo struct {
	Raw      string // input after trimming and scheme prepending
	Scheme   string
	Hostname string // lowercased, no userinfo, no port
	Port     string // empty when default
	Path     string
	RawQuery string
	Fragment string

	Subdomain         string // "docs" in docs.google.com
	SLD               string // "google" in docs.google.com
	Suffix            string // "com", or "co.uk"
	RegistrableDomain string // "google.com", "bbc.co.uk"
	FullDomain        string // subdomain + registrable
}

// Normalize canonicalises raw input per the scan contract: trim, prepend
// https:// for bare domains, lowercase scheme and host, enforce the scheme
// allow-list and length cap, then split the hostname on the PSL.
func Normalize(raw string) (*URLInfo, error) {
	return NormalizeMax(raw, MaxURLLength)
}

// NormalizeMax is Normalize with a caller-supplied length cap. A cap of
// zero or less falls back to MaxURLLength.
func NormalizeMax(raw string, maxLen int) (*URLInfo, error) {
	if maxLen <= 0 {
		maxLen = MaxURLLength
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	if len(raw) > maxLen {
		return nil, ErrURLTooLong
	}
	if !strings.Contains(raw, "://") {
		// data: and javascript: carry no "//" but must not be rewritten
		// into https URLs; catch them by their scheme prefix.
		if i := strings.Index(raw, ":"); i > 0 && isSchemeLike(raw[:i]) {
			return nil, ErrUnsupportedScheme
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidHostname
	}

	scheme := strings.ToLower(u.Scheme)
	if !AllowedSchemes[scheme] {
		return nil, ErrUnsupportedScheme
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return nil, ErrInvalidHostname
	}

	info := &URLInfo{
		Raw:      raw,
		Scheme:   scheme,
		Hostname: host,
		Port:     u.Port(),
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	info.Subdomain, info.SLD, info.Suffix = SplitHost(host)
	if info.SLD != "" && info.Suffix != "" {
		info.RegistrableDomain = info.SLD + "." + info.Suffix
	} else {
		info.RegistrableDomain = host
	}
	if info.Subdomain != "" {
		info.FullDomain = info.Subdomain + "." + info.RegistrableDomain
	} else {
		info.FullDomain = info.RegistrableDomain
	}
	return info, nil
}

// isSchemeLike reports whether s looks like a URI scheme (letters, digits,
// "+", "-", "." after a leading letter) rather than a hostname fragment.
func isSchemeLike(s string) bool {
	if s == "" || !isAlpha(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !isAlpha(r) && !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	// "example.com" before a colon is a host:port, not a scheme.
	return !strings.Contains(s, ".")
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// compoundSuffixes backs the fallback split for suffixes missing from the
// embedded PSL snapshot.
var compoundSuffixes = map[string]bool{
	"co": true, "com": true, "org": true, "net": true,
	"gov": true, "edu": true, "ac": true, "or": true,
}

// SplitHost splits a hostname into (subdomain, sld, suffix) using the
// Public Suffix List, with a compound-TLD heuristic as fallback.
// IP literals return ("", host, "").
func SplitHost(host string) (subdomain, sld, suffix string) {
	if net.ParseIP(host) != nil {
		return "", host, ""
	}
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}

	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		ps, _ := publicsuffix.PublicSuffix(host)
		sld = strings.TrimSuffix(etld1, "."+ps)
		suffix = ps
		if host != etld1 {
			subdomain = strings.TrimSuffix(host, "."+etld1)
		}
		return subdomain, sld, suffix
	}

	// Fallback: plain split with a small compound-TLD list.
	parts := strings.Split(host, ".")
	switch {
	case len(parts) < 2:
		return "", host, ""
	case len(parts) >= 3 && compoundSuffixes[parts[len(parts)-2]]:
		return strings.Join(parts[:len(parts)-3], "."), parts[len(parts)-3],
			parts[len(parts)-2] + "." + parts[len(parts)-1]
	default:
		return strings.Join(parts[:len(parts)-2], "."), parts[len(parts)-2], parts[len(parts)-1]
	}
}

// RegistrableDomain is a convenience wrapper over SplitHost for callers
// holding a bare hostname or URL.
func RegistrableDomain(hostOrURL string) string {
	host := hostOrURL
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	_, sld, suffix := SplitHost(host)
	if sld != "" && suffix != "" {
		return sld + "." + suffix
	}
	return host
}
