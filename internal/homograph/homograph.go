// Package homograph detects IDN homograph attacks, typosquatting and
// leet-style character substitution against a fixed brand registry.
package homograph

import (
	"strings"
	"sync"
	"unicode"

	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

// confusables maps visually similar runes to their ASCII counterpart.
// Covers the Cyrillic and Greek letters most used in homograph attacks
// plus the common leet digit/symbol substitutions.
var confusables = map[rune]rune{
	// Cyrillic
	'а': 'a', // а
	'е': 'e', // е
	'о': 'o', // о
	'р': 'p', // р
	'с': 'c', // с
	'у': 'y', // у
	'х': 'x', // х
	'ъ': 'b', // ъ
	'і': 'i', // і
	'ј': 'j', // ј
	'һ': 'h', // һ
	'ԁ': 'd', // ԁ
	// Greek
	'α': 'a', // α
	'ε': 'e', // ε
	'ο': 'o', // ο
	'ρ': 'p', // ρ
	'κ': 'k', // κ
	'ν': 'v', // ν
	'τ': 't', // τ
	'ι': 'i', // ι
	// Leet digits and symbols
	'0': 'o',
	'1': 'l',
	'!': 'i',
	'$': 's',
	'@': 'a',
	'3': 'e',
	'5': 's',
	'7': 't',
	'8': 'b',
}

// BrandDomains maps brand keys to their single official registrable domain.
var BrandDomains = map[string]string{
	"paypal":        "paypal.com",
	"apple":         "apple.com",
	"google":        "google.com",
	"microsoft":     "microsoft.com",
	"amazon":        "amazon.com",
	"facebook":      "facebook.com",
	"netflix":       "netflix.com",
	"instagram":     "instagram.com",
	"whatsapp":      "whatsapp.com",
	"twitter":       "twitter.com",
	"linkedin":      "linkedin.com",
	"ebay":          "ebay.com",
	"dropbox":       "dropbox.com",
	"icloud":        "icloud.com",
	"outlook":       "outlook.com",
	"yahoo":         "yahoo.com",
	"chase":         "chase.com",
	"wellsfargo":    "wellsfargo.com",
	"bankofamerica": "bankofamerica.com",
	"citibank":      "citibank.com",
	"capitalone":    "capitalone.com",
	"steam":         "steampowered.com",
	"spotify":       "spotify.com",
	"adobe":         "adobe.com",
	"coinbase":      "coinbase.com",
	"binance":       "binance.com",
	"metamask":      "metamask.io",
	"github":        "github.com",
	"zoom":          "zoom.us",
	"slack":         "slack.com",
}

var officialDomains = func() map[string]bool {
	m := make(map[string]bool, len(BrandDomains))
	for _, d := range BrandDomains {
		m[d] = true
	}
	return m
}()

// IsOfficialBrandDomain reports whether registrable is the official
// registrable domain of some registry brand.
func IsOfficialBrandDomain(registrable string) bool {
	return officialDomains[strings.ToLower(registrable)]
}

// NormalizeConfusables replaces confusable runes with their ASCII look-alike.
// "pаypal" (Cyrillic а) → "paypal", "g00gle" → "google".
func NormalizeConfusables(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if sub, ok := confusables[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountConfusableChars counts non-ASCII runes that are visually confusable
// with ASCII. Leet digits are ASCII and do not count here.
func CountConfusableChars(s string) int {
	n := 0
	for _, r := range strings.ToLower(s) {
		if _, ok := confusables[r]; ok && r > unicode.MaxASCII {
			n++
		}
	}
	return n
}

// HasMixedScripts reports whether the alphabetic runes of s span more than
// one writing system among Latin, Cyrillic, Greek and other. Pure-Cyrillic
// domains are fine; mixing is the homograph signal.
func HasMixedScripts(s string) bool {
	var latin, cyrillic, greek, other bool
	for _, r := range s {
		if strings.ContainsRune(".-_0123456789", r) || !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic = true
		case unicode.Is(unicode.Greek, r):
			greek = true
		case unicode.Is(unicode.Latin, r) || r <= unicode.MaxASCII:
			latin = true
		default:
			other = true
		}
	}
	count := 0
	for _, seen := range []bool{latin, cyrillic, greek, other} {
		if seen {
			count++
		}
	}
	return count > 1
}

// levenshtein results are memoized: the same brand comparisons repeat for
// every scanned URL and the inputs are short domain labels.
var (
	levMu    sync.RWMutex
	levCache = make(map[[2]string]int)
)

const levCacheLimit = 4096

// Levenshtein computes the edit distance between two strings.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	key := [2]string{a, b}
	levMu.RLock()
	d, ok := levCache[key]
	levMu.RUnlock()
	if ok {
		return d
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	d = prev[len(rb)]

	levMu.Lock()
	if len(levCache) < levCacheLimit {
		levCache[key] = d
	}
	levMu.Unlock()
	return d
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// MinBrandDistance returns the minimum edit distance from a hostname to any
// registry brand, along with the closest brand key. Compares the SLD and
// full host against both the brand key and the official domain, before and
// after confusable normalisation.
func MinBrandDistance(host string) (int, string) {
	clean := strings.TrimPrefix(strings.ToLower(host), "www.")
	normalized := NormalizeConfusables(clean)

	_, sld, _ := urlinfo.SplitHost(clean)
	if sld == "" {
		sld = clean
	}
	normSLD := NormalizeConfusables(sld)

	best, bestBrand := 999, ""
	for brand, domain := range BrandDomains {
		d := min3(
			Levenshtein(sld, brand),
			Levenshtein(normSLD, brand),
			min3(Levenshtein(clean, domain), Levenshtein(normalized, domain), 999),
		)
		if d < best {
			best, bestBrand = d, brand
		}
	}
	return best, bestBrand
}

// BrandInLabel reports whether brand appears as a complete token inside a
// single hostname label. Tokens are split on "-" and "_"; "brand<digits>"
// and "<digits>brand" also count. Arbitrary substrings do not:
// "pineapple" never matches "apple", "secure-apple" does.
func BrandInLabel(label, brand string) bool {
	label = strings.ToLower(label)
	brand = strings.ToLower(brand)
	if label == brand {
		return true
	}
	for _, token := range strings.FieldsFunc(label, func(r rune) bool {
		return r == '-' || r == '_'
	}) {
		if token == brand {
			return true
		}
		if rest, ok := strings.CutPrefix(token, brand); ok && isDigits(rest) {
			return true
		}
		if rest, ok := strings.CutSuffix(token, brand); ok && isDigits(rest) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HostnameHasBrand reports whether any dot-separated label of host contains
// brand under the boundary rule.
func HostnameHasBrand(host, brand string) bool {
	for _, label := range strings.Split(strings.TrimSuffix(strings.ToLower(host), "."), ".") {
		if BrandInLabel(label, brand) {
			return true
		}
	}
	return false
}

// DetectCharSubstitution reports leet-style substitution aimed at a brand:
// normalising confusables must change the SLD and surface a brand token
// that the raw SLD did not contain. "paypa1" and "g00gle" match;
// "google" and "web20" do not.
func DetectCharSubstitution(host string) bool {
	_, sld, _ := urlinfo.SplitHost(strings.ToLower(host))
	if sld == "" {
		sld = strings.ToLower(host)
	}
	normalized := NormalizeConfusables(sld)
	if normalized == sld {
		return false
	}
	for brand := range BrandDomains {
		if BrandInLabel(normalized, brand) && !BrandInLabel(sld, brand) {
			return true
		}
	}
	return false
}

// IsExactBrandImpersonation reports whether host carries a brand token (after
// confusable normalisation, under the boundary rule) while its registrable
// domain is not that brand's official one. Official subdomains are exempt:
// mail.google.com passes, g00gle.com and paypal.net do not.
func IsExactBrandImpersonation(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if IsOfficialBrandDomain(urlinfo.RegistrableDomain(host)) {
		return false
	}
	normalized := NormalizeConfusables(host)
	for brand := range BrandDomains {
		if HostnameHasBrand(normalized, brand) {
			return true
		}
	}
	return false
}

// Features carries the homograph signals consumed by the feature extractor
// and the risk-factor generator.
type Features struct {
	MixedScripts       bool
	ConfusableChars    int
	MinBrandDistance   int
	ClosestBrand       string
	CharSubstitution   bool
	ExactImpersonation bool
}

// Extract computes all homograph features for a hostname in one pass.
func Extract(host string) Features {
	dist, closest := MinBrandDistance(host)
	return Features{
		MixedScripts:       HasMixedScripts(host),
		ConfusableChars:    CountConfusableChars(host),
		MinBrandDistance:   dist,
		ClosestBrand:       closest,
		CharSubstitution:   DetectCharSubstitution(host),
		ExactImpersonation: IsExactBrandImpersonation(host),
	}
}
