// Package features extracts the fixed 95-feature vector the ML model was
// trained on. Extract returns a map keyed by feature name; the predictor
// materialises the dense vector in manifest order.
package features

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/Alcary/QR-Code-Analyzer/internal/homograph"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

var (
	ipv4Re = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	hexRe  = regexp.MustCompile(`%[0-9a-fA-F]{2}`)
)

// Extract computes every manifest feature for a raw URL string. The input is
// parsed leniently: even schemes the validator rejects (javascript:, data:)
// must produce a vector, because the extractor also feeds the risk-factor
// generator for bypass analysis.
func Extract(raw string) map[string]float64 {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	parseInput := raw
	if !strings.Contains(raw, "://") && !strings.Contains(raw, ":") {
		parseInput = "https://" + raw
	}
	var scheme, host, path, query, fragment string
	if u, err := url.Parse(parseInput); err == nil {
		scheme = strings.ToLower(u.Scheme)
		host = strings.ToLower(u.Hostname())
		path = u.Path
		query = u.RawQuery
		fragment = u.Fragment
		if host == "" && u.Opaque == "" && scheme == "" {
			host = lower
		}
	} else {
		host = lower
	}

	sub, sld, suffix := urlinfo.SplitHost(host)
	registrable := host
	if sld != "" && suffix != "" {
		registrable = sld + "." + suffix
	}
	hg := homograph.Extract(host)

	pathLower := strings.ToLower(path)
	queryLower := strings.ToLower(query)

	f := make(map[string]float64, len(FeatureNames))

	// Lengths
	f["url_length"] = float64(len(raw))
	f["domain_length"] = float64(len(host))
	f["path_length"] = float64(len(path))
	f["query_length"] = float64(len(query))
	f["fragment_length"] = float64(len(fragment))
	f["subdomain_length"] = float64(len(sub))
	f["hostname_length"] = float64(len(host))

	// Punctuation counts over the raw input
	f["num_dots"] = float64(strings.Count(raw, "."))
	f["num_hyphens"] = float64(strings.Count(raw, "-"))
	f["num_underscores"] = float64(strings.Count(raw, "_"))
	f["num_slashes"] = float64(strings.Count(raw, "/"))
	f["num_question_marks"] = float64(strings.Count(raw, "?"))
	f["num_equal_signs"] = float64(strings.Count(raw, "="))
	f["num_at_symbols"] = float64(strings.Count(raw, "@"))
	f["num_ampersands"] = float64(strings.Count(raw, "&"))
	f["num_percent_signs"] = float64(strings.Count(raw, "%"))
	f["num_hash_signs"] = float64(strings.Count(raw, "#"))
	f["num_semicolons"] = float64(strings.Count(raw, ";"))
	f["num_plus_signs"] = float64(strings.Count(raw, "+"))
	f["num_colons"] = float64(strings.Count(raw, ":"))
	f["num_commas"] = float64(strings.Count(raw, ","))
	f["num_tildes"] = float64(strings.Count(raw, "~"))
	f["num_asterisks"] = float64(strings.Count(raw, "*"))
	f["num_dollar_signs"] = float64(strings.Count(raw, "$"))
	f["num_spaces"] = float64(strings.Count(raw, " ") + strings.Count(lower, "%20"))

	digits, letters := 0, 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	f["num_digits"] = float64(digits)
	f["num_letters"] = float64(letters)

	params, _ := url.ParseQuery(query)
	f["num_params"] = float64(len(params))
	f["path_depth"] = float64(pathDepth(path))
	f["subdomain_count"] = float64(labelCount(sub))

	// Ratios
	rl := math.Max(1, float64(len(raw)))
	f["digit_ratio"] = float64(digits) / rl
	f["letter_ratio"] = float64(letters) / rl
	f["special_char_ratio"] = (rl - float64(digits) - float64(letters)) / rl
	f["digit_letter_ratio"] = float64(digits) / math.Max(1, float64(letters))
	f["domain_digit_ratio"] = countDigits(host) / math.Max(1, float64(len(host)))
	f["domain_special_ratio"] = countAny(host, "-_~") / math.Max(1, float64(len(host)))
	f["vowel_consonant_ratio"] = vowelConsonantRatio(host)

	// Entropies
	f["url_entropy"] = Entropy(raw)
	f["domain_entropy"] = Entropy(strings.ReplaceAll(host, ".", ""))
	f["path_entropy"] = Entropy(path)
	f["query_entropy"] = Entropy(query)
	f["subdomain_entropy"] = Entropy(sub)

	// Structural booleans
	f["is_https"] = b2f(scheme == "https")
	f["is_http"] = b2f(scheme == "http")
	f["has_ip_address"] = b2f(ipv4Re.MatchString(host))
	f["has_ipv6_address"] = b2f(strings.Contains(host, ":"))
	f["has_port"] = b2f(hasPort(parseInput))
	f["has_at_symbol"] = b2f(strings.Contains(raw, "@"))
	f["has_double_slash_in_path"] = b2f(strings.Contains(path, "//"))
	f["has_hex_encoding"] = b2f(hexRe.MatchString(raw))
	f["has_punycode"] = b2f(hasPunycode(host))
	f["has_data_uri"] = b2f(scheme == "data" || strings.HasPrefix(lower, "data:"))
	f["has_javascript"] = b2f(scheme == "javascript" || strings.Contains(lower, "javascript:"))
	f["has_mailto"] = b2f(scheme == "mailto" || strings.HasPrefix(lower, "mailto:"))
	f["has_file_scheme"] = b2f(scheme == "file")
	f["has_fragment"] = b2f(fragment != "")
	f["has_query"] = b2f(query != "")
	f["has_www_subdomain"] = b2f(sub == "www" || strings.HasPrefix(sub, "www."))
	f["has_digits_in_domain"] = b2f(countDigits(host) > 0)
	f["has_hyphen_in_domain"] = b2f(strings.Contains(host, "-"))
	f["has_underscore_in_domain"] = b2f(strings.Contains(host, "_"))
	f["has_repeated_digits"] = b2f(hasRepeatedDigits(host))
	f["has_long_subdomain"] = b2f(hasLongLabel(sub, 15))

	// TLD classification
	lastLabel := suffix
	if i := strings.LastIndex(suffix, "."); i >= 0 {
		lastLabel = suffix[i+1:]
	}
	f["tld_is_com"] = b2f(suffix == "com")
	f["tld_is_org"] = b2f(suffix == "org")
	f["tld_is_net"] = b2f(suffix == "net")
	f["is_country_tld"] = b2f(len(lastLabel) == 2)
	f["is_suspicious_tld"] = b2f(SuspiciousTLDs[suffix] || SuspiciousTLDs[lastLabel])
	f["is_trusted_tld"] = b2f(TrustedTLDs[suffix] || TrustedTLDs[lastLabel])
	f["is_url_shortener"] = b2f(Shorteners[registrable])

	// Keyword dictionaries. Brand counting here is substring-based for
	// parity with the training distribution; user-visible brand factors go
	// through the boundary matcher instead.
	brandCount := 0
	for brand := range homograph.BrandDomains {
		if strings.Contains(host, brand) {
			brandCount++
		}
	}
	f["brand_keyword_count"] = float64(brandCount)
	f["phishing_keyword_count"] = float64(countMatches(lower, PhishingKeywords))
	f["malware_keyword_count"] = float64(countMatches(lower, MalwareKeywords))
	f["suspicious_word_count"] = float64(countMatches(sld, SuspiciousDomainKeywords))
	f["has_dangerous_ext"] = b2f(hasSuffixAny(pathLower, DangerousExtensions))
	f["has_exe"] = b2f(strings.HasSuffix(pathLower, ".exe") || strings.Contains(pathLower, ".exe"))
	f["has_archive_ext"] = b2f(hasSuffixAny(pathLower, ArchiveExtensions))
	f["has_double_ext"] = b2f(hasDoubleExtension(pathLower))
	f["has_redirect_param"] = b2f(hasRedirectParam(params))
	f["has_embedded_url"] = b2f(hasEmbeddedURL(pathLower, queryLower))
	f["num_encoded_chars"] = float64(len(hexRe.FindAllString(raw, -1)))

	// Token statistics
	longest, avg := tokenStats(lower)
	f["longest_token_length"] = float64(longest)
	f["avg_token_length"] = avg
	f["max_consecutive_digits"] = float64(maxRun(raw, isDigit))
	f["max_consecutive_consonants"] = float64(maxRun(host, isConsonant))

	// Bigram commonality
	f["url_bigram_score"] = BigramScore(lower)
	f["domain_bigram_score"] = BigramScore(strings.ReplaceAll(host, ".", ""))
	f["sld_bigram_score"] = BigramScore(sld)

	// Brand placement
	f["brand_not_registered"] = b2f(hg.ExactImpersonation)
	f["has_brand_in_subdomain"] = b2f(brandInSubdomain(sub, registrable))

	// Homograph signals
	f["homograph_has_mixed_scripts"] = b2f(hg.MixedScripts)
	f["homograph_confusable_chars"] = float64(hg.ConfusableChars)
	f["homograph_min_brand_distance"] = float64(hg.MinBrandDistance)
	f["homograph_has_char_sub"] = b2f(hg.CharSubstitution)
	f["homograph_is_exact_brand"] = b2f(hg.ExactImpersonation)

	return f
}

// Entropy returns the Shannon entropy of a string in bits per rune.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range strings.ToLower(s) {
		freq[r]++
		total++
	}
	e := 0.0
	for _, c := range freq {
		p := float64(c) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}

// BigramScore returns the fraction of letter bigrams of s appearing in the
// common-bigram set. Non-letter runes break bigram runs.
func BigramScore(s string) float64 {
	s = strings.ToLower(s)
	total, hits := 0, 0
	prev := rune(0)
	for _, r := range s {
		if r < 'a' || r > 'z' {
			prev = 0
			continue
		}
		if prev != 0 {
			total++
			if commonBigrams[string([]rune{prev, r})] {
				hits++
			}
		}
		prev = r
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func pathDepth(path string) int {
	n := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}

func labelCount(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "."))
}

func countDigits(s string) float64 {
	n := 0.0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func countAny(s, chars string) float64 {
	n := 0.0
	for _, r := range s {
		if strings.ContainsRune(chars, r) {
			n++
		}
	}
	return n
}

func vowelConsonantRatio(s string) float64 {
	vowels, consonants := 0, 0
	for _, r := range strings.ToLower(s) {
		if r < 'a' || r > 'z' {
			continue
		}
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else {
			consonants++
		}
	}
	if consonants == 0 {
		return float64(vowels)
	}
	return float64(vowels) / float64(consonants)
}

func hasPort(parseInput string) bool {
	u, err := url.Parse(parseInput)
	if err != nil {
		return false
	}
	return u.Port() != ""
}

func hasPunycode(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

func hasRepeatedDigits(s string) bool {
	var prev rune
	for _, r := range s {
		if r >= '0' && r <= '9' && r == prev {
			return true
		}
		prev = r
	}
	return false
}

func hasLongLabel(sub string, limit int) bool {
	for _, label := range strings.Split(sub, ".") {
		if len(label) > limit {
			return true
		}
	}
	return false
}

func countMatches(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}

func hasSuffixAny(s string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}

// hasDoubleExtension flags names like invoice.pdf.exe: a dangerous final
// extension stacked on an earlier one.
func hasDoubleExtension(pathLower string) bool {
	base := pathLower
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if strings.Count(base, ".") < 2 {
		return false
	}
	return hasSuffixAny(base, DangerousExtensions)
}

func hasRedirectParam(params url.Values) bool {
	for key := range params {
		if redirectParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}

func hasEmbeddedURL(pathLower, queryLower string) bool {
	for _, part := range []string{pathLower, queryLower} {
		if strings.Contains(part, "http://") || strings.Contains(part, "https://") ||
			strings.Contains(part, "http%3a") || strings.Contains(part, "%2f%2f") {
			return true
		}
	}
	return false
}

func tokenStats(s string) (longest int, avg float64) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	if len(tokens) == 0 {
		return 0, 0
	}
	sum := 0
	for _, t := range tokens {
		if len(t) > longest {
			longest = len(t)
		}
		sum += len(t)
	}
	return longest, float64(sum) / float64(len(tokens))
}

func maxRun(s string, match func(rune) bool) int {
	run, best := 0, 0
	for _, r := range s {
		if match(r) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isConsonant(r rune) bool {
	r = r | 0x20 // lowercase ASCII letters
	return r >= 'a' && r <= 'z' && !strings.ContainsRune("aeiou", r)
}

// brandInSubdomain reports a boundary brand token inside any subdomain label
// of a host whose registrable domain is not the brand's official one.
func brandInSubdomain(sub, registrable string) bool {
	if sub == "" || homograph.IsOfficialBrandDomain(registrable) {
		return false
	}
	for _, label := range strings.Split(sub, ".") {
		for brand := range homograph.BrandDomains {
			if homograph.BrandInLabel(label, brand) {
				return true
			}
		}
	}
	return false
}
