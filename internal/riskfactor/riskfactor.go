// Package riskfactor turns URL signals into the structured risk factors
// surfaced to clients. Factor codes are a public contract: renaming one is
// a breaking change for every consumer of the scan API.
package riskfactor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Alcary/QR-Code-Analyzer/internal/features"
	"github.com/Alcary/QR-Code-Analyzer/internal/homograph"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Factor is one structured finding.
type Factor struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Evidence string   `json:"evidence,omitempty"`
}

const (
	domainEntropyThreshold = 4.0
	bigramRandomThreshold  = 0.25
	minSLDLenForBigram     = 6
	maxSubdomains          = 3
	longURLThreshold       = 200
)

// Generate extracts features for raw and derives the URL-based risk factors.
// A clean URL yields an empty slice, never nil findings with empty codes.
func Generate(raw string) []Factor {
	return FromFeatures(raw, features.Extract(raw))
}

// FromFeatures derives risk factors from a precomputed feature map, letting
// the orchestrator reuse the vector it already built for the ML predictor.
func FromFeatures(raw string, f map[string]float64) []Factor {
	raw = strings.TrimSpace(raw)
	port, sld, registrable := parseLenient(raw)
	factors := []Factor{}

	add := func(code, message string, sev Severity, evidence string) {
		factors = append(factors, Factor{Code: code, Message: message, Severity: sev, Evidence: evidence})
	}

	if f["has_ip_address"] > 0 || f["has_ipv6_address"] > 0 {
		add("ip_literal_url", "Uses an IP address instead of a domain name", SeverityHigh, "")
	}
	if f["has_at_symbol"] > 0 {
		add("credential_injection", "Contains @ symbol (credential injection trick)", SeverityHigh, "")
	}
	if f["has_double_slash_in_path"] > 0 {
		add("redirect_pattern", "Contains redirect pattern in path", SeverityMedium, "")
	}
	if f["domain_entropy"] > domainEntropyThreshold {
		add("high_domain_entropy", "Domain name appears randomly generated", SeverityHigh,
			fmt.Sprintf("%.2f", f["domain_entropy"]))
	}
	if f["is_suspicious_tld"] > 0 {
		add("suspicious_tld", "Uses a TLD frequently abused for phishing", SeverityMedium, "")
	}
	if n := int(f["subdomain_count"]); n > maxSubdomains {
		add("excessive_subdomains", fmt.Sprintf("Excessive subdomains (%d)", n), SeverityMedium,
			strconv.Itoa(n))
	}
	if int(f["url_length"]) > longURLThreshold {
		add("long_url", "Unusually long URL", SeverityLow, strconv.Itoa(int(f["url_length"])))
	}
	if port != "" && port != "80" && port != "443" {
		add("non_standard_port", "Uses a non-standard port", SeverityMedium, port)
	}
	if f["has_punycode"] > 0 {
		add("punycode_domain", "Internationalized (punycode) domain name", SeverityMedium, "")
	}

	factors = appendBrandFactors(factors, sld, registrable, f)

	if int(f["phishing_keyword_count"]) >= 2 {
		add("phishing_keywords", "Multiple phishing-style keywords in URL", SeverityMedium,
			strconv.Itoa(int(f["phishing_keyword_count"])))
	}
	if f["has_dangerous_ext"] > 0 {
		add("dangerous_filetype", "Links directly to an executable file", SeverityHigh, "")
	}
	if f["has_embedded_url"] > 0 {
		add("embedded_url", "Contains an embedded URL", SeverityMedium, "")
	}
	if f["has_hex_encoding"] > 0 {
		add("hex_encoding", "Contains hex-encoded characters", SeverityLow, "")
	}
	if f["is_url_shortener"] > 0 {
		add("url_shortener", "URL shortener hides the real destination", SeverityMedium, registrable)
	}
	if f["has_data_uri"] > 0 {
		add("data_uri", "data: URI payload", SeverityHigh, "")
	}
	if f["has_javascript"] > 0 {
		add("javascript_protocol", "javascript: protocol execution attempt", SeverityCritical, "")
	}

	if f["homograph_has_mixed_scripts"] > 0 {
		add("mixed_scripts", "Domain mixes characters from multiple alphabets", SeverityHigh, "")
	}
	if n := int(f["homograph_confusable_chars"]); n > 0 {
		add("confusable_chars", "Domain contains look-alike Unicode characters", SeverityHigh,
			strconv.Itoa(n))
	}
	if f["homograph_has_char_sub"] > 0 {
		add("char_substitution", "Character substitution imitating a known brand", SeverityHigh, "")
	}

	if f["sld_bigram_score"] < bigramRandomThreshold && letterLen(sld) >= minSLDLenForBigram {
		add("random_domain_bigram", "Domain letter patterns look machine-generated", SeverityHigh,
			fmt.Sprintf("%.2f", f["sld_bigram_score"]))
	}
	for _, w := range features.SuspiciousDomainKeywords {
		if strings.Contains(sld, w) {
			add("suspicious_domain_keyword", "Domain contains a known-abuse keyword", SeverityHigh, w)
			break
		}
	}

	return factors
}

// appendBrandFactors emits the brand-targeted factor set. All user-visible
// brand matching goes through the boundary rule: pineapple.com must never
// flag apple, secure-apple.evil.com must.
func appendBrandFactors(factors []Factor, sld, registrable string, f map[string]float64) []Factor {
	official := homograph.IsOfficialBrandDomain(registrable)
	if official {
		return factors
	}

	brandInSLD := ""
	for brand := range homograph.BrandDomains {
		if homograph.BrandInLabel(sld, brand) {
			brandInSLD = brand
			break
		}
	}

	if brandInSLD != "" {
		factors = append(factors, Factor{
			Code:     "brand_in_unofficial_domain",
			Message:  fmt.Sprintf("Uses brand %q outside its official domain", brandInSLD),
			Severity: SeverityHigh,
			Evidence: brandInSLD,
		})
	}
	if f["has_brand_in_subdomain"] > 0 {
		factors = append(factors, Factor{
			Code:     "brand_in_subdomain",
			Message:  "Known brand name placed in a subdomain",
			Severity: SeverityMedium,
		})
	}
	if f["homograph_is_exact_brand"] > 0 {
		factors = append(factors, Factor{
			Code:     "brand_impersonation",
			Message:  "Domain impersonates a known brand",
			Severity: SeverityCritical,
		})
	}

	// brand_lookalike: distance 1 always, distance 2 only with a second
	// suspicion signal, and never duplicating brand_in_unofficial_domain.
	if brandInSLD == "" {
		dist := int(f["homograph_min_brand_distance"])
		extraSuspicion := f["is_suspicious_tld"] > 0 ||
			f["has_digits_in_domain"] > 0 ||
			f["homograph_confusable_chars"] > 0 ||
			f["phishing_keyword_count"] > 0
		if dist >= 1 && (dist <= 1 || (dist == 2 && extraSuspicion)) {
			factors = append(factors, Factor{
				Code:     "brand_lookalike",
				Message:  "Domain closely resembles a known brand",
				Severity: SeverityHigh,
				Evidence: strconv.Itoa(dist),
			})
		}
	}
	return factors
}

// parseLenient mirrors the extractor's forgiving parse so the generator can
// run on inputs the validator rejects.
func parseLenient(raw string) (port, sld, registrable string) {
	parseInput := raw
	if !strings.Contains(raw, "://") && !strings.Contains(raw, ":") {
		parseInput = "https://" + raw
	}
	u, err := url.Parse(parseInput)
	if err != nil {
		return "", "", ""
	}
	host := strings.ToLower(u.Hostname())
	port = u.Port()
	var suffix string
	_, sld, suffix = urlinfo.SplitHost(host)
	registrable = host
	if sld != "" && suffix != "" {
		registrable = sld + "." + suffix
	}
	return port, sld, registrable
}

func letterLen(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return n
}
