package analyzer

import (
	"fmt"

	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
	"github.com/Alcary/QR-Code-Analyzer/internal/riskfactor"
)

// Final-score blend.
const (
	mlWeight        = 0.55
	networkWeight   = 0.25
	heuristicWeight = 0.20
)

// Verdict thresholds on the final score.
const (
	dangerThreshold     = 0.70
	suspiciousThreshold = 0.40
)

// severityWeights feed the heuristic score. Unknown severities count as low.
var severityWeights = map[riskfactor.Severity]float64{
	riskfactor.SeverityCritical: 0.20,
	riskfactor.SeverityHigh:     0.12,
	riskfactor.SeverityMedium:   0.06,
	riskfactor.SeverityLow:      0.03,
}

// networkRiskWeights are the additive contributions of network-derived
// factor codes to the network-risk score.
var networkRiskWeights = map[string]float64{
	"ssl_invalid_cert":       0.20,
	"new_cert":               0.10,
	"new_domain":             0.15,
	"very_low_ttl":           0.10,
	"no_mx_records":          0.05,
	"suspicious_nameserver":  0.12,
	"no_https":               0.08,
	"excessive_redirects":    0.10,
	"cross_domain_redirect":  0.15,
	"too_many_redirects":     0.10,
	"page_password_field":    0.10,
	"page_billing_info":      0.12,
	"page_sensitive_id":      0.12,
	"page_geolocation":       0.08,
	"page_excessive_iframes": 0.08,
	"page_obfuscated_js":     0.15,
}

// contentFlagFactors maps HTTP content flags to their risk-factor codes.
var contentFlagFactors = map[string]struct {
	code     string
	message  string
	severity riskfactor.Severity
}{
	netprobe.FlagPasswordField: {
		"page_password_field", "Page asks for a password", riskfactor.SeverityHigh},
	netprobe.FlagBillingInfoRequest: {
		"page_billing_info", "Page requests billing or card details", riskfactor.SeverityHigh},
	netprobe.FlagSensitiveIDRequest: {
		"page_sensitive_id", "Page requests government ID details", riskfactor.SeverityHigh},
	netprobe.FlagGeolocationTracking: {
		"page_geolocation", "Page tracks visitor geolocation", riskfactor.SeverityMedium},
	netprobe.FlagExcessiveIframes: {
		"page_excessive_iframes", "Page embeds an unusual number of iframes", riskfactor.SeverityMedium},
	netprobe.FlagObfuscatedJS: {
		"page_obfuscated_js", "Page contains obfuscated JavaScript", riskfactor.SeverityHigh},
}

const excessiveRedirectThreshold = 3

// networkFactors derives risk factors from the joined probe results.
// Cross-domain redirects are expected behaviour for shorteners, so that
// factor is suppressed when the URL itself is a known shortener.
func networkFactors(net *netprobe.NetworkResult, isShortener bool) []riskfactor.Factor {
	factors := []riskfactor.Factor{}
	add := func(code, message string, sev riskfactor.Severity, evidence string) {
		factors = append(factors, riskfactor.Factor{
			Code: code, Message: message, Severity: sev, Evidence: evidence,
		})
	}

	if net.SSL.Error == netprobe.ErrSSLVerificationFailed ||
		net.HTTP.Error == netprobe.ErrSSLVerificationFailed {
		add("ssl_invalid_cert", "SSL certificate failed verification", riskfactor.SeverityHigh, "")
	}
	if net.SSL.IsNewCert {
		add("new_cert", "SSL certificate issued within the last week", riskfactor.SeverityMedium, "")
	}
	if net.WHOIS.IsNewDomain && net.WHOIS.AgeDays != nil {
		add("new_domain", "Domain registered within the last 30 days",
			riskfactor.SeverityHigh, fmt.Sprintf("%d days old", *net.WHOIS.AgeDays))
	}

	for _, f := range net.DNS.Flags {
		switch f {
		case netprobe.FlagVeryLowTTL:
			add("very_low_ttl", "DNS TTL under 5 seconds (fast-flux indicator)", riskfactor.SeverityMedium, "")
		case netprobe.FlagNoMXRecords:
			add("no_mx_records", "Domain has no mail records", riskfactor.SeverityLow, "")
		case netprobe.FlagSuspiciousNameserver:
			add("suspicious_nameserver", "Domain uses a free or throwaway DNS provider", riskfactor.SeverityHigh, "")
		}
	}

	if net.HTTP.SchemeWarning {
		add("no_https", "Connection is not encrypted", riskfactor.SeverityMedium, "")
	}
	if net.HTTP.RedirectCount > excessiveRedirectThreshold {
		add("excessive_redirects", "URL goes through many redirects",
			riskfactor.SeverityMedium, fmt.Sprintf("%d redirects", net.HTTP.RedirectCount))
	}
	if net.HTTP.RedirectDomainMismatch && !isShortener {
		add("cross_domain_redirect", "URL redirects to a different domain", riskfactor.SeverityMedium, "")
	}
	if net.HTTP.Error == netprobe.ErrTooManyRedirects {
		add("too_many_redirects", "Redirect chain exceeded the follow limit", riskfactor.SeverityMedium, "")
	}
	if net.HTTP.StatusCode >= 400 && net.HTTP.StatusCode < 500 {
		add("http_client_error", "Site returned a client error",
			riskfactor.SeverityLow, fmt.Sprintf("status %d", net.HTTP.StatusCode))
	}

	for _, flag := range net.HTTP.ContentFlags {
		if f, ok := contentFlagFactors[flag]; ok {
			add(f.code, f.message, f.severity, "")
		}
	}

	return factors
}

// heuristicScore sums severity weights over all factors, clamped to 1.
func heuristicScore(factors []riskfactor.Factor) float64 {
	score := 0.0
	for _, f := range factors {
		w, ok := severityWeights[f.Severity]
		if !ok {
			w = severityWeights[riskfactor.SeverityLow]
		}
		score += w
	}
	return clamp01(score)
}

// networkRiskScore sums the fixed per-condition weights, clamped to 1.
func networkRiskScore(factors []riskfactor.Factor) float64 {
	score := 0.0
	for _, f := range factors {
		score += networkRiskWeights[f.Code]
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
