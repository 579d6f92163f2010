package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
	"github.com/Alcary/QR-Code-Analyzer/internal/riskfactor"
	"github.com/Alcary/QR-Code-Analyzer/internal/trust"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

func errWrap(t *testing.T, raw string) error {
	t.Helper()
	_, err := urlinfo.Normalize(raw)
	require.Error(t, err)
	return err
}

func intp(v int) *int { return &v }

func TestHeuristicScore(t *testing.T) {
	assert.Zero(t, heuristicScore(nil))

	factors := []riskfactor.Factor{
		{Code: "a", Severity: riskfactor.SeverityCritical},
		{Code: "b", Severity: riskfactor.SeverityHigh},
		{Code: "c", Severity: riskfactor.SeverityMedium},
		{Code: "d", Severity: riskfactor.SeverityLow},
	}
	assert.InDelta(t, 0.41, heuristicScore(factors), 1e-9)

	unknown := []riskfactor.Factor{{Code: "x", Severity: "weird"}}
	assert.InDelta(t, 0.03, heuristicScore(unknown), 1e-9, "unknown severity counts as low")

	many := make([]riskfactor.Factor, 10)
	for i := range many {
		many[i] = riskfactor.Factor{Code: "c", Severity: riskfactor.SeverityCritical}
	}
	assert.Equal(t, 1.0, heuristicScore(many), "clamped to 1")
}

func TestNetworkFactorsFromProbes(t *testing.T) {
	net := &netprobe.NetworkResult{
		DNS: netprobe.DNSResult{
			Resolved: true,
			Flags:    []string{netprobe.FlagVeryLowTTL, netprobe.FlagSuspiciousNameserver},
		},
		SSL: netprobe.SSLResult{Error: netprobe.ErrSSLVerificationFailed},
		HTTP: netprobe.HTTPResult{
			StatusCode:             200,
			SchemeWarning:          true,
			RedirectCount:          5,
			RedirectDomainMismatch: true,
			ContentFlags:           []string{netprobe.FlagPasswordField, netprobe.FlagObfuscatedJS},
		},
		WHOIS: netprobe.WHOISResult{IsNewDomain: true, AgeDays: intp(12)},
	}

	factors := networkFactors(net, false)
	got := map[string]riskfactor.Factor{}
	for _, f := range factors {
		got[f.Code] = f
	}

	for _, code := range []string{
		"ssl_invalid_cert", "new_domain", "very_low_ttl", "suspicious_nameserver",
		"no_https", "excessive_redirects", "cross_domain_redirect",
		"page_password_field", "page_obfuscated_js",
	} {
		assert.Contains(t, got, code)
	}
	assert.Equal(t, "12 days old", got["new_domain"].Evidence)
}

func TestCrossDomainRedirectSuppressedForShorteners(t *testing.T) {
	net := &netprobe.NetworkResult{
		HTTP: netprobe.HTTPResult{RedirectDomainMismatch: true},
	}

	factors := networkFactors(net, true)
	for _, f := range factors {
		assert.NotEqual(t, "cross_domain_redirect", f.Code)
	}

	factors = networkFactors(net, false)
	codes := make([]string, 0, len(factors))
	for _, f := range factors {
		codes = append(codes, f.Code)
	}
	assert.Contains(t, codes, "cross_domain_redirect")
}

func TestNetworkRiskScore(t *testing.T) {
	factors := []riskfactor.Factor{
		{Code: "ssl_invalid_cert"},
		{Code: "new_domain"},
		{Code: "very_low_ttl"},
		{Code: "not_a_network_code"},
	}
	assert.InDelta(t, 0.45, networkRiskScore(factors), 1e-9)
}

func TestVerdictHardOverrides(t *testing.T) {
	lowScore := 0.05

	status, msg := verdict(lowScore, nil, &netprobe.NetworkResult{
		DNS: netprobe.DNSResult{Error: netprobe.ErrDomainNotFound},
	}, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)
	assert.Equal(t, "Domain does not exist", msg)

	status, msg = verdict(lowScore, nil, &netprobe.NetworkResult{
		HTTP: netprobe.HTTPResult{Error: netprobe.ErrSSRFBlocked},
	}, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)
	assert.Contains(t, msg, "SSRF")

	status, _ = verdict(lowScore, nil, &netprobe.NetworkResult{
		HTTP: netprobe.HTTPResult{Error: netprobe.ErrSSRFCheckFailed},
	}, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)

	status, msg = verdict(lowScore, nil, &netprobe.NetworkResult{
		HTTP: netprobe.HTTPResult{StatusCode: 503},
	}, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)
	assert.Contains(t, msg, "503")

	status, _ = verdict(lowScore, nil, &netprobe.NetworkResult{
		DNS:  netprobe.DNSResult{Resolved: false},
		HTTP: netprobe.HTTPResult{Error: netprobe.ErrSiteUnreachable},
	}, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)

	// Unreachable but resolving is not an override.
	status, _ = verdict(lowScore, nil, &netprobe.NetworkResult{
		DNS:  netprobe.DNSResult{Resolved: true},
		HTTP: netprobe.HTTPResult{Error: netprobe.ErrSiteUnreachable},
	}, trust.TierNeutral)
	assert.Equal(t, StatusSafe, status)
}

func TestVerdictThresholds(t *testing.T) {
	clean := &netprobe.NetworkResult{DNS: netprobe.DNSResult{Resolved: true}}
	factors := []riskfactor.Factor{
		{Code: "a", Message: "first problem", Severity: riskfactor.SeverityCritical},
		{Code: "b", Message: "second problem", Severity: riskfactor.SeverityHigh},
		{Code: "c", Message: "third problem", Severity: riskfactor.SeverityMedium},
		{Code: "d", Message: "fourth problem", Severity: riskfactor.SeverityLow},
	}

	status, msg := verdict(0.85, factors, clean, trust.TierNeutral)
	assert.Equal(t, StatusDanger, status)
	assert.Contains(t, msg, "85%")
	assert.Contains(t, msg, "first problem")
	assert.Contains(t, msg, "third problem")
	assert.NotContains(t, msg, "fourth problem")

	status, msg = verdict(0.55, factors, clean, trust.TierNeutral)
	assert.Equal(t, StatusSuspicious, status)
	assert.Contains(t, msg, "first problem")
	assert.NotContains(t, msg, "third problem")

	status, _ = verdict(0.10, nil, clean, trust.TierNeutral)
	assert.Equal(t, StatusSafe, status)
}

func TestSafeMessagesByTier(t *testing.T) {
	assert.Contains(t, safeMessage(trust.TierTrusted, nil), "Established")
	assert.Contains(t, safeMessage(trust.TierModerate, nil), "moderate")
	assert.Contains(t, safeMessage(trust.TierNeutral, nil), "No significant risks")
	assert.Contains(t, safeMessage(trust.TierUntrusted, nil), "low-trust")

	shortener := []riskfactor.Factor{{Code: "url_shortener"}}
	assert.Contains(t, safeMessage(trust.TierUntrusted, shortener), "shortener")
}

func TestSortFactorsBySeverity(t *testing.T) {
	factors := []riskfactor.Factor{
		{Code: "low", Severity: riskfactor.SeverityLow},
		{Code: "crit", Severity: riskfactor.SeverityCritical},
		{Code: "med", Severity: riskfactor.SeverityMedium},
		{Code: "high", Severity: riskfactor.SeverityHigh},
	}
	sortFactors(factors)
	assert.Equal(t, "crit", factors[0].Code)
	assert.Equal(t, "high", factors[1].Code)
	assert.Equal(t, "med", factors[2].Code)
	assert.Equal(t, "low", factors[3].Code)
}

func TestCachePutGet(t *testing.T) {
	c := newResultCache(2, time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", Result{Status: StatusSafe})
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, StatusSafe, got.Status)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := newResultCache(10, 10*time.Millisecond)
	c.put("a", Result{Status: StatusSafe})
	time.Sleep(25 * time.Millisecond)
	_, ok := c.get("a")
	assert.False(t, ok)
}

func TestCacheEvictsOldest(t *testing.T) {
	c := newResultCache(2, time.Minute)
	c.put("first", Result{Status: StatusSafe})
	time.Sleep(2 * time.Millisecond)
	c.put("second", Result{Status: StatusSafe})
	time.Sleep(2 * time.Millisecond)
	c.put("third", Result{Status: StatusSafe})

	_, ok := c.get("first")
	assert.False(t, ok, "oldest entry is evicted at capacity")
	_, ok = c.get("second")
	assert.True(t, ok)
	_, ok = c.get("third")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestValidationResults(t *testing.T) {
	res := validationResult(errWrap(t, "javascript:alert(1)"), time.Now())
	assert.Equal(t, StatusSuspicious, res.Status)

	res = validationResult(errWrap(t, ""), time.Now())
	assert.Equal(t, StatusDanger, res.Status)

	res = validationResult(errWrap(t, "https://"), time.Now())
	assert.Equal(t, StatusDanger, res.Status)
	assert.True(t, res.RiskScore >= 0 && res.RiskScore <= 1)
	assert.NotNil(t, res.Details.RiskFactors)
}
