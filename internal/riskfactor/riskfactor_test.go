package riskfactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(factors []Factor) []string {
	out := make([]string, 0, len(factors))
	for _, f := range factors {
		out = append(out, f.Code)
	}
	return out
}

func TestCleanURLProducesNoFactors(t *testing.T) {
	for _, raw := range []string{
		"https://google.com/",
		"https://example.com/about",
		"https://www.wikipedia.org/wiki/Go",
	} {
		assert.Empty(t, Generate(raw), raw)
	}
}

func TestSeverityAlwaysClosed(t *testing.T) {
	valid := map[Severity]bool{
		SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
	}
	for _, raw := range []string{
		"http://192.168.1.1/admin",
		"https://paypa1.com/wallet",
		"https://user@evil.tk//redirect?url=https://other.com",
		"https://a.b.c.d.e.example.xyz/file.exe",
	} {
		for _, f := range Generate(raw) {
			assert.True(t, valid[f.Severity], "%s: %s has severity %q", raw, f.Code, f.Severity)
			assert.NotEmpty(t, f.Code)
			assert.NotEmpty(t, f.Message)
		}
	}
}

func TestIPLiteral(t *testing.T) {
	got := codes(Generate("http://192.168.1.1/admin"))
	assert.Contains(t, got, "ip_literal_url")
}

func TestCredentialInjection(t *testing.T) {
	got := codes(Generate("https://user@evil.com/x"))
	assert.Contains(t, got, "credential_injection")
}

func TestLookalikeDomain(t *testing.T) {
	got := codes(Generate("https://paypa1.com/wallet"))
	hit := false
	for _, c := range got {
		if c == "char_substitution" || c == "brand_lookalike" || c == "brand_impersonation" {
			hit = true
		}
	}
	assert.True(t, hit, "expected an impersonation code, got %v", got)
}

func TestBoundaryRuleSuppressesSubstrings(t *testing.T) {
	for _, raw := range []string{
		"https://pineapple.com/",
		"https://snapple.com/",
	} {
		got := codes(Generate(raw))
		assert.NotContains(t, got, "brand_in_unofficial_domain", raw)
		assert.NotContains(t, got, "brand_impersonation", raw)
	}
}

func TestBoundaryRuleCatchesTokens(t *testing.T) {
	got := codes(Generate("https://secure-apple.xyz/login"))
	assert.Contains(t, got, "brand_in_unofficial_domain")
}

func TestOfficialDomainIsExempt(t *testing.T) {
	got := codes(Generate("https://www.apple.com/store"))
	assert.NotContains(t, got, "brand_in_unofficial_domain")
	assert.NotContains(t, got, "brand_impersonation")
	assert.NotContains(t, got, "brand_lookalike")
}

func TestJavascriptProtocol(t *testing.T) {
	factors := Generate("javascript://evil.com/x")
	require.NotEmpty(t, factors)
	var jf *Factor
	for i := range factors {
		if factors[i].Code == "javascript_protocol" {
			jf = &factors[i]
		}
	}
	require.NotNil(t, jf)
	assert.Equal(t, SeverityCritical, jf.Severity)
}

func TestShortener(t *testing.T) {
	got := codes(Generate("https://bit.ly/3xYzAbC"))
	assert.Contains(t, got, "url_shortener")
}

func TestDangerousFiletype(t *testing.T) {
	got := codes(Generate("https://downloads.example.xyz/setup.exe"))
	assert.Contains(t, got, "dangerous_filetype")
}

func TestExcessiveSubdomainsEvidence(t *testing.T) {
	factors := Generate("https://a.b.c.d.example.com/")
	var found *Factor
	for i := range factors {
		if factors[i].Code == "excessive_subdomains" {
			found = &factors[i]
		}
	}
	require.NotNil(t, found)
	assert.NotEmpty(t, found.Evidence)
}

func TestNonStandardPort(t *testing.T) {
	got := codes(Generate("https://example.com:8443/x"))
	assert.Contains(t, got, "non_standard_port")

	got = codes(Generate("https://example.com:443/x"))
	assert.NotContains(t, got, "non_standard_port")
}
