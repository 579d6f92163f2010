package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
)

func intp(v int) *int       { return &v }
func u32p(v uint32) *uint32 { return &v }

func TestWhoisScore(t *testing.T) {
	assert.Equal(t, 0.30, whoisScore(nil))
	assert.Equal(t, 0.30, whoisScore(&netprobe.NetworkResult{}))

	neg := &netprobe.NetworkResult{WHOIS: netprobe.WHOISResult{AgeDays: intp(-3)}}
	assert.Equal(t, 0.05, whoisScore(neg))

	// Logistic midpoint at 180 days.
	mid := &netprobe.NetworkResult{WHOIS: netprobe.WHOISResult{AgeDays: intp(180)}}
	assert.InDelta(t, 0.5, whoisScore(mid), 1e-9)

	old := &netprobe.NetworkResult{WHOIS: netprobe.WHOISResult{AgeDays: intp(3650)}}
	assert.Greater(t, whoisScore(old), 0.99)

	young := &netprobe.NetworkResult{WHOIS: netprobe.WHOISResult{AgeDays: intp(5)}}
	assert.Less(t, whoisScore(young), 0.10)
}

func TestSSLScore(t *testing.T) {
	failed := &netprobe.NetworkResult{SSL: netprobe.SSLResult{
		Error: netprobe.ErrSSLVerificationFailed,
	}}
	assert.Zero(t, sslScore(failed))

	connFailed := &netprobe.NetworkResult{SSL: netprobe.SSLResult{
		Error: netprobe.ErrSSLConnectionFailed,
	}}
	assert.Equal(t, 0.20, sslScore(connFailed))

	mature := &netprobe.NetworkResult{SSL: netprobe.SSLResult{
		Valid:           true,
		CertAgeDays:     intp(365),
		DaysUntilExpiry: intp(120),
	}}
	assert.InDelta(t, 1.0, sslScore(mature), 1e-9)

	fresh := &netprobe.NetworkResult{SSL: netprobe.SSLResult{
		Valid:           true,
		CertAgeDays:     intp(0),
		DaysUntilExpiry: intp(60),
	}}
	assert.InDelta(t, 0.60, sslScore(fresh), 1e-9)
}

func TestDNSScore(t *testing.T) {
	unresolved := &netprobe.NetworkResult{DNS: netprobe.DNSResult{Resolved: false}}
	assert.Zero(t, dnsScore(unresolved))

	clean := &netprobe.NetworkResult{DNS: netprobe.DNSResult{
		Resolved: true,
		TTL:      u32p(3600),
		Flags:    []string{},
	}}
	assert.InDelta(t, 1.0, dnsScore(clean), 1e-9)

	flagged := &netprobe.NetworkResult{DNS: netprobe.DNSResult{
		Resolved: true,
		TTL:      u32p(2),
		Flags:    []string{netprobe.FlagVeryLowTTL, netprobe.FlagNoMXRecords},
	}}
	// No TTL bonus when very_low_ttl is present, minus 0.10 per flag.
	assert.InDelta(t, 0.20, dnsScore(flagged), 1e-9)
}

func TestStructScore(t *testing.T) {
	assert.Zero(t, structScore("bit.ly"))
	assert.InDelta(t, 0.80, structScore("example.com"), 1e-9)
	assert.InDelta(t, 0.80, structScore("www.example.com"), 1e-9)
	assert.InDelta(t, 0.65, structScore("a.b.example.com"), 1e-9)
	assert.InDelta(t, 0.50, structScore("a.b.c.example.com"), 1e-9)
	// Deduction caps at 0.30.
	assert.InDelta(t, 0.50, structScore("a.b.c.d.e.f.example.com"), 1e-9)
}

func TestAuthBaitPenalty(t *testing.T) {
	assert.Zero(t, authBaitPenalty("/products/12"))
	assert.InDelta(t, 0.10, authBaitPenalty("/login"), 1e-9)
	assert.InDelta(t, 0.30, authBaitPenalty("/login/verify/password/confirm"), 1e-9)
}

func TestTierMapping(t *testing.T) {
	assert.Equal(t, TierTrusted, tierFor(0.20))
	assert.Equal(t, TierTrusted, tierFor(0.35))
	assert.Equal(t, TierModerate, tierFor(0.50))
	assert.Equal(t, TierNeutral, tierFor(0.75))
	assert.Equal(t, TierUntrusted, tierFor(0.90))
}

func TestScoreEndToEnd(t *testing.T) {
	strong := &netprobe.NetworkResult{
		DNS:   netprobe.DNSResult{Resolved: true, TTL: u32p(3600), Flags: []string{}},
		SSL:   netprobe.SSLResult{Valid: true, CertAgeDays: intp(400), DaysUntilExpiry: intp(120)},
		WHOIS: netprobe.WHOISResult{AgeDays: intp(5000)},
	}
	r := Score("example.com", "/", strong)
	assert.Equal(t, TierTrusted, r.Tier)
	assert.Less(t, r.DampeningFactor, 0.25)

	weak := &netprobe.NetworkResult{
		DNS:   netprobe.DNSResult{Resolved: false},
		SSL:   netprobe.SSLResult{Error: netprobe.ErrSSLVerificationFailed},
		WHOIS: netprobe.WHOISResult{},
	}
	r = Score("x9.example.tk", "/login/verify", weak)
	assert.Equal(t, TierUntrusted, r.Tier)
	assert.Greater(t, r.DampeningFactor, 0.80)

	assert.True(t, r.DampeningFactor >= 0 && r.DampeningFactor <= 1)
}
