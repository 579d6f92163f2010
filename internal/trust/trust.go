// Package trust derives a continuous domain-trust score from observed
// network signals. The score is never taken from a static whitelist: an
// old domain with a healthy certificate, stable DNS and a plain structure
// earns trust; everything else earns suspicion in proportion.
package trust

import (
	"fmt"
	"math"
	"strings"

	"github.com/Alcary/QR-Code-Analyzer/internal/features"
	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

// Tier buckets the dampening factor for human-readable output.
type Tier string

const (
	TierTrusted   Tier = "trusted"
	TierModerate  Tier = "moderate"
	TierNeutral   Tier = "neutral"
	TierUntrusted Tier = "untrusted"
)

// Report is the scorer's output. DampeningFactor multiplies the raw ML
// score: 0 leaves a trusted domain's ML contribution at zero, 1 passes an
// untrusted domain's ML score through unchanged.
type Report struct {
	Tier            Tier    `json:"tier"`
	DampeningFactor float64 `json:"dampening_factor"`
	Description     string  `json:"description"`

	WhoisScore  float64 `json:"whois_score"`
	SSLScore    float64 `json:"ssl_score"`
	DNSScore    float64 `json:"dns_score"`
	StructScore float64 `json:"struct_score"`
}

// Sub-score weights.
const (
	weightWhois  = 0.30
	weightSSL    = 0.25
	weightDNS    = 0.25
	weightStruct = 0.20
)

// authBaitPatterns are path fragments that credential-phishing pages lean
// on. Each match costs 0.10 trust, capped at 0.30.
var authBaitPatterns = []string{
	"login", "log-in", "signin", "sign-in",
	"verify", "verification", "confirm",
	"account", "password", "passwd", "credential",
	"oauth", "authorize", "auth",
	"secure", "security",
	"billing", "payment",
	"suspend", "suspended",
	"update", "unlock", "recover",
}

const (
	authBaitPerMatch = 0.10
	authBaitCap      = 0.30
)

// Score combines the four sub-scores and the auth-bait penalty into a
// trust value, then inverts it into a dampening factor and tier.
func Score(host, path string, net *netprobe.NetworkResult) Report {
	r := Report{
		WhoisScore:  whoisScore(net),
		SSLScore:    sslScore(net),
		DNSScore:    dnsScore(net),
		StructScore: structScore(host),
	}

	trust := weightWhois*r.WhoisScore +
		weightSSL*r.SSLScore +
		weightDNS*r.DNSScore +
		weightStruct*r.StructScore
	trust -= authBaitPenalty(path)
	trust = clamp01(trust)

	r.DampeningFactor = 1 - trust
	r.Tier = tierFor(r.DampeningFactor)
	r.Description = describe(r.Tier, trust)
	return r
}

// whoisScore is logistic in domain age: a six-month-old domain sits at the
// midpoint and trust saturates over a few years.
func whoisScore(net *netprobe.NetworkResult) float64 {
	if net == nil || net.WHOIS.AgeDays == nil {
		return 0.30
	}
	age := *net.WHOIS.AgeDays
	if age < 0 {
		return 0.05
	}
	return 1 / (1 + math.Exp(-0.015*(float64(age)-180)))
}

func sslScore(net *netprobe.NetworkResult) float64 {
	if net == nil {
		return 0.20
	}
	ssl := net.SSL
	if ssl.Error == netprobe.ErrSSLVerificationFailed {
		return 0
	}
	if !ssl.Valid {
		return 0.20
	}
	score := 0.50
	if ssl.CertAgeDays != nil {
		score += math.Min(float64(*ssl.CertAgeDays)/365, 1) * 0.30
	}
	if ssl.DaysUntilExpiry != nil {
		switch {
		case *ssl.DaysUntilExpiry > 90:
			score += 0.20
		case *ssl.DaysUntilExpiry > 30:
			score += 0.10
		}
	}
	return clamp01(score)
}

func dnsScore(net *netprobe.NetworkResult) float64 {
	if net == nil || !net.DNS.Resolved {
		return 0
	}
	dns := net.DNS
	score := 0.40
	lowTTL := false
	for _, f := range dns.Flags {
		if f == netprobe.FlagVeryLowTTL {
			lowTTL = true
			break
		}
	}
	if dns.TTL != nil && !lowTTL {
		score += math.Min(float64(*dns.TTL)/3600, 1) * 0.30
	}
	if len(dns.Flags) == 0 {
		score += 0.30
	} else {
		score -= 0.10 * float64(len(dns.Flags))
	}
	return clamp01(score)
}

// structScore rates the hostname's shape. Shorteners get zero outright:
// the destination, not the shortener, is what deserves judgment.
func structScore(host string) float64 {
	registrable := urlinfo.RegistrableDomain(host)
	if features.Shorteners[registrable] {
		return 0
	}
	sub, _, _ := urlinfo.SplitHost(host)
	labels := 0
	if sub != "" {
		labels = strings.Count(sub, ".") + 1
	}
	deduction := 0.15 * float64(labels-1)
	if deduction < 0 {
		deduction = 0
	}
	if deduction > 0.30 {
		deduction = 0.30
	}
	return clamp01(0.80 - deduction)
}

func authBaitPenalty(path string) float64 {
	lower := strings.ToLower(path)
	penalty := 0.0
	for _, p := range authBaitPatterns {
		if strings.Contains(lower, p) {
			penalty += authBaitPerMatch
			if penalty >= authBaitCap {
				return authBaitCap
			}
		}
	}
	return penalty
}

func tierFor(dampening float64) Tier {
	switch {
	case dampening <= 0.35:
		return TierTrusted
	case dampening <= 0.60:
		return TierModerate
	case dampening <= 0.80:
		return TierNeutral
	default:
		return TierUntrusted
	}
}

func describe(t Tier, trust float64) string {
	switch t {
	case TierTrusted:
		return fmt.Sprintf("established domain with strong signals (trust %.2f)", trust)
	case TierModerate:
		return fmt.Sprintf("moderately trusted domain (trust %.2f)", trust)
	case TierNeutral:
		return fmt.Sprintf("no strong trust signals either way (trust %.2f)", trust)
	default:
		return fmt.Sprintf("low-trust domain (trust %.2f)", trust)
	}
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
