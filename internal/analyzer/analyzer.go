// Package analyzer orchestrates the full scan: validation, cache lookup,
// concurrent ML and network inspection, trust scoring, factor generation
// and the final blended verdict.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Alcary/QR-Code-Analyzer/internal/features"
	"github.com/Alcary/QR-Code-Analyzer/internal/ml"
	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
	"github.com/Alcary/QR-Code-Analyzer/internal/riskfactor"
	"github.com/Alcary/QR-Code-Analyzer/internal/trust"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

// Statuses are the three verdicts the scan endpoint can return.
const (
	StatusSafe       = "safe"
	StatusSuspicious = "suspicious"
	StatusDanger     = "danger"
)

// Details is the evidence bundle attached to every verdict.
type Details struct {
	ML          ml.Prediction           `json:"ml"`
	Domain      trust.Report            `json:"domain"`
	Network     *netprobe.NetworkResult `json:"network,omitempty"`
	RiskFactors []riskfactor.Factor     `json:"risk_factors"`
	AnalysisMs  int64                   `json:"analysis_time_ms"`
}

// Result is the public outcome of one scan.
type Result struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	RiskScore float64 `json:"risk_score"`
	Details   Details `json:"details"`
}

// Options size the result cache and the input validator.
type Options struct {
	CacheMaxSize int
	CacheTTL     time.Duration
	MaxURLLength int
}

func DefaultOptions() Options {
	return Options{CacheMaxSize: 2000, CacheTTL: time.Hour, MaxURLLength: urlinfo.MaxURLLength}
}

// Analyzer wires the predictor and inspector together. It is built once at
// startup and safe for concurrent use; the cache is the only mutable state.
type Analyzer struct {
	predictor *ml.Predictor
	inspector *netprobe.Inspector
	cache     *resultCache
	maxURLLen int
	log       zerolog.Logger
}

func New(predictor *ml.Predictor, inspector *netprobe.Inspector, opts Options, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		predictor: predictor,
		inspector: inspector,
		cache:     newResultCache(opts.CacheMaxSize, opts.CacheTTL),
		maxURLLen: opts.MaxURLLength,
		log:       log.With().Str("component", "analyzer").Logger(),
	}
}

// CacheLen reports the current number of cached results.
func (a *Analyzer) CacheLen() int { return a.cache.len() }

// Analyze runs the full pipeline for one URL.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) Result {
	start := time.Now()

	info, err := urlinfo.NormalizeMax(rawURL, a.maxURLLen)
	if err != nil {
		return validationResult(err, start)
	}

	if cached, ok := a.cache.get(info.Raw); ok {
		a.log.Debug().Str("url", info.Raw).Msg("cache hit")
		return cached
	}

	var pred ml.Prediction
	var netRes netprobe.NetworkResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var perr error
		pred, perr = a.predictor.Predict(gctx, info.Raw)
		if perr != nil {
			a.log.Warn().Err(perr).Msg("prediction failed, using neutral score")
			pred = ml.Prediction{Score: ml.NeutralScore}
		}
		return nil
	})
	g.Go(func() error {
		netRes = a.inspector.Inspect(gctx, info.Raw, info.Hostname, info.RegistrableDomain)
		return nil
	})
	g.Wait()

	report := trust.Score(info.Hostname, info.Path, &netRes)
	dampenedML := pred.Score * report.DampeningFactor

	factors := riskfactor.Generate(info.Raw)
	isShortener := hasFactor(factors, "url_shortener") ||
		features.Shorteners[info.RegistrableDomain]
	factors = append(factors, networkFactors(&netRes, isShortener)...)
	sortFactors(factors)

	final := clamp01(mlWeight*dampenedML +
		networkWeight*networkRiskScore(factors) +
		heuristicWeight*heuristicScore(factors))

	res := Result{
		RiskScore: final,
		Details: Details{
			ML:          pred,
			Domain:      report,
			Network:     &netRes,
			RiskFactors: factors,
		},
	}
	res.Status, res.Message = verdict(final, factors, &netRes, report.Tier)
	res.Details.AnalysisMs = time.Since(start).Milliseconds()

	a.cache.put(info.Raw, res)
	a.log.Info().
		Str("url", info.Raw).
		Str("status", res.Status).
		Float64("risk_score", res.RiskScore).
		Int64("ms", res.Details.AnalysisMs).
		Msg("scan complete")
	return res
}

// validationResult maps normaliser failures to verdicts directly: a URL we
// refuse to parse still deserves an answer the client can act on.
func validationResult(err error, start time.Time) Result {
	status := StatusDanger
	message := "URL could not be analyzed"
	switch {
	case errors.Is(err, urlinfo.ErrUnsupportedScheme):
		status, message = StatusSuspicious, "URL uses an unsupported scheme"
	case errors.Is(err, urlinfo.ErrURLTooLong):
		status, message = StatusSuspicious, "URL exceeds the maximum supported length"
	case errors.Is(err, urlinfo.ErrEmptyURL):
		message = "Empty URL"
	case errors.Is(err, urlinfo.ErrInvalidHostname):
		message = "URL has no valid hostname"
	}
	score := 0.5
	if status == StatusDanger {
		score = 0.9
	}
	return Result{
		Status:    status,
		Message:   message,
		RiskScore: score,
		Details: Details{
			ML:          ml.Prediction{Score: ml.NeutralScore},
			RiskFactors: []riskfactor.Factor{},
			AnalysisMs:  time.Since(start).Milliseconds(),
		},
	}
}

// verdict applies the hard overrides, then the score thresholds.
func verdict(final float64, factors []riskfactor.Factor, net *netprobe.NetworkResult, tier trust.Tier) (string, string) {
	switch {
	case net.DNS.Error == netprobe.ErrDomainNotFound:
		return StatusDanger, "Domain does not exist"
	case net.HTTP.Error == netprobe.ErrSSRFBlocked || net.HTTP.Error == netprobe.ErrSSRFCheckFailed:
		return StatusDanger, "SSRF attempt blocked: URL targets a restricted network"
	case net.HTTP.StatusCode >= 500 && net.HTTP.StatusCode < 600:
		return StatusDanger, fmt.Sprintf("Server error (%d) from target site", net.HTTP.StatusCode)
	case (net.HTTP.Error == netprobe.ErrSiteUnreachable || net.HTTP.Error == netprobe.ErrTimeout) && !net.DNS.Resolved:
		return StatusDanger, "Domain is unreachable and does not resolve"
	}

	switch {
	case final >= dangerThreshold:
		return StatusDanger, fmt.Sprintf("High risk detected (%.0f%%): %s",
			final*100, topMessages(factors, 3))
	case final >= suspiciousThreshold:
		return StatusSuspicious, fmt.Sprintf("Potentially unsafe (%.0f%%): %s",
			final*100, topMessages(factors, 2))
	}
	return StatusSafe, safeMessage(tier, factors)
}

func safeMessage(tier trust.Tier, factors []riskfactor.Factor) string {
	switch tier {
	case trust.TierTrusted:
		return "No significant risks detected. Established domain with a strong track record."
	case trust.TierModerate:
		return "No significant risks detected. Domain shows moderate trust signals."
	case trust.TierUntrusted:
		if hasFactor(factors, "url_shortener") {
			return "URL shortener detected. The destination could not be fully verified; proceed with care."
		}
		return "No significant risks detected, but this is a low-trust domain. Proceed with care."
	default:
		return "No significant risks detected."
	}
}

var severityRank = map[riskfactor.Severity]int{
	riskfactor.SeverityCritical: 3,
	riskfactor.SeverityHigh:     2,
	riskfactor.SeverityMedium:   1,
	riskfactor.SeverityLow:      0,
}

// sortFactors orders by severity, keeping the generation order within a
// severity so output is deterministic.
func sortFactors(factors []riskfactor.Factor) {
	sort.SliceStable(factors, func(i, j int) bool {
		return severityRank[factors[i].Severity] > severityRank[factors[j].Severity]
	})
}

func topMessages(factors []riskfactor.Factor, n int) string {
	if len(factors) == 0 {
		return "multiple risk signals"
	}
	if n > len(factors) {
		n = len(factors)
	}
	msgs := make([]string, 0, n)
	for _, f := range factors[:n] {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func hasFactor(factors []riskfactor.Factor, code string) bool {
	for _, f := range factors {
		if f.Code == code {
			return true
		}
	}
	return false
}
