package netprobe

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Timeouts bounds each probe independently so one slow registry or origin
// cannot starve the rest of the inspection.
type Timeouts struct {
	DNS   time.Duration
	SSL   time.Duration
	HTTP  time.Duration
	WHOIS time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		DNS:   3 * time.Second,
		SSL:   5 * time.Second,
		HTTP:  8 * time.Second,
		WHOIS: 10 * time.Second,
	}
}

// Inspector owns the four probes and the SSRF guard.
type Inspector struct {
	dns      *DNSProber
	ssl      *SSLProber
	http     *HTTPProber
	whois    *WHOISProber
	guard    *Guard
	timeouts Timeouts
	log      zerolog.Logger
}

func NewInspector(t Timeouts, log zerolog.Logger) *Inspector {
	guard := NewGuard()
	return &Inspector{
		dns:      NewDNSProber(t.DNS),
		ssl:      NewSSLProber(t.SSL),
		http:     NewHTTPProber(t.HTTP, guard),
		whois:    NewWHOISProber(t.WHOIS),
		guard:    guard,
		timeouts: t,
		log:      log.With().Str("component", "netprobe").Logger(),
	}
}

// Guard exposes the SSRF guard for tests.
func (i *Inspector) Guard() *Guard { return i.guard }

// Inspect runs all four probes concurrently and joins before returning.
// The URL's first hop is vetted here, before anything touches the network
// on its behalf; redirect hops are vetted inside the HTTP probe.
func (i *Inspector) Inspect(ctx context.Context, rawURL, host, registrable string) NetworkResult {
	start := time.Now()
	var res NetworkResult

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dctx, cancel := context.WithTimeout(gctx, i.timeouts.DNS)
		defer cancel()
		res.DNS = i.dns.Probe(dctx, host, registrable)
		return nil
	})

	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, i.timeouts.SSL)
		defer cancel()
		res.SSL = i.ssl.Probe(sctx, host)
		return nil
	})

	g.Go(func() error {
		hctx, cancel := context.WithTimeout(gctx, i.timeouts.HTTP)
		defer cancel()
		blocked, err := i.guard.Check(hctx, host)
		switch {
		case err != nil:
			res.HTTP = HTTPResult{ContentFlags: []string{}, Error: ErrSSRFCheckFailed}
		case blocked:
			res.HTTP = HTTPResult{ContentFlags: []string{}, Error: ErrSSRFBlocked}
		default:
			res.HTTP = i.http.Probe(hctx, rawURL)
		}
		return nil
	})

	g.Go(func() error {
		wctx, cancel := context.WithTimeout(gctx, i.timeouts.WHOIS)
		defer cancel()
		domain := registrable
		if domain == "" {
			domain = host
		}
		res.WHOIS = i.whois.Probe(wctx, domain)
		return nil
	})

	g.Wait()

	i.log.Debug().
		Str("host", host).
		Dur("elapsed", time.Since(start)).
		Bool("resolved", res.DNS.Resolved).
		Str("http_error", res.HTTP.Error).
		Msg("inspection complete")

	return res
}
