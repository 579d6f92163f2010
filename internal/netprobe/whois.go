package netprobe

import (
	"context"
	"strings"
	"time"

	"github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
)

// Domains registered within this window get the new-domain flag.
const newDomainDays = 30

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WHOISProber wraps the registry lookup. WHOIS servers are slow and flaky,
// so failures here are soft: the result simply carries no age and the trust
// scorer falls back to its unknown-age score.
type WHOISProber struct {
	client *whois.Client
}

func NewWHOISProber(timeout time.Duration) *WHOISProber {
	c := whois.NewClient()
	c.SetTimeout(timeout)
	return &WHOISProber{client: c}
}

func (p *WHOISProber) Probe(ctx context.Context, domain string) WHOISResult {
	type lookup struct {
		res WHOISResult
	}
	done := make(chan lookup, 1)
	go func() {
		done <- lookup{res: p.lookup(domain, 0)}
	}()

	select {
	case l := <-done:
		return l.res
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return WHOISResult{Error: ErrWhoisTimeout}
		}
		return WHOISResult{Error: ErrWhoisCancelled}
	}
}

// lookup queries the registry and walks up one label at a time when the
// record does not parse, since many registries only answer for the
// registrable domain.
func (p *WHOISProber) lookup(domain string, depth int) WHOISResult {
	raw, err := p.client.Whois(domain)
	if err != nil {
		return WHOISResult{}
	}

	rec, err := parser.Parse(raw)
	if err != nil || rec.Domain == nil {
		parts := strings.Split(domain, ".")
		if len(parts) > 2 && depth < 2 {
			return p.lookup(strings.Join(parts[1:], "."), depth+1)
		}
		return WHOISResult{}
	}

	var res WHOISResult
	if rec.Registrar != nil {
		res.Registrar = rec.Registrar.Name
	}
	created := parseWhoisDate(rec.Domain.CreatedDate)
	if created.IsZero() {
		return res
	}

	age := int(time.Since(created).Hours() / 24)
	res.AgeDays = &age
	res.CreationDate = created.Format("2006-01-02")
	res.IsNewDomain = age < newDomainDays
	return res
}

func parseWhoisDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
