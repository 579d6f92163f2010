package netprobe

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// A TTL below this is a classic fast-flux signature.
const veryLowTTLSeconds = 5

var suspiciousNameservers = []string{
	"freedns",
	"afraid.org",
	"cloudns",
	"he.net",
}

// DNSProber issues A, MX and NS queries directly rather than through the
// system resolver so it can see TTLs and rcodes.
type DNSProber struct {
	client  *dns.Client
	servers []string
}

func NewDNSProber(timeout time.Duration) *DNSProber {
	servers := []string{"8.8.8.8:53"}
	if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
		servers = make([]string, 0, len(conf.Servers))
		for _, s := range conf.Servers {
			servers = append(servers, s+":"+conf.Port)
		}
	}
	return &DNSProber{
		client:  &dns.Client{Timeout: timeout},
		servers: servers,
	}
}

func (p *DNSProber) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	var lastErr error
	for _, server := range p.servers {
		r, _, err := p.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		return r, nil
	}
	return nil, lastErr
}

// Probe resolves the hostname and collects the flags the scorer consumes.
// MX presence is checked on the registrable domain, not the full host,
// since mail is normally configured at the zone apex.
func (p *DNSProber) Probe(ctx context.Context, host, registrable string) DNSResult {
	res := DNSResult{Flags: []string{}}

	r, err := p.exchange(ctx, host, dns.TypeA)
	if err != nil {
		// Transport failure, including timeout: leave the result
		// unresolved and let the HTTP probe report reachability.
		return res
	}
	switch r.Rcode {
	case dns.RcodeNameError:
		res.Error = ErrDomainNotFound
		return res
	case dns.RcodeServerFailure, dns.RcodeRefused:
		res.Error = ErrNoNameservers
		return res
	}

	var minTTL uint32
	for _, rr := range r.Answer {
		if a, ok := rr.(*dns.A); ok {
			res.Resolved = true
			ttl := a.Header().Ttl
			if res.TTL == nil || ttl < minTTL {
				minTTL = ttl
				res.TTL = &minTTL
			}
		}
	}
	if !res.Resolved {
		res.Flags = append(res.Flags, FlagNoARecord)
	} else if minTTL < veryLowTTLSeconds {
		res.Flags = append(res.Flags, FlagVeryLowTTL)
	}

	if registrable == "" {
		registrable = host
	}
	if mx, err := p.exchange(ctx, registrable, dns.TypeMX); err == nil {
		hasMX := false
		for _, rr := range mx.Answer {
			if _, ok := rr.(*dns.MX); ok {
				hasMX = true
				break
			}
		}
		if !hasMX {
			res.Flags = append(res.Flags, FlagNoMXRecords)
		}
	}

	if ns, err := p.exchange(ctx, registrable, dns.TypeNS); err == nil {
	nsLoop:
		for _, rr := range ns.Answer {
			nsrr, ok := rr.(*dns.NS)
			if !ok {
				continue
			}
			target := strings.ToLower(nsrr.Ns)
			for _, bad := range suspiciousNameservers {
				if strings.Contains(target, bad) {
					res.Flags = append(res.Flags, FlagSuspiciousNameserver)
					break nsLoop
				}
			}
		}
	}

	return res
}
