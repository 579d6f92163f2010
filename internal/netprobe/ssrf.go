package netprobe

import (
	"context"
	"net"
	"strings"
)

// blockedCIDRs covers loopback, RFC1918, link-local, CGN, benchmarking,
// documentation and multicast space plus the v6 equivalents. A URL whose
// host resolves into any of these is never fetched.
var blockedCIDRs = mustParseCIDRs(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"::1/128",
	"::/128",
	"fc00::/7",
	"fe80::/10",
	"ff00::/8",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("netprobe: bad cidr " + c)
		}
		nets = append(nets, n)
	}
	return nets
}

// Guard decides whether a host may be contacted. The resolver is
// injectable so tests can supply fixed address sets.
type Guard struct {
	Resolve func(ctx context.Context, host string) ([]net.IP, error)
}

// NewGuard returns a guard backed by the system resolver.
func NewGuard() *Guard {
	return &Guard{
		Resolve: func(ctx context.Context, host string) ([]net.IP, error) {
			addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, err
			}
			ips := make([]net.IP, 0, len(addrs))
			for _, a := range addrs {
				ips = append(ips, a.IP)
			}
			return ips, nil
		},
	}
}

// IsBlockedIP reports whether a single address falls inside the blocklist.
func IsBlockedIP(ip net.IP) bool {
	for _, n := range blockedCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Check vets a hostname before an outbound request. A literal IP is tested
// directly; otherwise every resolved address must pass. A host that does
// not resolve is not treated as blocked: the fetch that follows will fail
// on its own and report the site as unreachable. The error return is
// reserved for guard faults, such as the context expiring mid-lookup.
func (g *Guard) Check(ctx context.Context, host string) (blocked bool, err error) {
	host = strings.Trim(host, "[]")
	if ip := net.ParseIP(host); ip != nil {
		return IsBlockedIP(ip), nil
	}
	ips, err := g.Resolve(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	for _, ip := range ips {
		if IsBlockedIP(ip) {
			return true, nil
		}
	}
	return false, nil
}
