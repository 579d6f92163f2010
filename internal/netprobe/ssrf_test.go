package netprobe

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockedIP(t *testing.T) {
	blocked := []string{
		"127.0.0.1",
		"10.0.0.1",
		"172.16.5.5",
		"192.168.1.1",
		"169.254.169.254",
		"100.64.0.1",
		"198.18.0.1",
		"0.0.0.0",
		"224.0.0.251",
		"::1",
		"fc00::1",
		"fe80::1",
	}
	for _, s := range blocked {
		ip := net.ParseIP(s)
		require.NotNil(t, ip, s)
		assert.True(t, IsBlockedIP(ip), s)
	}

	allowed := []string{"8.8.8.8", "1.1.1.1", "93.184.216.34", "2606:4700::1111"}
	for _, s := range allowed {
		ip := net.ParseIP(s)
		require.NotNil(t, ip, s)
		assert.False(t, IsBlockedIP(ip), s)
	}
}

func TestGuardCheckLiteralIP(t *testing.T) {
	g := &Guard{Resolve: func(ctx context.Context, host string) ([]net.IP, error) {
		t.Fatal("resolver must not be used for literal IPs")
		return nil, nil
	}}

	blocked, err := g.Check(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = g.Check(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.False(t, blocked)

	// Bracketed IPv6 literals are unwrapped before parsing.
	blocked, err = g.Check(context.Background(), "[::1]")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestGuardCheckResolved(t *testing.T) {
	g := &Guard{Resolve: func(ctx context.Context, host string) ([]net.IP, error) {
		switch host {
		case "internal.example":
			return []net.IP{net.ParseIP("169.254.169.254")}, nil
		case "mixed.example":
			// One public and one private address: still blocked.
			return []net.IP{net.ParseIP("93.184.216.34"), net.ParseIP("10.1.2.3")}, nil
		case "public.example":
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		}
		return nil, errors.New("no such host")
	}}

	blocked, err := g.Check(context.Background(), "internal.example")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = g.Check(context.Background(), "mixed.example")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = g.Check(context.Background(), "public.example")
	require.NoError(t, err)
	assert.False(t, blocked)

	// A host that fails to resolve is not blocked; the fetch that follows
	// fails on its own and reports the site as unreachable.
	blocked, err = g.Check(context.Background(), "gone.example")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestGuardCheckContextExpired(t *testing.T) {
	g := &Guard{Resolve: func(ctx context.Context, host string) ([]net.IP, error) {
		return nil, errors.New("lookup canceled")
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Check(ctx, "slow.example")
	assert.Error(t, err, "an expired context is a guard fault, not a resolution miss")
}
