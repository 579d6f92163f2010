package netprobe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"time"
)

// Certificates younger than this many days get the new-cert flag; phishing
// campaigns typically issue a fresh certificate right before going live.
const newCertDays = 7

// SSLProber makes a verified TLS handshake on :443 and reports certificate
// metadata. Verification failures and connection failures are kept distinct
// because the trust scorer treats them very differently.
type SSLProber struct {
	timeout time.Duration
}

func NewSSLProber(timeout time.Duration) *SSLProber {
	return &SSLProber{timeout: timeout}
}

func (p *SSLProber) Probe(ctx context.Context, host string) SSLResult {
	var res SSLResult

	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, "443"), &tls.Config{
		ServerName: host,
	})
	if err != nil {
		if isVerificationError(err) {
			res.Error = ErrSSLVerificationFailed
		} else {
			res.Error = ErrSSLConnectionFailed
		}
		return res
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		res.Error = ErrEmptyCert
		return res
	}
	leaf := certs[0]

	res.Valid = true
	if orgs := leaf.Issuer.Organization; len(orgs) > 0 {
		res.Issuer = orgs[0]
	} else {
		res.Issuer = leaf.Issuer.CommonName
	}

	now := time.Now()
	age := int(now.Sub(leaf.NotBefore).Hours() / 24)
	res.CertAgeDays = &age
	res.IsNewCert = age >= 0 && age < newCertDays

	expiry := int(leaf.NotAfter.Sub(now).Hours() / 24)
	res.DaysUntilExpiry = &expiry

	return res
}

func isVerificationError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	var invalid x509.CertificateInvalidError
	var hostname x509.HostnameError
	return errors.As(err, &unknownAuth) || errors.As(err, &invalid) || errors.As(err, &hostname)
}
