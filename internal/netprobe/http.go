package netprobe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

const (
	maxRedirects = 10
	maxBodyBytes = 50 * 1024

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// HTTPProber fetches a URL following redirects by hand so that every hop
// after the first can be vetted by the SSRF guard before it is contacted.
// The first hop is vetted by the inspector before the probe starts.
type HTTPProber struct {
	client *http.Client
	guard  *Guard
}

func NewHTTPProber(timeout time.Duration, guard *Guard) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		guard: guard,
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Probe fetches the URL, records the redirect chain and, for a 200 HTML
// response, scans the first 50KB of the body for phishing markers.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) HTTPResult {
	res := HTTPResult{ContentFlags: []string{}}

	current, err := url.Parse(rawURL)
	if err != nil || current.Hostname() == "" {
		res.Error = ErrInvalidURL
		return res
	}
	originDomain := urlinfo.RegistrableDomain(current.Hostname())

	var resp *http.Response
	for hop := 0; ; hop++ {
		if hop > 0 {
			blocked, gerr := p.guard.Check(ctx, current.Hostname())
			if gerr != nil {
				res.Error = ErrSSRFCheckFailed
				return res
			}
			if blocked {
				res.Error = ErrSSRFBlocked
				return res
			}
			res.RedirectCount++
		}
		if hop > maxRedirects {
			res.Error = ErrTooManyRedirects
			return res
		}

		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if rerr != nil {
			res.Error = ErrInvalidURL
			return res
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

		resp, err = p.client.Do(req)
		if err != nil {
			res.Error = classifyFetchError(err)
			return res
		}

		if !isRedirect(resp.StatusCode) {
			break
		}
		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if loc == "" {
			break
		}
		next, perr := current.Parse(loc)
		if perr != nil {
			res.Error = ErrInvalidURL
			return res
		}
		current = next
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.FinalURL = current.String()
	res.Server = resp.Header.Get("Server")
	// The warning tracks where the browser lands, not where the scan
	// started: an http entry that upgrades to https is fine, an https
	// entry that downgrades is not.
	res.SchemeWarning = current.Scheme != "https"
	if final := urlinfo.RegistrableDomain(current.Hostname()); final != "" && final != originDomain {
		res.RedirectDomainMismatch = true
	}

	if resp.StatusCode == http.StatusOK &&
		strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		res.ContentFlags = scanContent(string(body))
	}

	return res
}

func classifyFetchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if isVerificationError(err) {
		return ErrSSLVerificationFailed
	}
	return ErrSiteUnreachable
}

var sensitiveIDPattern = regexp.MustCompile(`\bssn\b|\bsocial security\b`)

// scanContent looks for data-collection markers in rendered HTML. Substring
// matching over lowercased bytes is deliberately crude: it survives minified
// markup and needs no DOM parse. The obfuscation markers require the
// eval-of-decoder composition; bare eval or atob calls are too common in
// legitimate bundled scripts to flag.
func scanContent(body string) []string {
	lower := strings.ToLower(body)
	flags := []string{}

	if strings.Contains(lower, `type="password"`) || strings.Contains(lower, `name="password"`) {
		flags = append(flags, FlagPasswordField)
	}
	if containsAny(lower, "credit card", "billing address", "cvv") {
		flags = append(flags, FlagBillingInfoRequest)
	}
	if sensitiveIDPattern.MatchString(lower) {
		flags = append(flags, FlagSensitiveIDRequest)
	}
	if strings.Contains(lower, "geolocation.getcurrentposition") {
		flags = append(flags, FlagGeolocationTracking)
	}
	if strings.Count(lower, "<iframe") > 3 {
		flags = append(flags, FlagExcessiveIframes)
	}
	if containsAny(lower, "eval(atob(", "eval(unescape(") {
		flags = append(flags, FlagObfuscatedJS)
	}
	return flags
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
