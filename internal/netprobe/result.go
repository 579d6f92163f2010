// Package netprobe runs the DNS, SSL, HTTP and WHOIS inspections for a
// candidate URL concurrently, with SSRF protection enforced on every HTTP
// hop. Probe failures are recorded as error codes inside the results; the
// inspector itself never fails a scan.
package netprobe

// Probe error codes. These strings are part of the scan API and feed the
// orchestrator's hard-override rules.
const (
	ErrDomainNotFound = "domain_not_found"
	ErrNoNameservers  = "no_nameservers"

	ErrSSLVerificationFailed = "ssl_verification_failed"
	ErrSSLConnectionFailed   = "ssl_connection_failed"
	ErrEmptyCert             = "empty_cert"

	ErrSSRFBlocked      = "ssrf_blocked"
	ErrSSRFCheckFailed  = "ssrf_check_failed"
	ErrSiteUnreachable  = "site_unreachable"
	ErrTimeout          = "timeout"
	ErrTooManyRedirects = "too_many_redirects"
	ErrInvalidURL       = "invalid_url"

	ErrWhoisTimeout   = "whois_timeout"
	ErrWhoisCancelled = "whois_cancelled"
)

// DNS flags.
const (
	FlagVeryLowTTL           = "very_low_ttl"
	FlagNoMXRecords          = "no_mx_records"
	FlagNoARecord            = "no_a_record"
	FlagSuspiciousNameserver = "suspicious_nameserver"
)

// HTTP content flags, populated only for 200-status HTML bodies.
const (
	FlagPasswordField       = "password_field"
	FlagBillingInfoRequest  = "billing_info_request"
	FlagSensitiveIDRequest  = "sensitive_id_request"
	FlagGeolocationTracking = "geolocation_tracking"
	FlagExcessiveIframes    = "excessive_iframes"
	FlagObfuscatedJS        = "obfuscated_javascript"
)

type DNSResult struct {
	Resolved bool     `json:"resolved"`
	TTL      *uint32  `json:"ttl_seconds,omitempty"`
	Flags    []string `json:"flags"`
	Error    string   `json:"error,omitempty"`
}

type SSLResult struct {
	Valid           bool   `json:"valid"`
	Issuer          string `json:"issuer,omitempty"`
	DaysUntilExpiry *int   `json:"days_until_expiry,omitempty"`
	CertAgeDays     *int   `json:"cert_age_days,omitempty"`
	IsNewCert       bool   `json:"is_new_cert"`
	Error           string `json:"error,omitempty"`
}

type HTTPResult struct {
	StatusCode             int      `json:"status_code,omitempty"`
	FinalURL               string   `json:"final_url,omitempty"`
	RedirectCount          int      `json:"redirect_count"`
	RedirectDomainMismatch bool     `json:"redirect_domain_mismatch"`
	ContentFlags           []string `json:"content_flags"`
	SchemeWarning          bool     `json:"scheme_warning"`
	Server                 string   `json:"server,omitempty"`
	Error                  string   `json:"error,omitempty"`
}

type WHOISResult struct {
	AgeDays      *int   `json:"age_days,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	Registrar    string `json:"registrar,omitempty"`
	IsNewDomain  bool   `json:"is_new_domain"`
	Error        string `json:"error,omitempty"`
}

// NetworkResult joins the four probe results for one inspection.
type NetworkResult struct {
	DNS   DNSResult   `json:"dns"`
	SSL   SSLResult   `json:"ssl"`
	HTTP  HTTPResult  `json:"http"`
	WHOIS WHOISResult `json:"whois"`
}
