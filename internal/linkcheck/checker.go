package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// Outcome is the result of validating a single URL.
type Outcome struct {
	Status model.LinkStatus
	Detail string
}

// Checker validates one URL. Implementations must be safe for concurrent use.
type Checker interface {
	Check(ctx context.Context, rawURL string) Outcome
}

// CheckerConfig controls how URLs are validated.
type CheckerConfig struct {
	Timeout          time.Duration
	ExternalRequests bool     // when false, every network link is skipped
	Allowlist        []string // host patterns; empty means all hosts allowed
	UserAgent        string
}

// httpChecker validates links over HTTP(S) or against the local filesystem.
type httpChecker struct {
	cfg    CheckerConfig
	client *http.Client

	// robots caches per-host robots.txt data for this checker's lifetime.
	robots sync.Map
}

// NewChecker creates a link checker with the given configuration.
func NewChecker(cfg CheckerConfig) Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "HwpMaster-Bot/1.0"
	}
	return &httpChecker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Check routes a URL to a filesystem stat or a network GET and maps the
// result to a status. It never returns an error: failures are statuses.
func (c *httpChecker) Check(ctx context.Context, rawURL string) Outcome {
	if IsLocalRef(rawURL) {
		return checkLocal(rawURL)
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Outcome{Status: model.LinkUnknown, Detail: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Outcome{Status: model.LinkUnknown, Detail: "unsupported URL scheme"}
	}

	if !c.cfg.ExternalRequests {
		return Outcome{Status: model.LinkSkipped, Detail: "external requests disabled"}
	}

	host := strings.TrimSpace(u.Hostname())
	if len(c.cfg.Allowlist) > 0 && !HostInAllowlist(host, c.cfg.Allowlist) {
		return Outcome{Status: model.LinkSkipped, Detail: "host not in allowlist: " + host}
	}

	if !c.robotsAllowed(ctx, u) {
		return Outcome{Status: model.LinkSkipped, Detail: "disallowed by robots.txt"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Outcome{Status: model.LinkUnknown, Detail: err.Error()}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Outcome{Status: model.LinkTimeout, Detail: "connection timed out"}
		}
		return Outcome{Status: model.LinkBroken, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return Outcome{Status: model.LinkValid}
	}
	return Outcome{Status: model.LinkBroken, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}
}

// robotsAllowed checks the target path against the host's robots.txt,
// caching per-host data for the checker's lifetime.
func (c *httpChecker) robotsAllowed(ctx context.Context, u *url.URL) bool {
	if u.Host == "" {
		return true
	}
	if val, ok := c.robots.Load(u.Host); ok {
		if val == nil {
			return true
		}
		return val.(*robotstxt.RobotsData).TestAgent(u.Path, c.cfg.UserAgent)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		c.robots.Store(u.Host, nil)
		return true
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.robots.Store(u.Host, nil)
		return true
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.robots.Store(u.Host, nil)
		return true
	}
	c.robots.Store(u.Host, data)
	return data.TestAgent(u.Path, c.cfg.UserAgent)
}

// IsLocalRef reports whether raw points at the local filesystem rather than
// the network: file:// URLs, absolute paths, UNC paths, drive-letter paths.
func IsLocalRef(raw string) bool {
	if strings.HasPrefix(raw, "file://") {
		return true
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, `\\`) {
		return true
	}
	// Drive-letter prefix, e.g. "C:\docs\a.hwp" or "C:/docs/a.hwp".
	if len(raw) > 1 && raw[1] == ':' {
		return true
	}
	return false
}

// checkLocal verifies a local reference by filesystem existence.
func checkLocal(raw string) Outcome {
	p := raw
	if strings.HasPrefix(p, "file:///") {
		p = p[len("file:///"):]
	} else if strings.HasPrefix(p, "file://") {
		p = p[len("file://"):]
	}
	if _, err := os.Stat(p); err == nil {
		return Outcome{Status: model.LinkLocalOK}
	} else if errors.Is(err, os.ErrNotExist) {
		return Outcome{Status: model.LinkLocalMissing, Detail: "file not found"}
	} else {
		return Outcome{Status: model.LinkUnknown, Detail: err.Error()}
	}
}

// HostInAllowlist matches a host against allowlist patterns.
//
//   - "*.example.com" matches "a.example.com" and "example.com"
//   - "example.com" matches exactly "example.com"
//   - patterns containing "*" elsewhere use path.Match semantics
func HostInAllowlist(host string, patterns []string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}

	for _, pat := range patterns {
		p := strings.ToLower(strings.TrimSpace(pat))
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "*.") {
			suffix := p[1:] // ".example.com"
			if host == p[2:] || strings.HasSuffix(host, suffix) {
				return true
			}
			continue
		}
		if strings.Contains(p, "*") {
			if ok, err := path.Match(p, host); err == nil && ok {
				return true
			}
			continue
		}
		if host == p {
			return true
		}
	}
	return false
}

// isTimeout reports whether the transport error was a timeout rather than a
// refused or failed connection.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
