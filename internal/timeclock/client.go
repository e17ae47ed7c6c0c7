// Package timeclock provides an authenticated session against the time clock
// web application and fetches its punch history pages.
package timeclock

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/timeclock/internal/punchhistory"
	"github.com/jonathan/timeclock/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the origin of the time clock application.
const DefaultBaseURL = "http://codingavenue.com/clock"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Timeclock/1.0)"

// Paths relative to the base URL.
const (
	loginPath        = "/login"
	homePath         = "/home"
	punchHistoryPath = "/punch_history"

	// showHistoryMarker is the value of the history form's submit button.
	showHistoryMarker = "Show History"
)

// Options configures the client.
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
	Logger             zerolog.Logger

	// Transport overrides the HTTP transport. Used by tests.
	Transport http.RoundTripper
	// Now overrides the clock used for default year and month.
	Now func() time.Time
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Logger:    zerolog.Nop(),
	}
}

// Page is a fetched punch history page with its response metadata.
type Page struct {
	RequestURL  string
	FinalURL    string
	HTML        string
	ContentType string
	StatusCode  int
}

// Client holds one session with the time clock. It is not safe for
// concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	state     SessionState
	log       zerolog.Logger
	now       func() time.Time
}

// New creates an unauthenticated client.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &RequestError{Field: "base URL", Message: fmt.Sprintf("invalid URL %q", baseURL)}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-out
		}
		transport = t
	}

	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		userAgent: userAgent,
		state:     Unauthenticated,
		log:       opts.Logger.With().Str("component", "timeclock").Logger(),
		now:       now,
	}
	if opts.InsecureSkipVerify {
		c.log.Warn().Msg("TLS certificate verification disabled")
	}
	return c, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// State returns the current session state.
func (c *Client) State() SessionState {
	return c.state
}

// Authenticated reports whether the last login succeeded and the session has
// not since expired.
func (c *Client) Authenticated() bool {
	return c.state == Authenticated
}

// BaseURL returns the time clock origin this client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

// Authenticate posts the login form. The only success signal the site gives
// is the redirect to its home page; a wrong password and an unexpected
// landing page both report false with a nil error. A failed login discards
// any cookies the site handed out.
func (c *Client) Authenticate(ctx context.Context, creds types.Credentials) (bool, error) {
	if err := creds.Validate(); err != nil {
		return false, &RequestError{Field: "credentials", Message: err.Error()}
	}

	loginURL := c.endpoint(loginPath)
	form := url.Values{
		"email_address": {creds.Email},
		"password":      {creds.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, &TransportError{URL: loginURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Debug().Str("email", creds.Email).Str("url", loginURL).Msg("logging in")

	resp, err := c.do(req)
	if err != nil {
		c.resetSession()
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		c.resetSession()
		return false, &TransportError{
			URL:        loginURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if !c.isHomeURL(resp.Request.URL) {
		c.log.Info().Str("landed", resp.Request.URL.String()).Msg("login rejected")
		c.resetSession()
		return false, nil
	}

	c.state = Authenticated
	c.log.Info().Msg("login succeeded")
	return true, nil
}

// isHomeURL is the login success predicate: the post-redirect URL must be
// the home page of the configured origin.
func (c *Client) isHomeURL(final *url.URL) bool {
	return c.samePage(final, homePath)
}

func (c *Client) isLoginURL(final *url.URL) bool {
	return c.samePage(final, loginPath)
}

func (c *Client) samePage(u *url.URL, path string) bool {
	if u == nil {
		return false
	}
	want, err := url.Parse(c.endpoint(path))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, want.Scheme) &&
		strings.EqualFold(u.Host, want.Host) &&
		strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(want.Path, "/")
}

func (c *Client) resetSession() {
	c.state = Unauthenticated
	if jar, err := newJar(); err == nil {
		c.http.Jar = jar
	}
}

// FetchPunchHistoryPage requests the punch history page for year and month.
// Zero values default to the current year and month. It fails with
// ErrNotAuthenticated, without touching the network, unless Authenticate has
// succeeded. On a non-200 response the page is returned with the error.
func (c *Client) FetchPunchHistoryPage(ctx context.Context, year, month int) (*Page, error) {
	if c.state != Authenticated {
		return nil, &StateError{
			Operation: "fetch punch history",
			State:     c.state,
			Message:   ErrNotAuthenticated.Message,
		}
	}
	if year < 0 {
		return nil, &RequestError{Field: "year", Message: "must not be negative"}
	}
	if month < 0 || month > 12 {
		return nil, &RequestError{Field: "month", Message: "must be between 1 and 12"}
	}

	now := c.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	query := url.Values{
		"show":  {showHistoryMarker},
		"year":  {strconv.Itoa(year)},
		"month": {fmt.Sprintf("%02d", month)},
	}
	historyURL := c.endpoint(punchHistoryPath) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, historyURL, nil)
	if err != nil {
		return nil, &TransportError{URL: historyURL, Message: "failed to create request", Cause: err}
	}

	c.log.Debug().Int("year", year).Int("month", month).Msg("fetching punch history")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: historyURL, Message: "failed to read response body", Cause: err}
	}

	page := &Page{
		RequestURL:  historyURL,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if c.isLoginURL(resp.Request.URL) {
		c.log.Warn().Str("landed", page.FinalURL).Msg("session expired")
		c.resetSession()
		return page, &StateError{
			Operation: "fetch punch history",
			State:     Unauthenticated,
			Message:   ErrSessionExpired.Message,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return page, &TransportError{
			URL:        historyURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return page, nil
}

// PunchHistory fetches and extracts the punch history for year and month.
func (c *Client) PunchHistory(ctx context.Context, year, month int) (*types.PunchHistorySummary, error) {
	page, err := c.FetchPunchHistoryPage(ctx, year, month)
	if err != nil {
		return nil, err
	}
	summary, err := punchhistory.Extract(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract punch history from %s: %w", page.FinalURL, err)
	}
	return summary, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Message: "HTTP request failed", Cause: err}
	}
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")
	return resp, nil
}
