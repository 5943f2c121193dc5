package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultUserAgent mimics a desktop Chrome so old.reddit.com serves the same
// pages it would to a logged-in browser.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Browser-style request headers sent with every request.
const (
	acceptHeader         = "application/json, text/javascript, */*; q=0.01"
	acceptLanguageHeader = "en-US,en;q=0.5"
	requestedWithHeader  = "XMLHttpRequest"
)

// sessionCookieDomain is the cookie domain used for reddit hosts, so a cookie
// set once reaches old., www. and the bare host alike.
const sessionCookieDomain = "reddit.com"

// maxResponseBytes bounds how much of a response body is buffered.
const maxResponseBytes = 32 << 20

// Client issues cookie-authenticated requests against one Reddit host.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	logger    *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching Reddit.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64
)

// Response is a fully read HTTP response. Status handling is left to the
// caller because reads, writes and the login probe treat codes differently.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// NewClient returns a new Reddit client. The http.Client is copied so the
// cookie jar installed here never leaks into the caller's client. A nil
// httpClient means a zero http.Client.
func NewClient(httpClient *http.Client, baseURL, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	var hc http.Client
	if httpClient != nil {
		hc = *httpClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: "must be an absolute URL"}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	jar, err := newJar()
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "HTTPClient", Message: err.Error()}
	}
	hc.Jar = jar

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		client:    &hc,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		logger:    logger,
		limiter:   buildLimiter(*rateCfg),
	}

	return c, nil
}

func newJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Origin returns the scheme and host of the base URL without a trailing slash.
func (c *Client) Origin() string {
	return c.BaseURL.Scheme + "://" + c.BaseURL.Host
}

// NewRequest creates a request. A relative path is resolved against the
// BaseURL; an absolute URL is used as is.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := c.BaseURL.Parse(path)
	if err != nil {
		return nil, &pkgerrs.TransportError{URL: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.TransportError{URL: u.String(), Err: err}
	}

	origin := c.Origin()
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)
	req.Header.Set("X-Requested-With", requestedWithHeader)
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")

	return req, nil
}

// Do sends the request and reads the whole body. Only failures to obtain a
// response are returned as errors; any status code is a valid Response.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, &pkgerrs.TransportError{URL: req.URL.String(), Err: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("reddit request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, &pkgerrs.TransportError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &pkgerrs.TransportError{URL: req.URL.String(), Err: err}
	}

	c.logger.Debug("reddit request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        req.URL.String(),
	}, nil
}

// Get issues a GET for path with the given query parameters merged into any
// query the path already carries.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	return c.Do(req)
}

// PostForm issues a form-encoded POST for path.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// SetCookies stores name/value cookies for the base host. Reddit hosts get a
// domain cookie for reddit.com; any other host (a test server) gets host-only
// cookies.
func (c *Client) SetCookies(cookies map[string]string) {
	domain := ""
	host := c.BaseURL.Hostname()
	if host == sessionCookieDomain || strings.HasSuffix(host, "."+sessionCookieDomain) {
		domain = sessionCookieDomain
	}

	list := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		list = append(list, &http.Cookie{Name: name, Value: value, Domain: domain, Path: "/"})
	}
	c.client.Jar.SetCookies(c.BaseURL, list)
}

// Cookies returns the cookies that would be sent to the base host.
func (c *Client) Cookies() []*http.Cookie {
	return c.client.Jar.Cookies(c.BaseURL)
}

// ClearCookies drops every stored cookie by installing a fresh jar.
func (c *Client) ClearCookies() {
	jar, err := newJar()
	if err != nil {
		// cookiejar.New only fails on a nil options value.
		return
	}
	c.client.Jar = jar
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRateHeaders pushes back the next request when Reddit asks for it. The
// current request is never retried.
func (c *Client) applyRateHeaders(resp *http.Response) {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
			c.deferRequests(time.Duration(seconds * float64(time.Second)))
		}
	}

	remainingHeader := resp.Header.Get("X-Ratelimit-Remaining")
	resetHeader := resp.Header.Get("X-Ratelimit-Reset")
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, errRemaining := strconv.ParseFloat(remainingHeader, ParseFloatBitSize)
	resetSeconds, errReset := strconv.ParseFloat(resetHeader, ParseFloatBitSize)
	if errRemaining != nil || errReset != nil || resetSeconds <= 0 {
		return
	}

	if remaining <= 1 {
		c.deferRequests(time.Duration(resetSeconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
