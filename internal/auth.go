package internal

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/jamesprial/go-reddit-session/internal/session"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
)

// notLoggedIn is the message of every AuthError produced by Login.
const notLoggedIn = "Not logged in"

// The modhash is embedded in the root page either as a loosely delimited
// key/value pair or as a JSON member; both forms are tried in that order.
var modhashPatterns = []*regexp.Regexp{
	regexp.MustCompile(`modhash["\s:]+([a-z0-9]+)`),
	regexp.MustCompile(`"modhash":\s*"([a-z0-9]+)"`),
}

// ExtractModhash returns the CSRF token embedded in a Reddit page, or "" when
// the page belongs to a logged-out visitor.
func ExtractModhash(page []byte) string {
	for _, re := range modhashPatterns {
		if m := re.FindSubmatch(page); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// SessionLoader supplies the persisted session.
type SessionLoader interface {
	Load() (*session.Session, error)
}

// Refresher re-imports cookies from the named browser and persists them, so
// the next Load returns the fresh session.
type Refresher interface {
	Refresh(ctx context.Context, browser string) error
}

// Authenticator turns a saved cookie session into an authenticated one by
// fetching the modhash. It is not safe for concurrent use; the owning client
// serializes access.
type Authenticator struct {
	http      *Client
	store     SessionLoader
	refresher Refresher
	logger    *slog.Logger

	authenticated bool
	modhash       string
	username      string
}

// NewAuthenticator creates a new authenticator. refresher may be nil, in
// which case an expired session is never refreshed.
func NewAuthenticator(client *Client, store SessionLoader, refresher Refresher, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = client.logger
	}
	return &Authenticator{
		http:      client,
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
}

// Login loads the saved session, installs its cookies and probes the root
// page for a modhash. If the page shows a logged-out visitor and the session
// names its browser, the cookies are re-imported once and Login runs again
// with refresh disabled.
func (a *Authenticator) Login(ctx context.Context, allowRefresh bool) error {
	a.authenticated = false
	a.modhash = ""
	a.username = ""

	sess, err := a.store.Load()
	if err != nil {
		return &pkgerrs.AuthError{Message: notLoggedIn, Err: err}
	}
	if sess == nil {
		return &pkgerrs.AuthError{Message: notLoggedIn, Err: pkgerrs.ErrNoSession}
	}

	a.http.SetCookies(sess.Cookies)

	resp, err := a.http.Get(ctx, "", nil)
	if err != nil {
		return &pkgerrs.AuthError{Message: notLoggedIn, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &pkgerrs.AuthError{Message: notLoggedIn, Err: &pkgerrs.TransportError{StatusCode: resp.StatusCode, URL: resp.URL}}
	}

	if modhash := ExtractModhash(resp.Body); modhash != "" {
		a.authenticated = true
		a.modhash = modhash
		a.username = sess.Username
		a.logger.Debug("session authenticated", "username", sess.Username)
		return nil
	}

	a.logger.Debug("no modhash on root page", "username", sess.Username, "browser", sess.Browser)

	if allowRefresh && sess.Browser != "" && a.refresher != nil {
		a.logger.Info("refreshing expired session from browser", "browser", sess.Browser)
		if err := a.refresher.Refresh(ctx, sess.Browser); err != nil {
			return &pkgerrs.AuthError{Message: notLoggedIn, Err: err}
		}
		a.http.ClearCookies()
		return a.Login(ctx, false)
	}

	return &pkgerrs.AuthError{Message: notLoggedIn, Err: pkgerrs.ErrSessionExpired}
}

// EnsureAuthenticated logs in unless a previous Login succeeded.
func (a *Authenticator) EnsureAuthenticated(ctx context.Context) error {
	if a.authenticated {
		return nil
	}
	return a.Login(ctx, true)
}

// IsAuthenticated reports whether a modhash is held.
func (a *Authenticator) IsAuthenticated() bool {
	return a.authenticated
}

// Modhash returns the CSRF token of the current session.
func (a *Authenticator) Modhash() string {
	return a.modhash
}

// Username returns the user of the current session.
func (a *Authenticator) Username() string {
	return a.username
}

// Reset forgets the session and its cookies.
func (a *Authenticator) Reset() {
	a.authenticated = false
	a.modhash = ""
	a.username = ""
	a.http.ClearCookies()
}
