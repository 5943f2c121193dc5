package graw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jamesprial/go-reddit-session/internal"
	"github.com/jamesprial/go-reddit-session/internal/session"
	"github.com/jamesprial/go-reddit-session/pkg/browsercookie"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/jamesprial/go-reddit-session/pkg/validation"
)

const (
	sessionCookie = "reddit_session"
	cookieDomain  = "reddit.com"
	mePath        = "api/me.json"

	alternateSuffix = " (snap/flatpak)"
)

// ErrNoBrowserSession is returned by Auth when no browser holds a working
// session cookie.
var ErrNoBrowserSession = errors.New("No Reddit session found in any browser. Make sure you're logged into Reddit.")

// Bootstrapper imports a Reddit session from a desktop browser.
//
// Each candidate reddit_session cookie is verified against /api/me.json on a
// fresh cookie jar before it is saved, so a stale cookie in one profile never
// shadows a working one in the next.
type Bootstrapper struct {
	extractor browsercookie.Extractor
	store     *session.Store
	newHTTP   func() (*internal.Client, error)
	parser    *internal.Parser
	logger    *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. newHTTP must return a client with
// an empty cookie jar on every call.
func NewBootstrapper(extractor browsercookie.Extractor, store *session.Store, newHTTP func() (*internal.Client, error), logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		extractor: extractor,
		store:     store,
		newHTTP:   newHTTP,
		parser:    internal.NewParser(),
		logger:    logger,
	}
}

// Auth tries browser, or every supported browser when it is empty, and saves
// the first session Reddit accepts. The saved record names the browser so
// the session can be refreshed from it later.
func (b *Bootstrapper) Auth(ctx context.Context, browser string) (*types.AuthResult, error) {
	candidates := browsercookie.Browsers
	if browser != "" {
		browser = strings.ToLower(browser)
		if !browsercookie.IsKnown(browser) {
			return nil, &pkgerrs.PreconditionError{
				Field:   "browser",
				Message: fmt.Sprintf("Unknown browser: %s. Options: %s", browser, strings.Join(browsercookie.Browsers, ", ")),
			}
		}
		candidates = []string{browser}
	}

	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, ok := b.tryBrowser(ctx, name)
		if ok {
			return result, nil
		}
	}

	return nil, &pkgerrs.AuthError{Err: ErrNoBrowserSession}
}

// Refresh re-imports the session from browser. It satisfies the
// authenticator's refresher contract.
func (b *Bootstrapper) Refresh(ctx context.Context, browser string) error {
	_, err := b.Auth(ctx, browser)
	return err
}

func (b *Bootstrapper) tryBrowser(ctx context.Context, browser string) (*types.AuthResult, bool) {
	sources, err := b.extractor.Extract(ctx, browser, cookieDomain)
	if err != nil {
		b.logger.Debug("browser cookie extraction failed", "browser", browser, "error", err)
		return nil, false
	}

	for _, src := range sources {
		cookie, ok := src.Get(sessionCookie)
		if !ok || cookie == "" {
			continue
		}

		username, err := b.verify(ctx, cookie)
		if err != nil {
			b.logger.Debug("browser session rejected", "browser", browser, "path", src.Path, "error", err)
			continue
		}

		if _, err := b.store.Save(map[string]string{sessionCookie: cookie}, username, browser); err != nil {
			b.logger.Warn("failed to save session", "path", b.store.Path(), "error", err)
			continue
		}

		reported := browser
		if src.Alternate {
			reported += alternateSuffix
		}
		b.logger.Info("imported browser session", "browser", reported, "username", username)
		return &types.AuthResult{
			Browser:     reported,
			Username:    username,
			SessionFile: b.store.Path(),
		}, true
	}
	return nil, false
}

// verify asks Reddit who owns cookie.
func (b *Bootstrapper) verify(ctx context.Context, cookie string) (string, error) {
	client, err := b.newHTTP()
	if err != nil {
		return "", err
	}
	client.SetCookies(map[string]string{sessionCookie: cookie})

	resp, err := client.Get(ctx, mePath, nil)
	if err != nil {
		return "", err
	}
	raw, err := b.parser.CheckResponse(resp, internal.InvalidJSONMessage)
	if err != nil {
		return "", err
	}
	thing, err := b.parser.DecodeThing(raw)
	if err != nil {
		return "", err
	}
	account, err := b.parser.ParseAccount(thing)
	if err != nil {
		return "", err
	}
	if !validation.IsValidUsername(account.Name) {
		return "", &pkgerrs.DecodeError{Message: fmt.Sprintf("account name %q is not a valid username", account.Name)}
	}
	return account.Name, nil
}
