// Package browsercookie reads cookies for one domain out of a desktop
// browser's profile.
//
// Firefox stores cookies in plain SQLite. The Chromium family (Chrome,
// Chromium, Edge, Opera, Brave) stores them in SQLite with values encrypted;
// the v10 scheme used on Linux without a keyring is decrypted here. When a
// profile yields nothing usable, a Reader can optionally start the browser
// headless against the same profile and ask it for its cookies over the
// DevTools protocol.
package browsercookie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
)

// Browsers lists the supported browser identifiers in probing order.
var Browsers = []string{"firefox", "chrome", "chromium", "safari", "edge", "opera", "brave"}

// ErrUnsupported is returned for a known browser whose cookie store cannot be
// read on this platform.
var ErrUnsupported = errors.New("cookie store not supported")

// Cookie is a single cookie read from a browser.
type Cookie struct {
	Domain string
	Name   string
	Value  string
}

// Source is the set of cookies read from one cookie store.
type Source struct {
	Browser string
	// Path is the cookie database, or the profile directory for a live read.
	Path string
	// Alternate is set for sandboxed package layouts (snap, flatpak).
	Alternate bool
	// Live is set when the cookies came from a running browser.
	Live    bool
	Cookies []Cookie
}

// Get returns the value of the named cookie.
func (s Source) Get(name string) (string, bool) {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Extractor produces the cookies a browser holds for a domain. Each readable
// store is one Source; a browser with no readable store yields no Sources
// and no error.
type Extractor interface {
	Extract(ctx context.Context, browser, domain string) ([]Source, error)
}

// IsKnown reports whether browser is one of Browsers.
func IsKnown(browser string) bool {
	return slices.Contains(Browsers, browser)
}

// Options configures a Reader.
type Options struct {
	// Home overrides the user's home directory.
	Home string
	// LiveFallback starts a headless browser when a Chromium-family profile
	// yields no cookies for the domain.
	LiveFallback bool
	// Logger for structured diagnostics.
	Logger *slog.Logger
}

// Reader is the Extractor backed by on-disk browser profiles.
type Reader struct {
	home         string
	goos         string
	liveFallback bool
	logger       *slog.Logger
	live         liveReader
}

// NewReader returns a Reader for the current user and platform.
func NewReader(opts Options) *Reader {
	home := opts.Home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{
		home:         home,
		goos:         runtime.GOOS,
		liveFallback: opts.LiveFallback,
		logger:       logger,
		live:         rodLiveReader{},
	}
}

// Extract reads every profile of browser and keeps the cookies whose host
// belongs to domain.
func (r *Reader) Extract(ctx context.Context, browser, domain string) ([]Source, error) {
	browser = strings.ToLower(browser)
	if !IsKnown(browser) {
		return nil, fmt.Errorf("unknown browser %q", browser)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch browser {
	case "safari":
		return nil, fmt.Errorf("%s: %w", browser, ErrUnsupported)
	case "firefox":
		return r.readAll(ctx, browser, domain, r.firefoxStores(), readFirefox), nil
	}

	stores := r.chromiumStores(browser)
	sources := r.readAll(ctx, browser, domain, stores, r.readChromium)
	if r.liveFallback && !anyCookies(sources) {
		if src, ok := r.readLive(ctx, browser, domain); ok {
			sources = append(sources, src)
		}
	}
	return sources, nil
}

type storeReader func(ctx context.Context, path, domain string) ([]Cookie, error)

func (r *Reader) readAll(ctx context.Context, browser, domain string, stores []store, read storeReader) []Source {
	var sources []Source
	for _, st := range stores {
		if ctx.Err() != nil {
			break
		}
		cookies, err := read(ctx, st.path, domain)
		if err != nil {
			r.logger.Debug("skipping cookie store", "browser", browser, "path", st.path, "error", err)
			continue
		}
		sources = append(sources, Source{
			Browser:   browser,
			Path:      st.path,
			Alternate: st.alternate,
			Cookies:   cookies,
		})
	}
	return sources
}

func (r *Reader) readLive(ctx context.Context, browser, domain string) (Source, bool) {
	bin, dataDir, ok := r.liveTarget(browser)
	if !ok {
		return Source{}, false
	}
	cookies, err := r.live.Cookies(ctx, bin, dataDir, domain)
	if err != nil {
		r.logger.Debug("live cookie read failed", "browser", browser, "bin", bin, "error", err)
		return Source{}, false
	}
	return Source{Browser: browser, Path: dataDir, Live: true, Cookies: cookies}, true
}

func anyCookies(sources []Source) bool {
	for _, s := range sources {
		if len(s.Cookies) > 0 {
			return true
		}
	}
	return false
}

// matchesDomain reports whether a cookie host such as ".reddit.com" or
// "old.reddit.com" belongs to domain.
func matchesDomain(host, domain string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), ".")
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
