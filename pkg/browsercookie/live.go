package browsercookie

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// liveReader asks a running browser for its cookies.
type liveReader interface {
	Cookies(ctx context.Context, bin, dataDir, domain string) ([]Cookie, error)
}

// rodLiveReader starts the browser headless on the user's own profile and
// reads the decrypted cookie store over the DevTools protocol. It covers the
// keyring-encrypted profiles that cannot be decrypted from disk. The browser
// must not already be running on that profile.
type rodLiveReader struct{}

func (rodLiveReader) Cookies(ctx context.Context, bin, dataDir, domain string) ([]Cookie, error) {
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		UserDataDir(dataDir).
		Headless(true)
	// Kill only: Cleanup would remove the user data dir.
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", bin, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", bin, err)
	}
	defer browser.Close()

	all, err := browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var cookies []Cookie
	for _, c := range all {
		if matchesDomain(c.Domain, domain) {
			cookies = append(cookies, Cookie{Domain: c.Domain, Name: c.Name, Value: c.Value})
		}
	}
	return cookies, nil
}
