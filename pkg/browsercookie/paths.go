package browsercookie

import (
	"os"
	"os/exec"
	"path/filepath"
)

// store is a cookie database on disk.
type store struct {
	path      string
	alternate bool
}

// chromiumDataDirs maps a browser to its user data directory per platform,
// relative to the home directory.
var chromiumDataDirs = map[string]map[string]string{
	"linux": {
		"chrome":   ".config/google-chrome",
		"chromium": ".config/chromium",
		"edge":     ".config/microsoft-edge",
		"opera":    ".config/opera",
		"brave":    ".config/BraveSoftware/Brave-Browser",
	},
	"darwin": {
		"chrome":   "Library/Application Support/Google/Chrome",
		"chromium": "Library/Application Support/Chromium",
		"edge":     "Library/Application Support/Microsoft Edge",
		"opera":    "Library/Application Support/com.operasoftware.Opera",
		"brave":    "Library/Application Support/BraveSoftware/Brave-Browser",
	},
}

// chromiumAlternates are the snap and flatpak cookie files, relative to the
// home directory. They are probed after the regular profiles.
var chromiumAlternates = map[string][]string{
	"chromium": {
		"snap/chromium/common/chromium/Default/Cookies",
		".var/app/org.chromium.Chromium/config/chromium/Default/Cookies",
	},
	"chrome": {
		"snap/google-chrome/common/google-chrome/Default/Cookies",
		".var/app/com.google.Chrome/config/google-chrome/Default/Cookies",
	},
}

// chromiumBinaries are executable names tried for the live fallback.
var chromiumBinaries = map[string][]string{
	"chrome":   {"google-chrome", "google-chrome-stable", "chrome"},
	"chromium": {"chromium", "chromium-browser"},
	"edge":     {"microsoft-edge", "microsoft-edge-stable"},
	"opera":    {"opera"},
	"brave":    {"brave-browser", "brave"},
}

// profileCookieGlobs locate the Cookies database inside a user data dir.
// Newer releases keep it under Network/.
var profileCookieGlobs = []string{
	"Default/Network/Cookies",
	"Default/Cookies",
	"Profile */Network/Cookies",
	"Profile */Cookies",
	// Opera keeps a single profile at the top level.
	"Network/Cookies",
	"Cookies",
}

var firefoxProfileRoots = map[string][]string{
	"linux": {
		".mozilla/firefox",
		"snap/firefox/common/.mozilla/firefox",
		".var/app/org.mozilla.firefox/.mozilla/firefox",
	},
	"darwin": {
		"Library/Application Support/Firefox/Profiles",
	},
}

func (r *Reader) firefoxStores() []store {
	var stores []store
	for _, root := range firefoxProfileRoots[r.goos] {
		matches, _ := filepath.Glob(filepath.Join(r.home, root, "*", "cookies.sqlite"))
		for _, m := range matches {
			stores = append(stores, store{path: m})
		}
	}
	return stores
}

func (r *Reader) chromiumStores(browser string) []store {
	var stores []store
	if dir, ok := chromiumDataDirs[r.goos][browser]; ok {
		seen := make(map[string]bool)
		for _, pattern := range profileCookieGlobs {
			matches, _ := filepath.Glob(filepath.Join(r.home, dir, pattern))
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					stores = append(stores, store{path: m})
				}
			}
		}
	}
	for _, rel := range chromiumAlternates[browser] {
		p := filepath.Join(r.home, rel)
		if fileExists(p) {
			stores = append(stores, store{path: p, alternate: true})
		}
	}
	return stores
}

// liveTarget finds an installed binary and an existing profile directory for
// the live fallback.
func (r *Reader) liveTarget(browser string) (bin, dataDir string, ok bool) {
	dir, found := chromiumDataDirs[r.goos][browser]
	if !found {
		return "", "", false
	}
	dataDir = filepath.Join(r.home, dir)
	if _, err := os.Stat(dataDir); err != nil {
		return "", "", false
	}
	for _, name := range chromiumBinaries[browser] {
		if p, err := exec.LookPath(name); err == nil {
			return p, dataDir, true
		}
	}
	return "", "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
