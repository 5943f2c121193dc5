package internal

import (
	"net/url"
	"regexp"
	"strings"
)

// postIDPattern matches a bare base36 post ID such as "1abc2de".
var postIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{5,10}$`)

// redditHost is the registrable domain whose subdomains are all treated as
// mirrors of the canonical host.
const redditHost = "reddit.com"

// URLNormalizer rewrites post references onto one canonical host.
type URLNormalizer struct {
	scheme string
	host   string
}

// NewURLNormalizer returns a normalizer whose canonical root is the scheme
// and host of base.
func NewURLNormalizer(base *url.URL) *URLNormalizer {
	return &URLNormalizer{scheme: base.Scheme, host: base.Host}
}

func (n *URLNormalizer) root() string {
	return n.scheme + "://" + n.host
}

// Normalize turns a bare subreddit path, a bare post ID or a URL on any
// reddit.com host, with or without a scheme, into a URL on the canonical
// host. Other input is returned unchanged.
func (n *URLNormalizer) Normalize(ref string) string {
	ref = strings.TrimSpace(ref)

	switch {
	case strings.HasPrefix(ref, "r/"), strings.HasPrefix(ref, "/r/"):
		return n.root() + "/" + strings.TrimLeft(ref, "/")
	case postIDPattern.MatchString(ref):
		return n.root() + "/comments/" + ref
	}
	return n.rewriteHost(ref)
}

// rewriteHost swaps a mirror host for the canonical one, leaving the path and
// query as they were.
func (n *URLNormalizer) rewriteHost(ref string) string {
	candidate := ref
	if !strings.Contains(ref, "://") {
		candidate = "https://" + ref
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return ref
	}
	host := strings.ToLower(u.Hostname())
	if host != redditHost && !strings.HasSuffix(host, "."+redditHost) {
		return ref
	}
	if u.Scheme == n.scheme && u.Host == n.host && candidate == ref {
		return ref
	}

	u.Scheme = n.scheme
	u.Host = n.host
	return u.String()
}

// IsCanonical reports whether ref is an absolute URL on the canonical host.
// Only such URLs may be fetched; Normalize leaves foreign hosts alone.
func (n *URLNormalizer) IsCanonical(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == n.scheme && strings.EqualFold(u.Host, n.host)
}

// JSONURL drops the query string, fragment and trailing slash of a post URL
// and appends the .json suffix Reddit uses for its listing format.
func JSONURL(postURL string) string {
	if i := strings.IndexAny(postURL, "?#"); i >= 0 {
		postURL = postURL[:i]
	}
	postURL = strings.TrimRight(postURL, "/")
	if !strings.HasSuffix(postURL, ".json") {
		postURL += ".json"
	}
	return postURL
}
