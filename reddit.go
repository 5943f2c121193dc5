package graw

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jamesprial/go-reddit-session/internal"
	"github.com/jamesprial/go-reddit-session/internal/session"
	"github.com/jamesprial/go-reddit-session/pkg/browsercookie"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the host every read and write goes to.
	DefaultBaseURL = "https://old.reddit.com/"
	// DefaultUserAgent is a desktop Chrome user agent.
	DefaultUserAgent = internal.DefaultUserAgent
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// Defaults used by the operation surface when an argument is omitted.
	DefaultDepth        = 1
	DefaultMaxComments  = 25
	DefaultListingLimit = 15
	DefaultInboxLimit   = 25
	DefaultListingSort  = "hot"
	DefaultSearchSort   = "relevance"
	DefaultTimeFilter   = "all"

	// threadFetchLimit is how many comments the duplicate-reply check loads.
	threadFetchLimit = 100
)

// Config holds the configuration for the Reddit client. The zero value is
// usable: it reads the session from the default directory and talks to
// old.reddit.com.
type Config struct {
	// SessionDir holds session.json.
	// Defaults to $REDDIT_SESSION_DIR or ~/.config/reddit-mcp.
	SessionDir string

	// BaseURL is the canonical Reddit root.
	// Defaults to DefaultBaseURL. Tests point it at a fake server.
	BaseURL string

	// UserAgent sent with every request.
	// Defaults to DefaultUserAgent.
	UserAgent string

	// HTTPClient to use for requests. It is copied; the client installs its
	// own cookie jar on the copy.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RequestsPerMinute and Burst pace outgoing requests.
	// Zero values fall back to 60 per minute with a burst of 10.
	RequestsPerMinute float64
	Burst             int

	// CookieExtractor reads browser cookies for Auth and for refreshing an
	// expired session. Defaults to a browsercookie.Reader.
	CookieExtractor browsercookie.Extractor

	// LiveBrowserFallback lets the default CookieExtractor start a headless
	// browser when a profile's cookies cannot be decrypted from disk.
	LiveBrowserFallback bool

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger
}

// Client is a session-authenticated Reddit client.
//
// Reads are anonymous and never trigger a login. Writes and the inbox log in
// lazily from the saved session, refreshing it once from the recorded
// browser when Reddit rejects it. A Client owns one session; its methods are
// safe for concurrent use and run one at a time.
type Client struct {
	mu sync.Mutex

	http      *internal.Client
	auth      *internal.Authenticator
	store     *session.Store
	bootstrap *Bootstrapper
	parser    *internal.Parser
	validator *internal.Validator
	urls      *internal.URLNormalizer
	logger    *slog.Logger
}

// NewClient creates a new Reddit client with the provided configuration.
// A nil config is treated as the zero Config.
//
// No request is made: the saved session is loaded on the first operation
// that needs it.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	cfg := *config

	validator := internal.NewValidator()
	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.CookieExtractor == nil {
		cfg.CookieExtractor = browsercookie.NewReader(browsercookie.Options{
			LiveFallback: cfg.LiveBrowserFallback,
			Logger:       cfg.Logger,
		})
	}

	rateCfg := &internal.RateLimitConfig{
		RequestsPerMinute: cfg.RequestsPerMinute,
		Burst:             cfg.Burst,
	}
	newHTTP := func() (*internal.Client, error) {
		return internal.NewClient(cfg.HTTPClient, cfg.BaseURL, cfg.UserAgent, rateCfg, cfg.Logger)
	}

	httpClient, err := newHTTP()
	if err != nil {
		return nil, err
	}

	parser := internal.NewParser()
	store := session.NewStore(cfg.SessionDir)
	bootstrap := NewBootstrapper(cfg.CookieExtractor, store, newHTTP, cfg.Logger)

	return &Client{
		http:      httpClient,
		auth:      internal.NewAuthenticator(httpClient, store, bootstrap, cfg.Logger),
		store:     store,
		bootstrap: bootstrap,
		parser:    parser,
		validator: validator,
		urls:      internal.NewURLNormalizer(httpClient.BaseURL),
		logger:    cfg.Logger,
	}, nil
}

// Login authenticates from the saved session, refreshing it once from the
// recorded browser if Reddit no longer accepts it. Operations that need a
// session call it on demand; calling it directly surfaces auth problems
// early.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.auth.Login(ctx, true)
}

// IsAuthenticated reports whether the client holds a modhash.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.auth.IsAuthenticated()
}

// Username returns the logged-in user, or "" before a successful login.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.auth.Username()
}

// SessionPath returns the location of the session file.
func (c *Client) SessionPath() string {
	return c.store.Path()
}

// Logout forgets the in-memory session and deletes the session file.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auth.Reset()
	return c.store.Remove()
}

// Auth imports a session from a browser and saves it. An empty browser tries
// every supported browser in browsercookie.Browsers order. The next
// operation that needs a session logs in with the imported one.
func (c *Client) Auth(ctx context.Context, browser string) (*types.AuthResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.bootstrap.Auth(ctx, browser)
	if err != nil {
		return nil, err
	}
	c.auth.Reset()
	return result, nil
}

// ReadPost fetches a post and its comment tree.
//
// ref may be a full URL on any reddit.com host, a path such as
// "r/golang/comments/abc123", or a bare post ID. Replies are expanded while
// the comment depth is below depth; each sibling list holds at most
// maxComments comments. References to hosts outside reddit.com are refused.
func (c *Client) ReadPost(ctx context.Context, ref string, depth, maxComments int) (*types.PostResult, error) {
	if err := c.validator.ValidatePostRef(ref); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateNonNegative("depth", depth); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateNonNegative("max_comments", maxComments); err != nil {
		return nil, err
	}

	postURL := c.urls.Normalize(ref)
	if !c.urls.IsCanonical(postURL) {
		return nil, &pkgerrs.PreconditionError{Field: "url", Message: fmt.Sprintf("unsupported post reference %q: expected a reddit.com URL, an r/ path or a post ID", ref)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	target := internal.JSONURL(postURL)
	resp, err := c.http.Get(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.parser.CheckResponse(resp, internal.InvalidJSONMessage)
	if err != nil {
		return nil, err
	}

	postThing, comments, err := c.parser.DecodePostPage(raw)
	if err != nil {
		return nil, err
	}
	link, err := c.parser.ParseLink(postThing)
	if err != nil {
		return nil, err
	}

	result := &types.PostResult{
		Post:     internal.ToPost(link),
		Comments: []*types.Comment{},
	}
	if comments != nil {
		extractor := internal.NewTreeExtractor(c.parser, depth, maxComments)
		result.Comments = extractor.Extract(comments)
		if extractor.Collapsed > 0 {
			c.logger.Debug("collapsed reply stubs skipped", "post", result.Post.ID, "stubs", extractor.Collapsed)
		}
	}
	return result, nil
}

// ReadListing returns up to limit posts of a subreddit, after skipping the
// first skip. An empty sort means DefaultListingSort.
func (c *Client) ReadListing(ctx context.Context, subreddit string, limit, skip int, sort string) (*types.ListingResult, error) {
	if sort == "" {
		sort = DefaultListingSort
	}
	if err := c.validator.ValidateSubredditName(subreddit); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateNonNegative("limit", limit); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateNonNegative("skip", skip); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateListingSort(sort); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := "r/" + subreddit + "/" + strings.ToLower(sort) + ".json"
	query := url.Values{"limit": {strconv.Itoa(limit + skip)}}

	listing, err := c.getListing(ctx, path, query)
	if err != nil {
		return nil, err
	}

	// The window is taken before filtering, so skip counts every child.
	children := window(listing.Children, skip, limit)
	posts, err := c.linkEntries(children)
	if err != nil {
		return nil, err
	}
	return &types.ListingResult{Subreddit: subreddit, Posts: posts}, nil
}

// Search runs a query restricted to one subreddit. Empty sort and timeFilter
// mean DefaultSearchSort and DefaultTimeFilter.
func (c *Client) Search(ctx context.Context, subreddit, query string, limit int, sort, timeFilter string) (*types.SearchResult, error) {
	if sort == "" {
		sort = DefaultSearchSort
	}
	if timeFilter == "" {
		timeFilter = DefaultTimeFilter
	}
	if err := c.validator.ValidateSubredditName(subreddit); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateNonNegative("limit", limit); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSearch(query, sort, timeFilter); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	params := url.Values{
		"q":           {query},
		"restrict_sr": {"on"},
		"sort":        {strings.ToLower(sort)},
		"t":           {strings.ToLower(timeFilter)},
		"limit":       {strconv.Itoa(limit)},
	}
	listing, err := c.getListing(ctx, "r/"+subreddit+"/search.json", params)
	if err != nil {
		return nil, err
	}

	posts, err := c.linkEntries(listing.Children)
	if err != nil {
		return nil, err
	}
	return &types.SearchResult{Subreddit: subreddit, Query: query, Posts: posts}, nil
}

// Inbox returns the logged-in user's messages, or only the unread ones.
func (c *Client) Inbox(ctx context.Context, limit int, unreadOnly bool) (*types.InboxResult, error) {
	if err := c.validator.ValidateNonNegative("limit", limit); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	path := "message/inbox.json"
	if unreadOnly {
		path = "message/unread.json"
	}
	listing, err := c.getListing(ctx, path, url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		return nil, err
	}

	messages := make([]*types.Message, 0, len(listing.Children))
	for _, child := range listing.Children {
		msg, err := c.parser.ParseMessage(child)
		if err != nil {
			return nil, err
		}
		messages = append(messages, internal.ToMessage(child.Kind, msg))
	}
	return &types.InboxResult{Messages: messages}, nil
}

// AlreadyReplied reports whether the logged-in user has a comment anywhere
// in the thread below thingID. It is false before a login and whenever the
// lookup fails. A positive answer is a snapshot: nothing stops another
// client from replying right after.
func (c *Client) AlreadyReplied(ctx context.Context, thingID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.alreadyReplied(ctx, thingID)
}

func (c *Client) alreadyReplied(ctx context.Context, thingID string) bool {
	username := c.auth.Username()
	if username == "" {
		return false
	}

	found, err := c.findReply(ctx, thingID, username)
	if err != nil {
		c.logger.Debug("duplicate reply check failed", "thing_id", thingID, "error", err)
		return false
	}
	return found
}

func (c *Client) findReply(ctx context.Context, thingID, username string) (bool, error) {
	info, err := c.getListing(ctx, "api/info.json", url.Values{"id": {thingID}})
	if err != nil {
		return false, err
	}
	if len(info.Children) == 0 || info.Children[0] == nil {
		return false, nil
	}
	permalink := gjson.GetBytes(info.Children[0].Data, "permalink").String()
	if permalink == "" {
		return false, nil
	}

	thread := internal.JSONURL(c.http.Origin() + permalink)
	resp, err := c.http.Get(ctx, thread, url.Values{"limit": {strconv.Itoa(threadFetchLimit)}})
	if err != nil {
		return false, err
	}
	raw, err := c.parser.CheckResponse(resp, internal.InvalidJSONMessage)
	if err != nil {
		return false, err
	}
	return internal.ContainsAuthor(raw, username), nil
}

// getListing fetches path and decodes it as a Listing.
func (c *Client) getListing(ctx context.Context, path string, query url.Values) (*types.ListingData, error) {
	resp, err := c.http.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	raw, err := c.parser.CheckResponse(resp, internal.InvalidJSONMessage)
	if err != nil {
		return nil, err
	}
	return c.parser.DecodeListing(raw)
}

// linkEntries keeps the t3 children and flattens them.
func (c *Client) linkEntries(children []*types.Thing) ([]*types.ListingEntry, error) {
	posts := make([]*types.ListingEntry, 0, len(children))
	for _, child := range children {
		if child == nil || child.Kind != types.KindLink {
			continue
		}
		link, err := c.parser.ParseLink(child)
		if err != nil {
			return nil, fmt.Errorf("listing entry: %w", err)
		}
		posts = append(posts, internal.ToListingEntry(link))
	}
	return posts, nil
}

// window returns items[skip:skip+limit], clamped to the slice.
func window[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
