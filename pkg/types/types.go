package types

import "encoding/json"

// Kind tags used by Reddit to discriminate the payload of a Thing.
const (
	KindListing   = "Listing"
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
	KindMore      = "more"
)

// DeletedAuthor is the placeholder Reddit shows for removed accounts.
const DeletedAuthor = "[deleted]"

// Thing is the envelope every Reddit JSON object travels in. Data is decoded
// lazily once Kind says what it holds.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ListingData contains the data for a Listing, which is used for pagination.
type ListingData struct {
	BeforeFullname string   `json:"before"` // Reddit fullname for pagination (previous page)
	AfterFullname  string   `json:"after"`  // Reddit fullname for pagination (next page)
	Modhash        string   `json:"modhash"`
	Children       []*Thing `json:"children"` // Raw Things with kind+data, parsed by caller
}

// Created is an embeddable struct for things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// LinkData is the payload of a t3 Thing.
type LinkData struct {
	Created
	ID          string `json:"id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	IsSelf      bool   `json:"is_self"`
	NumComments int    `json:"num_comments"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	SelfText    string `json:"selftext"`
	Stickied    bool   `json:"stickied"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// CommentData is the payload of a t1 Thing. Replies is either the empty
// string or a Listing Thing, so it stays raw until the extractor looks at it.
type CommentData struct {
	Created
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Author    string          `json:"author"`
	Body      string          `json:"body"`
	LinkID    string          `json:"link_id"`
	ParentID  string          `json:"parent_id"`
	Permalink string          `json:"permalink"`
	Replies   json.RawMessage `json:"replies"`
	Score     int             `json:"score"`
	Subreddit string          `json:"subreddit"`
}

// MessageData contains the data for an inbox item (t4 message or t1 reply).
type MessageData struct {
	Created
	ID      string `json:"id"`
	Name    string `json:"name"`
	Author  string `json:"author"`
	Body    string `json:"body"`
	Context string `json:"context"`
	New     bool   `json:"new"`
	Subject string `json:"subject"`
}

// AccountData contains the data for a user Account as returned by /api/me.json.
type AccountData struct {
	Created
	ID           string `json:"id"`
	Name         string `json:"name"`
	CommentKarma int    `json:"comment_karma"`
	LinkKarma    int    `json:"link_karma"`
	HasMail      *bool  `json:"has_mail"`
	Modhash      string `json:"modhash,omitempty"`
}

// Post is the flattened view of a single post returned by ReadPost.
type Post struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         *string `json:"url"` // nil for self posts
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
}

// Comment is one node of an extracted comment tree. Depth starts at 1 for
// top-level comments.
type Comment struct {
	ID         string     `json:"id"`
	Author     string     `json:"author"`
	Body       string     `json:"body"`
	Score      int        `json:"score"`
	CreatedUTC float64    `json:"created_utc"`
	Depth      int        `json:"depth"`
	Replies    []*Comment `json:"replies"`
}

// ListingEntry is a post summary from a subreddit listing or search.
type ListingEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
	URL         *string `json:"url,omitempty"`
	IsSelf      bool    `json:"is_self"`
	Stickied    bool    `json:"stickied"`
}

// Message is one inbox item. Type is the kind tag of the underlying Thing.
type Message struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	Context    string  `json:"context"`
	CreatedUTC float64 `json:"created_utc"`
	New        bool    `json:"new"`
	Type       string  `json:"type"`
}

// PostResult is the payload of a successful ReadPost.
type PostResult struct {
	Post     *Post      `json:"post"`
	Comments []*Comment `json:"comments"`
}

// ListingResult is the payload of a successful ReadListing.
type ListingResult struct {
	Subreddit string          `json:"subreddit"`
	Posts     []*ListingEntry `json:"posts"`
}

// SearchResult is the payload of a successful Search.
type SearchResult struct {
	Subreddit string          `json:"subreddit"`
	Query     string          `json:"query"`
	Posts     []*ListingEntry `json:"posts"`
}

// InboxResult is the payload of a successful Inbox call.
type InboxResult struct {
	Messages []*Message `json:"messages"`
}

// CommentResult is the payload of a successful Comment. Both fields are empty
// when Reddit accepted the comment without echoing it back.
type CommentResult struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
}

// SubmitRequest describes a new post. At most one of Text and URL may be set;
// with neither set an empty self post is created.
type SubmitRequest struct {
	Subreddit string
	Title     string
	Text      string
	URL       string
	FlairID   string
}

// SubmitResult is the payload of a successful Submit. Raw holds the decoded
// response when Reddit did not return the new post's URL.
type SubmitResult struct {
	URL string          `json:"url,omitempty"`
	ID  string          `json:"id,omitempty"`
	Raw json.RawMessage `json:"raw,omitempty"`
}

// VoteResult is the payload of a successful Vote.
type VoteResult struct {
	ThingID   string `json:"thing_id"`
	Direction int    `json:"direction"`
}

// DeleteResult is the payload of a successful Delete.
type DeleteResult struct {
	ThingID string `json:"thing_id"`
}

// AuthResult describes a session imported from a browser.
type AuthResult struct {
	Browser     string `json:"browser"`
	Username    string `json:"username"`
	SessionFile string `json:"session_file"`
}
