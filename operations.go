package graw

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Tool names accepted by Operations.Call.
const (
	ToolRead    = "reddit_read"
	ToolListing = "reddit_listing"
	ToolSearch  = "reddit_search"
	ToolInbox   = "reddit_inbox"
	ToolComment = "reddit_comment"
	ToolSubmit  = "reddit_submit"
	ToolVote    = "reddit_vote"
	ToolDelete  = "reddit_delete"
	ToolAuth    = "reddit_auth"
)

// OperationResult is the uniform outcome of an operation. It marshals as a
// flat object: the fields of Data next to "success", or "success" and
// "error" on failure.
type OperationResult struct {
	Success bool
	Data    any
	Error   string
}

// MarshalJSON flattens Data into the top-level object.
func (r *OperationResult) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	out, err := sjson.SetBytes(out, "success", r.Success)
	if err != nil {
		return nil, err
	}
	if !r.Success {
		return sjson.SetBytes(out, "error", r.Error)
	}
	if r.Data == nil {
		return out, nil
	}

	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	fields := gjson.ParseBytes(data)
	if !fields.IsObject() {
		return sjson.SetRawBytes(out, "data", data)
	}

	var setErr error
	fields.ForEach(func(key, value gjson.Result) bool {
		out, setErr = sjson.SetRawBytes(out, escapePath(key.String()), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return nil, setErr
	}
	return out, nil
}

// escapePath escapes the characters sjson treats as path syntax.
func escapePath(key string) string {
	var b []byte
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			b = append(b, '\\')
		}
		b = append(b, key[i])
	}
	return string(b)
}

func success(data any) *OperationResult {
	return &OperationResult{Success: true, Data: data}
}

func failure(err error) *OperationResult {
	return &OperationResult{Error: err.Error()}
}

func resultOf[T any](data T, err error) *OperationResult {
	if err != nil {
		return failure(err)
	}
	return success(data)
}

// Argument records for each operation. Pointer fields are optional and fall
// back to the package defaults when nil.
type (
	ReadArgs struct {
		URL         string `json:"url" jsonschema:"Post URL, permalink, or ID"`
		Depth       *int   `json:"depth,omitempty" jsonschema:"Comment reply depth (default 1)"`
		MaxComments *int   `json:"max_comments,omitempty" jsonschema:"Maximum comments per level (default 25)"`
	}

	ListingArgs struct {
		Subreddit string `json:"subreddit" jsonschema:"Subreddit name without r/"`
		Limit     *int   `json:"limit,omitempty" jsonschema:"Number of posts (default 15)"`
		Skip      *int   `json:"skip,omitempty" jsonschema:"Posts to skip for pagination (default 0)"`
		Sort      string `json:"sort,omitempty" jsonschema:"hot, new, top, rising (default hot)"`
	}

	SearchArgs struct {
		Subreddit  string `json:"subreddit" jsonschema:"Subreddit to search in"`
		Query      string `json:"query" jsonschema:"Search query"`
		Limit      *int   `json:"limit,omitempty" jsonschema:"Max results (default 15)"`
		Sort       string `json:"sort,omitempty" jsonschema:"relevance, hot, top, new, comments (default relevance)"`
		TimeFilter string `json:"time_filter,omitempty" jsonschema:"all, hour, day, week, month, year (default all)"`
	}

	InboxArgs struct {
		Limit      *int `json:"limit,omitempty" jsonschema:"Max messages (default 25)"`
		UnreadOnly bool `json:"unread_only,omitempty" jsonschema:"Only unread messages"`
	}

	CommentArgs struct {
		ThingID       string `json:"thing_id" jsonschema:"Fullname to reply to (t3_xxx for post, t1_xxx for comment)"`
		Text          string `json:"text" jsonschema:"Comment text (markdown supported)"`
		CheckExisting *bool  `json:"check_existing,omitempty" jsonschema:"Skip if already replied (default true)"`
	}

	SubmitArgs struct {
		Subreddit string `json:"subreddit" jsonschema:"Subreddit name without r/"`
		Title     string `json:"title" jsonschema:"Post title"`
		Text      string `json:"text,omitempty" jsonschema:"Self post body (markdown)"`
		URL       string `json:"url,omitempty" jsonschema:"Link URL (for link posts)"`
		FlairID   string `json:"flair_id,omitempty" jsonschema:"Optional flair ID"`
	}

	VoteArgs struct {
		ThingID   string `json:"thing_id" jsonschema:"Fullname to vote on"`
		Direction int    `json:"direction" jsonschema:"1 (up), -1 (down), 0 (remove)"`
	}

	DeleteArgs struct {
		ThingID string `json:"thing_id" jsonschema:"Fullname to delete"`
	}

	AuthArgs struct {
		Browser string `json:"browser,omitempty" jsonschema:"Browser to import from (default: try all)"`
	}
)

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Operations wraps a Client so every call yields an OperationResult instead
// of an error. It is the surface the CLI and the MCP server share.
type Operations struct {
	client *Client
	logger *slog.Logger
}

// NewOperations returns the operation surface of client.
func NewOperations(client *Client) *Operations {
	return &Operations{client: client, logger: client.logger}
}

// ReadPost runs Client.ReadPost with the tool defaults for depth and size.
func (o *Operations) ReadPost(ctx context.Context, args ReadArgs) *OperationResult {
	res, err := o.client.ReadPost(ctx, args.URL, intOr(args.Depth, DefaultDepth), intOr(args.MaxComments, DefaultMaxComments))
	return resultOf(res, err)
}

// ReadListing runs Client.ReadListing.
func (o *Operations) ReadListing(ctx context.Context, args ListingArgs) *OperationResult {
	res, err := o.client.ReadListing(ctx, args.Subreddit, intOr(args.Limit, DefaultListingLimit), intOr(args.Skip, 0), args.Sort)
	return resultOf(res, err)
}

// Search runs Client.Search.
func (o *Operations) Search(ctx context.Context, args SearchArgs) *OperationResult {
	res, err := o.client.Search(ctx, args.Subreddit, args.Query, intOr(args.Limit, DefaultListingLimit), args.Sort, args.TimeFilter)
	return resultOf(res, err)
}

// Inbox runs Client.Inbox.
func (o *Operations) Inbox(ctx context.Context, args InboxArgs) *OperationResult {
	res, err := o.client.Inbox(ctx, intOr(args.Limit, DefaultInboxLimit), args.UnreadOnly)
	return resultOf(res, err)
}

// Comment runs Client.Comment. The duplicate check is on unless disabled.
func (o *Operations) Comment(ctx context.Context, args CommentArgs) *OperationResult {
	res, err := o.client.Comment(ctx, args.ThingID, args.Text, boolOr(args.CheckExisting, true))
	return resultOf(res, err)
}

// Submit runs Client.Submit.
func (o *Operations) Submit(ctx context.Context, args SubmitArgs) *OperationResult {
	res, err := o.client.Submit(ctx, &types.SubmitRequest{
		Subreddit: args.Subreddit,
		Title:     args.Title,
		Text:      args.Text,
		URL:       args.URL,
		FlairID:   args.FlairID,
	})
	return resultOf(res, err)
}

// Vote runs Client.Vote.
func (o *Operations) Vote(ctx context.Context, args VoteArgs) *OperationResult {
	res, err := o.client.Vote(ctx, args.ThingID, args.Direction)
	return resultOf(res, err)
}

// Delete runs Client.Delete.
func (o *Operations) Delete(ctx context.Context, args DeleteArgs) *OperationResult {
	res, err := o.client.Delete(ctx, args.ThingID)
	return resultOf(res, err)
}

// Auth imports a browser session through Client.Auth.
func (o *Operations) Auth(ctx context.Context, args AuthArgs) *OperationResult {
	res, err := o.client.Auth(ctx, args.Browser)
	return resultOf(res, err)
}

// Call decodes args for the named tool and runs it. An unknown name, bad
// arguments or a panic inside the operation all become failure results.
func (o *Operations) Call(ctx context.Context, name string, args json.RawMessage) (res *OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("operation panicked", "tool", name, "panic", r)
			res = &OperationResult{Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	switch name {
	case ToolRead:
		return dispatch(ctx, args, o.ReadPost)
	case ToolListing:
		return dispatch(ctx, args, o.ReadListing)
	case ToolSearch:
		return dispatch(ctx, args, o.Search)
	case ToolInbox:
		return dispatch(ctx, args, o.Inbox)
	case ToolComment:
		return dispatch(ctx, args, o.Comment)
	case ToolSubmit:
		return dispatch(ctx, args, o.Submit)
	case ToolVote:
		return dispatch(ctx, args, o.Vote)
	case ToolDelete:
		return dispatch(ctx, args, o.Delete)
	case ToolAuth:
		return dispatch(ctx, args, o.Auth)
	default:
		return &OperationResult{Error: "Unknown tool: " + name}
	}
}

func dispatch[A any](ctx context.Context, raw json.RawMessage, op func(context.Context, A) *OperationResult) *OperationResult {
	var args A
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return &OperationResult{Error: "invalid arguments: " + err.Error()}
		}
	}
	return op(ctx, args)
}

// Async runs fn on its own goroutine and delivers the result on the returned
// channel. If ctx ends first the channel yields a failure right away; the
// operation itself stops at its next context check.
func (o *Operations) Async(ctx context.Context, fn func(context.Context) *OperationResult) <-chan *OperationResult {
	out := make(chan *OperationResult, 1)
	done := make(chan *OperationResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("operation panicked", "panic", r)
				done <- &OperationResult{Error: fmt.Sprintf("internal error: %v", r)}
			}
		}()
		done <- fn(ctx)
	}()

	go func() {
		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- failure(ctx.Err())
		}
	}()

	return out
}
