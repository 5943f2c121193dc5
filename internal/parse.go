package internal

import (
	"encoding/json"
	"fmt"
	"net/http"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/tidwall/gjson"
)

// Messages used for DecodeError so callers see the same text for every read
// or write endpoint.
const (
	InvalidJSONMessage     = "Invalid JSON response"
	InvalidResponseMessage = "Invalid response"
	unexpectedShapeMessage = "Unexpected response shape"
)

// Parser handles parsing of Reddit API responses
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// CheckResponse turns a raw response into its JSON body. A status other than
// 200 is a TransportError, a body that is not JSON is a DecodeError carrying
// invalidMsg, and a top-level {"error": ...} object is a PlatformError.
func (p *Parser) CheckResponse(resp *Response, invalidMsg string) (json.RawMessage, error) {
	if resp == nil {
		return nil, &pkgerrs.TransportError{}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrs.TransportError{StatusCode: resp.StatusCode, URL: resp.URL}
	}
	if !json.Valid(resp.Body) {
		return nil, &pkgerrs.DecodeError{Message: invalidMsg}
	}
	if err := platformError(resp.Body); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

// platformError reports Reddit's {"error": code, "message": text} envelope.
// The message wins over the bare code when both are present.
func platformError(body []byte) error {
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil
	}
	code := doc.Get("error")
	if !code.Exists() {
		return nil
	}
	msg := doc.Get("message").String()
	if msg == "" {
		msg = code.String()
	}
	return &pkgerrs.PlatformError{Message: msg}
}

// DecodeThing unmarshals a single Thing envelope.
func (p *Parser) DecodeThing(raw json.RawMessage) (*types.Thing, error) {
	var thing types.Thing
	if err := json.Unmarshal(raw, &thing); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: err}
	}
	return &thing, nil
}

// DecodeListing unmarshals a Listing Thing and returns its data.
func (p *Parser) DecodeListing(raw json.RawMessage) (*types.ListingData, error) {
	thing, err := p.DecodeThing(raw)
	if err != nil {
		return nil, err
	}
	return p.ParseListing(thing)
}

// DecodePostPage splits the two-element response of a comments page into the
// post Thing and the comment Listing. The comment Listing is nil when Reddit
// sent only the post.
func (p *Parser) DecodePostPage(raw json.RawMessage) (*types.Thing, *types.ListingData, error) {
	var page []*types.Thing
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: err}
	}
	if len(page) == 0 {
		return nil, nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("empty response")}
	}

	postListing, err := p.ParseListing(page[0])
	if err != nil {
		return nil, nil, err
	}
	if len(postListing.Children) == 0 || postListing.Children[0] == nil {
		return nil, nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("post listing has no children")}
	}
	post := postListing.Children[0]

	if len(page) < 2 || page[1] == nil {
		return post, nil, nil
	}
	comments, err := p.ParseListing(page[1])
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// ParseListing extracts a ListingData from a Thing of kind "Listing".
func (p *Parser) ParseListing(thing *types.Thing) (*types.ListingData, error) {
	if thing == nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("thing is nil")}
	}
	if thing.Kind != types.KindListing {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("expected Listing, got %q", thing.Kind)}
	}

	var listing types.ListingData
	if err := json.Unmarshal(thing.Data, &listing); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("failed to parse Listing data: %w", err)}
	}
	return &listing, nil
}

// ParseLink extracts a LinkData from a Thing of kind "t3".
func (p *Parser) ParseLink(thing *types.Thing) (*types.LinkData, error) {
	if err := expectKind(thing, types.KindLink); err != nil {
		return nil, err
	}

	var link types.LinkData
	if err := json.Unmarshal(thing.Data, &link); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("failed to parse Link data: %w", err)}
	}
	return &link, nil
}

// ParseComment extracts a CommentData from a Thing of kind "t1". Replies are
// left raw for the tree extractor.
func (p *Parser) ParseComment(thing *types.Thing) (*types.CommentData, error) {
	if err := expectKind(thing, types.KindComment); err != nil {
		return nil, err
	}

	var comment types.CommentData
	if err := json.Unmarshal(thing.Data, &comment); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("failed to parse Comment data: %w", err)}
	}
	return &comment, nil
}

// ParseAccount extracts an AccountData from a Thing of kind "t2".
func (p *Parser) ParseAccount(thing *types.Thing) (*types.AccountData, error) {
	if err := expectKind(thing, types.KindAccount); err != nil {
		return nil, err
	}

	var account types.AccountData
	if err := json.Unmarshal(thing.Data, &account); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("failed to parse Account data: %w", err)}
	}
	return &account, nil
}

// ParseMessage extracts a MessageData from an inbox child. The inbox mixes
// private messages (t4) with comment replies and mentions (t1), so any kind
// is accepted.
func (p *Parser) ParseMessage(thing *types.Thing) (*types.MessageData, error) {
	if thing == nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("thing is nil")}
	}

	var message types.MessageData
	if len(thing.Data) == 0 {
		return &message, nil
	}
	if err := json.Unmarshal(thing.Data, &message); err != nil {
		return nil, &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("failed to parse Message data: %w", err)}
	}
	return &message, nil
}

// ParseReplies decodes the replies field of a comment. Reddit sends "" when a
// comment has no replies, so ok is false for anything that is not a Listing.
func (p *Parser) ParseReplies(raw json.RawMessage) (*types.ListingData, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var thing types.Thing
	if err := json.Unmarshal(raw, &thing); err != nil {
		return nil, false
	}
	listing, err := p.ParseListing(&thing)
	if err != nil {
		return nil, false
	}
	return listing, true
}

func expectKind(thing *types.Thing, kind string) error {
	if thing == nil {
		return &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("thing is nil")}
	}
	if thing.Kind != kind {
		return &pkgerrs.DecodeError{Message: unexpectedShapeMessage, Err: fmt.Errorf("expected %s, got %q", kind, thing.Kind)}
	}
	return nil
}

// ToPost flattens a link into the post record returned by ReadPost.
func ToPost(link *types.LinkData) *types.Post {
	return &types.Post{
		ID:          link.Name,
		Subreddit:   link.Subreddit,
		Author:      link.Author,
		Title:       link.Title,
		SelfText:    link.SelfText,
		URL:         externalURL(link),
		Score:       link.Score,
		CreatedUTC:  link.CreatedUTC,
		NumComments: link.NumComments,
		Permalink:   link.Permalink,
	}
}

// ToListingEntry flattens a link into a listing or search entry.
func ToListingEntry(link *types.LinkData) *types.ListingEntry {
	return &types.ListingEntry{
		ID:          link.Name,
		Title:       link.Title,
		Author:      link.Author,
		Score:       link.Score,
		NumComments: link.NumComments,
		CreatedUTC:  link.CreatedUTC,
		Permalink:   link.Permalink,
		URL:         externalURL(link),
		IsSelf:      link.IsSelf,
		Stickied:    link.Stickied,
	}
}

// ToMessage flattens an inbox child. kind is the Thing's kind tag.
func ToMessage(kind string, msg *types.MessageData) *types.Message {
	return &types.Message{
		ID:         msg.Name,
		Author:     msg.Author,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Context:    msg.Context,
		CreatedUTC: msg.CreatedUTC,
		New:        msg.New,
		Type:       kind,
	}
}

// externalURL is nil for self posts, whose url field points back at the
// thread itself.
func externalURL(link *types.LinkData) *string {
	if link.IsSelf || link.URL == "" {
		return nil
	}
	u := link.URL
	return &u
}
