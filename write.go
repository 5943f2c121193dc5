package graw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jamesprial/go-reddit-session/internal"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// Write endpoints, relative to the base URL.
const (
	commentPath = "api/comment"
	submitPath  = "api/submit"
	votePath    = "api/vote"
	deletePath  = "api/del"
)

// Comment replies to a post (t3_) or comment (t1_). With checkExisting set,
// the thread is searched for an earlier reply by the same user first, and a
// hit fails without posting.
func (c *Client) Comment(ctx context.Context, thingID, text string, checkExisting bool) (*types.CommentResult, error) {
	if err := c.validator.ValidateThingID(thingID); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateCommentText(text); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	if checkExisting && c.alreadyReplied(ctx, thingID) {
		return nil, &pkgerrs.PreconditionError{Field: "thing_id", Message: "Already replied to " + thingID}
	}

	env, err := c.postEnvelope(ctx, commentPath, url.Values{
		"thing_id": {thingID},
		"text":     {text},
	})
	if err != nil {
		return nil, err
	}
	return env.CommentPayload(), nil
}

// Submit creates a self post, or a link post when req.URL is set.
func (c *Client) Submit(ctx context.Context, req *types.SubmitRequest) (*types.SubmitResult, error) {
	if err := c.validator.ValidateSubmit(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	form := url.Values{
		"sr":       {req.Subreddit},
		"title":    {req.Title},
		"kind":     {"self"},
		"resubmit": {"true"},
	}
	if req.URL != "" {
		form.Set("kind", "link")
		form.Set("url", req.URL)
	}
	if req.Text != "" {
		form.Set("text", req.Text)
	}
	if req.FlairID != "" {
		form.Set("flair_id", req.FlairID)
	}

	env, err := c.postEnvelope(ctx, submitPath, form)
	if err != nil {
		return nil, err
	}
	return env.SubmitPayload(), nil
}

// Vote casts an upvote (1), a downvote (-1) or clears the vote (0).
func (c *Client) Vote(ctx context.Context, thingID string, direction int) (*types.VoteResult, error) {
	if err := c.validator.ValidateThingID(thingID); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateVoteDirection(direction); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	err := c.postStatus(ctx, votePath, url.Values{
		"id":  {thingID},
		"dir": {strconv.Itoa(direction)},
	})
	if err != nil {
		return nil, err
	}
	return &types.VoteResult{ThingID: thingID, Direction: direction}, nil
}

// Delete removes one of the user's posts or comments.
func (c *Client) Delete(ctx context.Context, thingID string) (*types.DeleteResult, error) {
	if err := c.validator.ValidateThingID(thingID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	if err := c.postStatus(ctx, deletePath, url.Values{"id": {thingID}}); err != nil {
		return nil, err
	}
	return &types.DeleteResult{ThingID: thingID}, nil
}

// post adds the modhash and api_type to form and sends it. The caller holds
// c.mu and has authenticated.
func (c *Client) post(ctx context.Context, path string, form url.Values) (*internal.Response, error) {
	form.Set("api_type", "json")
	form.Set("uh", c.auth.Modhash())
	return c.http.PostForm(ctx, path, form)
}

// postEnvelope sends a write whose response is the api_type=json envelope
// and fails with the envelope's error list when it is not empty.
func (c *Client) postEnvelope(ctx context.Context, path string, form url.Values) (*internal.WriteEnvelope, error) {
	resp, err := c.post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	raw, err := c.parser.CheckResponse(resp, internal.InvalidResponseMessage)
	if err != nil {
		return nil, err
	}
	env := internal.DecodeWriteEnvelope(raw)
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

// postStatus sends a write whose success is the status code alone. Vote and
// delete answer with an empty object; an error list is still honoured when
// one comes back.
func (c *Client) postStatus(ctx context.Context, path string, form url.Values) error {
	resp, err := c.post(ctx, path, form)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &pkgerrs.TransportError{StatusCode: resp.StatusCode, URL: resp.URL}
	}
	if json.Valid(resp.Body) {
		return internal.DecodeWriteEnvelope(resp.Body).Err()
	}
	return nil
}
