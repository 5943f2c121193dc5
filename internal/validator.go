package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/jamesprial/go-reddit-session/pkg/validation"
)

const (
	// User agent constraints
	maxUserAgentLength = 256

	// Title constraints
	maxTitleLength = 300
)

// Validator checks operation arguments before any request is issued. Every
// failure is a PreconditionError so callers see one error type for bad input.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePostRef rejects an empty post reference.
func (v *Validator) ValidatePostRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return &pkgerrs.PreconditionError{Field: "url", Message: "post URL or ID cannot be empty"}
	}
	return nil
}

// ValidateSubredditName checks a subreddit name, or several joined with '+'.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.PreconditionError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if !validation.IsValidSubreddit(name) {
		return &pkgerrs.PreconditionError{Field: "subreddit", Message: fmt.Sprintf("invalid subreddit name %q", name)}
	}
	return nil
}

// ValidateThingID checks that id is a fullname such as t3_abc123.
func (v *Validator) ValidateThingID(id string) error {
	if !validation.IsValidFullname(id) {
		return &pkgerrs.PreconditionError{Field: "thing_id", Message: fmt.Sprintf("invalid thing ID %q: expected a fullname like t3_abc123", id)}
	}
	return nil
}

// ValidateNonNegative rejects negative counts such as limit, skip or depth.
func (v *Validator) ValidateNonNegative(field string, n int) error {
	if n < 0 {
		return &pkgerrs.PreconditionError{Field: field, Message: fmt.Sprintf("%s cannot be negative", field)}
	}
	return nil
}

// ValidateListingSort checks the sort of a subreddit listing.
func (v *Validator) ValidateListingSort(sort string) error {
	if !validation.IsValidListingSort(sort) {
		return &pkgerrs.PreconditionError{Field: "sort", Message: fmt.Sprintf("invalid sort %q: options are %s", sort, strings.Join(validation.ListingSorts, ", "))}
	}
	return nil
}

// ValidateSearch checks the query, sort and time filter of a search.
func (v *Validator) ValidateSearch(query, sort, timeFilter string) error {
	if strings.TrimSpace(query) == "" {
		return &pkgerrs.PreconditionError{Field: "query", Message: "search query cannot be empty"}
	}
	if !validation.IsValidSearchSort(sort) {
		return &pkgerrs.PreconditionError{Field: "sort", Message: fmt.Sprintf("invalid sort %q: options are %s", sort, strings.Join(validation.SearchSorts, ", "))}
	}
	if !validation.IsValidTimeFilter(timeFilter) {
		return &pkgerrs.PreconditionError{Field: "time_filter", Message: fmt.Sprintf("invalid time filter %q: options are %s", timeFilter, strings.Join(validation.TimeFilters, ", "))}
	}
	return nil
}

// ValidateVoteDirection checks that dir is -1, 0 or 1.
func (v *Validator) ValidateVoteDirection(dir int) error {
	if !validation.IsValidVoteDirection(dir) {
		return &pkgerrs.PreconditionError{Field: "direction", Message: "Direction must be -1, 0, or 1"}
	}
	return nil
}

// ValidateCommentText rejects an empty comment body.
func (v *Validator) ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &pkgerrs.PreconditionError{Field: "text", Message: "comment text cannot be empty"}
	}
	return nil
}

// ValidateSubmit checks a submission. Text and URL are mutually exclusive.
func (v *Validator) ValidateSubmit(req *types.SubmitRequest) error {
	if req == nil {
		return &pkgerrs.PreconditionError{Message: "submit request cannot be nil"}
	}
	if req.Text != "" && req.URL != "" {
		return &pkgerrs.PreconditionError{Field: "url", Message: "Cannot submit both text and url"}
	}
	if err := v.ValidateSubredditName(req.Subreddit); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return &pkgerrs.PreconditionError{Field: "title", Message: "title cannot be empty"}
	}
	if len(req.Title) > maxTitleLength {
		return &pkgerrs.PreconditionError{Field: "title", Message: fmt.Sprintf("title cannot exceed %d characters", maxTitleLength)}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}
