package internal

import (
	"errors"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

func TestValidator_ValidateSubredditName(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		input     string
		wantError bool
		errorMsg  string
	}{
		{name: "valid", input: "golang", wantError: false},
		{name: "valid two chars", input: "tf", wantError: false},
		{name: "valid multireddit", input: "golang+rust", wantError: false},
		{name: "empty string", input: "", wantError: true, errorMsg: "cannot be empty"},
		{name: "contains slash", input: "r/golang", wantError: true, errorMsg: "invalid subreddit"},
		{name: "path traversal", input: "../etc", wantError: true, errorMsg: "invalid subreddit"},
		{name: "contains space", input: "go lang", wantError: true, errorMsg: "invalid subreddit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSubredditName(tt.input)
			if !tt.wantError {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
			var precondErr *pkgerrs.PreconditionError
			if !errors.As(err, &precondErr) {
				t.Errorf("expected PreconditionError, got %T", err)
			}
		})
	}
}

func TestValidator_ValidateThingID(t *testing.T) {
	v := NewValidator()

	for _, id := range []string{"t1_abc", "t3_1a2b3c"} {
		if err := v.ValidateThingID(id); err != nil {
			t.Errorf("expected %q to be valid, got %v", id, err)
		}
	}
	for _, id := range []string{"", "abc123", "t3_", "t9_abc", "t3_abc&dir=1"} {
		if err := v.ValidateThingID(id); err == nil {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestValidator_ValidateVoteDirection(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateVoteDirection(2); err == nil || err.Error() != "Direction must be -1, 0, or 1" {
		t.Errorf("unexpected error for direction 2: %v", err)
	}
	for _, dir := range []int{-1, 0, 1} {
		if err := v.ValidateVoteDirection(dir); err != nil {
			t.Errorf("unexpected error for direction %d: %v", dir, err)
		}
	}
}

func TestValidator_ValidateSubmit(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		req      *types.SubmitRequest
		errorMsg string
	}{
		{name: "self post", req: &types.SubmitRequest{Subreddit: "test", Title: "Hello", Text: "body"}},
		{name: "link post", req: &types.SubmitRequest{Subreddit: "test", Title: "Hello", URL: "https://example.com"}},
		{name: "empty self post", req: &types.SubmitRequest{Subreddit: "test", Title: "Hello"}},
		{name: "nil", req: nil, errorMsg: "cannot be nil"},
		{name: "both text and url", req: &types.SubmitRequest{Subreddit: "test", Title: "Hello", Text: "a", URL: "https://example.com"}, errorMsg: "Cannot submit both text and url"},
		{name: "both wins over missing title", req: &types.SubmitRequest{Text: "a", URL: "b"}, errorMsg: "Cannot submit both text and url"},
		{name: "missing title", req: &types.SubmitRequest{Subreddit: "test"}, errorMsg: "title cannot be empty"},
		{name: "long title", req: &types.SubmitRequest{Subreddit: "test", Title: strings.Repeat("x", 301)}, errorMsg: "cannot exceed 300"},
		{name: "bad subreddit", req: &types.SubmitRequest{Subreddit: "a b", Title: "x"}, errorMsg: "invalid subreddit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSubmit(tt.req)
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errorMsg, err)
			}
		})
	}
}

func TestValidator_ValidateSearch(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateSearch("generics", "relevance", "all"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateSearch(" ", "relevance", "all"); err == nil {
		t.Error("expected empty query to be rejected")
	}
	if err := v.ValidateSearch("q", "rising", "all"); err == nil {
		t.Error("expected rising to be rejected as a search sort")
	}
	if err := v.ValidateSearch("q", "top", "decade"); err == nil {
		t.Error("expected decade to be rejected as a time filter")
	}
}

func TestValidator_MiscChecks(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateNonNegative("limit", -1); err == nil || err.Error() != "limit cannot be negative" {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateNonNegative("skip", 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateListingSort("hot"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateListingSort("relevance"); err == nil {
		t.Error("expected relevance to be rejected as a listing sort")
	}
	if err := v.ValidatePostRef(""); err == nil {
		t.Error("expected empty post ref to be rejected")
	}
	if err := v.ValidateCommentText("\n"); err == nil {
		t.Error("expected blank comment to be rejected")
	}
}

func TestValidator_ValidateUserAgent(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		ua        string
		wantError bool
	}{
		{"default", DefaultUserAgent, false},
		{"empty falls back to default", "", false},
		{"header injection", "agent\r\nX-Evil: 1", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUserAgent(tt.ua)
			if (err != nil) != tt.wantError {
				t.Fatalf("expected error=%v, got %v", tt.wantError, err)
			}
			if err != nil {
				var cfgErr *pkgerrs.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigError, got %T", err)
				}
			}
		})
	}
}
