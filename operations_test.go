package graw

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jamesprial/go-reddit-session/pkg/types"
)

func TestOperationResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *OperationResult
		want   string
	}{
		{
			name:   "failure",
			result: failure(errors.New("boom")),
			want:   `{"success":false,"error":"boom"}`,
		},
		{
			name:   "object data is flattened",
			result: success(&types.VoteResult{ThingID: "t3_abc123", Direction: 1}),
			want:   `{"success":true,"thing_id":"t3_abc123","direction":1}`,
		},
		{
			name:   "non-object data is nested",
			result: success([]int{1, 2}),
			want:   `{"success":true,"data":[1,2]}`,
		},
		{
			name:   "nil data",
			result: success(nil),
			want:   `{"success":true}`,
		},
		{
			name:   "keys with path characters",
			result: success(map[string]string{"a.b": "x"}),
			want:   `{"success":true,"a.b":"x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOperations_CallListingDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.server.SetJSON("/r/golang/hot.json", http.StatusOK, listingJSON(linkJSON("t3_p1", "one", true, "")))
	ops := NewOperations(f.client)

	res := ops.Call(context.Background(), ToolListing, json.RawMessage(`{"subreddit": "golang"}`))
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	req, err := f.server.LastRequest("/r/golang/hot.json")
	if err != nil {
		t.Fatal(err)
	}
	if req.Query.Get("limit") != "15" {
		t.Errorf("expected default limit 15, got %q", req.Query.Get("limit"))
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), `{"success":true,"subreddit":"golang","posts":[`) {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestOperations_CallFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tool    string
		args    string
		wantErr string
	}{
		{name: "unknown tool", tool: "reddit_explode", args: `{}`, wantErr: "Unknown tool: reddit_explode"},
		{name: "malformed arguments", tool: ToolVote, args: `{"direction": "up"}`, wantErr: "invalid arguments: "},
		{name: "precondition", tool: ToolVote, args: `{"thing_id": "t3_abc123", "direction": 5}`, wantErr: "Direction must be -1, 0, or 1"},
		{name: "submit conflict", tool: ToolSubmit, args: `{"subreddit": "golang", "title": "t", "text": "a", "url": "https://go.dev"}`, wantErr: "Cannot submit both text and url"},
		{name: "inbox without session", tool: ToolInbox, args: ``, wantErr: "Not logged in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			res := NewOperations(f.client).Call(context.Background(), tt.tool, json.RawMessage(tt.args))
			if res.Success {
				t.Fatal("expected failure")
			}
			if !strings.HasPrefix(res.Error, tt.wantErr) {
				t.Errorf("error = %q, want %q", res.Error, tt.wantErr)
			}
		})
	}
}

func TestOperations_CallHTTPFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"success":false,"error":"HTTP 429"}`},
		{"server error", http.StatusInternalServerError, `{"success":false,"error":"HTTP 500"}`},
		{"bad gateway", http.StatusBadGateway, `{"success":false,"error":"HTTP 502"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.server.SetJSON("/r/golang/hot.json", tt.status, `{"message": "try later"}`)

			res := NewOperations(f.client).Call(context.Background(), ToolListing, json.RawMessage(`{"subreddit": "golang"}`))
			raw, err := json.Marshal(res)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			if string(raw) != tt.want {
				t.Errorf("result = %s, want %s", raw, tt.want)
			}
			if got := f.server.CallCount("/r/golang/hot.json"); got != 1 {
				t.Errorf("expected one request and no retry, got %d", got)
			}
		})
	}
}

func TestOperations_CallRecoversPanics(t *testing.T) {
	t.Parallel()

	ops := &Operations{logger: slog.New(slog.DiscardHandler)}
	res := ops.Call(context.Background(), ToolRead, json.RawMessage(`{"url": "abc123"}`))
	if res.Success || !strings.HasPrefix(res.Error, "internal error: ") {
		t.Errorf("expected recovered panic, got %+v", res)
	}
}

func TestOperations_Async(t *testing.T) {
	t.Parallel()

	ops := &Operations{logger: slog.New(slog.DiscardHandler)}

	t.Run("delivers result", func(t *testing.T) {
		t.Parallel()

		res := <-ops.Async(context.Background(), func(context.Context) *OperationResult {
			return success(&types.DeleteResult{ThingID: "t1_x"})
		})
		if !res.Success {
			t.Errorf("expected success, got %+v", res)
		}
	})

	t.Run("recovers panic", func(t *testing.T) {
		t.Parallel()

		res := <-ops.Async(context.Background(), func(context.Context) *OperationResult {
			panic("kaboom")
		})
		if res.Success || res.Error != "internal error: kaboom" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("cancellation", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		ch := ops.Async(ctx, func(context.Context) *OperationResult {
			<-release
			return success(nil)
		})
		cancel()

		select {
		case res := <-ch:
			if res.Success || res.Error != context.Canceled.Error() {
				t.Errorf("unexpected result %+v", res)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Async did not return after cancellation")
		}
	})
}
