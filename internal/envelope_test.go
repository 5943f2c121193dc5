package internal

import (
	"encoding/json"
	"errors"
	"testing"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
)

func TestDecodeWriteEnvelope_Errors(t *testing.T) {
	raw := json.RawMessage(`{"json":{"errors":[["RATELIMIT","you are doing that too much. try again in 5 minutes.","ratelimit"],["BAD_SR_NAME",null,"sr"]]}}`)

	env := DecodeWriteEnvelope(raw)
	if !env.Present {
		t.Fatal("expected envelope to be present")
	}

	err := env.Err()
	var platformErr *pkgerrs.PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("expected PlatformError, got %v", err)
	}
	if len(platformErr.Errors) != 2 {
		t.Fatalf("expected 2 error entries, got %d", len(platformErr.Errors))
	}
	want := "RATELIMIT: you are doing that too much. try again in 5 minutes. (ratelimit); BAD_SR_NAME (sr)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestDecodeWriteEnvelope_CommentPayload(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantID        string
		wantPermalink string
	}{
		{
			name:          "id and permalink",
			raw:           `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"t1_new","content":"<div class=\"thing\" data-permalink=\"/r/golang/comments/abc/title/new/\">"}}]}}}`,
			wantID:        "t1_new",
			wantPermalink: "https://reddit.com/r/golang/comments/abc/title/new/",
		},
		{
			name:   "name fallback without permalink",
			raw:    `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"name":"t1_named","content":"<p>hi</p>"}}]}}}`,
			wantID: "t1_named",
		},
		{
			name: "no things",
			raw:  `{"json":{"errors":[],"data":{"things":[]}}}`,
		},
		{
			name: "no envelope",
			raw:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := DecodeWriteEnvelope(json.RawMessage(tt.raw))
			if err := env.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := env.CommentPayload()
			if got.ID != tt.wantID {
				t.Errorf("expected id %q, got %q", tt.wantID, got.ID)
			}
			if got.Permalink != tt.wantPermalink {
				t.Errorf("expected permalink %q, got %q", tt.wantPermalink, got.Permalink)
			}
		})
	}
}

func TestDecodeWriteEnvelope_SubmitPayload(t *testing.T) {
	env := DecodeWriteEnvelope(json.RawMessage(`{"json":{"errors":[],"data":{"url":"https://old.reddit.com/r/test/comments/xyz/t/","id":"xyz","name":"t3_xyz"}}}`))
	got := env.SubmitPayload()
	if got.URL != "https://old.reddit.com/r/test/comments/xyz/t/" || got.ID != "t3_xyz" {
		t.Errorf("unexpected submit payload %+v", got)
	}
	if got.Raw != nil {
		t.Errorf("expected no raw body, got %s", got.Raw)
	}

	raw := json.RawMessage(`{"jquery":[[0,1,"call",["body"]]],"success":true}`)
	got = DecodeWriteEnvelope(raw).SubmitPayload()
	if got.URL != "" || string(got.Raw) != string(raw) {
		t.Errorf("expected raw fallback, got %+v", got)
	}
}
