package internal

import (
	"encoding/json"
	"regexp"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/tidwall/gjson"
)

// PermalinkHost prefixes the relative permalinks Reddit embeds in rendered
// comment HTML.
const PermalinkHost = "https://reddit.com"

var permalinkPattern = regexp.MustCompile(`data-permalink="([^"]+)"`)

// WriteEnvelope is the body of an api_type=json write:
//
//	{"json": {"errors": [[code, message, field], ...], "data": {...}}}
type WriteEnvelope struct {
	// Present is false when the body had no "json" member at all.
	Present bool
	Errors  [][]string
	Data    gjson.Result
	raw     json.RawMessage
}

// DecodeWriteEnvelope reads the envelope from an already validated JSON body.
func DecodeWriteEnvelope(raw json.RawMessage) *WriteEnvelope {
	doc := gjson.ParseBytes(raw)
	env := &WriteEnvelope{raw: raw}

	inner := doc.Get("json")
	if !inner.Exists() {
		return env
	}
	env.Present = true
	env.Data = inner.Get("data")

	inner.Get("errors").ForEach(func(_, entry gjson.Result) bool {
		var parts []string
		if entry.IsArray() {
			for _, part := range entry.Array() {
				parts = append(parts, part.String())
			}
		} else {
			parts = append(parts, entry.String())
		}
		env.Errors = append(env.Errors, parts)
		return true
	})

	return env
}

// Err returns a PlatformError when Reddit reported any errors.
func (e *WriteEnvelope) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return &pkgerrs.PlatformError{Errors: e.Errors}
}

// CommentPayload extracts the new comment's id and permalink. Both are empty
// when Reddit did not echo the comment back.
func (e *WriteEnvelope) CommentPayload() *types.CommentResult {
	result := &types.CommentResult{}
	if !e.Present {
		return result
	}

	thing := e.Data.Get("things.0.data")
	if !thing.Exists() {
		return result
	}

	result.ID = thing.Get("id").String()
	if result.ID == "" {
		result.ID = thing.Get("name").String()
	}
	if m := permalinkPattern.FindStringSubmatch(thing.Get("content").String()); m != nil {
		result.Permalink = PermalinkHost + m[1]
	}
	return result
}

// SubmitPayload extracts the new post's URL and fullname, falling back to
// the whole body when Reddit did not return a URL.
func (e *WriteEnvelope) SubmitPayload() *types.SubmitResult {
	if e.Present {
		if u := e.Data.Get("url").String(); u != "" {
			return &types.SubmitResult{URL: u, ID: e.Data.Get("name").String()}
		}
	}
	return &types.SubmitResult{Raw: e.raw}
}
