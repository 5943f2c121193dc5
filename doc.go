// Package graw is a Reddit client that works with a browser session instead
// of API keys.
//
// # Overview
//
// Reads go through the public JSON listings of old.reddit.com and need no
// login. Writes (comment, submit, vote, delete) and the inbox use the
// reddit_session cookie of a logged-in browser, imported once and saved to
// disk, and send the page's CSRF token (the modhash) with every form.
//
// # Features
//
//   - Session import from Firefox and Chromium-family browsers
//   - Automatic refresh of an expired session from the browser it came from
//   - Threaded comment extraction with depth and size limits
//   - Duplicate-reply detection before commenting
//   - Built-in request pacing that honours Reddit's rate-limit headers
//   - Structured logging support via Go's slog package
//
// # Quick Start
//
// Import a session once:
//
//	client, err := graw.NewClient(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	auth, err := client.Auth(ctx, "firefox")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("logged in as u/%s, saved to %s\n", auth.Username, auth.SessionFile)
//
// Read a thread:
//
//	post, err := client.ReadPost(ctx, "https://www.reddit.com/r/golang/comments/abc123/", 2, 25)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	graw.NewCommentTree(post.Comments).Walk(func(c *types.Comment) {
//		fmt.Printf("%s%s: %s\n", strings.Repeat("  ", c.Depth-1), c.Author, c.Body)
//	})
//
// Reply unless already replied:
//
//	_, err = client.Comment(ctx, "t3_abc123", "Thanks!", true)
//
// # Session Lifecycle
//
// The session file lives in $REDDIT_SESSION_DIR or ~/.config/reddit-mcp and
// holds the cookies, the username and the browser they came from. The first
// operation that needs a login loads it and fetches the modhash from the
// front page. When the front page shows a logged-out visitor, the client
// re-imports the cookie from the recorded browser once and tries again; a
// second failure is returned as an *errors.AuthError.
//
// # Error Handling
//
// Every error is one of the types in pkg/errors:
//
//	_, err := client.Vote(ctx, "t3_abc123", 1)
//	var authErr *errors.AuthError
//	var platformErr *errors.PlatformError
//	switch {
//	case errors.As(err, &authErr):
//		// No session, or Reddit rejected it even after a refresh
//	case errors.As(err, &platformErr):
//		// Reddit refused the action (rate limited, locked thread, ...)
//	}
//
// PreconditionError is always returned before any request is made.
//
// # Operations
//
// Operations wraps a Client for callers that want the uniform
// {"success": ..., ...} result shape, such as the CLI and the MCP server.
package graw
