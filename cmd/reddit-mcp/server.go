package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	graw "github.com/jamesprial/go-reddit-session"
)

const (
	serverName    = "reddit-mcp"
	serverVersion = "1.0.0"
)

// newServer registers the Reddit tools on a fresh MCP server.
func newServer(ops *graw.Operations, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	addTool[graw.ReadArgs](server, ops, logger, graw.ToolRead,
		"Read a Reddit post with comments. Returns post content, metadata, and threaded comments.")
	addTool[graw.ListingArgs](server, ops, logger, graw.ToolListing,
		"List posts from a subreddit. Returns titles, scores, and permalinks.")
	addTool[graw.SearchArgs](server, ops, logger, graw.ToolSearch,
		"Search for posts within a subreddit.")
	addTool[graw.InboxArgs](server, ops, logger, graw.ToolInbox,
		"Check Reddit inbox for replies, mentions, and messages. Requires authentication.")
	addTool[graw.CommentArgs](server, ops, logger, graw.ToolComment,
		"Post a comment reply. Requires authentication.")
	addTool[graw.SubmitArgs](server, ops, logger, graw.ToolSubmit,
		"Submit a new post to a subreddit. Requires authentication.")
	addTool[graw.VoteArgs](server, ops, logger, graw.ToolVote,
		"Vote on a post or comment. Requires authentication.")
	addTool[graw.DeleteArgs](server, ops, logger, graw.ToolDelete,
		"Delete your own post or comment. Requires authentication.")

	return server
}

// addTool exposes one operation. The input schema is derived from In; the
// call itself goes through Operations.Call so every tool shares its argument
// handling and panic recovery. Failures are reported in the result, never as
// protocol errors.
func addTool[In any](server *mcp.Server, ops *graw.Operations, logger *slog.Logger, name, description string) {
	tool := &mcp.Tool{Name: name, Description: description}

	mcp.AddTool(server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		callID := uuid.NewString()
		start := time.Now()

		args, err := json.Marshal(in)
		if err != nil {
			return nil, nil, err
		}

		res := <-ops.Async(ctx, func(ctx context.Context) *graw.OperationResult {
			return ops.Call(ctx, name, args)
		})

		level := slog.LevelInfo
		if !res.Success {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "tool call",
			"tool", name,
			"call_id", callID,
			"success", res.Success,
			"error", res.Error,
			"duration", time.Since(start))

		text, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
			IsError: !res.Success,
		}, nil, nil
	})
}
