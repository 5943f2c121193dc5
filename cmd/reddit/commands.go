package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	graw "github.com/jamesprial/go-reddit-session"
	"github.com/jamesprial/go-reddit-session/internal/config"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// reportedError marks a failure whose details were already printed.
type reportedError struct{}

func (*reportedError) Error() string { return "command failed" }

// app carries the state shared by every subcommand.
type app struct {
	cfgFile string
	format  string
	jsonOut bool

	out    io.Writer
	errOut io.Writer

	client *graw.Client
	ops    *graw.Operations
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "reddit",
		Short: "Read and write Reddit without API keys",
		Long: "reddit uses the session cookie of a browser you are logged into.\n" +
			"Run 'reddit auth' once to import it; reads work without it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (default ~/.config/reddit-mcp/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", formatText, "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "shorthand for --format json")

	rootCmd.AddCommand(
		a.newAuthCmd(),
		a.newReadCmd(),
		a.newListingCmd(),
		a.newSearchCmd(),
		a.newInboxCmd(),
		a.newCommentCmd(),
		a.newSubmitCmd(),
		a.newVoteCmd(),
		a.newDeleteCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	if a.jsonOut {
		a.format = formatJSON
	}
	switch a.format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q: options are text, json, yaml", a.format)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	client, err := graw.NewClient(cfg.ClientConfig(cfg.Logger(a.errOut)))
	if err != nil {
		return err
	}
	a.client = client
	a.ops = graw.NewOperations(client)
	return nil
}

func (a *app) newAuthCmd() *cobra.Command {
	var browser string
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Import the Reddit session from a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.ops.Auth(cmd.Context(), graw.AuthArgs{Browser: browser})
			if a.format != formatText {
				return a.emit(res)
			}
			if !res.Success {
				printAuthHelp(a.errOut, res.Error, a.client.SessionPath())
				return &reportedError{}
			}
			printAuth(a.out, res.Data.(*types.AuthResult))
			return nil
		},
	}
	cmd.Flags().StringVarP(&browser, "browser", "b", "", "browser to import from (default: try all)")
	return cmd
}

func (a *app) newReadCmd() *cobra.Command {
	var depth, maxComments int
	cmd := &cobra.Command{
		Use:   "read <url-or-id>",
		Short: "Read a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.ops.ReadPost(cmd.Context(), graw.ReadArgs{URL: args[0], Depth: &depth, MaxComments: &maxComments})
			return a.show(res, func(w io.Writer) {
				newRenderer(w).post(res.Data.(*types.PostResult), depth)
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", graw.DefaultDepth, "comment reply depth")
	cmd.Flags().IntVar(&maxComments, "max-comments", graw.DefaultMaxComments, "max comments per level")
	return cmd
}

func (a *app) newListingCmd() *cobra.Command {
	var limit, skip int
	var sort string
	cmd := &cobra.Command{
		Use:   "listing <subreddit>",
		Short: "List the posts of a subreddit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.ops.ReadListing(cmd.Context(), graw.ListingArgs{Subreddit: args[0], Limit: &limit, Skip: &skip, Sort: sort})
			return a.show(res, func(w io.Writer) {
				listing := res.Data.(*types.ListingResult)
				newRenderer(w).listing(listing.Subreddit, listing.Posts)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", graw.DefaultListingLimit, "number of posts")
	cmd.Flags().IntVar(&skip, "skip", 0, "posts to skip")
	cmd.Flags().StringVar(&sort, "sort", graw.DefaultListingSort, "hot, new, top or rising")
	return cmd
}

func (a *app) newSearchCmd() *cobra.Command {
	var limit int
	var sort, timeFilter string
	cmd := &cobra.Command{
		Use:   "search <subreddit> <query>",
		Short: "Search the posts of a subreddit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.ops.Search(cmd.Context(), graw.SearchArgs{
				Subreddit:  args[0],
				Query:      args[1],
				Limit:      &limit,
				Sort:       sort,
				TimeFilter: timeFilter,
			})
			return a.show(res, func(w io.Writer) {
				found := res.Data.(*types.SearchResult)
				newRenderer(w).listing(fmt.Sprintf("%s (search: %s)", found.Subreddit, found.Query), found.Posts)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", graw.DefaultListingLimit, "max results")
	cmd.Flags().StringVar(&sort, "sort", graw.DefaultSearchSort, "relevance, hot, top, new or comments")
	cmd.Flags().StringVar(&timeFilter, "time", graw.DefaultTimeFilter, "all, hour, day, week, month or year")
	return cmd
}

func (a *app) newInboxCmd() *cobra.Command {
	var limit int
	var unread bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show replies, mentions and messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.ops.Inbox(cmd.Context(), graw.InboxArgs{Limit: &limit, UnreadOnly: unread})
			return a.show(res, func(w io.Writer) {
				newRenderer(w).inbox(res.Data.(*types.InboxResult).Messages)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", graw.DefaultInboxLimit, "max messages")
	cmd.Flags().BoolVar(&unread, "unread", false, "unread messages only")
	return cmd
}

func (a *app) newCommentCmd() *cobra.Command {
	var noCheck bool
	cmd := &cobra.Command{
		Use:   "comment <thing-id> <text>",
		Short: "Reply to a post or comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			check := !noCheck
			return a.emit(a.ops.Comment(cmd.Context(), graw.CommentArgs{ThingID: args[0], Text: args[1], CheckExisting: &check}))
		},
	}
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "skip the duplicate reply check")
	return cmd
}

func (a *app) newSubmitCmd() *cobra.Command {
	var args graw.SubmitArgs
	cmd := &cobra.Command{
		Use:   "submit <subreddit> <title>",
		Short: "Submit a self or link post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, pos []string) error {
			args.Subreddit, args.Title = pos[0], pos[1]
			return a.emit(a.ops.Submit(cmd.Context(), args))
		},
	}
	cmd.Flags().StringVar(&args.Text, "text", "", "self post text")
	cmd.Flags().StringVar(&args.URL, "url", "", "link URL")
	cmd.Flags().StringVar(&args.FlairID, "flair", "", "flair ID")
	return cmd
}

func (a *app) newVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vote <thing-id> <direction>",
		Short:   "Vote on a post or comment (1, 0 or -1)",
		Example: "  reddit vote t3_abc123 -1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("direction must be -1, 0, or 1, got %q", args[1])
			}
			return a.emit(a.ops.Vote(cmd.Context(), graw.VoteArgs{ThingID: args[0], Direction: dir}))
		},
	}
	// "-1" after the thing ID is an argument, not a shorthand flag.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <thing-id>",
		Short: "Delete one of your posts or comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.emit(a.ops.Delete(cmd.Context(), graw.DeleteArgs{ThingID: args[0]}))
		},
	}
}

// show renders a read result: text through render, or the structured
// encoding. A failed text-mode read prints only the error.
func (a *app) show(res *graw.OperationResult, render func(io.Writer)) error {
	if a.format != formatText {
		return a.emit(res)
	}
	if !res.Success {
		fmt.Fprintln(a.errOut, "Error: "+res.Error)
		return &reportedError{}
	}
	render(a.out)
	return nil
}

// emit writes res in the structured format (JSON in text mode) and fails
// the command when res is a failure.
func (a *app) emit(res *graw.OperationResult) error {
	data, err := encode(res, a.format)
	if err != nil {
		return err
	}
	a.out.Write(data)
	if !res.Success {
		return &reportedError{}
	}
	return nil
}

// encode marshals res as indented JSON, or as YAML with the same key order.
func encode(res *graw.OperationResult, format string) ([]byte, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != formatYAML {
		return append(data, '\n'), nil
	}

	// JSON is YAML; decoding into a node keeps the field order.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles the JSON input carried so the
// encoder picks block style and quotes only where needed.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
