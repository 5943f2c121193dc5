package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesprial/go-reddit-session/pkg/types"
)

const (
	ruleWidth      = 79
	titleWidth     = 70
	previewWidth   = 200
	permalinkHost  = "https://reddit.com"
	scoreColumnPad = 5
)

// renderer prints human-readable output. Styles come from a lipgloss
// renderer bound to the destination, so pipes and buffers get plain text.
type renderer struct {
	w io.Writer

	header lipgloss.Style
	author lipgloss.Style
	dim    lipgloss.Style
	badge  lipgloss.Style
}

func newRenderer(w io.Writer) *renderer {
	r := lipgloss.NewRenderer(w)
	return &renderer{
		w:      w,
		header: r.NewStyle().Bold(true),
		author: r.NewStyle().Foreground(lipgloss.Color("208")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("245")),
		badge:  r.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	}
}

func (r *renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *renderer) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	r.line(rule)
	r.line(r.header.Render(title))
	r.line(rule)
}

// post prints a post followed by its comment tree.
func (r *renderer) post(res *types.PostResult, depth int) {
	p := res.Post
	r.banner(fmt.Sprintf("r/%s | u/%s | %d points | %s", p.Subreddit, p.Author, p.Score, p.ID))
	r.line("")
	r.line(r.header.Render(p.Title))
	r.line("")

	if p.URL != nil && *p.URL != "" {
		r.line("Link: " + *p.URL)
		r.line("")
	}
	if p.SelfText != "" {
		r.line(p.SelfText)
		r.line("")
	}

	rule := strings.Repeat("-", ruleWidth)
	r.line(rule)
	r.line(fmt.Sprintf("COMMENTS (depth: %d)", depth))
	r.line(rule)
	r.comments(res.Comments, 0)
}

func (r *renderer) comments(comments []*types.Comment, indent int) {
	prefix := strings.Repeat("  ", indent)
	marker := "▸"
	if indent > 0 {
		marker = "↳"
	}
	for _, c := range comments {
		r.line("")
		r.line(fmt.Sprintf("%s%s %s %s",
			prefix, marker,
			r.author.Render("u/"+c.Author),
			r.dim.Render(fmt.Sprintf("(%d pts) [%s]", c.Score, c.ID))))
		for _, body := range strings.Split(c.Body, "\n") {
			r.line(prefix + body)
		}
		r.comments(c.Replies, indent+1)
	}
}

// listing prints one line per post with its score and permalink.
func (r *renderer) listing(title string, posts []*types.ListingEntry) {
	r.banner("r/" + title)
	r.line("")

	for _, p := range posts {
		icon := "🔗 "
		switch {
		case p.Stickied:
			icon = "📌 "
		case p.IsSelf:
			icon = "💬 "
		}
		score := fmt.Sprintf("%*s", scoreColumnPad, strconv.Itoa(p.Score))
		r.line(fmt.Sprintf("%s │ %s%s", score, icon, truncate(p.Title, titleWidth)))
		r.line("       " + r.dim.Render(permalinkHost+p.Permalink))
	}
}

// inbox prints each message with a short body preview.
func (r *renderer) inbox(messages []*types.Message) {
	if len(messages) == 0 {
		r.line("No messages.")
		return
	}
	for _, m := range messages {
		status := ""
		if m.New {
			status = r.badge.Render("[NEW]") + " "
		}
		r.line("")
		r.line(fmt.Sprintf("%sFrom %s:", status, r.author.Render("u/"+m.Author)))
		if m.Subject != "" {
			r.line("  Subject: " + m.Subject)
		}
		r.line("  " + truncate(m.Body, previewWidth))
		if m.Context != "" {
			r.line("  Context: " + permalinkHost + m.Context)
		}
	}
}

// truncate cuts s to n runes and marks the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func printAuth(w io.Writer, res *types.AuthResult) {
	fmt.Fprintf(w, "✓ Imported session from %s\n", res.Browser)
	fmt.Fprintf(w, "  Username: %s\n", res.Username)
	fmt.Fprintf(w, "  Saved to: %s\n", res.SessionFile)
}

func printAuthHelp(w io.Writer, reason, sessionFile string) {
	fmt.Fprintf(w, "✗ %s\n", reason)
	fmt.Fprintln(w, "\nManual setup instructions:")
	fmt.Fprintln(w, "1. Log into Reddit in your browser")
	fmt.Fprintln(w, "2. Open DevTools (F12) → Application → Cookies → reddit.com")
	fmt.Fprintln(w, "3. Copy the 'reddit_session' cookie value")
	fmt.Fprintf(w, "4. Create %s with:\n", sessionFile)
	fmt.Fprintln(w, `   {"cookies": {"reddit_session": "YOUR_COOKIE"}, "username": "YOUR_USERNAME"}`)
}
