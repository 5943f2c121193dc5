// Package test_generators builds realistic Reddit JSON documents for tests.
package test_generators

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// ThreadGenerator produces comment pages and listings in the shape
// old.reddit.com serves them. Output is deterministic for a given seed.
type ThreadGenerator struct {
	rand  *rand.Rand
	users []string
	next  int
}

// NewThreadGenerator creates a generator. A zero seed is a fixed default so
// failures reproduce.
func NewThreadGenerator(seed int64) *ThreadGenerator {
	if seed == 0 {
		seed = 1
	}
	return &ThreadGenerator{
		rand: rand.New(rand.NewSource(seed)),
		users: []string{
			"thoughtful_commenter", "expert_analyst", "casual_observer", "debate_enthusiast",
			"helpful_explainer", "skeptic_user", "supportive_member", "critical_thinker",
		},
	}
}

// ThreadOptions shapes a generated comment tree.
type ThreadOptions struct {
	// Depth is the number of comment levels, 1 for top level only.
	Depth int
	// Breadth is the number of replies under every comment, and the number
	// of top-level comments.
	Breadth int
	// DeletedEvery marks every n-th comment as [deleted]. Zero disables it.
	DeletedEvery int
	// MoreStubs appends a "more" child to every sibling list.
	MoreStubs bool
	// Author, when set, writes the single deepest comment of the first
	// branch.
	Author string
}

// Thread is a generated comment page.
type Thread struct {
	PostID string
	// JSON is the [post listing, comment listing] document.
	JSON string

	opts  ThreadOptions
	nodes []*node
}

type node struct {
	id      string
	author  string
	replies []*node
}

// Thread generates a comment page for post postID (without the t3_ prefix).
func (g *ThreadGenerator) Thread(postID string, opts ThreadOptions) *Thread {
	t := &Thread{PostID: postID, opts: opts}
	t.nodes = g.level(1, opts, true)

	post := g.Link(postID, "golang", fmt.Sprintf("Generated thread %s", postID), true)
	comments := make([]string, 0, len(t.nodes)+1)
	for _, n := range t.nodes {
		comments = append(comments, g.render(n))
	}
	if opts.MoreStubs {
		comments = append(comments, moreStub())
	}
	t.JSON = "[" + Listing(post) + "," + Listing(comments...) + "]"
	return t
}

func (g *ThreadGenerator) level(depth int, opts ThreadOptions, firstBranch bool) []*node {
	if depth > opts.Depth {
		return nil
	}
	nodes := make([]*node, 0, opts.Breadth)
	for i := 0; i < opts.Breadth; i++ {
		g.next++
		n := &node{id: fmt.Sprintf("c%d", g.next), author: g.users[g.rand.Intn(len(g.users))]}
		if opts.DeletedEvery > 0 && g.next%opts.DeletedEvery == 0 {
			n.author = "[deleted]"
		}
		onPath := firstBranch && i == 0
		if opts.Author != "" && onPath && depth == opts.Depth {
			n.author = opts.Author
		}
		n.replies = g.level(depth+1, opts, onPath)
		nodes = append(nodes, n)
	}
	return nodes
}

func (g *ThreadGenerator) render(n *node) string {
	replies := `""`
	if len(n.replies) > 0 {
		children := make([]string, 0, len(n.replies)+1)
		for _, r := range n.replies {
			children = append(children, g.render(r))
		}
		if g.rand.Intn(4) == 0 {
			children = append(children, moreStub())
		}
		replies = Listing(children...)
	}
	data := map[string]any{
		"id":          n.id,
		"name":        "t1_" + n.id,
		"author":      n.author,
		"body":        g.sentence(),
		"score":       g.rand.Intn(500) - 20,
		"created_utc": 1700000000 + g.rand.Intn(86400),
		"permalink":   "/r/golang/comments/generated/_/" + n.id + "/",
	}
	raw, _ := json.Marshal(data)
	// replies is spliced in raw so the "" placeholder stays a string.
	return fmt.Sprintf(`{"kind": "t1", "data": %s,"replies": %s}}`, strings.TrimSuffix(string(raw), "}"), replies)
}

// Visible returns how many comments a reader limited to maxDepth levels and
// maxComments per sibling list should see. Deleted authors are skipped
// without using up the cap.
func (t *Thread) Visible(maxDepth, maxComments int) int {
	return countVisible(t.nodes, 1, maxDepth, maxComments)
}

func countVisible(nodes []*node, depth, maxDepth, maxComments int) int {
	total, kept := 0, 0
	for _, n := range nodes {
		if kept >= maxComments {
			break
		}
		if n.author == "[deleted]" {
			continue
		}
		kept++
		total++
		if depth < maxDepth {
			total += countVisible(n.replies, depth+1, maxDepth, maxComments)
		}
	}
	return total
}

// Link renders a t3 thing.
func (g *ThreadGenerator) Link(id, subreddit, title string, isSelf bool) string {
	data := map[string]any{
		"id":           id,
		"name":         "t3_" + id,
		"title":        title,
		"author":       g.users[g.rand.Intn(len(g.users))],
		"subreddit":    subreddit,
		"selftext":     "",
		"is_self":      isSelf,
		"stickied":     false,
		"score":        g.rand.Intn(5000),
		"num_comments": g.rand.Intn(300),
		"created_utc":  1700000000 + g.rand.Intn(86400),
		"permalink":    fmt.Sprintf("/r/%s/comments/%s/generated/", subreddit, id),
	}
	if isSelf {
		data["url"] = fmt.Sprintf("https://old.reddit.com/r/%s/comments/%s/generated/", subreddit, id)
		data["selftext"] = g.sentence()
	} else {
		data["url"] = "https://example.com/" + id
	}
	raw, _ := json.Marshal(map[string]any{"kind": "t3", "data": data})
	return string(raw)
}

// Listing generates n link posts in subreddit.
func (g *ThreadGenerator) Listing(subreddit string, n int) string {
	children := make([]string, 0, n)
	for i := 0; i < n; i++ {
		children = append(children, g.Link(fmt.Sprintf("p%d", i+1), subreddit, fmt.Sprintf("Post %d", i+1), i%2 == 0))
	}
	return Listing(children...)
}

// Listing wraps already rendered things in a Listing envelope.
func Listing(children ...string) string {
	return `{"kind": "Listing", "data": {"after": null, "before": null, "children": [` + strings.Join(children, ",") + `]}}`
}

func moreStub() string {
	return `{"kind": "more", "data": {"count": 12, "children": ["zz1", "zz2"]}}`
}

var words = []string{"goroutine", "channel", "interface", "generics", "module", "context", "slice", "pointer", "error", "struct"}

func (g *ThreadGenerator) sentence() string {
	n := 4 + g.rand.Intn(8)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[g.rand.Intn(len(words))]
	}
	return strings.Join(parts, " ") + "."
}
