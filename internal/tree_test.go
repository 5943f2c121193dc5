package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/jamesprial/go-reddit-session/pkg/types"
)

func commentJSON(name, author string, replies ...string) string {
	rep := `""`
	if len(replies) > 0 {
		rep = listingJSON(replies...)
	}
	return fmt.Sprintf(`{"kind":"t1","data":{"name":%q,"author":%q,"body":"body of %s","score":1,"created_utc":1700000000,"replies":%s}}`,
		name, author, name, rep)
}

func listingJSON(children ...string) string {
	return `{"kind":"Listing","data":{"children":[` + strings.Join(children, ",") + `]}}`
}

func mustListing(t *testing.T, raw string) *types.ListingData {
	t.Helper()
	listing, err := NewParser().DecodeListing(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("DecodeListing returned error: %v", err)
	}
	return listing
}

func ids(comments []*types.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}

// deepThread is four levels deep with a deleted author and a more stub mixed in.
func deepThread() string {
	return listingJSON(
		commentJSON("t1_a", "alice",
			commentJSON("t1_a1", "bob",
				commentJSON("t1_a1a", "carol",
					commentJSON("t1_a1a1", "dave"),
				),
			),
			commentJSON("t1_a2", "[deleted]"),
		),
		`{"kind":"more","data":{"count":3,"children":["x","y"]}}`,
		commentJSON("t1_b", ""),
		commentJSON("t1_c", "erin"),
	)
}

func TestTreeExtractor_SkipsDeletedAndForeignKinds(t *testing.T) {
	listing := mustListing(t, deepThread())
	comments := NewTreeExtractor(nil, 10, 25).Extract(listing)

	if got := strings.Join(ids(comments), ","); got != "t1_a,t1_c" {
		t.Fatalf("unexpected top level %q", got)
	}

	NewCommentTree(comments).Walk(func(c *types.Comment) {
		if c.Author == "" || c.Author == types.DeletedAuthor {
			t.Errorf("comment %s has author %q", c.ID, c.Author)
		}
	})
}

func TestTreeExtractor_CountsCollapsedStubs(t *testing.T) {
	e := NewTreeExtractor(nil, 10, 25)
	e.Extract(mustListing(t, deepThread()))
	if e.Collapsed != 1 {
		t.Errorf("Collapsed = %d, want 1", e.Collapsed)
	}

	// A stub past the sibling cap is never reached.
	e = NewTreeExtractor(nil, 10, 1)
	e.Extract(mustListing(t, deepThread()))
	if e.Collapsed != 0 {
		t.Errorf("Collapsed = %d after the cap, want 0", e.Collapsed)
	}

	e.Extract(nil)
	if e.Collapsed != 0 {
		t.Error("Extract should reset the count")
	}
}

func TestTreeExtractor_DepthBound(t *testing.T) {
	listing := mustListing(t, deepThread())

	for depth := 0; depth <= 5; depth++ {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			comments := NewTreeExtractor(nil, depth, 25).Extract(listing)
			tree := NewCommentTree(comments)

			tree.Walk(func(c *types.Comment) {
				if c.Depth >= depth && len(c.Replies) > 0 {
					t.Errorf("comment %s at depth %d has replies with requested depth %d", c.ID, c.Depth, depth)
				}
				if c.Replies == nil {
					t.Errorf("comment %s has nil replies", c.ID)
				}
			})

			want := min(max(depth, 1), 4)
			if got := tree.GetDepth(); got != want {
				t.Errorf("expected tree depth %d, got %d", want, got)
			}
		})
	}
}

func TestTreeExtractor_MaxCommentsPerSiblingList(t *testing.T) {
	replies := make([]string, 0, 5)
	for i := range 5 {
		replies = append(replies, commentJSON(fmt.Sprintf("t1_r%d", i), "replier"))
	}
	top := make([]string, 0, 5)
	top = append(top, commentJSON("t1_gone", "[deleted]"))
	for i := range 4 {
		top = append(top, commentJSON(fmt.Sprintf("t1_t%d", i), "poster", replies...))
	}
	listing := mustListing(t, listingJSON(top...))

	tests := []struct {
		name     string
		max      int
		wantTop  string
		wantEach int
	}{
		{"zero", 0, "", 0},
		{"one", 1, "t1_t0", 1},
		{"three", 3, "t1_t0,t1_t1,t1_t2", 3},
		{"larger than input", 50, "t1_t0,t1_t1,t1_t2,t1_t3", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := NewTreeExtractor(nil, 2, tt.max).Extract(listing)
			if got := strings.Join(ids(comments), ","); got != tt.wantTop {
				t.Errorf("expected top level %q, got %q", tt.wantTop, got)
			}
			for _, c := range comments {
				if len(c.Replies) != tt.wantEach {
					t.Errorf("expected %d replies under %s, got %d", tt.wantEach, c.ID, len(c.Replies))
				}
			}
		})
	}
}

func TestTreeExtractor_PreservesOrder(t *testing.T) {
	listing := mustListing(t, listingJSON(
		commentJSON("t1_3", "x"),
		commentJSON("t1_1", "y"),
		commentJSON("t1_2", "z"),
	))

	comments := NewTreeExtractor(nil, 1, 25).Extract(listing)
	if got := strings.Join(ids(comments), ","); got != "t1_3,t1_1,t1_2" {
		t.Errorf("expected source order, got %q", got)
	}
}

func TestTreeExtractor_NilListing(t *testing.T) {
	comments := NewTreeExtractor(nil, 1, 25).Extract(nil)
	if comments == nil || len(comments) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", comments)
	}
}

func TestCommentTree_Utilities(t *testing.T) {
	listing := mustListing(t, deepThread())
	tree := NewCommentTree(NewTreeExtractor(nil, 10, 25).Extract(listing))

	if got := strings.Join(ids(tree.Flatten()), ","); got != "t1_a,t1_a1,t1_a1a,t1_a1a1,t1_c" {
		t.Errorf("unexpected flatten order %q", got)
	}
	if tree.Count() != 5 {
		t.Errorf("expected 5 comments, got %d", tree.Count())
	}
	if c := tree.GetByID("t1_a1a"); c == nil || c.Author != "carol" {
		t.Errorf("GetByID returned %+v", c)
	}
	if tree.GetByID("t1_missing") != nil {
		t.Error("expected nil for unknown ID")
	}
	if got := tree.GetByAuthor("dave"); len(got) != 1 || got[0].Depth != 4 {
		t.Errorf("GetByAuthor returned %+v", got)
	}
	if len(tree.GetTopLevel()) != 2 {
		t.Errorf("expected 2 top-level comments, got %d", len(tree.GetTopLevel()))
	}
	if NewCommentTree(nil).GetDepth() != 0 {
		t.Error("expected empty tree depth 0")
	}
}
