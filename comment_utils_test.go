package graw

import (
	"testing"

	"github.com/jamesprial/go-reddit-session/pkg/types"
)

func TestNewCommentTree(t *testing.T) {
	t.Parallel()

	comments := []*types.Comment{
		{ID: "t1_a", Author: "alice", Depth: 1, Replies: []*types.Comment{
			{ID: "t1_a1", Author: "bob", Depth: 2, Replies: []*types.Comment{
				{ID: "t1_a1a", Author: "alice", Depth: 3},
			}},
		}},
		{ID: "t1_b", Author: "carol", Depth: 1},
	}

	tree := NewCommentTree(comments)

	if got := tree.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	if got := tree.GetDepth(); got != 3 {
		t.Errorf("GetDepth() = %d, want 3", got)
	}
	if got := len(tree.GetByAuthor("alice")); got != 2 {
		t.Errorf("GetByAuthor(alice) returned %d comments, want 2", got)
	}
	if c := tree.GetByID("t1_a1a"); c == nil || c.Depth != 3 {
		t.Errorf("GetByID(t1_a1a) = %+v", c)
	}
	if len(tree.GetTopLevel()) != 2 {
		t.Errorf("GetTopLevel() returned %d comments, want 2", len(tree.GetTopLevel()))
	}

	var order []string
	tree.Walk(func(c *types.Comment) { order = append(order, c.ID) })
	want := []string{"t1_a", "t1_a1", "t1_a1a", "t1_b"}
	if len(order) != len(want) {
		t.Fatalf("Walk visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Walk visited %v, want %v", order, want)
			break
		}
	}
}
