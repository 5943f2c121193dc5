package internal

import (
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// TreeExtractor builds the comment tree of a post from its raw reply
// listing, bounded by depth and by the size of each sibling list.
type TreeExtractor struct {
	parser *Parser
	// MaxDepth is the deepest level whose replies are still expanded. Top
	// level comments are depth 1, so MaxDepth 1 means no replies at all.
	MaxDepth int
	// MaxComments caps every sibling list independently.
	MaxComments int
	// Collapsed counts the "more" stubs met by the last Extract. Their
	// comments are not fetched.
	Collapsed int
}

// NewTreeExtractor returns an extractor with the given limits.
func NewTreeExtractor(parser *Parser, maxDepth, maxComments int) *TreeExtractor {
	if parser == nil {
		parser = NewParser()
	}
	return &TreeExtractor{parser: parser, MaxDepth: maxDepth, MaxComments: maxComments}
}

// Extract returns the top-level comments of listing with their replies
// expanded. The result is never nil.
func (e *TreeExtractor) Extract(listing *types.ListingData) []*types.Comment {
	e.Collapsed = 0
	if listing == nil {
		return []*types.Comment{}
	}
	return e.extract(listing.Children, 1)
}

func (e *TreeExtractor) extract(children []*types.Thing, depth int) []*types.Comment {
	comments := make([]*types.Comment, 0)
	for _, child := range children {
		if len(comments) >= e.MaxComments {
			break
		}
		if child == nil {
			continue
		}
		if child.Kind == types.KindMore {
			e.Collapsed++
			continue
		}
		if child.Kind != types.KindComment {
			continue
		}
		data, err := e.parser.ParseComment(child)
		if err != nil {
			continue
		}
		if data.Author == "" || data.Author == types.DeletedAuthor {
			continue
		}

		comment := &types.Comment{
			ID:         data.Name,
			Author:     data.Author,
			Body:       data.Body,
			Score:      data.Score,
			CreatedUTC: data.CreatedUTC,
			Depth:      depth,
			Replies:    []*types.Comment{},
		}
		if depth < e.MaxDepth {
			if replies, ok := e.parser.ParseReplies(data.Replies); ok {
				comment.Replies = e.extract(replies.Children, depth+1)
			}
		}
		comments = append(comments, comment)
	}
	return comments
}

// CommentTree provides utility methods for working with comment trees.
type CommentTree struct {
	Comments []*types.Comment
}

// NewCommentTree creates a new CommentTree from a slice of comments.
func NewCommentTree(comments []*types.Comment) *CommentTree {
	return &CommentTree{Comments: comments}
}

// Flatten returns all comments in the tree as a flat slice, parents before
// their replies.
func (ct *CommentTree) Flatten() []*types.Comment {
	var result []*types.Comment
	ct.Walk(func(c *types.Comment) {
		result = append(result, c)
	})
	return result
}

// Filter returns comments that match the given filter function.
func (ct *CommentTree) Filter(filterFunc func(*types.Comment) bool) []*types.Comment {
	var result []*types.Comment
	ct.Walk(func(c *types.Comment) {
		if filterFunc(c) {
			result = append(result, c)
		}
	})
	return result
}

// Find returns the first comment that matches the given condition.
func (ct *CommentTree) Find(condition func(*types.Comment) bool) *types.Comment {
	return findRecursive(ct.Comments, condition)
}

func findRecursive(comments []*types.Comment, condition func(*types.Comment) bool) *types.Comment {
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		if condition(comment) {
			return comment
		}
		if found := findRecursive(comment.Replies, condition); found != nil {
			return found
		}
	}
	return nil
}

// GetByID returns a comment by its fullname.
func (ct *CommentTree) GetByID(id string) *types.Comment {
	return ct.Find(func(c *types.Comment) bool {
		return c.ID == id
	})
}

// GetByAuthor returns all comments by a specific author.
func (ct *CommentTree) GetByAuthor(author string) []*types.Comment {
	return ct.Filter(func(c *types.Comment) bool {
		return c.Author == author
	})
}

// GetTopLevel returns only the top-level comments.
func (ct *CommentTree) GetTopLevel() []*types.Comment {
	return ct.Comments
}

// GetDepth returns the depth of the deepest comment, 0 for an empty tree.
func (ct *CommentTree) GetDepth() int {
	maxDepth := 0
	ct.Walk(func(c *types.Comment) {
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
	})
	return maxDepth
}

// Count returns the total number of comments in the tree.
func (ct *CommentTree) Count() int {
	n := 0
	ct.Walk(func(*types.Comment) { n++ })
	return n
}

// Walk applies fn to each comment in display order: a comment, then its
// replies, then its next sibling.
func (ct *CommentTree) Walk(fn func(*types.Comment)) {
	walkRecursive(ct.Comments, fn)
}

func walkRecursive(comments []*types.Comment, fn func(*types.Comment)) {
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		fn(comment)
		walkRecursive(comment.Replies, fn)
	}
}
