package internal

import (
	"strings"

	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/tidwall/gjson"
)

// maxVisitedNodes bounds the duplicate-reply search on pathological threads.
const maxVisitedNodes = 10000

// ContainsAuthor reports whether a comments page contains a comment written
// by author, compared case-insensitively. doc is the raw body of a
// <permalink>.json request; when it is the usual [post, comments] pair only
// the comments half is searched. Malformed input yields false.
func ContainsAuthor(doc []byte, author string) bool {
	if author == "" || !gjson.ValidBytes(doc) {
		return false
	}

	root := gjson.ParseBytes(doc)
	if root.IsArray() {
		if items := root.Array(); len(items) > 1 {
			root = items[1]
		}
	}

	s := &authorSearch{author: author}
	return s.visit(root)
}

// authorSearch walks the loosely shaped reply nesting: listings, comment
// things, bare reply holders with data or children, and plain arrays.
type authorSearch struct {
	author  string
	visited int
}

func (s *authorSearch) visit(node gjson.Result) bool {
	if s.visited >= maxVisitedNodes {
		return false
	}
	s.visited++

	if node.IsArray() {
		found := false
		node.ForEach(func(_, item gjson.Result) bool {
			found = s.visit(item)
			return !found
		})
		return found
	}
	if !node.IsObject() {
		return false
	}

	switch node.Get("kind").String() {
	case types.KindComment:
		data := node.Get("data")
		if strings.EqualFold(data.Get("author").String(), s.author) {
			return true
		}
		if replies := data.Get("replies"); replies.IsObject() {
			return s.visit(replies)
		}
		return false
	case types.KindListing:
		return s.visit(node.Get("data.children"))
	}

	if data := node.Get("data"); data.Exists() {
		return s.visit(data)
	}
	if children := node.Get("children"); children.Exists() {
		return s.visit(children)
	}
	return false
}
