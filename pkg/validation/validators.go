// Package validation holds format checks for Reddit identifiers and listing
// parameters. The functions only report whether a value is well formed; the
// client turns a false result into a PreconditionError.
package validation

import (
	"regexp"
	"slices"
	"strings"
)

// Regular expressions for validating Reddit data formats
var (
	// subredditRegex matches a subreddit name, or several joined with '+'
	subredditRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{2,21}(\+[a-zA-Z0-9_]{2,21})*$`)

	// usernameRegex matches valid Reddit usernames (3-20 chars, alphanumeric + underscore + hyphen)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

	// fullnameRegex matches Reddit fullname IDs (type prefix + base36 ID)
	// Format: t[1-6]_[base36_id]
	fullnameRegex = regexp.MustCompile(`^t[1-6]_[0-9a-z]+$`)
)

// Accepted values for the sort and time parameters.
var (
	ListingSorts = []string{"hot", "new", "top", "rising", "controversial", "best"}
	SearchSorts  = []string{"relevance", "hot", "top", "new", "comments"}
	TimeFilters  = []string{"all", "hour", "day", "week", "month", "year"}
	VoteDirs     = []int{-1, 0, 1}
)

// IsValidSubreddit checks if a string is a valid subreddit name
func IsValidSubreddit(s string) bool {
	return subredditRegex.MatchString(s)
}

// IsValidUsername checks if a string is a valid Reddit username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidFullname checks if a string is a valid Reddit fullname ID
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// IsValidListingSort reports whether sort names a subreddit listing endpoint.
func IsValidListingSort(sort string) bool {
	return slices.Contains(ListingSorts, strings.ToLower(sort))
}

// IsValidSearchSort reports whether sort is accepted by the search endpoint.
func IsValidSearchSort(sort string) bool {
	return slices.Contains(SearchSorts, strings.ToLower(sort))
}

// IsValidTimeFilter reports whether t is accepted as a search time filter.
func IsValidTimeFilter(t string) bool {
	return slices.Contains(TimeFilters, strings.ToLower(t))
}

// IsValidVoteDirection reports whether dir is one of -1, 0 or 1.
func IsValidVoteDirection(dir int) bool {
	return slices.Contains(VoteDirs, dir)
}
