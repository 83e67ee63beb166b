// Package tagslug maps tag display text to the root-relative path of the
// tag's listing page.
//
// The mapping lowercases the text and turns every ASCII space into a hyphen.
// Nothing else changes: punctuation, tabs, newlines and non-ASCII text pass
// through as-is (lowercased). Runs of spaces are not collapsed and edge
// spaces are not trimmed, so "  Go" maps to "/blog/tag/--go".
//
// All functions are pure and safe for concurrent use.
package tagslug

import (
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Prefix is the listing path every tag identifier starts with.
const Prefix = "/blog/tag/"

// Slug returns the path segment for tag.
//
// Lowercasing is Unicode simple lowercasing with no locale tailoring; a
// Turkish dotted capital I becomes "i̇", not "i".
func Slug(tag string) string {
	return strings.ReplaceAll(strings.ToLower(tag), " ", "-")
}

// Identifier returns the listing path for tag, e.g. "Web Development"
// becomes "/blog/tag/web-development". The empty tag yields Prefix.
func Identifier(tag string) string {
	return Prefix + Slug(tag)
}

// IdentifierOf is Identifier for an optional tag. A nil tag is rejected
// instead of being treated as the empty tag.
func IdentifierOf(tag *string) (string, error) {
	if tag == nil {
		return "", errors.ValidationError("tag is required").Build()
	}
	return Identifier(*tag), nil
}

// SlugFromIdentifier strips Prefix from a listing path. ok is false when
// path is not a tag listing path.
func SlugFromIdentifier(path string) (slug string, ok bool) {
	return strings.CutPrefix(path, Prefix)
}
