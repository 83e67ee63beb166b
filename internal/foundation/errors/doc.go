// Package errors provides the classified error primitives used across blogbuilder.
//
// A ClassifiedError carries a category, a severity and a retry strategy next to
// the usual message and cause, plus a small key/value context. Errors are built
// with the fluent ErrorBuilder and presented by the CLI and HTTP adapters.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "invalid frontmatter").
//		WithContext("path", post.SourcePath).
//		Build()
package errors
