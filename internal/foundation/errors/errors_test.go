package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "blogbuilder.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())
		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "blogbuilder.yaml", file)
		assert.Equal(t, "[config:fatal] invalid configuration", err.Error())
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		err := ConfigError("bad").Build()
		assert.True(t, err.IsFatal())
		assert.False(t, err.CanRetry())

		ev := EventsError("publish failed").Build()
		assert.True(t, ev.CanRetry())
		assert.Equal(t, SeverityWarning, ev.Severity())
	})
}

func TestWrapError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := WrapError(cause, CategoryFileSystem, "write page").Build()

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[filesystem:error] write page: disk full", err.Error())
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := ContentError("missing title").WithContext("path", "posts/a.md").Build()
	outer := fmt.Errorf("load posts: %w", inner)

	got, ok := AsClassified(outer)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCategory(outer, CategoryContent))
	assert.Equal(t, CategoryContent, GetCategory(outer))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	assert.False(t, IsClassified(stderrors.New("plain")))
}

func TestClassifiedError_WithContextCopies(t *testing.T) {
	base := RenderError("template failed").Build()
	derived := base.WithContext("template", "post.html")

	_, ok := base.Context().Get("template")
	assert.False(t, ok)
	tpl, ok := derived.Context().GetString("template")
	require.True(t, ok)
	assert.Equal(t, "post.html", tpl)
}

func TestClassifiedError_Is(t *testing.T) {
	a := ValidationError("tag is required").Build()
	b := ValidationError("tag is required").WithContext("x", 1).Build()
	c := ValidationError("other").Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestErrorContext_Merge(t *testing.T) {
	var nilCtx ErrorContext
	other := ErrorContext{"a": 1}
	assert.Equal(t, other, nilCtx.Merge(other))

	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
}
