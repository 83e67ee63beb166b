// Package gitinfo reads post modification times from git history.
package gitinfo

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Repo answers last-commit queries for files in one working tree.
type Repo struct {
	repo *git.Repository
	root string
	head plumbing.Hash
}

// Open finds the repository containing dir. ok is false when dir is not
// inside a repository or the repository has no commits yet.
func Open(dir string) (r *Repo, ok bool, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve directory").WithContext("path", dir).Build()
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryGit, "failed to open git repository").WithContext("path", abs).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryGit, "repository has no worktree").WithContext("path", abs).Build()
	}
	ref, err := repo.Head()
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryGit, "failed to resolve HEAD").WithContext("path", abs).Build()
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root(), head: ref.Hash()}, true, nil
}

// LastModified returns the committer time of the newest commit reachable
// from HEAD that touches file. ok is false for untracked files.
func (r *Repo) LastModified(file string) (t time.Time, ok bool, err error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return time.Time{}, false, err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return time.Time{}, false, err
	}
	rel = filepath.ToSlash(rel)

	iter, err := r.repo.Log(&git.LogOptions{From: r.head, FileName: &rel})
	if err != nil {
		return time.Time{}, false, errors.WrapError(err, errors.CategoryGit, "failed to read history").WithContext("path", rel).Build()
	}
	defer iter.Close()

	c, err := iter.Next()
	if stderrors.Is(err, io.EOF) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.WrapError(err, errors.CategoryGit, "failed to read history").WithContext("path", rel).Build()
	}
	return c.Committer.When, true, nil
}

// Apply sets Lastmod from git history on every post in postsDir that has
// no lastmod of its own. It returns how many posts were updated. Posts
// outside a repository are left alone.
func Apply(ctx context.Context, postsDir string, posts []*blog.Post) (int, error) {
	r, ok, err := Open(postsDir)
	if err != nil || !ok {
		return 0, err
	}
	n := 0
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !p.Lastmod.IsZero() {
			continue
		}
		t, ok, err := r.LastModified(filepath.Join(postsDir, filepath.FromSlash(p.SourcePath)))
		if err != nil {
			slog.Warn("Failed to read git history", logfields.Path(p.SourcePath), logfields.Error(err))
			continue
		}
		if ok {
			p.Lastmod = t.UTC()
			n++
		}
	}
	return n, nil
}
