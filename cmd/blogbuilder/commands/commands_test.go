package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// run parses and executes args, returning what the command wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	parser, err := NewParser(&CLI{}, kong.Writers(&out, &errOut), kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	if err != nil {
		return out.String(), err
	}
	err = kctx.Run()
	return out.String(), err
}

func writeSite(t *testing.T) (cfgPath, outDir string) {
	t.Helper()
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	outDir = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(posts, 0o750))

	files := map[string]string{
		"2024-01-15-hello-world.md": "---\ntitle: Hello World\ntags: [Go, Web Development]\n---\n\nFirst post.\n",
		"second.md":                 "---\ntitle: Second\ndate: 2024-02-01T10:00:00Z\ntags: [go]\n---\n\nSecond post.\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(posts, name), []byte(content), 0o600))
	}

	cfgPath = filepath.Join(root, "blogbuilder.yaml")
	yaml := "site:\n  title: CLI Blog\n  base_url: https://example.com\n" +
		"content:\n  posts_dir: " + posts + "\n" +
		"output:\n  directory: " + outDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return cfgPath, outDir
}

func TestSlugCmd(t *testing.T) {
	out, err := run(t, "slug", "Web Development", "Go", "C++")
	require.NoError(t, err)
	assert.Equal(t, "/blog/tag/web-development\n/blog/tag/go\n/blog/tag/c++\n", out)

	out, err = run(t, "slug", "-s", "Machine Learning")
	require.NoError(t, err)
	assert.Equal(t, "machine-learning\n", out)
}

func TestSlugCmd_RequiresTag(t *testing.T) {
	_, err := run(t, "slug")
	require.Error(t, err)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogbuilder.yaml")

	out, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = config.Load(path)
	require.NoError(t, err)

	_, err = run(t, "-c", path, "init")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryValidation, ce.Category())

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestBuildCmd(t *testing.T) {
	cfgPath, outDir := writeSite(t)

	out, err := run(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Built 2 posts and 2 tags into "+outDir+": 7 written, 0 unchanged")
	assert.FileExists(t, filepath.Join(outDir, "blog", "tag", "web-development", "index.html"))

	out, err = run(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "0 written, 7 unchanged")

	out, err = run(t, "-c", cfgPath, "build", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "7 written, 0 unchanged")
}

func TestBuildCmd_OutputOverrideAndDryRun(t *testing.T) {
	cfgPath, _ := writeSite(t)
	other := filepath.Join(t.TempDir(), "elsewhere")

	out, err := run(t, "-c", cfgPath, "build", "--dry-run", "-o", other)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 2 posts and 2 tags (dry run, nothing written)")
	assert.NoDirExists(t, filepath.Join(other, "blog"))

	out, err = run(t, "-c", cfgPath, "build", "-o", other)
	require.NoError(t, err)
	assert.Contains(t, out, "into "+other)
	assert.FileExists(t, filepath.Join(other, "feed.xml"))
}

func TestBuildCmd_MissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "build")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, ce.Category())
}

func TestTagsCmd(t *testing.T) {
	cfgPath, _ := writeSite(t)

	out, err := run(t, "-c", cfgPath, "tags")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"PATH", "POSTS", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"/blog/tag/go", "2", "go"}, strings.Fields(lines[1]))
	assert.Equal(t, "/blog/tag/web-development", strings.Fields(lines[2])[0])

	out, err = run(t, "-c", cfgPath, "tags", "--popular", "1")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "/blog/tag/go")
}

func TestSetupLogging_Precedence(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	ctx := context.Background()
	var buf bytes.Buffer

	cli := &CLI{logOutput: &buf}
	logger := cli.setupLogging(&config.LoggingConfig{Level: config.LogLevelWarn, Format: config.LogFormatJSON})
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	logger.Warn("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	t.Setenv(LogLevelEnv, "debug")
	logger = cli.setupLogging(&config.LoggingConfig{Level: config.LogLevelError})
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))

	t.Setenv(LogLevelEnv, "error")
	cli.Verbose = true
	logger = cli.setupLogging(nil)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.Same(t, logger, slog.Default())
}
