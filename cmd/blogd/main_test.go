package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tech-vexy/blog/config"
	"github.com/tech-vexy/blog/siteurl"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile, robotsOut = "", ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRobotsCommand(t *testing.T) {
	path := writeConfig(t, "site_url: https://example.com/blog/\n")

	out, err := run(t, "robots", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://example.com/blog/sitemap-index.xml\n", out)
}

func TestRobotsCommandToFile(t *testing.T) {
	path := writeConfig(t, "site_url: https://example.com/\n")
	dest := filepath.Join(t.TempDir(), "robots.txt")

	_, err := run(t, "robots", "--config", path, "--out", dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap-index.xml\n", string(got))
}

func TestRobotsCommandInvalidSiteURL(t *testing.T) {
	path := writeConfig(t, "site_url: not-a-url\n")

	_, err := run(t, "robots", "--config", path)
	var ice *siteurl.InvalidConfigurationError
	assert.True(t, errors.As(err, &ice), "got %v", err)
}

func TestConfigCommand(t *testing.T) {
	path := writeConfig(t, "site_url: https://example.org/\nbase: notes\ncompress_html: false\n")

	out, err := run(t, "config", "--config", path)
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "https://example.org/", got.Build.Site)
	assert.Equal(t, "/notes/", got.Build.Base)
	assert.False(t, got.Build.CompressHTML)
	assert.Equal(t, []string{"mdx", "sitemap"}, got.Build.Integrations)
	assert.Equal(t, "auto", got.Build.InlineStylesheets)
}

func TestConfigFileDoesNotLeakBetweenRuns(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, "site_url: https://example.org/\n")
	out, err := run(t, "robots", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sitemap: https://example.org/sitemap-index.xml")

	out, err = run(t, "robots")
	require.NoError(t, err)
	assert.Contains(t, out, "Sitemap: https://tech-vexy.github.io/sitemap-index.xml")
}

func TestStaticFS(t *testing.T) {
	dir := t.TempDir()

	fsys, err := staticFS(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Nil(t, fsys)

	fsys, err = staticFS(dir)
	require.NoError(t, err)
	assert.NotNil(t, fsys)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = staticFS(file)
	assert.Error(t, err)
}
