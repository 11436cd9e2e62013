package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Document(t *testing.T) {
	f, err := Parse([]byte(`
network:
  enabled: true
  hosts: [api.example.com]
filters:
  - 'method != "OPTIONS"'
mocks:
  - name: ip
    url: http://x.com/ip
    method: GET
    times: 2
    reply: 404
    response_json: {error: not found}
  - url: http://x.com/health
    persist: true
`))
	require.NoError(t, err)

	assert.True(t, f.Network.Enabled)
	assert.Equal(t, []string{"api.example.com"}, f.Network.Hosts)
	assert.Equal(t, []string{`method != "OPTIONS"`}, f.Filters)
	require.Len(t, f.Mocks, 2)
	assert.Equal(t, "ip", f.Mocks[0].Name())
	assert.Equal(t, 1, f.Mocks[1].Index)
	assert.Equal(t, "<input>: mocks[0] (ip)", f.Mocks[0].String())
	assert.Equal(t, "<input>: mocks[1]", f.Mocks[1].String())
}

func TestParse_JSON(t *testing.T) {
	f, err := Parse([]byte(`{"mocks": [{"url": "http://x.com", "reply": 204}]}`))
	require.NoError(t, err)
	require.Len(t, f.Mocks, 1)
	assert.Equal(t, "http://x.com", f.Mocks[0].Options["url"])
}

func TestParse_Layouts(t *testing.T) {
	list, err := Parse([]byte("- url: http://a.com\n- url: http://b.com\n"))
	require.NoError(t, err)
	assert.Len(t, list.Mocks, 2)

	single, err := Parse([]byte("url: http://a.com\nreply: 201\n"))
	require.NoError(t, err)
	require.Len(t, single.Mocks, 1)
	assert.Equal(t, 201, single.Mocks[0].Options["reply"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   \n"},
		{"scalar", "just text"},
		{"bad yaml", "mocks: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("MW_API_HOST", "api.test")
	f, err := Parse([]byte("mocks:\n  - url: http://${MW_API_HOST}/v1\n    times: ${MW_TIMES:-3}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/v1", f.Mocks[0].Options["url"])
	assert.Equal(t, 3, f.Mocks[0].Options["times"])
}

func TestLoad_Includes(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "mocks.yaml", `
network:
  enabled: true
mocks:
  - url: http://x.com/root
  - file: users/*.yaml
  - file: extra/**/*.yaml
  - file: single.yaml
`)
	writeFile(t, dir, "users/a.yaml", "- url: http://x.com/users/a\n")
	writeFile(t, dir, "users/b.yaml", "- url: http://x.com/users/b\n")
	writeFile(t, dir, "extra/deep/nested/c.yaml", "mocks:\n  - url: http://x.com/c\nfilters: ['path != \"/skip\"']\n")
	writeFile(t, dir, "single.yaml", "url: http://x.com/single\n")

	f, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, root, f.Path)
	assert.True(t, f.Network.Enabled)
	assert.Len(t, f.Filters, 1)

	var urls []string
	for _, m := range f.Mocks {
		urls = append(urls, m.Options["url"].(string))
	}
	assert.Equal(t, []string{
		"http://x.com/root",
		"http://x.com/users/a",
		"http://x.com/users/b",
		"http://x.com/c",
		"http://x.com/single",
	}, urls)
	assert.Equal(t, filepath.Join(dir, "users", "b.yaml"), f.Mocks[2].Source)
}

func TestLoad_IncludeErrors(t *testing.T) {
	dir := t.TempDir()
	missing := writeFile(t, dir, "missing.yaml", "mocks:\n  - file: nope.yaml\n")
	_, err := Load(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.Contains(t, err.Error(), "mocks[0] (file: nope.yaml)")

	loop := writeFile(t, dir, "loop.yaml", "mocks:\n  - file: loop.yaml\n")
	_, err = Load(loop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "file not found")
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "- url: http://x.com/b\n")
	writeFile(t, dir, "a.yaml", "network: {enabled: true, hosts: [a.com]}\nmocks:\n  - url: http://x.com/a\n")
	writeFile(t, dir, "sub/c.yaml", "- url: http://x.com/c\n")

	f, err := LoadGlob(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)
	require.Len(t, f.Mocks, 3)
	assert.Equal(t, "http://x.com/a", f.Mocks[0].Options["url"])
	assert.Equal(t, "http://x.com/b", f.Mocks[1].Options["url"])
	assert.Equal(t, "http://x.com/c", f.Mocks[2].Options["url"])
	assert.True(t, f.Network.Enabled)

	_, err = LoadGlob(filepath.Join(dir, "*.json"))
	assert.ErrorContains(t, err, "no files match")
}
