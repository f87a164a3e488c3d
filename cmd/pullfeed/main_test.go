package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pullfeed/internal/config"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <description>A feed for tests</description>
  <item>
    <title>First</title>
    <guid>first</guid>
    <description>Pull to refresh explained</description>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  </item>
  <item>
    <title>Second</title>
    <guid>second</guid>
    <description>Infinite scrolling notes</description>
    <pubDate>Tue, 03 Jan 2006 15:04:05 GMT</pubDate>
  </item>
</channel>
</rss>`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig points the database and index into a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := config.TestConfig()
	cfg.Database.Path = filepath.Join(dir, "pullfeed.db")
	cfg.Database.SearchIndex = filepath.Join(dir, "index.bleve")
	cfg.Log.Level = "off"

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, config.Save(cfg, path))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pullfeed dev")
	assert.Contains(t, out, "github.com/pders01/pullfeed")
	assert.Contains(t, out, "╔")

	out, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Contains(t, out, "pullfeed dev")
	assert.NotContains(t, out, "╔")
}

func TestGenerateConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "config", "generate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated default configuration at: "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.List.PageSize)
}

func TestGenerateConfigCommand_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := execute(t, "config", "generate")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".config", "pullfeed", "config.toml"))
	assert.NoError(t, err)
}

func TestAddAndRefreshCommands(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testRSS)
	}))
	defer server.Close()

	configPath := writeTestConfig(t)

	out, err := execute(t, "--config", configPath, "add", server.URL+"/feed.xml", "--allow-private")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added feed 'Test Feed' (2 articles)")

	out, err = execute(t, "--config", configPath, "refresh", "--force")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Refreshed:")
	assert.Contains(t, out, "idx: 2 docs")
}

func TestAddCommand_RejectsLocalhostByDefault(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := execute(t, "--config", configPath, "add", "http://localhost:1/feed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "localhost")
}

func TestAddCommand_RequiresURL(t *testing.T) {
	_, err := execute(t, "add")
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantKind string
		want     []string
	}{
		{
			name:     "json list",
			file:     "list.json",
			content:  `[{"title":"a"},{"title":"b"}]`,
			wantKind: "list",
			want:     []string{"items: 2", `{"title":"a"}`},
		},
		{
			name:     "json blob",
			file:     "blob.json",
			content:  `{"_dataBlob":{"s1":[{"title":"x"}]}}`,
			wantKind: "blob",
			want:     []string{"items: 1", `{"title":"x"}`},
		},
		{
			name:     "blob placeholder",
			file:     "empty.json",
			content:  `{"_dataBlob":{"s1":[{"a":"ab"}]}}`,
			wantKind: "blob",
			want:     []string{"items: 0"},
		},
		{
			name:     "toml items",
			file:     "list.toml",
			content:  "[[items]]\ntitle = \"t1\"\n\n[[items]]\ntitle = \"t2\"\n",
			wantKind: "list",
			want:     []string{"items: 2", `{"title":"t2"}`},
		},
		{
			name:     "unrecognized",
			file:     "scalar.json",
			content:  `42`,
			wantKind: "unrecognized",
			want:     []string{"items: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			out, err := execute(t, "inspect", path)
			require.NoError(t, err)
			assert.Contains(t, out, "kind:  "+tt.wantKind)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestInspectCommand_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a"), 0o644))

	_, err := execute(t, "inspect", path)
	assert.Error(t, err)
}

// run executes cmd and feeds its messages back into m, skipping spinner
// ticks.
func run(m *fixtureModel, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func TestFixtureModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a","b"]`), 0o644))

	m, err := newFixtureModel(path)
	require.NoError(t, err)
	t.Cleanup(m.list.Close)

	run(m, m.Init())
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Equal(t, 2, m.list.Len())
	assert.Contains(t, m.View(), `"b"`)

	// Two rows fit on screen, so the list asks for more right away and the
	// file answers that there is none.
	require.NotNil(t, cmd)
	run(m, cmd)
	assert.True(t, m.list.State().NoMoreData)
	assert.Contains(t, m.View(), "No more data")

	// Refresh re-reads the file and the fill runs again.
	require.NoError(t, os.WriteFile(path, []byte(`["a","b","c"]`), 0o644))
	run(m, m.list.BeginRefresh())
	assert.Equal(t, 3, m.list.Len())
	assert.False(t, m.list.State().Busy())
	assert.True(t, m.list.State().NoMoreData)
	assert.Nil(t, m.list.BeginLoadMore())

	// A broken file keeps the old rows and shows the error.
	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o644))
	run(m, m.list.BeginRefresh())
	assert.Equal(t, 3, m.list.Len())
	assert.False(t, m.list.State().Busy())
	assert.Contains(t, m.View(), "error:")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
