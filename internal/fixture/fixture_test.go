package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pullfeed/internal/datasource"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSONList(t *testing.T) {
	raw, err := Load(writeFixture(t, "list.json", `["a", "b", 3]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, datasource.Normalize[string](raw))
}

func TestLoadJSONBlob(t *testing.T) {
	raw, err := Load(writeFixture(t, "blob.json", `{"_dataBlob": {"s1": [{"title": "first"}, {"title": "second"}]}}`))
	require.NoError(t, err)

	c := datasource.Classify[map[string]any](raw)
	assert.Equal(t, datasource.KindBlob, c.Kind)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0]["title"])

	raw, err = Load(writeFixture(t, "empty.json", `{"_dataBlob": {"s1": [{"a": "ab"}]}}`))
	require.NoError(t, err)
	assert.Empty(t, datasource.Normalize[map[string]any](raw))
}

func TestLoadTOML(t *testing.T) {
	t.Run("items array", func(t *testing.T) {
		raw, err := Load(writeFixture(t, "list.toml", `items = ["x", "y"]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, datasource.Normalize[string](raw))
	})

	t.Run("blob tables", func(t *testing.T) {
		content := `
[[_dataBlob.s1]]
title = "only row"
`
		raw, err := Load(writeFixture(t, "blob.toml", content))
		require.NoError(t, err)

		items := datasource.Normalize[map[string]any](raw)
		require.Len(t, items, 1)
		assert.Equal(t, "only row", items[0]["title"])
	})

	t.Run("blob placeholder", func(t *testing.T) {
		raw, err := Load(writeFixture(t, "empty.toml", "[[_dataBlob.s1]]\na = \"ab\"\n"))
		require.NoError(t, err)
		assert.Equal(t, datasource.KindBlob, datasource.Classify[map[string]any](raw).Kind)
		assert.Empty(t, datasource.Normalize[map[string]any](raw))
	})

	t.Run("other keys are kept", func(t *testing.T) {
		raw, err := Load(writeFixture(t, "other.toml", "items = [1]\nname = \"x\"\n"))
		require.NoError(t, err)
		assert.Equal(t, datasource.KindUnrecognized, datasource.Classify[string](raw).Kind)
	})
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFixture(t, "bad.json", `{`))
	assert.Error(t, err)

	_, err = Load(writeFixture(t, "data.yaml", `- a`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
