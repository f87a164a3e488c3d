package search

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pullfeed/internal/storage"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := NewMemOnly()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func sampleArticles() []*storage.Article {
	return []*storage.Article{
		{ID: "a1", FeedID: "f1", Title: "Hello World", Description: "greeting article", URL: "https://example.com/1"},
		{ID: "a2", FeedID: "f1", Title: "Golang Tips", Description: "bleve and search", URL: "https://example.com/2", Content: "Using bleve for full text search"},
		{ID: "a3", FeedID: "f2", Title: "Gardening", Description: "tomatoes in golang weather", URL: "https://garden.example.org/3"},
	}
}

func TestIndexArticlesAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexArticles(sampleArticles()))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	hits, err := idx.Search("golang", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, hits.Total)
	require.Len(t, hits.IDs, 2)
	assert.Equal(t, "a2", hits.IDs[0], "title match should outrank description match")

	hits, err = idx.Search("blev", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, hits.IDs, "prefix should match")
}

func TestSearchShortQuery(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexArticles(sampleArticles()))

	for _, q := range []string{"", " ", "g", " h "} {
		hits, err := idx.Search(q, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, hits.IDs, "query %q", q)
		assert.Zero(t, hits.Total)
		assert.NotNil(t, hits.IDs)
	}
}

func TestSearchPaging(t *testing.T) {
	idx := newTestIndex(t)

	var articles []*storage.Article
	for i := 0; i < 7; i++ {
		articles = append(articles, &storage.Article{ID: fmt.Sprintf("p%d", i), FeedID: "f", Title: "paging topic"})
	}
	require.NoError(t, idx.IndexArticles(articles))

	seen := map[string]bool{}
	from := 0
	for {
		hits, err := idx.Search("paging", from, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, hits.Total)
		for _, id := range hits.IDs {
			assert.False(t, seen[id], "duplicate hit %s", id)
			seen[id] = true
		}
		from += len(hits.IDs)
		if !hits.HasMore() {
			break
		}
	}
	assert.Len(t, seen, 7)
}

func TestDeleteFeed(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexArticles(sampleArticles()))

	require.NoError(t, idx.DeleteFeed("f1"))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	hits, err := idx.Search("golang", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3"}, hits.IDs)
}

func TestReindexFromStore(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(filepath.Join(dir, "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.SaveArticles(sampleArticles())
	require.NoError(t, err)

	idxPath := filepath.Join(dir, "nested", "index.bleve")
	idx, err := Open(idxPath)
	require.NoError(t, err)
	require.NoError(t, idx.Reindex(store))

	hits, err := idx.Search("hello", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, hits.IDs)
	require.NoError(t, idx.Close())

	fi, err := os.Stat(idxPath)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	reopened, err := Open(idxPath)
	require.NoError(t, err)
	defer reopened.Close()
	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestClosedIndex(t *testing.T) {
	idx, err := NewMemOnly()
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.Search("golang", 0, 10)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, idx.IndexArticles(sampleArticles()), ErrClosed)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, tokenize("Hello, World! a 42"))
	assert.Empty(t, tokenize("a b c"))
}
