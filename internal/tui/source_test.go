package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pullfeed/internal/search"
	"github.com/pders01/pullfeed/internal/storage"
)

func TestFeedSource_Pages(t *testing.T) {
	store := newTestStore(t)
	seedFeed(t, store, "a", "Alpha", 4)
	seedFeed(t, store, "b", "Beta", 2)

	all := feedSource{store: store}
	assert.Equal(t, "› all articles", all.Title())

	p, err := all.Page(0, 4)
	require.NoError(t, err)
	assert.Len(t, p.articles, 4)
	assert.Equal(t, 4, p.next)
	assert.Equal(t, 6, p.total)
	assert.True(t, p.hasMore)

	p, err = all.Page(p.next, 4)
	require.NoError(t, err)
	assert.Len(t, p.articles, 2)
	assert.False(t, p.hasMore)

	f, err := store.GetFeed("b")
	require.NoError(t, err)
	one := feedSource{store: store, feed: f}
	assert.Equal(t, "› Beta", one.Title())

	p, err = one.Page(0, 10)
	require.NoError(t, err)
	assert.Len(t, p.articles, 2)
	assert.False(t, p.hasMore)
}

func TestSearchSource_SkipsDeletedHits(t *testing.T) {
	store := newTestStore(t)
	articles := seedFeed(t, store, "a", "Alpha", 4)

	index, err := search.NewMemOnly()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	require.NoError(t, index.IndexArticles(articles))

	// Indexed but gone from the store.
	require.NoError(t, index.IndexArticles([]*storage.Article{{ID: "ghost", FeedID: "a", Title: "Alpha ghost"}}))

	src := searchSource{store: store, index: index, query: "alpha"}
	assert.Equal(t, "› search: alpha", src.Title())

	var got []string
	offset := 0
	for {
		p, err := src.Page(offset, 2)
		require.NoError(t, err)
		for _, a := range p.articles {
			got = append(got, a.ID)
		}
		require.Greater(t, p.next, offset, "offset must advance past skipped hits")
		offset = p.next
		if !p.hasMore {
			break
		}
	}

	assert.Len(t, got, 4)
	assert.NotContains(t, got, "ghost")
	assert.Equal(t, 5, offset)
}

func TestSearchSource_NoIndex(t *testing.T) {
	src := searchSource{store: newTestStore(t), query: "x"}
	_, err := src.Page(0, 5)
	assert.Error(t, err)
}
