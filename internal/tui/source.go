package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/pullfeed/internal/search"
	"github.com/pders01/pullfeed/internal/storage"
)

// articleSource pages articles for the main list.
type articleSource interface {
	Page(offset, limit int) (page, error)
	Title() string
}

// page is one batch from a source. next is the offset of the following
// batch, which can run ahead of len(articles) when hits are skipped.
type page struct {
	articles []*storage.Article
	next     int
	total    int
	hasMore  bool
}

// feedSource lists stored articles newest first, for one feed or all of them.
type feedSource struct {
	store *storage.Store
	feed  *storage.Feed
}

func (s feedSource) feedID() string {
	if s.feed == nil {
		return ""
	}
	return s.feed.ID
}

func (s feedSource) Page(offset, limit int) (page, error) {
	p, err := s.store.ArticlesPage(s.feedID(), offset, limit)
	if err != nil {
		return page{}, wrapErr("loading articles", err)
	}
	return page{articles: p.Articles, next: p.Offset + len(p.Articles), total: p.Total, hasMore: p.HasMore()}, nil
}

func (s feedSource) Title() string {
	if s.feed == nil {
		return "› all articles"
	}
	return "› " + s.feed.DisplayTitle()
}

// searchSource pages search hits and resolves them against the store.
type searchSource struct {
	store *storage.Store
	index *search.Index
	query string
}

func (s searchSource) Page(offset, limit int) (page, error) {
	if s.index == nil {
		return page{}, errors.New("search index unavailable")
	}

	hits, err := s.index.Search(s.query, offset, limit)
	if err != nil {
		return page{}, wrapErr("searching", err)
	}

	articles := make([]*storage.Article, 0, len(hits.IDs))
	for _, id := range hits.IDs {
		a, err := s.store.GetArticle(id)
		if errors.Is(err, storage.ErrArticleNotFound) {
			// Deleted since it was indexed.
			continue
		}
		if err != nil {
			return page{}, wrapErr("loading search hit", err)
		}
		articles = append(articles, a)
	}
	return page{articles: articles, next: offset + len(hits.IDs), total: hits.Total, hasMore: hits.HasMore()}, nil
}

func (s searchSource) Title() string {
	return fmt.Sprintf("› search: %s", s.query)
}
