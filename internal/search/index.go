// Package search keeps a full-text index of stored articles and answers
// paginated queries against it.
package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/pullfeed/internal/storage"
)

// MinQueryLength is the shortest trimmed query that reaches the index.
const MinQueryLength = 2

var ErrClosed = errors.New("search index closed")

// Hits is one page of matching article IDs, best match first.
type Hits struct {
	IDs   []string
	From  int
	Total int
}

// HasMore reports whether matches remain past this page.
func (h Hits) HasMore() bool {
	return h.From+len(h.IDs) < h.Total
}

type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it when none exists.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// NewMemOnly returns an index that lives only in memory.
func NewMemOnly() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	content.Store = false

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name

	feedID := bleve.NewTextFieldMapping()
	feedID.Analyzer = keyword.Name

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("url", url)
	dm.AddFieldMappingsAt("feed_id", feedID)

	im.DefaultMapping = dm
	return im
}

// IndexArticles adds or replaces the given articles in one batch.
func (i *Index) IndexArticles(articles []*storage.Article) error {
	if i.idx == nil {
		return ErrClosed
	}

	batch := i.idx.NewBatch()
	for _, a := range articles {
		err := batch.Index(a.ID, map[string]any{
			"feed_id":     a.FeedID,
			"title":       a.Title,
			"description": a.Description,
			"content":     a.Content,
			"url":         a.URL,
		})
		if err != nil {
			return fmt.Errorf("indexing %s: %w", a.ID, err)
		}
	}
	return i.idx.Batch(batch)
}

// Reindex indexes every article in the store.
func (i *Index) Reindex(store *storage.Store) error {
	articles, err := store.GetArticles("", 0)
	if err != nil {
		return err
	}
	return i.IndexArticles(articles)
}

// DeleteFeed removes every indexed article belonging to feedID.
func (i *Index) DeleteFeed(feedID string) error {
	if i.idx == nil {
		return ErrClosed
	}

	tq := bleve.NewTermQuery(feedID)
	tq.SetField("feed_id")

	const size = 500
	for {
		res, err := i.idx.Search(bleve.NewSearchRequestOptions(tq, size, 0, false))
		if err != nil {
			return err
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := i.idx.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := i.idx.Batch(batch); err != nil {
			return err
		}
	}
}

// Search returns up to size matching article IDs starting at from. Queries
// shorter than MinQueryLength match nothing.
func (i *Index) Search(query string, from, size int) (Hits, error) {
	if i.idx == nil {
		return Hits{}, ErrClosed
	}

	hits := Hits{IDs: []string{}, From: from}
	q := buildQuery(query)
	if q == nil {
		return hits, nil
	}

	req := bleve.NewSearchRequestOptions(q, size, from, false)
	req.SortBy([]string{"-_score", "_id"})
	res, err := i.idx.Search(req)
	if err != nil {
		return Hits{}, err
	}

	hits.Total = int(res.Total)
	for _, h := range res.Hits {
		hits.IDs = append(hits.IDs, h.ID)
	}
	return hits, nil
}

// DocCount reports the number of indexed articles.
func (i *Index) DocCount() (uint64, error) {
	if i.idx == nil {
		return 0, ErrClosed
	}
	return i.idx.DocCount()
}

func (i *Index) Close() error {
	if i.idx == nil {
		return nil
	}
	err := i.idx.Close()
	i.idx = nil
	return err
}

var fieldBoosts = []struct {
	field        string
	match, prefx float64
}{
	{"title", 4.0, 3.5},
	{"description", 2.0, 1.8},
	{"content", 1.0, 0.8},
	{"url", 0.5, 0.3},
}

// buildQuery ORs a match and a prefix query per term across the boosted
// fields. It returns nil when the query has no usable terms.
func buildQuery(query string) bleveQuery.Query {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, fb := range fieldBoosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(fb.field)
			mq.SetBoost(fb.match)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(fb.field)
			pq.SetBoost(fb.prefx)

			qs = append(qs, mq, pq)
		}
	}
	if len(qs) == 0 {
		return nil
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// tokenize lowercases letters and digits into terms, skipping single
// characters.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}
