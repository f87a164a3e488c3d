package feed

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/mmcdole/gofeed"
	"github.com/pders01/pullfeed/internal/storage"
)

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parsed is a decoded feed document.
type Parsed struct {
	Title       string
	Description string
	Articles    []*storage.Article
}

func (p *Parser) Parse(reader io.Reader, feedID string) (*Parsed, error) {
	doc, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	out := &Parsed{
		Title:       doc.Title,
		Description: doc.Description,
		Articles:    make([]*storage.Article, 0, len(doc.Items)),
	}
	for _, item := range doc.Items {
		article := &storage.Article{
			ID:          articleID(feedID, item),
			FeedID:      feedID,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
		}
		if article.Content == "" {
			article.Content = item.Description
		}
		if item.PublishedParsed != nil {
			article.Published = *item.PublishedParsed
		}
		if item.UpdatedParsed != nil {
			article.Updated = *item.UpdatedParsed
			if article.Published.IsZero() {
				article.Published = article.Updated
			}
		}
		out.Articles = append(out.Articles, article)
	}

	return out, nil
}

// articleID is stable across refreshes so re-fetched items overwrite rather
// than duplicate. Items without a GUID fall back to link, then title.
func articleID(feedID string, item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = fmt.Sprintf("%x", sha256.Sum256([]byte(item.Title+item.Description)))
	}
	return feedID + ":" + key
}
