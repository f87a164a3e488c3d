package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	feedsBucket    = []byte("feeds")
	articlesBucket = []byte("articles")
)

var (
	ErrFeedNotFound    = errors.New("feed not found")
	ErrArticleNotFound = errors.New("article not found")
)

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database. A zero timeout waits one second
// for the file lock.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{feedsBucket, articlesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveFeed(feed *Feed) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(feed)
		if err != nil {
			return err
		}
		return tx.Bucket(feedsBucket).Put([]byte(feed.ID), data)
	})
}

func (s *Store) GetFeed(id string) (*Feed, error) {
	var feed Feed
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(feedsBucket).Get([]byte(id))
		if data == nil {
			return ErrFeedNotFound
		}
		return json.Unmarshal(data, &feed)
	})
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetAllFeeds returns feeds sorted by display title, case-insensitive.
func (s *Store) GetAllFeeds() ([]*Feed, error) {
	var feeds []*Feed
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(feedsBucket).ForEach(func(_ []byte, v []byte) error {
			var feed Feed
			if err := json.Unmarshal(v, &feed); err != nil {
				return err
			}
			feeds = append(feeds, &feed)
			return nil
		})
	})
	sort.Slice(feeds, func(i, j int) bool {
		return strings.ToLower(feeds[i].DisplayTitle()) < strings.ToLower(feeds[j].DisplayTitle())
	})
	return feeds, err
}

// SaveArticles stores articles and returns how many were new. Articles that
// already exist keep their read flag.
func (s *Store) SaveArticles(articles []*Article) (int, error) {
	added := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		for _, article := range articles {
			if existing := b.Get([]byte(article.ID)); existing != nil {
				var prev Article
				if err := json.Unmarshal(existing, &prev); err == nil {
					article.Read = article.Read || prev.Read
				}
			} else {
				added++
			}

			data, err := json.Marshal(article)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(article.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) GetArticle(id string) (*Article, error) {
	var article Article
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(articlesBucket).Get([]byte(id))
		if data == nil {
			return ErrArticleNotFound
		}
		return json.Unmarshal(data, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticles returns articles for feedID (all feeds when empty), newest
// first. A limit of zero means no limit.
func (s *Store) GetArticles(feedID string, limit int) ([]*Article, error) {
	page, err := s.ArticlesPage(feedID, 0, limit)
	return page.Articles, err
}

// ArticlesPage returns up to limit articles starting at offset in the
// newest-first listing. A limit of zero returns everything past offset.
func (s *Store) ArticlesPage(feedID string, offset, limit int) (Page, error) {
	var articles []*Article
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).ForEach(func(_ []byte, v []byte) error {
			var article Article
			if err := json.Unmarshal(v, &article); err != nil {
				return nil
			}
			if feedID == "" || article.FeedID == feedID {
				articles = append(articles, &article)
			}
			return nil
		})
	})
	if err != nil {
		return Page{}, err
	}

	// Newest first; ID breaks ties so pages never overlap.
	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].Published.Equal(articles[j].Published) {
			return articles[i].Published.After(articles[j].Published)
		}
		return articles[i].ID < articles[j].ID
	})

	page := Page{Offset: offset, Total: len(articles)}
	if offset < 0 {
		offset = 0
		page.Offset = 0
	}
	if offset >= len(articles) {
		page.Articles = []*Article{}
		return page, nil
	}
	end := len(articles)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Articles = articles[offset:end]
	return page, nil
}

func (s *Store) MarkArticleRead(id string, read bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrArticleNotFound
		}

		var article Article
		if err := json.Unmarshal(data, &article); err != nil {
			return err
		}
		article.Read = read

		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *Store) DeleteFeed(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(feedsBucket).Delete([]byte(id)); err != nil {
			return err
		}

		b := tx.Bucket(articlesBucket)
		var doomed [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var article Article
			if err := json.Unmarshal(v, &article); err == nil && article.FeedID == id {
				doomed = append(doomed, append([]byte(nil), k...))
			}
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
