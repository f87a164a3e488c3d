package feed

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/debuglog"
	"github.com/pders01/pullfeed/internal/storage"
	"github.com/pders01/pullfeed/internal/validation"
)

// Indexer receives every batch of articles the manager stores.
type Indexer interface {
	IndexArticles(articles []*storage.Article) error
}

// RefreshResult summarises one RefreshAll pass.
type RefreshResult struct {
	Feeds   int
	Updated int
	Added   int
	Errors  []error
}

// Err joins the per-feed errors, or returns nil when every feed succeeded.
func (r RefreshResult) Err() error {
	return errors.Join(r.Errors...)
}

type Manager struct {
	store        *storage.Store
	fetcher      *Fetcher
	parser       *Parser
	config       *config.Config
	urlValidator *validation.FeedURLValidator
	indexer      Indexer
	force        bool
	mu           sync.RWMutex
}

func NewManager(store *storage.Store, cfg *config.Config) *Manager {
	return &Manager{
		store:        store,
		fetcher:      NewFetcher(cfg),
		parser:       NewParser(),
		config:       cfg,
		urlValidator: validation.NewFeedURLValidator(),
	}
}

// SetForceRefresh ignores both cache headers and the refresh interval.
func (m *Manager) SetForceRefresh(force bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.force = force
	m.fetcher.SetIgnoreCache(force)
}

// SetPermissiveValidation allows localhost and private hosts. Used by tests
// and local development servers.
func (m *Manager) SetPermissiveValidation(permissive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if permissive {
		m.urlValidator = validation.NewPermissiveFeedURLValidator()
	} else {
		m.urlValidator = validation.NewFeedURLValidator()
	}
}

func (m *Manager) SetIndexer(idx Indexer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexer = idx
}

func (m *Manager) AddFeed(ctx context.Context, rawURL string) (*storage.Feed, error) {
	m.mu.RLock()
	validator := m.urlValidator
	m.mu.RUnlock()

	normalizedURL, err := validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}

	feed := &storage.Feed{
		ID:        generateFeedID(normalizedURL),
		URL:       normalizedURL,
		UpdatedAt: time.Now(),
	}

	resp, updated, err := m.fetcher.Fetch(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	if !updated {
		return nil, errors.New("feed not modified")
	}
	defer resp.Body.Close()

	parsed, err := m.parser.Parse(resp.Body, feed.ID)
	if err != nil {
		return nil, err
	}

	feed.Title = parsed.Title
	feed.Description = parsed.Description
	m.fetcher.UpdateFeedMetadata(feed, resp)

	if err := m.store.SaveFeed(feed); err != nil {
		return nil, fmt.Errorf("saving feed: %w", err)
	}
	if _, err := m.storeArticles(parsed.Articles); err != nil {
		return nil, err
	}

	debuglog.Infof("added feed %s (%d articles)", feed.URL, len(parsed.Articles))
	return feed, nil
}

// RefreshFeed fetches one feed and stores its articles. It reports how many
// articles were new and whether the server returned fresh content. Feeds
// fetched within the refresh interval are skipped unless forced.
func (m *Manager) RefreshFeed(ctx context.Context, feedID string) (int, bool, error) {
	feed, err := m.store.GetFeed(feedID)
	if err != nil {
		return 0, false, fmt.Errorf("getting feed: %w", err)
	}

	m.mu.RLock()
	force := m.force
	m.mu.RUnlock()

	if !force && time.Since(feed.LastFetched) < m.config.Feed.RefreshInterval {
		return 0, false, nil
	}

	resp, updated, err := m.fetcher.Fetch(ctx, feed)
	if err != nil {
		return 0, false, fmt.Errorf("fetching %s: %w", feed.URL, err)
	}

	if !updated {
		feed.LastFetched = time.Now()
		if saveErr := m.store.SaveFeed(feed); saveErr != nil {
			return 0, false, fmt.Errorf("saving feed metadata: %w", saveErr)
		}
		return 0, false, nil
	}
	defer resp.Body.Close()

	parsed, err := m.parser.Parse(resp.Body, feedID)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", feed.URL, err)
	}

	if parsed.Title != "" {
		feed.Title = parsed.Title
	}
	m.fetcher.UpdateFeedMetadata(feed, resp)
	feed.UpdatedAt = time.Now()

	if err := m.store.SaveFeed(feed); err != nil {
		return 0, false, fmt.Errorf("saving feed: %w", err)
	}

	added, err := m.storeArticles(parsed.Articles)
	if err != nil {
		return 0, false, err
	}
	debuglog.WithFields(map[string]any{"feed": feedID, "url": feed.URL}).
		Debugf("stored %d articles, %d new", len(parsed.Articles), added)
	return added, true, nil
}

// RefreshAll refreshes every stored feed with at most Feed.MaxConcurrent
// fetches in flight. Per-feed failures are collected in the result; the
// returned error is reserved for failures listing the feeds.
func (m *Manager) RefreshAll(ctx context.Context) (RefreshResult, error) {
	feeds, err := m.store.GetAllFeeds()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("getting feeds: %w", err)
	}

	result := RefreshResult{Feeds: len(feeds)}
	if len(feeds) == 0 {
		return result, nil
	}

	workers := m.config.Feed.MaxConcurrent
	if workers <= 0 {
		workers = 1
	}

	feedChan := make(chan *storage.Feed)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		add = func(added int, updated bool, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Added += added
			if updated {
				result.Updated++
			}
		}
	)

	for i := 0; i < workers && i < len(feeds); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for feed := range feedChan {
				add(m.RefreshFeed(ctx, feed.ID))
			}
		}()
	}

send:
	for _, feed := range feeds {
		select {
		case feedChan <- feed:
		case <-ctx.Done():
			break send
		}
	}
	close(feedChan)
	wg.Wait()

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	debuglog.Infof("refreshed %d feeds: %d updated, %d new articles, %d errors",
		result.Feeds, result.Updated, result.Added, len(result.Errors))
	return result, nil
}

func (m *Manager) storeArticles(articles []*storage.Article) (int, error) {
	added, err := m.store.SaveArticles(articles)
	if err != nil {
		return 0, fmt.Errorf("saving articles: %w", err)
	}

	m.mu.RLock()
	idx := m.indexer
	m.mu.RUnlock()

	if idx != nil && len(articles) > 0 {
		if err := idx.IndexArticles(articles); err != nil {
			debuglog.Warnf("indexing %d articles: %v", len(articles), err)
		}
	}
	return added, nil
}

func generateFeedID(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(url)))
}
