package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pullfeed/internal/debuglog"
	"github.com/pders01/pullfeed/internal/storage"
)

func (a *App) loadFeeds() tea.Cmd {
	return func() tea.Msg {
		feeds, err := a.store.GetAllFeeds()
		return feedsLoadedMsg{feeds: feeds, err: wrapErr("loading feeds", err)}
	}
}

// loadPage reads one page from the active source. Sources are captured so a
// page keeps its generation even if the user switches source meanwhile.
func (a *App) loadPage(offset int, refresh bool) tea.Cmd {
	src, gen, size := a.source, a.gen, a.config.List.PageSize
	return func() tea.Msg {
		p, err := src.Page(offset, size)
		return pageLoadedMsg{gen: gen, refresh: refresh, page: p, err: err}
	}
}

// refreshFeeds fetches every feed and reloads the first page. Sources other
// than the stored article list only reload.
func (a *App) refreshFeeds() tea.Cmd {
	src, gen, size := a.source, a.gen, a.config.List.PageSize
	manager := a.manager
	timeout := a.config.Feed.HTTPTimeout * 2
	return func() tea.Msg {
		msg := refreshedMsg{gen: gen}

		if _, ok := src.(feedSource); ok && manager != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			msg.result, msg.err = manager.RefreshAll(ctx)
		}

		p, err := src.Page(0, size)
		msg.page = pageLoadedMsg{gen: gen, refresh: true, page: p, err: err}
		return msg
	}
}

func (a *App) renderArticle(article *storage.Article) tea.Cmd {
	return func() tea.Msg {
		var content strings.Builder
		fmt.Fprintf(&content, "# %s\n\n", article.Title)
		if !article.Published.IsZero() {
			fmt.Fprintf(&content, "*Published: %s*\n\n", article.Published.Format(time.RFC1123))
		}
		if article.URL != "" {
			fmt.Fprintf(&content, "[Read Online](%s)\n\n", article.URL)
		}
		content.WriteString("---\n\n")

		if article.Content != "" {
			content.WriteString(article.Content)
		} else {
			content.WriteString(article.Description)
		}

		r, err := a.getRenderer()
		if err != nil {
			return articleRenderedMsg{id: article.ID, content: "Error initializing renderer: " + err.Error()}
		}

		rendered, err := r.Render(content.String())
		if err != nil {
			return articleRenderedMsg{id: article.ID, content: fmt.Sprintf("Failed to render article: %v\n\nPress esc to go back.", err)}
		}
		return articleRenderedMsg{id: article.ID, content: rendered}
	}
}

func (a *App) addFeed(url string) tea.Cmd {
	manager, store := a.manager, a.store
	timeout := a.config.Feed.HTTPTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		f, err := manager.AddFeed(ctx, url)
		if err != nil {
			return feedAddedMsg{err: err}
		}

		page, err := store.ArticlesPage(f.ID, 0, 0)
		if err != nil {
			return feedAddedMsg{feed: f, err: wrapErr("counting articles", err)}
		}
		return feedAddedMsg{feed: f, count: page.Total}
	}
}

func (a *App) deleteFeed(feedID string) tea.Cmd {
	store, index := a.store, a.index
	return func() tea.Msg {
		err := retryOperation(func() error { return store.DeleteFeed(feedID) })
		if err == nil && index != nil {
			if idxErr := index.DeleteFeed(feedID); idxErr != nil {
				debuglog.Warnf("removing feed %s from index: %v", feedID, idxErr)
			}
		}
		return feedDeletedMsg{err: err}
	}
}

func (a *App) toggleRead(article *storage.Article) tea.Cmd {
	store := a.store
	read := !article.Read
	return func() tea.Msg {
		err := retryOperation(func() error { return store.MarkArticleRead(article.ID, read) })
		if err != nil {
			return readToggledMsg{article: article, err: wrapErr("updating article", err)}
		}
		updated := *article
		updated.Read = read
		return readToggledMsg{article: &updated}
	}
}

func (a *App) markArticleRead(article *storage.Article) tea.Cmd {
	if article.Read {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		err := retryOperation(func() error { return store.MarkArticleRead(article.ID, true) })
		if err != nil {
			return errorMsg{err: wrapErr("marking read", err)}
		}
		updated := *article
		updated.Read = true
		return readToggledMsg{article: &updated}
	}
}

// retryOperation retries a database operation up to 3 times with exponential backoff
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
			}
			continue
		}
		return nil
	}
	return lastErr
}
