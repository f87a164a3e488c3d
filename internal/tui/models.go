package tui

import (
	"github.com/pders01/pullfeed/internal/feed"
	"github.com/pders01/pullfeed/internal/storage"
)

type View int

const (
	ViewArticles View = iota
	ViewFeeds
	ViewReader
	ViewAddFeed
	ViewDeleteConfirm
)

func (v View) String() string {
	switch v {
	case ViewArticles:
		return "articles"
	case ViewFeeds:
		return "feeds"
	case ViewReader:
		return "reader"
	case ViewAddFeed:
		return "add-feed"
	case ViewDeleteConfirm:
		return "delete-confirm"
	default:
		return "unknown"
	}
}

type feedsLoadedMsg struct {
	feeds []*storage.Feed
	err   error
}

// pageLoadedMsg carries one page for the article list. gen ties the page to
// the source that requested it; pages from a replaced source are dropped.
type pageLoadedMsg struct {
	gen     int
	refresh bool
	page    page
	err     error
}

// refreshedMsg reports a network refresh. The first page of the source is
// reloaded in the same command.
type refreshedMsg struct {
	gen    int
	result feed.RefreshResult
	page   pageLoadedMsg
	err    error
}

type articleRenderedMsg struct {
	id      string
	content string
}

type feedAddedMsg struct {
	feed  *storage.Feed
	count int
	err   error
}

type feedDeletedMsg struct {
	err error
}

type readToggledMsg struct {
	article *storage.Article
	err     error
}

type errorMsg struct {
	err error
}
