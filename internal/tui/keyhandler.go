package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/search"
	"github.com/pders01/pullfeed/internal/storage"
	"github.com/pders01/pullfeed/internal/validation"
)

const maxSearchLength = 256

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	bindings    config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, bindings: cfg.Keys.Bindings}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewAddFeed:
		return kh.app.textInput.Focused()
	case ViewArticles:
		return kh.app.searching && kh.app.searchInput.Focused()
	case ViewFeeds:
		return kh.app.feedList.SettingFilter()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The feed filter is owned by the list.
	if kh.app.view == ViewFeeds {
		if msg.String() == "ctrl+c" {
			return kh.app, tea.Quit
		}
		var cmd tea.Cmd
		kh.app.feedList, cmd = kh.app.feedList.Update(msg)
		return kh.app, cmd
	}

	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter", "tab", "down":
		if kh.app.view == ViewAddFeed {
			if msg.String() == "enter" {
				return kh.submitFeedURL()
			}
			return kh.delegateToTextInput(msg)
		}
		// Hand focus to the results.
		if kh.app.articles.Len() > 0 {
			kh.app.searchInput.Blur()
			kh.app.articles.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) submitFeedURL() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(kh.app.textInput.Value())
	if input == "" {
		return kh.app, nil
	}
	if kh.app.manager == nil {
		kh.app.setError(errNoManager)
		return kh.app, nil
	}
	if err := kh.validateFeedURL(input); err != nil {
		return kh.app, func() tea.Msg { return errorMsg{err: err} }
	}
	kh.app.setStatus(MsgAddingFeed, StatusInfo)
	return kh.app, kh.app.addFeed(input)
}

// delegateToTextInput passes the key to the focused input. Search re-runs
// whenever the sanitized query changes.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch kh.app.view {
	case ViewAddFeed:
		kh.app.textInput, cmd = kh.app.textInput.Update(msg)
		return kh.app, cmd

	case ViewArticles:
		prev := kh.sanitizeSearchInput(kh.app.searchInput.Value())
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)

		query := kh.sanitizeSearchInput(kh.app.searchInput.Value())
		if query == prev {
			return kh.app, cmd
		}
		return kh.app, tea.Batch(cmd, kh.runSearch(query))

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) runSearch(query string) tea.Cmd {
	if len([]rune(query)) < search.MinQueryLength {
		kh.app.articles.SetEmptyText(kh.config.List.EmptyText)
	} else {
		kh.app.articles.SetEmptyText(MsgNoResults)
	}
	return kh.app.switchSource(searchSource{store: kh.app.store, index: kh.app.index, query: query})
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	// Global custom keys
	switch key {
	case "ctrl+c", kh.bindings.Quit:
		return kh.app, tea.Quit, true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + kh.bindings.Search:
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.modifierKey + "n":
		kh.app.view = ViewAddFeed
		kh.app.textInput.Reset()
		kh.app.textInput.Focus()
		return kh.app, nil, true
	}

	// View-specific custom keys
	switch kh.app.view {
	case ViewFeeds:
		return kh.handleFeedsCustomKeys(key)
	case ViewArticles:
		return kh.handleArticlesCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewDeleteConfirm:
		return kh.handleDeleteConfirmKeys(key)
	default:
		return kh.app, nil, false
	}
}

// handleFeedsCustomKeys handles only custom action keys in feeds view
func (kh *KeyHandler) handleFeedsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.modifierKey + "x":
		if i, ok := kh.app.feedList.SelectedItem().(feedItem); ok && i.feed != nil {
			kh.app.feedToDelete = i.feed
			kh.app.view = ViewDeleteConfirm
			return kh.app, nil, true
		}
	case "enter":
		if i, ok := kh.app.feedList.SelectedItem().(feedItem); ok {
			kh.app.view = ViewArticles
			kh.app.articles.SetEmptyText(kh.config.List.EmptyText)
			return kh.app, kh.app.switchSource(feedSource{store: kh.app.store, feed: i.feed}), true
		}
	}
	return kh.app, nil, false
}

// handleArticlesCustomKeys handles only custom action keys in articles view
func (kh *KeyHandler) handleArticlesCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.bindings.ToggleRead:
		if article, ok := kh.app.articles.SelectedItem(); ok {
			return kh.app, kh.app.toggleRead(article), true
		}
		return kh.app, nil, true
	case "enter":
		if article, ok := kh.app.articles.SelectedItem(); ok {
			return kh.openArticle(article)
		}
		return kh.app, nil, true
	case "tab", "shift+tab", "/":
		if kh.app.searching {
			kh.app.searchInput.Focus()
			return kh.app, nil, true
		}
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) openArticle(article *storage.Article) (tea.Model, tea.Cmd, bool) {
	kh.app.currentArticle = article
	kh.app.loadingArticle = true
	kh.app.view = ViewReader
	kh.app.setStatus(MsgLoadingArticle, StatusInfo)
	return kh.app, tea.Batch(kh.app.markArticleRead(article), kh.app.renderArticle(article)), true
}

// handleReaderCustomKeys handles only custom action keys in reader view
func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.bindings.ToggleRead:
		if kh.app.currentArticle != nil {
			return kh.app, kh.app.toggleRead(kh.app.currentArticle), true
		}
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDeleteConfirmKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == "enter" && kh.app.feedToDelete != nil {
		kh.app.setStatus(MsgDeleting, StatusInfo)
		return kh.app, kh.app.deleteFeed(kh.app.feedToDelete.ID), true
	}
	return kh.app, nil, true
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewFeeds:
		kh.app.feedList, cmd = kh.app.feedList.Update(msg)
		return kh.app, cmd

	case ViewArticles:
		// Up on the first result goes back to the search box instead of
		// pulling to refresh.
		if kh.app.searching && msg.String() == "up" && kh.app.articles.Index() == 0 {
			kh.app.searchInput.Focus()
			return kh.app, nil
		}
		_, cmd = kh.app.articles.Update(msg)
		return kh.app, cmd

	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewAddFeed, ViewDeleteConfirm:
		kh.app.view = ViewFeeds
		kh.app.feedToDelete = nil
		kh.app.textInput.Blur()
		return kh.app, nil

	case ViewArticles:
		if kh.app.searching {
			return kh.app, kh.exitSearchMode()
		}
		kh.app.view = ViewFeeds
		return kh.app, nil

	case ViewReader:
		kh.app.view = ViewArticles
		kh.app.loadingArticle = false
		return kh.app, nil

	default:
		return kh.app, tea.Quit
	}
}

// enterSearchMode swaps the article list over to search hits. The previous
// source comes back on exit.
func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	if kh.app.index == nil {
		kh.app.setError(errNoIndex)
		return kh.app, nil
	}

	if !kh.app.searching {
		kh.app.prevSource = kh.app.source
	}
	kh.app.searching = true
	kh.app.view = ViewArticles
	kh.app.searchInput.Reset()
	kh.app.searchInput.Focus()
	kh.app.resize(kh.app.width, kh.app.height)

	if n, err := kh.app.index.DocCount(); err == nil {
		kh.app.setStatus(MsgSearchIndex(int(n)), StatusInfo)
	}
	return kh.app, kh.runSearch("")
}

func (kh *KeyHandler) exitSearchMode() tea.Cmd {
	kh.app.searching = false
	kh.app.searchInput.Reset()
	kh.app.searchInput.Blur()
	kh.app.resize(kh.app.width, kh.app.height)
	kh.app.articles.SetEmptyText(kh.config.List.EmptyText)

	src := kh.app.prevSource
	kh.app.prevSource = nil
	if src == nil {
		src = feedSource{store: kh.app.store}
	}
	return kh.app.switchSource(src)
}

// validateFeedURL rejects obviously bad input before it reaches the
// network. The manager applies its own validator again on add.
func (kh *KeyHandler) validateFeedURL(input string) error {
	_, err := validation.NewPermissiveFeedURLValidator().ValidateAndNormalize(input)
	return err
}

// sanitizeSearchInput sanitizes and limits search input length
func (kh *KeyHandler) sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if r := []rune(input); len(r) > maxSearchLength {
		input = string(r[:maxSearchLength])
	}

	input = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(input)
	return strings.Join(strings.Fields(input), " ")
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	search := kh.modifierKey + kh.bindings.Search + ": search"
	refresh := kh.bindings.Refresh + ": refresh"

	switch kh.app.view {
	case ViewFeeds:
		help := []string{"enter: open", kh.modifierKey + "n: new", search}
		if len(kh.app.feeds) > 0 {
			help = append(help, kh.modifierKey+"x: delete")
		}
		return help

	case ViewArticles:
		help := []string{"enter: read", kh.bindings.ToggleRead + ": toggle read"}
		if !kh.config.List.DisablePullToRefresh {
			help = append(help, refresh)
		}
		return append(help, search, kh.bindings.Back+": feeds")

	case ViewReader:
		return []string{kh.bindings.ToggleRead + ": toggle read", search, kh.bindings.Back + ": back"}

	case ViewAddFeed:
		return []string{"enter: add", "esc: cancel"}

	case ViewDeleteConfirm:
		return []string{"enter: confirm", "esc: cancel"}

	default:
		return []string{}
	}
}
