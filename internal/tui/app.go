package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/feed"
	"github.com/pders01/pullfeed/internal/pulllist"
	"github.com/pders01/pullfeed/internal/search"
	"github.com/pders01/pullfeed/internal/storage"
)

type App struct {
	config     *config.Config
	store      *storage.Store
	manager    *feed.Manager
	index      *search.Index
	keyHandler *KeyHandler

	articles    *pulllist.Model[*storage.Article]
	feedList    list.Model
	searchInput textinput.Model
	textInput   textinput.Model
	viewport    viewport.Model

	view       View
	searching  bool
	source     articleSource
	prevSource articleSource
	gen        int
	loaded     []*storage.Article
	next       int
	total      int
	reloadOnly bool

	feeds          []*storage.Feed
	feedTitles     map[string]string
	currentArticle *storage.Article
	feedToDelete   *storage.Feed
	loadingArticle bool

	status     string
	statusKind StatusKind
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp wires the article list to the store. manager and index may be nil;
// refresh then only reloads and search is unavailable.
func NewApp(store *storage.Store, manager *feed.Manager, index *search.Index, cfg *config.Config) (*App, error) {
	a := &App{
		config:     cfg,
		store:      store,
		manager:    manager,
		index:      index,
		view:       ViewArticles,
		feedTitles: map[string]string{},
	}
	a.source = feedSource{store: store}

	refreshKey := cfg.Keys.Bindings.Refresh
	articles, err := pulllist.New(pulllist.Options[*storage.Article]{
		OnRefresh:            a.onRefresh,
		OnLoadMore:           a.onLoadMore,
		DisablePullToRefresh: cfg.List.DisablePullToRefresh,
		DisableLoadMore:      cfg.List.DisableLoadMore,
		DisableFillPage:      cfg.List.DisableFillPage,
		KeyExtractor:         func(article *storage.Article, _ int) string { return article.ID },
		RenderRow:            a.renderRow,
		RowHeight:            2,
		EmptyText:            cfg.List.EmptyText,
		RefreshingText:       MsgRefreshing,
		LoadingText:          cfg.List.LoadingText,
		NoMoreText:           cfg.List.NoMoreText,
		Title:                a.source.Title(),
		Throttle:             cfg.List.Throttle,
		EndReachedThreshold:  cfg.List.EndReachedThreshold,
		Keys: pulllist.KeyMap{
			Refresh: key.NewBinding(
				key.WithKeys(refreshKey, cfg.Keys.Modifier+"+"+refreshKey),
				key.WithHelp(refreshKey, "refresh"),
			),
		},
		// The first page is requested by Init.
		Refreshing: true,
	})
	if err != nil {
		return nil, err
	}
	a.articles = articles

	feedList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	feedList.Title = "› feeds"
	feedList.SetShowStatusBar(false)
	feedList.SetFilteringEnabled(true)
	feedList.SetShowHelp(false)
	feedList.KeyMap.Quit.SetEnabled(false)
	a.feedList = feedList

	ti := textinput.New()
	ti.Placeholder = "Enter feed URL..."
	a.textInput = ti

	si := textinput.New()
	si.Placeholder = "Search articles..."
	si.CharLimit = maxSearchLength
	a.searchInput = si

	a.viewport = viewport.New(0, 0)
	a.keyHandler = NewKeyHandler(a, cfg)

	return a, nil
}

// Close stops the list's timers.
func (a *App) Close() {
	a.articles.Close()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.articles.Init(), a.loadPage(0, true), a.loadFeeds())
}

// onRefresh starts a new generation, so a load-more page still in flight
// is dropped when it lands.
func (a *App) onRefresh() tea.Cmd {
	a.gen++
	if a.reloadOnly {
		a.reloadOnly = false
		return a.loadPage(0, true)
	}
	a.setStatus(MsgRefreshing, StatusInfo)
	return a.refreshFeeds()
}

func (a *App) onLoadMore() tea.Cmd {
	return a.loadPage(a.next, false)
}

// switchSource points the list at a new source and reloads it from the
// first page without touching the network.
func (a *App) switchSource(src articleSource) tea.Cmd {
	a.gen++
	a.source = src
	a.loaded = nil
	a.next = 0
	a.total = 0

	a.articles.EndLoadMore(false)
	a.articles.EndRefresh()
	a.articles.SetDataSource([]*storage.Article{})
	a.articles.SetTitle(src.Title())

	a.reloadOnly = true
	return a.articles.BeginRefresh()
}

func (a *App) applyPage(msg pageLoadedMsg) {
	if msg.gen != a.gen {
		return
	}

	if msg.refresh {
		if msg.err != nil {
			a.setError(msg.err)
		} else {
			a.loaded = msg.page.articles
			a.next = msg.page.next
			a.total = msg.page.total
			a.articles.SetDataSource(a.loaded)
		}
		a.articles.EndRefresh()
		a.articles.EndLoadMore(msg.err == nil && !msg.page.hasMore)
		return
	}

	if msg.err != nil {
		a.setError(msg.err)
		a.articles.EndLoadMore(false)
		return
	}
	a.loaded = append(a.loaded, msg.page.articles...)
	a.next = msg.page.next
	a.total = msg.page.total
	a.articles.SetDataSource(a.loaded)
	a.articles.EndLoadMore(!msg.page.hasMore)
}

func (a *App) replaceArticle(updated *storage.Article) {
	for i, article := range a.loaded {
		if article.ID == updated.ID {
			a.loaded[i] = updated
		}
	}
	a.articles.SetDataSource(a.loaded)
	if a.currentArticle != nil && a.currentArticle.ID == updated.ID {
		a.currentArticle = updated
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := min(max((a.width*9)/10, 40), 120)
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, a.articles.FillPage()

	case tea.KeyMsg:
		a.clearStatus()
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		switch a.view {
		case ViewArticles:
			_, cmd = a.articles.Update(msg)
		case ViewReader:
			a.viewport, cmd = a.viewport.Update(msg)
		}
		return a, cmd

	case feedsLoadedMsg:
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.setFeeds(msg.feeds)
		return a, nil

	case pageLoadedMsg:
		a.applyPage(msg)
		if msg.err != nil {
			return a, nil
		}
		return a, a.articles.FillPage()

	case refreshedMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.applyPage(msg.page)
		switch {
		case msg.err != nil:
			a.setError(wrapErr("refreshing", msg.err))
		case msg.result.Err() != nil:
			a.setStatus(MsgRefreshSummary(msg.result.Updated, msg.result.Added, len(msg.result.Errors), a.docCount()), StatusWarn)
		case msg.page.err == nil:
			a.setStatus(MsgRefreshSummary(msg.result.Updated, msg.result.Added, 0, a.docCount()), StatusSuccess)
		}
		if msg.page.err != nil {
			return a, a.loadFeeds()
		}
		return a, tea.Batch(a.loadFeeds(), a.articles.FillPage())

	case articleRenderedMsg:
		if a.view == ViewReader && a.currentArticle != nil && a.currentArticle.ID == msg.id {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
			a.clearStatus()
		}
		return a, nil

	case feedAddedMsg:
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.view = ViewArticles
		a.setStatus(MsgAddedFeed(msg.feed.DisplayTitle(), msg.count), StatusSuccess)
		return a, tea.Batch(a.loadFeeds(), a.switchSource(a.source))

	case feedDeletedMsg:
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		deleted := a.feedToDelete
		a.feedToDelete = nil
		a.view = ViewFeeds
		a.setStatus(MsgFeedDeleted, StatusSuccess)

		src := a.source
		if fs, ok := src.(feedSource); ok && deleted != nil && fs.feedID() == deleted.ID {
			src = feedSource{store: a.store}
		}
		return a, tea.Batch(a.loadFeeds(), a.switchSource(src))

	case readToggledMsg:
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.replaceArticle(msg.article)
		return a, nil

	case errorMsg:
		a.setError(msg.err)
		return a, nil
	}

	// Spinner ticks and other component messages.
	var cmds []tea.Cmd
	_, cmd := a.articles.Update(msg)
	cmds = append(cmds, cmd)
	switch a.view {
	case ViewAddFeed:
		a.textInput, cmd = a.textInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewArticles:
		if a.searching {
			a.searchInput, cmd = a.searchInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	bodyHeight := max(height-2, 1)
	listHeight := bodyHeight
	if a.searching {
		listHeight = max(bodyHeight-4, 1)
	}
	a.articles.SetSize(width, listHeight)
	a.feedList.SetSize(width, bodyHeight)
	a.viewport.Width = width
	a.viewport.Height = max(bodyHeight-3, 1)

	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = width
	}
	a.textInput.Width = inputWidth
	a.searchInput.Width = inputWidth
}

func (a *App) setFeeds(feeds []*storage.Feed) {
	a.feeds = feeds
	a.feedTitles = make(map[string]string, len(feeds))
	items := make([]list.Item, 0, len(feeds)+1)
	items = append(items, feedItem{})
	for _, f := range feeds {
		a.feedTitles[f.ID] = f.DisplayTitle()
		items = append(items, feedItem{feed: f})
	}
	a.feedList.SetItems(items)
}

func (a *App) docCount() int {
	if a.index == nil {
		return -1
	}
	n, err := a.index.DocCount()
	if err != nil {
		return -1
	}
	return int(n)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
	a.err = nil
}

func (a *App) setError(err error) {
	a.err = err
	a.status = ""
}

func (a *App) clearStatus() {
	a.status = ""
	a.err = nil
}

func (a *App) renderRow(article *storage.Article, _ int, selected bool) string {
	width := max(a.width-4, 20)

	marker := "  "
	titleStyle := ReadItemStyle
	if !article.Read {
		marker = "● "
		titleStyle = UnreadItemStyle
	}
	title := titleStyle.Render(marker + truncateEnd(article.Title, width-2))

	var meta []string
	if name := a.feedTitles[article.FeedID]; name != "" {
		meta = append(meta, name)
	}
	if !article.Published.IsZero() {
		meta = append(meta, article.Published.Format("Jan 2, 15:04"))
	}
	sub := TimeStyle.Render("  " + truncateEnd(strings.Join(meta, " • "), width-2))

	if selected {
		bar := lipgloss.NewStyle().Foreground(AccentColor).Render("│")
		return bar + title + "\n" + bar + sub
	}
	return " " + title + "\n " + sub
}

func (a *App) View() string {
	bodyHeight := max(a.height-2, 1)

	var content string
	switch a.view {
	case ViewArticles:
		content = a.articles.View()
		if a.searching {
			frame := inputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)
			content = lipgloss.JoinVertical(lipgloss.Left, frame, HelpStyle.Render(a.searchHelp()), content)
		}

	case ViewFeeds:
		if len(a.feeds) == 0 {
			content = centered(a.width, bodyHeight, GetWelcomeMessage(a.keyHandler.modifierKey))
		} else {
			content = a.feedList.View()
		}

	case ViewReader:
		if a.loadingArticle || a.currentArticle == nil {
			content = centered(a.width, bodyHeight, MutedStyle.Render(MsgLoadingArticle))
		} else {
			header := readerHeader(a.currentArticle.Title, a.feedTitles[a.currentArticle.FeedID], a.currentArticle.Published, a.width)
			content = lipgloss.JoinVertical(lipgloss.Left, header, "", a.viewport.View())
		}

	case ViewAddFeed:
		content = centered(a.width, bodyHeight, lipgloss.JoinVertical(
			lipgloss.Center,
			TitleStyle.Render("› add feed"),
			"",
			inputFrame(a.textInput.View(), a.textInput.Focused(), a.textInput.Width),
			"",
			HelpStyle.Render("Press Enter to add, Esc to cancel"),
		))

	case ViewDeleteConfirm:
		content = a.deleteConfirmView(bodyHeight)
	}

	content = ContentWrapper(a.width, bodyHeight).Render(content)
	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) searchHelp() string {
	switch {
	case a.searchInput.Focused():
		return "Type to search • Enter/Tab: results • Esc: back"
	case a.articles.Len() > 0:
		return MsgResultsCount(a.total) + " • ↑↓: navigate • Enter: open • Tab: search box • Esc: back"
	default:
		return MsgNoResults + " • Tab: search box • Esc: back"
	}
}

func (a *App) deleteConfirmView(height int) string {
	name := "Unknown Feed"
	if a.feedToDelete != nil {
		name = a.feedToDelete.DisplayTitle()
	}

	modalWidth := (a.width * 4) / 5
	if modalWidth < 20 {
		modalWidth = max(a.width-4, 15)
	}

	return centered(a.width, height, lipgloss.JoinVertical(
		lipgloss.Center,
		ErrorMessageStyle.Render("⚠ Delete Feed"),
		"",
		ModalTextStyle.Width(modalWidth).Align(lipgloss.Center).Render("Delete this feed?"),
		"",
		ModalHighlightStyle.Width(modalWidth).Align(lipgloss.Center).Render(truncateMiddle(name, modalWidth-4)),
		"",
		MutedStyle.Render("This removes all articles."),
		"",
		HelpStyle.Render("Enter: confirm • Esc: cancel"),
	))
}

func (a *App) statusBar() string {
	bar := StatusBarStyle.Width(a.width)

	if a.err != nil {
		return bar.Render(StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}
	if a.status != "" {
		return bar.Render(statusStyle(a.statusKind).Render(a.status))
	}
	return bar.Render(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • "))
}

// feedItem is one row of the feed picker. A nil feed stands for all feeds.
type feedItem struct {
	feed *storage.Feed
}

func (i feedItem) Title() string {
	if i.feed == nil {
		return "All articles"
	}
	return i.feed.DisplayTitle()
}

func (i feedItem) Description() string {
	if i.feed == nil {
		return "Every stored article, newest first"
	}
	return truncateMiddle(i.feed.URL, 60)
}

func (i feedItem) FilterValue() string { return i.Title() }
