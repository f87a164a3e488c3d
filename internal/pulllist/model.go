// Package pulllist is a bubbletea list with pull-to-refresh at the top and
// throttled load-more at the bottom. Rows live in a bubbles/list; status lives
// in a pager.Machine.
package pulllist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pullfeed/internal/pager"
	"github.com/pders01/pullfeed/internal/throttle"
)

// RefreshDoneMsg ends a refresh. A non-nil Raw replaces the data source first.
type RefreshDoneMsg struct {
	Raw any
}

// LoadMoreDoneMsg ends a load-more. A non-nil Raw replaces the data source
// first.
type LoadMoreDoneMsg struct {
	Raw        any
	NoMoreData bool
}

// DataSourceMsg replaces the data source without touching status.
type DataSourceMsg struct {
	Raw any
}

// Model is a bubbletea list with pull-to-refresh at the top and load-more at
// the bottom.
type Model[T any] struct {
	opts    Options[T]
	machine *pager.Machine[T]
	gate    *throttle.Gate
	list    list.Model
	spinner spinner.Model
	pending []tea.Cmd
	width   int
	height  int
}

// New builds a Model from opts. It fails only when RenderRow is missing.
func New[T any](opts Options[T]) (*Model[T], error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	m := &Model[T]{
		opts:    opts,
		gate:    throttle.New(opts.Throttle),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(indicatorStyle)),
	}

	m.machine = pager.New[T](opts.DataSource, pager.Config{
		OnRefresh:   func() { m.enqueue(m.opts.OnRefresh) },
		OnLoadMore:  func() { m.enqueue(m.opts.OnLoadMore) },
		Refreshing:  opts.Refreshing,
		LoadingMore: opts.LoadingMore,
	})

	l := list.New(nil, delegate[T]{render: opts.RenderRow, height: opts.RowHeight}, 0, 0)
	l.Title = opts.Title
	l.SetShowTitle(opts.Title != "")
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(opts.ShowHelp)
	l.InfiniteScrolling = false
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		if m.opts.DisablePullToRefresh {
			return nil
		}
		return []key.Binding{m.opts.Keys.Refresh}
	}
	m.list = l
	m.syncItems()

	return m, nil
}

// Init starts the spinner when the list begins busy.
func (m *Model[T]) Init() tea.Cmd {
	if m.machine.State().Busy() {
		return m.spinner.Tick
	}
	return nil
}

// Update applies completion messages and routes keys and mouse events.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, m.update(msg)
}

func (m *Model[T]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.machine.State().Busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case RefreshDoneMsg:
		if msg.Raw != nil {
			m.SetDataSource(msg.Raw)
		}
		m.EndRefresh()
		return m.FillPage()

	case LoadMoreDoneMsg:
		if msg.Raw != nil {
			m.SetDataSource(msg.Raw)
		}
		m.EndLoadMore(msg.NoMoreData)
		return m.FillPage()

	case DataSourceMsg:
		m.SetDataSource(msg.Raw)
		return m.FillPage()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.opts.Keys.Refresh) {
		return m.pull()
	}

	atTop := m.list.Index() == 0
	if atTop && key.Matches(msg, m.list.KeyMap.CursorUp) {
		return m.pull()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if key.Matches(msg, m.list.KeyMap.CursorDown, m.list.KeyMap.NextPage, m.list.KeyMap.GoToEnd) {
		return tea.Batch(cmd, m.checkEndReached())
	}
	return cmd
}

func (m *Model[T]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.list.Index() == 0 {
			return m.pull()
		}
		m.list.CursorUp()
	case tea.MouseButtonWheelDown:
		m.list.CursorDown()
		return m.checkEndReached()
	}
	return nil
}

func (m *Model[T]) pull() tea.Cmd {
	if m.opts.DisablePullToRefresh {
		return nil
	}
	return m.BeginRefresh()
}

func (m *Model[T]) checkEndReached() tea.Cmd {
	if !m.nearEnd() {
		return nil
	}
	return m.EndReached()
}

// nearEnd reports whether the cursor sits within the end-reached threshold
// of the last row. The threshold is a fraction of one visible page.
func (m *Model[T]) nearEnd() bool {
	n := len(m.list.Items())
	if n == 0 {
		return false
	}
	margin := int(m.opts.EndReachedThreshold * float64(m.list.Paginator.PerPage))
	return m.list.Index() >= n-1-margin
}

// EndReached is the throttled end-of-list signal. Signals inside the
// throttle window are dropped.
func (m *Model[T]) EndReached() tea.Cmd {
	if m.opts.DisableLoadMore {
		return nil
	}
	started := false
	m.gate.Do(func() { started = m.machine.BeginLoadMore() })
	return m.flush(started)
}

// FillPage starts a load-more when every row fits on the visible page. The
// machine refuses it while busy or exhausted.
func (m *Model[T]) FillPage() tea.Cmd {
	if m.opts.DisableLoadMore || m.opts.DisableFillPage || m.height <= 0 {
		return nil
	}
	n := len(m.list.Items())
	if n == 0 || n > m.list.Paginator.PerPage {
		return nil
	}
	return m.BeginLoadMore()
}

// BeginRefresh starts a refresh and returns the OnRefresh command. It is a
// no-op while a refresh is already running.
func (m *Model[T]) BeginRefresh() tea.Cmd {
	return m.flush(m.machine.BeginRefresh())
}

// EndRefresh finishes a refresh. Items and NoMoreData are left alone.
func (m *Model[T]) EndRefresh() {
	m.machine.EndRefresh()
}

// BeginLoadMore starts a load-more without going through the throttle.
func (m *Model[T]) BeginLoadMore() tea.Cmd {
	return m.flush(m.machine.BeginLoadMore())
}

// EndLoadMore finishes a load-more and records whether the source is
// exhausted.
func (m *Model[T]) EndLoadMore(noMoreData bool) {
	m.machine.EndLoadMore(noMoreData)
}

// SetDataSource replaces the items with the normalized raw source.
func (m *Model[T]) SetDataSource(raw any) {
	m.machine.UpdateDataSource(raw)
	m.syncItems()
}

// Close releases the throttle timer. Further end-of-list signals are
// ignored.
func (m *Model[T]) Close() {
	m.gate.Close()
}

func (m *Model[T]) enqueue(fn func() tea.Cmd) {
	if fn == nil {
		return
	}
	if cmd := fn(); cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

// flush drains the commands produced by callbacks. started starts the
// spinner for a transition that just happened.
func (m *Model[T]) flush(started bool) tea.Cmd {
	cmds := m.pending
	m.pending = nil
	if started {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// syncItems rebuilds the list rows from the machine, keeping the cursor on
// the previously selected key when it survives.
func (m *Model[T]) syncItems() {
	var selectedKey string
	if r, ok := m.list.SelectedItem().(row[T]); ok {
		selectedKey = r.key
	}

	items := m.machine.Items()
	rows := make([]list.Item, len(items))
	cursor := -1
	for i, item := range items {
		k := m.opts.KeyExtractor(item, i)
		rows[i] = row[T]{item: item, key: k}
		if cursor < 0 && selectedKey != "" && k == selectedKey {
			cursor = i
		}
	}
	m.list.SetItems(rows)

	switch {
	case cursor >= 0:
		m.list.Select(cursor)
	case len(rows) == 0:
		m.list.ResetSelected()
	case m.list.Index() >= len(rows):
		m.list.Select(len(rows) - 1)
	}
}

func (m *Model[T]) SetTitle(title string) {
	m.opts.Title = title
	m.list.Title = title
	m.list.SetShowTitle(title != "")
}

func (m *Model[T]) SetEmptyText(text string) {
	if text == "" {
		text = DefaultEmptyText
	}
	m.opts.EmptyText = text
}

// SetSize gives the list all lines except the refresh indicator and footer.
func (m *Model[T]) SetSize(width, height int) {
	m.width, m.height = width, height
	m.list.SetSize(width, max(height-2, 1))
}

func (m *Model[T]) State() pager.State { return m.machine.State() }
func (m *Model[T]) Items() []T         { return m.machine.Items() }
func (m *Model[T]) Len() int           { return m.machine.Len() }
func (m *Model[T]) Index() int         { return m.list.Index() }

func (m *Model[T]) Select(index int) { m.list.Select(index) }

func (m *Model[T]) SelectedItem() (T, bool) {
	r, ok := m.list.SelectedItem().(row[T])
	return r.item, ok
}

// Footer reports the footer variant for the current state.
func (m *Model[T]) Footer() Footer {
	return FooterFor(m.machine.State(), m.machine.Len(), m.opts.DisableLoadMore)
}

// ShowingEmpty reports whether View renders the empty view.
func (m *Model[T]) ShowingEmpty() bool {
	return ShowEmpty(m.machine.State(), m.machine.Len())
}

// View renders the rows between the refresh indicator and the footer.
func (m *Model[T]) View() string {
	state := m.machine.State()

	top := ""
	if state.IsRefreshing() {
		top = indicatorStyle.Render(m.spinner.View() + " " + m.opts.RefreshingText)
	}

	var body string
	switch {
	case m.ShowingEmpty():
		body = m.renderEmpty()
	case m.machine.Len() == 0:
		// Busy with nothing to show yet; keep the body blank.
		body = lipgloss.NewStyle().Height(max(m.height-2, 1)).Render("")
	default:
		body = m.list.View()
	}

	var footer string
	switch m.Footer() {
	case FooterLoading:
		footer = footerStyle.Render(m.spinner.View() + " " + m.opts.LoadingText)
	case FooterNoMoreData:
		footer = footerStyle.Render(m.opts.NoMoreText)
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, body, footer)
}

func (m *Model[T]) renderEmpty() string {
	h := max(m.height-2, 1)
	if m.opts.RenderEmpty != nil {
		return m.opts.RenderEmpty(m.width, h)
	}
	return m.opts.EmptyStyle.Width(m.width).Height(h).Render(m.opts.EmptyText)
}
