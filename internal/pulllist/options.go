package pulllist

import (
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultThrottle            = 100 * time.Millisecond
	DefaultEndReachedThreshold = 0.1

	DefaultEmptyText      = "No data"
	DefaultRefreshingText = "Loading"
	DefaultLoadingText    = "Loading..."
	DefaultNoMoreText     = "No more data"
)

var ErrNoRenderRow = errors.New("pulllist: RenderRow is required")

// Options configures a Model. Only RenderRow is required.
type Options[T any] struct {
	// OnRefresh and OnLoadMore run on the Update goroutine right after the
	// matching transition. The returned command does the actual fetching and
	// must eventually lead to EndRefresh / EndLoadMore.
	OnRefresh  func() tea.Cmd
	OnLoadMore func() tea.Cmd

	DisablePullToRefresh bool
	DisableLoadMore      bool
	// DisableFillPage stops FillPage from loading more when every row fits
	// on the visible page.
	DisableFillPage bool

	// DataSource is the initial raw data source. See datasource.Classify for
	// the accepted shapes.
	DataSource any

	// KeyExtractor gives each row a stable key. Defaults to the row index.
	KeyExtractor func(item T, index int) string
	RenderRow    func(item T, index int, selected bool) string
	// RowHeight is the number of lines RenderRow produces. Defaults to 1.
	RowHeight int

	// RenderEmpty replaces the default empty view. It receives the space
	// available to the list body.
	RenderEmpty func(width, height int) string
	EmptyText   string
	// EmptyStyle is layered over the default empty style.
	EmptyStyle lipgloss.Style

	RefreshingText string
	LoadingText    string
	NoMoreText     string
	Title          string
	ShowHelp       bool

	Throttle            time.Duration
	EndReachedThreshold float64
	Keys                KeyMap

	// Initial status flags. Refreshing wins if both are set.
	Refreshing  bool
	LoadingMore bool
}

func (o *Options[T]) setDefaults() error {
	if o.RenderRow == nil {
		return ErrNoRenderRow
	}
	if o.KeyExtractor == nil {
		o.KeyExtractor = func(_ T, index int) string { return strconv.Itoa(index) }
	}
	if o.RowHeight <= 0 {
		o.RowHeight = 1
	}
	if o.Throttle <= 0 {
		o.Throttle = DefaultThrottle
	}
	if o.EndReachedThreshold <= 0 || o.EndReachedThreshold > 1 {
		o.EndReachedThreshold = DefaultEndReachedThreshold
	}
	if o.EmptyText == "" {
		o.EmptyText = DefaultEmptyText
	}
	if o.RefreshingText == "" {
		o.RefreshingText = DefaultRefreshingText
	}
	if o.LoadingText == "" {
		o.LoadingText = DefaultLoadingText
	}
	if o.NoMoreText == "" {
		o.NoMoreText = DefaultNoMoreText
	}
	if isZeroKeyMap(o.Keys) {
		o.Keys = DefaultKeyMap()
	}
	o.EmptyStyle = o.EmptyStyle.Inherit(emptyStyle)
	return nil
}
