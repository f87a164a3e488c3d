// Package pager holds the refresh / load-more state machine behind an
// infinite list.
//
// A Machine is not safe for concurrent use; drive it from a single event loop
// (the bubbletea Update goroutine in this module). Callbacks run after the
// transition is committed, so they always observe the new state. The machine
// never times out: it stays busy until the matching End call arrives.
package pager

import (
	"github.com/pders01/pullfeed/internal/datasource"
	"github.com/pders01/pullfeed/internal/debuglog"
)

// Config carries the optional callbacks and the initial status flags.
type Config struct {
	OnRefresh  func()
	OnLoadMore func()

	// Initial flags as a host may supply them. If both are set the machine
	// starts in Refreshing.
	Refreshing  bool
	LoadingMore bool
}

// Machine owns the list items and their refresh / load-more status.
type Machine[T any] struct {
	state      State
	items      []T
	onRefresh  func()
	onLoadMore func()
}

// New builds a machine whose items are normalized from raw.
func New[T any](raw any, cfg Config) *Machine[T] {
	return &Machine[T]{
		state:      initialState(cfg.Refreshing, cfg.LoadingMore),
		items:      datasource.Normalize[T](raw),
		onRefresh:  cfg.OnRefresh,
		onLoadMore: cfg.OnLoadMore,
	}
}

func (m *Machine[T]) State() State        { return m.state }
func (m *Machine[T]) Items() []T          { return m.items }
func (m *Machine[T]) Len() int            { return len(m.items) }
func (m *Machine[T]) IsRefreshing() bool  { return m.state.IsRefreshing() }
func (m *Machine[T]) IsLoadingMore() bool { return m.state.IsLoadingMore() }
func (m *Machine[T]) NoMoreData() bool    { return m.state.NoMoreData }

// BeginRefresh starts a refresh and invokes OnRefresh. It reports whether the
// transition happened.
func (m *Machine[T]) BeginRefresh() bool {
	next, ok := m.state.BeginRefresh()
	if !ok {
		debuglog.Debugf("pager: refresh ignored, state=%s", m.state.Phase)
		return false
	}
	m.state = next
	debuglog.Debugf("pager: refresh started")
	if m.onRefresh != nil {
		m.onRefresh()
	}
	return true
}

// EndRefresh finishes a refresh. Items and NoMoreData are left alone; callers
// supply fresh data through UpdateDataSource.
func (m *Machine[T]) EndRefresh() bool {
	next, ok := m.state.EndRefresh()
	if !ok {
		return false
	}
	m.state = next
	debuglog.Debugf("pager: refresh finished, items=%d", len(m.items))
	return true
}

// BeginLoadMore starts fetching the next page and invokes OnLoadMore. Calls
// while refreshing, loading or exhausted are ignored.
func (m *Machine[T]) BeginLoadMore() bool {
	next, ok := m.state.BeginLoadMore()
	if !ok {
		debuglog.Debugf("pager: load-more ignored, state=%s noMoreData=%t", m.state.Phase, m.state.NoMoreData)
		return false
	}
	m.state = next
	debuglog.Debugf("pager: load-more started, items=%d", len(m.items))
	if m.onLoadMore != nil {
		m.onLoadMore()
	}
	return true
}

// EndLoadMore finishes a load-more and records whether the source is
// exhausted. Safe to call when nothing is loading.
func (m *Machine[T]) EndLoadMore(noMoreData bool) {
	m.state = m.state.EndLoadMore(noMoreData)
	debuglog.Debugf("pager: load-more finished, items=%d noMoreData=%t", len(m.items), noMoreData)
}

// UpdateDataSource replaces the items wholesale. Status is unchanged.
func (m *Machine[T]) UpdateDataSource(raw any) {
	m.items = datasource.Normalize[T](raw)
}
