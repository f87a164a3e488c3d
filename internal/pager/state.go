package pager

// Phase is what the list is busy with. Refreshing and loading more are
// separate phases, so the two can never be active together.
type Phase int

const (
	Idle Phase = iota
	Refreshing
	LoadingMore
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	case LoadingMore:
		return "loading-more"
	default:
		return "unknown"
	}
}

// State is the list status. NoMoreData is sticky until the next refresh.
type State struct {
	Phase      Phase
	NoMoreData bool
}

func (s State) IsRefreshing() bool  { return s.Phase == Refreshing }
func (s State) IsLoadingMore() bool { return s.Phase == LoadingMore }

// Busy reports whether a fetch is in flight.
func (s State) Busy() bool { return s.Phase != Idle }

// BeginRefresh moves to Refreshing and clears NoMoreData. It refuses when a
// refresh is already running. A pending load-more is superseded.
func (s State) BeginRefresh() (State, bool) {
	if s.Phase == Refreshing {
		return s, false
	}
	return State{Phase: Refreshing}, true
}

// EndRefresh returns to Idle. It refuses unless refreshing.
func (s State) EndRefresh() (State, bool) {
	if s.Phase != Refreshing {
		return s, false
	}
	s.Phase = Idle
	return s, true
}

// BeginLoadMore moves to LoadingMore. It refuses while refreshing, while
// already loading more, and once the source is exhausted.
func (s State) BeginLoadMore() (State, bool) {
	if s.Phase != Idle || s.NoMoreData {
		return s, false
	}
	s.Phase = LoadingMore
	return s, true
}

// EndLoadMore leaves LoadingMore (if active) and records whether the source
// is exhausted. It always applies.
func (s State) EndLoadMore(noMoreData bool) State {
	if s.Phase == LoadingMore {
		s.Phase = Idle
	}
	s.NoMoreData = noMoreData
	return s
}

// initialState builds a state from independently supplied flags. Refreshing
// wins when both are set.
func initialState(refreshing, loadingMore bool) State {
	switch {
	case refreshing:
		return State{Phase: Refreshing}
	case loadingMore:
		return State{Phase: LoadingMore}
	default:
		return State{Phase: Idle}
	}
}
