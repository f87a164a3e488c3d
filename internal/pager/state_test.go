package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		apply  func(State) (State, bool)
		want   State
		wantOK bool
	}{
		{"refresh from idle", State{}, State.BeginRefresh, State{Phase: Refreshing}, true},
		{"refresh clears exhaustion", State{NoMoreData: true}, State.BeginRefresh, State{Phase: Refreshing}, true},
		{"refresh supersedes load-more", State{Phase: LoadingMore}, State.BeginRefresh, State{Phase: Refreshing}, true},
		{"refresh while refreshing", State{Phase: Refreshing}, State.BeginRefresh, State{Phase: Refreshing}, false},
		{"end refresh", State{Phase: Refreshing}, State.EndRefresh, State{}, true},
		{"end refresh when idle", State{NoMoreData: true}, State.EndRefresh, State{NoMoreData: true}, false},
		{"end refresh while loading", State{Phase: LoadingMore}, State.EndRefresh, State{Phase: LoadingMore}, false},
		{"load-more from idle", State{}, State.BeginLoadMore, State{Phase: LoadingMore}, true},
		{"load-more while loading", State{Phase: LoadingMore}, State.BeginLoadMore, State{Phase: LoadingMore}, false},
		{"load-more while refreshing", State{Phase: Refreshing}, State.BeginLoadMore, State{Phase: Refreshing}, false},
		{"load-more when exhausted", State{NoMoreData: true}, State.BeginLoadMore, State{NoMoreData: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.apply(tt.from)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestState_EndLoadMore(t *testing.T) {
	assert.Equal(t, State{NoMoreData: true}, State{Phase: LoadingMore}.EndLoadMore(true))
	assert.Equal(t, State{}, State{Phase: LoadingMore, NoMoreData: true}.EndLoadMore(false))
	assert.Equal(t, State{Phase: Refreshing, NoMoreData: true}, State{Phase: Refreshing}.EndLoadMore(true))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "refreshing", Refreshing.String())
	assert.Equal(t, "loading-more", LoadingMore.String())
	assert.Equal(t, "unknown", Phase(42).String())
	assert.True(t, State{Phase: Refreshing}.Busy())
	assert.False(t, State{NoMoreData: true}.Busy())
}
