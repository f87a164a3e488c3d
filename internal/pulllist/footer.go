package pulllist

import "github.com/pders01/pullfeed/internal/pager"

// Footer is what the list shows below its last row.
type Footer int

const (
	FooterNone Footer = iota
	FooterLoading
	FooterNoMoreData
)

func (f Footer) String() string {
	switch f {
	case FooterNone:
		return "none"
	case FooterLoading:
		return "loading"
	case FooterNoMoreData:
		return "no-more-data"
	default:
		return "unknown"
	}
}

// FooterFor picks the footer variant. Rules apply in order: load-more
// disabled, refreshing, loading the next page, any items shown. A non-empty
// list that is not loading always ends in the "no more data" label.
func FooterFor(s pager.State, count int, loadMoreDisabled bool) Footer {
	switch {
	case loadMoreDisabled:
		return FooterNone
	case s.IsRefreshing():
		return FooterNone
	case s.IsLoadingMore() && !s.NoMoreData:
		return FooterLoading
	case count > 0:
		return FooterNoMoreData
	default:
		return FooterNone
	}
}

// ShowEmpty reports whether the empty view replaces the list body. It stays
// hidden while any fetch is in flight.
func ShowEmpty(s pager.State, count int) bool {
	return count == 0 && !s.Busy()
}
