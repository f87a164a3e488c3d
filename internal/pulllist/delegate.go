package pulllist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// row adapts a T to list.Item.
type row[T any] struct {
	item T
	key  string
}

func (r row[T]) FilterValue() string { return r.key }

// delegate hands row rendering to the caller.
type delegate[T any] struct {
	render func(item T, index int, selected bool) string
	height int
}

func (d delegate[T]) Height() int                             { return d.height }
func (d delegate[T]) Spacing() int                            { return 0 }
func (d delegate[T]) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate[T]) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row[T])
	if !ok {
		return
	}
	fmt.Fprint(w, d.render(r.item, index, index == m.Index()))
}
