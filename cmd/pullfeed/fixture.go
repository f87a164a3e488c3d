package main

import (
	"encoding/json"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/pullfeed/internal/datasource"
	"github.com/pders01/pullfeed/internal/fixture"
	"github.com/pders01/pullfeed/internal/pulllist"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print how a .json or .toml data source normalizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := fixture.Load(args[0])
			if err != nil {
				return err
			}
			return printInspection(cmd.OutOrStdout(), raw)
		},
	}
}

func printInspection(w io.Writer, raw any) error {
	resolved := datasource.Classify[any](raw)
	items := resolved.Items()

	fmt.Fprintf(w, "kind:  %s\n", resolved.Kind)
	fmt.Fprintf(w, "items: %d\n", len(items))
	for i, item := range items {
		fmt.Fprintf(w, "%4d  %s\n", i, formatItem(item))
	}
	return nil
}

// formatItem renders one row compactly, falling back to %v for values JSON
// cannot encode.
func formatItem(item any) string {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%v", item)
	}
	return string(b)
}

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>",
		Short: "Browse a .json or .toml data source in the list component",
		Long: "Browse a data source in the list component. Pull to refresh " +
			"re-reads the file; the end of the list reports no more data.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newFixtureModel(args[0])
			if err != nil {
				return err
			}
			defer m.list.Close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}
}

// fixtureModel shows a fixture file in a pulllist. Refresh re-reads the
// file, so edits show up without restarting.
type fixtureModel struct {
	path string
	list *pulllist.Model[any]
	err  error
}

func newFixtureModel(path string) (*fixtureModel, error) {
	raw, err := fixture.Load(path)
	if err != nil {
		return nil, err
	}

	m := &fixtureModel{path: path}
	list, err := pulllist.New(pulllist.Options[any]{
		DataSource: raw,
		Title:      path,
		ShowHelp:   true,
		RenderRow: func(item any, index int, selected bool) string {
			prefix := "  "
			if selected {
				prefix = "> "
			}
			return fmt.Sprintf("%s%3d  %s", prefix, index, formatItem(item))
		},
		OnRefresh:  m.reload,
		OnLoadMore: m.exhausted,
	})
	if err != nil {
		return nil, err
	}
	m.list = list
	return m, nil
}

func (m *fixtureModel) reload() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		raw, err := fixture.Load(path)
		if err != nil {
			return fixtureErrMsg{err: err}
		}
		return pulllist.RefreshDoneMsg{Raw: raw}
	}
}

// exhausted answers every load-more: a file has no next page.
func (m *fixtureModel) exhausted() tea.Cmd {
	return func() tea.Msg {
		return pulllist.LoadMoreDoneMsg{NoMoreData: true}
	}
}

type fixtureErrMsg struct {
	err error
}

func (m *fixtureModel) Init() tea.Cmd {
	return m.list.Init()
}

func (m *fixtureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, m.list.FillPage()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		m.err = nil
	case fixtureErrMsg:
		m.err = msg.err
		m.list.EndRefresh()
		return m, nil
	}

	_, cmd := m.list.Update(msg)
	return m, cmd
}

func (m *fixtureModel) View() string {
	status := ""
	if m.err != nil {
		status = "error: " + m.err.Error()
	}
	return m.list.View() + "\n" + status
}
