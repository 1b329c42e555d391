package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasm-codegen/driver"
	"github.com/wippyai/wasm-codegen/gen"
	"github.com/wippyai/wasm-codegen/manifest"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	listingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <manifest.yaml>",
		Short: "Encode a manifest and browse the annotated listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("view needs a terminal; use encode --dump instead")
			}
			return runView(args[0])
		},
	}
}

func runView(path string) error {
	mod, err := manifest.Load(path)
	if err != nil {
		return err
	}

	// The per-write trace doubles as the viewer content: the same
	// listing the encode --verbose flag streams.
	var listing bytes.Buffer
	enc := gen.New()
	enc.Trace = &listing
	if err := driver.Walk(mod, enc); err != nil {
		return err
	}

	m := &viewModel{
		title:   fmt.Sprintf("%s (%d bytes)", path, len(enc.Bytes())),
		content: listing.String(),
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type viewModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(listingStyle.Render(m.content))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *viewModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m *viewModel) headerView() string {
	return titleStyle.Render(m.title)
}

func (m *viewModel) footerView() string {
	return helpStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  q quit", m.viewport.ScrollPercent()*100))
}
