package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
)

type options struct {
	full   bool
	width  int
	height int
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "testbed",
		Short: "Run the TUI testbed harness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.full, "full", false, "use the full terminal window")
	rootCmd.PersistentFlags().IntVar(&opts.width, "width", 80, "window width when not fullscreen")
	rootCmd.PersistentFlags().IntVar(&opts.height, "height", 20, "window height when not fullscreen")

	rootCmd.AddCommand(newCalendarCmd(&opts))
	rootCmd.AddCommand(newHelpCmd(&opts))
	rootCmd.AddCommand(newSchedulerCmd(&opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	base := newTestbedModel(opts)
	p := tea.NewProgram(&base, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// testbedModel frames a single component in the middle of the terminal.
type testbedModel struct {
	fullscreen bool
	maxWidth   int
	maxHeight  int

	termWidth  int
	termHeight int

	focused bool

	frameWidth  int
	frameHeight int
	innerWidth  int
	innerHeight int
	layoutDirty bool
}

func newTestbedModel(opts options) testbedModel {
	return testbedModel{
		fullscreen:  opts.full,
		maxWidth:    opts.width,
		maxHeight:   opts.height,
		layoutDirty: true,
	}
}

func (m *testbedModel) Init() tea.Cmd { return nil }

func (m *testbedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.layoutDirty = true
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.focused = !m.focused
		}
	}
	return m, nil
}

func (m *testbedModel) View() string {
	content := lipgloss.NewStyle().
		Padding(1, 2).
		Render(
			"Testbed UI\n\n" +
				"Use this harness to iterate on components.\n\n" +
				"Press Tab to toggle focus, q to quit.",
		)
	return m.composeView(content)
}

func (m *testbedModel) composeView(content string) string {
	if m.termWidth == 0 || m.termHeight == 0 {
		return "Resizing…"
	}
	m.ensureLayout()
	return m.placeFrame(m.renderFrame(content))
}

func (m *testbedModel) renderFrame(content string) string {
	borderStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if m.focused {
		borderStyle = borderStyle.BorderForeground(lipgloss.Color("#39FF14"))
	} else {
		borderStyle = borderStyle.BorderForeground(lipgloss.Color("240"))
	}

	contentView := lipgloss.NewStyle().
		Width(m.innerWidth).
		Height(m.innerHeight).
		Align(lipgloss.Left, lipgloss.Top).
		Render(content)

	return borderStyle.Width(m.frameWidth).Height(m.frameHeight).Render(contentView)
}

func (m *testbedModel) placeFrame(frame string) string {
	return lipgloss.Place(
		m.termWidth,
		m.termHeight,
		lipgloss.Center,
		lipgloss.Top,
		frame,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m *testbedModel) ensureLayout() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	if !m.layoutDirty && m.frameWidth != 0 && m.frameHeight != 0 {
		return
	}

	width := clamp(m.maxWidth, 20, m.termWidth-4)
	height := clamp(m.maxHeight, minFrameHeight, m.termHeight)
	if m.fullscreen {
		width = clamp(m.termWidth, 20, m.termWidth)
		height = clamp(m.termHeight, minFrameHeight, m.termHeight)
	}

	m.frameWidth = width
	m.frameHeight = height
	m.innerWidth = max(1, width-2)
	m.innerHeight = max(1, height-2)
	m.layoutDirty = false
}

func clamp(value, lo, hi int) int {
	if hi <= 0 {
		return lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

const minFrameHeight = 12
