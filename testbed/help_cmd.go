package main

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/tui/components/help"
)

func newHelpCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "help",
		Short: "Render the help overlay component",
		RunE: func(cmd *cobra.Command, args []string) error {
			harness := &helpTestModel{testbedModel: newTestbedModel(*opts)}
			harness.ensureSizing()
			program := tea.NewProgram(harness, tea.WithAltScreen())
			_, err := program.Run()
			return err
		},
	}
	return cmd
}

type helpTestModel struct {
	testbedModel
	overlay *help.Model
}

func (m *helpTestModel) Init() tea.Cmd {
	m.ensureSizing()
	return nil
}

func (m *helpTestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if _, cmd := m.testbedModel.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.ensureSizing()
	case tea.KeyPressMsg:
		if v.String() == "esc" {
			cmds = append(cmds, tea.Quit)
		}
	}

	if m.overlay != nil {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *helpTestModel) View() string {
	if m.overlay == nil {
		return m.composeView("help component unavailable")
	}
	m.ensureSizing()
	return m.composeView(m.overlay.View())
}

func (m *helpTestModel) ensureSizing() {
	m.ensureLayout()
	width := m.innerWidth
	height := m.innerHeight
	if width <= 0 {
		width = 72
	}
	if height <= 0 {
		height = 18
	}
	if m.overlay == nil {
		m.overlay = help.New(width, height)
		return
	}
	m.overlay.SetSize(width, height)
}
