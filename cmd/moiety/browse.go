package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/moiety/codec"
	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/stack"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateSelectStack browseState = iota
	stateSelectType
	stateInputID
	stateShowResult
)

// reserved rows around the result viewport: title, heading, help.
const chromeRows = 6

type browseModel struct {
	err      error
	resolver *stack.Resolver
	render   func(stack, tag string, id uint16) (any, error)
	stacks   []string
	types    []string
	stack    string
	tag      string
	result   string
	input    textinput.Model
	output   viewport.Model
	selected int
	state    browseState
}

type typesMsg struct {
	err   error
	types []string
}

type renderedMsg struct {
	err    error
	result string
}

func newBrowseModel(a *app) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "0-65535"
	ti.Prompt = "id: "
	ti.CharLimit = 5
	ti.Width = 10
	return &browseModel{
		resolver: a.resolver,
		render:   a.render,
		stacks:   a.resolver.Stacks(),
		input:    ti,
		output:   viewport.New(80, 20),
		state:    stateSelectStack,
	}
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stacks and resources interactively",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.InvalidInput(errors.PhaseConfig, "browse needs a terminal")
			}
			p := tea.NewProgram(newBrowseModel(a), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		}),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

// loadTypes collects the resource types of every archive of the selected
// stack that opens.
func (m *browseModel) loadTypes() tea.Msg {
	files, err := m.resolver.Files(m.stack)
	if err != nil {
		return typesMsg{err: err}
	}
	seen := make(map[string]bool)
	var types []string
	for _, path := range files {
		arch, err := m.resolver.Archive(path)
		if errors.IsOpenFailure(err) {
			continue
		}
		if err != nil {
			return typesMsg{err: err}
		}
		for _, t := range arch.ResourceTypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	if len(types) == 0 {
		return typesMsg{err: errors.NotFound(errors.PhaseResolve, "archives", m.stack)}
	}
	sort.Strings(types)
	return typesMsg{types: types}
}

func (m *browseModel) renderResource() tea.Msg {
	id, err := parseID(m.input.Value())
	if err != nil {
		return renderedMsg{err: err}
	}
	v, err := m.render(m.stack, m.tag, id)
	if err != nil {
		return renderedMsg{err: err}
	}
	out, err := codec.Marshal(codec.YAML, summarize(v))
	if err != nil {
		return renderedMsg{err: err}
	}
	return renderedMsg{result: string(out)}
}

func (m *browseModel) listLen() int {
	switch m.state {
	case stateSelectStack:
		return len(m.stacks)
	case stateSelectType:
		return len(m.types)
	}
	return 0
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputID {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectStack || m.state == stateSelectType {
				if m.selected > 0 {
					m.selected--
				}
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectStack || m.state == stateSelectType {
				if m.selected < m.listLen()-1 {
					m.selected++
				}
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectStack:
				if len(m.stacks) == 0 {
					return m, nil
				}
				m.stack = m.stacks[m.selected]
				m.err = nil
				return m, m.loadTypes

			case stateSelectType:
				if len(m.types) == 0 {
					return m, nil
				}
				m.tag = m.types[m.selected]
				m.state = stateInputID
				m.input.Reset()
				return m, m.input.Focus()

			case stateInputID:
				return m, m.renderResource

			case stateShowResult:
				m.back()
				return m, m.input.Focus()
			}

		case "esc":
			switch m.state {
			case stateSelectType:
				m.state = stateSelectStack
				m.selected = indexOf(m.stacks, m.stack)
				m.types = nil
				m.err = nil
			case stateInputID:
				m.input.Blur()
				m.state = stateSelectType
				m.selected = indexOf(m.types, m.tag)
				m.err = nil
			case stateShowResult:
				m.back()
				return m, m.input.Focus()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.output.Width = msg.Width
		m.output.Height = max(msg.Height-chromeRows, 1)

	case typesMsg:
		m.err = msg.err
		if msg.err == nil {
			m.types = msg.types
			m.selected = 0
			m.state = stateSelectType
		}
		return m, nil

	case renderedMsg:
		m.err = msg.err
		m.result = msg.result
		m.input.Blur()
		m.output.SetContent(resultStyle.Render(msg.result))
		m.output.GotoTop()
		m.state = stateShowResult
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateInputID:
		m.input, cmd = m.input.Update(msg)
	case stateShowResult:
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

func (m *browseModel) back() {
	m.state = stateInputID
	m.result = ""
	m.err = nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Moiety"))
	if m.stack != "" && m.state != stateSelectStack {
		b.WriteString(" ")
		b.WriteString(pathStyle.Render(m.stack))
		if m.state != stateSelectType {
			b.WriteString(" ")
			b.WriteString(tagStyle.Render(m.tag))
		}
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectStack:
		b.WriteString("Select a stack:\n\n")
		m.list(&b, m.stacks)
		m.errLine(&b)
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateSelectType:
		b.WriteString("Select a resource type:\n\n")
		m.list(&b, m.types)
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • esc back • q quit"))

	case stateInputID:
		fmt.Fprintf(&b, "Open a %s resource\n\n", tagStyle.Render(m.tag))
		b.WriteString(m.input.View())
		b.WriteString("\n")
		m.errLine(&b)
		b.WriteString(helpStyle.Render("enter open • esc back • ctrl+c quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		} else {
			b.WriteString(m.output.View())
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ scroll • enter/esc back • q quit"))
	}

	return b.String()
}

func (m *browseModel) list(b *strings.Builder, items []string) {
	for i, item := range items {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *browseModel) errLine(b *strings.Builder) {
	if m.err == nil {
		return
	}
	b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	b.WriteString("\n\n")
}
