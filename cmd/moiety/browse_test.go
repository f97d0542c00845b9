package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/moiety/config"
	"github.com/wippyai/moiety/stack"
	"github.com/wippyai/moiety/vaht"
	"github.com/wippyai/moiety/vaht/vahttest"
)

func newTestBrowser(t *testing.T) *browseModel {
	t.Helper()
	fake := vahttest.New(map[string]*vahttest.Archive{"/riven/t_Data.MHK": fixture()})
	lib, err := fake.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a := &app{
		cfg: config.Config{DataDir: "/riven"},
		resolver: stack.NewWithConfig(lib, stack.Config{
			Dir:    "/riven",
			Stacks: map[string][]string{"aspit": {"a_Data.MHK"}, "tspit": {"t_Data.MHK"}},
		}),
	}
	t.Cleanup(func() { a.resolver.Close() })
	m := newBrowseModel(a)
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and then the messages of any commands it returns that
// complete synchronously.
func send(m *browseModel, msg tea.Msg) {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	switch out := cmd().(type) {
	case typesMsg, renderedMsg:
		send(m, out)
	}
}

func TestBrowseFlow(t *testing.T) {
	m := newTestBrowser(t)
	if m.state != stateSelectStack || len(m.stacks) != 2 {
		t.Fatalf("state %v stacks %v", m.state, m.stacks)
	}

	send(m, key("down"))
	send(m, key("enter"))
	if m.state != stateSelectType {
		t.Fatalf("state = %v, err = %v", m.state, m.err)
	}
	want := []string{vaht.TagCard, vaht.TagHotspots, vaht.TagNames, vaht.TagBitmap}
	if strings.Join(m.types, ",") != strings.Join(want, ",") {
		t.Fatalf("types = %v, want %v", m.types, want)
	}

	send(m, key("down"))
	send(m, key("down"))
	send(m, key("enter"))
	if m.state != stateInputID || m.tag != vaht.TagNames {
		t.Fatalf("state %v tag %q", m.state, m.tag)
	}

	send(m, key("4"))
	send(m, key("enter"))
	if m.state != stateShowResult || m.err != nil {
		t.Fatalf("state %v err %v", m.state, m.err)
	}
	if m.result != "- alpha\n- beta\n" {
		t.Fatalf("result = %q", m.result)
	}
	if !strings.Contains(m.View(), "alpha") {
		t.Fatalf("view:\n%s", m.View())
	}

	send(m, key("esc"))
	if m.state != stateInputID || m.input.Value() != "4" {
		t.Fatalf("back: state %v input %q", m.state, m.input.Value())
	}
	send(m, key("esc"))
	send(m, key("esc"))
	if m.state != stateSelectStack || m.selected != 1 {
		t.Fatalf("back to stacks: state %v selected %d", m.state, m.selected)
	}
}

func TestBrowseErrors(t *testing.T) {
	m := newTestBrowser(t)

	send(m, key("enter"))
	if m.state != stateSelectStack || m.err == nil {
		t.Fatalf("empty stack: state %v err %v", m.state, m.err)
	}
	if !strings.Contains(m.View(), "Error") {
		t.Fatalf("view:\n%s", m.View())
	}

	send(m, key("down"))
	send(m, key("enter"))
	send(m, key("enter"))
	send(m, key("9"))
	send(m, key("9"))
	send(m, key("enter"))
	if m.state != stateShowResult || m.err == nil {
		t.Fatalf("missing id: state %v err %v", m.state, m.err)
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestBrowser(t)
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatal("q did not quit on the stack list")
	}

	send(m, key("down"))
	send(m, key("enter"))
	send(m, key("enter"))
	m.Update(key("q"))
	if m.input.Value() != "q" {
		t.Fatalf("q in the id field = %q", m.input.Value())
	}
}
