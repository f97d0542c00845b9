package script

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/moiety/vaht"
)

type stub struct {
	branch   bool
	code     uint16
	args     []uint16
	variable uint16
	values   []uint16
	bodies   [][]*stub
	err      error
}

func (s *stub) IsBranch() bool         { return s.branch }
func (s *stub) Code() uint16           { return s.code }
func (s *stub) Arguments() []uint16    { return s.args }
func (s *stub) BranchVariable() uint16 { return s.variable }
func (s *stub) BranchValues() []uint16 { return s.values }

func (s *stub) BranchBodies() ([][]*stub, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bodies, nil
}

func leaf(code uint16, args ...uint16) *stub { return &stub{code: code, args: args} }

func branch(variable uint16, values []uint16, bodies ...[]*stub) *stub {
	return &stub{branch: true, variable: variable, values: values, bodies: bodies}
}

type stubScript struct {
	handlers map[vaht.Event][]*stub
	reads    []vaht.Event
	err      error
}

func (s *stubScript) Handler(e vaht.Event) ([]*stub, error) {
	s.reads = append(s.reads, e)
	if s.err != nil {
		return nil, s.err
	}
	return s.handlers[e], nil
}

func TestStructureOmitsEmptyEvents(t *testing.T) {
	s := &stubScript{handlers: map[vaht.Event][]*stub{
		vaht.EventOpenCard:   {leaf(2, 1)},
		vaht.EventMouseDown:  {leaf(1, 5), leaf(4, 6)},
		vaht.Event(8):        {leaf(99)},
		vaht.EventCloseCard:  {},
		vaht.EventMouseLeave: nil,
	}}
	tree, err := Structure[*stub](s)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if len(s.reads) != int(vaht.EventCount) {
		t.Fatalf("read %d handlers, want %d", len(s.reads), vaht.EventCount)
	}

	var events []vaht.Event
	for _, h := range tree.Handlers {
		events = append(events, h.Event)
	}
	want := []vaht.Event{vaht.EventMouseDown, vaht.Event(8), vaht.EventOpenCard}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}

	data := tree.Data()
	if len(data) != 3 {
		t.Fatalf("Data has %d keys: %v", len(data), data)
	}
	for _, key := range []string{"mouse-down", "8", "open-card"} {
		if _, ok := data[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := tree.Handler(vaht.EventCloseCard); ok {
		t.Error("empty close-card handler present")
	}
	if cmds, ok := tree.Handler(vaht.EventMouseDown); !ok || len(cmds) != 2 || cmds[1].Op != OpPlayWave {
		t.Errorf("mouse-down = %v", cmds)
	}
}

func TestBranchCases(t *testing.T) {
	cmds := []*stub{branch(7, []uint16{0, 1}, []*stub{leaf(2, 10)}, []*stub{leaf(9, 11)})}
	nodes, err := Commands(cmds)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	got := nodes[0].Data()
	want := map[string]any{
		"name":     "branch",
		"variable": uint16(7),
		"cases": map[uint16]any{
			0: []any{map[string]any{"name": "goto-card", "arguments": []uint16{10}}},
			1: []any{map[string]any{"name": "enable-hotspot", "arguments": []uint16{11}}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Data = %#v\nwant %#v", got, want)
	}
	if !reflect.DeepEqual(nodes[0].Values, []uint16{0, 1}) {
		t.Errorf("Values = %v", nodes[0].Values)
	}
}

func TestNestedBranches(t *testing.T) {
	inner := branch(3, []uint16{5}, []*stub{leaf(24, 3)})
	cmds := []*stub{branch(1, []uint16{0}, []*stub{leaf(7, 1, 2), inner})}
	nodes, err := Commands(cmds)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	body := nodes[0].Cases[0]
	if len(body) != 2 || !body[1].Branch || body[1].Cases[5][0].Op != OpIncrement {
		t.Fatalf("nested = %+v", body)
	}
}

func TestDuplicateBranchValuesLastWins(t *testing.T) {
	cmds := []*stub{branch(2, []uint16{4, 4}, []*stub{leaf(1)}, []*stub{leaf(2)})}
	nodes, err := Commands(cmds)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	n := nodes[0]
	if len(n.Cases) != 1 || len(n.Values) != 1 {
		t.Fatalf("cases = %v values = %v", n.Cases, n.Values)
	}
	if n.Cases[4][0].Op != OpGotoCard {
		t.Fatalf("case 4 = %v, want the later body", n.Cases[4])
	}
}

func TestMismatchedBranchPairsByPosition(t *testing.T) {
	cmds := []*stub{branch(2, []uint16{1, 2, 3}, []*stub{leaf(1)})}
	nodes, err := Commands(cmds)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(nodes[0].Cases) != 1 {
		t.Fatalf("cases = %v", nodes[0].Cases)
	}
}

func TestLeafRoundTrip(t *testing.T) {
	input := []*stub{leaf(1, 1, 2), leaf(50, 9), leaf(14), leaf(17, 3, 4, 5)}
	s := &stubScript{handlers: map[vaht.Event][]*stub{vaht.EventLoadCard: input}}

	first, err := Structure[*stub](s)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	second, err := Structure[*stub](s)
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("structuring the same script twice differs")
	}

	var leaves []Node
	first.Walk(func(n Node) bool {
		leaves = append(leaves, n)
		return true
	})
	if len(leaves) != len(input) {
		t.Fatalf("walked %d leaves, want %d", len(leaves), len(input))
	}
	for i, n := range leaves {
		if uint16(n.Op) != input[i].code || !reflect.DeepEqual(n.Arguments, input[i].args) {
			t.Errorf("leaf %d = %v, want %d %v", i, n, input[i].code, input[i].args)
		}
	}
}

func TestLeafData(t *testing.T) {
	tests := []struct {
		node Node
		name any
		str  string
	}{
		{Node{Op: OpDrawBitmap, Arguments: []uint16{3}}, "draw-bmp", "draw-bmp(3)"},
		{Node{Op: Opcode(50), Arguments: []uint16{1, 2}}, uint16(50), "50(1, 2)"},
		{Node{Op: OpActivateMlst}, "activate-mlst", "activate-mlst()"},
	}
	for _, tt := range tests {
		d := tt.node.Data()
		if d["name"] != tt.name {
			t.Errorf("name = %#v, want %#v", d["name"], tt.name)
		}
		if _, ok := d["arguments"].([]uint16); !ok {
			t.Errorf("arguments = %#v", d["arguments"])
		}
		if tt.node.String() != tt.str {
			t.Errorf("String = %q, want %q", tt.node.String(), tt.str)
		}
	}
}

func TestErrorsPropagate(t *testing.T) {
	boom := stderrors.New("boom")
	if _, err := Structure[*stub](&stubScript{err: boom}); !stderrors.Is(err, boom) {
		t.Errorf("handler error = %v", err)
	}
	bad := branch(1, []uint16{0}, []*stub{leaf(1)})
	bad.err = boom
	s := &stubScript{handlers: map[vaht.Event][]*stub{vaht.EventMouseUp: {leaf(1), bad}}}
	if _, err := Structure[*stub](s); !stderrors.Is(err, boom) {
		t.Errorf("body error = %v", err)
	}
}

func TestOpcodeTable(t *testing.T) {
	ops := Opcodes()
	if len(ops) != 25 {
		t.Fatalf("%d opcodes", len(ops))
	}
	for i, op := range ops {
		if op.Name() == "" {
			t.Errorf("opcode %d has no name", op)
		}
		if i > 0 && ops[i-1] >= op {
			t.Errorf("opcodes out of order at %d", i)
		}
	}
	if Opcode(5).Name() != "" || Opcode(5).String() != "5" {
		t.Error("opcode 5 should be unmapped")
	}
}
