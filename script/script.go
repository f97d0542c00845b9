package script

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/moiety/vaht"
)

// Command is the view of a native command the walk needs. C is the
// implementation's own command type, returned for nested bodies.
type Command[C any] interface {
	IsBranch() bool
	Code() uint16
	Arguments() []uint16
	BranchVariable() uint16
	BranchValues() []uint16
	BranchBodies() ([][]C, error)
}

// Source yields the command list of one event.
type Source[C any] interface {
	Handler(e vaht.Event) ([]C, error)
}

// Tree is a structured script: the non-empty handlers in event order.
type Tree struct {
	Handlers []Handler
}

// Handler is the command list run for one event.
type Handler struct {
	Event    vaht.Event
	Commands []Node
}

// Node is one structured command.
type Node struct {
	Branch bool

	// leaf
	Op        Opcode
	Arguments []uint16

	// branch
	Variable uint16
	// Values lists the distinct case values in first-seen order.
	Values []uint16
	Cases  map[uint16][]Node
}

// Structure reads every event handler of s.
func Structure[C Command[C]](s Source[C]) (Tree, error) {
	var t Tree
	for _, e := range vaht.Events() {
		cmds, err := s.Handler(e)
		if err != nil {
			return Tree{}, err
		}
		if len(cmds) == 0 {
			continue
		}
		nodes, err := Commands(cmds)
		if err != nil {
			return Tree{}, err
		}
		t.Handlers = append(t.Handlers, Handler{Event: e, Commands: nodes})
	}
	return t, nil
}

// Commands structures one command list, recursing into branch bodies.
func Commands[C Command[C]](cmds []C) ([]Node, error) {
	out := make([]Node, 0, len(cmds))
	for _, c := range cmds {
		n, err := node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func node[C Command[C]](c C) (Node, error) {
	if !c.IsBranch() {
		return Node{Op: Opcode(c.Code()), Arguments: c.Arguments()}, nil
	}

	variable := c.BranchVariable()
	values := c.BranchValues()
	bodies, err := c.BranchBodies()
	if err != nil {
		return Node{}, err
	}
	if len(values) != len(bodies) {
		Logger().Warn("branch values and bodies differ in length",
			zap.Uint16("variable", variable),
			zap.Int("values", len(values)),
			zap.Int("bodies", len(bodies)))
	}

	n := Node{
		Branch:   true,
		Variable: variable,
		Cases:    make(map[uint16][]Node, len(values)),
	}
	for i, v := range values {
		if i >= len(bodies) {
			break
		}
		body, err := Commands(bodies[i])
		if err != nil {
			return Node{}, err
		}
		if _, dup := n.Cases[v]; dup {
			// later cases overwrite earlier ones
			Logger().Warn("duplicate branch value",
				zap.Uint16("variable", variable),
				zap.Uint16("value", v))
		} else {
			n.Values = append(n.Values, v)
		}
		n.Cases[v] = body
	}
	return n, nil
}

// Handler returns the commands for e, if the tree has any.
func (t Tree) Handler(e vaht.Event) ([]Node, bool) {
	for _, h := range t.Handlers {
		if h.Event == e {
			return h.Commands, true
		}
	}
	return nil, false
}

// Data renders the tree as a mapping from event name to command list.
func (t Tree) Data() map[string]any {
	out := make(map[string]any, len(t.Handlers))
	for _, h := range t.Handlers {
		out[h.Event.String()] = nodesData(h.Commands)
	}
	return out
}

// Walk calls fn for every node in depth-first order, visiting branch cases
// in Values order. It stops early when fn returns false.
func (t Tree) Walk(fn func(Node) bool) {
	for _, h := range t.Handlers {
		if !walk(h.Commands, fn) {
			return
		}
	}
}

func walk(nodes []Node, fn func(Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		for _, v := range n.Values {
			if !walk(n.Cases[v], fn) {
				return false
			}
		}
	}
	return true
}

// Name returns "branch" for branches and the opcode name for leaves.
func (n Node) Name() string {
	if n.Branch {
		return "branch"
	}
	return n.Op.String()
}

// Data renders a leaf as {name, arguments} and a branch as
// {name: "branch", variable, cases}. Unmapped opcodes render their number.
func (n Node) Data() map[string]any {
	if n.Branch {
		cases := make(map[uint16]any, len(n.Cases))
		for v, body := range n.Cases {
			cases[v] = nodesData(body)
		}
		return map[string]any{
			"name":     "branch",
			"variable": n.Variable,
			"cases":    cases,
		}
	}
	var name any = uint16(n.Op)
	if s := n.Op.Name(); s != "" {
		name = s
	}
	args := n.Arguments
	if args == nil {
		args = []uint16{}
	}
	return map[string]any{
		"name":      name,
		"arguments": args,
	}
}

func nodesData(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n.Data()
	}
	return out
}

// String renders a leaf as "name(a, b)" and a branch as "branch(var)".
func (n Node) String() string {
	if n.Branch {
		return "branch(" + strconv.Itoa(int(n.Variable)) + ")"
	}
	s := n.Name() + "("
	for i, a := range n.Arguments {
		if i > 0 {
			s += ", "
		}
		s += strconv.Itoa(int(a))
	}
	return s + ")"
}
