package vaht_test

import (
	"testing"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/vaht"
)

func TestEventNames(t *testing.T) {
	tests := []struct {
		event vaht.Event
		name  string
		str   string
	}{
		{vaht.EventMouseDown, "mouse-down", "mouse-down"},
		{vaht.EventCloseCard, "close-card", "close-card"},
		{vaht.Event(8), "", "8"},
		{vaht.EventDisplayUpdate, "display-update", "display-update"},
		{vaht.Event(11), "", "11"},
		{vaht.Event(-1), "", "-1"},
	}
	for _, tt := range tests {
		if tt.event.Name() != tt.name || tt.event.String() != tt.str {
			t.Errorf("event %d: Name %q String %q", int32(tt.event), tt.event.Name(), tt.event.String())
		}
	}
	if n := len(vaht.Events()); n != int(vaht.EventCount) {
		t.Errorf("Events() has %d entries, want %d", n, int(vaht.EventCount))
	}
	if vaht.EventCount != 11 {
		t.Errorf("EventCount = %d, want 11", int(vaht.EventCount))
	}
}

func TestCard(t *testing.T) {
	e := setup(t)
	c := open[*vaht.Card](t, e, vaht.TagCard, 5)
	if c.NameRecord() != 1 || c.Name() != "beta" || !c.ZipMode() {
		t.Fatalf("card = %d %q %v", c.NameRecord(), c.Name(), c.ZipMode())
	}
	p, err := c.PictureList()
	if err != nil {
		t.Fatalf("PictureList: %v", err)
	}
	defer p.Close()
	if p.Count() != 1 || p.Resource() != nil {
		t.Fatalf("card picture list: count %d", p.Count())
	}
	if r, err := p.Rect(1); err != nil || r.Right != 608 {
		t.Fatalf("Rect(1) = %+v, %v", r, err)
	}
}

func TestCardScript(t *testing.T) {
	e := setup(t)
	c := open[*vaht.Card](t, e, vaht.TagCard, 5)
	s, err := c.Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	if !s.Owned() {
		t.Fatal("card script should be owned")
	}

	cmds, err := s.Handler(vaht.EventOpenCard)
	if err != nil || len(cmds) != 2 {
		t.Fatalf("Handler = %v, %v", cmds, err)
	}
	leaf := cmds[0]
	if leaf.IsBranch() || leaf.Code() != 1 {
		t.Fatalf("leaf: branch=%v code=%d", leaf.IsBranch(), leaf.Code())
	}
	if args := leaf.Arguments(); len(args) != 2 || args[0] != 2 || args[1] != 3 {
		t.Fatalf("Arguments = %v", args)
	}

	br := cmds[1]
	if !br.IsBranch() || br.BranchVariable() != 7 {
		t.Fatalf("branch: branch=%v var=%d", br.IsBranch(), br.BranchVariable())
	}
	values := br.BranchValues()
	bodies, err := br.BranchBodies()
	if err != nil || len(values) != 2 || len(bodies) != 2 {
		t.Fatalf("branch values %v bodies %d, %v", values, len(bodies), err)
	}
	if len(bodies[1]) != 2 || bodies[1][1].Code() != 10 {
		t.Fatalf("body 1 = %v", bodies[1])
	}

	for _, ev := range []vaht.Event{vaht.EventMouseDown, vaht.Event(8)} {
		if cmds, err := s.Handler(ev); err != nil || len(cmds) != 0 {
			t.Errorf("Handler(%v) = %v, %v", ev, cmds, err)
		}
	}
	for _, ev := range []vaht.Event{-1, vaht.EventCount} {
		if _, err := s.Handler(ev); !errors.IsOutOfBounds(err) {
			t.Errorf("Handler(%d): expected out of bounds, got %v", int32(ev), err)
		}
	}

	ptr := s.Ptr()
	s.Close()
	if e.fake.Destroyed(ptr) != 0 {
		t.Fatal("closing an owned script freed it")
	}
}

func TestScriptUseAfterOwnerClose(t *testing.T) {
	e := setup(t)
	c := open[*vaht.Card](t, e, vaht.TagCard, 5)
	s, err := c.Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	cmds, err := s.Handler(vaht.EventOpenCard)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	c.Close()

	mustPanic(t, "script handler", func() { s.Handler(vaht.EventOpenCard) })
	mustPanic(t, "command code", func() { cmds[0].Code() })
	mustPanic(t, "branch bodies", func() { cmds[1].BranchBodies() })
}

func TestReadScript(t *testing.T) {
	e := setup(t)
	r, err := e.arch.OpenRaw("tSCR", 11)
	if err != nil {
		t.Fatalf("OpenRaw: %v", err)
	}
	defer r.Close()
	s, err := vaht.ReadScript(r)
	if err != nil {
		t.Fatalf("ReadScript: %v", err)
	}
	if s.Owned() {
		t.Fatal("read script should be caller-owned")
	}
	cmds, err := s.Handler(vaht.EventMouseUp)
	if err != nil || len(cmds) != 1 || cmds[0].Code() != 17 {
		t.Fatalf("Handler = %v, %v", cmds, err)
	}
	ptr := s.Ptr()
	s.Close()
	s.Close()
	if got := e.fake.Destroyed(ptr); got != 1 {
		t.Fatalf("script freed %d times", got)
	}

	v, err := e.arch.OpenRaw("VARS", 12)
	if err != nil {
		t.Fatalf("OpenRaw: %v", err)
	}
	defer v.Close()
	if _, err := vaht.ReadScript(v); !errors.IsOpenFailure(err) {
		t.Fatalf("ReadScript without script: expected open failure, got %v", err)
	}
}

func TestHotspots(t *testing.T) {
	e := setup(t)
	h := open[*vaht.Hotspots](t, e, vaht.TagHotspots, 8)
	recs, err := h.Records()
	if err != nil || len(recs) != 2 {
		t.Fatalf("Records = %v, %v", recs, err)
	}
	want := vaht.Hotspot{
		Index: 1, BlstID: 1, Name: "alpha", Cursor: 3000,
		Rect: vaht.Rect[int16]{Left: -1, Right: 2, Top: 3, Bottom: 4},
	}
	if recs[1] != want {
		t.Fatalf("record 1 = %+v, want %+v", recs[1], want)
	}

	s, err := h.Script(1)
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	cmds, err := s.Handler(vaht.EventMouseDown)
	if err != nil || len(cmds) != 1 || cmds[0].Code() != 2 || cmds[0].Arguments()[0] != 10 {
		t.Fatalf("hotspot handler = %v, %v", cmds, err)
	}
}
