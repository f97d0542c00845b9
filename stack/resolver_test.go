package stack

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/vaht"
	"github.com/wippyai/moiety/vaht/vahttest"
)

const dir = "/riven"

func names(values ...string) *vahttest.Resource {
	return &vahttest.Resource{Type: vaht.TagNames, ID: 1, Names: values}
}

func setup(t *testing.T, files map[string]*vahttest.Archive) (*vahttest.Fake, *Resolver) {
	t.Helper()
	f := vahttest.New(files)
	lib, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := NewWithConfig(lib, Config{
		Dir: dir,
		Stacks: map[string][]string{
			"tspit": {"t_Data.MHK", "t_Sounds.MHK"},
			"aspit": {"a_Data.MHK"},
		},
	})
	t.Cleanup(func() { r.Close() })
	return f, r
}

func firstName(t *testing.T, typed vaht.Typed) string {
	t.Helper()
	defer typed.Close()
	n, ok := typed.(*vaht.NameTable)
	if !ok {
		t.Fatalf("resolved %T", typed)
	}
	s, err := n.Get(0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return s
}

func TestResolveFirstFileWins(t *testing.T) {
	_, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Data.MHK"):   {Resources: []*vahttest.Resource{names("data")}},
		filepath.Join(dir, "t_Sounds.MHK"): {Resources: []*vahttest.Resource{names("sounds"), {Type: vaht.TagWave, ID: 2, Wave: &vahttest.Wave{}}}},
	})
	typed, err := r.Resolve("tspit", vaht.TagNames, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := firstName(t, typed); got != "data" {
		t.Fatalf("resolved from %q, want the first file", got)
	}

	// only in the second file
	typed, err = r.Resolve("tspit", vaht.TagWave, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	typed.Close()
}

func TestResolveSkipsMissingArchive(t *testing.T) {
	f, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Sounds.MHK"): {Resources: []*vahttest.Resource{names("sounds")}},
	})
	missing := filepath.Join(dir, "t_Data.MHK")

	for i := 0; i < 2; i++ {
		typed, err := r.Resolve("tspit", vaht.TagNames, 1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got := firstName(t, typed); got != "sounds" {
			t.Fatalf("resolved %q", got)
		}
	}
	if got := f.Opens(missing); got != 2 {
		t.Fatalf("missing archive opened %d times, want a retry per lookup", got)
	}
	if got := f.Opens(filepath.Join(dir, "t_Sounds.MHK")); got != 1 {
		t.Fatalf("cached archive opened %d times", got)
	}

	// a file that appears later is picked up
	f.AddFile(missing, &vahttest.Archive{Resources: []*vahttest.Resource{names("data")}})
	typed, err := r.Resolve("tspit", vaht.TagNames, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := firstName(t, typed); got != "data" {
		t.Fatalf("resolved %q after the file appeared", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	_, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Data.MHK"): {Resources: []*vahttest.Resource{names("data")}},
	})
	tests := []struct {
		stack string
		tag   string
		id    uint16
	}{
		{"tspit", vaht.TagNames, 9},
		{"tspit", vaht.TagCard, 1},
		{"aspit", vaht.TagNames, 1},
		{"zspit", vaht.TagNames, 1},
	}
	for _, tt := range tests {
		if _, err := r.Resolve(tt.stack, tt.tag, tt.id); !errors.IsNotFound(err) {
			t.Errorf("Resolve(%s, %s, %d): expected not found, got %v", tt.stack, tt.tag, tt.id, err)
		}
	}
}

func TestResolveWrongShapeIsSkipped(t *testing.T) {
	// a CARD resource with no card body cannot be opened as a card
	_, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Data.MHK"):   {Resources: []*vahttest.Resource{{Type: vaht.TagCard, ID: 3}}},
		filepath.Join(dir, "t_Sounds.MHK"): {Resources: []*vahttest.Resource{{Type: vaht.TagCard, ID: 3, Card: &vahttest.Card{Name: "ok"}}}},
	})
	typed, err := r.Resolve("tspit", vaht.TagCard, 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer typed.Close()
	if c := typed.(*vaht.Card); c.Name() != "ok" {
		t.Fatalf("resolved card %q", c.Name())
	}
}

func TestWarmAndClose(t *testing.T) {
	f, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Data.MHK"): {},
		filepath.Join(dir, "a_Data.MHK"): {},
	})
	if got := r.Warm(); got != 2 {
		t.Fatalf("Warm cached %d archives", got)
	}
	if got := r.Warm(); got != 2 || f.Opens(filepath.Join(dir, "a_Data.MHK")) != 1 {
		t.Fatalf("second Warm reopened archives")
	}
	r.Close()
	if r.Cached() != 0 || f.LiveCounted() != 0 {
		t.Fatalf("Close left cached=%d live=%d", r.Cached(), f.LiveCounted())
	}
}

func TestUseHoldsArchive(t *testing.T) {
	f, r := setup(t, map[string]*vahttest.Archive{
		filepath.Join(dir, "t_Data.MHK"): {Resources: []*vahttest.Resource{names("data")}},
	})
	var got string
	err := r.Use("tspit", vaht.TagNames, 1, func(typed vaht.Typed) error {
		s, err := typed.(*vaht.NameTable).Get(0)
		got = s
		return err
	})
	if err != nil || got != "data" {
		t.Fatalf("Use = %q, %v", got, err)
	}
	if f.LiveObjects() != 0 {
		t.Fatal("Use did not close the resolved resource")
	}
}

func TestConcurrentFirstAccessOpensOnce(t *testing.T) {
	path := filepath.Join(dir, "t_Data.MHK")
	f, r := setup(t, map[string]*vahttest.Archive{
		path: {Resources: []*vahttest.Resource{names("data")}},
	})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Use("tspit", vaht.TagNames, 1, func(vaht.Typed) error { return nil })
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Use: %v", err)
		}
	}
	if got := f.Opens(path); got != 1 {
		t.Fatalf("archive opened %d times", got)
	}
}

func TestDefaultStacks(t *testing.T) {
	m := Default()
	if len(m) != 8 {
		t.Fatalf("%d stacks", len(m))
	}
	want := []string{"b_Data.MHK", "b2_data.MHK", "b_Sounds.MHK"}
	for i, f := range m["bspit"] {
		if f != want[i] {
			t.Fatalf("bspit = %v", m["bspit"])
		}
	}
	m["bspit"][0] = "changed"
	if Default()["bspit"][0] != "b_Data.MHK" {
		t.Fatal("Default returned shared state")
	}

	r := New(nil, "/x")
	files, err := r.Files("jspit")
	if err != nil || len(files) != 3 || files[0] != "/x/j_Data1.MHK" {
		t.Fatalf("Files = %v, %v", files, err)
	}
}
