package vaht_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ownership"
	"github.com/wippyai/moiety/vaht"
	"github.com/wippyai/moiety/vaht/vahttest"
)

func TestLoadBindsEveryClass(t *testing.T) {
	lib, err := vahttest.New(nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	classes := lib.Classes()
	if len(classes) != 14 {
		t.Fatalf("expected 14 classes, got %d", len(classes))
	}
	for _, c := range classes {
		if !c.Bound() {
			t.Errorf("class %s not bound", c.Name)
		}
	}
	if c, ok := lib.Class("hspt"); !ok || c.Symbol("script") != "vaht_hspt_script" {
		t.Errorf("Class(hspt) = %v, %v", c, ok)
	}
	if _, ok := lib.Class("nope"); ok {
		t.Error("Class(nope) should not be found")
	}
}

func TestLoadReportsAllMissingSymbols(t *testing.T) {
	f := vahttest.New(nil)
	f.Unregister("vaht_bmp_width")
	f.Unregister("vaht_card_script")
	f.Unregister("vaht_slst_balance")

	_, err := f.Load()
	var missing *errors.MissingSymbolsError
	if !stderrors.As(err, &missing) {
		t.Fatalf("expected MissingSymbolsError, got %v", err)
	}
	want := []errors.MissingSymbol{
		{Class: "bmp", Symbol: "vaht_bmp_width"},
		{Class: "card", Symbol: "vaht_card_script"},
		{Class: "slst", Symbol: "vaht_slst_balance"},
	}
	if len(missing.Symbols) != len(want) {
		t.Fatalf("expected %d missing, got %v", len(want), missing.Symbols)
	}
	for i, w := range want {
		if missing.Symbols[i] != w {
			t.Errorf("missing[%d] = %v, want %v", i, missing.Symbols[i], w)
		}
	}
}

func TestLoadRejectsNilLibrary(t *testing.T) {
	if _, err := vaht.Load(nil); err == nil {
		t.Fatal("expected error for nil library")
	}
}

func TestObserverSeesBalancedLifecycle(t *testing.T) {
	tracker := ownership.NewTracker()
	f := vahttest.New(map[string]*vahttest.Archive{archivePath: fixture()})
	lib, err := f.LoadWithConfig(&vaht.Config{Observer: tracker})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a, err := lib.OpenArchive(archivePath)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	typed, err := a.OpenResource(vaht.TagCard, 5)
	if err != nil {
		t.Fatalf("OpenResource: %v", err)
	}
	card := typed.(*vaht.Card)
	script, err := card.Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	if _, err := script.Handler(vaht.EventOpenCard); err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if tracker.Len() == 0 {
		t.Fatal("tracker saw no live handles")
	}

	var ownedScript bool
	for _, e := range tracker.Live() {
		if e.Class == "script" && e.Owned && e.Discipline == ownership.Exclusive {
			ownedScript = true
		}
	}
	if !ownedScript {
		t.Fatal("card script not tracked as owned")
	}

	card.Close()
	a.Close()
	for _, e := range tracker.Leaks() {
		t.Errorf("leaked %s 0x%x", e.Class, e.Ptr)
	}
	script.Close()
	for _, e := range tracker.Live() {
		if e.Class == "script" {
			t.Errorf("closed script still tracked: %+v", e)
		}
	}
	if f.LiveCounted() != 0 || f.LiveObjects() != 0 {
		t.Errorf("native leaks: counted=%d objects=%d", f.LiveCounted(), f.LiveObjects())
	}
}
