package vaht_test

import (
	"testing"

	"github.com/wippyai/moiety/vaht"
	"github.com/wippyai/moiety/vaht/vahttest"
)

const archivePath = "/data/t_Data.MHK"

var (
	pixels  = []byte{1, 2, 3, 4, 5, 6}
	movie   = []byte("moov\x00\x01\x02\x03\x04\x05")
	samples = []byte{0, 1, 2, 3, 4, 5, 6, 7}
)

func fixture() *vahttest.Archive {
	bmp := &vahttest.Bitmap{Width: 2, Height: 1, Pixels: pixels, Truecolor: true}
	return &vahttest.Archive{Resources: []*vahttest.Resource{
		{Type: vaht.TagBitmap, ID: 1, Name: "dome", Bitmap: bmp},
		{Type: vaht.TagMovie, ID: 2, Data: movie},
		{Type: vaht.TagWave, ID: 3, Wave: &vahttest.Wave{
			SampleRate: 22050, SampleCount: 4, SampleSize: 16, Channels: 1,
			Encoding: int32(vaht.EncodingPCM), Samples: samples,
		}},
		{Type: vaht.TagNames, ID: 4, Names: []string{"alpha", "beta"}},
		{Type: vaht.TagCard, ID: 5, Card: &vahttest.Card{
			NameRecord: 1,
			Name:       "beta",
			ZipMode:    true,
			Script: vahttest.Script{
				int(vaht.EventOpenCard): {
					vahttest.Leaf(1, 2, 3),
					vahttest.Branch(7, []uint16{0, 1},
						[]vahttest.Command{vahttest.Leaf(2, 5)},
						[]vahttest.Command{vahttest.Leaf(9, 1), vahttest.Leaf(10, 1)}),
				},
			},
			Pictures: []vahttest.Picture{{BitmapID: 1, Rect: [4]uint16{0, 608, 0, 392}, Bitmap: bmp}},
		}},
		{Type: vaht.TagPictureList, ID: 6, Pictures: []vahttest.Picture{
			{BitmapID: 1, Rect: [4]uint16{1, 2, 3, 4}, Bitmap: bmp},
			{BitmapID: 7, Rect: [4]uint16{5, 6, 7, 8}},
		}},
		{Type: vaht.TagButtonList, ID: 7, Buttons: []vahttest.Button{
			{Enabled: true, HotspotID: 3},
			{HotspotID: -1},
		}},
		{Type: vaht.TagHotspots, ID: 8, Hotspots: []vahttest.Hotspot{{
			BlstID: 1, NameRecord: 0, Name: "alpha", Rect: [4]int16{-1, 2, 3, 4},
			Cursor: 3000, Script: vahttest.Script{int(vaht.EventMouseDown): {vahttest.Leaf(2, 10)}},
		}}},
		{Type: vaht.TagResourceMap, ID: 9, Codes: []uint32{0xdeadbeef, 7}},
		{Type: vaht.TagSoundList, ID: 10, Sounds: []vahttest.Sound{{
			IDs: []uint16{5, 6}, Volumes: []uint16{255, 128}, Balances: []uint16{0, 1},
			Fade: uint16(vaht.FadeInOut), Loop: true, GlobalVolume: 200,
		}}},
		{Type: "tSCR", ID: 11, Script: vahttest.Script{int(vaht.EventMouseUp): {vahttest.Leaf(17, 4)}}},
		{Type: "VARS", ID: 12, Data: []byte{9, 9}},
		{Type: vaht.TagPictureList, ID: 13, Pictures: []vahttest.Picture{{BitmapID: -1}}},
	}}
}

type env struct {
	fake *vahttest.Fake
	lib  *vaht.Lib
	arch *vaht.Archive
}

func setup(t *testing.T) *env {
	t.Helper()
	f := vahttest.New(map[string]*vahttest.Archive{archivePath: fixture()})
	lib, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, err := lib.OpenArchive(archivePath)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return &env{fake: f, lib: lib, arch: a}
}

func open[T vaht.Typed](t *testing.T, e *env, tag string, id uint16) T {
	t.Helper()
	typed, err := e.arch.OpenResource(tag, id)
	if err != nil {
		t.Fatalf("OpenResource(%s, %d): %v", tag, id, err)
	}
	v, ok := typed.(T)
	if !ok {
		t.Fatalf("OpenResource(%s, %d) = %T", tag, id, typed)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
