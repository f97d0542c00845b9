package vaht

import (
	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ffi"
)

// Rect is a rectangle as returned through four native output parameters.
type Rect[T uint16 | int16] struct {
	Left, Right, Top, Bottom T
}

// checkRecord validates a 1-based record index against records without
// touching the native layer.
func checkRecord(class string, field string, i, records int) error {
	if i < 1 || i > records {
		return errors.InvalidRecord(errors.PhaseAccess, []string{class, field}, i, records)
	}
	return nil
}

// checkIndex validates a 0-based index.
func checkIndex(class string, field string, i, n int) error {
	if i < 0 || i >= n {
		return errors.OutOfBounds(errors.PhaseAccess, []string{class, field}, i, n)
	}
	return nil
}

// NameTable is a NAME resource: a 0-based list of strings.
type NameTable struct {
	variant
}

// OpenNameTable opens r as a name table.
func OpenNameTable(r *Resource) (*NameTable, error) {
	v, err := newVariant(r, r.lib.name.class, TagNames, r.lib.name.open, r.lib.name.close)
	if err != nil {
		return nil, err
	}
	return &NameTable{variant: v}, nil
}

// Count returns the number of names.
func (n *NameTable) Count() int { return int(must(n.lib.name.count.Get(n.live()))) }

// Get returns name i. The native string is caller-owned and freed here.
func (n *NameTable) Get(i int) (string, error) {
	if err := checkIndex("name", "get", i, n.Count()); err != nil {
		return "", err
	}
	s, ok := ffi.OwnedString(n.lib.lib, n.lib.name.get(n.ptr(), uint16(i)))
	if !ok {
		return "", errors.OutOfBounds(errors.PhaseAccess, []string{"name", "get"}, i, n.Count())
	}
	return s, nil
}

// Names returns every name in order.
func (n *NameTable) Names() ([]string, error) {
	count := n.Count()
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, err := n.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ResourceMap is an RMAP resource: a 0-based list of codes.
type ResourceMap struct {
	variant
}

// OpenResourceMap opens r as a resource map.
func OpenResourceMap(r *Resource) (*ResourceMap, error) {
	v, err := newVariant(r, r.lib.rmap.class, TagResourceMap, r.lib.rmap.open, r.lib.rmap.close)
	if err != nil {
		return nil, err
	}
	return &ResourceMap{variant: v}, nil
}

func (m *ResourceMap) Count() int { return int(must(m.lib.rmap.count.Get(m.live()))) }

// Get returns code i.
func (m *ResourceMap) Get(i int) (uint32, error) {
	if err := checkIndex("rmap", "get", i, m.Count()); err != nil {
		return 0, err
	}
	return m.lib.rmap.get(m.ptr(), uint16(i)), nil
}

// Codes returns every code in order.
func (m *ResourceMap) Codes() []uint32 {
	n := m.Count()
	ptr := m.ptr()
	out := make([]uint32, n)
	for i := range out {
		out[i] = m.lib.rmap.get(ptr, uint16(i))
	}
	return out
}

// Picture is one PLST record.
type Picture struct {
	Index    int
	BitmapID int32
	Rect     Rect[uint16]
}

// PictureList is a PLST resource. Records are numbered from 1.
type PictureList struct {
	variant
}

// OpenPictureList opens r as a picture list.
func OpenPictureList(r *Resource) (*PictureList, error) {
	v, err := newVariant(r, r.lib.plst.class, TagPictureList, r.lib.plst.open, r.lib.plst.close)
	if err != nil {
		return nil, err
	}
	return &PictureList{variant: v}, nil
}

// Count returns the number of records.
func (p *PictureList) Count() int { return int(must(p.lib.plst.records.Get(p.live()))) }

// BitmapID returns the bitmap id of record i.
func (p *PictureList) BitmapID(i int) (int32, error) {
	if err := checkRecord("plst", "bitmap_id", i, p.Count()); err != nil {
		return 0, err
	}
	id := p.lib.plst.bitmapID(p.ptr(), uint16(i))
	if id < 0 {
		return 0, errors.SentinelID(errors.PhaseAccess, []string{"plst", "bitmap_id"}, i, int64(id))
	}
	return id, nil
}

// Rect returns the placement rectangle of record i.
func (p *PictureList) Rect(i int) (Rect[uint16], error) {
	var r Rect[uint16]
	if err := checkRecord("plst", "rect", i, p.Count()); err != nil {
		return r, err
	}
	p.lib.plst.rect(p.ptr(), uint16(i), &r.Left, &r.Right, &r.Top, &r.Bottom)
	return r, nil
}

// OpenBitmap opens the bitmap of record i. The result is owned by the
// caller and has no Resource.
func (p *PictureList) OpenBitmap(i int) (*Bitmap, error) {
	if err := checkRecord("plst", "bitmap_open", i, p.Count()); err != nil {
		return nil, err
	}
	ptr := p.lib.plst.bitmapOpen(p.ptr(), uint16(i))
	if ptr == 0 {
		return nil, errors.InvalidRecord(errors.PhaseAccess, []string{"plst", "bitmap_open"}, i, p.Count())
	}
	v, err := vended(p.lib, ptr, p.lib.bmp.class, TagBitmap, p.lib.bmp.close)
	if err != nil {
		return nil, err
	}
	return &Bitmap{variant: v}, nil
}

// Record returns record i. Record 0 is a zero placeholder and costs no
// native call.
func (p *PictureList) Record(i int) (Picture, error) {
	if i == 0 {
		return Picture{}, nil
	}
	id, err := p.BitmapID(i)
	if err != nil {
		return Picture{}, err
	}
	r, err := p.Rect(i)
	if err != nil {
		return Picture{}, err
	}
	return Picture{Index: i, BitmapID: id, Rect: r}, nil
}

// Records returns all records, with the placeholder at index 0.
func (p *PictureList) Records() ([]Picture, error) {
	return collect(p.Count(), p.Record)
}

// Button is one BLST record.
type Button struct {
	Index     int
	Enabled   bool
	HotspotID int32
}

// ButtonList is a BLST resource. Records are numbered from 1.
type ButtonList struct {
	variant
}

// OpenButtonList opens r as a button list.
func OpenButtonList(r *Resource) (*ButtonList, error) {
	v, err := newVariant(r, r.lib.blst.class, TagButtonList, r.lib.blst.open, r.lib.blst.close)
	if err != nil {
		return nil, err
	}
	return &ButtonList{variant: v}, nil
}

func (b *ButtonList) Count() int { return int(must(b.lib.blst.records.Get(b.live()))) }

func (b *ButtonList) Enabled(i int) (bool, error) {
	if err := checkRecord("blst", "enabled", i, b.Count()); err != nil {
		return false, err
	}
	return b.lib.blst.enabled(b.ptr(), uint16(i)) != 0, nil
}

func (b *ButtonList) HotspotID(i int) (int32, error) {
	if err := checkRecord("blst", "hotspot_id", i, b.Count()); err != nil {
		return 0, err
	}
	id := b.lib.blst.hotspotID(b.ptr(), uint16(i))
	if id < 0 {
		return 0, errors.SentinelID(errors.PhaseAccess, []string{"blst", "hotspot_id"}, i, int64(id))
	}
	return id, nil
}

// Record returns record i; record 0 is a placeholder.
func (b *ButtonList) Record(i int) (Button, error) {
	if i == 0 {
		return Button{}, nil
	}
	enabled, err := b.Enabled(i)
	if err != nil {
		return Button{}, err
	}
	id, err := b.HotspotID(i)
	if err != nil {
		return Button{}, err
	}
	return Button{Index: i, Enabled: enabled, HotspotID: id}, nil
}

func (b *ButtonList) Records() ([]Button, error) {
	return collect(b.Count(), b.Record)
}

// Fade is the fade mode of a sound group.
type Fade uint16

const (
	NoFade Fade = iota
	FadeOut
	FadeIn
	FadeInOut
)

func (f Fade) String() string {
	switch f {
	case NoFade:
		return "none"
	case FadeOut:
		return "out"
	case FadeIn:
		return "in"
	case FadeInOut:
		return "in-out"
	default:
		return "unknown"
	}
}

// Sound is one SLST record: a group of sounds played together.
type Sound struct {
	Index        int
	SoundIDs     []uint16
	Fade         Fade
	Loop         bool
	GlobalVolume uint16
	Volumes      []uint16
	Balances     []uint16
}

// SoundList is an SLST resource. Records are numbered from 1; sounds within
// a record from 0.
type SoundList struct {
	variant
}

// OpenSoundList opens r as a sound list.
func OpenSoundList(r *Resource) (*SoundList, error) {
	v, err := newVariant(r, r.lib.slst.class, TagSoundList, r.lib.slst.open, r.lib.slst.close)
	if err != nil {
		return nil, err
	}
	return &SoundList{variant: v}, nil
}

func (s *SoundList) Count() int { return int(must(s.lib.slst.records.Get(s.live()))) }

// SoundCount returns how many sounds record i plays.
func (s *SoundList) SoundCount(i int) (int, error) {
	if err := checkRecord("slst", "count", i, s.Count()); err != nil {
		return 0, err
	}
	return int(s.lib.slst.count(s.ptr(), uint16(i))), nil
}

func (s *SoundList) perSound(field string, i, j int, fn func(uintptr, uint16, uint16) uint16) (uint16, error) {
	n, err := s.SoundCount(i)
	if err != nil {
		return 0, err
	}
	if err := checkIndex("slst", field, j, n); err != nil {
		return 0, err
	}
	return fn(s.ptr(), uint16(i), uint16(j)), nil
}

func (s *SoundList) perRecord(field string, i int, fn func(uintptr, uint16) uint16) (uint16, error) {
	if err := checkRecord("slst", field, i, s.Count()); err != nil {
		return 0, err
	}
	return fn(s.ptr(), uint16(i)), nil
}

func (s *SoundList) SoundID(i, j int) (uint16, error) {
	return s.perSound("sound_id", i, j, s.lib.slst.soundID)
}

func (s *SoundList) Volume(i, j int) (uint16, error) {
	return s.perSound("volume", i, j, s.lib.slst.volume)
}

func (s *SoundList) Balance(i, j int) (uint16, error) {
	return s.perSound("balance", i, j, s.lib.slst.balance)
}

func (s *SoundList) Fade(i int) (Fade, error) {
	v, err := s.perRecord("fade", i, s.lib.slst.fade)
	return Fade(v), err
}

func (s *SoundList) Loop(i int) (bool, error) {
	v, err := s.perRecord("loop", i, s.lib.slst.loop)
	return v != 0, err
}

func (s *SoundList) GlobalVolume(i int) (uint16, error) {
	return s.perRecord("global_volume", i, s.lib.slst.globalVolume)
}

// Record returns record i; record 0 is a placeholder.
func (s *SoundList) Record(i int) (Sound, error) {
	if i == 0 {
		return Sound{}, nil
	}
	n, err := s.SoundCount(i)
	if err != nil {
		return Sound{}, err
	}
	ptr := s.ptr()
	rec := Sound{
		Index:        i,
		Fade:         Fade(s.lib.slst.fade(ptr, uint16(i))),
		Loop:         s.lib.slst.loop(ptr, uint16(i)) != 0,
		GlobalVolume: s.lib.slst.globalVolume(ptr, uint16(i)),
		SoundIDs:     make([]uint16, n),
		Volumes:      make([]uint16, n),
		Balances:     make([]uint16, n),
	}
	for j := 0; j < n; j++ {
		rec.SoundIDs[j] = s.lib.slst.soundID(ptr, uint16(i), uint16(j))
		rec.Volumes[j] = s.lib.slst.volume(ptr, uint16(i), uint16(j))
		rec.Balances[j] = s.lib.slst.balance(ptr, uint16(i), uint16(j))
	}
	return rec, nil
}

func (s *SoundList) Records() ([]Sound, error) {
	return collect(s.Count(), s.Record)
}

// collect builds the 1-based record slice with the placeholder at 0.
func collect[R any](records int, record func(int) (R, error)) ([]R, error) {
	out := make([]R, 1, records+1)
	for i := 1; i <= records; i++ {
		r, err := record(i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
