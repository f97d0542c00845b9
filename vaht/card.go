package vaht

// Card is a CARD resource.
type Card struct {
	variant
}

// OpenCard opens r as a card.
func OpenCard(r *Resource) (*Card, error) {
	v, err := newVariant(r, r.lib.card.class, TagCard, r.lib.card.open, r.lib.card.close)
	if err != nil {
		return nil, err
	}
	return &Card{variant: v}, nil
}

// NameRecord is the card's index into the stack's card name table.
func (c *Card) NameRecord() int16 { return must(c.lib.card.nameRecord.Get(c.live())) }

// Name returns the resolved card name. The string belongs to libvaht.
func (c *Card) Name() string { return c.lib.card.name(c.ptr()) }

func (c *Card) ZipMode() bool { return must(c.lib.card.zipMode.Get(c.live())) }

// Script returns the card's script. The card owns it: closing the script
// releases nothing, and it must not be used after the card is closed.
func (c *Card) Script() (*Script, error) {
	return c.lib.ownedScript(c.lib.card.script(c.ptr()), &c.object, c)
}

// PictureList opens the card's own picture list as a caller-owned object.
func (c *Card) PictureList() (*PictureList, error) {
	v, err := vended(c.lib, c.lib.card.plstOpen(c.ptr()), c.lib.plst.class, TagPictureList, c.lib.plst.close)
	if err != nil {
		return nil, err
	}
	return &PictureList{variant: v}, nil
}

// Hotspot is one HSPT record.
type Hotspot struct {
	Index      int
	BlstID     uint16
	NameRecord int16
	Name       string
	Rect       Rect[int16]
	Cursor     uint16
	ZipMode    bool
}

// Hotspots is an HSPT resource. Records are numbered from 1.
type Hotspots struct {
	variant
}

// OpenHotspots opens r as a hotspot table.
func OpenHotspots(r *Resource) (*Hotspots, error) {
	v, err := newVariant(r, r.lib.hspt.class, TagHotspots, r.lib.hspt.open, r.lib.hspt.close)
	if err != nil {
		return nil, err
	}
	return &Hotspots{variant: v}, nil
}

func (h *Hotspots) Count() int { return int(must(h.lib.hspt.records.Get(h.live()))) }

func (h *Hotspots) BlstID(i int) (uint16, error) {
	if err := checkRecord("hspt", "blst_id", i, h.Count()); err != nil {
		return 0, err
	}
	return h.lib.hspt.blstID(h.ptr(), uint16(i)), nil
}

func (h *Hotspots) NameRecord(i int) (int16, error) {
	if err := checkRecord("hspt", "name_record", i, h.Count()); err != nil {
		return 0, err
	}
	return h.lib.hspt.nameRecord(h.ptr(), uint16(i)), nil
}

// Name returns the resolved hotspot name; it belongs to libvaht.
func (h *Hotspots) Name(i int) (string, error) {
	if err := checkRecord("hspt", "name", i, h.Count()); err != nil {
		return "", err
	}
	return h.lib.hspt.name(h.ptr(), uint16(i)), nil
}

func (h *Hotspots) Rect(i int) (Rect[int16], error) {
	var r Rect[int16]
	if err := checkRecord("hspt", "rect", i, h.Count()); err != nil {
		return r, err
	}
	h.lib.hspt.rect(h.ptr(), uint16(i), &r.Left, &r.Right, &r.Top, &r.Bottom)
	return r, nil
}

func (h *Hotspots) Cursor(i int) (uint16, error) {
	if err := checkRecord("hspt", "cursor", i, h.Count()); err != nil {
		return 0, err
	}
	return h.lib.hspt.cursor(h.ptr(), uint16(i)), nil
}

func (h *Hotspots) ZipMode(i int) (bool, error) {
	if err := checkRecord("hspt", "zip_mode", i, h.Count()); err != nil {
		return false, err
	}
	return h.lib.hspt.zipMode(h.ptr(), uint16(i)) != 0, nil
}

// Script returns the script of record i, owned by the hotspot table.
func (h *Hotspots) Script(i int) (*Script, error) {
	if err := checkRecord("hspt", "script", i, h.Count()); err != nil {
		return nil, err
	}
	return h.lib.ownedScript(h.lib.hspt.script(h.ptr(), uint16(i)), &h.object, h)
}

// Record returns record i without its script; record 0 is a placeholder.
func (h *Hotspots) Record(i int) (Hotspot, error) {
	if i == 0 {
		return Hotspot{}, nil
	}
	if err := checkRecord("hspt", "record", i, h.Count()); err != nil {
		return Hotspot{}, err
	}
	ptr := h.ptr()
	idx := uint16(i)
	rec := Hotspot{
		Index:      i,
		BlstID:     h.lib.hspt.blstID(ptr, idx),
		NameRecord: h.lib.hspt.nameRecord(ptr, idx),
		Name:       h.lib.hspt.name(ptr, idx),
		Cursor:     h.lib.hspt.cursor(ptr, idx),
		ZipMode:    h.lib.hspt.zipMode(ptr, idx) != 0,
	}
	h.lib.hspt.rect(ptr, idx, &rec.Rect.Left, &rec.Rect.Right, &rec.Rect.Top, &rec.Rect.Bottom)
	return rec, nil
}

func (h *Hotspots) Records() ([]Hotspot, error) {
	return collect(h.Count(), h.Record)
}
