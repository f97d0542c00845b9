// Package view renders typed resources as plain data.
//
// Media kinds become a Payload: PNG for bitmaps, RIFF/WAVE for waves, the
// raw QuickTime stream for movies and raw bytes for untyped resources.
// Table and script kinds become nested maps and slices built only from
// strings, booleans, integers and byte slices, so any encoder can serialize
// them. Record tables keep the 1-based numbering of the archive by placing
// an empty map at index 0.
package view

import (
	"bytes"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/media"
	"github.com/wippyai/moiety/script"
	"github.com/wippyai/moiety/vaht"
)

// Payload is a rendered media resource.
type Payload struct {
	ContentType string `json:"content_type" yaml:"content_type"`
	Data        []byte `json:"data" yaml:"data"`
}

// Options bounds rendering.
type Options struct {
	// MaxPayload caps the bytes read from a media stream; 0 means no cap.
	MaxPayload int64
}

// Content types of rendered payloads.
const (
	ContentPNG       = "image/png"
	ContentWAV       = "audio/wav"
	ContentQuickTime = "video/quicktime"
	ContentBinary    = "application/octet-stream"
)

// IsMedia reports whether Render produces a Payload for tag.
func IsMedia(tag string) bool {
	switch tag {
	case vaht.TagBitmap, vaht.TagWave, vaht.TagMovie:
		return true
	}
	return !vaht.Typeable(tag)
}

// Render renders t with default options.
func Render(t vaht.Typed) (any, error) {
	return RenderWithOptions(t, Options{})
}

// RenderWithOptions renders t. The result is a Payload for media kinds and
// a []string, []uint32, []any or map[string]any otherwise.
func RenderWithOptions(t vaht.Typed, opts Options) (any, error) {
	switch v := t.(type) {
	case *vaht.Bitmap:
		var buf bytes.Buffer
		if err := media.BitmapPNG(&buf, v); err != nil {
			return nil, err
		}
		return Payload{ContentType: ContentPNG, Data: buf.Bytes()}, nil
	case *vaht.Movie:
		data, err := v.ReadAll(opts.MaxPayload)
		if err != nil {
			return nil, err
		}
		return Payload{ContentType: ContentQuickTime, Data: data}, nil
	case *vaht.Wave:
		var buf bytes.Buffer
		if err := media.WaveFile(&buf, v, opts.MaxPayload); err != nil {
			return nil, err
		}
		return Payload{ContentType: ContentWAV, Data: buf.Bytes()}, nil
	case *vaht.NameTable:
		return v.Names()
	case *vaht.ResourceMap:
		return v.Codes(), nil
	case *vaht.Card:
		return Card(v)
	case *vaht.PictureList:
		return Pictures(v)
	case *vaht.ButtonList:
		return Buttons(v)
	case *vaht.Hotspots:
		return Hotspots(v)
	case *vaht.SoundList:
		return Sounds(v)
	case *vaht.Resource:
		data, err := v.ReadAll(opts.MaxPayload)
		if err != nil {
			return nil, err
		}
		return Payload{ContentType: ContentBinary, Data: data}, nil
	case nil:
		return nil, errors.NilPointer(errors.PhaseEncode, []string{"view"}, "vaht.Typed")
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, "rendering "+v.Class().Name)
	}
}

// Script structures s and renders it as a map keyed by event name.
func Script(s *vaht.Script) (map[string]any, error) {
	tree, err := script.Structure[*vaht.Command](s)
	if err != nil {
		return nil, err
	}
	return tree.Data(), nil
}

// Card renders {name, zip_mode, script}; name is the card's name record.
func Card(c *vaht.Card) (map[string]any, error) {
	s, err := c.Script()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	data, err := Script(s)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"name":     c.NameRecord(),
		"zip_mode": c.ZipMode(),
		"script":   data,
	}, nil
}

// Pictures renders each record as {left, right, top, bottom, bitmap}.
func Pictures(p *vaht.PictureList) ([]any, error) {
	recs, err := p.Records()
	if err != nil {
		return nil, err
	}
	out := placeholder(len(recs))
	for _, r := range recs[1:] {
		out = append(out, map[string]any{
			"left":   r.Rect.Left,
			"right":  r.Rect.Right,
			"top":    r.Rect.Top,
			"bottom": r.Rect.Bottom,
			"bitmap": r.BitmapID,
		})
	}
	return out, nil
}

// Buttons renders each record as {enabled, hotspot_id}.
func Buttons(b *vaht.ButtonList) ([]any, error) {
	recs, err := b.Records()
	if err != nil {
		return nil, err
	}
	out := placeholder(len(recs))
	for _, r := range recs[1:] {
		out = append(out, map[string]any{
			"enabled":    r.Enabled,
			"hotspot_id": r.HotspotID,
		})
	}
	return out, nil
}

// Hotspots renders each record with its structured script; name is the
// hotspot's name record.
func Hotspots(h *vaht.Hotspots) ([]any, error) {
	recs, err := h.Records()
	if err != nil {
		return nil, err
	}
	out := placeholder(len(recs))
	for _, r := range recs[1:] {
		s, err := h.Script(r.Index)
		if err != nil {
			return nil, err
		}
		data, err := Script(s)
		s.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"left":     r.Rect.Left,
			"right":    r.Rect.Right,
			"top":      r.Rect.Top,
			"bottom":   r.Rect.Bottom,
			"blst_id":  r.BlstID,
			"name":     r.NameRecord,
			"cursor":   r.Cursor,
			"zip_mode": r.ZipMode,
			"script":   data,
		})
	}
	return out, nil
}

// Sounds renders each record as its sound group.
func Sounds(s *vaht.SoundList) ([]any, error) {
	recs, err := s.Records()
	if err != nil {
		return nil, err
	}
	out := placeholder(len(recs))
	for _, r := range recs[1:] {
		out = append(out, map[string]any{
			"sound_ids":     r.SoundIDs,
			"volumes":       r.Volumes,
			"balances":      r.Balances,
			"fade":          r.Fade.String(),
			"loop":          r.Loop,
			"global_volume": r.GlobalVolume,
		})
	}
	return out, nil
}

func placeholder(n int) []any {
	out := make([]any, 1, max(n, 1))
	out[0] = map[string]any{}
	return out
}
