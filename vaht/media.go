package vaht

import (
	"io"
	"strconv"
)

// Bitmap is a decoded tBMP image. Pixel data is packed 24-bit RGB.
type Bitmap struct {
	variant
}

// OpenBitmap opens r as a bitmap.
func OpenBitmap(r *Resource) (*Bitmap, error) {
	v, err := newVariant(r, r.lib.bmp.class, TagBitmap, r.lib.bmp.open, r.lib.bmp.close)
	if err != nil {
		return nil, err
	}
	return &Bitmap{variant: v}, nil
}

func (b *Bitmap) Width() uint16 { return must(b.lib.bmp.width.Get(b.live())) }

func (b *Bitmap) Height() uint16 { return must(b.lib.bmp.height.Get(b.live())) }

func (b *Bitmap) Compressed() bool { return must(b.lib.bmp.compressed.Get(b.live())) }

func (b *Bitmap) Truecolor() bool { return must(b.lib.bmp.truecolor.Get(b.live())) }

// Data copies the width*height*3 bytes of RGB pixel data.
func (b *Bitmap) Data() []byte {
	n := int(b.Width()) * int(b.Height()) * 3
	return b.lib.lib.Memory().Bytes(b.lib.bmp.data(b.ptr()), n)
}

// Movie is a QuickTime tMOV stream.
type Movie struct {
	variant
}

var (
	_ io.Reader = (*Movie)(nil)
	_ io.Seeker = (*Movie)(nil)
)

// OpenMovie opens r as a movie.
func OpenMovie(r *Resource) (*Movie, error) {
	v, err := newVariant(r, r.lib.mov.class, TagMovie, r.lib.mov.open, r.lib.mov.close)
	if err != nil {
		return nil, err
	}
	return &Movie{variant: v}, nil
}

func (m *Movie) Read(p []byte) (int, error) {
	return readInto(p, m.ptr(), m.lib.mov.read)
}

func (m *Movie) Seek(offset int64, whence int) (int64, error) {
	ptr := m.ptr()
	return seekTo(offset, whence, int64(m.lib.mov.tell(ptr)), int64(m.res.Size()),
		func(pos uint32) { m.lib.mov.seek(ptr, pos) })
}

func (m *Movie) Tell() uint32 { return m.lib.mov.tell(m.ptr()) }

// ReadAll reads the rest of the movie, bounded by limit bytes when limit > 0.
func (m *Movie) ReadAll(limit int64) ([]byte, error) {
	return readAll(m, int64(m.res.Size())-int64(m.Tell()), limit)
}

// Encoding is the sample encoding of a wave resource.
type Encoding int32

const (
	EncodingUnknown Encoding = iota
	EncodingPCM
	EncodingADPCM
	EncodingMP2
)

func (e Encoding) String() string {
	switch e {
	case EncodingUnknown:
		return "unknown"
	case EncodingPCM:
		return "pcm"
	case EncodingADPCM:
		return "adpcm"
	case EncodingMP2:
		return "mp2"
	default:
		return strconv.Itoa(int(e))
	}
}

// Wave is a tWAV sound. Read yields decoded sample data.
type Wave struct {
	variant
}

var _ io.Reader = (*Wave)(nil)

// OpenWave opens r as a wave.
func OpenWave(r *Resource) (*Wave, error) {
	v, err := newVariant(r, r.lib.wav.class, TagWave, r.lib.wav.open, r.lib.wav.close)
	if err != nil {
		return nil, err
	}
	return &Wave{variant: v}, nil
}

func (w *Wave) SampleRate() uint16 { return must(w.lib.wav.samplerate.Get(w.live())) }

func (w *Wave) SampleCount() uint32 { return must(w.lib.wav.samplecount.Get(w.live())) }

// SampleSize is the size of one sample in bits.
func (w *Wave) SampleSize() uint8 { return must(w.lib.wav.samplesize.Get(w.live())) }

func (w *Wave) Channels() uint8 { return must(w.lib.wav.channels.Get(w.live())) }

func (w *Wave) Encoding() Encoding { return must(w.lib.wav.encoding.Get(w.live())) }

func (w *Wave) Read(p []byte) (int, error) {
	return readInto(p, w.ptr(), w.lib.wav.read)
}

// Reset rewinds decoding to the first sample.
func (w *Wave) Reset() { w.lib.wav.reset(w.ptr()) }

// ReadAll decodes the whole wave from the start, bounded by limit bytes
// when limit > 0.
func (w *Wave) ReadAll(limit int64) ([]byte, error) {
	w.Reset()
	return readAll(w, 0, limit)
}
