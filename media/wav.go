package media

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/vaht"
)

// Format describes PCM sample data.
type Format struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// BlockAlign is the size of one frame in bytes.
func (f Format) BlockAlign() uint16 { return f.Channels * ((f.BitsPerSample + 7) / 8) }

const (
	headerSize = 44
	formatPCM  = 1
	// the RIFF chunk size field counts everything after its own 8 bytes
	maxSamples = math.MaxUint32 - (headerSize - 8)
)

func tooLarge(n int64) error {
	return errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
		Path("wav").
		Detail("%d bytes of samples do not fit a RIFF file", n).
		Build()
}

// WaveHeader returns the 44-byte canonical RIFF/WAVE header for size bytes
// of sample data.
func WaveHeader(f Format, size uint32) ([]byte, error) {
	if f.Channels == 0 || f.SampleRate == 0 || f.BitsPerSample == 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "wave format needs channels, rate and sample size")
	}
	if int64(size) > maxSamples {
		return nil, tooLarge(int64(size))
	}
	h := make([]byte, 0, headerSize)
	h = append(h, "RIFF"...)
	h = binary.LittleEndian.AppendUint32(h, 36+size)
	h = append(h, "WAVEfmt "...)
	h = binary.LittleEndian.AppendUint32(h, 16)
	h = binary.LittleEndian.AppendUint16(h, formatPCM)
	h = binary.LittleEndian.AppendUint16(h, f.Channels)
	h = binary.LittleEndian.AppendUint32(h, f.SampleRate)
	h = binary.LittleEndian.AppendUint32(h, f.SampleRate*uint32(f.BlockAlign()))
	h = binary.LittleEndian.AppendUint16(h, f.BlockAlign())
	h = binary.LittleEndian.AppendUint16(h, f.BitsPerSample)
	h = append(h, "data"...)
	h = binary.LittleEndian.AppendUint32(h, size)
	return h, nil
}

// WriteWave writes samples as a RIFF/WAVE file. A trailing partial frame is
// dropped.
func WriteWave(w io.Writer, f Format, samples []byte) error {
	if ba := int(f.BlockAlign()); ba > 0 {
		samples = samples[:len(samples)-len(samples)%ba]
	}
	if int64(len(samples)) > maxSamples {
		return tooLarge(int64(len(samples)))
	}
	h, err := WaveHeader(f, uint32(len(samples)))
	if err != nil {
		return err
	}
	if _, err := w.Write(h); err != nil {
		return err
	}
	_, err = w.Write(samples)
	return err
}

// WaveFormat returns the PCM format libvaht decodes w into.
func WaveFormat(w *vaht.Wave) Format {
	return Format{
		Channels:      uint16(w.Channels()),
		SampleRate:    uint32(w.SampleRate()),
		BitsPerSample: uint16(w.SampleSize()),
	}
}

// WaveFile decodes w and writes it as a RIFF/WAVE file, reading at most
// limit bytes of samples when limit > 0.
func WaveFile(dst io.Writer, w *vaht.Wave, limit int64) error {
	samples, err := w.ReadAll(limit)
	if err != nil {
		return err
	}
	return WriteWave(dst, WaveFormat(w), samples)
}
