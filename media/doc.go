// Package media converts decoded libvaht payloads into standard container
// formats: PNG for bitmaps and RIFF/WAVE for sound. Movies are QuickTime
// already and pass through unchanged. Digest gives a content hash for any
// payload.
package media
