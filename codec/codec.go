// Package codec serializes rendered view data as JSON, CBOR or YAML.
package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/moiety/errors"
)

// Format names an output encoding.
type Format string

const (
	JSON Format = "json"
	CBOR Format = "cbor"
	YAML Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{JSON, CBOR, YAML} }

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case JSON, CBOR, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", errors.InvalidInput(errors.PhaseEncode, "unknown format "+s)
}

// Binary reports whether the format is not text.
func (f Format) Binary() bool { return f == CBOR }

// Extension returns the file extension for f, with the dot.
func (f Format) Extension() string { return "." + string(f) }

// encMode is Core Deterministic Encoding: sorted map keys, smallest
// integer encoding. Same data always produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode writes v to w in format f. Text formats end with a newline.
func Encode(w io.Writer, f Format, v any) error {
	var err error
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case CBOR:
		err = encMode.NewEncoder(w).Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	default:
		return errors.InvalidInput(errors.PhaseEncode, "unknown format "+string(f))
	}
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode "+string(f))
	}
	return nil
}

// Marshal returns v encoded in format f.
func Marshal(f Format, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
