// Package serializer renders filtered names into the published wire format:
// a JSON array of strings, compressed into a fixed-capacity buffer.
package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/log"
)

// Result is the outcome of serializing one filtered list
type Result struct {
	Raw        []byte
	Compressed []byte
}

// Serialize renders names as a JSON array of strings in their given order.
// HTML characters are not escaped and no trailing newline is written. JSON
// strings are UTF-8, so invalid byte sequences in a name are published as
// U+FFFD and the name no longer matches the one on disk.
func Serialize(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}
	for _, name := range names {
		if !utf8.ValidString(name) {
			log.Debug("Name %q is not valid UTF-8, publishing it with U+FFFD replacements", name)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return nil, fmt.Errorf("failed to encode names: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Deserialize parses a JSON array of strings.
func Deserialize(raw []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("failed to decode names: %w", err)
	}
	return names, nil
}

// Encode serializes and compresses names.
func Encode(names []string, codec Codec) (Result, error) {
	raw, err := Serialize(names)
	if err != nil {
		return Result{}, err
	}
	compressed, err := codec.Compress(raw)
	if err != nil {
		return Result{Raw: raw}, errors.Wrapf(errors.ErrCodecFailure, "%s compress: %v", codec.Name(), err)
	}
	return Result{Raw: raw, Compressed: compressed}, nil
}

// Decode decompresses and parses a published payload.
func Decode(compressed []byte, codec Codec) ([]string, error) {
	raw, err := codec.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodecFailure, "%s decompress: %v", codec.Name(), err)
	}
	return Deserialize(raw)
}
