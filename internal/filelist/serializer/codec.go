package serializer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

// Codec names
const (
	CodecZlib = "zlib"
	CodecZstd = "zstd"
)

// Codec compresses published payloads. Implementations are safe for
// concurrent use.
type Codec interface {
	Name() string
	Compress(raw []byte) ([]byte, error)
	Decompress(compressed []byte) ([]byte, error)
}

// NewCodec returns the codec registered under name
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", CodecZlib:
		return zlibCodec{}, nil
	case CodecZstd:
		return newZstdCodec()
	default:
		return nil, errors.Wrapf(errors.ErrCodecFailure, "unknown codec %q", name)
	}
}

type zlibCodec struct{}

func (zlibCodec) Name() string { return CodecZlib }

func (zlibCodec) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("write zlib: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zlib: %w", err)
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create zlib reader: %w", err)
	}
	defer func() { _ = zr.Close() }()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read zlib: %w", err)
	}
	return raw, nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodecFailure, "create zstd encoder: %v", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, errors.Wrapf(errors.ErrCodecFailure, "create zstd decoder: %v", err)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Name() string { return CodecZstd }

func (c *zstdCodec) Compress(raw []byte) ([]byte, error) {
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *zstdCodec) Decompress(compressed []byte) ([]byte, error) {
	raw, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decode zstd: %w", err)
	}
	return raw, nil
}
