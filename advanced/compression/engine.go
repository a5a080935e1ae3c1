// Package compression wraps the three compression algorithms the rest of
// this codebase's corpus pulls in (snappy, lz4, zstd) behind one
// name-selected interface. The transaction audit trail is the only
// consumer in this module; it picks an algorithm by config name rather
// than by the size/temperature policies a full storage engine would use.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm compresses and decompresses byte slices.
type Algorithm interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Codec selects an Algorithm by name. The zero value is ready to use.
type Codec struct {
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
}

// ErrUnknownAlgorithm is returned by Get for an unrecognized name.
var ErrUnknownAlgorithm = fmt.Errorf("unknown compression algorithm")

// Get resolves an algorithm by name: "none", "snappy", "lz4", or "zstd".
func (c *Codec) Get(name string) (Algorithm, error) {
	switch name {
	case "", "none":
		return noneAlgorithm{}, nil
	case "snappy":
		return snappyAlgorithm{}, nil
	case "lz4":
		return lz4Algorithm{}, nil
	case "zstd":
		return c.zstdAlgorithm()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

func (c *Codec) zstdAlgorithm() (Algorithm, error) {
	if c.zstdEncoder == nil {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		c.zstdEncoder = enc
	}
	if c.zstdDecoder == nil {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		c.zstdDecoder = dec
	}
	return zstdAlgorithm{encoder: c.zstdEncoder, decoder: c.zstdDecoder}, nil
}

type noneAlgorithm struct{}

func (noneAlgorithm) Name() string                           { return "none" }
func (noneAlgorithm) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneAlgorithm) Decompress(data []byte) ([]byte, error) { return data, nil }

type snappyAlgorithm struct{}

func (snappyAlgorithm) Name() string { return "snappy" }

func (snappyAlgorithm) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyAlgorithm) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

type lz4Algorithm struct{}

func (lz4Algorithm) Name() string { return "lz4" }

func (lz4Algorithm) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Algorithm) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

type zstdAlgorithm struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (zstdAlgorithm) Name() string { return "zstd" }

func (a zstdAlgorithm) Compress(data []byte) ([]byte, error) {
	return a.encoder.EncodeAll(data, nil), nil
}

func (a zstdAlgorithm) Decompress(data []byte) ([]byte, error) {
	return a.decoder.DecodeAll(data, nil)
}
