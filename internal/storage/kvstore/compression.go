package kvstore

import (
	"encoding/binary"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Compressor encodes values before they reach the backend.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NewCompressor returns the compressor for name. An empty name selects none.
func NewCompressor(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return noCompressor{}, nil
	case "lz4":
		return lz4Compressor{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownCompressor, "compression %q", name)
}

type noCompressor struct{}

func (noCompressor) Name() string                         { return "none" }
func (noCompressor) Compress(data []byte) ([]byte, error) { return data, nil }
func (noCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

const (
	lz4Raw   byte = 0
	lz4Block byte = 1
)

// lz4Compressor stores a tag byte, then either the raw value or the
// uncompressed length as a uvarint followed by an lz4 block.
type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, 1+binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
	out[0] = lz4Block
	n := 1 + binary.PutUvarint(out[1:], uint64(len(data)))
	size, err := lz4.CompressBlock(data, out[n:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	if size == 0 || n+size >= len(data)+1 {
		// incompressible
		raw := make([]byte, len(data)+1)
		raw[0] = lz4Raw
		copy(raw[1:], data)
		return raw, nil
	}
	return out[:n+size], nil
}

func (lz4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrCorrupt, "empty lz4 value")
	}
	switch data[0] {
	case lz4Raw:
		return data[1:], nil
	case lz4Block:
	default:
		return nil, errors.Wrapf(ErrCorrupt, "lz4 tag %d", data[0])
	}
	size, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, errors.Wrap(ErrCorrupt, "lz4 length header")
	}
	out := make([]byte, size)
	got, err := lz4.UncompressBlock(data[1+n:], out)
	if err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	if uint64(got) != size {
		return nil, errors.Wrapf(ErrCorrupt, "lz4 length %d, want %d", got, size)
	}
	return out, nil
}
