package codec

import (
	"fmt"

	"github.com/zarrio/zarr/internal/codec/blosc"
)

func init() {
	Register("blosc", newBloscCodec)
}

// BloscCodec is a bytes->bytes compressor wrapping the blosc frame
// format: shuffle preprocessing plus a choice of sub-codec.
type BloscCodec struct {
	cname    blosc.Cname
	clevel   int
	shuffle  blosc.Shuffle
	typeSize int
}

func newBloscCodec(cfg Config) (Codec, error) {
	cnameStr, _ := cfg.Configuration["cname"].(string)
	var cname blosc.Cname
	switch cnameStr {
	case "", "lz4":
		cname = blosc.LZ4
	case "lz4hc":
		cname = blosc.LZ4HC
	case "zlib":
		cname = blosc.Zlib
	case "zstd":
		cname = blosc.Zstd
	case "blosclz":
		// No Go port of blosclz itself is available; blosc.BloscLZ
		// runs the pure-Go zlib path in its place.
		cname = blosc.BloscLZ
	default:
		return nil, fmt.Errorf("codec: blosc: unsupported cname %q", cnameStr)
	}

	level := 5
	if raw, ok := cfg.Configuration["clevel"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("codec: blosc: clevel must be an integer")
		}
		level = int(f)
	}

	shuffleStr, _ := cfg.Configuration["shuffle"].(string)
	var shuffle blosc.Shuffle
	switch shuffleStr {
	case "", "noshuffle":
		shuffle = blosc.NoShuffle
	case "shuffle":
		shuffle = blosc.ByteShuffle
	case "bitshuffle":
		shuffle = blosc.BitShuffle
	default:
		return nil, fmt.Errorf("codec: blosc: unsupported shuffle %q", shuffleStr)
	}

	typeSize := 1
	if raw, ok := cfg.Configuration["typesize"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("codec: blosc: typesize must be an integer")
		}
		typeSize = int(f)
	}

	return &BloscCodec{cname: cname, clevel: level, shuffle: shuffle, typeSize: typeSize}, nil
}

func (c *BloscCodec) Name() string   { return "blosc" }
func (c *BloscCodec) Domain() Domain { return BytesBytes }

func (c *BloscCodec) Encode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	typeSize := c.typeSize
	if typeSize <= 1 {
		typeSize = ctx.DType.Size
	}
	return blosc.Compress(data, blosc.Options{
		Cname:    c.cname,
		Level:    c.clevel,
		Shuffle:  c.shuffle,
		TypeSize: typeSize,
	})
}

func (c *BloscCodec) Decode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	return blosc.Decompress(data)
}
