package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

func init() {
	Register("zstd", newZstdCodec)
}

// ZstdCodec is a bytes->bytes compressor backed by klauspost/compress's
// pure-Go zstd implementation.
type ZstdCodec struct {
	level zstd.EncoderLevel
}

func newZstdCodec(cfg Config) (Codec, error) {
	level := zstd.SpeedDefault
	if raw, ok := cfg.Configuration["level"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("codec: zstd: level must be an integer")
		}
		level = zstd.EncoderLevelFromZstd(int(f))
	}
	return &ZstdCodec{level: level}, nil
}

func (c *ZstdCodec) Name() string   { return "zstd" }
func (c *ZstdCodec) Domain() Domain { return BytesBytes }

func (c *ZstdCodec) Encode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, fmt.Errorf("codec: zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (c *ZstdCodec) Decode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd decompress: %w", err)
	}
	return out, nil
}
