package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

func init() {
	Register("gzip", newGzipCodec)
}

// GzipCodec is a bytes->bytes compressor backed by klauspost/compress's
// drop-in gzip implementation.
type GzipCodec struct {
	level int
}

func newGzipCodec(cfg Config) (Codec, error) {
	level := gzip.DefaultCompression
	if raw, ok := cfg.Configuration["level"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("codec: gzip: level must be an integer")
		}
		level = int(f)
	}
	return &GzipCodec{level: level}, nil
}

func (c *GzipCodec) Name() string   { return "gzip" }
func (c *GzipCodec) Domain() Domain { return BytesBytes }

func (c *GzipCodec) Encode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("codec: gzip: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("codec: gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *GzipCodec) Decode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("codec: gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: gzip decompress: %w", err)
	}
	return out, nil
}
