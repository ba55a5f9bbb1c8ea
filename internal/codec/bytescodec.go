package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/zarrio/zarr/internal/buffer"
)

func init() {
	Register("bytes", newBytesCodec)
}

// BytesCodec is the array->bytes pivot codec: it flattens a Buffer's
// elements into a packed byte slice in the configured wire endianness
// (absent elements are written as the array's fill value, or the dtype's
// default when the array sets none, since that is the only
// representation bytes on disk can carry) and, on
// decode, reconstructs absence by comparing each element back against
// the fill value within the dtype's tolerance.
type BytesCodec struct {
	order binary.ByteOrder
	name  string
}

func newBytesCodec(cfg Config) (Codec, error) {
	endian, _ := cfg.Configuration["endian"].(string)
	switch endian {
	case "", "little":
		return &BytesCodec{order: binary.LittleEndian, name: "little"}, nil
	case "big":
		return &BytesCodec{order: binary.BigEndian, name: "big"}, nil
	default:
		return nil, fmt.Errorf("codec: bytes: unknown endian %q", endian)
	}
}

func (c *BytesCodec) Name() string   { return "bytes" }
func (c *BytesCodec) Domain() Domain { return ArrayBytes }

func (c *BytesCodec) Encode(ctx Context, in any) (any, error) {
	buf, err := asBuffer(in)
	if err != nil {
		return nil, err
	}
	fill := ctx.DType.ResolveFill(ctx.FillValue)
	n := buffer.NumElements(buf.Shape)
	out := make([]byte, n*ctx.DType.Size)
	for i := 0; i < n; i++ {
		coords := unflattenShape(buf.Shape, i)
		v, absent, err := buf.Get(coords)
		if err != nil {
			return nil, err
		}
		if absent {
			v = fill
		}
		if err := ctx.DType.PutElement(out[i*ctx.DType.Size:], v, c.order); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *BytesCodec) Decode(ctx Context, in any) (any, error) {
	data, err := asBytes(in)
	if err != nil {
		return nil, err
	}
	n := buffer.NumElements(ctx.Shape)
	want := n * ctx.DType.Size
	if len(data) != want {
		return nil, fmt.Errorf("codec: bytes: expected %d bytes, got %d", want, len(data))
	}
	fill := ctx.DType.ResolveFill(ctx.FillValue)
	out := buffer.New(ctx.DType, ctx.Shape)
	for i := 0; i < n; i++ {
		v, err := ctx.DType.GetElement(data[i*ctx.DType.Size:], c.order)
		if err != nil {
			return nil, err
		}
		coords := unflattenShape(ctx.Shape, i)
		absent := ctx.DType.EqualsFill(v, fill)
		if err := out.Set(coords, v, absent); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func unflattenShape(shape []int, flat int) []int {
	coords := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		if shape[d] == 0 {
			continue
		}
		coords[d] = flat % shape[d]
		flat /= shape[d]
	}
	return coords
}
