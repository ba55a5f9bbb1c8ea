package codec

import (
	"fmt"

	"github.com/zarrio/zarr/internal/buffer"
)

func init() {
	Register("transpose", newTransposeCodec)
}

// TransposeCodec permutes a chunk's dimension order. order[i] names which
// source dimension becomes output dimension i. The same order is used on
// both Encode and Decode: Encode applies it, Decode applies its inverse.
type TransposeCodec struct {
	order []int
}

// ShapeTransformer is implemented by array->array codecs that change a
// chunk's shape on Encode. Pipeline.Decode uses it to derive the shape
// the array->bytes codec must reconstruct into, since Decode has no
// buffer at the pivot to read a shape from the way Encode does.
type ShapeTransformer interface {
	TransformShape(shape []int) []int
}

// TransformShape reports the shape Encode would produce from a buffer of
// shape, without touching any data: dimension i of the result is
// dimension order[i] of the input.
func (c *TransposeCodec) TransformShape(shape []int) []int {
	out := make([]int, len(c.order))
	for i, o := range c.order {
		out[i] = shape[o]
	}
	return out
}

func newTransposeCodec(cfg Config) (Codec, error) {
	raw, ok := cfg.Configuration["order"].([]any)
	if !ok {
		return nil, fmt.Errorf("codec: transpose: missing order configuration")
	}
	order := make([]int, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("codec: transpose: order entries must be integers")
		}
		order[i] = int(f)
	}
	if err := validatePermutation(order); err != nil {
		return nil, err
	}
	return &TransposeCodec{order: order}, nil
}

func validatePermutation(order []int) error {
	seen := make([]bool, len(order))
	for _, o := range order {
		if o < 0 || o >= len(order) || seen[o] {
			return fmt.Errorf("codec: transpose: order %v is not a permutation", order)
		}
		seen[o] = true
	}
	return nil
}

func (c *TransposeCodec) Name() string   { return "transpose" }
func (c *TransposeCodec) Domain() Domain { return ArrayArray }

func (c *TransposeCodec) Encode(ctx Context, in any) (any, error) {
	buf, err := asBuffer(in)
	if err != nil {
		return nil, err
	}
	return c.permute(buf, c.order)
}

func (c *TransposeCodec) Decode(ctx Context, in any) (any, error) {
	buf, err := asBuffer(in)
	if err != nil {
		return nil, err
	}
	return c.permute(buf, inverse(c.order))
}

func inverse(order []int) []int {
	inv := make([]int, len(order))
	for i, o := range order {
		inv[o] = i
	}
	return inv
}

// permute builds a new buffer whose dimension i is src's dimension
// order[i], copying element by element (transposition has no contiguous
// run to exploit once the permutation reorders the innermost axis).
func (c *TransposeCodec) permute(src *buffer.Buffer, order []int) (*buffer.Buffer, error) {
	dstShape := make([]int, len(order))
	for i, o := range order {
		dstShape[i] = src.Shape[o]
	}
	dst := buffer.New(src.DType, dstShape)
	n := buffer.NumElements(src.Shape)
	for i := 0; i < n; i++ {
		srcCoords := unflattenShape(src.Shape, i)
		dstCoords := make([]int, len(order))
		for d, o := range order {
			dstCoords[d] = srcCoords[o]
		}
		v, absent, err := src.Get(srcCoords)
		if err != nil {
			return nil, err
		}
		if err := dst.Set(dstCoords, v, absent); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
