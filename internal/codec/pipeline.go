package codec

import (
	"errors"
	"fmt"

	"github.com/zarrio/zarr/internal/buffer"
)

// ErrNoArrayBytesCodec is returned when a pipeline is validated without
// exactly one array->bytes codec.
var ErrNoArrayBytesCodec = errors.New("codec: pipeline must contain exactly one array->bytes codec")

// ErrMisplacedCodec is returned when Insert would place a codec on the
// wrong side of the array->bytes pivot.
var ErrMisplacedCodec = errors.New("codec: codec domain does not match its position in the pipeline")

// Pipeline is an ordered, validated chain: zero or more ArrayArray
// codecs, exactly one ArrayBytes codec, then zero or more BytesBytes
// codecs. Encode runs the chain store-ward; Decode runs it in reverse,
// mirroring the teacher's filter.Pipeline but split across the two
// pivot-separated domains Zarr v3 defines.
type Pipeline struct {
	arrayArray []Codec
	arrayBytes Codec
	bytesBytes []Codec
}

// NewPipeline builds a Pipeline from an ordered codec list and validates
// the chain invariant immediately.
func NewPipeline(codecs []Codec) (*Pipeline, error) {
	p := &Pipeline{}
	for _, c := range codecs {
		if err := p.appendInOrder(c); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) appendInOrder(c Codec) error {
	switch c.Domain() {
	case ArrayArray:
		if p.arrayBytes != nil {
			return fmt.Errorf("%w: array->array codec %q after array->bytes codec", ErrMisplacedCodec, c.Name())
		}
		p.arrayArray = append(p.arrayArray, c)
	case ArrayBytes:
		if p.arrayBytes != nil {
			return fmt.Errorf("%w: second array->bytes codec %q", ErrNoArrayBytesCodec, c.Name())
		}
		p.arrayBytes = c
	case BytesBytes:
		if p.arrayBytes == nil {
			return fmt.Errorf("%w: bytes->bytes codec %q before array->bytes codec", ErrMisplacedCodec, c.Name())
		}
		p.bytesBytes = append(p.bytesBytes, c)
	default:
		return fmt.Errorf("codec: unknown domain for %q", c.Name())
	}
	return nil
}

// Validate reports whether the chain invariant holds: exactly one
// array->bytes codec present.
func (p *Pipeline) Validate() error {
	if p.arrayBytes == nil {
		return ErrNoArrayBytesCodec
	}
	return nil
}

// Codecs returns the pipeline's codecs in wire order (array->array, then
// array->bytes, then bytes->bytes), the order zarr.json's codecs list
// records.
func (p *Pipeline) Codecs() []Codec {
	out := make([]Codec, 0, len(p.arrayArray)+1+len(p.bytesBytes))
	out = append(out, p.arrayArray...)
	out = append(out, p.arrayBytes)
	out = append(out, p.bytesBytes...)
	return out
}

// Insert places c at position i of the wire-order codec list and
// re-validates the chain invariant, rejecting the edit if it would
// produce an invalid pipeline (e.g. a second array->bytes codec, or one
// placed out of domain order).
func (p *Pipeline) Insert(i int, c Codec) error {
	codecs := p.Codecs()
	if i < 0 || i > len(codecs) {
		return fmt.Errorf("codec: insert index %d out of range", i)
	}
	next := make([]Codec, 0, len(codecs)+1)
	next = append(next, codecs[:i]...)
	next = append(next, c)
	next = append(next, codecs[i:]...)
	rebuilt, err := NewPipeline(next)
	if err != nil {
		return err
	}
	*p = *rebuilt
	return nil
}

// Remove deletes the codec at wire-order position i, re-validating the
// chain invariant (removing the sole array->bytes codec is rejected).
func (p *Pipeline) Remove(i int) error {
	codecs := p.Codecs()
	if i < 0 || i >= len(codecs) {
		return fmt.Errorf("codec: remove index %d out of range", i)
	}
	next := make([]Codec, 0, len(codecs)-1)
	next = append(next, codecs[:i]...)
	next = append(next, codecs[i+1:]...)
	rebuilt, err := NewPipeline(next)
	if err != nil {
		return err
	}
	*p = *rebuilt
	return nil
}

// Encode runs buf through the chain store-ward: array->array codecs in
// order, the array->bytes codec, then bytes->bytes codecs in order.
func (p *Pipeline) Encode(ctx Context, buf *buffer.Buffer) ([]byte, error) {
	var cur any = buf
	for _, c := range p.arrayArray {
		out, err := c.Encode(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("codec: %s encode: %w", c.Name(), err)
		}
		cur = out
	}
	out, err := p.arrayBytes.Encode(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("codec: %s encode: %w", p.arrayBytes.Name(), err)
	}
	cur = out
	for _, c := range p.bytesBytes {
		out, err := c.Encode(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("codec: %s encode: %w", c.Name(), err)
		}
		cur = out
	}
	return cur.([]byte), nil
}

// Decode reverses Encode: bytes->bytes codecs in reverse order, then the
// array->bytes codec, then array->array codecs in reverse order.
//
// A non-nil error that wraps ErrChecksumMismatch is non-fatal: the
// returned Buffer is still the best-effort decoded result and callers
// may choose to surface it as a warning rather than abort the read.
func (p *Pipeline) Decode(ctx Context, data []byte) (*buffer.Buffer, error) {
	var cur any = data
	var warning error
	for i := len(p.bytesBytes) - 1; i >= 0; i-- {
		c := p.bytesBytes[i]
		out, err := c.Decode(ctx, cur)
		if err != nil {
			if errors.Is(err, ErrChecksumMismatch) {
				warning = fmt.Errorf("codec: %s decode: %w", c.Name(), err)
				cur = out
				continue
			}
			return nil, fmt.Errorf("codec: %s decode: %w", c.Name(), err)
		}
		cur = out
	}
	pivotCtx := ctx
	pivotCtx.Shape = p.pivotShape(ctx.Shape)
	out, err := p.arrayBytes.Decode(pivotCtx, cur)
	if err != nil {
		return nil, fmt.Errorf("codec: %s decode: %w", p.arrayBytes.Name(), err)
	}
	cur = out
	for i := len(p.arrayArray) - 1; i >= 0; i-- {
		c := p.arrayArray[i]
		out, err := c.Decode(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("codec: %s decode: %w", c.Name(), err)
		}
		cur = out
	}
	return cur.(*buffer.Buffer), warning
}

// pivotShape reports the shape the array->bytes codec's input (on
// Encode) or output (on Decode) has, by applying every array->array
// codec's forward shape transform to chunkShape in order. A codec that
// doesn't implement ShapeTransformer is assumed shape-preserving.
func (p *Pipeline) pivotShape(chunkShape []int) []int {
	shape := chunkShape
	for _, c := range p.arrayArray {
		if t, ok := c.(ShapeTransformer); ok {
			shape = t.TransformShape(shape)
		}
	}
	return shape
}

// Len returns the total number of codecs in the pipeline.
func (p *Pipeline) Len() int {
	n := len(p.arrayArray) + len(p.bytesBytes)
	if p.arrayBytes != nil {
		n++
	}
	return n
}

// Copy returns an independent deep-enough copy of the pipeline: a fresh
// slice backing so Insert/Remove on the copy never alias the original.
// Concrete codecs are shared by reference rather than cloned, which is
// only safe because Codec's statelessness is a load-bearing invariant
// (see the Codec doc comment) — ChunkIO relies on it to hand every
// chunk its own Pipeline built from the same array metadata without
// copying the codecs themselves.
func (p *Pipeline) Copy() *Pipeline {
	return &Pipeline{
		arrayArray: append([]Codec(nil), p.arrayArray...),
		arrayBytes: p.arrayBytes,
		bytesBytes: append([]Codec(nil), p.bytesBytes...),
	}
}
