// Package codec implements the Zarr v3 codec pipeline: a chain of
// transformations a chunk's bytes pass through between the store and the
// in-memory array representation, split into the three domains the format
// distinguishes (array→array, array→bytes, bytes→bytes).
package codec

import (
	"fmt"

	"github.com/zarrio/zarr/internal/buffer"
	"github.com/zarrio/zarr/internal/dtype"
)

// Domain identifies which side of the pivot a codec operates on.
type Domain int

const (
	// ArrayArray codecs transform a Buffer into another Buffer of the
	// same element count (e.g. transpose).
	ArrayArray Domain = iota
	// ArrayBytes codecs serialize a Buffer to a flat byte slice, or the
	// reverse. Exactly one must appear in a valid pipeline.
	ArrayBytes
	// BytesBytes codecs transform a byte slice into another byte slice
	// (compressors, checksums).
	BytesBytes
)

func (d Domain) String() string {
	switch d {
	case ArrayArray:
		return "array->array"
	case ArrayBytes:
		return "array->bytes"
	case BytesBytes:
		return "bytes->bytes"
	default:
		return "unknown"
	}
}

// Context carries the static chunk-level facts a codec needs to do its
// job: the array's element dtype, the shape of the chunk being coded,
// and the array's configured fill value (nil meaning "use the dtype
// default"). Codecs must not mutate it.
//
// Shape is the shape at whatever point in the array<->array chain the
// codec receiving this Context sits at, not necessarily the chunk's
// on-disk shape: Pipeline overrides it for the array->bytes codec on
// Decode so a chunk whose array->array codecs changed its shape (e.g.
// transpose) still reconstructs into the right one.
type Context struct {
	DType     *dtype.Type
	Shape     []int
	FillValue any
}

// Codec is the interface implemented by every pipeline stage. Encode runs
// store-ward (array -> ... -> bytes), Decode runs the reverse. The
// concrete Go type passed through in/out depends on Domain:
// ArrayArray and the array side of ArrayBytes carry *buffer.Buffer,
// BytesBytes and the bytes side of ArrayBytes carry []byte.
//
// Concrete codecs must be stateless after construction: Pipeline.Copy
// shares Codec values by reference across concurrently-running chunk
// pipelines rather than cloning them, so a codec that mutates its own
// fields in Encode/Decode would corrupt unrelated chunks. A codec that
// needs per-call state must carry it in a value derived from Context or
// the input, never in a receiver field.
type Codec interface {
	Name() string
	Domain() Domain
	Encode(ctx Context, in any) (any, error)
	Decode(ctx Context, in any) (any, error)
}

// Config is the parsed form of one entry of an array's codecs metadata
// list, as it appears in zarr.json: {"name": ..., "configuration": {...}}.
type Config struct {
	Name          string
	Configuration map[string]any
}

// Factory builds a Codec from its parsed configuration.
type Factory func(cfg Config) (Codec, error)

var registry = map[string]Factory{}

// Register adds a codec factory to the package registry, keyed by the
// wire name used in zarr.json codecs entries. Called from each concrete
// codec's init.
func Register(name string, f Factory) {
	registry[name] = f
}

// New builds the codec named by cfg.Name from the registry.
func New(cfg Config) (Codec, error) {
	f, ok := registry[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", cfg.Name)
	}
	return f(cfg)
}

// asBuffer and asBytes centralize the domain type assertions every
// concrete codec otherwise repeats.
func asBuffer(v any) (*buffer.Buffer, error) {
	b, ok := v.(*buffer.Buffer)
	if !ok {
		return nil, fmt.Errorf("codec: expected *buffer.Buffer, got %T", v)
	}
	return b, nil
}

func asBytes(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("codec: expected []byte, got %T", v)
	}
	return b, nil
}
