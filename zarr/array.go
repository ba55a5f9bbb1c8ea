package zarr

import (
	"context"
	"fmt"

	"github.com/zarrio/zarr/internal/buffer"
	"github.com/zarrio/zarr/internal/chunkgrid"
	"github.com/zarrio/zarr/internal/codec"
	"github.com/zarrio/zarr/internal/dtype"
	"github.com/zarrio/zarr/internal/metadata"
	"github.com/zarrio/zarr/internal/store"
)

// Array is a Node backed by a regular chunk grid. Read and Write take
// 1-based, inclusive selections along every dimension, the hyperslab
// convention the regular chunk grid algorithm (and the scenarios this
// package's tests are grounded on) is specified against.
type Array struct {
	nodeBase

	shape      []int
	chunkShape []int
	dt         *dtype.Type
	fillValue  any

	docTemplate *metadata.ArrayDocument
	grid        *chunkgrid.Grid
	cache       *chunkgrid.Cache
}

var _ Node = (*Array)(nil)

// newArrayFromDocument builds a live Array (its chunk grid, codec
// pipeline, and key function) from a decoded zarr.json array document.
// It does not write anything to the store; callers persist doc
// themselves, before or after linking the array into its parent.
func newArrayFromDocument(st store.Store, name string, parent *Group, doc *metadata.ArrayDocument) (*Array, error) {
	dt, err := dtype.ByName(doc.DataType)
	if err != nil {
		return nil, err
	}
	codecs := make([]codec.Codec, len(doc.Codecs))
	for i, cfg := range doc.Codecs {
		c, err := codec.New(codec.Config{Name: cfg.Name, Configuration: cfg.Configuration})
		if err != nil {
			return nil, fmt.Errorf("codec %q: %w", cfg.Name, err)
		}
		codecs[i] = c
	}
	pipeline, err := codec.NewPipeline(codecs)
	if err != nil {
		return nil, err
	}
	chunkShape := doc.ChunkGrid.Configuration.ChunkShape
	grid, err := chunkgrid.New(doc.Shape, chunkShape)
	if err != nil {
		return nil, err
	}

	a := &Array{
		nodeBase:   nodeBase{name: name, parent: parent, st: st, attrs: doc.Attributes},
		shape:      append([]int(nil), doc.Shape...),
		chunkShape: append([]int(nil), chunkShape...),
		dt:         dt,
		fillValue:  doc.FillValue,
		grid:       grid,
	}

	template := *doc
	template.Attributes = nil
	a.docTemplate = &template

	scheme, sep := chunkKeyScheme(doc.ChunkKeyEncoding, st.Separator())
	prefix := storePrefixOf(a)
	keyFunc := func(coord []int) string {
		return joinPrefix(prefix, metadata.ChunkKeySuffix(coord, sep, scheme))
	}
	a.cache = chunkgrid.NewCache(grid, st, dt, pipeline, keyFunc, doc.FillValue)
	return a, nil
}

// chunkKeyScheme resolves an array document's chunk_key_encoding into
// the (scheme, separator) pair ChunkKeySuffix needs, defaulting to the
// v3 "default" scheme when the document is silent (as a freshly built
// ArrayMetadataBuilder document always is; the builder never sets this
// field since the core spec leaves it to the array, not the builder).
// storeSep is the backing store's declared default chunk-key separator,
// used whenever the document names no separator and does not name the
// "v2" scheme (which defaults to "."); an explicit separator always wins.
func chunkKeyScheme(enc metadata.ChunkKeyEncodingConfig, storeSep string) (metadata.ChunkKeyScheme, string) {
	sep := enc.Configuration.Separator
	switch enc.Name {
	case "v2":
		if sep == "" {
			sep = "."
		}
		return metadata.SchemeV2Style, sep
	default:
		if sep == "" {
			sep = storeSep
		}
		return metadata.SchemeDefault, sep
	}
}

// Shape returns the array's extent along each dimension.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// ChunkShape returns the regular chunk grid's chunk extent.
func (a *Array) ChunkShape() []int { return append([]int(nil), a.chunkShape...) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// DType returns the array's element type.
func (a *Array) DType() *dtype.Type { return a.dt }

// FillValue returns the value absent elements materialize to on read.
func (a *Array) FillValue() any { return a.fillValue }

// Read returns the closed selection [start, stop] as a Buffer; absent
// elements (no backing chunk, or never written within a materialized
// chunk) carry the array's fill value and are marked absent.
func (a *Array) Read(ctx context.Context, start, stop []int) (*buffer.Buffer, error) {
	count := make([]int, len(start))
	for d := range start {
		count[d] = stop[d] - start[d] + 1
	}
	dst := buffer.New(a.dt, count)
	if err := a.cache.ReadRegion(ctx, start, stop, dst); err != nil {
		return nil, fmt.Errorf("zarr: read %q: %w", a.Path(), err)
	}
	return dst, nil
}

// Write copies src (shaped stop-start+1 per dimension) into the closed
// selection [start, stop], flushing every touched chunk before
// returning.
func (a *Array) Write(start, stop []int, src *buffer.Buffer) error {
	if err := a.cache.WriteRegion(start, stop, src); err != nil {
		return fmt.Errorf("zarr: write %q: %w", a.Path(), err)
	}
	return nil
}

// ReadGo reads [start, stop] and materializes it as a flat, row-major Go
// slice of the type matching DType, alongside a parallel absent mask
// (nil when every read element was present).
func (a *Array) ReadGo(ctx context.Context, start, stop []int) (data any, absent []bool, err error) {
	buf, err := a.Read(ctx, start, stop)
	if err != nil {
		return nil, nil, err
	}
	return buffer.ToGo(buf)
}

// WriteGo writes a flat, row-major Go slice (its element type must match
// DType) into [start, stop]. absent, if non-nil, must have one entry per
// element and marks which ones should be recorded as absent rather than
// holding data.
func (a *Array) WriteGo(start, stop []int, data any, absent []bool) error {
	count := make([]int, len(start))
	for d := range start {
		count[d] = stop[d] - start[d] + 1
	}
	buf, err := buffer.FromGo(a.dt, count, data, absent)
	if err != nil {
		return fmt.Errorf("zarr: write %q: %w", a.Path(), err)
	}
	return a.Write(start, stop, buf)
}

// ReadInt32 is a typed convenience wrapper over ReadGo for int32 arrays.
func (a *Array) ReadInt32(ctx context.Context, start, stop []int) ([]int32, []bool, error) {
	data, absent, err := a.ReadGo(ctx, start, stop)
	if err != nil {
		return nil, nil, err
	}
	out, ok := data.([]int32)
	if !ok {
		return nil, nil, fmt.Errorf("zarr: %q is not int32", a.Path())
	}
	return out, absent, nil
}

// ReadInt64 is a typed convenience wrapper over ReadGo for int64 arrays.
func (a *Array) ReadInt64(ctx context.Context, start, stop []int) ([]int64, []bool, error) {
	data, absent, err := a.ReadGo(ctx, start, stop)
	if err != nil {
		return nil, nil, err
	}
	out, ok := data.([]int64)
	if !ok {
		return nil, nil, fmt.Errorf("zarr: %q is not int64", a.Path())
	}
	return out, absent, nil
}

// ReadFloat32 is a typed convenience wrapper over ReadGo for float32 arrays.
func (a *Array) ReadFloat32(ctx context.Context, start, stop []int) ([]float32, []bool, error) {
	data, absent, err := a.ReadGo(ctx, start, stop)
	if err != nil {
		return nil, nil, err
	}
	out, ok := data.([]float32)
	if !ok {
		return nil, nil, fmt.Errorf("zarr: %q is not float32", a.Path())
	}
	return out, absent, nil
}

// ReadFloat64 is a typed convenience wrapper over ReadGo for float64 arrays.
func (a *Array) ReadFloat64(ctx context.Context, start, stop []int) ([]float64, []bool, error) {
	data, absent, err := a.ReadGo(ctx, start, stop)
	if err != nil {
		return nil, nil, err
	}
	out, ok := data.([]float64)
	if !ok {
		return nil, nil, fmt.Errorf("zarr: %q is not float64", a.Path())
	}
	return out, absent, nil
}

// Flush persists every chunk this array has touched in memory. Save only
// persists the zarr.json document (shape, dtype, codecs, attributes);
// Flush is what actually writes chunk data, and callers that mutate an
// array's chunks outside of Write (there are none in this package, but
// embedders may add some) should call it before the array goes out of
// scope.
func (a *Array) Flush() error {
	if err := a.cache.FlushAll(); err != nil {
		return fmt.Errorf("zarr: flush %q: %w", a.Path(), err)
	}
	return nil
}

// Save persists a's attributes if they have been mutated since the last
// Save, rewriting the full zarr.json document (the shape/dtype/codec
// fields are carried unchanged from docTemplate).
func (a *Array) Save() error {
	if !a.dirty {
		return nil
	}
	doc := *a.docTemplate
	doc.Attributes = a.attrs
	m, err := metadata.ToMap(&doc)
	if err != nil {
		return fmt.Errorf("zarr: save array %q: %w", a.Path(), err)
	}
	if err := a.st.SetMetadata(storePrefixOf(a), m); err != nil {
		return fmt.Errorf("zarr: save array %q: %w", a.Path(), err)
	}
	a.dirty = false
	return nil
}
