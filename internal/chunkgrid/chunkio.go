package chunkgrid

import (
	"sync"

	"github.com/zarrio/zarr/internal/buffer"
	"github.com/zarrio/zarr/internal/codec"
	"github.com/zarrio/zarr/internal/dtype"
	"github.com/zarrio/zarr/internal/store"
)

// ChunkIO is the read-modify-write unit for a single chunk: a lazily
// loaded decoded buffer, a dirty flag, and the references needed to
// reload from or flush to the backing store. Per the concurrency model,
// each ChunkIO owns an independent copy of the codec pipeline so two
// ChunkIOs never share codec state.
type ChunkIO struct {
	mu sync.Mutex

	st         store.Store
	key        string
	dtype      *dtype.Type
	chunkShape []int
	fillValue  any
	pipeline   *codec.Pipeline

	buf   *buffer.Buffer
	dirty bool
}

// NewChunkIO returns a ChunkIO over key, with its own copy of pipeline.
// fillValue is the array's configured fill value (nil falls back to the
// dtype default).
func NewChunkIO(st store.Store, key string, dt *dtype.Type, chunkShape []int, pipeline *codec.Pipeline, fillValue any) *ChunkIO {
	return &ChunkIO{
		st:         st,
		key:        key,
		dtype:      dt,
		chunkShape: chunkShape,
		fillValue:  fillValue,
		pipeline:   pipeline.Copy(),
	}
}

func (c *ChunkIO) ctx() codec.Context {
	return codec.Context{DType: c.dtype, Shape: c.chunkShape, FillValue: c.fillValue}
}

// loadChunkLocked ensures c.buf is populated, fetching and decoding from the
// store on first use (or materializing an all-fill-value buffer when the
// key is absent). Callers must hold c.mu.
func (c *ChunkIO) loadChunkLocked() error {
	if c.buf != nil {
		return nil
	}
	data, err := c.st.Get(c.key, nil)
	if err != nil {
		return err
	}
	if data == nil {
		c.buf = buffer.NewFill(c.dtype, c.chunkShape, c.dtype.ResolveFill(c.fillValue))
		return nil
	}
	decoded, err := c.pipeline.Decode(c.ctx(), data)
	if err != nil && decoded == nil {
		return err
	}
	c.buf = decoded
	return err // non-nil only for a non-fatal checksum-mismatch warning
}

// Read loads the chunk and returns the sub-array at [offset, offset+count).
func (c *ChunkIO) Read(offset, count []int) (*buffer.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	warn := c.loadChunkLocked()
	if warn != nil && c.buf == nil {
		return nil, warn
	}
	out := buffer.New(c.dtype, count)
	if err := buffer.CopyRegion(out, zeros(len(count)), c.buf, offset, count); err != nil {
		return nil, err
	}
	return out, warn
}

// Write copies data into the chunk buffer at offset. A write whose
// extent equals the full chunk shape rebinds the buffer directly rather
// than loading the old contents first (the full-chunk-write
// optimization the spec calls out). If flush is true, Flush runs before
// Write returns.
func (c *ChunkIO) Write(data *buffer.Buffer, offset []int, flush bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if isFullChunk(data.Shape, c.chunkShape) {
		c.buf = data
	} else {
		if err := c.loadChunkLocked(); err != nil && c.buf == nil {
			return err
		}
		if err := buffer.CopyRegion(c.buf, offset, data, zeros(len(offset)), data.Shape); err != nil {
			return err
		}
	}
	c.dirty = true

	if flush {
		return c.flushLocked()
	}
	return nil
}

// Flush persists the chunk if dirty. An entirely-absent buffer erases
// the backing key instead of writing it, the core sparsity guarantee.
func (c *ChunkIO) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *ChunkIO) flushLocked() error {
	if !c.dirty {
		return nil
	}
	if c.buf.AllAbsent() {
		if _, err := c.st.Erase(c.key); err != nil {
			return err
		}
		c.dirty = false
		return nil
	}
	data, err := c.pipeline.Encode(c.ctx(), c.buf)
	if err != nil {
		return err
	}
	if err := c.st.Set(c.key, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Dirty reports whether the chunk has unflushed writes.
func (c *ChunkIO) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func isFullChunk(shape, chunkShape []int) bool {
	if len(shape) != len(chunkShape) {
		return false
	}
	for d := range shape {
		if shape[d] != chunkShape[d] {
			return false
		}
	}
	return true
}

func zeros(n int) []int { return make([]int, n) }
