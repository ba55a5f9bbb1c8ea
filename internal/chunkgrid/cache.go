package chunkgrid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zarrio/zarr/internal/buffer"
	"github.com/zarrio/zarr/internal/codec"
	"github.com/zarrio/zarr/internal/dtype"
	"github.com/zarrio/zarr/internal/store"
)

// maxConcurrentChunkReads bounds how many ChunkIO.Read calls a single
// ReadRegion fans out at once; ChunkIOs are independent (each owns its
// own codec pipeline copy) so this is purely a resource cap, not a
// correctness requirement.
const maxConcurrentChunkReads = 8

// KeyFunc resolves a chunk coordinate to its store key.
type KeyFunc func(coord []int) string

// Cache owns the live mapping from chunk coordinate to ChunkIO handle
// for one array, and implements the array-level read/write operations
// the regular chunk grid algorithm describes: enumerate touched chunks,
// acquire or create each one's ChunkIO, and copy the overlap slab
// to/from the caller's buffer.
type Cache struct {
	grid      *Grid
	st        store.Store
	dtype     *dtype.Type
	pipeline  *codec.Pipeline
	keyFunc   KeyFunc
	fillValue any

	mu  sync.Mutex
	ios map[string]*ChunkIO
}

// NewCache returns a Cache for one array's chunk grid. fillValue is the
// array's configured fill value, threaded down to every ChunkIO it
// creates (nil falls back to the dtype default).
func NewCache(grid *Grid, st store.Store, dt *dtype.Type, pipeline *codec.Pipeline, keyFunc KeyFunc, fillValue any) *Cache {
	return &Cache{
		grid:      grid,
		st:        st,
		dtype:     dt,
		pipeline:  pipeline,
		keyFunc:   keyFunc,
		fillValue: fillValue,
		ios:       map[string]*ChunkIO{},
	}
}

func coordKey(coord []int) string {
	parts := make([]string, len(coord))
	for i, c := range coord {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// chunkIOFor returns the ChunkIO for coord, creating it on first touch.
func (c *Cache) chunkIOFor(coord []int) *ChunkIO {
	ck := coordKey(coord)
	c.mu.Lock()
	defer c.mu.Unlock()
	io, ok := c.ios[ck]
	if !ok {
		io = NewChunkIO(c.st, c.keyFunc(coord), c.dtype, c.grid.ChunkShape, c.pipeline, c.fillValue)
		c.ios[ck] = io
	}
	return io
}

// ReadRegion fills dst (shaped stop-start+1 per dimension) with the
// contents of the closed selection [start, stop]. Touched chunks are
// read concurrently: ChunkIO.Read is safe to call in parallel across
// distinct chunks because each ChunkIO is independent.
func (c *Cache) ReadRegion(ctx context.Context, start, stop []int, dst *buffer.Buffer) error {
	overlaps, err := c.grid.Overlaps(start, stop)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChunkReads)

	var mu sync.Mutex
	var warnings []error

	for _, ov := range overlaps {
		ov := ov
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			io := c.chunkIOFor(ov.Coord)
			slab, err := io.Read(ov.IntraOffset, ov.Count)
			if err != nil && slab == nil {
				return fmt.Errorf("chunkgrid: read chunk %v: %w", ov.Coord, err)
			}
			if err != nil {
				mu.Lock()
				warnings = append(warnings, err)
				mu.Unlock()
			}
			mu.Lock()
			copyErr := buffer.CopyRegion(dst, ov.DestOffset, slab, zeros(len(ov.Count)), ov.Count)
			mu.Unlock()
			return copyErr
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if len(warnings) > 0 {
		return warnings[0]
	}
	return nil
}

// WriteRegion copies src (shaped stop-start+1 per dimension) into the
// closed selection [start, stop], flushing every touched chunk before
// returning, per the ordering guarantee that a single write call leaves
// no unflushed state behind it.
func (c *Cache) WriteRegion(start, stop []int, src *buffer.Buffer) error {
	overlaps, err := c.grid.Overlaps(start, stop)
	if err != nil {
		return err
	}
	for _, ov := range overlaps {
		io := c.chunkIOFor(ov.Coord)
		slab := buffer.New(c.dtype, ov.Count)
		if err := buffer.CopyRegion(slab, zeros(len(ov.Count)), src, ov.DestOffset, ov.Count); err != nil {
			return err
		}
		if err := io.Write(slab, ov.IntraOffset, true); err != nil {
			return fmt.Errorf("chunkgrid: write chunk %v: %w", ov.Coord, err)
		}
	}
	return nil
}

// FlushAll flushes every ChunkIO this cache has created, dirty or not
// (Flush on a clean ChunkIO is a no-op); used when closing an array.
func (c *Cache) FlushAll() error {
	c.mu.Lock()
	ios := make([]*ChunkIO, 0, len(c.ios))
	for _, io := range c.ios {
		ios = append(ios, io)
	}
	c.mu.Unlock()
	for _, io := range ios {
		if err := io.Flush(); err != nil {
			return err
		}
	}
	return nil
}
