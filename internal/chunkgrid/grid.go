package chunkgrid

import "fmt"

// Grid is the regular chunk grid: array_shape and chunk_shape at the
// same rank, with grid_shape[d] = ceil(array_shape[d] / chunk_shape[d]).
type Grid struct {
	ArrayShape []int
	ChunkShape []int
	GridShape  []int
}

// New validates rank agreement and positivity and derives GridShape.
func New(arrayShape, chunkShape []int) (*Grid, error) {
	if len(arrayShape) != len(chunkShape) {
		return nil, fmt.Errorf("chunkgrid: rank mismatch: shape has %d dims, chunk_shape has %d", len(arrayShape), len(chunkShape))
	}
	gridShape := make([]int, len(arrayShape))
	for d := range arrayShape {
		if arrayShape[d] < 1 {
			return nil, fmt.Errorf("chunkgrid: shape[%d]=%d must be >= 1", d, arrayShape[d])
		}
		if chunkShape[d] < 1 {
			return nil, fmt.Errorf("chunkgrid: chunk_shape[%d]=%d must be >= 1", d, chunkShape[d])
		}
		gridShape[d] = (arrayShape[d] + chunkShape[d] - 1) / chunkShape[d]
	}
	return &Grid{
		ArrayShape: append([]int(nil), arrayShape...),
		ChunkShape: append([]int(nil), chunkShape...),
		GridShape:  gridShape,
	}, nil
}

// Overlap describes one touched chunk's contribution to a hyperslab
// selection: the chunk's coordinate, the offset within the chunk where
// the overlap begins, the offset within the caller's destination buffer
// where it lands, and the per-dimension extent of the overlap.
type Overlap struct {
	Coord       []int
	IntraOffset []int
	DestOffset  []int
	Count       []int
}

// Overlaps enumerates every chunk touched by the closed range
// [start, stop] (1-based, inclusive along every dimension, matching the
// host-language hyperslab convention this package is specified against)
// and computes each one's contribution, per the regular chunk grid
// algorithm: for each dimension, the touched chunk index range is
// floor((start-1)/chunk) .. floor((stop-1)/chunk), and within each
// touched chunk the overlap is the intersection of [start,stop] with the
// chunk's own extent.
func (g *Grid) Overlaps(start, stop []int) ([]Overlap, error) {
	rank := len(g.ArrayShape)
	if len(start) != rank || len(stop) != rank {
		return nil, fmt.Errorf("chunkgrid: selection rank mismatch")
	}
	for d := 0; d < rank; d++ {
		if start[d] < 1 || stop[d] < start[d] || stop[d] > g.ArrayShape[d] {
			return nil, fmt.Errorf("chunkgrid: selection [%d,%d] out of bounds for dim %d (extent %d)", start[d], stop[d], d, g.ArrayShape[d])
		}
	}

	cLo := make([]int, rank)
	cHi := make([]int, rank)
	for d := 0; d < rank; d++ {
		cLo[d] = (start[d] - 1) / g.ChunkShape[d]
		cHi[d] = (stop[d] - 1) / g.ChunkShape[d]
	}

	var out []Overlap
	coord := make([]int, rank)
	var enumerate func(dim int) error
	enumerate = func(dim int) error {
		if dim == rank {
			ov, err := g.overlapFor(coord, start, stop)
			if err != nil {
				return err
			}
			out = append(out, ov)
			return nil
		}
		for c := cLo[dim]; c <= cHi[dim]; c++ {
			coord[dim] = c
			if err := enumerate(dim + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if rank == 0 {
		out = append(out, Overlap{})
		return out, nil
	}
	if err := enumerate(0); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Grid) overlapFor(coord, start, stop []int) (Overlap, error) {
	rank := len(coord)
	ov := Overlap{
		Coord:       append([]int(nil), coord...),
		IntraOffset: make([]int, rank),
		DestOffset:  make([]int, rank),
		Count:       make([]int, rank),
	}
	for d := 0; d < rank; d++ {
		origin := coord[d]*g.ChunkShape[d] + 1
		ovStart := start[d]
		if origin > ovStart {
			ovStart = origin
		}
		ovEnd := stop[d]
		chunkEnd := origin + g.ChunkShape[d] - 1
		if chunkEnd < ovEnd {
			ovEnd = chunkEnd
		}
		ov.Count[d] = ovEnd - ovStart + 1
		ov.IntraOffset[d] = ovStart - origin
		ov.DestOffset[d] = ovStart - start[d]
	}
	return ov, nil
}
