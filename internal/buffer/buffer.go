package buffer

import (
	"encoding/binary"
	"fmt"

	"github.com/zarrio/zarr/internal/dtype"
)

// nativeOrder is the byte order Buffer.Data is packed in internally.
// Codecs translate to/from the array's declared wire endianness.
var nativeOrder = binary.LittleEndian

// Buffer is a typed, dense, row-major n-dimensional array held as packed
// bytes, with an optional per-element absent bitset. A nil Absent slice
// means every element is present.
type Buffer struct {
	DType  *dtype.Type
	Shape  []int
	Data   []byte
	Absent []bool
}

// NumElements returns the product of Shape.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// New allocates a zero-valued buffer of the given shape with no absent
// tracking (every element present, zero-valued).
func New(dt *dtype.Type, shape []int) *Buffer {
	n := NumElements(shape)
	return &Buffer{
		DType: dt,
		Shape: append([]int(nil), shape...),
		Data:  make([]byte, n*dt.Size),
	}
}

// NewFill allocates a buffer whose every element equals fill and is
// marked absent (used to materialize a chunk that has no backing key in
// the store). fill is the
// array's own configured fill value, not necessarily the dtype default.
func NewFill(dt *dtype.Type, shape []int, fill any) *Buffer {
	b := New(dt, shape)
	n := NumElements(shape)
	fillBytes := make([]byte, dt.Size)
	dt.PutElement(fillBytes, fill, nativeOrder)
	for i := 0; i < n; i++ {
		copy(b.Data[i*dt.Size:(i+1)*dt.Size], fillBytes)
	}
	b.Absent = make([]bool, n)
	for i := range b.Absent {
		b.Absent[i] = true
	}
	return b
}

// AllAbsent reports whether every element of the buffer is marked absent.
// A nil Absent mask (meaning "nothing is tracked as absent") is never
// AllAbsent unless the buffer has zero elements.
func (b *Buffer) AllAbsent() bool {
	if len(b.Absent) == 0 {
		return NumElements(b.Shape) == 0
	}
	for _, a := range b.Absent {
		if !a {
			return false
		}
	}
	return true
}

// strides returns element strides (not byte strides), row-major, dim 0
// outermost.
func strides(shape []int) []int {
	n := len(shape)
	s := make([]int, n)
	if n == 0 {
		return s
	}
	s[n-1] = 1
	for d := n - 2; d >= 0; d-- {
		s[d] = s[d+1] * shape[d+1]
	}
	return s
}

func (b *Buffer) flatIndex(coords []int) int {
	s := strides(b.Shape)
	idx := 0
	for d, c := range coords {
		idx += c * s[d]
	}
	return idx
}

// Get returns the value at coords and whether it is absent.
func (b *Buffer) Get(coords []int) (any, bool, error) {
	idx := b.flatIndex(coords)
	v, err := b.DType.GetElement(b.Data[idx*b.DType.Size:], nativeOrder)
	if err != nil {
		return nil, false, err
	}
	absent := b.Absent != nil && b.Absent[idx]
	return v, absent, nil
}

// Set writes the value at coords, marking it absent if requested (lazily
// allocating the Absent mask on first use).
func (b *Buffer) Set(coords []int, v any, absent bool) error {
	idx := b.flatIndex(coords)
	if err := b.DType.PutElement(b.Data[idx*b.DType.Size:], v, nativeOrder); err != nil {
		return err
	}
	if absent {
		if b.Absent == nil {
			b.Absent = make([]bool, NumElements(b.Shape))
		}
		b.Absent[idx] = true
	} else if b.Absent != nil {
		b.Absent[idx] = false
	}
	return nil
}

// CopyRegion copies a rectangular region of extent count from src (at
// srcOrigin) into dst (at dstOrigin). Both buffers must share rank and
// dtype. The innermost dimension is copied as one contiguous run, mirroring
// the teacher's strided-copy recursion.
func CopyRegion(dst *Buffer, dstOrigin []int, src *Buffer, srcOrigin []int, count []int) error {
	if dst.DType != src.DType {
		return fmt.Errorf("buffer: CopyRegion: dtype mismatch")
	}
	ndims := len(count)
	if len(dstOrigin) != ndims || len(srcOrigin) != ndims {
		return fmt.Errorf("buffer: CopyRegion: rank mismatch")
	}
	if ndims == 0 {
		return copyElement(dst, nil, src, nil)
	}
	dstStrides := strides(dst.Shape)
	srcStrides := strides(src.Shape)
	return copyRegionRecursive(dst, dstOrigin, dstStrides, src, srcOrigin, srcStrides, count, 0, 0, 0)
}

func copyElement(dst *Buffer, dstCoords []int, src *Buffer, srcCoords []int) error {
	v, absent, err := src.Get(srcCoords)
	if err != nil {
		return err
	}
	return dst.Set(dstCoords, v, absent)
}

func copyRegionRecursive(
	dst *Buffer, dstOrigin, dstStrides []int,
	src *Buffer, srcOrigin, srcStrides []int,
	count []int,
	dstBase, srcBase, dim int,
) error {
	ndims := len(count)
	elemSize := dst.DType.Size

	if dim == ndims-1 {
		n := count[dim]
		dstStart := (dstBase + dstOrigin[dim]*dstStrides[dim])
		srcStart := (srcBase + srcOrigin[dim]*srcStrides[dim])

		copy(
			dst.Data[dstStart*elemSize:(dstStart+n)*elemSize],
			src.Data[srcStart*elemSize:(srcStart+n)*elemSize],
		)

		if src.Absent != nil || dst.Absent != nil {
			if dst.Absent == nil {
				dst.Absent = make([]bool, NumElements(dst.Shape))
			}
			for i := 0; i < n; i++ {
				absent := src.Absent != nil && src.Absent[srcStart+i]
				dst.Absent[dstStart+i] = absent
			}
		}
		return nil
	}

	for i := 0; i < count[dim]; i++ {
		newDstBase := dstBase + (dstOrigin[dim]+i)*dstStrides[dim]
		newSrcBase := srcBase + (srcOrigin[dim]+i)*srcStrides[dim]
		if err := copyRegionRecursive(dst, dstOrigin, dstStrides, src, srcOrigin, srcStrides, count, newDstBase, newSrcBase, dim+1); err != nil {
			return err
		}
	}
	return nil
}
