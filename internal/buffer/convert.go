package buffer

import "github.com/zarrio/zarr/internal/dtype"

// ToGo materializes the buffer as a flat, row-major []T slice (T matching
// the buffer's dtype) alongside a parallel absent mask. absent is nil when
// the buffer carries no absent tracking.
func ToGo(b *Buffer) (data any, absent []bool, err error) {
	n := NumElements(b.Shape)
	switch b.DType.Kind {
	case dtype.Bool:
		out := make([]bool, n)
		for i := range out {
			v, _, err := b.Get(unflatten(b.Shape, i))
			if err != nil {
				return nil, nil, err
			}
			out[i] = v.(bool)
		}
		data = out
	case dtype.Int8:
		data = materialize[int8](b, n)
	case dtype.Int16:
		data = materialize[int16](b, n)
	case dtype.Int32:
		data = materialize[int32](b, n)
	case dtype.Int64:
		data = materialize[int64](b, n)
	case dtype.Uint8:
		data = materialize[uint8](b, n)
	case dtype.Uint16:
		data = materialize[uint16](b, n)
	case dtype.Uint32:
		data = materialize[uint32](b, n)
	case dtype.Uint64:
		data = materialize[uint64](b, n)
	case dtype.Float32:
		data = materialize[float32](b, n)
	case dtype.Float64:
		data = materialize[float64](b, n)
	}
	if b.Absent != nil {
		absent = append([]bool(nil), b.Absent...)
	}
	return data, absent, nil
}

func materialize[T any](b *Buffer, n int) []T {
	out := make([]T, n)
	for i := range out {
		v, _, _ := b.Get(unflatten(b.Shape, i))
		out[i] = v.(T)
	}
	return out
}

// FromGo builds a Buffer of the given shape from a flat, row-major Go
// slice whose element type matches dt, optionally marking the elements
// named in absent as absent (len(absent) must be 0 or len(data)).
func FromGo(dt *dtype.Type, shape []int, data any, absent []bool) (*Buffer, error) {
	b := New(dt, shape)
	n := NumElements(shape)
	isAbsent := func(i int) bool {
		return i < len(absent) && absent[i]
	}
	switch v := data.(type) {
	case []bool:
		for i, x := range v {
			if err := b.Set(unflatten(shape, i), x, isAbsent(i)); err != nil {
				return nil, err
			}
		}
	case []int8:
		return fillFromSlice(b, shape, v, isAbsent)
	case []int16:
		return fillFromSlice(b, shape, v, isAbsent)
	case []int32:
		return fillFromSlice(b, shape, v, isAbsent)
	case []int64:
		return fillFromSlice(b, shape, v, isAbsent)
	case []uint8:
		return fillFromSlice(b, shape, v, isAbsent)
	case []uint16:
		return fillFromSlice(b, shape, v, isAbsent)
	case []uint32:
		return fillFromSlice(b, shape, v, isAbsent)
	case []uint64:
		return fillFromSlice(b, shape, v, isAbsent)
	case []float32:
		return fillFromSlice(b, shape, v, isAbsent)
	case []float64:
		return fillFromSlice(b, shape, v, isAbsent)
	}
	_ = n
	return b, nil
}

func fillFromSlice[T any](b *Buffer, shape []int, data []T, isAbsent func(int) bool) (*Buffer, error) {
	for i, x := range data {
		if err := b.Set(unflatten(shape, i), x, isAbsent(i)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// unflatten converts a row-major flat index into per-dimension coordinates.
func unflatten(shape []int, flat int) []int {
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
