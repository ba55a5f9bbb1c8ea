package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PutElement packs a single scalar value of this dtype into dst[0:Size]
// using the given byte order. v must be the Go type matching t.Kind
// (bool, intN, uintN, float32 or float64); absent is signaled by the
// caller substituting the array's fill value (t.ResolveFill) before
// calling PutElement.
func (t *Type) PutElement(dst []byte, v any, order binary.ByteOrder) error {
	if len(dst) < t.Size {
		return fmt.Errorf("dtype: PutElement: dst too small for %s", t.Name)
	}
	switch t.Kind {
	case Bool:
		b, _ := v.(bool)
		if b {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case Int8:
		dst[0] = byte(asInt64(v))
	case Uint8:
		dst[0] = byte(asUint64(v))
	case Int16:
		order.PutUint16(dst, uint16(asInt64(v)))
	case Uint16:
		order.PutUint16(dst, uint16(asUint64(v)))
	case Int32:
		order.PutUint32(dst, uint32(asInt64(v)))
	case Uint32:
		order.PutUint32(dst, uint32(asUint64(v)))
	case Int64:
		order.PutUint64(dst, uint64(asInt64(v)))
	case Uint64:
		order.PutUint64(dst, asUint64(v))
	case Float32:
		f, _ := v.(float32)
		order.PutUint32(dst, math.Float32bits(f))
	case Float64:
		f, _ := v.(float64)
		order.PutUint64(dst, math.Float64bits(f))
	default:
		return fmt.Errorf("dtype: PutElement: unsupported kind %d", t.Kind)
	}
	return nil
}

// GetElement unpacks a single scalar value of this dtype from src[0:Size].
func (t *Type) GetElement(src []byte, order binary.ByteOrder) (any, error) {
	if len(src) < t.Size {
		return nil, fmt.Errorf("dtype: GetElement: src too small for %s", t.Name)
	}
	switch t.Kind {
	case Bool:
		return src[0] != 0, nil
	case Int8:
		return int8(src[0]), nil
	case Uint8:
		return src[0], nil
	case Int16:
		return int16(order.Uint16(src)), nil
	case Uint16:
		return order.Uint16(src), nil
	case Int32:
		return int32(order.Uint32(src)), nil
	case Uint32:
		return order.Uint32(src), nil
	case Int64:
		return int64(order.Uint64(src)), nil
	case Uint64:
		return order.Uint64(src), nil
	case Float32:
		return math.Float32frombits(order.Uint32(src)), nil
	case Float64:
		return math.Float64frombits(order.Uint64(src)), nil
	default:
		return nil, fmt.Errorf("dtype: GetElement: unsupported kind %d", t.Kind)
	}
}

// IsFillValue reports whether v equals the dtype's default fill value,
// using AbsentTolerance for float kinds and exact comparison otherwise.
// Bool never reports true: booleans have no absent representation.
func (t *Type) IsFillValue(v any) bool {
	return t.EqualsFill(v, t.defaultFill)
}

// EqualsFill reports whether v equals fill (an array's own configured
// fill value, not necessarily the dtype default), using AbsentTolerance
// for float kinds and exact comparison otherwise. Bool never reports
// true: booleans have no absent representation.
func (t *Type) EqualsFill(v, fill any) bool {
	switch t.Kind {
	case Bool:
		return false
	case Float32:
		f, _ := v.(float32)
		ff, _ := fill.(float32)
		return math.Abs(float64(f-ff)) <= t.AbsentTolerance
	case Float64:
		f, _ := v.(float64)
		ff, _ := fill.(float64)
		return math.Abs(f-ff) <= t.AbsentTolerance
	default:
		return v == fill
	}
}

// ResolveFill returns fill if non-nil, else the dtype's own default —
// the fallback an array whose document carries no fill_value (or a zero
// any from an untouched builder field) should materialize absent
// elements as.
func (t *Type) ResolveFill(fill any) any {
	if fill == nil {
		return t.defaultFill
	}
	return fill
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	default:
		return 0
	}
}

func asUint64(v any) uint64 {
	switch x := v.(type) {
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case uint:
		return uint64(x)
	default:
		return 0
	}
}
