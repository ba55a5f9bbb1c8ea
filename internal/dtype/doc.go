// Package dtype describes the fixed-width scalar types Zarr v3 core arrays
// are built from: their wire name, byte size, signedness, and the default
// fill value an implementation must materialize for chunks absent from the
// store.
//
// # Absent values
//
// An element equal to (within [Type.AbsentTolerance] for floats) the
// array's fill value (the dtype's default when the array sets none) is
// surfaced to callers as absent rather than
// as the fill value itself. Boolean dtype has no absent representation:
// a missing bool becomes false on write.
package dtype
