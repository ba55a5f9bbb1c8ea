// Package buffer implements the one concrete representation of chunk data
// threaded through the codec pipeline, ChunkIO, and the public Array
// read/write API: a typed dense array plus its shape, carried as packed
// native-endian bytes with an optional parallel absent bitset. Conversion
// to a caller's native Go slice is an adapter ([ToGo], [FromGo]), not a
// core concern.
package buffer
