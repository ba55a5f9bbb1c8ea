// Package chunkgrid implements the regular chunk grid: the mapping from
// an array's shape and chunk shape to the set of chunks touched by a
// hyperslab selection, and ChunkIO, the read-modify-write unit each
// touched chunk is accessed through.
package chunkgrid
