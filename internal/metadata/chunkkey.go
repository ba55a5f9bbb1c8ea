package metadata

import (
	"strconv"
	"strings"
)

// ChunkKeyScheme identifies which of the three chunk-key encodings the
// spec defines governs how chunk coordinates map to store keys.
type ChunkKeyScheme int

const (
	// SchemeDefault is the v3 default: "c" + sep + join(indices, sep).
	SchemeDefault ChunkKeyScheme = iota
	// SchemeV2Style is v3's v2-style encoding: join(indices, sep), no
	// leading "c".
	SchemeV2Style
	// SchemeV2 is the legacy v2 on-disk encoding: always "."-joined,
	// no "c" prefix.
	SchemeV2
)

// GridShape returns, for each dimension, ceil(shape[d]/chunkShape[d]):
// the number of chunks along that dimension.
func GridShape(shape, chunkShape []int) []int {
	if len(shape) == 0 {
		return []int{}
	}
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunkShape[i] - 1) / chunkShape[i]
	}
	return grid
}

// ChunkKeySuffix joins chunk coordinate indices per scheme/separator,
// without the node's key prefix. A 0-rank (scalar) array's sole chunk is
// always named "0" regardless of scheme, per the v2 convention the v3
// spec carries forward for the degenerate case.
func ChunkKeySuffix(indices []int, sep string, scheme ChunkKeyScheme) string {
	if len(indices) == 0 {
		return "0"
	}
	joined := joinIndices(indices, sep)
	switch scheme {
	case SchemeDefault:
		return "c" + sep + joined
	case SchemeV2Style, SchemeV2:
		return joined
	default:
		return "c" + sep + joined
	}
}

func joinIndices(indices []int, sep string) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, sep)
}
