package metadata

import (
	"errors"
	"fmt"

	"github.com/zarrio/zarr/internal/dtype"
)

// ErrInvalidChain is returned when an edit to the codec list would
// violate the array->array*, array->bytes, bytes->bytes* chain shape.
var ErrInvalidChain = errors.New("metadata: codec edit would violate chain invariant")

// defaultChunkLength is the per-dimension chunk length SetShape falls
// back to when a dimension's extent exceeds it.
const defaultChunkLength = 100

// builderCodec is the builder's lightweight view of one chain entry: its
// wire name/configuration plus the domain classification needed to
// enforce the chain invariant without depending on the codec package.
type builderCodec struct {
	config CodecConfig
	from   string // "array" or "bytes"
	to     string // "array" or "bytes"
}

// ArrayMetadataBuilder is the state machine arrays are constructed
// through: it holds an in-progress set of array-document fields and only
// emits a document once IsValid reports true.
type ArrayMetadataBuilder struct {
	dataType  *dtype.Type
	shape     []int
	chunkShape []int
	fillValue any
	portable  bool
	codecs    []builderCodec
}

// NewArrayMetadataBuilder returns an empty builder. Portable starts
// false (transpose codec present by default) per the spec's
// canonical-on-disk-order rule.
func NewArrayMetadataBuilder() *ArrayMetadataBuilder {
	return &ArrayMetadataBuilder{portable: false}
}

// SetDataType sets the element type and resets FillValue to its default.
func (b *ArrayMetadataBuilder) SetDataType(name string) error {
	dt, err := dtype.ByName(name)
	if err != nil {
		return err
	}
	b.dataType = dt
	b.fillValue = dt.DefaultFill()
	return nil
}

// SetShape sets the array shape, resets ChunkShape to
// min(shape[d], defaultChunkLength) per dimension, and refreshes the
// codec chain (transpose presence, bytes codec) for the new rank.
func (b *ArrayMetadataBuilder) SetShape(shape []int) error {
	for d, s := range shape {
		if s < 1 {
			return fmt.Errorf("metadata: shape[%d]=%d must be >= 1", d, s)
		}
	}
	b.shape = append([]int(nil), shape...)
	chunkShape := make([]int, len(shape))
	for d, s := range shape {
		if s < defaultChunkLength {
			chunkShape[d] = s
		} else {
			chunkShape[d] = defaultChunkLength
		}
	}
	b.chunkShape = chunkShape
	b.refreshCodecs()
	return nil
}

// SetChunkShape overrides the chunk shape chosen by SetShape. Rank must
// match the array shape.
func (b *ArrayMetadataBuilder) SetChunkShape(chunkShape []int) error {
	if len(chunkShape) != len(b.shape) {
		return fmt.Errorf("metadata: chunk_shape rank %d does not match shape rank %d", len(chunkShape), len(b.shape))
	}
	for d, c := range chunkShape {
		if c < 1 {
			return fmt.Errorf("metadata: chunk_shape[%d]=%d must be >= 1", d, c)
		}
	}
	b.chunkShape = append([]int(nil), chunkShape...)
	return nil
}

// SetFillValue overrides the dtype default fill value.
func (b *ArrayMetadataBuilder) SetFillValue(v any) {
	b.fillValue = v
}

// SetPortable toggles whether the array is stored in the host's native
// dimension order (true, no transpose codec) or canonical row-major disk
// order (false, transpose codec with order = reversed 0..rank-1,
// inserted right before the bytes codec).
func (b *ArrayMetadataBuilder) SetPortable(portable bool) {
	b.portable = portable
	b.refreshCodecs()
}

// refreshCodecs rebuilds the array->array prefix (the transpose codec,
// present iff !portable and rank >= 2) while preserving any user-added
// bytes->bytes stages already present, and ensures exactly one bytes
// codec remains. The very first call on a builder with no bytes->bytes
// stage yet also seeds the default blosc compressor, per the spec's
// default-chain rule; later calls (a changed shape or portable flag)
// leave whatever bytes->bytes stages are already there untouched.
func (b *ArrayMetadataBuilder) refreshCodecs() {
	rank := len(b.shape)

	var bytesBytes []builderCodec
	var bytesCodec *builderCodec
	for _, c := range b.codecs {
		if bytesCodec == nil && c.config.Name == "bytes" {
			cp := c
			bytesCodec = &cp
			continue
		}
		if c.from == "array" {
			continue // drop old array->array entries; rebuilt below
		}
		bytesBytes = append(bytesBytes, c)
	}
	freshChain := bytesCodec == nil && len(bytesBytes) == 0

	if bytesCodec == nil {
		bc := builderCodec{
			config: CodecConfig{Name: "bytes", Configuration: map[string]any{"endian": "little"}},
			from:   "array", to: "bytes",
		}
		bytesCodec = &bc
	} else {
		bytesCodec.from, bytesCodec.to = "array", "bytes"
	}

	if freshChain && b.dataType != nil {
		bytesBytes = append(bytesBytes, builderCodec{
			config: CodecConfig{Name: "blosc", Configuration: defaultBloscConfig(b.dataType)},
			from:   "bytes", to: "bytes",
		})
	}

	var next []builderCodec
	if !b.portable && rank >= 2 {
		order := make([]int, rank)
		for i := range order {
			order[i] = rank - 1 - i
		}
		orderAny := make([]any, rank)
		for i, o := range order {
			orderAny[i] = float64(o)
		}
		next = append(next, builderCodec{
			config: CodecConfig{Name: "transpose", Configuration: map[string]any{"order": orderAny}},
			from:   "array", to: "array",
		})
	}
	next = append(next, *bytesCodec)
	next = append(next, bytesBytes...)
	b.codecs = next
}

// defaultShuffleFor picks blosc's default shuffle mode from a dtype's
// byte width: noshuffle for 1-byte types, shuffle for 2/4-byte types,
// bitshuffle for 8-byte types.
func defaultShuffleFor(dt *dtype.Type) string {
	switch dt.Size {
	case 1:
		return "noshuffle"
	case 2, 4:
		return "shuffle"
	default:
		return "bitshuffle"
	}
}

// defaultBloscConfig is the default compressor a freshly built array gets:
// zstd at level 1, shuffle mode chosen by dtype width, typesize from the
// dtype itself, and auto blocksize. Numeric fields are float64 to match
// the shape json.Unmarshal produces when a document is round-tripped
// through a store, since codec construction does not distinguish a
// builder-built config from a decoded one.
func defaultBloscConfig(dt *dtype.Type) map[string]any {
	return map[string]any{
		"cname":     "zstd",
		"clevel":    float64(1),
		"shuffle":   defaultShuffleFor(dt),
		"typesize":  float64(dt.Size),
		"blocksize": float64(0),
	}
}

// AddCodec constructs a codec config entry (the codec package itself
// validates the wire name at build time) and inserts it at position,
// refusing the edit if it would break the chain invariant. position < 0
// appends.
func (b *ArrayMetadataBuilder) AddCodec(name string, config map[string]any, position int) error {
	from, to, err := domainOf(name)
	if err != nil {
		return err
	}
	entry := builderCodec{config: CodecConfig{Name: name, Configuration: config}, from: from, to: to}

	codecs := append([]builderCodec(nil), b.codecs...)
	if position < 0 || position > len(codecs) {
		position = len(codecs)
	}
	next := make([]builderCodec, 0, len(codecs)+1)
	next = append(next, codecs[:position]...)
	next = append(next, entry)
	next = append(next, codecs[position:]...)

	if err := validateChain(next); err != nil {
		return err
	}
	b.codecs = next
	return nil
}

// RemoveCodec removes the codec at position, refusing the edit if doing
// so would break the chain invariant (e.g. removing the sole bytes
// codec).
func (b *ArrayMetadataBuilder) RemoveCodec(position int) error {
	if position < 0 || position >= len(b.codecs) {
		return fmt.Errorf("metadata: remove codec: position %d out of range", position)
	}
	next := make([]builderCodec, 0, len(b.codecs)-1)
	next = append(next, b.codecs[:position]...)
	next = append(next, b.codecs[position+1:]...)
	if err := validateChain(next); err != nil {
		return err
	}
	b.codecs = next
	return nil
}

// domainOf reports the (from, to) domain pair for a registered codec
// name, duplicating the codec package's domain table so metadata does
// not need to import it.
func domainOf(name string) (from, to string, err error) {
	switch name {
	case "transpose":
		return "array", "array", nil
	case "bytes":
		return "array", "bytes", nil
	case "blosc", "gzip", "zstd", "crc32c":
		return "bytes", "bytes", nil
	default:
		return "", "", fmt.Errorf("metadata: unknown codec %q", name)
	}
}

func validateChain(codecs []builderCodec) error {
	bytesCodecs := 0
	for i, c := range codecs {
		if c.from == "array" && c.to == "bytes" {
			bytesCodecs++
		}
		if i > 0 {
			if codecs[i-1].to != c.from {
				return fmt.Errorf("%w: %s produces %s but %s expects %s", ErrInvalidChain, codecs[i-1].config.Name, codecs[i-1].to, c.config.Name, c.from)
			}
		}
	}
	if bytesCodecs != 1 {
		return fmt.Errorf("%w: chain has %d array->bytes codecs, need exactly 1", ErrInvalidChain, bytesCodecs)
	}
	if codecs[0].from != "array" {
		return fmt.Errorf("%w: chain must start in the array domain", ErrInvalidChain)
	}
	if codecs[len(codecs)-1].to != "bytes" {
		return fmt.Errorf("%w: chain must end in the bytes domain", ErrInvalidChain)
	}
	return nil
}

// IsValid reports whether the builder holds enough state to emit a
// document: a data type, a shape, a chunk shape, and a codec chain that
// satisfies the invariant.
func (b *ArrayMetadataBuilder) IsValid() bool {
	if b.dataType == nil || b.shape == nil || b.chunkShape == nil || len(b.codecs) == 0 {
		return false
	}
	return validateChain(b.codecs) == nil
}

// Metadata emits the zarr.json array document. Callers must check
// IsValid first; Metadata panics on an incomplete builder since it
// represents a programming error, not a data-dependent failure.
func (b *ArrayMetadataBuilder) Metadata(attrs map[string]any) *ArrayDocument {
	if !b.IsValid() {
		panic("metadata: ArrayMetadataBuilder.Metadata called on an incomplete builder")
	}
	codecs := make([]CodecConfig, len(b.codecs))
	for i, c := range b.codecs {
		codecs[i] = c.config
	}
	doc := &ArrayDocument{
		ZarrFormat: 3,
		NodeType:   NodeArray,
		Shape:      b.shape,
		DataType:   b.dataType.Name,
		FillValue:  b.fillValue,
		ChunkGrid:  ChunkGridConfig{Name: "regular"},
		Codecs:     codecs,
		Attributes: attrs,
	}
	doc.ChunkGrid.Configuration.ChunkShape = b.chunkShape
	return doc
}

// DataType returns the builder's current data type, or nil if unset.
func (b *ArrayMetadataBuilder) DataType() *dtype.Type { return b.dataType }

// Shape returns the builder's current shape.
func (b *ArrayMetadataBuilder) Shape() []int { return append([]int(nil), b.shape...) }

// ChunkShape returns the builder's current chunk shape.
func (b *ArrayMetadataBuilder) ChunkShape() []int { return append([]int(nil), b.chunkShape...) }
