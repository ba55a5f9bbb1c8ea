// Package blosc implements the wire format of the Blosc frame: a 16-byte
// header carrying the sub-codec, shuffle mode and sizes, followed by a
// shuffled, compressed payload. The shuffle/unshuffle transforms and the
// header layout are Blosc's own; the actual byte compression is delegated
// to real third-party codecs rather than reimplemented here.
package blosc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"compress/zlib"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Cname identifies the sub-codec used for the compressed payload.
type Cname uint8

const (
	LZ4 Cname = iota
	LZ4HC
	Zlib
	Zstd
	// BloscLZ stands in for Blosc's own blosclz sub-codec, which has no
	// Go port in the retrieval pack. It reuses the zlib code path as a
	// pure-Go fallback rather than leaving the cname unsupported.
	BloscLZ
)

func (c Cname) String() string {
	switch c {
	case LZ4:
		return "lz4"
	case LZ4HC:
		return "lz4hc"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	case BloscLZ:
		return "blosclz"
	default:
		return fmt.Sprintf("cname(%d)", c)
	}
}

// Shuffle is the byte-reordering mode applied before compression.
type Shuffle uint8

const (
	NoShuffle Shuffle = iota
	ByteShuffle
	BitShuffle
)

const (
	flagShuffle    = 0x1
	flagMemcpy     = 0x2
	flagBitShuffle = 0x4
)

// HeaderSize is the fixed size of the Blosc frame header.
const HeaderSize = 16

// ErrInvalidHeader is returned when a frame is too short or carries an
// unrecognized version.
var ErrInvalidHeader = errors.New("blosc: invalid header")

// ErrSizeMismatch is returned when a decompressed payload's length does
// not match the size recorded in the header.
var ErrSizeMismatch = errors.New("blosc: decompressed size mismatch")

const formatVersion = 1

// Header is the 16-byte frame header prefixing every Blosc payload.
type Header struct {
	Version    uint8
	Cname      Cname
	Flags      uint8
	TypeSize   uint8
	NBytesOrig uint32
	BlockSize  uint32
	NBytesComp uint32
}

// ParseHeader reads a Header from the start of data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeader
	}
	h := &Header{
		Version:    data[0],
		Cname:      Cname(data[1]),
		Flags:      data[2],
		TypeSize:   data[3],
		NBytesOrig: binary.LittleEndian.Uint32(data[4:8]),
		BlockSize:  binary.LittleEndian.Uint32(data[8:12]),
		NBytesComp: binary.LittleEndian.Uint32(data[12:16]),
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidHeader, h.Version)
	}
	return h, nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Version
	buf[1] = byte(h.Cname)
	buf[2] = h.Flags
	buf[3] = h.TypeSize
	binary.LittleEndian.PutUint32(buf[4:8], h.NBytesOrig)
	binary.LittleEndian.PutUint32(buf[8:12], h.BlockSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.NBytesComp)
	return buf
}

func (h *Header) IsMemcpy() bool { return h.Flags&flagMemcpy != 0 }

func (h *Header) shuffleMode() Shuffle {
	switch {
	case h.Flags&flagBitShuffle != 0:
		return BitShuffle
	case h.Flags&flagShuffle != 0:
		return ByteShuffle
	default:
		return NoShuffle
	}
}

// Options configures Compress.
type Options struct {
	Cname    Cname
	Level    int
	Shuffle  Shuffle
	TypeSize int
}

// Compress shuffles data per opts and compresses it with the chosen
// sub-codec, producing a complete Blosc frame (header + payload). If
// compression does not shrink the data, the frame falls back to storing
// it verbatim (the memcpy flag), matching Blosc's own behavior.
func Compress(data []byte, opts Options) ([]byte, error) {
	typeSize := opts.TypeSize
	if typeSize <= 0 {
		typeSize = 1
	}

	shuffled := data
	switch opts.Shuffle {
	case ByteShuffle:
		if typeSize > 1 {
			shuffled = shuffleBytes(data, typeSize)
		}
	case BitShuffle:
		if typeSize > 1 {
			shuffled = bitShuffle(data, typeSize)
		}
	}

	compressed, err := compressWith(opts.Cname, shuffled, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("blosc: compress: %w", err)
	}

	flags := uint8(0)
	payload := compressed
	if len(compressed) >= len(data) {
		flags |= flagMemcpy
		payload = data
	} else {
		switch opts.Shuffle {
		case ByteShuffle:
			flags |= flagShuffle
		case BitShuffle:
			flags |= flagBitShuffle
		}
	}

	h := Header{
		Version:    formatVersion,
		Cname:      opts.Cname,
		Flags:      flags,
		TypeSize:   uint8(typeSize),
		NBytesOrig: uint32(len(data)),
		BlockSize:  uint32(len(data)),
		NBytesComp: uint32(HeaderSize + len(payload)),
	}

	out := make([]byte, HeaderSize+len(payload))
	copy(out, h.Bytes())
	copy(out[HeaderSize:], payload)
	return out, nil
}

// Decompress parses a Blosc frame and returns the original bytes.
func Decompress(data []byte) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if int(h.NBytesComp) > len(data) || h.NBytesComp < HeaderSize {
		return nil, ErrInvalidHeader
	}
	payload := data[HeaderSize:h.NBytesComp]

	var decoded []byte
	if h.IsMemcpy() {
		decoded = append([]byte(nil), payload...)
	} else {
		decoded, err = decompressWith(h.Cname, payload, int(h.NBytesOrig))
		if err != nil {
			return nil, fmt.Errorf("blosc: decompress: %w", err)
		}
	}

	switch h.shuffleMode() {
	case ByteShuffle:
		if h.TypeSize > 1 {
			decoded = unshuffleBytes(decoded, int(h.TypeSize))
		}
	case BitShuffle:
		if h.TypeSize > 1 {
			decoded = bitUnshuffle(decoded, int(h.TypeSize))
		}
	}

	if len(decoded) != int(h.NBytesOrig) {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrSizeMismatch, len(decoded), h.NBytesOrig)
	}
	return decoded, nil
}

func compressWith(c Cname, data []byte, level int) ([]byte, error) {
	switch c {
	case LZ4, LZ4HC:
		bound := lz4.CompressBlockBound(len(data))
		dst := make([]byte, bound)
		var compressor lz4.Compressor
		var written int
		var err error
		if c == LZ4HC {
			hc := lz4.CompressorHC{Level: lz4.Level9}
			written, err = hc.CompressBlock(data, dst)
		} else {
			written, err = compressor.CompressBlock(data, dst)
		}
		if err != nil {
			return nil, err
		}
		if written == 0 {
			// lz4 reports 0 when it judges the block incompressible;
			// return a same-length slice so the memcpy-fallback size
			// check in Compress sees no improvement and stores raw.
			return make([]byte, len(data)), nil
		}
		return dst[:written], nil
	case Zlib, BloscLZ:
		var buf bytes.Buffer
		zl, err := zlib.NewWriterLevel(&buf, clampZlibLevel(level))
		if err != nil {
			return nil, err
		}
		if _, err := zl.Write(data); err != nil {
			return nil, err
		}
		if err := zl.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("blosc: unsupported cname %s", c)
	}
}

func decompressWith(c Cname, data []byte, origSize int) ([]byte, error) {
	switch c {
	case LZ4, LZ4HC:
		dst := make([]byte, origSize)
		read, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, err
		}
		if read != origSize {
			return nil, fmt.Errorf("blosc: lz4 decompress: got %d bytes, expected %d", read, origSize)
		}
		return dst, nil
	case Zlib, BloscLZ:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, make([]byte, 0, origSize))
	default:
		return nil, fmt.Errorf("blosc: unsupported cname %s", c)
	}
}

func clampZlibLevel(level int) int {
	if level <= 0 {
		return zlib.DefaultCompression
	}
	if level > 9 {
		return 9
	}
	return level
}

// shuffleBytes reorders data organized as [elem0][elem1]...[elemN] into
// [all byte 0s][all byte 1s]...[all byte typeSize-1 s], the layout that
// groups each element's corresponding byte together for the compressor.
func shuffleBytes(data []byte, typeSize int) []byte {
	n := len(data) / typeSize
	rem := len(data) % typeSize
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		for j := 0; j < typeSize; j++ {
			out[j*n+i] = data[i*typeSize+j]
		}
	}
	copy(out[n*typeSize:], data[n*typeSize:n*typeSize+rem])
	return out
}

// unshuffleBytes reverses shuffleBytes.
func unshuffleBytes(data []byte, typeSize int) []byte {
	n := len(data) / typeSize
	rem := len(data) % typeSize
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		for j := 0; j < typeSize; j++ {
			out[i*typeSize+j] = data[j*n+i]
		}
	}
	copy(out[n*typeSize:], data[n*typeSize:n*typeSize+rem])
	return out
}

// bitShuffle performs a bit-level transpose within each typeSize-byte
// element group, the finer-grained variant of shuffleBytes.
func bitShuffle(data []byte, typeSize int) []byte {
	n := len(data) / typeSize
	if n == 0 {
		return append([]byte(nil), data...)
	}
	nBits := n * 8
	out := make([]byte, len(data))
	for byteIdx := 0; byteIdx < typeSize; byteIdx++ {
		for bit := 0; bit < 8; bit++ {
			outBitBase := byteIdx*8 + bit
			for elem := 0; elem < n; elem++ {
				srcByte := data[elem*typeSize+byteIdx]
				bitVal := (srcByte >> uint(bit)) & 1
				if bitVal == 0 {
					continue
				}
				outBit := outBitBase*n + elem
				out[outBit/8] |= 1 << uint(outBit%8)
			}
		}
	}
	_ = nBits
	copy(out[n*typeSize:], data[n*typeSize:])
	return out
}

// bitUnshuffle reverses bitShuffle.
func bitUnshuffle(data []byte, typeSize int) []byte {
	n := len(data) / typeSize
	if n == 0 {
		return append([]byte(nil), data...)
	}
	out := make([]byte, len(data))
	for byteIdx := 0; byteIdx < typeSize; byteIdx++ {
		for bit := 0; bit < 8; bit++ {
			outBitBase := byteIdx*8 + bit
			for elem := 0; elem < n; elem++ {
				srcBit := outBitBase*n + elem
				bitVal := (data[srcBit/8] >> uint(srcBit%8)) & 1
				if bitVal == 0 {
					continue
				}
				out[elem*typeSize+byteIdx] |= 1 << uint(bit)
			}
		}
	}
	copy(out[n*typeSize:], data[n*typeSize:])
	return out
}
