package blosc

import "testing"

func TestShuffleUnshuffleRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	shuffled := shuffleBytes(data, 4)
	back := unshuffleBytes(shuffled, 4)
	for i := range data {
		if back[i] != data[i] {
			t.Fatalf("index %d: want %d, got %d", i, data[i], back[i])
		}
	}
}

func TestBitShuffleUnshuffleRoundTrip(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	shuffled := bitShuffle(data, 4)
	back := bitUnshuffle(shuffled, 4)
	for i := range data {
		if back[i] != data[i] {
			t.Fatalf("index %d: want %#x, got %#x", i, data[i], back[i])
		}
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i % 7)
	}
	for _, cname := range []Cname{LZ4, LZ4HC, Zlib, Zstd} {
		t.Run(cname.String(), func(t *testing.T) {
			out, err := Compress(data, Options{Cname: cname, Level: 5, Shuffle: ByteShuffle, TypeSize: 4})
			if err != nil {
				t.Fatal(err)
			}
			back, err := Decompress(out)
			if err != nil {
				t.Fatal(err)
			}
			if len(back) != len(data) {
				t.Fatalf("length mismatch: want %d, got %d", len(data), len(back))
			}
			for i := range data {
				if back[i] != data[i] {
					t.Fatalf("index %d: want %d, got %d", i, data[i], back[i])
				}
			}
		})
	}
}
