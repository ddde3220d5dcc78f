package inflate

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStoredZlib hand-assembles a minimal zlib stream wrapping a single
// final stored (uncompressed) DEFLATE block, bypassing compress/zlib
// entirely so the stored-block path is exercised byte-for-byte.
func buildStoredZlib(payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x78) // CMF: deflate, 32K window
	buf.WriteByte(0x9C) // FLG: default compression, valid checksum bits
	// Block header: BFINAL=1, BTYPE=00 (stored), byte-aligned after 3 bits.
	buf.WriteByte(0x01)
	var lenField [4]byte
	binary.LittleEndian.PutUint16(lenField[0:2], uint16(len(payload)))
	binary.LittleEndian.PutUint16(lenField[2:4], ^uint16(len(payload)))
	buf.Write(lenField[:])
	buf.Write(payload)
	buf.Write([]byte{0, 0, 0, 0}) // Adler-32 trailer left zero: the mismatch is only logged
	return buf.Bytes()
}

func TestDecompressStoredBlock(t *testing.T) {
	payload := []byte("a stored deflate block, uncompressed")
	stream := buildStoredZlib(payload)

	dst := make([]byte, len(payload))
	err := Decompress(bytes.NewReader(stream), dst)
	require.NoError(t, err)
	assert.Equal(t, payload, dst)
}

func TestDecompressRejectsSizeMismatch(t *testing.T) {
	payload := []byte("short")
	stream := buildStoredZlib(payload)

	dst := make([]byte, len(payload)+10)
	err := Decompress(bytes.NewReader(stream), dst)
	assert.Error(t, err)
}

// TestDecompressMatchesStandardLibraryOutput feeds data compressed by
// compress/zlib (stored and fixed-Huffman blocks, real LZ77 matches)
// through this package's decompressor and checks the bytes come back
// identical. These inputs do not produce a dynamic-Huffman block.
func TestDecompressMatchesStandardLibraryOutput(t *testing.T) {
	cases := map[string][]byte{
		"short repetitive": bytes.Repeat([]byte("abcabcabcabcabc"), 20),
		"varied":            []byte("The quick brown fox jumps over the lazy dog. 0123456789!"),
		"long runs":         append(bytes.Repeat([]byte{0x41}, 2000), []byte("tail")...),
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			var compressed bytes.Buffer
			w := zlib.NewWriter(&compressed)
			_, err := w.Write(want)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			dst := make([]byte, len(want))
			err = Decompress(bytes.NewReader(compressed.Bytes()), dst)
			require.NoError(t, err)
			assert.Equal(t, want, dst)
		})
	}
}

func TestDecompressRejectsBadZlibHeader(t *testing.T) {
	stream := []byte{0x01, 0x02, 0x03}
	err := Decompress(bytes.NewReader(stream), make([]byte, 0))
	assert.Error(t, err)
}
