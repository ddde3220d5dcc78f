package huffman

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpollak/pngcore/internal/bitio"
)

// symbol order: A=0, B=1, C=2, D=3.
func TestBuildAcceptsCompleteCode(t *testing.T) {
	// A:1, B:2, C:3, D:3 is a complete canonical code.
	tree, err := Build([]int{1, 2, 3, 3})
	require.NoError(t, err)
	require.NotNil(t, tree)
}

func TestBuildRejectsOverCompleteCode(t *testing.T) {
	// A:1, B:1, C:1 assigns three 1-bit codes where only two fit.
	_, err := Build([]int{1, 1, 1})
	assert.Error(t, err)
}

func TestBuildRejectsUnderCompleteCode(t *testing.T) {
	// A:1 alone, with a second symbol declared at length 3, never fills
	// the code space.
	_, err := Build([]int{1, 0, 0, 3})
	assert.Error(t, err)
}

func TestBuildAcceptsSingleSymbolDegenerateTree(t *testing.T) {
	tree, err := Build([]int{0, 1})
	require.NoError(t, err)

	// The canonical code for the sole symbol of length 1 is "0".
	br := bitio.New(bytes.NewReader([]byte{0x00}))
	sym, err := tree.Decode(br)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), sym)
}

func TestDecodeRoundTripsCanonicalCodes(t *testing.T) {
	// A:1, B:2, C:3, D:3 canonical codes: A=0, B=10, C=110, D=111.
	tree, err := Build([]int{1, 2, 3, 3})
	require.NoError(t, err)

	// Huffman codes are transmitted MSB-first per code: A=0, B=1,0,
	// C=1,1,0, D=1,1,1, concatenated and then packed LSB-first into bytes
	// (the packing order bitio.ReadBit consumes).
	bits := []bool{false, true, false, true, true, false, true, true, true}
	var buf bytes.Buffer
	var cur byte
	var n uint
	for _, b := range bits {
		if b {
			cur |= 1 << n
		}
		n++
		if n == 8 {
			buf.WriteByte(cur)
			cur = 0
			n = 0
		}
	}
	if n > 0 {
		buf.WriteByte(cur)
	}

	br := bitio.New(bytes.NewReader(buf.Bytes()))
	want := []uint16{0, 1, 2, 3}
	for _, w := range want {
		sym, err := tree.Decode(br)
		require.NoError(t, err)
		assert.Equal(t, w, sym)
	}
}
