package ihdr

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIHDR(width, height uint32, bitDepth, colorType, interlace uint8) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = bitDepth
	data[9] = colorType
	data[10] = 0
	data[11] = 0
	data[12] = interlace
	return data
}

func TestParseValidHeader(t *testing.T) {
	data := buildIHDR(10, 20, 8, 6, 0)
	h, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), h.Width)
	assert.Equal(t, uint32(20), h.Height)
	assert.Equal(t, RGBA8, h.ColorMode)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse(make([]byte, 12))
	assert.Error(t, err)
}

func TestParseRejectsZeroDimensions(t *testing.T) {
	_, err := Parse(buildIHDR(0, 20, 8, 6, 0))
	assert.Error(t, err)

	_, err = Parse(buildIHDR(10, 0, 8, 6, 0))
	assert.Error(t, err)
}

func TestParseRejectsInvalidBitDepthForColorType(t *testing.T) {
	// color type 2 (truecolor) only permits bit depths 8 and 16.
	_, err := Parse(buildIHDR(1, 1, 4, 2, 0))
	assert.Error(t, err)
}

func TestColorModeForCoversEveryDefinedPair(t *testing.T) {
	pairs := []struct {
		colorType, bitDepth uint8
		want                ColorMode
	}{
		{0, 1, Grayscale1}, {0, 2, Grayscale2}, {0, 4, Grayscale4},
		{0, 8, Grayscale8}, {0, 16, Grayscale16},
		{2, 8, RGB8}, {2, 16, RGB16},
		{3, 1, Palette1}, {3, 2, Palette2}, {3, 4, Palette4}, {3, 8, Palette8},
		{4, 8, GrayscaleAlpha8}, {4, 16, GrayscaleAlpha16},
		{6, 8, RGBA8}, {6, 16, RGBA16},
	}
	for _, p := range pairs {
		mode, err := ColorModeFor(p.colorType, p.bitDepth)
		require.NoError(t, err)
		assert.Equal(t, p.want, mode)
	}
}

func TestBitsPerPixelAndFilterBPP(t *testing.T) {
	assert.Equal(t, 1, Grayscale1.BitsPerPixel())
	assert.Equal(t, 1, Grayscale1.FilterBPP())
	assert.Equal(t, 32, RGBA8.BitsPerPixel())
	assert.Equal(t, 4, RGBA8.FilterBPP())
	assert.Equal(t, 48, RGB16.BitsPerPixel())
	assert.Equal(t, 6, RGB16.FilterBPP())
}

func TestIndexed(t *testing.T) {
	assert.True(t, Palette8.Indexed())
	assert.False(t, RGBA8.Indexed())
}

func TestPaletteLookupAndBitDepthWarning(t *testing.T) {
	p := ParsePalette([]byte{255, 0, 0, 0, 255, 0, 0, 0, 255})
	rgb, err := p.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, [3]byte{0, 255, 0}, rgb)

	_, err = p.Lookup(3)
	assert.Error(t, err)

	// Not asserting output, just that it doesn't panic on a too-small bit depth.
	p.CheckBitDepth(1)
}
