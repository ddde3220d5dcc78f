// Package ihdr parses and validates the PNG image header chunk and derives
// the closed set of color modes spec.md §3/§4.3 enumerates.
package ihdr

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/adpollak/pngcore/internal/pngerr"
)

// ColorMode is the closed variant set from spec.md §3: each value fixes
// bits-per-pixel and the filter stride (filter_bpp) used by Sub/Average/
// Paeth.
type ColorMode int

const (
	Grayscale1 ColorMode = iota
	Grayscale2
	Grayscale4
	Grayscale8
	Grayscale16
	RGB8
	RGB16
	Palette1
	Palette2
	Palette4
	Palette8
	GrayscaleAlpha8
	GrayscaleAlpha16
	RGBA8
	RGBA16
)

// BitsPerPixel returns the number of bits one pixel occupies in the
// defiltered scanline.
func (m ColorMode) BitsPerPixel() int {
	switch m {
	case Grayscale1, Palette1:
		return 1
	case Grayscale2, Palette2:
		return 2
	case Grayscale4, Palette4:
		return 4
	case Grayscale8, Palette8:
		return 8
	case Grayscale16:
		return 16
	case RGB8:
		return 24
	case RGB16:
		return 48
	case GrayscaleAlpha8:
		return 16
	case GrayscaleAlpha16:
		return 32
	case RGBA8:
		return 32
	case RGBA16:
		return 64
	default:
		return 0
	}
}

// FilterBPP is ceil(bits_per_pixel/8), the byte stride filters use to find
// a pixel's left neighbor (spec.md GLOSSARY).
func (m ColorMode) FilterBPP() int {
	return (m.BitsPerPixel() + 7) / 8
}

// Indexed reports whether this mode names a palette index rather than a
// direct sample.
func (m ColorMode) Indexed() bool {
	switch m {
	case Palette1, Palette2, Palette4, Palette8:
		return true
	default:
		return false
	}
}

// colorModeTable is the fixed (color_type, bit_depth) matrix from
// spec.md §4.3.
var colorModeTable = map[[2]uint8]ColorMode{
	{0, 1}:  Grayscale1,
	{0, 2}:  Grayscale2,
	{0, 4}:  Grayscale4,
	{0, 8}:  Grayscale8,
	{0, 16}: Grayscale16,
	{2, 8}:  RGB8,
	{2, 16}: RGB16,
	{3, 1}:  Palette1,
	{3, 2}:  Palette2,
	{3, 4}:  Palette4,
	{3, 8}:  Palette8,
	{4, 8}:  GrayscaleAlpha8,
	{4, 16}: GrayscaleAlpha16,
	{6, 8}:  RGBA8,
	{6, 16}: RGBA16,
}

// ColorModeFor looks up the color mode for a (color_type, bit_depth) pair.
func ColorModeFor(colorType, bitDepth uint8) (ColorMode, error) {
	mode, ok := colorModeTable[[2]uint8{colorType, bitDepth}]
	if !ok {
		return 0, pngerr.FormatError(fmt.Sprintf("invalid bit depth %d for color type %d", bitDepth, colorType))
	}
	return mode, nil
}

// Header is the parsed IHDR chunk (spec.md §3).
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
	ColorMode         ColorMode
}

// Parse validates and decodes a 13-byte IHDR payload.
func Parse(data []byte) (Header, error) {
	if len(data) != 13 {
		return Header{}, pngerr.FormatError(fmt.Sprintf("IHDR payload must be 13 bytes, got %d", len(data)))
	}
	h := Header{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         data[9],
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		InterlaceMethod:   data[12],
	}
	if h.Width == 0 {
		return Header{}, pngerr.FormatError("width is zero")
	}
	if h.Height == 0 {
		return Header{}, pngerr.FormatError("height is zero")
	}
	if h.Width > 0x7FFFFFFF {
		log.Printf("warning: width %d exceeds (2^31)-1", h.Width)
	}
	if h.Height > 0x7FFFFFFF {
		log.Printf("warning: height %d exceeds (2^31)-1", h.Height)
	}
	mode, err := ColorModeFor(h.ColorType, h.BitDepth)
	if err != nil {
		return Header{}, err
	}
	h.ColorMode = mode
	if h.CompressionMethod != 0 {
		return Header{}, pngerr.FormatError("unrecognized compression method")
	}
	if h.FilterMethod != 0 {
		return Header{}, pngerr.FormatError("unrecognized filter method")
	}
	if h.InterlaceMethod != 0 && h.InterlaceMethod != 1 {
		return Header{}, pngerr.FormatError("invalid interlace method")
	}
	return h, nil
}
