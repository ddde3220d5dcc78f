// Package filter reverses the per-scanline PNG filter and unpacks the
// defiltered bytes into the caller's 8-bit BGRA pixel sink (spec.md §4.6).
package filter

import (
	"fmt"

	"github.com/adpollak/pngcore/internal/ihdr"
	"github.com/adpollak/pngcore/internal/pngerr"
)

// filterType enumerates the five PNG scanline filters.
type filterType byte

const (
	none filterType = iota
	sub
	up
	average
	paeth
)

// Unfilter reverses the per-scanline filter in data (in place) and then
// unpacks every pixel into pix, an 8-bit BGRA buffer with the given pitch.
// data must be laid out as height scanlines, each one filter-type byte
// followed by ceil(width*bitsPerPixel/8) filtered bytes (spec.md §3/§4.6).
func Unfilter(data []byte, width, height int, mode ihdr.ColorMode, palette *ihdr.Palette, pix []byte, pitch int) error {
	bitsPerPixel := mode.BitsPerPixel()
	bytesPerScanline := (width*bitsPerPixel+7)/8 + 1
	filterBPP := mode.FilterBPP()

	if len(data) != bytesPerScanline*height {
		return pngerr.FormatError(fmt.Sprintf("decompressed data is %d bytes, expected %d", len(data), bytesPerScanline*height))
	}

	for y := 0; y < height; y++ {
		ft := filterType(data[y*bytesPerScanline])
		if ft > paeth {
			return pngerr.FormatError(fmt.Sprintf("invalid filter type %d", ft))
		}
		rowStart := y*bytesPerScanline + 1
		for x := 0; x < bytesPerScanline-1; x++ {
			var a, b, c int
			if x >= filterBPP {
				a = int(data[rowStart+x-filterBPP])
			}
			if y > 0 {
				b = int(data[rowStart-bytesPerScanline+x])
			}
			if x >= filterBPP && y > 0 {
				c = int(data[rowStart-bytesPerScanline+x-filterBPP])
			}
			data[rowStart+x] = byte(int(data[rowStart+x]) + predictor(ft, a, b, c))
		}
	}

	for y := 0; y < height; y++ {
		rowStart := y*bytesPerScanline + 1
		for x := 0; x < width; x++ {
			r, g, b, a, err := decodePixel(data, rowStart, x, mode, palette)
			if err != nil {
				return err
			}
			j := y*pitch + x*4
			pix[j+0] = b
			pix[j+1] = g
			pix[j+2] = r
			pix[j+3] = a
		}
	}
	return nil
}

func predictor(ft filterType, a, b, c int) int {
	switch ft {
	case none:
		return 0
	case sub:
		return a
	case up:
		return b
	case average:
		return (a + b) / 2
	case paeth:
		return paethPredict(a, b, c)
	default:
		return 0
	}
}

// paethPredict picks the neighbor (a, b, or c) nearest to p = a + b - c,
// ties resolved a over b over c (spec.md §4.6, GLOSSARY). It is symmetric
// under simultaneous swap of a and b (spec.md invariant #8).
func paethPredict(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// bitField extracts the x-th bitDepth-wide field from b, packed MSB-first
// (spec.md §4.6's Grayscale1/2/4 formulas generalize to this one
// expression; the same packing applies to Palette1/2/4 indices).
func bitField(b byte, bitDepth, x int) int {
	perByte := 8 / bitDepth
	shift := (perByte - 1 - (x % perByte)) * bitDepth
	mask := byte(1<<uint(bitDepth) - 1)
	return int((b >> uint(shift)) & mask)
}

// reduce16 converts a 16-bit big-endian sample (hi, lo) to 8 bits via
// round(v*255/65535), round-half-away-from-zero (spec.md §4.6).
func reduce16(hi, lo byte) byte {
	v := uint32(hi)<<8 | uint32(lo)
	return byte((v*255 + 32767) / 65535)
}

func decodePixel(data []byte, rowStart, x int, mode ihdr.ColorMode, palette *ihdr.Palette) (byte, byte, byte, byte, error) {
	switch mode {
	case ihdr.Grayscale1, ihdr.Grayscale2, ihdr.Grayscale4:
		bitDepth := mode.BitsPerPixel()
		byteIdx := rowStart + x/(8/bitDepth)
		v := bitField(data[byteIdx], bitDepth, x)
		scale := byte(255 / ((1 << uint(bitDepth)) - 1))
		g := byte(v) * scale
		return g, g, g, 255, nil
	case ihdr.Grayscale8:
		i := rowStart + x
		g := data[i]
		return g, g, g, 255, nil
	case ihdr.Grayscale16:
		i := rowStart + x*2
		g := reduce16(data[i], data[i+1])
		return g, g, g, 255, nil
	case ihdr.RGB8:
		i := rowStart + x*3
		return data[i], data[i+1], data[i+2], 255, nil
	case ihdr.RGB16:
		i := rowStart + x*6
		return reduce16(data[i], data[i+1]), reduce16(data[i+2], data[i+3]), reduce16(data[i+4], data[i+5]), 255, nil
	case ihdr.GrayscaleAlpha8:
		i := rowStart + x*2
		g := data[i]
		return g, g, g, data[i+1], nil
	case ihdr.GrayscaleAlpha16:
		i := rowStart + x*4
		g := reduce16(data[i], data[i+1])
		al := reduce16(data[i+2], data[i+3])
		return g, g, g, al, nil
	case ihdr.RGBA8:
		i := rowStart + x*4
		return data[i], data[i+1], data[i+2], data[i+3], nil
	case ihdr.RGBA16:
		i := rowStart + x*8
		return reduce16(data[i], data[i+1]), reduce16(data[i+2], data[i+3]), reduce16(data[i+4], data[i+5]), reduce16(data[i+6], data[i+7]), nil
	case ihdr.Palette1, ihdr.Palette2, ihdr.Palette4, ihdr.Palette8:
		bitDepth := mode.BitsPerPixel()
		var idx int
		if bitDepth == 8 {
			idx = int(data[rowStart+x])
		} else {
			byteIdx := rowStart + x/(8/bitDepth)
			idx = bitField(data[byteIdx], bitDepth, x)
		}
		if palette == nil {
			return 0, 0, 0, 0, pngerr.FormatError("indexed color used without a PLTE chunk")
		}
		rgb, lookupErr := palette.Lookup(idx)
		if lookupErr != nil {
			return 0, 0, 0, 0, lookupErr
		}
		return rgb[0], rgb[1], rgb[2], 255, nil
	default:
		return 0, 0, 0, 0, pngerr.FormatError("unsupported color mode")
	}
}
