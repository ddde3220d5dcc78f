// Package pngdecode is the top-level PNG decoder driver (spec.md §2 "Top-
// level driver" / §4). It validates the signature, reads IHDR, dispatches
// every subsequent chunk, and runs the DEFLATE and filter stages to
// produce a BGRA pixel buffer.
package pngdecode

import (
	"fmt"
	"io"
	"log"

	"github.com/adpollak/pngcore/internal/chunk"
	"github.com/adpollak/pngcore/internal/filter"
	"github.com/adpollak/pngcore/internal/ihdr"
	"github.com/adpollak/pngcore/internal/inflate"
	"github.com/adpollak/pngcore/internal/pngerr"
)

var signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

// Image is the decoded pixel sink: an 8-bit BGRA buffer with row stride
// Pitch (spec.md §3/§6). Pitch is always at least 4*Width.
type Image struct {
	Width  int
	Height int
	Pitch  int
	Pix    []byte
}

// Decode reads a PNG datastream from src and returns the decoded image.
func Decode(src chunk.Source) (*Image, error) {
	if err := checkSignature(src); err != nil {
		return nil, err
	}

	first, err := chunk.Open(src)
	if err != nil {
		return nil, err
	}
	if first.Type != chunk.IHDR {
		return nil, pngerr.FormatError("first chunk is not IHDR")
	}
	data, err := io.ReadAll(first)
	if err != nil {
		return nil, err
	}
	if err := first.Close(); err != nil {
		return nil, err
	}
	header, err := ihdr.Parse(data)
	if err != nil {
		return nil, err
	}
	if header.InterlaceMethod == 1 {
		return nil, pngerr.FormatError("Adam7 interlacing is not supported")
	}

	img := &Image{
		Width:  int(header.Width),
		Height: int(header.Height),
		Pitch:  int(header.Width) * 4,
	}
	img.Pix = make([]byte, img.Pitch*img.Height)

	bitsPerPixel := header.ColorMode.BitsPerPixel()
	bytesPerScanline := (img.Width*bitsPerPixel+7)/8 + 1
	decompressed := make([]byte, bytesPerScanline*img.Height)

	var palette *ihdr.Palette
	seenIDAT := false
	idatDone := false

	cur, err := chunk.Open(src)
	if err != nil {
		return nil, err
	}
	for {
		switch cur.Type {
		case chunk.IHDR:
			log.Printf("warning: multiple IHDR chunks")
			if err := cur.Close(); err != nil {
				return nil, err
			}
			cur, err = chunk.Open(src)
		case chunk.PLTE:
			if seenIDAT {
				log.Printf("warning: PLTE chunk after IDAT")
			}
			pdata, rerr := io.ReadAll(cur)
			if rerr != nil {
				return nil, rerr
			}
			if err := cur.Close(); err != nil {
				return nil, err
			}
			if header.ColorMode == ihdr.Grayscale1 || header.ColorMode == ihdr.Grayscale2 ||
				header.ColorMode == ihdr.Grayscale4 || header.ColorMode == ihdr.Grayscale8 ||
				header.ColorMode == ihdr.Grayscale16 {
				log.Printf("warning: PLTE chunk present for a grayscale color type")
			}
			palette = ihdr.ParsePalette(pdata)
			palette.CheckBitDepth(header.BitDepth)
			cur, err = chunk.Open(src)
		case chunk.IDAT:
			if idatDone {
				log.Printf("warning: IDAT chunk after the IDAT stream already ended")
				if err := cur.Close(); err != nil {
					return nil, err
				}
				cur, err = chunk.Open(src)
				break
			}
			seenIDAT = true
			idat := chunk.NewIdatReader(src, cur)
			if derr := inflate.Decompress(idat, decompressed); derr != nil {
				return nil, derr
			}
			idatDone = true
			if pending := idat.Pending(); pending != nil {
				cur = pending
				err = nil
			} else {
				cur, err = chunk.Open(src)
			}
		case chunk.IEND:
			if cur.Length != 0 {
				log.Printf("warning: IEND chunk has nonzero length")
			}
			if err := cur.Close(); err != nil {
				return nil, err
			}
			goto done
		default:
			if cur.Type.Critical() {
				log.Printf("warning: unrecognized critical chunk %s", cur.Type.Name())
			}
			if err := cur.Close(); err != nil {
				return nil, err
			}
			cur, err = chunk.Open(src)
		}
		if err != nil {
			return nil, err
		}
	}
done:
	if header.ColorMode.Indexed() && palette == nil {
		return nil, pngerr.FormatError("indexed color image has no PLTE chunk")
	}

	if err := filter.Unfilter(decompressed, img.Width, img.Height, header.ColorMode, palette, img.Pix, img.Pitch); err != nil {
		return nil, err
	}
	return img, nil
}

func checkSignature(src io.Reader) error {
	var sig [8]byte
	if _, err := io.ReadFull(src, sig[:]); err != nil {
		return pngerr.WrapIO(err, "reading PNG signature")
	}
	if sig != signature {
		return pngerr.FormatError(fmt.Sprintf("invalid PNG signature: %v", sig))
	}
	return nil
}
