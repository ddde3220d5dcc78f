// Package images adapts a decoded pngdecode.Image into the standard
// library's image package, for callers that want to hand the result to
// image/png, image/draw, or anything else built on image.Image.
package images

import (
	"image"
	"image/color"

	"github.com/adpollak/pngcore/internal/pngdecode"
)

// ToNRGBA converts a decoded BGRA pixel buffer into an *image.NRGBA. The
// two share the same channel order once reassembled as RGBA, so the
// conversion is a per-pixel byte shuffle rather than a color-space change.
func ToNRGBA(img *pngdecode.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		srcRow := img.Pix[y*img.Pitch : y*img.Pitch+img.Width*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+img.Width*4]
		for x := 0; x < img.Width; x++ {
			b := srcRow[x*4+0]
			g := srcRow[x*4+1]
			r := srcRow[x*4+2]
			a := srcRow[x*4+3]
			dstRow[x*4+0] = r
			dstRow[x*4+1] = g
			dstRow[x*4+2] = b
			dstRow[x*4+3] = a
		}
	}
	return out
}

// ToGray converts a decoded image to grayscale using the standard
// library's luminance weights, discarding alpha. Useful for callers that
// decoded a color PNG but only need luminance.
func ToGray(img *pngdecode.Image) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			j := y*img.Pitch + x*4
			b, g, r := img.Pix[j+0], img.Pix[j+1], img.Pix[j+2]
			gray := color.GrayModel.Convert(color.RGBA{R: r, G: g, B: b, A: 255}).(color.Gray)
			out.SetGray(x, y, gray)
		}
	}
	return out
}
