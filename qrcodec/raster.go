// Package qrcodec implements the QR serialiser (C4) and recogniser (C5):
// turning a framed, Base45-encoded packet into a scannable monochrome
// raster and back, per spec.md §4.4–§4.5.
package qrcodec

import (
	"image"
	"image/color"
)

// Raster is a monochrome pixel buffer, one byte per pixel: 0 for white,
// 1 for black. Width and Height are in pixels, already including the
// quiet zone and any pixel_scale upscaling.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// at reports whether pixel (x, y) is black.
func (r *Raster) at(x, y int) bool {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return false
	}
	return r.Pix[y*r.Width+x] != 0
}

func (r *Raster) set(x, y int, black bool) {
	if black {
		r.Pix[y*r.Width+x] = 1
	}
}

// ToImage renders r as a stdlib grayscale image, for callers (such as the
// cmd/fountain-encode PNG writer) that need a standard image.Image rather
// than the raw pixel buffer.
func ToImage(r *Raster) image.Image {
	return rasterToImage(r)
}

// FromImage thresholds an arbitrary decoded image (PNG, JPEG, ...) into a
// Raster suitable for Recognise: any pixel whose luminance falls below the
// midpoint is treated as black. Used by cmd/fountain-decode to turn a file
// on disk into the recogniser's input type.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := &Raster{Width: b.Dx(), Height: b.Dy(), Pix: make([]byte, b.Dx()*b.Dy())}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			gray := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			r.set(x, y, gray.Y < 128)
		}
	}
	return r
}
