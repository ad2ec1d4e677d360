package qrcodec

import (
	"image"
	"image/color"

	"github.com/handsomecheung/fountain/base45"
	"github.com/handsomecheung/fountain/packet"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi/qrcode"
)

// Decoded is one successfully recognised and framed packet pulled out of a
// raster.
type Decoded struct {
	Text   string
	Packet packet.Packet
}

// Recognise locates zero or more QR codes in an arbitrary monochrome or
// greyscale raster, Base45-decodes each payload, and parses it as a
// fountain packet. A code that fails to locate, fails checksum, fails
// Base45 decoding, or fails to parse as a packet is simply omitted — per
// spec.md §4.5/§7, a per-code failure is never an error of this function.
// Duplicate payload strings within one raster are deduplicated.
func Recognise(r *Raster) []Decoded {
	img := rasterToImage(r)

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}

	reader := qrcode.NewQRCodeMultiReader()
	results, err := reader.DecodeMultiple(bitmap, nil)
	if err != nil || len(results) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(results))
	out := make([]Decoded, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		text := res.GetText()
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		raw, err := base45.Decode(text)
		if err != nil {
			continue
		}
		p, err := packet.Parse(raw)
		if err != nil {
			continue
		}
		out = append(out, Decoded{Text: text, Packet: p})
	}
	return out
}

// rasterToImage converts our 1-byte-per-pixel Raster into a stdlib
// image.Image suitable for gozxing's binarizer.
func rasterToImage(r *Raster) image.Image {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.at(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
