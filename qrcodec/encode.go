package qrcodec

import (
	"fmt"

	"github.com/handsomecheung/fountain/base45"
	"github.com/kortschak/qr"
)

// quietZoneModules is the number of all-white modules surrounding the QR
// symbol on every side, per spec.md §4.4 and §6.
const quietZoneModules = 4

// ECC selects the QR error-correction level. The zero value is Level L,
// the fountain protocol's default (spec.md's own erasure resilience, plus
// QR's, makes a high ECC level wasted capacity).
type ECC int

const (
	ECCLow ECC = iota
	ECCMedium
	ECCQuartile
	ECCHigh
)

func (e ECC) level() qr.Level {
	switch e {
	case ECCMedium:
		return qr.M
	case ECCQuartile:
		return qr.Q
	case ECCHigh:
		return qr.H
	default:
		return qr.L
	}
}

// EncodePacket renders packetBytes as a QR raster: Base45-encode, pick the
// smallest fitting QR version in Alphanumeric mode at the given ECC level,
// render the module matrix, surround it with a quietZoneModules border, and
// upscale nearest-neighbour by pixelScale. Rendering is deterministic:
// identical inputs produce a byte-identical Raster.
func EncodePacket(packetBytes []byte, ecc ECC, pixelScale int) (*Raster, error) {
	if pixelScale < 1 {
		pixelScale = 1
	}

	text := base45.Encode(packetBytes)

	code, err := qr.Encode(text, ecc.level())
	if err != nil {
		return nil, fmt.Errorf("qrcodec: encode QR: %w", err)
	}

	modules := code.Size
	bordered := modules + 2*quietZoneModules
	scaled := bordered * pixelScale

	out := &Raster{Width: scaled, Height: scaled, Pix: make([]byte, scaled*scaled)}

	for my := 0; my < modules; my++ {
		for mx := 0; mx < modules; mx++ {
			if !code.Black(mx, my) {
				continue
			}
			px0 := (mx + quietZoneModules) * pixelScale
			py0 := (my + quietZoneModules) * pixelScale
			for dy := 0; dy < pixelScale; dy++ {
				for dx := 0; dx < pixelScale; dx++ {
					out.set(px0+dx, py0+dy, true)
				}
			}
		}
	}

	return out, nil
}
