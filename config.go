package fountain

import "github.com/handsomecheung/fountain/qrcodec"

// Config holds the tunable parameters of an Encoder or Decoder, in the same
// Options-struct-plus-defaults shape this corpus's own flags package uses.
type Config struct {
	// ChunkSize is the maximum packet payload size in bytes; it drives the
	// RaptorQ symbol size T. Default 600.
	ChunkSize uint16
	// AnchorEvery is the anchor cadence: one Anchor is emitted, then
	// AnchorEvery Data packets, and the cycle repeats. A value of 1
	// alternates Anchor/Data. Default 16.
	AnchorEvery uint16
	// PixelScale is the nearest-neighbour raster upscale factor. Default 4.
	PixelScale uint8
	// QrECC is the QR error-correction level. Default ECCLow.
	QrECC qrcodec.ECC
	// Logger receives debug/info/error events; a nil Logger is replaced
	// with a silent one.
	Logger Logger
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:   600,
		AnchorEvery: 16,
		PixelScale:  4,
		QrECC:       qrcodec.ECCLow,
	}
}

func (c Config) withDefaults() Config {
	if c.ChunkSize == 0 {
		c.ChunkSize = 600
	}
	if c.AnchorEvery == 0 {
		c.AnchorEvery = 16
	}
	if c.PixelScale == 0 {
		c.PixelScale = 4
	}
	return c
}
