// Command fountain-encode drives fountain.Encoder over one input file and
// writes the resulting QR rasters to disk. It is the minimal CLI front end
// named in spec.md §6: it does not attempt carousel timing, looping, or GIF
// assembly, which remain for a downstream renderer to build on top of the
// codec.
package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/handsomecheung/fountain"
	"github.com/handsomecheung/fountain/qrcodec"
	"github.com/handsomecheung/fountain/raptorq"
	"github.com/spf13/pflag"
)

// Options mirrors this corpus's own flags.Options shape: a plain struct
// filled in by parseOptions.
type Options struct {
	Terminal       bool
	ImageOutputDir string
	ChunkSize      uint16
	PixelScale     uint8
	AnchorEvery    uint16
	QrECC          string
	Count          int
	InputFile      string
}

func parseOptions() (*Options, error) {
	opts := &Options{}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input-file>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.BoolVar(&opts.Terminal, "terminal", false, "print a coarse rendering of each raster to stdout")
	pflag.StringVar(&opts.ImageOutputDir, "image-output-dir", "", "directory to write one PNG raster per packet")
	pflag.Uint16Var(&opts.ChunkSize, "chunk-size", 600, "max packet payload bytes")
	var pixelScale int
	pflag.IntVar(&pixelScale, "pixel-scale", 4, "raster upscale factor")
	pflag.Uint16Var(&opts.AnchorEvery, "anchor-every", 16, "anchor cadence")
	pflag.StringVar(&opts.QrECC, "qr-ecc", "L", "QR error-correction level: L, M, Q, or H")
	pflag.IntVar(&opts.Count, "count", 0, "number of packets to emit (0 = auto, covers K*Z plus overhead)")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return nil, fmt.Errorf("must pass exactly one input file, got %d", pflag.NArg())
	}
	opts.InputFile = pflag.Arg(0)
	opts.PixelScale = uint8(pixelScale)

	if opts.ImageOutputDir == "" && !opts.Terminal {
		return nil, fmt.Errorf("must pass --image-output-dir and/or --terminal")
	}

	return opts, nil
}

func eccFromFlag(s string) (qrcodec.ECC, error) {
	switch s {
	case "L":
		return qrcodec.ECCLow, nil
	case "M":
		return qrcodec.ECCMedium, nil
	case "Q":
		return qrcodec.ECCQuartile, nil
	case "H":
		return qrcodec.ECCHigh, nil
	default:
		return 0, fmt.Errorf("unknown --qr-ecc %q", s)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ecc, err := eccFromFlag(opts.QrECC)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	payload, err := os.ReadFile(opts.InputFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fountain-encode:", err)
		return 1
	}

	cfg := fountain.DefaultConfig()
	cfg.ChunkSize = opts.ChunkSize
	cfg.AnchorEvery = opts.AnchorEvery
	cfg.PixelScale = opts.PixelScale
	cfg.QrECC = ecc

	enc, err := fountain.NewEncoder(payload, filepath.Base(opts.InputFile), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fountain-encode:", err)
		return 2
	}

	count := opts.Count
	if count == 0 {
		count = defaultPacketCount(enc, cfg.AnchorEvery)
	}

	if opts.ImageOutputDir != "" {
		if err := os.MkdirAll(opts.ImageOutputDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "fountain-encode:", err)
			return 1
		}
	}

	for i := 0; i < count; i++ {
		raster, err := enc.NextRaster()
		if err != nil {
			fmt.Fprintln(os.Stderr, "fountain-encode:", err)
			return 1
		}

		if opts.ImageOutputDir != "" {
			if err := writePNG(opts.ImageOutputDir, i, raster); err != nil {
				fmt.Fprintln(os.Stderr, "fountain-encode:", err)
				return 1
			}
		}
		if opts.Terminal {
			printTerminal(raster, int(cfg.PixelScale))
		}
	}

	fmt.Fprintf(os.Stderr, "fountain-encode: transfer %d, %d packet(s) written\n", enc.TransferID(), count)
	return 0
}

func writePNG(dir string, index int, raster *qrcodec.Raster) error {
	path := filepath.Join(dir, fmt.Sprintf("packet-%05d.png", index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, qrcodec.ToImage(raster))
}

// printTerminal prints one two-character block per QR module (skipping the
// pixel-scale upscale) rather than one per pixel, so the rendering stays
// legible in a normal-sized terminal.
func printTerminal(raster *qrcodec.Raster, stride int) {
	if stride < 1 {
		stride = 1
	}
	for y := 0; y < raster.Height; y += stride {
		var line []byte
		for x := 0; x < raster.Width; x += stride {
			if raster.Pix[y*raster.Width+x] != 0 {
				line = append(line, []byte("██")...)
			} else {
				line = append(line, ' ', ' ')
			}
		}
		fmt.Println(string(line))
	}
	fmt.Println()
}

// defaultPacketCount picks enough packets, including anchor overhead, to
// reach the K + 2*Z threshold spec.md §8 property 1/2 exercises, across
// every block.
func defaultPacketCount(enc *fountain.Encoder, anchorEvery uint16) int {
	oti := enc.OTI()
	ranges := raptorq.BlockRanges(oti)

	var dataNeeded uint64
	for _, r := range ranges {
		dataNeeded += uint64(raptorq.SymbolsPerBlock(r.Length, oti.T))
	}
	dataNeeded += 2 * uint64(len(ranges))

	cycle := uint64(anchorEvery) + 1
	total := dataNeeded * cycle / (cycle - 1)
	if total < dataNeeded {
		total = dataNeeded
	}
	return int(total) + 1
}
