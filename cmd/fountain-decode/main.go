// Command fountain-decode reads a directory of still images in lexical
// order, feeding each through the QR recogniser and fountain.Decoder until
// the transfer completes or the directory is exhausted. It is the mirror of
// cmd/fountain-encode; animated-image containers and camera capture remain
// out of scope, per spec.md §6.
package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/handsomecheung/fountain"
	"github.com/handsomecheung/fountain/qrcodec"
	"github.com/spf13/pflag"
)

type Options struct {
	Output   string
	InputDir string
}

func parseOptions() (*Options, error) {
	opts := &Options{}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --output <path> <input-dir>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.StringVar(&opts.Output, "output", "", "path to write the reconstructed file")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return nil, fmt.Errorf("must pass exactly one input directory, got %d", pflag.NArg())
	}
	opts.InputDir = pflag.Arg(0)

	if opts.Output == "" {
		return nil, fmt.Errorf("must pass --output")
	}

	return opts, nil
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

	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fountain-decode:", err)
		return 1
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	dec := fountain.NewDecoder(fountain.DefaultConfig())

	for _, name := range names {
		raster, err := loadRaster(filepath.Join(opts.InputDir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "fountain-decode: skipping %s: %v\n", name, err)
			continue
		}

		status, err := dec.Feed(raster)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fountain-decode:", err)
			return 1
		}
		if status.Kind == fountain.Done {
			if err := os.WriteFile(opts.Output, status.Payload, 0o644); err != nil {
				fmt.Fprintln(os.Stderr, "fountain-decode:", err)
				return 1
			}
			fmt.Fprintf(os.Stderr, "fountain-decode: wrote %s (%d bytes)\n", opts.Output, len(status.Payload))
			return 0
		}
	}

	fmt.Fprintln(os.Stderr, "fountain-decode: input exhausted before transfer completed")
	return 3
}

func loadRaster(path string) (*qrcodec.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return qrcodec.FromImage(img), nil
}
