// Command psddecode composites decoded PSD channel files into a QOI or PNG image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcarmo/psd-decoder/internal/codec"
	"github.com/rcarmo/psd-decoder/internal/export"
	"github.com/rcarmo/psd-decoder/internal/logging"
)

const usage = `Usage: psddecode -width W -height H -red file[:mode] [-green file[:mode] -blue file[:mode]] [-alpha file[:mode]] -out image.qoi|image.png

mode is raw (default) or packbits. Give green and blue for an RGB image,
neither for grayscale. alpha is optional in both cases.
`

var errUsage = errors.New("invalid arguments")

type options struct {
	width, height           int
	red, green, blue, alpha string
	out                     string
	logLevel                string
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "psddecode:", err)
		os.Exit(1)
	}
}

func parseOptions(argv []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("psddecode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	opts := &options{}
	fs.IntVar(&opts.width, "width", 0, "image width in pixels")
	fs.IntVar(&opts.height, "height", 0, "image height in pixels")
	fs.StringVar(&opts.red, "red", "", "red (or gray) channel file[:mode]")
	fs.StringVar(&opts.green, "green", "", "green channel file[:mode]")
	fs.StringVar(&opts.blue, "blue", "", "blue channel file[:mode]")
	fs.StringVar(&opts.alpha, "alpha", "", "alpha channel file[:mode]")
	fs.StringVar(&opts.out, "out", "", "output image, .qoi or .png")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	if err := fs.Parse(argv); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	for name, value := range map[string]string{"red": opts.red, "out": opts.out} {
		if value == "" {
			fs.Usage()
			return nil, fmt.Errorf("%w: -%s is required", errUsage, name)
		}
	}

	return opts, nil
}

// parseChannelSpec splits "path[:mode]". The text after the last colon is
// taken as a mode only when it names one; otherwise the whole spec is the
// path, so drive-letter paths such as C:\ch\red.bin load as raw.
func parseChannelSpec(spec string) (string, codec.CompressionMode, error) {
	i := strings.LastIndexByte(spec, ':')
	if i < 0 {
		return spec, codec.Raw, nil
	}

	mode, err := codec.ParseCompressionModeName(spec[i+1:])
	if err != nil {
		return spec, codec.Raw, nil
	}
	if spec[:i] == "" {
		return "", 0, fmt.Errorf("channel %q: missing file name", spec)
	}
	return spec[:i], mode, nil
}

func loadChannel(spec string) (*codec.EncodedChannel, error) {
	if spec == "" {
		return nil, nil
	}

	path, mode, err := parseChannelSpec(spec)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &codec.EncodedChannel{Data: data, Compression: mode}, nil
}

func run(argv []string, stderr io.Writer) error {
	opts, err := parseOptions(argv, stderr)
	if err != nil {
		return err
	}

	log := logging.New(stderr)
	log.SetLevelFromString(opts.logLevel)

	format, err := export.FormatFromPath(opts.out)
	if err != nil {
		return err
	}

	names := []string{"red", "green", "blue", "alpha"}
	specs := []string{opts.red, opts.green, opts.blue, opts.alpha}
	channels := make([]*codec.EncodedChannel, len(specs))
	for i, spec := range specs {
		if channels[i], err = loadChannel(spec); err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
	}

	layout, err := codec.LayoutFor(channels[1] != nil, channels[2] != nil, channels[3] != nil)
	if err != nil {
		return err
	}

	for i, ch := range channels {
		if ch == nil {
			continue
		}
		n, err := codec.ChannelPixels(*ch)
		if err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
		if n != opts.width*opts.height {
			log.Warn("%s channel holds %d pixels, image has %d", names[i], n, opts.width*opts.height)
		}
	}

	pixels, err := codec.GenerateRGBA(opts.width, opts.height, *channels[0], channels[1], channels[2], channels[3])
	if err != nil {
		return err
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}

	if err := export.Encode(f, pixels, opts.width, format); err != nil {
		_ = f.Close()
		_ = os.Remove(opts.out)
		return fmt.Errorf("encode %s: %w", opts.out, err)
	}

	if err := f.Close(); err != nil {
		return err
	}

	log.Info("wrote %s (%s, %dx%d)", opts.out, layout, opts.width, opts.height)
	return nil
}
