// bmpconv reads, writes and converts 24 bit uncompressed bitmaps
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jiocb86/cpp-image-converter/internal/adjustments"
	"github.com/jiocb86/cpp-image-converter/internal/bmp"
	"github.com/jiocb86/cpp-image-converter/internal/config"
	"github.com/jiocb86/cpp-image-converter/internal/convert"
	"github.com/jiocb86/cpp-image-converter/internal/filters"
	"github.com/jiocb86/cpp-image-converter/internal/img"
	"github.com/jiocb86/cpp-image-converter/internal/pattern"
	"github.com/jiocb86/cpp-image-converter/internal/store"
	"github.com/jiocb86/cpp-image-converter/internal/utils"
)

type command struct {
	usage string
	run   func(env *env, args []string) error
}

// env is what every command gets to work with
type env struct {
	cfg    config.Config
	stdout io.Writer
}

func (e *env) options() convert.Options {
	return convert.Options{JPEGQuality: e.cfg.JPEGQuality, AllowTopDown: e.cfg.AllowTopDown}
}

func (e *env) logf(format string, args ...any) {
	if e.cfg.Verbose {
		log.Printf(format, args...)
	}
}

var commands = map[string]command{
	"info":    {"info FILE...", runInfo},
	"show":    {"show FILE", runShow},
	"convert": {"convert SRC DST | convert -to EXT [-workers N] [-o DIR] SRC...", runConvert},
	"gen":     {"gen [-w W] [-h H] [-red EXPR] [-green EXPR] [-blue EXPR] DST", runGen},
	"filter":  {"filter -op invert|grayscale|luma|brightness|contrast|channel [-value F] [-method add|multiply] [-channel red|green|blue] SRC DST", runFilter},
	"crop":    {"crop -x X -y Y -w W -h H SRC DST", runCrop},
	"resize":  {"resize [-w W] [-h H] [-smooth] SRC DST", runResize},
	"rotate":  {"rotate -deg 90|180|270 SRC DST", runRotate},
	"flip":    {"flip -axis h|v SRC DST", runFlip},
	"blur":    {"blur -sigma S SRC DST", runBlur},
	"config":  {"config", runConfig},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: bmpconv [-config FILE] [-v] COMMAND [ARGS]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  bmpconv %s\n", commands[name].usage)
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("bmpconv: ")

	configPath := flag.String("config", config.DefaultPath, "Configuration file (YAML)")
	verbose := flag.Bool("v", false, "Log progress")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, found, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		cfg.Verbose = true
	}

	e := &env{cfg: cfg, stdout: os.Stdout}
	if found {
		e.logf("loaded configuration from %s", *configPath)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		log.Printf("unknown command %q", flag.Arg(0))
		usage()
		os.Exit(2)
	}
	if err := cmd.run(e, flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

// Parses the flags of a subcommand and checks the number of positional arguments
func parse(fs *flag.FlagSet, args []string, positional int) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if positional >= 0 && fs.NArg() != positional {
		return fmt.Errorf("expected %d argument(s), got %d", positional, fs.NArg())
	}
	if positional < 0 && fs.NArg() == 0 {
		return errors.New("expected at least one file")
	}
	return nil
}

func runInfo(e *env, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := parse(fs, args, -1); err != nil {
		return err
	}

	var failed int
	for i, name := range fs.Args() {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		h, err := bmp.LoadConfig(name)
		if err != nil {
			log.Printf("%s: %v", name, err)
			failed++
			continue
		}
		h.Print(e.stdout, name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be read", failed, fs.NArg())
	}
	return nil
}

// Print the image in terminal. Use for small images only
func printImage(w io.Writer, m *img.Image) {
	for y := range m.Height() {
		for _, pixel := range m.Row(y) {
			fmt.Fprint(w, utils.ColoredBlock("  ", int(pixel.R), int(pixel.G), int(pixel.B)))
		}
		fmt.Fprintln(w)
	}
}

func runShow(e *env, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	m, _, err := convert.Read(fs.Arg(0), e.options())
	if err != nil {
		return err
	}
	printImage(e.stdout, m)
	return nil
}

func runConvert(e *env, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	to := fs.String("to", "", "Output extension for batch mode, e.g. .bmp or .png")
	workers := fs.Int("workers", e.cfg.Workers, "Parallel conversions")
	outDir := fs.String("o", e.cfg.OutputDir, "Output directory for batch mode")

	if err := parse(fs, args, -1); err != nil {
		return err
	}

	var jobs []convert.Job
	switch {
	case *to == "" && fs.NArg() == 2:
		jobs = append(jobs, convert.Job{Src: fs.Arg(0), Dst: fs.Arg(1)})
	case *to == "":
		return errors.New("expected SRC DST, or -to EXT with one or more sources")
	default:
		ext := *to
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		for _, src := range fs.Args() {
			jobs = append(jobs, convert.Job{Src: src, Dst: batchTarget(src, ext, *outDir)})
		}
	}

	if *outDir != "" && *to != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", *outDir, err)
		}
	}

	e.logf("converting %d file(s) with %d worker(s)", len(jobs), max(*workers, 1))
	var failed int
	for _, res := range convert.Batch(jobs, *workers, e.options(), nil) {
		if res.Err != nil {
			log.Printf("%s: %v", res.Src, res.Err)
			failed++
			continue
		}
		e.logf("%s (%s) -> %s", res.Src, res.Format, res.Dst)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversion(s) failed", failed, len(jobs))
	}
	return nil
}

// Output path for src in batch mode: same name, new extension, optionally in dir
func batchTarget(src, ext, dir string) string {
	base := src
	if store.Compressed(base) {
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	return base
}

func runGen(e *env, args []string) error {
	def := e.cfg.Generate
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	width := fs.Int("w", def.Width, "Width in pixels")
	height := fs.Int("h", def.Height, "Height in pixels")
	red := fs.String("red", def.Red, "Red channel expression")
	green := fs.String("green", def.Green, "Green channel expression")
	blue := fs.String("blue", def.Blue, "Blue channel expression")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	m, err := pattern.Generate(*width, *height, pattern.Expr{Red: *red, Green: *green, Blue: *blue})
	if err != nil {
		return err
	}
	e.logf("generated %dx%d image", m.Width(), m.Height())
	return convert.Write(fs.Arg(0), m, e.options())
}

// Reads SRC, applies edit and writes DST
func edit(e *env, fs *flag.FlagSet, f func(m *img.Image) (*img.Image, error)) error {
	src, dst := fs.Arg(0), fs.Arg(1)
	m, _, err := convert.Read(src, e.options())
	if err != nil {
		return err
	}
	if m, err = f(m); err != nil {
		return err
	}
	if err := convert.Write(dst, m, e.options()); err != nil {
		return err
	}
	e.logf("%s -> %s (%dx%d)", src, dst, m.Width(), m.Height())
	return nil
}

func runFilter(e *env, args []string) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	op := fs.String("op", "", "Filter to apply")
	value := fs.Float64("value", 1, "Factor for brightness and contrast")
	method := fs.String("method", "add", "Brightness method: add or multiply")
	channel := fs.String("channel", "red", "Channel to keep")
	if err := parse(fs, args, 2); err != nil {
		return err
	}

	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		switch *op {
		case "invert":
			filters.Invert(m)
		case "grayscale":
			filters.Grayscale(m)
		case "luma":
			filters.GrayscaleLuma(m)
		case "brightness":
			return m, filters.Brightness(m, *value, *method)
		case "contrast":
			filters.Contrast(m, *value)
		case "channel":
			return m, filters.Channel(m, *channel)
		default:
			return nil, fmt.Errorf("unknown filter %q", *op)
		}
		return m, nil
	})
}

func runCrop(e *env, args []string) error {
	fs := flag.NewFlagSet("crop", flag.ContinueOnError)
	x := fs.Int("x", 0, "Left edge")
	y := fs.Int("y", 0, "Top edge")
	w := fs.Int("w", 0, "Width")
	h := fs.Int("h", 0, "Height")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		return adjustments.Crop(m, *x, *y, *w, *h)
	})
}

func runResize(e *env, args []string) error {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	w := fs.Int("w", 0, "Width (0 keeps aspect ratio)")
	h := fs.Int("h", 0, "Height (0 keeps aspect ratio)")
	smooth := fs.Bool("smooth", false, "Lanczos resampling instead of nearest neighbour")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		return adjustments.Resize(m, *w, *h, *smooth)
	})
}

func runRotate(e *env, args []string) error {
	fs := flag.NewFlagSet("rotate", flag.ContinueOnError)
	deg := fs.Int("deg", 90, "Counter-clockwise rotation in degrees")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		return adjustments.Rotate(m, *deg)
	})
}

func runFlip(e *env, args []string) error {
	fs := flag.NewFlagSet("flip", flag.ContinueOnError)
	axis := fs.String("axis", "h", "h mirrors left-right, v mirrors top-bottom")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		switch *axis {
		case "h":
			return adjustments.FlipHorizontal(m), nil
		case "v":
			return adjustments.FlipVertical(m), nil
		}
		return nil, fmt.Errorf("unknown axis %q", *axis)
	})
}

func runBlur(e *env, args []string) error {
	fs := flag.NewFlagSet("blur", flag.ContinueOnError)
	sigma := fs.Float64("sigma", 1, "Gaussian standard deviation")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	return edit(e, fs, func(m *img.Image) (*img.Image, error) {
		return adjustments.Blur(m, float32(*sigma))
	})
}

func runConfig(e *env, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	data, err := e.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = e.stdout.Write(data)
	return err
}
