// convert package moves images between the 24 bit BMP codec and other formats.
//
// Input format is detected from the content: 24 bit bitmaps go through the
// bmp package, everything else through image.Decode with the PNG, JPEG, GIF,
// BMP (any depth), TIFF and WebP decoders registered. Output format is
// picked from the file extension. Both sides accept a trailing ".zst".
package convert

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jiocb86/cpp-image-converter/internal/bmp"
	"github.com/jiocb86/cpp-image-converter/internal/img"
	"github.com/jiocb86/cpp-image-converter/internal/store"
)

var ErrUnknownFormat = errors.New("convert: unknown output format")

// Options tune reading and writing
type Options struct {
	JPEGQuality  int  // 1-100, 0 means jpeg.DefaultQuality
	AllowTopDown bool // Passed on to the bitmap decoder
}

// Reads the image at path and reports the format it was stored in
func Read(path string, opts Options) (*img.Image, string, error) {
	d := bmp.Decoder{AllowTopDown: opts.AllowTopDown}
	m, err := d.Load(path)
	switch {
	case err == nil:
		return m, "bmp24", nil
	case errors.Is(err, bmp.ErrFormat), errors.Is(err, bmp.ErrUnsupported), errors.Is(err, bmp.ErrTopDown):
		// Not something the 24 bit codec handles, try the registered decoders
	default:
		return nil, "", err
	}

	in, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer in.Close()

	src, format, err := image.Decode(in)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return img.FromImage(src), format, nil
}

// Returns the encoder for an output path
func encoderFor(path string, opts Options) (func(w io.Writer, m *img.Image) error, error) {
	switch ext := store.BaseExt(path); ext {
	case ".png":
		return func(w io.Writer, m *img.Image) error {
			return png.Encode(w, m.ToRGBA())
		}, nil
	case ".jpg", ".jpeg":
		quality := opts.JPEGQuality
		if quality == 0 {
			quality = jpeg.DefaultQuality
		}
		return func(w io.Writer, m *img.Image) error {
			return jpeg.Encode(w, m.ToRGBA(), &jpeg.Options{Quality: quality})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Writes m to path in the format its extension names.
// On failure nothing is left at path.
func Write(path string, m *img.Image, opts Options) error {
	switch store.BaseExt(path) {
	case ".bmp", ".dib":
		return bmp.Save(path, m)
	}

	encode, err := encoderFor(path, opts)
	if err != nil {
		return err
	}
	if m.Empty() {
		return fmt.Errorf("writing %s: image is empty", path)
	}

	out, err := store.Create(path)
	if err != nil {
		return err
	}
	if err := encode(out, m); err != nil {
		out.Abort()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// Job is one file to convert
type Job struct {
	Src, Dst string
}

// Result of a Job. Err is nil on success.
type Result struct {
	Job
	Format string // Detected input format
	Err    error
}

// Converts every job, running up to workers conversions at once. transform,
// when not nil, is applied between reading and writing. Results come back in
// job order; a failed job does not stop the others.
func Batch(jobs []Job, workers int, opts Options, transform func(*img.Image) (*img.Image, error)) []Result {
	results := make([]Result, len(jobs))
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var next uint32
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= len(jobs) {
					return
				}
				results[idx] = run(jobs[idx], opts, transform)
			}
		}()
	}
	wg.Wait()

	return results
}

func run(job Job, opts Options, transform func(*img.Image) (*img.Image, error)) Result {
	res := Result{Job: job}

	m, format, err := Read(job.Src, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Format = format

	if transform != nil {
		if m, err = transform(m); err != nil {
			res.Err = fmt.Errorf("%s: %w", job.Src, err)
			return res
		}
	}

	res.Err = Write(job.Dst, m, opts)
	return res
}
