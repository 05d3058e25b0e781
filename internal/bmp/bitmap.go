// bmp package reads and writes uncompressed 24 bit bitmaps
package bmp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jiocb86/cpp-image-converter/internal/img"
	"github.com/jiocb86/cpp-image-converter/internal/store"
)

// Upper bound on width*height accepted by the decoder
const maxPixels = 1 << 28

// Header is the parsed preamble of a bitmap file
type Header struct {
	File BitmapFileHeader
	Info BitmapInfoHeader
}

func (h *Header) Width() int {
	return int(h.Info.Width)
}

// Absolute height, in pixels
func (h *Header) Height() int {
	return int(abs32(h.Info.Height))
}

// Pixels are stored TopDown?
func (h *Header) TopDown() bool {
	return h.Info.Height < 0
}

func (h *Header) Stride() int {
	return Stride(h.Width())
}

// padding-bytes for each row
func (h *Header) Padding() int {
	return h.Stride() - h.Width()*bytesPerPixel
}

// Print the Metadata of a bitmap (in human-readable format)
func (h *Header) Print(w io.Writer, name string) {
	fmt.Fprintf(w, "Filename: \t%v\n", name)
	fmt.Fprintf(w, "Filesize: \t%v bytes\n", h.File.Size)
	fmt.Fprintf(w, "Width: \t\t%v px\n", h.Info.Width)
	fmt.Fprintf(w, "Height: \t%v px\n", h.Info.Height)
	fmt.Fprintf(w, "BitCount: \t%vbits\n", h.Info.BitCount)
	fmt.Fprintf(w, "PixelOffset: \t%v bytes\n", h.File.OffBits)
	fmt.Fprintf(w, "PixelCount: \t%v pixels\n", h.Width()*h.Height())
	fmt.Fprintf(w, "Stride: \t%v bytes\n", h.Stride())
	fmt.Fprintf(w, "Padding: \t%v bytes\n", h.Padding())
	fmt.Fprintf(w, "Resolution: \t%vx%v px/m\n", h.Info.XPixelsPerM, h.Info.YPixelsPerM)
}

// Decoder holds decoding options. The zero value rejects top-down files.
type Decoder struct {
	AllowTopDown bool // Accept negative heights (rows stored top to bottom)
}

// Reads a bitmap from r using the default options
func Decode(r io.Reader) (*img.Image, error) {
	var d Decoder
	return d.Decode(r)
}

// Reads and validates only the headers of a bitmap
func DecodeConfig(r io.Reader) (Header, error) {
	var d Decoder
	h, err := d.readHeader(r)
	if err != nil {
		return Header{}, err
	}
	if err := d.checkGeometry(&h); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Reads a 24 bit bitmap from r. On failure the returned image is nil.
func (d Decoder) Decode(r io.Reader) (*img.Image, error) {
	h, err := d.readHeader(r)
	if err != nil {
		return nil, err
	}

	// Seek to Pixel Array (OffBits)
	remaining, err := skipTo(r, int64(h.File.OffBits))
	if err != nil {
		return nil, err
	}

	if err := d.checkGeometry(&h); err != nil {
		return nil, err
	}

	width, height := h.Width(), h.Height()
	stride := h.Stride()
	if remaining >= 0 && int64(stride)*int64(height) > remaining {
		return nil, fmt.Errorf("%w: need %d bytes of pixel data, %d left", ErrTruncated, int64(stride)*int64(height), remaining)
	}

	m := img.New(width, height, img.Black)
	row := make([]byte, stride)

	// Rows are stored bottom-up unless the height was negative
	for i := range height {
		y := height - i - 1
		if h.TopDown() {
			y = i
		}

		if _, err := io.ReadFull(r, row); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: row %d of %d is short", ErrTruncated, i+1, height)
			}
			return nil, fmt.Errorf("reading row %d: %w", i+1, err)
		}

		// BGR on disk, padding discarded
		line := m.Row(y)
		for x := range line {
			line[x] = img.Color{R: row[x*3+2], G: row[x*3+1], B: row[x*3+0]}
		}
	}

	return m, nil
}

func (d Decoder) readHeader(r io.Reader) (Header, error) {
	var h Header

	b, err := readHeaderBytes(r, FileHeaderSize, "file header")
	if err != nil {
		return Header{}, err
	}
	if err := h.File.UnmarshalBinary(b); err != nil {
		return Header{}, err
	}
	if h.File.Type != signature {
		return Header{}, fmt.Errorf("%w: signature %q", ErrFormat, h.File.Type[:])
	}

	// READ Info Header
	b, err = readHeaderBytes(r, InfoHeaderSize, "info header")
	if err != nil {
		return Header{}, err
	}
	if err := h.Info.UnmarshalBinary(b); err != nil {
		return Header{}, err
	}

	// Support only 24bit uncompressed Bitmaps (common)
	if h.Info.BitCount != bitsPerPixel {
		return Header{}, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.Info.BitCount)
	}
	if h.Info.Compression != 0 {
		return Header{}, fmt.Errorf("%w: compression method %d", ErrUnsupported, h.Info.Compression)
	}

	return h, nil
}

func (d Decoder) checkGeometry(h *Header) error {
	if h.Info.Width <= 0 || h.Info.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrGeometry, h.Info.Width, h.Info.Height)
	}
	if h.TopDown() && !d.AllowTopDown {
		return fmt.Errorf("%w: height %d", ErrTopDown, h.Info.Height)
	}
	if int64(h.Width())*int64(h.Height()) > maxPixels {
		return fmt.Errorf("%w: %dx%d is too large", ErrUnsupported, h.Width(), h.Height())
	}
	return nil
}

// Moves r to offset (from the start of the stream). Seekable streams report
// how many bytes follow the offset, others report -1.
func skipTo(r io.Reader, offset int64) (int64, error) {
	// Pipes are *os.File too but fail to seek, they take the forward path
	if s, ok := r.(io.Seeker); ok {
		if end, err := s.Seek(0, io.SeekEnd); err == nil {
			return seekTo(s, offset, end)
		}
	}

	// Plain readers can only move forward
	if offset < HeaderSize {
		return 0, fmt.Errorf("%w: offset %d points into the header", ErrSeek, offset)
	}
	n, err := io.CopyN(io.Discard, r, offset-HeaderSize)
	if err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("%w: offset %d past end of stream (%d bytes)", ErrSeek, offset, HeaderSize+n)
		}
		return 0, fmt.Errorf("%w: %w", ErrSeek, err)
	}
	return -1, nil
}

// Seeks s to offset given the stream length end, and reports how many bytes follow
func seekTo(s io.Seeker, offset, end int64) (int64, error) {
	if offset > end {
		return 0, fmt.Errorf("%w: offset %d past end of stream (%d bytes)", ErrSeek, offset, end)
	}
	if _, err := s.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeek, err)
	}
	return end - offset, nil
}

// Writes m to w as a 24 bit bitmap. A nil or empty image produces a bare
// 54 byte header. m is not modified.
func Encode(w io.Writer, m *img.Image) error {
	width, height := m.Width(), m.Height()
	if err := checkEncodable(width, height); err != nil {
		return err
	}
	bfHeader, biHeader := newHeaders(width, height)

	// Create a buffer (to reduce syscalls)
	bw := bufio.NewWriter(w)

	fb, _ := bfHeader.MarshalBinary()
	if _, err := bw.Write(fb); err != nil {
		return fmt.Errorf("%w: file header: %w", ErrWrite, err)
	}
	ib, _ := biHeader.MarshalBinary()
	if _, err := bw.Write(ib); err != nil {
		return fmt.Errorf("%w: info header: %w", ErrWrite, err)
	}

	// Write the pixels (BottomUp: last row first)
	row := make([]byte, Stride(width))
	for y := height - 1; y >= 0; y-- {
		for x, c := range m.Row(y) {
			row[x*3+0] = c.B
			row[x*3+1] = c.G
			row[x*3+2] = c.R
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrWrite, y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Saves the image onto local disk. Paths ending in ".zst" are zstd
// compressed. On failure no file is left behind.
func Save(filename string, m *img.Image) error {
	out, err := store.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}

	if err := Encode(out, m); err != nil {
		out.Abort()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Reads a Bitmap file (optionally zstd compressed, see Save)
func Load(filename string) (*img.Image, error) {
	var d Decoder
	return d.Load(filename)
}

func (d Decoder) Load(filename string) (*img.Image, error) {
	in, err := store.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer in.Close()

	return d.Decode(in)
}

// Reads only the headers of a Bitmap file
func LoadConfig(filename string) (Header, error) {
	in, err := store.Open(filename)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer in.Close()

	return DecodeConfig(in)
}

// Reports whether the file at filename looks like a bitmap this package can decode
func Sniff(filename string) bool {
	_, err := LoadConfig(filename)
	return err == nil
}

func abs32(n int32) int64 {
	if n < 0 {
		return -int64(n)
	}
	return int64(n)
}
