// BMP-specific structs and types
package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	FileHeaderSize = 14
	InfoHeaderSize = 40
	HeaderSize     = FileHeaderSize + InfoHeaderSize // Offset of the pixel array in files we write

	bitsPerPixel  = 24
	bytesPerPixel = bitsPerPixel / 8

	// Resolution (pixels-per-meter, ~300 DPI) and colour counts stamped into every file we write
	pixelsPerMeter  = 11811
	colorsUsed      = 0
	colorsImportant = 0x1000000
)

var signature = [2]byte{'B', 'M'}

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader
type BitmapFileHeader struct {
	Type     [2]byte // The file type: must be 0x4d42 (ASCII string "BM").
	Size     uint32  // The size, in bytes, of the bitmap file.
	Reserved [4]byte // Reserved; must be zero.
	OffBits  uint32  // Bitmap File Offset (In bytes) to Pixel Arrays
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].
type BitmapInfoHeader struct {
	Size            uint32 // The number of bytes required by the structure.
	Width           int32  // The width of the bitmap, in pixels.
	Height          int32  // The height of the bitmap, in pixels
	Planes          uint16 // The number of planes for the target device.
	BitCount        uint16 // The number of bits-per-pixel.
	Compression     uint32 // The type of compression
	SizeImage       uint32 // The size of the image (in bytes).
	XPixelsPerM     int32  // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32  // The vertical resolution, in pixels-per-meter.
	ColorsUsed      uint32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant uint32 // Number of color indexes required for displaying the bitmap.
}

// Returns the number of bytes in one on-disk row of a 24 bit bitmap,
// rounded up to a multiple of 4.
func Stride(width int) int {
	return 4 * ((width*bytesPerPixel + 3) / 4)
}

// Reports ErrUnsupported when a width x height bitmap cannot be described by
// the 32 bit header fields
func checkEncodable(width, height int) error {
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%d exceeds the header's dimension range", ErrUnsupported, width, height)
	}
	if int64(Stride(width))*int64(height) > math.MaxUint32-HeaderSize {
		return fmt.Errorf("%w: %dx%d exceeds the header's size range", ErrUnsupported, width, height)
	}
	return nil
}

// Builds both headers for a width x height 24 bit bitmap
func newHeaders(width, height int) (BitmapFileHeader, BitmapInfoHeader) {
	sizeImage := uint32(Stride(width) * height)

	bfh := BitmapFileHeader{
		Type:    signature,
		Size:    HeaderSize + sizeImage,
		OffBits: HeaderSize,
	}
	bih := BitmapInfoHeader{
		Size:            InfoHeaderSize,
		Width:           int32(width),
		Height:          int32(height),
		Planes:          1,
		BitCount:        bitsPerPixel,
		Compression:     0,
		SizeImage:       sizeImage,
		XPixelsPerM:     pixelsPerMeter,
		YPixelsPerM:     pixelsPerMeter,
		ColorsUsed:      colorsUsed,
		ColorsImportant: colorsImportant,
	}
	return bfh, bih
}

// MarshalBinary lays the header out as the 14 bytes found on disk.
func (h *BitmapFileHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, FileHeaderSize)
	copy(b[0:2], h.Type[:])
	binary.LittleEndian.PutUint32(b[2:6], h.Size)
	copy(b[6:10], h.Reserved[:])
	binary.LittleEndian.PutUint32(b[10:14], h.OffBits)
	return b, nil
}

func (h *BitmapFileHeader) UnmarshalBinary(b []byte) error {
	if len(b) < FileHeaderSize {
		return fmt.Errorf("%w: file header needs %d bytes, got %d", ErrTruncated, FileHeaderSize, len(b))
	}
	copy(h.Type[:], b[0:2])
	h.Size = binary.LittleEndian.Uint32(b[2:6])
	copy(h.Reserved[:], b[6:10])
	h.OffBits = binary.LittleEndian.Uint32(b[10:14])
	return nil
}

// MarshalBinary lays the header out as the 40 bytes found on disk.
func (h *BitmapInfoHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, InfoHeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:4], h.Size)
	le.PutUint32(b[4:8], uint32(h.Width))
	le.PutUint32(b[8:12], uint32(h.Height))
	le.PutUint16(b[12:14], h.Planes)
	le.PutUint16(b[14:16], h.BitCount)
	le.PutUint32(b[16:20], h.Compression)
	le.PutUint32(b[20:24], h.SizeImage)
	le.PutUint32(b[24:28], uint32(h.XPixelsPerM))
	le.PutUint32(b[28:32], uint32(h.YPixelsPerM))
	le.PutUint32(b[32:36], h.ColorsUsed)
	le.PutUint32(b[36:40], h.ColorsImportant)
	return b, nil
}

func (h *BitmapInfoHeader) UnmarshalBinary(b []byte) error {
	if len(b) < InfoHeaderSize {
		return fmt.Errorf("%w: info header needs %d bytes, got %d", ErrTruncated, InfoHeaderSize, len(b))
	}
	le := binary.LittleEndian
	h.Size = le.Uint32(b[0:4])
	h.Width = int32(le.Uint32(b[4:8]))
	h.Height = int32(le.Uint32(b[8:12]))
	h.Planes = le.Uint16(b[12:14])
	h.BitCount = le.Uint16(b[14:16])
	h.Compression = le.Uint32(b[16:20])
	h.SizeImage = le.Uint32(b[20:24])
	h.XPixelsPerM = int32(le.Uint32(b[24:28]))
	h.YPixelsPerM = int32(le.Uint32(b[28:32]))
	h.ColorsUsed = le.Uint32(b[32:36])
	h.ColorsImportant = le.Uint32(b[36:40])
	return nil
}

// Reads exactly n header bytes, mapping a short stream to ErrTruncated
func readHeaderBytes(r io.Reader, n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: short %s", ErrTruncated, what)
		}
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return b, nil
}
