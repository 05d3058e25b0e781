package bmp

import "errors"

// Failure kinds reported by Encode, Decode and friends. Every error returned
// by this package wraps exactly one of them; test with errors.Is.
var (
	ErrOpen        = errors.New("bmp: cannot open stream")
	ErrWrite       = errors.New("bmp: write failed")
	ErrFormat      = errors.New("bmp: not a bitmap file")
	ErrUnsupported = errors.New("bmp: unsupported BMP format, only 24-bit uncompressed is supported")
	ErrTruncated   = errors.New("bmp: truncated file")
	ErrGeometry    = errors.New("bmp: invalid image dimensions")
	ErrTopDown     = errors.New("bmp: top-down bitmaps (negative height) are not supported")
	ErrSeek        = errors.New("bmp: pixel data offset out of range")
)
