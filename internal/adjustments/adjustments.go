// Adjusts image dimensions, orientation, or structure.
package adjustments

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/gift"

	"github.com/jiocb86/cpp-image-converter/internal/img"
)

// Crops a region in the image (0,0 is at the top-left of the image)
func Crop(m *img.Image, x, y, width, height int) (*img.Image, error) {
	// Validate bounds
	if x < 0 || y < 0 {
		return nil, errors.New("invalid bounds: origin must not be negative")
	} else if width <= 0 || height <= 0 {
		return nil, errors.New("invalid bounds: width and height must be greater than 0")
	} else if width+x > m.Width() {
		return nil, errors.New("invalid bounds: width out of bounds")
	} else if height+y > m.Height() {
		return nil, errors.New("invalid bounds: height out of bounds")
	}

	// Crop the image
	cropped := img.New(width, height, img.Black)
	for row := range height { // Height | Rows
		copy(cropped.Row(row), m.Row(row+y)[x:x+width])
	}

	return cropped, nil
}

// Runs m through a gift filter chain and returns the result as a new image
func transform(m *img.Image, filters ...gift.Filter) *img.Image {
	g := gift.New(filters...)
	src := m.ToRGBA()
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return img.FromImage(dst)
}

// Mirrors the image left to right
func FlipHorizontal(m *img.Image) *img.Image {
	return transform(m, gift.FlipHorizontal())
}

// Mirrors the image top to bottom
func FlipVertical(m *img.Image) *img.Image {
	return transform(m, gift.FlipVertical())
}

// Rotates the image counter-clockwise by degrees (90, 180 or 270)
func Rotate(m *img.Image, degrees int) (*img.Image, error) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return m.Clone(), nil
	case 90:
		return transform(m, gift.Rotate90()), nil
	case 180:
		return transform(m, gift.Rotate180()), nil
	case 270:
		return transform(m, gift.Rotate270()), nil
	}
	return nil, fmt.Errorf("invalid rotation: %d is not a multiple of 90 degrees", degrees)
}

// Scales the image to width x height. A zero width or height keeps the aspect ratio.
// smooth selects Lanczos resampling instead of nearest neighbour.
func Resize(m *img.Image, width, height int, smooth bool) (*img.Image, error) {
	if width < 0 || height < 0 || (width == 0 && height == 0) {
		return nil, fmt.Errorf("invalid size: %dx%d", width, height)
	}
	if m.Empty() {
		return nil, errors.New("cannot resize an empty image")
	}

	resampling := gift.NearestNeighborResampling
	if smooth {
		resampling = gift.LanczosResampling
	}
	return transform(m, gift.Resize(width, height, resampling)), nil
}

// Applies a gaussian blur with the given standard deviation
func Blur(m *img.Image, sigma float32) (*img.Image, error) {
	if sigma <= 0 {
		return nil, errors.New("blur sigma must be greater than 0")
	}
	return transform(m, gift.GaussianBlur(sigma)), nil
}
