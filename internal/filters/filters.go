// Filters perform color manipulation and per-pixel operations
package filters

import (
	"errors"
	"math"

	"github.com/jiocb86/cpp-image-converter/internal/img"
	"github.com/jiocb86/cpp-image-converter/internal/utils"
)

// Applies f to every pixel of m in-place
func apply(m *img.Image, f func(p img.Color) img.Color) {
	for y := range m.Height() {
		row := m.Row(y)
		for x := range row {
			row[x] = f(row[x])
		}
	}
}

// Inverts (negates) the image
func Invert(m *img.Image) {
	apply(m, func(p img.Color) img.Color {
		return img.Color{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B}
	})
}

// Converts an image to Black-and-White
func Grayscale(m *img.Image) {
	apply(m, func(p img.Color) img.Color {
		avg := byte(utils.Average(int(p.R), int(p.G), int(p.B)))
		return img.Color{R: avg, G: avg, B: avg}
	})
}

// Converts an image to Black-and-White (with ITU-R 601-2 Luma Transform)
func GrayscaleLuma(m *img.Image) {
	apply(m, func(p img.Color) img.Color {
		L := byte(int(p.R)*299/1000 + int(p.G)*587/1000 + int(p.B)*114/1000)
		return img.Color{R: L, G: L, B: L}
	})
}

// Adjusts the Brightness of an image in-place.
//
// method can be "add" (adds value to each channel) or "multiply" (multiplies each channel by value).
// Pixel values are clipped to [0, 255].
func Brightness(m *img.Image, factor float64, method string) error {
	var operation func(x, y float64) float64

	// Select an operation of brightness (additive or multiplicative)
	switch method {
	case "add":
		operation = func(x, y float64) float64 {
			return x + y
		}
	case "multiply":
		operation = func(x, y float64) float64 {
			return x * y
		}
	default:
		return errors.New("invalid method: method must be add or multiply")
	}

	apply(m, func(p img.Color) img.Color {
		return img.Color{
			R: utils.Clamp(operation(float64(p.R), factor)),
			G: utils.Clamp(operation(float64(p.G), factor)),
			B: utils.Clamp(operation(float64(p.B), factor)),
		}
	})
	return nil
}

// Adjusts the Contrast of an image in-place.
// factor > 1.0 increases Contrast, factor < 1.0 decreases it.
func Contrast(m *img.Image, factor float64) {
	if m.Empty() {
		return
	}

	// Compute mean for each channel
	var sumR, sumG, sumB int
	apply(m, func(p img.Color) img.Color {
		sumR += int(p.R)
		sumG += int(p.G)
		sumB += int(p.B)
		return p
	})
	totalPixels := float64(m.Width() * m.Height())
	meanR := math.Floor(float64(sumR) / totalPixels)
	meanG := math.Floor(float64(sumG) / totalPixels)
	meanB := math.Floor(float64(sumB) / totalPixels)

	apply(m, func(p img.Color) img.Color {
		return img.Color{
			R: utils.Clamp(float64(p.R)*factor + (1-factor)*meanR),
			G: utils.Clamp(float64(p.G)*factor + (1-factor)*meanG),
			B: utils.Clamp(float64(p.B)*factor + (1-factor)*meanB),
		}
	})
}

// Keeps a single channel of the image, zeroing the other two.
// channel can one of (`red`, `green`, and `blue`)
func Channel(m *img.Image, channel string) error {
	var keep func(p img.Color) img.Color

	switch channel {
	case "red":
		keep = func(p img.Color) img.Color { return img.Color{R: p.R} }
	case "green":
		keep = func(p img.Color) img.Color { return img.Color{G: p.G} }
	case "blue":
		keep = func(p img.Color) img.Color { return img.Color{B: p.B} }
	default:
		return errors.New("invalid color channel: only red, green, and blue are supported")
	}

	apply(m, keep)
	return nil
}
