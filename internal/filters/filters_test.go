package filters

import (
	"testing"

	"github.com/jiocb86/cpp-image-converter/internal/img"
)

func single(c img.Color) *img.Image {
	return img.New(1, 1, c)
}

func TestInvert(t *testing.T) {
	m := single(img.Color{R: 0, G: 100, B: 255})
	Invert(m)
	if got := m.At(0, 0); got != (img.Color{R: 255, G: 155, B: 0}) {
		t.Errorf("Invert = %v", got)
	}
}

func TestGrayscale(t *testing.T) {
	m := single(img.Color{R: 30, G: 60, B: 91})
	Grayscale(m)
	if got := m.At(0, 0); got != (img.Color{R: 60, G: 60, B: 60}) {
		t.Errorf("Grayscale = %v", got)
	}

	m = single(img.Color{R: 255, G: 0, B: 0})
	GrayscaleLuma(m)
	if got := m.At(0, 0); got != (img.Color{R: 76, G: 76, B: 76}) {
		t.Errorf("GrayscaleLuma = %v", got)
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		method string
		factor float64
		want   img.Color
	}{
		{"add", 50, img.Color{R: 150, G: 250, B: 255}},
		{"add", -120, img.Color{R: 0, G: 80, B: 130}},
		{"multiply", 2, img.Color{R: 200, G: 255, B: 255}},
		{"multiply", 0.5, img.Color{R: 50, G: 100, B: 125}},
	}
	for _, tt := range tests {
		m := single(img.Color{R: 100, G: 200, B: 250})
		if err := Brightness(m, tt.factor, tt.method); err != nil {
			t.Fatal(err)
		}
		if got := m.At(0, 0); got != tt.want {
			t.Errorf("Brightness(%v, %s) = %v, want %v", tt.factor, tt.method, got, tt.want)
		}
	}

	if err := Brightness(single(img.Black), 1, "divide"); err == nil {
		t.Error("unknown method accepted")
	}
}

func TestContrast(t *testing.T) {
	m := img.New(2, 1, img.Black)
	m.Set(0, 0, img.Color{R: 100, G: 100, B: 100})
	m.Set(1, 0, img.Color{R: 200, G: 200, B: 200})

	// Mean is 150, doubling the contrast moves each pixel twice as far from it
	Contrast(m, 2)
	if m.At(0, 0) != (img.Color{R: 50, G: 50, B: 50}) || m.At(1, 0) != (img.Color{R: 250, G: 250, B: 250}) {
		t.Errorf("Contrast = %v %v", m.At(0, 0), m.At(1, 0))
	}

	// No pixels, nothing to divide by
	Contrast(img.New(0, 0, img.Black), 2)
}

func TestChannel(t *testing.T) {
	src := img.Color{R: 1, G: 2, B: 3}
	for channel, want := range map[string]img.Color{
		"red":   {R: 1},
		"green": {G: 2},
		"blue":  {B: 3},
	} {
		m := single(src)
		if err := Channel(m, channel); err != nil {
			t.Fatal(err)
		}
		if got := m.At(0, 0); got != want {
			t.Errorf("Channel(%s) = %v, want %v", channel, got, want)
		}
	}

	m := single(src)
	if err := Channel(m, "alpha"); err == nil {
		t.Error("unknown channel accepted")
	}
	if m.At(0, 0) != src {
		t.Error("rejected channel still modified the image")
	}
}

func TestZeroWidthImage(t *testing.T) {
	m := img.New(0, 4, img.Red)
	Invert(m)
	Grayscale(m)
	GrayscaleLuma(m)
	Contrast(m, 2)
	if err := Brightness(m, 10, "add"); err != nil {
		t.Errorf("Brightness: %v", err)
	}
	if err := Channel(m, "green"); err != nil {
		t.Errorf("Channel: %v", err)
	}
	if m.Width() != 0 || m.Height() != 4 {
		t.Errorf("got %dx%d", m.Width(), m.Height())
	}
}
