package adjustments

import (
	"testing"

	"github.com/jiocb86/cpp-image-converter/internal/img"
)

// 3x2 image with a distinct value in every pixel:
//
//	0 1 2
//	3 4 5
func grid() *img.Image {
	m := img.New(3, 2, img.Black)
	for y := range 2 {
		for x := range 3 {
			v := byte(y*3 + x)
			m.Set(x, y, img.Color{R: v, G: v, B: v})
		}
	}
	return m
}

func values(m *img.Image) [][]byte {
	out := make([][]byte, m.Height())
	for y := range m.Height() {
		for _, c := range m.Row(y) {
			out[y] = append(out[y], c.R)
		}
	}
	return out
}

func equal(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}

func TestCrop(t *testing.T) {
	m := grid()
	c, err := Crop(m, 1, 0, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]byte{{1, 2}, {4, 5}}; !equal(values(c), want) {
		t.Errorf("Crop = %v, want %v", values(c), want)
	}

	// The crop is a copy
	c.Set(0, 0, img.White)
	if m.At(1, 0) == img.White {
		t.Error("crop shares pixels with the source")
	}

	bad := [][4]int{{-1, 0, 1, 1}, {0, 0, 0, 1}, {2, 0, 2, 1}, {0, 1, 1, 2}}
	for _, b := range bad {
		if _, err := Crop(m, b[0], b[1], b[2], b[3]); err == nil {
			t.Errorf("Crop(%v) accepted", b)
		}
	}
}

func TestFlip(t *testing.T) {
	if got, want := values(FlipHorizontal(grid())), [][]byte{{2, 1, 0}, {5, 4, 3}}; !equal(got, want) {
		t.Errorf("FlipHorizontal = %v, want %v", got, want)
	}
	if got, want := values(FlipVertical(grid())), [][]byte{{3, 4, 5}, {0, 1, 2}}; !equal(got, want) {
		t.Errorf("FlipVertical = %v, want %v", got, want)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		degrees int
		want    [][]byte
	}{
		{0, [][]byte{{0, 1, 2}, {3, 4, 5}}},
		{90, [][]byte{{2, 5}, {1, 4}, {0, 3}}},
		{180, [][]byte{{5, 4, 3}, {2, 1, 0}}},
		{270, [][]byte{{3, 0}, {4, 1}, {5, 2}}},
		{-90, [][]byte{{3, 0}, {4, 1}, {5, 2}}},
	}
	for _, tt := range tests {
		r, err := Rotate(grid(), tt.degrees)
		if err != nil {
			t.Fatal(err)
		}
		if got := values(r); !equal(got, tt.want) {
			t.Errorf("Rotate(%d) = %v, want %v", tt.degrees, got, tt.want)
		}
	}

	if _, err := Rotate(grid(), 45); err == nil {
		t.Error("Rotate(45) accepted")
	}
}

func TestResize(t *testing.T) {
	m := img.New(2, 2, img.Red)
	r, err := Resize(m, 4, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Width() != 4 || r.Height() != 4 {
		t.Fatalf("Resize = %dx%d, want 4x4", r.Width(), r.Height())
	}
	for y := range 4 {
		for x := range 4 {
			if r.At(x, y) != img.Red {
				t.Fatalf("pixel (%d,%d) = %v", x, y, r.At(x, y))
			}
		}
	}

	if _, err := Resize(m, 0, 0, true); err == nil {
		t.Error("Resize(0, 0) accepted")
	}
	if _, err := Resize(img.New(0, 0, img.Black), 2, 2, true); err == nil {
		t.Error("resizing an empty image accepted")
	}
}

func TestBlur(t *testing.T) {
	m := img.New(5, 5, img.Color{R: 80, G: 160, B: 240})
	b, err := Blur(m, 1.5)
	if err != nil {
		t.Fatal(err)
	}

	// A flat image stays flat
	near := func(a, b byte) bool { return a-b <= 1 || b-a <= 1 }
	for y := range 5 {
		for x := range 5 {
			c := b.At(x, y)
			if !near(c.R, 80) || !near(c.G, 160) || !near(c.B, 240) {
				t.Fatalf("pixel (%d,%d) = %v", x, y, c)
			}
		}
	}

	if _, err := Blur(m, 0); err == nil {
		t.Error("Blur(0) accepted")
	}
}
