package pattern

import (
	"strings"
	"testing"

	"github.com/jiocb86/cpp-image-converter/internal/img"
)

func TestGenerate(t *testing.T) {
	m, err := Generate(4, 3, Expr{
		Red:   "x * 255 / (width - 1)",
		Green: "y * 100",
		Blue:  "(x + y) % 2 == 0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Width() != 4 || m.Height() != 3 {
		t.Fatalf("size = %dx%d", m.Width(), m.Height())
	}

	tests := []struct {
		x, y int
		want img.Color
	}{
		{0, 0, img.Color{R: 0, G: 0, B: 255}},
		{3, 0, img.Color{R: 255, G: 0, B: 0}},
		{1, 1, img.Color{R: 85, G: 100, B: 255}},
		{2, 2, img.Color{R: 170, G: 200, B: 255}},
		{3, 2, img.Color{R: 255, G: 200, B: 0}},
	}
	for _, tt := range tests {
		if got := m.At(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGenerateClipsAndFunctions(t *testing.T) {
	m, err := Generate(2, 2, Expr{
		Red:   "x * 1000",
		Green: "-50 + y",
		Blue:  "max(abs(x - 1), 0) * 77 + min(sqrt(16), 2)",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.At(1, 1); got != (img.Color{R: 255, G: 0, B: 2}) {
		t.Errorf("(1,1) = %v", got)
	}
	if got := m.At(0, 0); got != (img.Color{R: 0, G: 0, B: 79}) {
		t.Errorf("(0,0) = %v", got)
	}
}

func TestEmptyExpressionsAreBlack(t *testing.T) {
	m, err := Generate(2, 1, Expr{})
	if err != nil {
		t.Fatal(err)
	}
	if m.At(1, 0) != img.Black {
		t.Errorf("got %v", m.At(1, 0))
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		e    Expr
		want string
	}{
		{"zero size", 0, 2, Expr{}, "invalid size"},
		{"syntax", 2, 2, Expr{Red: "x +* 2"}, "red expression"},
		{"unknown variable", 2, 2, Expr{Green: "z * 2"}, "unknown variable"},
		{"string result", 2, 2, Expr{Blue: "'abc'"}, "want a number"},
		{"bad arity", 2, 2, Expr{Red: "min(x)"}, "expects 2 arguments"},
	}
	for _, tt := range tests {
		_, err := Generate(tt.w, tt.h, tt.e)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want it to mention %q", tt.name, err, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Expr{Red: "x", Green: "sin(y) * 255", Blue: "width - height"}).Validate(); err != nil {
		t.Errorf("valid expressions rejected: %v", err)
	}
	if err := (Expr{Blue: "speed * 2"}).Validate(); err == nil {
		t.Error("unknown variable accepted")
	}
}
