// pattern package draws images from per-channel arithmetic expressions.
//
// Each channel is an expression over the variables x, y, width and height,
// evaluated once per pixel, e.g. "x * 255 / (width - 1)" for a horizontal
// ramp. Results are clipped to [0, 255]; boolean results map to 0 and 255.
package pattern

import (
	"fmt"
	"math"

	"github.com/knetic/govaluate"

	"github.com/jiocb86/cpp-image-converter/internal/img"
	"github.com/jiocb86/cpp-image-converter/internal/utils"
)

// Expr holds one expression per channel. Empty expressions evaluate to 0.
type Expr struct {
	Red   string `yaml:"red"`
	Green string `yaml:"green"`
	Blue  string `yaml:"blue"`
}

var variables = map[string]bool{"x": true, "y": true, "width": true, "height": true}

// Functions usable inside expressions
func functions() map[string]govaluate.ExpressionFunction {
	unary := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
			}
			v, ok := args[0].(float64)
			if !ok {
				return nil, fmt.Errorf("%s: argument must be numeric", name)
			}
			return f(v), nil
		}
	}
	binary := func(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
			}
			a, ok1 := args[0].(float64)
			b, ok2 := args[1].(float64)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%s: arguments must be numeric", name)
			}
			return f(a, b), nil
		}
	}

	return map[string]govaluate.ExpressionFunction{
		"abs":   unary("abs", math.Abs),
		"sqrt":  unary("sqrt", math.Sqrt),
		"sin":   unary("sin", math.Sin),
		"cos":   unary("cos", math.Cos),
		"floor": unary("floor", math.Floor),
		"min":   binary("min", math.Min),
		"max":   binary("max", math.Max),
		"hypot": binary("hypot", math.Hypot),
	}
}

// pixel implements govaluate.Parameters without a map per evaluation
type pixel struct {
	x, y, width, height float64
}

func (p *pixel) Get(name string) (interface{}, error) {
	switch name {
	case "x":
		return p.x, nil
	case "y":
		return p.y, nil
	case "width":
		return p.width, nil
	case "height":
		return p.height, nil
	}
	return nil, fmt.Errorf("unknown variable %q", name)
}

type channel struct {
	name string
	expr *govaluate.EvaluableExpression
}

func compile(name, src string) (channel, error) {
	if src == "" {
		return channel{name: name}, nil
	}

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, functions())
	if err != nil {
		return channel{}, fmt.Errorf("%s expression %q: %w", name, src, err)
	}
	for _, v := range expr.Vars() {
		if !variables[v] {
			return channel{}, fmt.Errorf("%s expression %q: unknown variable %q (use x, y, width, height)", name, src, v)
		}
	}
	return channel{name: name, expr: expr}, nil
}

func (c channel) eval(p *pixel) (byte, error) {
	if c.expr == nil {
		return 0, nil
	}

	v, err := c.expr.Eval(p)
	if err != nil {
		return 0, fmt.Errorf("%s at (%v,%v): %w", c.name, p.x, p.y, err)
	}
	switch v := v.(type) {
	case float64:
		return utils.Clamp(v), nil
	case bool:
		if v {
			return 255, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%s at (%v,%v): expression produced %T, want a number", c.name, p.x, p.y, v)
}

// Checks that every expression parses and only uses known variables
func (e Expr) Validate() error {
	for _, c := range [][2]string{{"red", e.Red}, {"green", e.Green}, {"blue", e.Blue}} {
		if _, err := compile(c[0], c[1]); err != nil {
			return err
		}
	}
	return nil
}

// Draws a width x height image from the expressions in e
func Generate(width, height int, e Expr) (*img.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid size: %dx%d", width, height)
	}

	var chans [3]channel
	for i, c := range [][2]string{{"red", e.Red}, {"green", e.Green}, {"blue", e.Blue}} {
		ch, err := compile(c[0], c[1])
		if err != nil {
			return nil, err
		}
		chans[i] = ch
	}

	m := img.New(width, height, img.Black)
	p := pixel{width: float64(width), height: float64(height)}
	for y := range height {
		row := m.Row(y)
		p.y = float64(y)
		for x := range row {
			p.x = float64(x)

			var rgb [3]byte
			for i, ch := range chans {
				v, err := ch.eval(&p)
				if err != nil {
					return nil, err
				}
				rgb[i] = v
			}
			row[x] = img.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		}
	}
	return m, nil
}
