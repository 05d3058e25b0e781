// config package loads the bmpconv settings file
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/jiocb86/cpp-image-converter/internal/pattern"
)

const DefaultPath = "bmpconv.yml"

// Generate holds the defaults of the gen command
type Generate struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	pattern.Expr `yaml:",inline"`
}

type Config struct {
	Verbose      bool     `yaml:"verbose"`
	Workers      int      `yaml:"workers"`        // Parallel conversions in batch mode
	JPEGQuality  int      `yaml:"jpeg_quality"`   // 1-100
	AllowTopDown bool     `yaml:"allow_top_down"` // Accept bitmaps with negative height
	OutputDir    string   `yaml:"output_dir"`     // Where batch conversions land, empty means next to the input
	Generate     Generate `yaml:"generate"`
}

// Returns the settings used when no file is present
func Default() Config {
	return Config{
		Workers:     4,
		JPEGQuality: 90,
		Generate: Generate{
			Width:  256,
			Height: 256,
			Expr: pattern.Expr{
				Red:   "x * 255 / (width - 1)",
				Green: "y * 255 / (height - 1)",
				Blue:  "128",
			},
		},
	}
}

// Reads the configuration file at path on top of Default(). A missing file
// is not an error; found reports whether one was read.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return Config{}, false, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return Config{}, true, fmt.Errorf("failed to parse configuration file '%s': %s", path, strings.Join(typeErr.Errors, "; "))
		}
		return Config{}, true, fmt.Errorf("failed to parse configuration file '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, true, fmt.Errorf("invalid configuration file '%s': %w", path, err)
	}
	return cfg, true, nil
}

// Checks value ranges and generator expressions
func (c *Config) Validate() error {
	var problems []string
	if c.Workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be at least 1 (got %d)", c.Workers))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		problems = append(problems, fmt.Sprintf("jpeg_quality must be within 1-100 (got %d)", c.JPEGQuality))
	}
	if c.Generate.Width <= 0 || c.Generate.Height <= 0 {
		problems = append(problems, fmt.Sprintf("generate size must be positive (got %dx%d)", c.Generate.Width, c.Generate.Height))
	}
	if err := c.Generate.Expr.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Serialises the configuration, e.g. to write out a starter file
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
