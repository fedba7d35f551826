package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// ViewConfig holds options recognized by the book view.
	ViewConfig struct {
		FontFamily       string  `yaml:"font_family" validate:"required"`
		FontSize         float64 `yaml:"font_size" validate:"gt=0"`
		CodeFontFamily   string  `yaml:"code_font_family" validate:"required"`
		CodeFontSize     float64 `yaml:"code_font_size" validate:"gt=0"`
		OpenKey          string  `yaml:"open_key" validate:"required"`
		DoubleParagraphs bool    `yaml:"double_paragraphs"`
		Light            bool    `yaml:"light"`
		BaseWidth        float64 `yaml:"base_width" validate:"gt=0"`
	}

	ViewportConfig struct {
		Width  int `yaml:"width" validate:"min=100"`
		Height int `yaml:"height" validate:"min=100"`
	}

	LayoutConfig struct {
		Breakpoint         float64        `yaml:"two_pages_breakpoint" validate:"gt=0"`
		PageHeightCap      float64        `yaml:"page_height_cap" validate:"gt=0"`
		PageHeightFraction float64        `yaml:"page_height_fraction" validate:"gt=0,lte=1"`
		Viewport           ViewportConfig `yaml:"viewport"`
	}

	SpringConfig struct {
		DampingRatio float64 `yaml:"damping_ratio" validate:"gt=0"`
		Period       float64 `yaml:"period" validate:"gt=0"`
	}

	AnimationConfig struct {
		Open      SpringConfig `yaml:"open"`
		Position  SpringConfig `yaml:"position"`
		FrameRate int          `yaml:"frame_rate" validate:"min=1,max=240"`
	}

	HyphenationConfig struct {
		Enable       bool   `yaml:"enable"`
		Language     string `yaml:"language" validate:"required_if=Enable true"`
		PatternsPath string `yaml:"patterns" sanitize:"assure_file_access"`
	}

	SessionConfig struct {
		Path string `yaml:"path"`
	}

	ExportConfig struct {
		Format                ExportFmt `yaml:"format" validate:"gte=0"`
		OutputNameTemplate    string    `yaml:"output_name_template"`
		FileNameTransliterate bool      `yaml:"file_name_transliterate"`
		Dpi                   int       `yaml:"dpi" validate:"min=0,max=2400"`
		JpegQuality           int       `yaml:"jpeg_quality" validate:"min=1,max=100"`
		Grayscale             bool      `yaml:"grayscale"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		View        ViewConfig        `yaml:"view"`
		Layout      LayoutConfig      `yaml:"layout"`
		Animation   AnimationConfig   `yaml:"animation"`
		Hyphenation HyphenationConfig `yaml:"hyphenation"`
		Session     SessionConfig     `yaml:"session"`
		Export      ExportConfig      `yaml:"export"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// PageHeight returns page height for viewport of given height.
func (c *LayoutConfig) PageHeight(viewportHeight float64) float64 {
	return min(c.PageHeightCap, viewportHeight*c.PageHeightFraction)
}
