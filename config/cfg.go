package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pdg/layout"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TOCConfig struct {
		Enable bool   `yaml:"enable"`
		Title  string `yaml:"title" validate:"required_unless=Enable false"`
	}

	FooterConfig struct {
		Enable         bool    `yaml:"enable"`
		HeightMm       float64 `yaml:"height_mm" validate:"gte=0,lte=50"`
		ShowPageNumber bool    `yaml:"show_page_number"`
		Text           string  `yaml:"text"`
	}

	FontsConfig struct {
		Family              string `yaml:"family"`
		Dir                 string `yaml:"dir" sanitize:"path_clean"`
		HyphenationPatterns string `yaml:"hyphenation_patterns" sanitize:"path_clean"`
	}

	DocumentConfig struct {
		Paper        string       `yaml:"paper" validate:"oneof=a4 a5 letter"`
		MarginsMm    float64      `yaml:"margins_mm" validate:"gte=5,lte=60"`
		BaseFontSize float64      `yaml:"base_font_size" validate:"gte=6,lte=24"`
		Bookmarks    bool         `yaml:"bookmarks"`
		TOC          TOCConfig    `yaml:"toc"`
		Footer       FooterConfig `yaml:"footer"`
		Fonts        FontsConfig  `yaml:"fonts"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// PaperSize maps the configured paper name to page dimensions.
func (c *DocumentConfig) PaperSize() layout.Size {
	switch c.Paper {
	case "a5":
		return layout.A5
	case "letter":
		return layout.Letter
	default:
		return layout.A4
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
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
// superimposes its values on top of the expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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

	// overwrite cfg values with values from the file
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

// Prepare generates configuration file from template and returns it as a
// byte slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump serializes the effective configuration back to YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
