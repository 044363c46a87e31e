package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"os"
	"slices"

	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	DocumentConfig struct {
		FixZip                bool    `yaml:"fix_zip"`
		FontFamily            string  `yaml:"default_font_family"`
		FontSizePt            float64 `yaml:"default_font_size_pt"`
		OutputNameTemplate    string  `yaml:"output_name_template"`
		FileNameTransliterate bool    `yaml:"file_name_transliterate"`
	}

	ServerConfig struct {
		Address       string `yaml:"address"`
		ConverterPath string `yaml:"converter_path"`
		UploadLimitMB int64  `yaml:"upload_limit_mb"`
	}

	Config struct {
		Version   int            `yaml:"version"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
		Server    ServerConfig   `yaml:"server"`
	}
)

// FontSizeHalfPoints returns the configured default font size in the
// half-point units runs are sized in, 0 when unconfigured.
func (d *DocumentConfig) FontSizeHalfPoints() int {
	if d.FontSizePt <= 0 {
		return 0
	}
	return int(math.Round(d.FontSizePt * 2))
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported configuration version: %d", cfg.Version)
	}
	if cfg.Document.FontSizePt < 0 {
		return fmt.Errorf("default_font_size_pt cannot be negative: %g", cfg.Document.FontSizePt)
	}
	for _, l := range []*LoggerConfig{&cfg.Logging.ConsoleLogger, &cfg.Logging.FileLogger} {
		if !slices.Contains([]string{"", "none", "normal", "debug"}, l.Level) {
			return fmt.Errorf("unsupported logging level: %q", l.Level)
		}
		if !slices.Contains([]string{"", "append", "overwrite"}, l.Mode) {
			return fmt.Errorf("unsupported logging mode: %q", l.Mode)
		}
	}
	if cfg.Server.UploadLimitMB <= 0 {
		return fmt.Errorf("upload_limit_mb must be positive: %d", cfg.Server.UploadLimitMB)
	}
	return nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposing its values on top of the embedded defaults, and validates the
// result. Empty path means defaults only.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prepare returns the default configuration file contents for the dumpconfig
// command.
func Prepare() ([]byte, error) {
	return defaultConfig, nil
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
