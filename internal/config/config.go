package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dati-mipt/plotexp"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PLOTEXP"

// Config is shared by both command line tools.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Waterfall WaterfallConfig `yaml:"waterfall" envconfig:"WATERFALL"`
	OMNI      OMNIConfig      `yaml:"omni" envconfig:"OMNI"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// WaterfallConfig configures the transaction waterfall tool.
type WaterfallConfig struct {
	Source  string        `yaml:"source" envconfig:"SOURCE" validate:"oneof=builtin csv mysql"`
	Input   string        `yaml:"input" envconfig:"INPUT" validate:"required_if=Source csv"`
	DSN     string        `yaml:"dsn" envconfig:"DSN" validate:"required_if=Source mysql"`
	Limit   int           `yaml:"limit" envconfig:"LIMIT" validate:"gte=0"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	Output  string        `yaml:"output" envconfig:"OUTPUT" validate:"required"`
	Title   string        `yaml:"title" envconfig:"TITLE"`
	DPI     int           `yaml:"dpi" envconfig:"DPI" validate:"gte=36,lte=1200"`
}

// OMNIConfig configures the OMNI2 time series tool.
type OMNIConfig struct {
	Input    string `yaml:"input" envconfig:"INPUT" validate:"required"`
	OutDir   string `yaml:"out_dir" envconfig:"OUT_DIR" validate:"required_if=PNG true"`
	MaskFill bool   `yaml:"mask_fill" envconfig:"MASK_FILL"`
	Show     bool   `yaml:"show" envconfig:"SHOW"`
	PNG      bool   `yaml:"png" envconfig:"PNG"`
	Export   string `yaml:"export" envconfig:"EXPORT"`
	Title    string `yaml:"title" envconfig:"TITLE"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Waterfall: WaterfallConfig{
			Source:  "builtin",
			Limit:   0,
			Timeout: 30 * time.Second,
			Output:  "waterfall.png",
			Title:   "transaction waterfall",
			DPI:     200,
		},
		OMNI: OMNIConfig{
			Input:  plotexp.DefaultDat,
			OutDir: ".",
			Show:   true,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then PLOTEXP_* environment variables.
func Load(path string) (*Config, error) {
	var cfg = Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config from env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. Call it again after applying flags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}
