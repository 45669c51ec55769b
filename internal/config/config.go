package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/telemetry"
)

// FileName is the config file looked up by default in the working directory.
const FileName = "banketl.yaml"

// Config represents the top-level banketl.yaml configuration.
type Config struct {
	Source    SourceConfig     `yaml:"source"`
	Rates     RatesConfig      `yaml:"rates"`
	Output    OutputConfig     `yaml:"output"`
	Database  DatabaseConfig   `yaml:"database"`
	Log       LogConfig        `yaml:"log"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Queries   []string         `yaml:"queries,omitempty"`
}

// SourceConfig locates the page holding the bank table.
type SourceConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// RatesConfig locates the exchange-rate reference file.
type RatesConfig struct {
	Path     string `yaml:"path"`
	Rounding string `yaml:"rounding"` // "half_even" or "half_up"
}

// OutputConfig controls the CSV sink.
type OutputConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// DatabaseConfig controls the SQLite sink.
type DatabaseConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

// LogConfig controls the progress log.
type LogConfig struct {
	Path string `yaml:"path"`
}

// Default returns the stock configuration: every file in the working directory.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks",
			Timeout:   30 * time.Second,
			UserAgent: "banketl/1.0",
		},
		Rates: RatesConfig{
			Path:     "exchange_rate.csv",
			Rounding: "half_even",
		},
		Output: OutputConfig{
			CSVPath: "Largest_banks_data.csv",
		},
		Database: DatabaseConfig{
			Path:  "Banks.db",
			Table: "Largest_banks",
		},
		Log: LogConfig{
			Path: "code_log.txt",
		},
		Telemetry: telemetry.Config{
			ServiceName: "banketl",
		},
		Queries: []string{
			"SELECT * FROM Largest_banks",
			"SELECT AVG(MC_GBP_Billion) FROM Largest_banks",
			"SELECT Name from Largest_banks LIMIT 5",
		},
	}
}

// Load reads a banketl.yaml file from disk. Keys missing from the file take
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w: %w", model.ErrConfig, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w: %w", path, model.ErrConfig, err)
	}
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
