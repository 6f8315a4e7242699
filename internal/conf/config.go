// config.go: This file contains the configuration for artid. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings contains all configuration options for artid.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this catalog instance
		Log  LogConfig // logging configuration
	}

	Database DatabaseSettings // catalog database connection

	Paths PathSettings // data, model and log directories

	Model ModelSettings // recognition pipeline placeholders

	Processing ProcessingSettings // image processing parameters

	Sentry SentrySettings // opt-in error reporting
}

// LogConfig defines the configuration for the application log
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Console    bool   // true to log human readable output to stderr
	File       bool   // true to write rotated JSON logs
	Path       string // path to the log file
	MaxSize    int    // megabytes before rotation
	MaxBackups int    // rotated files to keep
	MaxAge     int    // days to keep rotated files
	Compress   bool   // gzip rotated files
}

// DatabaseSettings describes how to reach the catalog database. When URL is set
// it is used verbatim, otherwise a URL is composed from the individual fields.
type DatabaseSettings struct {
	URL      string // full connection URL, e.g. sqlite:///artwork_db.sqlite
	Driver   string // scheme used when composing a URL from fields
	Host     string
	Port     int
	Name     string
	User     string
	Password string

	Debug              bool          // log every SQL statement
	SlowQueryThreshold time.Duration // queries slower than this are logged as warnings
	ConnMaxIdleTime    time.Duration // idle pooled connections older than this are recycled
}

// SentrySettings configures opt-in error reporting. Nothing is sent unless
// Enabled is set and a DSN is configured.
type SentrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
	Debug       bool // log every event before it is sent
}

// PathSettings contains working directories
type PathSettings struct {
	DataDir          string
	RawDataDir       string
	ProcessedDataDir string
	AnnotationsDir   string
	ModelsDir        string
	LogsDir          string
}

// DetectionModel configures the artwork detector
type DetectionModel struct {
	ModelName           string
	ConfidenceThreshold float64
	NMSThreshold        float64
	MaxDetections       int
}

// FeatureExtractionModel configures the embedding model
type FeatureExtractionModel struct {
	ModelName    string
	BatchSize    int
	EmbeddingDim int
}

// MatchingSettings configures similarity search
type MatchingSettings struct {
	SimilarityThreshold float64
	TopK                int
	IndexType           string
	NProbe              int
}

// ModelSettings groups the recognition pipeline models
type ModelSettings struct {
	Detection         DetectionModel
	FeatureExtraction FeatureExtractionModel
	Matching          MatchingSettings
}

// ProcessingSettings configures image preprocessing
type ProcessingSettings struct {
	UseGPU      bool
	Device      string // cuda or cpu, derived from UseGPU when empty
	ImageWidth  int
	ImageHeight int
	BatchSize   int
	NumWorkers  int // 0 selects a value based on the host CPU
}

// settingsMutex serializes use of the global viper instance.
var settingsMutex sync.Mutex

// Load reads the configuration file and environment variables.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return nil, fmt.Errorf("error getting default config paths: %w", err)
	}

	return loadWith(viper.GetViper(), configPaths)
}

// loadWith populates a Settings from v, searching configPaths for config.yaml.
// A missing config file is not an error: defaults and environment apply.
func loadWith(v *viper.Viper, configPaths []string) (*Settings, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	setDefaultConfig(v)

	if err := configureEnvironmentVariables(v); err != nil {
		GetLogger().Warn("environment configuration issues", "error", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("fatal error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settings.Processing.applyDerived()

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// applyDerived fills values computed from other settings
func (p *ProcessingSettings) applyDerived() {
	if p.Device == "" {
		if p.UseGPU {
			p.Device = "cuda"
		} else {
			p.Device = "cpu"
		}
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = defaultWorkerCount()
	}
}

// WriteDefaultConfig writes the embedded default configuration to configPath.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return nil
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// embedded at build time, cannot be missing
		panic(fmt.Sprintf("error reading embedded config file: %v", err))
	}
	return string(data)
}

// Redacted returns a copy of the settings with secrets masked, safe to print or log.
func (s *Settings) Redacted() Settings {
	c := *s
	if c.Database.Password != "" {
		c.Database.Password = "xxxxx"
	}
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err == nil {
			c.Database.URL = u.Redacted()
		}
	}
	if c.Sentry.DSN != "" {
		if u, err := url.Parse(c.Sentry.DSN); err == nil && u.User != nil {
			u.User = url.User("xxxxx")
			c.Sentry.DSN = u.String()
		}
	}
	return c
}

// SaveYAMLConfig writes settings to configPath as YAML.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write through a temporary file so readers never see a partial config
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// cross-device rename, fall back to copy & delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
