package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of ~/.postline/config.yaml.
type FileConfig struct {
	Fetch struct {
		UserAgent string `yaml:"user_agent"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"fetch"`
	Output struct {
		IncludeTitle *bool `yaml:"include_title"`
	} `yaml:"output"`
	Sites struct {
		Feeds *bool `yaml:"feeds"`
	} `yaml:"sites"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// ApplyTo copies every value present in the file onto settings. Values that
// fail validation are skipped and returned as errors.
func (f *FileConfig) ApplyTo(settings *Settings) []error {
	values := map[string]string{}
	if f.Fetch.UserAgent != "" {
		values[KeyUserAgent] = f.Fetch.UserAgent
	}
	if f.Fetch.Timeout != "" {
		values[KeyTimeout] = f.Fetch.Timeout
	}
	if f.Output.IncludeTitle != nil {
		values[KeyIncludeTitle] = strconv.FormatBool(*f.Output.IncludeTitle)
	}
	if f.Sites.Feeds != nil {
		values[KeyFeeds] = strconv.FormatBool(*f.Sites.Feeds)
	}
	if f.Logging.Level != "" {
		values[KeyLogLevel] = f.Logging.Level
	}

	var errs []error
	for _, key := range Keys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := settings.Set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("config file: %s: %w", key, err))
		}
	}

	return errs
}
