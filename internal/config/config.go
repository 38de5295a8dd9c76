/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erwanjouan/proc-io/pkg/metrics"
	"gopkg.in/yaml.v3"
)

// Config represents application configuration.
type Config struct {
	SamplingInterval time.Duration `yaml:"interval"` // Interval between sampling cycles
	Metric           string        `yaml:"metric"`   // Counter used to rank processes
	TopN             int           `yaml:"top"`      // Number of processes per report
	OutputPath       string        `yaml:"output"`   // Report file path (empty = console)
	Format           string        `yaml:"format"`   // Report format: text or csv
	RateMode         bool          `yaml:"rate"`     // Print human readable rates instead of raw deltas
	Workers          int           `yaml:"workers"`  // Concurrent counter readers
	ProcRoot         string        `yaml:"proc_root"`
	ListenAddr       string        `yaml:"listen"` // Status API address (empty = disabled)

	// Logging
	LogLevel string `yaml:"log_level"` // Log level: debug, info, warn, error
	LogFile  string `yaml:"log_file"`  // Log file path (empty = stderr)

	// Timezone
	Timezone string `yaml:"timezone"` // Timezone location (e.g., "Europe/Paris", "Local")
}

// Default configuration values.
const (
	DefaultSamplingInterval = 10 * time.Second
	DefaultMetric           = metrics.ReadBytes
	DefaultTopN             = 10
	DefaultFormat           = FormatText
	DefaultWorkers          = 1
	DefaultProcRoot         = "/proc"
	DefaultLogLevel         = "info"
	DefaultTimezone         = "Local"

	// AutoOutputPath selects a generated, timestamped report file name.
	AutoOutputPath = "auto"

	MaxWorkers = 64
)

// Report formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
)

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		SamplingInterval: DefaultSamplingInterval,
		Metric:           DefaultMetric,
		TopN:             DefaultTopN,
		Format:           DefaultFormat,
		Workers:          DefaultWorkers,
		ProcRoot:         DefaultProcRoot,
		LogLevel:         DefaultLogLevel,
		Timezone:         DefaultTimezone,
	}
}

// GetDefaultOutputPath generates default output path: <hostname>_<YYYYMMDD-HHMMSS>.log
func GetDefaultOutputPath(now time.Time) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	// Clean hostname (remove invalid filename characters)
	hostname = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			return '_'
		}
		return r
	}, hostname)

	ext := ".log"
	return fmt.Sprintf("%s_%s%s", hostname, now.Format("20060102-150405"), ext)
}

// LoadFile overlays the YAML file at path onto cfg.
// Keys missing from the file leave the existing values untouched.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SamplingInterval < 1*time.Second {
		return errors.New("sampling interval must be at least 1 second")
	}

	if c.SamplingInterval > 1*time.Hour {
		return errors.New("sampling interval must not exceed 1 hour")
	}

	if err := metrics.ValidateMetric(c.Metric); err != nil {
		return err
	}

	if c.TopN < 1 {
		return errors.New("top count must be at least 1")
	}

	if c.Format != FormatText && c.Format != FormatCSV {
		return fmt.Errorf("invalid format: %s (must be %s or %s)", c.Format, FormatText, FormatCSV)
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	}

	if c.ProcRoot == "" {
		return errors.New("proc root cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Validate Timezone
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %s (%w)", c.Timezone, err)
		}
	}

	if c.OutputPath != "" {
		if err := c.ensureOutputDir(); err != nil {
			return fmt.Errorf("output directory check failed: %w", err)
		}
	}

	return nil
}

// ensureOutputDir checks if the output directory exists.
func (c *Config) ensureOutputDir() error {
	dir := filepath.Dir(c.OutputPath)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// OutputName returns a printable name for the report destination.
func (c *Config) OutputName() string {
	if c.OutputPath == "" {
		return "stdout"
	}
	return c.OutputPath
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Interval=%v, Metric=%s, Top=%d, Output=%s, Format=%s, Rate=%t, Workers=%d}, Timezone=%s",
		c.SamplingInterval, c.Metric, c.TopN, c.OutputName(), c.Format, c.RateMode, c.Workers, c.Timezone)
}
