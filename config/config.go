// SPDX-License-Identifier: EPL-2.0

// Package config loads audsim settings from a YAML file, a .env file and
// AUDSIM_* environment variables, in that order of increasing priority.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ik5/audsim/hearingaid"
	"github.com/ik5/audsim/simulation"
	"github.com/ik5/audsim/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AUDSIM_"

// Backends understood by Config.Backend.
const (
	BackendMalgo = "malgo"
	BackendOto   = "oto"
	BackendNone  = "none"
)

// Trace exporters understood by Config.TraceExporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	SampleRate        int             `yaml:"sample_rate"`
	Channels          int             `yaml:"channels"`
	FramesPerBuffer   int             `yaml:"frames_per_buffer"`
	Backend           string          `yaml:"backend"`
	LevelSPL          float64         `yaml:"level_db_spl"`
	FullScaleSPL      float64         `yaml:"full_scale_db_spl"`
	Mode              simulation.Mode `yaml:"mode"`
	BRIR              string          `yaml:"brir"`
	LeftPrescription  string          `yaml:"left_prescription"`
	RightPrescription string          `yaml:"right_prescription"`
	AttackMs          float64         `yaml:"attack_ms"`
	ReleaseMs         float64         `yaml:"release_ms"`
	ChunkSize         int             `yaml:"chunk_size"`
	WindowSize        int             `yaml:"window_size"`
	TraceExporter     string          `yaml:"trace_exporter"`
	LogLevel          string          `yaml:"log_level"`
}

func Default() Config {
	return Config{
		SampleRate:      48000,
		Channels:        2,
		FramesPerBuffer: 512,
		Backend:         BackendMalgo,
		LevelSPL:        65,
		FullScaleSPL:    119,
		Mode:            simulation.None,
		AttackMs:        5,
		ReleaseMs:       50,
		ChunkSize:       1024,
		WindowSize:      256,
		TraceExporter:   ExporterNone,
		LogLevel:        "info",
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then the given .env files (".env" when none are named; missing
// files are skipped) and finally the process environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"SAMPLE_RATE":       &c.SampleRate,
		"CHANNELS":          &c.Channels,
		"FRAMES_PER_BUFFER": &c.FramesPerBuffer,
		"CHUNK_SIZE":        &c.ChunkSize,
		"WINDOW_SIZE":       &c.WindowSize,
	}
	floats := map[string]*float64{
		"LEVEL_DB_SPL":      &c.LevelSPL,
		"FULL_SCALE_DB_SPL": &c.FullScaleSPL,
		"ATTACK_MS":         &c.AttackMs,
		"RELEASE_MS":        &c.ReleaseMs,
	}
	strs := map[string]*string{
		"BACKEND":            &c.Backend,
		"BRIR":               &c.BRIR,
		"LEFT_PRESCRIPTION":  &c.LeftPrescription,
		"RIGHT_PRESCRIPTION": &c.RightPrescription,
		"TRACE_EXPORTER":     &c.TraceExporter,
		"LOG_LEVEL":          &c.LogLevel,
	}

	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s%s: %w", ErrInvalid, envPrefix, name, err)
			}
			*dst = n
		}
	}
	for name, dst := range floats {
		if v, ok := lookup(envPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %w", ErrInvalid, envPrefix, name, err)
			}
			*dst = f
		}
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(envPrefix + "MODE"); ok {
		m, err := simulation.ParseMode(v)
		if err != nil {
			return fmt.Errorf("%w: %sMODE: %w", ErrInvalid, envPrefix, err)
		}
		c.Mode = m
	}

	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate %d", ErrInvalid, c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrInvalid, c.Channels)
	case c.FramesPerBuffer <= 0:
		return fmt.Errorf("%w: frames_per_buffer %d", ErrInvalid, c.FramesPerBuffer)
	case c.AttackMs <= 0 || c.ReleaseMs <= 0:
		return fmt.Errorf("%w: attack_ms %v, release_ms %v", ErrInvalid, c.AttackMs, c.ReleaseMs)
	}

	if !utils.IsPowerOfTwo(c.ChunkSize) {
		return fmt.Errorf("%w: chunk_size: %w", ErrInvalid, hearingaid.ErrNotPowerOfTwo)
	}
	if !utils.IsPowerOfTwo(c.WindowSize) {
		return fmt.Errorf("%w: window_size: %w", ErrInvalid, hearingaid.ErrNotPowerOfTwo)
	}

	switch c.Backend {
	case BackendMalgo, BackendOto, BackendNone:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}

	switch c.TraceExporter {
	case "", ExporterNone, ExporterStdout:
	default:
		return fmt.Errorf("%w: trace_exporter %q", ErrInvalid, c.TraceExporter)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}

	if c.Mode.Spatialized() && c.Channels != 2 {
		return fmt.Errorf("%w: mode %s needs 2 channels", ErrInvalid, c.Mode)
	}

	return nil
}

// Level returns the ParseLevel result of LogLevel, defaulting to Info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}

	return lvl
}
