package main

import (
	"io"
	"os"
	"strings"

	"github.com/born-ml/linalg/exec"
	"github.com/born-ml/linalg/log"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// config is the merged result of the YAML file and the command line.
type config struct {
	Executor    string    `yaml:"executor"`
	Device      int       `yaml:"device"`
	Workers     int       `yaml:"workers"`
	MinChunk    int       `yaml:"min_chunk"`
	MemoryLimit string    `yaml:"memory_limit"`
	Precision   string    `yaml:"precision"`
	Index       string    `yaml:"index"`
	Log         logConfig `yaml:"log"`
}

type logConfig struct {
	Level  string   `yaml:"level"`
	Events []string `yaml:"events"`
}

func defaultConfig() config {
	par := exec.DefaultConfig().Parallel
	return config{
		Executor:  "cpu",
		Workers:   par.NumWorkers,
		MinChunk:  par.MinChunkSize,
		Precision: "float64",
		Index:     "int32",
		Log:       logConfig{Level: "warn"},
	}
}

// loadConfig decodes a YAML file over the defaults. Unknown keys are
// rejected.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config")
	}
	defer f.Close()
	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// validate checks the fields that are not checked when they are used.
func (c *config) validate() error {
	switch c.Precision {
	case "float32", "float64", "complex64", "complex128":
	default:
		return errors.Newf("unknown precision %q", c.Precision)
	}
	switch c.Index {
	case "int32", "int64":
	default:
		return errors.Newf("unknown index type %q", c.Index)
	}
	if c.Workers < 1 {
		return errors.Newf("workers must be positive, got %d", c.Workers)
	}
	if c.MinChunk < 1 {
		return errors.Newf("min_chunk must be positive, got %d", c.MinChunk)
	}
	if _, err := exec.ParseKind(c.Executor); err != nil {
		return err
	}
	return nil
}

// execConfig translates the file-level settings into an executor config.
func (c *config) execConfig() (exec.Config, error) {
	cfg := exec.DefaultConfig()
	cfg.Parallel.NumWorkers = c.Workers
	cfg.Parallel.MinChunkSize = c.MinChunk
	cfg.Parallel.Enabled = c.Workers > 1
	if c.MemoryLimit != "" {
		limit, err := humanize.ParseBytes(c.MemoryLimit)
		if err != nil {
			return cfg, errors.Wrapf(err, "memory_limit %q", c.MemoryLimit)
		}
		cfg.MemoryLimit = int64(limit)
	}
	return cfg, nil
}

// newLogger returns a console logger on w at the configured level.
func (c *config) newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "log level %q", c.Log.Level)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger(), nil
}

// newExecutor creates the configured executor and attaches an event stream
// when events were requested.
func (c *config) newExecutor(logger zerolog.Logger) (exec.Executor, error) {
	kind, err := exec.ParseKind(c.Executor)
	if err != nil {
		return nil, err
	}
	ecfg, err := c.execConfig()
	if err != nil {
		return nil, err
	}
	var e exec.Executor
	if kind == exec.KindWebGPU {
		e, err = exec.NewWebGPU(c.Device, nil, ecfg)
	} else {
		e, err = exec.New(kind, ecfg)
	}
	if err != nil {
		return nil, err
	}

	mask, err := log.ParseEventMask(c.Log.Events)
	if err != nil {
		return nil, err
	}
	if mask != 0 {
		stream := log.NewStream(logger, mask)
		e.Observers().AddLogger(stream)
		if m := e.Master(); m != e {
			m.Observers().AddLogger(stream)
		}
	}
	logger.Debug().
		Str("executor", e.String()).
		Int("workers", c.Workers).
		Str("memory_limit", c.MemoryLimit).
		Str("events", mask.String()).
		Msg("executor ready")
	return e, nil
}
