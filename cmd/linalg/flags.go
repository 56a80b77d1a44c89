package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the persistent flags. They override the config file
// only when set explicitly.
type globalFlags struct {
	configPath  string
	executor    string
	device      int
	workers     int
	minChunk    int
	memoryLimit string
	precision   string
	index       string
	logLevel    string
	logEvents   []string
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	def := defaultConfig()
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.StringVar(&f.executor, "executor", def.Executor, "executor kind: reference, cpu or webgpu")
	fs.IntVar(&f.device, "device", def.Device, "WebGPU device index")
	fs.IntVar(&f.workers, "workers", def.Workers, "CPU worker goroutines")
	fs.IntVar(&f.minChunk, "min-chunk", def.MinChunk, "minimum rows per CPU worker")
	fs.StringVar(&f.memoryLimit, "memory-limit", def.MemoryLimit, "executor memory cap, e.g. 512MiB (empty for none)")
	fs.StringVar(&f.precision, "precision", def.Precision, "value type: float32, float64, complex64 or complex128")
	fs.StringVar(&f.index, "index", def.Index, "index type: int32 or int64")
	fs.StringVar(&f.logLevel, "log-level", def.Log.Level, "log level")
	fs.StringSliceVar(&f.logEvents, "log-events", nil, "executor events to log, e.g. copy,operation or all")
}

// resolve loads the config file, if any, and applies the flags that were
// set on the command line.
func (f *globalFlags) resolve(cmd *cobra.Command) (config, error) {
	cfg := defaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = loadConfig(f.configPath); err != nil {
			return cfg, err
		}
	}

	fs := cmd.Flags()
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "executor":
			cfg.Executor = f.executor
		case "device":
			cfg.Device = f.device
		case "workers":
			cfg.Workers = f.workers
		case "min-chunk":
			cfg.MinChunk = f.minChunk
		case "memory-limit":
			cfg.MemoryLimit = f.memoryLimit
		case "precision":
			cfg.Precision = f.precision
		case "index":
			cfg.Index = f.index
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-events":
			cfg.Log.Events = f.logEvents
		}
	})
	return cfg, cfg.validate()
}
