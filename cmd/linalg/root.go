package main

import (
	"fmt"

	"github.com/born-ml/linalg/exec"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// env is what every subcommand runs against.
type env struct {
	cfg    config
	logger zerolog.Logger
	exec   exec.Executor
	run    runner
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	e := &env{}

	root := &cobra.Command{
		Use:   "linalg",
		Short: "sparse and dense linear algebra on selectable executors",
		Long: `
  Reads Matrix Market files and runs products, conversions and transposes
  on the reference, CPU or WebGPU executor.
`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ex, err := cfg.newExecutor(logger)
			if err != nil {
				return err
			}
			run, err := newRunner(cfg.Precision, cfg.Index, ex, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			*e = env{cfg: cfg, logger: logger, exec: ex, run: run}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.exec == nil {
				return nil
			}
			if c, ok := e.exec.(interface{ Close() }); ok {
				defer c.Close()
			}
			stats := e.exec.MemoryStats()
			e.logger.Debug().
				Int64("peak_bytes", stats.PeakBytes).
				Int64("allocations", stats.Allocations).
				Int64("frees", stats.Frees).
				Msg("done")
			return errors.Wrap(e.exec.Synchronize(), "synchronize")
		},
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newInfoCmd(e),
		newSpmvCmd(e),
		newConvertCmd(e),
		newTransposeCmd(e),
		newKernelsCmd(e),
	)
	return root
}

func newInfoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.mtx>",
		Short: "print size, stored elements and storage of a matrix",
		Long: `
  Reads the file as CSR, dropping explicit zeros, and prints its size,
  stored element count, density and storage footprint.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.run.info(args[0])
		},
	}
}

func newSpmvCmd(e *env) *cobra.Command {
	var alpha, beta string
	cmd := &cobra.Command{
		Use:   "spmv <a.mtx> <b.mtx>",
		Short: "compute x = A * b, or alpha * A * b + beta * x",
		Long: `
  Reads A as CSR and b as dense and prints x in Matrix Market form. With
  --alpha or --beta set, x starts at zero and the scaled product is used.
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scaled := cmd.Flags().Changed("alpha") || cmd.Flags().Changed("beta")
			return e.run.spmv(args[0], args[1], scaled, alpha, beta)
		},
	}
	cmd.Flags().StringVar(&alpha, "alpha", "1", "scale of A * b, e.g. 2 or (1+2i)")
	cmd.Flags().StringVar(&beta, "beta", "0", "scale of the previous x")
	return cmd
}

func newConvertCmd(e *env) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <file.mtx>",
		Short: "print a matrix converted to dense, coo or csr storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			switch to {
			case "dense", "coo", "csr":
				return e.run.convert(args[0], to)
			default:
				return errors.Newf("unknown format %q, want dense, coo or csr", to)
			}
		},
	}
	cmd.Flags().StringVar(&to, "to", "csr", "target format: dense, coo or csr")
	return cmd
}

func newTransposeCmd(e *env) *cobra.Command {
	var conj bool
	cmd := &cobra.Command{
		Use:   "transpose <file.mtx>",
		Short: "print the (conjugate) transpose of a matrix in Matrix Market form",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.run.transpose(args[0], conj)
		},
	}
	cmd.Flags().BoolVar(&conj, "conj", false, "conjugate the values")
	return cmd
}

func newKernelsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "list kernels and the executor kinds implementing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, k := range e.run.kernels() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %v\n", k.Name, k.Implemented)
			}
			return nil
		},
	}
}
