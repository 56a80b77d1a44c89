// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package exec provides the public executor API of the linalg library.
//
// An executor owns memory on one backend and runs the operations matrices
// hand to it:
//   - Reference: sequential host kernels, the correctness baseline
//   - CPU: BLAS-backed and row-parallel host kernels
//   - WebGPU: device memory on a WebGPU adapter, no kernels yet
//
// Example:
//
//	ref := exec.NewReference(exec.DefaultConfig())
//	cpu := exec.NewCPU(exec.DefaultConfig())
//	a, _ := matrix.CsrFromSlices(cpu, matrix.Dim{Rows: 2, Cols: 2},
//	    []int32{0, 1, 2}, []int32{0, 1}, []float64{2, 3})
package exec

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/parallel"
)

// Executor is a compute backend together with its memory.
type Executor = exec.Executor

// Kind identifies the backend an executor runs operations on.
type Kind = exec.Kind

// Executor kinds.
const (
	KindReference Kind = exec.KindReference
	KindCPU       Kind = exec.KindCPU
	KindWebGPU    Kind = exec.KindWebGPU
)

// Config configures executors.
type Config = exec.Config

// ParallelConfig controls the row-parallel CPU kernels.
type ParallelConfig = parallel.Config

// MemoryStats reports allocation counters of one executor.
type MemoryStats = exec.MemoryStats

// Reference is the sequential host executor.
type Reference = exec.Reference

// CPU is the optimized host executor.
type CPU = exec.CPU

// WebGPU is the WebGPU device executor.
type WebGPU = exec.WebGPU

// Operation is a unit of work with one body per executor kind.
type Operation = exec.Operation

// NotImplementedError names the operation and backend that had no body.
type NotImplementedError = exec.NotImplementedError

// AllocationError describes a failed allocation.
type AllocationError = exec.AllocationError

// Sentinel errors, matched with errors.Is.
var (
	ErrNotImplemented     = exec.ErrNotImplemented
	ErrAllocation         = exec.ErrAllocation
	ErrExecutorMismatch   = exec.ErrExecutorMismatch
	ErrBackendUnavailable = exec.ErrBackendUnavailable
)

// DefaultConfig returns an unlimited configuration with parallel defaults
// derived from the CPU count.
func DefaultConfig() Config {
	return exec.DefaultConfig()
}

// NewReference creates a reference executor.
func NewReference(cfg Config) *Reference {
	return exec.NewReference(cfg)
}

// NewCPU creates a CPU executor.
func NewCPU(cfg Config) *CPU {
	return exec.NewCPU(cfg)
}

// NewWebGPU opens WebGPU device deviceID with master as its host executor.
// A nil master gets a fresh CPU executor. On platforms without native
// bindings it returns an error matching ErrBackendUnavailable.
func NewWebGPU(deviceID int, master Executor, cfg Config) (*WebGPU, error) {
	return exec.NewWebGPU(deviceID, master, cfg)
}

// New creates an executor of the given kind. WebGPU executors use device 0
// and a CPU master.
func New(kind Kind, cfg Config) (Executor, error) {
	switch kind {
	case KindReference:
		return NewReference(cfg), nil
	case KindCPU:
		return NewCPU(cfg), nil
	default:
		return NewWebGPU(0, nil, cfg)
	}
}

// ParseKind converts "reference", "cpu" or "webgpu" into a Kind.
func ParseKind(s string) (Kind, error) {
	return exec.ParseKind(s)
}
