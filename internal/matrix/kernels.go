package matrix

import (
	"sync"

	"github.com/born-ml/linalg/internal/backend/cpu"
	"github.com/born-ml/linalg/internal/backend/reference"
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
)

// Kernel sets are built once per (format, value type, index type) the first
// time a matrix of that instantiation runs an operation. Every kernel lists
// a body per executor kind; WebGPU has none, so it reports
// exec.ErrNotImplemented for all of them.

type registryKey struct {
	format, value, index string
}

var registry sync.Map // registryKey -> *xxxKernels

func lookup[T any](key registryKey, build func() *T) *T {
	if k, ok := registry.Load(key); ok {
		return k.(*T)
	}
	k, _ := registry.LoadOrStore(key, build())
	return k.(*T)
}

type csrKernels[V scalar.Value, I scalar.Index] struct {
	spmv           *exec.Kernel[kernels.CsrSpmv[V, I]]
	advancedSpmv   *exec.Kernel[kernels.CsrAdvancedSpmv[V, I]]
	rowPtrsToIdxs  *exec.Kernel[kernels.RowPtrsToIdxs[I]]
	convertToDense *exec.Kernel[kernels.CsrToDense[V, I]]
	moveToDense    *exec.Kernel[kernels.CsrToDense[V, I]]
	transpose      *exec.Kernel[kernels.CsrTranspose[V, I]]
	conjTranspose  *exec.Kernel[kernels.CsrTranspose[V, I]]
}

func csrOps[V scalar.Value, I scalar.Index]() *csrKernels[V, I] {
	return lookup(registryKey{"csr", scalar.TypeName[V](), scalar.TypeName[I]()}, newCsrKernels[V, I])
}

func newCsrKernels[V scalar.Value, I scalar.Index]() *csrKernels[V, I] {
	return &csrKernels[V, I]{
		spmv: exec.NewKernel("csr::spmv", exec.Bodies[kernels.CsrSpmv[V, I]]{
			Reference: reference.CsrSpmv[V, I],
			CPU:       cpu.CsrSpmv[V, I],
		}),
		advancedSpmv: exec.NewKernel("csr::advanced_spmv", exec.Bodies[kernels.CsrAdvancedSpmv[V, I]]{
			Reference: reference.CsrAdvancedSpmv[V, I],
			CPU:       cpu.CsrAdvancedSpmv[V, I],
		}),
		rowPtrsToIdxs: exec.NewKernel("csr::convert_row_ptrs_to_idxs", exec.Bodies[kernels.RowPtrsToIdxs[I]]{
			Reference: reference.ConvertRowPtrsToIdxs[I],
			CPU:       cpu.ConvertRowPtrsToIdxs[I],
		}),
		convertToDense: exec.NewKernel("csr::convert_to_dense", exec.Bodies[kernels.CsrToDense[V, I]]{
			Reference: reference.CsrConvertToDense[V, I],
			CPU:       cpu.CsrConvertToDense[V, I],
		}),
		// Moving scatters exactly like converting; the caller releases the
		// source storage afterwards.
		moveToDense: exec.NewKernel("csr::move_to_dense", exec.Bodies[kernels.CsrToDense[V, I]]{
			Reference: reference.CsrConvertToDense[V, I],
			CPU:       cpu.CsrConvertToDense[V, I],
		}),
		transpose: exec.NewKernel("csr::transpose", exec.Bodies[kernels.CsrTranspose[V, I]]{
			Reference: reference.CsrTranspose[V, I],
			CPU:       cpu.CsrTranspose[V, I],
		}),
		conjTranspose: exec.NewKernel("csr::conj_transpose", exec.Bodies[kernels.CsrTranspose[V, I]]{
			Reference: reference.CsrConjTranspose[V, I],
			CPU:       cpu.CsrConjTranspose[V, I],
		}),
	}
}

type denseKernels[V scalar.Value] struct {
	simpleApply   *exec.Kernel[kernels.DenseSimpleApply[V]]
	apply         *exec.Kernel[kernels.DenseApply[V]]
	scale         *exec.Kernel[kernels.DenseScale[V]]
	addScaled     *exec.Kernel[kernels.DenseAddScaled[V]]
	computeDot    *exec.Kernel[kernels.DenseComputeDot[V]]
	transpose     *exec.Kernel[kernels.DenseTranspose[V]]
	conjTranspose *exec.Kernel[kernels.DenseTranspose[V]]
	countNonzeros *exec.Kernel[kernels.DenseCountNonzeros[V]]
}

func denseOps[V scalar.Value]() *denseKernels[V] {
	return lookup(registryKey{"dense", scalar.TypeName[V](), ""}, newDenseKernels[V])
}

func newDenseKernels[V scalar.Value]() *denseKernels[V] {
	return &denseKernels[V]{
		simpleApply: exec.NewKernel("dense::simple_apply", exec.Bodies[kernels.DenseSimpleApply[V]]{
			Reference: reference.DenseSimpleApply[V],
			CPU:       cpu.DenseSimpleApply[V],
		}),
		apply: exec.NewKernel("dense::apply", exec.Bodies[kernels.DenseApply[V]]{
			Reference: reference.DenseApply[V],
			CPU:       cpu.DenseApply[V],
		}),
		scale: exec.NewKernel("dense::scale", exec.Bodies[kernels.DenseScale[V]]{
			Reference: reference.DenseScale[V],
			CPU:       cpu.DenseScale[V],
		}),
		addScaled: exec.NewKernel("dense::add_scaled", exec.Bodies[kernels.DenseAddScaled[V]]{
			Reference: reference.DenseAddScaled[V],
			CPU:       cpu.DenseAddScaled[V],
		}),
		computeDot: exec.NewKernel("dense::compute_dot", exec.Bodies[kernels.DenseComputeDot[V]]{
			Reference: reference.DenseComputeDot[V],
			CPU:       cpu.DenseComputeDot[V],
		}),
		transpose: exec.NewKernel("dense::transpose", exec.Bodies[kernels.DenseTranspose[V]]{
			Reference: reference.DenseTranspose[V],
			CPU:       cpu.DenseTranspose[V],
		}),
		conjTranspose: exec.NewKernel("dense::conj_transpose", exec.Bodies[kernels.DenseTranspose[V]]{
			Reference: reference.DenseConjTranspose[V],
			CPU:       cpu.DenseConjTranspose[V],
		}),
		countNonzeros: exec.NewKernel("dense::count_nonzeros", exec.Bodies[kernels.DenseCountNonzeros[V]]{
			Reference: reference.DenseCountNonzeros[V],
			CPU:       cpu.DenseCountNonzeros[V],
		}),
	}
}

type denseSparseKernels[V scalar.Value, I scalar.Index] struct {
	convertToCsr *exec.Kernel[kernels.DenseToCsr[V, I]]
	convertToCoo *exec.Kernel[kernels.DenseToCoo[V, I]]
}

func denseSparseOps[V scalar.Value, I scalar.Index]() *denseSparseKernels[V, I] {
	return lookup(registryKey{"dense", scalar.TypeName[V](), scalar.TypeName[I]()}, newDenseSparseKernels[V, I])
}

func newDenseSparseKernels[V scalar.Value, I scalar.Index]() *denseSparseKernels[V, I] {
	return &denseSparseKernels[V, I]{
		convertToCsr: exec.NewKernel("dense::convert_to_csr", exec.Bodies[kernels.DenseToCsr[V, I]]{
			Reference: reference.DenseConvertToCsr[V, I],
			CPU:       cpu.DenseConvertToCsr[V, I],
		}),
		convertToCoo: exec.NewKernel("dense::convert_to_coo", exec.Bodies[kernels.DenseToCoo[V, I]]{
			Reference: reference.DenseConvertToCoo[V, I],
			CPU:       cpu.DenseConvertToCoo[V, I],
		}),
	}
}

type cooKernels[V scalar.Value, I scalar.Index] struct {
	spmv           *exec.Kernel[kernels.CooSpmv[V, I]]
	advancedSpmv   *exec.Kernel[kernels.CooAdvancedSpmv[V, I]]
	rowIdxsToPtrs  *exec.Kernel[kernels.RowIdxsToPtrs[I]]
	convertToDense *exec.Kernel[kernels.CooToDense[V, I]]
}

func cooOps[V scalar.Value, I scalar.Index]() *cooKernels[V, I] {
	return lookup(registryKey{"coo", scalar.TypeName[V](), scalar.TypeName[I]()}, newCooKernels[V, I])
}

func newCooKernels[V scalar.Value, I scalar.Index]() *cooKernels[V, I] {
	return &cooKernels[V, I]{
		spmv: exec.NewKernel("coo::spmv", exec.Bodies[kernels.CooSpmv[V, I]]{
			Reference: reference.CooSpmv[V, I],
			CPU:       cpu.CooSpmv[V, I],
		}),
		advancedSpmv: exec.NewKernel("coo::advanced_spmv", exec.Bodies[kernels.CooAdvancedSpmv[V, I]]{
			Reference: reference.CooAdvancedSpmv[V, I],
			CPU:       cpu.CooAdvancedSpmv[V, I],
		}),
		rowIdxsToPtrs: exec.NewKernel("coo::convert_row_idxs_to_ptrs", exec.Bodies[kernels.RowIdxsToPtrs[I]]{
			Reference: reference.ConvertRowIdxsToPtrs[I],
			CPU:       cpu.ConvertRowIdxsToPtrs[I],
		}),
		convertToDense: exec.NewKernel("coo::convert_to_dense", exec.Bodies[kernels.CooToDense[V, I]]{
			Reference: reference.CooConvertToDense[V, I],
			CPU:       cpu.CooConvertToDense[V, I],
		}),
	}
}

// KernelInfo describes one registered kernel.
type KernelInfo struct {
	Name        string
	Implemented []exec.Kind
}

type describer interface {
	Name() string
	Implements(exec.Kind) bool
}

func describe(ks ...describer) []KernelInfo {
	out := make([]KernelInfo, 0, len(ks))
	for _, k := range ks {
		info := KernelInfo{Name: k.Name()}
		for _, kind := range exec.Kinds {
			if k.Implements(kind) {
				info.Implemented = append(info.Implemented, kind)
			}
		}
		out = append(out, info)
	}
	return out
}

// Kernels lists every kernel registered for value type V and index type I,
// with the executor kinds that have a real body for it.
func Kernels[V scalar.Value, I scalar.Index]() []KernelInfo {
	c, d, ds, o := csrOps[V, I](), denseOps[V](), denseSparseOps[V, I](), cooOps[V, I]()
	return describe(
		c.spmv, c.advancedSpmv, c.rowPtrsToIdxs, c.convertToDense, c.moveToDense, c.transpose, c.conjTranspose,
		d.simpleApply, d.apply, d.scale, d.addScaled, d.computeDot, d.transpose, d.conjTranspose, d.countNonzeros,
		ds.convertToCsr, ds.convertToCoo,
		o.spmv, o.advancedSpmv, o.rowIdxsToPtrs, o.convertToDense,
	)
}
