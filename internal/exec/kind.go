package exec

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Kind identifies the backend an executor runs operations on.
type Kind int

// Supported executor kinds.
const (
	// KindReference runs sequential, straightforward host kernels.
	KindReference Kind = iota
	// KindCPU runs optimized host kernels (BLAS, row-parallel loops).
	KindCPU
	// KindWebGPU owns device memory on a WebGPU adapter.
	KindWebGPU
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindReference, KindCPU, KindWebGPU}

var _ redact.SafeValue = KindReference

// SafeValue marks kinds as safe to keep in redacted error reports.
func (Kind) SafeValue() {}

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindCPU:
		return "cpu"
	case KindWebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// IsHost reports whether executors of this kind use host memory.
func (k Kind) IsHost() bool {
	return k == KindReference || k == KindCPU
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, errors.Newf("exec: unknown executor kind %q", s)
}
