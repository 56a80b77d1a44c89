package exec

// Operation is a unit of work with one body per executor kind.
//
// Operations are normally produced by Kernel.Bind; a kernel that has no body
// for some kind answers that method with a *NotImplementedError.
type Operation interface {
	Name() string
	RunReference(e *Reference) error
	RunCPU(e *CPU) error
	RunWebGPU(e *WebGPU) error
}

// Bodies lists the implementations of one kernel, one field per executor
// kind. A nil field means the backend has no implementation.
type Bodies[A any] struct {
	Reference func(e *Reference, args A) error
	CPU       func(e *CPU, args A) error
	WebGPU    func(e *WebGPU, args A) error
}

// Kernel is a named operation with per-backend bodies, instantiated for one
// argument type. Argument types are fixed by the Go type parameter, so no
// type tags travel with the operands.
type Kernel[A any] struct {
	name   string
	bodies Bodies[A]
}

// NewKernel creates a kernel. Every kind missing from bodies receives the
// not-implemented fallback.
func NewKernel[A any](name string, bodies Bodies[A]) *Kernel[A] {
	return &Kernel[A]{name: name, bodies: bodies}
}

// Name returns the kernel name.
func (k *Kernel[A]) Name() string { return k.name }

// Implements reports whether the kernel has a real body for kind.
func (k *Kernel[A]) Implements(kind Kind) bool {
	switch kind {
	case KindReference:
		return k.bodies.Reference != nil
	case KindCPU:
		return k.bodies.CPU != nil
	case KindWebGPU:
		return k.bodies.WebGPU != nil
	default:
		return false
	}
}

// Bind closes the kernel over its arguments, producing a runnable Operation.
func (k *Kernel[A]) Bind(args A) Operation {
	return &boundOperation[A]{kernel: k, args: args}
}

type boundOperation[A any] struct {
	kernel *Kernel[A]
	args   A
}

func (o *boundOperation[A]) Name() string { return o.kernel.name }

func (o *boundOperation[A]) RunReference(e *Reference) error {
	if o.kernel.bodies.Reference == nil {
		return &NotImplementedError{Op: o.kernel.name, Kind: KindReference}
	}
	return o.kernel.bodies.Reference(e, o.args)
}

func (o *boundOperation[A]) RunCPU(e *CPU) error {
	if o.kernel.bodies.CPU == nil {
		return &NotImplementedError{Op: o.kernel.name, Kind: KindCPU}
	}
	return o.kernel.bodies.CPU(e, o.args)
}

func (o *boundOperation[A]) RunWebGPU(e *WebGPU) error {
	if o.kernel.bodies.WebGPU == nil {
		return &NotImplementedError{Op: o.kernel.name, Kind: KindWebGPU}
	}
	return o.kernel.bodies.WebGPU(e, o.args)
}
