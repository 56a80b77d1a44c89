package log

import (
	"fmt"
	"slices"
	"sync"
)

// Observers is an ordered list of loggers attached to one event source.
// Events are delivered synchronously in registration order. The zero value
// is ready to use.
type Observers struct {
	mu      sync.RWMutex
	loggers []Logger
}

// AddLogger registers l. Registering the same logger twice delivers every
// event to it twice.
func (o *Observers) AddLogger(l Logger) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loggers = append(o.loggers, l)
}

// RemoveLogger unregisters the first registration of l.
// It reports whether l was registered.
func (o *Observers) RemoveLogger(l Logger) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := slices.Index(o.loggers, l)
	if i < 0 {
		return false
	}
	o.loggers = slices.Delete(o.loggers, i, i+1)
	return true
}

// NumLoggers returns the number of registered loggers.
func (o *Observers) NumLoggers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.loggers)
}

// Loggers returns a snapshot of the registered loggers.
func (o *Observers) Loggers() []Logger {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.loggers)
}

// each calls fn for every logger subscribed to ev. The list is snapshotted
// first so handlers may register or remove loggers.
func (o *Observers) each(ev EventMask, fn func(Logger)) {
	if o == nil {
		return
	}
	o.mu.RLock()
	if len(o.loggers) == 0 {
		o.mu.RUnlock()
		return
	}
	snapshot := slices.Clone(o.loggers)
	o.mu.RUnlock()

	for _, l := range snapshot {
		if l.Mask()&ev != 0 {
			fn(l)
		}
	}
}

// AllocationStarted notifies loggers that nbytes are about to be allocated.
func (o *Observers) AllocationStarted(exec fmt.Stringer, nbytes int) {
	o.each(AllocationStarted, func(l Logger) { l.OnAllocationStarted(exec, nbytes) })
}

// AllocationCompleted notifies loggers that an allocation finished.
func (o *Observers) AllocationCompleted(exec fmt.Stringer, nbytes int, err error) {
	o.each(AllocationCompleted, func(l Logger) { l.OnAllocationCompleted(exec, nbytes, err) })
}

// FreeCompleted notifies loggers that nbytes were released.
func (o *Observers) FreeCompleted(exec fmt.Stringer, nbytes int) {
	o.each(FreeCompleted, func(l Logger) { l.OnFreeCompleted(exec, nbytes) })
}

// CopyStarted notifies loggers that a copy between executors is starting.
func (o *Observers) CopyStarted(from, to fmt.Stringer, nbytes int) {
	o.each(CopyStarted, func(l Logger) { l.OnCopyStarted(from, to, nbytes) })
}

// CopyCompleted notifies loggers that a copy between executors finished.
func (o *Observers) CopyCompleted(from, to fmt.Stringer, nbytes int, err error) {
	o.each(CopyCompleted, func(l Logger) { l.OnCopyCompleted(from, to, nbytes, err) })
}

// OperationLaunched notifies loggers that op was dispatched on exec.
func (o *Observers) OperationLaunched(exec fmt.Stringer, op string) {
	o.each(OperationLaunched, func(l Logger) { l.OnOperationLaunched(exec, op) })
}

// OperationCompleted notifies loggers that op returned on exec.
func (o *Observers) OperationCompleted(exec fmt.Stringer, op string, err error) {
	o.each(OperationCompleted, func(l Logger) { l.OnOperationCompleted(exec, op, err) })
}

// ApplyStarted notifies loggers that linop is being applied to b.
func (o *Observers) ApplyStarted(linop, b, x fmt.Stringer) {
	o.each(ApplyStarted, func(l Logger) { l.OnApplyStarted(linop, b, x) })
}

// ApplyCompleted notifies loggers that an apply finished.
func (o *Observers) ApplyCompleted(linop, b, x fmt.Stringer, err error) {
	o.each(ApplyCompleted, func(l Logger) { l.OnApplyCompleted(linop, b, x, err) })
}

// IterationComplete notifies loggers that an iterative process finished
// the given iteration. The matrix and executor code never emits it: it is
// the hook for solvers built on top of this package, which call it once per
// iteration on observers they own.
func (o *Observers) IterationComplete(iteration int) {
	o.each(IterationComplete, func(l Logger) { l.OnIterationComplete(iteration) })
}
