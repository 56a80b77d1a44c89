// Package log implements the observer side of the library: loggers that are
// notified synchronously when executors allocate, copy and run operations.
//
// Library code never writes log output on its own. Attach a Logger to an
// executor (or any other Observers owner) to receive events.
package log

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// EventMask selects which events a Logger wants to receive.
type EventMask uint32

// Events emitted by the library.
const (
	AllocationStarted EventMask = 1 << iota
	AllocationCompleted
	FreeCompleted
	CopyStarted
	CopyCompleted
	OperationLaunched
	OperationCompleted
	ApplyStarted
	ApplyCompleted
	IterationComplete
)

// Event groups.
const (
	AllocationEvents = AllocationStarted | AllocationCompleted | FreeCompleted
	CopyEvents       = CopyStarted | CopyCompleted
	OperationEvents  = OperationLaunched | OperationCompleted
	ApplyEvents      = ApplyStarted | ApplyCompleted
	AllEvents        = AllocationEvents | CopyEvents | OperationEvents | ApplyEvents | IterationComplete
)

var eventNames = []struct {
	mask EventMask
	name string
}{
	{AllocationStarted, "allocation_started"},
	{AllocationCompleted, "allocation_completed"},
	{FreeCompleted, "free_completed"},
	{CopyStarted, "copy_started"},
	{CopyCompleted, "copy_completed"},
	{OperationLaunched, "operation_launched"},
	{OperationCompleted, "operation_completed"},
	{ApplyStarted, "apply_started"},
	{ApplyCompleted, "apply_completed"},
	{IterationComplete, "iteration_complete"},
}

var groupNames = map[string]EventMask{
	"all":        AllEvents,
	"allocation": AllocationEvents,
	"copy":       CopyEvents,
	"operation":  OperationEvents,
	"apply":      ApplyEvents,
}

// String returns the event names contained in the mask, joined by "|".
func (m EventMask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, e := range eventNames {
		if m&e.mask != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseEventMask parses event or group names ("operation", "copy_started",
// "all", ...) into a mask.
func ParseEventMask(names []string) (EventMask, error) {
	var m EventMask
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if g, ok := groupNames[name]; ok {
			m |= g
			continue
		}
		found := false
		for _, e := range eventNames {
			if e.name == name {
				m |= e.mask
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Newf("log: unknown event %q", raw)
		}
	}
	return m, nil
}

// Logger receives library events. Each handler is invoked synchronously,
// so implementations must return promptly.
//
// Embed Nop to implement only the handlers you care about.
type Logger interface {
	// Mask reports which events this logger receives.
	Mask() EventMask

	OnAllocationStarted(exec fmt.Stringer, nbytes int)
	OnAllocationCompleted(exec fmt.Stringer, nbytes int, err error)
	OnFreeCompleted(exec fmt.Stringer, nbytes int)
	OnCopyStarted(from, to fmt.Stringer, nbytes int)
	OnCopyCompleted(from, to fmt.Stringer, nbytes int, err error)
	OnOperationLaunched(exec fmt.Stringer, op string)
	OnOperationCompleted(exec fmt.Stringer, op string, err error)
	OnApplyStarted(linop, b, x fmt.Stringer)
	OnApplyCompleted(linop, b, x fmt.Stringer, err error)
	OnIterationComplete(iteration int)
}

// Nop is a Logger that ignores every event.
type Nop struct{}

var _ Logger = Nop{}

// Mask implements Logger.
func (Nop) Mask() EventMask { return 0 }

// OnAllocationStarted implements Logger.
func (Nop) OnAllocationStarted(fmt.Stringer, int) {}

// OnAllocationCompleted implements Logger.
func (Nop) OnAllocationCompleted(fmt.Stringer, int, error) {}

// OnFreeCompleted implements Logger.
func (Nop) OnFreeCompleted(fmt.Stringer, int) {}

// OnCopyStarted implements Logger.
func (Nop) OnCopyStarted(_, _ fmt.Stringer, _ int) {}

// OnCopyCompleted implements Logger.
func (Nop) OnCopyCompleted(_, _ fmt.Stringer, _ int, _ error) {}

// OnOperationLaunched implements Logger.
func (Nop) OnOperationLaunched(fmt.Stringer, string) {}

// OnOperationCompleted implements Logger.
func (Nop) OnOperationCompleted(fmt.Stringer, string, error) {}

// OnApplyStarted implements Logger.
func (Nop) OnApplyStarted(_, _, _ fmt.Stringer) {}

// OnApplyCompleted implements Logger.
func (Nop) OnApplyCompleted(_, _, _ fmt.Stringer, _ error) {}

// OnIterationComplete implements Logger.
func (Nop) OnIterationComplete(int) {}
