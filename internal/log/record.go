package log

import (
	"fmt"
	"sync"
)

// Entry is one recorded event.
type Entry struct {
	Event     EventMask
	Executor  string // Executor that emitted the event, if any.
	Target    string // Copy destination or apply output, if any.
	Operation string // Operation or operand name, if any.
	Bytes     int
	Iteration int
	Err       error
}

// Record is a Logger that keeps every received event in memory.
type Record struct {
	mask EventMask

	mu      sync.Mutex
	entries []Entry
}

var _ Logger = (*Record)(nil)

// NewRecord creates a Record logger subscribed to mask.
func NewRecord(mask EventMask) *Record {
	return &Record{mask: mask}
}

// Mask implements Logger.
func (r *Record) Mask() EventMask { return r.mask }

// Entries returns a copy of all recorded events in arrival order.
func (r *Record) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many events of the given kind were recorded.
func (r *Record) Count(ev EventMask) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Event&ev != 0 {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Record) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *Record) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func name(s fmt.Stringer) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// OnAllocationStarted implements Logger.
func (r *Record) OnAllocationStarted(exec fmt.Stringer, nbytes int) {
	r.add(Entry{Event: AllocationStarted, Executor: name(exec), Bytes: nbytes})
}

// OnAllocationCompleted implements Logger.
func (r *Record) OnAllocationCompleted(exec fmt.Stringer, nbytes int, err error) {
	r.add(Entry{Event: AllocationCompleted, Executor: name(exec), Bytes: nbytes, Err: err})
}

// OnFreeCompleted implements Logger.
func (r *Record) OnFreeCompleted(exec fmt.Stringer, nbytes int) {
	r.add(Entry{Event: FreeCompleted, Executor: name(exec), Bytes: nbytes})
}

// OnCopyStarted implements Logger.
func (r *Record) OnCopyStarted(from, to fmt.Stringer, nbytes int) {
	r.add(Entry{Event: CopyStarted, Executor: name(from), Target: name(to), Bytes: nbytes})
}

// OnCopyCompleted implements Logger.
func (r *Record) OnCopyCompleted(from, to fmt.Stringer, nbytes int, err error) {
	r.add(Entry{Event: CopyCompleted, Executor: name(from), Target: name(to), Bytes: nbytes, Err: err})
}

// OnOperationLaunched implements Logger.
func (r *Record) OnOperationLaunched(exec fmt.Stringer, op string) {
	r.add(Entry{Event: OperationLaunched, Executor: name(exec), Operation: op})
}

// OnOperationCompleted implements Logger.
func (r *Record) OnOperationCompleted(exec fmt.Stringer, op string, err error) {
	r.add(Entry{Event: OperationCompleted, Executor: name(exec), Operation: op, Err: err})
}

// OnApplyStarted implements Logger.
func (r *Record) OnApplyStarted(linop, b, x fmt.Stringer) {
	r.add(Entry{Event: ApplyStarted, Operation: name(linop) + " * " + name(b), Target: name(x)})
}

// OnApplyCompleted implements Logger.
func (r *Record) OnApplyCompleted(linop, b, x fmt.Stringer, err error) {
	r.add(Entry{Event: ApplyCompleted, Operation: name(linop) + " * " + name(b), Target: name(x), Err: err})
}

// OnIterationComplete implements Logger.
func (r *Record) OnIterationComplete(iteration int) {
	r.add(Entry{Event: IterationComplete, Iteration: iteration})
}
