package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return string(s) }

const numIters = 10

// loggedSolver stands in for an iterative component that reports progress.
type loggedSolver struct {
	Observers
}

func (s *loggedSolver) run() {
	for i := 1; i <= numIters; i++ {
		s.IterationComplete(i)
	}
}

func TestObservers_AddLogger(t *testing.T) {
	var s loggedSolver
	s.AddLogger(NewRecord(AllEvents))

	assert.Equal(t, 1, s.NumLoggers())
}

func TestObservers_AddMultipleLoggers(t *testing.T) {
	var s loggedSolver
	s.AddLogger(NewRecord(AllEvents))
	s.AddLogger(NewStream(zerolog.Nop(), AllEvents))

	assert.Equal(t, 2, s.NumLoggers())
}

func TestObservers_RemoveLogger(t *testing.T) {
	var s loggedSolver
	r1 := NewRecord(AllEvents)
	r2 := NewRecord(AllEvents)
	s.AddLogger(r1)
	s.AddLogger(r2)

	assert.True(t, s.RemoveLogger(r1))
	assert.False(t, s.RemoveLogger(r1))
	require.Equal(t, 1, s.NumLoggers())
	assert.Same(t, r2, s.Loggers()[0])
}

func TestObservers_IterationComplete(t *testing.T) {
	var s loggedSolver
	r := NewRecord(IterationComplete)
	s.AddLogger(r)

	s.run()

	entries := r.Entries()
	require.Len(t, entries, numIters)
	assert.Equal(t, numIters, entries[numIters-1].Iteration)
}

func TestObservers_MaskFilters(t *testing.T) {
	var o Observers
	ops := NewRecord(OperationEvents)
	copies := NewRecord(CopyEvents)
	o.AddLogger(ops)
	o.AddLogger(copies)

	o.OperationLaunched(stringer("reference"), "csr.spmv")
	o.OperationCompleted(stringer("reference"), "csr.spmv", nil)
	o.CopyStarted(stringer("reference"), stringer("cpu"), 64)

	assert.Equal(t, 2, ops.Count(AllEvents))
	assert.Equal(t, 1, copies.Count(AllEvents))
	assert.Equal(t, "csr.spmv", ops.Entries()[0].Operation)
	assert.Equal(t, "cpu", copies.Entries()[0].Target)
}

func TestObservers_RegistrationOrder(t *testing.T) {
	var o Observers
	var order []string
	o.AddLogger(&orderLogger{id: "first", order: &order})
	o.AddLogger(&orderLogger{id: "second", order: &order})

	o.OperationLaunched(stringer("cpu"), "dense.scale")

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestObservers_NilIsSilent(t *testing.T) {
	var o *Observers
	assert.NotPanics(t, func() { o.IterationComplete(1) })
}

type orderLogger struct {
	Nop
	id    string
	order *[]string
}

func (l *orderLogger) Mask() EventMask { return AllEvents }

func (l *orderLogger) OnOperationLaunched(fmt.Stringer, string) {
	*l.order = append(*l.order, l.id)
}

func TestParseEventMask(t *testing.T) {
	m, err := ParseEventMask([]string{"operation", "copy_started"})
	require.NoError(t, err)
	assert.Equal(t, OperationEvents|CopyStarted, m)

	m, err = ParseEventMask([]string{"ALL"})
	require.NoError(t, err)
	assert.Equal(t, AllEvents, m)

	_, err = ParseEventMask([]string{"bogus"})
	assert.Error(t, err)
}

func TestEventMask_String(t *testing.T) {
	assert.Equal(t, "none", EventMask(0).String())
	assert.Equal(t, "operation_launched|operation_completed", OperationEvents.String())
}

func TestStream_WritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(zerolog.New(&buf).Level(zerolog.DebugLevel), AllEvents)

	s.OnAllocationCompleted(stringer("cpu"), 2048, nil)
	s.OnOperationCompleted(stringer("cpu"), "csr.spmv", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var alloc map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &alloc))
	assert.Equal(t, "debug", alloc["level"])
	assert.Equal(t, "allocation_completed", alloc["event"])
	assert.Equal(t, "cpu", alloc["executor"])
	assert.Equal(t, "2.0 KiB", alloc["size"])

	var op map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &op))
	assert.Equal(t, "error", op["level"])
	assert.Equal(t, "boom", op["error"])
	assert.Equal(t, "csr.spmv", op["op"])
}
