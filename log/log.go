// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package log provides the observer API: loggers attached to an executor are
// notified synchronously of allocations, copies, operation launches and
// applies.
//
// Example:
//
//	cpu := exec.NewCPU(exec.DefaultConfig())
//	cpu.Observers().AddLogger(log.NewStream(zerolog.New(os.Stderr), log.AllEvents))
package log

import (
	"github.com/born-ml/linalg/internal/log"
	"github.com/rs/zerolog"
)

// Logger receives the events selected by its mask.
type Logger = log.Logger

// EventMask selects events.
type EventMask = log.EventMask

// Observers is the ordered list of loggers of one executor.
type Observers = log.Observers

// Record keeps received events in memory.
type Record = log.Record

// Entry is one recorded event.
type Entry = log.Entry

// Stream writes received events through zerolog.
type Stream = log.Stream

// Nop ignores every event.
type Nop = log.Nop

// Events.
const (
	AllocationStarted   = log.AllocationStarted
	AllocationCompleted = log.AllocationCompleted
	FreeCompleted       = log.FreeCompleted
	CopyStarted         = log.CopyStarted
	CopyCompleted       = log.CopyCompleted
	OperationLaunched   = log.OperationLaunched
	OperationCompleted  = log.OperationCompleted
	ApplyStarted        = log.ApplyStarted
	ApplyCompleted      = log.ApplyCompleted
	IterationComplete   = log.IterationComplete
)

// Event groups.
const (
	AllocationEvents = log.AllocationEvents
	CopyEvents       = log.CopyEvents
	OperationEvents  = log.OperationEvents
	ApplyEvents      = log.ApplyEvents
	AllEvents        = log.AllEvents
)

// NewRecord creates a Record subscribed to mask.
func NewRecord(mask EventMask) *Record {
	return log.NewRecord(mask)
}

// NewStream creates a Stream writing to logger.
func NewStream(logger zerolog.Logger, mask EventMask) *Stream {
	return log.NewStream(logger, mask)
}

// ParseEventMask parses event and group names such as "copy" or
// "operation_launched".
func ParseEventMask(names []string) (EventMask, error) {
	return log.ParseEventMask(names)
}
