package log

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Stream is a Logger that writes one structured line per event through
// zerolog. Failed events are logged at error level, everything else at
// debug level.
type Stream struct {
	mask   EventMask
	logger zerolog.Logger
}

var _ Logger = (*Stream)(nil)

// NewStream creates a Stream logger writing to logger.
func NewStream(logger zerolog.Logger, mask EventMask) *Stream {
	return &Stream{mask: mask, logger: logger}
}

// Mask implements Logger.
func (s *Stream) Mask() EventMask { return s.mask }

func (s *Stream) event(ev EventMask, err error) *zerolog.Event {
	e := s.logger.Debug()
	if err != nil {
		e = s.logger.Error().Err(err)
	}
	return e.Str("event", ev.String())
}

func bytesField(e *zerolog.Event, nbytes int) *zerolog.Event {
	if nbytes < 0 {
		return e.Int("bytes", nbytes)
	}
	return e.Int("bytes", nbytes).Str("size", humanize.IBytes(uint64(nbytes)))
}

// OnAllocationStarted implements Logger.
func (s *Stream) OnAllocationStarted(exec fmt.Stringer, nbytes int) {
	bytesField(s.event(AllocationStarted, nil).Str("executor", name(exec)), nbytes).Send()
}

// OnAllocationCompleted implements Logger.
func (s *Stream) OnAllocationCompleted(exec fmt.Stringer, nbytes int, err error) {
	bytesField(s.event(AllocationCompleted, err).Str("executor", name(exec)), nbytes).Send()
}

// OnFreeCompleted implements Logger.
func (s *Stream) OnFreeCompleted(exec fmt.Stringer, nbytes int) {
	bytesField(s.event(FreeCompleted, nil).Str("executor", name(exec)), nbytes).Send()
}

// OnCopyStarted implements Logger.
func (s *Stream) OnCopyStarted(from, to fmt.Stringer, nbytes int) {
	bytesField(s.event(CopyStarted, nil).Str("from", name(from)).Str("to", name(to)), nbytes).Send()
}

// OnCopyCompleted implements Logger.
func (s *Stream) OnCopyCompleted(from, to fmt.Stringer, nbytes int, err error) {
	bytesField(s.event(CopyCompleted, err).Str("from", name(from)).Str("to", name(to)), nbytes).Send()
}

// OnOperationLaunched implements Logger.
func (s *Stream) OnOperationLaunched(exec fmt.Stringer, op string) {
	s.event(OperationLaunched, nil).Str("executor", name(exec)).Str("op", op).Send()
}

// OnOperationCompleted implements Logger.
func (s *Stream) OnOperationCompleted(exec fmt.Stringer, op string, err error) {
	s.event(OperationCompleted, err).Str("executor", name(exec)).Str("op", op).Send()
}

// OnApplyStarted implements Logger.
func (s *Stream) OnApplyStarted(linop, b, x fmt.Stringer) {
	s.event(ApplyStarted, nil).Str("linop", name(linop)).Str("b", name(b)).Str("x", name(x)).Send()
}

// OnApplyCompleted implements Logger.
func (s *Stream) OnApplyCompleted(linop, b, x fmt.Stringer, err error) {
	s.event(ApplyCompleted, err).Str("linop", name(linop)).Str("b", name(b)).Str("x", name(x)).Send()
}

// OnIterationComplete implements Logger.
func (s *Stream) OnIterationComplete(iteration int) {
	s.event(IterationComplete, nil).Int("iteration", iteration).Send()
}
