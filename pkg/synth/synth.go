// Package synth generates TAP traces from a short script of IR/DR scans. It
// plans TMS paths with tap.StateMachine and clocks them through a
// jtag.Adapter, normally a jtag.Recorder, so the result can be fed straight to
// the decoder.
package synth

import (
	"fmt"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
	"github.com/OpenTraceLab/tapdecode/pkg/jtag"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

// Record runs ops against a fresh jtag.Recorder clocked at speedHz and
// returns the sampled trace. A nil target uses jtag.NewMSP430Target.
func Record(ops []Op, speedHz int, target jtag.Target) ([]decoder.Frame, error) {
	if target == nil {
		target = jtag.NewMSP430Target()
	}
	rec := jtag.NewRecorder(jtag.AdapterInfo{Name: "recorder"}, target)
	if err := rec.SetSpeed(speedHz); err != nil {
		return nil, err
	}
	if _, err := New(rec).Run(ops); err != nil {
		return nil, err
	}
	return rec.Frames(), nil
}

// Synthesizer tracks the TAP state it has driven the adapter into.
type Synthesizer struct {
	adapter jtag.Adapter
	sm      *tap.StateMachine
}

// New creates a synthesizer for an adapter whose TAP sits in RUN-TEST/IDLE.
func New(adapter jtag.Adapter) *Synthesizer {
	sm, _ := tap.NewStateMachineAt(tap.StateRunTestIdle)
	return &Synthesizer{adapter: adapter, sm: sm}
}

// State reports the planned TAP state.
func (s *Synthesizer) State() tap.State {
	return s.sm.State()
}

// Run executes ops in order. Captured values of each scan are returned in
// scan order, read with the same bit conventions the decoder uses.
func (s *Synthesizer) Run(ops []Op) ([]uint64, error) {
	var captured []uint64
	for i, op := range ops {
		var (
			v   uint64
			err error
		)
		switch op.Kind {
		case OpReset:
			err = s.Reset()
		case OpIdle:
			err = s.Idle(op.Count)
		case OpShiftIR:
			v, err = s.ShiftIR(op.Value, op.Width)
			captured = append(captured, v)
		case OpShiftDR:
			v, err = s.ShiftDR(op.Value, op.Width)
			captured = append(captured, v)
		default:
			err = fmt.Errorf("%w: %s", ErrBadOp, op)
		}
		if err != nil {
			return captured, fmt.Errorf("synth: op %d (%s): %w", i, op, err)
		}
	}
	return captured, nil
}

// Reset clocks the IEEE reset sequence and settles in RUN-TEST/IDLE.
func (s *Synthesizer) Reset() error {
	if err := s.adapter.ResetTAP(false); err != nil {
		return err
	}
	s.sm.Reset()
	return s.Idle(1)
}

// Idle clocks n cycles in RUN-TEST/IDLE, moving there first if needed.
func (s *Synthesizer) Idle(n int) error {
	path, err := s.sm.GoTo(tap.StateRunTestIdle)
	if err != nil {
		return err
	}
	tms := append([]bool(nil), path.TMS...)
	for i := 0; i < n; i++ {
		tms = append(tms, false)
		s.sm.Clock(false)
	}
	if len(tms) == 0 {
		return nil
	}
	// No register is scanned; the adapter only needs the TMS pattern.
	_, err = s.adapter.ShiftDR(jtag.PackBits(tms), nil, len(tms))
	return err
}

// ShiftIR loads an instruction, LSB first, and returns the value captured
// from TDO (first bit out is most significant).
func (s *Synthesizer) ShiftIR(value uint64, width int) (uint64, error) {
	bits := make([]bool, width)
	for i := range bits {
		bits[i] = value>>uint(i)&1 == 1
	}
	out, err := s.scan(tap.StateShiftIR, bits)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range out {
		v = v<<1 | boolToUint(b)
	}
	return v, nil
}

// ShiftDR loads a data word, MSB first, and returns the value captured from
// TDO (last bit out is most significant).
func (s *Synthesizer) ShiftDR(value uint64, width int) (uint64, error) {
	bits := make([]bool, width)
	for i := range bits {
		bits[i] = value>>uint(width-1-i)&1 == 1
	}
	out, err := s.scan(tap.StateShiftDR, bits)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := len(out) - 1; i >= 0; i-- {
		v = v<<1 | boolToUint(out[i])
	}
	return v, nil
}

// scan walks to the shift state, shifts bits (raising TMS on the last one),
// passes UPDATE and returns to RUN-TEST/IDLE. The clock that leaves UPDATE is
// the one that carries the register update in the sampled trace.
func (s *Synthesizer) scan(shift tap.State, bits []bool) ([]bool, error) {
	if len(bits) == 0 {
		return nil, fmt.Errorf("synth: empty scan")
	}
	path, err := s.sm.GoTo(shift)
	if err != nil {
		return nil, err
	}

	lead := len(path.TMS)
	tms := append([]bool(nil), path.TMS...)
	tdi := make([]bool, lead, lead+len(bits)+2)
	for i, b := range bits {
		last := i == len(bits)-1
		tms = append(tms, last)
		tdi = append(tdi, b)
		s.sm.Clock(last)
	}
	// EXIT1 -> UPDATE -> RUN-TEST/IDLE
	tms = append(tms, true, false)
	tdi = append(tdi, false, false)
	s.sm.Clock(true)
	s.sm.Clock(false)

	var tdo []byte
	if shift == tap.StateShiftIR {
		tdo, err = s.adapter.ShiftIR(jtag.PackBits(tms), jtag.PackBits(tdi), len(tms))
	} else {
		tdo, err = s.adapter.ShiftDR(jtag.PackBits(tms), jtag.PackBits(tdi), len(tms))
	}
	if err != nil {
		return nil, err
	}
	all := jtag.UnpackBits(tdo, len(tms))
	return all[lead : lead+len(bits)], nil
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
