package jtag

import (
	"fmt"
	"time"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

// ShiftRegion identifies whether a shift operation targets the instruction or
// data register.
type ShiftRegion uint8

const (
	ShiftRegionIR ShiftRegion = iota
	ShiftRegionDR
)

func (r ShiftRegion) String() string {
	if r == ShiftRegionIR {
		return "ir"
	}
	return "dr"
}

// ShiftOp captures the last shift invocation for inspection within tests.
type ShiftOp struct {
	Region ShiftRegion
	TMS    []byte
	TDI    []byte
	Bits   int
}

// DefaultSpeedHz is the TCK rate a Recorder starts with.
const DefaultSpeedHz = 100_000

// Recorder is an Adapter that drives no hardware. Every TCK it is asked to
// clock becomes one decoder.Frame, so the recorded trace is exactly what a
// logic analyzer on the TAP pins would have sampled. TDO comes from the
// attached Target.
type Recorder struct {
	InfoData AdapterInfo

	target Target
	sm     *tap.StateMachine
	period time.Duration
	now    time.Duration
	frames []decoder.Frame

	lastShift ShiftOp
	resets    int
	hardReset int
}

// NewRecorder creates a recorder whose TAP sits in RUN-TEST/IDLE. A nil target
// holds TDO low.
func NewRecorder(info AdapterInfo, target Target) *Recorder {
	if target == nil {
		target = TargetFunc(func(tap.State, bool) bool { return false })
	}
	sm, _ := tap.NewStateMachineAt(tap.StateRunTestIdle)
	return &Recorder{
		InfoData: info,
		target:   target,
		sm:       sm,
		period:   time.Second / DefaultSpeedHz,
	}
}

// Frames returns a copy of everything clocked so far.
func (r *Recorder) Frames() []decoder.Frame {
	return append([]decoder.Frame(nil), r.frames...)
}

// State reports the TAP state after the last recorded clock.
func (r *Recorder) State() tap.State {
	return r.sm.State()
}

// LastShift returns a copy of the most recent shift request.
func (r *Recorder) LastShift() ShiftOp {
	return ShiftOp{
		Region: r.lastShift.Region,
		TMS:    append([]byte(nil), r.lastShift.TMS...),
		TDI:    append([]byte(nil), r.lastShift.TDI...),
		Bits:   r.lastShift.Bits,
	}
}

// ResetCounts reports how many resets have been requested (soft as total,
// hardReset as subset).
func (r *Recorder) ResetCounts() (soft, hard int) {
	return r.resets, r.hardReset
}

func (r *Recorder) Info() (AdapterInfo, error) {
	return r.InfoData, nil
}

func (r *Recorder) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return r.shift(ShiftRegionIR, tms, tdi, bits)
}

func (r *Recorder) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return r.shift(ShiftRegionDR, tms, tdi, bits)
}

// ResetTAP clocks five TMS=1 cycles. TRST is not part of the recorded signal
// set, so a hard reset looks the same in the trace.
func (r *Recorder) ResetTAP(hard bool) error {
	r.resets++
	if hard {
		r.hardReset++
	}
	for i := 0; i < 5; i++ {
		r.clock(true, false)
	}
	return nil
}

// SetSpeed sets the TCK rate, which fixes the duration of each recorded frame.
func (r *Recorder) SetSpeed(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	if lo := r.InfoData.MinFrequency; lo > 0 && hz < lo {
		return fmt.Errorf("jtag: speed %dHz below adapter minimum %dHz", hz, lo)
	}
	if hi := r.InfoData.MaxFrequency; hi > 0 && hz > hi {
		return fmt.Errorf("jtag: speed %dHz above adapter maximum %dHz", hz, hi)
	}
	r.period = time.Second / time.Duration(hz)
	return nil
}

func (r *Recorder) shift(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
	if _, err := ValidateShiftBuffers(tms, tdi, bits); err != nil {
		return nil, err
	}

	r.lastShift = ShiftOp{
		Region: region,
		TMS:    append([]byte(nil), tms...),
		TDI:    append([]byte(nil), tdi...),
		Bits:   bits,
	}

	tmsBits := UnpackBits(tms, bits)
	tdiBits := UnpackBits(tdi, bits)
	tdo := make([]bool, bits)
	for i := 0; i < bits; i++ {
		tdo[i] = r.clock(tmsBits[i], tdiBits[i])
	}
	return PackBits(tdo), nil
}

// clock records one TCK. The target sees the state the TAP is in while the
// edge is sampled, before TMS moves it on.
func (r *Recorder) clock(tms, tdi bool) bool {
	tdo := r.target.Clock(r.sm.State(), tdi)
	r.frames = append(r.frames, decoder.Frame{
		Start: r.now,
		End:   r.now + r.period,
		TMS:   tms,
		TDI:   tdi,
		TDO:   tdo,
	})
	r.now += r.period
	r.sm.Clock(tms)
	return tdo
}
