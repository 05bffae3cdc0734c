package jtag

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

var _ Adapter = (*Recorder)(nil)

func TestValidateShiftBuffers(t *testing.T) {
	if _, err := ValidateShiftBuffers(nil, nil, 0); err == nil {
		t.Fatalf("expected error for zero bits")
	}

	_, err := ValidateShiftBuffers([]byte{0x00}, nil, 16)
	if err == nil {
		t.Fatalf("expected error when TMS buffer too small")
	}

	if _, err := ValidateShiftBuffers(nil, []byte{0x01}, 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPackBitsRoundTrip(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, false, false, true}
	packed := PackBits(bits)
	if !bytes.Equal(packed, []byte{0x0D, 0x01}) {
		t.Fatalf("PackBits = %X, want 0D01", packed)
	}
	if diff := cmp.Diff(bits, UnpackBits(packed, len(bits))); diff != "" {
		t.Fatalf("UnpackBits mismatch (-want +got):\n%s", diff)
	}
	if PackBits(nil) != nil || UnpackBits(nil, 0) != nil {
		t.Fatalf("expected nil for empty input")
	}
	if got := UnpackBits([]byte{0xFF}, 10); got[8] || got[9] {
		t.Fatalf("bits past the buffer should read low: %v", got)
	}
}

func TestRecorderRecordsOneFramePerClock(t *testing.T) {
	rec := NewRecorder(AdapterInfo{Name: "rec"}, nil)
	if err := rec.SetSpeed(1_000_000); err != nil {
		t.Fatalf("SetSpeed returned error: %v", err)
	}

	// RTI -> SELECT-DR -> CAPTURE-DR -> SHIFT-DR
	tms := PackBits([]bool{true, false, false})
	tdi := PackBits([]bool{false, true, true})
	if _, err := rec.ShiftDR(tms, tdi, 3); err != nil {
		t.Fatalf("ShiftDR returned error: %v", err)
	}
	if rec.State() != tap.StateShiftDR {
		t.Fatalf("State() = %s, want %s", rec.State(), tap.StateShiftDR)
	}

	want := []decoder.Frame{
		{Start: 0, End: time.Microsecond, TMS: true},
		{Start: time.Microsecond, End: 2 * time.Microsecond, TDI: true},
		{Start: 2 * time.Microsecond, End: 3 * time.Microsecond, TDI: true},
	}
	if diff := cmp.Diff(want, rec.Frames()); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}

	last := rec.LastShift()
	if last.Region != ShiftRegionDR || last.Bits != 3 {
		t.Fatalf("unexpected last shift metadata: %+v", last)
	}
}

func TestRecorderTargetSeesSampledState(t *testing.T) {
	var states []tap.State
	rec := NewRecorder(AdapterInfo{}, TargetFunc(func(s tap.State, tdi bool) bool {
		states = append(states, s)
		return tdi
	}))

	tdo, err := rec.ShiftIR(PackBits([]bool{true, true, false}), PackBits([]bool{false, false, true}), 3)
	if err != nil {
		t.Fatalf("ShiftIR returned error: %v", err)
	}
	if !bytes.Equal(tdo, []byte{0x04}) {
		t.Fatalf("tdo = %X, want 04", tdo)
	}
	want := []tap.State{tap.StateRunTestIdle, tap.StateSelectDRScan, tap.StateSelectIRScan}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("target states mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorderResetsAndSpeed(t *testing.T) {
	rec := NewRecorder(AdapterInfo{MinFrequency: 1_000, MaxFrequency: 10_000_000}, nil)
	if err := rec.SetSpeed(0); err == nil {
		t.Fatalf("expected error for zero speed")
	}
	if err := rec.SetSpeed(10); err == nil {
		t.Fatalf("expected error below minimum speed")
	}
	if err := rec.SetSpeed(20_000_000); err == nil {
		t.Fatalf("expected error above maximum speed")
	}

	if err := rec.ResetTAP(false); err != nil {
		t.Fatalf("ResetTAP returned error: %v", err)
	}
	if err := rec.ResetTAP(true); err != nil {
		t.Fatalf("ResetTAP hard returned error: %v", err)
	}
	if soft, hard := rec.ResetCounts(); soft != 2 || hard != 1 {
		t.Fatalf("ResetCounts = %d soft / %d hard, want 2/1", soft, hard)
	}
	if n := len(rec.Frames()); n != 10 {
		t.Fatalf("recorded %d frames, want 10", n)
	}
	if rec.State() != tap.StateTestLogicReset {
		t.Fatalf("State() = %s, want %s", rec.State(), tap.StateTestLogicReset)
	}
}

func TestRecorderRejectsShortBuffers(t *testing.T) {
	rec := NewRecorder(AdapterInfo{}, nil)
	if _, err := rec.ShiftDR([]byte{0}, nil, 9); err == nil {
		t.Fatalf("expected error for short TMS buffer")
	}
	if len(rec.Frames()) != 0 {
		t.Fatalf("failed shift recorded frames")
	}
}
