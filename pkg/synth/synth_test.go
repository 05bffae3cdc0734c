package synth

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
	"github.com/OpenTraceLab/tapdecode/pkg/jtag"
	"github.com/OpenTraceLab/tapdecode/pkg/msp430"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

func TestParseOp(t *testing.T) {
	cases := map[string]Op{
		"reset":            {Kind: OpReset},
		"idle:3":           {Kind: OpIdle, Count: 3},
		"ir:0x83":          {Kind: OpShiftIR, Value: 0x83, Width: 8},
		"IR:ir_addr_16bit": {Kind: OpShiftIR, Value: 0x83, Width: 8},
		"ir:5:4":           {Kind: OpShiftIR, Value: 5, Width: 4},
		"dr:0x1234":        {Kind: OpShiftDR, Value: 0x1234, Width: 16},
		"dr:0xdeadbeef:32": {Kind: OpShiftDR, Value: 0xdeadbeef, Width: 32},
		" dr:1:1 ":         {Kind: OpShiftDR, Value: 1, Width: 1},
	}
	for in, want := range cases {
		got, err := ParseOp(in)
		if err != nil {
			t.Fatalf("ParseOp(%q) returned error: %v", in, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("ParseOp(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestParseOpErrors(t *testing.T) {
	for _, in := range []string{
		"", "jump", "reset:1", "idle", "idle:-1", "idle:x",
		"ir", "ir:zz", "ir:0x1ff", "dr:1:0", "dr:1:65", "dr:1:2:3",
	} {
		if _, err := ParseOp(in); !errors.Is(err, ErrBadOp) {
			t.Fatalf("ParseOp(%q) error = %v, want ErrBadOp", in, err)
		}
	}
	if _, err := ParseScript([]string{"reset", "bogus"}); !errors.Is(err, ErrBadOp) {
		t.Fatalf("ParseScript error = %v, want ErrBadOp", err)
	}
}

func TestSynthesizedTraceDecodes(t *testing.T) {
	ops, err := ParseScript([]string{
		"reset",
		"ir:IR_ADDR_16BIT", "dr:0x1234",
		"idle:4",
		"ir:IR_DATA_16BIT", "dr:0xBEEF",
		"ir:IR_BYPASS", "dr:1:1",
	})
	if err != nil {
		t.Fatalf("ParseScript returned error: %v", err)
	}

	rec := jtag.NewRecorder(jtag.AdapterInfo{Name: "rec"}, jtag.NewMSP430Target())
	s := New(rec)
	captured, err := s.Run(ops)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if s.State() != tap.StateRunTestIdle || rec.State() != tap.StateRunTestIdle {
		t.Fatalf("synth/recorder ended in %s/%s, want RUN-TEST/IDLE", s.State(), rec.State())
	}
	if diff := cmp.Diff([]uint64{0x89, 0, 0x89, 0x1234, 0x89, 0}, captured); diff != "" {
		t.Fatalf("captured mismatch (-want +got):\n%s", diff)
	}

	events, err := decoder.Decode(rec.Frames())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	type summary struct {
		Kind        decoder.Kind
		ToTarget    string
		ToHost      string
		Bits        int
		Instruction string
	}
	got := make([]summary, len(events))
	for i, ev := range events {
		got[i] = summary{ev.Kind, ev.ToTargetHex(), ev.ToHostHex(), ev.Bits, ev.Instruction}
	}
	want := []summary{
		{decoder.KindIR, "0x83", "0x89", 8, msp430.IRAddr16Bit},
		{decoder.KindDR, "0x1234", "0x0", 16, ""},
		{decoder.KindIR, "0x41", "0x89", 8, msp430.IRData16Bit},
		{decoder.KindDR, "0xbeef", "0x1234", 16, ""},
		{decoder.KindIR, "0xff", "0x89", 8, msp430.IRBypass},
		{decoder.KindDR, "0x1", "0x0", 1, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded events mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripArbitraryWidths(t *testing.T) {
	echo := jtag.TargetFunc(func(_ tap.State, tdi bool) bool { return tdi })
	for width := 1; width <= 64; width += 7 {
		value := uint64(0xA5A5A5A5A5A5A5A5)
		if width < 64 {
			value &= 1<<uint(width) - 1
		}
		ops := []Op{
			{Kind: OpShiftDR, Value: value, Width: width},
			{Kind: OpShiftIR, Value: value, Width: width},
		}
		frames, err := Record(ops, 1_000_000, echo)
		if err != nil {
			t.Fatalf("width %d: Record returned error: %v", width, err)
		}
		events, err := decoder.Decode(frames)
		if err != nil {
			t.Fatalf("width %d: Decode returned error: %v", width, err)
		}
		if len(events) != 2 {
			t.Fatalf("width %d: got %d events, want 2", width, len(events))
		}
		want := new(big.Int).SetUint64(value)
		for _, ev := range events {
			if ev.ToTarget.Cmp(want) != 0 || ev.Bits != width {
				t.Fatalf("width %d: %s to target = %s (%d bits), want %#x", width, ev.Kind, ev.ToTargetHex(), ev.Bits, value)
			}
		}
	}
}

func TestRecordUsesSpeed(t *testing.T) {
	frames, err := Record([]Op{{Kind: OpIdle, Count: 2}}, 500_000, nil)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[1].Start != 2*time.Microsecond || frames[1].End != 4*time.Microsecond {
		t.Fatalf("frame 1 = %v-%v, want 2µs-4µs", frames[1].Start, frames[1].End)
	}
	if _, err := Record(nil, 0, nil); err == nil {
		t.Fatalf("expected error for zero speed")
	}
}

func TestRunRejectsEmptyScan(t *testing.T) {
	s := New(jtag.NewRecorder(jtag.AdapterInfo{}, nil))
	if _, err := s.Run([]Op{{Kind: OpShiftDR, Width: 0}}); err == nil {
		t.Fatalf("expected error for zero-width scan")
	}
}
