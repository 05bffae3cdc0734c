package synth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/tapdecode/pkg/msp430"
)

// ErrBadOp is wrapped by ParseOp failures.
var ErrBadOp = errors.New("synth: bad operation")

// OpKind enumerates script operations.
type OpKind uint8

const (
	OpReset OpKind = iota
	OpIdle
	OpShiftIR
	OpShiftDR
)

func (k OpKind) String() string {
	switch k {
	case OpReset:
		return "reset"
	case OpIdle:
		return "idle"
	case OpShiftIR:
		return "ir"
	case OpShiftDR:
		return "dr"
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// Op is one step of a synthesis script.
type Op struct {
	Kind  OpKind
	Value uint64 // shifted value for ir/dr
	Width int    // register width for ir/dr
	Count int    // cycles for idle
}

func (o Op) String() string {
	switch o.Kind {
	case OpReset:
		return "reset"
	case OpIdle:
		return fmt.Sprintf("idle:%d", o.Count)
	default:
		return fmt.Sprintf("%s:%#x:%d", o.Kind, o.Value, o.Width)
	}
}

// ParseScript parses each argument with ParseOp.
func ParseScript(args []string) ([]Op, error) {
	ops := make([]Op, 0, len(args))
	for _, arg := range args {
		op, err := ParseOp(arg)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ParseOp parses one operation:
//
//	reset                 five TMS=1 clocks, then RUN-TEST/IDLE
//	idle:N                N clocks in RUN-TEST/IDLE
//	ir:VALUE[:WIDTH]      IR scan; VALUE may be an MSP430 instruction name
//	dr:VALUE[:WIDTH]      DR scan
//
// Widths default to the MSP430 register lengths.
func ParseOp(s string) (Op, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	kind := strings.ToLower(parts[0])

	switch kind {
	case "reset":
		if len(parts) != 1 {
			return Op{}, fmt.Errorf("%w: %q takes no arguments", ErrBadOp, s)
		}
		return Op{Kind: OpReset}, nil

	case "idle":
		if len(parts) != 2 {
			return Op{}, fmt.Errorf("%w: %q, want idle:N", ErrBadOp, s)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return Op{}, fmt.Errorf("%w: %q: invalid cycle count", ErrBadOp, s)
		}
		return Op{Kind: OpIdle, Count: n}, nil

	case "ir", "dr":
		if len(parts) < 2 || len(parts) > 3 {
			return Op{}, fmt.Errorf("%w: %q, want %s:VALUE[:WIDTH]", ErrBadOp, s, kind)
		}
		op := Op{Kind: OpShiftDR, Width: msp430.DRLength}
		if kind == "ir" {
			op = Op{Kind: OpShiftIR, Width: msp430.IRLength}
		}

		if opcode, ok := msp430.Opcode(parts[1]); ok && kind == "ir" {
			op.Value = uint64(opcode)
		} else {
			v, err := strconv.ParseUint(parts[1], 0, 64)
			if err != nil {
				return Op{}, fmt.Errorf("%w: %q: invalid value", ErrBadOp, s)
			}
			op.Value = v
		}

		if len(parts) == 3 {
			w, err := strconv.Atoi(parts[2])
			if err != nil {
				return Op{}, fmt.Errorf("%w: %q: invalid width", ErrBadOp, s)
			}
			op.Width = w
		}
		if op.Width < 1 || op.Width > 64 {
			return Op{}, fmt.Errorf("%w: %q: width must be 1..64", ErrBadOp, s)
		}
		if op.Width < 64 && op.Value>>uint(op.Width) != 0 {
			return Op{}, fmt.Errorf("%w: %q: value does not fit in %d bits", ErrBadOp, s, op.Width)
		}
		return op, nil
	}
	return Op{}, fmt.Errorf("%w: unknown operation %q", ErrBadOp, s)
}
