package decoder

import (
	"fmt"
	"math/big"
	"time"

	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

// Frame is one sample of the TAP signals, already aligned to a TCK edge by the
// capture stage. Start and End are offsets from the beginning of the capture.
type Frame struct {
	Start time.Duration
	End   time.Duration
	TMS   bool // mode select, drives the state machine
	TDI   bool // data toward the target
	TDO   bool // data back to the host
}

// Kind identifies the register an Event reports on.
type Kind string

const (
	KindIR Kind = "ir"
	KindDR Kind = "dr"
)

// Event is a completed register update.
type Event struct {
	Start time.Duration
	End   time.Duration
	Kind  Kind

	// ToTarget is the value shifted in on TDI, ToHost the value shifted out on
	// TDO. Both are non-nil.
	ToTarget *big.Int
	ToHost   *big.Int
	Bits     int

	// Instruction is set for KindIR only.
	Instruction string
}

// Type returns the result type name: "update-ir" or "update-dr".
func (e Event) Type() string {
	return "update-" + string(e.Kind)
}

// ToTargetHex formats ToTarget as 0x-prefixed lower-case hex.
func (e Event) ToTargetHex() string {
	return hexString(e.ToTarget)
}

// ToHostHex formats ToHost as 0x-prefixed lower-case hex.
func (e Event) ToHostHex() string {
	return hexString(e.ToHost)
}

// Fields returns the event payload keyed the way downstream renderers expect.
func (e Event) Fields() map[string]string {
	fields := map[string]string{
		"reg":       string(e.Kind),
		"to_target": e.ToTargetHex(),
		"to_host":   e.ToHostHex(),
	}
	if e.Kind == KindIR {
		fields["instruction"] = e.Instruction
	}
	return fields
}

func (e Event) String() string {
	switch e.Kind {
	case KindIR:
		return fmt.Sprintf("UPDATE-IR TDI=%s TDO=%s %s", e.ToTargetHex(), e.ToHostHex(), e.Instruction)
	default:
		return fmt.Sprintf("UPDATE-DR TDI=%s TDO=%s", e.ToTargetHex(), e.ToHostHex())
	}
}

func hexString(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return fmt.Sprintf("%#x", v)
}

// Transition describes a single processed frame: the state it was sampled in,
// the state it moved the controller to and the contents of the shift buffers
// belonging to the sampled state's register afterwards.
type Transition struct {
	Frame    Frame
	From     tap.State
	To       tap.State
	ToTarget string
	ToHost   string
}

func (t Transition) String() string {
	return fmt.Sprintf("%s->%s TDI=%s TDO=%s", t.From, t.To, t.ToTarget, t.ToHost)
}
