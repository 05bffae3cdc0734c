package tap

import (
	"errors"
	"fmt"
	"strings"
)

// State represents one of the 16 defined IEEE 1149.1 TAP controller states.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR

	numStates
)

// ErrInvalidState is returned by the checked helpers when a value outside the
// 16 defined states is supplied.
var ErrInvalidState = errors.New("tap: invalid state")

var stateNames = [numStates]string{
	StateTestLogicReset: "TEST-LOGIC-RESET",
	StateRunTestIdle:    "RUN-TEST/IDLE",
	StateSelectDRScan:   "SELECT-DR-SCAN",
	StateCaptureDR:      "CAPTURE-DR",
	StateShiftDR:        "SHIFT-DR",
	StateExit1DR:        "EXIT1-DR",
	StatePauseDR:        "PAUSE-DR",
	StateExit2DR:        "EXIT2-DR",
	StateUpdateDR:       "UPDATE-DR",
	StateSelectIRScan:   "SELECT-IR-SCAN",
	StateCaptureIR:      "CAPTURE-IR",
	StateShiftIR:        "SHIFT-IR",
	StateExit1IR:        "EXIT1-IR",
	StatePauseIR:        "PAUSE-IR",
	StateExit2IR:        "EXIT2-IR",
	StateUpdateIR:       "UPDATE-IR",
}

// Compact names, accepted by ParseState alongside the IEEE spelling.
var shortNames = [numStates]string{
	StateTestLogicReset: "TestLogicReset",
	StateRunTestIdle:    "RunTestIdle",
	StateSelectDRScan:   "SelectDRScan",
	StateCaptureDR:      "CaptureDR",
	StateShiftDR:        "ShiftDR",
	StateExit1DR:        "Exit1DR",
	StatePauseDR:        "PauseDR",
	StateExit2DR:        "Exit2DR",
	StateUpdateDR:       "UpdateDR",
	StateSelectIRScan:   "SelectIRScan",
	StateCaptureIR:      "CaptureIR",
	StateShiftIR:        "ShiftIR",
	StateExit1IR:        "Exit1IR",
	StatePauseIR:        "PauseIR",
	StateExit2IR:        "Exit2IR",
	StateUpdateIR:       "UpdateIR",
}

func (s State) String() string {
	if s.Valid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Valid reports whether s is one of the 16 TAP states.
func (s State) Valid() bool {
	return s < numStates
}

// AllStates returns the 16 states in declaration order.
func AllStates() []State {
	out := make([]State, numStates)
	for i := range out {
		out[i] = State(i)
	}
	return out
}

// ParseState resolves a state name. Both the IEEE spelling ("RUN-TEST/IDLE")
// and the compact form ("RunTestIdle") are accepted, case-insensitively.
func ParseState(name string) (State, error) {
	name = strings.TrimSpace(name)
	for i := State(0); i < numStates; i++ {
		if strings.EqualFold(name, stateNames[i]) || strings.EqualFold(name, shortNames[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown name %q", ErrInvalidState, name)
}

// Register identifies which shiftable register a state belongs to.
type Register uint8

const (
	RegisterNone Register = iota
	RegisterDR
	RegisterIR
)

func (r Register) String() string {
	switch r {
	case RegisterDR:
		return "dr"
	case RegisterIR:
		return "ir"
	default:
		return "none"
	}
}

// Register reports the register column of the state diagram s sits in.
// TEST-LOGIC-RESET and RUN-TEST/IDLE belong to neither.
func (s State) Register() Register {
	switch {
	case s >= StateSelectDRScan && s <= StateUpdateDR:
		return RegisterDR
	case s >= StateSelectIRScan && s <= StateUpdateIR:
		return RegisterIR
	default:
		return RegisterNone
	}
}

// IsCapture reports whether s is CAPTURE-DR or CAPTURE-IR.
func (s State) IsCapture() bool { return s == StateCaptureDR || s == StateCaptureIR }

// IsShift reports whether s is SHIFT-DR or SHIFT-IR.
func (s State) IsShift() bool { return s == StateShiftDR || s == StateShiftIR }

// IsUpdate reports whether s is UPDATE-DR or UPDATE-IR.
func (s State) IsUpdate() bool { return s == StateUpdateDR || s == StateUpdateIR }

// Sequence captures the TMS drive pattern and the sequence of states that result
// from applying that pattern to the TAP controller.
type Sequence struct {
	TMS    []bool
	States []State
}

type stateTransitions struct {
	onZero State
	onOne  State
}

var transitions = [numStates]stateTransitions{
	StateTestLogicReset: {onZero: StateRunTestIdle, onOne: StateTestLogicReset},
	StateRunTestIdle:    {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
	StateSelectDRScan:   {onZero: StateCaptureDR, onOne: StateSelectIRScan},
	StateCaptureDR:      {onZero: StateShiftDR, onOne: StateExit1DR},
	StateShiftDR:        {onZero: StateShiftDR, onOne: StateExit1DR},
	StateExit1DR:        {onZero: StatePauseDR, onOne: StateUpdateDR},
	StatePauseDR:        {onZero: StatePauseDR, onOne: StateExit2DR},
	StateExit2DR:        {onZero: StateShiftDR, onOne: StateUpdateDR},
	StateUpdateDR:       {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
	StateSelectIRScan:   {onZero: StateCaptureIR, onOne: StateTestLogicReset},
	StateCaptureIR:      {onZero: StateShiftIR, onOne: StateExit1IR},
	StateShiftIR:        {onZero: StateShiftIR, onOne: StateExit1IR},
	StateExit1IR:        {onZero: StatePauseIR, onOne: StateUpdateIR},
	StatePauseIR:        {onZero: StatePauseIR, onOne: StateExit2IR},
	StateExit2IR:        {onZero: StateShiftIR, onOne: StateUpdateIR},
	StateUpdateIR:       {onZero: StateRunTestIdle, onOne: StateSelectDRScan},
}

// NextState returns the next TAP state after clocking TCK with the provided TMS
// value. It panics if an invalid state is supplied, which should never happen
// when interacting through the exported API.
func NextState(current State, tms bool) State {
	if !current.Valid() {
		panic(fmt.Sprintf("tap: unhandled state %d", current))
	}
	row := transitions[current]
	if tms {
		return row.onOne
	}
	return row.onZero
}

// Transition is the checked form of NextState for states that arrive from
// outside the package, e.g. a user-supplied initial state.
func Transition(current State, tms bool) (State, error) {
	if !current.Valid() {
		return current, fmt.Errorf("%w %d", ErrInvalidState, current)
	}
	return NextState(current, tms), nil
}

// StateMachine tracks the TAP controller state locally. It does not perform any
// I/O; instead it produces the sequences of TMS bits needed so a hardware
// adapter can be instructed separately.
type StateMachine struct {
	state State
}

// NewStateMachine creates a TAP state machine initialized to Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// NewStateMachineAt creates a state machine already sitting in the given state.
func NewStateMachineAt(state State) (*StateMachine, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w %d", ErrInvalidState, state)
	}
	return &StateMachine{state: state}, nil
}

// State reports the current TAP state tracked by the machine.
func (m *StateMachine) State() State {
	return m.state
}

// Clock advances the machine one TCK cycle with the provided TMS bit and
// returns the new state.
func (m *StateMachine) Clock(tms bool) State {
	next := NextState(m.state, tms)
	m.state = next
	return next
}

// Reset applies the IEEE recommendation of clocking five consecutive TMS=1
// cycles. It returns the sequence for convenience so it can be forwarded to a
// hardware adapter.
func (m *StateMachine) Reset() Sequence {
	seq := Sequence{
		TMS:    make([]bool, 5),
		States: make([]State, 6),
	}
	seq.States[0] = m.state
	for i := 0; i < 5; i++ {
		seq.TMS[i] = true
		seq.States[i+1] = m.Clock(true)
	}
	return seq
}

// GoTo computes the minimal sequence of TMS values needed to reach the target
// state from the current state. It updates the machine as a side effect and
// returns the generated sequence.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := ShortestPath(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	for _, bit := range path.TMS {
		m.Clock(bit)
	}
	return path, nil
}

// ShortestPath uses BFS across the TAP state diagram to find the shortest set of
// transitions between two states. The machine is strongly connected, so a path
// always exists between valid states.
func ShortestPath(from, to State) (Sequence, error) {
	if !from.Valid() {
		return Sequence{}, fmt.Errorf("%w: start state %d", ErrInvalidState, from)
	}
	if !to.Valid() {
		return Sequence{}, fmt.Errorf("%w: target state %d", ErrInvalidState, to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	type node struct {
		state  State
		tms    []bool
		states []State
	}

	queue := []node{{
		state:  from,
		states: []State{from},
	}}
	visited := map[State]struct{}{from: {}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, bit := range []bool{false, true} {
			next := NextState(current.state, bit)
			if _, seen := visited[next]; seen {
				continue
			}

			newTMS := append(append([]bool{}, current.tms...), bit)
			newStates := append(append([]State{}, current.states...), next)

			if next == to {
				return Sequence{
					TMS:    newTMS,
					States: newStates,
				}, nil
			}

			visited[next] = struct{}{}
			queue = append(queue, node{
				state:  next,
				tms:    newTMS,
				states: newStates,
			})
		}
	}

	return Sequence{}, fmt.Errorf("tap: no path from %s to %s", from, to)
}
