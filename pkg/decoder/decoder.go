package decoder

import (
	"fmt"

	"github.com/OpenTraceLab/tapdecode/pkg/msp430"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

// registerBuffers holds the two directions shifted through one register.
type registerBuffers struct {
	toTarget BitBuffer
	toHost   BitBuffer
}

func (r *registerBuffers) clear() {
	r.toTarget.Clear()
	r.toHost.Clear()
}

func (r *registerBuffers) shift(tdi, tdo bool) {
	r.toTarget.Insert(tdi)
	r.toHost.Insert(tdo)
}

// Decoder reconstructs register updates from a TAP sample stream. It is not
// safe for concurrent use; run one Decoder per stream.
type Decoder struct {
	initial  tap.State
	state    tap.State
	ir       registerBuffers
	dr       registerBuffers
	hook     func(Transition)
	settings Settings
}

// Option configures a Decoder.
type Option func(*Decoder) error

// WithInitialState starts the controller somewhere other than RUN-TEST/IDLE.
func WithInitialState(s tap.State) Option {
	return func(d *Decoder) error {
		if !s.Valid() {
			return fmt.Errorf("%w %d", tap.ErrInvalidState, s)
		}
		d.initial = s
		return nil
	}
}

// WithTransitionHook registers fn to be called after every frame with the
// state change it caused.
func WithTransitionHook(fn func(Transition)) Option {
	return func(d *Decoder) error {
		d.hook = fn
		return nil
	}
}

// WithSettings attaches front-end settings after validating them.
func WithSettings(s Settings) Option {
	return func(d *Decoder) error {
		if err := s.Validate(); err != nil {
			return err
		}
		d.settings = s
		return nil
	}
}

// New creates a Decoder in RUN-TEST/IDLE with empty shift buffers.
func New(opts ...Option) (*Decoder, error) {
	d := &Decoder{
		initial:  tap.StateRunTestIdle,
		settings: DefaultSettings(),
		ir: registerBuffers{
			toTarget: NewBitBuffer(Front),
			toHost:   NewBitBuffer(Back),
		},
		dr: registerBuffers{
			toTarget: NewBitBuffer(Back),
			toHost:   NewBitBuffer(Front),
		},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.state = d.initial
	return d, nil
}

// State reports the controller state after the last processed frame.
func (d *Decoder) State() tap.State {
	return d.state
}

// Settings returns the settings the decoder was created with.
func (d *Decoder) Settings() Settings {
	return d.settings
}

// Reset returns the decoder to its initial state and empties all buffers.
func (d *Decoder) Reset() {
	d.state = d.initial
	d.ir.clear()
	d.dr.clear()
}

// Feed processes one frame and returns the event it completes, if any. It
// panics if the decoder's state has been corrupted; use Step to get an error
// instead.
func (d *Decoder) Feed(f Frame) (Event, bool) {
	ev, ok, err := d.Step(f)
	if err != nil {
		panic(err)
	}
	return ev, ok
}

// Step processes one frame. The buffers act on the state held before the
// frame's TMS bit is applied, because TDI and TDO trail the controller by one
// sample.
func (d *Decoder) Step(f Frame) (Event, bool, error) {
	prev := d.state
	next, err := tap.Transition(prev, f.TMS)
	if err != nil {
		return Event{}, false, err
	}
	d.state = next

	var (
		ev      Event
		emitted bool
	)

	switch prev {
	case tap.StateCaptureDR:
		d.dr.clear()
	case tap.StateShiftDR:
		d.dr.shift(f.TDI, f.TDO)
	case tap.StateUpdateDR:
		ev, emitted = d.finish(KindDR, &d.dr, f), true
	case tap.StateCaptureIR:
		d.ir.clear()
	case tap.StateShiftIR:
		d.ir.shift(f.TDI, f.TDO)
	case tap.StateUpdateIR:
		ev, emitted = d.finish(KindIR, &d.ir, f), true
	}

	if d.hook != nil {
		d.hook(d.transition(f, prev, next))
	}
	return ev, emitted, nil
}

func (d *Decoder) finish(kind Kind, r *registerBuffers, f Frame) Event {
	ev := Event{
		Start:    f.Start,
		End:      f.End,
		Kind:     kind,
		ToTarget: r.toTarget.Value(),
		ToHost:   r.toHost.Value(),
		Bits:     r.toTarget.Len(),
	}
	if kind == KindIR {
		ev.Instruction = msp430.Unknown
		if ev.ToTarget.IsUint64() {
			ev.Instruction = msp430.Lookup(ev.ToTarget.Uint64())
		}
	}
	return ev
}

func (d *Decoder) transition(f Frame, from, to tap.State) Transition {
	t := Transition{Frame: f, From: from, To: to}
	var r *registerBuffers
	switch from.Register() {
	case tap.RegisterIR:
		r = &d.ir
	case tap.RegisterDR:
		r = &d.dr
	default:
		return t
	}
	t.ToTarget = r.toTarget.String()
	t.ToHost = r.toHost.String()
	return t
}
