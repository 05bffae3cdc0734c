package jtag

import (
	"github.com/OpenTraceLab/tapdecode/pkg/msp430"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
)

// Target models the device on the far side of the TAP. Clock is called once
// per TCK with the state the controller is in and the TDI level, and returns
// the TDO level.
type Target interface {
	Clock(state tap.State, tdi bool) (tdo bool)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(state tap.State, tdi bool) bool

func (f TargetFunc) Clock(state tap.State, tdi bool) bool { return f(state, tdi) }

// MSP430JTAGID is returned through the instruction register on every IR scan.
const MSP430JTAGID = 0x89

// MSP430Target is a minimal MSP430 TAP model. IR scans return the JTAG ID
// MSB first while the opcode is shifted in LSB first. DR scans shift MSB first
// in and return the previously written word LSB first. IR_BYPASS selects a
// one-bit bypass register that captures zero.
type MSP430Target struct {
	IR uint8  // latched instruction
	DR uint16 // last word latched by UPDATE-DR

	out    []bool
	irIn   uint8
	irBits int
	drIn   uint16
}

// NewMSP430Target returns a target with IR_BYPASS loaded, as after reset.
func NewMSP430Target() *MSP430Target {
	return &MSP430Target{IR: 0xFF}
}

// Clock implements Target.
func (m *MSP430Target) Clock(state tap.State, tdi bool) bool {
	switch state {
	case tap.StateTestLogicReset:
		m.IR = 0xFF

	case tap.StateCaptureIR:
		m.out = m.out[:0]
		for i := msp430.IRLength - 1; i >= 0; i-- {
			m.out = append(m.out, uint8(MSP430JTAGID)>>uint(i)&1 == 1)
		}
		m.irIn, m.irBits = 0, 0

	case tap.StateShiftIR:
		m.irIn >>= 1
		if tdi {
			m.irIn |= 0x80
		}
		m.irBits++
		return m.pop()

	case tap.StateUpdateIR:
		// Partial scans leave the opcode right-aligned in the shift register.
		if m.irBits < msp430.IRLength {
			m.IR = m.irIn >> uint(msp430.IRLength-m.irBits)
		} else {
			m.IR = m.irIn
		}

	case tap.StateCaptureDR:
		m.out = m.out[:0]
		m.drIn = 0
		if m.IR == 0xFF {
			m.out = append(m.out, false)
			return false
		}
		for i := 0; i < msp430.DRLength; i++ {
			m.out = append(m.out, m.DR&(1<<uint(i)) != 0)
		}

	case tap.StateShiftDR:
		m.drIn = m.drIn<<1 | b2u16(tdi)
		return m.pop()

	case tap.StateUpdateDR:
		if m.IR != 0xFF {
			m.DR = m.drIn
		}
	}
	return false
}

func (m *MSP430Target) pop() bool {
	if len(m.out) == 0 {
		return false
	}
	bit := m.out[0]
	m.out = m.out[1:]
	return bit
}

func b2u16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
