// Package msp430 holds the JTAG instruction set used by TI MSP430 devices,
// indexed by the 8-bit opcode shifted into the instruction register.
package msp430

import (
	"sort"
	"strings"
)

// Register widths of the MSP430 TAP.
const (
	IRLength = 8
	DRLength = 16
)

// Instruction names as they appear in decoded IR updates.
const (
	IRAddr16Bit       = "IR_ADDR_16BIT"
	IRAddrCapture     = "IR_ADDR_CAPTURE"
	IRDataToAddr      = "IR_DATA_TO_ADDR"
	IRData16Bit       = "IR_DATA_16BIT"
	IRDataQuick       = "IR_DATA_QUICK"
	IRBypass          = "IR_BYPASS"
	IRCntrlSig16Bit   = "IR_CNTRL_SIG_16BIT"
	IRCntrlSigCapture = "IR_CNTRL_SIG_CAPTURE"
	IRCntrlSigRelease = "IR_CNTRL_SIG_RELEASE"
	IRDataPSA         = "IR_DATA_PSA"
	IRShiftOutPSA     = "IR_SHIFT_OUT_PSA"
	IRPrepareBlow     = "IR_PREPARE_BLOW"
	IRExBlow          = "IR_EX_BLOW"
	IRJMBExchange     = "IR_JMB_EXCHANGE"
	Unknown           = "UNKNOWN"
)

var opcodes = map[uint8]string{
	0x83: IRAddr16Bit,
	0x84: IRAddrCapture,
	0x85: IRDataToAddr,
	0x41: IRData16Bit,
	0x43: IRDataQuick,
	0xFF: IRBypass,
	0x13: IRCntrlSig16Bit,
	0x14: IRCntrlSigCapture,
	0x15: IRCntrlSigRelease,
	0x44: IRDataPSA,
	0x46: IRShiftOutPSA,
	0x22: IRPrepareBlow,
	0x24: IRExBlow,
	0x61: IRJMBExchange,
}

// Instruction pairs an opcode with its name.
type Instruction struct {
	Opcode uint8
	Name   string
}

// Lookup returns the instruction name for an IR value. Values outside the
// table, including anything wider than 8 bits, resolve to Unknown.
func Lookup(value uint64) string {
	if value > 0xFF {
		return Unknown
	}
	if name, ok := opcodes[uint8(value)]; ok {
		return name
	}
	return Unknown
}

// Opcode is the reverse of Lookup. Names match case-insensitively.
func Opcode(name string) (uint8, bool) {
	for op, n := range opcodes {
		if strings.EqualFold(n, name) {
			return op, true
		}
	}
	return 0, false
}

// Instructions returns the full table ordered by opcode.
func Instructions() []Instruction {
	out := make([]Instruction, 0, len(opcodes))
	for op, name := range opcodes {
		out = append(out, Instruction{Opcode: op, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Opcode < out[j].Opcode })
	return out
}
