// Package decoder turns a sampled JTAG TAP trace into register update events.
//
// The input is a sequence of Frames, one per TCK edge, each carrying the TMS,
// TDI and TDO levels seen on that edge. The Decoder tracks the TAP controller
// through pkg/tap and accumulates the bits shifted through the instruction and
// data registers. When the controller passes through UPDATE-IR or UPDATE-DR an
// Event is produced holding the value shifted toward the target (TDI), the
// value shifted back to the host (TDO) and, for IR updates, the MSP430
// instruction name.
//
// # Timing
//
// TDI and TDO lag the state machine by one sample. Each frame is therefore
// interpreted against the state the controller was in before that frame's TMS
// bit was applied:
//
//	prev := state
//	state = tap.NextState(prev, frame.TMS)
//	switch prev { case CAPTURE-xR: clear; case SHIFT-xR: insert; case UPDATE-xR: emit }
//
// # Bit order
//
// The MSP430 shifts data register words MSB first and instruction opcodes LSB
// first. The decoder reproduces this with per-buffer insertion ends:
//
//	register  TDI (to target)   TDO (to host)
//	DR        appended (Back)   prepended (Front)
//	IR        prepended (Front) appended (Back)
//
// Usage:
//
//	dec, err := decoder.New()
//	if err != nil {
//		return err
//	}
//	for _, f := range frames {
//		if ev, ok := dec.Feed(f); ok {
//			fmt.Println(ev)
//		}
//	}
package decoder
