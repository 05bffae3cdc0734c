package jtag

import "fmt"

// AdapterInfo describes capabilities reported by a JTAG adapter implementation.
type AdapterInfo struct {
	Name         string
	Vendor       string
	Model        string
	MinFrequency int // Hertz
	MaxFrequency int // Hertz
	Notes        string
}

// Adapter abstracts something that can clock bits through a Test Access Port.
// TMS, TDI and the returned TDO are packed LSB first, bit i living in
// buf[i/8] & (1 << (i%8)).
type Adapter interface {
	Info() (AdapterInfo, error)
	ShiftIR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ShiftDR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ResetTAP(hard bool) error
	SetSpeed(hz int) error
}

// ValidateShiftBuffers ensures TMS/TDIs are present when bits exceed their
// lengths and returns the number of bytes required to accommodate the bit
// length.
func ValidateShiftBuffers(tms, tdi []byte, bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	required := (bits + 7) / 8
	if len(tms) > 0 && len(tms) < required {
		return 0, fmt.Errorf("jtag: tms buffer too short, need %d bytes", required)
	}
	if len(tdi) > 0 && len(tdi) < required {
		return 0, fmt.Errorf("jtag: tdi buffer too short, need %d bytes", required)
	}
	return required, nil
}

// PackBits packs bools LSB first into bytes.
func PackBits(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	buf := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return buf
}

// UnpackBits is the inverse of PackBits. Missing bytes read as zero.
func UnpackBits(buf []byte, bits int) []bool {
	if bits <= 0 {
		return nil
	}
	out := make([]bool, bits)
	for i := range out {
		if i/8 < len(buf) {
			out[i] = buf[i/8]&(1<<(uint(i)%8)) != 0
		}
	}
	return out
}
