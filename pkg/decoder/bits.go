package decoder

import (
	"math/big"
	"strings"
)

// End selects which side of a BitBuffer new bits are inserted at.
type End uint8

const (
	// Back appends, so the first inserted bit ends up most significant.
	Back End = iota
	// Front prepends, so the last inserted bit ends up most significant.
	Front
)

// BitBuffer is a growable bit sequence read most-significant bit first.
type BitBuffer struct {
	end  End
	bits []bool
}

// NewBitBuffer returns an empty buffer inserting at the given end.
func NewBitBuffer(end End) BitBuffer {
	return BitBuffer{end: end}
}

// Insert adds one bit at the buffer's insertion end.
func (b *BitBuffer) Insert(bit bool) {
	if b.end == Back {
		b.bits = append(b.bits, bit)
		return
	}
	b.bits = append(b.bits, false)
	copy(b.bits[1:], b.bits)
	b.bits[0] = bit
}

// Clear empties the buffer, keeping its insertion end.
func (b *BitBuffer) Clear() {
	b.bits = b.bits[:0]
}

// Len reports the number of bits held.
func (b *BitBuffer) Len() int {
	return len(b.bits)
}

// Bits returns a copy of the sequence, most significant bit first.
func (b *BitBuffer) Bits() []bool {
	return append([]bool(nil), b.bits...)
}

// Value weighs the sequence positionally. An empty buffer is zero.
func (b *BitBuffer) Value() *big.Int {
	v := new(big.Int)
	for _, bit := range b.bits {
		v.Lsh(v, 1)
		if bit {
			v.SetBit(v, 0, 1)
		}
	}
	return v
}

// String renders the sequence as binary digits, MSB first.
func (b *BitBuffer) String() string {
	var sb strings.Builder
	sb.Grow(len(b.bits))
	for _, bit := range b.bits {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
