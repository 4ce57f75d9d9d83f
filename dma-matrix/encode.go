package matrix

import (
	"math"
	"math/bits"
)

// Bitstream word layout. Each word is one sample presented on the GPIO bus
// feeding the current-controlled shift registers: three serial data lines and
// the shift clock, baked into the waveform so the transfer engine needs no
// side channel. Backends decode words with these masks.
const (
	BusR   = 1 << 0
	BusG   = 1 << 1
	BusB   = 1 << 2
	BusCLK = 1 << 3
)

// encodeInto drains the pixel grid into buf as a BCM bitstream for every
// page. Each call fully overwrites buf. It must not run concurrently with
// another encode on the same buffer; Show enforces that by serializing
// publishes through the buffer pair.
func (m *Matrix) encodeInto(buf []uint16) {
	maxTarget := float64(uint32(1)<<m.bitDepth() - 1)
	scale := float64(m.brightness) * maxTarget / 255
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			px := m.pixels[row*m.cols+col]
			tr := uint32(math.Round(float64(px.R) * scale))
			tg := uint32(math.Round(float64(px.G) * scale))
			tb := uint32(math.Round(float64(px.B) * scale))
			for page := 0; page < m.pages; page++ {
				vr := m.pageValue(tr, page)
				vg := m.pageValue(tg, page)
				vb := m.pageValue(tb, page)
				for bit := 0; bit < m.pwmBits; bit++ {
					var word uint16
					if vr>>bit&1 != 0 {
						word |= BusR
					}
					if vg>>bit&1 != 0 {
						word |= BusG
					}
					if vb>>bit&1 != 0 {
						word |= BusB
					}
					i := m.slotOffset(page, row, bit) + col*2
					buf[i] = word
					buf[i+1] = word | BusCLK
				}
			}
		}
	}
}

// pageValue reduces a bitDepth-wide target intensity to the pwmBits-wide
// value rendered on one page. The low pagedBits of the target select how many
// of the pages get rounded up; which pages those are follows the bit-reversed
// page order, so consecutive pages alternate instead of clumping. The mean
// over all pages reconstructs the target to within one LSB.
func (m *Matrix) pageValue(target uint32, page int) uint32 {
	v := target >> m.pagedBits
	frac := target & uint32(m.pages-1)
	if m.pagedBits > 0 && uint32(bits.Reverse8(uint8(page))>>(8-m.pagedBits)) < frac {
		v++
	}
	if max := uint32(1)<<m.pwmBits - 1; v > max {
		v = max
	}
	return v
}

// slotOffset returns the index of the first bitstream word of the
// (page, row, bit) slot. A slot holds two words per column, clock low then
// clock high.
func (m *Matrix) slotOffset(page, row, bit int) int {
	return ((page*m.rows+row)*m.pwmBits + bit) * m.cols * 2
}
