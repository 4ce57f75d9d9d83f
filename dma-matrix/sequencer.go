package matrix

// refresh is the per-completion-event transition of the output state machine.
// It is invoked only through the EventSource registration made by Begin and
// runs in the hardware-event context, logically concurrent with (and on real
// hardware preemptive over) the pixel-writing calls. It never blocks and
// touches nothing the other context writes, except through bufferPair.
//
// State is the (page, slot) pair, where slot walks the address table: one
// entry per (row, PWM-bit) combination plus the terminal sentinel. After the
// sentinel of the last page the state machine is at the full-cycle boundary
// and a pending publish may be swapped in; the next cycle then reads the new
// front buffer.
func (m *Matrix) refresh() {
	m.slot++
	if m.slot >= len(m.addr) {
		if m.page == m.pages-1 {
			m.bufs.trySwap()
		}
		m.page++
		if m.page == m.pages {
			m.page = 0
		}
		m.slot = 0
	}
	m.emitSlot()
}

// emitSlot presents the current slot to the peripherals: the row-select code
// on the address lines, the binary-weighted duration to the timer, and the
// slot's slice of the front bitstream buffer to the transfer engine. The
// terminal sentinel carries no data burst.
func (m *Matrix) emitSlot() {
	s := m.slot
	m.addrPath.Select(m.addr[s])
	m.timer.Load(m.period[s], m.match[s])
	if s == len(m.addr)-1 {
		return
	}
	row := s / m.pwmBits
	bit := s % m.pwmBits
	off := m.slotOffset(m.page, row, bit)
	m.engine.Stream(m.bufs.frontBuf()[off : off+m.cols*2])
}
