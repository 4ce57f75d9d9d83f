package matrix

// The refresh engine does not talk to hardware registers itself. It drives
// the four narrow interfaces below, implemented by the backends in buslib
// (and by fakes in the package tests). All methods are called from the
// completion-event context and must not block.

// TransferEngine streams bitstream words onto the shift-register data bus.
// Stream arms the transfer of one (row, PWM-bit) slot's worth of words and
// returns immediately; the words slice aliases the front buffer and is valid
// until the next completion event.
type TransferEngine interface {
	Stream(words []uint16)
}

// SlotTimer paces the display slots. Load presents the next binary-weighted
// period and compare pair; the peripheral signals a completion event at the
// end of the period.
type SlotTimer interface {
	Load(period, match uint16)
}

// AddressPath presents a row-select code on the address mux lines.
type AddressPath interface {
	Select(code uint8)
}

// EventSource delivers hardware completion events. Attach registers the
// handler the hardware invokes once per completed slot; it is called exactly
// once, by Begin. The handler is the only entry into the refresh state
// machine, which is why it is handed over here rather than exported.
type EventSource interface {
	Attach(onCompletion func())
}
