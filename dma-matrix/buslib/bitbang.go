//go:build tinygo

package buslib

import (
	"errors"
	"machine"
	"time"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
)

var errMissingPin = errors.New("buslib: data, clock and address pins are required")

// Pins assigns the panel bus. R, G, B and CLK carry the bitstream words; Addr
// holds the row-select mux lines, least significant first. LAT and OE are
// optional: LAT is strobed when a new row address is presented, OE blanks the
// panel during the head of each slot. Set unused optional pins to
// machine.NoPin.
type Pins struct {
	R, G, B machine.Pin
	CLK     machine.Pin
	Addr    []machine.Pin
	LAT     machine.Pin
	OE      machine.Pin
}

// BitBang implements the matrix hardware collaborators on plain GPIO pins,
// for boards without a usable DMA path. Slot pacing comes from a goroutine
// that sleeps the loaded binary-weighted period and then delivers the
// completion event; the refresh engine's per-slot calls all run inside that
// event, so the fields below need no synchronization.
type BitBang struct {
	pins Pins
	tick time.Duration

	period, match uint16
	handler       func()
}

// NewBitBang configures the pins as outputs and returns a bus whose timer
// tick lasts the given duration. The returned value serves as the
// TransferEngine, SlotTimer, AddressPath and EventSource of a matrix Config.
func NewBitBang(pins Pins, tick time.Duration) (*BitBang, error) {
	if pins.R == machine.NoPin || pins.G == machine.NoPin || pins.B == machine.NoPin ||
		pins.CLK == machine.NoPin || len(pins.Addr) == 0 {
		return nil, errMissingPin
	}
	out := machine.PinConfig{Mode: machine.PinOutput}
	for _, p := range []machine.Pin{pins.R, pins.G, pins.B, pins.CLK} {
		p.Configure(out)
	}
	for _, p := range pins.Addr {
		p.Configure(out)
	}
	if pins.LAT != machine.NoPin {
		pins.LAT.Configure(out)
	}
	if pins.OE != machine.NoPin {
		pins.OE.Configure(out)
		pins.OE.High() // blanked until the first slot runs
	}
	return &BitBang{pins: pins, tick: tick, period: 1}, nil
}

// Stream clocks one slot's words onto the bus.
func (b *BitBang) Stream(words []uint16) {
	for _, w := range words {
		b.pins.R.Set(w&matrix.BusR != 0)
		b.pins.G.Set(w&matrix.BusG != 0)
		b.pins.B.Set(w&matrix.BusB != 0)
		b.pins.CLK.Set(w&matrix.BusCLK != 0)
	}
}

// Load stores the next slot duration for the pacing goroutine.
func (b *BitBang) Load(period, match uint16) {
	if period == 0 {
		period = 1
	}
	b.period, b.match = period, match
}

// Select presents a row code on the address lines and strobes the latch.
func (b *BitBang) Select(code uint8) {
	for i, p := range b.pins.Addr {
		p.Set(code>>uint(i)&1 != 0)
	}
	if b.pins.LAT != machine.NoPin {
		b.pins.LAT.High()
		b.pins.LAT.Low()
	}
}

// Attach registers the refresh handler and starts slot pacing.
func (b *BitBang) Attach(onCompletion func()) {
	b.handler = onCompletion
	go b.run()
}

func (b *BitBang) run() {
	for {
		period, match := b.period, b.match
		// Output is held off for the blanking window at the head of the
		// slot, then enabled until the period expires.
		if b.pins.OE != machine.NoPin {
			b.pins.OE.High()
		}
		time.Sleep(time.Duration(period-match) * b.tick)
		if b.pins.OE != machine.NoPin {
			b.pins.OE.Low()
		}
		time.Sleep(time.Duration(match) * b.tick)
		b.handler()
	}
}
