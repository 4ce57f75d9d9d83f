//go:build rp2040

package buslib

import (
	"errors"
	"machine"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
)

var errAddrPins = errors.New("buslib: at least one address pin is required")

// PIOBurstConfig wires the panel bus to a PIO state machine on the RP2040.
// R, G and B must be three consecutive pins starting at Data; the column
// clock is generated by the state machine on CLK, so the clock phases in the
// encoded waveform are collapsed to one FIFO word per column.
type PIOBurstConfig struct {
	Data machine.Pin // base of R, G, B
	CLK  machine.Pin
	Addr []machine.Pin
	LAT  machine.Pin
	OE   machine.Pin

	Baud uint32        // column clock rate, defaults to 2MHz
	Tick time.Duration // slot timer tick, defaults to one microsecond
}

// PIOBurst implements the matrix hardware collaborators with the data path
// offloaded to a PIO state machine and a DMA channel. Row select and slot
// pacing stay on the CPU, as the bit-banged backend does them.
type PIOBurst struct {
	par  *piolib.ParallelGeneric
	addr []machine.Pin
	lat  machine.Pin
	oe   machine.Pin
	tick time.Duration
	buf  []uint32

	period, match uint16
	handler       func()
}

// NewPIOBurst claims sm and loads the parallel output program on it.
func NewPIOBurst(sm pio.StateMachine, cfg PIOBurstConfig) (*PIOBurst, error) {
	if len(cfg.Addr) == 0 {
		return nil, errAddrPins
	}
	if cfg.Baud == 0 {
		cfg.Baud = 2_000_000
	}
	if cfg.Tick == 0 {
		cfg.Tick = time.Microsecond
	}

	par, err := piolib.NewParallelGeneric(sm, piolib.ParallelGenericConfig{
		Baud:      cfg.Baud,
		DataBase:  cfg.Data,
		Clock:     cfg.CLK,
		BusWidth:  3,
		ShiftBits: 3,
	})
	if err != nil {
		return nil, err
	}
	if err := par.EnableDMA(true); err != nil {
		return nil, err
	}

	p := &PIOBurst{
		par:    par,
		addr:   cfg.Addr,
		lat:    cfg.LAT,
		oe:     cfg.OE,
		tick:   cfg.Tick,
		period: 1,
	}
	out := machine.PinConfig{Mode: machine.PinOutput}
	for _, pin := range p.addr {
		pin.Configure(out)
	}
	if p.lat != machine.NoPin {
		p.lat.Configure(out)
		p.lat.Low()
	}
	if p.oe != machine.NoPin {
		p.oe.Configure(out)
		p.oe.High() // blanked until the first slot runs
	}
	return p, nil
}

// Stream pushes one slot's columns through the state machine. The encoded
// waveform carries an explicit clock phase per column; the state machine
// side-sets the clock itself, so only the clock-low words are sent.
func (p *PIOBurst) Stream(words []uint16) {
	p.buf = p.buf[:0]
	for i := 0; i < len(words); i += 2 {
		p.buf = append(p.buf, uint32(words[i]&(matrix.BusR|matrix.BusG|matrix.BusB)))
	}
	p.par.Tx32(p.buf)
}

// Load stores the next slot duration for the pacing goroutine.
func (p *PIOBurst) Load(period, match uint16) {
	if period == 0 {
		period = 1
	}
	p.period, p.match = period, match
}

// Select presents a row code on the address pins and strobes the latch.
func (p *PIOBurst) Select(code uint8) {
	for i, pin := range p.addr {
		pin.Set(code>>uint(i)&1 != 0)
	}
	if p.lat != machine.NoPin {
		p.lat.High()
		p.lat.Low()
	}
}

// Attach registers the refresh handler and starts slot pacing.
func (p *PIOBurst) Attach(onCompletion func()) {
	p.handler = onCompletion
	go p.run()
}

func (p *PIOBurst) run() {
	for {
		period, match := p.period, p.match
		if p.oe != machine.NoPin {
			p.oe.High()
		}
		time.Sleep(time.Duration(period-match) * p.tick)
		if p.oe != machine.NoPin {
			p.oe.Low()
		}
		time.Sleep(time.Duration(match) * p.tick)
		p.handler()
	}
}
