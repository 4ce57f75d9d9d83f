//go:build rp2040

// Command plasma animates a color wash on a panel driven through a PIO
// state machine, with row select and slot pacing on the CPU.
package main

import (
	"machine"
	"math"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
	"github.com/blinkinlabs/matrix/dma-matrix/buslib"
)

func main() {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		panic(err)
	}
	bus, err := buslib.NewPIOBurst(sm, buslib.PIOBurstConfig{
		Data: machine.GP2, // R, G, B on GP2..GP4
		CLK:  machine.GP5,
		Addr: []machine.Pin{machine.GP6, machine.GP7, machine.GP8},
		LAT:  machine.GP9,
		OE:   machine.GP10,
	})
	if err != nil {
		panic(err)
	}

	m, err := matrix.New(matrix.Config{
		Engine:  bus,
		Timer:   bus,
		Address: bus,
		Events:  bus,
	})
	if err != nil {
		panic(err)
	}
	if err := m.Begin(); err != nil {
		panic(err)
	}

	cols, rows := m.Size()
	t := 0.0
	for {
		for y := int16(0); y < rows; y++ {
			for x := int16(0); x < cols; x++ {
				phase := t + float64(x)*0.6 + float64(y)*0.4
				m.SetPixelColor(int(x), int(y),
					uint8(127.5+127.5*math.Sin(phase)),
					uint8(127.5+127.5*math.Sin(phase+2)),
					uint8(127.5+127.5*math.Cos(phase)))
			}
		}
		m.Show()
		t += 0.1
		time.Sleep(33 * time.Millisecond)
	}
}
