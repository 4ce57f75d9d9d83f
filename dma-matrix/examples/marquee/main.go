//go:build tinygo

// Command marquee scrolls a text banner across an 8x8 panel wired to a
// Raspberry Pi Pico, using the bit-banged bus backend.
package main

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/tinyfont"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
	"github.com/blinkinlabs/matrix/dma-matrix/buslib"
)

const text = "hello matrix  "

func main() {
	bus, err := buslib.NewBitBang(buslib.Pins{
		R:    machine.GP2,
		G:    machine.GP3,
		B:    machine.GP4,
		CLK:  machine.GP5,
		Addr: []machine.Pin{machine.GP6, machine.GP7, machine.GP8},
		LAT:  machine.GP9,
		OE:   machine.GP10,
	}, time.Microsecond)
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
	m.SetBrightness(0.5)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	_, width := tinyfont.LineWidth(&tinyfont.TomThumb, text)
	cols, rows := m.Size()

	for {
		for x := cols; x > -int16(width); x-- {
			for y := int16(0); y < rows; y++ {
				for cx := int16(0); cx < cols; cx++ {
					m.SetPixel(cx, y, color.RGBA{})
				}
			}
			tinyfont.WriteLine(m, &tinyfont.TomThumb, x, 6, text, white)
			if err := m.Display(); err != nil {
				panic(err)
			}
			time.Sleep(80 * time.Millisecond)
		}
	}
}
