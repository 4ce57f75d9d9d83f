//go:build !tinygo

// Command simulator drives the matrix engine against a software panel and
// shows the light each pixel would emit in a desktop window. The probe
// integrates streamed bus words weighted by slot durations, so it exercises
// the real waveform rather than reading the pixel store back.
package main

import (
	"image"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
)

const (
	rows      = 8
	cols      = 8
	pwmBits   = 12
	pagedBits = 2
	scale     = 48
)

// probe implements the four hardware collaborators in software. Each slot
// contributes match ticks of light to the selected row, split per column by
// the data bits in the clock-low words.
type probe struct {
	handler func()

	code  uint8
	match uint16

	accum  [rows][cols][3]uint64
	perBit uint64 // max light one channel can accumulate per cycle
}

func newProbe() *probe {
	p := &probe{}
	for bit := 0; bit < pwmBits; bit++ {
		period := uint64(8) << bit
		p.perBit += (period - 4) << pagedBits
	}
	return p
}

func (p *probe) Stream(words []uint16) {
	w := uint64(p.match)
	for col := 0; col < cols && col*2 < len(words); col++ {
		word := words[col*2]
		px := &p.accum[p.code][col]
		if word&matrix.BusR != 0 {
			px[0] += w
		}
		if word&matrix.BusG != 0 {
			px[1] += w
		}
		if word&matrix.BusB != 0 {
			px[2] += w
		}
	}
}

func (p *probe) Load(period, match uint16) { p.match = match }
func (p *probe) Select(code uint8)         { p.code = code }
func (p *probe) Attach(onCompletion func()) {
	p.handler = onCompletion
}

// cycle runs one full refresh cycle and folds the accumulated light into img.
func (p *probe) cycle(img *image.RGBA) {
	slots := (rows*pwmBits + 1) << pagedBits
	for i := 0; i < slots; i++ {
		p.handler()
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			j := img.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				img.Pix[j+ch] = uint8(p.accum[y][x][ch] * 255 / p.perBit)
			}
			img.Pix[j+3] = 0xFF
			p.accum[y][x] = [3]uint64{}
		}
	}
}

type game struct {
	m     *matrix.Matrix
	probe *probe
	img   *image.RGBA
	panel *ebiten.Image
	t     float64
}

func (g *game) Update() error {
	g.t += 1.0 / 60
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			phase := g.t*2 + float64(x)*0.6 + float64(y)*0.4
			r := uint8(127.5 + 127.5*math.Sin(phase))
			b := uint8(127.5 + 127.5*math.Cos(phase))
			gg := uint8(127.5 + 127.5*math.Sin(phase+2))
			g.m.SetPixelColor(x, y, r, gg, b)
		}
	}
	g.m.Show()
	g.probe.cycle(g.img)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.panel.WritePixels(g.img.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.panel, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cols * scale, rows * scale
}

func main() {
	p := newProbe()
	m, err := matrix.New(matrix.Config{
		Rows:      rows,
		Columns:   cols,
		PWMBits:   pwmBits,
		PagedBits: pagedBits,
		Engine:    p,
		Timer:     p,
		Address:   p,
		Events:    p,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := m.Begin(); err != nil {
		log.Fatal(err)
	}

	g := &game{
		m:     m,
		probe: p,
		img:   image.NewRGBA(image.Rect(0, 0, cols, rows)),
		panel: ebiten.NewImage(cols, rows),
	}
	ebiten.SetWindowTitle("matrix simulator")
	ebiten.SetWindowSize(cols*scale, rows*scale)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
