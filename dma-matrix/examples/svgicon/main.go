//go:build linux && !tinygo

// Command svgicon rasterizes an SVG file onto the panel through the GPIO
// character-device backend. Meant for a Raspberry Pi with the panel bus on
// the usual matrix bonnet pins.
package main

import (
	"flag"
	"image"
	"log"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
	"github.com/blinkinlabs/matrix/dma-matrix/buslib"
)

func main() {
	var (
		path       = flag.String("svg", "", "path to the SVG file to display")
		chip       = flag.String("chip", "gpiochip0", "GPIO character device")
		brightness = flag.Float64("brightness", 0.5, "panel brightness, 0..1")
	)
	flag.Parse()
	if *path == "" {
		log.Fatal("usage: svgicon -svg icon.svg")
	}

	const rows, cols = 8, 8

	img, err := rasterize(*path, cols, rows)
	if err != nil {
		log.Fatalf("rasterize %s: %v", *path, err)
	}

	bus, err := buslib.NewCdev(buslib.CdevConfig{
		Chip: *chip,
		R:    5,
		G:    13,
		B:    6,
		CLK:  17,
		Addr: []int{22, 26, 27},
		LAT:  21,
		OE:   4,
	})
	if err != nil {
		log.Fatalf("request GPIO lines: %v", err)
	}
	defer bus.Close()

	m, err := matrix.New(matrix.Config{
		Rows:    rows,
		Columns: cols,
		Engine:  bus,
		Timer:   bus,
		Address: bus,
		Events:  bus,
	})
	if err != nil {
		log.Fatal(err)
	}
	m.SetBrightness(float32(*brightness))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			m.SetPixelColor(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}

	if err := m.Begin(); err != nil {
		log.Fatal(err)
	}
	m.Show()

	select {} // refresh runs on the bus goroutine until killed
}

func rasterize(path string, w, h int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
