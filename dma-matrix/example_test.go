package matrix_test

import (
	"fmt"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
)

func Example() {
	m, err := matrix.New(matrix.Config{})
	if err != nil {
		panic(err)
	}
	m.SetBrightness(0.5)
	if err := m.SetPixelColor(3, 2, 255, 10, 0); err != nil {
		panic(err)
	}
	px := m.Pixels()
	cols, rows := m.Size()
	fmt.Println(cols, rows, m.Brightness())
	fmt.Println(px[2*int(cols)+3])
	// Output:
	// 8 8 0.5
	// {255 10 0}
}
