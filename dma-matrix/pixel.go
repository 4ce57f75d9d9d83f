package matrix

// Pixel is one RGB triple in the user-facing grid. Channel values are raw
// 8-bit intensities; brightness scaling and gamma are applied at encode time,
// never to the stored pixel.
type Pixel struct {
	R, G, B uint8
}
