package matrix

import (
	"math"
	"testing"
)

// pageLevel decodes the pwmBits-wide value encoded for one channel of one
// pixel on one page, and checks the clock bit is baked into every other word.
func pageLevel(t *testing.T, m *Matrix, buf []uint16, page, row, col int, channel uint16) uint32 {
	t.Helper()
	var v uint32
	for bit := 0; bit < m.pwmBits; bit++ {
		i := m.slotOffset(page, row, bit) + col*2
		lo, hi := buf[i], buf[i+1]
		if lo&BusCLK != 0 {
			t.Fatalf("page %d row %d bit %d col %d: clock high on data phase", page, row, bit, col)
		}
		if hi != lo|BusCLK {
			t.Fatalf("page %d row %d bit %d col %d: clock phase %#x does not hold data %#x", page, row, bit, col, hi, lo)
		}
		if lo&channel != 0 {
			v |= 1 << bit
		}
	}
	return v
}

// integrated sums the per-page encoded values, the quantity the panel
// time-integrates across one full cycle.
func integrated(t *testing.T, m *Matrix, buf []uint16, row, col int, channel uint16) uint32 {
	t.Helper()
	var sum uint32
	for page := 0; page < m.pages; page++ {
		sum += pageLevel(t, m, buf, page, row, col, channel)
	}
	return sum
}

func TestEncodeAllBlack(t *testing.T) {
	for _, brightness := range []float32{0, 0.5, 1} {
		m, _ := newTestMatrix(t, Config{})
		m.SetBrightness(brightness)
		m.Show()
		buf := m.bufs.backBuf()
		for i, w := range buf {
			if w&^BusCLK != 0 {
				t.Fatalf("brightness %v: nonzero data word %#x at %d", brightness, w, i)
			}
		}
	}
}

func TestEncodeAllWhiteFullBrightness(t *testing.T) {
	m, _ := newTestMatrix(t, Config{Rows: 4, Columns: 4, PWMBits: 12, PagedBits: 2})
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if err := m.SetPixelColor(col, row, 255, 255, 255); err != nil {
				t.Fatal(err)
			}
		}
	}
	m.Show()
	buf := m.bufs.backBuf()
	want := uint32(1)<<m.pwmBits - 1
	for page := 0; page < m.pages; page++ {
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				for _, ch := range []uint16{BusR, BusG, BusB} {
					if got := pageLevel(t, m, buf, page, row, col, ch); got != want {
						t.Fatalf("page %d (%d,%d) channel %#x: got!=expected: %d != %d", page, col, row, ch, got, want)
					}
				}
			}
		}
	}
}

func TestDitherReconstructsTarget(t *testing.T) {
	m, _ := newTestMatrix(t, Config{Rows: 2, Columns: 2, PWMBits: 12, PagedBits: 2})
	for _, v := range []uint8{1, 37, 128, 200, 254} {
		if err := m.SetPixelColor(0, 0, v, 0, 0); err != nil {
			t.Fatal(err)
		}
		m.Show()
		buf := m.bufs.backBuf()
		sum := integrated(t, m, buf, 0, 0, BusR)
		target := uint32(math.Round(float64(v) / 255 * float64(uint32(1)<<m.bitDepth()-1)))
		diff := int64(sum) - int64(target)
		if diff < -1 || diff > 1 {
			t.Errorf("value %d: integrated %d, target %d", v, sum, target)
		}
	}
}

func TestEncodeMonotonicBrightness(t *testing.T) {
	m, _ := newTestMatrix(t, Config{Rows: 2, Columns: 2, PWMBits: 8, PagedBits: 2})
	if err := m.SetPixelColor(1, 1, 180, 90, 45); err != nil {
		t.Fatal(err)
	}
	var prev [3]uint32
	for i, b := range []float32{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1} {
		m.SetBrightness(b)
		m.Show()
		buf := m.bufs.backBuf()
		cur := [3]uint32{
			integrated(t, m, buf, 1, 1, BusR),
			integrated(t, m, buf, 1, 1, BusG),
			integrated(t, m, buf, 1, 1, BusB),
		}
		if i > 0 {
			for ch := range cur {
				if cur[ch] < prev[ch] {
					t.Errorf("brightness %v: channel %d integrated %d below previous %d", b, ch, cur[ch], prev[ch])
				}
			}
		}
		prev = cur
	}
}

func TestEncodeWithoutDithering(t *testing.T) {
	m, _ := newTestMatrix(t, Config{Rows: 2, Columns: 2, PWMBits: 8, PagedBits: 0})
	if m.pages != 1 {
		t.Fatalf("pages got!=expected: %d != 1", m.pages)
	}
	if err := m.SetPixelColor(0, 1, 0, 128, 0); err != nil {
		t.Fatal(err)
	}
	m.Show()
	buf := m.bufs.backBuf()
	want := uint32(math.Round(128.0 / 255 * 255))
	if got := pageLevel(t, m, buf, 0, 1, 0, BusG); got != want {
		t.Errorf("page value got!=expected: %d != %d", got, want)
	}
}

func TestPageValueSpreadsEvenly(t *testing.T) {
	m, _ := newTestMatrix(t, Config{Rows: 1, Columns: 1, PWMBits: 4, PagedBits: 2})
	// A fractional part of k must round exactly k of the four pages up.
	for frac := uint32(0); frac < 4; frac++ {
		target := uint32(5)<<2 | frac
		bumped := 0
		for page := 0; page < 4; page++ {
			switch v := m.pageValue(target, page); v {
			case 5:
			case 6:
				bumped++
			default:
				t.Fatalf("frac %d page %d: value %d", frac, page, v)
			}
		}
		if bumped != int(frac) {
			t.Errorf("frac %d: %d pages rounded up", frac, bumped)
		}
	}
}
