// Package matrix drives a current-controlled RGB LED panel by precomputing a
// binary-coded-modulation waveform that a DMA-capable transfer engine streams
// onto the shift-register bus, paced by a timer with binary-weighted slot
// durations. Temporal dithering across pages renders more color depth than the
// panel's physical PWM resolution. The refresh path runs autonomously on
// hardware completion events; callers write pixels and publish frames without
// ever blocking on display timing.
package matrix

import (
	"errors"
	"image/color"

	"tinygo.org/x/drivers"
)

// Matrix errors.
var (
	ErrBounds     = errors.New("matrix: pixel coordinate out of bounds")
	ErrGeometry   = errors.New("matrix: invalid panel geometry")
	ErrPWMBits    = errors.New("matrix: PWM bit count out of range")
	ErrPagedBits  = errors.New("matrix: paged bit count out of range")
	ErrMissingBus = errors.New("matrix: missing hardware collaborator")
)

// Geometry limits. maxPWMBits is the largest bit count whose binary-weighted
// slot period still fits the 16-bit timer word at baseTicks resolution;
// maxRows is fixed by the 8-bit row-select address bus.
const (
	maxPWMBits   = 12
	maxPagedBits = 4
	maxRows      = 256
)

// Default geometry, matching the original EightByEight badge panel.
const (
	DefaultRows      = 8
	DefaultColumns   = 8
	DefaultPWMBits   = 12
	DefaultPagedBits = 2
)

// Config describes the panel geometry and the hardware the driver talks to.
// Geometry is fixed for the lifetime of the Matrix; changing it means
// constructing a new one. Zero Rows, Columns or PWMBits each take their
// default; PagedBits zero means no dithering, except that an all-zero
// geometry selects the full defaults above, DefaultPagedBits included.
type Config struct {
	Rows    int
	Columns int
	// PWMBits is the number of physical steps in the inner PWM cycle.
	PWMBits int
	// PagedBits is the number of simulated steps rendered by dithering
	// across 2^PagedBits pages. Zero disables dithering.
	PagedBits int

	Engine  TransferEngine
	Timer   SlotTimer
	Address AddressPath
	Events  EventSource
}

// Matrix is one panel driver instance. The zero value is not usable; call New.
//
// Methods other than the refresh path may be called from a single goroutine
// only (the cooperative caller context of the design); the refresh path is
// driven exclusively by the EventSource.
type Matrix struct {
	rows, cols int
	pwmBits    int
	pagedBits  int
	pages      int

	brightness float32
	pixels     []Pixel

	addr   []uint8
	period []uint16
	match  []uint16

	bufs bufferPair

	// sequencer state, owned by the completion-event context
	page int
	slot int

	engine   TransferEngine
	timer    SlotTimer
	addrPath AddressPath
	events   EventSource
	began    bool
}

var _ drivers.Displayer = (*Matrix)(nil)

// New validates the configuration and allocates the pixel grid and both
// bitstream buffers. It performs no hardware access; that is Begin's job.
func New(cfg Config) (*Matrix, error) {
	if cfg.Rows == 0 && cfg.Columns == 0 && cfg.PWMBits == 0 && cfg.PagedBits == 0 {
		cfg.PagedBits = DefaultPagedBits
	}
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Columns == 0 {
		cfg.Columns = DefaultColumns
	}
	if cfg.PWMBits == 0 {
		cfg.PWMBits = DefaultPWMBits
	}
	switch {
	case cfg.Rows < 1 || cfg.Rows > maxRows || cfg.Columns < 1:
		return nil, ErrGeometry
	case cfg.PWMBits < 1 || cfg.PWMBits > maxPWMBits:
		return nil, ErrPWMBits
	case cfg.PagedBits < 0 || cfg.PagedBits > maxPagedBits:
		return nil, ErrPagedBits
	}
	m := &Matrix{
		rows:       cfg.Rows,
		cols:       cfg.Columns,
		pwmBits:    cfg.PWMBits,
		pagedBits:  cfg.PagedBits,
		pages:      1 << cfg.PagedBits,
		brightness: 1,
		engine:     cfg.Engine,
		timer:      cfg.Timer,
		addrPath:   cfg.Address,
		events:     cfg.Events,
	}
	m.pixels = make([]Pixel, m.rows*m.cols)
	m.bufs.init(m.pages * m.rows * m.rowDepth())
	return m, nil
}

// Begin builds the address and timer tables, primes the first slot and
// registers the refresh handler with the completion source. Calling it again is a
// no-op. It is the only operation that requires all four hardware
// collaborators to be present.
func (m *Matrix) Begin() error {
	if m.engine == nil || m.timer == nil || m.addrPath == nil || m.events == nil {
		return ErrMissingBus
	}
	if m.began {
		return nil
	}
	m.addr = buildAddressTable(m.rows, m.pwmBits)
	m.period, m.match = buildTimerTables(m.rows, m.pwmBits)
	m.began = true
	m.page, m.slot = 0, 0
	// Prime the first slot before handing refresh to the completion source;
	// a source that starts delivering events on Attach must only ever
	// advance an already-running machine.
	m.emitSlot()
	m.events.Attach(m.refresh)
	return nil
}

// SetBrightness stores the global brightness scale, clamped to [0, 1]. It
// takes effect on the next Show; the pixel grid itself is never attenuated.
func (m *Matrix) SetBrightness(b float32) {
	if b < 0 {
		b = 0
	} else if b > 1 {
		b = 1
	}
	m.brightness = b
}

// Brightness returns the last stored (clamped) brightness scale.
func (m *Matrix) Brightness() float32 { return m.brightness }

// SetPixelColor writes one pixel of the grid from discrete channel values.
// Out-of-range coordinates are reported, not clamped.
func (m *Matrix) SetPixelColor(column, row int, r, g, b uint8) error {
	if column < 0 || column >= m.cols || row < 0 || row >= m.rows {
		return ErrBounds
	}
	m.pixels[row*m.cols+column] = Pixel{R: r, G: g, B: b}
	return nil
}

// SetPixel writes one pixel from a color value. This is the
// drivers.Displayer form of SetPixelColor; out-of-range coordinates are
// ignored, per that interface's contract.
func (m *Matrix) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || int(x) >= m.cols || y < 0 || int(y) >= m.rows {
		return
	}
	m.pixels[int(y)*m.cols+int(x)] = Pixel{R: c.R, G: c.G, B: c.B}
}

// Pixels returns a copy of the grid, linearized row*columns+column. It is a
// read view for inspection and tests; the refresh hardware never consumes it.
func (m *Matrix) Pixels() []Pixel {
	out := make([]Pixel, len(m.pixels))
	copy(out, m.pixels)
	return out
}

// Show encodes the pixel grid into the back bitstream buffer and flags it for
// the refresh engine to swap in at the next full-cycle boundary. Publishing
// twice between boundaries re-encodes the same back buffer; only the most
// recent frame becomes visible.
func (m *Matrix) Show() {
	buf := m.bufs.beginPublish()
	m.encodeInto(buf)
	m.bufs.finishPublish()
}

// Size returns the panel dimensions, columns then rows.
func (m *Matrix) Size() (x, y int16) {
	return int16(m.cols), int16(m.rows)
}

// Display publishes the pixel grid. It satisfies drivers.Displayer.
func (m *Matrix) Display() error {
	m.Show()
	return nil
}

// BufferWaiting reports whether a published frame has not yet been swapped
// in. Callers that must not drop frames can poll it before the next Show.
func (m *Matrix) BufferWaiting() bool { return m.bufs.waiting() }

func (m *Matrix) bitDepth() int { return m.pwmBits + m.pagedBits }

// rowDepth is the per-row bitstream word count: two words per column (clock
// low, clock high) for each PWM bit.
func (m *Matrix) rowDepth() int { return m.pwmBits * m.cols * 2 }
