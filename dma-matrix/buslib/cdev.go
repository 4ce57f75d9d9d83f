//go:build linux && !tinygo

package buslib

import (
	"errors"
	"time"

	"github.com/warthog618/go-gpiocdev"

	matrix "github.com/blinkinlabs/matrix/dma-matrix"
)

var errMissingLine = errors.New("buslib: data, clock and address lines are required")

// CdevConfig names the GPIO character-device lines of the panel bus, for
// Raspberry-Pi-class boards driven from userspace. Offsets are chip line
// numbers; set LAT or OE to -1 when unused.
type CdevConfig struct {
	Chip string // defaults to "gpiochip0"

	R, G, B int
	CLK     int
	Addr    []int
	LAT     int
	OE      int

	// Tick is the duration of one timer tick; slot periods are multiples
	// of it. Defaults to one microsecond.
	Tick time.Duration
}

// Cdev implements the matrix hardware collaborators over gpiocdev lines.
// Like BitBang, all collaborator calls happen inside the completion event
// delivered by the pacing goroutine, so no locking is needed.
type Cdev struct {
	r, g, b, clk *gpiocdev.Line
	addr         []*gpiocdev.Line
	lat, oe      *gpiocdev.Line
	tick         time.Duration

	period, match uint16
	handler       func()
	err           error
}

// NewCdev requests all configured lines as outputs. On any failure the lines
// already requested are released before the error is returned.
func NewCdev(cfg CdevConfig) (*Cdev, error) {
	if len(cfg.Addr) == 0 {
		return nil, errMissingLine
	}
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}
	if cfg.Tick == 0 {
		cfg.Tick = time.Microsecond
	}
	c := &Cdev{tick: cfg.Tick, period: 1}

	request := func(offset int) (*gpiocdev.Line, error) {
		return gpiocdev.RequestLine(cfg.Chip, offset, gpiocdev.AsOutput(0))
	}
	var err error
	if c.r, err = request(cfg.R); err != nil {
		return nil, err
	}
	if c.g, err = request(cfg.G); err != nil {
		c.Close()
		return nil, err
	}
	if c.b, err = request(cfg.B); err != nil {
		c.Close()
		return nil, err
	}
	if c.clk, err = request(cfg.CLK); err != nil {
		c.Close()
		return nil, err
	}
	for _, offset := range cfg.Addr {
		line, err := request(offset)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.addr = append(c.addr, line)
	}
	if cfg.LAT >= 0 {
		if c.lat, err = request(cfg.LAT); err != nil {
			c.Close()
			return nil, err
		}
	}
	if cfg.OE >= 0 {
		if c.oe, err = request(cfg.OE); err != nil {
			c.Close()
			return nil, err
		}
		c.oe.SetValue(1) // blanked until the first slot runs
	}
	return c, nil
}

// Close releases every requested line.
func (c *Cdev) Close() error {
	var first error
	for _, line := range append([]*gpiocdev.Line{c.r, c.g, c.b, c.clk, c.lat, c.oe}, c.addr...) {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Err returns the first line write error seen on the refresh path, if any.
// The collaborator interfaces have no error returns; a failing write here
// means the display output is already corrupt and the caller should Close.
func (c *Cdev) Err() error { return c.err }

func (c *Cdev) set(line *gpiocdev.Line, v int) {
	if err := line.SetValue(v); err != nil && c.err == nil {
		c.err = err
	}
}

func bit(w, mask uint16) int {
	if w&mask != 0 {
		return 1
	}
	return 0
}

// Stream clocks one slot's words onto the bus.
func (c *Cdev) Stream(words []uint16) {
	for _, w := range words {
		c.set(c.r, bit(w, matrix.BusR))
		c.set(c.g, bit(w, matrix.BusG))
		c.set(c.b, bit(w, matrix.BusB))
		c.set(c.clk, bit(w, matrix.BusCLK))
	}
}

// Load stores the next slot duration for the pacing goroutine.
func (c *Cdev) Load(period, match uint16) {
	if period == 0 {
		period = 1
	}
	c.period, c.match = period, match
}

// Select presents a row code on the address lines and strobes the latch.
func (c *Cdev) Select(code uint8) {
	for i, line := range c.addr {
		c.set(line, int(code>>uint(i)&1))
	}
	if c.lat != nil {
		c.set(c.lat, 1)
		c.set(c.lat, 0)
	}
}

// Attach registers the refresh handler and starts slot pacing.
func (c *Cdev) Attach(onCompletion func()) {
	c.handler = onCompletion
	go c.run()
}

func (c *Cdev) run() {
	for {
		period, match := c.period, c.match
		if c.oe != nil {
			c.set(c.oe, 1)
		}
		time.Sleep(time.Duration(period-match) * c.tick)
		if c.oe != nil {
			c.set(c.oe, 0)
		}
		time.Sleep(time.Duration(match) * c.tick)
		c.handler()
	}
}
