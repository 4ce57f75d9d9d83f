package matrix

import "sync/atomic"

// Packed buffer state, held in one atomic word so the swap (index flip plus
// flag clear) is a single compare-and-swap. The goroutine-based backends run
// the refresh context truly parallel to publishers; a two-word scheme would
// open a window between clearing the flag and flipping the index in which a
// publisher could claim the buffer about to become front.
const (
	stateFront   = 1 << 0 // index of the front buffer
	statePending = 1 << 1 // a publish awaits the next full-cycle boundary
)

// bufferPair owns the two physical bitstream buffers. Their identities are
// exchanged by flipping the front bit, never by copying. The pixel-writing
// context only ever touches the back buffer; the refresh context only ever
// reads the front one. The packed state word is the single word shared
// between the two contexts.
type bufferPair struct {
	bufs  [2][]uint16
	state atomic.Uint32
}

func (p *bufferPair) init(words int) {
	p.bufs[0] = make([]uint16, words)
	p.bufs[1] = make([]uint16, words)
}

func (p *bufferPair) frontIndex() uint32 { return p.state.Load() & stateFront }

func (p *bufferPair) frontBuf() []uint16 { return p.bufs[p.frontIndex()] }
func (p *bufferPair) backBuf() []uint16  { return p.bufs[1-p.frontIndex()] }

// beginPublish claims the back buffer for a fresh encode. Clearing the
// pending flag first closes the window where a swap could exchange the
// buffers mid-encode: with the flag down the refresh context will not swap,
// so the returned slice stays the back buffer until finishPublish. A publish
// that was flagged but never consumed is simply dropped, last-publish-wins.
func (p *bufferPair) beginPublish() []uint16 {
	for {
		old := p.state.Load()
		if p.state.CompareAndSwap(old, old&^uint32(statePending)) {
			return p.bufs[1-(old&stateFront)]
		}
	}
}

// finishPublish marks the freshly encoded back buffer as ready to swap in.
func (p *bufferPair) finishPublish() {
	for {
		old := p.state.Load()
		if p.state.CompareAndSwap(old, old|statePending) {
			return
		}
	}
}

// waiting reports whether a publish has completed and not yet been swapped in.
func (p *bufferPair) waiting() bool {
	return p.state.Load()&statePending != 0
}

// trySwap exchanges the front and back identities if an update is pending.
// Called only from the refresh context, at a full-cycle boundary. Flag
// check-and-clear and index flip commit together in one compare-and-swap, so
// a concurrent beginPublish observes either the old state or the fully
// swapped one, never a cleared flag paired with the stale index.
func (p *bufferPair) trySwap() bool {
	for {
		old := p.state.Load()
		if old&statePending == 0 {
			return false
		}
		if p.state.CompareAndSwap(old, (old^stateFront)&^uint32(statePending)) {
			return true
		}
	}
}
