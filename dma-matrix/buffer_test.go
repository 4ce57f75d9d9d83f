package matrix

import "testing"

func TestBufferPairSwapSemantics(t *testing.T) {
	var p bufferPair
	p.init(16)

	if p.waiting() {
		t.Fatal("new pair reports pending update")
	}
	if p.trySwap() {
		t.Fatal("swap succeeded with nothing pending")
	}

	front, back := p.frontBuf(), p.backBuf()
	if &front[0] == &back[0] {
		t.Fatal("front and back share storage")
	}

	buf := p.beginPublish()
	if &buf[0] != &back[0] {
		t.Fatal("beginPublish did not hand out the back buffer")
	}
	p.finishPublish()
	if !p.waiting() {
		t.Fatal("pending flag not set after publish")
	}

	if !p.trySwap() {
		t.Fatal("swap refused with update pending")
	}
	if p.waiting() {
		t.Fatal("pending flag survived the swap")
	}
	if &p.frontBuf()[0] != &back[0] || &p.backBuf()[0] != &front[0] {
		t.Fatal("identities not exchanged")
	}
	if p.trySwap() {
		t.Fatal("second swap succeeded without a new publish")
	}
}

func TestBufferPairSwapCommitsAtomically(t *testing.T) {
	var p bufferPair
	p.init(4)

	// The index flip and witness-flag clear land in one state-word update:
	// no observable state pairs a cleared flag with the stale index.
	p.beginPublish()
	p.finishPublish()
	before := p.state.Load()
	if before != statePending {
		t.Fatalf("published state word %#x, expected pending on front 0", before)
	}
	if !p.trySwap() {
		t.Fatal("swap refused")
	}
	after := p.state.Load()
	if after != stateFront {
		t.Fatalf("swapped state word %#x, expected front flipped and flag clear", after)
	}

	// A publish starting after the swap claims the demoted buffer.
	if &p.beginPublish()[0] != &p.bufs[0][0] {
		t.Fatal("post-swap publish did not claim the demoted buffer")
	}

	p.finishPublish()
	if !p.trySwap() {
		t.Fatal("second swap refused")
	}
	if p.frontIndex() != 0 {
		t.Fatalf("front index %d after two swaps", p.frontIndex())
	}
}

func TestBufferPairRepublishDropsPending(t *testing.T) {
	var p bufferPair
	p.init(4)

	first := p.beginPublish()
	first[0] = 1
	p.finishPublish()

	// A second publish before the swap reclaims the same back buffer and
	// drops the unconsumed flag while encoding.
	second := p.beginPublish()
	if p.waiting() {
		t.Fatal("pending flag still set during re-publish")
	}
	if &second[0] != &first[0] {
		t.Fatal("re-publish moved to a different buffer")
	}
	second[0] = 2
	p.finishPublish()

	if !p.trySwap() {
		t.Fatal("swap refused")
	}
	if got := p.frontBuf()[0]; got != 2 {
		t.Fatalf("front word got!=expected: %d != 2", got)
	}
}
