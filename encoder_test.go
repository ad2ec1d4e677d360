package fountain

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/handsomecheung/fountain/packet"
)

func assertNilErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewEncoderRejectsEmptyPayload(t *testing.T) {
	_, err := NewEncoder(nil, "f", DefaultConfig())
	if err == nil {
		t.Fatal("want error for empty payload")
	}
}

// S6: a file name over 255 bytes is InvalidInput.
func TestNewEncoderRejectsLongFileName(t *testing.T) {
	name := bytes.Repeat([]byte("a"), 300)
	_, err := NewEncoder([]byte("x"), string(name), DefaultConfig())
	if err == nil {
		t.Fatal("want error for over-long file name")
	}
}

// Property 7: two encoders with identical inputs and the same transfer id
// emit identical packet streams.
func TestEncoderDeterministic(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 5000)
	cfg := DefaultConfig()
	cfg.ChunkSize = 200

	e1, err := NewEncoder(payload, "a.bin", cfg)
	assertNilErr(t, err)
	e2, err := NewEncoder(payload, "a.bin", cfg)
	assertNilErr(t, err)
	e2.transferID = e1.transferID // isolate determinism from the random draw

	for i := 0; i < 50; i++ {
		p1, err := e1.NextPacket()
		assertNilErr(t, err)
		p2, err := e2.NextPacket()
		assertNilErr(t, err)
		if !bytes.Equal(p1, p2) {
			t.Fatalf("packet %d differs: %x vs %x", i, p1, p2)
		}
	}
}

func TestAnchorCadenceAlternates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnchorEvery = 1
	enc, err := NewEncoder([]byte("hello world\n"), "f", cfg)
	assertNilErr(t, err)

	for i := 0; i < 8; i++ {
		pkt, err := enc.NextPacket()
		assertNilErr(t, err)
		p, err := packet.Parse(pkt)
		assertNilErr(t, err)
		wantAnchor := i%2 == 0
		if gotAnchor := p.Kind == packet.KindAnchor; gotAnchor != wantAnchor {
			t.Fatalf("packet %d: anchor=%v, want %v", i, gotAnchor, wantAnchor)
		}
	}
}

func TestAnchorCadenceDefault(t *testing.T) {
	cfg := DefaultConfig() // AnchorEvery = 16
	enc, err := NewEncoder(bytes.Repeat([]byte{1}, 4000), "f", cfg)
	assertNilErr(t, err)

	anchors := 0
	for i := 0; i < 17; i++ {
		pkt, err := enc.NextPacket()
		assertNilErr(t, err)
		p, err := packet.Parse(pkt)
		assertNilErr(t, err)
		if p.Kind == packet.KindAnchor {
			anchors++
		}
	}
	if anchors != 1 {
		t.Fatalf("got %d anchors in one 17-packet cycle, want 1", anchors)
	}
}

func TestRandomTransferIDVaries(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := make(map[uint32]struct{})
	for i := 0; i < 20; i++ {
		payload := make([]byte, 16)
		rng.Read(payload)
		enc, err := NewEncoder(payload, "f", DefaultConfig())
		assertNilErr(t, err)
		seen[enc.TransferID()] = struct{}{}
	}
	if len(seen) < 15 {
		t.Fatalf("transfer ids barely vary: %d distinct out of 20", len(seen))
	}
}
