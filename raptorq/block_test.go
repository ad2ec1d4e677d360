package raptorq

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBlockRoundTripSystematicOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	block := make([]byte, 4096)
	rng.Read(block)

	const t16 = 256
	enc, err := NewBlockEncoder(block, t16)
	if err != nil {
		t.Fatal(err)
	}

	dec, err := NewBlockDecoder(len(block), t16)
	if err != nil {
		t.Fatal(err)
	}

	var status Status
	for esi := uint32(0); esi < enc.K(); esi++ {
		status, err = dec.Add(esi, enc.Symbol(esi))
		if err != nil {
			t.Fatal(err)
		}
		if status == Ready {
			break
		}
	}

	got, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v (status=%v, added=%d, k=%d)", err, status, dec.SymbolCount(), enc.K())
	}
	if !bytes.Equal(got, block) {
		t.Fatal("reconstructed block does not match original")
	}
}

func TestBlockRoundTripWithOverhead(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	block := make([]byte, 10000)
	rng.Read(block)

	const t16 = 400
	enc, err := NewBlockEncoder(block, t16)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewBlockDecoder(len(block), t16)
	if err != nil {
		t.Fatal(err)
	}

	// Feed K systematic symbols plus a couple of repair symbols for
	// overhead, matching spec.md's epsilon ~ 0-2 margin.
	total := enc.K() + 2
	for esi := uint32(0); esi < total; esi++ {
		if _, err := dec.Add(esi, enc.Symbol(esi)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Fatal("reconstructed block does not match original")
	}
}

func TestBlockDecoderIdempotentAdd(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	block := make([]byte, 2048)
	rng.Read(block)

	const t16 = 256
	enc, err := NewBlockEncoder(block, t16)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewBlockDecoder(len(block), t16)
	if err != nil {
		t.Fatal(err)
	}

	sym := enc.Symbol(0)
	for i := 0; i < 5; i++ {
		if _, err := dec.Add(0, sym); err != nil {
			t.Fatal(err)
		}
	}
	if dec.SymbolCount() != 1 {
		t.Fatalf("SymbolCount = %d, want 1 after repeated add of same ESI", dec.SymbolCount())
	}
}

func TestBlockEncoderDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	block := make([]byte, 1300)
	rng.Read(block)

	enc1, err := NewBlockEncoder(block, 300)
	if err != nil {
		t.Fatal(err)
	}
	enc2, err := NewBlockEncoder(block, 300)
	if err != nil {
		t.Fatal(err)
	}

	for esi := uint32(0); esi < enc1.K()+3; esi++ {
		a, b := enc1.Symbol(esi), enc2.Symbol(esi)
		if !bytes.Equal(a, b) {
			t.Fatalf("esi %d: encoders diverged", esi)
		}
	}
}
