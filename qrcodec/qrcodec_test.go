package qrcodec

import (
	"bytes"
	"testing"

	"github.com/handsomecheung/fountain/packet"
	"github.com/handsomecheung/fountain/raptorq"
)

func TestEncodePacketDeterministic(t *testing.T) {
	raw, err := packet.FrameData(1, 0, 0, []byte("hello world symbol data"))
	if err != nil {
		t.Fatal(err)
	}

	r1, err := EncodePacket(raw, ECCLow, 4)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := EncodePacket(raw, ECCLow, 4)
	if err != nil {
		t.Fatal(err)
	}

	if r1.Width != r2.Width || r1.Height != r2.Height {
		t.Fatalf("dimensions differ: %dx%d vs %dx%d", r1.Width, r1.Height, r2.Width, r2.Height)
	}
	if !bytes.Equal(r1.Pix, r2.Pix) {
		t.Fatal("identical packet produced different rasters")
	}
}

func TestEncodeThenRecogniseRoundTrip(t *testing.T) {
	oti := raptorq.DeriveOTI(12, 200)
	raw, err := packet.FrameAnchor(99, "hello.txt", oti)
	if err != nil {
		t.Fatal(err)
	}

	raster, err := EncodePacket(raw, ECCLow, 4)
	if err != nil {
		t.Fatal(err)
	}

	decoded := Recognise(raster)
	if len(decoded) != 1 {
		t.Fatalf("got %d decoded codes, want 1", len(decoded))
	}
	if decoded[0].Packet.Kind != packet.KindAnchor {
		t.Fatalf("Kind = %v, want KindAnchor", decoded[0].Packet.Kind)
	}
	if decoded[0].Packet.FileName != "hello.txt" {
		t.Fatalf("FileName = %q, want hello.txt", decoded[0].Packet.FileName)
	}
	if decoded[0].Packet.TransferID != 99 {
		t.Fatalf("TransferID = %d, want 99", decoded[0].Packet.TransferID)
	}
}

func TestRecogniseBlankRasterYieldsEmpty(t *testing.T) {
	blank := &Raster{Width: 100, Height: 100, Pix: make([]byte, 100*100)}
	decoded := Recognise(blank)
	if len(decoded) != 0 {
		t.Fatalf("got %d decoded codes on blank raster, want 0", len(decoded))
	}
}
