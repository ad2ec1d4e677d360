package base45

import (
	"bytes"
	"math/rand"
	"testing"
)

func assertNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, got, want []byte) {
	t.Helper()
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeKnownVectors(t *testing.T) {
	// Vectors from RFC 9285 §4.3.
	cases := []struct {
		in   string
		want string
	}{
		{"AB", "BB8"},
		{"Hello!!", "%69 VD92EX0"},
		{"base-45", "UJCLQE7W581"},
	}
	for _, c := range cases {
		got := Encode([]byte(c.in))
		if got != c.want {
			t.Errorf("Encode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeKnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BB8", "AB"},
		{"%69 VD92EX0", "Hello!!"},
		{"UJCLQE7W581", "base-45"},
	}
	for _, c := range cases {
		got, err := Decode(c.in)
		assertNil(t, err)
		assertEqual(t, got, []byte(c.want))
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n <= 4096; n += 37 {
		b := make([]byte, n)
		rng.Read(b)
		enc := Encode(b)
		dec, err := Decode(enc)
		assertNil(t, err)
		assertEqual(t, dec, b)
	}
}

func TestEncodedLengthFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for n := 0; n <= 200; n++ {
		b := make([]byte, n)
		rng.Read(b)
		enc := Encode(b)
		want := ((n+1)/2)*3 - (n % 2)
		if len(enc) != want {
			t.Fatalf("len(Encode(%d bytes)) = %d, want %d", n, len(enc), want)
		}
	}
}

func TestDecodeInvalidChar(t *testing.T) {
	_, err := Decode("AB_")
	if err != ErrInvalidChar {
		t.Fatalf("got %v, want ErrInvalidChar", err)
	}
}

func TestDecodeInvalidLength(t *testing.T) {
	_, err := Decode("AAAA")
	if err != ErrInvalidLength {
		t.Fatalf("got %v, want ErrInvalidLength", err)
	}
}

func TestDecodeOverflow(t *testing.T) {
	// Construct a 3-digit group that exceeds 65535.
	// The maximum valid 3-digit group is "FGW" = 65535; "GGW" = 65536 overflows.
	_, err := Decode("GGW")
	if err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}
