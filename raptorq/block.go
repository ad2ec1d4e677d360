package raptorq

import (
	"errors"
	"fmt"

	xraptorq "github.com/xssnick/raptorq"
)

// ErrDecodeFailed is returned by BlockDecoder.Finish when the solver has
// not (or not yet) reached a consistent linear system. The caller should
// keep feeding symbols and retry.
var ErrDecodeFailed = errors.New("raptorq: block decode failed")

// Status reports whether a BlockDecoder has enough symbols to reconstruct
// its block.
type Status int

const (
	// NeedMore means the block decoder does not yet hold enough linearly
	// independent symbols.
	NeedMore Status = iota
	// Ready means Finish will return the reconstructed block bytes.
	Ready
)

// BlockEncoder produces systematic and repair symbols for one source block.
// Two BlockEncoders built from the same block bytes and symbol size produce
// identical output for the same ESI, as required by spec.md §4.2.
type BlockEncoder struct {
	k   uint32
	t   uint16
	enc *xraptorq.Encoder
}

// NewBlockEncoder builds a BlockEncoder over block, which is zero-padded up
// to a multiple of t bytes (RaptorQ symbols are fixed size).
func NewBlockEncoder(block []byte, t uint16) (*BlockEncoder, error) {
	k := SymbolsPerBlock(uint64(len(block)), t)
	padded := make([]byte, int(k)*int(t))
	copy(padded, block)

	session := xraptorq.NewRaptorQ(t)
	enc, err := session.CreateEncoder(padded)
	if err != nil {
		return nil, fmt.Errorf("raptorq: create encoder: %w", err)
	}

	return &BlockEncoder{k: k, t: t, enc: enc}, nil
}

// K returns the number of source symbols (ESI < K is systematic).
func (b *BlockEncoder) K() uint32 { return b.k }

// Symbol returns the T-byte symbol for the given ESI: a systematic symbol
// for esi < K, a repair symbol for esi >= K.
func (b *BlockEncoder) Symbol(esi uint32) []byte {
	return b.enc.GenSymbol(esi)
}

// BlockDecoder accumulates symbols for one source block until it can
// reconstruct the original bytes.
type BlockDecoder struct {
	k        uint32
	t        uint16
	blockLen int
	dec      *xraptorq.Decoder
	seen     map[uint32]struct{}
	ready    bool
	result   []byte
}

// NewBlockDecoder builds a BlockDecoder for a block of blockLen original
// bytes, encoded with symbol size t.
func NewBlockDecoder(blockLen int, t uint16) (*BlockDecoder, error) {
	k := SymbolsPerBlock(uint64(blockLen), t)
	session := xraptorq.NewRaptorQ(t)
	dec, err := session.CreateDecoder(uint64(k) * uint64(t))
	if err != nil {
		return nil, fmt.Errorf("raptorq: create decoder: %w", err)
	}

	return &BlockDecoder{
		k:        k,
		t:        t,
		blockLen: blockLen,
		dec:      dec,
		seen:     make(map[uint32]struct{}),
	}, nil
}

// Add feeds one (esi, symbol) pair into the block. Re-adding an ESI already
// seen is a no-op, satisfying the idempotence invariant. sym must be T bytes
// long.
func (d *BlockDecoder) Add(esi uint32, sym []byte) (Status, error) {
	if d.ready {
		return Ready, nil
	}
	if len(sym) != int(d.t) {
		return NeedMore, fmt.Errorf("raptorq: symbol length %d, want %d", len(sym), d.t)
	}
	if _, dup := d.seen[esi]; dup {
		return NeedMore, nil
	}

	canTry, err := d.dec.AddSymbol(esi, sym)
	if err != nil {
		// The underlying library rejects genuinely malformed input; treat
		// it the same as a dropped packet rather than aborting the block.
		return NeedMore, nil
	}
	d.seen[esi] = struct{}{}

	if !canTry {
		return NeedMore, nil
	}

	ok, data, err := d.dec.Decode()
	if err != nil {
		return NeedMore, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if !ok {
		return NeedMore, nil
	}
	if len(data) < d.blockLen {
		return NeedMore, fmt.Errorf("%w: reconstructed %d bytes, want %d", ErrDecodeFailed, len(data), d.blockLen)
	}

	d.ready = true
	d.result = data[:d.blockLen]
	return Ready, nil
}

// SymbolCount reports how many distinct ESIs have been accepted so far.
func (d *BlockDecoder) SymbolCount() int { return len(d.seen) }

// K returns the block's source symbol count.
func (d *BlockDecoder) K() uint32 { return d.k }

// Finish returns the reconstructed block bytes. It is only valid once Add
// has returned Ready.
func (d *BlockDecoder) Finish() ([]byte, error) {
	if !d.ready {
		return nil, ErrDecodeFailed
	}
	return d.result, nil
}
