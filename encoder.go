// Package fountain is the transfer driver (C6): it owns the Encoder and
// Decoder state machines that external collaborators (terminal carousel,
// animated-image writer, still-image writer, browser capture loop) drive at
// their own cadence, per spec.md §4.6 and §5.
package fountain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/handsomecheung/fountain/internal/flog"
	"github.com/handsomecheung/fountain/packet"
	"github.com/handsomecheung/fountain/qrcodec"
	"github.com/handsomecheung/fountain/raptorq"
)

const maxFileNameBytes = 255

// Encoder is an infinite, lazily-advancing packet source over one
// SourceObject. It is single-threaded and synchronous: every call to
// NextPacket/NextRaster does exactly the work needed to produce the next
// packet and nothing more.
type Encoder struct {
	transferID uint32
	fileName   string
	oti        raptorq.OTI
	cfg        Config
	log        Logger

	blocks []*raptorq.BlockEncoder
	ranges []raptorq.BlockRange

	counter   uint64 // total packets emitted so far
	dataIndex uint64 // total data packets emitted so far
	esiByBlk  []uint32
}

// NewEncoder builds an Encoder over payload, to be reconstructed under
// fileName. It returns ErrInvalidInput for an empty payload or a file name
// longer than 255 bytes, and a wrapped error if a block encoder cannot be
// built or the random transfer id cannot be drawn.
func NewEncoder(payload []byte, fileName string, cfg Config) (*Encoder, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidInput)
	}
	if len(fileName) > maxFileNameBytes {
		return nil, fmt.Errorf("%w: file name exceeds %d bytes", ErrInvalidInput, maxFileNameBytes)
	}

	cfg = cfg.withDefaults()
	log := cfg.Logger
	if log == nil {
		log = flog.Silent()
	}

	oti := raptorq.DeriveOTI(uint64(len(payload)), cfg.ChunkSize)
	ranges := raptorq.BlockRanges(oti)

	blocks := make([]*raptorq.BlockEncoder, len(ranges))
	for i, r := range ranges {
		enc, err := raptorq.NewBlockEncoder(payload[r.Offset:r.Offset+r.Length], oti.T)
		if err != nil {
			return nil, fmt.Errorf("fountain: build block %d encoder: %w", r.SBN, err)
		}
		blocks[i] = enc
	}

	transferID, err := randomTransferID()
	if err != nil {
		return nil, fmt.Errorf("fountain: generate transfer id: %w", err)
	}

	log.Infof("encoder: transfer %d, %d bytes, %d block(s), T=%d", transferID, len(payload), len(ranges), oti.T)

	return &Encoder{
		transferID: transferID,
		fileName:   fileName,
		oti:        oti,
		cfg:        cfg,
		log:        log,
		blocks:     blocks,
		ranges:     ranges,
		esiByBlk:   make([]uint32, len(blocks)),
	}, nil
}

// TransferID returns the 32-bit id embedded in every packet of this
// session.
func (e *Encoder) TransferID() uint32 { return e.transferID }

// OTI returns the derived Object Transmission Information.
func (e *Encoder) OTI() raptorq.OTI { return e.oti }

// NextPacket returns the next framed packet in the stream, interleaving
// Anchors at the configured cadence. One cycle is one Anchor followed by
// AnchorEvery Data packets, so AnchorEvery=1 alternates Anchor/Data and the
// default AnchorEvery=16 emits one Anchor per seventeen packets. The stream
// never terminates; callers decide when to stop pulling.
func (e *Encoder) NextPacket() ([]byte, error) {
	cycle := uint64(e.cfg.AnchorEvery) + 1
	isAnchor := e.counter%cycle == 0
	e.counter++

	if isAnchor {
		return packet.FrameAnchor(e.transferID, e.fileName, e.oti)
	}
	return e.nextDataPacket()
}

func (e *Encoder) nextDataPacket() ([]byte, error) {
	sbn := int(e.dataIndex % uint64(len(e.blocks)))
	e.dataIndex++

	esi := e.esiByBlk[sbn]
	e.esiByBlk[sbn]++

	sym := e.blocks[sbn].Symbol(esi)
	return packet.FrameData(e.transferID, e.ranges[sbn].SBN, esi, sym)
}

// NextRaster is a convenience composition of NextPacket and the QR
// serialiser.
func (e *Encoder) NextRaster() (*qrcodec.Raster, error) {
	pkt, err := e.NextPacket()
	if err != nil {
		return nil, err
	}
	return qrcodec.EncodePacket(pkt, e.cfg.QrECC, int(e.cfg.PixelScale))
}

func randomTransferID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
