package fountain

import (
	"fmt"

	"github.com/handsomecheung/fountain/internal/flog"
	"github.com/handsomecheung/fountain/packet"
	"github.com/handsomecheung/fountain/qrcodec"
	"github.com/handsomecheung/fountain/raptorq"
)

// StatusKind discriminates the three states a Decoder can report, matching
// spec.md §4.6's {NeedMore, Progress, Done}.
type StatusKind int

const (
	// NeedMore means the decoder has not yet bound to a transfer (no
	// Anchor seen).
	NeedMore StatusKind = iota
	// Progress means the decoder is bound and reports how many of its
	// source blocks are reconstructed so far.
	Progress
	// Done is terminal: FileName and Payload hold the reconstructed file.
	Done
)

// Status is returned by every Decoder.Feed/FeedPacketBytes call.
type Status struct {
	Kind        StatusKind
	BlocksDone  int
	BlocksTotal int
	FileName    string
	Payload     []byte
}

// Decoder accumulates packets from one or more interleaved transfers and
// reconstructs the first one it binds to, discarding all others. It starts
// empty and is driven by repeated Feed/FeedPacketBytes calls; it holds no
// internal buffering beyond the per-block RaptorQ state, per spec.md §5.
type Decoder struct {
	log Logger

	bound      bool
	transferID uint32
	fileName   string
	oti        raptorq.OTI
	ranges     []raptorq.BlockRange

	blocks    []*raptorq.BlockDecoder
	completed []bool
	doneCount int

	done    bool
	payload []byte

	failedAttempts []int // per-block count of failed Add/Decode attempts
}

// NewDecoder builds an empty Decoder. cfg only supplies a Logger; the
// remaining fields are irrelevant until binding, since OTI arrives on the
// wire via the first Anchor.
func NewDecoder(cfg Config) *Decoder {
	log := cfg.Logger
	if log == nil {
		log = flog.Silent()
	}
	return &Decoder{log: log}
}

// Feed recognises every QR code in raster (there may be zero, one, or
// several) and feeds each decoded packet through FeedPacketBytes in turn,
// returning the status after the last one processed (or NeedMore/current
// status if the raster yielded nothing). The only error it can return is
// ErrDecodeFailedPersistent, per spec.md §7's propagation policy.
func (d *Decoder) Feed(raster *qrcodec.Raster) (Status, error) {
	decoded := qrcodec.Recognise(raster)
	if len(decoded) == 0 {
		d.log.Debug("decoder: no recognisable code in frame")
		return d.status(), nil
	}

	last := d.status()
	for _, dec := range decoded {
		s, err := d.feedPacket(dec.Packet)
		last = s
		if err != nil {
			return s, err
		}
	}
	return last, nil
}

// FeedPacketBytes parses raw as a packet and feeds it, bypassing the QR
// recogniser. Used directly by tests and by callers that already have
// framed bytes (e.g. a future transport that isn't QR at all).
func (d *Decoder) FeedPacketBytes(raw []byte) (Status, error) {
	p, err := packet.Parse(raw)
	if err != nil {
		d.log.Debugf("decoder: dropping unparseable packet: %v", err)
		return d.status(), nil
	}
	return d.feedPacket(p)
}

func (d *Decoder) feedPacket(p packet.Packet) (Status, error) {
	if d.done {
		return d.status(), nil
	}

	var err error
	switch p.Kind {
	case packet.KindAnchor:
		d.bind(p)
	case packet.KindData:
		err = d.feedData(p)
	}
	return d.status(), err
}

// bind implements the start -> bound(OTI) transition. It is idempotent: a
// repeated Anchor, and an Anchor for a transfer already bound to a
// different id, are both no-ops.
func (d *Decoder) bind(p packet.Packet) {
	if d.bound {
		return
	}

	d.bound = true
	d.transferID = p.TransferID
	d.fileName = p.FileName
	d.oti = p.OTI
	d.ranges = raptorq.BlockRanges(p.OTI)

	d.blocks = make([]*raptorq.BlockDecoder, len(d.ranges))
	d.completed = make([]bool, len(d.ranges))
	d.failedAttempts = make([]int, len(d.ranges))
	for i, r := range d.ranges {
		bd, err := raptorq.NewBlockDecoder(int(r.Length), p.OTI.T)
		if err != nil {
			d.log.Errorf("decoder: build block %d decoder: %v", r.SBN, err)
			continue
		}
		d.blocks[i] = bd
	}

	d.log.Infof("decoder: bound to transfer %d (%s, %d bytes, %d block(s))", p.TransferID, p.FileName, p.OTI.F, len(d.ranges))
}

// feedData dispatches a Data packet to its block's RaptorQ decoder. A
// single failed decode attempt is transient: per spec.md §7, only once a
// block's attempts exceed its source symbol count plus 2*Z overhead
// without reaching Ready does this surface ErrDecodeFailedPersistent.
func (d *Decoder) feedData(p packet.Packet) error {
	if !d.bound || p.TransferID != d.transferID {
		d.log.Debugf("decoder: dropping data packet for unbound/other transfer %d", p.TransferID)
		return nil
	}
	if int(p.SBN) >= len(d.blocks) || d.blocks[p.SBN] == nil {
		d.log.Debugf("decoder: dropping data packet with out-of-range sbn %d", p.SBN)
		return nil
	}
	if d.completed[p.SBN] {
		return nil
	}

	bd := d.blocks[p.SBN]
	status, err := bd.Add(p.ESI, p.Symbol)
	if err != nil {
		d.failedAttempts[p.SBN]++
		overheadLimit := int(bd.K()) + 2*len(d.ranges)
		if d.failedAttempts[p.SBN] > overheadLimit {
			d.log.Errorf("decoder: block %d decode failing persistently: %v", p.SBN, err)
			return fmt.Errorf("%w: block %d: %v", ErrDecodeFailedPersistent, p.SBN, err)
		}
		d.log.Debugf("decoder: block %d decode attempt failed, will retry: %v", p.SBN, err)
		return nil
	}

	if status != raptorq.Ready {
		return nil
	}

	d.completed[p.SBN] = true
	d.doneCount++
	d.log.Infof("decoder: block %d reconstructed (%d/%d)", p.SBN, d.doneCount, len(d.ranges))

	if d.doneCount == len(d.ranges) {
		d.assemble()
	}
	return nil
}

func (d *Decoder) assemble() {
	total := make([]byte, 0, d.oti.F)
	for _, bd := range d.blocks {
		block, err := bd.Finish()
		if err != nil {
			d.log.Errorf("decoder: assemble: %v", err)
			return
		}
		total = append(total, block...)
	}
	d.done = true
	d.payload = total
	d.log.Infof("decoder: transfer %d complete: %s (%d bytes)", d.transferID, d.fileName, len(total))
}

func (d *Decoder) status() Status {
	if d.done {
		return Status{Kind: Done, FileName: d.fileName, Payload: d.payload, BlocksDone: d.doneCount, BlocksTotal: len(d.ranges)}
	}
	if d.bound {
		return Status{Kind: Progress, BlocksDone: d.doneCount, BlocksTotal: len(d.ranges)}
	}
	return Status{Kind: NeedMore}
}
