// Package packet implements the fountain wire frame: wrapping a RaptorQ
// symbol (or, for Anchor packets, transfer metadata) with the small header
// described in spec.md §3–§4.3.
package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/handsomecheung/fountain/raptorq"
)

// Kind distinguishes the two packet variants on the wire.
type Kind uint8

const (
	// KindAnchor carries transfer metadata and no symbol data.
	KindAnchor Kind = 0
	// KindData carries one RaptorQ symbol addressed by (SBN, ESI).
	KindData Kind = 1
)

const (
	headerLen     = 1 + 4 // kind + transfer_id
	anchorFixed   = 1 + raptorq.EncodedLen
	dataFixedLen  = 1 + 3 // sbn + esi(u24)
	maxNameLength = 255
)

var (
	// ErrTruncatedPacket is returned when fewer bytes are present than the
	// kind requires.
	ErrTruncatedPacket = errors.New("packet: truncated")
	// ErrUnknownKind is returned for a kind byte other than 0 or 1.
	ErrUnknownKind = errors.New("packet: unknown kind")
	// ErrNameNotUTF8 is returned when an Anchor's file name is not valid
	// UTF-8.
	ErrNameNotUTF8 = errors.New("packet: file name is not valid UTF-8")
	// ErrInvalidOtiLength re-exports raptorq.ErrInvalidOtiLength. Parse
	// checks the Anchor's length before decoding the OTI, so a short OTI
	// field is reported as ErrTruncatedPacket.
	ErrInvalidOtiLength = raptorq.ErrInvalidOtiLength
	// ErrNameTooLong is returned by FrameAnchor when the file name exceeds
	// 255 bytes.
	ErrNameTooLong = errors.New("packet: file name exceeds 255 bytes")
	// ErrSymbolLength is returned by FrameData when sym is empty.
	ErrSymbolLength = errors.New("packet: empty symbol")
)

// Packet is the parsed form of one wire frame.
type Packet struct {
	Kind       Kind
	TransferID uint32

	// Anchor fields.
	FileName string
	OTI      raptorq.OTI

	// Data fields.
	SBN    uint8
	ESI    uint32 // 24-bit value
	Symbol []byte
}

// FrameAnchor serialises an Anchor packet.
func FrameAnchor(transferID uint32, fileName string, oti raptorq.OTI) ([]byte, error) {
	name := []byte(fileName)
	if len(name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	buf := make([]byte, 0, headerLen+1+len(name)+raptorq.EncodedLen)
	buf = append(buf, byte(KindAnchor))
	buf = appendU32(buf, transferID)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, oti.Marshal()...)
	return buf, nil
}

// FrameData serialises a Data packet.
func FrameData(transferID uint32, sbn uint8, esi uint32, sym []byte) ([]byte, error) {
	if len(sym) == 0 {
		return nil, ErrSymbolLength
	}
	buf := make([]byte, 0, headerLen+dataFixedLen+len(sym))
	buf = append(buf, byte(KindData))
	buf = appendU32(buf, transferID)
	buf = append(buf, sbn)
	buf = appendU24(buf, esi)
	buf = append(buf, sym...)
	return buf, nil
}

// Parse decodes one wire frame. Validation is strict: an Anchor must carry
// at least its fixed fields plus the declared name, and a Data packet must
// carry at least its fixed fields plus one byte of symbol.
func Parse(b []byte) (Packet, error) {
	if len(b) < headerLen {
		return Packet{}, ErrTruncatedPacket
	}

	kind := Kind(b[0])
	transferID := binary.BigEndian.Uint32(b[1:5])
	rest := b[5:]

	switch kind {
	case KindAnchor:
		if len(rest) < 1 {
			return Packet{}, ErrTruncatedPacket
		}
		nameLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < nameLen+raptorq.EncodedLen {
			return Packet{}, ErrTruncatedPacket
		}
		nameBytes := rest[:nameLen]
		if !utf8.Valid(nameBytes) {
			return Packet{}, ErrNameNotUTF8
		}
		oti, err := raptorq.UnmarshalOTI(rest[nameLen : nameLen+raptorq.EncodedLen])
		if err != nil {
			return Packet{}, fmt.Errorf("%w", err)
		}
		return Packet{
			Kind:       KindAnchor,
			TransferID: transferID,
			FileName:   string(nameBytes),
			OTI:        oti,
		}, nil

	case KindData:
		if len(rest) < dataFixedLen+1 {
			return Packet{}, ErrTruncatedPacket
		}
		sbn := rest[0]
		esi := readU24(rest[1:4])
		sym := rest[4:]
		return Packet{
			Kind:       KindData,
			TransferID: transferID,
			SBN:        sbn,
			ESI:        esi,
			Symbol:     sym,
		}, nil

	default:
		return Packet{}, ErrUnknownKind
	}
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU24(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>16), byte(v>>8), byte(v))
}

func readU24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
