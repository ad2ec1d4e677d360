package raptorq

import (
	"encoding/binary"
	"errors"
)

// EncodedLen is the fixed wire size of a Common OTI per RFC 6330 §3.3.
const EncodedLen = 12

// ErrInvalidOtiLength is returned by UnmarshalOTI when given fewer than
// EncodedLen bytes.
var ErrInvalidOtiLength = errors.New("raptorq: invalid OTI length")

// Marshal serialises the OTI into its 12-byte Common OTI wire form:
// F:5 | reserved:1 | T:2 | Z:1 | N:2 | Al:1, all big-endian.
func (o OTI) Marshal() []byte {
	buf := make([]byte, EncodedLen)

	var f [8]byte
	binary.BigEndian.PutUint64(f[:], o.F)
	copy(buf[0:5], f[3:8]) // low 40 bits of F
	buf[5] = 0             // reserved
	binary.BigEndian.PutUint16(buf[6:8], o.T)
	buf[8] = o.Z
	binary.BigEndian.PutUint16(buf[9:11], o.N)
	buf[11] = o.Al

	return buf
}

// UnmarshalOTI parses a 12-byte Common OTI.
func UnmarshalOTI(b []byte) (OTI, error) {
	if len(b) < EncodedLen {
		return OTI{}, ErrInvalidOtiLength
	}

	var f [8]byte
	copy(f[3:8], b[0:5])

	return OTI{
		F:  binary.BigEndian.Uint64(f[:]),
		T:  binary.BigEndian.Uint16(b[6:8]),
		Z:  b[8],
		N:  binary.BigEndian.Uint16(b[9:11]),
		Al: b[11],
	}, nil
}
