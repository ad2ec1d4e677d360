// Package raptorq adapts github.com/xssnick/raptorq — the RaptorQ erasure
// coding dependency this corpus's own WireGuard fork already imports for its
// FEC scheme — into the per-block encoder/decoder contract RFC 6330 and
// spec.md §4.2 require: explicit (SBN, ESI) addressing, idempotent decode,
// and a deterministic Object Transmission Information derivation.
package raptorq

// defaultMaxSymbolSize bounds symbol size T so that encoded packets stay
// well inside a single QR code's alphanumeric capacity once framed and
// Base45-encoded.
const defaultMaxSymbolSize = 1400

// maxSourceSymbolsPerBlock is RFC 6330's KMax: the largest number of source
// symbols a single RaptorQ block may contain.
const maxSourceSymbolsPerBlock = 56403

// alignment is the byte alignment (Al) RaptorQ symbols are built to.
const alignment = 4

// OTI is the Object Transmission Information needed to reconstruct a
// SourceObject: transfer length, symbol size, source block count, sub-block
// count, and alignment. It fits the 12-byte Common OTI layout of RFC 6330
// §3.3 (F:5, reserved:1, T:2, Z:1, N:2, Al:1); this implementation always
// uses a single sub-block (N=1) and does not use the Scheme-Specific OTI.
type OTI struct {
	F  uint64 // transfer length in bytes
	T  uint16 // symbol size in bytes
	Z  uint8  // number of source blocks
	N  uint16 // number of sub-blocks per source block (always 1 here)
	Al uint8  // symbol alignment
}

// DeriveOTI computes the OTI for a transfer of length f bytes, choosing a
// symbol size no larger than maxSymbol (0 selects defaultMaxSymbolSize) and
// a block count that keeps every block within RaptorQ's per-block source
// symbol limit. The block count is capped at 255, so that limit holds only
// while f fits in 255 full blocks. It is deterministic and total for any f
// and maxSymbol.
func DeriveOTI(f uint64, maxSymbol uint16) OTI {
	t := maxSymbol
	if t == 0 || t > defaultMaxSymbolSize {
		t = defaultMaxSymbolSize
	}

	totalSymbols := ceilDiv(f, uint64(t))
	if totalSymbols == 0 {
		totalSymbols = 1
	}

	z := ceilDiv(totalSymbols, maxSourceSymbolsPerBlock)
	if z == 0 {
		z = 1
	}
	if z > 255 {
		z = 255
	}

	return OTI{F: f, T: t, Z: uint8(z), N: 1, Al: alignment}
}

// BlockRange describes the byte span of one source block within the
// original SourceObject payload.
type BlockRange struct {
	SBN    uint8
	Offset uint64
	Length uint64
}

// BlockRanges partitions the F bytes described by oti across its Z source
// blocks as evenly as possible, in SBN order, covering every byte exactly
// once.
func BlockRanges(oti OTI) []BlockRange {
	z := uint64(oti.Z)
	ranges := make([]BlockRange, 0, z)
	base := oti.F / z
	extra := oti.F % z
	var offset uint64
	for sbn := uint64(0); sbn < z; sbn++ {
		length := base
		if sbn < extra {
			length++
		}
		ranges = append(ranges, BlockRange{SBN: uint8(sbn), Offset: offset, Length: length})
		offset += length
	}
	return ranges
}

// SymbolsPerBlock returns K, the number of source symbols for a block of
// the given byte length under the given symbol size.
func SymbolsPerBlock(blockLen uint64, t uint16) uint32 {
	k := ceilDiv(blockLen, uint64(t))
	if k == 0 {
		k = 1
	}
	return uint32(k)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
