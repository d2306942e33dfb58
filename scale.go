package beefy

import "encoding/binary"

// encodeCompactUint64 writes n using parity-scale-codec's "compact"
// length encoding: a 2-bit mode tag in the low bits of the first byte
// selects single-byte (<=63), two-byte, four-byte, or big-integer mode.
// Sequence lengths (Vec<T>) are always compact-encoded; this package only
// ever needs it for lengths. Values above 2^30-1 use big-integer mode.
func encodeCompactUint64(buf *[]byte, n uint64) {
	switch {
	case n <= 0x3f:
		*buf = append(*buf, byte(n)<<2)
	case n <= 0x3fff:
		v := uint16(n)<<2 | 0b01
		tmp := make([]byte, 2)
		binary.LittleEndian.PutUint16(tmp, v)
		*buf = append(*buf, tmp...)
	case n <= 0x3fffffff:
		v := uint32(n)<<2 | 0b10
		tmp := make([]byte, 4)
		binary.LittleEndian.PutUint32(tmp, v)
		*buf = append(*buf, tmp...)
	default:
		// big-integer mode: low byte holds (bytelen-4)<<2|0b11, followed
		// by the little-endian value bytes.
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], n)
		nbytes := 8
		for nbytes > 4 && tmp[nbytes-1] == 0 {
			nbytes--
		}
		*buf = append(*buf, byte((nbytes-4)<<2|0b11))
		*buf = append(*buf, tmp[:nbytes]...)
	}
}

func encodeBytes(buf *[]byte, b []byte) {
	encodeCompactUint64(buf, uint64(len(b)))
	*buf = append(*buf, b...)
}

func encodeU32(buf *[]byte, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	*buf = append(*buf, tmp[:]...)
}

func encodeU64(buf *[]byte, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	*buf = append(*buf, tmp[:]...)
}

func encodeU8(buf *[]byte, v uint8) {
	*buf = append(*buf, v)
}

func encodeHash(buf *[]byte, h Hash) {
	*buf = append(*buf, h[:]...)
}

// Encode returns the SCALE encoding of the payload: a compact-length
// sequence of (2-byte id, length-prefixed value) pairs.
func (p Payload) Encode() []byte {
	var buf []byte
	encodeCompactUint64(&buf, uint64(len(p)))
	for _, item := range p {
		buf = append(buf, item.ID[0], item.ID[1])
		encodeBytes(&buf, item.Value)
	}
	return buf
}

// Encode returns the SCALE encoding of the commitment: payload, then
// block_number (u32), then validator_set_id (u64), in field-declaration
// order. This is the byte string BEEFY validators actually sign (after
// keccak-256), so it must match the relay chain's own encoding bit for
// bit.
func (c Commitment) Encode() []byte {
	var buf []byte
	buf = append(buf, c.Payload.Encode()...)
	encodeU32(&buf, c.BlockNumber)
	encodeU64(&buf, c.ValidatorSetID)
	return buf
}

// Encode returns the SCALE encoding of an authority set descriptor: id
// (u64), len (u32), root (32-byte hash).
func (s BeefyNextAuthoritySet) Encode() []byte {
	var buf []byte
	encodeU64(&buf, s.ID)
	encodeU32(&buf, s.Len)
	encodeHash(&buf, s.Root)
	return buf
}

// Encode returns the SCALE encoding of an MMR leaf: version (u8), parent
// number (u32), parent hash (32-byte), the next authority set descriptor,
// then the parachain-heads root (32-byte). Its keccak-256 digest, with no
// extra framing bytes, is the MMR leaf's node value (see update.go).
func (l MmrLeaf) Encode() []byte {
	var buf []byte
	encodeU8(&buf, l.Version)
	encodeU32(&buf, l.ParentNumber)
	encodeHash(&buf, l.ParentHash)
	buf = append(buf, l.BeefyNextAuthoritySet.Encode()...)
	encodeHash(&buf, l.ParachainHeads)
	return buf
}
