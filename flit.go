package pebb

//
// Flits and header decoding
//

import "encoding/binary"

// Flit is a single 64-bit flow-control digit, the minimum unit a NoC
// link transfers in one clock cycle. The first flit of every packet is
// a header flit whose low three bytes carry routing metadata in
// little-endian byte order:
//
//   - byte 0: destination node address;
//
//   - byte 1: source node address;
//
//   - byte 2: total number of flits in the packet, header included;
//
//   - bytes 3-7: reserved, preserved verbatim on egress.
//
// Flits other than the header are opaque payload.
type Flit uint64

// FlitSize is the size of a serialized [Flit] in bytes.
const FlitSize = 8

// NewHeaderFlit constructs a header flit for a packet directed to
// toAddr, originating from fromAddr, and counting length total flits,
// header included. The reserved bytes are zero.
func NewHeaderFlit(toAddr, fromAddr, length uint8) Flit {
	return Flit(uint64(toAddr) | uint64(fromAddr)<<8 | uint64(length)<<16)
}

// ToAddr returns the destination node address encoded in the flit,
// assuming the flit is a header flit.
func (f Flit) ToAddr() uint8 {
	return uint8(f)
}

// FromAddr returns the source node address encoded in the flit,
// assuming the flit is a header flit.
func (f Flit) FromAddr() uint8 {
	return uint8(f >> 8)
}

// PacketLength returns the total packet length in flits encoded in the
// flit, assuming the flit is a header flit.
func (f Flit) PacketLength() uint8 {
	return uint8(f >> 16)
}

// AppendBytes appends the little-endian serialization of the flit
// to the given buffer and returns the extended buffer.
func (f Flit) AppendBytes(b []byte) []byte {
	return binary.LittleEndian.AppendUint64(b, uint64(f))
}

// FlitFromBytes deserializes a flit from the first [FlitSize] bytes of
// the given little-endian buffer.
func FlitFromBytes(b []byte) Flit {
	return Flit(binary.LittleEndian.Uint64(b))
}

// Header is the decoded view of a header flit.
type Header struct {
	// Raw is the raw header flit.
	Raw Flit

	// ToAddr is the destination node address.
	ToAddr uint8

	// FromAddr is the source node address.
	FromAddr uint8

	// PacketLength is the total number of flits in the
	// packet, header included.
	PacketLength uint8
}

// DissectHeader decodes the routing metadata of a header flit. The
// header is trusted: there is no validation to perform and this
// function cannot fail.
func DissectHeader(f Flit) *Header {
	return &Header{
		Raw:          f,
		ToAddr:       f.ToAddr(),
		FromAddr:     f.FromAddr(),
		PacketLength: f.PacketLength(),
	}
}
