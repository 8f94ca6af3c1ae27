package pebb

//
// Packet buffer: ingress writer
//

// tickIngress runs the ingress-writer half of a tick. It admits the
// incoming flit when valid, decodes the packet length of header flits,
// and tracks how many flits of the current input packet are still due.
//
// Back-pressure holds everything in place: when the flit store was full
// at the pre-edge sample, or when the incoming flit is a header and the
// packet-length queue is full, the writer refuses the flit and keeps
// all its state.
func (pb *PacketBuffer) tickIngress(in *BufferInputs, nFlitsBefore int) {
	if !in.InFlitValid {
		return
	}
	if nFlitsBefore >= len(pb.store) {
		return
	}
	startsPacket := pb.inRemaining <= 0
	if startsPacket && len(pb.lengths) >= pb.maxPackets {
		return
	}

	pb.store[pb.tail] = in.InFlit
	pb.tail = (pb.tail + 1) % len(pb.store)
	pb.nFlits++

	if startsPacket {
		length := in.InFlit.PacketLength()
		pb.lengths = append(pb.lengths, length)
		pb.inRemaining = int(length) - 1
		return
	}
	pb.inRemaining--
}
