package pebb

//
// Packet buffer: egress reader
//

// tickEgress runs the egress-reader half of a tick. While streaming it
// emits the flit at the read cursor; while dropping it advances the
// cursor with the egress valid signal held low. In both cases the head
// packet retires once its final flit has been consumed. When idle, the
// reader defers to the control FSM, which may latch a command whose
// first effect lands on the following tick.
func (pb *PacketBuffer) tickEgress(in *BufferInputs, out *BufferOutputs) {
	switch pb.mode {
	case readerStreaming:
		if pb.nFlits <= 0 {
			// the command outran the writer: hold until the
			// next flit of this packet has been stored
			return
		}
		out.OutFlit = pb.store[pb.head]
		out.OutFlitValid = true
		pb.retireHeadFlit()
	case readerDropping:
		if pb.nFlits <= 0 {
			return
		}
		pb.retireHeadFlit()
	default:
		// the FSM consults the retirement flag of the previous
		// tick before the flag is cleared for this one
		pb.tickControl(in)
		pb.justRetired = false
	}
}

// retireHeadFlit advances the read cursor by one flit and retires the
// head packet when this was its final flit.
func (pb *PacketBuffer) retireHeadFlit() {
	pb.head = (pb.head + 1) % len(pb.store)
	pb.nFlits--
	pb.emitRemaining--
	if pb.emitRemaining <= 0 {
		pb.lengths = pb.lengths[1:]
		pb.mode = readerIdle
		pb.justRetired = true
	}
}
