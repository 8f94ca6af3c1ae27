package pebb

//
// Packet buffer: control FSM
//

// tickControl recognizes a per-packet command while the reader is
// idle. A command is latched when the controller asserts the valid
// signal, the head packet's header has been accepted, and exactly one
// of stream and drop is set. Everything else is a protocol violation
// by the external collaborator and is ignored.
func (pb *PacketBuffer) tickControl(in *BufferInputs) {
	if !in.ControlValid {
		return
	}
	if len(pb.lengths) <= 0 {
		return
	}
	if pb.justRetired {
		// the head metadata was not observable this cycle
		return
	}
	if in.Stream == in.Drop {
		return
	}
	pb.emitRemaining = int(pb.lengths[0])
	if in.Stream {
		pb.mode = readerStreaming
		return
	}
	pb.mode = readerDropping
}
