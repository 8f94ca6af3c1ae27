package pebb

//
// Packet buffer: shared store and clocked state
//

// DefaultBufferCapacity is the flit capacity used by [NewPacketBuffer]
// when [BufferConfig.Capacity] is zero.
const DefaultBufferCapacity = 256

// DefaultBufferMaxPackets is the packet-length-queue capacity used by
// [NewPacketBuffer] when [BufferConfig.MaxPackets] is zero.
const DefaultBufferMaxPackets = 64

// BufferConfig contains config for creating a [PacketBuffer].
type BufferConfig struct {
	// Capacity is the OPTIONAL capacity of the circular flit store. We
	// use [DefaultBufferCapacity] when this field is zero.
	Capacity int

	// MaxPackets is the OPTIONAL capacity of the packet-length queue,
	// which bounds the number of packets the buffer can hold at once. We
	// use [DefaultBufferMaxPackets] when this field is zero.
	MaxPackets int
}

// BufferInputs contains the input signals a [PacketBuffer] samples on a
// single rising clock edge. The zero value means "no activity": no
// ingress flit and no control command.
type BufferInputs struct {
	// InFlit is the ingress flit. Only meaningful when InFlitValid is true.
	InFlit Flit

	// InFlitValid indicates that InFlit carries a valid flit this cycle.
	InFlitValid bool

	// ControlValid indicates that the controller issues a command this
	// cycle. Exactly one of Stream and Drop must be set along with it;
	// any other combination is ignored.
	ControlValid bool

	// Stream commands the buffer to stream the head packet.
	Stream bool

	// Drop commands the buffer to drop the head packet.
	Drop bool
}

// BufferOutputs contains the output signals a [PacketBuffer] publishes
// after a rising clock edge.
type BufferOutputs struct {
	// OutFlit is the egress flit. Only meaningful when OutFlitValid is true.
	OutFlit Flit

	// OutFlitValid indicates that OutFlit carries a streamed flit this cycle.
	OutFlitValid bool

	// InReady indicates that the buffer will accept an ingress flit on
	// the next cycle. This is the back-pressure signal for the upstream
	// packetizer.
	InReady bool

	// PacketReady indicates that the head packet's header flit is at the
	// read cursor and its metadata is observable below.
	PacketReady bool

	// ControlReady indicates that a stream or drop command may be issued
	// on the next cycle.
	ControlReady bool

	// Header is the raw header flit of the head packet. Only meaningful
	// when PacketReady is true, like the three decoded fields below.
	Header Flit

	// ToAddr is the decoded destination node address of the head packet.
	ToAddr uint8

	// FromAddr is the decoded source node address of the head packet.
	FromAddr uint8

	// PacketLength is the decoded total flit count of the head packet.
	PacketLength uint8

	// NPackets counts the packets currently holding at least one flit
	// in the buffer.
	NPackets int

	// NFlits counts the flits currently stored in the buffer.
	NFlits int
}

// readerMode is the state of the egress reader.
type readerMode int

// readerIdle means no egress is in progress.
const readerIdle = readerMode(0)

// readerStreaming means the head packet is being emitted.
const readerStreaming = readerMode(1)

// readerDropping means the head packet is being retired without emission.
const readerDropping = readerMode(2)

// PacketBuffer is a cycle-accurate model of the clocked ingress buffer
// stage of a NoC router. The zero value is invalid; construct using
// [NewPacketBuffer].
//
// The buffer admits one flit per tick on the ingress side, exposes the
// head packet's routing metadata once its header flit has been
// latched, and streams or drops whole packets in arrival order under
// the direction of per-packet commands. Ingress and egress advance in
// the same tick without stalling each other; the flit and packet
// counters net simultaneous changes atomically.
//
// A PacketBuffer is not safe for concurrent use: it models a single
// clock domain and expects exactly one caller of [PacketBuffer.Tick].
type PacketBuffer struct {
	// store is the circular flit store.
	store []Flit

	// head is the index of the next flit to emit or drop.
	head int

	// tail is the index of the next ingress write slot.
	tail int

	// nFlits counts the stored flits.
	nFlits int

	// lengths is the packet-length queue, in arrival order. Its length
	// is also the packet count.
	lengths []uint8

	// maxPackets bounds the packet-length queue.
	maxPackets int

	// inRemaining counts the flits still expected for the packet
	// currently being written. Zero means the next valid ingress flit
	// is a header.
	inRemaining int

	// mode is the egress reader state.
	mode readerMode

	// emitRemaining counts the flits still to emit or drop for the
	// packet currently being retired.
	emitRemaining int

	// justRetired records that a packet retired on the current tick;
	// the head metadata is republished on the following tick.
	justRetired bool
}

// NewPacketBuffer creates a new [PacketBuffer]. Passing a nil config is
// equivalent to passing a zero-value config.
func NewPacketBuffer(config *BufferConfig) *PacketBuffer {
	if config == nil {
		config = &BufferConfig{}
	}
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	maxPackets := config.MaxPackets
	if maxPackets <= 0 {
		maxPackets = DefaultBufferMaxPackets
	}
	return &PacketBuffer{
		store:         make([]Flit, capacity),
		head:          0,
		tail:          0,
		nFlits:        0,
		lengths:       make([]uint8, 0, maxPackets),
		maxPackets:    maxPackets,
		inRemaining:   0,
		mode:          readerIdle,
		emitRemaining: 0,
	}
}

// Capacity returns the capacity of the circular flit store.
func (pb *PacketBuffer) Capacity() int {
	return len(pb.store)
}

// Reset synchronously clears the buffer: both cursors, both counters,
// the packet-length queue, and the writer and reader state. Partial
// packets in flight are discarded.
func (pb *PacketBuffer) Reset() {
	pb.head = 0
	pb.tail = 0
	pb.nFlits = 0
	pb.lengths = pb.lengths[:0]
	pb.inRemaining = 0
	pb.mode = readerIdle
	pb.emitRemaining = 0
	pb.justRetired = false
}

// Tick advances the buffer by one rising clock edge. It samples the
// given inputs, commits the next state, and returns the output signals
// as observed after the edge.
//
// All decisions inside a tick read the pre-edge state, so an ingress
// write and an egress emission in the same tick neither see each other
// nor stall each other. The one exception is the writer's
// packet-length-queue check, which sees a queue slot freed by a packet
// retiring on the same tick. A command sampled on this tick produces
// its first streamed flit on the following tick.
func (pb *PacketBuffer) Tick(in *BufferInputs) *BufferOutputs {
	out := &BufferOutputs{}

	// the ingress full check must use the pre-edge flit count even
	// when the egress side frees a slot in the same tick
	nFlitsBefore := pb.nFlits

	pb.tickEgress(in, out)
	pb.tickIngress(in, nFlitsBefore)
	pb.publish(out)
	return out
}

// publish fills the output signals from the post-edge state.
func (pb *PacketBuffer) publish(out *BufferOutputs) {
	out.NFlits = pb.nFlits
	out.NPackets = len(pb.lengths)
	out.InReady = pb.nFlits < len(pb.store) &&
		!(pb.inRemaining <= 0 && len(pb.lengths) >= pb.maxPackets)

	// the read cursor is at a packet boundary when the reader is idle
	// or when a command has been latched but nothing was emitted yet
	boundary := pb.mode == readerIdle ||
		pb.emitRemaining == int(pb.lengths[0])

	out.PacketReady = len(pb.lengths) > 0 && boundary && !pb.justRetired
	out.ControlReady = out.PacketReady && pb.mode == readerIdle
	if out.PacketReady {
		header := pb.store[pb.head]
		out.Header = header
		out.ToAddr = header.ToAddr()
		out.FromAddr = header.FromAddr()
		out.PacketLength = header.PacketLength()
	}
}
