package pebb

//
// Data model
//

// Packet is a whole packet reassembled on the egress side of a
// [PacketStage]. Flits contains every flit of the packet in arrival
// order, the header flit first; Header is the decoded view of that
// header flit.
type Packet struct {
	// Header is the decoded header of the packet.
	Header *Header

	// Flits contains the packet's flits, header included.
	Flits []Flit
}

// NewPacket constructs a packet from its flits. The first flit must be
// the packet's header flit.
func NewPacket(flits ...Flit) *Packet {
	return &Packet{
		Header: DissectHeader(flits[0]),
		Flits:  flits,
	}
}

// FlitSource allows one to read incoming flits.
type FlitSource interface {
	// Close closes the source. A [PacketStage] owns its source and
	// closes it when the stage itself is closed.
	Close() error

	// FlitAvailable returns a channel that becomes readable
	// when a new flit has arrived.
	FlitAvailable() <-chan any

	// ReadFlitNonblocking reads an incoming flit. You should only call
	// this function after FlitAvailable has been readable. This function
	// returns one of the following errors:
	//
	// - ErrSourceClosed if the source has been closed;
	//
	// - ErrNoFlit if no flit is available.
	//
	// Callers should ignore ErrNoFlit and try reading again later.
	ReadFlitNonblocking() (Flit, error)

	// SourceClosed returns a channel that becomes readable when the
	// source has been closed.
	SourceClosed() <-chan any
}

// PacketSink allows one to deliver whole egressed packets.
type PacketSink interface {
	// WritePacket delivers a packet or returns an error. This function
	// returns ErrPortClosed when the sink has been closed.
	WritePacket(packet *Packet) error
}

// SinkWrapper wraps a [PacketSink] to intercept delivered packets,
// e.g. to record them into a PCAP file.
type SinkWrapper interface {
	WrapSink(sink PacketSink) PacketSink
}

// Logger is the logger we're using.
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// NullLogger is a [Logger] that does not emit logs.
type NullLogger struct{}

var _ Logger = &NullLogger{}

// Debug implements Logger
func (nl *NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements Logger
func (nl *NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements Logger
func (nl *NullLogger) Info(message string) {
	// nothing
}

// Infof implements Logger
func (nl *NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements Logger
func (nl *NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements Logger
func (nl *NullLogger) Warnf(format string, v ...any) {
	// nothing
}
