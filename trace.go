package pebb

//
// PCAP dumper
//

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// PCAPDumper collects a PCAP trace of the packets reaching a sink,
// with each record carrying a packet's flits serialized little-endian.
// The zero value is invalid and you should use [NewPCAPDumper] to
// instantiate. Once you have a valid instance, you should register
// the PCAPDumper as the [SinkWrapper] inside the [StageConfig].
type PCAPDumper struct {
	// filename is the PCAP file name.
	filename string

	// logger is the logger to use.
	logger Logger
}

// NewPCAPDumper creates a new [PCAPDumper].
func NewPCAPDumper(filename string, logger Logger) *PCAPDumper {
	return &PCAPDumper{
		filename: filename,
		logger:   logger,
	}
}

var _ SinkWrapper = &PCAPDumper{}

// WrapSink implements the [SinkWrapper] interface.
func (pd *PCAPDumper) WrapSink(sink PacketSink) PacketSink {
	return newPCAPDumperSink(pd.filename, sink, pd.logger)
}

// pcapDumperSink is a [PacketSink] but also an open PCAP file. The
// zero value is invalid; use [newPCAPDumperSink] to instantiate.
type pcapDumperSink struct {
	// cancel stops the background goroutine.
	cancel context.CancelFunc

	// closeOnce provides "once" semantics for close.
	closeOnce sync.Once

	// logger is the logger to use.
	logger Logger

	// joined is closed when the background goroutine has terminated
	joined chan any

	// sink is the wrapped sink
	sink PacketSink

	// pich is the channel where we post packets to capture
	pich chan []byte
}

var (
	_ PacketSink = &pcapDumperSink{}
	_ io.Closer  = &pcapDumperSink{}
)

// newPCAPDumperSink wraps an existing [PacketSink], intercepts the
// packets delivered to it, and stores them into the given PCAP file.
// This function creates a background goroutine for writing into the
// PCAP file. To join the goroutine, call [pcapDumperSink.Close].
func newPCAPDumperSink(filename string, sink PacketSink, logger Logger) *pcapDumperSink {
	const manyPackets = 4096
	ctx, cancel := context.WithCancel(context.Background())
	pd := &pcapDumperSink{
		cancel:    cancel,
		closeOnce: sync.Once{},
		logger:    logger,
		joined:    make(chan any),
		sink:      sink,
		pich:      make(chan []byte, manyPackets),
	}
	go pd.loop(ctx, filename)
	return pd
}

// WritePacket implements PacketSink
func (pd *pcapDumperSink) WritePacket(packet *Packet) error {
	// send the serialized packet to the background writer
	pd.deliverPacketInfo(packet)

	// provide the packet to the wrapped sink
	return pd.sink.WritePacket(packet)
}

// deliverPacketInfo delivers a serialized packet to the background writer.
func (pd *pcapDumperSink) deliverPacketInfo(packet *Packet) {
	payload := make([]byte, 0, len(packet.Flits)*FlitSize)
	for _, flit := range packet.Flits {
		payload = flit.AppendBytes(payload)
	}
	select {
	case pd.pich <- payload:
	default:
		// just drop from the capture
	}
}

// loop is the loop that writes pcaps
func (pd *pcapDumperSink) loop(ctx context.Context, filename string) {
	// synchronize with parent
	defer close(pd.joined)

	// open the file where to create the pcap
	filep, err := os.Create(filename)
	if err != nil {
		pd.logger.Warnf("pebb: PCAPDumper: os.Create: %s", err.Error())
		return
	}
	defer func() {
		if err := filep.Close(); err != nil {
			pd.logger.Warnf("pebb: PCAPDumper: filep.Close: %s", err.Error())
			// fallthrough
		}
	}()

	// write the PCAP header; there is no standard link type for NoC
	// flit streams, so we use the null link type
	w := pcapgo.NewWriter(filep)
	const largeSnapLen = 262144
	if err := w.WriteFileHeader(largeSnapLen, layers.LinkTypeNull); err != nil {
		pd.logger.Warnf("pebb: PCAPDumper: WriteFileHeader: %s", err.Error())
		return
	}

	// loop until we're done and write each entry
	for {
		select {
		case <-ctx.Done():
			pd.drain(w)
			return
		case payload := <-pd.pich:
			pd.doWritePCAPEntry(payload, w)
		}
	}
}

// drain writes the entries still queued at shutdown.
func (pd *pcapDumperSink) drain(w *pcapgo.Writer) {
	for {
		select {
		case payload := <-pd.pich:
			pd.doWritePCAPEntry(payload, w)
		default:
			return
		}
	}
}

// doWritePCAPEntry writes the given packet entry into the PCAP file.
func (pd *pcapDumperSink) doWritePCAPEntry(payload []byte, w *pcapgo.Writer) {
	ci := gopacket.CaptureInfo{
		Timestamp:      time.Now(),
		CaptureLength:  len(payload),
		Length:         len(payload),
		InterfaceIndex: 0,
		AncillaryData:  []interface{}{},
	}
	if err := w.WritePacket(ci, payload); err != nil {
		pd.logger.Warnf("pebb: w.WritePacket: %s", err.Error())
		// fallthrough
	}
}

// Close implements io.Closer
func (pd *pcapDumperSink) Close() error {
	pd.closeOnce.Do(func() {
		// notify the wrapped sink to stop
		if closer, okay := pd.sink.(io.Closer); okay {
			closer.Close()
		}

		// notify the background goroutine to terminate
		pd.cancel()

		// wait until the channel is drained
		pd.logger.Debugf("pebb: PCAPDumper: awaiting for background writer to finish writing")
		<-pd.joined
	})
	return nil
}
