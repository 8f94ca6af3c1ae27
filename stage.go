package pebb

//
// Packet stage: event-driven wrapper around the packet buffer
//

import (
	"io"
	"sync"
)

// StageConfig contains config for creating a [PacketStage]. Make sure
// you initialize all the fields marked as MANDATORY.
type StageConfig struct {
	// Arbiter is the MANDATORY arbiter deciding the fate of each
	// head packet.
	Arbiter Arbiter

	// Buffer is the OPTIONAL configuration of the underlying
	// [PacketBuffer].
	Buffer *BufferConfig

	// Logger is the MANDATORY logger.
	Logger Logger

	// Sink is the MANDATORY sink receiving streamed packets.
	Sink PacketSink

	// SinkWrapper OPTIONALLY wraps the sink, e.g. with a [PCAPDumper].
	SinkWrapper SinkWrapper

	// Source is the MANDATORY source of ingress flits.
	Source FlitSource

	// Stats is the OPTIONAL collector of stage statistics. Setting
	// this field selects the full forwarding algorithm.
	Stats *StageStats
}

// PacketStage is the ingress buffering stage of a router port. It
// clocks a [PacketBuffer] in a background goroutine: flits read from
// the source fill the buffer, the arbiter is consulted once per head
// packet, and streamed packets are reassembled and delivered to the
// sink. Dropped packets are retired silently, exactly as the buffer
// does in hardware. The zero value is invalid; use [NewPacketStage].
//
// Once created, a stage immediately starts forwarding until you call
// [PacketStage.Close] to shut it down.
//
// The returned [PacketStage] TAKES OWNERSHIP of the source and of the
// sink: closing the stage closes the source, waits for the forwarding
// goroutine to settle, and then closes the sink when it implements
// [io.Closer].
type PacketStage struct {
	// closeOnce allows Close to have a "once" semantics.
	closeOnce sync.Once

	// buffer is the underlying packet buffer.
	buffer *PacketBuffer

	// sink is the (possibly wrapped) sink.
	sink PacketSink

	// source is the flit source.
	source FlitSource

	// wg allows us to wait for the forwarding goroutine.
	wg *sync.WaitGroup
}

// NewPacketStage creates a new [PacketStage] instance and spawns the
// goroutine forwarding traffic from the source to the sink.
func NewPacketStage(config *StageConfig) *PacketStage {
	buffer := NewPacketBuffer(config.Buffer)

	sink := config.Sink
	if config.SinkWrapper != nil {
		sink = config.SinkWrapper.WrapSink(sink)
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go stageForwardChooseBest(&StageFwdConfig{
		Arbiter: config.Arbiter,
		Buffer:  buffer,
		Logger:  config.Logger,
		Sink:    sink,
		Source:  config.Source,
		Stats:   config.Stats,
		Wg:      wg,
	})

	stage := &PacketStage{
		closeOnce: sync.Once{},
		buffer:    buffer,
		sink:      sink,
		source:    config.Source,
		wg:        wg,
	}
	return stage
}

// Close closes the [PacketStage].
func (ps *PacketStage) Close() error {
	ps.closeOnce.Do(func() {
		ps.source.Close()
		ps.wg.Wait()
		if closer, okay := ps.sink.(io.Closer); okay {
			closer.Close()
		}
	})
	return nil
}
