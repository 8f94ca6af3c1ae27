package pebb

//
// Stage forwarding: core implementation
//

import (
	"errors"
	"sync"
)

// StageFwdConfig contains config for stage forwarding algorithms. Make
// sure you initialize all the fields marked as MANDATORY.
type StageFwdConfig struct {
	// Arbiter is the MANDATORY per-packet arbiter.
	Arbiter Arbiter

	// Buffer is the MANDATORY packet buffer to clock.
	Buffer *PacketBuffer

	// Logger is the MANDATORY logger.
	Logger Logger

	// Sink is the MANDATORY sink receiving streamed packets.
	Sink PacketSink

	// Source is the MANDATORY source of ingress flits.
	Source FlitSource

	// Stats is the OPTIONAL statistics collector used by [StageFwdFull].
	Stats *StageStats

	// Wg is the MANDATORY wait group that the forwarding goroutine
	// will notify when it is shutting down.
	Wg *sync.WaitGroup
}

// StageFwdFunc is the type of a stage forwarding function.
type StageFwdFunc func(cfg *StageFwdConfig)

// stageForwardChooseBest forwards traffic through the stage. This
// function selects the right implementation depending on the provided
// configuration.
func stageForwardChooseBest(cfg *StageFwdConfig) {
	if cfg.Stats == nil {
		StageFwdFast(cfg)
		return
	}
	StageFwdFull(cfg)
}

// stageFwdState is the clocking state shared by the forwarding
// algorithms. The zero value is invalid; construct with
// [newStageFwdState].
type stageFwdState struct {
	// cfg is the forwarding config.
	cfg *StageFwdConfig

	// out holds the buffer outputs of the most recent tick.
	out *BufferOutputs

	// pending accumulates the flits of the packet currently
	// being streamed out of the buffer.
	pending []Flit

	// record selects whether we account statistics.
	record bool

	// tick is the number of the current tick.
	tick int64

	// inShadowRemaining mirrors the writer's flit countdown so we can
	// spot header flits on the ingress side.
	inShadowRemaining int

	// arrivals records the arrival tick of each buffered header, in
	// arrival order.
	arrivals []int64
}

// newStageFwdState creates a [stageFwdState] and primes the buffer
// outputs with one idle tick.
func newStageFwdState(cfg *StageFwdConfig, record bool) *stageFwdState {
	return &stageFwdState{
		cfg:               cfg,
		out:               cfg.Buffer.Tick(&BufferInputs{}),
		pending:           nil,
		record:            record,
		tick:              0,
		inShadowRemaining: 0,
		arrivals:          nil,
	}
}

// clock advances the virtual clock by one tick. The ingress side is
// fed with the given flit when valid; the control side issues the
// arbiter's command whenever the previous tick exposed a ready head
// packet; streamed flits are reassembled into whole packets and
// delivered to the sink.
func (st *stageFwdState) clock(flit Flit, valid bool) {
	st.tick++

	in := &BufferInputs{
		InFlit:       flit,
		InFlitValid:  valid,
		ControlValid: false,
		Stream:       false,
		Drop:         false,
	}

	if st.record && valid && st.out.InReady {
		st.trackArrival(flit)
	}

	if st.out.ControlReady {
		header := DissectHeader(st.out.Header)
		decision := st.cfg.Arbiter.Decide(header)
		in.ControlValid = true
		switch decision {
		case DecisionDrop:
			in.Drop = true
		default:
			in.Stream = true
		}
		if st.record {
			st.trackDecision(header, decision)
		}
	}

	st.out = st.cfg.Buffer.Tick(in)

	if st.record {
		st.cfg.Stats.recordOccupancy(st.out.NFlits)
	}

	if st.out.OutFlitValid {
		st.pending = append(st.pending, st.out.OutFlit)
		header := DissectHeader(st.pending[0])
		if len(st.pending) >= int(header.PacketLength) {
			packet := &Packet{Header: header, Flits: st.pending}
			st.pending = nil
			if err := st.cfg.Sink.WritePacket(packet); err != nil {
				st.cfg.Logger.Warnf("pebb: WritePacket: %s", err.Error())
			}
		}
	}
}

// trackArrival records the arrival tick of header flits accepted by
// the ingress writer.
func (st *stageFwdState) trackArrival(flit Flit) {
	if st.inShadowRemaining <= 0 {
		st.arrivals = append(st.arrivals, st.tick)
		st.inShadowRemaining = int(flit.PacketLength()) - 1
		return
	}
	st.inShadowRemaining--
}

// trackDecision accounts for the retirement of the head packet. The
// command is sampled on the current tick, so the final flit retires
// after as many further ticks as the packet is long.
func (st *stageFwdState) trackDecision(header *Header, decision Decision) {
	length := int64(header.PacketLength)
	retireTick := st.tick + length
	var latency int64
	if len(st.arrivals) > 0 {
		latency = retireTick - st.arrivals[0]
		st.arrivals = st.arrivals[1:]
	}
	st.cfg.Stats.recordRetire(decision, length, latency)
}

// drainSource clocks the buffer once per flit the source has pending.
func (st *stageFwdState) drainSource() {
	for {
		flit, err := st.cfg.Source.ReadFlitNonblocking()
		if err != nil {
			if !errors.Is(err, ErrNoFlit) && !errors.Is(err, ErrSourceClosed) {
				st.cfg.Logger.Warnf("pebb: ReadFlitNonblocking: %s", err.Error())
			}
			return
		}
		st.clock(flit, true)
	}
}

// settle keeps clocking without ingress until the buffer goes quiet:
// no decision is due and no stream or drop is in progress. A stream
// that is waiting for the writer to catch up does not count as
// progress, so settling never spins on a starved reader.
func (st *stageFwdState) settle() {
	for st.busy() {
		st.clock(0, false)
	}
}

// busy returns whether the buffer still makes progress on its own.
func (st *stageFwdState) busy() bool {
	if st.out.ControlReady {
		return true
	}
	// on the tick a command is latched the header is still observable
	// but control is no longer ready: the stream or drop has begun
	latched := st.out.PacketReady && !st.out.ControlReady
	inflight := st.out.NPackets > 0 && (latched || !st.out.PacketReady)
	return inflight && st.out.NFlits > 0
}
