package pebb

//
// Stage ports
//

import "sync"

// StagePort connects the egress side of one [PacketStage] to the
// ingress side of the next. Whole packets written through the
// [PacketSink] side are replayed flit by flit through the [FlitSource]
// side, the way a router hop re-serializes traffic onto the next link.
// The zero value is invalid; use [NewStagePort] to instantiate.
type StagePort struct {
	// closeOnce provides once semantics for the Close method
	closeOnce sync.Once

	// closed is closed when we close this port
	closed chan any

	// logger is the logger to use
	logger Logger

	// name is the port name
	name string

	// notify is posted each time new flits are queued
	notify chan any

	// queueMu protects queue
	queueMu sync.Mutex

	// queue contains the flits awaiting replay
	queue []Flit
}

// maxPortQueuedFlits bounds the number of flits a [StagePort] holds.
const maxPortQueuedFlits = 1 << 14

// NewStagePort creates a new [StagePort].
func NewStagePort(logger Logger) *StagePort {
	port := &StagePort{
		closeOnce: sync.Once{},
		closed:    make(chan any),
		logger:    logger,
		name:      newPortName(),
		notify:    make(chan any, 1),
		queueMu:   sync.Mutex{},
		queue:     []Flit{},
	}
	port.logger.Debugf("pebb: port %s up", port.name)
	return port
}

var (
	_ FlitSource = &StagePort{}
	_ PacketSink = &StagePort{}
)

// Name returns the name of the port.
func (sp *StagePort) Name() string {
	return sp.name
}

// WritePacket implements PacketSink. The packet's flits are queued for
// flit-by-flit replay on the source side.
func (sp *StagePort) WritePacket(packet *Packet) error {
	select {
	case <-sp.closed:
		return ErrPortClosed
	default:
		// fallthrough
	}

	// enqueue
	sp.queueMu.Lock()
	if len(sp.queue)+len(packet.Flits) > maxPortQueuedFlits {
		sp.queueMu.Unlock()
		return ErrQueueFull
	}
	sp.queue = append(sp.queue, packet.Flits...)
	sp.queueMu.Unlock()

	// notify: a single pending token suffices because readers
	// drain the queue completely when they wake up
	select {
	case sp.notify <- true:
	default:
	}
	return nil
}

// WriteFlit queues a single flit for replay on the source side. This
// is what an upstream packetizer calls to feed the port flit by flit.
func (sp *StagePort) WriteFlit(flit Flit) error {
	select {
	case <-sp.closed:
		return ErrPortClosed
	default:
		// fallthrough
	}

	sp.queueMu.Lock()
	if len(sp.queue) >= maxPortQueuedFlits {
		sp.queueMu.Unlock()
		return ErrQueueFull
	}
	sp.queue = append(sp.queue, flit)
	sp.queueMu.Unlock()

	select {
	case sp.notify <- true:
	default:
	}
	return nil
}

// FlitAvailable implements FlitSource
func (sp *StagePort) FlitAvailable() <-chan any {
	return sp.notify
}

// ReadFlitNonblocking implements FlitSource
func (sp *StagePort) ReadFlitNonblocking() (Flit, error) {
	// honour the port-closed flag
	select {
	case <-sp.closed:
		return 0, ErrSourceClosed
	default:
		// fallthrough
	}

	// check whether we can read from the queue
	defer sp.queueMu.Unlock()
	sp.queueMu.Lock()
	if len(sp.queue) <= 0 {
		return 0, ErrNoFlit
	}

	// dequeue flit
	flit := sp.queue[0]
	sp.queue = sp.queue[1:]
	return flit, nil
}

// SourceClosed implements FlitSource
func (sp *StagePort) SourceClosed() <-chan any {
	return sp.closed
}

// Close closes the port.
func (sp *StagePort) Close() error {
	sp.closeOnce.Do(func() {
		sp.logger.Debugf("pebb: port %s down", sp.name)
		close(sp.closed)
	})
	return nil
}
