package pebb

//
// Arbiter: rules to drop packets
//

import "sync"

// DropTrafficForDestination is an [ArbiterRule] that drops every
// packet directed to a given destination node. The zero value is
// invalid; please fill all the fields marked as MANDATORY.
type DropTrafficForDestination struct {
	// Logger is the MANDATORY logger
	Logger Logger

	// ToAddr is the MANDATORY destination node address.
	ToAddr uint8
}

var _ ArbiterRule = &DropTrafficForDestination{}

// Filter implements ArbiterRule
func (r *DropTrafficForDestination) Filter(header *Header) (Decision, bool) {
	if header.ToAddr != r.ToAddr {
		return DecisionStream, false
	}
	r.Logger.Infof(
		"pebb: arbiter: dropping packet %d->%d len=%d because destination is %d",
		header.FromAddr,
		header.ToAddr,
		header.PacketLength,
		r.ToAddr,
	)
	return DecisionDrop, true
}

// DropTrafficForSource is an [ArbiterRule] that drops every packet
// originating from a given source node. The zero value is invalid;
// please fill all the fields marked as MANDATORY.
type DropTrafficForSource struct {
	// Logger is the MANDATORY logger
	Logger Logger

	// FromAddr is the MANDATORY source node address.
	FromAddr uint8
}

var _ ArbiterRule = &DropTrafficForSource{}

// Filter implements ArbiterRule
func (r *DropTrafficForSource) Filter(header *Header) (Decision, bool) {
	if header.FromAddr != r.FromAddr {
		return DecisionStream, false
	}
	r.Logger.Infof(
		"pebb: arbiter: dropping packet %d->%d len=%d because source is %d",
		header.FromAddr,
		header.ToAddr,
		header.PacketLength,
		r.FromAddr,
	)
	return DecisionDrop, true
}

// DropTrafficLongerThan is an [ArbiterRule] that drops every packet
// longer than a given flit count. The zero value is invalid; please
// fill all the fields marked as MANDATORY.
type DropTrafficLongerThan struct {
	// Logger is the MANDATORY logger
	Logger Logger

	// MaxLength is the MANDATORY maximum packet length, in flits,
	// that this rule lets through.
	MaxLength uint8
}

var _ ArbiterRule = &DropTrafficLongerThan{}

// Filter implements ArbiterRule
func (r *DropTrafficLongerThan) Filter(header *Header) (Decision, bool) {
	if header.PacketLength <= r.MaxLength {
		return DecisionStream, false
	}
	r.Logger.Infof(
		"pebb: arbiter: dropping packet %d->%d because len=%d exceeds %d",
		header.FromAddr,
		header.ToAddr,
		header.PacketLength,
		r.MaxLength,
	)
	return DecisionDrop, true
}

// ScriptedArbiter is an [Arbiter] that replays a fixed sequence of
// decisions in order, then keeps streaming once the sequence is
// exhausted. The zero value is usable and always streams.
type ScriptedArbiter struct {
	// mu provides mutual exclusion.
	mu sync.Mutex

	// decisions contains the decisions not yet replayed.
	decisions []Decision
}

var _ Arbiter = &ScriptedArbiter{}

// NewScriptedArbiter creates a [ScriptedArbiter] replaying the given
// decisions.
func NewScriptedArbiter(decisions ...Decision) *ScriptedArbiter {
	return &ScriptedArbiter{
		mu:        sync.Mutex{},
		decisions: decisions,
	}
}

// Decide implements Arbiter
func (sa *ScriptedArbiter) Decide(header *Header) Decision {
	defer sa.mu.Unlock()
	sa.mu.Lock()
	if len(sa.decisions) <= 0 {
		return DecisionStream
	}
	decision := sa.decisions[0]
	sa.decisions = sa.decisions[1:]
	return decision
}
