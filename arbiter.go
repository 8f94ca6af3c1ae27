package pebb

//
// Arbiter: engine
//

import "sync"

// Decision tells a [PacketStage] what to do with the head packet.
type Decision int

// DecisionStream streams the head packet downstream verbatim.
const DecisionStream = Decision(0)

// DecisionDrop retires the head packet without emitting it.
const DecisionDrop = Decision(1)

// String implements fmt.Stringer
func (d Decision) String() string {
	switch d {
	case DecisionDrop:
		return "drop"
	default:
		return "stream"
	}
}

// Arbiter decides the fate of each head packet a [PacketStage]
// exposes. Decide is called once per packet, in arrival order, with
// the packet's decoded header.
type Arbiter interface {
	Decide(header *Header) Decision
}

// ArbiterRule is a single routing-policy rule. Filter returns the
// decision for the given header and whether the rule matched at all.
type ArbiterRule interface {
	Filter(header *Header) (Decision, bool)
}

// ArbiterEngine is an [Arbiter] that evaluates a list of
// [ArbiterRule] in order and stops at the first match; when no rule
// matches it streams the packet. The zero value is invalid; construct
// using [NewArbiterEngine].
type ArbiterEngine struct {
	// logger is the logger.
	logger Logger

	// mu provides mutual exclusion.
	mu sync.Mutex

	// rules contains the rules.
	rules []ArbiterRule
}

var _ Arbiter = &ArbiterEngine{}

// NewArbiterEngine creates a new [ArbiterEngine] instance.
func NewArbiterEngine(logger Logger, rules ...ArbiterRule) *ArbiterEngine {
	return &ArbiterEngine{
		logger: logger,
		mu:     sync.Mutex{},
		rules:  rules,
	}
}

// AddRule adds an [ArbiterRule] to the [ArbiterEngine].
func (ae *ArbiterEngine) AddRule(rule ArbiterRule) {
	defer ae.mu.Unlock()
	ae.mu.Lock()
	ae.rules = append(ae.rules, rule)
}

// getRulesShallowCopy returns a shallow copy of the rules.
func (ae *ArbiterEngine) getRulesShallowCopy() []ArbiterRule {
	defer ae.mu.Unlock()
	ae.mu.Lock()
	return append([]ArbiterRule{}, ae.rules...) // copy
}

// Decide implements Arbiter
func (ae *ArbiterEngine) Decide(header *Header) Decision {
	for _, rule := range ae.getRulesShallowCopy() {
		decision, match := rule.Filter(header)
		if match {
			return decision
		}
	}
	return DecisionStream
}
