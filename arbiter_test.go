package pebb

import "testing"

func TestArbiterEngine(t *testing.T) {

	// testcase describes a test case for [ArbiterEngine]
	type testcase struct {
		// name is the name of this test case
		name string

		// rules contains the rules to install
		rules []ArbiterRule

		// header is the header to decide upon
		header *Header

		// expect is the expected decision
		expect Decision
	}

	var testcases = []testcase{{
		name:   "without any rule we stream",
		rules:  nil,
		header: DissectHeader(NewHeaderFlit(1, 2, 3)),
		expect: DecisionStream,
	}, {
		name: "a matching destination rule drops",
		rules: []ArbiterRule{&DropTrafficForDestination{
			Logger: &NullLogger{},
			ToAddr: 9,
		}},
		header: DissectHeader(NewHeaderFlit(9, 2, 3)),
		expect: DecisionDrop,
	}, {
		name: "a non-matching destination rule streams",
		rules: []ArbiterRule{&DropTrafficForDestination{
			Logger: &NullLogger{},
			ToAddr: 9,
		}},
		header: DissectHeader(NewHeaderFlit(8, 2, 3)),
		expect: DecisionStream,
	}, {
		name: "a matching source rule drops",
		rules: []ArbiterRule{&DropTrafficForSource{
			Logger:   &NullLogger{},
			FromAddr: 2,
		}},
		header: DissectHeader(NewHeaderFlit(9, 2, 3)),
		expect: DecisionDrop,
	}, {
		name: "an oversized packet drops",
		rules: []ArbiterRule{&DropTrafficLongerThan{
			Logger:    &NullLogger{},
			MaxLength: 8,
		}},
		header: DissectHeader(NewHeaderFlit(1, 2, 9)),
		expect: DecisionDrop,
	}, {
		name: "a packet at the length limit streams",
		rules: []ArbiterRule{&DropTrafficLongerThan{
			Logger:    &NullLogger{},
			MaxLength: 8,
		}},
		header: DissectHeader(NewHeaderFlit(1, 2, 8)),
		expect: DecisionStream,
	}, {
		name: "the first matching rule wins",
		rules: []ArbiterRule{&DropTrafficForDestination{
			Logger: &NullLogger{},
			ToAddr: 1,
		}, &DropTrafficLongerThan{
			Logger:    &NullLogger{},
			MaxLength: 200,
		}},
		header: DissectHeader(NewHeaderFlit(1, 2, 3)),
		expect: DecisionDrop,
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewArbiterEngine(&NullLogger{}, tc.rules...)
			if decision := engine.Decide(tc.header); decision != tc.expect {
				t.Fatal("expected", tc.expect, "got", decision)
			}
		})
	}
}

func TestArbiterEngineAddRule(t *testing.T) {
	engine := NewArbiterEngine(&NullLogger{})
	header := DissectHeader(NewHeaderFlit(4, 4, 4))
	if engine.Decide(header) != DecisionStream {
		t.Fatal("expected stream before installing the rule")
	}
	engine.AddRule(&DropTrafficForDestination{Logger: &NullLogger{}, ToAddr: 4})
	if engine.Decide(header) != DecisionDrop {
		t.Fatal("expected drop after installing the rule")
	}
}

func TestScriptedArbiter(t *testing.T) {
	arbiter := NewScriptedArbiter(DecisionDrop, DecisionStream, DecisionDrop)
	header := DissectHeader(NewHeaderFlit(1, 1, 1))
	expect := []Decision{
		DecisionDrop, DecisionStream, DecisionDrop,
		// once exhausted the arbiter keeps streaming
		DecisionStream, DecisionStream,
	}
	for index, want := range expect {
		if got := arbiter.Decide(header); got != want {
			t.Fatal("decision", index, "expected", want, "got", got)
		}
	}
}

func TestDecisionString(t *testing.T) {
	if DecisionStream.String() != "stream" || DecisionDrop.String() != "drop" {
		t.Fatal("unexpected decision names")
	}
}
