package pebb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPipelineChainsStages(t *testing.T) {
	packets := []*Packet{
		makeTestPacket(9, 1, 3), // dropped by the first hop
		makeTestPacket(1, 1, 7), // dropped by the second hop
		makeTestPacket(2, 1, 2), // survives both hops
	}

	sink := NewCollectorSink()
	pipeline := NewPipeline(
		&NullLogger{},
		NewStaticFlitSource(flattenPackets(packets)...),
		sink,
		&PipelineHop{
			Arbiter: NewArbiterEngine(&NullLogger{}, &DropTrafficForDestination{
				Logger: &NullLogger{},
				ToAddr: 9,
			}),
		},
		&PipelineHop{
			Arbiter: NewArbiterEngine(&NullLogger{}, &DropTrafficLongerThan{
				Logger:    &NullLogger{},
				MaxLength: 5,
			}),
		},
	)
	defer pipeline.Close()

	got := collectPackets(t, sink, 1)
	if diff := cmp.Diff([]*Packet{packets[2]}, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestPipelinePreservesArrivalOrder(t *testing.T) {
	packets := []*Packet{}
	for index := uint8(0); index < 10; index++ {
		packets = append(packets, makeTestPacket(index, index, 3+index%4))
	}

	sink := NewCollectorSink()
	pipeline := NewPipeline(
		&NullLogger{},
		NewStaticFlitSource(flattenPackets(packets)...),
		sink,
		&PipelineHop{Arbiter: NewArbiterEngine(&NullLogger{})},
		&PipelineHop{Arbiter: NewArbiterEngine(&NullLogger{})},
		&PipelineHop{Arbiter: NewArbiterEngine(&NullLogger{})},
	)
	defer pipeline.Close()

	got := collectPackets(t, sink, len(packets))
	if diff := cmp.Diff(packets, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestPipelineCloseIsIdempotent(t *testing.T) {
	pipeline := NewPipeline(
		&NullLogger{},
		NewStaticFlitSource(),
		NewCollectorSink(),
		&PipelineHop{Arbiter: NewArbiterEngine(&NullLogger{})},
	)
	if err := pipeline.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pipeline.Close(); err != nil {
		t.Fatal(err)
	}
}
