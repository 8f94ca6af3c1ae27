package pebb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStageStatsSummary(t *testing.T) {
	stats := NewStageStats()
	stats.recordOccupancy(2)
	stats.recordOccupancy(4)
	stats.recordOccupancy(6)
	stats.recordRetire(DecisionStream, 3, 10)
	stats.recordRetire(DecisionDrop, 5, 20)
	stats.recordTicks(42)

	summary, err := stats.Summary()
	if err != nil {
		t.Fatal(err)
	}
	expect := &StatsSummary{
		Ticks:           42,
		StreamedPackets: 1,
		DroppedPackets:  1,
		StreamedFlits:   3,
		DroppedFlits:    5,
		MeanOccupancy:   4,
		MaxOccupancy:    6,
		MeanLatency:     15,
		P95Latency:      15,
	}
	if diff := cmp.Diff(expect, summary); diff != "" {
		t.Fatal(diff)
	}
}

func TestStageStatsEmptySummary(t *testing.T) {
	summary, err := NewStageStats().Summary()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&StatsSummary{}, summary); diff != "" {
		t.Fatal(diff)
	}
}
