package pebb

//
// Stage statistics
//

import (
	"sync"

	"github.com/montanaflynn/stats"
)

// StageStats collects statistics about a running [PacketStage]: how
// many packets streamed and dropped, the buffer occupancy sampled on
// every tick, and the per-packet latency from header acceptance to
// retirement. The zero value is invalid; construct using
// [NewStageStats]. Passing the collector to [StageConfig.Stats]
// selects the [StageFwdFull] forwarding algorithm.
//
// A StageStats is safe for concurrent use: the forwarding goroutine
// records into it while other goroutines may call [StageStats.Summary].
type StageStats struct {
	// mu provides mutual exclusion.
	mu sync.Mutex

	// occupancy contains one flit-count sample per tick.
	occupancy []float64

	// latencies contains one latency sample, in ticks, per packet.
	latencies []float64

	// streamedPackets counts the streamed packets.
	streamedPackets int64

	// droppedPackets counts the dropped packets.
	droppedPackets int64

	// streamedFlits counts the flits of streamed packets.
	streamedFlits int64

	// droppedFlits counts the flits of dropped packets.
	droppedFlits int64

	// ticks is the total number of ticks the stage ran for.
	ticks int64
}

// NewStageStats creates a new [StageStats] instance.
func NewStageStats() *StageStats {
	return &StageStats{
		mu:              sync.Mutex{},
		occupancy:       nil,
		latencies:       nil,
		streamedPackets: 0,
		droppedPackets:  0,
		streamedFlits:   0,
		droppedFlits:    0,
		ticks:           0,
	}
}

// recordOccupancy records the flit count after a tick.
func (ss *StageStats) recordOccupancy(nFlits int) {
	defer ss.mu.Unlock()
	ss.mu.Lock()
	ss.occupancy = append(ss.occupancy, float64(nFlits))
}

// recordRetire records the retirement of a packet.
func (ss *StageStats) recordRetire(decision Decision, length, latency int64) {
	defer ss.mu.Unlock()
	ss.mu.Lock()
	ss.latencies = append(ss.latencies, float64(latency))
	if decision == DecisionDrop {
		ss.droppedPackets++
		ss.droppedFlits += length
		return
	}
	ss.streamedPackets++
	ss.streamedFlits += length
}

// recordTicks records the total tick count.
func (ss *StageStats) recordTicks(ticks int64) {
	defer ss.mu.Unlock()
	ss.mu.Lock()
	ss.ticks = ticks
}

// StatsSummary contains the aggregate view of a [StageStats].
type StatsSummary struct {
	// Ticks is the total number of ticks the stage ran for.
	Ticks int64

	// StreamedPackets counts the streamed packets.
	StreamedPackets int64

	// DroppedPackets counts the dropped packets.
	DroppedPackets int64

	// StreamedFlits counts the flits of streamed packets.
	StreamedFlits int64

	// DroppedFlits counts the flits of dropped packets.
	DroppedFlits int64

	// MeanOccupancy is the mean buffer occupancy in flits.
	MeanOccupancy float64

	// MaxOccupancy is the peak buffer occupancy in flits.
	MaxOccupancy float64

	// MeanLatency is the mean packet latency in ticks.
	MeanLatency float64

	// P95Latency is the 95th-percentile packet latency in ticks.
	P95Latency float64
}

// Summary condenses the collected samples into a [StatsSummary].
func (ss *StageStats) Summary() (*StatsSummary, error) {
	defer ss.mu.Unlock()
	ss.mu.Lock()

	summary := &StatsSummary{
		Ticks:           ss.ticks,
		StreamedPackets: ss.streamedPackets,
		DroppedPackets:  ss.droppedPackets,
		StreamedFlits:   ss.streamedFlits,
		DroppedFlits:    ss.droppedFlits,
		MeanOccupancy:   0,
		MaxOccupancy:    0,
		MeanLatency:     0,
		P95Latency:      0,
	}

	if len(ss.occupancy) > 0 {
		mean, err := stats.Mean(ss.occupancy)
		if err != nil {
			return nil, err
		}
		max, err := stats.Max(ss.occupancy)
		if err != nil {
			return nil, err
		}
		summary.MeanOccupancy = mean
		summary.MaxOccupancy = max
	}

	if len(ss.latencies) > 0 {
		mean, err := stats.Mean(ss.latencies)
		if err != nil {
			return nil, err
		}
		p95, err := stats.Percentile(ss.latencies, 95)
		if err != nil {
			return nil, err
		}
		summary.MeanLatency = mean
		summary.P95Latency = p95
	}

	return summary, nil
}
