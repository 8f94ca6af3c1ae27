package pebb

//
// Stage pipelines
//

import (
	"io"
	"sync"
)

// PipelineHop describes one stage of a [Pipeline]. Make sure you
// initialize all the fields marked as MANDATORY.
type PipelineHop struct {
	// Arbiter is the MANDATORY arbiter for this hop.
	Arbiter Arbiter

	// Buffer is the OPTIONAL buffer configuration for this hop.
	Buffer *BufferConfig

	// Stats is the OPTIONAL statistics collector for this hop.
	Stats *StageStats
}

// Pipeline chains packet stages back to back, the way a route through
// the NoC crosses the ingress buffer of each router along the path.
// Consecutive stages are connected by [StagePort] instances that
// re-serialize streamed packets into flits for the next hop. The zero
// value is invalid; use [NewPipeline] to create an instance.
type Pipeline struct {
	// closeOnce allows to have a "once" semantics for Close
	closeOnce sync.Once

	// err collects the close errors
	err error

	// sink is the final sink
	sink PacketSink

	// stages contains the stages, ingress first
	stages []*PacketStage
}

// NewPipeline creates a [Pipeline] where the first hop reads flits
// from the given source and the last hop delivers streamed packets to
// the given sink. There must be at least one hop. The pipeline TAKES
// OWNERSHIP of the source, of the sink, and of the ports it creates;
// use the Close method to shut everything down.
func NewPipeline(logger Logger, source FlitSource, sink PacketSink, hops ...*PipelineHop) *Pipeline {
	stages := []*PacketStage{}
	for index, hop := range hops {
		var (
			hopSink PacketSink
			port    *StagePort
		)
		if index < len(hops)-1 {
			port = NewStagePort(logger)
			hopSink = port
		} else {
			hopSink = sink
		}
		stage := NewPacketStage(&StageConfig{
			Arbiter:     hop.Arbiter,
			Buffer:      hop.Buffer,
			Logger:      logger,
			Sink:        hopSink,
			SinkWrapper: nil,
			Source:      source,
			Stats:       hop.Stats,
		})
		stages = append(stages, stage)
		source = port
	}
	return &Pipeline{
		closeOnce: sync.Once{},
		err:       nil,
		sink:      sink,
		stages:    stages,
	}
}

// Close closes every stage and port of the pipeline, ingress first,
// then the final sink when it implements [io.Closer]. Packets still
// in flight inside the pipeline are discarded.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		errlist := []error{}
		for _, stage := range p.stages {
			if err := stage.Close(); err != nil {
				errlist = append(errlist, err)
			}
		}
		if closer, okay := p.sink.(io.Closer); okay {
			if err := closer.Close(); err != nil {
				errlist = append(errlist, err)
			}
		}
		if len(errlist) > 0 {
			p.err = &ErrClose{Errors: errlist}
		}
	})
	return p.err
}
