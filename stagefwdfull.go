package pebb

//
// Stage forwarding: full algorithm
//

// StageFwdFull is the full implementation of stage forwarding: on top
// of what [StageFwdFast] does, it samples buffer occupancy on every
// tick and accounts per-packet latency from the tick the header flit
// is accepted to the tick the final flit retires.
func StageFwdFull(cfg *StageFwdConfig) {
	cfg.Logger.Debugf("pebb: stageFwdFull up")
	defer cfg.Logger.Debugf("pebb: stageFwdFull down")

	// synchronize with stop
	defer cfg.Wg.Done()

	state := newStageFwdState(cfg, true)
	for {
		select {
		case <-cfg.Source.SourceClosed():
			state.settle()
			cfg.Stats.recordTicks(state.tick)
			return

		case <-cfg.Source.FlitAvailable():
			state.drainSource()
			state.settle()
		}
	}
}

var _ = StageFwdFunc(StageFwdFull)
