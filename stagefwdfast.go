package pebb

//
// Stage forwarding: fast algorithm
//

// StageFwdFast is the fast implementation of stage forwarding. We
// select this implementation when no statistics collector has been
// configured, so every tick costs nothing beyond the buffer itself.
func StageFwdFast(cfg *StageFwdConfig) {
	cfg.Logger.Debugf("pebb: stageFwdFast up")
	defer cfg.Logger.Debugf("pebb: stageFwdFast down")

	// synchronize with stop
	defer cfg.Wg.Done()

	state := newStageFwdState(cfg, false)
	for {
		select {
		case <-cfg.Source.SourceClosed():
			// flush the decisions owed to wholly-buffered packets
			state.settle()
			return

		case <-cfg.Source.FlitAvailable():
			state.drainSource()
			state.settle()
		}
	}
}

var _ = StageFwdFunc(StageFwdFast)
