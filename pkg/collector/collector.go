// Package collector implements the fixed-length window collector: once the
// detector raises an alarm, it gathers the next L samples (the alarm sample
// itself plus L-1 subsequent ones) for fingerprint extraction.
package collector

// State accumulates one fingerprint window at a time. It is not safe for
// concurrent use.
type State struct {
	length    int
	patternID int

	buffer    []float64
	remaining int
}

// New returns a collector that gathers windows of the given length. length
// must be a positive power of two; the engine validates this at startup.
func New(length int) *State {
	return &State{length: length}
}

// Active reports whether a window is currently being collected.
func (s *State) Active() bool {
	return s.remaining > 0
}

// PatternID returns the id of the most recently started window.
func (s *State) PatternID() int {
	return s.patternID
}

// Start begins a new window, consuming firstValue as its first sample.
// Start must not be called while Active(); the detector is responsible for
// only starting a new window when a prior one has finished (no nesting).
func (s *State) Start(firstValue float64) int {
	s.patternID++
	s.buffer = make([]float64, 1, s.length)
	s.buffer[0] = firstValue
	s.remaining = s.length - 1
	return s.patternID
}

// Step pushes the next sample into the active window. It returns the
// completed window and true once exactly length samples have been
// collected; otherwise it returns (nil, false).
func (s *State) Step(value float64) ([]float64, bool) {
	if s.remaining <= 0 {
		return nil, false
	}
	s.buffer = append(s.buffer, value)
	s.remaining--
	if s.remaining == 0 {
		w := s.buffer
		s.buffer = nil
		return w, true
	}
	return nil, false
}
