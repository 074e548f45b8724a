package opt

import "log/slog"

// stallTracker counts consecutive non-improving steps and reports when the
// attempt budget is used up. A budget of zero never stalls.
type stallTracker struct {
	maxAttempts int
	attempts    int
}

func newStallTracker(maxAttempts int) *stallTracker {
	return &stallTracker{maxAttempts: maxAttempts}
}

// Update records whether the last step improved and returns true once the
// optimizer should stop.
func (s *stallTracker) Update(improved bool) bool {
	if improved {
		s.attempts = 0
		return false
	}
	s.attempts++
	return s.Stalled()
}

// Stalled reports whether maxAttempts consecutive steps failed to improve.
func (s *stallTracker) Stalled() bool {
	if s.maxAttempts <= 0 || s.attempts < s.maxAttempts {
		return false
	}
	slog.Debug("Optimizer stalled", "attempts", s.attempts, "max_attempts", s.maxAttempts)
	return true
}

// Attempts returns the current number of consecutive failed steps.
func (s *stallTracker) Attempts() int {
	return s.attempts
}
