package domain

// SmoothScore returns the score to report for a reading. A zero reading that
// follows a nonzero one is replaced by the last known value when smoothing is
// enabled; a first-ever zero is reported as zero.
func SmoothScore(reported, lastKnown float64, enabled bool) float64 {
	if enabled && reported == 0 && lastKnown > 0 {
		return lastKnown
	}

	return reported
}
