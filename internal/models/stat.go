package models

// Stat is a bounded integer value. Every mutation clamps into [Min, Max].
type Stat struct {
	Value int
	Min   int
	Max   int
}

// NewStat creates a stat clamped into its bounds
func NewStat(value, min, max int) Stat {
	return Stat{Value: Clamp(value, min, max), Min: min, Max: max}
}

// Add applies delta and returns the change that actually took effect
func (s *Stat) Add(delta int) int {
	before := s.Value
	s.Value = Clamp(s.Value+delta, s.Min, s.Max)
	return s.Value - before
}

// Set assigns v clamped into bounds
func (s *Stat) Set(v int) {
	s.Value = Clamp(v, s.Min, s.Max)
}

// Depleted reports whether the stat sits at its minimum
func (s Stat) Depleted() bool {
	return s.Value <= s.Min
}

// Clamp bounds v into [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
