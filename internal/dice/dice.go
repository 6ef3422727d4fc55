package dice

import (
	"math/rand"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/KirkDiggler/crowdplay/internal/dice Roller

// Roller is the single source of randomness for game resolution
type Roller interface {
	// Roll returns a value in [1, sides]
	Roll(sides int) int
}

// Seeded rolls dice from a seedable pseudo-random source
type Seeded struct {
	random *rand.Rand
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new dice roller
func New(cfg *Config) *Seeded {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Seeded{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Roll generates a random dice roll with the specified number of sides
func (r *Seeded) Roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	return r.random.Intn(sides) + 1
}

// Range draws uniformly from the closed range [base, base+variance]
func Range(r Roller, base, variance int) int {
	if variance <= 0 {
		return base
	}
	return base + r.Roll(variance+1) - 1
}

// Pick returns a uniformly chosen index into a collection of n items
func Pick(r Roller, n int) int {
	if n <= 1 {
		return 0
	}
	return r.Roll(n) - 1
}
