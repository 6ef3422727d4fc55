package models

import (
	"time"
)

// PetAction names a cooldown-gated pet interaction
type PetAction string

const (
	PetActionFeed  PetAction = "feed"
	PetActionPlay  PetAction = "play"
	PetActionSleep PetAction = "sleep"
)

// Pet is the single shared pet cared for by chat
type Pet struct {
	// Name is the display name chosen on adoption
	Name string

	// Kind is the emoji shown next to the name
	Kind string

	Happiness Stat
	Hunger    Stat
	Energy    Stat

	// Level starts at 1 and increases every Level*50 experience
	Level int

	// Experience accumulated toward the next level
	Experience int

	// LastAction holds the time each cooldown-gated action last succeeded
	LastAction map[PetAction]time.Time
}

// NewPet creates a pet with the given starting stats
func NewPet(name, kind string, happiness, hunger, energy int) *Pet {
	return &Pet{
		Name:       name,
		Kind:       kind,
		Happiness:  NewStat(happiness, 0, 100),
		Hunger:     NewStat(hunger, 0, 100),
		Energy:     NewStat(energy, 0, 100),
		Level:      1,
		LastAction: make(map[PetAction]time.Time),
	}
}

// ExperienceNeeded is the experience required for the next level
func (p *Pet) ExperienceNeeded() int {
	return p.Level * 50
}

// AddExperience adds experience and reports whether the pet levelled up
func (p *Pet) AddExperience(amount int) bool {
	p.Experience += amount
	if p.Experience >= p.ExperienceNeeded() {
		p.Level++
		p.Experience = 0
		return true
	}
	return false
}

// Wellbeing averages happiness, fullness and energy into [0,100]
func (p *Pet) Wellbeing() int {
	return (p.Happiness.Value + (100 - p.Hunger.Value) + p.Energy.Value) / 3
}
