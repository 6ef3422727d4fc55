package pet

import (
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"go.uber.org/zap"
)

const (
	DefaultDecayInterval = 60 * time.Second

	// MaxNameLength bounds adopted pet names, counted in characters
	MaxNameLength = 12
)

// Cooldowns per gated action
var cooldowns = map[models.PetAction]time.Duration{
	models.PetActionFeed:  60 * time.Second,
	models.PetActionPlay:  45 * time.Second,
	models.PetActionSleep: 120 * time.Second,
}

// effect is the stat change an interaction applies
type effect struct {
	happiness  int
	hunger     int
	energy     int
	experience int
}

var (
	feedEffect  = effect{hunger: -20, happiness: 10, experience: 5}
	playEffect  = effect{energy: -15, happiness: 25, experience: 8}
	sleepEffect = effect{energy: 30, happiness: 5, experience: 3}
	petEffect   = effect{happiness: 15, experience: 2}
	treatEffect = effect{happiness: 20, hunger: -10, experience: 6}

	// decayEffect is applied every decay interval
	decayEffect = effect{hunger: 2, happiness: -1, energy: -1}
)

// Starting stats
const (
	defaultName = "Twitch"
	defaultKind = "🐱"

	initialHappiness = 50
	initialHunger    = 50
	initialEnergy    = 50

	adoptedHappiness = 70
	adoptedHunger    = 40
	adoptedEnergy    = 60
)

var (
	kinds     = []string{"🐱", "🐶", "🐰", "🐸", "🐹"}
	foods     = []string{"🥫 cat food", "🥩 treats", "🐟 tuna", "🥛 milk", "🍖 premium meal"}
	games     = []string{"🎾 fetch", "🧶 yarn ball", "🪶 feather toy", "🎪 tricks", "🏃 running"}
	reactions = []string{"purrs contentedly", "nuzzles your hand", "wags tail happily", "gives you a gentle headbutt", "rolls over for belly rubs"}
	snacks    = []string{"🍪 special cookie", "🦴 bone", "🐟 salmon treat", "🥓 bacon bit", "🧀 cheese cube"}
)

// Health describes a pet's overall condition
type Health string

const (
	HealthExcellent Health = "😄 Excellent!"
	HealthGood      Health = "😊 Good"
	HealthOkay      Health = "😐 Okay"
	HealthAttention Health = "😟 Needs attention"
	HealthCritical  Health = "😢 Critical - needs lots of care!"
)

// Config holds configuration for the pet service
type Config struct {
	Scheduler  scheduler.Scheduler
	Clock      clock.Clock
	DiceRoller dice.Roller

	// Sink receives decay warnings
	Sink session.Sink

	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Roster resolves identities to display names
	Roster *roster.Roster

	DecayInterval time.Duration
}
