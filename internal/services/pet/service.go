// Package pet keeps a single shared pet that chat cares for. The pet's
// needs grow on a fixed decay schedule.
package pet

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"go.uber.org/zap"
)

// Mode is the name used for routing, logs and metrics
const Mode = "pet"

const (
	commandPet   = "pet"
	commandFeed  = "feed"
	commandPlay  = "play"
	commandSleep = "sleep"
	commandTreat = "treat"
	commandAdopt = "adopt"
	commandCare  = "care"
)

const careGuide = `🐾 Pet Care Guide:
!feed - Give food (reduces hunger)
!play - Play games (increases happiness, uses energy)
!sleep - Rest time (restores energy)
!pet - Check pet condition
!pet <anything> - Show affection (increases happiness)
!treat - Special snacks (happiness boost)
!adopt <name> - Adopt a new pet`

// Service implements the virtual pet game mode
type Service struct {
	clock   clock.Clock
	roller  dice.Roller
	sink    session.Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	roster  *roster.Roster

	pet        *models.Pet
	caregivers map[string]struct{}
	critical   bool
	decay      scheduler.Task
}

// New creates the pet service and starts its decay schedule
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.Scheduler == nil {
		return nil, models.ErrNilScheduler
	}
	if cfg.Clock == nil {
		return nil, models.ErrNilClock
	}
	if cfg.DiceRoller == nil {
		return nil, models.ErrNilDiceRoller
	}
	if cfg.Sink == nil {
		return nil, models.ErrNilSink
	}

	interval := cfg.DecayInterval
	if interval <= 0 {
		interval = DefaultDecayInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		clock:      cfg.Clock,
		roller:     cfg.DiceRoller,
		sink:       cfg.Sink,
		logger:     logger.With(zap.String("mode", Mode)),
		metrics:    cfg.Metrics,
		roster:     cfg.Roster,
		pet:        models.NewPet(defaultName, defaultKind, initialHappiness, initialHunger, initialEnergy),
		caregivers: make(map[string]struct{}),
	}
	s.decay = cfg.Scheduler.Every(interval, s.Decay)

	return s, nil
}

// Name returns the mode name
func (s *Service) Name() string {
	return Mode
}

// Title is the display name of the mode
func (s *Service) Title() string {
	return "Virtual Pet Sanctuary"
}

// Commands lists the commands this mode owns
func (s *Service) Commands() []string {
	return []string{commandPet, commandFeed, commandPlay, commandSleep, commandTreat, commandAdopt, commandCare}
}

// Handle runs one pet command
func (s *Service) Handle(ctx context.Context, cmd *models.Command) (string, error) {
	switch cmd.Name {
	case commandPet:
		if len(cmd.Args) == 0 {
			return s.PetStatus(), nil
		}
		return s.Pet(cmd.Identity), nil
	case commandFeed:
		return s.Feed(cmd.Identity)
	case commandPlay:
		return s.Play(cmd.Identity)
	case commandSleep:
		return s.Sleep(cmd.Identity)
	case commandTreat:
		return s.Treat(cmd.Identity), nil
	case commandAdopt:
		return s.Adopt(cmd.Identity, cmd.Arg(0))
	case commandCare:
		return careGuide, nil
	}
	return "", fmt.Errorf("pet cannot handle %q", cmd.Name)
}

// Feed lowers hunger. Gated by a cooldown.
func (s *Service) Feed(identity string) (string, error) {
	if err := s.checkCooldown(models.PetActionFeed, "%s is still full! Wait %s before feeding again."); err != nil {
		return "", err
	}

	levelUp := s.apply(identity, models.PetActionFeed, feedEffect)
	food := foods[dice.Pick(s.roller, len(foods))]

	reply := fmt.Sprintf("@%s fed %s some %s! %s Hunger: %d%% (%d) Happiness: %d%% (+%d)",
		s.roster.Name(identity), s.pet.Name, food, s.pet.Kind, s.pet.Hunger.Value, feedEffect.hunger, s.pet.Happiness.Value, feedEffect.happiness)
	return reply + levelUp, nil
}

// Play raises happiness at the cost of energy. Gated by a cooldown.
func (s *Service) Play(identity string) (string, error) {
	if err := s.checkCooldown(models.PetActionPlay, "%s is still tired from playing! Let them rest for %s."); err != nil {
		return "", err
	}

	levelUp := s.apply(identity, models.PetActionPlay, playEffect)
	game := games[dice.Pick(s.roller, len(games))]

	reply := fmt.Sprintf("@%s played %s with %s! %s Energy: %d%% (%d) Happiness: %d%% (+%d)",
		s.roster.Name(identity), game, s.pet.Name, s.pet.Kind, s.pet.Energy.Value, playEffect.energy, s.pet.Happiness.Value, playEffect.happiness)
	return reply + levelUp, nil
}

// Sleep restores energy. Gated by a cooldown.
func (s *Service) Sleep(identity string) (string, error) {
	if err := s.checkCooldown(models.PetActionSleep, "%s isn't sleepy yet! Try again in %s."); err != nil {
		return "", err
	}

	levelUp := s.apply(identity, models.PetActionSleep, sleepEffect)

	reply := fmt.Sprintf("@%s tucked %s in for a nap! %s 😴 Energy: %d%% (+%d) Happiness: %d%% (+%d)",
		s.roster.Name(identity), s.pet.Name, s.pet.Kind, s.pet.Energy.Value, sleepEffect.energy, s.pet.Happiness.Value, sleepEffect.happiness)
	return reply + levelUp, nil
}

// Pet shows affection
func (s *Service) Pet(identity string) string {
	levelUp := s.apply(identity, "", petEffect)
	reaction := reactions[dice.Pick(s.roller, len(reactions))]

	reply := fmt.Sprintf("@%s gently pets %s! %s %s ❤️ Happiness: %d%% (+%d)",
		s.roster.Name(identity), s.pet.Name, s.pet.Kind, reaction, s.pet.Happiness.Value, petEffect.happiness)
	return reply + levelUp
}

// Treat gives a snack
func (s *Service) Treat(identity string) string {
	levelUp := s.apply(identity, "", treatEffect)
	snack := snacks[dice.Pick(s.roller, len(snacks))]

	reply := fmt.Sprintf("@%s gave %s a %s! %s ✨ Happiness: %d%% (+%d)",
		s.roster.Name(identity), s.pet.Name, snack, s.pet.Kind, s.pet.Happiness.Value, treatEffect.happiness)
	return reply + levelUp
}

// Adopt replaces the pet with a fresh one named name
func (s *Service) Adopt(identity, name string) (string, error) {
	if name == "" {
		return "", models.Refuse(models.ErrInvalidChoice, "Specify a name! Example: !adopt Fluffy")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", models.Refuse(models.ErrOutOfRange, "Pet name too long! Keep it to %d characters or fewer.", MaxNameLength)
	}

	kind := kinds[dice.Pick(s.roller, len(kinds))]
	s.pet = models.NewPet(name, kind, adoptedHappiness, adoptedHunger, adoptedEnergy)
	s.critical = false

	s.logger.Info("pet adopted", zap.String("identity", identity), zap.String("name", name))
	return fmt.Sprintf("@%s adopted a new pet! Meet %s the %s! Everyone can help care for them!", s.roster.Name(identity), name, kind), nil
}

// Decay applies one tick of growing needs. It warns chat the first time the
// pet's health turns critical.
func (s *Service) Decay() {
	s.pet.Hunger.Add(decayEffect.hunger)
	s.pet.Happiness.Add(decayEffect.happiness)
	s.pet.Energy.Add(decayEffect.energy)
	s.metrics.DecayTick()

	health := s.Health()
	s.logger.Debug("pet decayed",
		zap.Int("happiness", s.pet.Happiness.Value),
		zap.Int("hunger", s.pet.Hunger.Value),
		zap.Int("energy", s.pet.Energy.Value),
		zap.String("health", string(health)))

	critical := health == HealthCritical
	if critical && !s.critical {
		s.sink.Emit(fmt.Sprintf("🚨 %s the %s is in critical condition! Type !feed, !play or !pet to help!", s.pet.Name, s.pet.Kind))
	}
	s.critical = critical
}

// Stop cancels the decay schedule
func (s *Service) Stop() {
	scheduler.Cancel(s.decay)
	s.decay = nil
}

// Health buckets the pet's wellbeing
func (s *Service) Health() Health {
	switch avg := s.pet.Wellbeing(); {
	case avg >= 80:
		return HealthExcellent
	case avg >= 60:
		return HealthGood
	case avg >= 40:
		return HealthOkay
	case avg >= 20:
		return HealthAttention
	default:
		return HealthCritical
	}
}

// PetStatus renders the full pet card
func (s *Service) PetStatus() string {
	p := s.pet
	var b strings.Builder
	fmt.Fprintf(&b, "🐾 %s the %s (Level %d)\n", p.Name, p.Kind, p.Level)
	fmt.Fprintf(&b, "💖 Happiness: %d%% %s\n", p.Happiness.Value, statusBar(p.Happiness.Value))
	fmt.Fprintf(&b, "🍽️ Hunger: %d%% %s\n", p.Hunger.Value, statusBar(100-p.Hunger.Value))
	fmt.Fprintf(&b, "⚡ Energy: %d%% %s\n", p.Energy.Value, statusBar(p.Energy.Value))
	fmt.Fprintf(&b, "⭐ Experience: %d/%d\n", p.Experience, p.ExperienceNeeded())
	fmt.Fprintf(&b, "👥 Caregivers: %d\n", len(s.caregivers))
	fmt.Fprintf(&b, "🏥 Status: %s", s.Health())
	return b.String()
}

// Status summarizes the mode
func (s *Service) Status(ctx context.Context) string {
	return fmt.Sprintf("🐾 Virtual Pet: %s Lv.%d, Caregivers: %d", s.pet.Name, s.pet.Level, len(s.caregivers))
}

// Instructions explains how to play
func (s *Service) Instructions() string {
	return fmt.Sprintf("Care for %s! Commands: !feed !play !sleep !pet !treat !care", s.pet.Name)
}

// Current returns the pet
func (s *Service) Current() *models.Pet {
	return s.pet
}

func (s *Service) checkCooldown(action models.PetAction, format string) error {
	cooldown := cooldowns[action]
	elapsed := clock.Elapsed(s.clock, s.pet.LastAction[action])
	if elapsed >= cooldown {
		return nil
	}
	wait := (cooldown - elapsed).Round(time.Second)
	return models.Refuse(models.ErrCooldownActive, format, s.pet.Name, wait)
}

// apply changes stats and returns a level-up note, empty when none
func (s *Service) apply(identity string, action models.PetAction, e effect) string {
	s.pet.Happiness.Add(e.happiness)
	s.pet.Hunger.Add(e.hunger)
	s.pet.Energy.Add(e.energy)
	if action != "" {
		s.pet.LastAction[action] = s.clock.Now()
	}
	s.caregivers[identity] = struct{}{}

	if s.pet.AddExperience(e.experience) {
		return fmt.Sprintf("\n🎉 %s reached Level %d!", s.pet.Name, s.pet.Level)
	}
	return ""
}

func statusBar(value int) string {
	filled := models.Clamp(value/10, 0, 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
