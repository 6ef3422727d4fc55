package arena

import "github.com/KirkDiggler/crowdplay/internal/models"

// Hero actions, in tie-break order
const (
	ActionAttack  = "attack"
	ActionDefend  = "defend"
	ActionMagic   = "magic"
	ActionSpecial = "special"
)

var actions = []string{ActionAttack, ActionDefend, ActionMagic, ActionSpecial}

const (
	heroHP      = 100
	heroPower   = 20
	heroMana    = 50
	manaRegen   = 5
	shieldValue = 15
	shieldDecay = 5

	attackVariance = 14

	healBase     = 5
	healVariance = 9

	magicCost     = 20
	magicBase     = 30
	magicVariance = 19
	weakMagic     = 10

	weakSpecial = 15

	enemyAttackVariance = 9
	enemyPowerVariance  = 14
	enemyAbilityBonus   = 20

	victoryExpBase     = 50
	victoryExpVariance = 29
)

type special struct {
	name   string
	damage int
	cost   int
}

var specials = []special{
	{name: "Meteor Strike", damage: 45, cost: 30},
	{name: "Lightning Bolt", damage: 35, cost: 25},
	{name: "Holy Smite", damage: 40, cost: 35},
}

// enemies are templates; a battle works on a copy
var enemies = []models.Enemy{
	{Name: "Shadow Assassin", Emoji: "🥷", Ability: "Shadow Strike", HP: models.NewStat(80, 0, 80), Power: 25},
	{Name: "Fire Dragon", Emoji: "🐉", Ability: "Fire Breath", HP: models.NewStat(120, 0, 120), Power: 30},
	{Name: "Ice Golem", Emoji: "❄️", Ability: "Ice Shard", HP: models.NewStat(100, 0, 100), Power: 20},
	{Name: "Lightning Wizard", Emoji: "⚡", Ability: "Lightning Storm", HP: models.NewStat(70, 0, 70), Power: 35},
	{Name: "Stone Giant", Emoji: "🗿", Ability: "Boulder Throw", HP: models.NewStat(150, 0, 150), Power: 15},
	{Name: "Void Demon", Emoji: "👹", Ability: "Void Blast", HP: models.NewStat(90, 0, 90), Power: 28},
}

func newHero() *models.Hero {
	return &models.Hero{
		Name:  "Heroes",
		Emoji: "⚔️",
		HP:    models.NewStat(heroHP, 0, heroHP),
		Mana:  models.NewStat(heroMana, 0, heroMana),
		Power: heroPower,
	}
}
