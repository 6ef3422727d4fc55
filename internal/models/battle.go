package models

// Enemy is an arena opponent template
type Enemy struct {
	Name    string
	Emoji   string
	Ability string
	HP      Stat
	Power   int
}

// Hero is the party controlled by chat votes
type Hero struct {
	Name   string
	Emoji  string
	HP     Stat
	Mana   Stat
	Power  int
	Shield int
}

// Battle is one arena fight
type Battle struct {
	Round int
	Turn  int
	Hero  *Hero
	Enemy *Enemy
}

// Over reports whether either side has fallen
func (b *Battle) Over() bool {
	return b.Hero.HP.Depleted() || b.Enemy.HP.Depleted()
}
