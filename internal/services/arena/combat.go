package arena

import (
	"fmt"

	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/models"
)

// heroTurn applies the voted action and regenerates mana
func heroTurn(r dice.Roller, b *models.Battle, action string) string {
	hero, enemy := b.Hero, b.Enemy
	var text string

	switch action {
	case ActionAttack:
		damage := dice.Range(r, hero.Power, attackVariance)
		enemy.HP.Add(-damage)
		text = fmt.Sprintf("⚔️ Heroes attack for %d damage!", damage)

	case ActionDefend:
		hero.Shield = shieldValue
		heal := dice.Range(r, healBase, healVariance)
		hero.HP.Add(heal)
		text = fmt.Sprintf("🛡️ Heroes defend (+%d shield, +%d HP)", hero.Shield, heal)

	case ActionMagic:
		if hero.Mana.Value >= magicCost {
			damage := dice.Range(r, magicBase, magicVariance)
			enemy.HP.Add(-damage)
			hero.Mana.Add(-magicCost)
			text = fmt.Sprintf("✨ Heroes cast magic for %d damage! (-%d mana)", damage, magicCost)
		} else {
			enemy.HP.Add(-weakMagic)
			text = fmt.Sprintf("✨ Low mana! Weak magic attack for %d damage", weakMagic)
		}

	case ActionSpecial:
		sp := specials[dice.Pick(r, len(specials))]
		if hero.Mana.Value >= sp.cost {
			enemy.HP.Add(-sp.damage)
			hero.Mana.Add(-sp.cost)
			text = fmt.Sprintf("💥 %s deals %d damage! (-%d mana)", sp.name, sp.damage, sp.cost)
		} else {
			enemy.HP.Add(-weakSpecial)
			text = fmt.Sprintf("💥 Not enough mana for special! Basic attack for %d damage", weakSpecial)
		}
	}

	hero.Mana.Add(manaRegen)
	return text
}

// enemyTurn picks and applies the enemy's action. A defeated enemy does not act.
func enemyTurn(r dice.Roller, b *models.Battle) string {
	hero, enemy := b.Hero, b.Enemy
	if enemy.HP.Depleted() {
		return fmt.Sprintf("%s %s collapses!", enemy.Emoji, enemy.Name)
	}

	var damage int
	var verb string
	switch dice.Pick(r, 3) {
	case 0:
		damage = dice.Range(r, enemy.Power, enemyAttackVariance)
		verb = "attacks"
	case 1:
		damage = dice.Range(r, enemy.Power*3/2, enemyPowerVariance)
		verb = "uses a powerful attack"
	default:
		damage = enemy.Power + enemyAbilityBonus
		verb = "uses " + enemy.Ability
	}

	damage = max(0, damage-hero.Shield)
	hero.HP.Add(-damage)
	hero.Shield = max(0, hero.Shield-shieldDecay)

	return fmt.Sprintf("%s %s %s for %d damage!", enemy.Emoji, enemy.Name, verb, damage)
}

// battleState renders both sides' stats
func battleState(b *models.Battle) string {
	hero, enemy := b.Hero, b.Enemy
	text := fmt.Sprintf("\n📊 Battle Status:\n%s %s: %d/%d HP, %d/%d MP",
		hero.Emoji, hero.Name, hero.HP.Value, hero.HP.Max, hero.Mana.Value, hero.Mana.Max)
	if hero.Shield > 0 {
		text += fmt.Sprintf(", %d shield", hero.Shield)
	}
	text += fmt.Sprintf("\n%s %s: %d HP\n", enemy.Emoji, enemy.Name, enemy.HP.Value)
	return text
}
