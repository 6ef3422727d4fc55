package adventure

import "github.com/KirkDiggler/crowdplay/internal/models"

// castleStory is the default story
var castleStory = []*models.Scene{
	{
		Text: "🏰 You stand before an ancient castle. Dark clouds gather above.",
		Choices: []models.Choice{
			{Token: "A", Action: "Enter through the main gate"},
			{Token: "B", Action: "Sneak around to find a side entrance"},
			{Token: "C", Action: "Climb the ivy-covered wall"},
		},
	},
	{
		Text: "🌙 Inside, you hear mysterious whispers echoing through the halls.",
		Choices: []models.Choice{
			{Token: "A", Action: "Follow the whispers deeper into the castle"},
			{Token: "B", Action: "Search the nearby rooms for clues"},
			{Token: "C", Action: "Call out to identify the source"},
		},
	},
	{
		Text: "⚔️ A shadowy figure blocks your path, wielding a glowing sword!",
		Choices: []models.Choice{
			{Token: "A", Action: "Draw your weapon and fight"},
			{Token: "B", Action: "Try to negotiate with the figure"},
			{Token: "C", Action: "Attempt to sneak past quietly"},
		},
	},
}
