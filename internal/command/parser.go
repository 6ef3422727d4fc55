// Package command turns chat text into normalized commands.
package command

import (
	"strings"

	"github.com/KirkDiggler/crowdplay/internal/models"
)

// DefaultPrefix marks a chat message as a command
const DefaultPrefix = "!"

// Parse returns the command in text, or nil when text is not a command.
// The command word is lower-cased; arguments keep their case.
func Parse(prefix, text, identity string) *models.Command {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, prefix) {
		return nil
	}

	fields := strings.Fields(strings.TrimPrefix(trimmed, prefix))
	if len(fields) == 0 {
		return nil
	}

	return &models.Command{
		Name:     strings.ToLower(fields[0]),
		Args:     fields[1:],
		Identity: identity,
	}
}
