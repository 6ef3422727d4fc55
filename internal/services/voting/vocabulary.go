package voting

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/crowdplay/internal/models"
)

// Vocabulary declares which tokens a window accepts
type Vocabulary interface {
	// Normalize maps a raw token to its canonical form or refuses it
	Normalize(token string) (string, error)

	// Tokens lists the declared tokens in tie-break order. Open-ended
	// vocabularies return nil.
	Tokens() []string
}

// Tokens is a fixed, ordered vocabulary matched case-insensitively
type Tokens []string

// Normalize returns the declared spelling of token
func (t Tokens) Normalize(token string) (string, error) {
	for _, declared := range t {
		if strings.EqualFold(declared, strings.TrimSpace(token)) {
			return declared, nil
		}
	}
	return "", models.Refuse(models.ErrInvalidChoice, "Please vote %s!", t.describe())
}

func (t Tokens) Tokens() []string {
	return t
}

func (t Tokens) describe() string {
	switch len(t) {
	case 0:
		return ""
	case 1:
		return t[0]
	default:
		return strings.Join(t[:len(t)-1], ", ") + ", or " + t[len(t)-1]
	}
}

// Range accepts integers within [Min, Max]
type Range struct {
	Min int
	Max int
}

// Normalize parses token as an integer inside the range
func (r Range) Normalize(token string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return "", models.Refuse(models.ErrInvalidChoice, "Please provide a valid number!")
	}
	if n < r.Min || n > r.Max {
		return "", models.Refuse(models.ErrOutOfRange, "Number must be between %d and %d!", r.Min, r.Max)
	}
	return strconv.Itoa(n), nil
}

func (r Range) Tokens() []string {
	return nil
}
