package models

// Choice is one option offered in a scene
type Choice struct {
	Token  string
	Action string
}

// Scene is a step of a branching story
type Scene struct {
	Text    string
	Choices []Choice
}

// Tokens lists the vote tokens in declaration order
func (s *Scene) Tokens() []string {
	tokens := make([]string, len(s.Choices))
	for i, c := range s.Choices {
		tokens[i] = c.Token
	}
	return tokens
}

// Action returns the action text behind token
func (s *Scene) Action(token string) (string, bool) {
	for _, c := range s.Choices {
		if c.Token == token {
			return c.Action, true
		}
	}
	return "", false
}
