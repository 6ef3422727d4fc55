package models

// Command is a chat message already parsed into its normalized form
type Command struct {
	// Name is the lower-cased command word without the prefix
	Name string

	// Args are the whitespace separated words following the command
	Args []string

	// Identity is the stable id of the participant who sent the command. Ballots
	// and scores are keyed by it.
	Identity string

	// DisplayName is how the participant is addressed in replies
	DisplayName string
}

// Display returns the display name, falling back to the identity
func (c *Command) Display() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Identity
}

// Arg returns the i-th argument or an empty string
func (c *Command) Arg(i int) string {
	if c == nil || i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}
