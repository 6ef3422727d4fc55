package voting

// Quota closes the window once n ballots are in
func Quota(n int) Condition {
	return func(ballots []Ballot) bool {
		return len(ballots) >= n
	}
}

// Match closes the window as soon as anybody votes for choice
func Match(choice string) Condition {
	return func(ballots []Ballot) bool {
		for _, b := range ballots {
			if b.Choice == choice {
				return true
			}
		}
		return false
	}
}

// Any closes the window when any of conditions holds
func Any(conditions ...Condition) Condition {
	return func(ballots []Ballot) bool {
		for _, c := range conditions {
			if c != nil && c(ballots) {
				return true
			}
		}
		return false
	}
}
