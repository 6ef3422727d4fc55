package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/crowdplay/internal/common/uuid UUID

// UUID generates identifiers for voting windows
type UUID interface {
	NewUUID() string
}

// Random implements UUID with random v4 identifiers
type Random struct{}

func New() *Random {
	return &Random{}
}

// NewUUID returns a new UUID string
func (r *Random) NewUUID() string {
	return uuid.NewString()
}
