package uuid

import (
	"github.com/google/uuid"
)

// UUID is the string form of an entity identifier.
type UUID string

// MustParseUUID parses s or panics.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewUUID generates a random identifier.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID validates s and returns it as a UUID.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return UUID(parsed.String()), nil
}

func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the identifier is unset.
func (u UUID) IsZero() bool {
	return u == ""
}
