package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque ids for correlating requests across logs and traces.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues version 7 UUIDs, which sort by creation time.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new uuid v7: %w", err)
	}
	return v.String(), nil
}
