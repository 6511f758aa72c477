package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator creates opaque handles for things the process hands out.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator yields "<prefix>_<uuidv7>". V7 ids sort by creation time, so
// activity handles listed in id order follow start order.
type UUIDGenerator struct {
	prefix string
}

func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: strings.Trim(strings.TrimSpace(prefix), "_")}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	if g.prefix == "" {
		return v.String(), nil
	}
	return g.prefix + "_" + v.String(), nil
}
