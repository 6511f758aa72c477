package favorites

import (
	"context"
	"fmt"
	"strings"
)

// Kind names a favourite collection.
type Kind string

const (
	KindTeam    Kind = "team"
	KindPlayer  Kind = "player"
	KindStadium Kind = "stadium"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindTeam, "teams":
		return KindTeam, nil
	case KindPlayer, "players":
		return KindPlayer, nil
	case KindStadium, "stadiums":
		return KindStadium, nil
	default:
		return "", fmt.Errorf("unknown favorite kind %q", value)
	}
}

// Multi reports whether the kind holds a set of ids rather than one value.
func (k Kind) Multi() bool {
	return k == KindPlayer || k == KindStadium
}

// Store is process-wide key/value state with no transactional guarantees.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
