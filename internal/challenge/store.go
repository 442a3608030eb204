package challenge

import (
	"context"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// Store defines the persistence operations the challenge service needs
type Store interface {
	CreateChallenge(ctx context.Context, ch *domain.Challenge) error
	GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	ListChallenges(ctx context.Context, userID string, limit int) ([]*domain.Challenge, error)
}
