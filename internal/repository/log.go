package repository

import (
	"context"

	"devlogger/internal/domain"
)

// LogRepository exposes persistence operations for Log entries. Every
// lookup that takes an ownerID includes it in the query predicate, so a
// log belonging to another owner behaves exactly like a missing one.
type LogRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, log *domain.Log) error
	Get(ctx context.Context, ownerID, id string) (*domain.Log, error)
	List(ctx context.Context, ownerID string) ([]domain.Log, error)
	ListByIDs(ctx context.Context, ownerID string, ids []string) ([]domain.Log, error)
	Update(ctx context.Context, log *domain.Log) error
	Delete(ctx context.Context, ownerID, id string) error
}
