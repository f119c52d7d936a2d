package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"devlogger/internal/domain"
	"devlogger/internal/repository"
)

// LogService coordinates owner-scoped journal entry operations. The
// ownerID on every call is the identity already verified by the token
// layer; ownership is enforced inside the store predicates.
type LogService interface {
	Create(ctx context.Context, ownerID, title, content string, tags []string) (*domain.Log, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Log, error)
	List(ctx context.Context, ownerID string, tags []string) ([]domain.Log, error)
	Update(ctx context.Context, ownerID, id, title, content string, tags []string) (*domain.Log, error)
	Delete(ctx context.Context, ownerID, id string) error
	ResolveForExport(ctx context.Context, ownerID string, ids []string) ([]domain.Log, error)
}

type logService struct {
	logs repository.LogRepository
}

func NewLogService(logs repository.LogRepository) LogService {
	return &logService{logs: logs}
}

func (s *logService) Create(ctx context.Context, ownerID, title, content string, tags []string) (*domain.Log, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("title and content are required")
	}

	log := &domain.Log{
		ID:      uuid.NewString(),
		Title:   title,
		Content: content,
		Tags:    normalizeTags(tags),
		OwnerID: ownerID,
	}

	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *logService) Get(ctx context.Context, ownerID, id string) (*domain.Log, error) {
	return s.logs.Get(ctx, ownerID, id)
}

// List returns the owner's logs newest first. A non-empty tag set
// filters to logs carrying at least one of the tags.
func (s *logService) List(ctx context.Context, ownerID string, tags []string) ([]domain.Log, error) {
	logs, err := s.logs.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return logs, nil
	}

	filtered := make([]domain.Log, 0, len(logs))
	for _, log := range logs {
		if log.HasAnyTag(tags) {
			filtered = append(filtered, log)
		}
	}
	return filtered, nil
}

// Update replaces title, content and tags wholesale. Owner and creation
// time are never touched.
func (s *logService) Update(ctx context.Context, ownerID, id, title, content string, tags []string) (*domain.Log, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("title and content are required")
	}

	log, err := s.logs.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	log.Title = title
	log.Content = content
	log.Tags = normalizeTags(tags)

	if err := s.logs.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *logService) Delete(ctx context.Context, ownerID, id string) error {
	return s.logs.Delete(ctx, ownerID, id)
}

// ResolveForExport re-resolves the requested ids against the store with
// the owner in the predicate. Ids belonging to someone else, or to
// nothing at all, simply drop out of the result.
func (s *logService) ResolveForExport(ctx context.Context, ownerID string, ids []string) ([]domain.Log, error) {
	return s.logs.ListByIDs(ctx, ownerID, ids)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
