package service

import (
	"context"
	"sync"
	"time"

	"devlogger/internal/domain"
)

// In-memory repository fakes used across the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs map[string]*domain.Log // by id
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[string]*domain.Log)}
}

func (r *fakeLogRepo) Init(ctx context.Context) error { return nil }

func (r *fakeLogRepo) Create(ctx context.Context, log *domain.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	cp := *log
	r.logs[log.ID] = &cp
	return nil
}

func (r *fakeLogRepo) Get(ctx context.Context, ownerID, id string) (*domain.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLogRepo) List(ctx context.Context, ownerID string) ([]domain.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Log
	for _, l := range r.logs {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	sortLogsNewestFirst(out)
	return out, nil
}

func (r *fakeLogRepo) ListByIDs(ctx context.Context, ownerID string, ids []string) ([]domain.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []domain.Log{}
	for _, l := range r.logs {
		if l.OwnerID != ownerID {
			continue
		}
		if _, ok := want[l.ID]; ok {
			out = append(out, *l)
		}
	}
	sortLogsNewestFirst(out)
	return out, nil
}

func (r *fakeLogRepo) Update(ctx context.Context, log *domain.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.logs[log.ID]
	if !ok || existing.OwnerID != log.OwnerID {
		return domain.ErrNotFound
	}
	log.UpdatedAt = time.Now().UTC()
	existing.Title = log.Title
	existing.Content = log.Content
	existing.Tags = log.Tags
	existing.UpdatedAt = log.UpdatedAt
	return nil
}

func (r *fakeLogRepo) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok || l.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.logs, id)
	return nil
}

func sortLogsNewestFirst(logs []domain.Log) {
	for i := 1; i < len(logs); i++ {
		for j := i; j > 0 && logs[j].CreatedAt.After(logs[j-1].CreatedAt); j-- {
			logs[j], logs[j-1] = logs[j-1], logs[j]
		}
	}
}
