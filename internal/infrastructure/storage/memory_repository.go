package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

// MemoryRepository is an in-process store with the same semantics as PostgresRepository.
type MemoryRepository struct {
	mu       sync.RWMutex
	byURL    map[string]*domain.EnrichedArticle
	byID     map[string]*domain.EnrichedArticle
	comments map[string][]domain.Comment
	users    map[string]domain.User
	now      func() time.Time
}

var _ ports.Store = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byURL:    map[string]*domain.EnrichedArticle{},
		byID:     map[string]*domain.EnrichedArticle{},
		comments: map[string][]domain.Comment{},
		users:    map[string]domain.User{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema is a no-op.
func (r *MemoryRepository) EnsureSchema(context.Context) error {
	return nil
}

// Upsert inserts or replaces the record keyed by SourceURL; the id is kept on replace.
func (r *MemoryRepository) Upsert(_ context.Context, article domain.EnrichedArticle) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	article.CreatedDate = r.now()

	if existing, ok := r.byURL[article.SourceURL]; ok {
		article.ID = existing.ID
		*existing = article
		return false, nil
	}

	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	stored := article
	r.byURL[article.SourceURL] = &stored
	r.byID[article.ID] = &stored
	return true, nil
}

// List filters and pages articles, newest first, without full bodies.
func (r *MemoryRepository) List(_ context.Context, filter domain.ListFilter) ([]domain.EnrichedArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category := strings.ToLower(filter.Category)
	out := make([]domain.EnrichedArticle, 0, len(r.byID))
	for _, a := range r.byID {
		if filter.MinPositivity != nil && a.Positivity < *filter.MinPositivity {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		item := *a
		item.FullBody = ""
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.EnrichedArticle{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Get returns one article by id.
func (r *MemoryRepository) Get(_ context.Context, id string) (domain.EnrichedArticle, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.EnrichedArticle{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.EnrichedArticle{}, domain.ErrNotFound
	}
	return *a, nil
}

// AddComment appends a comment to an existing article.
func (r *MemoryRepository) AddComment(_ context.Context, comment domain.Comment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[comment.NewsID]; !ok {
		return "", domain.ErrNotFound
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedDate = r.now()
	r.comments[comment.NewsID] = append(r.comments[comment.NewsID], comment)
	return comment.ID, nil
}

// ListComments returns comments for newsID, newest first.
func (r *MemoryRepository) ListComments(_ context.Context, newsID string) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.comments[newsID]
	out := make([]domain.Comment, len(src))
	for i := range src {
		out[len(src)-1-i] = src[i]
	}
	return out, nil
}

// CreateUser stores an account keyed by lower-cased email.
func (r *MemoryRepository) CreateUser(_ context.Context, user domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	if _, ok := r.users[user.Email]; ok {
		return "", domain.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedDate = r.now()
	r.users[user.Email] = user
	return user.ID, nil
}

// UserByEmail looks an account up by email.
func (r *MemoryRepository) UserByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}
