package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Zenframe/internal/domain"
)

func TestMemoryUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()
	article := sampleArticle()

	inserted, err := repo.Upsert(ctx, article)
	require.NoError(t, err)
	assert.True(t, inserted)

	article.Headline = "Replaced"
	inserted, err = repo.Upsert(ctx, article)
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Replaced", list[0].Headline)
}

func TestMemoryUpsertKeepsIDAndRefreshesDate(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleArticle())
	require.NoError(t, err)
	first, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = repo.Upsert(ctx, sampleArticle())
	require.NoError(t, err)

	got, err := repo.Get(ctx, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, clock, got.CreatedDate)
	assert.Equal(t, "A magnitude 6 quake...", got.FullBody)
}

func TestMemoryConcurrentUpsertsYieldOneRecord(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Upsert(ctx, sampleArticle())
			if err != nil {
				t.Errorf("upsert: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	list, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryListFiltersAndPages(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()

	for i, score := range []int{10, 80, 90, 60} {
		a := sampleArticle()
		a.SourceURL = fmt.Sprintf("http://x/%d", i)
		a.Positivity = score
		if i == 3 {
			a.Category = "science"
		}
		_, err := repo.Upsert(ctx, a)
		require.NoError(t, err)
	}

	minScore := 60
	list, err := repo.List(ctx, domain.ListFilter{MinPositivity: &minScore})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "http://x/3", list[0].SourceURL, "newest first")
	assert.Empty(t, list[0].FullBody)

	list, err = repo.List(ctx, domain.ListFilter{Category: "SCIENCE"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List(ctx, domain.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "http://x/2", list[0].SourceURL)

	list, err = repo.List(ctx, domain.ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryCommentsAndUsers(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleArticle())
	require.NoError(t, err)
	list, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	newsID := list[0].ID

	userID, err := repo.CreateUser(ctx, domain.User{Email: "Ada@Example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{Email: "ada@example.com"})
	assert.True(t, errors.Is(err, domain.ErrEmailTaken))

	user, err := repo.UserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)

	_, err = repo.AddComment(ctx, domain.Comment{UserID: userID, NewsID: newsID, Content: "first"})
	require.NoError(t, err)
	_, err = repo.AddComment(ctx, domain.Comment{UserID: userID, NewsID: newsID, Content: "second"})
	require.NoError(t, err)

	comments, err := repo.ListComments(ctx, newsID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)

	_, err = repo.AddComment(ctx, domain.Comment{UserID: userID, NewsID: "missing", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, "bad id")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}
