package repo

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRequestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()

	created, err := store.Create(ctx, "05", 2025)
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "05", got.Month)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.False(t, got.Timestamp.IsZero())
}

func TestMemoryRequestStore_GetMissing(t *testing.T) {
	store := NewMemoryRequestStore()

	_, err := store.Get(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestMemoryRequestStore_GetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()
	created, _ := store.Create(ctx, "01", 2000)

	first, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMemoryRequestStore_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()
	created, _ := store.Create(ctx, "01", 2000)

	created.Status = domain.StatusFailed
	created.Month = "12"

	got, _ := store.Get(ctx, created.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "01", got.Month)
}

func TestMemoryRequestStore_IDsAreSequential(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()

	var prev int64
	for i := 0; i < 5; i++ {
		req, err := store.Create(ctx, "03", 2024)
		require.NoError(t, err)
		assert.Greater(t, req.ID, prev)
		prev = req.ID
	}
}

func TestMemoryRequestStore_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()

	const workers = 50
	ids := make(chan int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := store.Create(ctx, "07", 2025)
			if err == nil {
				ids <- req.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var got []int64
	for id := range ids {
		got = append(got, id)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	require.Len(t, got, workers)
	for i, id := range got {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestMemoryRequestStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()
	_, _ = store.Create(ctx, "01", 2020)
	_, _ = store.Create(ctx, "02", 2021)

	list, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "01", list[0].Month)
	assert.Equal(t, "02", list[1].Month)
}

func TestMemoryRequestStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to success", func(t *testing.T) {
		store := NewMemoryRequestStore()
		req, _ := store.Create(ctx, "05", 2025)

		require.NoError(t, store.UpdateStatus(ctx, req.ID, domain.StatusSuccess))

		got, _ := store.Get(ctx, req.ID)
		assert.Equal(t, domain.StatusSuccess, got.Status)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		store := NewMemoryRequestStore()
		req, _ := store.Create(ctx, "05", 2025)
		before, _ := store.List(ctx)

		err := store.UpdateStatus(ctx, req.ID+100, domain.StatusFailed)

		assert.NoError(t, err)
		after, _ := store.List(ctx)
		assert.Equal(t, before, after)
	})

	t.Run("terminal status is not revisited", func(t *testing.T) {
		store := NewMemoryRequestStore()
		req, _ := store.Create(ctx, "05", 2025)
		require.NoError(t, store.UpdateStatus(ctx, req.ID, domain.StatusFailed))

		err := store.UpdateStatus(ctx, req.ID, domain.StatusSuccess)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
		got, _ := store.Get(ctx, req.ID)
		assert.Equal(t, domain.StatusFailed, got.Status)
	})

	t.Run("concurrent updates on different ids", func(t *testing.T) {
		store := NewMemoryRequestStore()
		const n = 20
		for i := 0; i < n; i++ {
			_, _ = store.Create(ctx, "05", 2025)
		}

		var wg sync.WaitGroup
		for id := int64(1); id <= n; id++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				status := domain.StatusSuccess
				if id%2 == 0 {
					status = domain.StatusFailed
				}
				_ = store.UpdateStatus(ctx, id, status)
			}(id)
		}
		wg.Wait()

		for id := int64(1); id <= n; id++ {
			got, _ := store.Get(ctx, id)
			if id%2 == 0 {
				assert.Equal(t, domain.StatusFailed, got.Status)
			} else {
				assert.Equal(t, domain.StatusSuccess, got.Status)
			}
		}
	})
}
