package repository

import (
	"context"
	"sync"
	"testing"

	"gamerit/domain/entities"
	"gamerit/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("round-trips a new player", func(t *testing.T) {
		created, err := repo.Create(ctx, "t2_create", "creator", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), created.Balance)
		assert.Equal(t, 1, created.Level)

		fetched, err := repo.GetByRedditID(ctx, "t2_create")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "creator", fetched.Username)
		assert.Equal(t, int64(1000), fetched.Balance)
	})

	t.Run("missing player returns nil without error", func(t *testing.T) {
		fetched, err := repo.GetByRedditID(ctx, "t2_nobody")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})
}

func TestPlayerRepository_AdjustBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "t2_adjust", "adjuster", 500)
	require.NoError(t, err)

	t.Run("applies credits and debits", func(t *testing.T) {
		balance, err := repo.AdjustBalance(ctx, "t2_adjust", -200)
		require.NoError(t, err)
		assert.Equal(t, int64(300), balance)

		balance, err = repo.AdjustBalance(ctx, "t2_adjust", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(400), balance)
	})

	t.Run("rejects overdrafts", func(t *testing.T) {
		_, err := repo.AdjustBalance(ctx, "t2_adjust", -10000)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

		player, err := repo.GetByRedditID(ctx, "t2_adjust")
		require.NoError(t, err)
		assert.Equal(t, int64(400), player.Balance)
	})

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		_, err := repo.Create(ctx, "t2_race", "racer", 100)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AdjustBalance(ctx, "t2_race", -30)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
			}
		}
		// 100 chips covers exactly three 30-chip debits.
		assert.Equal(t, 3, succeeded)

		player, err := repo.GetByRedditID(ctx, "t2_race")
		require.NoError(t, err)
		assert.Equal(t, int64(10), player.Balance)
	})
}

func TestPlayerRepository_Progression(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "t2_prog", "progresser", 1000)
	require.NoError(t, err)

	t.Run("updates xp and level together", func(t *testing.T) {
		require.NoError(t, repo.UpdateProgression(ctx, "t2_prog", 2500, 3))

		player, err := repo.GetByRedditID(ctx, "t2_prog")
		require.NoError(t, err)
		assert.Equal(t, int64(2500), player.XP)
		assert.Equal(t, 3, player.Level)
	})

	t.Run("meta minutes clamp at zero", func(t *testing.T) {
		total, err := repo.AddMetaMinutes(ctx, "t2_prog", 45)
		require.NoError(t, err)
		assert.Equal(t, int64(45), total)

		total, err = repo.AddMetaMinutes(ctx, "t2_prog", -100)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestPlayerRepository_GetTopByBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	for _, p := range []struct {
		id      string
		balance int64
	}{
		{"t2_bronze", 100},
		{"t2_gold", 9000},
		{"t2_silver", 4000},
	} {
		_, err := repo.Create(ctx, p.id, p.id, p.balance)
		require.NoError(t, err)
	}

	top, err := repo.GetTopByBalance(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "t2_gold", top[0].RedditID)
	assert.Equal(t, "t2_silver", top[1].RedditID)
}
