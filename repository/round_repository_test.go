package repository

import (
	"context"
	"testing"
	"time"

	"gamerit/domain/entities"
	"gamerit/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and fetch round-trips both posts", func(t *testing.T) {
		round := testutil.CreateTestRound()
		require.NoError(t, repo.Create(ctx, round))

		fetched, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, round.PostA.PostID, fetched.PostA.PostID)
		assert.Equal(t, round.PostB.Subreddit, fetched.PostB.Subreddit)
		assert.Equal(t, entities.RoundStatusActive, fetched.Status)
		assert.Nil(t, fetched.Winner)
	})

	t.Run("score refresh persists final scores and existence", func(t *testing.T) {
		round := testutil.CreateTestRound()
		require.NoError(t, repo.Create(ctx, round))

		round.PostA.FinalScore = 1500
		round.PostB.FinalScore = 900
		round.PostB.Exists = false
		require.NoError(t, repo.UpdateScores(ctx, round.ID, round.PostA, round.PostB))

		fetched, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), fetched.PostA.FinalScore)
		assert.False(t, fetched.PostB.Exists)
		// Initial scores never change after creation.
		assert.Equal(t, round.PostA.InitialScore, fetched.PostA.InitialScore)
	})

	t.Run("finish transitions exactly once", func(t *testing.T) {
		round := testutil.CreateTestRound()
		require.NoError(t, repo.Create(ctx, round))

		now := time.Now().UTC()
		claimed, err := repo.Finish(ctx, round.ID, entities.RoundSideA, now)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.Finish(ctx, round.ID, entities.RoundSideB, now)
		require.NoError(t, err)
		assert.False(t, claimed)

		fetched, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.RoundStatusFinished, fetched.Status)
		// The losing second call never overwrote the winner.
		require.NotNil(t, fetched.Winner)
		assert.Equal(t, entities.RoundSideA, *fetched.Winner)
	})

	t.Run("share lock defers finish until the reader commits", func(t *testing.T) {
		round := testutil.CreateTestRound()
		require.NoError(t, repo.Create(ctx, round))

		tx, err := testDB.DB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		txRepo := newRoundRepositoryWithTx(tx)

		locked, err := txRepo.GetByIDForShare(ctx, round.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, entities.RoundStatusActive, locked.Status)

		finished := make(chan error, 1)
		go func() {
			_, err := repo.Finish(context.Background(), round.ID, entities.RoundSideA, time.Now().UTC())
			finished <- err
		}()

		select {
		case <-finished:
			t.Fatal("finish completed while the round row was share locked")
		case <-time.After(200 * time.Millisecond):
		}

		require.NoError(t, tx.Commit(ctx))
		require.NoError(t, <-finished)

		fetched, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.RoundStatusFinished, fetched.Status)
	})

	t.Run("active queries exclude finished rounds", func(t *testing.T) {
		round := testutil.CreateTestRound()
		require.NoError(t, repo.Create(ctx, round))

		before, err := repo.CountActive(ctx)
		require.NoError(t, err)

		_, err = repo.Finish(ctx, round.ID, entities.RoundSideA, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, repo.MarkSettled(ctx, round.ID, time.Now().UTC()))

		after, err := repo.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)

		finished, err := repo.GetFinished(ctx, 10)
		require.NoError(t, err)
		var found bool
		for _, f := range finished {
			if f.ID == round.ID {
				found = true
				assert.NotNil(t, f.SettledAt)
			}
		}
		assert.True(t, found)
	})
}

func TestBetRepository_RoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	playerRepo := NewPlayerRepository(testDB.DB)
	roundRepo := NewRoundRepository(testDB.DB)
	betRepo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	_, err := playerRepo.Create(ctx, "t2_bettor", "bettor", 1000)
	require.NoError(t, err)
	round := testutil.CreateTestRound()
	require.NoError(t, roundRepo.Create(ctx, round))

	bet := &entities.Bet{
		PlayerID: "t2_bettor",
		RoundID:  round.ID,
		Side:     entities.RoundSideA,
		Amount:   50,
	}
	require.NoError(t, betRepo.Create(ctx, bet))
	assert.NotZero(t, bet.ID)

	t.Run("payout settles the bet", func(t *testing.T) {
		require.NoError(t, betRepo.SetPayout(ctx, bet.ID, 100))

		bets, err := betRepo.GetByRound(ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, bets, 1)
		require.NotNil(t, bets[0].Payout)
		assert.Equal(t, int64(100), *bets[0].Payout)
		assert.True(t, bets[0].Won())
	})

	t.Run("stats aggregate the record", func(t *testing.T) {
		stats, err := betRepo.GetStats(ctx, "t2_bettor")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalBets)
		assert.Equal(t, int64(1), stats.TotalWins)
		assert.Equal(t, int64(50), stats.TotalWagered)
		assert.Equal(t, int64(100), stats.TotalWon)
	})
}
