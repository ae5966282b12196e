package services

import (
	"context"
	"testing"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/testhelpers"
	"gamerit/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestRoundService() (*RoundService, *testhelpers.MockRoundRepository, *testhelpers.MockBetRepository, *testhelpers.MockEventPublisher) {
	config.SetTestConfig(config.NewTestConfig())

	mockRoundRepo := new(testhelpers.MockRoundRepository)
	mockBetRepo := new(testhelpers.MockBetRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewRoundService(mockRoundRepo, mockBetRepo, mockEventPublisher)
	return service, mockRoundRepo, mockBetRepo, mockEventPublisher
}

func testPostPair() PostPair {
	return PostPair{
		A: reddit.Post{ID: "aaa111", Title: "cat does a flip", Author: "alice", Subreddit: "funny", Score: 150},
		B: reddit.Post{ID: "bbb222", Title: "patch notes dropped", Author: "bob", Subreddit: "gaming", Score: 320},
	}
}

func TestRoundService_CreateRound(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a round and seeds both posts", func(t *testing.T) {
		service, roundRepo, _, publisher := createTestRoundService()

		roundRepo.On("CountActive", ctx).Return(3, nil)
		roundRepo.On("Create", ctx, mock.AnythingOfType("*entities.Round")).Return(nil)
		publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
			created, ok := e.(events.RoundCreatedEvent)
			return ok && created.PostAID == "aaa111" && created.PostBID == "bbb222"
		})).Return(nil)

		round, err := service.CreateRound(ctx, testPostPair())
		require.NoError(t, err)
		assert.Equal(t, entities.RoundStatusActive, round.Status)
		assert.Equal(t, int64(150), round.PostA.InitialScore)
		// Final scores start equal to initial scores so a settled-at-birth
		// round would read as a tie rather than garbage.
		assert.Equal(t, round.PostA.InitialScore, round.PostA.FinalScore)
		assert.True(t, round.PostB.Exists)

		roundRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("refuses to exceed the pool ceiling", func(t *testing.T) {
		service, roundRepo, _, _ := createTestRoundService()

		roundRepo.On("CountActive", ctx).Return(config.Get().RoundCeiling, nil)

		_, err := service.CreateRound(ctx, testPostPair())
		assert.ErrorIs(t, err, entities.ErrRoundPoolFull)

		roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
