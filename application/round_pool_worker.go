package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/services"
	"gamerit/metrics"
	"gamerit/reddit"
)

const roundPoolJob = "round_pool"

// RoundPoolWorker keeps the betting round pool topped up and settles rounds
// whose betting window has elapsed.
type RoundPoolWorker struct {
	uowFactory   UnitOfWorkFactory
	redditClient reddit.Client
	selector     *services.RoundSelector
}

// NewRoundPoolWorker creates a new round pool worker
func NewRoundPoolWorker(uowFactory UnitOfWorkFactory, redditClient reddit.Client) *RoundPoolWorker {
	return &RoundPoolWorker{
		uowFactory:   uowFactory,
		redditClient: redditClient,
		selector:     services.NewRoundSelector(),
	}
}

// Start begins the round pool worker. The returned function stops it.
func (w *RoundPoolWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	interval := config.Get().RoundPoolInterval

	go func() {
		log.Info("Round pool worker started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// First pass right away so a fresh deployment has rounds to bet on
		w.runPass(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Round pool worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Round pool worker shutting down (stop requested)")
				return
			case <-ticker.C:
				w.runPass(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

func (w *RoundPoolWorker) runPass(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		metrics.WorkerRunsTotal.WithLabelValues(roundPoolJob, "error").Inc()
		log.Errorf("Round pool pass failed: %v", err)
		return
	}
	metrics.WorkerRunsTotal.WithLabelValues(roundPoolJob, "ok").Inc()
}

// RunOnce executes a single pool maintenance pass: settle expired rounds,
// then top the pool back up to its ceiling. Safe to invoke from the admin
// trigger endpoint; overlapping invocations across instances skip via the
// job lock.
func (w *RoundPoolWorker) RunOnce(ctx context.Context) error {
	active, recent, err := w.snapshotRounds(ctx)
	if err != nil {
		return err
	}

	cfg := config.Get()
	now := time.Now().UTC()

	// Reddit reads happen outside any transaction
	var expired []*entities.Round
	for _, round := range active {
		if round.IsExpired(cfg.RoundDuration, now) {
			w.refreshFinalScores(ctx, round)
			expired = append(expired, round)
		}
	}

	var candidates []reddit.Post
	if len(active)-len(expired) < cfg.RoundCeiling {
		candidates = w.fetchCandidates(ctx)
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	acquired, err := uow.JobLockRepository().TryAcquire(ctx, roundPoolJob)
	if err != nil {
		return err
	}
	if !acquired {
		log.Info("Round pool job already running elsewhere, skipping")
		return nil
	}

	settlement := services.NewSettlementService(
		uow.RoundRepository(),
		uow.BetRepository(),
		uow.PlayerRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
	for _, round := range expired {
		if err := uow.RoundRepository().UpdateScores(ctx, round.ID, round.PostA, round.PostB); err != nil {
			log.Errorf("Failed to persist final scores for round %s: %v", round.ID, err)
			continue
		}
		result, err := settlement.SettleRound(ctx, round.ID)
		if err != nil {
			log.Errorf("Failed to settle round %s: %v", round.ID, err)
			continue
		}
		metrics.RoundsSettledTotal.WithLabelValues(string(result.Winner)).Inc()
		log.WithFields(log.Fields{
			"round_id":     round.ID,
			"winner":       result.Winner,
			"bets_settled": result.BetsSettled,
			"total_paid":   result.TotalPaid,
		}).Info("Settled expired round")
	}

	created := w.topUpPool(ctx, uow, candidates, recent)

	activeCount, err := uow.RoundRepository().CountActive(ctx)
	if err == nil {
		metrics.ActiveRounds.Set(float64(activeCount))
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit round pool pass: %w", err)
	}

	if len(expired) > 0 || created > 0 {
		log.WithFields(log.Fields{
			"settled": len(expired),
			"created": created,
		}).Info("Round pool pass complete")
	}
	return nil
}

// snapshotRounds reads the current pool state in a short-lived transaction
func (w *RoundPoolWorker) snapshotRounds(ctx context.Context) (active, recent []*entities.Round, err error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	active, err = uow.RoundRepository().GetActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	recent, err = uow.RoundRepository().GetRecent(ctx, 100)
	if err != nil {
		return nil, nil, err
	}
	return active, recent, nil
}

// refreshFinalScores re-fetches both posts one last time before settlement.
// Deleted posts freeze at their last persisted score.
func (w *RoundPoolWorker) refreshFinalScores(ctx context.Context, round *entities.Round) {
	for _, rp := range []*entities.RoundPost{&round.PostA, &round.PostB} {
		post, err := w.redditClient.FetchPostByID(ctx, rp.PostID)
		if err != nil {
			metrics.RedditRequestsTotal.WithLabelValues("error").Inc()
			log.Errorf("Failed to fetch final score for post %s: %v", rp.PostID, err)
			continue
		}
		metrics.RedditRequestsTotal.WithLabelValues("ok").Inc()
		if post == nil {
			rp.Exists = false
			continue
		}
		rp.FinalScore = post.Score
	}
}

func (w *RoundPoolWorker) fetchCandidates(ctx context.Context) []reddit.Post {
	cfg := config.Get()
	sorts := []reddit.Sort{reddit.SortHot, reddit.SortTopDay, reddit.SortTopWeek}

	var candidates []reddit.Post
	for _, subreddit := range cfg.RoundSubreddits {
		for _, sort := range sorts {
			posts, err := w.redditClient.FetchListing(ctx, subreddit, sort, 25)
			if err != nil {
				metrics.RedditRequestsTotal.WithLabelValues("error").Inc()
				log.Errorf("Failed to fetch %s listing for r/%s: %v", sort, subreddit, err)
				continue
			}
			metrics.RedditRequestsTotal.WithLabelValues("ok").Inc()
			candidates = append(candidates, reddit.FilterPosts(posts, reddit.FilterOptions{MinScore: 10})...)
		}
	}
	return candidates
}

func (w *RoundPoolWorker) topUpPool(ctx context.Context, uow UnitOfWork, candidates []reddit.Post, recent []*entities.Round) int {
	if len(candidates) < 2 {
		return 0
	}

	roundService := services.NewRoundService(uow.RoundRepository(), uow.BetRepository(), uow.EventBus())
	excl := services.BuildPairExclusion(recent)

	created := 0
	for {
		pair, ok := w.selector.SelectPair(candidates, excl)
		if !ok {
			break
		}
		round, err := roundService.CreateRound(ctx, *pair)
		if errors.Is(err, entities.ErrRoundPoolFull) {
			break
		}
		if err != nil {
			log.Errorf("Failed to create round: %v", err)
			break
		}
		excl.AddPair(pair)
		created++
		log.WithFields(log.Fields{
			"round_id":  round.ID,
			"post_a":    round.PostA.PostID,
			"post_b":    round.PostB.PostID,
			"subreddit": round.SubredditPair(),
		}).Info("Created new round")
	}
	return created
}
