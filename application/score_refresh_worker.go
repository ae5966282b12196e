package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/metrics"
	"gamerit/reddit"
)

const scoreRefreshJob = "score_refresh"

// ScoreRefreshWorker periodically re-fetches live scores for the posts of
// every active round so the standings players see stay current.
type ScoreRefreshWorker struct {
	uowFactory   UnitOfWorkFactory
	redditClient reddit.Client
}

// NewScoreRefreshWorker creates a new score refresh worker
func NewScoreRefreshWorker(uowFactory UnitOfWorkFactory, redditClient reddit.Client) *ScoreRefreshWorker {
	return &ScoreRefreshWorker{
		uowFactory:   uowFactory,
		redditClient: redditClient,
	}
}

// Start begins the score refresh worker. The returned function stops it.
func (w *ScoreRefreshWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	interval := config.Get().ScoreRefreshInterval

	go func() {
		log.Info("Score refresh worker started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Score refresh worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Score refresh worker shutting down (stop requested)")
				return
			case <-ticker.C:
				if err := w.RunOnce(ctx); err != nil {
					metrics.WorkerRunsTotal.WithLabelValues(scoreRefreshJob, "error").Inc()
					log.Errorf("Score refresh pass failed: %v", err)
					continue
				}
				metrics.WorkerRunsTotal.WithLabelValues(scoreRefreshJob, "ok").Inc()
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce refreshes scores for all active rounds. A failure on one post or
// round never blocks the others.
func (w *ScoreRefreshWorker) RunOnce(ctx context.Context) error {
	active, err := w.activeRounds(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}

	// Reddit reads happen outside any transaction
	refreshed := make([]*entities.Round, 0, len(active))
	for _, round := range active {
		if w.refreshRound(ctx, round) {
			refreshed = append(refreshed, round)
		}
	}
	if len(refreshed) == 0 {
		return nil
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	acquired, err := uow.JobLockRepository().TryAcquire(ctx, scoreRefreshJob)
	if err != nil {
		return err
	}
	if !acquired {
		log.Info("Score refresh job already running elsewhere, skipping")
		return nil
	}

	updated := 0
	for _, round := range refreshed {
		if err := uow.RoundRepository().UpdateScores(ctx, round.ID, round.PostA, round.PostB); err != nil {
			log.Errorf("Failed to persist scores for round %s: %v", round.ID, err)
			continue
		}
		updated++
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit score refresh: %w", err)
	}

	log.WithField("rounds", updated).Debug("Refreshed round scores")
	return nil
}

func (w *ScoreRefreshWorker) activeRounds(ctx context.Context) ([]*entities.Round, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.RoundRepository().GetActive(ctx)
}

// refreshRound updates the in-memory scores of both posts and reports
// whether anything changed worth persisting.
func (w *ScoreRefreshWorker) refreshRound(ctx context.Context, round *entities.Round) bool {
	changed := false
	for _, rp := range []*entities.RoundPost{&round.PostA, &round.PostB} {
		if !rp.Exists {
			continue
		}
		post, err := w.redditClient.FetchPostByID(ctx, rp.PostID)
		if err != nil {
			metrics.RedditRequestsTotal.WithLabelValues("error").Inc()
			log.Errorf("Failed to fetch post %s: %v", rp.PostID, err)
			continue
		}
		metrics.RedditRequestsTotal.WithLabelValues("ok").Inc()
		if post == nil {
			// Deleted mid-round: freeze the last known score
			rp.Exists = false
			changed = true
			continue
		}
		if post.Score != rp.FinalScore {
			rp.FinalScore = post.Score
			changed = true
		}
	}
	return changed
}
