package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/services"
	"gamerit/metrics"
	"gamerit/reddit"
)

const marketRefreshJob = "market_refresh"

// MarketWorker mines meme subreddits for trending keywords, reprices the
// active stocks from the aggregated signals, and lists new stocks while the
// market has room.
type MarketWorker struct {
	uowFactory   UnitOfWorkFactory
	redditClient reddit.Client
}

// NewMarketWorker creates a new market worker
func NewMarketWorker(uowFactory UnitOfWorkFactory, redditClient reddit.Client) *MarketWorker {
	return &MarketWorker{
		uowFactory:   uowFactory,
		redditClient: redditClient,
	}
}

// Start begins the market worker. The returned function stops it.
func (w *MarketWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	interval := config.Get().MarketRefreshInterval

	go func() {
		log.Info("Market worker started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Price the market immediately so a fresh deployment is tradable
		w.runPass(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Market worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Market worker shutting down (stop requested)")
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

func (w *MarketWorker) runPass(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		metrics.WorkerRunsTotal.WithLabelValues(marketRefreshJob, "error").Inc()
		log.Errorf("Market refresh pass failed: %v", err)
		return
	}
	metrics.WorkerRunsTotal.WithLabelValues(marketRefreshJob, "ok").Inc()
}

// RunOnce executes a single market pass: aggregate keyword signals from the
// configured subreddits, reprice or delist existing stocks, then list new
// ones up to the market ceiling.
func (w *MarketWorker) RunOnce(ctx context.Context) error {
	return w.run(ctx, true)
}

// RefreshOnly reprices and delists existing stocks without listing new ones.
// Backs the admin refresh endpoint.
func (w *MarketWorker) RefreshOnly(ctx context.Context) error {
	return w.run(ctx, false)
}

func (w *MarketWorker) run(ctx context.Context, listNew bool) error {
	posts := w.fetchMemePosts(ctx)
	if len(posts) == 0 {
		return fmt.Errorf("no posts fetched from any meme subreddit")
	}

	signals := services.AggregateKeywords(posts)
	ranked := services.RankSignificant(signals)
	now := time.Now().UTC()

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	acquired, err := uow.JobLockRepository().TryAcquire(ctx, marketRefreshJob)
	if err != nil {
		return err
	}
	if !acquired {
		log.Info("Market refresh job already running elsewhere, skipping")
		return nil
	}

	market := services.NewMarketService(uow.StockRepository(), uow.EventBus())
	refresh, err := market.RefreshValues(ctx, signals, now)
	if err != nil {
		return fmt.Errorf("failed to refresh stock values: %w", err)
	}
	var listed []*entities.MemeStock
	if listNew {
		listed, err = market.CreateStocks(ctx, ranked, now)
		if err != nil {
			return fmt.Errorf("failed to list new stocks: %w", err)
		}
	}

	activeCount, err := uow.StockRepository().CountActive(ctx)
	if err == nil {
		metrics.ActiveStocks.Set(float64(activeCount))
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit market pass: %w", err)
	}

	log.WithFields(log.Fields{
		"posts":    len(posts),
		"keywords": len(signals),
		"repriced": refresh.Repriced,
		"delisted": refresh.Delisted,
		"listed":   len(listed),
	}).Info("Market pass complete")
	return nil
}

func (w *MarketWorker) fetchMemePosts(ctx context.Context) []reddit.Post {
	cfg := config.Get()
	var posts []reddit.Post
	for _, subreddit := range cfg.MemeSubreddits {
		listing, err := w.redditClient.FetchListing(ctx, subreddit, reddit.SortHot, 50)
		if err != nil {
			metrics.RedditRequestsTotal.WithLabelValues("error").Inc()
			log.Errorf("Failed to fetch listing for r/%s: %v", subreddit, err)
			continue
		}
		metrics.RedditRequestsTotal.WithLabelValues("ok").Inc()
		// NSFW, stickied, and removed posts never feed keyword aggregation.
		posts = append(posts, reddit.FilterPosts(listing, reddit.FilterOptions{})...)
	}
	return posts
}
