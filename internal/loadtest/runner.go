package loadtest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/staffwise/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Run probes every project concurrently and verifies each response.
// It returns ErrViolations when any response breaks a rule.
func Run(ctx context.Context, cfg Config, v *Verifier) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	projects := cfg.Projects
	if len(projects) == 0 {
		projects = v.ProjectIDs()
	}

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("projects", len(projects)),
		logger.Int("workers", workers),
		logger.String("timeout", timeout.String()),
	)

	c := newClient(cfg.BaseURL, timeout)
	if err := c.health(ctx); err != nil {
		return stats, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range projects {
		g.Go(func() error {
			resp, err := c.recommend(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			stats.Requests++
			if err != nil {
				stats.Failed++
				log.Warn(gctx, "request failed", logger.Int64("project_id", id), logger.Error(err))
				return nil
			}
			stats.Recommendations += len(resp.Recommendations)
			for _, rec := range resp.Recommendations {
				stats.Assigned += len(rec.RecommendedEmployees)
			}
			if err := v.Verify(id, resp); err != nil {
				stats.Violations++
				log.Error(gctx, "response violates rules", logger.Int64("project_id", id), logger.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Duration = time.Since(stats.StartTime)

	log.Info(ctx, "load test finished",
		logger.Int("requests", stats.Requests),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("assigned", stats.Assigned),
		logger.String("duration", stats.Duration.String()),
	)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("load test interrupted: %w", err)
	}
	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d of %d projects", ErrViolations, stats.Violations, stats.Requests)
	}
	return stats, nil
}
