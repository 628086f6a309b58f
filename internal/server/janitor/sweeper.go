// Package janitor removes shares whose retention period has ended.
package janitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/blobstore"
	"github.com/dmitrijs2005/foldershare/internal/server/models"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultBatchSize = 100

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldershare_sweep_runs_total",
		Help: "Completed sweeper passes.",
	})
	sweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldershare_sweep_deleted_total",
		Help: "Expired shares removed by the sweeper.",
	})
	sweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldershare_sweep_errors_total",
		Help: "Sweeper failures.",
	})
)

// Result summarises one pass.
type Result struct {
	Deleted int
	Errors  int
}

type Sweeper struct {
	repo     shares.Repository
	blobs    blobstore.Store
	interval time.Duration
	batch    int
	log      logging.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewSweeper(repo shares.Repository, blobs blobstore.Store, interval time.Duration, log logging.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		blobs:    blobs,
		interval: interval,
		batch:    DefaultBatchSize,
		log:      log.With("module", "janitor"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
// A non-positive interval disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info(ctx, "sweeper disabled")
		return
	}
	s.log.Info(ctx, "sweeper started", "interval", s.interval.String())

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce deletes expired shares in batches until none remain or a listing
// fails. Per-share failures are counted and skipped.
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result
	now := s.now()
	failed := make(map[string]struct{})

	for ctx.Err() == nil {
		ids, err := s.repo.ListExpired(ctx, now, s.batch+len(failed))
		if err != nil {
			res.Errors++
			sweepErrorsTotal.Inc()
			s.log.Error(ctx, "list expired shares", "error", err)
			break
		}

		progressed := false
		for _, id := range ids {
			if _, skip := failed[id]; skip {
				continue
			}
			progressed = true
			if err := s.remove(ctx, id); err != nil {
				failed[id] = struct{}{}
				res.Errors++
				sweepErrorsTotal.Inc()
				s.log.Error(ctx, "remove expired share", "id", id, "error", err)
				continue
			}
			res.Deleted++
			sweepDeletedTotal.Inc()
			s.log.Debug(ctx, "expired share removed", "id", id)
		}
		if !progressed {
			break
		}
	}

	sweepRunsTotal.Inc()
	if res.Deleted > 0 || res.Errors > 0 {
		s.log.Info(ctx, "sweep finished", "deleted", res.Deleted, "errors", res.Errors)
	}
	return res
}

// remove drops the payload before the row so a surviving row can be retried
// on the next pass.
func (s *Sweeper) remove(ctx context.Context, id string) error {
	if err := s.blobs.Delete(ctx, models.BlobKey(id)); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return s.repo.Delete(ctx, id)
}
