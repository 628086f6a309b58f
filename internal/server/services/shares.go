// Package services contains server-side business logic. ShareService
// implements folder publishing and fetching over the metadata repository and
// the blob store.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/integrity"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/blobstore"
	"github.com/dmitrijs2005/foldershare/internal/server/models"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/foldershare/internal/worlds"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RetentionPeriod is how long an issued share id stays fetchable.
const RetentionPeriod = 30 * 24 * time.Hour

const (
	recentCacheSize = 1024
	recentCacheTTL  = time.Hour
)

var (
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foldershare_publish_total",
		Help: "Publish requests by outcome.",
	}, []string{"outcome"})

	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foldershare_fetch_total",
		Help: "Fetch requests by outcome.",
	}, []string{"outcome"})

	recentCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldershare_recent_cache_hits_total",
		Help: "Publishes answered from the recent-publish cache.",
	})
)

// PublishRequest is the decoded publish body.
type PublishRequest struct {
	Name   string            `json:"name" validate:"required,min=1,max=255,nonul"`
	Worlds []json.RawMessage `json:"worlds" validate:"required,max=1000"`
	HMAC   string            `json:"hmac" validate:"required,len=64"`
}

type recentShare struct {
	id        string
	expiresAt time.Time
}

type ShareService struct {
	repo   shares.Repository
	blobs  blobstore.Store
	signer *integrity.Signer
	recent *expirable.LRU[string, recentShare]
	log    logging.Logger

	now   func() time.Time
	newID func() string
}

func NewShareService(repo shares.Repository, blobs blobstore.Store, signer *integrity.Signer, log logging.Logger) *ShareService {
	return &ShareService{
		repo:   repo,
		blobs:  blobs,
		signer: signer,
		recent: expirable.NewLRU[string, recentShare](recentCacheSize, nil, recentCacheTTL),
		log:    log.With("module", "shares"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Publish validates req, verifies its integrity code and returns the id of
// the active share carrying the same code, creating one when none exists.
func (s *ShareService) Publish(ctx context.Context, req *PublishRequest) (string, error) {
	if err := worlds.Validator().Struct(req); err != nil {
		publishTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}
	if err := worlds.ValidateAll(req.Worlds); err != nil {
		publishTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}

	payload, err := integrity.Canonicalize(req.Name, req.Worlds)
	if err != nil {
		publishTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}
	if !s.signer.Verify(payload, req.HMAC) {
		publishTotal.WithLabelValues("mismatch").Inc()
		return "", common.ErrorIntegrityMismatch
	}

	now := s.now()

	if hit, ok := s.recent.Get(req.HMAC); ok && now.Before(hit.expiresAt) {
		recentCacheHits.Inc()
		publishTotal.WithLabelValues("deduplicated").Inc()
		return hit.id, nil
	}

	existing, err := s.repo.FindActiveByHMAC(ctx, req.HMAC, now)
	switch {
	case err == nil:
		s.remember(req.HMAC, existing.ID, existing.ExpiresAt)
		publishTotal.WithLabelValues("deduplicated").Inc()
		s.log.Debug(ctx, "publish deduplicated", "id", existing.ID)
		return existing.ID, nil
	case !errors.Is(err, common.ErrorNotFound):
		publishTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("dedup lookup: %w", err)
	}

	share := &models.Share{
		ID:        s.newID(),
		HMAC:      req.HMAC,
		Name:      req.Name,
		ExpiresAt: now.Add(RetentionPeriod),
	}

	// The blob goes first so a committed row always has its payload.
	if err := s.blobs.Put(ctx, models.BlobKey(share.ID), payload); err != nil {
		publishTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("store payload: %w", err)
	}
	if err := s.repo.Create(ctx, share); err != nil {
		publishTotal.WithLabelValues("error").Inc()
		s.log.Warn(ctx, "metadata insert failed, payload orphaned", "id", share.ID)
		return "", fmt.Errorf("insert share: %w", err)
	}

	s.remember(req.HMAC, share.ID, share.ExpiresAt)
	publishTotal.WithLabelValues("created").Inc()
	s.log.Info(ctx, "share created", "id", share.ID, "worlds", len(req.Worlds))
	return share.ID, nil
}

// Fetch returns the stored payload bytes for id. Unknown and expired ids
// both yield common.ErrorNotFound; a row without its payload yields
// common.ErrorDataMissing.
func (s *ShareService) Fetch(ctx context.Context, id string) ([]byte, error) {
	share, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fetchTotal.WithLabelValues("not_found").Inc()
			return nil, common.ErrorNotFound
		}
		fetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load share: %w", err)
	}
	if !share.ActiveAt(s.now()) {
		fetchTotal.WithLabelValues("expired").Inc()
		return nil, common.ErrorNotFound
	}

	body, err := s.blobs.Get(ctx, models.BlobKey(share.ID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fetchTotal.WithLabelValues("data_missing").Inc()
			s.log.Error(ctx, "share payload missing", "id", share.ID)
			return nil, common.ErrorDataMissing
		}
		fetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load payload: %w", err)
	}

	fetchTotal.WithLabelValues("ok").Inc()
	return body, nil
}

// Ready reports whether the metadata store is reachable.
func (s *ShareService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ShareService) remember(code, id string, expiresAt time.Time) {
	s.recent.Add(code, recentShare{id: id, expiresAt: expiresAt})
}
