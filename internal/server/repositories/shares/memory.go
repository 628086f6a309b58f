package shares

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/server/models"
)

// MemoryRepository keeps rows in process memory. It backs local runs
// without Postgres and the service tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]models.Share
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]models.Share), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, share *models.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[share.ID]; ok {
		return common.ErrorInternal
	}
	share.CreatedAt = r.now()
	r.rows[share.ID] = *share
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &row, nil
}

func (r *MemoryRepository) FindActiveByHMAC(_ context.Context, hmac string, now time.Time) (*models.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *models.Share
	for _, row := range r.rows {
		if row.HMAC != hmac || !row.ActiveAt(now) {
			continue
		}
		if best == nil || row.ExpiresAt.After(best.ExpiresAt) {
			row := row
			best = &row
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

func (r *MemoryRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expired := make([]models.Share, 0)
	for _, row := range r.rows {
		if !row.ActiveAt(now) {
			expired = append(expired, row)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ExpiresAt.Before(expired[j].ExpiresAt) })

	ids := make([]string, 0, len(expired))
	for _, row := range expired {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

// Len returns the number of stored rows.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
