// Package store persists anomaly events and remediation responses in the
// Valkey/Redis cache, keeping a recency-ordered index per record type for
// paginated listings.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/cache"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// ErrEventNotFound is returned when no event exists for a log id.
var ErrEventNotFound = errors.New("event not found")

// ErrResponseNotFound is returned when no response record exists for a log id.
var ErrResponseNotFound = errors.New("response record not found")

type EventStore interface {
	CreateEvent(ctx context.Context, ev *models.AnomalyEvent) error
	GetEvent(ctx context.Context, logID string) (*models.AnomalyEvent, error)
	SaveEvent(ctx context.Context, ev *models.AnomalyEvent) error
	ListEvents(ctx context.Context, offset, limit int) ([]*models.AnomalyEvent, int64, error)
}

type ResponseStore interface {
	SaveResponse(ctx context.Context, rec *models.ResponseRecord) error
	GetResponse(ctx context.Context, logID string) (*models.ResponseRecord, error)
	ListResponses(ctx context.Context, offset, limit int) ([]*models.ResponseRecord, int64, error)
}

const (
	eventKeyPrefix    = "anbd:event:"
	responseKeyPrefix = "anbd:response:"
	eventIndexKey     = "anbd:events:index"
	responseIndexKey  = "anbd:responses:index"
	maxIndexed        = 10_000
)

// Store implements EventStore and ResponseStore over a Cache.
type Store struct {
	cache  cache.Cache
	logger logger.Logger
	ttl    time.Duration
}

func New(c cache.Cache, log logger.Logger, ttl time.Duration) *Store {
	return &Store{cache: c, logger: log, ttl: ttl}
}

// CreateEvent persists a new event and indexes it. At most one event exists
// per log id; creating over an existing id is rejected.
func (s *Store) CreateEvent(ctx context.Context, ev *models.AnomalyEvent) error {
	if ev.LogID == "" {
		return fmt.Errorf("event missing log_id")
	}
	if _, err := s.cache.Get(ctx, eventKeyPrefix+ev.LogID); err == nil {
		return fmt.Errorf("event already exists: %s", ev.LogID)
	}
	if err := s.cache.Set(ctx, eventKeyPrefix+ev.LogID, ev, s.ttl); err != nil {
		metrics.StoreOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("create event %s: %w", ev.LogID, err)
	}
	metrics.StoreOperations.WithLabelValues("set", "success").Inc()
	if err := s.cache.LPush(ctx, eventIndexKey, ev.LogID); err != nil {
		return fmt.Errorf("index event %s: %w", ev.LogID, err)
	}
	return s.cache.LTrim(ctx, eventIndexKey, 0, maxIndexed-1)
}

func (s *Store) GetEvent(ctx context.Context, logID string) (*models.AnomalyEvent, error) {
	b, err := s.cache.Get(ctx, eventKeyPrefix+logID)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			metrics.StoreOperations.WithLabelValues("get", "miss").Inc()
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, logID)
		}
		metrics.StoreOperations.WithLabelValues("get", "error").Inc()
		return nil, err
	}
	metrics.StoreOperations.WithLabelValues("get", "hit").Inc()
	var ev models.AnomalyEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", logID, err)
	}
	return &ev, nil
}

// SaveEvent overwrites an existing event, e.g. to attach RCA results.
func (s *Store) SaveEvent(ctx context.Context, ev *models.AnomalyEvent) error {
	if ev.LogID == "" {
		return fmt.Errorf("event missing log_id")
	}
	if err := s.cache.Set(ctx, eventKeyPrefix+ev.LogID, ev, s.ttl); err != nil {
		metrics.StoreOperations.WithLabelValues("set", "error").Inc()
		return err
	}
	metrics.StoreOperations.WithLabelValues("set", "success").Inc()
	return nil
}

func (s *Store) ListEvents(ctx context.Context, offset, limit int) ([]*models.AnomalyEvent, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	total, err := s.cache.LLen(ctx, eventIndexKey)
	if err != nil {
		return nil, 0, err
	}
	ids, err := s.cache.LRange(ctx, eventIndexKey, int64(offset), int64(offset+limit-1))
	if err != nil {
		return nil, 0, err
	}
	events := make([]*models.AnomalyEvent, 0, len(ids))
	for _, id := range ids {
		ev, err := s.GetEvent(ctx, id)
		if err != nil {
			// Index can outlive an expired record; skip rather than fail the page.
			s.logger.Debug("indexed event missing", "log_id", id)
			continue
		}
		events = append(events, ev)
	}
	return events, total, nil
}

func (s *Store) SaveResponse(ctx context.Context, rec *models.ResponseRecord) error {
	if rec.LogID == "" {
		return fmt.Errorf("response missing log_id")
	}
	isNew := true
	if _, err := s.cache.Get(ctx, responseKeyPrefix+rec.LogID); err == nil {
		isNew = false
	}
	if err := s.cache.Set(ctx, responseKeyPrefix+rec.LogID, rec, s.ttl); err != nil {
		metrics.StoreOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("save response %s: %w", rec.LogID, err)
	}
	metrics.StoreOperations.WithLabelValues("set", "success").Inc()
	if isNew {
		if err := s.cache.LPush(ctx, responseIndexKey, rec.LogID); err != nil {
			return fmt.Errorf("index response %s: %w", rec.LogID, err)
		}
		return s.cache.LTrim(ctx, responseIndexKey, 0, maxIndexed-1)
	}
	return nil
}

func (s *Store) GetResponse(ctx context.Context, logID string) (*models.ResponseRecord, error) {
	b, err := s.cache.Get(ctx, responseKeyPrefix+logID)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			metrics.StoreOperations.WithLabelValues("get", "miss").Inc()
			return nil, fmt.Errorf("%w: %s", ErrResponseNotFound, logID)
		}
		metrics.StoreOperations.WithLabelValues("get", "error").Inc()
		return nil, err
	}
	metrics.StoreOperations.WithLabelValues("get", "hit").Inc()
	var rec models.ResponseRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode response %s: %w", logID, err)
	}
	return &rec, nil
}

func (s *Store) ListResponses(ctx context.Context, offset, limit int) ([]*models.ResponseRecord, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	total, err := s.cache.LLen(ctx, responseIndexKey)
	if err != nil {
		return nil, 0, err
	}
	ids, err := s.cache.LRange(ctx, responseIndexKey, int64(offset), int64(offset+limit-1))
	if err != nil {
		return nil, 0, err
	}
	out := make([]*models.ResponseRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetResponse(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, total, nil
}
