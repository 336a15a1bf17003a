package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/cache"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

func newTestStore() *Store {
	log := logger.NewMockLogger(&strings.Builder{})
	return New(cache.NewMemoryCache(nil), log, 0)
}

func TestCreateAndGetEvent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	ev := &models.AnomalyEvent{
		LogID:     "log_1",
		Timestamp: time.Now().UTC(),
		SrcIP:     "192.168.10.1",
		DstIP:     "192.168.20.2",
	}
	require.NoError(t, s.CreateEvent(ctx, ev))

	got, err := s.GetEvent(ctx, "log_1")
	require.NoError(t, err)
	assert.Equal(t, "192.168.10.1", got.SrcIP)
	assert.False(t, got.IsAnomalous)
}

func TestCreateEvent_RejectsDuplicateLogID(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	ev := &models.AnomalyEvent{LogID: "log_dup", Timestamp: time.Now()}
	require.NoError(t, s.CreateEvent(ctx, ev))
	assert.Error(t, s.CreateEvent(ctx, ev))
}

func TestGetEvent_NotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.GetEvent(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestSaveEvent_AttachesRCAResults(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	ev := &models.AnomalyEvent{LogID: "log_2", Timestamp: time.Now()}
	require.NoError(t, s.CreateEvent(ctx, ev))

	ev.IsAnomalous = true
	ev.RCAResults = map[string]models.PathResult{
		"rca_type1": {Classification: &models.RCAClassification{Category: "bandwidth_saturation"}},
	}
	require.NoError(t, s.SaveEvent(ctx, ev))

	got, err := s.GetEvent(ctx, "log_2")
	require.NoError(t, err)
	require.Contains(t, got.RCAResults, "rca_type1")
	assert.Equal(t, "bandwidth_saturation", got.RCAResults["rca_type1"].Classification.Category)
}

func TestListEvents_RecencyOrderAndPagination(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, id := range []string{"log_a", "log_b", "log_c"} {
		require.NoError(t, s.CreateEvent(ctx, &models.AnomalyEvent{LogID: id, Timestamp: time.Now()}))
	}

	events, total, err := s.ListEvents(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, "log_c", events[0].LogID) // most recent first

	events, _, err = s.ListEvents(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "log_a", events[0].LogID)
}

func TestSaveResponse_UpdateDoesNotDoubleIndex(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	rec := &models.ResponseRecord{LogID: "log_r", AnomalyID: "anomaly_1", AnomalyType1: "packet_size"}
	require.NoError(t, s.SaveResponse(ctx, rec))

	// Type 2 path updates the same record.
	rec.AnomalyType2 = "high_latency"
	require.NoError(t, s.SaveResponse(ctx, rec))

	recs, total, err := s.ListResponses(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, recs, 1)
	assert.Equal(t, "high_latency", recs[0].AnomalyType2)
}

func TestGetResponse_NotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.GetResponse(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrResponseNotFound))
}
