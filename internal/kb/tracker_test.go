package kb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/kbscore/internal/relevance"
)

func TestSearchTracker_RecordsInBackground(t *testing.T) {
	store := newTestStore(t)
	tracker := NewSearchTracker(store, nil)
	defer tracker.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.RecordSearch(ctx, SearchRecord{
			TenantID:  "t1",
			QueryHash: HashQuery(fmt.Sprintf("query %d", i)),
			Kind:      SearchKindList,
		}))
	}

	require.Eventually(t, func() bool {
		n, err := store.SearchCount(ctx, "t1")
		return err == nil && n == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSearchTracker_StopFlushes(t *testing.T) {
	recorder := new(MockStore)
	recorder.On("RecordSearch", mock.Anything, mock.Anything).Return(nil)

	tracker := NewSearchTracker(recorder, nil)
	for i := 0; i < 25; i++ {
		tracker.RecordSearch(context.Background(), SearchRecord{TenantID: "t1"})
	}
	tracker.Stop()

	recorder.AssertNumberOfCalls(t, "RecordSearch", 25)
	assert.Zero(t, tracker.Pending())

	// Events after Stop are dropped.
	require.NoError(t, tracker.RecordSearch(context.Background(), SearchRecord{TenantID: "t1"}))
	recorder.AssertNumberOfCalls(t, "RecordSearch", 25)

	// Stop is idempotent.
	tracker.Stop()
}

func TestSearchTracker_SetsTimestamp(t *testing.T) {
	recorder := new(MockStore)
	recorder.On("RecordSearch", mock.Anything, mock.MatchedBy(func(r SearchRecord) bool {
		return !r.Timestamp.IsZero()
	})).Return(nil)

	tracker := NewSearchTracker(recorder, nil)
	tracker.RecordSearch(context.Background(), SearchRecord{TenantID: "t1"})
	tracker.Stop()

	recorder.AssertExpectations(t)
}

func TestSearchTracker_RecorderErrorIsLogged(t *testing.T) {
	recorder := new(MockStore)
	recorder.On("RecordSearch", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	tracker := NewSearchTracker(recorder, nil)
	assert.NoError(t, tracker.RecordSearch(context.Background(), SearchRecord{TenantID: "t1"}))
	tracker.Stop()

	recorder.AssertNumberOfCalls(t, "RecordSearch", 1)
}

func TestService_UsesHistoryRecorder(t *testing.T) {
	store := new(MockStore)
	store.On("FindArticles", mock.Anything, "t1", mock.Anything).Return(sampleArticles(), nil)

	recorder := new(MockStore)
	recorder.On("RecordSearch", mock.Anything, mock.MatchedBy(func(r SearchRecord) bool {
		return r.Kind == SearchKindContext
	})).Return(nil)

	tracker := NewSearchTracker(recorder, nil)
	svc := NewService(store, relevance.New(), DefaultServiceOptions(), nil)
	svc.SetHistoryRecorder(tracker)

	_, err := svc.SearchKnowledgeBase(context.Background(), "t1", "warranty")
	require.NoError(t, err)
	tracker.Stop()

	recorder.AssertNumberOfCalls(t, "RecordSearch", 1)
	store.AssertNotCalled(t, "RecordSearch", mock.Anything, mock.Anything)
}
