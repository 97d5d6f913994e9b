// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/cache"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	mu      sync.Mutex
	saved   []models.RoundRecord
	batches int
	fail    error
}

func (f *fakeArchive) SaveRounds(_ context.Context, recs []models.RoundRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.saved = append(f.saved, recs...)
	f.batches++
	return nil
}

func (f *fakeArchive) ListRounds(_ context.Context, sessionID uuid.UUID) ([]models.RoundRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RoundRecord
	for _, r := range f.saved {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeArchive) Close() {}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func setup(t *testing.T, batchSize int) (*Service, *fakeArchive, *cache.Publisher, *test.Hook) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	archive := &fakeArchive{}
	svc := NewService(rdb, archive, "trix_rounds_test", batchSize, 20*time.Millisecond, logger)
	svc.PopTimeout = time.Second
	return svc, archive, cache.NewPublisher(rdb, "trix_rounds_test"), hook
}

func TestRunArchivesPublishedRounds(t *testing.T) {
	svc, archive, pub, _ := setup(t, 2)
	ctx, cancel := context.WithCancel(context.Background())

	sid := uuid.New()
	for i := 1; i <= 3; i++ {
		require.NoError(t, pub.PublishRound(ctx, models.RoundRecord{
			SessionID:   sid,
			ActionIndex: i,
			Kind:        models.RecordRoundAdded,
			Transaction: models.Transaction{ID: uuid.NewString(), ContractType: "KING", Scores: map[models.PlayerID]int{0: -75, 1: 0, 2: 0, 3: 0}},
		}))
	}

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return archive.count() == 3 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("historian did not stop after cancel")
	}

	recs, err := archive.ListRounds(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 1, recs[0].ActionIndex)
	assert.Equal(t, -75, recs[2].Transaction.Scores[0])
	assert.Equal(t, 0, svc.Pending())
}

func TestInvalidPayloadIsSkipped(t *testing.T) {
	svc, archive, _, hook := setup(t, 10)

	svc.handlePayload(context.Background(), "{not json")
	assert.Equal(t, 0, svc.Pending())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	svc.handlePayload(context.Background(), `{"session_id":"`+uuid.NewString()+`","action_index":1,"kind":"round_added"}`)
	assert.Equal(t, 1, svc.Pending())
	assert.Equal(t, 0, archive.count())
}

func TestBatchSizeTriggersFlush(t *testing.T) {
	svc, archive, _, _ := setup(t, 2)
	payload := `{"session_id":"` + uuid.NewString() + `","action_index":1,"kind":"round_added"}`

	svc.handlePayload(context.Background(), payload)
	assert.Equal(t, 0, archive.count())
	svc.handlePayload(context.Background(), payload)
	assert.Equal(t, 2, archive.count())
	assert.Equal(t, 0, svc.Pending())
}

func TestFailedFlushKeepsRecords(t *testing.T) {
	svc, archive, _, hook := setup(t, 10)
	archive.fail = errors.New("disk full")

	svc.handlePayload(context.Background(), `{"session_id":"`+uuid.NewString()+`","action_index":1,"kind":"round_undone"}`)
	svc.Flush(context.Background())
	assert.Equal(t, 1, svc.Pending())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	archive.fail = nil
	svc.Flush(context.Background())
	assert.Equal(t, 0, svc.Pending())
	assert.Equal(t, 1, archive.count())
}

func TestPopTimeoutFollowsFlushDelay(t *testing.T) {
	logger, _ := test.NewNullLogger()

	short := NewService(nil, &fakeArchive{}, "q", 5, 200*time.Millisecond, logger)
	assert.Equal(t, time.Second, short.PopTimeout)

	long := NewService(nil, &fakeArchive{}, "q", 5, 2*time.Second, logger)
	assert.Equal(t, 2*time.Second, long.PopTimeout)
}

func TestIdleQueueFlushesPartialBatch(t *testing.T) {
	svc, archive, pub, _ := setup(t, 10)
	svc.FlushDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pub.PublishRound(ctx, models.RoundRecord{SessionID: uuid.New(), ActionIndex: 1, Kind: models.RecordRoundAdded}))

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return archive.count() == 1 }, 4*time.Second, 20*time.Millisecond)
	cancel()
	<-done
}
