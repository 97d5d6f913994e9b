// internal/historian/historian.go is an asynchronous historian service that pops
// round records from a Redis queue and persists them to the round archive.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/trix/internal/database"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service drains the round queue into an Archive in batches.
type Service struct {
	Rdb        *redis.Client
	Archive    database.Archive
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration
	Logger     *logrus.Logger

	batchMu sync.Mutex
	batch   []models.RoundRecord
}

// minPopTimeout is the shortest BLPOP wait; Redis takes whole seconds.
const minPopTimeout = time.Second

// NewService constructs a Service. Non-positive sizes fall back to 20 records
// and 500ms. The pop timeout follows the flush delay, never below one second.
func NewService(rdb *redis.Client, archive database.Archive, queue string, batchSize int, flushDelay time.Duration, logger *logrus.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Rdb:        rdb,
		Archive:    archive,
		Queue:      queue,
		BatchSize:  batchSize,
		FlushDelay: flushDelay,
		PopTimeout: max(flushDelay, minPopTimeout),
		Logger:     logger,
		batch:      make([]models.RoundRecord, 0, batchSize),
	}
}

// Run reads from the queue until ctx is cancelled, then flushes what is left.
func (hs *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(hs.FlushDelay)
	defer ticker.Stop()

	hs.Logger.Infof("trix-historian reading queue %q", hs.Queue)
	for {
		select {
		case <-ctx.Done():
			hs.Flush(context.Background())
			hs.Logger.Info("trix-historian shutting down")
			return

		case <-ticker.C:
			hs.Flush(ctx)

		default:
			// BLPop with a timeout so that context cancellation is noticed.
			res, err := hs.Rdb.BLPop(ctx, hs.PopTimeout, hs.Queue).Result()
			if errors.Is(err, redis.Nil) {
				// queue idle: do not hold a partial batch until the next tick
				hs.Flush(ctx)
				continue
			}
			if err != nil {
				if ctx.Err() == nil {
					hs.Logger.Errorf("BLPop: %v", err)
					select {
					case <-ctx.Done():
					case <-time.After(hs.PopTimeout):
					}
				}
				continue
			}
			if len(res) < 2 {
				continue
			}
			// res[0] is the queue name and res[1] the payload.
			hs.handlePayload(ctx, res[1])
		}
	}
}

func (hs *Service) handlePayload(ctx context.Context, payload string) {
	var rec models.RoundRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		hs.Logger.Warnf("invalid round record: %v", err)
		return
	}

	hs.batchMu.Lock()
	hs.batch = append(hs.batch, rec)
	full := len(hs.batch) >= hs.BatchSize
	hs.batchMu.Unlock()

	if full {
		hs.Flush(ctx)
	}
}

// Flush writes the pending batch in a single archive call. On failure the
// records stay pending and are retried on the next flush.
func (hs *Service) Flush(ctx context.Context) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]models.RoundRecord, len(hs.batch))
	copy(batchCopy, hs.batch)

	if err := hs.Archive.SaveRounds(ctx, batchCopy); err != nil {
		hs.Logger.Errorf("flush %d round records: %v", len(batchCopy), err)
		return
	}
	hs.batch = hs.batch[:0]
	hs.Logger.Debugf("flushed %d round records to archive", len(batchCopy))
}

// Pending reports how many records are waiting to be flushed.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}
