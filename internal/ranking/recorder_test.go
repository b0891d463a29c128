package ranking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/retry"
)

// fakeStore 可编排失败次数的 Store
type fakeStore struct {
	mu           sync.Mutex
	insertFails  int
	upvoteFails  int
	inserts      []Ranking
	insertCalls  int
	upvoteCalls  int
	upvoteResult int64
}

func (f *fakeStore) InsertRecord(_ context.Context, r *Ranking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertCalls <= f.insertFails {
		return errors.New("connection reset")
	}
	f.inserts = append(f.inserts, *r)
	return nil
}

func (f *fakeStore) IncrementUpvote(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upvoteCalls++
	if f.upvoteCalls <= f.upvoteFails {
		return 0, errors.New("connection reset")
	}
	return f.upvoteResult, nil
}

var foxEntry = archive.Entry{Day: archive.Day{Year: 2024, Month: 3, Day: 5}, Sequence: 1}

func newTestRecorder(store Store, attempts int) *Recorder {
	return NewRecorder(store, retry.NewExecutor(zap.NewNop()),
		retry.Policy{MaxAttempts: attempts, Delay: time.Millisecond}, zap.NewNop())
}

func TestRecorder_CommitSeedsOneUpvote(t *testing.T) {
	store := &fakeStore{}
	rec := newTestRecorder(store, 3)

	require.NoError(t, rec.Commit(context.Background(), foxEntry, "a red fox", "Once upon a time..."))
	require.Len(t, store.inserts, 1)
	assert.Equal(t, Ranking{
		PictureID: "20240305_1",
		Prompt:    "a red fox",
		Story:     "Once upon a time...",
		Upvotes:   1,
	}, store.inserts[0])
}

func TestRecorder_CommitRetriesTransientFailures(t *testing.T) {
	store := &fakeStore{insertFails: 2}
	rec := newTestRecorder(store, 3)

	require.NoError(t, rec.Commit(context.Background(), foxEntry, "p", "s"))
	assert.Equal(t, 3, store.insertCalls)
	assert.Len(t, store.inserts, 1)
}

func TestRecorder_CommitExhausted(t *testing.T) {
	store := &fakeStore{insertFails: 10}
	rec := newTestRecorder(store, 2)

	err := rec.Commit(context.Background(), foxEntry, "p", "s")
	assert.ErrorIs(t, err, ErrCommitFailed)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 2, store.insertCalls)
}

func TestRecorder_UpvoteUnknownIDIsNotAnError(t *testing.T) {
	store := &fakeStore{upvoteResult: 0}
	rec := newTestRecorder(store, 3)

	n, err := rec.Upvote(context.Background(), "19990101_1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, store.upvoteCalls, "0 行不触发重试")
}

func TestRecorder_UpvoteUnknownIDLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := NewRecorder(&fakeStore{}, retry.NewExecutor(zap.NewNop()),
		retry.Policy{MaxAttempts: 1, Delay: time.Millisecond}, zap.New(core))

	_, err := rec.Upvote(context.Background(), "19990101_1")
	require.NoError(t, err)

	warned := logs.FilterMessage("upvote matched no record").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Equal(t, "19990101_1", warned[0].ContextMap()["id"])
}

func TestRecorder_UpvoteRetries(t *testing.T) {
	store := &fakeStore{upvoteFails: 1, upvoteResult: 1}
	rec := newTestRecorder(store, 3)

	n, err := rec.Upvote(context.Background(), "20240305_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, store.upvoteCalls)
}

func TestRecorder_UpvoteExhausted(t *testing.T) {
	store := &fakeStore{upvoteFails: 5}
	rec := newTestRecorder(store, 2)

	_, err := rec.Upvote(context.Background(), "20240305_1")
	assert.ErrorIs(t, err, ErrUpvoteFailed)
}

func TestRecorder_EndToEndWithSQLite(t *testing.T) {
	store := setupSQLiteStore(t)
	rec := newTestRecorder(store, 3)
	ctx := context.Background()

	require.NoError(t, rec.Commit(ctx, foxEntry, "a red fox", "Once upon a time..."))
	_, err := rec.Upvote(ctx, "20240305_1")
	require.NoError(t, err)

	got, err := store.Get(ctx, "20240305_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Upvotes)
}
