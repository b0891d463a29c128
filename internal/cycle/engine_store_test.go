package cycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/ranking"
	"github.com/BaSui01/dallevision/internal/retry"
	"github.com/BaSui01/dallevision/testutil"
)

// newStoreFixture 以真实的 Recorder 和内存 SQLite 替换提交替身
func newStoreFixture(t *testing.T) (*fixture, *ranking.GormStore, *ranking.Recorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&ranking.Ranking{}))

	store := ranking.NewGormStore(db)
	recorder := ranking.NewRecorder(store, retry.NewExecutor(zap.NewNop()),
		retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}, zap.NewNop())

	f := newFixture(t)
	f.deps.Committer = recorder
	return f, store, recorder
}

func TestEngine_PersistsRecordForArchivedTriplet(t *testing.T) {
	f, store, recorder := newStoreFixture(t)
	ctx := context.Background()
	testutil.StageTriplet(t, f.staging, "a red fox", "Once upon a time...")

	report, err := NewEngine(f.deps).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240305_1"}, report.Committed)

	dayDir := filepath.Join(f.root, "2024", "03", "05")
	for _, name := range []string{"1_.jpg", "1_prompt.txt", "1_story.txt"} {
		assert.FileExists(t, filepath.Join(dayDir, name))
	}

	got, err := store.Get(ctx, "20240305_1")
	require.NoError(t, err)
	assert.Equal(t, ranking.Ranking{
		PictureID: "20240305_1",
		Prompt:    "a red fox",
		Story:     "Once upon a time...",
		Upvotes:   1,
	}, *got)

	n, err := recorder.Upvote(ctx, "19990101_1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngine_RecordsStayContiguousAcrossCycles(t *testing.T) {
	f, store, _ := newStoreFixture(t)
	ctx := context.Background()
	engine := NewEngine(f.deps)

	testutil.StageTriplet(t, f.staging, "a red fox", "Once upon a time...")
	_, err := engine.RunOnce(ctx)
	require.NoError(t, err)

	// 单个残留文件被丢弃，不占用序号
	require.NoError(t, os.WriteFile(filepath.Join(f.staging, archive.StagedImage), []byte("half"), 0o644))
	f.deps.Generator = &stagingWriter{t: t, dir: f.staging}
	engine = NewEngine(f.deps)
	for i := 0; i < 11; i++ {
		report, err := engine.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSuccess, report.Outcome)
	}

	entries, err := archive.ListDay(f.root, archive.Day{Year: 2024, Month: time.March, Day: 5})
	require.NoError(t, err)
	require.Len(t, entries, 12)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Sequence)

		rec, err := store.Get(ctx, e.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Upvotes)
	}

	top, err := store.Top(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, top, 12)
}
