package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/testutil"
)

func TestLatest(t *testing.T) {
	root := t.TempDir()
	day := archive.Day{Year: 2024, Month: time.March, Day: 5}
	testutil.WriteArchivedEntry(t, root, day, 1, "first prompt", "first story")
	testutil.WriteArchivedEntry(t, root, day, 2, "second prompt", "second story")

	view, err := latest(root, "2024-03-05", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "20240305_2", view.ID)
	assert.Equal(t, "second prompt", view.Prompt)
	assert.Equal(t, "second story", view.Story)
}

func TestLatest_DefaultsToToday(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, time.March, 6, 23, 30, 0, 0, time.UTC)
	testutil.WriteArchivedEntry(t, root, archive.DayOf(now), 1, "p", "s")

	view, err := latest(root, "", now)
	require.NoError(t, err)
	assert.Equal(t, "20240306_1", view.ID)
}

func TestLatest_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := latest(root, "2024-03-05", time.Now())
	assert.ErrorIs(t, err, archive.ErrNoEntries)

	_, err = latest(root, "05/03/2024", time.Now())
	assert.Error(t, err)
}

func TestCycleSummary(t *testing.T) {
	out := cycleSummary("c1", "skipped", "lease_held", nil)
	assert.Equal(t, "lease_held", out["skip_reason"])

	out = cycleSummary("c2", "success", "", []string{"20240305_1"})
	_, hasReason := out["skip_reason"]
	assert.False(t, hasReason)
	assert.Equal(t, []string{"20240305_1"}, out["committed"])
}
