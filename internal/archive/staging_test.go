package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stage(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		touch(t, filepath.Join(dir, n))
	}
}

func TestStagingValidator_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images", "current")
	v := NewStagingValidator(dir, zap.NewNop())

	report := v.Validate(context.Background())
	assert.Equal(t, StagingEmpty, report.State)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStagingValidator_Empty(t *testing.T) {
	v := NewStagingValidator(t.TempDir(), zap.NewNop())

	report := v.Validate(context.Background())
	assert.Equal(t, StagingEmpty, report.State)
	assert.Zero(t, report.Found)
}

func TestStagingValidator_PartialSetDiscarded(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, StagedImage, StagedPrompt)

	report := NewStagingValidator(dir, zap.NewNop()).Validate(context.Background())
	assert.Equal(t, StagingDiscarded, report.State)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.Removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStagingValidator_SingleFileDiscarded(t *testing.T) {
	for _, name := range []string{StagedImage, StagedPrompt, StagedStory} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			stage(t, dir, name)

			report := NewStagingValidator(dir, zap.NewNop()).Validate(context.Background())
			assert.Equal(t, StagingDiscarded, report.State)
			assert.Equal(t, 1, report.Found)
			assert.Equal(t, 1, report.Removed)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestStagingValidator_CompleteSetUntouched(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, StagedNames()...)

	report := NewStagingValidator(dir, zap.NewNop()).Validate(context.Background())
	assert.Equal(t, StagingComplete, report.State)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, TripletSize)
}

func TestStagingValidator_OverfullLeftAlone(t *testing.T) {
	dir := t.TempDir()
	stage(t, dir, append(StagedNames(), "extra.txt")...)

	report := NewStagingValidator(dir, zap.NewNop()).Validate(context.Background())
	assert.Equal(t, StagingOverfull, report.State)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
