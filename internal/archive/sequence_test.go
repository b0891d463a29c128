package archive

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fileT 同时满足 *testing.T 与 *rapid.T
type fileT interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

func touch(t fileT, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"1_.jpg", 1, false},
		{"12_prompt.txt", 12, false},
		{"007_story.txt", 7, false},
		{"current.jpg", 0, true},
		{"_prompt.txt", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSequence(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSequence_MissingDirectory(t *testing.T) {
	n, err := NextSequence(filepath.Join(t.TempDir(), "2024", "03", "05"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextSequence_EmptyDirectory(t *testing.T) {
	n, err := NextSequence(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextSequence_NumericNotLexicographic(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 9; i++ {
		touch(t, filepath.Join(dir, strconv.Itoa(i)+ImageSuffix))
		touch(t, filepath.Join(dir, strconv.Itoa(i)+PromptSuffix))
		touch(t, filepath.Join(dir, strconv.Itoa(i)+StorySuffix))
	}

	n, err := NextSequence(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	touch(t, filepath.Join(dir, "10"+ImageSuffix))
	n, err = NextSequence(dir)
	require.NoError(t, err)
	assert.Equal(t, 11, n, "10 排在 9 之后")
}

func TestNextSequence_MalformedName(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1"+ImageSuffix))
	touch(t, filepath.Join(dir, "notes.txt"))

	_, err := NextSequence(dir)
	assert.ErrorIs(t, err, ErrMalformedName)
}

// 任意已占用序号集合下，分配结果为最大值加一
func TestNextSequence_Property_MaxPlusOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seqs := rapid.SliceOfNDistinct(rapid.IntRange(1, 500), 0, 30, rapid.ID[int]).Draw(rt, "seqs")

		dir, err := os.MkdirTemp("", "seq")
		if err != nil {
			rt.Fatalf("mkdir temp: %v", err)
		}
		defer os.RemoveAll(dir)

		highest := 0
		for _, s := range seqs {
			touch(rt, filepath.Join(dir, strconv.Itoa(s)+ImageSuffix))
			if s > highest {
				highest = s
			}
		}

		n, err := NextSequence(dir)
		if err != nil {
			rt.Fatalf("next sequence: %v", err)
		}
		if n != highest+1 {
			rt.Fatalf("expected %d, got %d", highest+1, n)
		}
	})
}
