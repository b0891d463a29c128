package generator

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestImagePrompt(t *testing.T) {
	tests := []struct {
		name  string
		terms string
		style string
		want  string
	}{
		{"no style", "a red fox in snow.", "", "a red fox in snow"},
		{"with style", "a red fox in snow.", "Cubist", "a red fox in snow, Cubist style"},
		{"only first period", "Mr. Fox. Snow.", "", "Mr Fox. Snow."},
		{"period inside style", "a fox", "Art Nouveau.", "a fox, Art Nouveau style"},
		{"no period", "a fox", "", "a fox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImagePrompt(tt.terms, tt.style))
		})
	}
}

func TestStoryPrompt(t *testing.T) {
	assert.Equal(t, "Write a story about: a fox said hi\"",
		StoryPrompt("Write a story about: ", `a fox said "hi"`))
	assert.Equal(t, "rules a fox", StoryPrompt("rules ", "a fox"))
}

func TestLoadStyles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.txt")
	require.NoError(t, os.WriteFile(path, []byte("Cubist\n\n  Baroque \nUkiyo-e\n"), 0o644))

	styles, err := LoadStyles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cubist", "Baroque", "Ukiyo-e"}, styles)

	_, err = LoadStyles(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestPickStyle_NoStyles(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	assert.Empty(t, PickStyle(rng, nil))
}

func TestPickStyle_RoughlyHalf(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	styles := []string{"Cubist", "Baroque"}

	picked := 0
	const n = 6000
	for i := 0; i < n; i++ {
		if PickStyle(rng, styles) != "" {
			picked++
		}
	}
	assert.InDelta(t, n/2, picked, n/10)
}

func TestPickStyle_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		styles := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z]{1,12}`), 1, 20).Draw(t, "styles")
		seed := rapid.Uint64().Draw(t, "seed")

		got := PickStyle(rand.New(rand.NewPCG(seed, seed^0x9e3779b9)), styles)
		if got == "" {
			return
		}
		for _, s := range styles {
			if s == got {
				return
			}
		}
		t.Fatalf("picked %q not in %v", got, styles)
	})
}

func TestImagePrompt_RemovesAtMostOnePeriod(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		terms := rapid.StringMatching(`[a-z .]{0,40}`).Draw(t, "terms")
		got := ImagePrompt(terms, "")

		before := strings.Count(terms, ".")
		after := strings.Count(got, ".")
		if before == 0 && after != 0 || before > 0 && after != before-1 {
			t.Fatalf("ImagePrompt(%q) = %q", terms, got)
		}
	})
}
