package dream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMatchesSubstringsCaseInsensitively(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		symbols  []string
		themes   []string
		emotions []string
	}{
		{
			name:     "water anywhere",
			content:  "The WATERfall roared",
			symbols:  []string{SymbolWater},
			themes:   []string{},
			emotions: []string{},
		},
		{
			name:     "schoolyard matches school",
			content:  "I ran across the schoolyard",
			symbols:  []string{SymbolSchool},
			themes:   []string{},
			emotions: []string{},
		},
		{
			name:     "nothing found",
			content:  "A grey afternoon.",
			symbols:  []string{},
			themes:   []string{},
			emotions: []string{},
		},
		{
			name:     "flying over the ocean",
			content:  "I was flying over a vast ocean, feeling calm and peaceful.",
			symbols:  []string{SymbolFlying},
			themes:   []string{},
			emotions: []string{EmotionPeace},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.content)
			require.Equal(t, tt.symbols, got.Symbols)
			require.Equal(t, tt.themes, got.Themes)
			require.Equal(t, tt.emotions, got.Emotions)
		})
	}
}

func TestExtractUsesCanonicalOrderAndDeduplicates(t *testing.T) {
	content := "A goal for the future, a journey back to my childhood memory, my parent and child, work at my job."
	got := Extract(content)
	require.Equal(t, []string{ThemeFamily, ThemeCareer, ThemeAdventure, ThemePast, ThemeFuture}, got.Themes)

	emotional := "Confident and strong, then lost and confused, then calm, then happy and excited."
	require.Equal(t, []string{EmotionJoy, EmotionPeace, EmotionConfusion, EmotionEmpowerment}, Extract(emotional).Emotions)
}

func TestExtractSymbolsFollowLexiconOrder(t *testing.T) {
	got := Extract("A wedding at the house, a car near the water")
	require.Equal(t, []string{SymbolWater, SymbolHouse, SymbolCar, SymbolWedding}, got.Symbols)
}

func TestExtractSharedTriggersFireBothRules(t *testing.T) {
	got := Extract("I was scared")
	require.Equal(t, []string{ThemeFear}, got.Themes)
	require.Equal(t, []string{EmotionFear}, got.Emotions)
}

func TestExtractIsIdempotent(t *testing.T) {
	content := "Fire and money in a mirror, I felt angry and sad."
	require.Equal(t, Extract(content), Extract(content))
}
