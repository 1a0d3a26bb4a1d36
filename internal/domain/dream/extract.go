package dream

import "strings"

// Themes in canonical output order.
const (
	ThemeFamily    = "Family & Relationships"
	ThemeCareer    = "Career & Achievement"
	ThemeLove      = "Love & Romance"
	ThemeFear      = "Fear & Anxiety"
	ThemeAdventure = "Adventure & Exploration"
	ThemePast      = "Past & Memory"
	ThemeFuture    = "Future & Aspirations"
)

// Emotions in canonical output order.
const (
	EmotionJoy         = "Joy"
	EmotionSadness     = "Sadness"
	EmotionAnger       = "Anger"
	EmotionFear        = "Fear"
	EmotionPeace       = "Peace"
	EmotionConfusion   = "Confusion"
	EmotionEmpowerment = "Empowerment"
)

type triggerRule struct {
	label    string
	triggers []string
}

var themeRules = [...]triggerRule{
	{ThemeFamily, []string{"family", "parent", "child"}},
	{ThemeCareer, []string{"work", "job", "career"}},
	{ThemeLove, []string{"love", "romantic", "partner"}},
	{ThemeFear, []string{"fear", "scared", "anxiety"}},
	{ThemeAdventure, []string{"travel", "journey", "adventure"}},
	{ThemePast, []string{"past", "memory", "childhood"}},
	{ThemeFuture, []string{"future", "dream", "goal"}},
}

var emotionRules = [...]triggerRule{
	{EmotionJoy, []string{"happy", "joy", "excited"}},
	{EmotionSadness, []string{"sad", "cry", "tears"}},
	{EmotionAnger, []string{"angry", "mad", "rage"}},
	{EmotionFear, []string{"scared", "fear", "terrified"}},
	{EmotionPeace, []string{"peaceful", "calm", "serene"}},
	{EmotionConfusion, []string{"confused", "lost", "uncertain"}},
	{EmotionEmpowerment, []string{"powerful", "strong", "confident"}},
}

// Features are the raw signals found in a dream's text.
type Features struct {
	Symbols  []string
	Themes   []string
	Emotions []string
}

// Extract finds lexicon symbols, themes and emotions in content using
// case-insensitive substring containment. Matches are binary: frequency and
// position do not matter, and every list comes out in its fixed rule order.
func Extract(content string) Features {
	lower := strings.ToLower(content)

	symbols := make([]string, 0, 4)
	for _, entry := range symbolLexicon {
		if strings.Contains(lower, entry.name) {
			symbols = append(symbols, entry.name)
		}
	}

	return Features{
		Symbols:  symbols,
		Themes:   matchRules(lower, themeRules[:]),
		Emotions: matchRules(lower, emotionRules[:]),
	}
}

func matchRules(lower string, rules []triggerRule) []string {
	out := make([]string, 0, 2)
	for _, rule := range rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				out = append(out, rule.label)
				break
			}
		}
	}
	return out
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
