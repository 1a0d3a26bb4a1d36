package dream

import (
	"fmt"
	"strings"
)

const (
	defaultThemeLabel   = "Personal Growth"
	defaultEmotionLabel = "Curiosity"
)

// Compose builds the deterministic interpretation for entry from its
// extracted features and the owner's profile.
func Compose(features Features, profile Profile, entry Entry) Interpretation {
	symbols := make([]SymbolInterpretation, 0, len(features.Symbols))
	for _, symbol := range features.Symbols {
		meaning, _ := SymbolMeaning(symbol)
		symbols = append(symbols, SymbolInterpretation{
			Symbol:            symbol,
			Meaning:           meaning,
			PersonalRelevance: personalRelevance(symbol, profile),
		})
	}

	return Interpretation{
		Overview:             overview(features, profile),
		Symbols:              symbols,
		Themes:               cloneStrings(features.Themes),
		Emotions:             cloneStrings(features.Emotions),
		PersonalizedInsights: personalizedInsights(features, profile, entry),
		HoroscopeConnection:  horoscopeConnection(profile.Sign, features.Themes),
		RecurringPatterns:    []string{},
		PsychologicalMeaning: psychologicalMeaning(features),
		Source:               SourceLocal,
	}
}

func personalRelevance(symbol string, profile Profile) string {
	switch {
	case symbol == SymbolWater && profile.Sign == "Pisces":
		return "As a Pisces, water in your dreams represents your deep emotional nature and intuitive abilities."
	case symbol == SymbolFlying && profile.Age < 30:
		return "Flying dreams often represent your desire for freedom and independence as you navigate life's challenges."
	case symbol == SymbolHouse && profile.Age > 40:
		return "Houses in dreams often reflect your sense of self and security, particularly relevant during midlife transitions."
	}
	return fmt.Sprintf("This symbol resonates with your %s nature and current life stage.", profile.Sign)
}

func personalizedInsights(features Features, profile Profile, entry Entry) []string {
	insights := make([]string, 0, 5)
	if containsLabel(features.Themes, ThemeFamily) && profile.Sign == "Cancer" {
		insights = append(insights, "Your Cancer sign's deep connection to family is reflected in this dream, suggesting important familial bonds or concerns.")
	}
	if containsLabel(features.Emotions, EmotionFear) && profile.Age < 25 {
		insights = append(insights, "Fear-based dreams are common during periods of transition and growth, which align with your current life stage.")
	}
	if entry.Lucidity > 3 && profile.Sign == "Scorpio" {
		insights = append(insights, "Your Scorpio intensity may be contributing to increased dream lucidity and deeper psychological awareness.")
	}
	if containsLabel(features.Themes, ThemeCareer) && profile.Age > 30 {
		insights = append(insights, "Career themes in dreams often reflect professional ambitions and concerns about success and recognition.")
	}
	insights = append(insights, fmt.Sprintf("Your %s perspective brings unique insights to the interpretation of these dream symbols.", sexDescriptor(profile.Sex)))
	return insights
}

func horoscopeConnection(sign string, themes []string) string {
	traits := SignTraits(sign)
	return fmt.Sprintf(
		"As a %s, your dreams reflect your natural %s and %s. The themes of %s align with your zodiac sign's focus on %s and %s.",
		sign, traits[0], traits[1], themeList(themes), traits[2], traits[3],
	)
}

func overview(features Features, profile Profile) string {
	return fmt.Sprintf(
		"This dream reveals important insights about your subconscious mind. The primary themes of %s suggest you're processing %s in your waking life. Your %s nature influences how you interpret these experiences, bringing a unique perspective to your dream world.",
		themeList(features.Themes), emotionList(features.Emotions), profile.Sign,
	)
}

func psychologicalMeaning(features Features) string {
	theme := defaultThemeLabel
	if len(features.Themes) > 0 {
		theme = features.Themes[0]
	}
	emotion := defaultEmotionLabel
	if len(features.Emotions) > 0 {
		emotion = features.Emotions[0]
	}
	return fmt.Sprintf(
		"From a psychological perspective, this dream represents your mind's way of processing %s while experiencing %s. The dream serves as a safe space to explore these feelings and work through subconscious concerns.",
		strings.ToLower(theme), strings.ToLower(emotion),
	)
}

// themeList joins themes for interpolation, falling back to the default
// theme so the sentence never has a hole in it.
func themeList(themes []string) string {
	if len(themes) == 0 {
		return defaultThemeLabel
	}
	return strings.Join(themes, ", ")
}

func emotionList(emotions []string) string {
	if len(emotions) == 0 {
		return strings.ToLower(defaultEmotionLabel)
	}
	return strings.ToLower(strings.Join(emotions, ", "))
}

func sexDescriptor(sex Sex) string {
	if strings.TrimSpace(string(sex)) == "" {
		return string(SexOther)
	}
	return string(sex)
}
