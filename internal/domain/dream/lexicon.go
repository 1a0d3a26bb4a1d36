package dream

// Symbol names, in lexicon order.
const (
	SymbolWater   = "water"
	SymbolFlying  = "flying"
	SymbolAnimals = "animals"
	SymbolDeath   = "death"
	SymbolHouse   = "house"
	SymbolFalling = "falling"
	SymbolChase   = "chase"
	SymbolFire    = "fire"
	SymbolMirror  = "mirror"
	SymbolMoney   = "money"
	SymbolBaby    = "baby"
	SymbolCar     = "car"
	SymbolSchool  = "school"
	SymbolWedding = "wedding"
)

type symbolEntry struct {
	name    string
	meaning string
}

// symbolLexicon is iterated in declaration order; that order is the output
// order of extracted symbols.
var symbolLexicon = [...]symbolEntry{
	{SymbolWater, "emotions, subconscious, cleansing, life force"},
	{SymbolFlying, "freedom, transcendence, overcoming obstacles, spiritual elevation"},
	{SymbolAnimals, "instincts, natural desires, untamed aspects of self"},
	{SymbolDeath, "transformation, endings, rebirth, fear of change"},
	{SymbolHouse, "self, mind, different aspects of personality"},
	{SymbolFalling, "loss of control, anxiety, fear of failure"},
	{SymbolChase, "avoidance, running from problems, confronting fears"},
	{SymbolFire, "passion, anger, destruction, purification"},
	{SymbolMirror, "self-reflection, truth, vanity, self-perception"},
	{SymbolMoney, "value, self-worth, security, power"},
	{SymbolBaby, "new beginnings, innocence, vulnerability, potential"},
	{SymbolCar, "control, direction in life, personal drive"},
	{SymbolSchool, "learning, testing, anxiety, past experiences"},
	{SymbolWedding, "commitment, unity, new phase, celebration"},
}

// SymbolMeaning returns the canned meaning for a lexicon symbol.
func SymbolMeaning(symbol string) (string, bool) {
	for _, entry := range symbolLexicon {
		if entry.name == symbol {
			return entry.meaning, true
		}
	}
	return "", false
}

// Symbols lists the lexicon keys in iteration order.
func Symbols() []string {
	out := make([]string, 0, len(symbolLexicon))
	for _, entry := range symbolLexicon {
		out = append(out, entry.name)
	}
	return out
}

// Traits is the fixed quadruple of characteristics for a zodiac sign.
type Traits [4]string

var signTraits = map[string]Traits{
	"Aries":       {"leadership", "courage", "impulsiveness", "adventure"},
	"Taurus":      {"stability", "sensuality", "stubbornness", "comfort"},
	"Gemini":      {"communication", "curiosity", "duality", "adaptability"},
	"Cancer":      {"emotions", "nurturing", "protection", "family"},
	"Leo":         {"creativity", "confidence", "attention", "drama"},
	"Virgo":       {"perfectionism", "service", "analysis", "health"},
	"Libra":       {"harmony", "relationships", "beauty", "balance"},
	"Scorpio":     {"intensity", "transformation", "mystery", "depth"},
	"Sagittarius": {"freedom", "adventure", "philosophy", "truth"},
	"Capricorn":   {"ambition", "structure", "responsibility", "success"},
	"Aquarius":    {"innovation", "friendship", "rebellion", "idealism"},
	"Pisces":      {"intuition", "creativity", "spirituality", "empathy"},
}

var zodiacOrder = [...]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

const defaultTrait = "adaptability"

// SignTraits returns the trait quadruple for sign. Unknown signs get the
// default trait in every slot.
func SignTraits(sign string) Traits {
	if traits, ok := signTraits[sign]; ok {
		return traits
	}
	return Traits{defaultTrait, defaultTrait, defaultTrait, defaultTrait}
}

// ZodiacSigns lists the twelve accepted sign literals.
func ZodiacSigns() []string {
	return append([]string{}, zodiacOrder[:]...)
}

// IsZodiacSign reports whether sign is one of the twelve literals.
func IsZodiacSign(sign string) bool {
	_, ok := signTraits[sign]
	return ok
}
