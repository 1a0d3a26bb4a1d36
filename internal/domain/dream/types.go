package dream

import (
	"time"

	"github.com/google/uuid"
)

// Sex is the self-reported sex descriptor used in personalized text.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// PlanTier decides whether interpretation counters are enforced.
type PlanTier string

const (
	PlanTrial   PlanTier = "trial"
	PlanPremium PlanTier = "premium"
)

// Profile is the slice of the user account the engine and gate consume.
type Profile struct {
	UserID                 int64    `json:"id"`
	Name                   string   `json:"name"`
	Surname                string   `json:"surname"`
	Age                    int      `json:"age"`
	Sex                    Sex      `json:"sex"`
	Sign                   string   `json:"sign"`
	Plan                   PlanTier `json:"plan"`
	InterpretationsUsed    int      `json:"interpretationsUsed"`
	InterpretationsAllowed int      `json:"interpretationsAllowed"`
}

// IsPremium reports whether counters are ignored for this profile.
func (p Profile) IsPremium() bool {
	return p.Plan == PlanPremium
}

// Entry is a single journaled dream.
type Entry struct {
	ID               uuid.UUID       `json:"id"`
	UserID           int64           `json:"userId"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	OccurredAt       time.Time       `json:"date"`
	Mood             int             `json:"mood"`
	Lucidity         int             `json:"lucidity"`
	Tags             []string        `json:"tags"`
	Symbols          []string        `json:"symbols"`
	Themes           []string        `json:"themes"`
	Interpretation   *Interpretation `json:"interpretation,omitempty"`
	VisualizationURL string          `json:"visualizationUrl,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// HasInterpretation reports whether an interpretation is attached.
func (e Entry) HasInterpretation() bool {
	return e.Interpretation != nil
}

// Attach stores interp on the entry and overwrites the extracted symbol and
// theme sets with the ones it carries.
func (e *Entry) Attach(interp Interpretation) {
	symbols := make([]string, 0, len(interp.Symbols))
	for _, s := range interp.Symbols {
		symbols = append(symbols, s.Symbol)
	}
	themes := append([]string{}, interp.Themes...)
	stored := interp.Clone()
	e.Interpretation = &stored
	e.Symbols = symbols
	e.Themes = themes
}

// Detach drops the interpretation and the sets derived from it.
func (e *Entry) Detach() {
	e.Interpretation = nil
	e.Symbols = []string{}
	e.Themes = []string{}
}

// Clone returns a deep copy safe to hand across goroutines or stores.
func (e Entry) Clone() Entry {
	out := e
	out.Tags = cloneStrings(e.Tags)
	out.Symbols = cloneStrings(e.Symbols)
	out.Themes = cloneStrings(e.Themes)
	if e.Interpretation != nil {
		interp := e.Interpretation.Clone()
		out.Interpretation = &interp
	}
	return out
}

// Source names the path that produced an interpretation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// SymbolInterpretation explains one symbol found in the dream.
type SymbolInterpretation struct {
	Symbol            string `json:"symbol"`
	Meaning           string `json:"meaning"`
	PersonalRelevance string `json:"personalRelevance"`
}

// Interpretation is the structured analysis attached to an entry.
type Interpretation struct {
	Overview             string                 `json:"overview"`
	Symbols              []SymbolInterpretation `json:"symbols"`
	Themes               []string               `json:"themes"`
	Emotions             []string               `json:"emotions"`
	PersonalizedInsights []string               `json:"personalizedInsights"`
	HoroscopeConnection  string                 `json:"horoscopeConnection"`
	// RecurringPatterns is reserved for cross-entry correlation and is
	// always empty on the local path.
	RecurringPatterns    []string  `json:"recurringPatterns"`
	PsychologicalMeaning string    `json:"psychologicalMeaning"`
	Source               Source    `json:"source,omitempty"`
	CreatedAt            time.Time `json:"createdAt,omitempty"`
}

// Clone returns a deep copy.
func (i Interpretation) Clone() Interpretation {
	out := i
	out.Symbols = append([]SymbolInterpretation{}, i.Symbols...)
	out.Themes = cloneStrings(i.Themes)
	out.Emotions = cloneStrings(i.Emotions)
	out.PersonalizedInsights = cloneStrings(i.PersonalizedInsights)
	out.RecurringPatterns = cloneStrings(i.RecurringPatterns)
	return out
}

// AggregateStats summarizes a user's journal.
type AggregateStats struct {
	TotalEntries    int      `json:"totalDreams"`
	AverageMood     float64  `json:"averageMood"`
	AverageLucidity float64  `json:"averageLucidity"`
	TopThemes       []string `json:"mostCommonThemes"`
	TopSymbols      []string `json:"mostCommonSymbols"`
	MonthlyEntries  [12]int  `json:"monthlyDreams"`
	Streak          int      `json:"dreamingStreak"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}
