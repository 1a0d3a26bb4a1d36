package interpreter

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

type interpretationWire struct {
	Overview             string          `json:"overview"`
	Symbols              json.RawMessage `json:"symbols"`
	Themes               json.RawMessage `json:"themes"`
	Emotions             json.RawMessage `json:"emotions"`
	PersonalizedInsights json.RawMessage `json:"personalizedInsights"`
	HoroscopeConnection  string          `json:"horoscopeConnection"`
	PsychologicalMeaning string          `json:"psychologicalMeaning"`
}

func parseInterpretation(raw string) (dream.Interpretation, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire interpretationWire
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return dream.Interpretation{}, err
	}
	if strings.TrimSpace(wire.Overview) == "" {
		return dream.Interpretation{}, errors.New("overview missing")
	}

	symbols, err := decodeSymbols(wire.Symbols)
	if err != nil {
		return dream.Interpretation{}, err
	}
	themes, err := coerceStringArray(wire.Themes)
	if err != nil {
		return dream.Interpretation{}, err
	}
	emotions, err := coerceStringArray(wire.Emotions)
	if err != nil {
		return dream.Interpretation{}, err
	}
	insights, err := coerceStringArray(wire.PersonalizedInsights)
	if err != nil {
		return dream.Interpretation{}, err
	}

	return dream.Interpretation{
		Overview:             wire.Overview,
		Symbols:              symbols,
		Themes:               themes,
		Emotions:             emotions,
		PersonalizedInsights: insights,
		HoroscopeConnection:  wire.HoroscopeConnection,
		RecurringPatterns:    []string{},
		PsychologicalMeaning: wire.PsychologicalMeaning,
	}, nil
}

// decodeSymbols accepts a missing or null list; entries are kept as sent.
func decodeSymbols(raw json.RawMessage) ([]dream.SymbolInterpretation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []dream.SymbolInterpretation{}, nil
	}
	var items []dream.SymbolInterpretation
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []dream.SymbolInterpretation{}
	}
	return items, nil
}

// coerceStringArray accepts a list, a lone string or null. The values
// themselves are not rewritten.
func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		if many == nil {
			many = []string{}
		}
		return many, nil
	default:
		return nil, errors.New("unsupported string array format")
	}
}
