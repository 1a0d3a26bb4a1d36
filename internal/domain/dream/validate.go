package dream

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

const dateLayout = "2006-01-02"

// EntryInput is the editable part of an entry.
type EntryInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required,max=10000"`
	Date     string   `json:"date"`
	Mood     int      `json:"mood" validate:"min=1,max=5"`
	Lucidity int      `json:"lucidity" validate:"min=1,max=5"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=40"`
}

// CreateEntryRequest is the payload for a new entry.
type CreateEntryRequest struct {
	EntryInput
	RequestInterpretation bool `json:"requestInterpretation"`
}

// UpdateEntryRequest replaces the editable fields of an entry.
type UpdateEntryRequest struct {
	EntryInput
}

// ProfileInput carries the personal fields interpretations are tailored to.
type ProfileInput struct {
	Name    string `json:"name" validate:"required,max=50"`
	Surname string `json:"surname" validate:"required,max=50"`
	Age     int    `json:"age" validate:"min=1,max=120"`
	Sex     Sex    `json:"sex" validate:"oneof=male female other"`
	Sign    string `json:"sign" validate:"zodiac"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("zodiac", func(fl validator.FieldLevel) bool {
		return IsZodiacSign(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateProfile trims and checks profile fields.
func ValidateProfile(in ProfileInput) (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Sex = Sex(strings.ToLower(strings.TrimSpace(string(in.Sex))))
	in.Sign = strings.TrimSpace(in.Sign)
	if err := validate.Struct(in); err != nil {
		return ProfileInput{}, inputError(err)
	}
	return in, nil
}

// normalizedEntry is a validated EntryInput with its date resolved.
type normalizedEntry struct {
	Title      string
	Content    string
	OccurredAt time.Time
	Mood       int
	Lucidity   int
	Tags       []string
}

func validateEntry(in EntryInput, now time.Time) (normalizedEntry, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		return normalizedEntry{}, inputError(err)
	}
	occurred, err := parseOccurredAt(in.Date, now)
	if err != nil {
		return normalizedEntry{}, apperrors.Wrap(CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}
	return normalizedEntry{
		Title:      in.Title,
		Content:    in.Content,
		OccurredAt: occurred,
		Mood:       in.Mood,
		Lucidity:   in.Lucidity,
		Tags:       normalizeTags(in.Tags),
	}, nil
}

func parseOccurredAt(raw string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateLayout, trimmed)
}

// normalizeTags trims, drops blanks and removes duplicates, keeping the first
// occurrence of each tag.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func inputError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Wrap(CodeInvalidInput, describeField(fieldErrs[0]), err)
	}
	return apperrors.Wrap(CodeInvalidInput, "invalid input", err)
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "zodiac":
		return fmt.Sprintf("%s must be one of the twelve zodiac signs", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
