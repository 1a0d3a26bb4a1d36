package dream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

func TestValidateEntry(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	valid := EntryInput{Title: " Night ", Content: " Stars ", Mood: 3, Lucidity: 5, Tags: []string{"a", " a", "", "b"}}

	got, err := validateEntry(valid, now)
	require.NoError(t, err)
	require.Equal(t, "Night", got.Title)
	require.Equal(t, "Stars", got.Content)
	require.Equal(t, now, got.OccurredAt)
	require.Equal(t, []string{"a", "b"}, got.Tags)

	dated := valid
	dated.Date = "2024-05-20"
	got, err = validateEntry(dated, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), got.OccurredAt)

	tests := []struct {
		name    string
		mutate  func(*EntryInput)
		message string
	}{
		{"missing title", func(in *EntryInput) { in.Title = "  " }, "title is required"},
		{"mood too low", func(in *EntryInput) { in.Mood = 0 }, "mood must be at least 1"},
		{"lucidity too high", func(in *EntryInput) { in.Lucidity = 6 }, "lucidity must be at most 5"},
		{"bad date", func(in *EntryInput) { in.Date = "20/05/2024" }, "date must be formatted as YYYY-MM-DD"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := valid
			tt.mutate(&in)
			_, err := validateEntry(in, now)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, CodeInvalidInput))
			require.Equal(t, tt.message, apperrors.MessageOf(err))
		})
	}
}

func TestValidateProfile(t *testing.T) {
	in, err := ValidateProfile(ProfileInput{Name: " Ada ", Surname: "L", Age: 36, Sex: "Female", Sign: "Capricorn"})
	require.NoError(t, err)
	require.Equal(t, "Ada", in.Name)
	require.Equal(t, SexFemale, in.Sex)

	_, err = ValidateProfile(ProfileInput{Name: "Ada", Surname: "L", Age: 121, Sex: SexFemale, Sign: "Capricorn"})
	require.Equal(t, "age must be at most 120", apperrors.MessageOf(err))

	_, err = ValidateProfile(ProfileInput{Name: "Ada", Surname: "L", Age: 30, Sex: "robot", Sign: "Capricorn"})
	require.Equal(t, "sex must be one of male, female, other", apperrors.MessageOf(err))

	_, err = ValidateProfile(ProfileInput{Name: "Ada", Surname: "L", Age: 30, Sex: SexOther, Sign: "Dragon"})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
	require.Equal(t, "sign must be one of the twelve zodiac signs", apperrors.MessageOf(err))
}
