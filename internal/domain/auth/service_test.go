package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/dreamvision/internal/domain/dream"
	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "User@Example.com",
		Password:     "pass12",
		ProfileInput: testProfile(),
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "Ada", view.Name)
	require.Equal(t, dream.SexFemale, view.Sex)
	require.Equal(t, dream.PlanTrial, view.Plan)
	require.Equal(t, 0, view.InterpretationsUsed)
	require.Equal(t, 3, view.InterpretationsAllowed)
	require.NotZero(t, view.UserID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "pass12",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.UserID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "Lovelace", refreshed.User.Surname)
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "pass1234",
		ProfileInput: testProfile(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "pass12345",
		ProfileInput: testProfile(),
	})
	require.True(t, apperrors.IsCode(err, CodeEmailExists))
}

func TestService_RegisterRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "short",
		ProfileInput: testProfile(),
	})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
	require.Contains(t, err.Error(), "at least 6")

	profile := testProfile()
	profile.Sign = "Ophiuchus"
	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "pass1234",
		ProfileInput: profile,
	})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
	require.Equal(t, "sign must be one of the twelve zodiac signs", apperrors.MessageOf(err))
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "pass1234",
		ProfileInput: testProfile(),
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "nope123"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
}

func TestService_UpdateProfileKeepsEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "user@example.com",
		Password:     "pass1234",
		ProfileInput: testProfile(),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), view.UserID, dream.ProfileInput{
		Name:    " Grace ",
		Surname: "Hopper",
		Age:     45,
		Sex:     "FEMALE",
		Sign:    "Capricorn",
	})
	require.NoError(t, err)
	require.Equal(t, "Grace", updated.Name)
	require.Equal(t, 45, updated.Age)
	require.Equal(t, "Capricorn", updated.Sign)
	require.Equal(t, "user@example.com", updated.Email)

	_, err = svc.UpdateProfile(context.Background(), 999, testProfile())
	require.True(t, apperrors.IsCode(err, CodeUserNotFound))
}

func newTestService(repo Repository) Service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		TrialAllowance:  3,
	}, repo, newTestLogger())
}

func testProfile() dream.ProfileInput {
	return dream.ProfileInput{
		Name:    "Ada",
		Surname: "Lovelace",
		Age:     28,
		Sex:     dream.SexFemale,
		Sign:    "Pisces",
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (m *memoryRepo) Create(_ context.Context, in NewUser) (User, error) {
	for _, user := range m.users {
		if user.Email == in.Email {
			return User{}, ErrEmailExists
		}
	}
	m.seq++
	user := User{
		ID:                     m.seq,
		Email:                  in.Email,
		PasswordHash:           in.PasswordHash,
		Name:                   in.Profile.Name,
		Surname:                in.Profile.Surname,
		Age:                    in.Profile.Age,
		Sex:                    in.Profile.Sex,
		Sign:                   in.Profile.Sign,
		Plan:                   dream.PlanTrial,
		InterpretationsAllowed: in.Allowance,
		CreatedAt:              time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, id int64, in dream.ProfileInput) (User, bool, error) {
	user, ok := m.users[id]
	if !ok {
		return User{}, false, nil
	}
	user.Name, user.Surname, user.Age, user.Sex, user.Sign = in.Name, in.Surname, in.Age, in.Sex, in.Sign
	m.users[id] = user
	return user, true, nil
}
