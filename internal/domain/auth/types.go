package auth

import (
	"time"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	TrialAllowance  int
}

// User represents a persisted account.
type User struct {
	ID                     int64
	Email                  string
	PasswordHash           string
	Name                   string
	Surname                string
	Age                    int
	Sex                    dream.Sex
	Sign                   string
	Plan                   dream.PlanTier
	InterpretationsUsed    int
	InterpretationsAllowed int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Profile projects the account onto the fields interpretations use.
func (u User) Profile() dream.Profile {
	return dream.Profile{
		UserID:                 u.ID,
		Name:                   u.Name,
		Surname:                u.Surname,
		Age:                    u.Age,
		Sex:                    u.Sex,
		Sign:                   u.Sign,
		Plan:                   u.Plan,
		InterpretationsUsed:    u.InterpretationsUsed,
		InterpretationsAllowed: u.InterpretationsAllowed,
	}
}

// NewUser is the record handed to the repository on registration.
type NewUser struct {
	Email        string
	PasswordHash string
	Profile      dream.ProfileInput
	Allowance    int
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	dream.ProfileInput
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UserView trims sensitive fields.
type UserView struct {
	dream.Profile
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
