package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[int64]auth.User
	emailIndex map[string]int64
	seq        int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[int64]auth.User),
		emailIndex: make(map[string]int64),
	}
}

// Create stores the user record on the trial plan.
func (r *MemoryRepository) Create(_ context.Context, in auth.NewUser) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[in.Email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	r.seq++
	now := time.Now().UTC()
	user := auth.User{
		ID:                     r.seq,
		Email:                  in.Email,
		PasswordHash:           in.PasswordHash,
		Name:                   in.Profile.Name,
		Surname:                in.Profile.Surname,
		Age:                    in.Profile.Age,
		Sex:                    in.Profile.Sex,
		Sign:                   in.Profile.Sign,
		Plan:                   dream.PlanTrial,
		InterpretationsAllowed: in.Allowance,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	r.users[user.ID] = user
	r.emailIndex[in.Email] = user.ID
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// UpdateProfile replaces the personal fields. Email and counters are untouched.
func (r *MemoryRepository) UpdateProfile(_ context.Context, id int64, in dream.ProfileInput) (auth.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return auth.User{}, false, nil
	}
	user.Name = in.Name
	user.Surname = in.Surname
	user.Age = in.Age
	user.Sex = in.Sex
	user.Sign = in.Sign
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, true, nil
}

// GetProfile projects the user onto its interpretation profile.
func (r *MemoryRepository) GetProfile(_ context.Context, userID int64) (dream.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return dream.Profile{}, false, nil
	}
	return user.Profile(), true, nil
}

// UpdateUsage moves the counter from `from` to `to` if nobody else moved it first.
func (r *MemoryRepository) UpdateUsage(_ context.Context, userID int64, from, to int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	if user.InterpretationsUsed != from {
		return false, nil
	}
	user.InterpretationsUsed = to
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return true, nil
}

// UpdatePlan switches the plan tier.
func (r *MemoryRepository) UpdatePlan(_ context.Context, userID int64, plan dream.PlanTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Plan = plan
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

var (
	_ auth.Repository         = (*MemoryRepository)(nil)
	_ dream.ProfileRepository = (*MemoryRepository)(nil)
)
