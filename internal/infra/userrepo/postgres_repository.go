package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, name, surname, age, sex, sign, plan,
	interpretations_used, interpretations_allowed, created_at, updated_at`

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row on the trial plan.
func (r *PostgresRepository) Create(ctx context.Context, in auth.NewUser) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, surname, age, sex, sign, plan, interpretations_allowed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		in.Email, in.PasswordHash, in.Profile.Name, in.Profile.Surname, in.Profile.Age,
		string(in.Profile.Sex), in.Profile.Sign, string(dream.PlanTrial), in.Allowance)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

// UpdateProfile replaces the personal fields. Email and counters are untouched.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, in dream.ProfileInput) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, surname = $3, age = $4, sex = $5, sign = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, in.Name, in.Surname, in.Age, string(in.Sex), in.Sign)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

// GetProfile projects the user onto its interpretation profile.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (dream.Profile, bool, error) {
	user, found, err := r.GetByID(ctx, userID)
	if err != nil || !found {
		return dream.Profile{}, found, err
	}
	return user.Profile(), true, nil
}

// UpdateUsage moves the counter from `from` to `to` if nobody else moved it first.
func (r *PostgresRepository) UpdateUsage(ctx context.Context, userID int64, from, to int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET interpretations_used = $3, updated_at = NOW()
		WHERE id = $1 AND interpretations_used = $2
	`, userID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePlan switches the plan tier.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, userID int64, plan dream.PlanTier) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1
	`, userID, string(plan))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return auth.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.User{}, false, rows.Err()
	}
	user, err := scanUser(rows)
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.User, error) {
	var (
		user         auth.User
		sex, plan    string
		created, upd time.Time
	)
	if err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Surname, &user.Age,
		&sex, &user.Sign, &plan, &user.InterpretationsUsed, &user.InterpretationsAllowed,
		&created, &upd,
	); err != nil {
		return auth.User{}, err
	}
	user.Sex = dream.Sex(sex)
	user.Plan = dream.PlanTier(plan)
	user.CreatedAt = created.UTC()
	user.UpdatedAt = upd.UTC()
	return user, nil
}

var (
	_ auth.Repository         = (*PostgresRepository)(nil)
	_ dream.ProfileRepository = (*PostgresRepository)(nil)
)
