package dreamrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

const uniqueViolation = "23505"

const entryColumns = `id, user_id, title, content, occurred_at, mood, lucidity, tags, symbols, themes,
	interpretation, visualization_url, created_at, updated_at`

// PostgresRepository persists entries in the dream_entries table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateEntry inserts a new row.
func (r *PostgresRepository) CreateEntry(ctx context.Context, entry dream.Entry) (dream.Entry, error) {
	interp, err := encodeInterpretation(entry.Interpretation)
	if err != nil {
		return dream.Entry{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO dream_entries (id, user_id, title, content, occurred_at, mood, lucidity, tags, symbols, themes,
			interpretation, visualization_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+entryColumns,
		entry.ID, entry.UserID, entry.Title, entry.Content, entry.OccurredAt, entry.Mood, entry.Lucidity,
		nonNil(entry.Tags), nonNil(entry.Symbols), nonNil(entry.Themes), interp, entry.VisualizationURL,
		entry.CreatedAt, entry.UpdatedAt)
	created, err := scanEntry(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return dream.Entry{}, ErrDuplicateEntry
		}
		return dream.Entry{}, err
	}
	return created, nil
}

// GetEntry returns the entry when it belongs to userID.
func (r *PostgresRepository) GetEntry(ctx context.Context, userID int64, id uuid.UUID) (dream.Entry, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM dream_entries
		WHERE id = $1 AND user_id = $2
		LIMIT 1
	`, id, userID)
	if err != nil {
		return dream.Entry{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return dream.Entry{}, false, rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return dream.Entry{}, false, err
	}
	return entry, true, rows.Err()
}

// ListEntries returns one filtered page plus the filtered total.
func (r *PostgresRepository) ListEntries(ctx context.Context, userID int64, filter dream.ListFilter) ([]dream.Entry, int, error) {
	where, args := listConditions(userID, filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dream_entries WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + entryColumns + ` FROM dream_entries WHERE ` + where +
		` ORDER BY occurred_at DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// AllEntries returns every entry the user owns, newest first.
func (r *PostgresRepository) AllEntries(ctx context.Context, userID int64) ([]dream.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM dream_entries
		WHERE user_id = $1
		ORDER BY occurred_at DESC, created_at DESC
	`, userID)
}

// UpdateEntry overwrites the mutable columns of an owned entry.
func (r *PostgresRepository) UpdateEntry(ctx context.Context, entry dream.Entry) (bool, error) {
	interp, err := encodeInterpretation(entry.Interpretation)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE dream_entries
		SET title = $3, content = $4, occurred_at = $5, mood = $6, lucidity = $7, tags = $8,
			symbols = $9, themes = $10, interpretation = $11, visualization_url = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
	`, entry.ID, entry.UserID, entry.Title, entry.Content, entry.OccurredAt, entry.Mood, entry.Lucidity,
		nonNil(entry.Tags), nonNil(entry.Symbols), nonNil(entry.Themes), interp, entry.VisualizationURL,
		entry.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteEntry removes the row. The interpretation lives in the same row.
func (r *PostgresRepository) DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dream_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]dream.Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]dream.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func listConditions(userID int64, filter dream.ListFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", n, n))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func encodeInterpretation(interp *dream.Interpretation) ([]byte, error) {
	if interp == nil {
		return nil, nil
	}
	raw, err := json.Marshal(interp)
	if err != nil {
		return nil, fmt.Errorf("encode interpretation: %w", err)
	}
	return raw, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (dream.Entry, error) {
	var (
		entry            dream.Entry
		interp           []byte
		occurred         time.Time
		created, updated time.Time
	)
	if err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content, &occurred, &entry.Mood, &entry.Lucidity,
		&entry.Tags, &entry.Symbols, &entry.Themes, &interp, &entry.VisualizationURL, &created, &updated,
	); err != nil {
		return dream.Entry{}, err
	}
	if len(interp) > 0 {
		var decoded dream.Interpretation
		if err := json.Unmarshal(interp, &decoded); err != nil {
			return dream.Entry{}, fmt.Errorf("decode interpretation: %w", err)
		}
		entry.Interpretation = &decoded
	}
	entry.Tags = nonNil(entry.Tags)
	entry.Symbols = nonNil(entry.Symbols)
	entry.Themes = nonNil(entry.Themes)
	entry.OccurredAt = occurred.UTC()
	entry.CreatedAt = created.UTC()
	entry.UpdatedAt = updated.UTC()
	return entry, nil
}

var _ dream.EntryRepository = (*PostgresRepository)(nil)
