package tokenRepo

import (
	"context"
	"encoding/json"

	"puckline/database"
	"puckline/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgTokenRepo implements TokenRepository on Postgres.
type PgTokenRepo struct {
	db *pgxpool.Pool
}

// NewPgTokenRepo wraps the shared pool.
func NewPgTokenRepo(db *pgxpool.Pool) TokenRepository {
	return &PgTokenRepo{db: db}
}

const tokenColumns = `id::text, user_id::text, token::text, created_at`

func (r *PgTokenRepo) Upsert(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error) {
	if _, err := Endpoint(token); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO notification_tokens (user_id, token, created_at)
		VALUES ($1, $2::json, now())
		ON CONFLICT (user_id, (coalesce(token ->> 'endpoint', token #>> '{}')))
		DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at
		RETURNING ` + tokenColumns

	row := r.db.QueryRow(ctx, query, userID, string(token))
	t, err := scanToken(row)
	if err != nil {
		return nil, database.MapPgError("Upsert", err)
	}
	return t, nil
}

func (r *PgTokenRepo) ListAll(ctx context.Context) ([]models.StoredToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM notification_tokens ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, database.MapPgError("ListAll", err)
	}
	return collectTokens("ListAll", rows)
}

func (r *PgTokenRepo) ListByUsers(ctx context.Context, userIDs []string) ([]models.StoredToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + tokenColumns + `
		FROM notification_tokens
		WHERE user_id::text = ANY($1)
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, database.MapPgError("ListByUsers", err)
	}
	return collectTokens("ListByUsers", rows)
}

func (r *PgTokenRepo) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	query := `
		DELETE FROM notification_tokens
		WHERE user_id = $1
		  AND coalesce(token ->> 'endpoint', token #>> '{}') = $2`
	ct, err := r.db.Exec(ctx, query, userID, endpoint)
	if err != nil {
		return database.MapPgError("DeleteByEndpoint", err)
	}
	if ct.RowsAffected() == 0 {
		return database.MapPgError("DeleteByEndpoint", pgx.ErrNoRows)
	}
	return nil
}

func (r *PgTokenRepo) DeleteByID(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM notification_tokens WHERE id = $1`, id)
	if err != nil {
		return database.MapPgError("DeleteByID", err)
	}
	if ct.RowsAffected() == 0 {
		return database.MapPgError("DeleteByID", pgx.ErrNoRows)
	}
	return nil
}

func scanToken(row pgx.Row) (*models.StoredToken, error) {
	var (
		t   models.StoredToken
		raw string
	)
	if err := row.Scan(&t.ID, &t.UserID, &raw, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Token = json.RawMessage(raw)
	return &t, nil
}

func collectTokens(op string, rows pgx.Rows) ([]models.StoredToken, error) {
	defer rows.Close()

	var tokens []models.StoredToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, database.MapPgError(op, err)
		}
		tokens = append(tokens, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPgError(op, err)
	}
	return tokens, nil
}
