package profileRepo

import (
	"context"

	"puckline/database"
	"puckline/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgProfileRepo implements ProfileRepository on Postgres.
type PgProfileRepo struct {
	db *pgxpool.Pool
}

func NewPgProfileRepo(db *pgxpool.Pool) ProfileRepository {
	return &PgProfileRepo{db: db}
}

func (r *PgProfileRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	profiles := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	query := `
		SELECT id::text, nickname, email, preferred_language, favorite_team_ids::text[]
		FROM profiles
		WHERE id::text = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, database.MapPgError("GetByIDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Nickname, &p.Email, &p.PreferredLanguage, &p.FavoriteTeamIDs); err != nil {
			return nil, database.MapPgError("GetByIDs", err)
		}
		profiles[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPgError("GetByIDs", err)
	}
	return profiles, nil
}

func (r *PgProfileRepo) Upsert(ctx context.Context, p models.Profile) error {
	query := `
		INSERT INTO profiles (id, nickname, email, preferred_language, favorite_team_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			email = EXCLUDED.email,
			preferred_language = EXCLUDED.preferred_language,
			favorite_team_ids = EXCLUDED.favorite_team_ids`

	_, err := r.db.Exec(ctx, query, p.ID, p.Nickname, p.Email, p.PreferredLanguage, p.FavoriteTeamIDs)
	return database.MapPgError("Upsert", err)
}
