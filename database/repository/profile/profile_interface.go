package profileRepo

import (
	"context"

	"puckline/models"
)

// ProfileRepository defines read access to profiles plus the seeding upsert.
type ProfileRepository interface {
	// GetByIDs returns the profiles found for ids, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
	// Upsert inserts or replaces a profile.
	Upsert(ctx context.Context, p models.Profile) error
}
