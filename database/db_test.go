package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	assert.NoError(t, MapPgError("op", nil))

	denied := &pgconn.PgError{Code: "42501", Message: "permission denied for table notification_tokens"}
	err := MapPgError("ListAll", denied)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Contains(t, err.Error(), "permission denied for table notification_tokens")

	assert.ErrorIs(t, MapPgError("Get", pgx.ErrNoRows), ErrNotFound)

	other := errors.New("connection reset")
	err = MapPgError("ListAll", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}
