// Package tokentest provides an in-memory TokenRepository for tests.
package tokentest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"puckline/database"
	tokenRepo "puckline/database/repository/token"
	"puckline/models"

	"github.com/google/uuid"
)

// MemoryRepo keeps tokens in a slice guarded by a mutex.
type MemoryRepo struct {
	mu        sync.Mutex
	rows      []models.StoredToken
	Now       func() time.Time
	ErrAll    error
	ErrUpsert error
}

var _ tokenRepo.TokenRepository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{Now: time.Now}
}

func (m *MemoryRepo) Upsert(_ context.Context, userID string, token json.RawMessage) (*models.StoredToken, error) {
	if m.ErrUpsert != nil {
		return nil, m.ErrUpsert
	}
	endpoint, err := tokenRepo.Endpoint(token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := append(json.RawMessage(nil), token...)
	for i, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		if ep, _ := tokenRepo.Endpoint(row.Token); ep == endpoint {
			m.rows[i].Token = raw
			m.rows[i].CreatedAt = m.Now()
			t := m.rows[i]
			return &t, nil
		}
	}
	t := models.StoredToken{ID: uuid.NewString(), UserID: userID, Token: raw, CreatedAt: m.Now()}
	m.rows = append(m.rows, t)
	return &t, nil
}

// Add inserts a row verbatim, bypassing endpoint validation.
func (m *MemoryRepo) Add(t models.StoredToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.rows = append(m.rows, t)
}

func (m *MemoryRepo) ListAll(_ context.Context) ([]models.StoredToken, error) {
	if m.ErrAll != nil {
		return nil, m.ErrAll
	}
	return m.list(func(models.StoredToken) bool { return true }), nil
}

func (m *MemoryRepo) ListByUsers(_ context.Context, userIDs []string) ([]models.StoredToken, error) {
	if m.ErrAll != nil {
		return nil, m.ErrAll
	}
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	return m.list(func(t models.StoredToken) bool { return want[t.UserID] }), nil
}

func (m *MemoryRepo) list(keep func(models.StoredToken) bool) []models.StoredToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StoredToken
	for _, row := range m.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepo) DeleteByEndpoint(_ context.Context, userID, endpoint string) error {
	return m.delete(func(t models.StoredToken) bool {
		ep, _ := tokenRepo.Endpoint(t.Token)
		return t.UserID == userID && ep == endpoint
	})
}

func (m *MemoryRepo) DeleteByID(_ context.Context, id string) error {
	return m.delete(func(t models.StoredToken) bool { return t.ID == id })
}

func (m *MemoryRepo) delete(match func(models.StoredToken) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if match(row) {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// Len reports the number of stored rows.
func (m *MemoryRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
