package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"puckline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenLister struct {
	mock.Mock
}

func (m *MockTokenLister) ListAll(ctx context.Context) ([]models.StoredToken, error) {
	args := m.Called(ctx)
	tokens, _ := args.Get(0).([]models.StoredToken)
	return tokens, args.Error(1)
}

type MockProfileLookup struct {
	mock.Mock
}

func (m *MockProfileLookup) GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	args := m.Called(ctx, ids)
	profiles, _ := args.Get(0).(map[string]models.Profile)
	return profiles, args.Error(1)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Get(ctx context.Context) ([]models.SubscriberSummary, bool, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.SubscriberSummary)
	return users, args.Bool(1), args.Error(2)
}

func (m *MockListingCache) Set(ctx context.Context, users []models.SubscriberSummary) error {
	return m.Called(ctx, users).Error(0)
}

func (m *MockListingCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func strPtr(s string) *string { return &s }

var (
	newest = time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	middle = newest.Add(-time.Hour)
	oldest = newest.Add(-48 * time.Hour)
)

func threeTokens() []models.StoredToken {
	return []models.StoredToken{
		{ID: "t1", UserID: "A", CreatedAt: newest},
		{ID: "t2", UserID: "B", CreatedAt: middle},
		{ID: "t3", UserID: "A", CreatedAt: oldest},
	}
}

func TestAggregate(t *testing.T) {
	profiles := map[string]models.Profile{
		"A": {ID: "A", Nickname: strPtr("Gordie"), PreferredLanguage: strPtr("fi"), FavoriteTeamIDs: []string{"t-7"}},
		"B": {ID: "B", Email: strPtr("b@example.com")},
	}

	users := Aggregate(threeTokens(), profiles)

	require.Len(t, users, 2)
	assert.Equal(t, "A", users[0].UserID)
	assert.Equal(t, 2, users[0].TokenCount)
	assert.Equal(t, newest, users[0].TokenCreatedAt)
	assert.Equal(t, "Gordie", *users[0].Nickname)
	assert.Equal(t, []string{"t-7"}, users[0].FavoriteTeamIDs)

	assert.Equal(t, "B", users[1].UserID)
	assert.Equal(t, 1, users[1].TokenCount)
	assert.Equal(t, middle, users[1].TokenCreatedAt)
	assert.Nil(t, users[1].Nickname)
}

func TestAggregate_MissingProfile(t *testing.T) {
	users := Aggregate([]models.StoredToken{{UserID: "ghost", CreatedAt: newest}}, map[string]models.Profile{})
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Email)
	assert.Equal(t, 1, users[0].TokenCount)
}

func TestAggregate_Empty(t *testing.T) {
	users := Aggregate(nil, nil)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListSubscribers(t *testing.T) {
	tokens := new(MockTokenLister)
	profiles := new(MockProfileLookup)
	tokens.On("ListAll", mock.Anything).Return(threeTokens(), nil)
	profiles.On("GetByIDs", mock.Anything, []string{"A", "B"}).Return(map[string]models.Profile{}, nil)

	svc, err := NewDefaultSubscriberService(tokens, profiles, nil)
	require.NoError(t, err)

	users, err := svc.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	tokens.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestListSubscribers_NoTokensSkipsProfiles(t *testing.T) {
	tokens := new(MockTokenLister)
	profiles := new(MockProfileLookup)
	tokens.On("ListAll", mock.Anything).Return([]models.StoredToken{}, nil)

	svc, err := NewDefaultSubscriberService(tokens, profiles, nil)
	require.NoError(t, err)

	users, err := svc.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	profiles.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestListSubscribers_ReadFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tokens := new(MockTokenLister)
	tokens.On("ListAll", mock.Anything).Return(nil, boom)
	svc, err := NewDefaultSubscriberService(tokens, new(MockProfileLookup), nil)
	require.NoError(t, err)
	_, err = svc.ListSubscribers(context.Background())
	assert.ErrorIs(t, err, boom)

	tokens = new(MockTokenLister)
	tokens.On("ListAll", mock.Anything).Return(threeTokens(), nil)
	profiles := new(MockProfileLookup)
	profiles.On("GetByIDs", mock.Anything, mock.Anything).Return(nil, boom)
	svc, err = NewDefaultSubscriberService(tokens, profiles, nil)
	require.NoError(t, err)
	_, err = svc.ListSubscribers(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestListSubscribers_CacheHitSkipsStore(t *testing.T) {
	tokens := new(MockTokenLister)
	profiles := new(MockProfileLookup)
	cache := new(MockListingCache)
	cached := []models.SubscriberSummary{{UserID: "A", TokenCount: 3}}
	cache.On("Get", mock.Anything).Return(cached, true, nil)

	svc, err := NewDefaultSubscriberService(tokens, profiles, cache)
	require.NoError(t, err)

	users, err := svc.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, users)
	tokens.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestListSubscribers_CacheErrorFallsThrough(t *testing.T) {
	tokens := new(MockTokenLister)
	profiles := new(MockProfileLookup)
	cache := new(MockListingCache)
	tokens.On("ListAll", mock.Anything).Return(threeTokens(), nil)
	profiles.On("GetByIDs", mock.Anything, mock.Anything).Return(map[string]models.Profile{}, nil)
	cache.On("Get", mock.Anything).Return(nil, false, errors.New("redis: connection refused"))
	cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	svc, err := NewDefaultSubscriberService(tokens, profiles, cache)
	require.NoError(t, err)

	users, err := svc.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	cache.AssertExpectations(t)
}

func TestNewDefaultSubscriberService_RequiresStores(t *testing.T) {
	_, err := NewDefaultSubscriberService(nil, new(MockProfileLookup), nil)
	assert.Error(t, err)
}
