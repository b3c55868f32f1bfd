package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meridaworks/talentd/internal/domain"
)

func TestRosterCache_LazyLoadOnce(t *testing.T) {
	source := new(MockRosterSource)
	source.On("ListAll", mock.Anything).Return([]domain.RosterEntry{
		{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}},
		{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan"}},
	}, nil).Once()

	cache := NewRosterCache(source)
	assert.Equal(t, 0, cache.Size(), "nothing loads until first access")

	entry, ok, err := cache.Get(context.Background(), "E001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana", entry.Name)

	_, ok, err = cache.Get(context.Background(), "E002")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = cache.Get(context.Background(), "E999")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, cache.Size())
	source.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestRosterCache_All(t *testing.T) {
	source := new(MockRosterSource)
	source.On("ListAll", mock.Anything).Return([]domain.RosterEntry{
		{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}},
		{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan"}},
	}, nil)

	cache := NewRosterCache(source)
	identities, err := cache.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, identities, 2)
}

func TestRosterCache_ReloadReplaces(t *testing.T) {
	source := new(MockRosterSource)
	source.On("ListAll", mock.Anything).Return([]domain.RosterEntry{
		{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}},
	}, nil).Once()
	source.On("ListAll", mock.Anything).Return([]domain.RosterEntry{
		{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan"}},
	}, nil).Once()

	cache := NewRosterCache(source)

	_, ok, err := cache.Get(context.Background(), "E001")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Reload(context.Background()))

	_, ok, err = cache.Get(context.Background(), "E001")
	require.NoError(t, err)
	assert.False(t, ok, "reload replaces the roster, it does not merge")

	_, ok, err = cache.Get(context.Background(), "E002")
	require.NoError(t, err)
	assert.True(t, ok)
}
