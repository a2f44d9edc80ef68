package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShortLinkDeterministic(t *testing.T) {
	a, err := service.EncodeShortLink(42, "salt", 3)
	require.NoError(t, err)
	b, err := service.EncodeShortLink(42, "salt", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, len(a), 3)

	other, err := service.EncodeShortLink(43, "salt", 3)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	salted, err := service.EncodeShortLink(42, "pepper", 3)
	require.NoError(t, err)
	assert.NotEqual(t, a, salted)
}

func TestShortLinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShortLinkService(db, nil, "salt", 3)
	author := testhelpers.CreateUser(t, db, "author")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup")

	first, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	id, err := svc.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)
}

func TestShortLinkErrors(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShortLinkService(db, nil, "salt", 3)

	_, err := svc.GetOrCreate(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
