package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")
	for _, name := range []string{"One", "Two", "Three"} {
		testhelpers.CreateRecipe(t, db, author, name)
	}

	digest, err := svc.Subscribe(ctx, reader.ID, author.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, author.ID, digest.Author.ID)
	assert.Equal(t, int64(3), digest.RecipesCount)
	require.Len(t, digest.Recipes, 2)
	assert.Equal(t, "Three", digest.Recipes[0].Name)

	_, err = svc.Subscribe(ctx, reader.ID, author.ID, service.AllRecipes)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestSubscribeErrors(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)
	reader := testhelpers.CreateUser(t, db, "reader")

	_, err := svc.Subscribe(ctx, reader.ID, reader.ID, service.AllRecipes)
	assert.ErrorIs(t, err, service.ErrInvalidOperation)

	_, err = svc.Subscribe(ctx, reader.ID, 9999, service.AllRecipes)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Unsubscribe(ctx, reader.ID, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)
	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")

	err := svc.Unsubscribe(ctx, reader.ID, author.ID)
	assert.ErrorIs(t, err, service.ErrInvalidOperation)

	_, err = svc.Subscribe(ctx, reader.ID, author.ID, service.AllRecipes)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, reader.ID, author.ID))

	// subscribing again after unsubscribing works
	_, err = svc.Subscribe(ctx, reader.ID, author.ID, service.AllRecipes)
	assert.NoError(t, err)
}

func TestListSubscriptions(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	chef := testhelpers.CreateUser(t, db, "chef")
	baker := testhelpers.CreateUser(t, db, "baker")
	testhelpers.CreateUser(t, db, "stranger")
	testhelpers.CreateRecipe(t, db, chef, "Stew")
	testhelpers.CreateRecipe(t, db, baker, "Bread")
	testhelpers.CreateRecipe(t, db, baker, "Bun")

	_, err := svc.Subscribe(ctx, reader.ID, chef.ID, service.AllRecipes)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, reader.ID, baker.ID, service.AllRecipes)
	require.NoError(t, err)

	digests, count, err := svc.ListSubscriptions(ctx, reader.ID, service.PageRequest{Limit: 6, Page: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, digests, 2)

	byName := map[string]service.AuthorDigest{}
	for _, d := range digests {
		byName[d.Author.Username] = d
	}
	assert.Equal(t, int64(2), byName["baker"].RecipesCount)
	assert.Len(t, byName["baker"].Recipes, 1)
	assert.Equal(t, int64(1), byName["chef"].RecipesCount)

	page, count, err := svc.ListSubscriptions(ctx, reader.ID, service.PageRequest{Limit: 1, Page: 2}, service.AllRecipes)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, page, 1)
}

func TestSubscriptionRecipesLimit(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")
	for _, name := range []string{"One", "Two", "Three"} {
		testhelpers.CreateRecipe(t, db, author, name)
	}

	digest, err := svc.Subscribe(ctx, reader.ID, author.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, digest.Recipes)
	assert.Empty(t, digest.Recipes)
	assert.Equal(t, int64(3), digest.RecipesCount)

	digests, _, err := svc.ListSubscriptions(ctx, reader.ID, service.PageRequest{Limit: 6, Page: 1}, service.AllRecipes)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Len(t, digests[0].Recipes, 3)

	digests, _, err = svc.ListSubscriptions(ctx, reader.ID, service.PageRequest{Limit: 6, Page: 1}, 0)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Empty(t, digests[0].Recipes)
	assert.Equal(t, int64(3), digests[0].RecipesCount)
}
