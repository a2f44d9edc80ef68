package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateIngredients(t *testing.T) {
	lines := []service.ShoppingLine{
		{Name: "flour", Unit: "g", Amount: 200},
		{Name: "sugar", Unit: "g", Amount: 100},
		{Name: "flour", Unit: "g", Amount: 300},
		{Name: "flour", Unit: "kg", Amount: 1},
	}

	got := service.AggregateIngredients(lines)
	assert.Equal(t, []service.ShoppingLine{
		{Name: "flour", Unit: "g", Amount: 500},
		{Name: "sugar", Unit: "g", Amount: 100},
		{Name: "flour", Unit: "kg", Amount: 1},
	}, got)
}

func TestShoppingCartMembership(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShopListService(db)
	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup")

	got, err := svc.AddToShoppingList(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Name)

	_, err = svc.AddToShoppingList(ctx, reader.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.AddToShoppingList(ctx, reader.ID, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, svc.RemoveFromShoppingList(ctx, reader.ID, recipe.ID))
	err = svc.RemoveFromShoppingList(ctx, reader.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrInvalidOperation)
}

func TestGenerateShoppingReport(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShopListService(db)

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")

	bread := testhelpers.CreateRecipe(t, db, author, "Bread", testhelpers.Line{Ingredient: flour, Amount: 200})
	cake := testhelpers.CreateRecipe(t, db, author, "Cake",
		testhelpers.Line{Ingredient: flour, Amount: 300},
		testhelpers.Line{Ingredient: sugar, Amount: 100},
	)
	testhelpers.CreateRecipe(t, db, author, "Not in cart", testhelpers.Line{Ingredient: sugar, Amount: 999})

	_, err := svc.AddToShoppingList(ctx, reader.ID, bread.ID)
	require.NoError(t, err)
	_, err = svc.AddToShoppingList(ctx, reader.ID, cake.ID)
	require.NoError(t, err)

	report, err := svc.GenerateShoppingReport(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "flour g: 500\nsugar g: 100", report.Text())

	var pdf bytes.Buffer
	require.NoError(t, report.WritePDF(&pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))
}

func TestGenerateShoppingReportEmpty(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShopListService(db)
	reader := testhelpers.CreateUser(t, db, "reader")

	report, err := svc.GenerateShoppingReport(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.Equal(t, "", report.Text())
}

func TestShoppingReportMergesIdenticalNamesAcrossIngredients(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupSQLite(t)
	svc := service.NewShopListService(db)

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")
	saltKg := testhelpers.CreateIngredient(t, db, "salt", "kg")

	soup := testhelpers.CreateRecipe(t, db, author, "Soup",
		testhelpers.Line{Ingredient: salt, Amount: 5},
		testhelpers.Line{Ingredient: saltKg, Amount: 1},
	)
	stew := testhelpers.CreateRecipe(t, db, author, "Stew", testhelpers.Line{Ingredient: salt, Amount: 7})

	_, err := svc.AddToShoppingList(ctx, reader.ID, soup.ID)
	require.NoError(t, err)
	_, err = svc.AddToShoppingList(ctx, reader.ID, stew.ID)
	require.NoError(t, err)

	report, err := svc.GenerateShoppingReport(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "salt g: 12\nsalt kg: 1", report.Text())
}
