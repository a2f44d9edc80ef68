package main

import (
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadIngredients(t *testing.T) {
	got, err := readIngredients(strings.NewReader(`[
		{"name": " абрикосовое варенье ", "measurement_unit": "г"},
		{"name": "flour", "measurement_unit": "g"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []models.Ingredient{
		{Name: "абрикосовое варенье", MeasurementUnit: "г"},
		{Name: "flour", MeasurementUnit: "g"},
	}, got)
}

func TestReadIngredientsRejectsIncompleteEntries(t *testing.T) {
	_, err := readIngredients(strings.NewReader(`[{"name": "salt"}]`))
	assert.Error(t, err)

	_, err = readIngredients(strings.NewReader(`{"name": "salt"}`))
	assert.Error(t, err)
}
