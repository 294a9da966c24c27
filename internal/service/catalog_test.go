package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

func TestCatalogListOwned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "test@email.com")
	other := f.user(t, "other@email.com")

	f.tag(t, u, "Italian")
	f.tag(t, u, "German")
	f.tag(t, other, "Seafood")

	tags, err := f.tags.ListOwned(ctx, u.ID, false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Italian", tags[0].Name)
	assert.Equal(t, "German", tags[1].Name)
}

func TestCatalogAssignedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "test@email.com")

	breakfast := f.tag(t, u, "Breakfast")
	f.tag(t, u, "Dinner")
	f.recipe(t, u, "Bacon Omelette", []uint64{breakfast.ID}, nil)
	f.recipe(t, u, "Biscuits and Sausage Gravy", []uint64{breakfast.ID}, nil)

	tags, err := f.tags.ListOwned(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, breakfast.ID, tags[0].ID)

	eggs := f.ingredient(t, u, "Eggs")
	f.ingredient(t, u, "Kale")
	f.recipe(t, u, "Scramble", nil, []uint64{eggs.ID})

	ingredients, err := f.ingredients.ListOwned(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Eggs", ingredients[0].Name)
}

func TestCatalogCreateOwned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "test@email.com")

	ing, err := f.ingredients.CreateOwned(ctx, u.ID, "Cabbage")
	require.NoError(t, err)
	assert.Equal(t, "Cabbage", ing.Name)
	assert.Equal(t, u.ID, ing.UserID)
	assert.NotZero(t, ing.ID)

	_, err = f.tags.CreateOwned(ctx, u.ID, "")
	_, ok := err.(*models.ValidationError)
	assert.True(t, ok)
}
