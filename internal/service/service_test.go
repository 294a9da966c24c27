package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/storage"
)

type fixture struct {
	db          *gorm.DB
	media       *storage.Local
	users       *Users
	tags        *Tags
	ingredients *Ingredients
	recipes     *Recipes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := dbtest.New(t)
	l := zap.NewNop().Sugar()
	media, err := storage.NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	return &fixture{
		db:          conn,
		media:       media,
		users:       NewUsers(conn, l, &config.Config{BcryptCost: bcrypt.MinCost}),
		tags:        NewTags(conn, l),
		ingredients: NewIngredients(conn, l),
		recipes:     NewRecipes(conn, l, media),
	}
}

func (f *fixture) user(t *testing.T, email string) *db.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), email, "testpass123", "")
	require.NoError(t, err)
	return u
}

func (f *fixture) tag(t *testing.T, u *db.User, name string) *db.Tag {
	t.Helper()
	tag, err := f.tags.CreateOwned(context.Background(), u.ID, name)
	require.NoError(t, err)
	return tag
}

func (f *fixture) ingredient(t *testing.T, u *db.User, name string) *db.Ingredient {
	t.Helper()
	ing, err := f.ingredients.CreateOwned(context.Background(), u.ID, name)
	require.NoError(t, err)
	return ing
}

func (f *fixture) recipe(t *testing.T, u *db.User, title string, tagIDs, ingredientIDs []uint64) *db.Recipe {
	t.Helper()
	r, err := f.recipes.Create(context.Background(), u.ID, RecipeFields{
		Title:       title,
		TimeMinutes: 10,
		Price:       5,
	}, tagIDs, ingredientIDs)
	require.NoError(t, err)
	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
