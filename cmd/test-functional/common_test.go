//go:build functional

package test_functional

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	UserResp struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	TokenResp struct {
		Token string `json:"token"`
	}

	NamedResp struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}

	RecipeResp struct {
		ID          uint64   `json:"id"`
		Title       string   `json:"title"`
		TimeMinutes int      `json:"time_minutes"`
		Price       float64  `json:"price"`
		Image       *string  `json:"image"`
		Tags        []uint64 `json:"tags"`
		Ingredients []uint64 `json:"ingredients"`
	}
)

func endpoint(path string) string {
	u := AppBaseURL
	u.Path = path
	return u.String()
}

func register(t *testing.T, ctx context.Context, email string) string {
	t.Helper()

	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": email, "password": "testpass123", "name": "Test"}).
		Post(endpoint("/api/user/create"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())

	resp, err = resty.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetResult(&TokenResp{}).
		SetBody(map[string]string{"email": email, "password": "testpass123"}).
		Post(endpoint("/api/user/token"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())

	return resp.Result().(*TokenResp).Token
}

func authed(ctx context.Context, token string) *resty.Request {
	return resty.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Token "+token)
}

func TestUserCreate(t *testing.T) {
	t.Run("successful create", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&UserResp{}).
			SetBody(`
			{"email": "Test@Gmail.com", "password": "111111111111", "name": "Test"}
		`).
			Post(endpoint("/api/user/create"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		got, ok := resp.Result().(*UserResp)
		require.True(t, ok)
		assert.Equal(t, "test@gmail.com", got.Email)
		assert.NotContains(t, resp.String(), "password")

		var (
			hash   string
			active bool
		)
		err = DBConn.QueryRow(ctx, "SELECT password, is_active FROM users WHERE email=$1", got.Email).Scan(&hash, &active)
		require.NoError(t, err)
		assert.NotEqual(t, "111111111111", hash)
		assert.True(t, active)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"something": "???"}
		`).
			Post(endpoint("/api/user/create"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestToken(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	token := register(t, ctx, "test@gmail.com")
	assert.NotEmpty(t, token)

	var stored string
	err := DBConn.QueryRow(ctx, "SELECT token FROM users WHERE email=$1", "test@gmail.com").Scan(&stored)
	require.NoError(t, err)
	assert.Equal(t, stored, token)

	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": "test@gmail.com", "password": "wrong-password"}).
		Post(endpoint("/api/user/token"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	resp, err = authed(ctx, token).SetResult(&UserResp{}).Get(endpoint("/api/user/me"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Test", resp.Result().(*UserResp).Name)
}

func TestRecipeFlow(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	token := register(t, ctx, "test@gmail.com")

	resp, err := authed(ctx, token).
		SetResult(&NamedResp{}).
		SetBody(map[string]string{"name": "Vegan"}).
		Post(endpoint("/api/recipe/tags"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	tag := resp.Result().(*NamedResp)

	resp, err = authed(ctx, token).
		SetResult(&RecipeResp{}).
		SetBody(map[string]interface{}{"title": "Curry", "time_minutes": 30, "price": 5.5, "tags": []uint64{tag.ID}}).
		Post(endpoint("/api/recipe/recipes"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	recipe := resp.Result().(*RecipeResp)
	assert.Equal(t, []uint64{tag.ID}, recipe.Tags)

	var links int
	err = DBConn.QueryRow(ctx, "SELECT count(*) FROM recipe_tags WHERE recipe_id=$1", recipe.ID).Scan(&links)
	require.NoError(t, err)
	assert.Equal(t, 1, links)

	resp, err = authed(ctx, token).
		SetResult(&[]RecipeResp{}).
		SetQueryParam("tags", strconv.FormatUint(tag.ID, 10)).
		Get(endpoint("/api/recipe/recipes"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, *resp.Result().(*[]RecipeResp), 1)

	other := register(t, ctx, "other@gmail.com")
	resp, err = authed(ctx, other).Get(endpoint("/api/recipe/recipes/" + strconv.FormatUint(recipe.ID, 10)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = authed(ctx, token).Delete(endpoint("/api/recipe/recipes/" + strconv.FormatUint(recipe.ID, 10)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	err = DBConn.QueryRow(ctx, "SELECT count(*) FROM recipe_tags WHERE recipe_id=$1", recipe.ID).Scan(&links)
	require.NoError(t, err)
	assert.Zero(t, links)
}
