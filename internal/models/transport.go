package models

import (
	"math"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
)

// Prices are stored as decimal(10,2).
const (
	MaxPrice      = 99999999.99
	maxPriceParam = "99999999.99"
)

type UserCreateReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name"`
}

type UserPatchReq struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (r *UserPatchReq) Check() *ValidationError {
	errs := &ValidationError{}
	if r.Name != nil && *r.Name == "" {
		errs.Add("name", MsgBlank)
	}
	if r.Password != nil && len(*r.Password) < 5 {
		errs.Add("password", MsgMinLength("5"))
	}
	return errs
}

type UserResp struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserResp(u *db.User) UserResp {
	return UserResp{Email: u.Email, Name: u.Name}
}

type TokenReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResp struct {
	Token string `json:"token"`
}

// NamedReq is the write schema shared by tags and ingredients.
type NamedReq struct {
	Name string `json:"name" validate:"required"`
}

type NamedResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Named is satisfied by the catalog rows exposed as {id, name}.
type Named interface {
	PrimaryKey() uint64
	String() string
}

func NewNamedResp(n Named) NamedResp {
	return NamedResp{ID: n.PrimaryKey(), Name: n.String()}
}

func NewNamedResps[M Named](rows []M) []NamedResp {
	resp := make([]NamedResp, len(rows))
	for i := range rows {
		resp[i] = NewNamedResp(rows[i])
	}
	return resp
}

// RecipeReq is the create and full-update schema. Absent association keys
// decode to nil.
type RecipeReq struct {
	Title        string   `json:"title" validate:"required"`
	TimeMinutes  *int     `json:"time_minutes" validate:"required,min=1"`
	Price        *float64 `json:"price" validate:"required,min=0,max=99999999.99"`
	Link         string   `json:"link"`
	Instructions string   `json:"instructions"`
	Tags         []uint64 `json:"tags"`
	Ingredients  []uint64 `json:"ingredients"`
}

func (r *RecipeReq) Check() *ValidationError {
	errs := &ValidationError{}
	if r.Price != nil && !twoPlaces(*r.Price) {
		errs.Add("price", MsgPricePlaces)
	}
	return errs
}

// RecipePatchReq is the partial-update schema; nil means "leave as is".
type RecipePatchReq struct {
	Title        *string   `json:"title"`
	TimeMinutes  *int      `json:"time_minutes"`
	Price        *float64  `json:"price"`
	Link         *string   `json:"link"`
	Instructions *string   `json:"instructions"`
	Tags         *[]uint64 `json:"tags"`
	Ingredients  *[]uint64 `json:"ingredients"`
}

func (r *RecipePatchReq) Check() *ValidationError {
	errs := &ValidationError{}
	if r.Title != nil && *r.Title == "" {
		errs.Add("title", MsgBlank)
	}
	if r.TimeMinutes != nil && *r.TimeMinutes < 1 {
		errs.Add("time_minutes", MsgMinValue("1"))
	}
	if r.Price != nil {
		switch {
		case *r.Price < 0:
			errs.Add("price", MsgMinValue("0"))
		case *r.Price > MaxPrice:
			errs.Add("price", MsgMaxValue(maxPriceParam))
		case !twoPlaces(*r.Price):
			errs.Add("price", MsgPricePlaces)
		}
	}
	return errs
}

func twoPlaces(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

type RecipeResp struct {
	ID           uint64   `json:"id"`
	Title        string   `json:"title"`
	TimeMinutes  int      `json:"time_minutes"`
	Price        float64  `json:"price"`
	Link         string   `json:"link"`
	Instructions string   `json:"instructions"`
	Image        *string  `json:"image"`
	Tags         []uint64 `json:"tags"`
	Ingredients  []uint64 `json:"ingredients"`
}

type RecipeDetailResp struct {
	ID           uint64      `json:"id"`
	Title        string      `json:"title"`
	TimeMinutes  int         `json:"time_minutes"`
	Price        float64     `json:"price"`
	Link         string      `json:"link"`
	Instructions string      `json:"instructions"`
	Image        *string     `json:"image"`
	Tags         []NamedResp `json:"tags"`
	Ingredients  []NamedResp `json:"ingredients"`
}

// URLFunc turns a storage key into the URL clients fetch it from.
type URLFunc func(key string) string

func imageURL(key *string, url URLFunc) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := url(*key)
	return &u
}

func NewRecipeResp(r *db.Recipe, url URLFunc) RecipeResp {
	return RecipeResp{
		ID:           r.ID,
		Title:        r.Title,
		TimeMinutes:  r.TimeMinutes,
		Price:        r.Price,
		Link:         r.Link,
		Instructions: r.Instructions,
		Image:        imageURL(r.Image, url),
		Tags:         r.TagIDs(),
		Ingredients:  r.IngredientIDs(),
	}
}

func NewRecipeDetailResp(r *db.Recipe, url URLFunc) RecipeDetailResp {
	return RecipeDetailResp{
		ID:           r.ID,
		Title:        r.Title,
		TimeMinutes:  r.TimeMinutes,
		Price:        r.Price,
		Link:         r.Link,
		Instructions: r.Instructions,
		Image:        imageURL(r.Image, url),
		Tags:         NewNamedResps(r.Tags),
		Ingredients:  NewNamedResps(r.Ingredients),
	}
}
