package transport

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/service"
)

func (s *HTTPServer) RecipeList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	filter := service.RecipeFilter{}
	var ok bool
	if filter.Tags, ok = ParseIDList(c.QueryParam("tags")); !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'tags'")
	}
	if filter.Ingredients, ok = ParseIDList(c.QueryParam("ingredients")); !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'ingredients'")
	}

	recipes, err := s.recipes.List(c.Request().Context(), user.ID, filter)
	if err != nil {
		return err
	}

	resp := make([]models.RecipeResp, len(recipes))
	for i := range recipes {
		resp[i] = models.NewRecipeResp(&recipes[i], s.recipes.URL)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) RecipeGet(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := s.recipes.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewRecipeDetailResp(recipe, s.recipes.URL))
}

func (s *HTTPServer) RecipeCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.RecipeReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Create(c.Request().Context(), user.ID, recipeFields(&req), req.Tags, req.Ingredients)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.NewRecipeResp(recipe, s.recipes.URL))
}

func (s *HTTPServer) RecipeReplace(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.RecipeReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Replace(c.Request().Context(), user.ID, id, recipeFields(&req), req.Tags, req.Ingredients)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewRecipeResp(recipe, s.recipes.URL))
}

func (s *HTTPServer) RecipePatch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.RecipePatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Patch(c.Request().Context(), user.ID, id, service.RecipePatch{
		Title:        req.Title,
		TimeMinutes:  req.TimeMinutes,
		Price:        req.Price,
		Link:         req.Link,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewRecipeResp(recipe, s.recipes.URL))
}

func (s *HTTPServer) RecipeDelete(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeUploadImage(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	header, err := c.FormFile("image")
	if err != nil {
		return models.NewValidationError("image", models.MsgNoFile)
	}
	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errors.Wrap(err, "read upload")
	}

	recipe, err := s.recipes.UploadImage(c.Request().Context(), user.ID, id, header.Filename, data)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewRecipeDetailResp(recipe, s.recipes.URL))
}

func recipeFields(req *models.RecipeReq) service.RecipeFields {
	return service.RecipeFields{
		Title:        req.Title,
		TimeMinutes:  *req.TimeMinutes,
		Price:        *req.Price,
		Link:         req.Link,
		Instructions: req.Instructions,
	}
}
