package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

func (s *HTTPServer) UserCreate(c echo.Context) error {
	req := models.UserCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.users.CreateUser(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.NewUserResp(user))
}

func (s *HTTPServer) TokenCreate(c echo.Context) error {
	req := models.TokenReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := s.users.IssueToken(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TokenResp{Token: token})
}

func (s *HTTPServer) MeGet(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewUserResp(user))
}

func (s *HTTPServer) MeUpdate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.UserPatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := s.users.UpdateSelf(c.Request().Context(), user, req.Name, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewUserResp(updated))
}
