package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

type catalogService[M models.Named] interface {
	ListOwned(ctx context.Context, userID uint64, assignedOnly bool) ([]M, error)
	CreateOwned(ctx context.Context, userID uint64, name string) (*M, error)
}

// catalogHandler serves the list/create pair shared by tags and ingredients.
type catalogHandler[M models.Named] struct {
	svc catalogService[M]
}

func newCatalogHandler[M models.Named](svc catalogService[M]) catalogHandler[M] {
	return catalogHandler[M]{svc: svc}
}

func (h catalogHandler[M]) List(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	assignedOnly, err := parseFlag(c.QueryParam("assigned_only"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'assigned_only'")
	}

	rows, err := h.svc.ListOwned(c.Request().Context(), user.ID, assignedOnly)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewNamedResps(rows))
}

func (h catalogHandler[M]) Create(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.NamedReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	row, err := h.svc.CreateOwned(c.Request().Context(), user.ID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.NewNamedResp(*row))
}

// parseFlag reads "1"/"0" style query flags; empty means false.
func parseFlag(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}
