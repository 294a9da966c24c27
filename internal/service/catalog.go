package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

// Catalog serves a user-owned, name-only entity linked to recipes through
// joinTable.
type Catalog[M models.Named] struct {
	db         *gorm.DB
	logger     *zap.SugaredLogger
	kind       string
	joinTable  string
	joinColumn string
	build      func(userID uint64, name string) M
}

type (
	Tags        = Catalog[db.Tag]
	Ingredients = Catalog[db.Ingredient]
)

func NewTags(conn *gorm.DB, l *zap.SugaredLogger) *Tags {
	return &Tags{
		db:         conn,
		logger:     l,
		kind:       "tag",
		joinTable:  "recipe_tags",
		joinColumn: "tag_id",
		build: func(userID uint64, name string) db.Tag {
			return db.Tag{Name: name, UserID: userID}
		},
	}
}

func NewIngredients(conn *gorm.DB, l *zap.SugaredLogger) *Ingredients {
	return &Ingredients{
		db:         conn,
		logger:     l,
		kind:       "ingredient",
		joinTable:  "recipe_ingredients",
		joinColumn: "ingredient_id",
		build: func(userID uint64, name string) db.Ingredient {
			return db.Ingredient{Name: name, UserID: userID}
		},
	}
}

// ListOwned returns userID's rows by name descending. assignedOnly keeps rows
// attached to at least one recipe.
func (c *Catalog[M]) ListOwned(ctx context.Context, userID uint64, assignedOnly bool) ([]M, error) {
	rows := make([]M, 0)

	q := c.db.WithContext(ctx).Where("user_id = ?", userID)
	if assignedOnly {
		q = q.Where("id IN (?)", c.db.Table(c.joinTable).Select(c.joinColumn))
	}
	res := q.Order("name DESC").Find(&rows)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "list %s", c.kind)
	}

	return rows, nil
}

func (c *Catalog[M]) CreateOwned(ctx context.Context, userID uint64, name string) (*M, error) {
	if name == "" {
		return nil, models.NewValidationError("name", models.MsgRequired)
	}

	row := c.build(userID, name)
	res := c.db.WithContext(ctx).Create(&row)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "create %s", c.kind)
	}

	return &row, nil
}

// loadOwned fetches the rows with the given ids that belong to userID. Any id
// that is missing or owned by someone else is reported against field.
func loadOwned[M models.Named](tx *gorm.DB, userID uint64, ids []uint64, field string, errs *models.ValidationError) ([]M, error) {
	rows := make([]M, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}

	res := tx.Where("user_id = ? AND id IN ?", userID, ids).Order("id").Find(&rows)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "load %s", field)
	}

	found := make(map[uint64]struct{}, len(rows))
	for i := range rows {
		found[rows[i].PrimaryKey()] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			errs.Add(field, models.MsgInvalidPK(id))
			found[id] = struct{}{}
		}
	}

	return rows, nil
}
