package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/storage"
)

const imageDir = "uploads/recipe"

type (
	RecipeFields struct {
		Title        string
		TimeMinutes  int
		Price        float64
		Link         string
		Instructions string
	}

	// RecipePatch leaves nil fields untouched. A non-nil Tags or Ingredients
	// replaces that association set.
	RecipePatch struct {
		Title        *string
		TimeMinutes  *int
		Price        *float64
		Link         *string
		Instructions *string
		Tags         *[]uint64
		Ingredients  *[]uint64
	}

	// RecipeFilter matches recipes carrying any of Tags and any of
	// Ingredients. Empty lists do not filter.
	RecipeFilter struct {
		Tags        []uint64
		Ingredients []uint64
	}

	Recipes struct {
		db      *gorm.DB
		logger  *zap.SugaredLogger
		storage storage.Storage
	}
)

func NewRecipes(conn *gorm.DB, l *zap.SugaredLogger, st storage.Storage) *Recipes {
	return &Recipes{
		db:      conn,
		logger:  l,
		storage: st,
	}
}

func (s *Recipes) URL(key string) string {
	return s.storage.URL(key)
}

func (s *Recipes) List(ctx context.Context, userID uint64, f RecipeFilter) ([]db.Recipe, error) {
	q := squirrel.
		Select("r.id").From("recipes r").
		Where(squirrel.Eq{"r.user_id": userID}).
		OrderBy("r.id DESC")
	if len(f.Tags) != 0 {
		sub, args, err := squirrel.Select("rt.recipe_id").From("recipe_tags rt").
			Where(squirrel.Eq{"rt.tag_id": f.Tags}).ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "build tag filter")
		}
		q = q.Where("r.id IN ("+sub+")", args...)
	}
	if len(f.Ingredients) != 0 {
		sub, args, err := squirrel.Select("ri.recipe_id").From("recipe_ingredients ri").
			Where(squirrel.Eq{"ri.ingredient_id": f.Ingredients}).ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "build ingredient filter")
		}
		q = q.Where("r.id IN ("+sub+")", args...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	ids := make([]uint64, 0)
	res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&ids)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	recipes := make([]db.Recipe, 0, len(ids))
	if len(ids) == 0 {
		return recipes, nil
	}
	res = withAssociations(s.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id DESC").
		Find(&recipes)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load recipes")
	}

	return recipes, nil
}

func (s *Recipes) Get(ctx context.Context, userID, id uint64) (*db.Recipe, error) {
	return owned(withAssociations(s.db.WithContext(ctx)), userID, id)
}

func (s *Recipes) Create(ctx context.Context, userID uint64, f RecipeFields, tagIDs, ingredientIDs []uint64) (*db.Recipe, error) {
	recipe := db.Recipe{
		Title:        f.Title,
		TimeMinutes:  f.TimeMinutes,
		Price:        f.Price,
		Link:         f.Link,
		Instructions: f.Instructions,
		UserID:       userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, ingredients, err := loadAssociations(tx, userID, &tagIDs, &ingredientIDs)
		if err != nil {
			return err
		}

		if res := tx.Omit(clause.Associations).Create(&recipe); res.Error != nil {
			return errors.Wrap(res.Error, "create recipe")
		}
		if err := replaceAssociation(tx, &recipe, "Tags", tags); err != nil {
			return err
		}
		return replaceAssociation(tx, &recipe, "Ingredients", ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, recipe.ID)
}

// Replace overwrites every field of the recipe. Nil association lists clear
// the association.
func (s *Recipes) Replace(ctx context.Context, userID, id uint64, f RecipeFields, tagIDs, ingredientIDs []uint64) (*db.Recipe, error) {
	if tagIDs == nil {
		tagIDs = []uint64{}
	}
	if ingredientIDs == nil {
		ingredientIDs = []uint64{}
	}
	return s.Patch(ctx, userID, id, RecipePatch{
		Title:        &f.Title,
		TimeMinutes:  &f.TimeMinutes,
		Price:        &f.Price,
		Link:         &f.Link,
		Instructions: &f.Instructions,
		Tags:         &tagIDs,
		Ingredients:  &ingredientIDs,
	})
}

func (s *Recipes) Patch(ctx context.Context, userID, id uint64, p RecipePatch) (*db.Recipe, error) {
	updates := map[string]interface{}{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.TimeMinutes != nil {
		updates["time_minutes"] = *p.TimeMinutes
	}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Link != nil {
		updates["link"] = *p.Link
	}
	if p.Instructions != nil {
		updates["instructions"] = *p.Instructions
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := owned(tx, userID, id)
		if err != nil {
			return err
		}

		tags, ingredients, err := loadAssociations(tx, userID, p.Tags, p.Ingredients)
		if err != nil {
			return err
		}

		if len(updates) != 0 {
			if res := tx.Model(&db.Recipe{}).Where("id = ?", recipe.ID).Updates(updates); res.Error != nil {
				return errors.Wrap(res.Error, "update recipe")
			}
		}
		if p.Tags != nil {
			if err := replaceAssociation(tx, recipe, "Tags", tags); err != nil {
				return err
			}
		}
		if p.Ingredients != nil {
			if err := replaceAssociation(tx, recipe, "Ingredients", ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

func (s *Recipes) Delete(ctx context.Context, userID, id uint64) error {
	var image *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := owned(tx, userID, id)
		if err != nil {
			return err
		}
		image = recipe.Image
		if res := tx.Select(clause.Associations).Delete(recipe); res.Error != nil {
			return errors.Wrap(res.Error, "delete recipe")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if image != nil {
		s.removeImage(ctx, *image)
	}
	return nil
}

// UploadImage stores data under a fresh random key and points the recipe at
// it. The record is untouched when data is not an image.
func (s *Recipes) UploadImage(ctx context.Context, userID, id uint64, filename string, data []byte) (*db.Recipe, error) {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	imageType, ok := storage.ImageType(data)
	if !ok {
		return nil, models.NewValidationError("image", models.MsgInvalidImage)
	}

	key := ImageKey(filename, imageType)
	if err := s.storage.Put(ctx, key, data, storage.ContentType(imageType)); err != nil {
		return nil, errors.Wrap(err, "store image")
	}

	previous := recipe.Image
	res := s.db.WithContext(ctx).Model(&db.Recipe{}).Where("id = ?", recipe.ID).Update("image", key)
	if res.Error != nil {
		s.removeImage(ctx, key)
		return nil, errors.Wrap(res.Error, "update image")
	}
	if previous != nil && *previous != key {
		s.removeImage(ctx, *previous)
	}

	s.logger.Infow("recipe image uploaded", "recipe_id", recipe.ID, "key", key)
	recipe.Image = &key
	return recipe, nil
}

func (s *Recipes) removeImage(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warnw("remove stored image", "key", key, "error", err)
	}
}

// ImageKey builds uploads/recipe/<uuid>.<ext>. The uploaded file name's
// extension is kept only when it belongs to the detected image type.
func ImageKey(filename, imageType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), "."))
	if !storage.MatchesType(ext, imageType) {
		ext = imageType
	}
	return fmt.Sprintf("%s/%s.%s", imageDir, uuid.New().String(), ext)
}

func withAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id") }).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("ingredients.id") })
}

func owned(tx *gorm.DB, userID, id uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := tx.Where("user_id = ?", userID).First(&recipe, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(res.Error, "get recipe")
	}
	return &recipe, nil
}

func loadAssociations(tx *gorm.DB, userID uint64, tagIDs, ingredientIDs *[]uint64) ([]db.Tag, []db.Ingredient, error) {
	errs := &models.ValidationError{}

	var (
		tags        []db.Tag
		ingredients []db.Ingredient
		err         error
	)
	if tagIDs != nil {
		tags, err = loadOwned[db.Tag](tx, userID, *tagIDs, "tags", errs)
		if err != nil {
			return nil, nil, err
		}
	}
	if ingredientIDs != nil {
		ingredients, err = loadOwned[db.Ingredient](tx, userID, *ingredientIDs, "ingredients", errs)
		if err != nil {
			return nil, nil, err
		}
	}
	if !errs.Empty() {
		return nil, nil, errs
	}

	return tags, ingredients, nil
}

func replaceAssociation[M any](tx *gorm.DB, recipe *db.Recipe, name string, rows []M) error {
	assoc := tx.Model(recipe).Association(name)
	var err error
	if len(rows) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(rows)
	}
	if err != nil {
		return errors.Wrapf(err, "replace %s", strings.ToLower(name))
	}
	return nil
}
