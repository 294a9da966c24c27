package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email       string  `gorm:"unique;not null"`
		Password    string  `gorm:"not null"`
		Name        string  `gorm:"not null;default:''"`
		Token       *string `gorm:"uniqueIndex"`
		IsActive    bool    `gorm:"not null;default:true"`
		IsStaff     bool    `gorm:"not null;default:false"`
		IsSuperuser bool    `gorm:"not null;default:false"`
		Recipes     []Recipe
		Tags        []Tag
		Ingredients []Ingredient
	}

	Tag struct {
		GormForkedModel
		Name    string   `gorm:"not null"`
		UserID  uint64   `gorm:"not null;index"`
		User    User     `gorm:"constraint:OnDelete:CASCADE;"`
		Recipes []Recipe `gorm:"many2many:recipe_tags;"`
	}

	Ingredient struct {
		GormForkedModel
		Name    string   `gorm:"not null"`
		UserID  uint64   `gorm:"not null;index"`
		User    User     `gorm:"constraint:OnDelete:CASCADE;"`
		Recipes []Recipe `gorm:"many2many:recipe_ingredients;"`
	}

	Recipe struct {
		GormForkedModel
		Title        string  `gorm:"not null"`
		TimeMinutes  int     `gorm:"not null"`
		Price        float64 `gorm:"type:decimal(10,2);not null"`
		Link         string  `gorm:"not null;default:''"`
		Instructions string  `gorm:"type:text;not null;default:''"`
		Image        *string
		UserID       uint64       `gorm:"not null;index"`
		User         User         `gorm:"constraint:OnDelete:CASCADE;"`
		Tags         []Tag        `gorm:"many2many:recipe_tags;"`
		Ingredients  []Ingredient `gorm:"many2many:recipe_ingredients;"`
	}
)

func (u User) String() string { return u.Email }

func (t Tag) String() string     { return t.Name }
func (t Tag) PrimaryKey() uint64 { return t.ID }

func (i Ingredient) String() string     { return i.Name }
func (i Ingredient) PrimaryKey() uint64 { return i.ID }

func (r Recipe) String() string { return r.Title }

// TagIDs and IngredientIDs assume the associations were preloaded.
func (r Recipe) TagIDs() []uint64 {
	ids := make([]uint64, len(r.Tags))
	for i := range r.Tags {
		ids[i] = r.Tags[i].ID
	}
	return ids
}

func (r Recipe) IngredientIDs() []uint64 {
	ids := make([]uint64, len(r.Ingredients))
	for i := range r.Ingredients {
		ids[i] = r.Ingredients[i].ID
	}
	return ids
}

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	newLogger := logger.New(zap.NewStdLog(l.Desugar()), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DBDriverSQLite:
		dialector = sqlite.Open(cfg.DBPath)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	if err := db.AutoMigrate(&Ingredient{}); err != nil {
		return errors.Wrap(err, "migrate ingredient")
	}
	if err := db.AutoMigrate(&Recipe{}); err != nil {
		return errors.Wrap(err, "migrate recipe")
	}
	return nil
}
