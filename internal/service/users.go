package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

type Users struct {
	db         *gorm.DB
	logger     *zap.SugaredLogger
	bcryptCost int
	dummyHash  string
}

func NewUsers(db *gorm.DB, l *zap.SugaredLogger, cfg *config.Config) *Users {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), cost)
	if err != nil {
		l.Warnw("generate dummy password hash", "error", err)
	}
	return &Users{
		db:         db,
		logger:     l,
		bcryptCost: cost,
		dummyHash:  string(dummy),
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Users) CreateUser(ctx context.Context, email, password, name string) (*db.User, error) {
	return s.create(ctx, email, password, name, false)
}

func (s *Users) CreateSuperuser(ctx context.Context, email, password, name string) (*db.User, error) {
	return s.create(ctx, email, password, name, true)
}

func (s *Users) create(ctx context.Context, email, password, name string, super bool) (*db.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, models.NewValidationError("email", models.MsgRequired)
	}

	var count int64
	res := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "count users by email")
	}
	if count > 0 {
		return nil, models.NewValidationError("email", models.MsgEmailTaken)
	}

	hash, err := s.bcryptGen(password)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Email:       email,
		Password:    hash,
		Name:        name,
		IsActive:    true,
		IsStaff:     super,
		IsSuperuser: super,
	}
	res = s.db.WithContext(ctx).Create(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, models.NewValidationError("email", models.MsgEmailTaken)
		}
		return nil, errors.Wrap(res.Error, "create user")
	}

	s.logger.Infow("user created", "user_id", user.ID, "superuser", super)
	return &user, nil
}

func (s *Users) Get(ctx context.Context, id uint64) (*db.User, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).First(&user, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(res.Error, "get user")
	}
	return &user, nil
}

// UpdateSelf changes only the name and password of user; nil leaves a field
// untouched.
func (s *Users) UpdateSelf(ctx context.Context, user *db.User, name, password *string) (*db.User, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if password != nil {
		hash, err := s.bcryptGen(*password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	res := s.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", user.ID).Updates(updates)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update user")
	}
	return s.Get(ctx, user.ID)
}

// IssueToken checks the credentials and returns the user's bearer token,
// minting one on first login.
func (s *Users) IssueToken(ctx context.Context, email, password string) (string, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			// an unknown email costs the same bcrypt check as a wrong password
			_ = s.bcryptCheck(s.dummyHash, password)
			return "", ErrLoginUserNotFound
		}
		return "", errors.Wrap(res.Error, "find user")
	}

	if err := s.bcryptCheck(user.Password, password); err != nil {
		return "", ErrLoginPasswordDoesNotMatch
	}
	if !user.IsActive {
		return "", ErrLoginUserInactive
	}

	if user.Token != nil {
		return *user.Token, nil
	}

	token := uuid.New().String()
	res = s.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ? AND token IS NULL", user.ID).
		Update("token", token)
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "update token")
	}
	if res.RowsAffected == 0 {
		// a concurrent login minted it first
		fresh, err := s.Get(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if fresh.Token == nil {
			return "", errors.New("token vanished after concurrent update")
		}
		return *fresh.Token, nil
	}

	return token, nil
}

func (s *Users) Resolve(ctx context.Context, token string) (*db.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	user := db.User{}
	res := s.db.WithContext(ctx).Where("token = ?", token).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(res.Error, "find user by token")
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}

func (s *Users) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewValidationError("password", "Ensure this field has no more than 72 bytes.")
		}
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Users) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
