package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SearchByName(ctx context.Context, prefix string, limit int) ([]models.User, error)
	ListRecommended(ctx context.Context, n int) ([]models.User, error)
}

type userCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// UpdateProfileRequest rewrites the editable profile fields.
type UpdateProfileRequest struct {
	UserName   string   `json:"user_name" validate:"required,min=2,max=64"`
	University string   `json:"university" validate:"max=128"`
	Tags       []string `json:"tags" validate:"max=20,dive,min=1,max=48"`
	PhotoURL   *string  `json:"photo_url" validate:"omitempty,url"`
}

// UserService handles profile reads and updates.
type UserService struct {
	repo             userRepository
	cache            userCache
	recommendedCount int
	recommendedTTL   time.Duration
	validator        *validator.Validate
	logger           *zap.Logger
}

// NewUserService constructs the service. The cache may be nil.
func NewUserService(repo userRepository, cache userCache, recommendedCount int, recommendedTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recommendedCount <= 0 {
		recommendedCount = 2
	}
	return &UserService{
		repo:             repo,
		cache:            cache,
		recommendedCount: recommendedCount,
		recommendedTTL:   recommendedTTL,
		validator:        validate,
		logger:           logger,
	}
}

const recommendedCacheKey = "users:recommended"

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// UpdateProfile rewrites the caller's editable profile fields and saves the
// whole record back.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.UserName = req.UserName
	user.University = req.University
	user.PhotoURL = req.PhotoURL
	if req.Tags != nil {
		user.Tags = req.Tags
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// SetTeacherStatus flips whether the user offers tutoring.
func (s *UserService) SetTeacherStatus(ctx context.Context, userID string, isTeacher bool) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsTeacher = isTeacher
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher status")
	}
	return user, nil
}

// Search returns users whose name begins with the query, case-insensitively.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if query == "" {
		return []models.User{}, nil
	}
	users, err := s.repo.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search users")
	}
	return users, nil
}

// Recommended returns a small fixed-size tutor sample for the landing page.
func (s *UserService) Recommended(ctx context.Context) ([]models.User, error) {
	if s.cache != nil {
		var cached []models.User
		if err := s.cache.Get(ctx, recommendedCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("recommended cache read failed", zap.Error(err))
		}
	}

	users, err := s.repo.ListRecommended(ctx, s.recommendedCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recommended users")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, recommendedCacheKey, users, s.recommendedTTL); err != nil {
			s.logger.Warn("recommended cache write failed", zap.Error(err))
		}
	}
	return users, nil
}
