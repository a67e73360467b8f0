package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teach-app/teach-api/internal/models"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
)

type classRepository interface {
	Create(ctx context.Context, class *models.BaseClass) error
	GetByID(ctx context.Context, id string) (*models.BaseClass, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BaseClass, error)
	Update(ctx context.Context, class *models.BaseClass) error
	Delete(ctx context.Context, id string) error
}

type classUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// CreateClassRequest lists a new class.
type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=128"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"min=0,max=10000"`
}

// UpdateClassRequest edits a listing.
type UpdateClassRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=128"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"min=0,max=10000"`
}

// ClassService manages class listings.
type ClassService struct {
	repo      classRepository
	users     classUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the service.
func NewClassService(repo classRepository, users classUserRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, users: users, validator: validate, logger: logger}
}

// Create lists a new class for a tutor. The class id is also appended to the
// tutor's base_classes and the teaching counter bumped, keeping the user
// record's denormalised view in step.
func (s *ClassService) Create(ctx context.Context, teacherID string, req CreateClassRequest) (*models.BaseClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.IsTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only tutors list classes")
	}

	class := &models.BaseClass{
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   teacherID,
		Price:       req.Price,
		Reviews:     []string{},
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	user.BaseClasses = append(user.BaseClasses, class.ID)
	user.TeachingCourseNumber++
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("failed to attach class to user record", zap.Error(err), zap.String("class_id", class.ID))
	}

	return class, nil
}

// Get returns one class listing.
func (s *ClassService) Get(ctx context.Context, id string) (*models.BaseClass, error) {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// ListByTeacher returns a tutor's listings.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID string) ([]models.BaseClass, error) {
	classes, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Update edits a listing owned by the caller.
func (s *ClassService) Update(ctx context.Context, teacherID, classID string, req UpdateClassRequest) (*models.BaseClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another tutor")
	}

	class.Name = req.Name
	class.Description = req.Description
	class.Price = req.Price

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a listing owned by the caller and detaches it from the
// tutor's user record.
func (s *ClassService) Delete(ctx context.Context, teacherID, classID string) error {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return err
	}
	if class.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "class belongs to another tutor")
	}

	if err := s.repo.Delete(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}

	if user, err := s.users.FindByID(ctx, teacherID); err == nil {
		kept := user.BaseClasses[:0]
		for _, id := range user.BaseClasses {
			if id != classID {
				kept = append(kept, id)
			}
		}
		user.BaseClasses = kept
		if user.TeachingCourseNumber > 0 {
			user.TeachingCourseNumber--
		}
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Warn("failed to detach class from user record", zap.Error(err), zap.String("class_id", classID))
		}
	}
	return nil
}
