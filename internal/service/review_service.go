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

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByClass(ctx context.Context, classID string) ([]models.Review, error)
	AverageRating(ctx context.Context, classID string) (float64, int, error)
}

type reviewLiveClassRepository interface {
	GetByID(ctx context.Context, id string) (*models.LiveClass, error)
}

// SubmitReviewRequest leaves feedback for an attended live class.
type SubmitReviewRequest struct {
	LiveClassID string `json:"live_class_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"max=1000"`
}

// ReviewService records reviews and keeps the class listing's denormalised
// rating and comment list current.
type ReviewService struct {
	repo        reviewRepository
	liveClasses reviewLiveClassRepository
	classes     classRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(repo reviewRepository, liveClasses reviewLiveClassRepository, classes classRepository, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		repo:        repo,
		liveClasses: liveClasses,
		classes:     classes,
		validator:   validate,
		logger:      logger,
	}
}

// Submit stores the review and recomputes the class rating as the arithmetic
// mean of all submitted ratings.
func (s *ReviewService) Submit(ctx context.Context, reviewerID string, req SubmitReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	liveClass, err := s.liveClasses.GetByID(ctx, req.LiveClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "live class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load live class")
	}
	if liveClass.StudentID != reviewerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the attending student may review")
	}

	review := &models.Review{
		LiveClassID: liveClass.ID,
		ClassID:     liveClass.ClassID,
		ReviewerID:  reviewerID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store review")
	}

	if err := s.refreshClass(ctx, liveClass.ClassID, req.Comment); err != nil {
		s.logger.Warn("failed to refresh class rating", zap.Error(err), zap.String("class_id", liveClass.ClassID))
	}

	return review, nil
}

// ListByClass returns a class's reviews, newest first.
func (s *ReviewService) ListByClass(ctx context.Context, classID string) ([]models.Review, error) {
	reviews, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

func (s *ReviewService) refreshClass(ctx context.Context, classID, comment string) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return err
	}

	average, _, err := s.repo.AverageRating(ctx, classID)
	if err != nil {
		return err
	}

	class.Rating = average
	if comment != "" {
		class.Reviews = append(class.Reviews, comment)
	}
	return s.classes.Update(ctx, class)
}
