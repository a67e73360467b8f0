package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/teach-app/teach-api/internal/models"
)

// ReviewRepository persists reviews left after live classes.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO reviews (id, live_class_id, class_id, reviewer_id, rating, comment, created_at)
		VALUES (:id, :live_class_id, :class_id, :reviewer_id, :rating, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByClass returns the reviews of a class, newest first.
func (r *ReviewRepository) ListByClass(ctx context.Context, classID string) ([]models.Review, error) {
	const query = `SELECT id, live_class_id, class_id, reviewer_id, rating, comment, created_at FROM reviews WHERE class_id = $1 ORDER BY created_at DESC`
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, classID); err != nil {
		return nil, fmt.Errorf("list reviews by class: %w", err)
	}
	return reviews, nil
}

// AverageRating returns the mean rating of a class and the number of reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, classID string) (float64, int, error) {
	const query = `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE class_id = $1`
	var average float64
	var count int
	if err := r.db.QueryRowContext(ctx, query, classID).Scan(&average, &count); err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return average, count, nil
}
