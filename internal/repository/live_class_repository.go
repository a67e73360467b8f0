package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/teach-app/teach-api/internal/models"
)

// LiveClassRepository persists booked live sessions.
type LiveClassRepository struct {
	db *sqlx.DB
}

// NewLiveClassRepository constructs the repository.
func NewLiveClassRepository(db *sqlx.DB) *LiveClassRepository {
	return &LiveClassRepository{db: db}
}

const liveClassColumns = `id, name, class_id, teacher_id, student_id, date, duration, note, created_at`

// Create inserts a booked session.
func (r *LiveClassRepository) Create(ctx context.Context, liveClass *models.LiveClass) error {
	if liveClass.ID == "" {
		liveClass.ID = uuid.NewString()
	}
	if liveClass.CreatedAt.IsZero() {
		liveClass.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO live_classes (id, name, class_id, teacher_id, student_id, date, duration, note, created_at)
		VALUES (:id, :name, :class_id, :teacher_id, :student_id, :date, :duration, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, liveClass); err != nil {
		return fmt.Errorf("create live class: %w", err)
	}
	return nil
}

// GetByID returns a booked session by identifier.
func (r *LiveClassRepository) GetByID(ctx context.Context, id string) (*models.LiveClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM live_classes WHERE id = $1 LIMIT 1`, liveClassColumns)
	var liveClass models.LiveClass
	if err := r.db.GetContext(ctx, &liveClass, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find live class by id: %w", err)
	}
	return &liveClass, nil
}

// ListTeaching returns the sessions a tutor is giving, soonest first.
func (r *LiveClassRepository) ListTeaching(ctx context.Context, teacherID string) ([]models.LiveClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM live_classes WHERE teacher_id = $1 ORDER BY date ASC`, liveClassColumns)
	var liveClasses []models.LiveClass
	if err := r.db.SelectContext(ctx, &liveClasses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teaching live classes: %w", err)
	}
	return liveClasses, nil
}

// ListLearning returns the sessions a student is attending, soonest first.
func (r *LiveClassRepository) ListLearning(ctx context.Context, studentID string) ([]models.LiveClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM live_classes WHERE student_id = $1 ORDER BY date ASC`, liveClassColumns)
	var liveClasses []models.LiveClass
	if err := r.db.SelectContext(ctx, &liveClasses, query, studentID); err != nil {
		return nil, fmt.Errorf("list learning live classes: %w", err)
	}
	return liveClasses, nil
}
