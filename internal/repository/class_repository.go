package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/teach-app/teach-api/internal/models"
)

// ClassRepository persists class listings. Review comments are denormalised
// onto the class row as a JSONB array, mirroring their presence on the class
// document consumed by clients.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, name, description, teacher_id, price, rating, reviews, created_at, updated_at`

type classRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	TeacherID   string         `db:"teacher_id"`
	Price       float64        `db:"price"`
	Rating      float64        `db:"rating"`
	Reviews     types.JSONText `db:"reviews"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r classRow) toModel() (*models.BaseClass, error) {
	class := &models.BaseClass{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		TeacherID:   r.TeacherID,
		Price:       r.Price,
		Rating:      r.Rating,
		Reviews:     []string{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Reviews) > 0 {
		if err := json.Unmarshal(r.Reviews, &class.Reviews); err != nil {
			return nil, fmt.Errorf("decode reviews: %w", err)
		}
	}
	return class, nil
}

// Create inserts a new class listing.
func (r *ClassRepository) Create(ctx context.Context, class *models.BaseClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	reviews, err := marshalOrDefault(class.Reviews, "[]")
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	row := classRow{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		TeacherID:   class.TeacherID,
		Price:       class.Price,
		Rating:      class.Rating,
		Reviews:     reviews,
		CreatedAt:   class.CreatedAt,
		UpdatedAt:   class.UpdatedAt,
	}

	const query = `INSERT INTO base_classes (id, name, description, teacher_id, price, rating, reviews, created_at, updated_at)
		VALUES (:id, :name, :description, :teacher_id, :price, :rating, :reviews, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// GetByID returns a class by identifier.
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.BaseClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM base_classes WHERE id = $1 LIMIT 1`, classColumns)
	var row classRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return row.toModel()
}

// ListByTeacher returns a tutor's class listings in creation order.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.BaseClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM base_classes WHERE teacher_id = $1 ORDER BY created_at ASC`, classColumns)
	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}

	classes := make([]models.BaseClass, 0, len(rows))
	for _, row := range rows {
		class, err := row.toModel()
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, nil
}

// Update overwrites a class listing.
func (r *ClassRepository) Update(ctx context.Context, class *models.BaseClass) error {
	class.UpdatedAt = time.Now().UTC()

	reviews, err := marshalOrDefault(class.Reviews, "[]")
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	row := classRow{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		TeacherID:   class.TeacherID,
		Price:       class.Price,
		Rating:      class.Rating,
		Reviews:     reviews,
		CreatedAt:   class.CreatedAt,
		UpdatedAt:   class.UpdatedAt,
	}

	const query = `UPDATE base_classes SET name = :name, description = :description, price = :price, rating = :rating, reviews = :reviews, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class listing.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM base_classes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
