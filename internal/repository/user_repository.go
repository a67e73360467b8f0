package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/teach-app/teach-api/internal/models"
)

// UserRepository provides database access for user records. The schedule
// related fields (weekly plan, availability map, tags, class ids) live in
// JSONB columns so a user round-trips as one document, matching the
// full-record save semantics of the schedule flow.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, user_name, is_teacher, university, photo_url, tags, enrolled_course_number, teaching_course_number, base_classes, weekly_plan, availability, created_at, updated_at`

type userRow struct {
	ID                   string         `db:"id"`
	Email                string         `db:"email"`
	PasswordHash         string         `db:"password_hash"`
	UserName             string         `db:"user_name"`
	IsTeacher            bool           `db:"is_teacher"`
	University           string         `db:"university"`
	PhotoURL             *string        `db:"photo_url"`
	Tags                 types.JSONText `db:"tags"`
	EnrolledCourseNumber int            `db:"enrolled_course_number"`
	TeachingCourseNumber int            `db:"teaching_course_number"`
	BaseClasses          types.JSONText `db:"base_classes"`
	WeeklyPlan           types.JSONText `db:"weekly_plan"`
	Availability         types.JSONText `db:"availability"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r userRow) toModel() (*models.User, error) {
	user := &models.User{
		ID:                   r.ID,
		Email:                r.Email,
		PasswordHash:         r.PasswordHash,
		UserName:             r.UserName,
		IsTeacher:            r.IsTeacher,
		University:           r.University,
		PhotoURL:             r.PhotoURL,
		EnrolledCourseNumber: r.EnrolledCourseNumber,
		TeachingCourseNumber: r.TeachingCourseNumber,
		Tags:                 []string{},
		BaseClasses:          []string{},
		Availability:         models.AvailabilityMap{},
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}

	if len(r.Tags) > 0 {
		if err := json.Unmarshal(r.Tags, &user.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(r.BaseClasses) > 0 {
		if err := json.Unmarshal(r.BaseClasses, &user.BaseClasses); err != nil {
			return nil, fmt.Errorf("decode base classes: %w", err)
		}
	}
	if len(r.WeeklyPlan) > 0 {
		if err := json.Unmarshal(r.WeeklyPlan, &user.WeeklyPlan); err != nil {
			return nil, fmt.Errorf("decode weekly plan: %w", err)
		}
	}
	if len(r.Availability) > 0 {
		if err := json.Unmarshal(r.Availability, &user.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	return user, nil
}

func rowFromModel(user *models.User) (*userRow, error) {
	tags, err := marshalOrDefault(user.Tags, "[]")
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	baseClasses, err := marshalOrDefault(user.BaseClasses, "[]")
	if err != nil {
		return nil, fmt.Errorf("encode base classes: %w", err)
	}
	plan, err := json.Marshal(user.WeeklyPlan)
	if err != nil {
		return nil, fmt.Errorf("encode weekly plan: %w", err)
	}
	availability, err := marshalOrDefault(user.Availability, "{}")
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}

	return &userRow{
		ID:                   user.ID,
		Email:                user.Email,
		PasswordHash:         user.PasswordHash,
		UserName:             user.UserName,
		IsTeacher:            user.IsTeacher,
		University:           user.University,
		PhotoURL:             user.PhotoURL,
		Tags:                 tags,
		EnrolledCourseNumber: user.EnrolledCourseNumber,
		TeachingCourseNumber: user.TeachingCourseNumber,
		BaseClasses:          baseClasses,
		WeeklyPlan:           plan,
		Availability:         availability,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.UpdatedAt,
	}, nil
}

func marshalOrDefault(v interface{}, empty string) (types.JSONText, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(bytes) == "null" {
		return types.JSONText(empty), nil
	}
	return types.JSONText(bytes), nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	row, err := rowFromModel(user)
	if err != nil {
		return err
	}

	const query = `INSERT INTO users (id, email, password_hash, user_name, is_teacher, university, photo_url, tags, enrolled_course_number, teaching_course_number, base_classes, weekly_plan, availability, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :user_name, :is_teacher, :university, :photo_url, :tags, :enrolled_course_number, :teaching_course_number, :base_classes, :weekly_plan, :availability, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return row.toModel()
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return row.toModel()
}

// Update overwrites the stored record with the given user wholesale. There is
// no partial patching and no version check: the last writer wins, exactly as
// the schedule save flow expects.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	row, err := rowFromModel(user)
	if err != nil {
		return err
	}

	const query = `UPDATE users SET email = :email, password_hash = :password_hash, user_name = :user_name, is_teacher = :is_teacher, university = :university, photo_url = :photo_url, tags = :tags, enrolled_course_number = :enrolled_course_number, teaching_course_number = :teaching_course_number, base_classes = :base_classes, weekly_plan = :weekly_plan, availability = :availability, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SearchByName returns users whose name starts with the given prefix,
// case-insensitively, in name order.
func (r *UserRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(user_name) LIKE $1 ORDER BY user_name ASC LIMIT $2`, userColumns)
	pattern := strings.ToLower(prefix) + "%"

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, pattern, limit); err != nil {
		return nil, fmt.Errorf("search users by name: %w", err)
	}
	return rowsToModels(rows)
}

// ListRecommended returns the first n user records.
func (r *UserRepository) ListRecommended(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		n = 2
	}
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at ASC LIMIT $1`, userColumns)
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, n); err != nil {
		return nil, fmt.Errorf("list recommended users: %w", err)
	}
	return rowsToModels(rows)
}

func rowsToModels(rows []userRow) ([]models.User, error) {
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// CreateRefreshToken stores a refresh token.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at) VALUES (:id, :user_id, :token, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a stored refresh token by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &stored, nil
}

// RevokeRefreshToken marks a refresh token revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every outstanding token of a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
