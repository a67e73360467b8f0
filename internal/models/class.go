package models

import "time"

// BaseClass is a tutor's listed class offering.
type BaseClass struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	Reviews     []string  `json:"reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
