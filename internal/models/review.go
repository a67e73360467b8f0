package models

import "time"

// Review is feedback left by a student after a live class.
type Review struct {
	ID          string    `db:"id" json:"id"`
	LiveClassID string    `db:"live_class_id" json:"live_class_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	ReviewerID  string    `db:"reviewer_id" json:"reviewer_id"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     string    `db:"comment" json:"comment"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
