package models

import "time"

// User represents an application user stored in the users table. A user acts
// as a student by default; flipping IsTeacher opens up the tutoring surface
// (weekly plan, availability, class listings).
type User struct {
	ID                   string          `json:"id"`
	Email                string          `json:"email"`
	PasswordHash         string          `json:"-"`
	UserName             string          `json:"user_name"`
	IsTeacher            bool            `json:"is_teacher"`
	University           string          `json:"university"`
	PhotoURL             *string         `json:"photo_url,omitempty"`
	Tags                 []string        `json:"tags"`
	EnrolledCourseNumber int             `json:"enrolled_course_number"`
	TeachingCourseNumber int             `json:"teaching_course_number"`
	BaseClasses          []string        `json:"base_classes"`
	WeeklyPlan           WeeklyPlan      `json:"weekly_plan"`
	Availability         AvailabilityMap `json:"availability"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
