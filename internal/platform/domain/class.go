package domain

import "time"

type Class struct {
	ID        string
	Name      string
	Subject   string
	TeacherID string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
