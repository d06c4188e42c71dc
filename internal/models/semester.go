package models

import (
	"errors"
	"time"
)

// ErrMixedArchivalState indicates a semester whose courses disagree on archival,
// which should be impossible outside of a bug or a broken migration.
var ErrMixedArchivalState = errors.New("semester contains both archived and unarchived courses")

// Semester groups the courses of one term, e.g. the winter term 2011/12.
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:1024;uniqueIndex;not null" json:"name"`
	Courses   []Course  `gorm:"foreignKey:SemesterID" json:"courses,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsArchived reports whether the semester as a whole is archived. A semester
// without courses counts as not archived. Mixed archival state is an invariant
// violation and is surfaced instead of being silently tolerated.
func (s Semester) IsArchived() (bool, error) {
	if len(s.Courses) == 0 {
		return false, nil
	}

	first := s.Courses[0].IsArchived()
	for _, course := range s.Courses[1:] {
		if course.IsArchived() != first {
			return false, ErrMixedArchivalState
		}
	}

	return first, nil
}

// IsArchiveable reports whether every course in the semester may be archived.
func (s Semester) IsArchiveable() bool {
	for _, course := range s.Courses {
		if !course.IsArchiveable() {
			return false
		}
	}
	return true
}

// CanStaffDelete reports whether staff may delete the whole semester.
func (s Semester) CanStaffDelete() bool {
	for _, course := range s.Courses {
		if !course.CanStaffDelete() {
			return false
		}
	}
	return true
}
