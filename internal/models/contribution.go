package models

import "time"

// Contribution assigns a contributor to a course together with the
// questionnaires used to evaluate them. The contribution without a contributor
// is the general contribution carrying the course-wide questionnaires.
type Contribution struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	CourseID      uint         `gorm:"not null;index:idx_contribution_course_contributor,unique" json:"course_id"`
	ContributorID *uint        `gorm:"index:idx_contribution_course_contributor,unique" json:"contributor_id"`
	Contributor   *UserProfile `gorm:"foreignKey:ContributorID" json:"contributor,omitempty"`

	Questionnaires []Questionnaire `gorm:"many2many:contribution_questionnaires" json:"questionnaires,omitempty"`

	Responsible bool `gorm:"not null;default:false" json:"responsible"`
	CanEdit     bool `gorm:"not null;default:false" json:"can_edit"`

	Order int `gorm:"not null;default:-1" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsGeneral reports whether this is the course-wide contribution.
func (c Contribution) IsGeneral() bool {
	return c.ContributorID == nil
}

// Normalize enforces that responsible contributors always have edit rights.
func (c *Contribution) Normalize() {
	if c.Responsible {
		c.CanEdit = true
	}
}
