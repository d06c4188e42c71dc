package models

import "time"

// TextAnswer is a free-form answer to a text question. For anonymity the
// answering user is never stored. OriginalAnswer is immutable after
// submission; staff review may attach a cleaned-up ReviewedAnswer, mark the
// answer checked, or hide it from publication.
type TextAnswer struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	QuestionID     uint    `gorm:"not null;index" json:"question_id"`
	ContributionID uint    `gorm:"not null;index" json:"contribution_id"`
	OriginalAnswer string  `gorm:"type:text;not null" json:"original_answer"`
	ReviewedAnswer *string `gorm:"type:text" json:"reviewed_answer"`

	Checked bool `gorm:"not null;default:false" json:"checked"`
	Hidden  bool `gorm:"not null;default:false" json:"hidden"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Answer returns the effective answer text: the reviewed version if one
// exists, the original otherwise.
func (a TextAnswer) Answer() string {
	if a.ReviewedAnswer != nil && *a.ReviewedAnswer != "" {
		return *a.ReviewedAnswer
	}
	return a.OriginalAnswer
}

// LikertAnswer is an answer on the agreement scale, 1 being "strongly agree"
// and 5 being "strongly disagree".
type LikertAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	QuestionID     uint      `gorm:"not null;index" json:"question_id"`
	ContributionID uint      `gorm:"not null;index" json:"contribution_id"`
	Answer         int       `gorm:"not null" json:"answer"`
	CreatedAt      time.Time `json:"created_at"`
}

// GradeAnswer is an answer on the grade scale, 1 being best and 5 worst.
type GradeAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	QuestionID     uint      `gorm:"not null;index" json:"question_id"`
	ContributionID uint      `gorm:"not null;index" json:"contribution_id"`
	Answer         int       `gorm:"not null" json:"answer"`
	CreatedAt      time.Time `json:"created_at"`
}
