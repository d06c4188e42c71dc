package models

import "time"

// Questionnaire is a named, ordered collection of questions.
type Questionnaire struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:1024;uniqueIndex;not null" json:"name"`
	PublicName  string `gorm:"size:1024" json:"public_name"`
	Description string `gorm:"type:text" json:"description"`
	Teaser      string `gorm:"type:text" json:"teaser"`

	Index             int  `gorm:"not null;default:0" json:"index"`
	IsForContributors bool `gorm:"not null;default:false" json:"is_for_contributors"`
	Obsolete          bool `gorm:"not null;default:false" json:"obsolete"`

	Questions []Question `gorm:"foreignKey:QuestionnaireID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Question kinds. Answers are stored per kind rather than through inheritance.
const (
	QuestionKindText   = "T"
	QuestionKindLikert = "L"
	QuestionKindGrade  = "G"
)

// Question is a single question of a questionnaire, typed by kind.
type Question struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	QuestionnaireID uint   `gorm:"not null;index" json:"questionnaire_id"`
	Text            string `gorm:"type:text;not null" json:"text"`
	Kind            string `gorm:"size:1;not null" json:"kind"`
	Order           int    `gorm:"not null;default:0" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTextQuestion reports whether answers to this question are free text.
func (q Question) IsTextQuestion() bool {
	return q.Kind == QuestionKindText
}

// IsLikertQuestion reports whether answers use the 1..5 agreement scale.
func (q Question) IsLikertQuestion() bool {
	return q.Kind == QuestionKindLikert
}

// IsGradeQuestion reports whether answers use the 1..5 grade scale.
func (q Question) IsGradeQuestion() bool {
	return q.Kind == QuestionKindGrade
}
