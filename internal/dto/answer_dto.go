package dto

import (
	"time"

	"github.com/phSch08/EvaP/internal/models"
)

// ReviewAnswerRequest carries the staff-edited version of a text answer.
type ReviewAnswerRequest struct {
	Reviewed string `json:"reviewed" validate:"required,min=1,max=10000"`
}

// TextAnswerResponse serializes a text answer for review and result views.
type TextAnswerResponse struct {
	ID             uint      `json:"id"`
	QuestionID     uint      `json:"question_id"`
	ContributionID uint      `json:"contribution_id"`
	Answer         string    `json:"answer"`
	OriginalAnswer string    `json:"original_answer"`
	Checked        bool      `json:"checked"`
	Hidden         bool      `json:"hidden"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewTextAnswerResponse converts a model into a DTO.
func NewTextAnswerResponse(answer models.TextAnswer) TextAnswerResponse {
	return TextAnswerResponse{
		ID:             answer.ID,
		QuestionID:     answer.QuestionID,
		ContributionID: answer.ContributionID,
		Answer:         answer.Answer(),
		OriginalAnswer: answer.OriginalAnswer,
		Checked:        answer.Checked,
		Hidden:         answer.Hidden,
		UpdatedAt:      answer.UpdatedAt,
	}
}

// NewTextAnswerResponseSlice converts a slice of models into DTOs.
func NewTextAnswerResponseSlice(answers []models.TextAnswer) []TextAnswerResponse {
	out := make([]TextAnswerResponse, 0, len(answers))
	for _, answer := range answers {
		out = append(out, NewTextAnswerResponse(answer))
	}
	return out
}
