package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrAnswerNotFound indicates the text answer was not located.
var ErrAnswerNotFound = errors.New("text answer not found")

// ErrEmptyReviewedAnswer indicates a reviewed answer that is empty after
// sanitization.
var ErrEmptyReviewedAnswer = errors.New("reviewed answer empty after sanitization")

// ReviewGate answers whether the free-text answers of a course have all been
// triaged by staff. It is consulted as the guard of review_finished and
// exposed as a review-progress query.
type ReviewGate interface {
	IsFullyChecked(ctx context.Context, courseID uint) (bool, error)
	IsFullyCheckedExcept(ctx context.Context, courseID uint, ignoredIDs []uint) (bool, error)
}

// ReviewService combines the gate with the staff triage operations on text
// answers. Original answers are immutable; review only attaches a cleaned-up
// version, marks the answer checked or hides it.
type ReviewService interface {
	ReviewGate
	ListTextAnswers(ctx context.Context, courseID uint, onlyOpen bool) ([]dto.TextAnswerResponse, error)
	CheckAnswer(ctx context.Context, answerID uint) (dto.TextAnswerResponse, error)
	HideAnswer(ctx context.Context, answerID uint) (dto.TextAnswerResponse, error)
	ReviewAnswer(ctx context.Context, answerID uint, reviewed string) (dto.TextAnswerResponse, error)
}

type reviewService struct {
	answers   repository.AnswerRepository
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReviewService constructs the review service.
func NewReviewService(answers repository.AnswerRepository, logger zerolog.Logger) ReviewService {
	return &reviewService{
		answers:   answers,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "review_service").Logger(),
		now:       time.Now,
	}
}

func (s *reviewService) IsFullyChecked(ctx context.Context, courseID uint) (bool, error) {
	count, err := s.answers.CountUnchecked(ctx, courseID, nil)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *reviewService) IsFullyCheckedExcept(ctx context.Context, courseID uint, ignoredIDs []uint) (bool, error) {
	count, err := s.answers.CountUnchecked(ctx, courseID, ignoredIDs)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *reviewService) ListTextAnswers(ctx context.Context, courseID uint, onlyOpen bool) ([]dto.TextAnswerResponse, error) {
	var (
		answers []models.TextAnswer
		err     error
	)
	if onlyOpen {
		answers, err = s.answers.ListOpenTextAnswers(ctx, courseID)
	} else {
		answers, err = s.answers.ListTextAnswers(ctx, courseID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewTextAnswerResponseSlice(answers), nil
}

func (s *reviewService) CheckAnswer(ctx context.Context, answerID uint) (dto.TextAnswerResponse, error) {
	return s.mutate(ctx, answerID, func(answer *models.TextAnswer) error {
		answer.Checked = true
		return nil
	})
}

func (s *reviewService) HideAnswer(ctx context.Context, answerID uint) (dto.TextAnswerResponse, error) {
	return s.mutate(ctx, answerID, func(answer *models.TextAnswer) error {
		answer.Hidden = true
		answer.Checked = true
		return nil
	})
}

func (s *reviewService) ReviewAnswer(ctx context.Context, answerID uint, reviewed string) (dto.TextAnswerResponse, error) {
	return s.mutate(ctx, answerID, func(answer *models.TextAnswer) error {
		clean := strings.TrimSpace(s.sanitizer.Sanitize(reviewed))
		if clean == "" {
			return ErrEmptyReviewedAnswer
		}
		answer.ReviewedAnswer = &clean
		answer.Checked = true
		return nil
	})
}

func (s *reviewService) mutate(ctx context.Context, answerID uint, apply func(*models.TextAnswer) error) (dto.TextAnswerResponse, error) {
	answer, err := s.answers.GetTextAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TextAnswerResponse{}, ErrAnswerNotFound
		}
		return dto.TextAnswerResponse{}, err
	}

	if err := apply(&answer); err != nil {
		return dto.TextAnswerResponse{}, err
	}

	if err := s.answers.UpdateTextAnswer(ctx, &answer); err != nil {
		return dto.TextAnswerResponse{}, err
	}

	s.logger.Debug().Uint("answer_id", answer.ID).Bool("checked", answer.Checked).Bool("hidden", answer.Hidden).Msg("text answer reviewed")
	return dto.NewTextAnswerResponse(answer), nil
}
