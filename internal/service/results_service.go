package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrResultsNotVisible indicates the user may not access the course results.
var ErrResultsNotVisible = errors.New("results not visible for this user")

// ResultsService serves the computed answer views of a course, guarded by the
// publication quorum and the user's relationship to the course.
type ResultsService interface {
	CanUserSeeResults(ctx context.Context, userID, courseID uint) (bool, error)
	CourseResults(ctx context.Context, userID, courseID uint) (dto.CourseResults, error)
}

type resultsService struct {
	courses repository.CourseRepository
	users   repository.UserRepository
	answers repository.AnswerRepository
	quorum  QuorumConfig
	logger  zerolog.Logger
}

// NewResultsService constructs the results service.
func NewResultsService(courses repository.CourseRepository, users repository.UserRepository, answers repository.AnswerRepository, quorum QuorumConfig, logger zerolog.Logger) ResultsService {
	return &resultsService{
		courses: courses,
		users:   users,
		answers: answers,
		quorum:  quorum,
		logger:  logger.With().Str("component", "results_service").Logger(),
	}
}

func (s *resultsService) CanUserSeeResults(ctx context.Context, userID, courseID uint) (bool, error) {
	course, user, err := s.load(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	return CanUserSeeResults(user, course, s.quorum), nil
}

// CourseResults returns the visible answer sets of a published course.
// Hidden text answers are excluded; reviewed text replaces the original.
func (s *resultsService) CourseResults(ctx context.Context, userID, courseID uint) (dto.CourseResults, error) {
	course, user, err := s.load(ctx, userID, courseID)
	if err != nil {
		return dto.CourseResults{}, err
	}

	if !CanUserSeeResults(user, course, s.quorum) {
		return dto.CourseResults{}, ErrResultsNotVisible
	}

	textAnswers, err := s.answers.ListTextAnswers(ctx, courseID)
	if err != nil {
		return dto.CourseResults{}, err
	}

	likertAnswers, err := s.answers.ListLikertAnswers(ctx, courseID)
	if err != nil {
		return dto.CourseResults{}, err
	}

	gradeAnswers, err := s.answers.ListGradeAnswers(ctx, courseID)
	if err != nil {
		return dto.CourseResults{}, err
	}

	results := dto.CourseResults{
		CourseID:        course.ID,
		State:           course.State,
		NumParticipants: course.NumParticipants(),
		NumVoters:       course.NumVoters(),
		MeetsQuorum:     CanPublishGrades(course, s.quorum),
	}

	for _, answer := range textAnswers {
		if answer.Hidden {
			continue
		}
		results.TextAnswers = append(results.TextAnswers, dto.NewTextAnswerResponse(answer))
	}

	results.LikertAverages = averageByQuestion(likertAnswerPairs(likertAnswers))
	results.GradeAverages = averageByQuestion(gradeAnswerPairs(gradeAnswers))

	return results, nil
}

func (s *resultsService) load(ctx context.Context, userID, courseID uint) (models.Course, models.UserProfile, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, models.UserProfile{}, ErrCourseNotFound
		}
		return models.Course{}, models.UserProfile{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, models.UserProfile{}, ErrUserNotFound
		}
		return models.Course{}, models.UserProfile{}, err
	}

	return course, user, nil
}

type questionAnswer struct {
	questionID uint
	value      int
}

func likertAnswerPairs(answers []models.LikertAnswer) []questionAnswer {
	pairs := make([]questionAnswer, 0, len(answers))
	for _, answer := range answers {
		pairs = append(pairs, questionAnswer{questionID: answer.QuestionID, value: answer.Answer})
	}
	return pairs
}

func gradeAnswerPairs(answers []models.GradeAnswer) []questionAnswer {
	pairs := make([]questionAnswer, 0, len(answers))
	for _, answer := range answers {
		pairs = append(pairs, questionAnswer{questionID: answer.QuestionID, value: answer.Answer})
	}
	return pairs
}

func averageByQuestion(pairs []questionAnswer) map[uint]float64 {
	if len(pairs) == 0 {
		return nil
	}

	sums := make(map[uint]int)
	counts := make(map[uint]int)
	for _, pair := range pairs {
		sums[pair.questionID] += pair.value
		counts[pair.questionID]++
	}

	averages := make(map[uint]float64, len(sums))
	for questionID, sum := range sums {
		averages[questionID] = float64(sum) / float64(counts[questionID])
	}
	return averages
}
