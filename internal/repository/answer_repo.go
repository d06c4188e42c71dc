package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
)

// AnswerRepository handles persistence for the per-kind answer sets of a
// course. The course-wide views are computed queries across contributions,
// not stored collections.
type AnswerRepository interface {
	GetTextAnswer(ctx context.Context, id uint) (models.TextAnswer, error)
	UpdateTextAnswer(ctx context.Context, answer *models.TextAnswer) error
	ListTextAnswers(ctx context.Context, courseID uint) ([]models.TextAnswer, error)
	ListOpenTextAnswers(ctx context.Context, courseID uint) ([]models.TextAnswer, error)
	CountUnchecked(ctx context.Context, courseID uint, excludeIDs []uint) (int64, error)
	ListLikertAnswers(ctx context.Context, courseID uint) ([]models.LikertAnswer, error)
	ListGradeAnswers(ctx context.Context, courseID uint) ([]models.GradeAnswer, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository instantiates a GORM-backed repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) GetTextAnswer(ctx context.Context, id uint) (models.TextAnswer, error) {
	var answer models.TextAnswer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return models.TextAnswer{}, err
	}
	return answer, nil
}

func (r *answerRepository) UpdateTextAnswer(ctx context.Context, answer *models.TextAnswer) error {
	return r.db.WithContext(ctx).Save(answer).Error
}

func (r *answerRepository) ListTextAnswers(ctx context.Context, courseID uint) ([]models.TextAnswer, error) {
	var answers []models.TextAnswer
	if err := r.courseAnswers(ctx, courseID, &models.TextAnswer{}).
		Order("text_answers.id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) ListOpenTextAnswers(ctx context.Context, courseID uint) ([]models.TextAnswer, error) {
	var answers []models.TextAnswer
	if err := r.courseAnswers(ctx, courseID, &models.TextAnswer{}).
		Where("text_answers.checked = ?", false).
		Order("text_answers.id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) CountUnchecked(ctx context.Context, courseID uint, excludeIDs []uint) (int64, error) {
	return countUncheckedAnswers(r.db.WithContext(ctx), courseID, excludeIDs)
}

func (r *answerRepository) ListLikertAnswers(ctx context.Context, courseID uint) ([]models.LikertAnswer, error) {
	var answers []models.LikertAnswer
	if err := r.db.WithContext(ctx).Model(&models.LikertAnswer{}).
		Joins("JOIN contributions ON contributions.id = likert_answers.contribution_id").
		Where("contributions.course_id = ?", courseID).
		Order("likert_answers.id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) ListGradeAnswers(ctx context.Context, courseID uint) ([]models.GradeAnswer, error) {
	var answers []models.GradeAnswer
	if err := r.db.WithContext(ctx).Model(&models.GradeAnswer{}).
		Joins("JOIN contributions ON contributions.id = grade_answers.contribution_id").
		Where("contributions.course_id = ?", courseID).
		Order("grade_answers.id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) courseAnswers(ctx context.Context, courseID uint, model interface{}) *gorm.DB {
	return r.db.WithContext(ctx).Model(model).
		Joins("JOIN contributions ON contributions.id = text_answers.contribution_id").
		Where("contributions.course_id = ?", courseID)
}
