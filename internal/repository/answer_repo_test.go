package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
)

type answerFixture struct {
	course       models.Course
	otherCourse  models.Course
	contribution models.Contribution
	question     models.Question
}

func seedAnswerFixture(t *testing.T, db *gorm.DB) answerFixture {
	t.Helper()

	semester := models.Semester{Name: "WS 2011/12"}
	require.NoError(t, db.Create(&semester).Error)

	course := models.Course{SemesterID: semester.ID, Name: "Math 101", State: models.StateEvaluated}
	require.NoError(t, db.Create(&course).Error)
	otherCourse := models.Course{SemesterID: semester.ID, Name: "Art", State: models.StateEvaluated}
	require.NoError(t, db.Create(&otherCourse).Error)

	contribution := models.Contribution{CourseID: course.ID}
	require.NoError(t, db.Create(&contribution).Error)

	questionnaire := models.Questionnaire{Name: "General"}
	require.NoError(t, db.Create(&questionnaire).Error)
	question := models.Question{QuestionnaireID: questionnaire.ID, Text: "Comments?", Kind: models.QuestionKindText}
	require.NoError(t, db.Create(&question).Error)

	return answerFixture{course: course, otherCourse: otherCourse, contribution: contribution, question: question}
}

func TestAnswerRepositoryTextAnswersScopedToCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnswerRepository(db)
	fixture := seedAnswerFixture(t, db)

	otherContribution := models.Contribution{CourseID: fixture.otherCourse.ID}
	require.NoError(t, db.Create(&otherContribution).Error)

	checked := models.TextAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, OriginalAnswer: "good", Checked: true}
	require.NoError(t, db.Create(&checked).Error)
	open := models.TextAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, OriginalAnswer: "too fast"}
	require.NoError(t, db.Create(&open).Error)
	foreign := models.TextAnswer{QuestionID: fixture.question.ID, ContributionID: otherContribution.ID, OriginalAnswer: "elsewhere"}
	require.NoError(t, db.Create(&foreign).Error)

	all, err := repo.ListTextAnswers(context.Background(), fixture.course.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, checked.ID, all[0].ID)

	openOnly, err := repo.ListOpenTextAnswers(context.Background(), fixture.course.ID)
	require.NoError(t, err)
	require.Len(t, openOnly, 1)
	require.Equal(t, open.ID, openOnly[0].ID)
}

func TestAnswerRepositoryCountUnchecked(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnswerRepository(db)
	fixture := seedAnswerFixture(t, db)

	first := models.TextAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, OriginalAnswer: "one"}
	require.NoError(t, db.Create(&first).Error)
	second := models.TextAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, OriginalAnswer: "two"}
	require.NoError(t, db.Create(&second).Error)

	count, err := repo.CountUnchecked(context.Background(), fixture.course.ID, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	// Excluding an answer lets callers ask "done once this one is handled".
	count, err = repo.CountUnchecked(context.Background(), fixture.course.ID, []uint{first.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, db.Model(&second).Update("checked", true).Error)

	count, err = repo.CountUnchecked(context.Background(), fixture.course.ID, []uint{first.ID})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestAnswerRepositoryRatingAnswers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnswerRepository(db)
	fixture := seedAnswerFixture(t, db)

	require.NoError(t, db.Create(&models.LikertAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, Answer: 2}).Error)
	require.NoError(t, db.Create(&models.LikertAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, Answer: 4}).Error)
	require.NoError(t, db.Create(&models.GradeAnswer{QuestionID: fixture.question.ID, ContributionID: fixture.contribution.ID, Answer: 3}).Error)

	likert, err := repo.ListLikertAnswers(context.Background(), fixture.course.ID)
	require.NoError(t, err)
	require.Len(t, likert, 2)

	grades, err := repo.ListGradeAnswers(context.Background(), fixture.course.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)

	likert, err = repo.ListLikertAnswers(context.Background(), fixture.otherCourse.ID)
	require.NoError(t, err)
	require.Empty(t, likert)
}
