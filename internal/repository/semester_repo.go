package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
)

// SemesterRepository defines persistence operations for semesters.
type SemesterRepository interface {
	GetByID(ctx context.Context, id uint) (models.Semester, error)
	Latest(ctx context.Context) (models.Semester, error)
	ListWithPublishedCourses(ctx context.Context) ([]models.Semester, error)
	Create(ctx context.Context, semester *models.Semester) error
	ArchiveCourses(ctx context.Context, semesterID uint) error
	ArchiveCourse(ctx context.Context, courseID uint) error
}

type semesterRepository struct {
	db *gorm.DB
}

// NewSemesterRepository instantiates a GORM-backed repository.
func NewSemesterRepository(db *gorm.DB) SemesterRepository {
	return &semesterRepository{db: db}
}

func (r *semesterRepository) GetByID(ctx context.Context, id uint) (models.Semester, error) {
	var semester models.Semester
	if err := r.db.WithContext(ctx).
		Preload("Courses").
		First(&semester, id).Error; err != nil {
		return models.Semester{}, err
	}

	return semester, nil
}

func (r *semesterRepository) Latest(ctx context.Context) (models.Semester, error) {
	var semester models.Semester
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&semester).Error; err != nil {
		return models.Semester{}, err
	}

	return semester, nil
}

func (r *semesterRepository) ListWithPublishedCourses(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	if err := r.db.WithContext(ctx).
		Distinct("semesters.*").
		Joins("JOIN courses ON courses.semester_id = semesters.id").
		Where("courses.state = ?", models.StatePublished).
		Order("semesters.created_at DESC").
		Find(&semesters).Error; err != nil {
		return nil, err
	}

	return semesters, nil
}

func (r *semesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

// ArchiveCourses freezes the participation counts of every course in the
// semester. The courses are locked and re-checked inside one transaction, so
// a vote arriving mid-batch rolls the whole run back instead of leaving the
// semester half archived.
func (r *semesterRepository) ArchiveCourses(ctx context.Context, semesterID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var courses []models.Course
		if err := lockForUpdate(tx).
			Where("semester_id = ?", semesterID).
			Find(&courses).Error; err != nil {
			return err
		}

		for _, course := range courses {
			if err := course.CheckArchivalConsistency(); err != nil {
				return err
			}
			if !course.IsArchiveable() {
				return models.ErrNotArchiveable
			}
		}

		for i := range courses {
			if err := freezeCounts(tx, &courses[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

// ArchiveCourse freezes the participation counts of a single course.
func (r *semesterRepository) ArchiveCourse(ctx context.Context, courseID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := lockForUpdate(tx).First(&course, courseID).Error; err != nil {
			return err
		}

		if err := course.CheckArchivalConsistency(); err != nil {
			return err
		}
		if !course.IsArchiveable() {
			return models.ErrNotArchiveable
		}

		return freezeCounts(tx, &course)
	})
}

func freezeCounts(tx *gorm.DB, course *models.Course) error {
	var participantCount int64
	if err := tx.Table("course_participants").
		Where("course_id = ?", course.ID).
		Count(&participantCount).Error; err != nil {
		return err
	}

	var voterCount int64
	if err := tx.Table("course_voters").
		Where("course_id = ?", course.ID).
		Count(&voterCount).Error; err != nil {
		return err
	}

	participants := int(participantCount)
	voters := int(voterCount)
	return tx.Model(course).Updates(map[string]interface{}{
		"participant_count": participants,
		"voter_count":       voters,
	}).Error
}
