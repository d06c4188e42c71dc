package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phSch08/EvaP/internal/models"
)

// ErrStateConflict indicates the course state read by the caller no longer
// matches the stored state when the transition was attempted.
var ErrStateConflict = errors.New("course state does not match expected source state")

// ErrUncheckedAnswers indicates text answers awaiting review blocked the
// requested state change.
var ErrUncheckedAnswers = errors.New("course has unchecked text answers")

// CourseRepository defines persistence operations for course aggregates.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	ListBySemester(ctx context.Context, semesterID uint) ([]models.Course, error)
	ListByState(ctx context.Context, state string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	TransitionState(ctx context.Context, courseID uint, fromStates []string, toState string, requireFullyChecked bool, entry *models.ActivityLog) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// lockForUpdate applies a row lock where the dialect supports one. SQLite has
// no FOR UPDATE; its write transactions are serialized anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func courseAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Semester").
		Preload("Participants").
		Preload("Voters").
		Preload("Contributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("contributions.\"order\" ASC, contributions.id ASC")
		}).
		Preload("Contributions.Contributor").
		Preload("Contributions.Contributor.Delegates").
		Preload("Contributions.Contributor.CCUsers").
		Preload("Contributions.Questionnaires")
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := courseAggregate(r.db.WithContext(ctx)).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var courses []models.Course
	if err := courseAggregate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListBySemester(ctx context.Context, semesterID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := courseAggregate(r.db.WithContext(ctx)).
		Where("semester_id = ?", semesterID).
		Order("degree ASC, name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListByState(ctx context.Context, state string) ([]models.Course, error) {
	var courses []models.Course
	if err := courseAggregate(r.db.WithContext(ctx)).
		Where("state = ?", state).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

// Create stores a new course and guarantees the general contribution exists.
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range course.Contributions {
			course.Contributions[i].Normalize()
		}

		if err := tx.Create(course).Error; err != nil {
			return err
		}

		var generalCount int64
		if err := tx.Model(&models.Contribution{}).
			Where("course_id = ? AND contributor_id IS NULL", course.ID).
			Count(&generalCount).Error; err != nil {
			return err
		}

		if generalCount == 0 {
			general := models.Contribution{CourseID: course.ID}
			if err := tx.Create(&general).Error; err != nil {
				return err
			}
			course.Contributions = append(course.Contributions, general)
		}

		return nil
	})
}

// TransitionState atomically moves the course from one of the expected source
// states to the target state. The state check, the optional review-gate check
// and the audit entry share one transaction so concurrent transitions and
// concurrent unchecking of answers cannot interleave with the state change.
func (r *courseRepository) TransitionState(ctx context.Context, courseID uint, fromStates []string, toState string, requireFullyChecked bool, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := lockForUpdate(tx).First(&course, courseID).Error; err != nil {
			return err
		}

		if !containsState(fromStates, course.State) {
			return ErrStateConflict
		}

		if requireFullyChecked {
			unchecked, err := countUncheckedAnswers(tx, courseID, nil)
			if err != nil {
				return err
			}
			if unchecked > 0 {
				return ErrUncheckedAnswers
			}
		}

		if err := tx.Model(&course).Update("state", toState).Error; err != nil {
			return err
		}

		if entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func countUncheckedAnswers(tx *gorm.DB, courseID uint, excludeIDs []uint) (int64, error) {
	query := tx.Model(&models.TextAnswer{}).
		Joins("JOIN contributions ON contributions.id = text_answers.contribution_id").
		Where("contributions.course_id = ? AND text_answers.checked = ?", courseID, false)

	if len(excludeIDs) > 0 {
		query = query.Where("text_answers.id NOT IN ?", excludeIDs)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func containsState(states []string, state string) bool {
	for _, candidate := range states {
		if candidate == state {
			return true
		}
	}
	return false
}
