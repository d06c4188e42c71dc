package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/observability"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrSemesterNotFound indicates the semester was not located.
var ErrSemesterNotFound = errors.New("semester not found")

// ErrNotArchiveable re-exports the domain error for callers that only import
// the service layer.
var ErrNotArchiveable = models.ErrNotArchiveable

// ArchiveService freezes participation counts of courses and semesters and
// serves a cached per-semester overview.
type ArchiveService interface {
	ArchiveCourse(ctx context.Context, courseID uint, actor ActivityActor) error
	ArchiveSemester(ctx context.Context, semesterID uint, actor ActivityActor) error
	SemesterOverview(ctx context.Context, semesterID uint) (dto.SemesterOverview, error)
}

type archiveService struct {
	semesters repository.SemesterRepository
	courses   repository.CourseRepository
	activity  ActivityService
	quorum    QuorumConfig
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewArchiveService constructs the archive service. The cache client may be
// nil, in which case overviews are always computed from the database.
func NewArchiveService(semesters repository.SemesterRepository, courses repository.CourseRepository, activity ActivityService, quorum QuorumConfig, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ArchiveService {
	return &archiveService{
		semesters: semesters,
		courses:   courses,
		activity:  activity,
		quorum:    quorum,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "archive_service").Logger(),
	}
}

func (s *archiveService) ArchiveCourse(ctx context.Context, courseID uint, actor ActivityActor) error {
	tracer := otel.Tracer("github.com/phSch08/EvaP/internal/service/archive")
	ctx, span := tracer.Start(ctx, "archive.course")
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)))
	defer span.End()

	if err := s.semesters.ArchiveCourse(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		if errors.Is(err, models.ErrNotArchiveable) {
			span.SetStatus(codes.Error, "not_archiveable")
			return models.ErrNotArchiveable
		}
		span.RecordError(err)
		return err
	}

	s.recordArchival(ctx, actor, "course.archived", "course", courseID)
	observability.ArchivalsTotal().WithLabelValues("course").Inc()
	return nil
}

func (s *archiveService) ArchiveSemester(ctx context.Context, semesterID uint, actor ActivityActor) error {
	tracer := otel.Tracer("github.com/phSch08/EvaP/internal/service/archive")
	ctx, span := tracer.Start(ctx, "archive.semester")
	span.SetAttributes(attribute.Int64("semester.id", int64(semesterID)))
	defer span.End()

	if _, err := s.semesters.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		span.RecordError(err)
		return err
	}

	if err := s.semesters.ArchiveCourses(ctx, semesterID); err != nil {
		if errors.Is(err, models.ErrNotArchiveable) {
			span.SetStatus(codes.Error, "not_archiveable")
			return models.ErrNotArchiveable
		}
		span.RecordError(err)
		return err
	}

	s.invalidateOverview(ctx, semesterID)
	s.recordArchival(ctx, actor, "semester.archived", "semester", semesterID)
	observability.ArchivalsTotal().WithLabelValues("semester").Inc()
	s.logger.Info().Uint("semester_id", semesterID).Msg("semester archived")
	return nil
}

func (s *archiveService) SemesterOverview(ctx context.Context, semesterID uint) (dto.SemesterOverview, error) {
	cacheKey := fmt.Sprintf("overview:semester:%d", semesterID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var overview dto.SemesterOverview
			if unmarshalErr := json.Unmarshal([]byte(cached), &overview); unmarshalErr == nil {
				s.logger.Debug().Uint("semester_id", semesterID).Msg("overview cache hit")
				return overview, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
		}
	}

	semester, err := s.semesters.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SemesterOverview{}, ErrSemesterNotFound
		}
		return dto.SemesterOverview{}, err
	}

	courses, err := s.courses.ListBySemester(ctx, semesterID)
	if err != nil {
		return dto.SemesterOverview{}, err
	}

	archived, err := semester.IsArchived()
	if err != nil {
		return dto.SemesterOverview{}, err
	}

	overview := dto.SemesterOverview{
		SemesterID:    semester.ID,
		Name:          semester.Name,
		IsArchived:    archived,
		IsArchiveable: semester.IsArchiveable(),
		Courses:       make([]dto.SemesterCourseOverview, 0, len(courses)),
	}

	for _, course := range courses {
		overview.Courses = append(overview.Courses, dto.SemesterCourseOverview{
			CourseID:        course.ID,
			Name:            course.Name,
			State:           course.State,
			StudentState:    course.StudentState(),
			NumParticipants: course.NumParticipants(),
			NumVoters:       course.NumVoters(),
			IsArchived:      course.IsArchived(),
			MeetsQuorum:     CanPublishGrades(course, s.quorum),
			Warnings:        Warnings(course, s.quorum),
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(overview); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
			}
		}
	}

	return overview, nil
}

func (s *archiveService) invalidateOverview(ctx context.Context, semesterID uint) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf("overview:semester:%d", semesterID)
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate overview cache")
	}
}

func (s *archiveService) recordArchival(ctx context.Context, actor ActivityActor, action, entityType string, entityID uint) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, actor, action, entityType, &entityID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record archival activity")
	}
}
