package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/observability"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrCourseNotFound indicates the course was not located.
var ErrCourseNotFound = errors.New("course not found")

// ErrUnknownTransition indicates a transition name outside the table. This is
// a programming error on the caller's side, not a lifecycle outcome.
var ErrUnknownTransition = errors.New("unknown transition")

// ErrInvalidTransition indicates the course is not in a source state of the
// requested transition.
var ErrInvalidTransition = errors.New("transition not allowed from current state")

// ErrReviewIncomplete indicates review_finished was attempted while text
// answers are still unchecked. Kept distinct from ErrInvalidTransition so
// callers can present "review not done" separately from "wrong phase".
var ErrReviewIncomplete = errors.New("course still has unchecked text answers")

// Transition names accepted by the lifecycle.
const (
	TransitionReadyForContributors = "ready_for_contributors"
	TransitionContributorApprove   = "contributor_approve"
	TransitionStaffApprove         = "staff_approve"
	TransitionRevertToNew          = "revert_to_new"
	TransitionEvaluationBegin      = "evaluation_begin"
	TransitionEvaluationEnd        = "evaluation_end"
	TransitionReviewFinished       = "review_finished"
	TransitionPublish              = "publish"
	TransitionRevoke               = "revoke"
)

type transitionRule struct {
	sources    []string
	target     string
	needsCheck bool
}

// transitionTable is the declarative source of truth for the lifecycle graph.
// The only cycle is published <-> reviewed via revoke.
var transitionTable = map[string]transitionRule{
	TransitionReadyForContributors: {sources: []string{models.StateNew, models.StateLecturerApproved}, target: models.StatePrepared},
	TransitionContributorApprove:   {sources: []string{models.StatePrepared}, target: models.StateLecturerApproved},
	TransitionStaffApprove:         {sources: []string{models.StateNew, models.StatePrepared, models.StateLecturerApproved}, target: models.StateApproved},
	TransitionRevertToNew:          {sources: []string{models.StatePrepared}, target: models.StateNew},
	TransitionEvaluationBegin:      {sources: []string{models.StateApproved}, target: models.StateInEvaluation},
	TransitionEvaluationEnd:        {sources: []string{models.StateInEvaluation}, target: models.StateEvaluated},
	TransitionReviewFinished:       {sources: []string{models.StateEvaluated}, target: models.StateReviewed, needsCheck: true},
	TransitionPublish:              {sources: []string{models.StateReviewed}, target: models.StatePublished},
	TransitionRevoke:               {sources: []string{models.StatePublished}, target: models.StateReviewed},
}

// TransitionNames lists all transitions in the table.
func TransitionNames() []string {
	names := make([]string, 0, len(transitionTable))
	for name := range transitionTable {
		names = append(names, name)
	}
	return names
}

// TransitionRule exposes the sources, target and guard requirement of a
// transition for validation and property tests.
func TransitionRule(name string) (sources []string, target string, needsCheck bool, ok bool) {
	rule, ok := transitionTable[name]
	if !ok {
		return nil, "", false, false
	}
	return rule.sources, rule.target, rule.needsCheck, true
}

// LifecycleService drives courses through the evaluation lifecycle.
type LifecycleService interface {
	Transition(ctx context.Context, courseID uint, transition string, actor ActivityActor) (dto.TransitionResult, error)
	Queries(ctx context.Context, courseID uint) (dto.CourseQueries, error)
	CanUserVote(ctx context.Context, courseID, userID uint) (bool, error)
}

type lifecycleService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	reviews   ReviewGate
	quorum    QuorumConfig
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLifecycleService constructs the lifecycle service. The publisher may be
// nil when cross-node event fan-out is not configured.
func NewLifecycleService(courses repository.CourseRepository, users repository.UserRepository, reviews ReviewGate, quorum QuorumConfig, publisher EventPublisher, logger zerolog.Logger) LifecycleService {
	return &lifecycleService{
		courses:   courses,
		users:     users,
		reviews:   reviews,
		quorum:    quorum,
		publisher: publisher,
		logger:    logger.With().Str("component", "lifecycle_service").Logger(),
		now:       time.Now,
	}
}

func (s *lifecycleService) Transition(ctx context.Context, courseID uint, transition string, actor ActivityActor) (dto.TransitionResult, error) {
	tracer := otel.Tracer("github.com/phSch08/EvaP/internal/service/lifecycle")
	ctx, span := tracer.Start(ctx, "lifecycle.transition")
	span.SetAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.String("lifecycle.transition", transition),
	)
	defer span.End()

	rule, ok := transitionTable[transition]
	if !ok {
		span.SetStatus(codes.Error, "unknown_transition")
		return dto.TransitionResult{}, ErrUnknownTransition
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TransitionResult{}, ErrCourseNotFound
		}
		span.RecordError(err)
		return dto.TransitionResult{}, err
	}

	if !stateIn(course.State, rule.sources) {
		span.SetStatus(codes.Error, "invalid_transition")
		return dto.TransitionResult{}, ErrInvalidTransition
	}

	entry := &models.ActivityLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "course." + transition,
		EntityType: "course",
		EntityID:   &course.ID,
		Metadata: datatypes.JSONMap{
			"from_state": course.State,
			"to_state":   rule.target,
		},
	}

	// The repository re-checks the source state and the review gate under a
	// row lock; the in-memory checks above only produce friendlier errors.
	if err := s.courses.TransitionState(ctx, courseID, rule.sources, rule.target, rule.needsCheck, entry); err != nil {
		switch {
		case errors.Is(err, repository.ErrUncheckedAnswers):
			span.SetStatus(codes.Error, "review_incomplete")
			return dto.TransitionResult{}, ErrReviewIncomplete
		case errors.Is(err, repository.ErrStateConflict):
			span.SetStatus(codes.Error, "invalid_transition")
			return dto.TransitionResult{}, ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.TransitionResult{}, ErrCourseNotFound
		}
		span.RecordError(err)
		return dto.TransitionResult{}, err
	}

	event := LifecycleEvent{
		CourseID:   course.ID,
		SemesterID: course.SemesterID,
		Transition: transition,
		NewState:   rule.target,
		OccurredAt: s.now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("course_id", course.ID).Msg("failed to publish lifecycle event")
		}
	}

	observability.TransitionsTotal().WithLabelValues(transition).Inc()
	s.logger.Info().
		Uint("course_id", course.ID).
		Str("transition", transition).
		Str("from_state", course.State).
		Str("to_state", rule.target).
		Msg("course transitioned")

	return dto.TransitionResult{
		CourseID:   course.ID,
		NewState:   rule.target,
		Transition: transition,
		Event:      dto.NewLifecycleEventResponse(event.Transition, event.NewState, event.OccurredAt),
	}, nil
}

func (s *lifecycleService) Queries(ctx context.Context, courseID uint) (dto.CourseQueries, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseQueries{}, ErrCourseNotFound
		}
		return dto.CourseQueries{}, err
	}

	if err := course.CheckArchivalConsistency(); err != nil {
		return dto.CourseQueries{}, err
	}

	canStaffReview := false
	if course.State == models.StateInEvaluation || course.State == models.StateEvaluated {
		checked, err := s.reviews.IsFullyChecked(ctx, course.ID)
		if err != nil {
			return dto.CourseQueries{}, err
		}
		canStaffReview = !checked
	}

	return dto.CourseQueries{
		CourseID:         course.ID,
		State:            course.State,
		StudentState:     course.StudentState(),
		CanStaffEdit:     course.CanStaffEdit(),
		CanStaffDelete:   course.CanStaffDelete(),
		CanStaffReview:   canStaffReview,
		CanStaffApprove:  course.CanStaffApprove(),
		CanPublishGrades: CanPublishGrades(course, s.quorum),
		Warnings:         Warnings(course, s.quorum),
	}, nil
}

func (s *lifecycleService) CanUserVote(ctx context.Context, courseID, userID uint) (bool, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCourseNotFound
		}
		return false, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	return course.CanUserVote(user, s.now()), nil
}

func stateIn(state string, states []string) bool {
	for _, candidate := range states {
		if candidate == state {
			return true
		}
	}
	return false
}
