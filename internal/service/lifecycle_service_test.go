package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phSch08/EvaP/internal/models"
)

type capturePublisher struct {
	events []LifecycleEvent
}

func (c *capturePublisher) Publish(_ context.Context, event LifecycleEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestTransitionTableShape(t *testing.T) {
	require.Len(t, TransitionNames(), 9)

	for _, name := range TransitionNames() {
		sources, target, needsCheck, ok := TransitionRule(name)
		require.True(t, ok)
		require.NotEmpty(t, sources)
		require.NotEmpty(t, target)

		// review_finished is the only guarded transition.
		require.Equal(t, name == TransitionReviewFinished, needsCheck, name)

		// No transition is a self-loop.
		for _, source := range sources {
			require.NotEqual(t, target, source, name)
		}
	}

	sources, target, _, ok := TransitionRule(TransitionRevoke)
	require.True(t, ok)
	require.Equal(t, []string{models.StatePublished}, sources)
	require.Equal(t, models.StateReviewed, target)

	_, _, _, ok = TransitionRule("teleport")
	require.False(t, ok)
}

func TestLifecycleTransitionHappyPath(t *testing.T) {
	course := &models.Course{ID: 1, SemesterID: 3, State: models.StateNew}
	courses := newFakeCourseRepo(course)
	answers := newFakeAnswerRepo()
	publisher := &capturePublisher{}

	svc := NewLifecycleService(courses, newFakeUserRepo(), NewReviewService(answers, testLogger()), QuorumConfig{}, publisher, testLogger())

	result, err := svc.Transition(context.Background(), 1, TransitionReadyForContributors, ActivityActor{ID: 9, Role: "manager"})
	require.NoError(t, err)
	require.Equal(t, models.StatePrepared, result.NewState)
	require.Equal(t, models.StatePrepared, course.State)
	require.Equal(t, TransitionReadyForContributors, result.Event.Transition)
	require.False(t, result.Event.OccurredAt.IsZero())

	require.Len(t, courses.entries, 1)
	entry := courses.entries[0]
	require.Equal(t, "course.ready_for_contributors", entry.Action)
	require.Equal(t, uint(9), entry.ActorID)
	require.Equal(t, models.StateNew, entry.Metadata["from_state"])
	require.Equal(t, models.StatePrepared, entry.Metadata["to_state"])

	require.Len(t, publisher.events, 1)
	require.Equal(t, uint(3), publisher.events[0].SemesterID)
}

func TestLifecycleTransitionRejectsUnknownAndWrongPhase(t *testing.T) {
	course := &models.Course{ID: 1, State: models.StatePublished}
	svc := NewLifecycleService(newFakeCourseRepo(course), newFakeUserRepo(), NewReviewService(newFakeAnswerRepo(), testLogger()), QuorumConfig{}, nil, testLogger())

	_, err := svc.Transition(context.Background(), 1, "teleport", ActivityActor{})
	require.ErrorIs(t, err, ErrUnknownTransition)

	_, err = svc.Transition(context.Background(), 1, TransitionStaffApprove, ActivityActor{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, models.StatePublished, course.State)

	_, err = svc.Transition(context.Background(), 42, TransitionPublish, ActivityActor{})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestLifecycleReviewGateBlocksThenReleases(t *testing.T) {
	course := &models.Course{ID: 1, State: models.StateEvaluated}
	courses := newFakeCourseRepo(course)
	courses.unchecked[1] = 2

	svc := NewLifecycleService(courses, newFakeUserRepo(), NewReviewService(newFakeAnswerRepo(), testLogger()), QuorumConfig{}, nil, testLogger())

	_, err := svc.Transition(context.Background(), 1, TransitionReviewFinished, ActivityActor{})
	require.ErrorIs(t, err, ErrReviewIncomplete)
	require.Equal(t, models.StateEvaluated, course.State)
	require.Empty(t, courses.entries)

	courses.unchecked[1] = 0
	result, err := svc.Transition(context.Background(), 1, TransitionReviewFinished, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.StateReviewed, result.NewState)
	require.Equal(t, models.StateReviewed, course.State)
}

func TestLifecycleQueriesQuorum(t *testing.T) {
	participants := []models.UserProfile{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	course := &models.Course{
		ID:           1,
		State:        models.StateInEvaluation,
		Participants: participants,
		Voters:       []models.UserProfile{{ID: 1}},
	}
	courses := newFakeCourseRepo(course)
	quorum := QuorumConfig{MinAnswerCount: 2, MinAnswerPercentage: 0.2}

	svc := NewLifecycleService(courses, newFakeUserRepo(), NewReviewService(newFakeAnswerRepo(), testLogger()), quorum, nil, testLogger())

	queries, err := svc.Queries(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, queries.CanPublishGrades)
	require.Contains(t, queries.Warnings, WarningNotEnoughParticipants)
	require.Equal(t, models.StudentStateInEvaluation, queries.StudentState)
	require.True(t, queries.CanStaffEdit)

	course.Voters = append(course.Voters, models.UserProfile{ID: 2})
	queries, err = svc.Queries(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, queries.CanPublishGrades)
	require.NotContains(t, queries.Warnings, WarningNotEnoughParticipants)
}

func TestLifecycleQueriesArchivedWithoutParticipants(t *testing.T) {
	course := &models.Course{
		ID:               1,
		State:            models.StatePublished,
		ParticipantCount: intPtr(0),
		VoterCount:       intPtr(0),
	}
	svc := NewLifecycleService(newFakeCourseRepo(course), newFakeUserRepo(), NewReviewService(newFakeAnswerRepo(), testLogger()), QuorumConfig{MinAnswerCount: 0, MinAnswerPercentage: 0}, nil, testLogger())

	queries, err := svc.Queries(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, queries.CanPublishGrades, "a course without participants never meets the quorum")
	require.False(t, queries.CanStaffEdit)
	require.False(t, queries.CanStaffDelete)
}

func TestLifecycleQueriesRejectsMixedArchivalState(t *testing.T) {
	course := &models.Course{ID: 1, State: models.StatePublished, ParticipantCount: intPtr(5)}
	svc := NewLifecycleService(newFakeCourseRepo(course), newFakeUserRepo(), NewReviewService(newFakeAnswerRepo(), testLogger()), QuorumConfig{}, nil, testLogger())

	_, err := svc.Queries(context.Background(), 1)
	require.ErrorIs(t, err, models.ErrMixedArchivalState)
}

func TestLifecycleCanUserVote(t *testing.T) {
	endDate := time.Now().Add(48 * time.Hour)
	course := &models.Course{
		ID:           1,
		State:        models.StateInEvaluation,
		VoteEndDate:  &endDate,
		Participants: []models.UserProfile{{ID: 7}, {ID: 8}},
		Voters:       []models.UserProfile{{ID: 8}},
	}
	users := newFakeUserRepo(&models.UserProfile{ID: 7}, &models.UserProfile{ID: 8})
	svc := NewLifecycleService(newFakeCourseRepo(course), users, NewReviewService(newFakeAnswerRepo(), testLogger()), QuorumConfig{}, nil, testLogger())

	allowed, err := svc.CanUserVote(context.Background(), 1, 7)
	require.NoError(t, err)
	require.True(t, allowed)

	voted, err := svc.CanUserVote(context.Background(), 1, 8)
	require.NoError(t, err)
	require.False(t, voted, "participants who already voted may not vote again")

	_, err = svc.CanUserVote(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrUserNotFound)
}
