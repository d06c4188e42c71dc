package service

import "github.com/phSch08/EvaP/internal/models"

// QuorumConfig carries the externally configured publication thresholds.
type QuorumConfig struct {
	MinAnswerCount      int
	MinAnswerPercentage float64
}

// CanPublishGrades reports whether enough participants voted for the results
// to be shown to students. A course without participants never meets the
// quorum; it does not produce a division error.
func CanPublishGrades(course models.Course, cfg QuorumConfig) bool {
	voters := course.NumVoters()
	participants := course.NumParticipants()

	if voters < cfg.MinAnswerCount {
		return false
	}
	if participants == 0 {
		return false
	}
	return float64(voters)/float64(participants) >= cfg.MinAnswerPercentage
}

// Course-level diagnostics surfaced to staff. Advisory only, they never block
// a transition.
const (
	WarningNotEnoughQuestionnaires = "not enough questionnaires assigned"
	WarningNotEnoughParticipants   = "not enough participants to publish results"
)

// Warnings returns the advisory diagnostics for a course.
func Warnings(course models.Course, cfg QuorumConfig) []string {
	warnings := []string{}

	if course.State == models.StateNew && !course.HasEnoughQuestionnaires() {
		warnings = append(warnings, WarningNotEnoughQuestionnaires)
	}

	switch course.State {
	case models.StateInEvaluation, models.StateEvaluated, models.StateReviewed:
		if !CanPublishGrades(course, cfg) {
			warnings = append(warnings, WarningNotEnoughParticipants)
		}
	}

	return warnings
}

// CanUserSeeResults reports whether the user may access the course's results.
// Staff always may; everyone else only on published courses that either meet
// the quorum or on which the user contributes (directly or as a delegate).
func CanUserSeeResults(user models.UserProfile, course models.Course, cfg QuorumConfig) bool {
	if user.IsStaff {
		return true
	}
	if course.State != models.StatePublished {
		return false
	}
	return CanPublishGrades(course, cfg) || course.IsUserContributorOrDelegate(user)
}
